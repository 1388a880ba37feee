// Package karma derives per-user statistics from good-deed posts: category
// counts and a point total of base points plus a per-like bonus.
package karma

import "github.com/goodkarma/goodkarma/deeds"

const (
	// BasePoints is awarded for every recognized deed post.
	BasePoints = 10
	// PointsPerLike is the bonus added per like on a recognized deed post.
	PointsPerLike = 2
)

// PostActivity is the slice of a post the scoring engine needs.
type PostActivity struct {
	Content   string
	LikeCount int
}

// Stats is the aggregate karma view for one user.
type Stats struct {
	Categories  map[deeds.Type]int `json:"categories"`
	TotalPoints int                `json:"totalPoints"`
	PostCount   int                `json:"postCount"`
}

// Compute aggregates a user's posts into karma stats. Posts without valid
// metadata, or with an unrecognized deed type, earn no points and no category
// count but still count toward PostCount.
func Compute(posts []PostActivity) Stats {
	stats := Stats{
		Categories: make(map[deeds.Type]int, 5),
		PostCount:  len(posts),
	}
	for _, typ := range deeds.Types() {
		stats.Categories[typ] = 0
	}

	for _, post := range posts {
		meta := deeds.Decode(post.Content)
		if meta == nil || !deeds.IsRecognized(meta.DeedType) {
			continue
		}
		stats.Categories[meta.DeedType]++
		stats.TotalPoints += BasePoints + PointsPerLike*post.LikeCount
	}
	return stats
}
