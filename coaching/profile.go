package coaching

import (
	"sort"
	"strings"

	"github.com/goodkarma/goodkarma/deeds"
)

// Goal is one coaching goal, either supplied by the user or inferred from
// posting activity.
type Goal struct {
	Area        string `json:"area"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
	Timeline    string `json:"timeline"`
}

// DerivedProfile is the coaching profile inferred from a user's posts.
// UserProfile holds the personalityTraits, values and interests lists keyed
// the way the external service expects them.
type DerivedProfile struct {
	UserProfile map[string]any
	FocusAreas  []string
}

func defaultProfile() DerivedProfile {
	return DerivedProfile{
		UserProfile: map[string]any{
			"personalityTraits": []string{"growth-oriented"},
			"values":            []string{"personal growth"},
			"interests":         []string{"self-improvement"},
		},
		FocusAreas: []string{"personal_growth"},
	}
}

// tallyDeeds counts recognized deed types across post contents. Posts without
// a decodable metadata marker contribute nothing.
func tallyDeeds(contents []string) map[deeds.Type]int {
	counts := make(map[deeds.Type]int)
	for _, c := range contents {
		if m := deeds.Decode(c); m != nil && deeds.IsRecognized(m.DeedType) {
			counts[m.DeedType]++
		}
	}
	return counts
}

// rankDeeds orders the tallied deed types by count descending, breaking ties
// by catalog declaration order.
func rankDeeds(counts map[deeds.Type]int) []deeds.Type {
	ranked := make([]deeds.Type, 0, len(counts))
	for _, t := range deeds.Types() {
		if counts[t] > 0 {
			ranked = append(ranked, t)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return counts[ranked[i]] > counts[ranked[j]]
	})
	return ranked
}

// DeriveProfile infers a coaching profile from a user's post contents. The
// top three deed types by frequency contribute their trait and value tags
// (deduplicated, capped at five each); focus areas and interests follow the
// full ranking. Users with no decodable deed posts get a generic profile.
func DeriveProfile(contents []string) DerivedProfile {
	counts := tallyDeeds(contents)
	ranked := rankDeeds(counts)
	if len(ranked) == 0 {
		return defaultProfile()
	}

	top := ranked
	if len(top) > 3 {
		top = top[:3]
	}
	traits := appendUnique(nil, top, func(d deeds.Deed) []string { return d.Traits })
	values := appendUnique(nil, top, func(d deeds.Deed) []string { return d.Values })
	if len(traits) > 5 {
		traits = traits[:5]
	}
	if len(values) > 5 {
		values = values[:5]
	}

	focusAreas := make([]string, 0, len(ranked))
	interests := make([]string, 0, len(ranked))
	for _, t := range ranked {
		d, _ := deeds.Lookup(t)
		focusAreas = append(focusAreas, d.FocusArea)
		interests = append(interests, d.Name)
	}

	return DerivedProfile{
		UserProfile: map[string]any{
			"personalityTraits": traits,
			"values":            values,
			"interests":         interests,
		},
		FocusAreas: focusAreas,
	}
}

func appendUnique(dst []string, types []deeds.Type, pick func(deeds.Deed) []string) []string {
	seen := make(map[string]bool)
	for _, s := range dst {
		seen[s] = true
	}
	for _, t := range types {
		d, _ := deeds.Lookup(t)
		for _, s := range pick(d) {
			if !seen[s] {
				seen[s] = true
				dst = append(dst, s)
			}
		}
	}
	return dst
}

// ImplicitGoals infers up to three goals from posting activity: keep up the
// most frequent practice, grow a low-count one, and try an untouched one.
func ImplicitGoals(contents []string) []Goal {
	counts := tallyDeeds(contents)
	ranked := rankDeeds(counts)
	if len(ranked) == 0 {
		return nil
	}

	var goals []Goal

	most := ranked[0]
	d, _ := deeds.Lookup(most)
	goals = append(goals, Goal{
		Area:        d.FocusArea,
		Description: "Maintain consistent " + strings.ToLower(d.Name) + " practice",
		Priority:    "high",
		Timeline:    "3 months",
	})

	for _, t := range deeds.Types() {
		if t == most || counts[t] == 0 || counts[t] > 2 {
			continue
		}
		dd, _ := deeds.Lookup(t)
		goals = append(goals, Goal{
			Area:        dd.FocusArea,
			Description: "Increase " + strings.ToLower(dd.Name) + " activity",
			Priority:    "medium",
			Timeline:    "6 months",
		})
		break
	}

	for _, t := range deeds.Types() {
		if counts[t] > 0 {
			continue
		}
		dd, _ := deeds.Lookup(t)
		goals = append(goals, Goal{
			Area:        dd.FocusArea,
			Description: "Explore " + strings.ToLower(dd.Name) + " practice",
			Priority:    "low",
			Timeline:    "6 months",
		})
		break
	}

	return goals
}
