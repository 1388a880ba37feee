package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/goodkarma/goodkarma/karma"
	"github.com/goodkarma/goodkarma/models"
	"github.com/goodkarma/goodkarma/utils"
)

// StatsController serves karma statistics derived from a user's posts.
type StatsController struct {
	db *gorm.DB
}

// NewStatsController creates a new StatsController instance.
func NewStatsController(db *gorm.DB) *StatsController {
	return &StatsController{db: db}
}

// GetKarmaStats computes the caller's karma breakdown: points per deed
// category and the like-weighted total. Only the owner may read their stats.
func (s *StatsController) GetKarmaStats(ctx *gin.Context) {
	callerID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40130, "unauthorized")
		return
	}
	targetID, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40080, "invalid user id")
		return
	}
	if uint(targetID) != callerID {
		utils.Error(ctx, http.StatusForbidden, 40330, "you can only view your own karma stats")
		return
	}

	cacheKey := "cache:karma:stats:" + strconv.FormatUint(targetID, 10)
	if b, ok := utils.CacheGetBytes(cacheKey); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	activity, err := s.loadActivity(uint(targetID))
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50080, "failed to load posts")
		return
	}

	stats := karma.Compute(activity)

	wrapper := utils.JSONResponse{Code: 0, Message: "success", Data: stats}
	utils.CacheSetJSON(cacheKey, wrapper, time.Hour)
	utils.Success(ctx, stats)
}

// loadActivity fetches a user's posts annotated with like counts.
func (s *StatsController) loadActivity(userID uint) ([]karma.PostActivity, error) {
	var posts []models.Post
	if err := s.db.Where("user_id = ?", userID).Find(&posts).Error; err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.ID)
	}
	likeCounts := map[uint]int64{}
	if len(ids) > 0 {
		type row struct {
			PostID uint
			N      int64
		}
		var rows []row
		if err := s.db.Model(&models.Like{}).Select("post_id, count(*) as n").Where("post_id IN ?", ids).Group("post_id").Scan(&rows).Error; err != nil {
			return nil, err
		}
		for _, r := range rows {
			likeCounts[r.PostID] = r.N
		}
	}

	activity := make([]karma.PostActivity, 0, len(posts))
	for _, p := range posts {
		activity = append(activity, karma.PostActivity{
			Content:   p.Content,
			LikeCount: int(likeCounts[p.ID]),
		})
	}
	return activity, nil
}
