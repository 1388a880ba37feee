package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/goodkarma/goodkarma/deeds"
	"github.com/goodkarma/goodkarma/middleware"
	"github.com/goodkarma/goodkarma/models"
	"github.com/goodkarma/goodkarma/utils"
)

// PostController manages posts, likes and comments.
type PostController struct {
	db *gorm.DB
}

// NewPostController creates a new PostController instance.
func NewPostController(db *gorm.DB) *PostController {
	return &PostController{db: db}
}

type deedRequest struct {
	DeedType        string `json:"deedType"`
	PrimaryOption   string `json:"primaryOption"`
	SecondaryOption string `json:"secondaryOption"`
	AdditionalNotes string `json:"additionalNotes"`
}

// buildContent sanitizes the display text and, when deed metadata is
// supplied, prepends the metadata marker. Sanitization runs first because
// the marker is an HTML comment bluemonday would strip.
func buildContent(display string, deed *deedRequest) string {
	clean := utils.Sanitize(display)
	if deed == nil || strings.TrimSpace(deed.DeedType) == "" {
		return clean
	}
	meta := deeds.Metadata{
		DeedType:        deeds.Type(strings.TrimSpace(deed.DeedType)),
		PrimaryOption:   strings.TrimSpace(deed.PrimaryOption),
		SecondaryOption: strings.TrimSpace(deed.SecondaryOption),
		AdditionalNotes: utils.Sanitize(deed.AdditionalNotes),
	}
	return deeds.Encode(meta, clean)
}

// postView augments a post with its decoded deed metadata and marker-free
// display text.
func postView(post models.Post, likeCount, commentCount int64) gin.H {
	meta := deeds.Decode(post.Content)
	return gin.H{
		"id":            post.ID,
		"user_id":       post.UserID,
		"title":         post.Title,
		"content":       post.Content,
		"display_text":  deeds.CleanContent(post.Content),
		"deed_metadata": meta,
		"deed_display":  deeds.Describe(meta),
		"like_count":    likeCount,
		"comment_count": commentCount,
		"created_at":    post.CreatedAt,
		"updated_at":    post.UpdatedAt,
		"author":        publicUserResponse(post.User),
	}
}

func (p *PostController) invalidatePostCaches(postID string, userID uint) {
	utils.InvalidateByPrefix("cache:feed:")
	if postID != "" {
		utils.InvalidateByPrefix("cache:post:detail:" + postID)
	}
	utils.InvalidateByPrefix("cache:user:" + strconv.Itoa(int(userID)) + ":posts:")
	utils.InvalidateByPrefix("cache:karma:stats:" + strconv.Itoa(int(userID)))
}

// CreatePost allows authenticated users to log a new deed post.
func (p *PostController) CreatePost(ctx *gin.Context) {
	var req struct {
		Title   string       `json:"title" binding:"required,min=1,max=255"`
		Content string       `json:"content" binding:"required"`
		Deed    *deedRequest `json:"deed"`
	}

	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid request payload")
		return
	}

	title := utils.SanitizeText(strings.TrimSpace(req.Title))
	if title == "" {
		utils.Error(ctx, http.StatusBadRequest, 40021, "title cannot be empty")
		return
	}

	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	post := models.Post{
		UserID:  userID,
		Title:   title,
		Content: buildContent(req.Content, req.Deed),
	}

	if err := p.db.Create(&post).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50020, "failed to create post")
		return
	}

	p.invalidatePostCaches("", userID)
	post.User, _ = p.loadUser(userID)
	utils.Success(ctx, gin.H{"post": postView(post, 0, 0)})
}

func (p *PostController) loadUser(id uint) (models.User, error) {
	var user models.User
	err := p.db.First(&user, id).Error
	return user, err
}

// ListFeed returns the paginated community feed, newest first.
func (p *PostController) ListFeed(ctx *gin.Context) {
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))

	cacheKey := fmt.Sprintf("cache:feed:page=%d:size=%d", page, pageSize)
	if b, ok := utils.CacheGetBytes(cacheKey); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	var posts []models.Post
	var total int64

	query := p.db.Preload("User").Order("created_at DESC")
	if err := query.Model(&models.Post{}).Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50021, "failed to count posts")
		return
	}
	if err := query.Offset((page - 1) * pageSize).Limit(pageSize).Find(&posts).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50022, "failed to list posts")
		return
	}

	payload := gin.H{
		"items": p.postViews(posts),
		"pagination": gin.H{
			"page":        page,
			"page_size":   pageSize,
			"total":       total,
			"total_pages": int((total + int64(pageSize) - 1) / int64(pageSize)),
		},
	}
	wrapper := utils.JSONResponse{Code: 0, Message: "success", Data: payload}
	utils.CacheSetJSON(cacheKey, wrapper, time.Hour)
	utils.Success(ctx, payload)
}

// postViews maps posts to views with like and comment counts fetched in two
// grouped queries rather than one pair per post.
func (p *PostController) postViews(posts []models.Post) []gin.H {
	ids := make([]uint, 0, len(posts))
	for _, post := range posts {
		ids = append(ids, post.ID)
	}

	likeCounts := map[uint]int64{}
	commentCounts := map[uint]int64{}
	if len(ids) > 0 {
		type row struct {
			PostID uint
			N      int64
		}
		var rows []row
		if err := p.db.Model(&models.Like{}).Select("post_id, count(*) as n").Where("post_id IN ?", ids).Group("post_id").Scan(&rows).Error; err == nil {
			for _, r := range rows {
				likeCounts[r.PostID] = r.N
			}
		}
		rows = nil
		if err := p.db.Model(&models.Comment{}).Select("post_id, count(*) as n").Where("post_id IN ?", ids).Group("post_id").Scan(&rows).Error; err == nil {
			for _, r := range rows {
				commentCounts[r.PostID] = r.N
			}
		}
	}

	views := make([]gin.H, 0, len(posts))
	for _, post := range posts {
		views = append(views, postView(post, likeCounts[post.ID], commentCounts[post.ID]))
	}
	return views
}

// GetPost returns a single post with its comment tree.
func (p *PostController) GetPost(ctx *gin.Context) {
	postID := ctx.Param("id")

	if b, ok := utils.CacheGetBytes("cache:post:detail:" + postID); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	var post models.Post
	if err := p.db.Preload("User").First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40401, "post not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50023, "failed to load post")
		return
	}

	var likeCount int64
	_ = p.db.Model(&models.Like{}).Where("post_id = ?", post.ID).Count(&likeCount).Error
	var commentCount int64
	_ = p.db.Model(&models.Comment{}).Where("post_id = ?", post.ID).Count(&commentCount).Error

	comments, err := p.topLevelComments(post.ID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50024, "failed to load comments")
		return
	}

	view := postView(post, likeCount, commentCount)
	view["comments"] = comments

	payload := gin.H{"post": view}
	wrapper := utils.JSONResponse{Code: 0, Message: "success", Data: payload}
	utils.CacheSetJSON("cache:post:detail:"+postID, wrapper, time.Hour)
	utils.Success(ctx, payload)
}

// ListMyPosts returns posts created by the authenticated user.
func (p *PostController) ListMyPosts(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))
	var posts []models.Post
	var total int64
	q := p.db.Where("user_id = ?", userID).Preload("User").Order("created_at DESC")
	if err := q.Model(&models.Post{}).Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50027, "failed to count user posts")
		return
	}
	if err := q.Offset((page - 1) * pageSize).Limit(pageSize).Find(&posts).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50028, "failed to list user posts")
		return
	}
	utils.Success(ctx, gin.H{
		"items": p.postViews(posts),
		"pagination": gin.H{
			"page":        page,
			"page_size":   pageSize,
			"total":       total,
			"total_pages": int((total + int64(pageSize) - 1) / int64(pageSize)),
		},
	})
}

// UpdatePost allows the author to update their post.
func (p *PostController) UpdatePost(ctx *gin.Context) {
	var req struct {
		Title   string       `json:"title" binding:"required,min=1,max=255"`
		Content string       `json:"content" binding:"required"`
		Deed    *deedRequest `json:"deed"`
	}

	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40024, "invalid request payload")
		return
	}

	title := utils.SanitizeText(strings.TrimSpace(req.Title))
	if title == "" {
		utils.Error(ctx, http.StatusBadRequest, 40025, "title cannot be empty")
		return
	}

	postID := ctx.Param("id")
	var post models.Post
	if err := p.db.First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40403, "post not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50025, "failed to load post")
		return
	}

	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40111, "unauthorized")
		return
	}

	if post.UserID != userID {
		utils.Error(ctx, http.StatusForbidden, 40301, "you can only update your own posts")
		return
	}

	post.Title = title
	// An update without a deed object keeps the existing metadata marker.
	if req.Deed != nil {
		post.Content = buildContent(req.Content, req.Deed)
	} else if existing := deeds.Decode(post.Content); existing != nil {
		post.Content = deeds.Encode(*existing, utils.Sanitize(req.Content))
	} else {
		post.Content = utils.Sanitize(req.Content)
	}
	if err := p.db.Save(&post).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50026, "failed to update post")
		return
	}

	p.invalidatePostCaches(postID, post.UserID)
	post.User, _ = p.loadUser(post.UserID)
	utils.Success(ctx, gin.H{"post": postView(post, 0, 0)})
}

// DeletePost allows the author to delete their post.
func (p *PostController) DeletePost(ctx *gin.Context) {
	postID := ctx.Param("id")
	var post models.Post
	if err := p.db.First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40404, "post not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50027, "failed to load post")
		return
	}

	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40112, "unauthorized")
		return
	}

	if post.UserID != userID {
		utils.Error(ctx, http.StatusForbidden, 40302, "you can only delete your own posts")
		return
	}

	if err := p.db.Delete(&post).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50028, "failed to delete post")
		return
	}

	p.invalidatePostCaches(postID, post.UserID)
	utils.Success(ctx, gin.H{"message": "post deleted"})
}

// LikePost records a like. Liking twice is a no-op conflict.
func (p *PostController) LikePost(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40113, "unauthorized")
		return
	}

	postID := ctx.Param("id")
	var post models.Post
	if err := p.db.First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40405, "post not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50030, "failed to load post")
		return
	}

	var existing models.Like
	if err := p.db.Where("post_id = ? AND user_id = ?", post.ID, userID).First(&existing).Error; err == nil {
		utils.Error(ctx, http.StatusConflict, 40910, "post already liked")
		return
	}

	like := models.Like{PostID: post.ID, UserID: userID}
	if err := p.db.Create(&like).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50031, "failed to like post")
		return
	}

	p.invalidatePostCaches(postID, post.UserID)
	utils.Success(ctx, gin.H{"message": "post liked"})
}

// UnlikePost removes the caller's like from a post.
func (p *PostController) UnlikePost(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40113, "unauthorized")
		return
	}

	postID := ctx.Param("id")
	var post models.Post
	if err := p.db.First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40405, "post not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50030, "failed to load post")
		return
	}

	res := p.db.Where("post_id = ? AND user_id = ?", post.ID, userID).Delete(&models.Like{})
	if res.Error != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50032, "failed to unlike post")
		return
	}
	if res.RowsAffected == 0 {
		utils.Error(ctx, http.StatusNotFound, 40406, "like not found")
		return
	}

	p.invalidatePostCaches(postID, post.UserID)
	utils.Success(ctx, gin.H{"message": "post unliked"})
}

// GetLikes returns the like count and, for authenticated callers, whether
// they have liked the post.
func (p *PostController) GetLikes(ctx *gin.Context) {
	userID, authed := getUserID(ctx)

	postID := ctx.Param("id")
	var post models.Post
	if err := p.db.First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40405, "post not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50030, "failed to load post")
		return
	}

	var count int64
	if err := p.db.Model(&models.Like{}).Where("post_id = ?", post.ID).Count(&count).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50033, "failed to count likes")
		return
	}
	var mine int64
	if authed {
		_ = p.db.Model(&models.Like{}).Where("post_id = ? AND user_id = ?", post.ID, userID).Count(&mine).Error
	}

	utils.Success(ctx, gin.H{"count": count, "user_has_liked": mine > 0})
}

// topLevelComments loads a post's top-level comments with authors and one
// level of replies.
func (p *PostController) topLevelComments(postID uint) ([]models.Comment, error) {
	var comments []models.Comment
	err := p.db.
		Where("post_id = ? AND parent_id IS NULL", postID).
		Preload("User").
		Preload("Replies", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Replies.User").
		Order("created_at DESC").
		Find(&comments).Error
	return comments, err
}

// ListComments returns a post's comment tree.
func (p *PostController) ListComments(ctx *gin.Context) {
	postID := ctx.Param("id")
	var post models.Post
	if err := p.db.First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40402, "post not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50024, "failed to load post")
		return
	}

	comments, err := p.topLevelComments(post.ID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50040, "failed to list comments")
		return
	}
	utils.Success(ctx, gin.H{"comments": comments})
}

// GetCommentCount returns the total comment count for a post.
func (p *PostController) GetCommentCount(ctx *gin.Context) {
	postID := ctx.Param("id")
	var count int64
	if err := p.db.Model(&models.Comment{}).Where("post_id = ?", postID).Count(&count).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50041, "failed to count comments")
		return
	}
	utils.Success(ctx, gin.H{"count": count})
}

// CreateComment adds a comment or a reply to a top-level comment.
func (p *PostController) CreateComment(ctx *gin.Context) {
	var req struct {
		Content  string `json:"content" binding:"required"`
		ParentID *uint  `json:"parent_id"`
	}

	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40022, "invalid request payload")
		return
	}

	content := utils.Sanitize(req.Content)
	if strings.TrimSpace(content) == "" {
		utils.Error(ctx, http.StatusBadRequest, 40023, "content cannot be empty")
		return
	}

	postID := ctx.Param("id")
	var post models.Post
	if err := p.db.First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40402, "post not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50024, "failed to load post")
		return
	}

	if req.ParentID != nil {
		var parent models.Comment
		if err := p.db.First(&parent, *req.ParentID).Error; err != nil {
			utils.Error(ctx, http.StatusBadRequest, 40026, "invalid parent comment")
			return
		}
		// Replies stay one level deep and must belong to the same post.
		if parent.PostID != post.ID || parent.ParentID != nil {
			utils.Error(ctx, http.StatusBadRequest, 40026, "invalid parent comment")
			return
		}
	}

	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	comment := models.Comment{
		PostID:   post.ID,
		UserID:   userID,
		ParentID: req.ParentID,
		Content:  content,
	}

	if err := p.db.Create(&comment).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50025, "failed to create comment")
		return
	}

	if err := p.db.Preload("User").First(&comment, comment.ID).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50026, "failed to load comment")
		return
	}

	utils.InvalidateByPrefix("cache:post:detail:" + strconv.Itoa(int(post.ID)))
	utils.InvalidateByPrefix("cache:feed:")

	utils.Success(ctx, gin.H{"comment": comment})
}

// UpdateComment lets the comment author edit their comment.
func (p *PostController) UpdateComment(ctx *gin.Context) {
	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40022, "invalid request payload")
		return
	}
	content := utils.Sanitize(req.Content)
	if strings.TrimSpace(content) == "" {
		utils.Error(ctx, http.StatusBadRequest, 40023, "content cannot be empty")
		return
	}

	cid := strings.TrimSpace(ctx.Param("commentId"))
	var cmt models.Comment
	if err := p.db.First(&cmt, cid).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40420, "comment not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50070, "failed to load comment")
		return
	}

	uid, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40120, "unauthorized")
		return
	}
	// Only the author may edit, the post owner may only delete.
	if cmt.UserID != uid {
		utils.Error(ctx, http.StatusForbidden, 40321, "you can only edit your own comments")
		return
	}

	cmt.Content = content
	if err := p.db.Save(&cmt).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50072, "failed to update comment")
		return
	}

	utils.InvalidateByPrefix("cache:post:detail:" + strconv.Itoa(int(cmt.PostID)))
	utils.Success(ctx, gin.H{"comment": cmt})
}

// DeleteComment allows the comment author or the post owner to delete a comment.
func (p *PostController) DeleteComment(ctx *gin.Context) {
	cid := strings.TrimSpace(ctx.Param("commentId"))
	if cid == "" {
		utils.Error(ctx, http.StatusBadRequest, 40070, "missing comment id")
		return
	}
	var cmt models.Comment
	if err := p.db.First(&cmt, cid).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40420, "comment not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50070, "failed to load comment")
		return
	}

	uid, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40120, "unauthorized")
		return
	}

	var post models.Post
	if err := p.db.First(&post, cmt.PostID).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50070, "failed to load comment")
		return
	}
	if cmt.UserID != uid && post.UserID != uid {
		utils.Error(ctx, http.StatusForbidden, 40320, "you cannot delete this comment")
		return
	}

	// Drop replies along with a top-level comment.
	if cmt.ParentID == nil {
		_ = p.db.Where("parent_id = ?", cmt.ID).Delete(&models.Comment{}).Error
	}
	if err := p.db.Delete(&cmt).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50071, "failed to delete comment")
		return
	}

	utils.InvalidateByPrefix("cache:post:detail:" + strconv.Itoa(int(cmt.PostID)))
	utils.Success(ctx, gin.H{"message": "comment deleted"})
}

func parsePagination(pageStr, sizeStr string) (int, int) {
	page := 1
	pageSize := 10
	if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
		page = p
	}
	if s, err := strconv.Atoi(sizeStr); err == nil && s > 0 && s <= 100 {
		pageSize = s
	}
	return page, pageSize
}

func getUserID(ctx *gin.Context) (uint, bool) {
	value, exists := ctx.Get(middleware.ContextUserIDKey)
	if !exists {
		return 0, false
	}

	switch v := value.(type) {
	case uint:
		return v, true
	case int:
		return uint(v), true
	case int64:
		return uint(v), true
	case float64:
		return uint(v), true
	default:
		return 0, false
	}
}
