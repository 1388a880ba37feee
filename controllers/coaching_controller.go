package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/goodkarma/goodkarma/coaching"
	"github.com/goodkarma/goodkarma/models"
	"github.com/goodkarma/goodkarma/utils"
)

// AdviceService is the slice of the life-coach client the controller needs.
// Tests substitute a stub.
type AdviceService interface {
	GetLifeAdvice(ctx context.Context, body map[string]any) (map[string]any, error)
	UpdateProgress(ctx context.Context, body map[string]any) (map[string]any, error)
}

// CoachingController manages per-user coaching records and the budgeted
// calls to the external life-coach service.
type CoachingController struct {
	db    *gorm.DB
	coach AdviceService
	// locks serializes check-and-spend per user so concurrent requests
	// cannot double-spend the monthly budget.
	locks *utils.KeyedMutex
	now   func() time.Time
}

// NewCoachingController creates a CoachingController.
func NewCoachingController(db *gorm.DB, coach AdviceService) *CoachingController {
	return &CoachingController{
		db:    db,
		coach: coach,
		locks: utils.NewKeyedMutex(),
		now:   time.Now,
	}
}

// authorizeOwner parses the :id path parameter and verifies it matches the
// authenticated user. Coaching data is never visible to other users.
func (c *CoachingController) authorizeOwner(ctx *gin.Context) (uint, bool) {
	callerID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40140, "unauthorized")
		return 0, false
	}
	targetID, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40090, "invalid user id")
		return 0, false
	}
	if uint(targetID) != callerID {
		utils.Error(ctx, http.StatusForbidden, 40340, "unauthorized access to coaching data")
		return 0, false
	}
	return callerID, true
}

// loadRecord fetches the coaching record, returning nil when none exists.
func (c *CoachingController) loadRecord(userID uint) (*models.CoachingData, error) {
	var rec models.CoachingData
	err := c.db.Where("user_id = ?", userID).First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

func parseDoc(s string) map[string]any {
	if s == "" {
		return nil
	}
	var out map[string]any
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil
	}
	return out
}

func parseList(s string) []any {
	if s == "" {
		return nil
	}
	var out []any
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil
	}
	return out
}

func marshalDoc(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

func coachingView(rec *models.CoachingData) gin.H {
	return gin.H{
		"user_id":                       rec.UserID,
		"user_profile":                  parseDoc(rec.UserProfile),
		"goals":                         parseList(rec.Goals),
		"advice":                        parseDoc(rec.Advice),
		"progress":                      parseDoc(rec.Progress),
		"advice_call_used_this_month":   rec.AdviceCallUsedThisMonth,
		"last_advice_call_date":         rec.LastAdviceCallDate,
		"progress_call_used_this_month": rec.ProgressCallUsedThisMonth,
		"last_progress_call_date":       rec.LastProgressCallDate,
		"updated_at":                    rec.UpdatedAt,
	}
}

func coachingCacheKey(userID uint) string {
	return "cache:coaching:" + strconv.FormatUint(uint64(userID), 10)
}

// GetCoaching returns the caller's coaching record, or a default-shaped
// record when none exists yet. The key is per-user so the owner-only check
// above makes the cached copy safe to serve.
func (c *CoachingController) GetCoaching(ctx *gin.Context) {
	userID, ok := c.authorizeOwner(ctx)
	if !ok {
		return
	}

	if b, ok := utils.CacheGetBytes(coachingCacheKey(userID)); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	rec, err := c.loadRecord(userID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50090, "failed to retrieve coaching data")
		return
	}
	payload := gin.H{"user_id": userID}
	if rec != nil {
		payload = coachingView(rec)
	}
	wrapper := utils.JSONResponse{Code: 0, Message: "success", Data: payload}
	utils.CacheSetJSON(coachingCacheKey(userID), wrapper, 10*time.Minute)
	utils.Success(ctx, payload)
}

// UpsertCoaching creates or updates the caller's coaching record. Supplying
// advice or progress marks that call kind used; when the stored last-call
// month differs from the current month, the flag is recomputed from this
// very write instead.
func (c *CoachingController) UpsertCoaching(ctx *gin.Context) {
	userID, ok := c.authorizeOwner(ctx)
	if !ok {
		return
	}

	var req struct {
		UserProfile json.RawMessage `json:"userProfile"`
		Goals       json.RawMessage `json:"goals"`
		Advice      json.RawMessage `json:"advice"`
		Progress    json.RawMessage `json:"progress"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40091, "invalid request payload")
		return
	}

	c.locks.Lock(userID)
	defer c.locks.Unlock(userID)

	rec, err := c.loadRecord(userID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50091, "failed to retrieve coaching data")
		return
	}
	if rec == nil {
		rec = &models.CoachingData{UserID: userID}
	}

	now := c.now()
	adviceState := coaching.CallState{UsedThisMonth: rec.AdviceCallUsedThisMonth, LastCall: rec.LastAdviceCallDate}
	progressState := coaching.CallState{UsedThisMonth: rec.ProgressCallUsedThisMonth, LastCall: rec.LastProgressCallDate}

	if len(req.UserProfile) > 0 {
		rec.UserProfile = string(req.UserProfile)
	}
	if len(req.Goals) > 0 {
		rec.Goals = string(req.Goals)
	}
	rec.AdviceCallUsedThisMonth = coaching.FlagAfterWrite(adviceState, len(req.Advice) > 0, now)
	if len(req.Advice) > 0 {
		rec.Advice = string(req.Advice)
		rec.LastAdviceCallDate = &now
	}
	rec.ProgressCallUsedThisMonth = coaching.FlagAfterWrite(progressState, len(req.Progress) > 0, now)
	if len(req.Progress) > 0 {
		rec.Progress = string(req.Progress)
		rec.LastProgressCallDate = &now
	}

	if err := c.db.Save(rec).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50092, "failed to update coaching data")
		return
	}

	utils.InvalidateByPrefix(coachingCacheKey(userID))
	utils.Success(ctx, coachingView(rec))
}

// GetAPIStatus projects the monthly budget state without mutating it.
func (c *CoachingController) GetAPIStatus(ctx *gin.Context) {
	userID, ok := c.authorizeOwner(ctx)
	if !ok {
		return
	}

	rec, err := c.loadRecord(userID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50093, "failed to retrieve coaching data")
		return
	}

	var advice, progress coaching.CallState
	if rec != nil {
		advice = coaching.CallState{UsedThisMonth: rec.AdviceCallUsedThisMonth, LastCall: rec.LastAdviceCallDate}
		progress = coaching.CallState{UsedThisMonth: rec.ProgressCallUsedThisMonth, LastCall: rec.LastProgressCallDate}
	}
	utils.Success(ctx, coaching.APIStatus(advice, progress, c.now()))
}

// postContents loads a user's post bodies for profile derivation.
func (c *CoachingController) postContents(userID uint) ([]string, error) {
	var posts []models.Post
	if err := c.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&posts).Error; err != nil {
		return nil, err
	}
	contents := make([]string, 0, len(posts))
	for _, p := range posts {
		contents = append(contents, p.Content)
	}
	return contents, nil
}

// RequestAdvice performs the budgeted advice call: derive the profile from
// the user's posts, override with the request body, call the external
// service, persist the advice and mark the budget spent.
func (c *CoachingController) RequestAdvice(ctx *gin.Context) {
	userID, ok := c.authorizeOwner(ctx)
	if !ok {
		return
	}

	var override map[string]any
	if err := ctx.ShouldBindJSON(&override); err != nil {
		// An empty body is fine; the profile derives entirely from posts.
		override = map[string]any{}
	}

	c.locks.Lock(userID)
	defer c.locks.Unlock(userID)

	rec, err := c.loadRecord(userID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50094, "failed to retrieve coaching data")
		return
	}

	now := c.now()
	if rec != nil && rec.AdviceCallUsedThisMonth {
		state := coaching.CallState{UsedThisMonth: true, LastCall: rec.LastAdviceCallDate}
		if !coaching.CanCall(state, now) {
			utils.Respond(ctx, http.StatusTooManyRequests, 42940,
				"monthly advice call already used",
				gin.H{"next_reset_date": coaching.NextResetDate(now)})
			return
		}
	}

	// A request without explicit profile fields falls back to the stored
	// record.
	if rec != nil {
		if _, ok := override["userProfile"]; !ok && rec.UserProfile != "" {
			if doc := parseDoc(rec.UserProfile); doc != nil {
				if up, ok := doc["userProfile"]; ok {
					override["userProfile"] = up
				} else {
					override["userProfile"] = doc
				}
			}
		}
		if _, ok := override["goals"]; !ok && rec.Goals != "" {
			if goals := parseList(rec.Goals); goals != nil {
				override["goals"] = goals
			}
		}
	}

	contents, err := c.postContents(userID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50095, "failed to load posts")
		return
	}

	request := coaching.FormatAdviceRequest(override, contents)

	raw, err := c.coach.GetLifeAdvice(ctx.Request.Context(), request)
	if err != nil {
		utils.Sugar.Errorw("life coach call failed",
			"operation", "getLifeAdvice", "user_id", userID, "request", request, "error", err)
		utils.Error(ctx, http.StatusBadGateway, 50240, "failed to get coaching advice")
		return
	}
	result := coaching.ParseResponse(raw)
	if result == nil {
		utils.Error(ctx, http.StatusBadGateway, 50241, "failed to get coaching advice")
		return
	}

	if rec == nil {
		rec = &models.CoachingData{UserID: userID}
	}
	rec.UserProfile = marshalDoc(request)
	rec.Advice = marshalDoc(result)
	rec.AdviceCallUsedThisMonth = true
	rec.LastAdviceCallDate = &now
	if err := c.db.Save(rec).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50096, "failed to persist coaching advice")
		return
	}
	utils.InvalidateByPrefix(coachingCacheKey(userID))

	adviceState := coaching.CallState{UsedThisMonth: true, LastCall: rec.LastAdviceCallDate}
	progressState := coaching.CallState{UsedThisMonth: rec.ProgressCallUsedThisMonth, LastCall: rec.LastProgressCallDate}
	utils.Success(ctx, gin.H{
		"advice":     result,
		"insights":   coaching.ExtractInsights(result),
		"api_status": coaching.APIStatus(adviceState, progressState, now),
	})
}

// GetProgress returns the stored progress assessment.
func (c *CoachingController) GetProgress(ctx *gin.Context) {
	userID, ok := c.authorizeOwner(ctx)
	if !ok {
		return
	}

	rec, err := c.loadRecord(userID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50097, "failed to retrieve coaching data")
		return
	}
	if rec == nil {
		utils.Success(ctx, gin.H{"progress": nil})
		return
	}
	utils.Success(ctx, gin.H{"progress": parseDoc(rec.Progress)})
}

// UpdateProgress performs the budgeted progress call: format the update
// against the stored profile, call the external service, merge the result
// into the stored advice and persist both.
func (c *CoachingController) UpdateProgress(ctx *gin.Context) {
	userID, ok := c.authorizeOwner(ctx)
	if !ok {
		return
	}

	var input map[string]any
	if err := ctx.ShouldBindJSON(&input); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40092, "invalid request payload")
		return
	}

	c.locks.Lock(userID)
	defer c.locks.Unlock(userID)

	rec, err := c.loadRecord(userID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50098, "failed to retrieve coaching data")
		return
	}
	if rec == nil || rec.UserProfile == "" {
		utils.Error(ctx, http.StatusBadRequest, 40093, "No coaching profile found. Please set up coaching first.")
		return
	}

	now := c.now()
	if rec.ProgressCallUsedThisMonth {
		state := coaching.CallState{UsedThisMonth: true, LastCall: rec.LastProgressCallDate}
		if !coaching.CanCall(state, now) {
			utils.Respond(ctx, http.StatusTooManyRequests, 42941,
				"monthly progress call already used",
				gin.H{"next_reset_date": coaching.NextResetDate(now)})
			return
		}
	}

	storedProfile := parseDoc(rec.UserProfile)
	if storedProfile == nil {
		storedProfile = map[string]any{}
	}
	request := coaching.FormatProgressRequest(input, storedProfile)

	raw, err := c.coach.UpdateProgress(ctx.Request.Context(), request)
	if err != nil {
		utils.Sugar.Errorw("life coach call failed",
			"operation", "updateProgress", "user_id", userID, "request", request, "error", err)
		utils.Error(ctx, http.StatusBadGateway, 50242, "failed to update coaching progress")
		return
	}
	result := coaching.ParseResponse(raw)
	if result == nil {
		utils.Error(ctx, http.StatusBadGateway, 50243, "failed to update coaching progress")
		return
	}

	merged := coaching.MergeProgressIntoAdvice(result, parseDoc(rec.Advice))

	rec.Progress = marshalDoc(result)
	rec.Advice = marshalDoc(merged)
	rec.ProgressCallUsedThisMonth = true
	rec.LastProgressCallDate = &now
	if err := c.db.Save(rec).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50099, "failed to persist coaching progress")
		return
	}
	utils.InvalidateByPrefix(coachingCacheKey(userID))

	adviceState := coaching.CallState{UsedThisMonth: rec.AdviceCallUsedThisMonth, LastCall: rec.LastAdviceCallDate}
	progressState := coaching.CallState{UsedThisMonth: true, LastCall: rec.LastProgressCallDate}
	utils.Success(ctx, gin.H{
		"progress":   result,
		"advice":     merged,
		"api_status": coaching.APIStatus(adviceState, progressState, now),
	})
}
