package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"gorm.io/gorm"

	"github.com/goodkarma/goodkarma/config"
	"github.com/goodkarma/goodkarma/models"
	"github.com/goodkarma/goodkarma/utils"
)

// AuthController handles authentication related endpoints including local and Google sign-in.
type AuthController struct {
	db *gorm.DB
}

// NewAuthController creates an AuthController.
func NewAuthController(db *gorm.DB) *AuthController {
	return &AuthController{db: db}
}

// Register handles local account registration with bcrypt hashing.
func (a *AuthController) Register(ctx *gin.Context) {
	type request struct {
		Email    string `json:"email" binding:"required,email"`
		Name     string `json:"name" binding:"required,min=2,max=64"`
		Password string `json:"password" binding:"required,min=6,max=72"`
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40001, "invalid request payload")
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	var existing models.User
	if err := a.db.Where("email = ?", email).First(&existing).Error; err == nil {
		utils.Error(ctx, http.StatusConflict, 40901, "email already registered")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50001, "failed to hash password")
		return
	}

	user := models.User{
		Email:        email,
		Name:         strings.TrimSpace(req.Name),
		PasswordHash: hash,
	}
	if err := a.db.Create(&user).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50002, "failed to create user")
		return
	}

	token, err := utils.GenerateToken(user.ID, user.Email, 72*time.Hour)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50003, "failed to generate token")
		return
	}

	utils.Success(ctx, gin.H{
		"token": token,
		"user":  sanitizeUserResponse(user),
	})
}

// Login verifies user credentials and issues a JWT.
func (a *AuthController) Login(ctx *gin.Context) {
	type request struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40003, "invalid request payload")
		return
	}

	var user models.User
	if err := a.db.Where("email = ?", strings.ToLower(strings.TrimSpace(req.Email))).First(&user).Error; err != nil {
		utils.Error(ctx, http.StatusUnauthorized, 40106, "invalid email or password")
		return
	}

	if !utils.CheckPassword(user.PasswordHash, req.Password) {
		utils.Error(ctx, http.StatusUnauthorized, 40106, "invalid email or password")
		return
	}

	token, err := utils.GenerateToken(user.ID, user.Email, 72*time.Hour)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50004, "failed to generate token")
		return
	}

	utils.Success(ctx, gin.H{
		"token": token,
		"user":  sanitizeUserResponse(user),
	})
}

// Logout invalidates the token by blacklisting it until expiration.
func (a *AuthController) Logout(ctx *gin.Context) {
	authHeader := ctx.GetHeader("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 {
		utils.Error(ctx, http.StatusUnauthorized, 40107, "invalid authorization header")
		return
	}

	token := strings.TrimSpace(parts[1])
	claims, err := utils.ParseToken(token)
	if err != nil {
		utils.Error(ctx, http.StatusUnauthorized, 40105, "invalid token")
		return
	}

	expiresAt := time.Now().Add(72 * time.Hour)
	if claims.RegisteredClaims.ExpiresAt != nil {
		expiresAt = claims.RegisteredClaims.ExpiresAt.Time
	}

	utils.BlacklistToken(token, expiresAt)
	utils.Success(ctx, gin.H{"message": "logged out"})
}

// Me returns the current authenticated user's information.
func (a *AuthController) Me(ctx *gin.Context) {
	userID, exists := ctx.Get("user_id")
	if !exists {
		utils.Error(ctx, http.StatusUnauthorized, 40108, "unauthorized")
		return
	}

	var user models.User
	if err := a.db.First(&user, userID).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40401, "user not found")
		return
	}

	utils.Success(ctx, sanitizeUserResponse(user))
}

// UpdateProfile allows the authenticated user to update basic profile fields.
func (a *AuthController) UpdateProfile(ctx *gin.Context) {
	userID, exists := ctx.Get("user_id")
	if !exists {
		utils.Error(ctx, http.StatusUnauthorized, 40108, "unauthorized")
		return
	}

	var req struct {
		Name      string `json:"name"`
		AvatarURL string `json:"avatar_url"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40030, "invalid request payload")
		return
	}

	var user models.User
	if err := a.db.First(&user, userID).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40401, "user not found")
		return
	}

	if name := strings.TrimSpace(req.Name); name != "" {
		if len([]rune(name)) > 64 {
			rs := []rune(name)
			name = string(rs[:64])
		}
		user.Name = utils.SanitizeText(name)
	}
	if url := strings.TrimSpace(req.AvatarURL); url != "" {
		user.AvatarURL = url
	}

	if err := a.db.Save(&user).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50031, "failed to update profile")
		return
	}
	utils.InvalidateByPrefix("cache:user:public:" + strconv.Itoa(int(user.ID)))

	utils.Success(ctx, sanitizeUserResponse(user))
}

// GetUserPublic returns public user info by ID.
func (a *AuthController) GetUserPublic(ctx *gin.Context) {
	idStr := strings.TrimSpace(ctx.Param("id"))
	if idStr == "" {
		utils.Error(ctx, http.StatusBadRequest, 40050, "missing user id")
		return
	}
	if b, ok := utils.CacheGetBytes("cache:user:public:" + idStr); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}
	var user models.User
	if err := a.db.First(&user, idStr).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40410, "user not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50050, "failed to get user")
		return
	}
	payload := publicUserResponse(user)
	wrapper := utils.JSONResponse{Code: 0, Message: "success", Data: payload}
	utils.CacheSetJSON("cache:user:public:"+idStr, wrapper, time.Hour)
	utils.Success(ctx, payload)
}

// OAuthRedirect generates the Google authorization URL.
func (a *AuthController) OAuthRedirect(ctx *gin.Context) {
	cfg, err := a.oauthConfig(ctx.Param("provider"))
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40004, err.Error())
		return
	}

	state := uuid.NewString()
	utils.SaveState(state, 10*time.Minute)

	url := cfg.AuthCodeURL(state, oauth2.AccessTypeOffline)
	utils.Success(ctx, gin.H{"authorization_url": url, "state": state})
}

// OAuthCallback exchanges the authorization code for a user identity and issues a JWT.
func (a *AuthController) OAuthCallback(ctx *gin.Context) {
	provider := ctx.Param("provider")
	code := ctx.Query("code")
	state := ctx.Query("state")

	if code == "" || state == "" {
		utils.Error(ctx, http.StatusBadRequest, 40005, "missing code or state")
		return
	}

	if !utils.ConsumeState(state) {
		utils.Error(ctx, http.StatusBadRequest, 40006, "invalid or expired state")
		return
	}

	cfg, err := a.oauthConfig(provider)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40004, err.Error())
		return
	}

	token, err := cfg.Exchange(context.Background(), code)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40007, "failed to exchange code")
		return
	}

	userInfo, err := fetchGoogleUser(token)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50005, err.Error())
		return
	}

	user, err := a.findOrCreateOAuthUser(provider, userInfo)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50006, "failed to persist user")
		return
	}

	jwtToken, err := utils.GenerateToken(user.ID, user.Email, 72*time.Hour)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50004, "failed to generate token")
		return
	}

	utils.Success(ctx, gin.H{"token": jwtToken, "user": sanitizeUserResponse(*user)})
}

func (a *AuthController) oauthConfig(provider string) (*oauth2.Config, error) {
	cfg := config.Get()
	switch strings.ToLower(provider) {
	case "google":
		if cfg.GoogleClientID == "" || cfg.GoogleClientSecret == "" {
			return nil, fmt.Errorf("google oauth not configured")
		}
		return &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  fmt.Sprintf("%s/api/v1/auth/oauth/google/callback", cfg.OAuthRedirectBase),
			Scopes:       []string{"openid", "profile", "email"},
			Endpoint:     google.Endpoint,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
}

type oauthUser struct {
	ID          string
	DisplayName string
	Email       string
	AvatarURL   string
}

func (a *AuthController) findOrCreateOAuthUser(provider string, data *oauthUser) (*models.User, error) {
	var user models.User
	err := a.db.Where("provider = ? AND provider_id = ?", provider, data.ID).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			user = models.User{
				Email:      strings.ToLower(strings.TrimSpace(data.Email)),
				Name:       fallback(data.DisplayName, data.Email),
				Provider:   provider,
				ProviderID: data.ID,
				AvatarURL:  data.AvatarURL,
			}
			if err := a.db.Create(&user).Error; err != nil {
				return nil, err
			}
		} else {
			return nil, err
		}
	} else {
		updates := map[string]interface{}{
			"name":       fallback(data.DisplayName, user.Name),
			"avatar_url": data.AvatarURL,
		}
		_ = a.db.Model(&user).Updates(updates)
	}

	return &user, nil
}

func fetchGoogleUser(token *oauth2.Token) (*oauthUser, error) {
	req, _ := http.NewRequest("GET", "https://www.googleapis.com/oauth2/v2/userinfo", nil)
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token.AccessToken))

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google user info request failed: %s", resp.Status)
	}

	var payload struct {
		ID      string `json:"id"`
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}

	return &oauthUser{
		ID:          payload.ID,
		DisplayName: payload.Name,
		Email:       payload.Email,
		AvatarURL:   payload.Picture,
	}, nil
}

func fallback(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func sanitizeUserResponse(user models.User) gin.H {
	return gin.H{
		"id":         user.ID,
		"email":      user.Email,
		"name":       user.Name,
		"provider":   user.Provider,
		"avatar_url": user.AvatarURL,
		"created_at": user.CreatedAt,
	}
}

// publicUserResponse omits the email for unauthenticated consumers.
func publicUserResponse(user models.User) gin.H {
	return gin.H{
		"id":         user.ID,
		"name":       user.Name,
		"avatar_url": user.AvatarURL,
		"created_at": user.CreatedAt,
	}
}
