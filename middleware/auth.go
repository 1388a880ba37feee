package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/goodkarma/goodkarma/utils"
)

const (
	// ContextUserIDKey is the key used to store authenticated user ID in Gin context.
	ContextUserIDKey = "user_id"
	// ContextEmailKey stores the email inside Gin context.
	ContextEmailKey = "email"
)

// AuthRequired ensures the request is authenticated via JWT.
func AuthRequired() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		authHeader := ctx.GetHeader("Authorization")
		if authHeader == "" {
			utils.Error(ctx, http.StatusUnauthorized, 40101, "authorization header missing")
			ctx.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			utils.Error(ctx, http.StatusUnauthorized, 40102, "invalid authorization header format")
			ctx.Abort()
			return
		}

		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			utils.Error(ctx, http.StatusUnauthorized, 40103, "empty bearer token")
			ctx.Abort()
			return
		}

		if utils.IsTokenBlacklisted(tokenString) {
			utils.Error(ctx, http.StatusUnauthorized, 40104, "token revoked")
			ctx.Abort()
			return
		}

		claims, err := utils.ParseToken(tokenString)
		if err != nil {
			utils.Error(ctx, http.StatusUnauthorized, 40105, "invalid token")
			ctx.Abort()
			return
		}

		ctx.Set(ContextUserIDKey, claims.UserID)
		ctx.Set(ContextEmailKey, claims.Email)
		ctx.Next()
	}
}

// AuthOptional resolves the caller identity when a valid bearer token is
// present, but never rejects the request. Handlers that personalize public
// data use it.
func AuthOptional() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		authHeader := ctx.GetHeader("Authorization")
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			ctx.Next()
			return
		}
		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" || utils.IsTokenBlacklisted(tokenString) {
			ctx.Next()
			return
		}
		claims, err := utils.ParseToken(tokenString)
		if err != nil {
			ctx.Next()
			return
		}
		ctx.Set(ContextUserIDKey, claims.UserID)
		ctx.Set(ContextEmailKey, claims.Email)
		ctx.Next()
	}
}
