package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

// RequestID tags each request with a UUID so access log lines can be
// correlated with application logs. An incoming id is kept as-is.
func RequestID() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		id := ctx.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		ctx.Writer.Header().Set(requestIDHeader, id)
		ctx.Set("request_id", id)
		ctx.Next()
	}
}
