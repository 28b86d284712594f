package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/quiz-auth/pkg/response"
)

const CtxUserIDKey = "userID"

// TokenVerifier resolves a bearer token to a user id.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// BearerToken extracts the token from "Authorization: Bearer <token>".
func BearerToken(c *gin.Context) string {
	h := strings.TrimSpace(c.GetHeader("Authorization"))
	if len(h) < 7 || !strings.EqualFold(h[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(h[7:])
}

// OptionalBearer sets userID when a valid bearer token is attached and lets
// every request through regardless.
func OptionalBearer(v TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tok := BearerToken(c); tok != "" {
			if uid, err := v.Verify(tok); err == nil {
				c.Set(CtxUserIDKey, uid)
			}
		}
		c.Next()
	}
}

// RequireBearer rejects requests without a valid bearer token.
func RequireBearer(v TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if uid := c.GetString(CtxUserIDKey); uid != "" {
			c.Next()
			return
		}
		tok := BearerToken(c)
		if tok == "" {
			response.Abort(c, http.StatusUnauthorized, "missing bearer token", nil)
			return
		}
		uid, err := v.Verify(tok)
		if err != nil {
			response.Abort(c, http.StatusUnauthorized, "invalid or expired token", nil)
			return
		}
		c.Set(CtxUserIDKey, uid)
		c.Next()
	}
}
