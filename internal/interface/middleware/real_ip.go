package middleware

import (
	"github.com/gin-gonic/gin"
)

// RealIP sets the client IP into Gin context (key: "real_ip").
// Forwarding headers only count when the engine trusts the peer
// (SetTrustedProxies) or a TrustedPlatform header is configured; otherwise
// this is the TCP peer address.
func RealIP() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("real_ip", c.ClientIP())
		c.Next()
	}
}
