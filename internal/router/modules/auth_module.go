package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/quiz-auth/config"
	handlers "github.com/oksasatya/quiz-auth/internal/interface/http"
	"github.com/oksasatya/quiz-auth/internal/interface/middleware"
)

// AuthLimits are per-IP requests per minute for the public auth endpoints.
type AuthLimits struct {
	Login         int
	Register      int
	BypassPrivate bool
}

// AuthModule wires the auth endpoints:
// Public: POST /auth/register, POST /auth/login
// Listing: GET /auth/users, gated by USERS_LISTING
// Bearer: GET /auth/me
type AuthModule struct {
	Handler *handlers.AuthHandler
	JWT     middleware.TokenVerifier
	Redis   *redis.Client
	Limits  AuthLimits
	Listing string
}

func NewAuthModule(h *handlers.AuthHandler, jwt middleware.TokenVerifier, rdb *redis.Client, limits AuthLimits, listing string) *AuthModule {
	return &AuthModule{Handler: h, JWT: jwt, Redis: rdb, Limits: limits, Listing: listing}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	var allow middleware.AllowFunc
	if m.Limits.BypassPrivate {
		allow = middleware.AllowPrivateIP()
	}
	loginLimiter := middleware.RateLimit(m.Redis, m.Limits.Login, time.Minute, middleware.KeyByIPAndPath(), allow)
	registerLimiter := middleware.RateLimit(m.Redis, m.Limits.Register, time.Minute, middleware.KeyByIPAndPath(), allow)

	auth := rg.Group("/auth")
	auth.POST("/register", registerLimiter, m.Handler.Register)
	auth.POST("/login", loginLimiter, m.Handler.Login)
	auth.GET("/me", middleware.RequireBearer(m.JWT), m.Handler.Me)

	switch m.Listing {
	case config.ListingDisabled:
		// left unregistered so it falls through to the 404 handler
	case config.ListingAuthenticated:
		auth.GET("/users", middleware.RequireBearer(m.JWT), m.Handler.ListUsers)
	default:
		auth.GET("/users", m.Handler.ListUsers)
	}
}
