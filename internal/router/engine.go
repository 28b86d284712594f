package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/quiz-auth/config"
	"github.com/oksasatya/quiz-auth/internal/container"
	handlers "github.com/oksasatya/quiz-auth/internal/interface/http"
	"github.com/oksasatya/quiz-auth/internal/interface/middleware"
	"github.com/oksasatya/quiz-auth/pkg/validation"
)

// NewEngine builds the gin engine with global middleware and all modules.
func NewEngine(c *container.Container) *gin.Engine {
	validation.Init()

	r := gin.New()
	if err := r.SetTrustedProxies(c.Config.TrustedProxyList()); err != nil {
		if c.Logger != nil {
			c.Logger.WithError(err).Warn("invalid TRUSTED_PROXIES; trusting no proxy")
		}
		_ = r.SetTrustedProxies(nil)
	}
	if c.Config.TrustedPlatform == config.PlatformCloudflare {
		r.TrustedPlatform = gin.PlatformCloudflare
	}
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.RealIP())
	if origins := c.Config.CORSOrigins(); len(origins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     origins,
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}
	if c.Config.Env == "development" || c.Config.HTTPLogEnabled {
		r.Use(gin.Logger())
	}

	reg := NewRegistry(r, "/api")
	InitModules(reg, c)
	for _, rt := range reg.RegisterAll() {
		if c.Logger != nil {
			c.Logger.WithFields(logrus.Fields{"method": rt.Method, "path": rt.Path}).Debug("route")
		}
	}

	r.NoRoute(handlers.NotFound)
	return r
}
