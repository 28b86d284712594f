package router

import (
	"github.com/oksasatya/quiz-auth/config"
	authapp "github.com/oksasatya/quiz-auth/internal/application"
	"github.com/oksasatya/quiz-auth/internal/container"
	handlers "github.com/oksasatya/quiz-auth/internal/interface/http"
	"github.com/oksasatya/quiz-auth/internal/interface/middleware"
	"github.com/oksasatya/quiz-auth/internal/router/modules"
	"github.com/oksasatya/quiz-auth/pkg/helpers"
)

// InitModules wires every module from the container. Call once at startup,
// before RegisterAll.
func InitModules(r *Registry, c *container.Container) {
	svc := authapp.NewService(c.Users, c.JWT, c.Notifier, c.Logger)
	if c.Config.BcryptCost > 0 {
		svc.Hasher = helpers.NewPasswordHasher(c.Config.BcryptCost)
	}
	authHandler := handlers.NewAuthHandler(svc, c.Logger)

	r.Use(middleware.OptionalBearer(c.JWT))

	r.Add(modules.NewHealthModule())
	r.Add(modules.NewAuthModule(authHandler, c.JWT, c.Redis, modules.AuthLimits{
		Login:         c.Config.LoginRateLimit,
		Register:      c.Config.RegisterRateLimit,
		BypassPrivate: c.Config.Env == "development",
	}, c.Config.UsersListing))

	if c.Config.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule(c.Redis))
	}

	if c.Config.InsecureJWTSecret() && c.Logger != nil {
		c.Logger.WithField("env", c.Config.Env).Warn("JWT_SECRET is not set; tokens are signed with the built-in development secret")
	}
	if c.Config.UsersListing == config.ListingPublic && c.Logger != nil {
		c.Logger.Warn("GET /api/auth/users is public (USERS_LISTING=public); every account is listable without a token")
	}
}
