package container

import (
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/quiz-auth/config"
	"github.com/oksasatya/quiz-auth/internal/application"
	repo "github.com/oksasatya/quiz-auth/internal/domain/repository"
	"github.com/oksasatya/quiz-auth/pkg/helpers"
)

// Container carries the infra singletons built in main so the router can
// wire modules from them. Redis and Notifier may be nil.
type Container struct {
	Config   *config.Config
	Logger   *logrus.Logger
	Users    repo.UserRepository
	JWT      *helpers.JWTManager
	Redis    *redis.Client
	Notifier application.RegistrationNotifier
}
