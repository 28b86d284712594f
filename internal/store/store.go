// Package store selects the credential store backend named by STORE_DRIVER.
package store

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/quiz-auth/config"
	repo "github.com/oksasatya/quiz-auth/internal/domain/repository"
	"github.com/oksasatya/quiz-auth/internal/infrastructure/memory"
	mongoinfra "github.com/oksasatya/quiz-auth/internal/infrastructure/mongo"
	pginfra "github.com/oksasatya/quiz-auth/internal/infrastructure/postgres"
)

// Open connects the configured backend and prepares its schema. The returned
// close func releases the connection.
func Open(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (repo.UserRepository, func(), error) {
	switch cfg.StoreDriver {
	case config.StoreMemory:
		logger.Warn("using in-memory credential store; accounts are lost on restart")
		return memory.NewUserRepository(), func() {}, nil

	case config.StoreMongo:
		client, err := mongoinfra.NewClient(ctx, cfg.MongoURI)
		if err != nil {
			return nil, nil, fmt.Errorf("connect mongo: %w", err)
		}
		closeFn := func() { _ = client.Disconnect(context.Background()) }
		users := mongoinfra.NewUserRepository(client.Database(cfg.MongoDatabase), cfg.MongoCollection)
		if err := users.EnsureIndexes(ctx); err != nil {
			closeFn()
			return nil, nil, err
		}
		logger.WithField("database", cfg.MongoDatabase).Info("mongo connected")
		return users, closeFn, nil

	case config.StorePostgres:
		pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := pginfra.RunMigrations(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("migrate: %w", err)
		}
		return pginfra.NewUserRepository(pool), pool.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}
