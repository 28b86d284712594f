package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/oksasatya/quiz-auth/config"
	"github.com/oksasatya/quiz-auth/internal/application"
	"github.com/oksasatya/quiz-auth/internal/domain/entity"
	repo "github.com/oksasatya/quiz-auth/internal/domain/repository"
	"github.com/oksasatya/quiz-auth/internal/store"
	"github.com/oksasatya/quiz-auth/pkg/helpers"
)

// demo accounts, one per portal
var seeds = []application.RegisterInput{
	{Name: "Demo Student", Email: "student@demo.test", Password: "student123", Role: entity.RoleStudent},
	{Name: "Demo Instructor", Email: "instructor@demo.test", Password: "instructor123", Role: entity.RoleInstructor},
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	users, closeStore, err := store.Open(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("failed to open %s credential store: %v", cfg.StoreDriver, err)
	}
	defer closeStore()

	svc := application.NewService(users, helpers.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL), nil, logger)
	for _, in := range seeds {
		res, err := svc.Register(ctx, in)
		switch {
		case errors.Is(err, repo.ErrEmailTaken):
			fmt.Printf("already seeded: email=%s\n", in.Email)
		case err != nil:
			log.Fatalf("failed to seed %s: %v", in.Email, err)
		default:
			fmt.Printf("seeded user: id=%s email=%s role=%s password=%s\n", res.User.ID, res.User.Email, res.User.Role, in.Password)
		}
	}
}
