package repository

import (
	"context"
	"errors"

	"github.com/oksasatya/quiz-auth/internal/domain/entity"
)

var (
	ErrNotFound   = errors.New("user not found")
	ErrEmailTaken = errors.New("user already exists")
)

// UserRepository is the credential store. Emails passed in are already normalized.
//
// Create must check email uniqueness and insert as one indivisible step and
// return ErrEmailTaken on a duplicate. It fills in ID and CreatedAt.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	FindByID(ctx context.Context, id string) (*entity.User, error)
	Create(ctx context.Context, u *entity.User) error
	ListAll(ctx context.Context) ([]entity.User, error)
}
