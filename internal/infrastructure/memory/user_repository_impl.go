// Package memory is the no-backend credential store used for demos and tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oksasatya/quiz-auth/internal/domain/entity"
	"github.com/oksasatya/quiz-auth/internal/domain/repository"
)

type UserRepository struct {
	mu      sync.RWMutex
	byEmail map[string]*entity.User
	byID    map[string]*entity.User
	now     func() time.Time
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		byEmail: make(map[string]*entity.User),
		byID:    make(map[string]*entity.User),
		now:     time.Now,
	}
}

func (r *UserRepository) Create(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byEmail[u.Email]; ok {
		return repository.ErrEmailTaken
	}
	u.ID = uuid.NewString()
	u.CreatedAt = r.now().UTC()
	stored := *u
	r.byEmail[stored.Email] = &stored
	r.byID[stored.ID] = &stored
	return nil
}

func (r *UserRepository) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byEmail[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *UserRepository) FindByID(_ context.Context, id string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *UserRepository) ListAll(_ context.Context) ([]entity.User, error) {
	r.mu.RLock()
	users := make([]entity.User, 0, len(r.byID))
	for _, u := range r.byID {
		cp := *u
		cp.PasswordHash = ""
		users = append(users, cp)
	}
	r.mu.RUnlock()

	sort.Slice(users, func(i, j int) bool {
		if users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].ID < users[j].ID
		}
		return users[i].CreatedAt.Before(users[j].CreatedAt)
	})
	return users, nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
