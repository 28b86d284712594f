package application

import (
	"context"
	"errors"
	"expvar"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/oksasatya/quiz-auth/internal/domain/entity"
	repo "github.com/oksasatya/quiz-auth/internal/domain/repository"
	"github.com/oksasatya/quiz-auth/pkg/helpers"
)

var (
	// ErrInvalidCredentials is returned for an unknown email and for a wrong
	// password alike so callers cannot tell which check failed.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrMissingFields      = errors.New("missing required fields")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrInvalidRole        = errors.New("role must be Student or Instructor")
	ErrPasswordTooLong    = errors.New("password must be at most 72 bytes")
)

var metrics = expvar.NewMap("auth")

// Metrics returns the auth counters: registrations, logins, logins_failed.
func Metrics() *expvar.Map { return metrics }

// TokenIssuer is satisfied by helpers.JWTManager.
type TokenIssuer interface {
	Issue(userID string) (string, time.Time, error)
	Verify(token string) (string, error)
}

// RegistrationNotifier is told about every new account. Failures are logged only.
type RegistrationNotifier interface {
	UserRegistered(ctx context.Context, u entity.PublicUser) error
}

type Service struct {
	Repo     repo.UserRepository
	Tokens   TokenIssuer
	Notifier RegistrationNotifier
	Hasher   *helpers.PasswordHasher
	Logger   *logrus.Logger
	validate *validator.Validate
}

func NewService(repo repo.UserRepository, tokens TokenIssuer, notifier RegistrationNotifier, logger *logrus.Logger) *Service {
	return &Service{
		Repo:     repo,
		Tokens:   tokens,
		Notifier: notifier,
		Hasher:   helpers.NewPasswordHasher(bcrypt.DefaultCost),
		Logger:   logger,
		validate: validator.New(),
	}
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     entity.Role
}

// AuthResult is what register and login hand back to the client.
type AuthResult struct {
	Token     string            `json:"token"`
	ExpiresAt time.Time         `json:"-"`
	User      entity.PublicUser `json:"user"`
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	name := strings.TrimSpace(in.Name)
	email := entity.NormalizeEmail(in.Email)
	if name == "" || email == "" || in.Password == "" || in.Role == "" {
		return nil, ErrMissingFields
	}
	if err := s.validate.Var(email, "email"); err != nil {
		return nil, ErrInvalidEmail
	}
	if !in.Role.Valid() {
		return nil, ErrInvalidRole
	}

	u, err := s.createUser(ctx, name, email, in.Password, in.Role)
	if err != nil {
		if errors.Is(err, repo.ErrEmailTaken) {
			s.log().WithField("email", email).Info("registration rejected: email taken")
		}
		return nil, err
	}
	metrics.Add("registrations", 1)
	s.log().WithFields(logrus.Fields{"user_id": u.ID, "role": u.Role}).Info("user registered")

	res, err := s.issue(u)
	if err != nil {
		return nil, err
	}
	s.notifyRegistered(ctx, res.User)
	return res, nil
}

// createUser hashes the password and inserts the record; the store enforces
// email uniqueness atomically.
func (s *Service) createUser(ctx context.Context, name, email, password string, role entity.Role) (*entity.User, error) {
	hash, err := s.Hasher.Hash(password)
	if errors.Is(err, helpers.ErrPasswordTooLong) {
		return nil, ErrPasswordTooLong
	}
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &entity.User{Name: name, Email: email, PasswordHash: hash, Role: role}
	if err := s.Repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = entity.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, ErrMissingFields
	}

	u, err := s.Repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			s.Hasher.Burn(password)
			metrics.Add("logins_failed", 1)
			s.log().WithField("email", email).Info("login failed: user not found")
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !s.Hasher.Matches(u.PasswordHash, password) {
		metrics.Add("logins_failed", 1)
		s.log().WithField("email", email).Info("login failed: invalid password")
		return nil, ErrInvalidCredentials
	}

	metrics.Add("logins", 1)
	return s.issue(u)
}

// ListUsers returns every account's public fields.
func (s *Service) ListUsers(ctx context.Context) ([]entity.PublicUser, error) {
	users, err := s.Repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]entity.PublicUser, 0, len(users))
	for i := range users {
		out = append(out, users[i].Public())
	}
	return out, nil
}

// Whoami resolves a bearer token to the user it was issued for.
func (s *Service) Whoami(ctx context.Context, token string) (*entity.PublicUser, error) {
	uid, err := s.Tokens.Verify(token)
	if err != nil {
		return nil, err
	}
	u, err := s.Repo.FindByID(ctx, uid)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, helpers.ErrInvalidToken
		}
		return nil, err
	}
	pub := u.Public()
	return &pub, nil
}

func (s *Service) issue(u *entity.User) (*AuthResult, error) {
	token, exp, err := s.Tokens.Issue(u.ID)
	if err != nil {
		s.log().WithError(err).WithField("user_id", u.ID).Error("issue token failed")
		return nil, err
	}
	return &AuthResult{Token: token, ExpiresAt: exp, User: u.Public()}, nil
}

func (s *Service) notifyRegistered(ctx context.Context, u entity.PublicUser) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.UserRegistered(ctx, u); err != nil {
		s.log().WithError(err).WithField("user_id", u.ID).Warn("welcome email not enqueued")
	}
}

func (s *Service) log() logrus.FieldLogger {
	if s.Logger == nil {
		return logrus.StandardLogger()
	}
	return s.Logger
}
