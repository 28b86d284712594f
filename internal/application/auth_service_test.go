package application

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/oksasatya/quiz-auth/internal/domain/entity"
	"github.com/oksasatya/quiz-auth/internal/domain/repository"
	"github.com/oksasatya/quiz-auth/internal/infrastructure/memory"
	"github.com/oksasatya/quiz-auth/pkg/helpers"
)

type fakeNotifier struct {
	got []entity.PublicUser
	err error
}

func (f *fakeNotifier) UserRegistered(_ context.Context, u entity.PublicUser) error {
	f.got = append(f.got, u)
	return f.err
}

type failingRepo struct {
	repository.UserRepository
	err error
}

func (f failingRepo) FindByEmail(context.Context, string) (*entity.User, error) { return nil, f.err }
func (f failingRepo) Create(context.Context, *entity.User) error { return f.err }
func (f failingRepo) ListAll(context.Context) ([]entity.User, error) { return nil, f.err }

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newTestService(t *testing.T) (*Service, *fakeNotifier) {
	t.Helper()
	n := &fakeNotifier{}
	s := NewService(memory.NewUserRepository(), helpers.NewJWTManager("test-secret", 24*time.Hour), n, quietLogger())
	s.Hasher = helpers.NewPasswordHasher(bcrypt.MinCost)
	return s, n
}

func ann() RegisterInput {
	return RegisterInput{Name: "Ann", Email: "ANN@X.com", Password: "secret1", Role: entity.RoleStudent}
}

func TestRegister_NormalizesEmailAndLogsIn(t *testing.T) {
	ctx := context.Background()
	s, n := newTestService(t)

	reg, err := s.Register(ctx, ann())
	require.NoError(t, err)
	assert.Equal(t, "ann@x.com", reg.User.Email)
	assert.Equal(t, entity.RoleStudent, reg.User.Role)
	assert.NotEmpty(t, reg.Token)

	stored, err := s.Repo.FindByEmail(ctx, "ann@x.com")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", stored.PasswordHash)

	login, err := s.Login(ctx, "ann@x.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, login.User.ID)

	uid, err := s.Tokens.Verify(login.Token)
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, uid)

	require.Len(t, n.got, 1)
	assert.Equal(t, reg.User.ID, n.got[0].ID)
}

func TestRegister_DuplicateEmailCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	s, n := newTestService(t)

	_, err := s.Register(ctx, ann())
	require.NoError(t, err)

	_, err = s.Register(ctx, RegisterInput{Name: "Other", Email: " ann@x.COM ", Password: "different", Role: entity.RoleInstructor})
	assert.ErrorIs(t, err, repository.ErrEmailTaken)
	assert.Len(t, n.got, 1)
}

func TestRegister_Validation(t *testing.T) {
	s, _ := newTestService(t)
	cases := []struct {
		name string
		in   RegisterInput
		want error
	}{
		{"missing name", RegisterInput{Name: "  ", Email: "a@x.com", Password: "p", Role: entity.RoleStudent}, ErrMissingFields},
		{"missing email", RegisterInput{Name: "A", Password: "p", Role: entity.RoleStudent}, ErrMissingFields},
		{"missing password", RegisterInput{Name: "A", Email: "a@x.com", Role: entity.RoleStudent}, ErrMissingFields},
		{"missing role", RegisterInput{Name: "A", Email: "a@x.com", Password: "p"}, ErrMissingFields},
		{"bad email", RegisterInput{Name: "A", Email: "not-an-email", Password: "p", Role: entity.RoleStudent}, ErrInvalidEmail},
		{"bad role", RegisterInput{Name: "A", Email: "a@x.com", Password: "p", Role: "Admin"}, ErrInvalidRole},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.Register(context.Background(), tc.in)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestRegister_PasswordTooLong(t *testing.T) {
	s, _ := newTestService(t)
	in := ann()
	in.Password = strings.Repeat("p", 73)
	_, err := s.Register(context.Background(), in)
	assert.ErrorIs(t, err, ErrPasswordTooLong)
}

func TestRegister_NotifierFailureDoesNotFail(t *testing.T) {
	s, n := newTestService(t)
	n.err = errors.New("broker down")

	res, err := s.Register(context.Background(), ann())
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
}

func TestLogin_WrongPasswordIndistinguishableFromUnknownEmail(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t)
	_, err := s.Register(ctx, ann())
	require.NoError(t, err)

	_, wrongPwd := s.Login(ctx, "ann@x.com", "nope")
	_, unknown := s.Login(ctx, "ghost@x.com", "secret1")

	require.ErrorIs(t, wrongPwd, ErrInvalidCredentials)
	require.ErrorIs(t, unknown, ErrInvalidCredentials)
	assert.Equal(t, wrongPwd.Error(), unknown.Error())
}

func TestLogin_MissingFields(t *testing.T) {
	s, _ := newTestService(t)
	_, err := s.Login(context.Background(), " ", "x")
	assert.ErrorIs(t, err, ErrMissingFields)
	_, err = s.Login(context.Background(), "a@x.com", "")
	assert.ErrorIs(t, err, ErrMissingFields)
}

func TestStoreFaultsPropagate(t *testing.T) {
	boom := errors.New("store unavailable")
	s := NewService(failingRepo{err: boom}, helpers.NewJWTManager("k", time.Hour), nil, quietLogger())

	_, err := s.Login(context.Background(), "a@x.com", "p")
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)

	_, err = s.Register(context.Background(), ann())
	assert.ErrorIs(t, err, boom)

	_, err = s.ListUsers(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestListUsers_PublicFields(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t)
	_, err := s.Register(ctx, ann())
	require.NoError(t, err)
	_, err = s.Register(ctx, RegisterInput{Name: "Ian", Email: "ian@x.com", Password: "pw", Role: entity.RoleInstructor})
	require.NoError(t, err)

	users, err := s.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.ElementsMatch(t, []string{"ann@x.com", "ian@x.com"}, []string{users[0].Email, users[1].Email})
}

func TestWhoami(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t)
	reg, err := s.Register(ctx, ann())
	require.NoError(t, err)

	me, err := s.Whoami(ctx, reg.Token)
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, me.ID)

	_, err = s.Whoami(ctx, "garbage")
	assert.ErrorIs(t, err, helpers.ErrInvalidToken)

	orphan, _, err := s.Tokens.Issue("missing-user")
	require.NoError(t, err)
	_, err = s.Whoami(ctx, orphan)
	assert.ErrorIs(t, err, helpers.ErrInvalidToken)
}
