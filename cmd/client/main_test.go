package main

import (
	"bytes"
	"context"
	"io"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/oksasatya/quiz-auth/config"
	"github.com/oksasatya/quiz-auth/internal/container"
	"github.com/oksasatya/quiz-auth/internal/infrastructure/memory"
	"github.com/oksasatya/quiz-auth/internal/router"
	"github.com/oksasatya/quiz-auth/pkg/helpers"
)

func setup(t *testing.T) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	c := &container.Container{
		Config: &config.Config{Env: "test", UsersListing: config.ListingPublic, LoginRateLimit: 10, RegisterRateLimit: 5},
		Logger: logger,
		Users:  memory.NewUserRepository(),
		JWT:    helpers.NewJWTManager("test-secret", 24*time.Hour),
	}
	srv := httptest.NewServer(router.NewEngine(c))
	t.Cleanup(srv.Close)

	t.Setenv("API_BASE_URL", srv.URL+"/api")
	t.Setenv("SESSION_DB", filepath.Join(t.TempDir(), "session.db"))
	t.Setenv("LOG_LEVEL", "error")
}

func runCLI(args ...string) (int, string, string) {
	var out, errOut bytes.Buffer
	code := run(context.Background(), args, &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestCLI_SessionLifecycle(t *testing.T) {
	setup(t)

	code, out, _ := runCLI("whoami")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "not signed in")

	code, out, errOut := runCLI("register", "-name", "Ann", "-email", "ANN@X.com", "-password", "secret1", "-role", "student")
	assert.Equal(t, 0, code, errOut)
	assert.Contains(t, out, "ann@x.com")

	code, out, _ = runCLI("whoami")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "Ann <ann@x.com> Student")

	code, out, _ = runCLI("users")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "1 user(s)")

	code, _, errOut = runCLI("login", "-email", "ann@x.com", "-password", "secret1", "-role", "Instructor")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "This account is registered as a Student. Please use the Student portal.")

	code, out, _ = runCLI("logout")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "signed out")

	code, out, _ = runCLI("whoami")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "not signed in")
}

func TestCLI_PromptsForPassword(t *testing.T) {
	setup(t)
	old := readPassword
	readPassword = func(string, io.Writer) (string, error) { return "secret1", nil }
	t.Cleanup(func() { readPassword = old })

	code, _, errOut := runCLI("register", "-name", "Ian", "-email", "ian@x.com", "-role", "Instructor")
	assert.Equal(t, 0, code, errOut)

	code, out, errOut := runCLI("login", "-email", "ian@x.com", "-role", "Instructor")
	assert.Equal(t, 0, code, errOut)
	assert.Contains(t, out, "signed in as Ian")
}

func TestCLI_Usage(t *testing.T) {
	setup(t)

	code, _, _ := runCLI()
	assert.Equal(t, 2, code)

	code, _, errOut := runCLI("frobnicate")
	assert.Equal(t, 2, code)
	assert.Contains(t, errOut, "unknown command")

	code, _, _ = runCLI("login", "-email", "a@x.com", "-password", "p", "-role", "Admin")
	assert.Equal(t, 2, code)
}

func TestCLI_Status(t *testing.T) {
	setup(t)
	code, out, _ := runCLI("status")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "OK: Server is running")
}
