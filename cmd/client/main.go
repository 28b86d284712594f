package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/term"

	"github.com/oksasatya/quiz-auth/config"
	"github.com/oksasatya/quiz-auth/internal/client/api"
	"github.com/oksasatya/quiz-auth/internal/client/session"
	"github.com/oksasatya/quiz-auth/internal/client/storage"
	"github.com/oksasatya/quiz-auth/internal/domain/entity"
	"github.com/oksasatya/quiz-auth/pkg/helpers"
)

const usage = `usage: quiz-auth <command> [flags]

commands:
  register -name N -email E -role Student|Instructor [-password P]
  login    -email E -role Student|Instructor [-password P]
  logout
  whoami
  users
  status
`

// readPassword is replaced in tests.
var readPassword = func(prompt string, out io.Writer) (string, error) {
	fmt.Fprint(out, prompt)
	b, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(out)
	return string(b), err
}

func main() {
	_ = godotenv.Load()
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return 2
	}

	cfg := config.LoadClient()
	logger := helpers.NewCLILogger(stderr, cfg.LogLevel)

	store, err := storage.OpenSQLite(ctx, cfg.SessionDB)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	defer store.Close()

	client := api.New(cfg.APIBaseURL, cfg.APITimeout, logger)
	sess := session.New(ctx, client, store, logger)
	client.Token = sess.Token

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "register":
		err = register(ctx, sess, rest, stdout)
	case "login":
		err = login(ctx, sess, rest, stdout)
	case "logout":
		sess.Logout(ctx)
		fmt.Fprintln(stdout, "signed out")
	case "whoami":
		err = whoami(ctx, sess, client, stdout)
	case "users":
		err = users(ctx, client, stdout)
	case "status":
		err = status(ctx, client, stdout)
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n%s", cmd, usage)
		return 2
	}

	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
		if errors.Is(err, flag.ErrHelp) || errors.Is(err, errUsage) {
			return 2
		}
		return 1
	}
	return 0
}

var errUsage = errors.New("invalid arguments")

func parseRole(s string) (entity.Role, error) {
	for _, r := range []entity.Role{entity.RoleStudent, entity.RoleInstructor} {
		if strings.EqualFold(s, string(r)) {
			return r, nil
		}
	}
	return "", fmt.Errorf("%w: role must be Student or Instructor", errUsage)
}

func passwordOr(given string, out io.Writer) (string, error) {
	if given != "" {
		return given, nil
	}
	return readPassword("Password: ", out)
}

func register(ctx context.Context, sess *session.Manager, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	name := fs.String("name", "", "display name")
	email := fs.String("email", "", "email address")
	password := fs.String("password", "", "password (prompted when omitted)")
	roleFlag := fs.String("role", "", "Student or Instructor")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	role, err := parseRole(*roleFlag)
	if err != nil {
		return err
	}
	pwd, err := passwordOr(*password, out)
	if err != nil {
		return err
	}
	if err := sess.Register(ctx, *name, *email, pwd, role); err != nil {
		return err
	}
	st := sess.State()
	fmt.Fprintf(out, "registered %s (%s) as %s\n", st.User.Name, st.User.Email, st.User.Role)
	return nil
}

func login(ctx context.Context, sess *session.Manager, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	email := fs.String("email", "", "email address")
	password := fs.String("password", "", "password (prompted when omitted)")
	roleFlag := fs.String("role", "", "portal: Student or Instructor")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	role, err := parseRole(*roleFlag)
	if err != nil {
		return err
	}
	pwd, err := passwordOr(*password, out)
	if err != nil {
		return err
	}
	if err := sess.Login(ctx, *email, pwd, role); err != nil {
		return err
	}
	st := sess.State()
	fmt.Fprintf(out, "signed in as %s (%s)\n", st.User.Name, st.User.Role)
	return nil
}

func whoami(ctx context.Context, sess *session.Manager, client *api.Client, out io.Writer) error {
	st := sess.State()
	if !st.IsAuthenticated() {
		fmt.Fprintln(out, "not signed in")
		return nil
	}
	u, err := client.Me(ctx)
	if errors.Is(err, api.ErrUnauthorized) {
		// expired or revoked token; drop the stale session
		sess.Logout(ctx)
		fmt.Fprintln(out, "session expired, signed out")
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s <%s> %s id=%s\n", u.Name, u.Email, u.Role, u.ID)
	return nil
}

func users(ctx context.Context, client *api.Client, out io.Writer) error {
	list, err := client.ListUsers(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%d user(s)\n", list.Count)
	for _, u := range list.Users {
		fmt.Fprintf(out, "%-36s  %-10s  %-28s  %s\n", u.ID, u.Role, u.Email, u.Name)
	}
	return nil
}

func status(ctx context.Context, client *api.Client, out io.Writer) error {
	start := time.Now()
	h, err := client.Health(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s: %s (%s)\n", h.Status, h.Message, time.Since(start).Round(time.Millisecond))
	return nil
}
