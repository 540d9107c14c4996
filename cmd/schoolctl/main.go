package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/schoolhub/school-api/internal/client"
)

const usage = `schoolctl - command line client for the school API

Usage:
  schoolctl [-api URL] <command> [args]

Commands:
  register            create an account (prompts for name, email, password)
  login <email>       authenticate and store the access token
  logout              discard the stored access token
  whoami              show the authenticated user
  users               list users
  students            list students
  teachers            list teachers
  courses             list courses
`

func main() {
	apiURL := flag.String("api", envOr("SCHOOL_API_URL", "http://localhost:4000"), "API base URL")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	store, err := client.NewFileTokenStore("")
	if err != nil {
		fatal("failed to locate token store: %v", err)
	}
	session := client.NewSession(store)

	api, err := client.New(*apiURL, session)
	if err != nil {
		fatal("%v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	app := &app{api: api, session: session}
	if err := app.run(ctx, args[0], args[1:]); err != nil {
		fatal("%v", err)
	}
}

type app struct {
	api     *client.Client
	session *client.Session
}

func (a *app) run(ctx context.Context, command string, args []string) error {
	switch command {
	case "register":
		return a.register(ctx)
	case "login":
		if len(args) != 1 {
			return fmt.Errorf("usage: schoolctl login <email>")
		}
		return a.login(ctx, args[0])
	case "logout":
		if err := a.api.Logout(); err != nil {
			return err
		}
		fmt.Println("Logged out.")
		return nil
	case "whoami":
		return a.requireAuth(ctx, a.whoami)
	case "users":
		return a.requireAuth(ctx, a.listUsers)
	case "students":
		return a.requireAuth(ctx, a.listStudents)
	case "teachers":
		return a.requireAuth(ctx, a.listTeachers)
	case "courses":
		return a.requireAuth(ctx, a.listCourses)
	default:
		return fmt.Errorf("unknown command %q", command)
	}
}

// requireAuth runs fn behind the client's auth gate: an expired or missing
// session drops into the interactive login flow first.
func (a *app) requireAuth(ctx context.Context, fn func(context.Context) error) error {
	return a.api.RequireAuth(ctx, a.interactiveLogin, fn)
}

func (a *app) interactiveLogin(ctx context.Context) error {
	fmt.Println("Not logged in.")
	email, err := prompt("Email: ")
	if err != nil {
		return err
	}
	return a.login(ctx, email)
}

func (a *app) login(ctx context.Context, email string) error {
	password, err := promptPassword("Password: ")
	if err != nil {
		return err
	}

	claims, err := a.api.Login(ctx, email, password)
	if err != nil {
		return err
	}

	expires := time.Unix(claims.ExpiresAt, 0)
	fmt.Printf("Logged in as %s (token valid until %s)\n", claims.Email, expires.Format(time.RFC1123))
	return nil
}

func (a *app) register(ctx context.Context) error {
	name, err := prompt("Name: ")
	if err != nil {
		return err
	}
	email, err := prompt("Email: ")
	if err != nil {
		return err
	}
	password, err := promptPassword("Password: ")
	if err != nil {
		return err
	}

	created, err := a.api.Register(ctx, name, email, password)
	if err != nil {
		return err
	}

	fmt.Printf("Registered %s <%s> (id %d)\n", created.Name, created.Email, created.ID)
	return nil
}

func (a *app) whoami(ctx context.Context) error {
	profile, err := a.api.Profile(ctx)
	if err != nil {
		return err
	}

	claims := a.session.Authenticated()
	fmt.Printf("%s <%s> (id %d)\n", profile.Name, profile.Email, profile.ID)
	if claims != nil {
		fmt.Printf("Token expires %s\n", time.Unix(claims.ExpiresAt, 0).Format(time.RFC1123))
	}
	return nil
}

func (a *app) listUsers(ctx context.Context) error {
	users, err := a.api.Users(ctx)
	if err != nil {
		return err
	}
	for _, u := range users {
		fmt.Printf("%4d  %-30s %s\n", u.ID, u.Name, u.Email)
	}
	return nil
}

func (a *app) listStudents(ctx context.Context) error {
	students, err := a.api.Students(ctx)
	if err != nil {
		return err
	}
	for _, s := range students {
		fmt.Printf("%4d  %-30s %-30s enrolled %s\n", s.ID, s.Name, s.Email, s.EnrollmentDate.Format("2006-01-02"))
	}
	return nil
}

func (a *app) listTeachers(ctx context.Context) error {
	teachers, err := a.api.Teachers(ctx)
	if err != nil {
		return err
	}
	for _, t := range teachers {
		fmt.Printf("%4d  %-30s %-30s %s\n", t.ID, t.Name, t.Email, t.Department)
	}
	return nil
}

func (a *app) listCourses(ctx context.Context) error {
	courses, err := a.api.Courses(ctx)
	if err != nil {
		return err
	}
	for _, c := range courses {
		fmt.Printf("%4d  %-10s %-40s %d credits\n", c.ID, c.Code, c.Name, c.Credits)
	}
	return nil
}

func prompt(label string) (string, error) {
	fmt.Print(label)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func promptPassword(label string) (string, error) {
	fmt.Print(label)
	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", err
	}
	return string(password), nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "schoolctl: "+format+"\n", args...)
	os.Exit(1)
}
