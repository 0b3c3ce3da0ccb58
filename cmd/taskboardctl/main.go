// Command taskboardctl is a terminal dashboard client for the taskboard
// API. It keeps a login session across invocations: the token lives in the
// user config dir and is re-validated against the server on every run.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/rs/zerolog"

	"github.com/enterprise/taskboard/internal/core/domain"
	"github.com/enterprise/taskboard/pkg/client"
	"github.com/enterprise/taskboard/pkg/logger"
	"github.com/enterprise/taskboard/pkg/session"
)

const defaultServer = "http://localhost:8080"

type cliConfig struct {
	server     string
	jsonOutput bool
	verbose    bool
}

var errShowUsage = errors.New("show usage")

func main() {
	cfg, command, args, err := parseArgs(os.Args[1:])
	if errors.Is(err, errShowUsage) {
		printUsage()
		if len(os.Args) == 1 {
			os.Exit(1)
		}
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		printUsage()
		os.Exit(1)
	}

	level := "error"
	if cfg.verbose {
		level = "debug"
	}
	log := logger.New(logger.Options{Level: level, Pretty: true, Service: "taskboardctl"})

	app, err := newApp(cfg, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	switch command {
	case "login":
		err = app.runLogin(ctx, args)
	case "logout":
		err = app.runLogout(ctx, args)
	case "whoami":
		err = app.runWhoami(ctx, args)
	case "projects":
		err = app.runProjects(ctx, args)
	case "tasks":
		err = app.runTasks(ctx, args)
	case "users":
		err = app.runUsers(ctx, args)
	case "help", "--help", "-h":
		printUsage()
	default:
		err = fmt.Errorf("unknown command: %s", command)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func parseArgs(args []string) (cliConfig, string, []string, error) {
	cfg := cliConfig{server: defaultServer}
	if s := os.Getenv("TASKBOARD_SERVER"); s != "" {
		cfg.server = s
	}

	idx := 0
	for idx < len(args) {
		arg := args[idx]
		if !strings.HasPrefix(arg, "-") {
			break
		}
		switch arg {
		case "--help", "-h":
			return cfg, "", nil, errShowUsage
		case "--server", "-s":
			if idx+1 >= len(args) {
				return cfg, "", nil, fmt.Errorf("--server requires a value")
			}
			cfg.server = args[idx+1]
			idx += 2
		case "--json":
			cfg.jsonOutput = true
			idx++
		case "--verbose", "-v":
			cfg.verbose = true
			idx++
		default:
			return cfg, "", nil, fmt.Errorf("unknown flag: %s", arg)
		}
	}

	if idx >= len(args) {
		return cfg, "", nil, errShowUsage
	}
	return cfg, args[idx], args[idx+1:], nil
}

func printUsage() {
	fmt.Print(`Usage: taskboardctl [--server <url>] [--json] [--verbose] <command>

Commands:
  login <username>    Log in and persist the session
  logout              Revoke the token and clear the session
  whoami              Show the logged-in identity and roles
  projects            List projects you are a member of
  tasks [project-id]  List tasks, optionally scoped to one project
  users               List all accounts (requires ROLE_ADMIN)

The server address can also be set via TASKBOARD_SERVER.
`)
}

// app wires the session machinery once per invocation. Start runs before
// every command, so a stored token that no longer resolves is detected and
// cleaned up regardless of which command triggered it.
type app struct {
	cfg     cliConfig
	session *session.Manager
	guard   *session.Guard
	api     *client.Client
}

func newApp(cfg cliConfig, log zerolog.Logger) (*app, error) {
	store, err := session.NewFileStore("taskboard")
	if err != nil {
		return nil, err
	}
	api := client.New(cfg.server, store, log)
	m := session.NewManager(store, api, api, log)
	return &app{cfg: cfg, session: m, guard: session.NewGuard(m), api: api}, nil
}

// admit starts the session and enforces the guard decision for a command
// that requires the given role.
func (a *app) admit(ctx context.Context, role string) error {
	a.session.Start(ctx)
	switch a.guard.Admit(role) {
	case session.Allow:
		return nil
	case session.RedirectLogin:
		return errors.New("not logged in, run: taskboardctl login <username>")
	case session.Deny:
		return fmt.Errorf("your account lacks the %s role", role)
	default:
		return errors.New("session not ready")
	}
}

func (a *app) runLogin(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: taskboardctl login <username>")
	}
	username := args[0]

	password := os.Getenv("TASKBOARD_PASSWORD")
	if password == "" {
		fmt.Fprintf(os.Stderr, "Password for %s: ", username)
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil {
			return fmt.Errorf("read password: %w", err)
		}
		password = strings.TrimRight(line, "\r\n")
	}

	a.session.Start(ctx)
	if err := a.session.Login(ctx, username, password); err != nil {
		return err
	}

	id := a.session.Identity()
	fmt.Printf("Logged in as %s (%s)\n", id.Username, strings.Join(id.Roles(), ", "))
	return nil
}

func (a *app) runLogout(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("usage: taskboardctl logout")
	}
	a.session.Start(ctx)

	// Best-effort server-side revocation before the local credential goes
	// away; local logout proceeds even if the server is unreachable.
	if a.session.Status() == session.StatusAuthenticated {
		if err := a.api.Logout(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "warning: server-side revocation failed: %v\n", err)
		}
	}
	if err := a.session.Logout(); err != nil {
		return err
	}
	fmt.Println("Logged out")
	return nil
}

func (a *app) runWhoami(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("usage: taskboardctl whoami")
	}
	if err := a.admit(ctx, ""); err != nil {
		return err
	}

	id := a.session.Identity()
	if a.cfg.jsonOutput {
		return printJSON(map[string]any{
			"id":        id.ID,
			"username":  id.Username,
			"email":     id.Email,
			"full_name": id.FullName,
			"roles":     id.Roles(),
		})
	}
	fmt.Printf("%s", id.Username)
	if id.FullName != "" {
		fmt.Printf(" (%s)", id.FullName)
	}
	fmt.Println()
	fmt.Printf("roles: %s\n", strings.Join(id.Roles(), ", "))
	return nil
}

func (a *app) runProjects(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("usage: taskboardctl projects")
	}
	if err := a.admit(ctx, ""); err != nil {
		return err
	}

	projects, err := a.api.Projects(ctx)
	if err != nil {
		return err
	}
	if a.cfg.jsonOutput {
		return printJSON(projects)
	}

	w := newTable()
	fmt.Fprintln(w, "ID\tNAME\tMEMBERS\tDESCRIPTION")
	for _, p := range projects {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", p.ID, p.Name, len(p.MemberIDs), truncate(p.Description, 40))
	}
	return w.Flush()
}

func (a *app) runTasks(ctx context.Context, args []string) error {
	if len(args) > 1 {
		return fmt.Errorf("usage: taskboardctl tasks [project-id]")
	}
	if err := a.admit(ctx, ""); err != nil {
		return err
	}

	projectID := ""
	if len(args) == 1 {
		projectID = args[0]
	}

	page, err := a.api.Tasks(ctx, projectID, 1, 50)
	if err != nil {
		return err
	}
	if a.cfg.jsonOutput {
		return printJSON(page)
	}

	w := newTable()
	fmt.Fprintln(w, "ID\tTITLE\tSTATUS\tPRIORITY\tPROJECT")
	for _, task := range page.Items {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			task.ID, truncate(task.Title, 32), task.Status, task.Priority, task.ProjectID)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("page %d of %d (%s tasks total)\n", page.Page, page.TotalPages, strconv.FormatInt(page.Total, 10))
	return nil
}

func (a *app) runUsers(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("usage: taskboardctl users")
	}
	if err := a.admit(ctx, domain.RoleAdmin); err != nil {
		return err
	}

	users, err := a.api.Users(ctx)
	if err != nil {
		return err
	}
	if a.cfg.jsonOutput {
		return printJSON(users)
	}

	w := newTable()
	fmt.Fprintln(w, "ID\tUSERNAME\tENABLED\tROLES")
	for _, u := range users {
		fmt.Fprintf(w, "%s\t%s\t%t\t%s\n", u.ID, u.Username, u.Enabled, strings.Join(u.RoleNames(), ","))
	}
	return w.Flush()
}

func newTable() *tabwriter.Writer {
	return tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}
