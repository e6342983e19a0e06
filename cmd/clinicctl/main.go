// clinicctl is the terminal client for the clinic booking service. Each
// subcommand is one screen of the app: browsing doctors, booking, the
// doctor queues, chat, and admin moderation.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"clinicdesk/internal/api"
	"clinicdesk/internal/config"
	"clinicdesk/internal/session"
	"clinicdesk/pkg/logging"
)

type app struct {
	cfg     *config.Config
	logger  *logging.Logger
	client  *api.Client
	session *session.Manager
}

type command struct {
	name    string
	summary string
	run     func(ctx context.Context, a *app, args []string) error
}

var commands = []command{
	{"login", "sign in and persist the session", cmdLogin},
	{"logout", "clear the persisted session", cmdLogout},
	{"whoami", "show the signed-in identity", cmdWhoami},
	{"register-patient", "create a patient account", cmdRegisterPatient},
	{"register-doctor", "create a doctor account", cmdRegisterDoctor},
	{"doctors", "browse or search the doctor directory", cmdDoctors},
	{"ratings", "show a doctor's reviews", cmdRatings},
	{"slots", "show a doctor's bookable slots", cmdSlots},
	{"book", "book an appointment slot", cmdBook},
	{"history", "show your appointment history", cmdHistory},
	{"rate", "rate a past appointment", cmdRate},
	{"queue", "show the doctor work queues", cmdQueue},
	{"accept", "accept a pending appointment", cmdAccept},
	{"reject", "reject a pending appointment", cmdReject},
	{"complete", "mark a scheduled appointment done", cmdComplete},
	{"dashboard", "show the doctor dashboard", cmdDashboard},
	{"profile", "show or update your profile", cmdProfile},
	{"chat", "read or send appointment chat messages", cmdChat},
	{"help-chat", "read or send help-desk messages", cmdHelpChat},
	{"admin-users", "list all accounts", cmdAdminUsers},
	{"admin-update", "edit an account", cmdAdminUpdate},
	{"admin-delete", "delete an account", cmdAdminDelete},
	{"admin-appointments", "show the clinic-wide appointment overview", cmdAdminAppointments},
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel)

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	name := os.Args[1]

	a, err := newApp(cfg, logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	for _, cmd := range commands {
		if cmd.name != name {
			continue
		}
		if err := cmd.run(ctx, a, os.Args[2:]); err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			os.Exit(1)
		}
		return
	}

	fmt.Fprintf(os.Stderr, "unknown command %q\n\n", name)
	usage()
	os.Exit(2)
}

func newApp(cfg *config.Config, logger *logging.Logger) (*app, error) {
	store, err := session.NewFileStore(cfg.SessionFile)
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}
	client := api.NewClient(cfg.APIBaseURL, session.TokenSource(store), logger).
		WithHTTPClient(&http.Client{Timeout: cfg.APITimeout})
	return &app{
		cfg:     cfg,
		logger:  logger,
		client:  client,
		session: session.NewManager(client, store, logger),
	}, nil
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: clinicctl <command> [flags]")
	fmt.Fprintln(os.Stderr)
	for _, cmd := range commands {
		fmt.Fprintf(os.Stderr, "  %-20s %s\n", cmd.name, cmd.summary)
	}
}

func flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	return fs
}

func cmdLogin(ctx context.Context, a *app, args []string) error {
	fs := flagSet("login")
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" || *password == "" {
		return fmt.Errorf("both -email and -password are required")
	}

	role, err := a.session.Login(ctx, *email, *password)
	if err != nil {
		return fmt.Errorf("%s", api.Message(err, "Login failed"))
	}
	id := a.session.Identity()
	if id.Name != "" {
		fmt.Printf("Signed in as %s (%s)\n", id.Name, role)
	} else {
		fmt.Printf("Signed in (%s)\n", role)
	}
	return nil
}

func cmdLogout(ctx context.Context, a *app, args []string) error {
	a.session.Logout()
	fmt.Println("Signed out")
	return nil
}

func cmdWhoami(ctx context.Context, a *app, args []string) error {
	id := a.session.Identity()
	if !id.LoggedIn() {
		fmt.Println("Not signed in")
		return nil
	}
	fmt.Printf("Role: %s\n", id.Role)
	if id.Name != "" {
		fmt.Printf("Name: %s\n", id.Name)
	}
	if exp, err := a.session.TokenExpiry(); err == nil {
		state := "valid"
		if a.session.TokenExpired() {
			state = "expired"
		}
		fmt.Printf("Token: %s, expires %s\n", state, exp.Local().Format("2006-01-02 15:04"))
	}
	return nil
}
