// Command symvora is the terminal client: sign in, describe symptoms, get
// general guidance and browse previous checks.
//
// Settings come from the environment (SYMVORA_* variables, optionally via
// a .env file) and can be overridden with flags.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/sakif/symvora/internal/client"
	"github.com/sakif/symvora/internal/config"
	"github.com/sakif/symvora/internal/console"
	"github.com/sakif/symvora/internal/flow"
	"github.com/sakif/symvora/internal/history"
	"github.com/sakif/symvora/internal/navigation"
	"github.com/sakif/symvora/internal/preferences"
	"github.com/sakif/symvora/internal/session"
)

var (
	serverURL string
	tokenPath string
	logLevel  string
	theme     string
	fontSize  string
)

var rootCmd = &cobra.Command{
	Use:   "symvora",
	Short: "Symvora - symptom checker in your terminal",
	Long: `Symvora asks an AI model for general guidance about the symptoms you
describe and keeps a searchable history of your checks.
The guidance is informational only and never a medical diagnosis.`,
	SilenceUsage: true,
	RunE:         runInteractive,
}

var checkCmd = &cobra.Command{
	Use:   "check <symptoms>",
	Short: "Analyze symptoms once and print the result",
	Long: `Analyze symptoms without starting the interactive console.
You must have signed in before (the saved session is reused).`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCheck,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "Backend URL [default: $SYMVORA_SERVER_URL or http://localhost:8080]")
	rootCmd.PersistentFlags().StringVar(&tokenPath, "token-file", "", "Where the session token is kept")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug|info|warn|error) [default: warn]")
	rootCmd.Flags().StringVar(&theme, "theme", "light", "Start with the light or dark theme")
	rootCmd.Flags().StringVar(&fontSize, "font", "medium", "Font size (small|medium|large)")

	rootCmd.AddCommand(checkCmd)
}

// app is everything a command needs, wired from configuration.
type app struct {
	logger  *slog.Logger
	session *session.State
	ctrl    *flow.Controller
}

func newApp() (*app, error) {
	cfg, err := config.LoadClient()
	if err != nil {
		return nil, err
	}
	if serverURL != "" {
		cfg.ServerURL = strings.TrimRight(serverURL, "/")
	}
	if tokenPath != "" {
		cfg.TokenPath = tokenPath
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	logger := newLogger(cfg.SlogLevel())
	slog.SetDefault(logger)

	api := client.New(cfg.ServerURL,
		client.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
		client.WithTokenStore(client.FileTokenStore{Path: cfg.TokenPath}),
		client.WithLogger(logger),
	)
	logger.Debug("client configured",
		slog.String("server", cfg.ServerURL),
		slog.String("tokenFile", cfg.TokenPath),
	)

	sess := session.New()
	ctrl := flow.New(flow.Deps{
		Session:   sess,
		History:   history.New(),
		Accounts:  api,
		Diagnoser: api,
		Logger:    logger,
	})
	return &app{logger: logger, session: sess, ctrl: ctrl}, nil
}

// newLogger writes human-friendly logs to stderr so they do not mix with
// the console output on stdout.
func newLogger(level slog.Level) *slog.Logger {
	handler := log.NewWithOptions(os.Stderr, log.Options{
		Level:           log.Level(level),
		ReportTimestamp: true,
		Prefix:          "symvora",
	})
	return slog.New(handler)
}

func runInteractive(cmd *cobra.Command, _ []string) error {
	prefs, err := startupPreferences()
	if err != nil {
		return err
	}

	a, err := newApp()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ui := console.New(a.ctrl, a.session, prefs, cmd.OutOrStdout(), a.logger)

	g, gctx := errgroup.WithContext(ctx)
	runCtx, cancelRun := context.WithCancel(gctx)

	g.Go(func() error { return a.ctrl.Run(runCtx) })
	g.Go(func() error { return ui.PrintNotifications(runCtx) })
	g.Go(func() error {
		// The console ending (quit or end of input) ends the whole client.
		defer cancelRun()

		if err := a.ctrl.Restore(runCtx); err != nil {
			a.logger.Warn("starting signed out", slog.String("error", err.Error()))
		}
		return ui.Run(runCtx, cmd.InOrStdin())
	})

	return g.Wait()
}

func runCheck(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go a.ctrl.Run(ctx)
	defer func() {
		cancel()
		<-a.ctrl.Done()
	}()

	if err := a.ctrl.Restore(ctx); err != nil {
		return fmt.Errorf("restoring session: %w", err)
	}
	if !a.session.IsAuthenticated() {
		return errors.New("not signed in, run symvora and use the login command first")
	}

	if _, err := a.ctrl.Navigate(navigation.Symptoms); err != nil {
		return err
	}
	if err := a.ctrl.Submit(strings.Join(args, " ")); err != nil {
		return err
	}
	a.ctrl.Wait()

	st := a.ctrl.Snapshot()
	fmt.Fprintln(cmd.OutOrStdout(), st.Result)
	if strings.HasPrefix(st.Result, "Error: ") {
		return errors.New("analysis failed")
	}
	return nil
}

func startupPreferences() (*preferences.Settings, error) {
	prefs := &preferences.Settings{}

	switch strings.ToLower(theme) {
	case "light":
	case "dark":
		prefs.ToggleTheme()
	default:
		return nil, fmt.Errorf("unknown theme %q (light|dark)", theme)
	}

	size, err := preferences.ParseFontSize(fontSize)
	if err != nil {
		return nil, err
	}
	prefs.SetFontSize(size)
	return prefs, nil
}
