package commands

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	base "github.com/n3wscott/cli-base/pkg/commands/options"
	"github.com/spf13/cobra"

	"tableflip.dev/hubz/pkg/store"
)

// env is the state shared by every command: the resolved settings and the
// global flag overrides.
type env struct {
	settings *store.Settings

	backend  string
	timezone string
	logLevel string
	scope    string
}

func New() *cobra.Command {
	e := &env{}

	cmd := &cobra.Command{
		Use:   "hubz",
		Short: base.Wrap80("Calendrier hubz : vues mois, semaine et jour, événements et tâches."),
		Long: base.Wrap80(`Browse and edit the hubz calendar from the terminal. Items come from the
hubz REST API, a local sqlite database or a CalDAV server, chosen by the
backend setting of ~/.hubz.yaml or HUBZ_BACKEND.`),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return e.load(cmd.ErrOrStderr())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVar(&e.backend, "backend", "",
		"Item source: rest, sqlite or caldav. Overrides the configuration.")
	cmd.PersistentFlags().StringVar(&e.timezone, "timezone", "",
		`Display timezone, example: --timezone=Europe/Paris.`)
	cmd.PersistentFlags().StringVar(&e.logLevel, "log-level", "",
		"Log level: debug, info, warn or error.")
	cmd.PersistentFlags().StringVar(&e.scope, "scope", store.DefaultScope,
		"Calendar the view preferences are stored for.")

	AddCommands(cmd, e)
	return cmd
}

func AddCommands(topLevel *cobra.Command, e *env) {
	addUI(topLevel, e)
	addCalendar(topLevel, e)
	addEvents(topLevel, e)
	addTasks(topLevel, e)
	addExport(topLevel, e)
	addImport(topLevel, e)
	addRemind(topLevel, e)
	addMCP(topLevel, e)
	addVersion(topLevel)
	addCompletions(topLevel)
}

// load resolves the settings and sets up logging to w.
func (e *env) load(w io.Writer) error {
	settings, err := store.LoadConfig()
	if err != nil {
		return err
	}
	if e.backend != "" {
		settings.Backend = strings.ToLower(e.backend)
	}
	if e.timezone != "" {
		settings.Timezone = e.timezone
	}
	if e.logLevel != "" {
		settings.LogLevel = e.logLevel
	}
	e.settings = settings
	return setupLogging(settings.LogLevel, w)
}

func (e *env) location() (*time.Location, error) {
	return e.settings.Location()
}

func setupLogging(level string, w io.Writer) error {
	var lvl slog.Level
	if strings.TrimSpace(level) != "" {
		if err := lvl.UnmarshalText([]byte(level)); err != nil {
			return fmt.Errorf("invalid log level %q: %w", level, err)
		}
	} else {
		lvl = slog.LevelWarn
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})))
	return nil
}

// logFile redirects logs for full screen commands. Logs are dropped unless
// HUBZ_LOG_FILE names a file.
func (e *env) logFile() (func() error, error) {
	path := strings.TrimSpace(os.Getenv("HUBZ_LOG_FILE"))
	if path == "" {
		return func() error { return nil }, setupLogging(e.settings.LogLevel, io.Discard)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	if err := setupLogging(e.settings.LogLevel, f); err != nil {
		_ = f.Close()
		return nil, err
	}
	return f.Close, nil
}
