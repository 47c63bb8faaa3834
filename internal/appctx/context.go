// Package appctx provides application context helpers.
package appctx

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/x/term"
	"github.com/rs/zerolog"

	"github.com/moviepilot/mp-cli/internal/api"
	"github.com/moviepilot/mp-cli/internal/auth"
	"github.com/moviepilot/mp-cli/internal/config"
	"github.com/moviepilot/mp-cli/internal/logging"
	"github.com/moviepilot/mp-cli/internal/moviepilot"
	"github.com/moviepilot/mp-cli/internal/observability"
	"github.com/moviepilot/mp-cli/internal/output"
)

// contextKey is a private type for context keys.
type contextKey string

const appKey contextKey = "app"

// App holds the shared application context for all commands.
type App struct {
	Config  *config.Config
	Logger  zerolog.Logger
	Auth    *auth.Manager
	Gateway *api.Gateway
	MP      *moviepilot.Client
	Output  *output.Writer

	// Observability
	Collector *observability.SessionCollector
	Hooks     *observability.CLIHooks

	// Flags holds the global flag values
	Flags GlobalFlags

	// Stdout and Stderr default to the process streams.
	Stdout io.Writer
	Stderr io.Writer

	transport api.Transport
}

// GlobalFlags holds values for global CLI flags.
type GlobalFlags struct {
	// Output format flags
	JSON    bool
	Quiet   bool
	MD      bool // Literal Markdown syntax output
	Styled  bool // Force ANSI styled output (even when piped)
	IDsOnly bool
	Count   bool
	Agent   bool
	JQ      string

	// Behavior flags
	Verbose int // 0=off, 1=operations, 2=operations+requests (stacks with -v -v or -vv)
	Stats   bool
	NoStats bool // Overrides Stats and the stats config key
}

// Option configures an App at construction.
type Option func(*App)

// WithStore replaces the credential store chosen from config.
func WithStore(s *auth.Store) Option {
	return func(a *App) { a.Auth = auth.NewManager(s) }
}

// WithTransport replaces the HTTP transport used by the gateway.
func WithTransport(t api.Transport) Option {
	return func(a *App) { a.transport = t }
}

// WithWriters redirects command output and diagnostics.
func WithWriters(stdout, stderr io.Writer) Option {
	return func(a *App) {
		a.Stdout = stdout
		a.Stderr = stderr
	}
}

// NewApp creates a new App with the given configuration.
func NewApp(cfg *config.Config, opts ...Option) *App {
	a := &App{
		Config: cfg,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
	for _, opt := range opts {
		opt(a)
	}

	a.Logger = a.newLogger(configVerbosity(cfg))

	// Collector always runs to gather stats; hooks control output verbosity.
	// Level 0 initially; ApplyFlags sets the actual level from -v flags.
	a.Collector = observability.NewSessionCollector()
	a.Hooks = observability.NewCLIHooks(0, a.Collector, observability.NewTraceWriterTo(a.Stderr))

	if a.Auth == nil {
		a.Auth = auth.NewManager(auth.NewStore(cfg.CredentialStore, "", a.Logger))
	} else {
		a.Auth.Store().SetLogger(a.Logger)
	}
	if a.transport == nil {
		a.transport = api.NewHTTPTransport(cfg.Timeout)
	}

	a.buildClients()
	a.Output = output.New(output.Options{
		Format: output.ParseFormat(cfg.Format),
		Writer: a.Stdout,
	})
	return a
}

func (a *App) buildClients() {
	a.Gateway = api.NewGateway(a.Auth,
		api.WithTransport(a.transport),
		api.WithHooks(a.Hooks),
		api.WithLogger(a.Logger),
		api.WithServerURL(a.Config.ServerURL),
		api.WithAPIToken(a.Config.APIToken),
	)
	a.MP = moviepilot.NewClient(a.Gateway)
}

func (a *App) newLogger(verbosity int) zerolog.Logger {
	return logging.New(logging.Config{
		Level:  logging.LevelForVerbosity(verbosity),
		Format: a.Config.LogFormat,
		Output: a.Stderr,
	})
}

// ApplyFlags applies global flag values to the app configuration.
func (a *App) ApplyFlags() {
	// Order matters: specific modes first
	format := output.ParseFormat(a.Config.Format)
	switch {
	case a.Flags.Agent:
		// Agent mode = quiet JSON (data only, no envelope)
		format = output.FormatQuiet
	case a.Flags.IDsOnly:
		format = output.FormatIDs
	case a.Flags.Count:
		format = output.FormatCount
	case a.Flags.Quiet:
		format = output.FormatQuiet
	case a.Flags.JSON:
		format = output.FormatJSON
	case a.Flags.Styled:
		format = output.FormatStyled
	case a.Flags.MD:
		format = output.FormatMarkdown
	}
	a.Output = output.New(output.Options{
		Format: format,
		Writer: a.Stdout,
		JQ:     a.Flags.JQ,
	})

	level := max(a.Flags.Verbose, configVerbosity(a.Config), envVerbosity())
	a.Hooks.SetLevel(level)

	a.Logger = a.newLogger(level)
	a.Auth.Store().SetLogger(a.Logger)
	a.buildClients()
}

// Verbosity returns the effective trace level after ApplyFlags.
func (a *App) Verbosity() int {
	return a.Hooks.Level()
}

func configVerbosity(cfg *config.Config) int {
	if cfg != nil && cfg.Verbose != nil {
		return *cfg.Verbose
	}
	return 0
}

// envVerbosity reads MP_DEBUG: "1", "2", or "true" (treated as 2).
func envVerbosity() int {
	v := os.Getenv("MP_DEBUG")
	if v == "" {
		return 0
	}
	if level, err := strconv.Atoi(v); err == nil {
		return level
	}
	if v == "true" {
		return 2
	}
	return 0
}

func (a *App) statsEnabled() bool {
	if a.Flags.NoStats || a.Collector == nil {
		return false
	}
	if a.Flags.Stats {
		return true
	}
	return a.Config.Stats != nil && *a.Config.Stats
}

// OK outputs a success response, automatically including stats if --stats flag is set.
func (a *App) OK(data any, opts ...output.ResponseOption) error {
	if a.statsEnabled() {
		opts = append(opts, output.WithStats(a.Collector.Summary().ToMap()))
	}
	return a.Output.OK(data, opts...)
}

// Err outputs an error response, printing stats to stderr if --stats flag is set.
func (a *App) Err(err error) error {
	if outputErr := a.Output.Err(err); outputErr != nil {
		return outputErr
	}
	if a.shouldPrintStatsToStderr() {
		parts := a.Collector.Summary().FormatParts()
		if len(parts) > 0 {
			fmt.Fprintf(a.Stderr, "\nStats: %s\n", strings.Join(parts, " | "))
		}
	}
	return nil
}

// shouldPrintStatsToStderr reports whether a human is reading the output.
// JSON and Markdown callers get nothing extra on stderr.
func (a *App) shouldPrintStatsToStderr() bool {
	if !a.statsEnabled() || a.isMachineOutput() {
		return false
	}
	switch a.Output.Format() {
	case output.FormatStyled:
		return true
	case output.FormatAuto:
		f, ok := a.Stdout.(*os.File)
		return ok && term.IsTerminal(f.Fd())
	default:
		return false
	}
}

// isMachineOutput returns true if the output mode is intended for programmatic consumption.
func (a *App) isMachineOutput() bool {
	if a.Flags.Agent || a.Flags.Quiet || a.Flags.IDsOnly || a.Flags.Count || a.Flags.JQ != "" {
		return true
	}
	return a.Config != nil && a.Config.Format == "quiet"
}

// IsInteractive reports whether prompts may be shown.
func (a *App) IsInteractive() bool {
	if a.Flags.Agent || a.Flags.JSON || a.Flags.Quiet || a.Flags.IDsOnly || a.Flags.Count || a.Flags.JQ != "" {
		return false
	}
	return term.IsTerminal(os.Stdin.Fd()) && term.IsTerminal(os.Stdout.Fd())
}

// WithApp stores the app in the context.
func WithApp(ctx context.Context, app *App) context.Context {
	return context.WithValue(ctx, appKey, app)
}

// FromContext retrieves the app from the context.
func FromContext(ctx context.Context) *App {
	app, _ := ctx.Value(appKey).(*App)
	return app
}
