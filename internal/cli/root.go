// Package cli wires the root command, global flags and error reporting.
package cli

import (
	"errors"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/spf13/cobra"

	"github.com/moviepilot/mp-cli/internal/appctx"
	"github.com/moviepilot/mp-cli/internal/commands"
	"github.com/moviepilot/mp-cli/internal/config"
	"github.com/moviepilot/mp-cli/internal/output"
	"github.com/moviepilot/mp-cli/internal/version"
)

// sessionExpiredHint is attached to 401 responses on authenticated calls.
const sessionExpiredHint = "Session may have expired. Run: mp auth login"

// NewRootCmd creates the root cobra command.
func NewRootCmd() *cobra.Command {
	var flags appctx.GlobalFlags

	cmd := &cobra.Command{
		Use:   "mp",
		Short: "Command-line client for MoviePilot",
		Long: `mp talks to a MoviePilot server: log in once, then manage subscriptions,
downloads, sites, plugins and more from the terminal or from scripts.

Output is styled on a terminal and JSON when piped.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Skip setup for help, version and shell completion requests
			switch cmd.Name() {
			case "help", "version", cobra.ShellCompRequestCmd, cobra.ShellCompNoDescRequestCmd:
				return nil
			}

			cfg, err := config.Load(config.FlagOverrides{})
			if err != nil {
				return output.ErrUsageHint(err.Error(), "Run: mp config path")
			}

			app := appctx.NewApp(cfg, appctx.WithWriters(cmd.OutOrStdout(), cmd.ErrOrStderr()))
			app.Flags = flags
			app.ApplyFlags()

			cmd.SetContext(appctx.WithApp(cmd.Context(), app))
			return nil
		},
	}

	// mp completion replaces cobra's default command
	cmd.CompletionOptions.DisableDefaultCmd = true

	// Allow flags anywhere in the command line
	cmd.Flags().SetInterspersed(true)
	cmd.PersistentFlags().SetInterspersed(true)

	// Output format flags
	cmd.PersistentFlags().BoolVarP(&flags.JSON, "json", "j", false, "Output as JSON")
	cmd.PersistentFlags().BoolVarP(&flags.Quiet, "quiet", "q", false, "Output data only, no envelope")
	cmd.PersistentFlags().BoolVarP(&flags.MD, "md", "m", false, "Output as Markdown (portable)")
	cmd.PersistentFlags().BoolVar(&flags.MD, "markdown", false, "Output as Markdown (portable)")
	cmd.PersistentFlags().BoolVar(&flags.Styled, "styled", false, "Force styled output (ANSI colors)")
	cmd.PersistentFlags().BoolVar(&flags.IDsOnly, "ids-only", false, "Output only IDs")
	cmd.PersistentFlags().BoolVar(&flags.Count, "count", false, "Output only count")
	cmd.PersistentFlags().BoolVar(&flags.Agent, "agent", false, "Agent mode (JSON + quiet)")
	cmd.PersistentFlags().StringVar(&flags.JQ, "jq", "", "Filter the response data with a jq expression")

	// Behavior flags
	cmd.PersistentFlags().CountVarP(&flags.Verbose, "verbose", "v", "Verbose output (-v for ops, -vv for requests)")
	cmd.PersistentFlags().BoolVar(&flags.Stats, "stats", false, "Show session statistics")
	cmd.PersistentFlags().BoolVar(&flags.NoStats, "no-stats", false, "Hide session statistics even when enabled in config")

	return cmd
}

// newCLI returns the root command with every subcommand attached.
func newCLI() *cobra.Command {
	cmd := NewRootCmd()
	cmd.AddCommand(commands.All()...)
	return cmd
}

// Execute runs the root command and exits with the error's exit code.
func Execute() {
	os.Exit(run(newCLI(), os.Args[1:], os.Stdout, os.Stderr))
}

// run executes cmd with args and returns the process exit code.
func run(cmd *cobra.Command, args []string, stdout, stderr io.Writer) int {
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	// Use ExecuteC to get the executed command (for correct context access)
	executedCmd, err := cmd.ExecuteC()
	if err == nil {
		return output.ExitOK
	}

	err = annotateError(transformCobraError(err))
	apiErr := output.AsError(err)

	// Try to use app.Err() if app is available (for --stats support)
	if executedCmd != nil {
		if app := appctx.FromContext(executedCmd.Context()); app != nil {
			_ = app.Err(err)
			return apiErr.ExitCode()
		}
	}

	// Fallback: output error directly (app not available, e.g., during setup)
	writer := output.New(output.Options{
		Format: fallbackFormat(cmd),
		Writer: stdout,
	})
	_ = writer.Err(err)

	return apiErr.ExitCode()
}

// fallbackFormat reads the format flags straight from the flag set.
func fallbackFormat(cmd *cobra.Command) output.Format {
	pf := cmd.PersistentFlags()
	agent, _ := pf.GetBool("agent")
	quiet, _ := pf.GetBool("quiet")
	idsOnly, _ := pf.GetBool("ids-only")
	count, _ := pf.GetBool("count")
	styled, _ := pf.GetBool("styled")
	md, _ := pf.GetBool("md")
	jsonFlag, _ := pf.GetBool("json")

	switch {
	case agent || quiet:
		return output.FormatQuiet
	case idsOnly:
		return output.FormatIDs
	case count:
		return output.FormatCount
	case jsonFlag:
		return output.FormatJSON
	case styled:
		return output.FormatStyled
	case md:
		return output.FormatMarkdown
	default:
		return output.FormatAuto
	}
}

// annotateError adds hints that only make sense at the CLI edge.
func annotateError(err error) error {
	var e *output.Error
	if !errors.As(err, &e) {
		return err
	}
	if e.Code == output.CodeRequestFailed && e.HTTPStatus == 401 {
		c := *e
		if c.Hint == "" {
			c.Hint = sessionExpiredHint
		} else if !strings.Contains(c.Hint, sessionExpiredHint) {
			c.Hint = strings.TrimSuffix(c.Hint, ".") + ". " + sessionExpiredHint
		}
		return &c
	}
	return err
}

var shorthandRe = regexp.MustCompile(`unknown shorthand flag: '.' in (-\w)`)

// transformCobraError rewrites Cobra's flag and argument errors as usage errors.
func transformCobraError(err error) error {
	msg := err.Error()

	// "flag needs an argument: --FLAG" → "--FLAG requires a value"
	if strings.HasPrefix(msg, "flag needs an argument: ") {
		flag := strings.TrimPrefix(msg, "flag needs an argument: ")
		return output.ErrUsage(flag + " requires a value")
	}

	// "unknown flag: --FLAG" → "Unknown option: --FLAG"
	if strings.HasPrefix(msg, "unknown flag: ") {
		flag := strings.TrimPrefix(msg, "unknown flag: ")
		return output.ErrUsage("Unknown option: " + flag)
	}

	// "unknown shorthand flag: 'X' in -X" → "Unknown option: -X"
	if strings.HasPrefix(msg, "unknown shorthand flag: ") {
		if matches := shorthandRe.FindStringSubmatch(msg); len(matches) > 1 {
			return output.ErrUsage("Unknown option: " + matches[1])
		}
	}

	if strings.HasPrefix(msg, "unknown command ") {
		return output.ErrUsageHint(msg, "Run: mp --help")
	}

	if strings.Contains(msg, "invalid argument") ||
		strings.Contains(msg, "arg(s)") ||
		strings.HasPrefix(msg, "if any flags in the group") ||
		strings.HasPrefix(msg, "required flag(s) ") {
		return output.ErrUsage(msg)
	}

	return err
}
