package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/moviepilot/mp-cli/internal/api"
	"github.com/moviepilot/mp-cli/internal/appctx"
	"github.com/moviepilot/mp-cli/internal/completion"
	"github.com/moviepilot/mp-cli/internal/output"
)

var completer = completion.NewCompleter(nil)

// NewCompletionCmd creates the completion command group.
func NewCompletionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion <bash|zsh|fish|powershell>",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for mp.

Bash:
  $ source <(mp completion bash)

Zsh:
  $ mp completion zsh > "${fpath[1]}/_mp"

Fish:
  $ mp completion fish > ~/.config/fish/completions/mp.fish

PowerShell:
  PS> mp completion powershell | Out-String | Invoke-Expression

Site, subscription and plugin ids are completed from a local cache. It is
filled whenever you list them and by "mp completion refresh".`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeCompletion(cmd, args[0])
		},
	}

	cmd.AddCommand(
		newCompletionRefreshCmd(),
		newCompletionStatusCmd(),
		newCompletionClearCmd(),
	)
	return cmd
}

func writeCompletion(cmd *cobra.Command, shell string) error {
	root, out := cmd.Root(), cmd.OutOrStdout()
	switch shell {
	case "bash":
		return root.GenBashCompletionV2(out, true)
	case "zsh":
		return root.GenZshCompletion(out)
	case "fish":
		return root.GenFishCompletion(out, true)
	case "powershell":
		return root.GenPowerShellCompletionWithDesc(out)
	default:
		return output.ErrUsage(fmt.Sprintf("unknown shell: %s", shell))
	}
}

func newCompletionRefreshCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Refresh the completion cache",
		Long:  "Fetch sites, subscriptions and installed plugins and cache their ids for tab completion.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFrom(cmd)
			if err != nil {
				return err
			}
			sess := app.Auth.Session()
			if sess == nil || sess.ServerURL == "" {
				return output.ErrUnauthenticated("not logged in")
			}

			store := completion.NewStore("")
			res := completion.NewRefresher(store, app.MP, sess.ServerURL).RefreshAll(cmd.Context())
			if len(res.Errors) == len(completion.AllSections) {
				return res.Error()
			}

			data := map[string]any{"cache_path": store.Path()}
			parts := make([]string, 0, len(completion.AllSections))
			for _, sec := range completion.AllSections {
				if err := res.Errors[sec]; err != nil {
					data[string(sec)+"_error"] = err.Error()
					continue
				}
				data[string(sec)] = res.Counts[sec]
				parts = append(parts, fmt.Sprintf("%d %s", res.Counts[sec], sec))
			}

			summary := "Cached " + strings.Join(parts, ", ")
			if res.HasError() {
				summary += fmt.Sprintf(" (warning: %v)", res.Error())
			}
			return app.OK(data, output.WithSummary(summary))
		},
	}
}

func newCompletionStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show completion cache status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFrom(cmd)
			if err != nil {
				return err
			}
			store := completion.NewStore("")
			cache, err := store.Load()
			if err != nil {
				return err
			}

			sections := make(map[string]any, len(completion.AllSections))
			for _, sec := range completion.AllSections {
				entry := map[string]any{"count": len(cache.Sections[sec])}
				if at, ok := cache.UpdatedAt[sec]; ok && !at.IsZero() {
					entry["updated_at"] = at.Format(time.RFC3339)
					entry["age"] = time.Since(at).Round(time.Second).String()
				}
				sections[string(sec)] = entry
			}

			stale := store.IsStale(completion.DefaultMaxAge)
			summary := "Completion cache is fresh"
			if stale {
				summary = "Completion cache is stale; run: mp completion refresh"
			}
			return app.OK(map[string]any{
				"path":       store.Path(),
				"server_url": cache.ServerURL,
				"stale":      stale,
				"sections":   sections,
			}, output.WithSummary(summary))
		},
	}
}

func newCompletionClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete the completion cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFrom(cmd)
			if err != nil {
				return err
			}
			store := completion.NewStore("")
			if err := store.Clear(); err != nil {
				return err
			}
			return app.OK(map[string]string{"path": store.Path()}, output.WithSummary("Completion cache cleared"))
		},
	}
}

// remember caches the ids of a list response for tab completion. Failures
// are logged and otherwise ignored.
func remember(app *appctx.App, sec completion.Section, resp *api.Response) {
	server := app.Config.ServerURL
	if sess := app.Auth.Session(); sess != nil && sess.ServerURL != "" {
		server = sess.ServerURL
	}
	if err := completion.Remember(completion.NewStore(""), server, sec, resp.Data); err != nil {
		app.Logger.Debug().Err(err).Str("section", string(sec)).Msg("completion cache not updated")
	}
}

// completeWith wires cached-id completion into the first argument of cmd.
func completeWith(cmd *cobra.Command, sec completion.Section) *cobra.Command {
	cmd.ValidArgsFunction = completer.For(sec)
	return cmd
}
