// Package commands implements the CLI commands.
package commands

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/moviepilot/mp-cli/internal/api"
	"github.com/moviepilot/mp-cli/internal/appctx"
	"github.com/moviepilot/mp-cli/internal/output"
)

// appFrom returns the App stored by the root command.
func appFrom(cmd *cobra.Command) (*appctx.App, error) {
	app := appctx.FromContext(cmd.Context())
	if app == nil {
		return nil, fmt.Errorf("app not initialized")
	}
	return app, nil
}

// call is one endpoint invocation bound to the command's flags and args.
type call func(cmd *cobra.Command, app *appctx.App, args []string) (*api.Response, error)

// endpointCmd builds a leaf command that runs fn and prints the payload.
// noun, when set, is used to summarize list payloads ("3 sites").
func endpointCmd(use, short, noun string, args cobra.PositionalArgs, fn call) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFrom(cmd)
			if err != nil {
				return err
			}
			resp, err := fn(cmd, app, args)
			if err != nil {
				return err
			}
			return respond(app, resp, listSummary(resp.Data, noun))
		},
	}
}

// respond renders a gateway response through the output envelope.
func respond(app *appctx.App, resp *api.Response, summary string, crumbs ...output.Breadcrumb) error {
	var opts []output.ResponseOption
	if summary != "" {
		opts = append(opts, output.WithSummary(summary))
	}
	if len(crumbs) > 0 {
		opts = append(opts, output.WithBreadcrumbs(crumbs...))
	}
	switch {
	case len(resp.Data) == 0:
		return app.OK(nil, opts...)
	case !json.Valid(resp.Data):
		// Log and text endpoints answer with plain text.
		return app.OK(string(resp.Data), opts...)
	default:
		return app.OK(resp.Data, opts...)
	}
}

// listSummary counts array payloads. Objects and scalars get no summary.
func listSummary(data json.RawMessage, noun string) string {
	if noun == "" {
		return ""
	}
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return ""
	}
	if len(items) == 1 {
		return "1 " + noun
	}
	plural := noun + "s"
	if strings.HasSuffix(noun, "s") {
		plural = noun + "es"
	}
	return fmt.Sprintf("%d %s", len(items), plural)
}

// parseID parses a numeric positional argument.
func parseID(arg, what string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id < 0 {
		return 0, output.ErrUsage(fmt.Sprintf("invalid %s %q: must be a number", what, arg))
	}
	return id, nil
}

// readJSONArg accepts inline JSON, @path to read a file, or "-" for stdin.
func readJSONArg(cmd *cobra.Command, value string) (json.RawMessage, error) {
	var data []byte
	switch {
	case value == "-":
		b, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		data = b
	case strings.HasPrefix(value, "@"):
		b, err := os.ReadFile(strings.TrimPrefix(value, "@")) //nolint:gosec // G304: user-supplied path
		if err != nil {
			return nil, output.ErrUsage(fmt.Sprintf("reading %s: %v", strings.TrimPrefix(value, "@"), err))
		}
		data = b
	default:
		data = []byte(value)
	}

	if !json.Valid(data) {
		return nil, output.ErrUsageHint("Invalid JSON data", `Pass a JSON document, @file.json, or - to read stdin`)
	}
	return json.RawMessage(data), nil
}

// requireData reads the --data flag, which must be set.
func requireData(cmd *cobra.Command, value string) (json.RawMessage, error) {
	if value == "" {
		return nil, output.ErrUsage("--data is required")
	}
	return readJSONArg(cmd, value)
}

// parseQuery turns repeated key=value flags into query values.
func parseQuery(pairs []string) (url.Values, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	q := url.Values{}
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			return nil, output.ErrUsage(fmt.Sprintf("invalid query %q: expected key=value", p))
		}
		q.Add(k, v)
	}
	return q, nil
}

// parseHeaders turns repeated "Name: value" flags into a header set.
func parseHeaders(pairs []string) (http.Header, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	h := http.Header{}
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, ":")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, output.ErrUsage(fmt.Sprintf("invalid header %q: expected Name: value", p))
		}
		h.Add(k, strings.TrimSpace(v))
	}
	return h, nil
}

// addAPITokenFlag registers --api-token on a command group.
func addAPITokenFlag(fs *pflag.FlagSet, target *bool) {
	fs.BoolVar(target, "api-token", false, "Authenticate with the configured API token instead of the session")
}

// pick runs the API-token variant when useToken is set. Endpoints without
// one reject the flag.
func pick(useToken bool, session, token func() (*api.Response, error)) (*api.Response, error) {
	if !useToken {
		return session()
	}
	if token == nil {
		return nil, output.ErrUsage("--api-token is not supported by this command")
	}
	return token()
}

// byID builds a leaf that takes one numeric argument.
func byID(use, short, what string, fn func(cmd *cobra.Command, app *appctx.App, id int) (*api.Response, error)) *cobra.Command {
	return endpointCmd(use, short, "", cobra.ExactArgs(1),
		func(cmd *cobra.Command, app *appctx.App, args []string) (*api.Response, error) {
			id, err := parseID(args[0], what)
			if err != nil {
				return nil, err
			}
			return fn(cmd, app, id)
		})
}
