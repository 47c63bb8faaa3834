package commands

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/moviepilot/mp-cli/internal/api"
	"github.com/moviepilot/mp-cli/internal/observability"
)

// NewAPICmd creates the api command for raw API access.
func NewAPICmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "api <verb> <path>",
		Short: "Raw API access",
		Long: `Make raw requests to any MoviePilot endpoint. Useful for operations not
covered by dedicated commands.

Paths that do not start with /api/ are taken relative to /api/v1.

Examples:
  mp api get /system/versions
  mp api get dashboard/cpu2 --api-token
  mp api post /subscribe/ --data '{"name":"Dune","type":"电影"}'
  mp api delete /subscribe/12`,
	}

	cmd.AddCommand(
		newAPIVerbCmd(http.MethodGet, false),
		newAPIVerbCmd(http.MethodPost, true),
		newAPIVerbCmd(http.MethodPut, true),
		newAPIVerbCmd(http.MethodDelete, false),
	)

	return cmd
}

func newAPIVerbCmd(method string, withBody bool) *cobra.Command {
	var data string
	var query, headers []string
	var useToken bool

	verb := strings.ToLower(method)
	cmd := &cobra.Command{
		Use:   verb + " <path>",
		Short: method + " request to the API",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFrom(cmd)
			if err != nil {
				return err
			}

			req := api.Request{Method: method, Path: apiPath(args[0])}
			if req.Query, err = parseQuery(query); err != nil {
				return err
			}
			if req.Header, err = parseHeaders(headers); err != nil {
				return err
			}
			if data != "" {
				body, err := readJSONArg(cmd, data)
				if err != nil {
					return err
				}
				req.Body = body
			}

			op := observability.OperationInfo{Service: "api", Operation: verb, TokenMode: useToken}
			resp, err := app.Gateway.Call(cmd.Context(), op, req)
			if err != nil {
				return err
			}

			summary := fmt.Sprintf("%s %s", method, req.Path)
			if s := apiSummary(resp.Data); s != "" {
				summary += ": " + s
			}
			return respond(app, resp, summary)
		},
	}

	if withBody {
		cmd.Flags().StringVarP(&data, "data", "d", "", "JSON request body, @file, or - for stdin")
	}
	cmd.Flags().StringArrayVarP(&query, "query", "Q", nil, "Query parameter key=value (repeatable)")
	cmd.Flags().StringArrayVarP(&headers, "header", "H", nil, `Request header "Name: value" (repeatable)`)
	addAPITokenFlag(cmd.Flags(), &useToken)

	return cmd
}

// apiPath resolves a user path against /api/v1.
func apiPath(p string) string {
	p = strings.TrimSpace(p)
	// Full URLs keep only their path and query; the server comes from the session.
	if u, err := url.Parse(p); err == nil && u.Scheme != "" && u.Host != "" {
		p = u.EscapedPath()
		if u.RawQuery != "" {
			p += "?" + u.RawQuery
		}
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if !strings.HasPrefix(p, "/api/") {
		p = "/api/v1" + p
	}
	return p
}

// apiSummary describes the shape of a response payload.
func apiSummary(data json.RawMessage) string {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return ""
	}
	switch d := v.(type) {
	case []any:
		return fmt.Sprintf("%d items", len(d))
	case map[string]any:
		if msg, ok := d["message"].(string); ok && msg != "" {
			return msg
		}
		if name, ok := d["name"].(string); ok && name != "" {
			return name
		}
		if title, ok := d["title"].(string); ok && title != "" {
			return title
		}
	}
	return ""
}
