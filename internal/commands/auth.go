package commands

import (
	"bufio"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cobra"

	"github.com/moviepilot/mp-cli/internal/auth"
	"github.com/moviepilot/mp-cli/internal/hostutil"
	"github.com/moviepilot/mp-cli/internal/output"
)

// NewAuthCmd creates the auth command group.
func NewAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage authentication",
		Long:  "Log in to a MoviePilot server, inspect the stored session, or log out.",
	}

	cmd.AddCommand(
		newAuthLoginCmd(),
		newAuthLogoutCmd(),
		newAuthStatusCmd(),
		newAuthTokenCmd(),
		newAuthWallpaperCmd(),
	)

	return cmd
}

// loginInput holds the credentials collected for auth login.
type loginInput struct {
	Server   string
	Username string
	Password string
}

func (in *loginInput) complete() bool {
	return in.Server != "" && in.Username != "" && in.Password != ""
}

// promptLogin asks for whatever is missing from in.
var promptLogin = func(in *loginInput) error {
	required := func(s string) error {
		if strings.TrimSpace(s) == "" {
			return errors.New("this field is required")
		}
		return nil
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Server URL").
				Placeholder("http://nas.local:3000").
				Value(&in.Server).
				Validate(required),
			huh.NewInput().
				Title("Username").
				Value(&in.Username).
				Validate(required),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&in.Password).
				Validate(required),
		),
	).Run()
}

func newAuthLoginCmd() *cobra.Command {
	var in loginInput
	var passwordStdin bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to a MoviePilot server",
		Long: `Log in with a username and password and store the session.

The server defaults to the server_url config key and the username to the
username config key. Missing values are prompted for on a terminal.

Examples:
  mp auth login --server http://nas.local:3000 --username admin
  echo "$PASSWORD" | mp auth login --username admin --password-stdin`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFrom(cmd)
			if err != nil {
				return err
			}

			if in.Server == "" {
				in.Server = app.Config.ServerURL
			}
			if in.Username == "" {
				in.Username = app.Config.Username
			}
			if passwordStdin {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return output.ErrUsage("--password-stdin: no password on stdin")
				}
				in.Password = strings.TrimRight(line, "\r\n")
			}

			if !in.complete() {
				if !app.IsInteractive() {
					return output.ErrUsageHint("server, username and password are required",
						"Use --server, --username and --password (or --password-stdin)")
				}
				if err := promptLogin(&in); err != nil {
					if errors.Is(err, huh.ErrUserAborted) {
						return output.ErrUsage("login canceled")
					}
					return err
				}
			}

			server := hostutil.Normalize(in.Server)
			if warning := hostutil.InsecureWarning(server); warning != "" {
				fmt.Fprintln(app.Stderr, warning)
			}

			sess, err := app.Gateway.Login(cmd.Context(), server, in.Username, in.Password)
			if err != nil {
				return err
			}

			return app.OK(sessionView(sess, app.Auth.Store()),
				output.WithSummary(fmt.Sprintf("Logged in to %s as %s", sess.ServerURL, displayName(sess, in.Username))),
				output.WithBreadcrumbs(output.Breadcrumb{
					Action:      "status",
					Cmd:         "mp auth status",
					Description: "Show the stored session",
				}),
			)
		},
	}

	cmd.Flags().StringVarP(&in.Server, "server", "s", "", "MoviePilot server URL (default: server_url config)")
	cmd.Flags().StringVarP(&in.Username, "username", "u", "", "Username (default: username config)")
	cmd.Flags().StringVarP(&in.Password, "password", "p", "", "Password")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "Read the password from stdin")
	cmd.MarkFlagsMutuallyExclusive("password", "password-stdin")

	return cmd
}

func newAuthLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFrom(cmd)
			if err != nil {
				return err
			}

			app.Gateway.Logout()

			return app.OK(map[string]string{
				"status": "logged_out",
			}, output.WithSummary("Logged out"))
		},
	}
}

func newAuthStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show authentication status",
		Long:  "Show the stored session, its token expiry, and whether an API token is configured.",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFrom(cmd)
			if err != nil {
				return err
			}

			sess := app.Auth.Session()
			if sess == nil {
				return app.OK(map[string]any{
					"authenticated": false,
					"api_token":     app.Config.APIToken != "",
					"store":         app.Auth.Store().Location(),
				}, output.WithSummary("Not logged in"),
					output.WithBreadcrumbs(output.Breadcrumb{
						Action:      "login",
						Cmd:         "mp auth login",
						Description: "Log in to a MoviePilot server",
					}))
			}

			status := sessionView(sess, app.Auth.Store())
			status["authenticated"] = sess.AccessToken != ""
			status["api_token"] = app.Config.APIToken != ""

			summary := fmt.Sprintf("Logged in to %s as %s", sess.ServerURL, displayName(sess, ""))
			if exp, ok := tokenExpiry(sess.AccessToken); ok {
				remaining := time.Until(exp)
				status["expires_at"] = exp.UTC().Format(time.RFC3339)
				status["expires_in"] = remaining.Round(time.Second).String()
				status["expired"] = remaining <= 0
				if remaining <= 0 {
					summary += " (token expired)"
				}
			}

			return app.OK(status, output.WithSummary(summary))
		},
	}
}

func newAuthTokenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "token",
		Short: "Print the session access token",
		Long: `Print the stored access token for use with other tools.

Examples:
  curl -H "Authorization: Bearer $(mp auth token)" http://nas.local:3000/api/v1/user/current

Output modes:
  mp auth token           # Raw token (default, for shell substitution)
  mp auth token --json    # JSON envelope with token in data field`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFrom(cmd)
			if err != nil {
				return err
			}

			sess := app.Auth.Session()
			if sess == nil || sess.AccessToken == "" {
				return output.ErrUnauthenticated("not logged in")
			}

			if app.Flags.JSON || app.Flags.Agent {
				return app.OK(map[string]string{
					"token":      sess.AccessToken,
					"token_type": auth.NormalizeTokenType(sess.TokenType),
				})
			}

			fmt.Fprintln(app.Stdout, sess.AccessToken)
			return nil
		},
	}
}

func newAuthWallpaperCmd() *cobra.Command {
	var server string
	var all bool

	cmd := &cobra.Command{
		Use:   "wallpaper",
		Short: "Show the login page wallpaper",
		Long:  "Fetch the server's login wallpaper. No login is needed.",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFrom(cmd)
			if err != nil {
				return err
			}

			if server == "" {
				server = app.Config.ServerURL
			}
			if server == "" {
				if sess := app.Auth.Session(); sess != nil {
					server = sess.ServerURL
				}
			}
			if server != "" {
				server = hostutil.Normalize(server)
			}

			if all {
				items, err := app.Gateway.Wallpapers(cmd.Context(), server)
				if err != nil {
					return err
				}
				return app.OK(items, output.WithSummary(fmt.Sprintf("%d wallpapers", len(items))))
			}

			item, err := app.Gateway.Wallpaper(cmd.Context(), server)
			if err != nil {
				return err
			}
			return app.OK(item)
		},
	}

	cmd.Flags().StringVarP(&server, "server", "s", "", "MoviePilot server URL (default: server_url config, then the session)")
	cmd.Flags().BoolVar(&all, "all", false, "List every wallpaper")

	return cmd
}

// sessionView is the printable part of a session. The token is left out.
func sessionView(sess *auth.Session, store *auth.Store) map[string]any {
	return map[string]any{
		"server_url": sess.ServerURL,
		"user_id":    sess.UserID,
		"user_name":  sess.UserName,
		"super_user": sess.SuperUser,
		"level":      sess.Level,
		"token_type": auth.NormalizeTokenType(sess.TokenType),
		"store":      store.Location(),
	}
}

func displayName(sess *auth.Session, fallback string) string {
	if sess.UserName != "" {
		return sess.UserName
	}
	if fallback != "" {
		return fallback
	}
	return fmt.Sprintf("user %d", sess.UserID)
}

// tokenExpiry reads the exp claim without verifying the signature.
// Tokens that are not JWTs report ok=false.
func tokenExpiry(token string) (time.Time, bool) {
	if token == "" {
		return time.Time{}, false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
