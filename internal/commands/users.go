package commands

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/moviepilot/mp-cli/internal/api"
	"github.com/moviepilot/mp-cli/internal/appctx"
)

// NewUsersCmd creates the users command group.
func NewUsersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "users",
		Aliases: []string{"user"},
		Short:   "Manage server users",
	}

	var createData, updateData string
	create := endpointCmd("create", "Create a user", "", cobra.NoArgs,
		func(cmd *cobra.Command, app *appctx.App, _ []string) (*api.Response, error) {
			body, err := requireData(cmd, createData)
			if err != nil {
				return nil, err
			}
			return app.MP.User().Create(cmd.Context(), body)
		})
	create.Flags().StringVarP(&createData, "data", "d", "", `User: {"name":"...","password":"...","is_superuser":false}`)

	update := endpointCmd("update", "Update a user", "", cobra.NoArgs,
		func(cmd *cobra.Command, app *appctx.App, _ []string) (*api.Response, error) {
			body, err := requireData(cmd, updateData)
			if err != nil {
				return nil, err
			}
			return app.MP.User().Update(cmd.Context(), body)
		})
	update.Flags().StringVarP(&updateData, "data", "d", "", "User fields including the id")

	var setValue string
	setConfig := endpointCmd("set-config <key>", "Store a per-user setting", "", cobra.ExactArgs(1),
		func(cmd *cobra.Command, app *appctx.App, args []string) (*api.Response, error) {
			value, err := requireData(cmd, setValue)
			if err != nil {
				return nil, err
			}
			return app.MP.User().SetConfig(cmd.Context(), args[0], value)
		})
	setConfig.Flags().StringVarP(&setValue, "data", "d", "", "JSON value")

	cmd.AddCommand(
		endpointCmd("me", "Show the logged-in user", "", cobra.NoArgs,
			func(cmd *cobra.Command, app *appctx.App, _ []string) (*api.Response, error) {
				return app.MP.User().Current(cmd.Context())
			}),
		endpointCmd("list", "List users", "user", cobra.NoArgs,
			func(cmd *cobra.Command, app *appctx.App, _ []string) (*api.Response, error) {
				return app.MP.User().List(cmd.Context())
			}),
		endpointCmd("show <name>", "Show a user", "", cobra.ExactArgs(1),
			func(cmd *cobra.Command, app *appctx.App, args []string) (*api.Response, error) {
				return app.MP.User().Get(cmd.Context(), args[0])
			}),
		create,
		update,
		endpointCmd("delete <name|id>", "Delete a user by name or numeric ID", "", cobra.ExactArgs(1),
			func(cmd *cobra.Command, app *appctx.App, args []string) (*api.Response, error) {
				if id, err := strconv.Atoi(args[0]); err == nil {
					return app.MP.User().DeleteByID(cmd.Context(), id)
				}
				return app.MP.User().DeleteByName(cmd.Context(), args[0])
			}),
		endpointCmd("config <key>", "Read a per-user setting", "", cobra.ExactArgs(1),
			func(cmd *cobra.Command, app *appctx.App, args []string) (*api.Response, error) {
				return app.MP.User().Config(cmd.Context(), args[0])
			}),
		setConfig,
		byID("otp <user-id>", "Show whether two-factor login is enabled", "user ID",
			func(cmd *cobra.Command, app *appctx.App, id int) (*api.Response, error) {
				return app.MP.User().OTPStatus(cmd.Context(), id)
			}),
	)

	return cmd
}
