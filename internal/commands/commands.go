package commands

import (
	"github.com/spf13/cobra"

	"github.com/moviepilot/mp-cli/internal/output"
)

// CommandInfo describes a CLI command.
type CommandInfo struct {
	Name        string   `json:"name"`
	Category    string   `json:"category"`
	Description string   `json:"description"`
	Actions     []string `json:"actions,omitempty"`
}

// CommandCategory groups commands by category.
type CommandCategory struct {
	Name     string        `json:"name"`
	Commands []CommandInfo `json:"commands"`
}

// catalog orders the top-level commands into categories.
var catalog = []struct {
	name     string
	category string
	commands []string
}{
	{"Library", "library", []string{"subscribes", "media", "search", "downloads", "history", "transfer", "servarr"}},
	{"Server", "server", []string{"dashboard", "system", "sites", "plugins", "users", "messages"}},
	{"Setup", "setup", []string{"auth", "config", "api"}},
	{"Additional", "additional", []string{"completion", "commands", "version"}},
}

// commandCategories describes the commands registered on root. Actions are
// read from each command's subcommands.
func commandCategories(root *cobra.Command) []CommandCategory {
	byName := make(map[string]*cobra.Command)
	for _, c := range root.Commands() {
		byName[c.Name()] = c
	}

	categories := make([]CommandCategory, 0, len(catalog))
	for _, group := range catalog {
		cat := CommandCategory{Name: group.name}
		for _, name := range group.commands {
			c, ok := byName[name]
			if !ok {
				continue
			}
			info := CommandInfo{Name: name, Category: group.category, Description: c.Short}
			for _, sub := range c.Commands() {
				if sub.IsAvailableCommand() {
					info.Actions = append(info.Actions, sub.Name())
				}
			}
			cat.Commands = append(cat.Commands, info)
		}
		if len(cat.Commands) > 0 {
			categories = append(categories, cat)
		}
	}
	return categories
}

// NewCommandsCmd creates the commands listing command.
func NewCommandsCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "commands",
		Aliases: []string{"cmds"},
		Short:   "List all available commands",
		Long:    "List all available mp commands organized by category.",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFrom(cmd)
			if err != nil {
				return err
			}

			return app.OK(commandCategories(cmd.Root()),
				output.WithSummary("All available mp commands"),
				output.WithBreadcrumbs(
					output.Breadcrumb{
						Action:      "help",
						Cmd:         "mp --help",
						Description: "View help",
					},
				),
			)
		},
	}
}

// All returns a fresh instance of every top-level command.
func All() []*cobra.Command {
	return []*cobra.Command{
		NewAuthCmd(),
		NewAPICmd(),
		NewDashboardCmd(),
		NewSystemCmd(),
		NewDownloadsCmd(),
		NewHistoryCmd(),
		NewSubscribesCmd(),
		NewSitesCmd(),
		NewMediaCmd(),
		NewSearchCmd(),
		NewUsersCmd(),
		NewPluginsCmd(),
		NewMessagesCmd(),
		NewTransferCmd(),
		NewServarrCmd(),
		NewConfigCmd(),
		NewCompletionCmd(),
		NewCommandsCmd(),
		NewVersionCmd(),
	}
}
