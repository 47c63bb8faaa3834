package moviepilot

import (
	"context"

	"github.com/moviepilot/mp-cli/internal/api"
)

// PluginService manages server plugins.
type PluginService struct{ service }

// List returns plugins in state "installed", "market" or "all" (default).
func (s *PluginService) List(ctx context.Context, state string, force bool) (*api.Response, error) {
	if state == "" {
		state = "all"
	}
	return s.get(ctx, "List", "/plugin/", query().str("state", state).flag("force", force))
}

func (s *PluginService) Installed(ctx context.Context) (*api.Response, error) {
	return s.get(ctx, "Installed", "/plugin/installed", nil)
}

func (s *PluginService) Statistic(ctx context.Context) (*api.Response, error) {
	return s.get(ctx, "Statistic", "/plugin/statistic", nil)
}

func (s *PluginService) Reload(ctx context.Context, id string) (*api.Response, error) {
	return s.get(ctx, "Reload", "/plugin/reload/"+seg(id), nil)
}

// Install installs a plugin, from repoURL when set.
func (s *PluginService) Install(ctx context.Context, id, repoURL string, force bool) (*api.Response, error) {
	q := query().always("repo_url", repoURL).flag("force", force)
	return s.get(ctx, "Install", "/plugin/install/"+seg(id), q)
}

func (s *PluginService) Reset(ctx context.Context, id string) (*api.Response, error) {
	return s.get(ctx, "Reset", "/plugin/reset/"+seg(id), nil)
}

func (s *PluginService) Uninstall(ctx context.Context, id string) (*api.Response, error) {
	return s.call(ctx, "Uninstall", api.Request{Method: "DELETE", Path: "/plugin/" + seg(id)})
}

// Get returns the plugin's configuration.
func (s *PluginService) Get(ctx context.Context, id string) (*api.Response, error) {
	return s.get(ctx, "Get", "/plugin/"+seg(id), nil)
}
