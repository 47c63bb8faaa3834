package moviepilot

import (
	"context"

	"github.com/moviepilot/mp-cli/internal/api"
)

// DashboardService reads the server dashboard widgets. The ...2 variants
// authenticate with the API token instead of the session.
type DashboardService struct{ service }

func (s *DashboardService) Statistic(ctx context.Context, name string) (*api.Response, error) {
	return s.get(ctx, "Statistic", "/dashboard/statistic", query().str("name", name))
}

func (s *DashboardService) Statistic2(ctx context.Context) (*api.Response, error) {
	return s.getToken(ctx, "Statistic2", "/dashboard/statistic2", nil)
}

func (s *DashboardService) Storage(ctx context.Context) (*api.Response, error) {
	return s.get(ctx, "Storage", "/dashboard/storage", nil)
}

func (s *DashboardService) Storage2(ctx context.Context) (*api.Response, error) {
	return s.getToken(ctx, "Storage2", "/dashboard/storage2", nil)
}

func (s *DashboardService) Processes(ctx context.Context) (*api.Response, error) {
	return s.get(ctx, "Processes", "/dashboard/processes", nil)
}

func (s *DashboardService) Downloader(ctx context.Context, name string) (*api.Response, error) {
	return s.get(ctx, "Downloader", "/dashboard/downloader", query().str("name", name))
}

func (s *DashboardService) Downloader2(ctx context.Context) (*api.Response, error) {
	return s.getToken(ctx, "Downloader2", "/dashboard/downloader2", nil)
}

func (s *DashboardService) Schedule(ctx context.Context) (*api.Response, error) {
	return s.get(ctx, "Schedule", "/dashboard/schedule", nil)
}

func (s *DashboardService) Schedule2(ctx context.Context) (*api.Response, error) {
	return s.getToken(ctx, "Schedule2", "/dashboard/schedule2", nil)
}

// Transfer returns transfer statistics for the last days days (default 7).
func (s *DashboardService) Transfer(ctx context.Context, days int) (*api.Response, error) {
	if days <= 0 {
		days = 7
	}
	return s.get(ctx, "Transfer", "/dashboard/transfer", query().num("days", days))
}

func (s *DashboardService) CPU(ctx context.Context) (*api.Response, error) {
	return s.get(ctx, "CPU", "/dashboard/cpu", nil)
}

func (s *DashboardService) CPU2(ctx context.Context) (*api.Response, error) {
	return s.getToken(ctx, "CPU2", "/dashboard/cpu2", nil)
}

func (s *DashboardService) Memory(ctx context.Context) (*api.Response, error) {
	return s.get(ctx, "Memory", "/dashboard/memory", nil)
}

func (s *DashboardService) Memory2(ctx context.Context) (*api.Response, error) {
	return s.getToken(ctx, "Memory2", "/dashboard/memory2", nil)
}

func (s *DashboardService) Network(ctx context.Context) (*api.Response, error) {
	return s.get(ctx, "Network", "/dashboard/network", nil)
}

func (s *DashboardService) Network2(ctx context.Context) (*api.Response, error) {
	return s.getToken(ctx, "Network2", "/dashboard/network2", nil)
}
