package moviepilot

import (
	"context"

	"github.com/moviepilot/mp-cli/internal/api"
)

// DownloadService manages torrents in the configured downloaders. name
// selects a downloader; empty means the default one.
type DownloadService struct{ service }

func (s *DownloadService) List(ctx context.Context, name string) (*api.Response, error) {
	return s.get(ctx, "List", "/download/", query().str("name", name))
}

// Add queues a torrent. body carries torrent_in and optionally media_in,
// downloader and save_path; without media_in the /add endpoint is used.
func (s *DownloadService) Add(ctx context.Context, body map[string]any) (*api.Response, error) {
	path := "/download/add"
	if _, ok := body["media_in"]; ok {
		path = "/download/"
	}
	return s.call(ctx, "Add", api.Request{Method: "POST", Path: path, Body: body})
}

func (s *DownloadService) Start(ctx context.Context, hash, name string) (*api.Response, error) {
	return s.get(ctx, "Start", "/download/start/"+seg(hash), query().str("name", name))
}

func (s *DownloadService) Stop(ctx context.Context, hash, name string) (*api.Response, error) {
	return s.get(ctx, "Stop", "/download/stop/"+seg(hash), query().str("name", name))
}

func (s *DownloadService) Clients(ctx context.Context) (*api.Response, error) {
	return s.get(ctx, "Clients", "/download/clients", nil)
}

func (s *DownloadService) Delete(ctx context.Context, hash, name string) (*api.Response, error) {
	return s.call(ctx, "Delete", api.Request{
		Method: "DELETE",
		Path:   "/download/" + seg(hash),
		Query:  query().str("name", name).values(),
	})
}
