package moviepilot

import (
	"context"

	"github.com/goccy/go-json"

	"github.com/moviepilot/mp-cli/internal/api"
)

// TransferService controls the file organizing queue.
type TransferService struct{ service }

func (s *TransferService) Queue(ctx context.Context) (*api.Response, error) {
	return s.get(ctx, "Queue", "/transfer/queue", nil)
}

// RemoveFromQueue drops a file item, as returned by Queue, from the queue.
func (s *TransferService) RemoveFromQueue(ctx context.Context, item json.RawMessage) (*api.Response, error) {
	return s.call(ctx, "RemoveFromQueue", api.Request{Method: "DELETE", Path: "/transfer/queue", Body: item})
}

// Name previews the name a file would be renamed to.
func (s *TransferService) Name(ctx context.Context, path, filetype string) (*api.Response, error) {
	return s.get(ctx, "Name", "/transfer/name", query().str("path", path).str("filetype", filetype))
}

// Now runs the transfer job immediately. Authenticated with the API token.
func (s *TransferService) Now(ctx context.Context) (*api.Response, error) {
	return s.getToken(ctx, "Now", "/transfer/now", nil)
}
