package moviepilot

import (
	"context"

	"github.com/goccy/go-json"

	"github.com/moviepilot/mp-cli/internal/api"
)

// HistoryService reads and prunes download and transfer history.
type HistoryService struct{ service }

func (s *HistoryService) Downloads(ctx context.Context, page, count int) (*api.Response, error) {
	return s.get(ctx, "Downloads", "/history/download", pageQuery(page, count, 30))
}

// DeleteDownload removes one download history record, given as returned by
// Downloads.
func (s *HistoryService) DeleteDownload(ctx context.Context, item json.RawMessage) (*api.Response, error) {
	return s.call(ctx, "DeleteDownload", api.Request{Method: "DELETE", Path: "/history/download", Body: item})
}

func (s *HistoryService) Transfers(ctx context.Context, page, count int, title string) (*api.Response, error) {
	return s.get(ctx, "Transfers", "/history/transfer", pageQuery(page, count, 30).str("title", title))
}

// DeleteTransfer removes a transfer record and optionally its source and
// destination files.
func (s *HistoryService) DeleteTransfer(ctx context.Context, item json.RawMessage, deleteSrc, deleteDest bool) (*api.Response, error) {
	return s.call(ctx, "DeleteTransfer", api.Request{
		Method: "DELETE",
		Path:   "/history/transfer",
		Query:  query().flag("deletesrc", deleteSrc).flag("deletedest", deleteDest).values(),
		Body:   item,
	})
}

func (s *HistoryService) EmptyTransfers(ctx context.Context) (*api.Response, error) {
	return s.get(ctx, "EmptyTransfers", "/history/empty/transfer", nil)
}

// pageQuery sets page (default 1) and count (default def).
func pageQuery(page, count, def int) params {
	if page <= 0 {
		page = 1
	}
	if count <= 0 {
		count = def
	}
	return query().num("page", page).num("count", count)
}
