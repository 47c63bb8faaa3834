package moviepilot

import (
	"context"

	"github.com/moviepilot/mp-cli/internal/api"
)

// MessageService reads and sends web UI messages.
type MessageService struct{ service }

func (s *MessageService) Web(ctx context.Context, page, count int) (*api.Response, error) {
	return s.get(ctx, "Web", "/message/web", pageQuery(page, count, 20))
}

// SendWeb posts text to the web message channel as the logged-in user.
func (s *MessageService) SendWeb(ctx context.Context, text string) (*api.Response, error) {
	return s.call(ctx, "SendWeb", api.Request{
		Method: "POST",
		Path:   "/message/web",
		Query:  query().always("text", text).values(),
	})
}
