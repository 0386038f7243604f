package probes

import (
	"context"
	"time"

	"newsdesk/internal/health"
	"newsdesk/internal/infra/newsapi"
)

// HeadlineClient fetches top headlines.
type HeadlineClient interface {
	TopHeadlines(ctx context.Context, country string, pageSize int) (*newsapi.Headlines, error)
}

// NewsAPI issues one single-article headline request.
type NewsAPI struct {
	client  HeadlineClient
	country string
	timeout time.Duration
}

// NewNewsAPI creates the probe.
func NewNewsAPI(client HeadlineClient, country string, timeout time.Duration) *NewsAPI {
	return &NewsAPI{client: client, country: country, timeout: timeout}
}

func (n *NewsAPI) Name() string { return NameNewsAPI }

func (n *NewsAPI) Check(ctx context.Context) health.ProbeResult {
	if n.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, n.timeout)
		defer cancel()
	}

	h, err := n.client.TopHeadlines(ctx, n.country, 1)
	if err != nil {
		return health.Unhealthy("news api request failed", err, nil)
	}
	return health.Healthy("news api responding", map[string]any{"total_results": h.TotalResults})
}
