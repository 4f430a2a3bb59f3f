package permissions

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"
)

// Client fetches permission sets from a remote authorization service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	logger     *slog.Logger
	group      singleflight.Group
}

// NewClient builds a Client for baseURL. A zero timeout falls back to 10s.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		timeout:    timeout,
		logger:     logger,
	}
}

// Fetch implements Fetcher. Concurrent calls for one actor share a request.
// The shared request is detached from any single caller's cancellation and
// bounded by the client timeout, so one caller giving up does not fail the
// others waiting on it.
func (c *Client) Fetch(ctx context.Context, actor string) (Set, error) {
	actor = strings.TrimSpace(actor)
	if actor == "" {
		return Set{}, ErrInvalidActor
	}
	ch := c.group.DoChan(actor, func() (interface{}, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
		defer cancel()
		return c.fetch(fetchCtx, actor)
	})
	select {
	case <-ctx.Done():
		return Set{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return Set{}, res.Err
		}
		return res.Val.(Set), nil
	}
}

func (c *Client) fetch(ctx context.Context, actor string) (Set, error) {
	endpoint := c.baseURL + "/api/permissions/" + url.PathEscape(actor)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Set{}, fmt.Errorf("permissions: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(ActorHeader, actor)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Set{}, fmt.Errorf("permissions: fetch %s: %w", actor, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return Set{}, ErrNotFound
	case resp.StatusCode != http.StatusOK:
		return Set{}, fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}

	set, dropped, err := DecodePayload(resp.Body)
	if err != nil {
		return Set{}, err
	}
	if dropped > 0 {
		c.logger.Warn("dropped malformed permission records", slog.String("actor", actor), slog.Int("count", dropped))
	}
	return set, nil
}
