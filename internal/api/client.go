package api

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"clash-tracker/internal/config"
	"clash-tracker/internal/constants"
	"clash-tracker/internal/domain"
	"clash-tracker/internal/middleware"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
	"golang.org/x/sync/singleflight"
)

// Client talks to the player stats API. Successful responses are cached for
// one freshness window; concurrent misses for the same request share a call.
type Client struct {
	baseURL string
	client  *fasthttp.Client
	timeout time.Duration
	window  time.Duration
	cache   *responseCache
	flight  singleflight.Group
	now     func() time.Time
	logger  zerolog.Logger
}

type Option func(*Client)

// WithClock replaces time.Now for cache freshness and chart quantization.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

func WithHTTPClient(hc *fasthttp.Client) Option {
	return func(c *Client) {
		c.client = hc
	}
}

func New(cfg *config.Config, logger zerolog.Logger, opts ...Option) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, invalidURL(err, "parse base url")
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, errors.Mark(errors.Newf("base url %q must be absolute http(s)", baseURL), ErrInvalidURL)
	}

	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = constants.ExternalAPITimeout
	}
	window := cfg.CacheTTL
	if window <= 0 {
		window = constants.FreshnessWindow
	}

	c := &Client{
		baseURL: baseURL,
		client: &fasthttp.Client{
			Name:                "clash-tracker",
			MaxConnsPerHost:     16,
			ReadTimeout:         timeout,
			WriteTimeout:        timeout,
			MaxIdleConnDuration: 1 * time.Minute,
		},
		timeout: timeout,
		window:  window,
		cache:   newResponseCache(window),
		now:     time.Now,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// NewClient is the fx constructor.
func NewClient(cfg *config.Config, logger zerolog.Logger) (*Client, error) {
	return New(cfg, logger)
}

// FetchPlayer returns the cached response when it is younger than the
// freshness window, otherwise it asks the API and caches the result.
func (c *Client) FetchPlayer(ctx context.Context, tag string) (*domain.PlayerSnapshot, error) {
	key, err := c.essentialsURL(tag)
	if err != nil {
		return nil, err
	}

	body, res := c.cache.Get(key, c.now())
	cacheLookupsTotal.WithLabelValues(string(res)).Inc()
	if res == lookupHit {
		player, err := decodeSnapshot(body)
		if err == nil {
			c.logger.Debug().Str("url", key).Msg("returning cached player")
			return player, nil
		}
		c.logger.Warn().Err(err).Str("url", key).Msg("dropping undecodable cache entry")
		c.cache.Delete(key)
	}

	if err := ctx.Err(); err != nil {
		return nil, networkError(err)
	}

	// The shared fetch outlives any one caller, bounded by the client timeout.
	// Each caller still stops waiting when its own ctx ends.
	ch := c.flight.DoChan(key, func() (any, error) {
		return c.fetch(context.WithoutCancel(ctx), key)
	})
	select {
	case <-ctx.Done():
		return nil, networkError(ctx.Err())
	case r := <-ch:
		if r.Err != nil {
			return nil, r.Err
		}
		if r.Shared {
			c.logger.Debug().Str("url", key).Msg("joined in-flight request")
		}
		return r.Val.(*domain.PlayerSnapshot), nil
	}
}

// ForceRefresh drops any cached response for tag and always asks the API.
func (c *Client) ForceRefresh(ctx context.Context, tag string) (*domain.PlayerSnapshot, error) {
	key, err := c.essentialsURL(tag)
	if err != nil {
		return nil, err
	}

	c.cache.Delete(key)
	return c.fetch(ctx, key)
}

// ChartURL builds the trophy chart image URL. The t parameter only changes
// once per freshness window so image caches keep working within a window.
func (c *Client) ChartURL(tag string) (string, error) {
	escaped, err := domain.EscapeTag(tag)
	if err != nil {
		return "", invalidURL(err, "chart url")
	}
	return fmt.Sprintf("%s%s?tag=%s&t=%d", c.baseURL, constants.ChartPath, escaped, quantize(c.now(), c.window)), nil
}

func (c *Client) essentialsURL(tag string) (string, error) {
	escaped, err := domain.EscapeTag(tag)
	if err != nil {
		return "", invalidURL(err, "player essentials url")
	}
	return fmt.Sprintf("%s%s?tag=%s", c.baseURL, constants.PlayerEssentialsPath, escaped), nil
}

func (c *Client) fetch(ctx context.Context, rawURL string) (*domain.PlayerSnapshot, error) {
	body, err := c.doRequest(ctx, rawURL)
	if err == nil {
		var player *domain.PlayerSnapshot
		player, err = decodeSnapshot(body)
		if err == nil {
			requestsTotal.WithLabelValues(outcome(nil)).Inc()
			c.cache.Set(rawURL, body, c.now())
			c.logger.Info().Str("tag", player.PlayerTag).Msg("player fetched successfully")
			return player, nil
		}
	}

	requestsTotal.WithLabelValues(outcome(err)).Inc()
	c.logger.Error().Err(err).Str("url", rawURL).Msg("failed to fetch player")
	return nil, err
}

func (c *Client) doRequest(ctx context.Context, rawURL string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, networkError(err)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(rawURL)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")
	requestID := middleware.GetRequestID(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	req.Header.Set("X-Request-ID", requestID)

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	if err := c.client.DoDeadline(req, resp, deadline); err != nil {
		return nil, networkError(err)
	}

	status := resp.StatusCode()
	switch {
	case status < 100 || status > 599:
		return nil, errors.Wrapf(ErrInvalidResponse, "status %d", status)
	case status == fasthttp.StatusNotFound:
		return nil, ErrPlayerNotFound
	case status != fasthttp.StatusOK:
		return nil, &ServerError{StatusCode: status}
	}

	body := append([]byte(nil), resp.Body()...)
	if len(body) == 0 {
		return nil, errors.Wrap(ErrInvalidResponse, "empty body")
	}
	return body, nil
}

func decodeSnapshot(body []byte) (*domain.PlayerSnapshot, error) {
	var player domain.PlayerSnapshot
	if err := sonic.Unmarshal(body, &player); err != nil {
		return nil, decodeError(err)
	}
	if err := player.Validate(); err != nil {
		return nil, decodeError(err)
	}
	return &player, nil
}

func quantize(t time.Time, window time.Duration) int64 {
	secs := int64(window / time.Second)
	unix := t.Unix()
	if secs <= 0 {
		return unix
	}
	return unix - unix%secs
}
