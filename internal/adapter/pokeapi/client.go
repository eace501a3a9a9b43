package pokeapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	dto "pokedex-service/internal/adapter/pokeapi/dto"
	"pokedex-service/internal/config"
	"pokedex-service/internal/domain/entity"
	domainService "pokedex-service/internal/domain/service"
	"pokedex-service/internal/pkg/backoff"
	"pokedex-service/internal/pkg/neterr"
)

// Compile-time check
var _ domainService.PokemonClient = (*Client)(nil)

// Client implements PokemonClient against the live Pokemon API using fasthttp.
// Failed requests are retried with exponential backoff when the failure is
// classified as transient.
type Client struct {
	client  *fasthttp.Client
	baseURL string
	limit   int
	cfg     config.APIConfig
	logger  *zap.Logger

	// Registry of in-flight request cancel handles, keyed by a fresh id per
	// call. Guarded by mu; CancelAll drains it.
	mu      sync.Mutex
	handles map[uint64]context.CancelFunc
	nextID  atomic.Uint64
}

// NewClient creates a new Pokemon API client instance.
func NewClient(cfg config.Config, logger *zap.Logger) domainService.PokemonClient {
	return &Client{
		client: &fasthttp.Client{
			ReadTimeout: cfg.API.GetTimeout(),
		},
		baseURL: cfg.API.BaseURL,
		limit:   cfg.Loader.ExpectedCount,
		cfg:     cfg.API,
		logger:  logger.Named("PokeAPIClient"),
		handles: make(map[uint64]context.CancelFunc),
	}
}

// FetchCollectionSummary fetches the collection listing with the configured limit.
func (c *Client) FetchCollectionSummary(ctx context.Context) (entity.Summary, error) {
	requestURL := fmt.Sprintf("%s/pokemon?limit=%d", c.baseURL, c.limit)
	if _, err := url.ParseRequestURI(requestURL); err != nil {
		return entity.Summary{}, neterr.InvalidURL(requestURL)
	}

	ctx, done := c.register(ctx)
	defer done()

	var raw dto.SummaryRaw
	if err := c.getJSON(ctx, requestURL, &raw); err != nil {
		return entity.Summary{}, err
	}

	summary := toDomainSummary(raw)
	c.logger.Debug("Fetched collection summary",
		zap.Int("count", summary.Count),
		zap.Int("results", len(summary.Results)),
	)
	return summary, nil
}

// FetchPokemonDetail fetches the full record for a single Pokemon by id.
func (c *Client) FetchPokemonDetail(ctx context.Context, id int) (entity.Pokemon, error) {
	requestURL := fmt.Sprintf("%s/pokemon/%d", c.baseURL, id)
	if _, err := url.ParseRequestURI(requestURL); err != nil {
		return entity.Pokemon{}, neterr.InvalidURL(requestURL)
	}

	ctx, done := c.register(ctx)
	defer done()

	var raw dto.PokemonRaw
	if err := c.getJSON(ctx, requestURL, &raw); err != nil {
		return entity.Pokemon{}, err
	}

	if raw.ID != id {
		c.logger.Warn("Detail response ID does not match requested ID",
			zap.Int("requested", id), zap.Int("received", raw.ID),
		)
		return entity.Pokemon{}, neterr.DecodingFailed(
			fmt.Sprintf("response id %d does not match requested id %d", raw.ID, id), nil,
		)
	}

	return toDomainPokemon(raw), nil
}

// CancelAll cancels every in-flight request issued by this client instance.
// Safe to call when nothing is in flight.
func (c *Client) CancelAll() {
	c.mu.Lock()
	cancelled := len(c.handles)
	for id, cancel := range c.handles {
		cancel()
		delete(c.handles, id)
	}
	c.mu.Unlock()

	if cancelled > 0 {
		c.logger.Info("Cancelled in-flight requests", zap.Int("count", cancelled))
	}
}

// register derives a cancellable context for one request and tracks its
// cancel handle until the returned cleanup runs.
func (c *Client) register(parent context.Context) (context.Context, func()) {
	ctx, cancel := context.WithCancel(parent)
	id := c.nextID.Add(1)

	c.mu.Lock()
	c.handles[id] = cancel
	c.mu.Unlock()

	return ctx, func() {
		c.mu.Lock()
		delete(c.handles, id)
		c.mu.Unlock()
		cancel()
	}
}

// getJSON performs a GET with the retry policy applied and decodes the body
// into out. Cancellation is re-checked before and after every attempt and
// interrupts the backoff sleep immediately.
func (c *Client) getJSON(ctx context.Context, requestURL string, out interface{}) error {
	maxAttempts := c.cfg.MaxRetries
	if maxAttempts <= 0 {
		maxAttempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			delay := backoff.Delay(attempt-1, c.cfg.RetryBaseDelay)
			c.logger.Debug("Retrying request after backoff",
				zap.String("url", requestURL),
				zap.Int("attempt", attempt),
				zap.Duration("delay", delay),
			)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		if err := ctx.Err(); err != nil {
			return err
		}

		body, err := c.doGet(ctx, requestURL)

		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if err == nil {
			if len(body) == 0 {
				return neterr.NoData()
			}
			if uerr := json.Unmarshal(body, out); uerr != nil {
				c.logger.Error("Failed to unmarshal API response",
					zap.String("url", requestURL), zap.Error(uerr),
				)
				return neterr.DecodingFailed("failed to parse response body", uerr)
			}
			return nil
		}

		lastErr = err
		if !backoff.Retryable(err) {
			return err
		}
		c.logger.Warn("Transient request failure",
			zap.String("url", requestURL),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
	}
	return lastErr
}

// doGet executes a single GET attempt and classifies the outcome.
func (c *Client) doGet(ctx context.Context, requestURL string) ([]byte, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(requestURL)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set(fasthttp.HeaderAccept, "application/json")

	deadline, hasDeadline := ctx.Deadline()
	timeout := c.client.ReadTimeout
	if hasDeadline {
		requestTimeout := time.Until(deadline)
		if requestTimeout > 0 && (timeout <= 0 || requestTimeout < timeout) {
			timeout = requestTimeout
		}
	}

	var err error
	if timeout <= 0 {
		err = c.client.Do(req, resp)
	} else {
		err = c.client.DoTimeout(req, resp, timeout)
	}
	if err != nil {
		return nil, classifyTransportError(err)
	}

	status := resp.StatusCode()
	switch {
	case status >= 200 && status < 300:
		// fall through to body handling
	case status >= 500:
		return nil, neterr.ServerError(status)
	case status >= 400:
		return nil, neterr.RequestFailed(status)
	default:
		return nil, neterr.Unknown(fmt.Sprintf("unexpected status %d", status), nil)
	}

	// Copy out of the pooled response before release.
	body := append([]byte(nil), resp.Body()...)
	return body, nil
}

// classifyTransportError maps a transport-level failure onto the error taxonomy.
func classifyTransportError(err error) *neterr.Error {
	if errors.Is(err, fasthttp.ErrTimeout) || errors.Is(err, fasthttp.ErrDialTimeout) {
		return neterr.Timeout(err)
	}
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return neterr.Timeout(err)
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return neterr.NoInternet(err)
	}
	if errors.Is(err, fasthttp.ErrConnectionClosed) || errors.Is(err, fasthttp.ErrNoFreeConns) {
		return neterr.NoInternet(err)
	}
	return neterr.Unknown("transport failure", err)
}
