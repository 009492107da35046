// Package poller fetches the economic data endpoint on a fixed interval and
// hands successful payloads to a callback.
package poller

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

// maxBody caps the response size read from the endpoint.
const maxBody = 4 << 20

// RequestIDHeader carries the id of each poll so server logs can be matched
// against ours.
const RequestIDHeader = "X-Request-ID"

var (
	// ErrStatus is returned when the envelope's status is not "success".
	ErrStatus = errors.New("non-success status")
	// ErrNoData is returned when a successful envelope carries no data.
	ErrNoData = errors.New("response has no data")
	// ErrMalformed is returned when the body is not valid JSON.
	ErrMalformed = errors.New("malformed response")
)

// Config controls where and how often the endpoint is polled.
type Config struct {
	URL      string
	Interval time.Duration
	Timeout  time.Duration
}

// Poller polls the endpoint. At most one request is in flight at a time.
type Poller struct {
	client   *http.Client
	url      string
	interval time.Duration
	timeout  time.Duration
	logger   *zap.Logger

	inflight *semaphore.Weighted
	trigger  chan struct{}
	nextPoll atomic.Int64 // Unix nanoseconds of the next scheduled poll
}

// New creates a Poller. A nil client uses http.DefaultClient.
func New(cfg Config, client *http.Client, logger *zap.Logger) (*Poller, error) {
	if cfg.URL == "" {
		return nil, errors.New("poller needs an endpoint URL")
	}
	if cfg.Interval <= 0 || cfg.Timeout <= 0 {
		return nil, fmt.Errorf("invalid poll timing: interval %s, timeout %s", cfg.Interval, cfg.Timeout)
	}
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Poller{
		client:   client,
		url:      cfg.URL,
		interval: cfg.Interval,
		timeout:  cfg.Timeout,
		logger:   logger,
		inflight: semaphore.NewWeighted(1),
		trigger:  make(chan struct{}, 1),
	}, nil
}

// Poll issues one request and returns the payload of a successful response.
func (p *Poller) Poll(ctx context.Context) (Payload, error) {
	return p.poll(ctx, uuid.NewString())
}

func (p *Poller) poll(ctx context.Context, id string) (Payload, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return Payload{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, id)

	resp, err := p.client.Do(req)
	if err != nil {
		return Payload{}, fmt.Errorf("fetch %s: %w", p.url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return Payload{}, fmt.Errorf("read %s: %w", p.url, err)
	}
	payload, err := Decode(body)
	if err != nil && resp.StatusCode >= http.StatusBadRequest {
		return Payload{}, fmt.Errorf("%s: http %d: %w", p.url, resp.StatusCode, err)
	}
	return payload, err
}

// Decode reads the {status, message, data} envelope.
func Decode(body []byte) (Payload, error) {
	if !gjson.ValidBytes(body) {
		return Payload{}, ErrMalformed
	}
	env := gjson.ParseBytes(body)
	if status := env.Get("status").String(); status != "success" {
		if msg := env.Get("message").String(); msg != "" {
			return Payload{}, fmt.Errorf("%w %q: %s", ErrStatus, status, msg)
		}
		return Payload{}, fmt.Errorf("%w %q", ErrStatus, status)
	}
	data := env.Get("data")
	if !data.Exists() || data.Type == gjson.Null {
		return Payload{}, ErrNoData
	}
	return NewPayload(data.Raw), nil
}

// Trigger requests an immediate poll from Run. Extra triggers coalesce.
func (p *Poller) Trigger() {
	select {
	case p.trigger <- struct{}{}:
	default:
	}
}

// NextPoll returns when the next scheduled poll is due. Safe from any goroutine.
func (p *Poller) NextPoll() time.Time {
	return time.Unix(0, p.nextPoll.Load())
}

// Run polls immediately and then every interval until ctx is done.
// Successful payloads go to deliver; failures are logged and the previous
// display is left alone. Run waits for an in-flight poll before returning.
func (p *Poller) Run(ctx context.Context, deliver func(Payload)) {
	var wg sync.WaitGroup
	defer wg.Wait()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.start(ctx, &wg, deliver)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.start(ctx, &wg, deliver)
		case <-p.trigger:
			ticker.Reset(p.interval)
			p.start(ctx, &wg, deliver)
		}
	}
}

// start launches one poll unless another is still running.
func (p *Poller) start(ctx context.Context, wg *sync.WaitGroup, deliver func(Payload)) {
	p.nextPoll.Store(time.Now().Add(p.interval).UnixNano())
	if !p.inflight.TryAcquire(1) {
		p.logger.Warn("previous poll still in flight, skipping", zap.String("url", p.url))
		return
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer p.inflight.Release(1)
		p.cycle(ctx, deliver)
	}()
}

func (p *Poller) cycle(ctx context.Context, deliver func(Payload)) {
	start := time.Now()
	id := uuid.NewString()
	payload, err := p.poll(ctx, id)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		p.logger.Error("failed to load economic data",
			zap.String("url", p.url),
			zap.String("request_id", id),
			zap.Error(err))
		return
	}
	p.logger.Debug("economic data loaded",
		zap.String("url", p.url),
		zap.String("request_id", id),
		zap.Duration("took", time.Since(start)),
		zap.Bool("fallback", payload.IsFallback()))
	deliver(payload)
}
