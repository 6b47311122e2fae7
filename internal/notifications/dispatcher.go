// Package notifications fans a published post out to the push endpoint.
package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/fremontasb/fremont-api/internal/constants"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// ErrDispatcherClosed is returned by Enqueue once Shutdown has been called.
var ErrDispatcherClosed = errors.New("dispatcher is shut down")

// ErrQueueFull is returned by Enqueue when no worker can take the job.
var ErrQueueFull = errors.New("dispatch queue is full")

// Notification is a post that just became visible to its organization.
type Notification struct {
	PostID         uint64
	OrganizationID uint64
	Title          string
	Content        string
}

// Message is one entry of the push endpoint's request body.
type Message struct {
	To    string `json:"to"`
	Title string `json:"title"`
	Body  string `json:"body"`
}

// TokenSource resolves the device tokens of an organization's roster.
type TokenSource interface {
	TokensForOrganization(ctx context.Context, orgID uint64) ([]string, error)
}

// Config configures a Dispatcher.
type Config struct {
	Endpoint      string
	BatchSize     int
	Workers       int
	QueueSize     int
	RatePerSecond float64
	HTTPClient    *http.Client
}

// Result summarizes one dispatch.
type Result struct {
	Messages      int
	Batches       int
	FailedBatches int
}

// Dispatcher delivers notifications in batches on a pool of background workers.
type Dispatcher struct {
	endpoint  string
	batchSize int
	workers   int
	client    *http.Client
	limiter   *rate.Limiter
	tokens    TokenSource

	mu     sync.Mutex
	queue  chan Notification
	closed bool
	group  *errgroup.Group
}

// NewDispatcher creates a Dispatcher. Call Start to run its workers.
func NewDispatcher(tokens TokenSource, cfg Config) *Dispatcher {
	batchSize := cfg.BatchSize
	if batchSize <= 0 || batchSize > constants.MaxPushBatchSize {
		batchSize = constants.MaxPushBatchSize
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = 64
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{}
	}
	client = &http.Client{
		Transport:     newLoggingTransport(client.Transport),
		CheckRedirect: client.CheckRedirect,
		Jar:           client.Jar,
		Timeout:       client.Timeout,
	}

	var limiter *rate.Limiter
	if cfg.RatePerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), 1)
	}

	return &Dispatcher{
		endpoint:  cfg.Endpoint,
		batchSize: batchSize,
		workers:   workers,
		client:    client,
		limiter:   limiter,
		tokens:    tokens,
		queue:     make(chan Notification, queueSize),
	}
}

// Start launches the worker pool. Workers exit once Shutdown drains the queue.
func (d *Dispatcher) Start(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.group != nil {
		return
	}

	d.group = new(errgroup.Group)
	for i := 0; i < d.workers; i++ {
		d.group.Go(func() error {
			for n := range d.queue {
				result, err := d.Dispatch(ctx, n)
				if err != nil {
					log.Error().Err(err).Uint64("post_id", n.PostID).Msg("Failed to dispatch notification")
					continue
				}
				log.Info().
					Uint64("post_id", n.PostID).
					Uint64("organization_id", n.OrganizationID).
					Int("messages", result.Messages).
					Int("batches", result.Batches).
					Int("failed_batches", result.FailedBatches).
					Msg("Notification dispatched")
			}
			return nil
		})
	}
}

// Enqueue hands a notification to the workers without blocking the caller.
func (d *Dispatcher) Enqueue(n Notification) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return ErrDispatcherClosed
	}

	select {
	case d.queue <- n:
		return nil
	default:
		return ErrQueueFull
	}
}

// Shutdown stops accepting notifications and waits for queued ones to be sent.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	group := d.group
	d.mu.Unlock()

	if group == nil {
		return nil
	}

	done := make(chan error, 1)
	go func() {
		done <- group.Wait()
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Dispatch resolves the roster of the notification's organization and sends
// one request per batch. Failed batches are logged and skipped; only a
// roster lookup failure is returned as an error.
func (d *Dispatcher) Dispatch(ctx context.Context, n Notification) (Result, error) {
	tokens, err := d.tokens.TokensForOrganization(ctx, n.OrganizationID)
	if err != nil {
		return Result{}, fmt.Errorf("failed to resolve roster: %w", err)
	}

	body := Excerpt(n.Content, constants.PushExcerptLength)
	messages := BuildMessages(tokens, n.Title, body)
	return d.Send(ctx, messages), nil
}

// Send posts messages to the push endpoint in batches.
func (d *Dispatcher) Send(ctx context.Context, messages []Message) Result {
	result := Result{Messages: len(messages)}

	for _, batch := range Batches(messages, d.batchSize) {
		result.Batches++

		if d.limiter != nil {
			if err := d.limiter.Wait(ctx); err != nil {
				log.Error().Err(err).Int("size", len(batch)).Msg("Push batch skipped")
				result.FailedBatches++
				continue
			}
		}

		if err := d.post(ctx, batch); err != nil {
			log.Error().Err(err).Int("size", len(batch)).Msg("Push batch failed")
			result.FailedBatches++
		}
	}

	return result
}

func (d *Dispatcher) post(ctx context.Context, batch []Message) error {
	payload, err := json.Marshal(batch)
	if err != nil {
		return fmt.Errorf("failed to encode batch: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("push endpoint returned status %d", resp.StatusCode)
	}
	return nil
}

// BuildMessages creates one message per non-empty token. Duplicate tokens are kept.
func BuildMessages(tokens []string, title, body string) []Message {
	messages := make([]Message, 0, len(tokens))
	for _, token := range tokens {
		if token == "" {
			continue
		}
		messages = append(messages, Message{To: token, Title: title, Body: body})
	}
	return messages
}

// Batches splits messages into consecutive chunks of at most size messages.
func Batches(messages []Message, size int) [][]Message {
	if size <= 0 {
		size = constants.MaxPushBatchSize
	}
	var batches [][]Message
	for start := 0; start < len(messages); start += size {
		end := start + size
		if end > len(messages) {
			end = len(messages)
		}
		batches = append(batches, messages[start:end])
	}
	return batches
}
