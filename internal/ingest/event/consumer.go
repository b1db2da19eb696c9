package event

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/shandysiswandi/gofraud/internal/ingest/entity"
)

type Handler interface {
	Handle(ctx context.Context, event entity.IngestedEvent) error
}

type ConsumerConfig struct {
	Workers     int
	MaxRetries  int
	BaseBackoff time.Duration
}

// Consumer drains the bus with a fixed pool of workers. Each event is handed
// to the handler at most once per event id, retried with exponential backoff.
type Consumer struct {
	bus         *Bus
	handler     Handler
	workers     int
	maxRetries  int
	baseBackoff time.Duration
	seen        sync.Map
	wg          sync.WaitGroup
}

func NewConsumer(bus *Bus, handler Handler, cfg ConsumerConfig) *Consumer {
	workers := cfg.Workers
	if workers < 1 {
		workers = 4
	}

	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}

	baseBackoff := cfg.BaseBackoff
	if baseBackoff <= 0 {
		baseBackoff = 100 * time.Millisecond
	}

	return &Consumer{
		bus:         bus,
		handler:     handler,
		workers:     workers,
		maxRetries:  maxRetries,
		baseBackoff: baseBackoff,
	}
}

func (c *Consumer) Start() {
	for i := 0; i < c.workers; i++ {
		c.wg.Add(1)
		go c.worker()
	}
}

// Stop closes the bus and waits for the queued events to drain.
func (c *Consumer) Stop(ctx context.Context) error {
	if c.bus != nil {
		c.bus.Close()
	}

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Consumer) worker() {
	defer c.wg.Done()

	for event := range c.bus.Subscribe() {
		c.processEvent(event)
	}
}

func (c *Consumer) processEvent(event entity.IngestedEvent) {
	if c.handler == nil {
		return
	}

	if event.EventID != "" {
		if _, loaded := c.seen.LoadOrStore(event.EventID, struct{}{}); loaded {
			slog.Info("skip duplicate ingestion event", "event_id", event.EventID, "upload_id", event.UploadID)
			return
		}
	}

	backoff := c.baseBackoff
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		err := c.handler.Handle(context.Background(), event)
		if err == nil {
			return
		}

		if attempt == c.maxRetries {
			slog.Error("failed to handle ingestion event after retries", "event_id", event.EventID, "upload_id", event.UploadID, "error", err)
			return
		}

		sleepBackoff(backoff)
		backoff *= 2
	}
}

func sleepBackoff(d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	<-timer.C
}

// JournalHandler writes one audit log line per finished ingestion.
type JournalHandler struct{}

func (JournalHandler) Handle(ctx context.Context, event entity.IngestedEvent) error {
	if event.EventID == "" {
		return errors.New("missing event id")
	}

	attrs := []any{
		"event_id", event.EventID,
		"upload_id", event.UploadID,
		"status", event.Status,
		"rows", event.Rows,
		"stored_rows", event.StoredRows,
		"truncated", event.Truncated,
		"persisted", event.Persisted,
		"fraud_count", event.FraudCount,
	}
	if event.ErrKind != entity.ErrorKindNone {
		attrs = append(attrs, "error_kind", event.ErrKind)
	}

	slog.InfoContext(ctx, "ingestion finished", attrs...)
	return nil
}
