package analytics

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/medjobs/jobquery/pkg/kafka"
	"github.com/medjobs/jobquery/pkg/resilience"
)

// Publisher is the subset of kafka.Producer the collector needs.
type Publisher interface {
	Publish(ctx context.Context, events ...kafka.Event) error
}

// CollectorConfig sizes the collector. Zero fields take defaults.
type CollectorConfig struct {
	BufferSize    int
	BatchSize     int
	FlushInterval time.Duration
	// Retry governs publish attempts per batch; zero means
	// resilience.PublishRetry.
	Retry resilience.RetryConfig
	// OnDrop is called once per event lost to a full buffer or a failed
	// publish.
	OnDrop func()
}

// Collector buffers analytics events and publishes them in batches, either
// when a batch fills or when the flush interval elapses. Track never
// blocks: events are dropped when the buffer is full.
type Collector struct {
	publisher     Publisher
	eventCh       chan kafka.Event
	batchSize     int
	flushInterval time.Duration
	retry         resilience.RetryConfig
	onDrop        func()
	logger        *slog.Logger

	mu     sync.RWMutex
	closed bool
	once   sync.Once
	done   chan struct{}
}

func NewCollector(publisher Publisher, cfg CollectorConfig) *Collector {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 10000
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = time.Second
	}
	if cfg.Retry.MaxAttempts == 0 {
		cfg.Retry = resilience.PublishRetry()
	}
	if cfg.OnDrop == nil {
		cfg.OnDrop = func() {}
	}
	return &Collector{
		publisher:     publisher,
		eventCh:       make(chan kafka.Event, cfg.BufferSize),
		batchSize:     cfg.BatchSize,
		flushInterval: cfg.FlushInterval,
		retry:         cfg.Retry,
		onDrop:        cfg.OnDrop,
		logger:        slog.Default().With("component", "analytics-collector"),
		done:          make(chan struct{}),
	}
}

// Start launches the publish loop. It runs until ctx is cancelled or Close
// is called, flushing whatever is buffered on the way out.
func (c *Collector) Start(ctx context.Context) {
	go c.run(ctx)
	c.logger.Info("analytics collector started",
		"buffer_size", cap(c.eventCh),
		"batch_size", c.batchSize,
		"flush_interval", c.flushInterval,
	)
}

// TrackParse queues a parse event.
func (c *Collector) TrackParse(event ParseEvent) {
	c.track(kafka.Event{Key: event.Query, Type: string(EventParse), Value: event})
}

// TrackSuggest queues a suggestion event.
func (c *Collector) TrackSuggest(event SuggestEvent) {
	c.track(kafka.Event{Key: event.Prefix, Type: string(EventSuggest), Value: event})
}

func (c *Collector) track(event kafka.Event) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		c.onDrop()
		return
	}
	select {
	case c.eventCh <- event:
	default:
		c.onDrop()
		c.logger.Warn("analytics event dropped (buffer full)", "type", event.Type)
	}
}

// Close stops accepting events and waits for the final flush. It must only
// be called after Start.
func (c *Collector) Close() {
	c.once.Do(func() {
		c.mu.Lock()
		c.closed = true
		close(c.eventCh)
		c.mu.Unlock()
	})
	<-c.done
}

func (c *Collector) run(ctx context.Context) {
	defer close(c.done)
	ticker := time.NewTicker(c.flushInterval)
	defer ticker.Stop()

	batch := make([]kafka.Event, 0, c.batchSize)
	flush := func(ctx context.Context) {
		if len(batch) == 0 {
			return
		}
		c.publish(ctx, batch)
		batch = batch[:0]
	}
	finalFlush := func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		flush(flushCtx)
	}

	for {
		select {
		case event, ok := <-c.eventCh:
			if !ok {
				finalFlush()
				return
			}
			batch = append(batch, event)
			if len(batch) >= c.batchSize {
				flush(ctx)
			}
		case <-ticker.C:
			flush(ctx)
		case <-ctx.Done():
			c.drainInto(&batch)
			finalFlush()
			return
		}
	}
}

func (c *Collector) drainInto(batch *[]kafka.Event) {
	for {
		select {
		case event, ok := <-c.eventCh:
			if !ok {
				return
			}
			*batch = append(*batch, event)
		default:
			return
		}
	}
}

func (c *Collector) publish(ctx context.Context, batch []kafka.Event) {
	err := resilience.Retry(ctx, "publish-analytics", c.retry, func() error {
		return c.publisher.Publish(ctx, batch...)
	})
	if err != nil {
		c.logger.Error("analytics batch dropped", "events", len(batch), "error", err)
		for range batch {
			c.onDrop()
		}
		return
	}
	c.logger.Debug("analytics batch published", "events", len(batch))
}
