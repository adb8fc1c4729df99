package outbox

import (
	"context"
	"encoding/json"
	"time"

	"relay-chat/internal/domain/outbox"
	"relay-chat/internal/events"
	"relay-chat/internal/repository"
	"relay-chat/pkg/logger"

	"go.uber.org/zap"
)

type Processor struct {
	repo       repository.OutboxRepository
	publisher  events.Publisher
	logger     *logger.Logger
	batchSize  int
	interval   time.Duration
	maxRetries int
}

func NewProcessor(repo repository.OutboxRepository, publisher events.Publisher, log *logger.Logger, batchSize int, interval time.Duration, maxRetries int) *Processor {
	if log == nil {
		log = logger.NewNop()
	}
	return &Processor{
		repo:       repo,
		publisher:  publisher,
		logger:     log.Named("outbox"),
		batchSize:  batchSize,
		interval:   interval,
		maxRetries: maxRetries,
	}
}

// Run polls for pending events until ctx is cancelled.
func (p *Processor) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := p.ProcessBatch(ctx); err != nil && ctx.Err() == nil {
				p.logger.Logger.Warn("outbox batch failed", zap.Error(err))
			}
		}
	}
}

// ProcessBatch publishes one batch of pending events and returns how many
// were delivered.
func (p *Processor) ProcessBatch(ctx context.Context) (int, error) {
	batch, err := p.repo.GetPending(ctx, p.batchSize)
	if err != nil {
		return 0, err
	}

	delivered := 0
	for _, e := range batch {
		if err := p.publish(ctx, e); err != nil {
			p.fail(ctx, e, err)
			continue
		}
		if err := p.repo.MarkCompleted(ctx, e.ID); err != nil {
			return delivered, err
		}
		delivered++
	}
	return delivered, nil
}

func (p *Processor) publish(ctx context.Context, e outbox.OutboxEvent) error {
	env := events.Envelope{
		EventType:     e.EventType,
		AggregateType: e.AggregateType,
		AggregateID:   e.AggregateID,
		OccurredAt:    e.CreatedAt.UTC(),
		Payload:       json.RawMessage(e.Payload),
	}
	payload, err := json.Marshal(env)
	if err != nil {
		return err
	}
	return p.publisher.Publish(ctx, events.ChannelFor(env), payload)
}

// fail records a failed attempt; the event is parked as FAILED once it has
// used up its retries.
func (p *Processor) fail(ctx context.Context, e outbox.OutboxEvent, cause error) {
	log := p.logger.Logger.With(
		zap.String("event_id", e.ID.String()),
		zap.String("event_type", e.EventType),
		zap.Error(cause),
	)

	if e.RetryCount+1 >= p.maxRetries {
		log.Error("outbox event failed permanently")
		if err := p.repo.MarkFailed(ctx, e.ID, cause.Error()); err != nil {
			log.Error("mark outbox event failed", zap.NamedError("update_error", err))
		}
		return
	}

	log.Warn("outbox publish failed, will retry")
	if err := p.repo.IncrementRetry(ctx, e.ID, cause.Error()); err != nil {
		log.Error("increment outbox retry", zap.NamedError("update_error", err))
	}
}
