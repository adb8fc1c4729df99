package outbox

import (
	"context"
	"sync"
	"time"

	"relay-chat/internal/events"
	"relay-chat/internal/repository"
	"relay-chat/pkg/logger"
)

// Runner owns the background goroutine of a Processor.
type Runner struct {
	processor *Processor
	wg        sync.WaitGroup
}

func NewRunner(processor *Processor) *Runner {
	return &Runner{processor: processor}
}

func (r *Runner) Start(ctx context.Context) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.processor.Run(ctx)
	}()
}

// Wait blocks until the processor has returned after its context ended.
func (r *Runner) Wait() {
	r.wg.Wait()
}

func DefaultProcessor(repo repository.OutboxRepository, publisher events.Publisher, log *logger.Logger) *Processor {
	return NewProcessor(repo, publisher, log, 100, time.Second*2, 5)
}
