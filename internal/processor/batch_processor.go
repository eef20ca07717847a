package processor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"homepulse/server/config"
	"homepulse/server/internal/models"
	"homepulse/server/internal/queue"
)

// RecordStore is the slice of the store the processor needs.
type RecordStore interface {
	UpsertBatch(records []*models.SaleRecord) error
}

// BatchProcessor drains the record queue and persists batches with retry.
type BatchProcessor struct {
	store     RecordStore
	logger    *logrus.Logger
	config    *config.Config
	queue     *queue.RecordQueue
	jobs      chan []*models.SaleRecord
	waitGroup sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewBatchProcessor creates a batch processor draining q into store.
func NewBatchProcessor(store RecordStore, q *queue.RecordQueue, cfg *config.Config, logger *logrus.Logger) *BatchProcessor {
	ctx, cancel := context.WithCancel(context.Background())
	return &BatchProcessor{
		store:  store,
		queue:  q,
		config: cfg,
		logger: logger,
		jobs:   make(chan []*models.SaleRecord, cfg.BatchProcessing.QueueSize),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start subscribes once to the queue and fans batches out to the
// configured number of workers, so each batch is persisted exactly once.
func (p *BatchProcessor) Start() {
	p.queue.Subscribe(func(batch []*models.SaleRecord) error {
		select {
		case p.jobs <- batch:
			return nil
		case <-p.ctx.Done():
			return p.ctx.Err()
		}
	})

	for i := 0; i < p.config.BatchProcessing.ProcessorCount; i++ {
		p.waitGroup.Add(1)
		go p.processLoop()
	}
}

// Stop cancels in-flight work and waits for the workers to exit.
func (p *BatchProcessor) Stop() {
	p.cancel()
	p.waitGroup.Wait()
}

func (p *BatchProcessor) processLoop() {
	defer p.waitGroup.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case batch := <-p.jobs:
			if err := p.processBatch(batch); err != nil {
				p.logger.WithError(err).Error("Dropping batch after exhausted retries")
			}
		}
	}
}

// processBatch persists one batch, retrying transient failures with a
// fixed delay.
func (p *BatchProcessor) processBatch(batch []*models.SaleRecord) error {
	var err error
	for attempt := 0; attempt <= p.config.BatchProcessing.MaxRetries; attempt++ {
		if attempt > 0 {
			p.logger.Infof("Retrying batch upsert, attempt %d of %d", attempt, p.config.BatchProcessing.MaxRetries)
			time.Sleep(time.Duration(p.config.BatchProcessing.RetryDelay) * time.Second)
		}

		if err = p.store.UpsertBatch(batch); err == nil {
			p.logger.Infof("Persisted batch of %d sale records", len(batch))
			return nil
		}
		p.logger.Errorf("Batch upsert failed: %v", err)
	}

	return fmt.Errorf("failed to persist batch after %d attempts: %w", p.config.BatchProcessing.MaxRetries, err)
}
