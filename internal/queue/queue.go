package queue

import (
	"errors"
	"sync"

	"github.com/sirupsen/logrus"

	"homepulse/server/internal/models"
)

var (
	ErrQueueFull   = errors.New("queue is full")
	ErrQueueClosed = errors.New("queue is closed")
)

// RecordQueue buffers incoming sale-record batches between the ingestion
// endpoint and the batch processor.
type RecordQueue struct {
	items    chan []*models.SaleRecord
	done     chan struct{}
	maxSize  int
	closed   bool
	mu       sync.RWMutex
	logger   *logrus.Logger
	handlers []func([]*models.SaleRecord) error
}

// NewRecordQueue creates a queue buffering up to bufferSize batches.
func NewRecordQueue(bufferSize int, logger *logrus.Logger) *RecordQueue {
	if logger == nil {
		logger = logrus.New()
	}
	return &RecordQueue{
		items:   make(chan []*models.SaleRecord, bufferSize),
		done:    make(chan struct{}),
		maxSize: bufferSize,
		logger:  logger,
	}
}

// Push enqueues a batch without blocking; a full queue is reported to the
// caller instead of stalling ingestion.
func (q *RecordQueue) Push(records []*models.SaleRecord) error {
	q.mu.RLock()
	if q.closed {
		q.mu.RUnlock()
		return ErrQueueClosed
	}
	q.mu.RUnlock()

	select {
	case q.items <- records:
		q.logger.WithField("batch_size", len(records)).Debug("Queued sale record batch")
		return nil
	default:
		return ErrQueueFull
	}
}

// Subscribe registers a handler invoked for every queued batch.
func (q *RecordQueue) Subscribe(handler func([]*models.SaleRecord) error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.handlers = append(q.handlers, handler)
}

// Start begins draining the queue in a background goroutine.
func (q *RecordQueue) Start() {
	go q.drain()
}

func (q *RecordQueue) drain() {
	for {
		select {
		case <-q.done:
			return
		case batch := <-q.items:
			q.dispatch(batch)
		}
	}
}

func (q *RecordQueue) dispatch(batch []*models.SaleRecord) {
	q.mu.RLock()
	handlers := q.handlers
	q.mu.RUnlock()

	for _, handler := range handlers {
		if err := handler(batch); err != nil {
			q.logger.WithError(err).Error("Batch handler failed")
		}
	}
}

// Close stops the queue and rejects further pushes.
func (q *RecordQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	q.closed = true
	close(q.done)
	close(q.items)
	return nil
}

// Len returns the number of batches waiting in the queue.
func (q *RecordQueue) Len() int {
	return len(q.items)
}

// IsClosed reports whether the queue has been closed.
func (q *RecordQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
