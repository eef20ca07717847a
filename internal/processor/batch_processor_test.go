package processor

import (
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"homepulse/server/config"
	"homepulse/server/internal/models"
	"homepulse/server/internal/queue"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) UpsertBatch(records []*models.SaleRecord) error {
	args := m.Called(records)
	return args.Error(0)
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.BatchProcessing.ProcessorCount = 2
	cfg.BatchProcessing.MaxRetries = 3
	cfg.BatchProcessing.RetryDelay = 0
	return cfg
}

func TestNewBatchProcessor(t *testing.T) {
	mockStore := &MockStore{}
	q := queue.NewRecordQueue(10, nil)
	cfg := testConfig()
	logger := logrus.New()

	p := NewBatchProcessor(mockStore, q, cfg, logger)

	assert.NotNil(t, p)
	assert.Equal(t, mockStore, p.store)
	assert.Equal(t, q, p.queue)
	assert.Equal(t, cfg, p.config)
	assert.Equal(t, logger, p.logger)
}

func TestBatchProcessor_ProcessBatch(t *testing.T) {
	mockStore := &MockStore{}
	q := queue.NewRecordQueue(10, nil)
	p := NewBatchProcessor(mockStore, q, testConfig(), logrus.New())

	batch := []*models.SaleRecord{
		{MLSNumber: "MLS-1"},
		{MLSNumber: "MLS-2"},
	}

	// Successful persist on the first attempt.
	mockStore.On("UpsertBatch", batch).Return(nil).Once()
	err := p.processBatch(batch)
	assert.NoError(t, err)

	// Persistent failure exhausts the initial attempt plus three retries.
	mockStore.On("UpsertBatch", batch).Return(errors.New("db error")).Times(4)
	err = p.processBatch(batch)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to persist batch after 3 attempts")

	mockStore.AssertExpectations(t)
}

func TestBatchProcessor_RecoversOnRetry(t *testing.T) {
	mockStore := &MockStore{}
	q := queue.NewRecordQueue(10, nil)
	p := NewBatchProcessor(mockStore, q, testConfig(), logrus.New())

	batch := []*models.SaleRecord{{MLSNumber: "MLS-1"}}

	mockStore.On("UpsertBatch", batch).Return(errors.New("locked")).Once()
	mockStore.On("UpsertBatch", batch).Return(nil).Once()

	err := p.processBatch(batch)
	assert.NoError(t, err)
	mockStore.AssertExpectations(t)
}

func TestBatchProcessor_EndToEnd(t *testing.T) {
	mockStore := &MockStore{}
	q := queue.NewRecordQueue(10, nil)
	p := NewBatchProcessor(mockStore, q, testConfig(), logrus.New())

	batch := []*models.SaleRecord{{MLSNumber: "MLS-1"}}
	done := make(chan struct{})
	mockStore.On("UpsertBatch", batch).Return(nil).Once().Run(func(mock.Arguments) {
		close(done)
	})

	p.Start()
	q.Start()
	defer func() {
		q.Close()
		p.Stop()
	}()

	assert.NoError(t, q.Push(batch))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("batch was not persisted")
	}
	mockStore.AssertExpectations(t)
}

func TestBatchProcessor_PersistsEachBatchOnce(t *testing.T) {
	mockStore := &MockStore{}
	q := queue.NewRecordQueue(10, nil)

	// Two workers share one subscription; a batch must not be upserted
	// once per worker.
	p := NewBatchProcessor(mockStore, q, testConfig(), logrus.New())

	batch := []*models.SaleRecord{{MLSNumber: "MLS-1"}}
	mockStore.On("UpsertBatch", batch).Return(nil)

	p.Start()
	q.Start()
	defer func() {
		q.Close()
		p.Stop()
	}()

	assert.NoError(t, q.Push(batch))
	time.Sleep(200 * time.Millisecond)

	mockStore.AssertNumberOfCalls(t, "UpsertBatch", 1)
}
