package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/agamariel/cocapremium/internal/metrics"
	"github.com/agamariel/cocapremium/internal/models"
	"github.com/agamariel/cocapremium/internal/storage"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakePublisher struct {
	mu      sync.Mutex
	keys    []string
	failKey string
}

func (p *fakePublisher) Publish(ctx context.Context, topic, key string, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if key == p.failKey {
		return errors.New("broker unavailable")
	}
	p.keys = append(p.keys, key)
	return nil
}

func (p *fakePublisher) Close() error { return nil }

func (p *fakePublisher) published() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.keys...)
}

func pendingRecords() []*models.OutboxRecord {
	return []*models.OutboxRecord{
		{ID: 1, Topic: "orders.created", Key: "a", Payload: []byte(`{}`)},
		{ID: 2, Topic: "orders.created", Key: "b", Payload: []byte(`{}`)},
		{ID: 3, Topic: "orders.created", Key: "c", Payload: []byte(`{}`)},
	}
}

func TestEventRelay_ProcessBatch(t *testing.T) {
	ctx := context.Background()

	t.Run("publishes in order and marks sent", func(t *testing.T) {
		var marked []int64
		outbox := &storage.MockOutboxStorage{
			FetchPendingFunc: func(ctx context.Context, limit int) ([]*models.OutboxRecord, error) {
				assert.Equal(t, defaultRelayBatch, limit)
				return pendingRecords(), nil
			},
			MarkSentFunc: func(ctx context.Context, id int64) error {
				marked = append(marked, id)
				return nil
			},
		}
		pub := &fakePublisher{}
		m := metrics.New()
		relay := NewEventRelay(outbox, pub, m, time.Second, zap.NewNop())

		sent, err := relay.processBatch(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, sent)
		assert.Equal(t, []string{"a", "b", "c"}, pub.published())
		assert.Equal(t, []int64{1, 2, 3}, marked)
		assert.Equal(t, float64(3), testutil.ToFloat64(m.EventsPublished.WithLabelValues("ok")))
	})

	t.Run("stops at first failure", func(t *testing.T) {
		var marked []int64
		outbox := &storage.MockOutboxStorage{
			FetchPendingFunc: func(ctx context.Context, limit int) ([]*models.OutboxRecord, error) {
				return pendingRecords(), nil
			},
			MarkSentFunc: func(ctx context.Context, id int64) error {
				marked = append(marked, id)
				return nil
			},
		}
		pub := &fakePublisher{failKey: "b"}
		relay := NewEventRelay(outbox, pub, nil, time.Second, nil)

		sent, err := relay.processBatch(ctx)
		assert.Error(t, err)
		assert.Equal(t, 1, sent)
		assert.Equal(t, []int64{1}, marked)
	})

	t.Run("fetch error", func(t *testing.T) {
		outbox := &storage.MockOutboxStorage{
			FetchPendingFunc: func(ctx context.Context, limit int) ([]*models.OutboxRecord, error) {
				return nil, errors.New("db down")
			},
		}
		relay := NewEventRelay(outbox, &fakePublisher{}, nil, time.Second, nil)
		_, err := relay.processBatch(ctx)
		assert.Error(t, err)
	})
}

func TestEventRelay_StartStopsOnCancel(t *testing.T) {
	var mu sync.Mutex
	fetches := 0
	outbox := &storage.MockOutboxStorage{
		FetchPendingFunc: func(ctx context.Context, limit int) ([]*models.OutboxRecord, error) {
			mu.Lock()
			fetches++
			mu.Unlock()
			return nil, nil
		},
	}
	relay := NewEventRelay(outbox, &fakePublisher{}, nil, 10*time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	relay.Start(ctx)

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return fetches >= 2
	}, time.Second, 5*time.Millisecond)
	cancel()
}
