package services

import (
	"context"
	"time"

	"github.com/agamariel/cocapremium/internal/events"
	"github.com/agamariel/cocapremium/internal/logger"
	"github.com/agamariel/cocapremium/internal/metrics"
	"github.com/agamariel/cocapremium/internal/storage"
	"go.uber.org/zap"
)

const defaultRelayBatch = 100

// EventRelay периодически переносит события из outbox в Kafka.
type EventRelay struct {
	outbox    storage.OutboxStorage
	publisher events.Publisher
	metrics   *metrics.Metrics
	interval  time.Duration
	batch     int
	logger    *zap.Logger
}

func NewEventRelay(outbox storage.OutboxStorage, publisher events.Publisher, m *metrics.Metrics, interval time.Duration, logger *zap.Logger) *EventRelay {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventRelay{
		outbox:    outbox,
		publisher: publisher,
		metrics:   m,
		interval:  interval,
		batch:     defaultRelayBatch,
		logger:    logger,
	}
}

// Start запускает воркер в отдельной горутине и останавливается по ctx.Done().
func (w *EventRelay) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	go func() {
		defer ticker.Stop()
		if _, err := w.processBatch(ctx); err != nil {
			w.logger.Warn("event relay error on initial batch", zap.Error(err))
		}
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := w.processBatch(ctx); err != nil {
					w.logger.Warn("event relay error", zap.Error(err))
				}
			}
		}
	}()
}

// processBatch публикует записи по порядку и останавливается на первой ошибке,
// чтобы не нарушить порядок событий. Возвращает число отправленных записей.
func (w *EventRelay) processBatch(ctx context.Context) (int, error) {
	start := time.Now()

	records, err := w.outbox.FetchPending(ctx, w.batch)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, r := range records {
		err := w.publisher.Publish(ctx, r.Topic, r.Key, r.Payload)
		if w.metrics != nil {
			w.metrics.EventsPublished.WithLabelValues(metrics.Outcome(err)).Inc()
		}
		if err != nil {
			return sent, err
		}
		if err := w.outbox.MarkSent(ctx, r.ID); err != nil {
			return sent, err
		}
		sent++
	}

	if sent > 0 {
		w.logger.Info("relayed outbox events", zap.Int("count", sent), logger.Since(start))
	}
	return sent, nil
}
