package events

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/letitbe-trn/oneroom-app/internal/application"
	"github.com/letitbe-trn/oneroom-app/internal/common/kafka"
)

// BookingsPartitionKey keys every booking change so snapshots share one
// partition and are consumed in commit order.
const BookingsPartitionKey = "bookings"

const publishQueueSize = 64

// EventPublisher writes keyed CloudEvents to a topic.
type EventPublisher interface {
	PublishKeyed(ctx context.Context, topic, key string, ce kafka.CloudEvent) error
}

// KafkaNotifier publishes committed booking changes; a SyncConsumer performs the mirror.
// A single worker drains the queue so events leave in the order they were notified.
type KafkaNotifier struct {
	publisher EventPublisher
	topic     string
	timeout   time.Duration
	logger    *zap.Logger

	mu     sync.RWMutex
	closed bool
	queue  chan kafka.CloudEvent
	done   chan struct{}
}

// NewKafkaNotifier creates a notifier publishing to topic and starts its worker.
func NewKafkaNotifier(publisher EventPublisher, topic string, timeout time.Duration, logger *zap.Logger) *KafkaNotifier {
	n := &KafkaNotifier{
		publisher: publisher,
		topic:     topic,
		timeout:   timeout,
		logger:    logger,
		queue:     make(chan kafka.CloudEvent, publishQueueSize),
		done:      make(chan struct{}),
	}
	go n.run()
	return n
}

// Notify enqueues the change for publishing. Changes without an endpoint are
// still published so other consumers see every change.
func (n *KafkaNotifier) Notify(_ context.Context, change application.BookingsChanged) {
	ce, err := kafka.NewCloudEvent(EventSource, BookingsChangedType, newBookingsChangedEvent(change))
	if err != nil {
		n.logger.Error("failed to build bookings changed event", zap.Error(err))
		return
	}

	n.mu.RLock()
	defer n.mu.RUnlock()
	if n.closed {
		n.logger.Warn("notifier closed, dropping bookings changed event", zap.String("event_id", ce.ID))
		return
	}

	select {
	case n.queue <- ce:
	default:
		n.logger.Warn("publish queue full, dropping bookings changed event", zap.String("event_id", ce.ID))
	}
}

// Close stops accepting changes and waits for queued events to be published.
func (n *KafkaNotifier) Close() {
	n.mu.Lock()
	if !n.closed {
		n.closed = true
		close(n.queue)
	}
	n.mu.Unlock()
	<-n.done
}

func (n *KafkaNotifier) run() {
	defer close(n.done)
	for ce := range n.queue {
		n.publish(ce)
	}
}

func (n *KafkaNotifier) publish(ce kafka.CloudEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
	defer cancel()
	if err := n.publisher.PublishKeyed(ctx, n.topic, BookingsPartitionKey, ce); err != nil {
		n.logger.Error("failed to publish bookings changed event",
			zap.String("event_id", ce.ID),
			zap.Error(err),
		)
	}
}
