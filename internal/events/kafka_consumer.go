package events

import (
	"context"
	"strings"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/letitbe-trn/oneroom-app/internal/application"
	"github.com/letitbe-trn/oneroom-app/internal/common/kafka"
)

// SyncConsumer listens to booking change events and mirrors them to the spreadsheet.
type SyncConsumer struct {
	consumer *kafka.Consumer
	mirror   application.Mirror
	logger   *zap.Logger
}

// NewSyncConsumer creates a new consumer for booking change events.
func NewSyncConsumer(
	brokers []string,
	groupID string,
	topic string,
	mirror application.Mirror,
	logger *zap.Logger,
) *SyncConsumer {
	consumer := kafka.NewConsumer(brokers, groupID, topic, logger)
	return &SyncConsumer{
		consumer: consumer,
		mirror:   mirror,
		logger:   logger,
	}
}

// Start begins consuming booking events. It blocks until the context is cancelled.
func (c *SyncConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

// handleMessage routes incoming Kafka messages to the appropriate handler.
func (c *SyncConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	cloudEvent, err := kafka.ParseCloudEvent(msg.Value)
	if err != nil {
		c.logger.Error("failed to parse cloud event from booking topic",
			zap.Error(err),
			zap.String("raw", string(msg.Value)),
		)
		return err
	}

	c.logger.Info("received booking event",
		zap.String("type", cloudEvent.Type),
		zap.String("id", cloudEvent.ID),
	)

	switch {
	case strings.EqualFold(cloudEvent.Type, BookingsChangedType):
		return c.handleBookingsChanged(ctx, cloudEvent)

	default:
		c.logger.Debug("ignoring unhandled booking event type",
			zap.String("type", cloudEvent.Type),
		)
		return nil
	}
}

// handleBookingsChanged mirrors the snapshot carried by the event.
// Mirror failures are logged and the offset is still committed; the next
// change or scheduled resync brings the sheet up to date.
func (c *SyncConsumer) handleBookingsChanged(ctx context.Context, ce kafka.CloudEvent) error {
	var event BookingsChangedEvent
	if err := ce.ParseData(&event); err != nil {
		c.logger.Error("failed to parse BookingsChangedEvent data", zap.Error(err))
		return err
	}

	if err := c.mirror.Mirror(ctx, event.toChange()); err != nil {
		c.logger.Warn("mirror from event failed",
			zap.String("id", ce.ID),
			zap.String("reason", event.Reason),
			zap.Error(err),
		)
	}
	return nil
}

// Close closes the underlying Kafka consumer.
func (c *SyncConsumer) Close() error {
	return c.consumer.Close()
}
