//go:build integration

package main_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	kafkamodule "github.com/testcontainers/testcontainers-go/modules/kafka"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/letitbe-trn/oneroom-app/internal/adapter"
	"github.com/letitbe-trn/oneroom-app/internal/application"
	"github.com/letitbe-trn/oneroom-app/internal/common/database"
	"github.com/letitbe-trn/oneroom-app/internal/common/kafka"
	bookingEvents "github.com/letitbe-trn/oneroom-app/internal/events"
	"github.com/letitbe-trn/oneroom-app/internal/repository"
	"github.com/letitbe-trn/oneroom-app/internal/state"
)

// startPostgres starts a PostgreSQL container and returns a migrated GORM DB.
func startPostgres(t *testing.T) (*gorm.DB, func()) {
	t.Helper()
	ctx := context.Background()

	// Start PostgreSQL container with log-based wait strategy.
	pgReq := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "test_oneroom",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	pgContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: pgReq,
		Started:          true,
	})
	require.NoError(t, err, "failed to start PostgreSQL container")

	pgHost, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	pgPort, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	cfg := database.PostgresConfig{
		Host:     pgHost,
		Port:     pgPort.Port(),
		User:     "test",
		Password: "test",
		DBName:   "test_oneroom",
		SSLMode:  "disable",
	}

	// Poll until GORM can actually connect and ping.
	var db *gorm.DB
	require.Eventually(t, func() bool {
		var err error
		db, err = database.Connect(cfg, zap.NewNop())
		return err == nil
	}, 30*time.Second, 1*time.Second, "PostgreSQL not ready for connections")

	require.NoError(t, db.AutoMigrate(&repository.RecordModel{}))

	return db, func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate PostgreSQL container: %v", err)
		}
	}
}

// startKafka starts a Kafka container with the booking topic created.
func startKafka(t *testing.T, topics ...string) ([]string, func()) {
	t.Helper()
	ctx := context.Background()

	// Start Kafka container using confluent-local (supports KRaft natively).
	kafkaContainer, err := kafkamodule.Run(ctx, "confluentinc/confluent-local:7.5.0")
	require.NoError(t, err, "failed to start Kafka container")

	brokers, err := kafkaContainer.Brokers(ctx)
	require.NoError(t, err, "failed to get Kafka brokers")

	createTopics(t, brokers, topics...)

	return brokers, func() {
		if err := kafkaContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate Kafka container: %v", err)
		}
	}
}

// newHolder loads state from the Postgres-backed store.
func newHolder(t *testing.T, db *gorm.DB) *state.Holder {
	t.Helper()
	holder, err := state.NewHolder(context.Background(), repository.NewGormStore(db))
	require.NoError(t, err)
	return holder
}

// kafkaStack holds the Kafka-mode sync pipeline.
type kafkaStack struct {
	Bookings *application.BookingService
	Consumer *bookingEvents.SyncConsumer
	Cleanup  func()
}

// setupKafkaStack wires booking service -> Kafka notifier -> sync consumer -> webhook.
func setupKafkaStack(t *testing.T, holder *state.Holder, brokers []string, topic string) *kafkaStack {
	t.Helper()
	logger, _ := zap.NewDevelopment()

	producer := kafka.NewProducer(brokers, logger)
	notifier := bookingEvents.NewKafkaNotifier(producer, topic, 10*time.Second, logger)

	syncer := adapter.NewWebhookSyncer(5*time.Second, time.UTC, time.RFC3339, logger)
	syncSvc := application.NewSyncService(holder, syncer, logger)

	groupID := fmt.Sprintf("test-sync-%s", uuid.New().String()[:8])
	consumer := bookingEvents.NewSyncConsumer(brokers, groupID, topic, syncSvc, logger)

	bookingSvc := application.NewBookingService(holder, notifier, adapter.NewMockAssistantAdapter(logger), nil, logger)

	return &kafkaStack{
		Bookings: bookingSvc,
		Consumer: consumer,
		Cleanup: func() {
			notifier.Close()
			_ = consumer.Close()
			_ = producer.Close()
		},
	}
}

// sheetRecorder is a fake spreadsheet webhook capturing every payload.
type sheetRecorder struct {
	mu       sync.Mutex
	payloads []adapter.SyncPayload
	server   *httptest.Server
}

func newSheetRecorder(t *testing.T) *sheetRecorder {
	t.Helper()
	rec := &sheetRecorder{}
	rec.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		var p adapter.SyncPayload
		if err := json.Unmarshal(raw, &p); err == nil {
			rec.mu.Lock()
			rec.payloads = append(rec.payloads, p)
			rec.mu.Unlock()
		}
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))
	t.Cleanup(rec.server.Close)
	return rec
}

func (r *sheetRecorder) received() []adapter.SyncPayload {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]adapter.SyncPayload(nil), r.payloads...)
}

// createTopics pre-creates Kafka topics so producers don't fail with "Unknown Topic".
func createTopics(t *testing.T, brokers []string, topics ...string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", brokers[0])
	require.NoError(t, err, "failed to dial Kafka for topic creation")
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err, "failed to get Kafka controller")

	controllerConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, fmt.Sprintf("%d", controller.Port)))
	require.NoError(t, err, "failed to connect to Kafka controller")
	defer controllerConn.Close()

	topicConfigs := make([]kafkago.TopicConfig, len(topics))
	for i, topic := range topics {
		topicConfigs[i] = kafkago.TopicConfig{
			Topic:             topic,
			NumPartitions:     1,
			ReplicationFactor: 1,
		}
	}
	err = controllerConn.CreateTopics(topicConfigs...)
	require.NoError(t, err, "failed to create Kafka topics")

	// Give Kafka a moment to propagate topic metadata.
	time.Sleep(1 * time.Second)
}
