//go:build integration

package main_test

import (
	"context"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/frontdesk/service-reservation/internal/application"
	"github.com/frontdesk/service-reservation/internal/config"
	"github.com/frontdesk/service-reservation/internal/database"
	"github.com/frontdesk/service-reservation/internal/domain/reservation"
	reservationEvents "github.com/frontdesk/service-reservation/internal/events"
	"github.com/frontdesk/service-reservation/internal/metrics"
	"github.com/frontdesk/service-reservation/internal/pkg/kafka"
	"github.com/frontdesk/service-reservation/internal/proto/events"
	"github.com/frontdesk/service-reservation/internal/repository"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	kafkamodule "github.com/testcontainers/testcontainers-go/modules/kafka"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// setupPostgres starts a PostgreSQL testcontainer, applies the migrations
// and returns a connected GORM DB.
func setupPostgres(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	pgReq := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "test_frontdesk",
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
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate PostgreSQL container: %v", err)
		}
	})

	pgHost, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	pgPort, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dbConfig := config.DatabaseConfig{
		Host:         pgHost,
		Port:         pgPort.Port(),
		User:         "test",
		Password:     "test",
		DBName:       "test_frontdesk",
		SSLMode:      "disable",
		MaxOpenConns: 10,
		MaxIdleConns: 2,
	}
	logger := zap.NewNop()

	// Poll until GORM can actually connect and ping.
	var db *gorm.DB
	require.Eventually(t, func() bool {
		var err error
		db, err = database.Connect(dbConfig, logger)
		return err == nil
	}, 30*time.Second, 1*time.Second, "PostgreSQL not ready for connections")

	require.NoError(t, database.RunMigrations(dbConfig.DatabaseURL(), "migrations", logger))
	return db
}

// setupKafka starts a Kafka testcontainer and pre-creates the service topics.
func setupKafka(t *testing.T) []string {
	t.Helper()
	ctx := context.Background()

	// confluent-local supports KRaft natively.
	kafkaContainer, err := kafkamodule.Run(ctx, "confluentinc/confluent-local:7.5.0")
	require.NoError(t, err, "failed to start Kafka container")
	t.Cleanup(func() {
		if err := kafkaContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate Kafka container: %v", err)
		}
	})

	brokers, err := kafkaContainer.Brokers(ctx)
	require.NoError(t, err, "failed to get Kafka brokers")

	createTopics(t, brokers, events.TopicReservationEvents, events.TopicHousekeepingEvents)
	return brokers
}

// setupRedis starts a Redis testcontainer and returns its address.
func setupRedis(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err, "failed to start Redis container")
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate Redis container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)
	return net.JoinHostPort(host, port.Port())
}

// reservationStack holds wired-up service components.
type reservationStack struct {
	Store    *repository.GormStore
	Intake   *application.BookingIntake
	Engine   *application.LifecycleEngine
	Rooms    *application.RoomService
	Consumer *reservationEvents.HousekeepingConsumer
}

// setupReservationStack wires the services on db. With brokers set, events
// are published to Kafka and a housekeeping consumer is created.
func setupReservationStack(t *testing.T, db *gorm.DB, lockWait time.Duration, brokers []string) *reservationStack {
	t.Helper()
	logger, _ := zap.NewDevelopment()
	m := metrics.New(prometheus.NewRegistry())
	store := repository.NewGormStore(db, lockWait)

	var publisher application.EventPublisher
	if len(brokers) > 0 {
		producer := kafka.NewProducer(brokers, logger)
		t.Cleanup(func() { _ = producer.Close() })
		publisher = reservationEvents.NewKafkaPublisher(producer, "service-reservation")
	}

	stack := &reservationStack{
		Store:  store,
		Intake: application.NewBookingIntake(store, reservation.NewNightlyRatePricing(), publisher, nil, m, logger),
		Engine: application.NewLifecycleEngine(store, publisher, nil, m, logger),
		Rooms:  application.NewRoomService(store, publisher, nil, logger),
	}
	if len(brokers) > 0 {
		groupID := fmt.Sprintf("test-reservation-%s", uuid.New().String()[:8])
		stack.Consumer = reservationEvents.NewHousekeepingConsumer(brokers, groupID, stack.Rooms, m, logger)
		t.Cleanup(func() { _ = stack.Consumer.Close() })
	}
	return stack
}

// demoRoomID returns the id of a room inserted by the seed migration.
func demoRoomID(i int) uuid.UUID {
	return repository.DemoRooms()[i].ID()
}

// publishTestEvent publishes a CloudEvent to Kafka.
func publishTestEvent(t *testing.T, brokers []string, topic, source, eventType string, data interface{}) {
	t.Helper()
	logger, _ := zap.NewDevelopment()
	producer := kafka.NewProducer(brokers, logger)
	defer func() { _ = producer.Close() }()

	ce, err := kafka.NewCloudEvent(source, eventType, data)
	require.NoError(t, err, "failed to create cloud event")

	err = producer.PublishEvent(context.Background(), topic, ce)
	require.NoError(t, err, "failed to publish event")
}

// waitForRoomStatus polls the rooms table until the status matches.
func waitForRoomStatus(t *testing.T, db *gorm.DB, roomID uuid.UUID, expectedStatus string, timeout time.Duration) {
	t.Helper()
	require.Eventually(t, func() bool {
		var model repository.RoomModel
		if err := db.Where("id = ?", roomID).First(&model).Error; err != nil {
			return false
		}
		return model.Status == expectedStatus
	}, timeout, 200*time.Millisecond, "room did not reach status %s", expectedStatus)
}

// consumeOneEvent reads from a Kafka topic until it finds an event matching accept.
func consumeOneEvent(t *testing.T, brokers []string, topic string, accept func(kafka.CloudEvent) bool, timeout time.Duration) kafka.CloudEvent {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	groupID := fmt.Sprintf("test-assert-%s", uuid.New().String()[:8])
	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     brokers,
		GroupID:     groupID,
		Topic:       topic,
		MinBytes:    1,
		MaxBytes:    10e6,
		StartOffset: kafkago.FirstOffset,
	})
	defer func() { _ = reader.Close() }()

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				t.Fatalf("timed out waiting for matching event on topic %q", topic)
			}
			continue
		}
		ce, err := kafka.ParseCloudEvent(msg.Value)
		if err != nil {
			continue
		}
		if accept(ce) {
			return ce
		}
	}
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
