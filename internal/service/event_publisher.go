package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/busreserve/bus-reservation/internal/domain"
	"github.com/busreserve/bus-reservation/pkg/kafka"
)

// Event types published to the reservation topic
const (
	EventReservationCreated   = "reservation.created"
	EventReservationCancelled = "reservation.cancelled"
	EventBusDeleted           = "bus.deleted"
)

// ReservationEvent is the wire format for published events
type ReservationEvent struct {
	EventID       string    `json:"event_id"`
	EventType     string    `json:"event_type"`
	BusID         int64     `json:"bus_id"`
	ReservationID int64     `json:"reservation_id,omitempty"`
	PassengerName string    `json:"passenger_name,omitempty"`
	SeatNumber    int       `json:"seat_number,omitempty"`
	BusNumber     string    `json:"bus_number,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// EventPublisher defines the interface for publishing reservation events
type EventPublisher interface {
	// PublishReservationCreated publishes a reservation created event
	PublishReservationCreated(ctx context.Context, reservation *domain.Reservation) error

	// PublishReservationCancelled publishes a reservation cancelled event
	PublishReservationCancelled(ctx context.Context, reservation *domain.Reservation) error

	// PublishBusDeleted publishes a bus deleted event
	PublishBusDeleted(ctx context.Context, bus *domain.Bus) error

	// Close closes the event publisher
	Close() error
}

// KafkaEventPublisher implements EventPublisher using Kafka
type KafkaEventPublisher struct {
	producer    *kafka.Producer
	topic       string
	serviceName string
}

// EventPublisherConfig contains configuration for the event publisher
type EventPublisherConfig struct {
	Brokers     []string
	Topic       string
	ServiceName string
	ClientID    string
}

// NewKafkaEventPublisher creates a new Kafka event publisher
func NewKafkaEventPublisher(ctx context.Context, cfg *EventPublisherConfig) (*KafkaEventPublisher, error) {
	if cfg == nil {
		return nil, fmt.Errorf("event publisher config is required")
	}
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers are required")
	}

	topic := cfg.Topic
	if topic == "" {
		topic = "reservation-events"
	}

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "bus-reservation"
	}

	clientID := cfg.ClientID
	if clientID == "" {
		clientID = "bus-reservation-producer"
	}

	producer, err := kafka.NewProducer(ctx, &kafka.ProducerConfig{
		Brokers:       cfg.Brokers,
		ClientID:      clientID,
		MaxRetries:    3,
		RetryInterval: 2 * time.Second,
		BatchSize:     100,
		LingerMs:      10,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	return &KafkaEventPublisher{
		producer:    producer,
		topic:       topic,
		serviceName: serviceName,
	}, nil
}

// PublishReservationCreated publishes a reservation created event
func (p *KafkaEventPublisher) PublishReservationCreated(ctx context.Context, reservation *domain.Reservation) error {
	event := &ReservationEvent{
		EventType:     EventReservationCreated,
		BusID:         reservation.BusID,
		ReservationID: reservation.ID,
		PassengerName: reservation.PassengerName,
		SeatNumber:    reservation.SeatNumber,
	}
	return p.publish(ctx, event)
}

// PublishReservationCancelled publishes a reservation cancelled event
func (p *KafkaEventPublisher) PublishReservationCancelled(ctx context.Context, reservation *domain.Reservation) error {
	event := &ReservationEvent{
		EventType:     EventReservationCancelled,
		BusID:         reservation.BusID,
		ReservationID: reservation.ID,
		SeatNumber:    reservation.SeatNumber,
	}
	return p.publish(ctx, event)
}

// PublishBusDeleted publishes a bus deleted event
func (p *KafkaEventPublisher) PublishBusDeleted(ctx context.Context, bus *domain.Bus) error {
	event := &ReservationEvent{
		EventType: EventBusDeleted,
		BusID:     bus.ID,
		BusNumber: bus.BusNumber,
	}
	return p.publish(ctx, event)
}

// Close closes the event publisher
func (p *KafkaEventPublisher) Close() error {
	if p.producer != nil {
		p.producer.Close()
	}
	return nil
}

func (p *KafkaEventPublisher) publish(ctx context.Context, event *ReservationEvent) error {
	event.EventID = uuid.New().String()
	event.OccurredAt = time.Now()

	headers := map[string]string{
		"event_type":   event.EventType,
		"event_id":     event.EventID,
		"source":       p.serviceName,
		"content_type": "application/json",
	}

	// Key by bus so all events for one bus land on one partition in order
	key := fmt.Sprintf("bus-%d", event.BusID)

	if err := p.producer.ProduceJSON(ctx, p.topic, key, event, headers); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", event.EventType, err)
	}
	return nil
}

// NoOpEventPublisher is a no-op implementation of EventPublisher used when
// Kafka is disabled and in tests
type NoOpEventPublisher struct{}

// NewNoOpEventPublisher creates a new no-op event publisher
func NewNoOpEventPublisher() *NoOpEventPublisher {
	return &NoOpEventPublisher{}
}

// PublishReservationCreated is a no-op
func (p *NoOpEventPublisher) PublishReservationCreated(ctx context.Context, reservation *domain.Reservation) error {
	return nil
}

// PublishReservationCancelled is a no-op
func (p *NoOpEventPublisher) PublishReservationCancelled(ctx context.Context, reservation *domain.Reservation) error {
	return nil
}

// PublishBusDeleted is a no-op
func (p *NoOpEventPublisher) PublishBusDeleted(ctx context.Context, bus *domain.Bus) error {
	return nil
}

// Close is a no-op
func (p *NoOpEventPublisher) Close() error {
	return nil
}
