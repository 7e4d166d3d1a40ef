package eventsrepo

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

type Type string

const (
	VehicleAdded     Type = "vehicle.added"
	VehicleDeleted   Type = "vehicle.deleted"
	VehicleReserved  Type = "vehicle.reserved"
	VehicleExpired   Type = "vehicle.expired"
	VehicleCancelled Type = "vehicle.cancelled"
	VehicleSold      Type = "vehicle.sold"
	PaymentVerified  Type = "payment.verified"
	PaymentRejected  Type = "payment.rejected"
	PaymentRefunded  Type = "payment.refunded"
)

type Event struct {
	Type       Type      `json:"type"`
	VehicleID  string    `json:"vehicle_id"`
	Principal  string    `json:"principal,omitempty"`
	Memo       uint64    `json:"memo,omitempty"`
	Amount     uint64    `json:"amount,omitempty"`
	BlockIndex *uint64   `json:"block_index,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

type Publisher interface {
	Publish(ctx context.Context, ev Event) error
	Close() error
}

// writer is the part of *kafka.Writer the publisher needs.
type writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type kafkaPublisher struct{ w writer }

const (
	BatchTimeout = 10 * time.Millisecond
	BatchSize    = 100
)

func NewKafka(broker, topic string) Publisher {
	return &kafkaPublisher{w: &kafka.Writer{
		Addr:         kafka.TCP(broker),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: BatchTimeout,
		BatchSize:    BatchSize,
		RequiredAcks: kafka.RequireOne,
	}}
}

func (p *kafkaPublisher) Publish(ctx context.Context, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	headers := []kafka.Header{{Key: "event-type", Value: []byte(ev.Type)}}

	// carry the active trace to consumers
	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	for k, v := range carrier {
		headers = append(headers, kafka.Header{Key: k, Value: []byte(v)})
	}

	return p.w.WriteMessages(ctx, kafka.Message{
		Key:     []byte(ev.VehicleID),
		Value:   payload,
		Headers: headers,
		Time:    ev.OccurredAt,
	})
}

func (p *kafkaPublisher) Close() error { return p.w.Close() }

type nop struct{}

// Nop discards every event.
func Nop() Publisher { return nop{} }

func (nop) Publish(context.Context, Event) error { return nil }
func (nop) Close() error                        { return nil }

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Publish(_ context.Context, ev Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *Recorder) Close() error { return nil }

// Types lists the recorded event types in publish order.
func (r *Recorder) Types() []Type {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Type, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Type)
	}
	return out
}
