package events

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// Producer writes order events to Kafka through a buffered inbox so a slow
// or absent broker cannot stall request handling.
type Producer struct {
	w      *kafka.Writer
	name   string
	inbox  chan kafka.Message
	closed chan struct{}
}

func NewProducer(brokers []string, topic, producerName string, buf int) *Producer {
	return &Producer{
		w: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			Async:        true,
		},
		name:   producerName,
		inbox:  make(chan kafka.Message, buf),
		closed: make(chan struct{}),
	}
}

// Start drains the inbox until ctx is done, then flushes what is left and
// closes the writer.
func (p *Producer) Start(ctx context.Context) {
	go func() {
		defer close(p.closed)
		for {
			select {
			case <-ctx.Done():
				// The inbox stays open so in-flight publishes cannot panic;
				// anything enqueued after this drain is lost.
				for {
					select {
					case m := <-p.inbox:
						p.write(m)
					default:
						_ = p.w.Close()
						return
					}
				}
			case m := <-p.inbox:
				p.write(m)
			}
		}
	}()
}

func (p *Producer) write(m kafka.Message) {
	if err := p.w.WriteMessages(context.Background(), m); err != nil {
		log.Printf("[events] publish failed: %v", err)
	}
}

func (p *Producer) WaitClosed() { <-p.closed }

// PublishOrderCreated enqueues an OrderCreated envelope. Drops the event
// with a log line when the inbox is full rather than blocking the request.
func (p *Producer) PublishOrderCreated(requestID string, payload OrderCreatedPayload) {
	ev := Envelope{
		EventID:      uuid.NewString(),
		EventType:    EventOrderCreated,
		EventVersion: 1,
		OccurredAt:   time.Now().UTC(),
		Producer:     p.name,
		RequestID:    requestID,
		Payload:      mustMarshal(payload),
	}
	msg := kafka.Message{
		Key:   PartitionKey(payload.OrderID),
		Value: mustMarshal(ev),
		Time:  ev.OccurredAt,
		Headers: []kafka.Header{
			{Key: "x-event-type", Value: []byte(EventOrderCreated)},
			{Key: "x-event-version", Value: []byte("1")},
		},
	}
	select {
	case p.inbox <- msg:
	default:
		log.Printf("[events] inbox full, dropping %s for order %d", EventOrderCreated, payload.OrderID)
	}
}
