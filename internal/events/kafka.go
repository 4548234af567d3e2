package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// messageWriter is the subset of *kafka.Writer used by KafkaPublisher.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher exports events to a topic. Publish only enqueues; a single
// goroutine started by Start drains the inbox into the writer.
type KafkaPublisher struct {
	w       messageWriter
	log     *zap.Logger
	inbox   chan kafka.Message
	closeCh chan struct{}
}

// NewKafkaPublisher creates a publisher for topic with an inbox of buf
// messages.
func NewKafkaPublisher(brokers []string, topic string, buf int, log *zap.Logger) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
	}
	return newKafkaPublisher(w, buf, log)
}

func newKafkaPublisher(w messageWriter, buf int, log *zap.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		w:       w,
		log:     log,
		inbox:   make(chan kafka.Message, buf),
		closeCh: make(chan struct{}),
	}
}

// Start runs the delivery loop until Close is called.
func (p *KafkaPublisher) Start(ctx context.Context) {
	go func() {
		defer close(p.closeCh)
		for m := range p.inbox {
			if err := p.w.WriteMessages(ctx, m); err != nil {
				p.log.Error("kafka write failed", zap.String("key", string(m.Key)), zap.Error(err))
			}
		}
		if err := p.w.Close(); err != nil {
			p.log.Error("kafka writer close failed", zap.Error(err))
		}
	}()
}

// Publish enqueues ev. When the inbox is full the event is dropped and
// logged so the register never blocks on the broker.
func (p *KafkaPublisher) Publish(_ context.Context, ev Event) {
	b, err := json.Marshal(ev)
	if err != nil {
		p.log.Error("encode event", zap.String("type", ev.Type), zap.Error(err))
		return
	}
	m := kafka.Message{
		Key:   []byte(ev.Subject),
		Value: b,
		Time:  time.Now(),
		Headers: []kafka.Header{
			{Key: "x-event-type", Value: []byte(ev.Type)},
		},
	}
	select {
	case p.inbox <- m:
	default:
		p.log.Warn("kafka inbox full, dropping event", zap.String("type", ev.Type), zap.String("subject", ev.Subject))
	}
}

// Close stops accepting events; the loop flushes what is queued and exits.
func (p *KafkaPublisher) Close() { close(p.inbox) }

// WaitClosed blocks until the delivery loop has exited.
func (p *KafkaPublisher) WaitClosed() { <-p.closeCh }
