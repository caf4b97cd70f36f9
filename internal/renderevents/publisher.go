// Package renderevents publishes one event per map render to Kafka.
package renderevents

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"

	"github.com/mohammed-shakir/maply/internal/core/observability"
)

type Event struct {
	ID      string    `json:"id"`
	MapID   string    `json:"map_id"`
	Cell    string    `json:"cell,omitempty"`
	Part    string    `json:"part"`
	Markers int       `json:"markers"`
	Cached  bool      `json:"cached"`
	Env     string    `json:"env,omitempty"`
	TS      time.Time `json:"ts"`
}

type Publisher interface {
	Publish(ev Event)
	Close() error
}

// Nop discards events; used when publishing is disabled.
type Nop struct{}

func (Nop) Publish(Event) {}
func (Nop) Close() error  { return nil }

type KafkaPublisher struct {
	topic   string
	events  chan Event
	prod    sarama.AsyncProducer
	log     *slog.Logger
	stopped chan struct{}
	once    sync.Once
}

func NewKafka(brokers []string, topic string, queueSize int, logger *slog.Logger) (*KafkaPublisher, error) {
	cfg := sarama.NewConfig()
	cfg.Version = sarama.V2_5_0_0
	cfg.Producer.Return.Errors = true
	cfg.Producer.Return.Successes = false
	cfg.Producer.RequiredAcks = sarama.WaitForLocal

	prod, err := sarama.NewAsyncProducer(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("renderevents: create async producer: %w", err)
	}
	return newPublisher(prod, topic, queueSize, logger), nil
}

func newPublisher(prod sarama.AsyncProducer, topic string, queueSize int, logger *slog.Logger) *KafkaPublisher {
	if queueSize <= 0 {
		queueSize = 1024
	}
	if logger == nil {
		logger = slog.Default()
	}
	p := &KafkaPublisher{
		topic:   topic,
		events:  make(chan Event, queueSize),
		prod:    prod,
		log:     logger,
		stopped: make(chan struct{}),
	}

	go func() {
		defer close(p.stopped)
		for ev := range p.events {
			b, err := json.Marshal(ev)
			if err != nil {
				p.log.Error("renderevents: marshal", "err", err)
				continue
			}
			p.prod.Input() <- &sarama.ProducerMessage{
				Topic: p.topic,
				Key:   sarama.StringEncoder(ev.MapID),
				Value: sarama.ByteEncoder(b),
			}
		}
	}()

	go func() {
		for perr := range p.prod.Errors() {
			if perr != nil {
				observability.IncRenderEvent("error")
				p.log.Warn("renderevents: producer error", "err", perr.Err)
			}
		}
	}()

	return p
}

// Publish never blocks the render path: a full queue drops the event.
func (p *KafkaPublisher) Publish(ev Event) {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.TS.IsZero() {
		ev.TS = time.Now().UTC()
	}
	select {
	case p.events <- ev:
		observability.IncRenderEvent("queued")
	default:
		observability.IncRenderEvent("dropped")
	}
}

// Close drains the queue and closes the producer. Publish must not be
// called after Close.
func (p *KafkaPublisher) Close() error {
	var err error
	p.once.Do(func() {
		close(p.events)
		<-p.stopped
		if cerr := p.prod.Close(); cerr != nil {
			err = fmt.Errorf("renderevents: close producer: %w", cerr)
		}
	})
	return err
}
