// Package kafka exports audit events to a Kafka topic with franz-go.
//
// The sink is write-only and keyed by address so a consumer sees every event
// for one wallet in order. A circuit breaker stops producing while the broker
// is unreachable; events are dropped with a log line in that state.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	audit "stacksevents/pkg/platform/audit"
	"stacksevents/pkg/platform/circuit"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"
)

// Config holds broker connection settings.
type Config struct {
	Brokers           []string
	Topic             string
	Partitions        int32
	ReplicationFactor int16
	ProduceTimeout    time.Duration
}

type Sink struct {
	client  *kgo.Client
	topic   string
	timeout time.Duration
	breaker *circuit.Breaker
	logger  *slog.Logger
}

type Option func(*Sink)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Sink) {
		s.logger = logger
	}
}

func WithBreaker(b *circuit.Breaker) Option {
	return func(s *Sink) {
		s.breaker = b
	}
}

// message is the JSON document written to the topic.
type message struct {
	Category     string    `json:"category"`
	Timestamp    time.Time `json:"timestamp"`
	Address      string    `json:"address"`
	Counterparty string    `json:"counterparty,omitempty"`
	Action       string    `json:"action"`
	EventID      string    `json:"event_id,omitempty"`
	TicketID     string    `json:"ticket_id,omitempty"`
	TxID         string    `json:"tx_id,omitempty"`
	Quantity     int       `json:"quantity,omitempty"`
	Reason       string    `json:"reason,omitempty"`
	RequestID    string    `json:"request_id,omitempty"`
}

// New connects to the brokers and makes sure the topic exists.
func New(ctx context.Context, cfg Config, opts ...Option) (*Sink, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("kafka audit sink requires at least one broker")
	}
	if cfg.Topic == "" {
		return nil, errors.New("kafka audit sink requires a topic")
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.DefaultProduceTopic(cfg.Topic),
		kgo.RequiredAcks(kgo.AllISRAcks()),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}

	if err := ensureTopic(ctx, kadm.NewClient(client), cfg); err != nil {
		client.Close()
		return nil, err
	}

	s := &Sink{
		client:  client,
		topic:   cfg.Topic,
		timeout: cfg.ProduceTimeout,
		breaker: circuit.New("kafka-audit"),
		logger:  slog.Default(),
	}
	if s.timeout <= 0 {
		s.timeout = 5 * time.Second
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func ensureTopic(ctx context.Context, adm *kadm.Client, cfg Config) error {
	partitions := cfg.Partitions
	if partitions <= 0 {
		partitions = 1
	}
	replication := cfg.ReplicationFactor
	if replication <= 0 {
		replication = 1
	}
	resp, err := adm.CreateTopics(ctx, partitions, replication, nil, cfg.Topic)
	if err != nil {
		return fmt.Errorf("create audit topic: %w", err)
	}
	for _, r := range resp {
		if r.Err != nil && !errors.Is(r.Err, kerr.TopicAlreadyExists) {
			return fmt.Errorf("create audit topic %s: %w", r.Topic, r.Err)
		}
	}
	return nil
}

// Append produces the event synchronously.
func (s *Sink) Append(ctx context.Context, event audit.Event) error {
	if !s.breaker.Allow() {
		s.logger.WarnContext(ctx, "kafka audit sink open, dropping event", "action", event.Action)
		return nil
	}

	value, err := json.Marshal(message{
		Category:     string(event.Category),
		Timestamp:    event.Timestamp,
		Address:      event.Address,
		Counterparty: event.Counterparty,
		Action:       event.Action,
		EventID:      event.EventID,
		TicketID:     event.TicketID,
		TxID:         event.TxID,
		Quantity:     event.Quantity,
		Reason:       event.Reason,
		RequestID:    event.RequestID,
	})
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	record := &kgo.Record{Topic: s.topic, Key: []byte(event.Address), Value: value}
	if err := s.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		if _, change := s.breaker.RecordFailure(); change.Opened {
			s.logger.ErrorContext(ctx, "kafka audit sink circuit opened", "error", err)
		}
		return fmt.Errorf("produce audit event: %w", err)
	}
	if _, change := s.breaker.RecordSuccess(); change.Closed {
		s.logger.InfoContext(ctx, "kafka audit sink circuit closed")
	}
	return nil
}

func (s *Sink) Close() {
	s.client.Close()
}
