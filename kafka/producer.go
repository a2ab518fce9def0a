package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/kbukum/scribe/logger"
)

// MessageWriter is the subset of *kafkago.Writer the Producer needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Producer wraps a kafka-go Writer with TLS/SASL, retries and logging.
type Producer struct {
	writer MessageWriter
	cfg    Config
	log    *logger.Logger
	mu     sync.RWMutex
	closed bool
}

// NewProducer creates a producer for cfg. The writer connects lazily on the
// first message.
func NewProducer(cfg Config, log *logger.Logger) (*Producer, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("kafka producer config: %w", err)
	}
	if !cfg.Enabled {
		return nil, fmt.Errorf("kafka is disabled")
	}

	transport, err := CreateTransport(&cfg)
	if err != nil {
		return nil, fmt.Errorf("kafka producer transport: %w", err)
	}
	p := &Producer{cfg: cfg, log: log.WithComponent("kafka.producer")}
	p.writer = &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.Brokers...),
		Transport:    transport,
		Balancer:     &kafkago.Hash{},
		BatchSize:    cfg.BatchSize,
		BatchTimeout: cfg.BatchTimeout,
		RequiredAcks: kafkago.RequiredAcks(cfg.RequiredAcks),
		Compression:  ResolveCompression(cfg.Compression),
		WriteTimeout: cfg.WriteTimeout,
		ErrorLogger: kafkago.LoggerFunc(func(msg string, args ...interface{}) {
			p.log.Error("writer: "+msg, map[string]interface{}{
				"args": fmt.Sprintf("%v", args),
			})
		}),
	}

	p.log.Info("Kafka producer initialized", map[string]interface{}{
		"brokers":     cfg.Brokers,
		"topic":       cfg.Topic,
		"compression": cfg.Compression,
	})
	return p, nil
}

// NewProducerWithWriter creates a producer around an existing writer.
func NewProducerWithWriter(cfg Config, w MessageWriter, log *logger.Logger) *Producer {
	cfg.ApplyDefaults()
	return &Producer{writer: w, cfg: cfg, log: log.WithComponent("kafka.producer")}
}

// Topic returns the configured event topic.
func (p *Producer) Topic() string { return p.cfg.Topic }

// WriteMessages sends one or more messages with retry.
func (p *Producer) WriteMessages(ctx context.Context, msgs ...kafkago.Message) error {
	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		return fmt.Errorf("producer is closed")
	}
	p.mu.RUnlock()

	var lastErr error
	for attempt := 1; attempt <= p.cfg.Retries; attempt++ {
		err := p.writer.WriteMessages(ctx, msgs...)
		if err == nil {
			return nil
		}
		lastErr = err
		if attempt < p.cfg.Retries {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt) * 100 * time.Millisecond):
			}
		}
	}
	return fmt.Errorf("write after %d retries: %w", p.cfg.Retries, lastErr)
}

// SendJSON marshals value and sends it to topic under key. An empty topic
// uses the configured one.
func (p *Producer) SendJSON(ctx context.Context, topic, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}
	if topic == "" {
		topic = p.cfg.Topic
	}
	return p.WriteMessages(ctx, kafkago.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "content-type", Value: []byte("application/json")},
		},
	})
}

// Close shuts down the producer.
func (p *Producer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	p.log.Info("Kafka producer closing")
	return p.writer.Close()
}
