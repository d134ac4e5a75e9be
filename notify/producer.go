package notify

import (
	"context"
	"fmt"
	"secure-bank-api/logger"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

// Producer publishes one notification payload.
type Producer interface {
	Produce(ctx context.Context, topic, key string, value []byte) error
	Close() error
}

type KafkaProducer struct {
	writer *kafka.Writer
}

// NewKafkaProducer writes synchronously so the outbox only marks acknowledged messages as sent.
func NewKafkaProducer(brokers []string) *KafkaProducer {
	log := logger.Log.WithField("component", "kafka")
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		WriteTimeout:           10 * time.Second,
		RequiredAcks:           kafka.RequireAll,
		MaxAttempts:            3,
		AllowAutoTopicCreation: true,
		Logger:                 kafka.LoggerFunc(func(msg string, args ...interface{}) { log.Debugf(msg, args...) }),
		ErrorLogger:            kafka.LoggerFunc(func(msg string, args ...interface{}) { log.Errorf(msg, args...) }),
	}
	return &KafkaProducer{writer: writer}
}

func (p *KafkaProducer) Produce(ctx context.Context, topic, key string, value []byte) error {
	msg := kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: value,
	}

	produceCtx, cancel := context.WithTimeout(ctx, p.writer.WriteTimeout)
	defer cancel()

	if err := p.writer.WriteMessages(produceCtx, msg); err != nil {
		return fmt.Errorf("failed to produce message to Kafka: %w", err)
	}
	logger.Log.WithFields(logrus.Fields{"topic": topic, "key": key}).Debug("Message produced to Kafka")
	return nil
}

func (p *KafkaProducer) Close() error {
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close Kafka producer: %w", err)
	}
	logger.Log.Info("Kafka producer closed")
	return nil
}

// LogProducer stands in for Kafka when no brokers are configured.
type LogProducer struct{}

func (LogProducer) Produce(_ context.Context, topic, key string, value []byte) error {
	logger.Log.WithFields(logrus.Fields{
		"topic":   topic,
		"key":     key,
		"payload": string(value),
	}).Info("Notification")
	return nil
}

func (LogProducer) Close() error { return nil }
