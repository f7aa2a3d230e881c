package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/IBM/sarama"
)

// KafkaPublisher sends domain events as JSON messages, one topic per event
// kind.
type KafkaPublisher struct {
	producer    sarama.SyncProducer
	topicPrefix string
}

func NewKafkaPublisher(brokers []string, topicPrefix string) (*KafkaPublisher, error) {
	config := sarama.NewConfig()
	config.ClientID = "rentguard"
	config.Producer.Return.Successes = true
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("start kafka producer: %w", err)
	}
	log.Printf("kafka producer connected to %v", brokers)
	return newKafkaPublisher(producer, topicPrefix), nil
}

func newKafkaPublisher(producer sarama.SyncProducer, topicPrefix string) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, topicPrefix: topicPrefix}
}

func (publisher *KafkaPublisher) Publish(ctx context.Context, topic string, payload any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", topic, err)
	}

	message := &sarama.ProducerMessage{
		Topic: publisher.topicPrefix + topic,
		Value: sarama.ByteEncoder(data),
	}
	if _, _, err := publisher.producer.SendMessage(message); err != nil {
		return fmt.Errorf("send %s event: %w", topic, err)
	}
	return nil
}

func (publisher *KafkaPublisher) Close() error {
	return publisher.producer.Close()
}
