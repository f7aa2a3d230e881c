package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/require"
)

func TestKafkaPublisherSendsJSONPayload(t *testing.T) {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	producer := mocks.NewSyncProducer(t, config)
	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(value []byte) error {
		payload := map[string]any{}
		if err := json.Unmarshal(value, &payload); err != nil {
			return err
		}
		if payload["is_paid"] != true {
			return errors.New("expected is_paid=true in event payload")
		}
		return nil
	})

	publisher := newKafkaPublisher(producer, "rentguard.")
	err := publisher.Publish(context.Background(), "payment.updated", map[string]any{"is_paid": true})
	require.NoError(t, err)
	require.NoError(t, publisher.Close())
}

func TestKafkaPublisherSurfacesSendFailure(t *testing.T) {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	producer := mocks.NewSyncProducer(t, config)
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	publisher := newKafkaPublisher(producer, "")
	err := publisher.Publish(context.Background(), "property.created", map[string]string{"id": "p-1"})
	require.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	require.NoError(t, publisher.Close())
}

func TestKafkaPublisherHonorsCancelledContext(t *testing.T) {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	producer := mocks.NewSyncProducer(t, config)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	publisher := newKafkaPublisher(producer, "")
	require.ErrorIs(t, publisher.Publish(ctx, "session.changed", map[string]string{}), context.Canceled)
	require.NoError(t, publisher.Close())
}
