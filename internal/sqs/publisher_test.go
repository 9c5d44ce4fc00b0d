package sqs

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockSQSClient is a mock implementation of the SQS client for testing.
type mockSQSClient struct {
	sendMessageFunc func(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

func (m *mockSQSClient) SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	if m.sendMessageFunc != nil {
		return m.sendMessageFunc(ctx, params, optFns...)
	}
	return &sqs.SendMessageOutput{}, nil
}

func TestPublisher_PublishLowStockMessage(t *testing.T) {
	msg := LowStockMessage{
		ProductID:    "PROD001",
		CurrentStock: 3,
		Threshold:    10,
		Reason:       "sale",
		RaisedAt:     time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
	}

	t.Run("successful message publish", func(t *testing.T) {
		// given
		ctx := context.Background()

		mockClient := &mockSQSClient{
			sendMessageFunc: func(_ context.Context, params *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
				assert.Equal(t, testQueueURL, *params.QueueUrl)
				require.NotNil(t, params.MessageBody)

				var decoded LowStockMessage
				require.NoError(t, json.Unmarshal([]byte(*params.MessageBody), &decoded))
				assert.Equal(t, msg, decoded)
				assert.Equal(t, LowStockEventType, *params.MessageAttributes[EventTypeAttribute].StringValue)

				return &sqs.SendMessageOutput{
					MessageId: aws.String("test-message-id"),
				}, nil
			},
		}

		publisher := NewPublisher(mockClient, testQueueURL)

		// when
		err := publisher.PublishLowStockMessage(ctx, msg)

		// then
		require.NoError(t, err)
	})

	t.Run("error sending message", func(t *testing.T) {
		// given
		mockClient := &mockSQSClient{
			sendMessageFunc: func(_ context.Context, _ *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
				return nil, errors.New("SQS error")
			},
		}

		publisher := NewPublisher(mockClient, testQueueURL)

		// when
		err := publisher.PublishLowStockMessage(context.Background(), msg)

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to send message to SQS")
	})
}
