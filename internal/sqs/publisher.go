package sqs

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

// EventTypeAttribute is the message attribute carrying the event type.
const EventTypeAttribute = "event_type"

// LowStockEventType is the value of EventTypeAttribute for low-stock alerts.
const LowStockEventType = "inventory.low_stock"

// PublisherAPI defines the interface for SQS operations used by Publisher.
type PublisherAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// Publisher handles publishing messages to AWS SQS.
type Publisher struct {
	client   PublisherAPI
	queueURL string
}

// NewPublisher creates a new SQS Publisher with the given client and queue URL.
func NewPublisher(client PublisherAPI, queueURL string) *Publisher {
	return &Publisher{
		client:   client,
		queueURL: queueURL,
	}
}

// LowStockMessage is the body of a low-stock alert.
type LowStockMessage struct {
	ProductID    string    `json:"product_id"`
	CurrentStock int       `json:"current_stock"`
	Threshold    int       `json:"threshold"`
	Reason       string    `json:"reason"`
	RaisedAt     time.Time `json:"raised_at"`
}

// PublishLowStockMessage publishes a low-stock alert to the SQS queue.
func (p *Publisher) PublishLowStockMessage(ctx context.Context, msg LowStockMessage) error {
	messageBody, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	_, err = p.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(p.queueURL),
		MessageBody: aws.String(string(messageBody)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			EventTypeAttribute: {
				DataType:    aws.String("String"),
				StringValue: aws.String(LowStockEventType),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to send message to SQS: %w", err)
	}

	return nil
}
