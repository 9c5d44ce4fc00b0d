package sqs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

// ConsumerAPI defines the interface for SQS operations used by Consumer.
type ConsumerAPI interface {
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

// LowStockHandler reacts to a received low-stock alert. A returned error keeps the
// message on the queue for redelivery.
type LowStockHandler func(ctx context.Context, msg LowStockMessage) error

// Consumer handles consuming low-stock alerts from AWS SQS.
type Consumer struct {
	client   ConsumerAPI
	queueURL string
	handler  LowStockHandler
}

// NewConsumer creates a new SQS Consumer. A nil handler logs each alert.
func NewConsumer(client ConsumerAPI, queueURL string, handler LowStockHandler) *Consumer {
	if handler == nil {
		handler = LogLowStock
	}
	return &Consumer{
		client:   client,
		queueURL: queueURL,
		handler:  handler,
	}
}

// LogLowStock writes the alert as a WARN record.
func LogLowStock(_ context.Context, msg LowStockMessage) error {
	slog.Warn("Received low stock notification",
		slog.String("product_id", msg.ProductID),
		slog.Int("current_stock", msg.CurrentStock),
		slog.Int("threshold", msg.Threshold),
		slog.String("reason", msg.Reason),
		slog.Time("raised_at", msg.RaisedAt),
	)
	return nil
}

// Start begins consuming messages from the SQS queue until the context is cancelled.
func (c *Consumer) Start(ctx context.Context) error {
	slog.Info("Starting SQS consumer", slog.String("queueURL", c.queueURL))

	for {
		select {
		case <-ctx.Done():
			slog.Info("Stopping SQS consumer")
			return ctx.Err()
		default:
			if err := c.receiveMessages(ctx); err != nil {
				slog.Error("Error receiving messages", slog.Any("err", err))
			}
		}
	}
}

func (c *Consumer) receiveMessages(ctx context.Context) error {
	result, err := c.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:              aws.String(c.queueURL),
		MaxNumberOfMessages:   10,
		WaitTimeSeconds:       20, // Long polling
		MessageAttributeNames: []string{EventTypeAttribute},
	})
	if err != nil {
		return fmt.Errorf("failed to receive messages: %w", err)
	}

	for _, message := range result.Messages {
		if err := c.processMessage(ctx, message); err != nil {
			slog.Error("Error processing message", slog.Any("err", err))
			continue
		}

		// Delete message after successful processing
		if err := c.deleteMessage(ctx, message); err != nil {
			slog.Error("Error deleting message", slog.Any("err", err))
		}
	}

	return nil
}

func (c *Consumer) processMessage(ctx context.Context, message types.Message) error {
	if message.Body == nil {
		return fmt.Errorf("message body is nil")
	}

	if attr, ok := message.MessageAttributes[EventTypeAttribute]; ok && attr.StringValue != nil && *attr.StringValue != LowStockEventType {
		slog.Debug("Skipping message of unknown type", slog.String("event_type", *attr.StringValue))
		return nil
	}

	var msg LowStockMessage
	if err := json.Unmarshal([]byte(*message.Body), &msg); err != nil {
		return fmt.Errorf("failed to unmarshal message: %w", err)
	}
	if msg.ProductID == "" {
		return fmt.Errorf("message has no product_id")
	}

	return c.handler(ctx, msg)
}

func (c *Consumer) deleteMessage(ctx context.Context, message types.Message) error {
	_, err := c.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(c.queueURL),
		ReceiptHandle: message.ReceiptHandle,
	})
	if err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}
	return nil
}
