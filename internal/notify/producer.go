package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/segmentio/kafka-go"
)

const (
	TopicEmailJobs  = "email_jobs"
	TopicUserEvents = "user_events"
	TopicBookEvents = "book_events"
)

// EmailJob is the message consumed by the mailer worker. Delivery is
// fire-and-forget from the service's point of view: a failed publish is
// logged by the caller and never fails the originating request.
type EmailJob struct {
	Recipients []string `json:"recipients"`
	Subject    string   `json:"subject"`
	HTMLBody   string   `json:"html_body"`
}

type Producer struct {
	writer *kafka.Writer
}

func NewProducer(brokers []string) *Producer {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	return &Producer{writer: w}
}

func (p *Producer) PublishEvent(ctx context.Context, topic, key string, event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("kafka: json.Marshal failed: %w", err)
	}

	msg := kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: data,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka: write failed: %w", err)
	}
	return nil
}

// Send publishes an email job for the mailer worker.
func (p *Producer) Send(ctx context.Context, recipients []string, subject, htmlBody string) error {
	job := EmailJob{Recipients: recipients, Subject: subject, HTMLBody: htmlBody}
	return p.PublishEvent(ctx, TopicEmailJobs, strings.Join(recipients, ","), job)
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
