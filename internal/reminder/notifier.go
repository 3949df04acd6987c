package reminder

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/segmentio/kafka-go"
)

// Reminder is the event emitted for each flagged appointment.
type Reminder struct {
	AppointmentID string    `json:"appointmentId"`
	UserID        string    `json:"userId"`
	DoctorName    string    `json:"doctorName"`
	Date          time.Time `json:"date"`
	Time          string    `json:"time"`
	Location      string    `json:"location"`
}

type Notifier interface {
	Notify(ctx context.Context, r Reminder) error
}

// LogNotifier only writes a log line.
type LogNotifier struct {
	Logger *log.Logger
}

func (n LogNotifier) Notify(_ context.Context, r Reminder) error {
	l := n.Logger
	if l == nil {
		l = log.Default()
	}
	l.Printf("reminder: user %s has an appointment with %s on %s %s",
		r.UserID, r.DoctorName, r.Date.Format("2006-01-02"), r.Time)
	return nil
}

// ----- kafka -----

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaNotifier publishes JSON reminders keyed by user id, so one user's
// reminders land on one partition.
type KafkaNotifier struct {
	w messageWriter
}

func NewKafkaNotifier(brokers []string, topic string) *KafkaNotifier {
	return &KafkaNotifier{w: kafka.NewWriter(kafka.WriterConfig{
		Brokers:  brokers,
		Topic:    topic,
		Balancer: &kafka.Hash{},
	})}
}

func (n *KafkaNotifier) Notify(ctx context.Context, r Reminder) error {
	body, err := json.Marshal(r)
	if err != nil {
		return err
	}
	return n.w.WriteMessages(ctx, kafka.Message{Key: []byte(r.UserID), Value: body})
}

func (n *KafkaNotifier) Close() error { return n.w.Close() }

// ----- sqs -----

type sqsAPI interface {
	GetQueueUrl(ctx context.Context, in *sqs.GetQueueUrlInput, opts ...func(*sqs.Options)) (*sqs.GetQueueUrlOutput, error)
	SendMessage(ctx context.Context, in *sqs.SendMessageInput, opts ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

type SQSNotifier struct {
	client   sqsAPI
	queueURL string
}

// NewSQSClient builds a client honouring a custom endpoint (localstack).
func NewSQSClient(cfg aws.Config) *sqs.Client {
	return sqs.New(sqs.Options{
		Region:       cfg.Region,
		Credentials:  cfg.Credentials,
		HTTPClient:   cfg.HTTPClient,
		BaseEndpoint: cfg.BaseEndpoint,
	})
}

// NewSQSNotifier resolves the queue URL once.
func NewSQSNotifier(ctx context.Context, client sqsAPI, queueName string) (*SQSNotifier, error) {
	resp, err := client.GetQueueUrl(ctx, &sqs.GetQueueUrlInput{QueueName: aws.String(queueName)})
	if err != nil {
		return nil, fmt.Errorf("sqs queue %s: %w", queueName, err)
	}
	return &SQSNotifier{client: client, queueURL: aws.ToString(resp.QueueUrl)}, nil
}

func (n *SQSNotifier) Notify(ctx context.Context, r Reminder) error {
	body, err := json.Marshal(r)
	if err != nil {
		return err
	}
	_, err = n.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(n.queueURL),
		MessageBody: aws.String(string(body)),
	})
	return err
}
