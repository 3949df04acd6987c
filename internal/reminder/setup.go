package reminder

import (
	"context"
	"fmt"
	"log"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"

	"health-companion-api/internal/config"
)

// NewNotifier builds the notifier cfg names. The returned close func is
// never nil.
func NewNotifier(ctx context.Context, cfg config.Config, logger *log.Logger) (Notifier, func() error, error) {
	noop := func() error { return nil }
	switch cfg.Notifier {
	case config.NotifierKafka:
		n := NewKafkaNotifier(cfg.KafkaBrokers, cfg.KafkaTopic)
		logger.Printf("reminders -> kafka %v topic %s", cfg.KafkaBrokers, cfg.KafkaTopic)
		return n, n.Close, nil
	case config.NotifierSQS:
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, noop, fmt.Errorf("aws config: %w", err)
		}
		n, err := NewSQSNotifier(ctx, NewSQSClient(awsCfg), cfg.SQSQueueName)
		if err != nil {
			return nil, noop, err
		}
		logger.Printf("reminders -> sqs %s", cfg.SQSQueueName)
		return n, noop, nil
	default:
		return LogNotifier{Logger: logger}, noop, nil
	}
}
