// Package notify announces finished generation tasks over SNS or SES.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	sestypes "github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	"headline-generator/internal/common/config"
	"headline-generator/internal/common/logger"
	"headline-generator/internal/models"
)

// Notifier is told about every processed task.
type Notifier interface {
	TaskCompleted(ctx context.Context, result models.TaskResult) error
}

// SNSService and SESService are the client subsets used here.
type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type SNSNotifier struct {
	client   SNSService
	topicARN string
}

func NewSNSNotifier(client SNSService, topicARN string) *SNSNotifier {
	return &SNSNotifier{client: client, topicARN: topicARN}
}

func (n *SNSNotifier) TaskCompleted(ctx context.Context, result models.TaskResult) error {
	body, err := json.Marshal(result)
	if err != nil {
		return err
	}
	_, err = n.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(n.topicARN),
		Subject:  aws.String(subject(result)),
		Message:  aws.String(string(body)),
	})
	if err != nil {
		return fmt.Errorf("sns publish: %w", err)
	}
	return nil
}

type SESNotifier struct {
	client SESService
	from   string
	to     []string
}

func NewSESNotifier(client SESService, from string, to []string) *SESNotifier {
	return &SESNotifier{client: client, from: from, to: to}
}

func (n *SESNotifier) TaskCompleted(ctx context.Context, result models.TaskResult) error {
	_, err := n.client.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &sestypes.Destination{ToAddresses: n.to},
		Message: &sestypes.Message{
			Subject: &sestypes.Content{Data: aws.String(subject(result))},
			Body: &sestypes.Body{
				Text: &sestypes.Content{Data: aws.String(textBody(result))},
			},
		},
		Source: aws.String(n.from),
	})
	if err != nil {
		return fmt.Errorf("ses send: %w", err)
	}
	return nil
}

func subject(r models.TaskResult) string {
	return fmt.Sprintf("Headline task %s: %d generated", r.TaskID, r.Generated)
}

func textBody(r models.TaskResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Task:      %s\n", r.TaskID)
	fmt.Fprintf(&b, "Generated: %d\n", r.Generated)
	fmt.Fprintf(&b, "Saved:     %d\n", r.Saved)
	fmt.Fprintf(&b, "Enhanced:  %d\n", r.Enhanced)
	fmt.Fprintf(&b, "Duration:  %.3fs\n", r.ExecutionTime)
	return b.String()
}

// Noop discards notifications.
type Noop struct{}

func (Noop) TaskCompleted(context.Context, models.TaskResult) error { return nil }

// New builds the notifier selected by cfg.Channel.
func New(ctx context.Context, cfg config.NotificationConfig, log logger.Logger) (Notifier, error) {
	if cfg.Channel == "" {
		return Noop{}, nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWS.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	switch cfg.Channel {
	case "sns":
		log.Info("task notifications via sns", map[string]interface{}{"topic": cfg.SNS.TopicARN})
		return NewSNSNotifier(sns.NewFromConfig(awsCfg), cfg.SNS.TopicARN), nil
	case "ses":
		log.Info("task notifications via ses", map[string]interface{}{"recipients": len(cfg.SES.To)})
		return NewSESNotifier(ses.NewFromConfig(awsCfg), cfg.SES.FromEmail, cfg.SES.To), nil
	default:
		return nil, fmt.Errorf("unknown notification channel %q", cfg.Channel)
	}
}
