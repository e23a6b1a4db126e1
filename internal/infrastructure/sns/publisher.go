package sns

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/contact-verifier/internal/config"
	"github.com/contact-verifier/internal/domain"
)

const eventRunCompleted = "validation.run.completed"

// ReportPublisher announces finished validation runs.
type ReportPublisher interface {
	PublishRunReport(ctx context.Context, report domain.RunReport) error
}

type publishAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type publisher struct {
	client   publishAPI
	topicARN string
}

// NewPublisher returns a publisher for cfg.SNSTopicARN, or a no-op publisher
// when no topic is configured.
func NewPublisher(ctx context.Context, cfg *config.Config) (ReportPublisher, error) {
	if cfg.SNSTopicARN == "" {
		return Noop{}, nil
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.SNSRegion),
	)
	if err != nil {
		return nil, err
	}
	var opts []func(*sns.Options)
	if cfg.AWSEndpointURL != "" {
		opts = append(opts, func(o *sns.Options) { o.BaseEndpoint = aws.String(cfg.AWSEndpointURL) })
	}
	return newPublisher(sns.NewFromConfig(awsCfg, opts...), cfg.SNSTopicARN), nil
}

func newPublisher(client publishAPI, topicARN string) *publisher {
	return &publisher{client: client, topicARN: topicARN}
}

func (p *publisher) PublishRunReport(ctx context.Context, report domain.RunReport) error {
	body, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal run report: %w", err)
	}
	_, err = p.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(p.topicARN),
		Message:  aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"event":   {DataType: aws.String("String"), StringValue: aws.String(eventRunCompleted)},
			"channel": {DataType: aws.String("String"), StringValue: aws.String(string(report.Channel))},
		},
	})
	return err
}

// Noop discards run reports.
type Noop struct{}

func (Noop) PublishRunReport(context.Context, domain.RunReport) error { return nil }
