package sns

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/qrdesk-api/internal/config"
	"github.com/qrdesk-api/internal/domain"
)

// ScanPublisher fans recorded scans out to an SNS topic.
type ScanPublisher interface {
	PublishScan(ctx context.Context, ev *domain.ScanEvent) error
}

type publisher struct {
	client   *sns.Client
	topicARN string
}

func NewScanPublisher(cfg *config.Config) (ScanPublisher, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.SNSRegion),
	}
	if cfg.AWSAccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWSAccessKeyID, cfg.AWSSecretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, err
	}
	var clientOpts []func(*sns.Options)
	if cfg.AWSEndpointURL != "" {
		clientOpts = append(clientOpts, func(o *sns.Options) {
			o.BaseEndpoint = aws.String(cfg.AWSEndpointURL)
		})
	}
	return &publisher{client: sns.NewFromConfig(awsCfg, clientOpts...), topicARN: cfg.SNSScanTopicARN}, nil
}

func (p *publisher) PublishScan(ctx context.Context, ev *domain.ScanEvent) error {
	in, err := scanMessage(p.topicARN, ev)
	if err != nil {
		return err
	}
	_, err = p.client.Publish(ctx, in)
	return err
}

// scanMessage builds the publish input: the event as JSON plus attributes
// subscribers can filter on.
func scanMessage(topicARN string, ev *domain.ScanEvent) (*sns.PublishInput, error) {
	body, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("marshal scan event: %w", err)
	}
	return &sns.PublishInput{
		TopicArn: aws.String(topicARN),
		Message:  aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"qr_id": {
				DataType:    aws.String("String"),
				StringValue: aws.String(ev.QRID),
			},
			"device_type": {
				DataType:    aws.String("String"),
				StringValue: aws.String(ev.DeviceType),
			},
		},
	}, nil
}
