package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/sns"
	"github.com/aws/aws-sdk-go/service/sns/snsiface"
	"github.com/finternet/finternet-backend/utils"
)

// SNSNotifier publishes settlement events to an SNS topic so other systems
// can react without polling the payment service.
type SNSNotifier struct {
	client   snsiface.SNSAPI
	topicARN string
}

func NewSNSNotifier(c *utils.Config) (*SNSNotifier, error) {
	awsConfig := &aws.Config{
		Region: aws.String(c.AWSRegion),
	}
	// Without static keys the default credential chain is used
	if c.AWSAccessKeyID != "" {
		awsConfig.Credentials = credentials.NewStaticCredentials(c.AWSAccessKeyID, c.AWSSecretAccessKey, "")
	}

	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, fmt.Errorf("creating aws session: %w", err)
	}

	return NewSNSNotifierWithClient(sns.New(sess), c.SettlementTopicARN), nil
}

func NewSNSNotifierWithClient(client snsiface.SNSAPI, topicARN string) *SNSNotifier {
	return &SNSNotifier{client: client, topicARN: topicARN}
}

func (n *SNSNotifier) PaymentSettled(ctx context.Context, event PaymentEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	_, err = n.client.PublishWithContext(ctx, &sns.PublishInput{
		TopicArn: aws.String(n.topicARN),
		Message:  aws.String(string(body)),
		MessageAttributes: map[string]*sns.MessageAttributeValue{
			"event": {
				DataType:    aws.String("String"),
				StringValue: aws.String("payment.settled"),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("publishing settlement of %s: %w", event.PaymentID, err)
	}
	return nil
}

// MultiNotifier fans an event out to every notifier and returns the first
// error after trying all of them.
type MultiNotifier []Notifier

func (m MultiNotifier) PaymentSettled(ctx context.Context, event PaymentEvent) error {
	var first error
	for _, n := range m {
		if err := n.PaymentSettled(ctx, event); err != nil && first == nil {
			first = err
		}
	}
	return first
}
