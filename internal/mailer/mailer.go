// Package mailer sends notification email via AWS SES. Sending is strictly
// best effort: a mail failure must never fail the operation that triggered it.
package mailer

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	sesv2 "github.com/aws/aws-sdk-go-v2/service/sesv2"
	sestypes "github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"go.uber.org/zap"
)

// Mailer sends transactional notifications. A Mailer with no SES client (no
// credentials, no from-address) silently drops every send.
type Mailer struct {
	client    *sesv2.Client
	fromEmail string
	logger    *zap.Logger
}

// New builds a Mailer from the default AWS config chain. When the region or
// sender address is not configured the mailer is disabled.
func New(ctx context.Context, region, fromEmail string, logger *zap.Logger) *Mailer {
	if fromEmail == "" {
		logger.Info("mailer disabled: SES_FROM_EMAIL not set")
		return &Mailer{logger: logger}
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		logger.Warn("mailer disabled: could not load AWS config", zap.Error(err))
		return &Mailer{logger: logger}
	}

	return &Mailer{
		client:    sesv2.NewFromConfig(cfg),
		fromEmail: fromEmail,
		logger:    logger,
	}
}

// SendWelcome greets a newly created user.
func (m *Mailer) SendWelcome(ctx context.Context, to, username string) {
	subject := "Welcome to BuildSite"
	body := fmt.Sprintf("Hi %s,\n\nYour account has been created. You can now sign in with your username.\n", username)
	m.send(ctx, to, subject, body)
}

// SendSupplyRequestNotice tells an admin a new supply request awaits review.
func (m *Mailer) SendSupplyRequestNotice(ctx context.Context, to, siteName, itemName string, quantity float64, unit string) {
	subject := "New supply request awaiting approval"
	body := fmt.Sprintf("Site %q has requested %g %s of %q.\n\nOpen the dashboard to approve or reject it.\n",
		siteName, quantity, unit, itemName)
	m.send(ctx, to, subject, body)
}

func (m *Mailer) send(ctx context.Context, to, subject, body string) {
	if m == nil || m.client == nil || to == "" {
		return
	}

	_, err := m.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(m.fromEmail),
		Destination:      &sestypes.Destination{ToAddresses: []string{to}},
		Content: &sestypes.EmailContent{
			Simple: &sestypes.Message{
				Subject: &sestypes.Content{Data: aws.String(subject)},
				Body: &sestypes.Body{
					Text: &sestypes.Content{Data: aws.String(body)},
				},
			},
		},
	})
	if err != nil {
		m.logger.Warn("failed to send email", zap.String("to", to), zap.String("subject", subject), zap.Error(err))
	}
}
