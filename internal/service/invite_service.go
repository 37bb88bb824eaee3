package service

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"go.uber.org/zap"
)

// InviteService emails join codes to prospective players via Amazon SES.
// When no sender address is configured the service stays disabled and
// invites become no-ops, so local setups need no AWS account.
type InviteService struct {
	client     *sesv2.Client
	fromEmail  string
	fromName   string
	appBaseURL string
	enabled    bool
	logger     *zap.Logger
}

// NewInviteService creates a new invite service
func NewInviteService(awsRegion, fromEmail, fromName, appBaseURL string, logger *zap.Logger) (*InviteService, error) {
	if fromEmail == "" {
		logger.Info("invite emails disabled: SES_FROM_EMAIL not configured")
		return &InviteService{enabled: false, logger: logger}, nil
	}

	cfg, err := awsconfig.LoadDefaultConfig(context.TODO(),
		awsconfig.WithRegion(awsRegion),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	logger.Info("invite emails enabled",
		zap.String("from", fromEmail),
		zap.String("region", awsRegion))

	return &InviteService{
		client:     sesv2.NewFromConfig(cfg),
		fromEmail:  fromEmail,
		fromName:   fromName,
		appBaseURL: appBaseURL,
		enabled:    true,
		logger:     logger,
	}, nil
}

// IsEnabled returns whether the invite service is enabled
func (s *InviteService) IsEnabled() bool {
	return s.enabled
}

// SendGameInvite emails a join code to toEmail on behalf of hostName
func (s *InviteService) SendGameInvite(ctx context.Context, toEmail, hostName, code string) error {
	if !s.enabled {
		s.logger.Info("skipping invite (service disabled)", zap.String("to", toEmail))
		return nil
	}

	joinLink := fmt.Sprintf("%s/join?code=%s", s.appBaseURL, code)
	subject := fmt.Sprintf("%s invited you to a game of Shadowchase", hostName)

	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
	<div style="max-width: 600px; margin: 0 auto; padding: 20px;">
		<h2>You're invited to the chase</h2>
		<p>%s wants you on the detective squad. Join with this code:</p>
		<p style="font-size: 28px; font-weight: bold; letter-spacing: 4px;">%s</p>
		<p><a href="%s">Join the game</a></p>
		<p style="font-size: 12px; color: #666;">The code stops working once the game starts.</p>
	</div>
</body>
</html>`, hostName, code, joinLink)

	textBody := fmt.Sprintf(
		"%s invited you to a game of Shadowchase.\n\nJoin code: %s\n\n%s\n\nThe code stops working once the game starts.\n",
		hostName, code, joinLink)

	fromAddress := s.fromEmail
	if s.fromName != "" {
		fromAddress = fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data:    aws.String(subject),
					Charset: aws.String("UTF-8"),
				},
				Body: &types.Body{
					Html: &types.Content{
						Data:    aws.String(htmlBody),
						Charset: aws.String("UTF-8"),
					},
					Text: &types.Content{
						Data:    aws.String(textBody),
						Charset: aws.String("UTF-8"),
					},
				},
			},
		},
	}

	if _, err := s.client.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("failed to send invite to %s: %w", toEmail, err)
	}

	s.logger.Info("invite sent", zap.String("to", toEmail))
	return nil
}
