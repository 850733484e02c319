package services

import (
	"fmt"
	"os"

	"github.com/resendlabs/resend-go"
)

// Notifier delivers one-time codes. Delivery is best-effort: issuance never
// rolls back because an email bounced.
type Notifier interface {
	SendOTPCode(email, code string) error
}

type EmailService struct {
	client    *resend.Client
	fromEmail string
}

func NewEmailService(apiKey, fromEmail string) (*EmailService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("RESEND_API_KEY environment variable not set")
	}

	return &EmailService{
		client:    resend.NewClient(apiKey),
		fromEmail: fromEmail,
	}, nil
}

func (s *EmailService) SendOTPCode(email, code string) error {
	// Skip email sending in test mode
	if os.Getenv("SKIP_EMAIL_SEND") == "true" {
		return nil
	}

	params := &resend.SendEmailRequest{
		From:    s.fromEmail,
		To:      []string{email},
		Subject: "Your Thermolog Login Code",
		Html: fmt.Sprintf(`
			<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
				<h2 style="color: #333;">Thermolog Login Code</h2>
				<p>Your one-time code is:</p>
				<div style="background-color: #f4f4f4; padding: 20px; text-align: center; font-size: 32px; font-weight: bold; letter-spacing: 8px; margin: 20px 0;">
					%s
				</div>
				<p style="color: #666;">This code will expire in 5 minutes.</p>
				<p style="color: #666;">If you didn't try to log in, please ignore this email.</p>
				<hr style="border: none; border-top: 1px solid #eee; margin: 30px 0;">
				<p style="color: #999; font-size: 12px;">Thermolog - Temperature &amp; Humidity Monitoring</p>
			</div>
		`, code),
	}

	_, err := s.client.Emails.Send(params)
	return err
}
