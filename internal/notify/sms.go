// Package notify delivers SMS notifications to sellers and buyers.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
)

// Sender sends a single SMS message.
type Sender interface {
	Send(ctx context.Context, phone, body string) error
}

// TwilioSender sends SMS through the Twilio Messaging API.
type TwilioSender struct {
	client *twilio.RestClient
	from   string
}

func NewTwilioSender(accountSID, authToken, fromNumber string) (*TwilioSender, error) {
	if strings.TrimSpace(accountSID) == "" || strings.TrimSpace(authToken) == "" {
		return nil, errors.New("twilio credentials required")
	}
	if strings.TrimSpace(fromNumber) == "" {
		return nil, errors.New("twilio from number required")
	}
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &TwilioSender{client: client, from: fromNumber}, nil
}

func (s *TwilioSender) Send(ctx context.Context, phone, body string) error {
	params := &openapi.CreateMessageParams{}
	params.SetTo(phone)
	params.SetFrom(s.from)
	params.SetBody(body)
	if _, err := s.client.Api.CreateMessage(params); err != nil {
		return fmt.Errorf("twilio send: %w", err)
	}
	return nil
}

// LogSender writes messages to the log instead of sending them. Used in
// development when Twilio credentials are not configured.
type LogSender struct {
	Logger *slog.Logger
}

func (s *LogSender) Send(_ context.Context, phone, body string) error {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("sms (log only)", "phone", phone, "body", body)
	return nil
}
