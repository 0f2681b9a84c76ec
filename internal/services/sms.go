package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

var (
	ErrInvalidPhone = errors.New("invalid phone number")

	phonePattern = regexp.MustCompile(`^\+250\d{9}$`)
	phoneSpacing = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "")
)

// NormalizePhone strips separators and enforces the +250 international format.
func NormalizePhone(raw string) (string, error) {
	phone := phoneSpacing.Replace(raw)
	if !phonePattern.MatchString(phone) {
		return "", fmt.Errorf("%w: %q", ErrInvalidPhone, raw)
	}
	return phone, nil
}

type SMSSender interface {
	SendSMS(ctx context.Context, to, body string) error
}

type TwilioSender struct {
	client *twilio.RestClient
	from   string
}

func NewTwilioSender(accountSID, authToken, from string) *TwilioSender {
	return &TwilioSender{
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: accountSID,
			Password: authToken,
		}),
		from: from,
	}
}

func (s *TwilioSender) SendSMS(ctx context.Context, to, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(s.from)
	params.SetBody(body)

	if _, err := s.client.Api.CreateMessage(params); err != nil {
		return fmt.Errorf("twilio: %w", err)
	}
	return nil
}

// TextbeltSender posts to the Textbelt HTTP API.
type TextbeltSender struct {
	apiKey   string
	endpoint string
	client   *http.Client
}

func NewTextbeltSender(apiKey string) *TextbeltSender {
	return &TextbeltSender{
		apiKey:   apiKey,
		endpoint: "https://textbelt.com/text",
		client:   &http.Client{Timeout: 15 * time.Second},
	}
}

func (s *TextbeltSender) SendSMS(ctx context.Context, to, body string) error {
	postBody, err := json.Marshal(map[string]string{
		"phone":   to,
		"message": body,
		"key":     s.apiKey,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(postBody))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("textbelt request: %w", err)
	}
	defer resp.Body.Close()

	var result struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("textbelt response: %w", err)
	}
	if !result.Success {
		return fmt.Errorf("textbelt: %s", result.Error)
	}
	return nil
}
