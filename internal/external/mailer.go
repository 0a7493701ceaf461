package external

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// MailerClient talks to the mail gateway over HTTP. Delivery is best effort:
// callers log failures and never let them block a booking transition.
type MailerClient struct {
	baseURL    string
	apiKey     string
	sender     string
	httpClient *http.Client
}

type MailerConfig struct {
	BaseURL string
	APIKey  string
	Sender  string
	Timeout time.Duration
}

type sendMailRequest struct {
	From     string            `json:"from"`
	To       string            `json:"to"`
	Subject  string            `json:"subject"`
	Template string            `json:"template"`
	Vars     map[string]string `json:"vars,omitempty"`
}

// Mail template names understood by the gateway
const (
	TemplateBookingConfirmed = "booking_confirmed"
	TemplateBookingReminder  = "booking_reminder"
	TemplateBookingCancelled = "booking_cancelled"
	TemplateWaitlistSlotFree = "waitlist_slot_free"
)

func NewMailerClient(cfg MailerConfig) *MailerClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}

	return &MailerClient{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		sender:  cfg.Sender,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// Send posts a templated message to the gateway.
func (mc *MailerClient) Send(to, subject, template string, vars map[string]string) error {
	payload := sendMailRequest{
		From:     mc.sender,
		To:       to,
		Subject:  subject,
		Template: template,
		Vars:     vars,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal mail request: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, mc.baseURL+"/api/v1/send", bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to create mail request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if mc.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+mc.apiKey)
	}

	resp, err := mc.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("mail gateway returned status %d", resp.StatusCode)
	}

	return nil
}
