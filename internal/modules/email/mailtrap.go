package email

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/judychuepursuit/change-4-change-back/internal/mailer"
)

// MailtrapMailer delivers mail through the Mailtrap HTTP API using a bearer
// token. It implements mailer.Service so callers never see the transport.
type MailtrapMailer struct {
	apiURL string
	apiKey string
	client *http.Client
}

type mailtrapPayload struct {
	From        personInfo            `json:"from"`
	To          []personInfo          `json:"to"`
	Subject     string                `json:"subject"`
	Text        string                `json:"text,omitempty"`
	HTML        string                `json:"html,omitempty"`
	Category    string                `json:"category,omitempty"`
	Attachments []mailtrapAttachment  `json:"attachments,omitempty"`
}

type personInfo struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type mailtrapAttachment struct {
	Content     string `json:"content"` // base64
	Filename    string `json:"filename"`
	Type        string `json:"type,omitempty"`
	Disposition string `json:"disposition,omitempty"`
}

func NewMailtrapMailer(apiURL, apiKey string) *MailtrapMailer {
	return &MailtrapMailer{
		apiURL: apiURL,
		apiKey: apiKey,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (m *MailtrapMailer) Send(ctx context.Context, e mailer.Email) error {
	if m.apiURL == "" || m.apiKey == "" {
		return fmt.Errorf("mailtrap credentials not configured")
	}
	if len(e.To) == 0 {
		return fmt.Errorf("mailtrap: at least one recipient required")
	}

	payload := mailtrapPayload{
		From:     personInfo{Email: e.From, Name: e.FromName},
		Subject:  e.Subject,
		HTML:     e.HTMLBody,
		Text:     e.TextBody,
		Category: "Transactional",
	}
	for _, to := range e.To {
		payload.To = append(payload.To, personInfo{Email: to})
	}
	for _, a := range e.Attachments {
		payload.Attachments = append(payload.Attachments, mailtrapAttachment{
			Content:     base64.StdEncoding.EncodeToString(a.Data),
			Filename:    a.Filename,
			Type:        a.ContentType,
			Disposition: "attachment",
		})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.apiURL, bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	req.Header.Add("Authorization", fmt.Sprintf("Bearer %s", m.apiKey))
	req.Header.Add("Content-Type", "application/json")

	res, err := m.client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode >= 400 {
		return fmt.Errorf("mailtrap API error: %d", res.StatusCode)
	}
	return nil
}
