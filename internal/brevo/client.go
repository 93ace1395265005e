package brevo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

const brevoAPIURL = "https://api.brevo.com/v3/smtp/email"

// Mailer dispatches the account verification email.
type Mailer interface {
	SendVerificationEmail(ctx context.Context, toEmail, firstName, verifyURL string) error
}

// Client talks to the Brevo transactional email API.
type Client struct {
	apiKey     string
	fromEmail  string
	fromName   string
	httpClient *http.Client
	configured bool
}

var _ Mailer = (*Client)(nil)

// NewClient returns a Brevo client. With missing credentials the client is
// left unconfigured and every send returns an error instead of silently
// dropping mail.
func NewClient(apiKey, fromEmail, fromName string) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	if apiKey != "" && fromEmail != "" {
		c.apiKey = apiKey
		c.fromEmail = fromEmail
		c.fromName = fromName
		c.configured = true
	}
	return c
}

func (c *Client) IsConfigured() bool {
	return c.configured
}

type sendEmailReq struct {
	Sender      map[string]string   `json:"sender"`
	To          []map[string]string `json:"to"`
	Subject     string              `json:"subject"`
	HtmlContent string              `json:"htmlContent"`
}

// SendVerificationEmail sends the single-use verification link to the
// freshly registered address.
func (c *Client) SendVerificationEmail(ctx context.Context, toEmail, firstName, verifyURL string) error {
	subject := "Verify your email address"
	html := fmt.Sprintf(
		"<p>Hi %s,</p><p>Please confirm your email address by clicking the link below:</p><p><a href=%q>%s</a></p>",
		firstName, verifyURL, verifyURL,
	)
	return c.send(ctx, toEmail, subject, html)
}

func (c *Client) send(ctx context.Context, toEmail, subject, html string) error {
	if !c.configured {
		return fmt.Errorf("brevo client not configured, email to %s for subject '%s' skipped", toEmail, subject)
	}
	if toEmail == "" || subject == "" || html == "" {
		return errors.New("toEmail, subject, and html content cannot be empty")
	}

	reqBody := sendEmailReq{
		Sender:      map[string]string{"email": c.fromEmail, "name": c.fromName},
		To:          []map[string]string{{"email": toEmail}},
		Subject:     subject,
		HtmlContent: html,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("failed to marshal email request body: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, brevoAPIURL, bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("failed to create HTTP request for Brevo: %w", err)
	}
	httpReq.Header.Set("api-key", c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("brevo send email request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errorBody map[string]interface{}
		if decodeErr := json.NewDecoder(resp.Body).Decode(&errorBody); decodeErr != nil {
			return fmt.Errorf("brevo API error: status %d, failed to decode error body: %v", resp.StatusCode, decodeErr)
		}
		return fmt.Errorf("brevo API error: status %d, body: %v", resp.StatusCode, errorBody)
	}
	return nil
}
