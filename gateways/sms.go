package gateways

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"review-service-server/config"
)

// HTTPSMSGateway sends review request texts through a Twilio-compatible REST
// API.
type HTTPSMSGateway struct {
	accountSID string
	authToken  string
	apiBaseURL string
	client     *http.Client
}

// NewHTTPSMSGateway creates the gateway from the loaded SMS config
func NewHTTPSMSGateway(cfg config.SMSConfig) *HTTPSMSGateway {
	return &HTTPSMSGateway{
		accountSID: cfg.AccountSID,
		authToken:  cfg.AuthToken,
		apiBaseURL: strings.TrimRight(cfg.APIBaseURL, "/"),
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

// Available reports whether credentials are configured. Tenants can enable
// SMS before the operator wires a provider; dispatch degrades to email until
// this turns true.
func (g *HTTPSMSGateway) Available() bool {
	return g.accountSID != "" && g.authToken != ""
}

// Send posts one message and returns the provider's message SID
func (g *HTTPSMSGateway) Send(ctx context.Context, to, from, body string) (string, error) {
	endpoint := fmt.Sprintf("%s/Accounts/%s/Messages.json", g.apiBaseURL, g.accountSID)

	form := url.Values{}
	form.Set("To", to)
	form.Set("From", from)
	form.Set("Body", body)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(g.accountSID, g.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("sms api error: status=%d body=%s", resp.StatusCode, string(respBody))
	}

	var result struct {
		SID string `json:"sid"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("sms api returned unreadable response: %w", err)
	}
	return result.SID, nil
}
