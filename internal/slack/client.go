// Package slack implements the outbound Slack Web API client and the inbound
// event webhook protocol.
package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/docsbot-io/docsbot/internal/domain"
)

const DefaultAPIURL = "https://slack.com/api"

// Sender delivers a message to a Slack channel.
type Sender interface {
	SendMessage(ctx context.Context, channelID, text string) error
}

// Client is a minimal Slack Web API client. Only chat.postMessage is needed;
// everything inbound arrives via the events webhook.
type Client struct {
	baseURL    string
	botToken   string
	httpClient *http.Client
}

func NewClient(botToken, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultAPIURL
	}
	return &Client{
		baseURL:  baseURL,
		botToken: botToken,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type postMessageRequest struct {
	Channel string `json:"channel"`
	Text    string `json:"text"`
}

type postMessageResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// SendMessage posts text to the channel via chat.postMessage. Slack reports
// API-level failures with a 200 status and ok:false, so both the HTTP status
// and the response body are checked.
func (c *Client) SendMessage(ctx context.Context, channelID, text string) error {
	payload, err := json.Marshal(postMessageRequest{Channel: channelID, Text: text})
	if err != nil {
		return domain.NewSendError("failed to encode message", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat.postMessage", bytes.NewReader(payload))
	if err != nil {
		return domain.NewSendError("failed to create request", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.botToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.NewSendError("slack request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.NewSendError("failed to read slack response", err)
	}

	if resp.StatusCode >= 400 {
		return domain.NewSendError("slack returned error status",
			fmt.Errorf("status %d: %s", resp.StatusCode, string(body)))
	}

	var apiResp postMessageResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return domain.NewSendError("failed to parse slack response", err)
	}
	if !apiResp.OK {
		return domain.NewSendError("slack rejected message", fmt.Errorf("slack api error: %s", apiResp.Error))
	}

	return nil
}
