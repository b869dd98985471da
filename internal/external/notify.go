package external

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// NotifyClient talks to the notification service used for host-facing
// messages.
type NotifyClient struct {
	baseURL    string
	httpClient *http.Client
}

type NotifyConfig struct {
	BaseURL string
	Timeout time.Duration
}

type NotifyRequest struct {
	HostID   int64             `json:"hostId"`
	Template string            `json:"template"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

func NewNotifyClient(cfg NotifyConfig) *NotifyClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	return &NotifyClient{
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// Notify delivers a templated notification to a host. Deduplication per
// (host, booking) is the caller's responsibility via the notification guard.
func (nc *NotifyClient) Notify(hostID int64, template string, metadata map[string]string) error {
	reqBody := NotifyRequest{HostID: hostID, Template: template, Metadata: metadata}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, nc.baseURL+"/api/notifications", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := nc.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("notification request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("notification service returned status %d", resp.StatusCode)
	}

	return nil
}
