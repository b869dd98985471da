package external

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// PassClient talks to the pass-issuance service. All calls are best-effort
// side effects of a completed booking; errors are reported to the caller
// for logging, never for rollback.
type PassClient struct {
	baseURL    string
	httpClient *http.Client
}

type PassConfig struct {
	BaseURL string
	Timeout time.Duration
}

type IssuePassesRequest struct {
	BookingID int64 `json:"bookingId"`
	Seats     int   `json:"seats"`
}

type IssuePassesResponse struct {
	PassIDs []string `json:"passIds"`
}

type SendPassesRequest struct {
	BookingID      int64  `json:"bookingId"`
	RecipientEmail string `json:"recipientEmail"`
}

func NewPassClient(cfg PassConfig) *PassClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	return &PassClient{
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// IssuePasses requests one pass per seat for a booking.
func (pc *PassClient) IssuePasses(bookingID int64, seats int) (*IssuePassesResponse, error) {
	reqBody := IssuePassesRequest{BookingID: bookingID, Seats: seats}

	var resp IssuePassesResponse
	if err := pc.post("/api/passes/issue", reqBody, &resp); err != nil {
		return nil, err
	}

	return &resp, nil
}

// SendPasses asks the email service to deliver the booking's passes.
func (pc *PassClient) SendPasses(bookingID int64, recipientEmail string) error {
	reqBody := SendPassesRequest{BookingID: bookingID, RecipientEmail: recipientEmail}
	return pc.post("/api/passes/send", reqBody, nil)
}

func (pc *PassClient) post(path string, reqBody, out interface{}) error {
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, pc.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := pc.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("pass service returned status %d for %s", resp.StatusCode, path)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response from %s: %w", path, err)
		}
	}

	return nil
}
