package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// AssignmentNotice is the payload forwarded to the downstream CRM when a
// lead is auto-assigned.
type AssignmentNotice struct {
	LeadID     string `json:"lead_id"`
	AttorneyID string `json:"attorney_id"`
	FirmName   string `json:"firm_name"`
	MatchScore int    `json:"match_score"`
}

type Client interface {
	NotifyAssignment(ctx context.Context, notice AssignmentNotice) error
}

type HTTPClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewHTTPClient(baseURL, token string) *HTTPClient {
	return &HTTPClient{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *HTTPClient) NotifyAssignment(ctx context.Context, notice AssignmentNotice) error {
	payload, err := json.Marshal(notice)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/webhooks/lead-assigned", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("crm webhook: %d %s", resp.StatusCode, string(body))
	}
	return nil
}
