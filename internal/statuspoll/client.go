package statuspoll

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"mindhaven/internal/model"
)

// Client fetches ticket status over the HTTP API with the owner's bearer
// token. It implements StatusFetcher.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type statusEnvelope struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    struct {
		TicketID uint               `json:"ticket_id"`
		Status   model.TicketStatus `json:"status"`
	} `json:"data"`
}

func (c *Client) FetchStatus(ctx context.Context, ticketID uint) (model.TicketStatus, error) {
	url := fmt.Sprintf("%s/api/v1/tickets/%d/status", c.baseURL, ticketID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build status request failed: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch ticket status failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch ticket status: unexpected http status %d", resp.StatusCode)
	}

	var envelope statusEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return "", fmt.Errorf("decode ticket status failed: %w", err)
	}
	if envelope.Data.Status == "" {
		return "", fmt.Errorf("ticket status response missing status")
	}
	return envelope.Data.Status, nil
}
