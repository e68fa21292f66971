package watch

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"robojobs/state"
)

// Client is a thin HTTP client for the robojobs API
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a new API client
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

// GetStatus fetches the current run status
func (c *Client) GetStatus() (*state.Status, error) {
	resp, err := c.client.Get(c.baseURL + "/api/status")
	if err != nil {
		return nil, fmt.Errorf("failed to get status: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(body))
	}

	var status state.Status
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &status, nil
}

// StartRun asks the server for a new run. An empty topic means auto-discovery.
func (c *Client) StartRun(topic string, test bool) error {
	payload, err := json.Marshal(map[string]any{"topic": topic, "test": test})
	if err != nil {
		return err
	}

	resp, err := c.client.Post(c.baseURL+"/api/runs", "application/json", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to start run: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, string(body))
	}

	return nil
}
