package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/video-system/go-hwscan/internal/report"
)

// Client is the video-platform API client
type Client struct {
	baseURL    string
	apiKey     string
	nodeID     string
	httpClient *http.Client
}

// Config holds platform client configuration
type Config struct {
	URL    string
	APIKey string
	NodeID string // Defaults to the scanned hostname
}

// capabilitiesRequest is the body of a capability publish
type capabilitiesRequest struct {
	NodeID string `json:"node_id"`
	report.Report
}

// PublishResult is the platform's answer to a capability publish
type PublishResult struct {
	Status  string `json:"status"`
	NodeID  string `json:"node_id"`
	Devices int    `json:"devices"`
}

// New creates a new platform client
func New(cfg Config) *Client {
	return &Client{
		baseURL: cfg.URL,
		apiKey:  cfg.APIKey,
		nodeID:  cfg.NodeID,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// IsConfigured returns true if the client is properly configured
func (c *Client) IsConfigured() bool {
	return c.baseURL != ""
}

// PublishCapabilities registers the node's scanned devices with the platform
func (c *Client) PublishCapabilities(ctx context.Context, r report.Report) (*PublishResult, error) {
	if !c.IsConfigured() {
		return nil, fmt.Errorf("platform client not configured")
	}

	nodeID := c.nodeID
	if nodeID == "" {
		nodeID = r.Host.Hostname
	}
	if nodeID == "" {
		return nil, fmt.Errorf("platform node id unknown: set platform.node_id")
	}

	body, err := json.Marshal(capabilitiesRequest{NodeID: nodeID, Report: r})
	if err != nil {
		return nil, fmt.Errorf("marshal capabilities: %w", err)
	}

	url := fmt.Sprintf("%s/api/v1/nodes/%s/capabilities", c.baseURL, nodeID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("publish failed (status %d): %s", resp.StatusCode, string(respBody))
	}

	var result PublishResult
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	return &result, nil
}

// CheckHealth checks if the platform is accessible
func (c *Client) CheckHealth(ctx context.Context) error {
	if !c.IsConfigured() {
		return fmt.Errorf("platform client not configured")
	}

	url := fmt.Sprintf("%s/health", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("platform unhealthy (status %d)", resp.StatusCode)
	}

	return nil
}
