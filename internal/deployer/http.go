package deployer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/specialistvlad/deploygrid/internal/component"
	"github.com/specialistvlad/deploygrid/internal/orchestrator"
)

// maxResponseBytes caps how much of a deploy service reply is read.
const maxResponseBytes = 1 << 20

// HTTP deploys components by POSTing them to a deploy service.
type HTTP struct {
	url    string
	client *http.Client
}

type deployRequest struct {
	Component string          `json:"component"`
	Config    json.RawMessage `json:"config"`
}

type deployResponse struct {
	Handle string `json:"handle"`
	Error  string `json:"error"`
}

// NewHTTP returns a client for the deploy service at url. A zero timeout
// means no per-request limit.
func NewHTTP(url string, timeout time.Duration) *HTTP {
	return &HTTP{
		url: url,
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// Deploy implements orchestrator.DeployFunc. Service-reported failures are
// returned as *orchestrator.DeployError carrying the service's reason.
func (h *HTTP) Deploy(ctx context.Context, name string, cfg component.Config) (component.Handle, error) {
	cfgJSON, err := MarshalConfig(cfg)
	if err != nil {
		return "", err
	}
	body, err := json.Marshal(deployRequest{Component: name, Config: cfgJSON})
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	var out deployResponse
	decodeErr := json.Unmarshal(raw, &out)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		reason := out.Error
		if decodeErr != nil || reason == "" {
			reason = fmt.Sprintf("deploy service returned %s", resp.Status)
		}
		return "", &orchestrator.DeployError{Reason: reason}
	}
	if decodeErr != nil {
		return "", fmt.Errorf("failed to decode response: %w", decodeErr)
	}
	if out.Error != "" {
		return "", &orchestrator.DeployError{Reason: out.Error}
	}
	return component.Handle(out.Handle), nil
}

// Close releases idle connections.
func (h *HTTP) Close() {
	h.client.CloseIdleConnections()
}
