// Package orchestration talks to the external workflow orchestrator over
// its JSON REST API. The orchestrator owns run state and wait tokens; this
// service only starts runs and resumes parked waits.
package orchestration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"fulfillment/internal/core/domain/model/workflow"
	"fulfillment/internal/core/ports"
)

const requestTimeout = 10 * time.Second

// Client implements the orchestration client port.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates an orchestrator client for the given base URL.
func NewClient(baseURL string, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: requestTimeout},
		logger:     logger.With("component", "orchestration_client"),
	}
}

// StartRun launches the orchestration for a freshly created order.
func (c *Client) StartRun(ctx context.Context, input ports.StartRunInput) error {
	return c.post(ctx, "/runs", input)
}

type resumeRequest struct {
	TaskToken string         `json:"task_token"`
	Output    map[string]any `json:"output"`
}

// Resume releases a parked wait with the step outcome.
func (c *Client) Resume(ctx context.Context, token workflow.WaitToken,
	output map[string]any) error {
	return c.post(ctx, "/runs/resume", resumeRequest{
		TaskToken: token.Token,
		Output:    output,
	})
}

func (c *Client) post(ctx context.Context, path string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("orchestrator returned %d on %s: %s",
			resp.StatusCode, path, string(detail))
	}

	c.logger.Debug("orchestrator call succeeded", "path", path)
	return nil
}
