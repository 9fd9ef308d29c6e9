// Package helpdesk is the HTTP client for the helpdesk core services. It
// implements the collaborator contracts actions depend on: field reads and
// writes, notification fan-out, agent assignment, and task creation.
package helpdesk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/deskflow/deskflow/pkg/protocol"
)

const defaultRequestTimeout = 15 * time.Second

type Client struct {
	baseURL    string
	apiToken   string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient builds a helpdesk client against the internal API base URL. The
// token goes out as a bearer Authorization header on every request.
func NewClient(baseURL, apiToken string, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		apiToken:   apiToken,
		httpClient: &http.Client{Timeout: defaultRequestTimeout},
		logger:     logger.With("module", "helpdesk_client"),
	}
}

// WithHTTPClient replaces the HTTP client.
func (c *Client) WithHTTPClient(client *http.Client) *Client {
	c.httpClient = client

	return c
}

var (
	_ protocol.ResourceService = (*Client)(nil)
	_ protocol.Notifier        = (*Client)(nil)
	_ protocol.AgentDirectory  = (*Client)(nil)
	_ protocol.TaskCreator     = (*Client)(nil)
)

func (c *Client) GetField(ctx context.Context, resourceID, path string) (any, error) {
	var out struct {
		Value any `json:"value"`
	}

	endpoint := fmt.Sprintf("/internal/resources/%s/fields/%s",
		url.PathEscape(resourceID), url.PathEscape(path))

	if err := c.do(ctx, http.MethodGet, endpoint, nil, &out); err != nil {
		return nil, err
	}

	return out.Value, nil
}

func (c *Client) UpdateField(ctx context.Context, resourceID, path string, value any) error {
	endpoint := fmt.Sprintf("/internal/resources/%s/fields/%s",
		url.PathEscape(resourceID), url.PathEscape(path))

	return c.do(ctx, http.MethodPatch, endpoint, map[string]any{"value": value}, nil)
}

func (c *Client) Send(
	ctx context.Context,
	recipients []string,
	channels []string,
	message string,
	priority string,
) (*protocol.NotificationResult, error) {
	body := map[string]any{
		"recipients": recipients,
		"channels":   channels,
		"message":    message,
		"priority":   priority,
	}

	var result protocol.NotificationResult

	if err := c.do(ctx, http.MethodPost, "/internal/notifications", body, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

func (c *Client) NextAgent(ctx context.Context, department, strategy string) (string, error) {
	body := map[string]any{
		"department": department,
		"strategy":   strategy,
	}

	var out struct {
		AgentID string `json:"agent_id"`
	}

	if err := c.do(ctx, http.MethodPost, "/internal/assignments/next", body, &out); err != nil {
		return "", err
	}

	return out.AgentID, nil
}

func (c *Client) CreateTask(ctx context.Context, title, assignee, dueDate string, fields map[string]any) (string, error) {
	body := map[string]any{
		"title":    title,
		"assignee": assignee,
		"due_date": dueDate,
		"fields":   fields,
	}

	var out struct {
		TaskID string `json:"task_id"`
	}

	if err := c.do(ctx, http.MethodPost, "/internal/tasks", body, &out); err != nil {
		return "", err
	}

	return out.TaskID, nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, body any, out any) error {
	var reader io.Reader

	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}

		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to create helpdesk request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	if c.apiToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("helpdesk request failed: %w", err)
	}

	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.logger.Warn("failed to close helpdesk response body", "error", err)
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("helpdesk endpoint %s returned status %d", endpoint, resp.StatusCode)
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode helpdesk response: %w", err)
	}

	return nil
}
