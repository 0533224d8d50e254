// Package vercel implements the sandbox.Provider contract against the
// Vercel Sandbox HTTP API. It owns the mapping from API status codes to the
// structured error kinds the core classifies on.
package vercel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/RhysSullivan/github-search-agent/internal/sandbox"
)

const DefaultBaseURL = "https://api.vercel.com"

// ClientConfig configures the API client.
type ClientConfig struct {
	BaseURL string
	Token   string

	// HTTPTimeout bounds a single API round trip. Long-running commands are
	// bounded by the environment's own timeout, not this; zero disables it.
	HTTPTimeout time.Duration
}

// Client talks to the sandbox API. It implements sandbox.Provider.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

// New creates a client.
func New(cfg ClientConfig, logger *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: cfg.BaseURL,
		http: &http.Client{
			Transport: &bearerTransport{token: cfg.Token},
			Timeout:   cfg.HTTPTimeout,
		},
		logger: logger,
	}
}

type createRequest struct {
	Source    sandbox.Source    `json:"source"`
	Resources sandbox.Resources `json:"resources"`
	TimeoutMs int64             `json:"timeout_ms"`
	Runtime   string            `json:"runtime,omitempty"`
	Ports     []int             `json:"ports,omitempty"`
	TeamID    string            `json:"teamId,omitempty"`
	ProjectID string            `json:"projectId,omitempty"`
}

type createResponse struct {
	ID string `json:"id"`
}

type commandRequest struct {
	Cmd  string   `json:"cmd"`
	Args []string `json:"args"`
	Sudo bool     `json:"sudo,omitempty"`
}

type commandResponse struct {
	Stdout   string `json:"stdout"`
	Stderr   string `json:"stderr"`
	ExitCode int    `json:"exitCode"`
}

type apiError struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Create provisions a new sandbox bound to the configured source repository.
func (c *Client) Create(ctx context.Context, cfg sandbox.EnvironmentConfig) (sandbox.Environment, error) {
	body := createRequest{
		Source:    cfg.Source,
		Resources: cfg.Resources,
		TimeoutMs: cfg.Timeout.Milliseconds(),
		Runtime:   cfg.Runtime,
		Ports:     cfg.Ports,
	}
	if cfg.Credentials != nil {
		body.TeamID = cfg.Credentials.TeamID
		body.ProjectID = cfg.Credentials.ProjectID
	}

	var res createResponse
	if err := c.do(ctx, "create", c.baseURL+"/v1/sandboxes", body, &res, createKind); err != nil {
		return nil, err
	}

	c.logger.Debug("sandbox created", zap.String("sandbox_id", res.ID))
	return &environment{id: res.ID, client: c}, nil
}

// environment is a handle to one live sandbox.
type environment struct {
	id     string
	client *Client
}

func (e *environment) ID() string { return e.id }

func (e *environment) RunCommand(ctx context.Context, req sandbox.CommandRequest) (*sandbox.CommandOutput, error) {
	args := req.Args
	if args == nil {
		args = []string{}
	}
	body := commandRequest{Cmd: req.Cmd, Args: args, Sudo: req.Sudo}

	var res commandResponse
	url := fmt.Sprintf("%s/v1/sandboxes/%s/commands", e.client.baseURL, e.id)
	if err := e.client.do(ctx, "run_command", url, body, &res, environmentKind); err != nil {
		return nil, err
	}
	return &sandbox.CommandOutput{
		Stdout:   res.Stdout,
		Stderr:   res.Stderr,
		ExitCode: res.ExitCode,
	}, nil
}

func (e *environment) Stop(ctx context.Context) error {
	url := fmt.Sprintf("%s/v1/sandboxes/%s/stop", e.client.baseURL, e.id)
	err := e.client.do(ctx, "stop", url, struct{}{}, nil, environmentKind)
	if sandbox.IsEnvironmentDead(err) {
		// Already gone; stopping is idempotent.
		return nil
	}
	return err
}

// do posts a JSON body and decodes the response, translating failures into
// sandbox.ProviderError with the kind chosen by classify.
func (c *Client) do(ctx context.Context, op, url string, body, out any, classify func(int) sandbox.ErrorKind) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return &sandbox.ProviderError{Op: op, Kind: sandbox.KindInvalidRequest, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return &sandbox.ProviderError{Op: op, Kind: sandbox.KindInvalidRequest, Err: err}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &sandbox.ProviderError{Op: op, Kind: sandbox.KindTransport, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &sandbox.ProviderError{
			Op:     op,
			Status: resp.StatusCode,
			Kind:   classify(resp.StatusCode),
			Err:    fmt.Errorf("%s", readAPIError(resp.Body, resp.StatusCode)),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &sandbox.ProviderError{Op: op, Kind: sandbox.KindTransport, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// createKind classifies failures of environment creation.
func createKind(status int) sandbox.ErrorKind {
	switch {
	case status >= 400 && status < 500:
		return sandbox.KindInvalidRequest
	default:
		return sandbox.KindTransport
	}
}

// environmentKind classifies failures of calls addressed to an existing
// environment. A 4xx here means the API no longer recognizes the sandbox as
// runnable: it expired, was stopped, or entered an invalid state.
func environmentKind(status int) sandbox.ErrorKind {
	switch status {
	case http.StatusBadRequest, http.StatusNotFound, http.StatusConflict, http.StatusGone:
		return sandbox.KindEnvironmentDead
	default:
		return sandbox.KindTransport
	}
}

func readAPIError(r io.Reader, status int) string {
	data, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil || len(data) == 0 {
		return fmt.Sprintf("request failed with status %d", status)
	}
	var apiErr apiError
	if json.Unmarshal(data, &apiErr) == nil && apiErr.Error.Message != "" {
		return apiErr.Error.Message
	}
	return fmt.Sprintf("request failed with status %d: %s", status, string(data))
}
