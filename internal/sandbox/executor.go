package sandbox

import (
	"context"
	"fmt"
	"strings"
	"time"

	"al.essio.dev/pkg/shellescape"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/RhysSullivan/github-search-agent/internal/outputs"
)

// RunRequest describes one command to run in a conversation's environment.
type RunRequest struct {
	ConversationID string
	RepositoryURL  string

	Cmd              string
	Args             []string
	Sudo             bool
	WorkingDirectory string

	// MaxOutputLines bounds the returned stdout/stderr views.
	// Zero means DefaultMaxOutputLines.
	MaxOutputLines int
}

// RunResult is the agent-facing view of an executed command.
type RunResult struct {
	Success   bool          `json:"success"`
	ExitCode  int           `json:"exitCode"`
	Command   string        `json:"command"`
	CommandID string        `json:"commandId"`
	Stdout    TruncatedView `json:"stdout"`
	Stderr    TruncatedView `json:"stderr"`
	Hint      string        `json:"hint,omitempty"`
}

// Executor runs commands in registry-resolved environments, records their
// full output, and recovers from environment death by re-provisioning and
// retrying exactly once.
type Executor struct {
	registry *Registry
	outputs  *outputs.Store
	logger   *zap.Logger
}

// NewExecutor wires the registry and output store.
func NewExecutor(registry *Registry, store *outputs.Store, logger *zap.Logger) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{registry: registry, outputs: store, logger: logger}
}

// Outputs returns the executor's output store.
func (e *Executor) Outputs() *outputs.Store { return e.outputs }

// Registry returns the executor's session registry.
func (e *Executor) Registry() *Registry { return e.registry }

// Run executes a command and returns its truncated result. A non-zero exit
// code is reported in the result, not as an error; only transport and
// environment failures surface as errors.
func (e *Executor) Run(ctx context.Context, req RunRequest) (*RunResult, error) {
	out, commandText, commandID, err := e.execute(ctx, req)
	if err != nil {
		return nil, err
	}

	maxLines := req.MaxOutputLines
	if maxLines <= 0 {
		maxLines = DefaultMaxOutputLines
	}

	result := &RunResult{
		Success:   out.ExitCode == 0,
		ExitCode:  out.ExitCode,
		Command:   commandText,
		CommandID: commandID,
		Stdout:    Truncate(out.Stdout, maxLines),
		Stderr:    Truncate(out.Stderr, maxLines),
	}
	if result.Stdout.Truncated || result.Stderr.Truncated {
		result.Hint = truncationHint(commandID)
	}
	return result, nil
}

// execute performs the resolve/run/record cycle with the single
// death-triggered retry, and returns the full command output.
func (e *Executor) execute(ctx context.Context, req RunRequest) (*CommandOutput, string, string, error) {
	creq := buildCommand(req)
	commandText := commandText(creq)

	out, err := e.attempt(ctx, req.ConversationID, req.RepositoryURL, creq)
	if err != nil {
		if !IsEnvironmentDead(err) {
			return nil, "", "", err
		}

		repo := req.RepositoryURL
		bound := e.registry.Evict(ctx, req.ConversationID)
		if repo == "" {
			repo = bound
		}
		e.logger.Warn("sandbox environment died, re-provisioning and retrying",
			zap.String("conversation", req.ConversationID),
			zap.String("repository", repo),
			zap.Error(err))

		out, err = e.attempt(ctx, req.ConversationID, repo, creq)
		if err != nil {
			return nil, "", "", fmt.Errorf("%w: %v", ErrCommandExecutionFailed, err)
		}
	}

	rec := outputs.Record{
		ID:        uuid.NewString(),
		Command:   commandText,
		Stdout:    out.Stdout,
		Stderr:    out.Stderr,
		ExitCode:  out.ExitCode,
		Timestamp: time.Now(),
	}
	e.outputs.Append(req.ConversationID, rec)

	e.logger.Debug("command executed",
		zap.String("conversation", req.ConversationID),
		zap.String("command", commandText),
		zap.Int("exit_code", out.ExitCode))

	return out, commandText, rec.ID, nil
}

func (e *Executor) attempt(ctx context.Context, conversationID, repositoryURL string, creq CommandRequest) (*CommandOutput, error) {
	env, err := e.registry.Resolve(ctx, conversationID, repositoryURL)
	if err != nil {
		return nil, err
	}
	return env.RunCommand(ctx, creq)
}

// buildCommand wraps the invocation for the working directory: the directory
// change and the command run as one shell expression, so they are atomic
// from the caller's point of view. Sudo is part of the provider contract and
// passes through.
func buildCommand(req RunRequest) CommandRequest {
	if req.WorkingDirectory == "" {
		return CommandRequest{Cmd: req.Cmd, Args: req.Args, Sudo: req.Sudo}
	}

	parts := make([]string, 0, len(req.Args)+1)
	parts = append(parts, req.Cmd)
	parts = append(parts, req.Args...)
	expr := fmt.Sprintf("cd %s && %s",
		shellescape.Quote(req.WorkingDirectory),
		shellescape.QuoteCommand(parts))

	return CommandRequest{Cmd: "sh", Args: []string{"-c", expr}, Sudo: req.Sudo}
}

// commandText renders the full command line for the record.
func commandText(creq CommandRequest) string {
	text := strings.Join(append([]string{creq.Cmd}, creq.Args...), " ")
	if creq.Sudo {
		return "sudo " + text
	}
	return text
}

// Teardown stops the conversation's environment and discards its recorded
// output.
func (e *Executor) Teardown(ctx context.Context, conversationID string) {
	e.registry.Evict(ctx, conversationID)
	e.outputs.Clear(conversationID)
}

// TeardownAll stops every live environment. Recorded output is kept; records
// outlive their environments.
func (e *Executor) TeardownAll(ctx context.Context) {
	e.registry.TeardownAll(ctx)
}

func truncationHint(commandID string) string {
	return fmt.Sprintf("Output was truncated. Use searchCommandOutput with commandId %q to search the full output.", commandID)
}
