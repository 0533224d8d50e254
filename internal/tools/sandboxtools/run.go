package sandboxtools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/RhysSullivan/github-search-agent/internal/sandbox"
	"github.com/RhysSullivan/github-search-agent/internal/tools"
)

// RunCommandTool returns the tool that executes a command inside the
// conversation's sandbox, provisioning one on first use.
func RunCommandTool(exec *sandbox.Executor) *tools.Tool {
	return &tools.Tool{
		Name:        "runSandboxCommand",
		Description: "Run a command in the conversation's sandbox. The sandbox is created on first use with the given repository cloned into it. Output is truncated; use searchCommandOutput with the returned commandId to query the full output.",
		Category:    tools.CategorySandbox,
		Priority:    70,
		Execute:     executeRunCommand(exec),
		Schema: tools.ToolSchema{
			Required: []string{"command"},
			Properties: map[string]tools.Property{
				"chatId": {
					Type:        "string",
					Description: "Conversation identifier owning the sandbox",
					Default:     defaultConversationID,
				},
				"repositoryUrl": {
					Type:        "string",
					Description: "Git URL to clone when the sandbox is first created",
				},
				"command": {
					Type:        "string",
					Description: "Executable to run",
				},
				"args": {
					Type:        "array",
					Description: "Arguments passed to the command",
					Items:       &tools.PropertyItems{Type: "string"},
				},
				"sudo": {
					Type:        "boolean",
					Description: "Run the command with elevated privileges",
				},
				"workingDirectory": {
					Type:        "string",
					Description: "Directory to run the command in",
				},
				"maxOutputLines": {
					Type:        "integer",
					Description: "Maximum lines of stdout/stderr to return (default 20)",
					Default:     sandbox.DefaultMaxOutputLines,
				},
			},
		},
	}
}

func executeRunCommand(exec *sandbox.Executor) tools.ExecuteFunc {
	return func(ctx context.Context, args map[string]any) (string, error) {
		req, err := runRequestFromArgs(args)
		if err != nil {
			return "", err
		}

		result, err := exec.Run(ctx, req)
		if err != nil {
			return "", err
		}
		return marshalResult(result)
	}
}

func runRequestFromArgs(args map[string]any) (sandbox.RunRequest, error) {
	var req sandbox.RunRequest
	var err error

	if req.ConversationID, err = conversationID(args); err != nil {
		return req, err
	}
	if req.RepositoryURL, err = stringArg(args, "repositoryUrl", ""); err != nil {
		return req, err
	}
	if req.Cmd, err = stringArg(args, "command", ""); err != nil {
		return req, err
	}
	if req.Cmd == "" {
		return req, fmt.Errorf("%w: command", tools.ErrMissingRequiredArg)
	}
	if req.Args, err = stringSliceArg(args, "args"); err != nil {
		return req, err
	}
	if req.Sudo, err = boolArg(args, "sudo", false); err != nil {
		return req, err
	}
	if req.WorkingDirectory, err = stringArg(args, "workingDirectory", ""); err != nil {
		return req, err
	}
	if req.MaxOutputLines, err = intArg(args, "maxOutputLines", 0); err != nil {
		return req, err
	}
	return req, nil
}

func marshalResult(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("marshal tool result: %w", err)
	}
	return string(data), nil
}
