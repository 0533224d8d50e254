package sandboxtools

import (
	"context"
	"fmt"

	"github.com/RhysSullivan/github-search-agent/internal/sandbox"
	"github.com/RhysSullivan/github-search-agent/internal/tools"
)

// ListFilesTool returns the tool that lists directory entries in the
// conversation's sandbox.
func ListFilesTool(exec *sandbox.Executor) *tools.Tool {
	return &tools.Tool{
		Name:        "listSandboxFiles",
		Description: "List files and directories at a path in the conversation's sandbox.",
		Category:    tools.CategorySandbox,
		Execute:     executeListFiles(exec),
		Schema: tools.ToolSchema{
			Required: []string{},
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
				"path": {
					Type:        "string",
					Description: "Directory to list (default current directory)",
					Default:     ".",
				},
				"recursive": {
					Type:        "boolean",
					Description: "Walk the tree instead of listing one level",
				},
			},
		},
	}
}

func executeListFiles(exec *sandbox.Executor) tools.ExecuteFunc {
	return func(ctx context.Context, args map[string]any) (string, error) {
		var req sandbox.ListRequest
		var err error

		if req.ConversationID, err = conversationID(args); err != nil {
			return "", err
		}
		if req.RepositoryURL, err = stringArg(args, "repositoryUrl", ""); err != nil {
			return "", err
		}
		if req.Path, err = stringArg(args, "path", ""); err != nil {
			return "", err
		}
		if req.Recursive, err = boolArg(args, "recursive", false); err != nil {
			return "", err
		}

		result, err := exec.ListFiles(ctx, req)
		if err != nil {
			return "", err
		}
		return marshalResult(result)
	}
}

// ReadFileTool returns the tool that reads a file from the conversation's
// sandbox. The full content is recorded; the returned view is bounded.
func ReadFileTool(exec *sandbox.Executor) *tools.Tool {
	return &tools.Tool{
		Name:        "readSandboxFile",
		Description: "Read a file from the conversation's sandbox. Long files are truncated; use searchCommandOutput with the returned commandId to query the full content.",
		Category:    tools.CategorySandbox,
		Execute:     executeReadFile(exec),
		Schema: tools.ToolSchema{
			Required: []string{"path"},
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
				"path": {
					Type:        "string",
					Description: "File to read",
				},
				"maxLines": {
					Type:        "integer",
					Description: "Maximum lines to return (default 100)",
					Default:     sandbox.DefaultReadMaxLines,
				},
			},
		},
	}
}

func executeReadFile(exec *sandbox.Executor) tools.ExecuteFunc {
	return func(ctx context.Context, args map[string]any) (string, error) {
		var req sandbox.ReadRequest
		var err error

		if req.ConversationID, err = conversationID(args); err != nil {
			return "", err
		}
		if req.RepositoryURL, err = stringArg(args, "repositoryUrl", ""); err != nil {
			return "", err
		}
		if req.Path, err = stringArg(args, "path", ""); err != nil {
			return "", err
		}
		if req.Path == "" {
			return "", fmt.Errorf("%w: path", tools.ErrMissingRequiredArg)
		}
		if req.MaxLines, err = intArg(args, "maxLines", 0); err != nil {
			return "", err
		}

		result, err := exec.ReadFile(ctx, req)
		if err != nil {
			return "", err
		}
		return marshalResult(result)
	}
}

// SearchFilesTool returns the tool that greps file contents in the
// conversation's sandbox.
func SearchFilesTool(exec *sandbox.Executor) *tools.Tool {
	return &tools.Tool{
		Name:        "searchSandboxFiles",
		Description: "Search file contents in the conversation's sandbox for a pattern, optionally restricted to files matching a glob.",
		Category:    tools.CategorySandbox,
		Execute:     executeSearchFiles(exec),
		Schema: tools.ToolSchema{
			Required: []string{"pattern"},
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
				"path": {
					Type:        "string",
					Description: "Directory to search under (default current directory)",
					Default:     ".",
				},
				"pattern": {
					Type:        "string",
					Description: "Pattern to search for",
				},
				"fileGlob": {
					Type:        "string",
					Description: "Restrict the search to file names matching this glob, e.g. *.go",
				},
			},
		},
	}
}

func executeSearchFiles(exec *sandbox.Executor) tools.ExecuteFunc {
	return func(ctx context.Context, args map[string]any) (string, error) {
		var req sandbox.FileSearchRequest
		var err error

		if req.ConversationID, err = conversationID(args); err != nil {
			return "", err
		}
		if req.RepositoryURL, err = stringArg(args, "repositoryUrl", ""); err != nil {
			return "", err
		}
		if req.Path, err = stringArg(args, "path", ""); err != nil {
			return "", err
		}
		if req.Pattern, err = stringArg(args, "pattern", ""); err != nil {
			return "", err
		}
		if req.Pattern == "" {
			return "", fmt.Errorf("%w: pattern", tools.ErrMissingRequiredArg)
		}
		if req.FileGlob, err = stringArg(args, "fileGlob", ""); err != nil {
			return "", err
		}

		result, err := exec.SearchFiles(ctx, req)
		if err != nil {
			return "", err
		}
		return marshalResult(result)
	}
}
