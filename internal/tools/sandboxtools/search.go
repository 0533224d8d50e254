package sandboxtools

import (
	"context"
	"fmt"

	"github.com/RhysSullivan/github-search-agent/internal/outputs"
	"github.com/RhysSullivan/github-search-agent/internal/tools"
)

// SearchOutputTool returns the tool that searches the recorded, untruncated
// output of previously executed commands.
func SearchOutputTool(store *outputs.Store) *tools.Tool {
	return &tools.Tool{
		Name:        "searchCommandOutput",
		Description: "Search the full recorded output of commands previously run in this conversation. Use this to recover lines dropped by truncation.",
		Category:    tools.CategorySearch,
		Execute:     executeSearchOutput(store),
		Schema: tools.ToolSchema{
			Required: []string{"pattern"},
			Properties: map[string]tools.Property{
				"chatId": {
					Type:        "string",
					Description: "Conversation whose command history to search",
					Default:     defaultConversationID,
				},
				"pattern": {
					Type:        "string",
					Description: "Regular expression to search for",
				},
				"commandId": {
					Type:        "string",
					Description: "Restrict the search to a single command's output",
				},
				"searchStdout": {
					Type:        "boolean",
					Description: "Include stdout in the search (default true)",
					Default:     true,
				},
				"searchStderr": {
					Type:        "boolean",
					Description: "Include stderr in the search (default true)",
					Default:     true,
				},
				"caseSensitive": {
					Type:        "boolean",
					Description: "Match case exactly (default false)",
				},
				"maxResults": {
					Type:        "integer",
					Description: "Maximum matches to return (default 50)",
					Default:     outputs.DefaultMaxResults,
				},
			},
		},
	}
}

func executeSearchOutput(store *outputs.Store) tools.ExecuteFunc {
	return func(ctx context.Context, args map[string]any) (string, error) {
		var q outputs.SearchQuery
		var err error

		if q.ConversationID, err = conversationID(args); err != nil {
			return "", err
		}
		if q.Pattern, err = stringArg(args, "pattern", ""); err != nil {
			return "", err
		}
		if q.Pattern == "" {
			return "", fmt.Errorf("%w: pattern", tools.ErrMissingRequiredArg)
		}
		if q.CommandID, err = stringArg(args, "commandId", ""); err != nil {
			return "", err
		}
		if q.SearchStdout, err = boolArg(args, "searchStdout", true); err != nil {
			return "", err
		}
		if q.SearchStderr, err = boolArg(args, "searchStderr", true); err != nil {
			return "", err
		}
		if q.CaseSensitive, err = boolArg(args, "caseSensitive", false); err != nil {
			return "", err
		}
		if q.MaxResults, err = intArg(args, "maxResults", 0); err != nil {
			return "", err
		}

		result, err := store.Search(q)
		if err != nil {
			return "", err
		}
		return marshalResult(result)
	}
}
