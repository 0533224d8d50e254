package sandboxtools

import (
	"fmt"

	"github.com/RhysSullivan/github-search-agent/internal/tools"
)

// defaultConversationID is used when the caller omits chatId.
const defaultConversationID = "main"

func stringArg(args map[string]any, key, def string) (string, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return def, nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s must be a string", tools.ErrInvalidArgType, key)
	}
	return s, nil
}

func boolArg(args map[string]any, key string, def bool) (bool, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return def, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("%w: %s must be a boolean", tools.ErrInvalidArgType, key)
	}
	return b, nil
}

// intArg accepts both int and float64 since JSON-decoded arguments arrive
// as float64.
func intArg(args map[string]any, key string, def int) (int, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return def, nil
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case float64:
		return int(n), nil
	default:
		return 0, fmt.Errorf("%w: %s must be a number", tools.ErrInvalidArgType, key)
	}
}

func stringSliceArg(args map[string]any, key string) ([]string, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return nil, nil
	}
	switch items := v.(type) {
	case []string:
		return items, nil
	case []any:
		out := make([]string, 0, len(items))
		for _, item := range items {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%w: %s must be an array of strings", tools.ErrInvalidArgType, key)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: %s must be an array of strings", tools.ErrInvalidArgType, key)
	}
}

func conversationID(args map[string]any) (string, error) {
	id, err := stringArg(args, "chatId", defaultConversationID)
	if err != nil {
		return "", err
	}
	if id == "" {
		id = defaultConversationID
	}
	return id, nil
}
