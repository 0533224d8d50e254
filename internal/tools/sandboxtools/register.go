package sandboxtools

import (
	"github.com/RhysSullivan/github-search-agent/internal/outputs"
	"github.com/RhysSullivan/github-search-agent/internal/sandbox"
	"github.com/RhysSullivan/github-search-agent/internal/tools"
)

// RegisterAll registers every sandbox tool on the given registry.
func RegisterAll(reg *tools.Registry, exec *sandbox.Executor, store *outputs.Store) error {
	for _, tool := range []*tools.Tool{
		RunCommandTool(exec),
		ListFilesTool(exec),
		ReadFileTool(exec),
		SearchFilesTool(exec),
		SearchOutputTool(store),
	} {
		if err := reg.Register(tool); err != nil {
			return err
		}
	}
	return nil
}
