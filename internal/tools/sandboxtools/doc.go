// Package sandboxtools exposes the sandbox executor and output store as
// agent-callable tools. Argument names follow the wire surface the agent
// runtime advertises (camelCase), and every tool returns a JSON-encoded
// result.
package sandboxtools
