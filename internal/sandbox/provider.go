package sandbox

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Source identifies the repository an environment is created from.
type Source struct {
	Type     string `json:"type"`
	URL      string `json:"url"`
	Revision string `json:"revision,omitempty"`
}

// Resources is the compute allocation for an environment.
type Resources struct {
	VCPUs int `json:"vcpus"`
}

// Credentials is the elevated-tier credential triple. All three fields are
// set together or not at all.
type Credentials struct {
	TeamID    string
	ProjectID string
	Token     string
}

// EnvironmentConfig is everything a provider needs to create an environment.
type EnvironmentConfig struct {
	Source      Source
	Resources   Resources
	Timeout     time.Duration
	Runtime     string
	Ports       []int
	Credentials *Credentials
}

// CommandRequest is one command invocation inside an environment.
type CommandRequest struct {
	Cmd  string
	Args []string
	Sudo bool
}

// CommandOutput is the captured result of a command invocation. A non-zero
// exit code is data, not an error.
type CommandOutput struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Environment is a live remote execution environment.
type Environment interface {
	ID() string
	RunCommand(ctx context.Context, req CommandRequest) (*CommandOutput, error)
	Stop(ctx context.Context) error
}

// Provider creates environments.
type Provider interface {
	Create(ctx context.Context, cfg EnvironmentConfig) (Environment, error)
}

// ErrorKind classifies provider failures at the boundary, so callers never
// have to sniff error message text.
type ErrorKind int

const (
	// KindTransport covers network and provider-side failures.
	KindTransport ErrorKind = iota

	// KindInvalidRequest covers rejected configurations and bad parameters.
	KindInvalidRequest

	// KindEnvironmentDead means the environment no longer accepts commands
	// and must be replaced.
	KindEnvironmentDead
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvalidRequest:
		return "invalid_request"
	case KindEnvironmentDead:
		return "environment_dead"
	default:
		return "transport"
	}
}

// ProviderError is the structured error every Provider implementation
// returns for failed calls.
type ProviderError struct {
	Op     string
	Status int
	Kind   ErrorKind
	Err    error
}

func (e *ProviderError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("sandbox provider %s failed (%s, status %d): %v", e.Op, e.Kind, e.Status, e.Err)
	}
	return fmt.Sprintf("sandbox provider %s failed (%s): %v", e.Op, e.Kind, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// IsEnvironmentDead reports whether err signals that the environment is gone
// and a fresh one is needed.
func IsEnvironmentDead(err error) bool {
	var perr *ProviderError
	return errors.As(err, &perr) && perr.Kind == KindEnvironmentDead
}
