package sandbox

import "errors"

// Sandbox session errors.
var (
	// ErrMissingRepository is returned when a conversation has no live
	// environment and the caller supplied no repository URL.
	ErrMissingRepository = errors.New("no sandbox exists for this conversation; provide a repositoryUrl to create one")

	// ErrInvalidCredentialConfiguration is returned when only part of the
	// elevated-tier credential triple is configured.
	ErrInvalidCredentialConfiguration = errors.New("sandbox credentials are incomplete: team id, project id, and token must all be set or all be empty")

	// ErrProvisioningTimeout is returned when environment creation exceeds
	// the hard provisioning deadline.
	ErrProvisioningTimeout = errors.New("sandbox provisioning timed out: repository may be too large or network issue")

	// ErrCommandExecutionFailed is the terminal error after the single
	// death-triggered retry is exhausted.
	ErrCommandExecutionFailed = errors.New("sandbox command execution failed")

	// ErrFileReadFailed is returned when the underlying read command exits
	// non-zero.
	ErrFileReadFailed = errors.New("failed to read file")

	// ErrListFailed is returned when the underlying listing command exits
	// non-zero.
	ErrListFailed = errors.New("failed to list files")

	// ErrSearchFailed is returned when the underlying search command fails
	// with an exit code that does not mean "no matches".
	ErrSearchFailed = errors.New("file search failed")
)
