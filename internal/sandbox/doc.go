// Package sandbox manages remote execution environments for conversations.
//
// Each conversation owns at most one live environment, provisioned from a
// git repository on first use. Commands run inside the environment through
// the Executor, which records full output in the outputs store, returns a
// truncated view to the caller, and transparently recovers from a dead
// environment by re-provisioning and retrying the command exactly once.
package sandbox
