package sandbox

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/RhysSullivan/github-search-agent/internal/outputs"
)

// --- fakeEnvironment ---

// scriptedResponse is one canned answer for a RunCommand call.
type scriptedResponse struct {
	out *CommandOutput
	err error
}

// fakeEnvironment records every command it is asked to run and replies from
// a script. With an empty script, every command succeeds with empty output.
type fakeEnvironment struct {
	mu       sync.Mutex
	id       string
	script   []scriptedResponse
	commands []CommandRequest
	stopped  bool
	stopErr  error
}

func newFakeEnvironment(id string) *fakeEnvironment {
	return &fakeEnvironment{id: id}
}

func (f *fakeEnvironment) ID() string { return f.id }

func (f *fakeEnvironment) RunCommand(_ context.Context, req CommandRequest) (*CommandOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.commands = append(f.commands, req)
	if len(f.script) == 0 {
		return &CommandOutput{}, nil
	}
	res := f.script[0]
	f.script = f.script[1:]
	return res.out, res.err
}

func (f *fakeEnvironment) Stop(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped = true
	return f.stopErr
}

func (f *fakeEnvironment) reply(out *CommandOutput) *fakeEnvironment {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.script = append(f.script, scriptedResponse{out: out})
	return f
}

func (f *fakeEnvironment) fail(err error) *fakeEnvironment {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.script = append(f.script, scriptedResponse{err: err})
	return f
}

func (f *fakeEnvironment) commandCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.commands)
}

func (f *fakeEnvironment) lastCommand() CommandRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.commands[len(f.commands)-1]
}

func (f *fakeEnvironment) wasStopped() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stopped
}

// --- fakeProvider ---

// fakeProvider hands out pre-built environments in order and counts Create
// calls.
type fakeProvider struct {
	mu      sync.Mutex
	envs    []*fakeEnvironment
	configs []EnvironmentConfig
	err     error
	delay   time.Duration

	// onCreate runs mid-provision, before the environment is handed back.
	onCreate func()

	// done receives one value per finished Create call.
	done chan struct{}
}

func (p *fakeProvider) Create(ctx context.Context, cfg EnvironmentConfig) (Environment, error) {
	if p.done != nil {
		defer func() { p.done <- struct{}{} }()
	}
	if p.delay > 0 {
		select {
		case <-time.After(p.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if p.onCreate != nil {
		p.onCreate()
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.configs = append(p.configs, cfg)
	if p.err != nil {
		return nil, p.err
	}
	if len(p.envs) == 0 {
		return nil, fmt.Errorf("fakeProvider: no environments scripted (create #%d)", len(p.configs))
	}
	env := p.envs[0]
	p.envs = p.envs[1:]
	return env, nil
}

func (p *fakeProvider) add(envs ...*fakeEnvironment) *fakeProvider {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.envs = append(p.envs, envs...)
	return p
}

func (p *fakeProvider) createCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.configs)
}

// --- harness ---

type harness struct {
	provider *fakeProvider
	registry *Registry
	store    *outputs.Store
	executor *Executor
}

func newHarness(envs ...*fakeEnvironment) *harness {
	provider := (&fakeProvider{}).add(envs...)
	prov := NewProvisioner(provider, ProvisionerConfig{}, zap.NewNop())
	registry := NewRegistry(prov, zap.NewNop())
	store := outputs.NewStore(zap.NewNop())
	return &harness{
		provider: provider,
		registry: registry,
		store:    store,
		executor: NewExecutor(registry, store, zap.NewNop()),
	}
}

func deadEnvError() error {
	return &ProviderError{
		Op:     "run_command",
		Status: 410,
		Kind:   KindEnvironmentDead,
		Err:    fmt.Errorf("sandbox is no longer running"),
	}
}

func transportError() error {
	return &ProviderError{
		Op:   "run_command",
		Kind: KindTransport,
		Err:  fmt.Errorf("connection reset"),
	}
}
