package sandbox

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Provisioning defaults.
const (
	DefaultVCPUs            = 4
	DefaultRuntime          = "node22"
	DefaultSessionTimeout   = 30 * time.Minute
	DefaultProvisionTimeout = 10 * time.Minute
)

// ProvisionerConfig carries process-wide provisioning settings.
type ProvisionerConfig struct {
	VCPUs            int
	Runtime          string
	SessionTimeout   time.Duration
	ProvisionTimeout time.Duration
	Credentials      Credentials
}

// Provisioner creates environments bound to a source repository, guarded by
// a hard creation deadline.
type Provisioner struct {
	provider Provider
	cfg      ProvisionerConfig
	logger   *zap.Logger
}

// NewProvisioner wires a provider with provisioning settings. Zero-valued
// settings fall back to the defaults above.
func NewProvisioner(provider Provider, cfg ProvisionerConfig, logger *zap.Logger) *Provisioner {
	if cfg.VCPUs <= 0 {
		cfg.VCPUs = DefaultVCPUs
	}
	if cfg.Runtime == "" {
		cfg.Runtime = DefaultRuntime
	}
	if cfg.SessionTimeout <= 0 {
		cfg.SessionTimeout = DefaultSessionTimeout
	}
	if cfg.ProvisionTimeout <= 0 {
		cfg.ProvisionTimeout = DefaultProvisionTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Provisioner{provider: provider, cfg: cfg, logger: logger}
}

type provisionResult struct {
	env Environment
	err error
}

// Provision creates a new environment cloned from repositoryURL.
//
// The create call races the provisioning deadline. The deadline is a hard
// cutoff, not a cancellation: when it fires, the result of the still-running
// create is discarded and the provider may have created an environment this
// process will never see.
func (p *Provisioner) Provision(ctx context.Context, repositoryURL string) (Environment, error) {
	creds, err := p.credentials()
	if err != nil {
		return nil, err
	}

	cfg := EnvironmentConfig{
		Source:      Source{Type: "git", URL: repositoryURL},
		Resources:   Resources{VCPUs: p.cfg.VCPUs},
		Timeout:     p.cfg.SessionTimeout,
		Runtime:     p.cfg.Runtime,
		Credentials: creds,
	}

	p.logger.Info("provisioning sandbox environment",
		zap.String("repository", repositoryURL),
		zap.Int("vcpus", cfg.Resources.VCPUs),
		zap.Duration("timeout", cfg.Timeout))

	ch := make(chan provisionResult, 1)
	go func() {
		env, err := p.provider.Create(ctx, cfg)
		ch <- provisionResult{env: env, err: err}
	}()

	timer := time.NewTimer(p.cfg.ProvisionTimeout)
	defer timer.Stop()

	select {
	case res := <-ch:
		if res.err != nil {
			p.logger.Error("environment creation failed",
				zap.String("repository", repositoryURL),
				zap.Error(res.err))
			return nil, res.err
		}
		p.logger.Info("sandbox environment ready",
			zap.String("repository", repositoryURL),
			zap.String("environment_id", res.env.ID()))
		return res.env, nil
	case <-timer.C:
		p.logger.Error("environment creation exceeded deadline",
			zap.String("repository", repositoryURL),
			zap.Duration("deadline", p.cfg.ProvisionTimeout))
		return nil, ErrProvisioningTimeout
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// credentials validates the all-or-none credential triple.
func (p *Provisioner) credentials() (*Credentials, error) {
	c := p.cfg.Credentials
	set := 0
	for _, v := range []string{c.TeamID, c.ProjectID, c.Token} {
		if v != "" {
			set++
		}
	}
	switch set {
	case 0:
		return nil, nil
	case 3:
		return &c, nil
	default:
		return nil, ErrInvalidCredentialConfiguration
	}
}
