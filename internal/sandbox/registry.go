package sandbox

import (
	"context"
	"sync"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// Session binds one conversation to one live environment. The registry owns
// the environment handle; nothing outside the registry stops it.
type Session struct {
	ConversationID string
	Env            Environment
	EnvironmentID  string
	RepositoryURL  string
	CreatedAt      time.Time
}

// Registry maps conversation ids to at most one live session each. State is
// in-memory only; nothing survives a process restart.
type Registry struct {
	mu          sync.Mutex
	sessions    map[string]*Session
	provisioner *Provisioner
	flight      singleflight.Group
	logger      *zap.Logger
}

// NewRegistry creates an empty registry backed by the given provisioner.
func NewRegistry(provisioner *Provisioner, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		sessions:    make(map[string]*Session),
		provisioner: provisioner,
		logger:      logger,
	}
}

// Resolve returns the conversation's environment, provisioning one when
// needed. An existing session is returned as-is when repositoryURL is empty
// or already bound; no liveness probe happens here — a dead environment is
// discovered by the executor on the next command. Supplying a different
// repository replaces the session: the old environment is stopped
// best-effort and a fresh one is provisioned.
func (r *Registry) Resolve(ctx context.Context, conversationID, repositoryURL string) (Environment, error) {
	r.mu.Lock()
	if sess, ok := r.sessions[conversationID]; ok {
		if repositoryURL == "" || repositoryURL == sess.RepositoryURL {
			env := sess.Env
			r.mu.Unlock()
			return env, nil
		}
		old := sess
		delete(r.sessions, conversationID)
		r.mu.Unlock()
		r.logger.Info("replacing sandbox for new repository",
			zap.String("conversation", conversationID),
			zap.String("old_repository", old.RepositoryURL),
			zap.String("new_repository", repositoryURL))
		r.stopQuietly(ctx, old)
	} else {
		r.mu.Unlock()
		if repositoryURL == "" {
			return nil, ErrMissingRepository
		}
	}

	// Concurrent first calls for one conversation collapse into a single
	// provisioning flight, so the at-most-one-session invariant holds even
	// when the caller ignores the single-flight discipline.
	v, err, _ := r.flight.Do(conversationID, func() (any, error) {
		r.mu.Lock()
		if sess, ok := r.sessions[conversationID]; ok && sess.RepositoryURL == repositoryURL {
			env := sess.Env
			r.mu.Unlock()
			return env, nil
		}
		r.mu.Unlock()

		env, err := r.provisioner.Provision(ctx, repositoryURL)
		if err != nil {
			return nil, err
		}

		r.mu.Lock()
		displaced := r.sessions[conversationID]
		r.sessions[conversationID] = &Session{
			ConversationID: conversationID,
			Env:            env,
			EnvironmentID:  env.ID(),
			RepositoryURL:  repositoryURL,
			CreatedAt:      time.Now(),
		}
		r.mu.Unlock()

		// A concurrent resolve may have installed a session for a different
		// repository while we were provisioning. Its environment must not
		// outlive its registry entry.
		if displaced != nil {
			r.logger.Info("stopping displaced sandbox session",
				zap.String("conversation", conversationID),
				zap.String("environment_id", displaced.EnvironmentID))
			r.stopQuietly(ctx, displaced)
		}
		return env, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(Environment), nil
}

// Get returns the session bound to a conversation, if any.
func (r *Registry) Get(conversationID string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sess, ok := r.sessions[conversationID]
	return sess, ok
}

// Count returns the number of live sessions.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Evict removes the conversation's session, stopping its environment
// best-effort, and returns the repository URL that had been bound so the
// caller can re-provision from the same source. Returns "" when no session
// existed.
func (r *Registry) Evict(ctx context.Context, conversationID string) string {
	r.mu.Lock()
	sess, ok := r.sessions[conversationID]
	if !ok {
		r.mu.Unlock()
		return ""
	}
	delete(r.sessions, conversationID)
	r.mu.Unlock()

	r.logger.Info("evicting sandbox session",
		zap.String("conversation", conversationID),
		zap.String("environment_id", sess.EnvironmentID))
	r.stopQuietly(ctx, sess)
	return sess.RepositoryURL
}

// TeardownAll stops every live environment. Individual stop failures are
// swallowed so one failing environment cannot block cleanup of the rest.
func (r *Registry) TeardownAll(ctx context.Context) {
	r.mu.Lock()
	sessions := make([]*Session, 0, len(r.sessions))
	for _, sess := range r.sessions {
		sessions = append(sessions, sess)
	}
	r.sessions = make(map[string]*Session)
	r.mu.Unlock()

	var g errgroup.Group
	var errMu sync.Mutex
	var stopErrs error
	for _, sess := range sessions {
		g.Go(func() error {
			if err := sess.Env.Stop(ctx); err != nil {
				errMu.Lock()
				stopErrs = multierr.Append(stopErrs, err)
				errMu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	if stopErrs != nil {
		r.logger.Warn("some environments failed to stop during teardown", zap.Error(stopErrs))
	}
	r.logger.Info("sandbox teardown complete", zap.Int("stopped", len(sessions)))
}

func (r *Registry) stopQuietly(ctx context.Context, sess *Session) {
	if err := sess.Env.Stop(ctx); err != nil {
		r.logger.Debug("environment stop failed",
			zap.String("environment_id", sess.EnvironmentID),
			zap.Error(err))
	}
}
