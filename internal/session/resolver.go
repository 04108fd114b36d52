// internal/session/resolver.go
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dnaweav/tradesman-ai-assist/internal/store"
	"github.com/dnaweav/tradesman-ai-assist/internal/types"
)

// ErrUnavailable is returned when the resolve cycle exhausts its retry
// budget without converging on a row.
var ErrUnavailable = errors.New("session unavailable")

// Resolver provides idempotent get-or-create for session rows. Session IDs
// are minted by the caller before navigation, so two near-simultaneous
// mounts of the same chat are expected to race on the first insert; both
// must converge to the single winning row.
type Resolver struct {
	sessions types.SessionStore
	policy   RetryPolicy
	logger   *slog.Logger
}

// NewResolver creates a Resolver over the given session store.
func NewResolver(sessions types.SessionStore, policy RetryPolicy, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Resolver{sessions: sessions, policy: policy, logger: logger}
}

// ResolveOrCreate returns the session row for id, creating it with default
// fields if absent. At most one insert ever succeeds per ID; a losing
// inserter re-reads the winner's row. Only duplicate-insert conflicts are
// retried; any other store failure surfaces immediately.
func (r *Resolver) ResolveOrCreate(ctx context.Context, id types.SessionID, userID types.UserID) (*types.Session, error) {
	for attempt := 0; ; attempt++ {
		sess, err := r.resolveOnce(ctx, id, userID)
		if err == nil {
			return sess, nil
		}
		if !errors.Is(err, store.ErrSessionExists) {
			return nil, err
		}

		// Lost the insert race and the winning row was not visible on
		// re-read. Back off and run the whole cycle again.
		if attempt >= r.policy.MaxRetries {
			r.logger.Error("session resolve exhausted retries", "session_id", id, "attempts", attempt+1)
			return nil, fmt.Errorf("resolve session %s: %w", id, ErrUnavailable)
		}
		delay := r.policy.BackoffDelay(attempt)
		r.logger.Debug("session create race, retrying", "session_id", id, "attempt", attempt+1, "delay", delay)
		r.policy.sleep(delay)
	}
}

// resolveOnce runs one lookup → insert → re-read cycle. It returns
// store.ErrSessionExists only when the insert conflicted and the re-read
// still found nothing.
func (r *Resolver) resolveOnce(ctx context.Context, id types.SessionID, userID types.UserID) (*types.Session, error) {
	sess, err := r.sessions.GetSession(ctx, id)
	if err == nil {
		return sess, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("resolve session: %w", err)
	}

	insertErr := r.sessions.InsertSession(ctx, &types.Session{
		ID:     id,
		UserID: userID,
		Title:  types.DefaultSessionTitle,
	})
	if insertErr == nil {
		return r.sessions.GetSession(ctx, id)
	}
	if !errors.Is(insertErr, store.ErrSessionExists) {
		return nil, fmt.Errorf("create session: %w", insertErr)
	}

	// Another caller inserted concurrently. Pause briefly and read the
	// row they won with.
	r.policy.sleep(r.policy.RereadPause)
	sess, err = r.sessions.GetSession(ctx, id)
	if err == nil {
		return sess, nil
	}
	if errors.Is(err, store.ErrNotFound) {
		// Visibility window was too small; caller retries the cycle.
		return nil, insertErr
	}
	return nil, fmt.Errorf("resolve session after race: %w", err)
}
