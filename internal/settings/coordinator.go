// internal/settings/coordinator.go
package settings

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dnaweav/tradesman-ai-assist/internal/store"
	"github.com/dnaweav/tradesman-ai-assist/internal/types"
)

// Coordinator applies user edits from the session details screen: field
// updates as a single write against the session row, and tag membership as
// a toggle against the association table.
type Coordinator struct {
	sessions types.SessionStore
	tags     types.TagStore
	logger   *slog.Logger
}

// NewCoordinator creates a Coordinator over the given stores.
func NewCoordinator(sessions types.SessionStore, tags types.TagStore, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Coordinator{sessions: sessions, tags: tags, logger: logger}
}

// Save writes the editable fields to the session row in one update. A
// blank title falls back to the default, matching the details form.
func (c *Coordinator) Save(ctx context.Context, sessionID types.SessionID, fields types.SessionFields) error {
	if fields.Title == "" {
		fields.Title = types.DefaultSessionTitle
	}
	if err := c.sessions.UpdateSession(ctx, sessionID, fields); err != nil {
		return fmt.Errorf("save session details: %w", err)
	}
	c.logger.Info("session details saved", "session_id", sessionID, "title", fields.Title)
	return nil
}

// ToggleTag flips the session/tag association: a present tag is removed
// and an absent one is added. Read-check-then-write; a concurrent
// double-toggle can still race between the check and the write, in which
// case the insert's duplicate report is treated as the association
// already being in the desired state.
func (c *Coordinator) ToggleTag(ctx context.Context, sessionID types.SessionID, tagID types.TagID) error {
	existing, err := c.tags.ListSessionTags(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("toggle tag: %w", err)
	}

	for _, id := range existing {
		if id == tagID {
			if err := c.tags.DeleteSessionTag(ctx, sessionID, tagID); err != nil {
				return fmt.Errorf("toggle tag: %w", err)
			}
			c.logger.Debug("tag removed", "session_id", sessionID, "tag_id", tagID)
			return nil
		}
	}

	if err := c.tags.InsertSessionTag(ctx, sessionID, tagID); err != nil {
		if errors.Is(err, store.ErrDuplicateTag) {
			return nil
		}
		return fmt.Errorf("toggle tag: %w", err)
	}
	c.logger.Debug("tag added", "session_id", sessionID, "tag_id", tagID)
	return nil
}
