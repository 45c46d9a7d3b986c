package session

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/eventhub/event-gateway/internal/models"
)

// Manager builds draft sessions and runs the direct (non-draft) operations.
type Manager struct {
	remote Remote
	store  Store
	logger *zap.Logger
}

func NewManager(remote Remote, store Store, logger *zap.Logger) *Manager {
	return &Manager{
		remote: remote,
		store:  store,
		logger: logger,
	}
}

// NewSession returns a closed session bound to the authenticated owner.
func (m *Manager) NewSession(ownerEmail string) *DraftSession {
	return &DraftSession{
		state:      StateClosed,
		ownerEmail: ownerEmail,
		remote:     m.remote,
		store:      m.store,
		logger:     m.logger,
	}
}

// Delete removes an event directly; deletion is not a draft concept. The
// confirmation prompt happens in the presentation layer before this is
// called. On remote NotFound the local view is stale and gets refreshed.
func (m *Manager) Delete(ctx context.Context, id string) error {
	if err := m.remote.RemoveEvent(ctx, id); err != nil {
		var nfErr *models.NotFoundError
		if errors.As(err, &nfErr) {
			if loadErr := m.store.Load(ctx); loadErr != nil {
				m.logger.Warn("Refresh after stale delete did not succeed", zap.Error(loadErr))
			}
		}
		return err
	}

	if err := m.store.CommitDelete(id); err != nil {
		// Already gone locally; the store and the server agree.
		m.logger.Debug("Delete commit for id missing locally", zap.String("event_id", id))
		return nil
	}
	m.logger.Info("Event deleted", zap.String("event_id", id))
	return nil
}
