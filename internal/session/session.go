// Package session holds the transient editing state between "open for edit"
// and "submit or cancel", and coordinates confirmed mutations between the
// remote client and the local store.
package session

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/eventhub/event-gateway/internal/models"
	"github.com/eventhub/event-gateway/internal/validate"
)

// State is the lifecycle phase of a draft session.
type State string

const (
	StateClosed     State = "closed"
	StateEditing    State = "editing"
	StateSubmitting State = "submitting"
)

// Remote performs the network round trips for event mutations.
type Remote interface {
	CreateEvent(ctx context.Context, draft models.Draft, ownerEmail string) (models.Event, error)
	UpdateEvent(ctx context.Context, id string, patch models.Patch) error
	RemoveEvent(ctx context.Context, id string) error
}

// Store receives confirmed commits and full refreshes.
type Store interface {
	Load(ctx context.Context) error
	CommitCreate(ev models.Event)
	CommitUpdate(id string, patch models.Patch) error
	CommitDelete(id string) error
}

// DraftSession owns one draft exclusively. The draft never aliases the
// record it was seeded from; edits stay invisible to the store until the
// remote service confirms them.
type DraftSession struct {
	mu     sync.Mutex
	state  State
	draft  models.Draft
	seeded bool
	seed   models.Event
	gen    string

	ownerEmail string
	remote     Remote
	store      Store
	logger     *zap.Logger
}

// Open starts editing. A seed means "edit this existing record": the draft
// is a field-wise copy with the id retained. No seed means "create new",
// starting from an empty draft with Public visibility. Opening invalidates
// any in-flight submission's claim on the session state.
func (s *DraftSession) Open(seed *models.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if seed != nil {
		s.seeded = true
		s.seed = *seed
		s.draft = models.DraftFromEvent(*seed)
	} else {
		s.seeded = false
		s.seed = models.Event{}
		s.draft = models.NewDraft()
	}
	s.state = StateEditing
	s.gen = uuid.New().String()
}

// SetField mutates one draft field by name while editing.
func (s *DraftSession) SetField(name, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateEditing {
		return models.ErrNoDraft
	}
	switch name {
	case "title":
		s.draft.Title = value
	case "description":
		s.draft.Description = value
	case "date":
		s.draft.Date = value
	case "location":
		s.draft.Location = value
	case "category":
		s.draft.Category = value
	case "visibility":
		s.draft.Visibility = value
	default:
		return &models.ValidationError{Field: name, Reason: "unknown field"}
	}
	return nil
}

// SetDraft replaces the whole draft body at once, keeping the seeded id.
// Form-style presentation layers submit complete payloads rather than
// keystrokes, so this is the bulk counterpart of SetField.
func (s *DraftSession) SetDraft(d models.Draft) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateEditing {
		return models.ErrNoDraft
	}
	d.ID = s.draft.ID
	s.draft = d
	return nil
}

// Submit validates the draft and performs the create or update round trip.
// Validation failure keeps the session editing and never reaches the
// network. Remote failure also returns to editing with every field value
// preserved so the user can correct and retry. A second Submit while one is
// already in flight reports ErrSubmitting without disturbing the first.
//
// The store commit is unconditional on the session's state at completion
// time: a submission whose session was cancelled or reopened mid-flight
// still commits its confirmed result, it just no longer drives the state
// machine (the generation token decides that).
func (s *DraftSession) Submit(ctx context.Context) (models.Event, error) {
	s.mu.Lock()
	switch s.state {
	case StateSubmitting:
		s.mu.Unlock()
		return models.Event{}, models.ErrSubmitting
	case StateClosed:
		s.mu.Unlock()
		return models.Event{}, models.ErrNoDraft
	}

	if verr := validate.CheckDraft(s.draft); verr != nil {
		s.mu.Unlock()
		return models.Event{}, verr
	}

	draft := s.draft
	seeded := s.seeded
	seed := s.seed
	token := s.gen
	s.state = StateSubmitting
	s.mu.Unlock()

	var (
		result models.Event
		err    error
	)
	if seeded {
		result, err = s.submitUpdate(ctx, seed, draft)
	} else {
		result, err = s.submitCreate(ctx, draft)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != token {
		// The session moved on while the call was in flight; the commit
		// above already happened, the state machine belongs to the new
		// draft now.
		s.logger.Debug("Discarding stale submission result", zap.String("generation", token))
		return result, err
	}
	if err != nil {
		s.state = StateEditing
		return models.Event{}, err
	}
	s.state = StateClosed
	s.draft = models.Draft{}
	s.seeded = false
	s.seed = models.Event{}
	return result, nil
}

func (s *DraftSession) submitCreate(ctx context.Context, draft models.Draft) (models.Event, error) {
	created, err := s.remote.CreateEvent(ctx, draft, s.ownerEmail)
	if err != nil {
		var netErr *models.NetworkError
		if errors.As(err, &netErr) {
			// The server may have persisted the record even though no
			// response arrived. Reconcile with a full refresh instead of
			// assuming the create never happened.
			if loadErr := s.store.Load(ctx); loadErr != nil {
				s.logger.Warn("Reconciliation load after create failure did not succeed", zap.Error(loadErr))
			}
		}
		return models.Event{}, err
	}
	s.store.CommitCreate(created)
	s.logger.Info("Event created", zap.String("event_id", created.ID))
	return created, nil
}

func (s *DraftSession) submitUpdate(ctx context.Context, seed models.Event, draft models.Draft) (models.Event, error) {
	patch := models.Diff(seed, draft)
	if patch.IsZero() {
		// Nothing changed; the remote record already matches.
		return seed, nil
	}

	if err := s.remote.UpdateEvent(ctx, seed.ID, patch); err != nil {
		var nfErr *models.NotFoundError
		if errors.As(err, &nfErr) {
			// The local view is stale; refresh before the user retries.
			if loadErr := s.store.Load(ctx); loadErr != nil {
				s.logger.Warn("Refresh after stale update did not succeed", zap.Error(loadErr))
			}
		}
		return models.Event{}, err
	}

	if err := s.store.CommitUpdate(seed.ID, patch); err != nil {
		// Confirmed remotely but the record vanished locally in the
		// interim. Refresh so the store converges on the server state.
		s.logger.Warn("Update confirmed for id missing locally", zap.String("event_id", seed.ID))
		if loadErr := s.store.Load(ctx); loadErr != nil {
			s.logger.Warn("Refresh after missing local record did not succeed", zap.Error(loadErr))
		}
	}
	s.logger.Info("Event updated", zap.String("event_id", seed.ID))
	return patch.Apply(seed), nil
}

// Cancel discards the draft from any state without contacting the remote
// service. An in-flight submission is not interrupted; its confirmed result
// still commits, but it no longer touches this session's state.
func (s *DraftSession) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = StateClosed
	s.draft = models.Draft{}
	s.seeded = false
	s.seed = models.Event{}
	s.gen = uuid.New().String()
}

// State returns the current lifecycle phase.
func (s *DraftSession) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Draft returns a snapshot copy of the draft being edited.
func (s *DraftSession) Draft() models.Draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft
}

// Seeded reports whether the session is editing an existing record.
func (s *DraftSession) Seeded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seeded
}
