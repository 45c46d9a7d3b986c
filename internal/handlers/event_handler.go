package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/eventhub/event-gateway/internal/auth"
	"github.com/eventhub/event-gateway/internal/events"
	"github.com/eventhub/event-gateway/internal/models"
	"github.com/eventhub/event-gateway/internal/paginate"
	"github.com/eventhub/event-gateway/internal/session"
	"github.com/eventhub/event-gateway/internal/store"
)

// EventHandler translates HTTP intents from the presentation layer into core
// operations. It never mutates the store itself; every mutation goes through
// a draft session or the session manager.
type EventHandler struct {
	store     *store.EventStore
	sessions  *session.Manager
	authCtx   *auth.Context
	publisher *events.Publisher
	logger    *zap.Logger
}

// EventForm is the draft body submitted by the create and edit screens.
// Binding catches missing fields early; the validator remains authoritative
// for semantic checks like calendar dates.
type EventForm struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Date        string `json:"date" binding:"required"`
	Location    string `json:"location" binding:"required"`
	Category    string `json:"category" binding:"required"`
	Visibility  string `json:"visibility"`
}

func NewEventHandler(eventStore *store.EventStore, sessions *session.Manager, authCtx *auth.Context, publisher *events.Publisher, logger *zap.Logger) *EventHandler {
	return &EventHandler{
		store:     eventStore,
		sessions:  sessions,
		authCtx:   authCtx,
		publisher: publisher,
		logger:    logger,
	}
}

func (f EventForm) draft() models.Draft {
	visibility := f.Visibility
	if visibility == "" {
		visibility = string(models.VisibilityPublic)
	}
	return models.Draft{
		Title:       f.Title,
		Description: f.Description,
		Date:        f.Date,
		Location:    f.Location,
		Category:    f.Category,
		Visibility:  visibility,
	}
}

// ListEvents serves the visible window over the collection. Query params:
// page (zero-based), pageSize (one of 5, 10, 15), search (title filter),
// refresh (force a remote reload).
func (h *EventHandler) ListEvents(c *gin.Context) {
	ctx := c.Request.Context()

	if c.Query("refresh") == "true" || h.store.Len() == 0 {
		if err := h.store.Load(ctx); err != nil {
			// A failed refresh is recoverable: report it, keep serving the
			// previous collection if there is one.
			if h.store.Len() == 0 {
				h.logger.Error("Failed to load events", zap.Error(err))
				c.JSON(statusFor(err), gin.H{"error": "Failed to retrieve events"})
				return
			}
			h.logger.Warn("Refresh failed, serving stale collection", zap.Error(err))
		}
	}

	snapshot := h.store.Snapshot()

	// The search term is pure view state; filtering happens on the derived
	// read model, never inside the store.
	if term := strings.TrimSpace(c.Query("search")); term != "" {
		filtered := snapshot[:0]
		for _, ev := range snapshot {
			if strings.Contains(strings.ToLower(ev.Title), strings.ToLower(term)) {
				filtered = append(filtered, ev)
			}
		}
		snapshot = filtered
	}

	page, pageSize, err := pageParams(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	from, to := paginate.Window(len(snapshot), page, pageSize)
	c.JSON(http.StatusOK, gin.H{
		"events":    snapshot[from:to],
		"page":      page,
		"pageSize":  pageSize,
		"pageCount": paginate.PageCount(len(snapshot), pageSize),
		"total":     len(snapshot),
	})
}

// CreateEvent opens a create draft, submits it, and reports the confirmed
// record.
func (h *EventHandler) CreateEvent(c *gin.Context) {
	ownerEmail := h.authCtx.Email()
	if ownerEmail == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not logged in"})
		return
	}

	var form EventForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	requestID := uuid.New().String()
	sess := h.sessions.NewSession(ownerEmail)
	sess.Open(nil)
	if err := sess.SetDraft(form.draft()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create event"})
		return
	}

	created, err := sess.Submit(c.Request.Context())
	if err != nil {
		h.logger.Error("Create submission failed",
			zap.String("request_id", requestID), zap.Error(err))
		respondError(c, err)
		return
	}

	h.publisher.Publish(c.Request.Context(), events.TypeEventCreated,
		events.EventPayload{EventID: created.ID, OwnerEmail: ownerEmail})
	h.logger.Info("Event created",
		zap.String("request_id", requestID), zap.String("event_id", created.ID))
	c.JSON(http.StatusCreated, gin.H{"message": "Event created successfully", "event": created})
}

// UpdateEvent seeds an edit draft from the local record and submits the
// changed fields.
func (h *EventHandler) UpdateEvent(c *gin.Context) {
	id := c.Param("id")

	var form EventForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	seed, ok := h.store.Get(id)
	if !ok {
		// The record may exist remotely while the local view is stale.
		if err := h.store.Load(c.Request.Context()); err != nil {
			h.logger.Warn("Refresh before edit failed", zap.Error(err))
		}
		if seed, ok = h.store.Get(id); !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
			return
		}
	}

	sess := h.sessions.NewSession(h.authCtx.Email())
	sess.Open(&seed)
	if err := sess.SetDraft(form.draft()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update event"})
		return
	}

	updated, err := sess.Submit(c.Request.Context())
	if err != nil {
		h.logger.Error("Update submission failed",
			zap.String("event_id", id), zap.Error(err))
		respondError(c, err)
		return
	}

	h.publisher.Publish(c.Request.Context(), events.TypeEventUpdated,
		events.EventPayload{EventID: id})
	c.JSON(http.StatusOK, gin.H{"message": "Event updated successfully", "event": updated})
}

// DeleteEvent removes an event directly. The confirmation prompt already
// happened on the client.
func (h *EventHandler) DeleteEvent(c *gin.Context) {
	id := c.Param("id")

	if err := h.sessions.Delete(c.Request.Context(), id); err != nil {
		h.logger.Error("Delete failed", zap.String("event_id", id), zap.Error(err))
		respondError(c, err)
		return
	}

	h.publisher.Publish(c.Request.Context(), events.TypeEventDeleted,
		events.EventPayload{EventID: id})
	c.JSON(http.StatusOK, gin.H{"message": "Event deleted successfully"})
}

func pageParams(c *gin.Context) (page, pageSize int, err error) {
	page = 0
	if raw := c.Query("page"); raw != "" {
		page, err = strconv.Atoi(raw)
		if err != nil || page < 0 {
			return 0, 0, errors.New("page must be a non-negative integer")
		}
	}

	pageSize = paginate.DefaultPageSize
	if raw := c.Query("pageSize"); raw != "" {
		pageSize, err = strconv.Atoi(raw)
		if err != nil {
			return 0, 0, errors.New("pageSize must be an integer")
		}
		if !paginate.AllowedSize(pageSize) {
			return 0, 0, models.ErrInvalidPageSize
		}
	}
	return page, pageSize, nil
}

// respondError maps the error taxonomy onto HTTP statuses for the
// presentation layer. Everything here is a dismissible notification, not a
// fatal condition.
func respondError(c *gin.Context, err error) {
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Reason, "field": verr.Field})
		return
	}
	var nfErr *models.NotFoundError
	if errors.As(err, &nfErr) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error(), "stale": true})
		return
	}
	var netErr *models.NetworkError
	if errors.As(err, &netErr) {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Could not reach the events service"})
		return
	}
	var srvErr *models.ServerError
	if errors.As(err, &srvErr) {
		message := srvErr.Message
		if message == "" {
			message = "The events service rejected the request"
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": message})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Unexpected error"})
}

func statusFor(err error) int {
	var netErr *models.NetworkError
	var srvErr *models.ServerError
	if errors.As(err, &netErr) || errors.As(err, &srvErr) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
