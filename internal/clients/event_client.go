package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/eventhub/event-gateway/internal/models"
)

// EventClient is the only component that performs network I/O for event
// data. Every call is request/response with no automatic retry; a failed
// call is retried only by repeating the user action that triggered it.
//
// Outcomes are classified by transport result: no response at all becomes a
// *models.NetworkError, a 404 on a mutation becomes a *models.NotFoundError,
// and any other non-success status becomes a *models.ServerError wrapping
// the structured message from the body.
type EventClient struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

func NewEventClient(baseURL string, timeout time.Duration, logger *zap.Logger) *EventClient {
	return &EventClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// eventWire mirrors the remote representation of an event. The id field is
// `_id` on the wire and `date` may arrive as a full timestamp on list.
type eventWire struct {
	ID          string `json:"_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Date        string `json:"date"`
	Location    string `json:"location"`
	Category    string `json:"category"`
	Visibility  string `json:"visibility"`
	Email       string `json:"email"`
}

type createEventRequest struct {
	Email       string `json:"email"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Date        string `json:"date"`
	Location    string `json:"location"`
	Category    string `json:"category"`
	Visibility  string `json:"visibility"`
}

type errorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// ListEvents fetches the full remote collection in server order.
func (c *EventClient) ListEvents(ctx context.Context) ([]models.Event, error) {
	url := fmt.Sprintf("%s/api/v2/getEvents", c.baseURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Error("Failed to fetch events", zap.Error(err))
		return nil, &models.NetworkError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.serverError(resp)
	}

	var result struct {
		Events []eventWire `json:"events"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		c.logger.Error("Failed to decode events response", zap.Error(err))
		return nil, &models.ServerError{Status: resp.StatusCode, Message: "malformed events payload"}
	}

	events := make([]models.Event, 0, len(result.Events))
	for _, w := range result.Events {
		events = append(events, c.fromWire(w))
	}
	return events, nil
}

// CreateEvent submits a validated draft and returns the record the server
// confirmed, with its assigned id.
func (c *EventClient) CreateEvent(ctx context.Context, draft models.Draft, ownerEmail string) (models.Event, error) {
	url := fmt.Sprintf("%s/api/v2/addEvent", c.baseURL)

	body := createEventRequest{
		Email:       ownerEmail,
		Title:       strings.TrimSpace(draft.Title),
		Description: draft.Description,
		Date:        strings.TrimSpace(draft.Date),
		Location:    strings.TrimSpace(draft.Location),
		Category:    draft.Category,
		Visibility:  draft.Visibility,
	}

	jsonData, err := json.Marshal(body)
	if err != nil {
		return models.Event{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return models.Event{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Error("Failed to create event", zap.Error(err))
		return models.Event{}, &models.NetworkError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return models.Event{}, c.serverError(resp)
	}

	var w eventWire
	if err := json.NewDecoder(resp.Body).Decode(&w); err != nil {
		c.logger.Error("Failed to decode created event", zap.Error(err))
		return models.Event{}, &models.ServerError{Status: resp.StatusCode, Message: "malformed event payload"}
	}

	created := c.fromWire(w)
	if created.OwnerEmail == "" {
		created.OwnerEmail = ownerEmail
	}
	return created, nil
}

// UpdateEvent sends the changed fields of an existing event.
func (c *EventClient) UpdateEvent(ctx context.Context, id string, patch models.Patch) error {
	url := fmt.Sprintf("%s/api/v2/updateEvent/%s", c.baseURL, id)

	jsonData, err := json.Marshal(patch)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Error("Failed to update event", zap.String("event_id", id), zap.Error(err))
		return &models.NetworkError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return &models.NotFoundError{ID: id}
	}
	if resp.StatusCode != http.StatusOK {
		return c.serverError(resp)
	}
	return nil
}

// RemoveEvent deletes an event by id.
func (c *EventClient) RemoveEvent(ctx context.Context, id string) error {
	url := fmt.Sprintf("%s/api/v2/deleteEvent/%s", c.baseURL, id)

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Error("Failed to delete event", zap.String("event_id", id), zap.Error(err))
		return &models.NetworkError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return &models.NotFoundError{ID: id}
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return c.serverError(resp)
	}
	return nil
}

func (c *EventClient) serverError(resp *http.Response) error {
	var body errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		c.logger.Error("Remote service returned error", zap.Int("status", resp.StatusCode))
		return &models.ServerError{Status: resp.StatusCode}
	}
	message := body.Message
	if message == "" {
		message = body.Error
	}
	c.logger.Error("Remote service returned error",
		zap.Int("status", resp.StatusCode),
		zap.String("message", message))
	return &models.ServerError{Status: resp.StatusCode, Message: message}
}

// fromWire narrows a wire record to the domain representation. Timestamps
// are truncated to the date portion; enum strings outside the closed sets
// are normalized rather than propagated inward.
func (c *EventClient) fromWire(w eventWire) models.Event {
	category, err := models.ParseCategory(w.Category)
	if err != nil {
		c.logger.Warn("Normalizing unknown category",
			zap.String("event_id", w.ID), zap.String("category", w.Category))
		category = models.CategoryOther
	}
	visibility, err := models.ParseVisibility(w.Visibility)
	if err != nil {
		c.logger.Warn("Normalizing unknown visibility",
			zap.String("event_id", w.ID), zap.String("visibility", w.Visibility))
		visibility = models.VisibilityPublic
	}

	date := w.Date
	if i := strings.IndexByte(date, 'T'); i >= 0 {
		date = date[:i]
	}

	return models.Event{
		ID:          w.ID,
		Title:       w.Title,
		Description: w.Description,
		Date:        date,
		Location:    w.Location,
		Category:    category,
		Visibility:  visibility,
		OwnerEmail:  w.Email,
	}
}
