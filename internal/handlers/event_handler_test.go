package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/eventhub/event-gateway/internal/auth"
	"github.com/eventhub/event-gateway/internal/clients"
	"github.com/eventhub/event-gateway/internal/models"
	"github.com/eventhub/event-gateway/internal/session"
	"github.com/eventhub/event-gateway/internal/store"
)

type fakeRemote struct {
	mu          sync.Mutex
	listing     []models.Event
	listErr     error
	createErr   error
	updateErr   error
	removeErr   error
	createCalls int
	nextID      int
}

func (f *fakeRemote) ListEvents(ctx context.Context) ([]models.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]models.Event, len(f.listing))
	copy(out, f.listing)
	return out, nil
}

func (f *fakeRemote) CreateEvent(ctx context.Context, draft models.Draft, ownerEmail string) (models.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	if f.createErr != nil {
		return models.Event{}, f.createErr
	}
	f.nextID++
	return models.Event{
		ID:         fmt.Sprintf("created-%d", f.nextID),
		Title:      draft.Title,
		Date:       draft.Date,
		Location:   draft.Location,
		Category:   models.Category(draft.Category),
		Visibility: models.Visibility(draft.Visibility),
		OwnerEmail: ownerEmail,
	}, nil
}

func (f *fakeRemote) UpdateEvent(ctx context.Context, id string, patch models.Patch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.updateErr
}

func (f *fakeRemote) RemoveEvent(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.removeErr
}

type memStorage struct {
	values map[string]string
}

func (m *memStorage) Get(ctx context.Context, key string) (string, bool, error) {
	value, ok := m.values[key]
	return value, ok, nil
}

func (m *memStorage) Set(ctx context.Context, key, value string) error {
	m.values[key] = value
	return nil
}

func (m *memStorage) Delete(ctx context.Context, key string) error {
	delete(m.values, key)
	return nil
}

type fixture struct {
	remote  *fakeRemote
	store   *store.EventStore
	authCtx *auth.Context
	router  *gin.Engine
}

func eventFixture(t *testing.T, listing []models.Event) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	remote := &fakeRemote{listing: listing}
	logger := zap.NewNop()
	eventStore := store.New(remote, logger)
	require.NoError(t, eventStore.Load(context.Background()))
	sessions := session.NewManager(remote, eventStore, logger)
	authCtx := auth.NewContext(&memStorage{values: make(map[string]string)}, logger)

	h := NewEventHandler(eventStore, sessions, authCtx, nil, logger)

	r := gin.New()
	r.GET("/api/events", h.ListEvents)
	r.POST("/api/events", h.CreateEvent)
	r.PUT("/api/events/:id", h.UpdateEvent)
	r.DELETE("/api/events/:id", h.DeleteEvent)

	return &fixture{remote: remote, store: eventStore, authCtx: authCtx, router: r}
}

func (f *fixture) login(t *testing.T) {
	t.Helper()
	err := f.authCtx.SetSession(context.Background(), clients.Session{
		AccessToken: "token",
		User:        clients.User{FullName: "Owner", Email: "owner@example.com"},
	})
	require.NoError(t, err)
}

func (f *fixture) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewBuffer(data)
	} else {
		reader = bytes.NewBuffer(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func listing(n int) []models.Event {
	events := make([]models.Event, 0, n)
	for i := 0; i < n; i++ {
		events = append(events, models.Event{
			ID:         fmt.Sprintf("e%d", i),
			Title:      fmt.Sprintf("Event %d", i),
			Date:       "2024-05-01",
			Location:   "Lahore",
			Category:   models.CategoryTech,
			Visibility: models.VisibilityPublic,
		})
	}
	return events
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]json.RawMessage {
	t.Helper()
	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestListEvents(t *testing.T) {
	t.Run("serves the requested window", func(t *testing.T) {
		f := eventFixture(t, listing(12))

		w := f.do(t, http.MethodGet, "/api/events?page=2&pageSize=5", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var body struct {
			Events    []models.Event `json:"events"`
			Page      int            `json:"page"`
			PageCount int            `json:"pageCount"`
			Total     int            `json:"total"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, 3, body.PageCount)
		assert.Equal(t, 12, body.Total)
		require.Len(t, body.Events, 2)
		assert.Equal(t, "e10", body.Events[0].ID)
		assert.Equal(t, "e11", body.Events[1].ID)
	})

	t.Run("filters by search term before paginating", func(t *testing.T) {
		f := eventFixture(t, []models.Event{
			{ID: "a", Title: "Go meetup"},
			{ID: "b", Title: "Jazz night"},
			{ID: "c", Title: "GopherCon watch party"},
		})

		w := f.do(t, http.MethodGet, "/api/events?search=go", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var body struct {
			Events []models.Event `json:"events"`
			Total  int            `json:"total"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, 2, body.Total)
		require.Len(t, body.Events, 2)
		assert.Equal(t, "a", body.Events[0].ID)
		assert.Equal(t, "c", body.Events[1].ID)
	})

	t.Run("an absurdly large page is an empty page, not a crash", func(t *testing.T) {
		f := eventFixture(t, listing(12))

		w := f.do(t, http.MethodGet, "/api/events?page=2305843009213693952&pageSize=5", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var body struct {
			Events []models.Event `json:"events"`
			Total  int            `json:"total"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Empty(t, body.Events)
		assert.Equal(t, 12, body.Total)
	})

	t.Run("rejects sizes outside the menu", func(t *testing.T) {
		f := eventFixture(t, listing(3))
		w := f.do(t, http.MethodGet, "/api/events?pageSize=7", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("load failure with nothing cached reports upstream trouble", func(t *testing.T) {
		f := eventFixture(t, nil)
		f.remote.listErr = &models.NetworkError{Err: fmt.Errorf("connection refused")}

		w := f.do(t, http.MethodGet, "/api/events", nil)
		assert.Equal(t, http.StatusBadGateway, w.Code)
	})
}

func TestCreateEvent(t *testing.T) {
	form := EventForm{
		Title:    "Launch party",
		Date:     "2024-12-31",
		Location: "Lahore",
		Category: "Tech",
	}

	t.Run("requires a logged-in user", func(t *testing.T) {
		f := eventFixture(t, listing(1))
		w := f.do(t, http.MethodPost, "/api/events", form)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, 0, f.remote.createCalls)
	})

	t.Run("invalid date is rejected before the network", func(t *testing.T) {
		f := eventFixture(t, listing(1))
		f.login(t)

		bad := form
		bad.Date = "2024-13-40"
		w := f.do(t, http.MethodPost, "/api/events", bad)

		require.Equal(t, http.StatusBadRequest, w.Code)
		body := decode(t, w)
		assert.JSONEq(t, `"date"`, string(body["field"]))
		assert.Equal(t, 0, f.remote.createCalls)
	})

	t.Run("confirmed create lands in the store", func(t *testing.T) {
		f := eventFixture(t, listing(1))
		f.login(t)

		w := f.do(t, http.MethodPost, "/api/events", form)
		require.Equal(t, http.StatusCreated, w.Code)

		require.Equal(t, 2, f.store.Len())
		got, ok := f.store.Get("created-1")
		require.True(t, ok)
		assert.Equal(t, "Launch party", got.Title)
		assert.Equal(t, "owner@example.com", got.OwnerEmail)
		assert.Equal(t, models.VisibilityPublic, got.Visibility)
	})

	t.Run("remote rejection keeps the store unchanged", func(t *testing.T) {
		f := eventFixture(t, listing(1))
		f.login(t)
		f.remote.createErr = &models.ServerError{Status: 500, Message: "boom"}

		w := f.do(t, http.MethodPost, "/api/events", form)
		assert.Equal(t, http.StatusBadGateway, w.Code)
		assert.Equal(t, 1, f.store.Len())
	})
}

func TestUpdateEvent(t *testing.T) {
	form := EventForm{
		Title:      "Renamed",
		Date:       "2024-05-01",
		Location:   "Lahore",
		Category:   "Tech",
		Visibility: "Public",
	}

	t.Run("applies the confirmed patch", func(t *testing.T) {
		f := eventFixture(t, listing(3))
		f.login(t)

		w := f.do(t, http.MethodPut, "/api/events/e1", form)
		require.Equal(t, http.StatusOK, w.Code)

		got, ok := f.store.Get("e1")
		require.True(t, ok)
		assert.Equal(t, "Renamed", got.Title)
		assert.Equal(t, "2024-05-01", got.Date)
		assert.Equal(t, 3, f.store.Len())
	})

	t.Run("unknown id is a 404", func(t *testing.T) {
		f := eventFixture(t, listing(3))
		f.login(t)

		w := f.do(t, http.MethodPut, "/api/events/ghost", form)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("stale remote id reports not found without touching other records", func(t *testing.T) {
		f := eventFixture(t, listing(3))
		f.login(t)
		f.remote.updateErr = &models.NotFoundError{ID: "e1"}

		w := f.do(t, http.MethodPut, "/api/events/e1", form)
		assert.Equal(t, http.StatusNotFound, w.Code)

		got, ok := f.store.Get("e2")
		require.True(t, ok)
		assert.Equal(t, "Event 2", got.Title)
	})
}

func TestDeleteEvent(t *testing.T) {
	t.Run("confirmed delete shrinks the collection", func(t *testing.T) {
		f := eventFixture(t, listing(3))

		w := f.do(t, http.MethodDelete, "/api/events/e1", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 2, f.store.Len())
		_, ok := f.store.Get("e1")
		assert.False(t, ok)
	})

	t.Run("remote failure leaves the collection unchanged", func(t *testing.T) {
		f := eventFixture(t, listing(3))
		f.remote.removeErr = &models.NetworkError{Err: fmt.Errorf("timeout")}

		w := f.do(t, http.MethodDelete, "/api/events/e1", nil)
		assert.Equal(t, http.StatusBadGateway, w.Code)
		assert.Equal(t, 3, f.store.Len())
	})
}
