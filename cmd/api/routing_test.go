package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"

	"bookcatalog/internal/book"
	"bookcatalog/internal/config"
	"bookcatalog/internal/store"
	"bookcatalog/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		CORS: config.CORSConfig{Origins: []string{"http://localhost:5173"}},
		HTTP: config.HTTPConfig{MaxBodyBytes: 1 << 20},
	}
}

func newTestServer(t *testing.T, st book.Store) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return newRouter(routerDeps{
		cfg:     testConfig(),
		logger:  logger,
		store:   st,
		service: book.NewService(st, book.WithLogger(logger)),
	})
}

func TestRouting_DuneScenario(t *testing.T) {
	h := newTestServer(t, store.NewMemory())

	created := testutil.Serve(h, testutil.NewRequest(http.MethodPost, "/api/books", testutil.DuneBook))
	require.Equal(t, http.StatusCreated, created.Code)
	id, _ := created.Body["id"].(string)
	require.NotEmpty(t, id)
	assert.Equal(t, "1965-08-01", created.Body["publishedDate"])

	dup := testutil.Serve(h, testutil.NewRequest(http.MethodPost, "/api/books", testutil.DuneBook))
	assert.Equal(t, http.StatusBadRequest, dup.Code)
	assert.Equal(t, "A book with the same details already exists.", dup.Body["message"])

	list := testutil.Serve(h, testutil.NewRequest(http.MethodGet, "/api/books?page=1&limit=5", nil))
	require.Equal(t, http.StatusOK, list.Code)
	var page book.Page
	require.NoError(t, json.Unmarshal(list.Raw, &page))
	assert.Equal(t, 1, page.TotalBooks)
	assert.Equal(t, 1, page.TotalPages)
	require.Len(t, page.Books, 1)
	assert.Equal(t, id, page.Books[0].ID)

	updated := testutil.Serve(h, testutil.NewRequest(http.MethodPut, "/api/books/"+id, map[string]any{"genre": "Classic"}))
	require.Equal(t, http.StatusOK, updated.Code)
	assert.Equal(t, "Classic", updated.Body["genre"])
	assert.Equal(t, "Dune", updated.Body["title"])

	deleted := testutil.Serve(h, testutil.NewRequest(http.MethodDelete, "/api/books/"+id, nil))
	assert.Equal(t, http.StatusOK, deleted.Code)
	assert.Equal(t, "Book deleted successfully", deleted.Body["message"])

	gone := testutil.Serve(h, testutil.NewRequest(http.MethodGet, "/api/books/"+id, nil))
	assert.Equal(t, http.StatusNotFound, gone.Code)
	assert.Equal(t, "Book not found", gone.Body["message"])
}

func TestRouting_ListAllIsNotAnID(t *testing.T) {
	h := newTestServer(t, store.NewMemory())

	resp := testutil.Serve(h, testutil.NewRequest(http.MethodGet, "/api/books/all", nil))

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "[]", strings.TrimSpace(string(resp.Raw)))
}

func TestRouting_MalformedBody(t *testing.T) {
	h := newTestServer(t, store.NewMemory())

	resp := testutil.Serve(h, testutil.NewRequest(http.MethodPost, "/api/books", `{"title":`))

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.NotEmpty(t, resp.Body["message"])
}

func TestRouting_BodyTooLarge(t *testing.T) {
	h := newTestServer(t, store.NewMemory())
	big := `{"title":"` + strings.Repeat("x", 2<<20) + `"}`

	resp := testutil.Serve(h, testutil.NewRequest(http.MethodPost, "/api/books", big))

	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.Code)
}

func TestRouting_Health(t *testing.T) {
	h := newTestServer(t, store.NewMemory())

	root := testutil.Serve(h, testutil.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, root.Code)
	assert.Equal(t, "Backend is running successfully!", root.Body["message"])

	health := testutil.Serve(h, testutil.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, health.Code)
	assert.Equal(t, "ok", string(health.Raw))

	ready := testutil.Serve(h, testutil.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, ready.Code)
	assert.Equal(t, "ready", string(ready.Raw))
}

// pingStore overrides Ping of an embedded store.
type pingStore struct {
	mock.Mock
	book.Store
}

func (s *pingStore) Ping(ctx context.Context) error {
	return s.Called(ctx).Error(0)
}

func TestRouting_ReadinessFailure(t *testing.T) {
	st := &pingStore{Store: store.NewMemory()}
	st.On("Ping", mock.Anything).Return(errors.New("connection refused")).Once()
	h := newTestServer(t, st)

	resp := testutil.Serve(h, testutil.NewRequest(http.MethodGet, "/readyz", nil))

	assert.Equal(t, http.StatusServiceUnavailable, resp.Code)
	st.AssertExpectations(t)
}

func TestRouting_UnknownRouteAndMethod(t *testing.T) {
	h := newTestServer(t, store.NewMemory())

	missing := testutil.Serve(h, testutil.NewRequest(http.MethodGet, "/api/authors", nil))
	assert.Equal(t, http.StatusNotFound, missing.Code)
	assert.Equal(t, "Route not found", missing.Body["message"])

	patch := testutil.Serve(h, testutil.NewRequest(http.MethodPatch, "/api/books/abc", map[string]any{}))
	assert.Equal(t, http.StatusMethodNotAllowed, patch.Code)
	assert.Equal(t, "Method not allowed", patch.Body["message"])
}

func TestRouting_CORSPreflight(t *testing.T) {
	h := newTestServer(t, store.NewMemory())
	req := testutil.NewRequest(http.MethodOptions, "/api/books", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	resp := testutil.Serve(h, req)

	assert.Equal(t, http.StatusNoContent, resp.Code)
	assert.Equal(t, "http://localhost:5173", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestRouting_RequestIDEchoed(t *testing.T) {
	h := newTestServer(t, store.NewMemory())
	req := testutil.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-Id", "trace-123")

	resp := testutil.Serve(h, req)

	assert.Equal(t, "trace-123", resp.Header.Get("X-Request-Id"))
}
