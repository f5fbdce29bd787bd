package book

import (
	"errors"
	"net/http"
	"strconv"

	"bookcatalog/internal/httpx"

	"github.com/go-chi/chi/v5"
)

// Client-facing messages.
const (
	msgNotFound  = "Book not found"
	msgDuplicate = "A book with the same details already exists."
	msgDeleted   = "Book deleted successfully"
	msgTooLarge  = "Request body too large"
)

// HTTPHandler serves the book endpoints over a Service.
type HTTPHandler struct {
	service *Service
}

// NewHTTPHandler returns a handler backed by service.
func NewHTTPHandler(service *Service) *HTTPHandler {
	return &HTTPHandler{service: service}
}

// Routes mounts the book endpoints on r, relative to its prefix.
func (h *HTTPHandler) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/all", h.ListAll)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

// List handles GET /api/books?page=&limit=
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	page, _ := strconv.Atoi(query.Get("page"))
	limit, _ := strconv.Atoi(query.Get("limit"))

	result, err := h.service.ListPage(r.Context(), page, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

// ListAll handles GET /api/books/all
func (h *HTTPHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	books, err := h.service.ListAll(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, books)
}

// Get handles GET /api/books/{id}
func (h *HTTPHandler) Get(w http.ResponseWriter, r *http.Request) {
	b, err := h.service.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, b)
}

// Create handles POST /api/books
func (h *HTTPHandler) Create(w http.ResponseWriter, r *http.Request) {
	in, err := DecodeInput(r.Body)
	if err != nil {
		writeError(w, err)
		return
	}

	b, err := h.service.Create(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, b)
}

// Update handles PUT /api/books/{id}
func (h *HTTPHandler) Update(w http.ResponseWriter, r *http.Request) {
	in, err := DecodeInput(r.Body)
	if err != nil {
		writeError(w, err)
		return
	}

	b, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		writeError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, b)
}

// Delete handles DELETE /api/books/{id}
func (h *HTTPHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	httpx.JSONMessage(w, http.StatusOK, msgDeleted)
}

func writeError(w http.ResponseWriter, err error) {
	var (
		verr   *ValidationError
		tooBig *http.MaxBytesError
	)
	switch {
	case errors.As(err, &verr):
		httpx.JSONMessage(w, http.StatusBadRequest, verr.Message)
	case errors.Is(err, ErrDuplicate):
		httpx.JSONMessage(w, http.StatusBadRequest, msgDuplicate)
	case errors.Is(err, ErrNotFound):
		httpx.JSONMessage(w, http.StatusNotFound, msgNotFound)
	case errors.As(err, &tooBig):
		httpx.JSONMessage(w, http.StatusRequestEntityTooLarge, msgTooLarge)
	default:
		httpx.JSONMessage(w, http.StatusInternalServerError, err.Error())
	}
}
