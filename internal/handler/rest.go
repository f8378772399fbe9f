package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"contactbook/internal/model"
	"contactbook/internal/store"
	"contactbook/internal/validate"
)

// Version is the application version.
const Version = "1.0.0"

// RESTHandler handles REST API requests for contacts.
type RESTHandler struct {
	engine store.Engine
	logger *zap.Logger
}

// NewRESTHandler creates a new RESTHandler instance.
func NewRESTHandler(engine store.Engine, logger *zap.Logger) *RESTHandler {
	return &RESTHandler{
		engine: engine,
		logger: logger,
	}
}

// RegisterRoutes registers the REST API routes with the router.
func (h *RESTHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)
	router.HandleFunc("/api/v1/contacts", h.ListContacts).Methods(http.MethodGet)
	router.HandleFunc("/api/v1/contacts", h.CreateContact).Methods(http.MethodPost)
	router.HandleFunc("/api/v1/contacts/undo", h.UndoDelete).Methods(http.MethodPost)
	router.HandleFunc("/api/v1/contacts/{id}", h.UpdateContact).Methods(http.MethodPut)
	router.HandleFunc("/api/v1/contacts/{id}", h.DeleteContact).Methods(http.MethodDelete)
	router.HandleFunc("/api/v1/contacts/{id}/favorite", h.ToggleFavorite).Methods(http.MethodPost)
	router.HandleFunc("/api/v1/search", h.SetSearchText).Methods(http.MethodPut)
}

// HealthCheck handles GET /health requests.
func (h *RESTHandler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	response := HealthResponse{
		Status:  "healthy",
		Version: Version,
	}
	h.writeJSON(w, http.StatusOK, model.NewSuccessResponse(response))
}

// ListContacts handles GET /api/v1/contacts requests. It returns the derived
// view; a "search" query parameter updates the search text before deriving.
func (h *RESTHandler) ListContacts(w http.ResponseWriter, r *http.Request) {
	if search := r.URL.Query(); search.Has("search") {
		h.engine.SetSearchText(search.Get("search"))
	}

	h.writeJSON(w, http.StatusOK, model.NewSuccessResponse(h.engine.View()))
}

// CreateContact handles POST /api/v1/contacts requests.
func (h *RESTHandler) CreateContact(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var input model.ContactInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.logger.Warn("invalid request body", zap.Error(err))
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	contact, err := h.engine.Add(ctx, input)
	if err != nil {
		h.handleEngineError(w, err, "create contact")
		return
	}

	h.writeJSON(w, http.StatusCreated, model.NewSuccessResponse(contact))
}

// UpdateContact handles PUT /api/v1/contacts/{id} requests.
func (h *RESTHandler) UpdateContact(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	vars := mux.Vars(r)
	id := vars["id"]

	var input model.ContactInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.logger.Warn("invalid request body", zap.Error(err))
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	contact, err := h.engine.Update(ctx, id, input)
	if err != nil {
		h.handleEngineError(w, err, "update contact")
		return
	}

	h.writeJSON(w, http.StatusOK, model.NewSuccessResponse(contact))
}

// DeleteContact handles DELETE /api/v1/contacts/{id} requests. The deletion
// is soft: it opens an undo window before becoming permanent, so the
// response is 202 Accepted rather than 204.
func (h *RESTHandler) DeleteContact(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	vars := mux.Vars(r)
	id := vars["id"]

	if err := h.engine.RequestDelete(ctx, id); err != nil {
		h.handleEngineError(w, err, "delete contact")
		return
	}

	h.writeJSON(w, http.StatusAccepted, nil)
}

// UndoDelete handles POST /api/v1/contacts/undo requests.
func (h *RESTHandler) UndoDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	contact, err := h.engine.UndoDelete(ctx)
	if err != nil {
		h.handleEngineError(w, err, "undo delete")
		return
	}

	h.writeJSON(w, http.StatusOK, model.NewSuccessResponse(contact))
}

// ToggleFavorite handles POST /api/v1/contacts/{id}/favorite requests.
func (h *RESTHandler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	vars := mux.Vars(r)
	id := vars["id"]

	contact, err := h.engine.ToggleFavorite(ctx, id)
	if err != nil {
		h.handleEngineError(w, err, "toggle favorite")
		return
	}

	h.writeJSON(w, http.StatusOK, model.NewSuccessResponse(contact))
}

// SetSearchText handles PUT /api/v1/search requests.
func (h *RESTHandler) SetSearchText(w http.ResponseWriter, r *http.Request) {
	var req model.SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid request body", zap.Error(err))
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	h.engine.SetSearchText(req.Text)
	h.writeJSON(w, http.StatusNoContent, nil)
}

// handleEngineError maps engine errors to HTTP responses. Validation
// failures carry per-field details so the caller can surface every problem
// at once.
func (h *RESTHandler) handleEngineError(w http.ResponseWriter, err error, operation string) {
	var fieldErrs validate.FieldErrors
	switch {
	case errors.As(err, &fieldErrs):
		h.writeJSON(w, http.StatusBadRequest, model.ErrorResponse{
			Code:    http.StatusBadRequest,
			Message: "validation failed",
			Fields:  fieldErrs.Fields(),
		})
	case errors.Is(err, store.ErrNotFound):
		h.writeError(w, http.StatusNotFound, "contact not found")
	case errors.Is(err, store.ErrInvalidID):
		h.writeError(w, http.StatusBadRequest, "invalid contact ID")
	case errors.Is(err, store.ErrNothingPending):
		h.writeError(w, http.StatusConflict, "no deletion pending")
	default:
		h.logger.Error("engine operation failed", zap.String("operation", operation), zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// writeJSON writes a JSON response with the given status code.
func (h *RESTHandler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data == nil {
		return
	}

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", zap.Error(err))
	}
}

// writeError writes an error response with the given status code and message.
func (h *RESTHandler) writeError(w http.ResponseWriter, status int, message string) {
	response := model.ErrorResponse{
		Code:    status,
		Message: message,
	}
	h.writeJSON(w, status, response)
}
