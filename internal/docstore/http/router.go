package http

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	commonerrors "github.com/AlibekovAA/notes/internal/common/errors"
	commonhttp "github.com/AlibekovAA/notes/internal/common/http"
	"github.com/AlibekovAA/notes/internal/common/jwtverify"
	"github.com/AlibekovAA/notes/internal/common/logger"
	"github.com/AlibekovAA/notes/internal/docstore"
)

type addResponse struct {
	ID string `json:"id"`
}

type queryResponse struct {
	Documents []docstore.Document `json:"documents"`
}

type Handler struct {
	store   docstore.Store
	log     *logger.Logger
	errors  *commonhttp.ErrorHandler
	timeout time.Duration
}

func NewHandler(store docstore.Store, log *logger.Logger, timeout time.Duration) *Handler {
	return &Handler{
		store:   store,
		log:     log,
		errors:  commonhttp.NewErrorHandler(log),
		timeout: timeout,
	}
}

// Register mounts the document routes behind auth.
func (h *Handler) Register(r *mux.Router, auth mux.MiddlewareFunc) {
	sub := r.PathPrefix("/api/documents").Subrouter()
	sub.Use(auth)
	sub.Use(mux.MiddlewareFunc(commonhttp.WithTimeout(h.timeout)))

	sub.HandleFunc("/{collection}", h.add).Methods(http.MethodPost)
	sub.HandleFunc("/{collection}", h.query).Methods(http.MethodGet)
	sub.HandleFunc("/{collection}/{id}", h.put).Methods(http.MethodPut)
	sub.HandleFunc("/{collection}/{id}", h.get).Methods(http.MethodGet)
	sub.HandleFunc("/{collection}/{id}", h.merge).Methods(http.MethodPatch)
	sub.HandleFunc("/{collection}/{id}", h.remove).Methods(http.MethodDelete)
}

func (h *Handler) logFields(r *http.Request, action string) logger.Fields {
	vars := mux.Vars(r)
	fields := logger.Fields{
		"collection": vars["collection"],
		"action":     action,
	}
	if id := vars["id"]; id != "" {
		fields["document_id"] = id
	}
	if claims, ok := jwtverify.FromContext(r.Context()); ok {
		fields["user_id"] = claims.UserID
	}
	return fields
}

func decodeFields(r *http.Request) (docstore.Fields, error) {
	var fields docstore.Fields
	if err := commonhttp.DecodeJSON(r, &fields); err != nil {
		return nil, commonerrors.ErrInvalidPayload.WithCause(err)
	}
	if fields == nil {
		return nil, commonerrors.NewValidationError("body", "document body must be a JSON object")
	}
	return fields, nil
}

func (h *Handler) put(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	fields, err := decodeFields(r)
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	if err := h.store.Put(r.Context(), vars["collection"], vars["id"], fields); err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	h.log.WithFields(r.Context(), h.logFields(r, "document_put")).Debug("document stored")
	commonhttp.WriteNoContent(w)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	doc, err := h.store.Get(r.Context(), vars["collection"], vars["id"])
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}
	commonhttp.WriteJSON(w, http.StatusOK, doc)
}

func (h *Handler) add(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	fields, err := decodeFields(r)
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	id, err := h.store.Add(r.Context(), vars["collection"], fields)
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	logFields := h.logFields(r, "document_add")
	logFields["document_id"] = id
	h.log.WithFields(r.Context(), logFields).Debug("document added")
	commonhttp.WriteJSON(w, http.StatusCreated, addResponse{ID: id})
}

func (h *Handler) query(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	field := r.URL.Query().Get("field")
	if field == "" {
		h.errors.HandleError(w, r, commonerrors.NewValidationError("field", "field query parameter is required"))
		return
	}

	docs, err := h.store.Query(r.Context(), vars["collection"], docstore.Equal(field, r.URL.Query().Get("value")))
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}
	commonhttp.WriteJSON(w, http.StatusOK, queryResponse{Documents: docs})
}

func (h *Handler) merge(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	fields, err := decodeFields(r)
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	if err := h.store.Merge(r.Context(), vars["collection"], vars["id"], fields); err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	h.log.WithFields(r.Context(), h.logFields(r, "document_merge")).Debug("document merged")
	commonhttp.WriteNoContent(w)
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := h.store.Remove(r.Context(), vars["collection"], vars["id"]); err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	h.log.WithFields(r.Context(), h.logFields(r, "document_remove")).Debug("document removed")
	commonhttp.WriteNoContent(w)
}
