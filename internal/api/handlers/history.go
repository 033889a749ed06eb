package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/amaumene/dono/internal/apperrors"
	"github.com/amaumene/dono/internal/controllers"
	"github.com/amaumene/dono/internal/models"
)

// HistoryHandler serves the read side of the play logs
type HistoryHandler struct {
	ingestCtrl *controllers.IngestController
	logger     *logrus.Logger
}

// NewHistoryHandler creates a new history handler
func NewHistoryHandler(ingestCtrl *controllers.IngestController, logger *logrus.Logger) *HistoryHandler {
	return &HistoryHandler{
		ingestCtrl: ingestCtrl,
		logger:     logger,
	}
}

// Current handles GET /api/{kind}/current
func (h *HistoryHandler) Current(w http.ResponseWriter, r *http.Request) {
	kind, ok := h.kind(w, r)
	if !ok {
		return
	}
	entry, err := h.ingestCtrl.Current(r.Context(), kind)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// Previous handles GET /api/{kind}/previous
func (h *HistoryHandler) Previous(w http.ResponseWriter, r *http.Request) {
	kind, ok := h.kind(w, r)
	if !ok {
		return
	}
	entry, err := h.ingestCtrl.Previous(r.Context(), kind)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// All handles GET /api/{kind}/all
func (h *HistoryHandler) All(w http.ResponseWriter, r *http.Request) {
	kind, ok := h.kind(w, r)
	if !ok {
		return
	}
	entries, err := h.ingestCtrl.All(r.Context(), kind)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if entries == nil {
		entries = []models.Entry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// Merged handles GET /api/history
func (h *HistoryHandler) Merged(w http.ResponseWriter, r *http.Request) {
	entries, err := h.ingestCtrl.History(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if entries == nil {
		entries = []models.Entry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *HistoryHandler) kind(w http.ResponseWriter, r *http.Request) (models.MediaKind, bool) {
	raw := chi.URLParam(r, "kind")
	kind, err := models.ParseKind(raw)
	if err != nil {
		writeError(w, h.logger, &apperrors.InvalidSourceError{Source: raw, Reason: err.Error()})
		return "", false
	}
	return kind, true
}
