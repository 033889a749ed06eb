package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/amaumene/dono/internal/apperrors"
	"github.com/amaumene/dono/internal/controllers"
	"github.com/amaumene/dono/internal/models"
)

// maxItemBody caps the size of a submission payload
const maxItemBody = 64 << 10

// ItemsHandler accepts play submissions
type ItemsHandler struct {
	ingestCtrl *controllers.IngestController
	logger     *logrus.Logger
	now        func() time.Time
}

// NewItemsHandler creates a new items handler
func NewItemsHandler(ingestCtrl *controllers.IngestController, logger *logrus.Logger) *ItemsHandler {
	return &ItemsHandler{
		ingestCtrl: ingestCtrl,
		logger:     logger,
		now:        time.Now,
	}
}

// ItemRequest is the submission body. A missing ts means now.
type ItemRequest struct {
	Kind      string `json:"kind"`
	Source    string `json:"source"`
	Timestamp *int64 `json:"ts,omitempty"`
}

// ServeHTTP records one play and answers with the stored entry
func (h *ItemsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req ItemRequest
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxItemBody))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		h.logger.WithError(err).Debug("Failed to decode item payload")
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}

	kind, err := models.ParseKind(req.Kind)
	if err != nil {
		writeError(w, h.logger, &apperrors.InvalidSourceError{Source: req.Source, Reason: err.Error()})
		return
	}

	ts := h.now().Unix()
	if req.Timestamp != nil {
		ts = *req.Timestamp
	}

	entry, err := h.ingestCtrl.Submit(r.Context(), models.Item{
		Kind:      kind,
		Source:    req.Source,
		Timestamp: ts,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, entry)
}
