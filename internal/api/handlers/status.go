package handlers

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/amaumene/dono/internal/controllers"
)

// StatusHandler reports how many plays each log holds
type StatusHandler struct {
	ingestCtrl *controllers.IngestController
	logger     *logrus.Logger
}

// NewStatusHandler creates a new status handler
func NewStatusHandler(ingestCtrl *controllers.IngestController, logger *logrus.Logger) *StatusHandler {
	return &StatusHandler{
		ingestCtrl: ingestCtrl,
		logger:     logger,
	}
}

// StatusResponse represents the status response
type StatusResponse struct {
	TotalRecords  int            `json:"total_records"`
	RecordsByKind map[string]int `json:"records_by_kind"`
}

// ServeHTTP handles the status endpoint
func (h *StatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	stats, err := h.ingestCtrl.Stats(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	response := StatusResponse{
		RecordsByKind: make(map[string]int, len(stats)),
	}
	for kind, count := range stats {
		response.TotalRecords += count
		response.RecordsByKind[kind.String()] = count
	}

	writeJSON(w, http.StatusOK, response)
}
