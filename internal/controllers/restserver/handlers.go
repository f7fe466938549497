package restserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/chrissnell/wxreport/internal/report"
	"github.com/chrissnell/wxreport/internal/types"
)

// maxRequestBytes bounds the JSON body of POST /reports
const maxRequestBytes = 1 << 20

// Handlers contains all HTTP handlers for the REST server
type Handlers struct {
	controller *Controller
}

// NewHandlers creates a new handlers instance
func NewHandlers(ctrl *Controller) *Handlers {
	return &Handlers{controller: ctrl}
}

// CreateReport runs a report job and responds with a zip of its artifacts and manifest.
// A request that asks for neither images nor tables gets both.
func (h *Handlers) CreateReport(w http.ResponseWriter, req *http.Request) {
	logger := h.controller.logger

	var spec types.RequestSpec
	dec := json.NewDecoder(http.MaxBytesReader(w, req.Body, maxRequestBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&spec); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error(), "")
		return
	}
	if !spec.Images && !spec.Tables {
		spec.Images, spec.Tables = true, true
	}

	job, err := h.controller.runner.Run(req.Context(), spec)
	if job != nil {
		defer func() {
			if cerr := h.controller.runner.Cleanup(job.Workspace); cerr != nil {
				logger.Errorw("workspace cleanup failed", "job", job.ID, "error", cerr)
			}
		}()
	}

	if err != nil {
		jobID := ""
		if job != nil {
			jobID = job.ID
		}

		var wsErr *report.WorkspaceError
		switch {
		case errors.Is(err, report.ErrInvalidRequest):
			writeError(w, http.StatusBadRequest, "invalid request", err.Error(), jobID)
		case errors.Is(err, report.ErrNoDataAvailable):
			writeError(w, http.StatusNotFound, "no data available", "no station returned data for the requested parameters and range", jobID)
		case errors.As(err, &wsErr):
			logger.Errorw("report workspace error", "job", jobID, "error", err)
			writeError(w, http.StatusInternalServerError, "workspace error", "the report could not be prepared", jobID)
		default:
			logger.Errorw("report job failed", "job", jobID, "error", err)
			writeError(w, http.StatusInternalServerError, "report failed", err.Error(), jobID)
		}
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"wxreport-%s.zip\"", job.ID))
	w.Header().Set("X-Report-Job", job.ID)
	w.WriteHeader(http.StatusOK)

	if err := writeArchive(w, job); err != nil {
		logger.Errorw("error streaming report archive", "job", job.ID, "error", err)
	}
}

// GetParameters lists the parameter catalogue and the accepted presets
func (h *Handlers) GetParameters(w http.ResponseWriter, req *http.Request) {
	resp := ParametersResponse{
		Parameters: types.Parameters(),
		Ranges:     types.RangePresets(),
		Averaging:  types.AveragingPresets(),
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "max-age=3600")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.controller.logger.Error("error encoding parameters to JSON:", err)
	}
}

// GetHealth reports the last record store health check
func (h *Handlers) GetHealth(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if h.controller.health == nil {
		json.NewEncoder(w).Encode(map[string]string{"status": "unknown"})
		return
	}

	health := h.controller.health.GetHealth()
	if !h.controller.health.IsHealthy(h.controller.HealthMaxAge) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	if err := json.NewEncoder(w).Encode(health); err != nil {
		h.controller.logger.Error("error encoding health to JSON:", err)
	}
}

func writeError(w http.ResponseWriter, status int, errText, message, jobID string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   errText,
		Message: message,
		JobID:   jobID,
	})
}
