package api

import (
	"database/sql"
	"encoding/json"
	"log"
	"net/http"

	"talent-match/internal/storage"
)

type runData struct {
	Status string          `json:"status"`
	Output json.RawMessage `json:"output,omitempty"`
	Error  string          `json:"error,omitempty"`
}

type runResponse struct {
	Data     []runData              `json:"data"`
	Metadata map[string]interface{} `json:"metadata"`
}

// GetRunHandler polls a workflow run
// @Summary Poll a background run
// @Description Returns the run's current status and output. Clients poll this until the status leaves Running.
// @Tags runs
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} runResponse
// @Failure 404 {object} map[string]string
// @Router /runs/{id} [get]
func (a *API) GetRunHandler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	run, err := a.db.GetRun(r.Context(), id)
	if err == sql.ErrNoRows {
		writeError(w, http.StatusNotFound, "run not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load run")
		return
	}

	data := runData{Status: run.Status, Output: run.Output}
	if run.ErrorMessage.Valid {
		data.Error = run.ErrorMessage.String
	}

	writeJSON(w, http.StatusOK, runResponse{
		Data: []runData{data},
		Metadata: map[string]interface{}{
			"run_id":      run.ID,
			"event_type":  run.EventType,
			"retry_count": run.RetryCount,
			"created_at":  run.CreatedAt,
		},
	})
}

// CancelRunHandler requests cancellation of a run
// @Summary Cancel a background run
// @Description Raises the cooperative cancel flag. An in-flight run stops at its next checkpoint; a queued run is skipped.
// @Tags runs
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} storage.Result
// @Failure 500 {object} map[string]string
// @Router /runs/{id}/cancel [post]
func (a *API) CancelRunHandler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := a.engine.Cancel(r.Context(), id); err != nil {
		log.Printf("[API] Failed to cancel run %s: %v", id, err)
		writeError(w, http.StatusInternalServerError, "failed to cancel run")
		return
	}
	writeJSON(w, http.StatusOK, storage.Result{Success: true})
}
