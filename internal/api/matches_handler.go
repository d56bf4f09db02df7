package api

import (
	"log"
	"net/http"
	"strconv"

	"talent-match/internal/storage"
	"talent-match/internal/workflow"
)

// ListJobMatchesHandler lists persisted matches for a job
// @Summary List matches for a job
// @Description Returns the job's candidate pairings ordered by enhanced score, falling back to the original score for pairs still being evaluated.
// @Tags matches
// @Produce json
// @Param id path int true "Job ID"
// @Success 200 {array} storage.MatchPair
// @Failure 400 {object} map[string]string
// @Router /jobs/{id}/matches [get]
func (a *API) ListJobMatchesHandler(w http.ResponseWriter, r *http.Request) {
	jobID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid job id")
		return
	}
	pairs, err := a.db.ListMatchesForJob(r.Context(), jobID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list matches")
		return
	}
	if pairs == nil {
		pairs = []*storage.MatchPair{}
	}
	writeJSON(w, http.StatusOK, pairs)
}

type triggerMatchResponse struct {
	RunID string `json:"run_id"`
}

// TriggerJobMatchHandler queues a fresh matching pass for a job
// @Summary Trigger matching for a job
// @Tags matches
// @Produce json
// @Param id path int true "Job ID"
// @Success 202 {object} triggerMatchResponse
// @Failure 400 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /jobs/{id}/matches [post]
func (a *API) TriggerJobMatchHandler(w http.ResponseWriter, r *http.Request) {
	jobID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid job id")
		return
	}

	runID, err := a.engine.DispatchRun(r.Context(), workflow.EventJobMatch, workflow.JobPayload{JobID: jobID})
	if err != nil {
		log.Printf("[API] Failed to queue matching for job %d: %v", jobID, err)
		writeError(w, http.StatusServiceUnavailable, "could not queue matching run")
		return
	}
	writeJSON(w, http.StatusAccepted, triggerMatchResponse{RunID: runID})
}
