package api

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"talent-match/internal/storage"
)

type submitApplicationRequest struct {
	CandidateID int64  `json:"candidate_id"`
	JobID       int64  `json:"job_id"`
	ResumeRef   string `json:"resume_ref"`
}

// SubmitApplicationHandler records a new application
// @Summary Submit an application
// @Description Inserts the application and its notification events in one transaction.
// @Tags applications
// @Accept json
// @Produce json
// @Param application body submitApplicationRequest true "Application"
// @Success 201 {object} storage.Application
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /applications [post]
func (a *API) SubmitApplicationHandler(w http.ResponseWriter, r *http.Request) {
	var req submitApplicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.CandidateID == 0 || req.JobID == 0 {
		writeError(w, http.StatusBadRequest, "candidate_id and job_id are required")
		return
	}

	app := &storage.Application{
		CandidateID: req.CandidateID,
		JobID:       req.JobID,
		ResumeRef:   req.ResumeRef,
	}
	id, err := a.db.RecordApplicationSubmission(r.Context(), app)
	if err != nil {
		log.Printf("[API] Failed to record application: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to record application")
		return
	}
	app.ID = id
	app.Status = storage.ApplicationSubmitted

	writeJSON(w, http.StatusCreated, app)
}

type statusUpdateRequest struct {
	Status string `json:"status"`
}

// UpdateApplicationStatusHandler moves an application through its lifecycle
// @Summary Update application status
// @Description Applies an employer-driven status transition. Invalid transitions return success=false without changing the row.
// @Tags applications
// @Accept json
// @Produce json
// @Param id path int true "Application ID"
// @Param body body statusUpdateRequest true "New status"
// @Success 200 {object} storage.Result
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /applications/{id}/status [patch]
func (a *API) UpdateApplicationStatusHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid application id")
		return
	}
	var req statusUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	result, err := a.db.UpdateApplicationStatus(r.Context(), id, req.Status)
	if err != nil {
		log.Printf("[API] Failed to update application %d: %v", id, err)
		writeError(w, http.StatusInternalServerError, "failed to update application")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// ListJobApplicationsHandler lists applications for a job
// @Summary List applications for a job
// @Tags applications
// @Produce json
// @Param id path int true "Job ID"
// @Success 200 {array} storage.Application
// @Failure 400 {object} map[string]string
// @Router /jobs/{id}/applications [get]
func (a *API) ListJobApplicationsHandler(w http.ResponseWriter, r *http.Request) {
	jobID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid job id")
		return
	}
	apps, err := a.db.ListApplicationsForJob(r.Context(), jobID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list applications")
		return
	}
	if apps == nil {
		apps = []*storage.Application{}
	}
	writeJSON(w, http.StatusOK, apps)
}
