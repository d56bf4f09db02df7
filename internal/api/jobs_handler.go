package api

import (
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"talent-match/internal/storage"
	"talent-match/internal/workflow"
)

type createJobRequest struct {
	CompanyID   int64             `json:"company_id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Location    string            `json:"location"`
	SalaryMin   int               `json:"salary_min"`
	SalaryMax   int               `json:"salary_max"`
	Clearance   string            `json:"clearance"`
	Attributes  map[string]string `json:"attributes"`
}

type createJobResponse struct {
	Job   *storage.JobPosting `json:"job"`
	RunID string              `json:"run_id,omitempty"`
}

// CreateJobHandler creates a job posting
// @Summary Create job posting
// @Description Create a job posting. If no description is given it is generated from the title and attributes, then checked against the content filter before saving.
// @Tags jobs
// @Accept json
// @Produce json
// @Param job body createJobRequest true "Job posting"
// @Success 201 {object} createJobResponse
// @Failure 400 {object} map[string]string
// @Failure 422 {object} storage.Result
// @Failure 500 {object} map[string]string
// @Router /jobs [post]
func (a *API) CreateJobHandler(w http.ResponseWriter, r *http.Request) {
	var req createJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.CompanyID == 0 || req.Title == "" {
		writeError(w, http.StatusBadRequest, "company_id and title are required")
		return
	}

	description := req.Description
	if description == "" {
		generated, err := a.llmService.GenerateJobDescription(r.Context(), req.Title, req.Attributes)
		if err != nil {
			log.Printf("[API] Job description generation failed: %v", err)
			writeError(w, http.StatusInternalServerError, "description generation failed")
			return
		}
		description = generated
	}

	if blocked := a.filter.FirstBlockedWord(req.Title + " " + description); blocked != "" {
		writeJSON(w, http.StatusUnprocessableEntity, storage.Result{
			Success: false,
			Message: "job content rejected by moderation filter",
		})
		return
	}

	job := &storage.JobPosting{
		CompanyID:   req.CompanyID,
		Title:       req.Title,
		Description: description,
		Location:    req.Location,
		SalaryMin:   req.SalaryMin,
		SalaryMax:   req.SalaryMax,
		Clearance:   req.Clearance,
		Active:      true,
	}
	id, err := a.db.CreateJobPosting(r.Context(), job)
	if err != nil {
		log.Printf("[API] Failed to create job: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to create job")
		return
	}
	job.ID = id

	runID, err := a.engine.DispatchRun(r.Context(), workflow.EventJobEnrich, workflow.JobPayload{JobID: id})
	if err != nil {
		log.Printf("[API] Failed to queue enrichment for job %d: %v", id, err)
	}

	writeJSON(w, http.StatusCreated, createJobResponse{Job: job, RunID: runID})
}

// GetJobHandler fetches one job posting
// @Summary Get job posting
// @Tags jobs
// @Produce json
// @Param id path int true "Job ID"
// @Success 200 {object} storage.JobPosting
// @Failure 404 {object} map[string]string
// @Router /jobs/{id} [get]
func (a *API) GetJobHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid job id")
		return
	}

	job, err := a.db.GetJobPosting(r.Context(), id)
	if err == sql.ErrNoRows {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load job")
		return
	}
	writeJSON(w, http.StatusOK, job)
}

type setActiveRequest struct {
	Active bool `json:"active"`
}

// SetJobActiveHandler toggles a job's active flag
// @Summary Activate or deactivate a job
// @Tags jobs
// @Accept json
// @Produce json
// @Param id path int true "Job ID"
// @Param body body setActiveRequest true "Active flag"
// @Success 200 {object} storage.Result
// @Failure 400 {object} map[string]string
// @Router /jobs/{id}/active [patch]
func (a *API) SetJobActiveHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid job id")
		return
	}
	var req setActiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if err := a.db.SetJobActive(r.Context(), id, req.Active); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to update job")
		return
	}
	writeJSON(w, http.StatusOK, storage.Result{Success: true})
}
