package api

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"talent-match/internal/storage"
)

type createInviteRequest struct {
	EmployerID  int64 `json:"employer_id"`
	CandidateID int64 `json:"candidate_id"`
	JobID       int64 `json:"job_id"`
}

// CreateInviteHandler sends an invite to a candidate
// @Summary Invite a candidate to apply
// @Description Creates an invite for the (employer, candidate, job) triple. A duplicate invite returns success=false; a re-invite after deletion goes through because the check always reads the current rows.
// @Tags invites
// @Accept json
// @Produce json
// @Param invite body createInviteRequest true "Invite"
// @Success 200 {object} storage.Result
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /invites [post]
func (a *API) CreateInviteHandler(w http.ResponseWriter, r *http.Request) {
	var req createInviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.EmployerID == 0 || req.CandidateID == 0 || req.JobID == 0 {
		writeError(w, http.StatusBadRequest, "employer_id, candidate_id and job_id are required")
		return
	}

	inv := &storage.Invite{
		EmployerID:  req.EmployerID,
		CandidateID: req.CandidateID,
		JobID:       req.JobID,
	}
	result, err := a.db.CreateInvite(r.Context(), inv)
	if err != nil {
		log.Printf("[API] Failed to create invite: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to create invite")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type inviteResponseRequest struct {
	Status string `json:"status"`
}

// RespondInviteHandler records the candidate's accept/decline decision
// @Summary Respond to an invite
// @Tags invites
// @Accept json
// @Produce json
// @Param id path int true "Invite ID"
// @Param body body inviteResponseRequest true "accepted or declined"
// @Success 200 {object} storage.Result
// @Failure 400 {object} map[string]string
// @Router /invites/{id}/respond [post]
func (a *API) RespondInviteHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid invite id")
		return
	}
	var req inviteResponseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if err := a.db.UpdateInviteStatus(r.Context(), id, req.Status); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, storage.Result{Success: true})
}
