package api

import (
	"log"
	"net/http"
)

type resumeUploadResponse struct {
	CandidateID int64  `json:"candidate_id"`
	Filename    string `json:"filename"`
	TextLength  int    `json:"text_length"`
}

// ResumeUploadHandler ingests a resume file
// @Summary Upload and enrich a resume
// @Description Parses the uploaded file, extracts a structured profile and queues graph projection, embedding and onboarding in the background.
// @Tags resumes
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Resume file (PDF, DOCX, TXT)"
// @Param email formData string true "Candidate email"
// @Success 200 {object} resumeUploadResponse
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /resumes/upload [post]
func (a *API) ResumeUploadHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(20 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	email := r.FormValue("email")
	if email == "" {
		writeError(w, http.StatusBadRequest, "email is required")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	parsed, err := a.parser.ParseFile(header.Filename, file)
	if err != nil {
		log.Printf("[API] Resume parse failed for %s: %v", header.Filename, err)
		writeError(w, http.StatusBadRequest, "could not parse resume file")
		return
	}

	candidateID, err := a.enricher.EnrichResume(r.Context(), email, parsed.Filename, parsed.FullText)
	if err != nil {
		log.Printf("[API] Resume enrichment failed for %s: %v", email, err)
		writeError(w, http.StatusInternalServerError, "resume enrichment failed")
		return
	}

	writeJSON(w, http.StatusOK, resumeUploadResponse{
		CandidateID: candidateID,
		Filename:    parsed.Filename,
		TextLength:  len(parsed.FullText),
	})
}
