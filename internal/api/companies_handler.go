package api

import (
	"encoding/json"
	"net/http"

	"talent-match/internal/storage"
)

type createCompanyRequest struct {
	Name string `json:"name"`
}

// CreateCompanyHandler registers a company
// @Summary Create a company
// @Tags companies
// @Accept json
// @Produce json
// @Param company body createCompanyRequest true "Company"
// @Success 201 {object} storage.Company
// @Failure 400 {object} map[string]string
// @Router /companies [post]
func (a *API) CreateCompanyHandler(w http.ResponseWriter, r *http.Request) {
	var req createCompanyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	id, err := a.db.CreateCompany(r.Context(), req.Name)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create company")
		return
	}
	writeJSON(w, http.StatusCreated, storage.Company{ID: id, Name: req.Name})
}

type addEmployerRequest struct {
	CompanyID int64  `json:"company_id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
}

// AddEmployerHandler attaches an employer to a company
// @Summary Add an employer
// @Description Adds an employer with a role. Adding a second admin returns success=false.
// @Tags companies
// @Accept json
// @Produce json
// @Param employer body addEmployerRequest true "Employer"
// @Success 200 {object} storage.Result
// @Failure 400 {object} map[string]string
// @Router /employers [post]
func (a *API) AddEmployerHandler(w http.ResponseWriter, r *http.Request) {
	var req addEmployerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.CompanyID == 0 || req.Email == "" {
		writeError(w, http.StatusBadRequest, "company_id and email are required")
		return
	}

	result, err := a.db.AddEmployer(r.Context(), &storage.Employer{
		CompanyID: req.CompanyID,
		Name:      req.Name,
		Email:     req.Email,
		Role:      req.Role,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to add employer")
		return
	}
	writeJSON(w, http.StatusOK, result)
}
