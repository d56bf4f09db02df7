package api

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"
)

func NewRouter(a *API) http.Handler {
	mux := http.NewServeMux()

	// Swagger documentation - must be registered first
	mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("http://localhost:8080/swagger/doc.json"),
	))

	// Health check (for Railway, k8s, etc.)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})

	// Companies & employers
	mux.HandleFunc("POST /api/companies", a.CreateCompanyHandler)
	mux.HandleFunc("POST /api/employers", a.AddEmployerHandler)

	// Jobs
	mux.HandleFunc("POST /api/jobs", a.CreateJobHandler)
	mux.HandleFunc("GET /api/jobs/{id}", a.GetJobHandler)
	mux.HandleFunc("PATCH /api/jobs/{id}/active", a.SetJobActiveHandler)

	// Resumes
	mux.HandleFunc("POST /api/resumes/upload", a.ResumeUploadHandler)

	// Applications
	mux.HandleFunc("POST /api/applications", a.SubmitApplicationHandler)
	mux.HandleFunc("PATCH /api/applications/{id}/status", a.UpdateApplicationStatusHandler)
	mux.HandleFunc("GET /api/jobs/{id}/applications", a.ListJobApplicationsHandler)

	// Invites
	mux.HandleFunc("POST /api/invites", a.CreateInviteHandler)
	mux.HandleFunc("POST /api/invites/{id}/respond", a.RespondInviteHandler)

	// Matches
	mux.HandleFunc("GET /api/jobs/{id}/matches", a.ListJobMatchesHandler)
	mux.HandleFunc("POST /api/jobs/{id}/matches", a.TriggerJobMatchHandler)

	// Alerts
	mux.HandleFunc("GET /api/alerts", a.ListAlertsHandler)
	mux.HandleFunc("POST /api/alerts/{id}/read", a.MarkAlertReadHandler)
	mux.HandleFunc("DELETE /api/alerts/{id}", a.DeleteAlertHandler)

	// Background runs
	mux.HandleFunc("GET /api/runs/{id}", a.GetRunHandler)
	mux.HandleFunc("POST /api/runs/{id}/cancel", a.CancelRunHandler)

	// Email preference links embedded in outgoing mail
	mux.HandleFunc("GET /dashboard/unsub/{recipient}", a.UnsubHandler)
	mux.HandleFunc("GET /dashboard/unsubscribe/{recipient}", a.UnsubscribeHandler)

	return mux
}
