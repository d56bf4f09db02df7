package api

import (
	"log"
	"net/http"

	"talent-match/internal/notify"
	"talent-match/internal/storage"
)

// unsubPathTypes lists which preference types each unsubscribe path accepts.
// The candidate-facing /unsub path covers invite and resume mails, the
// employer-facing /unsubscribe path covers match and application mails.
var unsubPathTypes = map[string]map[string]bool{
	"unsub": {
		storage.PrefInvite: true,
		storage.PrefResume: true,
	},
	"unsubscribe": {
		storage.PrefMatch:       true,
		storage.PrefApplication: true,
	},
}

// UnsubHandler handles candidate unsubscribe links
// @Summary Unsubscribe a candidate from a mail type
// @Description Decodes the recipient token and records the opt-out. An unknown type changes nothing and returns success=false.
// @Tags preferences
// @Produce json
// @Param recipient path string true "Encoded recipient"
// @Param type query string true "invite or resume"
// @Success 200 {object} storage.Result
// @Failure 400 {object} map[string]string
// @Router /dashboard/unsub/{recipient} [get]
func (a *API) UnsubHandler(w http.ResponseWriter, r *http.Request) {
	a.handleUnsubscribe(w, r, "unsub")
}

// UnsubscribeHandler handles employer unsubscribe links
// @Summary Unsubscribe an employer from a mail type
// @Tags preferences
// @Produce json
// @Param recipient path string true "Encoded recipient"
// @Param type query string true "match or app"
// @Success 200 {object} storage.Result
// @Failure 400 {object} map[string]string
// @Router /dashboard/unsubscribe/{recipient} [get]
func (a *API) UnsubscribeHandler(w http.ResponseWriter, r *http.Request) {
	a.handleUnsubscribe(w, r, "unsubscribe")
}

func (a *API) handleUnsubscribe(w http.ResponseWriter, r *http.Request, path string) {
	email, err := notify.DecodeRecipient(r.PathValue("recipient"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid recipient token")
		return
	}

	prefType := r.URL.Query().Get("type")
	if !unsubPathTypes[path][prefType] {
		writeJSON(w, http.StatusOK, storage.Result{
			Success: false,
			Message: "unknown notification type",
		})
		return
	}

	if err := a.db.SetEmailPreference(r.Context(), email, prefType, false); err != nil {
		log.Printf("[API] Failed to record unsubscribe for %s/%s: %v", email, prefType, err)
		writeError(w, http.StatusInternalServerError, "failed to update preference")
		return
	}
	writeJSON(w, http.StatusOK, storage.Result{Success: true})
}
