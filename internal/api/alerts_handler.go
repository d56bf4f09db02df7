package api

import (
	"net/http"
	"strconv"

	"talent-match/internal/storage"
)

// ListAlertsHandler lists a recipient's dashboard alerts
// @Summary List alerts
// @Tags alerts
// @Produce json
// @Param recipient_id query int true "Recipient ID"
// @Success 200 {array} storage.Alert
// @Failure 400 {object} map[string]string
// @Router /alerts [get]
func (a *API) ListAlertsHandler(w http.ResponseWriter, r *http.Request) {
	recipientID, err := strconv.ParseInt(r.URL.Query().Get("recipient_id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid recipient_id")
		return
	}
	alerts, err := a.db.ListAlerts(r.Context(), recipientID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list alerts")
		return
	}
	if alerts == nil {
		alerts = []*storage.Alert{}
	}
	writeJSON(w, http.StatusOK, alerts)
}

// MarkAlertReadHandler marks one alert read
// @Summary Mark alert read
// @Tags alerts
// @Produce json
// @Param id path int true "Alert ID"
// @Success 200 {object} storage.Result
// @Failure 400 {object} map[string]string
// @Router /alerts/{id}/read [post]
func (a *API) MarkAlertReadHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid alert id")
		return
	}
	if err := a.db.MarkAlertRead(r.Context(), id); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to update alert")
		return
	}
	writeJSON(w, http.StatusOK, storage.Result{Success: true})
}

// DeleteAlertHandler removes an alert
// @Summary Delete alert
// @Tags alerts
// @Produce json
// @Param id path int true "Alert ID"
// @Success 200 {object} storage.Result
// @Failure 400 {object} map[string]string
// @Router /alerts/{id} [delete]
func (a *API) DeleteAlertHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid alert id")
		return
	}
	if err := a.db.DeleteAlert(r.Context(), id); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete alert")
		return
	}
	writeJSON(w, http.StatusOK, storage.Result{Success: true})
}
