package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"kharcha/internal/core"
	"kharcha/internal/ingest"
)

type preferencesJSON struct {
	MonthlyBudget        float64 `json:"monthlyBudget"`
	PreferredCurrency    string  `json:"preferredCurrency"`
	DailyExpenseReminder bool    `json:"dailyExpenseReminder"`
	MonthlyBudgetAlert   bool    `json:"monthlyBudgetAlert"`
}

func toPreferencesJSON(p core.Preferences) preferencesJSON {
	return preferencesJSON{
		MonthlyBudget:        p.MonthlyBudget,
		PreferredCurrency:    p.PreferredCurrency,
		DailyExpenseReminder: p.DailyExpenseReminder,
		MonthlyBudgetAlert:   p.MonthlyBudgetAlert,
	}
}

// preferencesUpdate is a partial update: absent fields keep their stored
// values. The notifications map accepts both the current and the legacy
// toggle key names.
type preferencesUpdate struct {
	MonthlyBudget        *float64        `json:"monthlyBudget"`
	PreferredCurrency    *string         `json:"preferredCurrency"`
	DailyExpenseReminder *bool           `json:"dailyExpenseReminder"`
	MonthlyBudgetAlert   *bool           `json:"monthlyBudgetAlert"`
	Notifications        map[string]bool `json:"notifications"`
}

func (s *Server) handleGetPreferences(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}

	prefs, err := s.service.Preferences(r.Context(), owner)
	if err != nil {
		slog.ErrorContext(r.Context(), "Preferences get error", "error", err, "owner_id", owner)
		writeError(w, http.StatusInternalServerError, "failed to load preferences")
		return
	}
	writeJSON(w, http.StatusOK, toPreferencesJSON(prefs))
}

func (s *Server) handleUpdatePreferences(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}

	var in preferencesUpdate
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	update, setReminder, setAlert := in.resolve()

	merged, err := s.service.UpdatePreferences(r.Context(), owner, update, setReminder, setAlert)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	s.invalidateOwner(owner)
	writeJSON(w, http.StatusOK, toPreferencesJSON(merged))
}

// resolve folds the explicit fields and the notifications map into the
// merge arguments. Explicit fields win over map entries; legacy map keys
// are migrated to the current names.
func (in preferencesUpdate) resolve() (update core.Preferences, setReminder, setAlert bool) {
	if in.MonthlyBudget != nil {
		update.MonthlyBudget = *in.MonthlyBudget
	}
	if in.PreferredCurrency != nil {
		update.PreferredCurrency = *in.PreferredCurrency
	}

	mapReminder, mapAlert := ingest.NotificationToggles(in.Notifications)
	_, hasReminderKey := in.Notifications["dailyExpenseReminder"]
	_, hasLegacyReminderKey := in.Notifications["dailyReminders"]
	_, hasAlertKey := in.Notifications["monthlyBudgetAlert"]
	_, hasLegacyAlertKey := in.Notifications["budgetAlerts"]

	switch {
	case in.DailyExpenseReminder != nil:
		update.DailyExpenseReminder = *in.DailyExpenseReminder
		setReminder = true
	case hasReminderKey || hasLegacyReminderKey:
		update.DailyExpenseReminder = mapReminder
		setReminder = true
	}

	switch {
	case in.MonthlyBudgetAlert != nil:
		update.MonthlyBudgetAlert = *in.MonthlyBudgetAlert
		setAlert = true
	case hasAlertKey || hasLegacyAlertKey:
		update.MonthlyBudgetAlert = mapAlert
		setAlert = true
	}

	return update, setReminder, setAlert
}
