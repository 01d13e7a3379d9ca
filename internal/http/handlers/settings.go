package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strings"

	"lookbook/internal/domain"
	"lookbook/internal/providers"
)

type settingRequest struct {
	Value string `json:"value"`
}

// SettingGetProvider returns the current ai_provider value and the
// registered adapter keys.
func (a *App) SettingGetProvider(w http.ResponseWriter, r *http.Request) {
	value, err := a.Settings.Get(r.Context(), providers.SettingAIProvider)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		a.domainError(w, err)
		return
	}
	keys := a.Registry.Keys()
	sort.Strings(keys)
	a.json(w, http.StatusOK, map[string]any{
		"name":      providers.SettingAIProvider,
		"value":     value,
		"available": keys,
	})
}

// SettingPutProvider switches the active backend. The change applies to the
// next dispatch; dispatches already running keep their provider snapshot.
func (a *App) SettingPutProvider(w http.ResponseWriter, r *http.Request) {
	var req settingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	value := strings.ToLower(strings.TrimSpace(req.Value))
	if !a.Registry.Registered(value) {
		a.error(w, http.StatusUnprocessableEntity, "unknown_provider", "no adapter registered for "+req.Value)
		return
	}
	if err := a.Settings.Set(r.Context(), providers.SettingAIProvider, value); err != nil {
		a.domainError(w, err)
		return
	}
	a.Logger.Info().Str("provider", value).Msg("settings: ai_provider changed")
	a.json(w, http.StatusOK, map[string]string{"name": providers.SettingAIProvider, "value": value})
}
