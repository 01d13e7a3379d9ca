package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"lookbook/internal/dispatch"
	"lookbook/internal/domain"
	"lookbook/internal/providers"
)

// App bundles the handler dependencies.
type App struct {
	Logger     zerolog.Logger
	Exposes    domain.ExposeRepository
	Shoots     domain.ShootRepository
	Settings   domain.SettingRepository
	Registry   *providers.Registry
	Dispatcher *dispatch.Dispatcher
}

func NewApp(
	logger zerolog.Logger,
	exposes domain.ExposeRepository,
	shoots domain.ShootRepository,
	settings domain.SettingRepository,
	registry *providers.Registry,
	dispatcher *dispatch.Dispatcher,
) *App {
	return &App{
		Logger:     logger,
		Exposes:    exposes,
		Shoots:     shoots,
		Settings:   settings,
		Registry:   registry,
		Dispatcher: dispatcher,
	}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, status int, code, message string) {
	a.json(w, status, map[string]string{"error": code, "message": message})
}

// domainError maps the error taxonomy onto HTTP responses.
func (a *App) domainError(w http.ResponseWriter, err error) {
	var configErr *domain.ConfigError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		a.error(w, http.StatusNotFound, "not_found", "record not found")
	case errors.Is(err, domain.ErrEmptyPrompt):
		a.error(w, http.StatusUnprocessableEntity, "empty_prompt", "composed prompt is empty")
	case errors.Is(err, domain.ErrInvalidSelection):
		a.error(w, http.StatusUnprocessableEntity, "invalid_selection", "selected variant index out of range")
	case errors.Is(err, domain.ErrAttemptInFlight):
		a.error(w, http.StatusConflict, "in_flight", "a generation attempt is already in flight")
	case errors.As(err, &configErr):
		a.error(w, http.StatusServiceUnavailable, "provider_unavailable", configErr.Error())
	default:
		a.Logger.Error().Err(err).Msg("handler: internal error")
		a.error(w, http.StatusInternalServerError, "internal", "internal error")
	}
}
