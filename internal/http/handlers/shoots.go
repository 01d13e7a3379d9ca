package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"lookbook/internal/domain"
	"lookbook/internal/prompt"
)

type shootCreateRequest struct {
	Facets prompt.Facets `json:"facets"`
	Views  []string      `json:"views"`
}

type shootGenerateRequest struct {
	VariantsPerView int `json:"variants_per_view"`
}

type photoResponse struct {
	ID             string `json:"id"`
	View           string `json:"view"`
	VariantIndex   int    `json:"variant_index"`
	URL            string `json:"url"`
	ApprovalStatus string `json:"approval_status"`
}

// ShootsCreate stores a draft photo-shoot session with its view names.
func (a *App) ShootsCreate(w http.ResponseWriter, r *http.Request) {
	var req shootCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	views := make([]string, 0, len(req.Views))
	for _, v := range req.Views {
		if v = strings.TrimSpace(v); v != "" {
			views = append(views, v)
		}
	}
	if len(views) == 0 {
		a.error(w, http.StatusUnprocessableEntity, "no_views", "at least one view is required")
		return
	}
	facets, err := json.Marshal(req.Facets)
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid facets")
		return
	}
	session := &domain.ShootSession{
		Status: domain.StatusDraft,
		Facets: facets,
		Views:  views,
	}
	if err := a.Shoots.CreateSession(r.Context(), session); err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusCreated, map[string]any{
		"id":     session.ID,
		"status": string(session.Status),
		"views":  session.Views,
	})
}

// ShootsGenerate starts photo generation across the session's views.
func (a *App) ShootsGenerate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req shootGenerateRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
			return
		}
	}
	session, err := a.Shoots.GetSession(r.Context(), id)
	if err != nil {
		a.domainError(w, err)
		return
	}
	if session.Status == domain.StatusProcessing {
		a.domainError(w, domain.ErrAttemptInFlight)
		return
	}
	var facets prompt.Facets
	if err := json.Unmarshal(session.Facets, &facets); err != nil || prompt.Compose(facets) == "" {
		a.domainError(w, domain.ErrEmptyPrompt)
		return
	}
	if _, err := a.Registry.ResolveImage(r.Context()); err != nil {
		a.domainError(w, err)
		return
	}
	perView := req.VariantsPerView
	if perView <= 0 {
		perView = 1
	}
	go func() {
		if err := a.Dispatcher.DispatchShoot(context.Background(), id, perView); err != nil {
			a.Logger.Error().Err(err).Str("session_id", id).Msg("handler: shoot dispatch failed")
		}
	}()
	a.json(w, http.StatusAccepted, map[string]string{"id": id, "status": string(domain.StatusProcessing)})
}

// ShootGet is the poll read for a session.
func (a *App) ShootGet(w http.ResponseWriter, r *http.Request) {
	session, err := a.Shoots.GetSession(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"id":            session.ID,
		"status":        string(session.Status),
		"views":         session.Views,
		"error_message": session.ErrorMessage,
		"provider":      session.Provider,
	})
}

// ShootPhotos lists a session's generated photos for review.
func (a *App) ShootPhotos(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := a.Shoots.GetSession(r.Context(), id); err != nil {
		a.domainError(w, err)
		return
	}
	photos, err := a.Shoots.ListPhotos(r.Context(), id)
	if err != nil {
		a.domainError(w, err)
		return
	}
	out := make([]photoResponse, 0, len(photos))
	for _, p := range photos {
		out = append(out, photoResponse{
			ID:             p.ID,
			View:           p.View,
			VariantIndex:   p.VariantIndex,
			URL:            p.URL,
			ApprovalStatus: string(p.ApprovalStatus),
		})
	}
	a.json(w, http.StatusOK, map[string]any{"photos": out})
}

// PhotoApprove records an approval decision for one photo.
func (a *App) PhotoApprove(w http.ResponseWriter, r *http.Request) {
	a.setApproval(w, r, domain.ApprovalApproved)
}

// PhotoReject records a rejection decision for one photo.
func (a *App) PhotoReject(w http.ResponseWriter, r *http.Request) {
	a.setApproval(w, r, domain.ApprovalRejected)
}

func (a *App) setApproval(w http.ResponseWriter, r *http.Request, status domain.ApprovalStatus) {
	id := chi.URLParam(r, "id")
	if err := a.Shoots.SetApproval(r.Context(), id, status); err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusOK, map[string]string{"id": id, "approval_status": string(status)})
}
