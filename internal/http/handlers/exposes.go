package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"lookbook/internal/dispatch"
	"lookbook/internal/domain"
	"lookbook/internal/prompt"
)

type exposeCreateRequest struct {
	Facets prompt.Facets `json:"facets"`
	Slides []struct {
		Text string `json:"text"`
	} `json:"slides"`
}

type exposeGenerateRequest struct {
	Variants int `json:"variants"`
}

type selectionRequest struct {
	Index int `json:"index"`
}

type exposeResponse struct {
	ID              string         `json:"id"`
	Status          string         `json:"status"`
	HeroImageURL    string         `json:"hero_image_url,omitempty"`
	Variants        []string       `json:"variants"`
	SelectedVariant int            `json:"selected_variant"`
	ErrorMessage    string         `json:"error_message,omitempty"`
	Slides          []domain.Slide `json:"slides,omitempty"`
	Provider        string         `json:"provider,omitempty"`
}

func exposeView(e *domain.Expose) exposeResponse {
	variants := e.Variants
	if variants == nil {
		variants = []string{}
	}
	return exposeResponse{
		ID:              e.ID,
		Status:          string(e.Status),
		HeroImageURL:    e.HeroImageURL,
		Variants:        variants,
		SelectedVariant: e.SelectedVariant,
		ErrorMessage:    e.ErrorMessage,
		Slides:          e.Slides,
		Provider:        e.Provider,
	}
}

// ExposesCreate stores a draft expose from structured facets.
func (a *App) ExposesCreate(w http.ResponseWriter, r *http.Request) {
	var req exposeCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	facets, err := json.Marshal(req.Facets)
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid facets")
		return
	}
	expose := &domain.Expose{
		Status: domain.StatusDraft,
		Facets: facets,
	}
	for i, s := range req.Slides {
		expose.Slides = append(expose.Slides, domain.Slide{
			Position: i,
			Text:     s.Text,
			Status:   domain.SlideStatusPending,
		})
	}
	if err := a.Exposes.Create(r.Context(), expose); err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusCreated, exposeView(expose))
}

// ExposesGenerate starts one generation attempt. Validation, provider
// resolution, and the processing transition happen before the response;
// the sequential fan-out continues in the background and polling clients
// observe the outcome through ExposeGet.
func (a *App) ExposesGenerate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req exposeGenerateRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
			return
		}
	}
	count := req.Variants
	if count <= 0 {
		count = dispatch.DefaultVariantCount
	}
	if err := a.preflightExpose(r, id); err != nil {
		a.domainError(w, err)
		return
	}
	go func() {
		if err := a.Dispatcher.DispatchExpose(context.Background(), id, count); err != nil {
			a.Logger.Error().Err(err).Str("expose_id", id).Msg("handler: expose dispatch failed")
		}
	}()
	a.json(w, http.StatusAccepted, map[string]string{"id": id, "status": string(domain.StatusProcessing)})
}

// SlidesGenerate starts one multi-slide generation attempt.
func (a *App) SlidesGenerate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	expose, err := a.Exposes.GetByID(r.Context(), id)
	if err != nil {
		a.domainError(w, err)
		return
	}
	if expose.Status == domain.StatusProcessing {
		a.domainError(w, domain.ErrAttemptInFlight)
		return
	}
	if len(expose.Slides) == 0 {
		a.error(w, http.StatusUnprocessableEntity, "no_slides", "expose has no slides")
		return
	}
	if _, err := a.Registry.ResolveImage(r.Context()); err != nil {
		a.domainError(w, err)
		return
	}
	go func() {
		if err := a.Dispatcher.DispatchSlides(context.Background(), id); err != nil {
			a.Logger.Error().Err(err).Str("expose_id", id).Msg("handler: slide dispatch failed")
		}
	}()
	a.json(w, http.StatusAccepted, map[string]string{"id": id, "status": string(domain.StatusProcessing)})
}

// ExposeGet is the poll read: clients re-fetch until status is terminal.
func (a *App) ExposeGet(w http.ResponseWriter, r *http.Request) {
	expose, err := a.Exposes.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusOK, exposeView(expose))
}

// ExposeSelectVariant records the reviewer's variant choice.
func (a *App) ExposeSelectVariant(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req selectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	expose, err := a.Exposes.GetByID(r.Context(), id)
	if err != nil {
		a.domainError(w, err)
		return
	}
	if req.Index < 0 || req.Index >= len(expose.Variants) {
		a.domainError(w, domain.ErrInvalidSelection)
		return
	}
	index := req.Index
	hero := expose.Variants[index]
	update := domain.ExposeUpdate{SelectedVariant: &index, HeroImageURL: &hero}
	if err := a.Exposes.Update(r.Context(), id, update); err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{"id": id, "selected_variant": index})
}

// PromptPreview composes a prompt from facets without dispatching, using
// the same composer as the dispatcher so previews are exact.
func (a *App) PromptPreview(w http.ResponseWriter, r *http.Request) {
	var facets prompt.Facets
	if err := json.NewDecoder(r.Body).Decode(&facets); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	a.json(w, http.StatusOK, map[string]string{"prompt": prompt.Compose(facets)})
}

// preflightExpose surfaces fatal categories synchronously: missing record,
// empty prompt, unresolvable provider. Anything past these is the
// background dispatch's to report through the record itself.
func (a *App) preflightExpose(r *http.Request, id string) error {
	expose, err := a.Exposes.GetByID(r.Context(), id)
	if err != nil {
		return err
	}
	if expose.Status == domain.StatusProcessing {
		return domain.ErrAttemptInFlight
	}
	var facets prompt.Facets
	if err := json.Unmarshal(expose.Facets, &facets); err != nil {
		return domain.ErrEmptyPrompt
	}
	if prompt.Compose(facets) == "" {
		return domain.ErrEmptyPrompt
	}
	if _, err := a.Registry.ResolveImage(r.Context()); err != nil {
		return err
	}
	return nil
}
