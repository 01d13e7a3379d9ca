// Package dispatch orchestrates generation attempts: it resolves the active
// provider, fans prompt variants out sequentially, and folds per-variant
// outcomes into the persisted job state.
package dispatch

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"lookbook/internal/domain"
	"lookbook/internal/prompt"
	"lookbook/internal/providers"
)

// variantSuffixes are appended to the base prompt, one per requested
// variant, so every attempt asks for a distinct framing of the same scene.
var variantSuffixes = []string{
	"Main hero shot.",
	"Alternative angle.",
	"Close-up detail view.",
	"Lifestyle context shot.",
}

const (
	// DefaultVariantCount is used when the caller does not ask for a
	// specific number of variants.
	DefaultVariantCount = 4

	// variationsPerSlide is fixed: every slide gets two renderings with
	// distinct seeds and the reviewer picks one.
	variationsPerSlide = 2

	allFailedMessage = "failed to generate any images"
)

// Dispatcher runs generation attempts against the currently configured
// provider. Calls to the provider are strictly sequential within one
// dispatch; upstream rate limits are unknown, so no requests race.
type Dispatcher struct {
	registry *providers.Registry
	exposes  domain.ExposeRepository
	shoots   domain.ShootRepository
	logger   zerolog.Logger
}

func New(registry *providers.Registry, exposes domain.ExposeRepository, shoots domain.ShootRepository, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		exposes:  exposes,
		shoots:   shoots,
		logger:   logger,
	}
}

// attempt records the outcome of one provider call. The full attempt list
// is computed before any folding so aggregation stays independent of I/O.
type attempt struct {
	prompt string
	url    string
	err    error
}

func successfulURLs(attempts []attempt) []string {
	urls := make([]string, 0, len(attempts))
	for _, a := range attempts {
		if a.err == nil {
			urls = append(urls, a.url)
		}
	}
	return urls
}

// VariantPrompts builds the n prompt variants for a base prompt.
func VariantPrompts(base string, n int) []string {
	base = strings.TrimSpace(base)
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		suffix := ""
		if i < len(variantSuffixes) {
			suffix = variantSuffixes[i]
		} else {
			suffix = fmt.Sprintf("Additional variation %d.", i+1)
		}
		out = append(out, base+" "+suffix)
	}
	return out
}

// DispatchExpose runs one full generation attempt for a single-artifact
// expose: compose, resolve, mark processing, fan out, fold. Validation,
// resolution, and the processing transition fail synchronously; per-variant
// provider failures never abort the batch.
func (d *Dispatcher) DispatchExpose(ctx context.Context, id string, count int) error {
	expose, err := d.exposes.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("load expose: %w", err)
	}
	if expose.Status == domain.StatusProcessing {
		return domain.ErrAttemptInFlight
	}
	base, err := composeFacets(expose.Facets)
	if err != nil {
		return err
	}
	gen, err := d.registry.ResolveImage(ctx)
	if err != nil {
		return err
	}
	if count <= 0 {
		count = DefaultVariantCount
	}

	if err := d.beginExposeAttempt(ctx, id, gen.Name()); err != nil {
		return err
	}

	attempts := d.runAttempts(ctx, gen, id, VariantPrompts(base, count))
	urls := successfulURLs(attempts)

	update := domain.ExposeUpdate{Variants: urls}
	if len(urls) > 0 {
		update.Status = statusPtr(domain.StatusCompleted)
		update.HeroImageURL = strPtr(urls[0])
		update.SelectedVariant = intPtr(0)
	} else {
		update.Status = statusPtr(domain.StatusError)
		update.ErrorMessage = strPtr(allFailedMessage)
	}
	if err := d.exposes.Update(ctx, id, update); err != nil {
		return fmt.Errorf("persist expose result: %w", err)
	}
	d.logger.Info().
		Str("expose_id", id).
		Str("provider", gen.Name()).
		Int("requested", count).
		Int("succeeded", len(urls)).
		Msg("dispatch: expose attempt finished")
	return nil
}

// DispatchSlides runs one attempt for a multi-slide expose. Slides are
// generated sequentially and fail independently; the job itself completes
// once every slide has been attempted.
func (d *Dispatcher) DispatchSlides(ctx context.Context, id string) error {
	expose, err := d.exposes.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("load expose: %w", err)
	}
	if expose.Status == domain.StatusProcessing {
		return domain.ErrAttemptInFlight
	}
	if len(expose.Slides) == 0 {
		return fmt.Errorf("expose has no slides: %w", domain.ErrEmptyPrompt)
	}
	gen, err := d.registry.ResolveImage(ctx)
	if err != nil {
		return err
	}
	base, _ := composeFacets(expose.Facets) // slides carry their own text; facets only add context

	if err := d.beginExposeAttempt(ctx, id, gen.Name()); err != nil {
		return err
	}

	slides := make([]domain.Slide, len(expose.Slides))
	copy(slides, expose.Slides)
	for i := range slides {
		d.generateSlide(ctx, gen, id, base, &slides[i])
	}

	hero := ""
	for _, s := range slides {
		if s.Status == domain.SlideStatusReady && len(s.Variations) > 0 {
			hero = s.Variations[0]
			break
		}
	}
	update := domain.ExposeUpdate{
		Status:       statusPtr(domain.StatusCompleted),
		HeroImageURL: strPtr(hero),
		Slides:       slides,
	}
	if err := d.exposes.Update(ctx, id, update); err != nil {
		return fmt.Errorf("persist slide results: %w", err)
	}
	d.logger.Info().
		Str("expose_id", id).
		Str("provider", gen.Name()).
		Int("slides", len(slides)).
		Msg("dispatch: slide attempt finished")
	return nil
}

// DispatchShoot generates photos for every view of a shoot session. Each
// produced photo starts in pending approval; reviewers decide later.
func (d *Dispatcher) DispatchShoot(ctx context.Context, sessionID string, variantsPerView int) error {
	session, err := d.shoots.GetSession(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	if session.Status == domain.StatusProcessing {
		return domain.ErrAttemptInFlight
	}
	base, err := composeFacets(session.Facets)
	if err != nil {
		return err
	}
	if len(session.Views) == 0 {
		return fmt.Errorf("session has no views: %w", domain.ErrEmptyPrompt)
	}
	gen, err := d.registry.ResolveImage(ctx)
	if err != nil {
		return err
	}
	if variantsPerView <= 0 {
		variantsPerView = 1
	}

	if err := d.shoots.UpdateSession(ctx, sessionID, domain.StatusProcessing, strPtr("")); err != nil {
		return fmt.Errorf("mark session processing: %w", err)
	}

	var photos []domain.GeneratedPhoto
	for _, view := range session.Views {
		prompts := VariantPrompts(viewPrompt(base, view), variantsPerView)
		attempts := d.runAttempts(ctx, gen, sessionID+"/"+view, prompts)
		for idx, a := range attempts {
			if a.err != nil {
				continue
			}
			photos = append(photos, domain.GeneratedPhoto{
				SessionID:      sessionID,
				View:           view,
				VariantIndex:   idx,
				URL:            a.url,
				ApprovalStatus: domain.ApprovalPending,
			})
		}
	}

	if len(photos) == 0 {
		if err := d.shoots.UpdateSession(ctx, sessionID, domain.StatusError, strPtr(allFailedMessage)); err != nil {
			return fmt.Errorf("persist session result: %w", err)
		}
		return nil
	}
	if err := d.shoots.SavePhotos(ctx, photos); err != nil {
		return fmt.Errorf("save photos: %w", err)
	}
	if err := d.shoots.UpdateSession(ctx, sessionID, domain.StatusCompleted, nil); err != nil {
		return fmt.Errorf("persist session result: %w", err)
	}
	d.logger.Info().
		Str("session_id", sessionID).
		Str("provider", gen.Name()).
		Int("photos", len(photos)).
		Msg("dispatch: shoot attempt finished")
	return nil
}

// beginExposeAttempt marks the record processing and clears the previous
// attempt's results so polling clients see the new attempt immediately.
func (d *Dispatcher) beginExposeAttempt(ctx context.Context, id, provider string) error {
	update := domain.ExposeUpdate{
		Status:          statusPtr(domain.StatusProcessing),
		HeroImageURL:    strPtr(""),
		Variants:        []string{},
		SelectedVariant: intPtr(0),
		ErrorMessage:    strPtr(""),
		Provider:        strPtr(provider),
	}
	if err := d.exposes.Update(ctx, id, update); err != nil {
		return fmt.Errorf("mark expose processing: %w", err)
	}
	return nil
}

// runAttempts issues one provider call per prompt, strictly in order. A
// failed call is logged and recorded; remaining prompts still run.
func (d *Dispatcher) runAttempts(ctx context.Context, gen providers.ImageGenerator, key string, prompts []string) []attempt {
	attempts := make([]attempt, 0, len(prompts))
	for i, p := range prompts {
		url, err := gen.GenerateImage(ctx, providers.ImageRequest{
			Prompt: p,
			Seed:   deterministicSeed(key, p, i),
		})
		if err != nil {
			d.logger.Warn().Err(err).
				Str("record", key).
				Int("variant", i).
				Str("provider", gen.Name()).
				Msg("dispatch: variant failed")
		}
		attempts = append(attempts, attempt{prompt: p, url: url, err: err})
	}
	return attempts
}

func (d *Dispatcher) generateSlide(ctx context.Context, gen providers.ImageGenerator, exposeID, base string, slide *domain.Slide) {
	text := strings.TrimSpace(slide.Text)
	if text == "" {
		if tg, ok := gen.(providers.TextGenerator); ok {
			generated, err := tg.GenerateText(ctx, providers.TextRequest{
				Prompt:  fmt.Sprintf("Write a short caption for slide %d of a fashion campaign deck.", slide.Position+1),
				Context: base,
			})
			if err != nil {
				d.failSlide(slide, exposeID, err)
				return
			}
			text = generated
			slide.Text = generated
		} else {
			d.failSlide(slide, exposeID, domain.ErrEmptyPrompt)
			return
		}
	}

	slidePrompt := text
	if base != "" {
		slidePrompt = base + " " + ensureSentence(text)
	}
	variations := make([]string, 0, variationsPerSlide)
	for i := 0; i < variationsPerSlide; i++ {
		url, err := gen.GenerateImage(ctx, providers.ImageRequest{
			Prompt: slidePrompt,
			Seed:   deterministicSeed(exposeID, slidePrompt, slide.Position, i),
		})
		if err != nil {
			d.failSlide(slide, exposeID, err)
			return
		}
		variations = append(variations, url)
	}
	slide.Variations = variations
	slide.SelectedVariation = 0
	slide.Status = domain.SlideStatusReady
	slide.ErrorMessage = ""
}

func (d *Dispatcher) failSlide(slide *domain.Slide, exposeID string, err error) {
	d.logger.Warn().Err(err).
		Str("expose_id", exposeID).
		Int("slide", slide.Position).
		Msg("dispatch: slide failed")
	slide.Status = domain.SlideStatusError
	slide.ErrorMessage = err.Error()
	slide.Variations = nil
}

func composeFacets(raw []byte) (string, error) {
	if len(raw) == 0 {
		return "", domain.ErrEmptyPrompt
	}
	var facets prompt.Facets
	if err := json.Unmarshal(raw, &facets); err != nil {
		return "", fmt.Errorf("decode facets: %w", err)
	}
	composed := prompt.Compose(facets)
	if composed == "" {
		return "", domain.ErrEmptyPrompt
	}
	return composed, nil
}

func viewPrompt(base, view string) string {
	view = strings.TrimSpace(view)
	if view == "" {
		return base
	}
	return base + " " + strings.ToUpper(view[:1]) + view[1:] + " view."
}

func ensureSentence(s string) string {
	if strings.HasSuffix(s, ".") || strings.HasSuffix(s, "!") || strings.HasSuffix(s, "?") {
		return s
	}
	return s + "."
}

// deterministicSeed derives a stable positive seed from the attempt inputs
// so retried dispatches reproduce the same renderings.
func deterministicSeed(values ...any) int {
	if len(values) == 0 {
		return 0
	}
	parts := make([]string, 0, len(values))
	for _, v := range values {
		parts = append(parts, fmt.Sprint(v))
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	n := binary.BigEndian.Uint32(sum[:4]) % 2147483647
	if n == 0 {
		n = 1
	}
	return int(n)
}

func statusPtr(s domain.GenerationStatus) *domain.GenerationStatus { return &s }
func strPtr(s string) *string                                      { return &s }
func intPtr(i int) *int                                            { return &i }
