package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"lookbook/internal/dispatch"
	"lookbook/internal/domain"
	"lookbook/internal/http/handlers"
	"lookbook/internal/providers"
)

type memExposes struct {
	mu      sync.Mutex
	seq     int
	records map[string]*domain.Expose
}

func newMemExposes() *memExposes {
	return &memExposes{records: map[string]*domain.Expose{}}
}

func (m *memExposes) Create(_ context.Context, expose *domain.Expose) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if expose.ID == "" {
		m.seq++
		expose.ID = fmt.Sprintf("expose-%d", m.seq)
	}
	clone := *expose
	m.records[expose.ID] = &clone
	return nil
}

func (m *memExposes) Update(_ context.Context, id string, update domain.ExposeUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	record, ok := m.records[id]
	if !ok {
		return domain.ErrNotFound
	}
	if update.Status != nil {
		record.Status = *update.Status
	}
	if update.HeroImageURL != nil {
		record.HeroImageURL = *update.HeroImageURL
	}
	if update.Variants != nil {
		record.Variants = update.Variants
	}
	if update.SelectedVariant != nil {
		record.SelectedVariant = *update.SelectedVariant
	}
	if update.ErrorMessage != nil {
		record.ErrorMessage = *update.ErrorMessage
	}
	if update.Slides != nil {
		record.Slides = update.Slides
	}
	if update.Provider != nil {
		record.Provider = *update.Provider
	}
	return nil
}

func (m *memExposes) GetByID(_ context.Context, id string) (*domain.Expose, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	record, ok := m.records[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *record
	return &clone, nil
}

func (m *memExposes) MarkStaleProcessing(context.Context, time.Duration, string) (int, error) {
	return 0, nil
}

type memShoots struct {
	mu       sync.Mutex
	seq      int
	sessions map[string]*domain.ShootSession
	photos   map[string]*domain.GeneratedPhoto
}

func newMemShoots() *memShoots {
	return &memShoots{
		sessions: map[string]*domain.ShootSession{},
		photos:   map[string]*domain.GeneratedPhoto{},
	}
}

func (m *memShoots) CreateSession(_ context.Context, session *domain.ShootSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if session.ID == "" {
		m.seq++
		session.ID = fmt.Sprintf("session-%d", m.seq)
	}
	clone := *session
	m.sessions[session.ID] = &clone
	return nil
}

func (m *memShoots) UpdateSession(_ context.Context, id string, status domain.GenerationStatus, errMsg *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[id]
	if !ok {
		return domain.ErrNotFound
	}
	session.Status = status
	if errMsg != nil {
		session.ErrorMessage = *errMsg
	}
	return nil
}

func (m *memShoots) GetSession(_ context.Context, id string) (*domain.ShootSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *session
	return &clone, nil
}

func (m *memShoots) SavePhotos(_ context.Context, photos []domain.GeneratedPhoto) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range photos {
		if photos[i].ID == "" {
			m.seq++
			photos[i].ID = fmt.Sprintf("photo-%d", m.seq)
		}
		clone := photos[i]
		m.photos[clone.ID] = &clone
	}
	return nil
}

func (m *memShoots) ListPhotos(_ context.Context, sessionID string) ([]domain.GeneratedPhoto, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.GeneratedPhoto
	for _, p := range m.photos {
		if p.SessionID == sessionID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *memShoots) SetApproval(_ context.Context, photoID string, status domain.ApprovalStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	photo, ok := m.photos[photoID]
	if !ok {
		return domain.ErrNotFound
	}
	photo.ApprovalStatus = status
	return nil
}

type memSettings struct {
	mu     sync.Mutex
	values map[string]string
}

func newMemSettings() *memSettings {
	return &memSettings{values: map[string]string{}}
}

func (m *memSettings) Get(_ context.Context, name string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.values[name]
	if !ok {
		return "", domain.ErrNotFound
	}
	return value, nil
}

func (m *memSettings) Set(_ context.Context, name, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[name] = value
	return nil
}

type fixedImage struct{}

func (fixedImage) Name() string { return "fixed" }
func (fixedImage) GenerateImage(context.Context, providers.ImageRequest) (string, error) {
	return "https://cdn.example.com/fixed.png", nil
}

type fixture struct {
	handler  http.Handler
	exposes  *memExposes
	shoots   *memShoots
	settings *memSettings
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	exposes := newMemExposes()
	shoots := newMemShoots()
	settings := newMemSettings()
	registry := providers.NewRegistry(settings)
	registry.Register("fixed", fixedImage{})
	dispatcher := dispatch.New(registry, exposes, shoots, zerolog.Nop())
	app := handlers.NewApp(zerolog.Nop(), exposes, shoots, settings, registry, dispatcher)
	return &fixture{
		handler:  NewRouter(app, Options{}),
		exposes:  exposes,
		shoots:   shoots,
		settings: settings,
	}
}

func (f *fixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	f.handler.ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("body not json: %v (%s)", err, rr.Body.String())
	}
	return out
}

func TestExposeCreateAndGet(t *testing.T) {
	f := newFixture(t)

	rr := f.do(t, http.MethodPost, "/v1/exposes", `{"facets":{"scene":"studio"},"slides":[{"text":"Opening"},{"text":""}]}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create status = %d, want 201 (%s)", rr.Code, rr.Body.String())
	}
	created := decodeBody(t, rr)
	id, _ := created["id"].(string)
	if id == "" {
		t.Fatalf("create response has no id: %v", created)
	}
	if created["status"] != string(domain.StatusDraft) {
		t.Fatalf("status = %v, want draft", created["status"])
	}

	rr = f.do(t, http.MethodGet, "/v1/exposes/"+id, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("get status = %d, want 200", rr.Code)
	}
	got := decodeBody(t, rr)
	if got["id"] != id {
		t.Fatalf("get id = %v, want %s", got["id"], id)
	}
}

func TestExposeGetUnknown(t *testing.T) {
	f := newFixture(t)
	rr := f.do(t, http.MethodGet, "/v1/exposes/nope", "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rr.Code)
	}
	if body := decodeBody(t, rr); body["error"] != "not_found" {
		t.Fatalf("error code = %v, want not_found", body["error"])
	}
}

func TestExposeGenerateWithoutProvider(t *testing.T) {
	f := newFixture(t)
	rr := f.do(t, http.MethodPost, "/v1/exposes", `{"facets":{"scene":"studio"}}`)
	id := decodeBody(t, rr)["id"].(string)

	rr = f.do(t, http.MethodPost, "/v1/exposes/"+id+"/generate", "")
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503 when ai_provider is unset (%s)", rr.Code, rr.Body.String())
	}
	if body := decodeBody(t, rr); body["error"] != "provider_unavailable" {
		t.Fatalf("error code = %v, want provider_unavailable", body["error"])
	}
}

func TestExposeGenerateRunsToCompletion(t *testing.T) {
	f := newFixture(t)
	if err := f.settings.Set(context.Background(), providers.SettingAIProvider, "fixed"); err != nil {
		t.Fatalf("seed setting: %v", err)
	}
	rr := f.do(t, http.MethodPost, "/v1/exposes", `{"facets":{"scene":"studio"}}`)
	id := decodeBody(t, rr)["id"].(string)

	rr = f.do(t, http.MethodPost, "/v1/exposes/"+id+"/generate", `{"variants":2}`)
	if rr.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202 (%s)", rr.Code, rr.Body.String())
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		record, err := f.exposes.GetByID(context.Background(), id)
		if err != nil {
			t.Fatalf("GetByID: %v", err)
		}
		if record.Status.Terminal() {
			if record.Status != domain.StatusCompleted {
				t.Fatalf("status = %q (%s), want completed", record.Status, record.ErrorMessage)
			}
			if len(record.Variants) != 2 {
				t.Fatalf("variants = %d, want 2", len(record.Variants))
			}
			if record.HeroImageURL == "" {
				t.Fatalf("hero url empty after completion")
			}
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("dispatch never reached a terminal status (last %q)", record.Status)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestExposeSelectVariant(t *testing.T) {
	f := newFixture(t)
	expose := &domain.Expose{
		Status:   domain.StatusCompleted,
		Variants: []string{"https://cdn.example.com/a.png", "https://cdn.example.com/b.png"},
	}
	if err := f.exposes.Create(context.Background(), expose); err != nil {
		t.Fatalf("seed expose: %v", err)
	}

	rr := f.do(t, http.MethodPut, "/v1/exposes/"+expose.ID+"/selection", `{"index":5}`)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("out-of-range status = %d, want 422", rr.Code)
	}
	if body := decodeBody(t, rr); body["error"] != "invalid_selection" {
		t.Fatalf("error code = %v, want invalid_selection", body["error"])
	}

	rr = f.do(t, http.MethodPut, "/v1/exposes/"+expose.ID+"/selection", `{"index":1}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("selection status = %d, want 200 (%s)", rr.Code, rr.Body.String())
	}
	record, _ := f.exposes.GetByID(context.Background(), expose.ID)
	if record.SelectedVariant != 1 {
		t.Fatalf("selected variant = %d, want 1", record.SelectedVariant)
	}
	if record.HeroImageURL != "https://cdn.example.com/b.png" {
		t.Fatalf("hero = %q, want selected variant url", record.HeroImageURL)
	}
}

func TestPromptPreview(t *testing.T) {
	f := newFixture(t)
	rr := f.do(t, http.MethodPost, "/v1/prompts/preview", `{"scene":"rooftop","theme":"streetwear"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	body := decodeBody(t, rr)
	if body["prompt"] != "Scene: rooftop. Theme: streetwear." {
		t.Fatalf("prompt = %v", body["prompt"])
	}
}

func TestSettingPutProvider(t *testing.T) {
	f := newFixture(t)

	rr := f.do(t, http.MethodPut, "/v1/admin/settings/ai_provider", `{"value":"unknown-backend"}`)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("unknown provider status = %d, want 422", rr.Code)
	}

	rr = f.do(t, http.MethodPut, "/v1/admin/settings/ai_provider", `{"value":" Fixed "}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (%s)", rr.Code, rr.Body.String())
	}
	value, err := f.settings.Get(context.Background(), providers.SettingAIProvider)
	if err != nil || value != "fixed" {
		t.Fatalf("persisted value = %q (%v), want fixed", value, err)
	}

	rr = f.do(t, http.MethodGet, "/v1/admin/settings/ai_provider", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("get status = %d, want 200", rr.Code)
	}
	body := decodeBody(t, rr)
	if body["value"] != "fixed" {
		t.Fatalf("value = %v, want fixed", body["value"])
	}
}

func TestPhotoApproval(t *testing.T) {
	f := newFixture(t)
	session := &domain.ShootSession{Status: domain.StatusCompleted, Views: []string{"front"}}
	if err := f.shoots.CreateSession(context.Background(), session); err != nil {
		t.Fatalf("seed session: %v", err)
	}
	photos := []domain.GeneratedPhoto{{
		SessionID:      session.ID,
		View:           "front",
		URL:            "https://cdn.example.com/p.png",
		ApprovalStatus: domain.ApprovalPending,
	}}
	if err := f.shoots.SavePhotos(context.Background(), photos); err != nil {
		t.Fatalf("seed photos: %v", err)
	}

	rr := f.do(t, http.MethodPost, "/v1/photos/"+photos[0].ID+"/approve", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("approve status = %d, want 200 (%s)", rr.Code, rr.Body.String())
	}
	stored, _ := f.shoots.ListPhotos(context.Background(), session.ID)
	if len(stored) != 1 || stored[0].ApprovalStatus != domain.ApprovalApproved {
		t.Fatalf("photos = %+v, want approved", stored)
	}

	rr = f.do(t, http.MethodPost, "/v1/photos/nope/reject", "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("reject unknown status = %d, want 404", rr.Code)
	}
}

func TestHealth(t *testing.T) {
	f := newFixture(t)
	rr := f.do(t, http.MethodGet, "/v1/healthz", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
}
