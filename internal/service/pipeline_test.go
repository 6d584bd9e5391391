package service

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/nkatz/stylist/internal/domain"
	"github.com/nkatz/stylist/internal/logger"
)

// routingChatServer answers intent and outfit completion calls with distinct
// canned payloads, routed on the system message, and counts each kind.
type routingChatServer struct {
	srv           *httptest.Server
	intentContent string
	outfitContent string
	intentCalls   int
	outfitCalls   int
}

func newRoutingChatServer(t *testing.T) *routingChatServer {
	t.Helper()
	s := &routingChatServer{}
	s.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Messages) == 0 {
			t.Errorf("malformed chat request: %v", err)
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}

		content := s.outfitContent
		if strings.Contains(req.Messages[0].Content, "Extract one of the following") {
			s.intentCalls++
			content = s.intentContent
		} else {
			s.outfitCalls++
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": content}},
			},
		})
	}))
	t.Cleanup(s.srv.Close)
	return s
}

func fourOutfitArray() string {
	return "[" + strings.Join([]string{
		outfitJSON("City Stroll"),
		outfitJSON("Gallery Night"),
		outfitJSON("Cafe Casual"),
		outfitJSON("Rooftop Dinner"),
	}, ",") + "]"
}

// pipelineFixture wires a full pipeline against fake providers.
type pipelineFixture struct {
	chat    *routingChatServer
	weather *fakeWeatherProvider
	search  *countingSearchServer
	photos  *httptest.Server
	svc     *PipelineService
}

// countingSearchServer serves one CSE item per request and counts calls.
// The counter is atomic; product resolution hits it from concurrent tasks.
// failOn makes only queries containing that substring fail.
type countingSearchServer struct {
	srv    *httptest.Server
	calls  atomic.Int32
	fail   bool
	failOn string
}

func newCountingSearchServer(t *testing.T) *countingSearchServer {
	t.Helper()
	s := &countingSearchServer{}
	s.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.calls.Add(1)
		if s.fail || (s.failOn != "" && strings.Contains(r.URL.Query().Get("q"), s.failOn)) {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"items": []map[string]interface{}{
				searchItemJSON("Linen Shirt | Zara", "https://www.zara.com/item", "A shirt for $49.90",
					cseImagePagemap("https://img.zara.com/1.jpg")),
			},
		})
	}))
	t.Cleanup(s.srv.Close)
	return s
}

func newPipelineFixture(t *testing.T) *pipelineFixture {
	t.Helper()

	chat := newRoutingChatServer(t)
	weather := newFakeWeatherProvider(t)
	search := newCountingSearchServer(t)

	photoSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"results":[{"urls":{"regular":"https://images.example.com/stock.jpg"}}]}`)
	}))
	t.Cleanup(photoSrv.Close)

	llmCfg := &LLMConfig{Model: "gpt-3.5-turbo", APIKey: "k", BaseURL: chat.srv.URL}
	photos := newTestPhotoService(photoSrv.URL)

	log := logger.New(&logger.Config{Level: "error", Output: io.Discard})

	svc := NewPipelineService(
		NewIntentService(llmCfg),
		weather.service(),
		NewOutfitService(llmCfg),
		newTestProductService(search.srv.URL, photos),
		log,
	)

	return &pipelineFixture{chat: chat, weather: weather, search: search, photos: photoSrv, svc: svc}
}

func TestPipeline_TravelFlow(t *testing.T) {
	f := newPipelineFixture(t)
	f.chat.intentContent = `{"type":"travel","destination":"Paris","date":"2026-09-03"}`
	f.chat.outfitContent = fourOutfitArray()
	f.weather.geoResults = parisGeoResults()
	f.weather.daily = dailySeries("2026-09-01", []int{0, 2, 61, 95})

	record := f.svc.Run(context.Background(), "What should I wear in Paris this week?")

	if record.Status != domain.StatusSuccess {
		t.Fatalf("expected success status, got %s (error %q)", record.Status, record.Error)
	}
	if record.Type != "travel" || record.Destination != "Paris" {
		t.Errorf("unexpected record identity: type=%q destination=%q", record.Type, record.Destination)
	}
	if record.Weather == nil || record.Weather.Date != "2026-09-03" {
		t.Fatalf("expected weather snapshot for 2026-09-03, got %+v", record.Weather)
	}
	if record.Date != "2026-09-03" {
		t.Errorf("expected record date 2026-09-03, got %q", record.Date)
	}
	if len(record.Outfits) != 4 {
		t.Fatalf("expected 4 outfits, got %d", len(record.Outfits))
	}
	for _, outfit := range record.Outfits {
		if len(outfit.Products) != 1 {
			t.Errorf("outfit %q: expected 1 product, got %d", outfit.Name, len(outfit.Products))
		}
		if outfit.Degraded {
			t.Errorf("outfit %q should not be degraded", outfit.Name)
		}
	}
	if f.chat.intentCalls != 1 || f.chat.outfitCalls != 1 {
		t.Errorf("expected 1 intent and 1 outfit call, got %d and %d", f.chat.intentCalls, f.chat.outfitCalls)
	}
	if got := f.search.calls.Load(); got != 4 {
		t.Errorf("expected 4 product searches, got %d", got)
	}
}

func TestPipeline_TravelFlowWithDateSubstitution(t *testing.T) {
	f := newPipelineFixture(t)
	f.chat.intentContent = `{"type":"travel","destination":"Paris","date":"2026-09-30"}`
	f.chat.outfitContent = fourOutfitArray()
	f.weather.geoResults = parisGeoResults()
	f.weather.daily = dailySeries("2026-09-01", make([]int, 14))

	record := f.svc.Run(context.Background(), "Paris at the end of the month")

	if record.Status != domain.StatusWarning {
		t.Fatalf("expected warning status, got %s", record.Status)
	}
	if record.Warning == "" || !strings.Contains(record.Warning, "nearest available date") {
		t.Errorf("expected substitution warning, got %q", record.Warning)
	}
	if record.Weather == nil || record.Weather.Date != "2026-09-14" {
		t.Fatalf("expected substituted date 2026-09-14, got %+v", record.Weather)
	}
	if len(record.Outfits) != 4 {
		t.Errorf("expected 4 outfits despite the warning, got %d", len(record.Outfits))
	}
}

func TestPipeline_EventFlowSkipsWeather(t *testing.T) {
	f := newPipelineFixture(t)
	f.chat.intentContent = `{"type":"event","event":"baby shower"}`
	f.chat.outfitContent = fourOutfitArray()

	record := f.svc.Run(context.Background(), "I'm going to a baby shower")

	if record.Status != domain.StatusSuccess {
		t.Fatalf("expected success status, got %s (error %q)", record.Status, record.Error)
	}
	if record.Type != "event" || record.Event != "baby shower" {
		t.Errorf("unexpected record identity: type=%q event=%q", record.Type, record.Event)
	}
	if record.Weather != nil {
		t.Error("event flow should carry no weather snapshot")
	}
	if f.weather.geoCalls != 0 || f.weather.forecastCalls != 0 {
		t.Errorf("event flow must not touch weather providers, got geo=%d forecast=%d",
			f.weather.geoCalls, f.weather.forecastCalls)
	}
	if len(record.Outfits) != 4 {
		t.Errorf("expected 4 outfits, got %d", len(record.Outfits))
	}
}

func TestPipeline_ThematicFlow(t *testing.T) {
	f := newPipelineFixture(t)
	f.chat.intentContent = `{"type":"movie","reference":"Blade Runner"}`
	f.chat.outfitContent = fourOutfitArray()

	record := f.svc.Run(context.Background(), "Dress me like Blade Runner")

	if record.Status != domain.StatusSuccess {
		t.Fatalf("expected success status, got %s", record.Status)
	}
	if record.Type != "movie" || record.Reference != "Blade Runner" {
		t.Errorf("unexpected record identity: type=%q reference=%q", record.Type, record.Reference)
	}
	if f.weather.geoCalls != 0 {
		t.Errorf("thematic flow must not geocode, got %d calls", f.weather.geoCalls)
	}
}

func TestPipeline_EmptyMessage(t *testing.T) {
	f := newPipelineFixture(t)

	record := f.svc.Run(context.Background(), "   ")

	if record.Status != domain.StatusError {
		t.Fatalf("expected error status, got %s", record.Status)
	}
	if record.Type != "error" {
		t.Errorf("expected type error, got %q", record.Type)
	}
	if record.Error != ErrEmptyInput.Error() {
		t.Errorf("expected %q, got %q", ErrEmptyInput.Error(), record.Error)
	}
	if record.ID == "" {
		t.Error("error record must still carry a run ID")
	}
	if f.chat.intentCalls != 0 || f.chat.outfitCalls != 0 || f.search.calls.Load() != 0 {
		t.Error("no provider calls expected for empty input")
	}
}

func TestPipeline_LocationNotFound(t *testing.T) {
	f := newPipelineFixture(t)
	f.chat.intentContent = `{"type":"travel","destination":"Atlantis","date":"2026-09-03"}`
	f.weather.geoResults = nil

	record := f.svc.Run(context.Background(), "Trip to Atlantis next week")

	if record.Status != domain.StatusError {
		t.Fatalf("expected error status, got %s", record.Status)
	}
	if !strings.Contains(record.Error, "location not found") {
		t.Errorf("expected location error, got %q", record.Error)
	}
	if f.weather.forecastCalls != 0 {
		t.Errorf("forecast must not be called after a geocoding miss, got %d", f.weather.forecastCalls)
	}
	if f.chat.outfitCalls != 0 {
		t.Errorf("outfit generation must not run after an aborted resolution, got %d", f.chat.outfitCalls)
	}
}

func TestPipeline_DegradedWhenNoOutfits(t *testing.T) {
	f := newPipelineFixture(t)
	f.chat.intentContent = `{"type":"event","event":"gala"}`
	f.chat.outfitContent = "Sorry, I cannot produce outfits right now."

	record := f.svc.Run(context.Background(), "gala outfit please")

	if record.Status != domain.StatusSuccess {
		t.Fatalf("expected success status, got %s", record.Status)
	}
	if !record.OutfitsDegraded {
		t.Error("expected OutfitsDegraded flag")
	}
	if record.Outfits == nil || len(record.Outfits) != 0 {
		t.Errorf("expected empty non-nil outfit list, got %+v", record.Outfits)
	}
	if got := f.search.calls.Load(); got != 0 {
		t.Errorf("no product searches expected with zero outfits, got %d", got)
	}
}

func TestPipeline_RunLogsThroughInjectedLogger(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(&logger.Config{Level: "info", Format: "json", Output: &buf})

	// Empty input aborts before any service is touched, so nil
	// collaborators are fine here.
	svc := NewPipelineService(nil, nil, nil, nil, log)

	record := svc.Run(context.Background(), "  ")
	if record.Status != domain.StatusError {
		t.Fatalf("expected error status, got %s", record.Status)
	}

	out := buf.String()
	if !strings.Contains(out, "Pipeline run completed") {
		t.Errorf("expected completion log on the injected logger, got %q", out)
	}
	if !strings.Contains(out, record.ID) {
		t.Errorf("expected run ID %s in the injected logger output, got %q", record.ID, out)
	}
}

func TestPipeline_OneOutfitFailureDegradesOnlyItself(t *testing.T) {
	f := newPipelineFixture(t)
	f.chat.intentContent = `{"type":"event","event":"wedding"}`
	f.chat.outfitContent = fourOutfitArray()
	f.search.failOn = "Gallery Night"

	record := f.svc.Run(context.Background(), "wedding guest look")

	if record.Status != domain.StatusSuccess {
		t.Fatalf("expected success status, got %s", record.Status)
	}
	if len(record.Outfits) != 4 {
		t.Fatalf("expected 4 outfits, got %d", len(record.Outfits))
	}
	for _, outfit := range record.Outfits {
		if outfit.Name == "Gallery Night" {
			if !outfit.Degraded || len(outfit.Products) != 1 || !outfit.Products[0].Placeholder {
				t.Errorf("failing outfit should degrade to a placeholder, got %+v", outfit)
			}
			continue
		}
		if outfit.Degraded {
			t.Errorf("outfit %q degraded by a sibling's failure", outfit.Name)
		}
		if len(outfit.Products) != 1 || outfit.Products[0].Placeholder {
			t.Errorf("outfit %q: expected 1 real product, got %+v", outfit.Name, outfit.Products)
		}
	}
}

func TestPipeline_ProductFailureDegradesNotAborts(t *testing.T) {
	f := newPipelineFixture(t)
	f.chat.intentContent = `{"type":"event","event":"wedding"}`
	f.chat.outfitContent = fourOutfitArray()
	f.search.fail = true

	record := f.svc.Run(context.Background(), "wedding guest look")

	if record.Status != domain.StatusSuccess {
		t.Fatalf("expected success status despite product failures, got %s", record.Status)
	}
	if len(record.Outfits) != 4 {
		t.Fatalf("expected 4 outfits, got %d", len(record.Outfits))
	}
	for _, outfit := range record.Outfits {
		if !outfit.Degraded {
			t.Errorf("outfit %q: expected degraded flag", outfit.Name)
		}
		if len(outfit.Products) != 1 || !outfit.Products[0].Placeholder {
			t.Errorf("outfit %q: expected single placeholder product, got %+v", outfit.Name, outfit.Products)
		}
	}
}
