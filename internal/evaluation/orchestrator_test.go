package evaluation

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"brandai/backend/internal/ai"
	"brandai/backend/internal/catalog"
	"brandai/backend/internal/failure"
	"brandai/backend/internal/imagen"
	"brandai/backend/internal/vision"
)

type mockAnalyzer struct {
	analysis vision.Analysis
	err      error
	calls    int
}

func (m *mockAnalyzer) Analyze(_ context.Context, _ []byte) (vision.Analysis, error) {
	m.calls++
	return m.analysis, m.err
}

type mockCritic struct {
	critique ai.Critique
	err      error
	calls    int
	last     ai.Request
}

func (m *mockCritic) Critique(_ context.Context, req ai.Request) (ai.Critique, error) {
	m.calls++
	m.last = req
	return m.critique, m.err
}

type mockGenerator struct {
	image  imagen.Image
	err    error
	prompt string
	calls  int
}

func (m *mockGenerator) Regenerate(_ context.Context, prompt string) (imagen.Image, error) {
	m.calls++
	m.prompt = prompt
	return m.image, m.err
}

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) Observe(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) stages() []Stage {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Stage, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Stage)
	}
	return out
}

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.FromRecords([]catalog.BrandRecord{
		{Key: "cocacola", BrandName: "Coca-Cola", ColorPaletteHex: []string{"#f40009"}},
		{Key: "nike", BrandName: "Nike", ColorPaletteHex: []string{"#111111"}},
	})
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	return c
}

func logoAnalysis(description string) vision.Analysis {
	return vision.Analysis{
		DetectedLogo:   &vision.DetectedLogo{Description: description, Confidence: 0.9},
		SafetyRatings:  map[string]string{"adult": "VERY_UNLIKELY"},
		DominantColors: []vision.ColorSwatch{{Hex: "#f40009", PixelFraction: 0.5}},
	}
}

func sampleCritique() ai.Critique {
	return ai.Critique{
		Scorecard: ai.Scorecard{
			BrandAlignment: ai.Dimension{Score: 0.9, Feedback: "On brand."},
			OverallScore:   0.8,
			Strengths:      []string{"color"},
			WhatToImprove:  []string{"copy"},
		},
		RefinementPlan: "A red can on a sunny beach.",
	}
}

var jpegBytes = []byte{0xff, 0xd8, 0xff, 0xe0, 0x00, 0x10, 'J', 'F', 'I', 'F'}

func TestEvaluateHappyPath(t *testing.T) {
	analyzer := &mockAnalyzer{analysis: logoAnalysis("The Coca-Cola Company")}
	critic := &mockCritic{critique: sampleCritique()}
	events := &recorder{}
	o := New(Deps{Catalog: testCatalog(t), Analyzer: analyzer, Critic: critic, Observer: events})
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	o.now = func() time.Time { return fixed }

	ctx := WithRequestID(context.Background(), "req-1")
	result, err := o.Evaluate(ctx, Upload{Data: jpegBytes, ContentType: "image/jpeg", Filename: "ad.jpg"})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if result.BrandDetected != "cocacola" || result.BrandName != "Coca-Cola" {
		t.Fatalf("unexpected brand %s/%s", result.BrandDetected, result.BrandName)
	}
	if result.OriginalImage != "data:image/jpeg;base64,"+base64.StdEncoding.EncodeToString(jpegBytes) {
		t.Fatalf("unexpected original image %s", result.OriginalImage)
	}
	if result.RefinementPlan != "A red can on a sunny beach." || result.Scorecard.OverallScore != 0.8 {
		t.Fatalf("critique not propagated: %+v", result)
	}
	if result.Timestamp != "2026-03-01T12:00:00Z" {
		t.Fatalf("unexpected timestamp %s", result.Timestamp)
	}
	if result.VisionAnalysis.DetectedLogo.Description != "The Coca-Cola Company" {
		t.Fatalf("vision analysis not propagated")
	}
	if critic.last.Brand.Key != "cocacola" || critic.last.MIMEType != "image/jpeg" {
		t.Fatalf("critic received %+v", critic.last)
	}

	want := []Stage{StageReceived, StageVisionAnalyzed, StageBrandResolved, StageCritiqued, StageAssembled}
	got := events.stages()
	if len(got) != len(want) {
		t.Fatalf("expected stages %v got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected stages %v got %v", want, got)
		}
	}
	if events.events[0].RequestID != "req-1" || events.events[4].Brand != "cocacola" {
		t.Fatalf("unexpected event metadata %+v", events.events)
	}
}

func TestEvaluateNoLogoSkipsCritique(t *testing.T) {
	tests := []struct {
		name     string
		analysis vision.Analysis
	}{
		{"no logo", vision.Analysis{}},
		{"blank description", vision.Analysis{DetectedLogo: &vision.DetectedLogo{Description: "  "}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			critic := &mockCritic{critique: sampleCritique()}
			o := New(Deps{Catalog: testCatalog(t), Analyzer: &mockAnalyzer{analysis: tc.analysis}, Critic: critic})
			result, err := o.Evaluate(context.Background(), Upload{Data: jpegBytes})
			if result != nil {
				t.Fatalf("expected no result")
			}
			if !errors.Is(err, failure.ErrBrandNotDetected) || !failure.IsNotFound(err) {
				t.Fatalf("expected brand not detected got %v", err)
			}
			if critic.calls != 0 {
				t.Fatalf("critique must not be called")
			}
		})
	}
}

func TestEvaluateUnsupportedBrandListsKeys(t *testing.T) {
	critic := &mockCritic{critique: sampleCritique()}
	o := New(Deps{Catalog: testCatalog(t), Analyzer: &mockAnalyzer{analysis: logoAnalysis("Adidas")}, Critic: critic})
	_, err := o.Evaluate(context.Background(), Upload{Data: jpegBytes})
	var unsupported *failure.BrandUnsupportedError
	if !errors.As(err, &unsupported) {
		t.Fatalf("expected BrandUnsupportedError got %v", err)
	}
	if unsupported.Description != "Adidas" || len(unsupported.Supported) != 2 {
		t.Fatalf("unexpected error fields %+v", unsupported)
	}
	if !strings.Contains(err.Error(), `"cocacola", "nike"`) {
		t.Fatalf("message must list supported keys: %s", err)
	}
	if critic.calls != 0 {
		t.Fatalf("critique must not be called")
	}
}

func TestEvaluateMalformedCritiqueReturnsNoResult(t *testing.T) {
	critic := &mockCritic{err: &failure.MalformedCritiqueError{Reason: "refinement_plan missing"}}
	events := &recorder{}
	o := New(Deps{Catalog: testCatalog(t), Analyzer: &mockAnalyzer{analysis: logoAnalysis("Nike")}, Critic: critic, Observer: events})
	result, err := o.Evaluate(context.Background(), Upload{Data: jpegBytes})
	if result != nil {
		t.Fatalf("expected nil result")
	}
	if !errors.Is(err, failure.ErrMalformedCritique) {
		t.Fatalf("expected malformed critique got %v", err)
	}
	stages := events.stages()
	if stages[len(stages)-1] != StageFailed {
		t.Fatalf("expected a failed event, got %v", stages)
	}
}

func TestEvaluateUpstreamAndInputFailures(t *testing.T) {
	tests := []struct {
		name   string
		deps   Deps
		upload Upload
		want   error
	}{
		{"empty upload", Deps{Analyzer: &mockAnalyzer{}}, Upload{}, failure.ErrInvalidInput},
		{"vision failure", Deps{Analyzer: &mockAnalyzer{err: failure.Vision(errors.New("quota"))}}, Upload{Data: jpegBytes}, failure.ErrUpstreamVision},
		{"no analyzer", Deps{}, Upload{Data: jpegBytes}, failure.ErrUpstreamVision},
		{"no critic", Deps{Analyzer: &mockAnalyzer{analysis: logoAnalysis("Nike")}}, Upload{Data: jpegBytes}, failure.ErrUpstreamCritique},
		{"critic failure", Deps{Analyzer: &mockAnalyzer{analysis: logoAnalysis("Nike")}, Critic: &mockCritic{err: failure.Critique(errors.New("503"))}}, Upload{Data: jpegBytes}, failure.ErrUpstreamCritique},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.deps.Catalog = testCatalog(t)
			result, err := New(tc.deps).Evaluate(context.Background(), tc.upload)
			if result != nil || !errors.Is(err, tc.want) {
				t.Fatalf("expected %v with nil result, got %v / %+v", tc.want, err, result)
			}
		})
	}
}

func TestEvaluateSniffsMissingContentType(t *testing.T) {
	o := New(Deps{Catalog: testCatalog(t), Analyzer: &mockAnalyzer{analysis: logoAnalysis("Nike")}, Critic: &mockCritic{critique: sampleCritique()}})
	result, err := o.Evaluate(context.Background(), Upload{Data: jpegBytes, ContentType: "application/octet-stream"})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if !strings.HasPrefix(result.OriginalImage, "data:image/jpeg;base64,") {
		t.Fatalf("expected sniffed jpeg, got %s", result.OriginalImage[:30])
	}
}

func TestRegenerate(t *testing.T) {
	generator := &mockGenerator{image: imagen.Image{Data: []byte("png"), MIMEType: "image/png"}}
	events := &recorder{}
	o := New(Deps{Generator: generator, Observer: events})
	uri, err := o.Regenerate(context.Background(), "A red can on a sunny beach.")
	if err != nil {
		t.Fatalf("regenerate: %v", err)
	}
	if uri != "data:image/png;base64,"+base64.StdEncoding.EncodeToString([]byte("png")) {
		t.Fatalf("unexpected uri %s", uri)
	}
	if generator.prompt != "A red can on a sunny beach." {
		t.Fatalf("prompt not forwarded")
	}
	if got := events.stages(); len(got) != 2 || got[1] != StageRegenerated {
		t.Fatalf("unexpected stages %v", got)
	}
}

func TestRegenerateFailures(t *testing.T) {
	tests := []struct {
		name  string
		gen   *mockGenerator
		plan  string
		want  error
		calls int
	}{
		{"blank plan", &mockGenerator{}, "   ", failure.ErrInvalidInput, 0},
		{"no candidates", &mockGenerator{err: failure.ErrNoCandidates}, "plan", failure.ErrNoCandidates, 1},
		{"gif", &mockGenerator{err: &failure.UnsupportedMimeTypeError{MIMEType: "image/gif"}}, "plan", failure.ErrUnsupportedMimeType, 1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(Deps{Generator: tc.gen}).Regenerate(context.Background(), tc.plan)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v got %v", tc.want, err)
			}
			if tc.gen.calls != tc.calls {
				t.Fatalf("expected %d generator calls got %d", tc.calls, tc.gen.calls)
			}
		})
	}

	if _, err := New(Deps{}).Regenerate(context.Background(), "plan"); !errors.Is(err, failure.ErrUpstreamRegeneration) {
		t.Fatalf("expected upstream regeneration error without generator, got %v", err)
	}
}
