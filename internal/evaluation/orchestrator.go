// Package evaluation runs the ad critique pipeline: vision analysis, brand
// resolution, critique and assembly, plus the separate regeneration flow.
package evaluation

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"brandai/backend/internal/ai"
	"brandai/backend/internal/catalog"
	"brandai/backend/internal/failure"
	"brandai/backend/internal/imagen"
	"brandai/backend/internal/util"
	"brandai/backend/internal/vision"
)

var errNotConfigured = errors.New("adapter not configured")

// Deps are the collaborators of an Orchestrator. Nil adapters are allowed;
// calls that need them fail with the matching upstream error.
type Deps struct {
	Catalog   *catalog.Catalog
	Analyzer  vision.Analyzer
	Critic    ai.Critic
	Generator imagen.Generator
	Observer  Observer
}

// Orchestrator coordinates the evaluation and regeneration flows. It holds no
// per-request state and is safe for concurrent use.
type Orchestrator struct {
	catalog   *catalog.Catalog
	analyzer  vision.Analyzer
	critic    ai.Critic
	generator imagen.Generator
	observer  Observer
	now       func() time.Time
}

// New constructs an Orchestrator.
func New(deps Deps) *Orchestrator {
	return &Orchestrator{
		catalog:   deps.Catalog,
		analyzer:  deps.Analyzer,
		critic:    deps.Critic,
		generator: deps.Generator,
		observer:  deps.Observer,
		now:       time.Now,
	}
}

type run struct {
	o         *Orchestrator
	requestID string
	timer     *util.Timer
	brand     string
}

func (o *Orchestrator) startRun(ctx context.Context) *run {
	return &run{o: o, requestID: RequestIDFrom(ctx), timer: util.StartTimer()}
}

func (r *run) advance(stage Stage, message string) {
	step := r.timer.LapMs()
	elapsed := r.timer.ElapsedMs()
	logrus.WithFields(logrus.Fields{
		"request_id": r.requestID,
		"stage":      stage,
		"brand":      r.brand,
		"step_ms":    step,
		"elapsed_ms": elapsed,
	}).Info(message)
	r.notify(Event{RequestID: r.requestID, Stage: stage, Brand: r.brand, Message: message, ElapsedMs: elapsed})
}

func (r *run) fail(stage Stage, err error) error {
	logrus.WithError(err).WithFields(logrus.Fields{
		"request_id": r.requestID,
		"stage":      stage,
		"brand":      r.brand,
		"elapsed_ms": r.timer.ElapsedMs(),
	}).Warn("pipeline failed")
	r.notify(Event{RequestID: r.requestID, Stage: StageFailed, Brand: r.brand, Message: err.Error(), ElapsedMs: r.timer.ElapsedMs()})
	return err
}

func (r *run) notify(event Event) {
	if r.o.observer != nil {
		r.o.observer.Observe(event)
	}
}

// Evaluate runs the four step pipeline. It returns either a complete result or
// an error, never both.
func (o *Orchestrator) Evaluate(ctx context.Context, upload Upload) (*Result, error) {
	r := o.startRun(ctx)
	if len(upload.Data) == 0 {
		return nil, r.fail(StageReceived, failure.Invalid("uploaded image is empty"))
	}
	r.advance(StageReceived, "evaluation request received")

	if o.analyzer == nil {
		return nil, r.fail(StageReceived, failure.Vision(errNotConfigured))
	}
	analysis, err := o.analyzer.Analyze(ctx, upload.Data)
	if err != nil {
		return nil, r.fail(StageReceived, err)
	}
	r.advance(StageVisionAnalyzed, "vision analysis complete")

	if analysis.DetectedLogo == nil || strings.TrimSpace(analysis.DetectedLogo.Description) == "" {
		return nil, r.fail(StageVisionAnalyzed, failure.ErrBrandNotDetected)
	}
	description := analysis.DetectedLogo.Description
	brand, supported, ok := o.catalog.Resolve(description)
	if !ok {
		return nil, r.fail(StageVisionAnalyzed, &failure.BrandUnsupportedError{Description: description, Supported: supported})
	}
	r.brand = brand.Key
	r.advance(StageBrandResolved, "brand resolved")

	if o.critic == nil {
		return nil, r.fail(StageBrandResolved, failure.Critique(errNotConfigured))
	}
	mimeType := contentType(upload)
	critique, err := o.critic.Critique(ctx, ai.Request{
		Image:    upload.Data,
		MIMEType: mimeType,
		Brand:    brand,
		Analysis: analysis,
	})
	if err != nil {
		return nil, r.fail(StageBrandResolved, err)
	}
	r.advance(StageCritiqued, "critique generated")

	result := &Result{
		BrandDetected:  brand.Key,
		BrandName:      brand.BrandName,
		OriginalImage:  "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(upload.Data),
		Scorecard:      critique.Scorecard,
		RefinementPlan: critique.RefinementPlan,
		Timestamp:      o.now().UTC().Format(time.RFC3339Nano),
		VisionAnalysis: analysis,
	}
	r.advance(StageAssembled, "evaluation complete")
	return result, nil
}

// Regenerate renders the refinement plan into an image and returns it as a
// data URI. Adapter errors are returned unchanged.
func (o *Orchestrator) Regenerate(ctx context.Context, refinementPlan string) (string, error) {
	r := o.startRun(ctx)
	if strings.TrimSpace(refinementPlan) == "" {
		return "", r.fail(StageRegenerating, failure.Invalid("refinement_plan is required"))
	}
	if o.generator == nil {
		return "", r.fail(StageRegenerating, failure.Regeneration(errNotConfigured))
	}
	r.advance(StageRegenerating, "regeneration requested")

	img, err := o.generator.Regenerate(ctx, refinementPlan)
	if err != nil {
		return "", r.fail(StageRegenerating, err)
	}
	r.advance(StageRegenerated, "regeneration complete")
	return img.DataURI(), nil
}

// contentType prefers the declared upload type and sniffs the bytes otherwise.
func contentType(upload Upload) string {
	declared := strings.TrimSpace(upload.ContentType)
	if strings.HasPrefix(declared, "image/") {
		return declared
	}
	sniffed := http.DetectContentType(upload.Data)
	if strings.HasPrefix(sniffed, "image/") {
		return sniffed
	}
	if declared != "" {
		return declared
	}
	return "application/octet-stream"
}
