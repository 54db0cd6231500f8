package evaluation

import (
	"context"

	"brandai/backend/internal/ai"
	"brandai/backend/internal/vision"
)

// Stage names a step of the evaluation pipeline.
type Stage string

const (
	StageReceived       Stage = "received"
	StageVisionAnalyzed Stage = "vision_analyzed"
	StageBrandResolved  Stage = "brand_resolved"
	StageCritiqued      Stage = "critiqued"
	StageAssembled      Stage = "assembled"
	StageFailed         Stage = "failed"

	StageRegenerating Stage = "regenerating"
	StageRegenerated  Stage = "regenerated"
)

// Event reports a pipeline transition.
type Event struct {
	RequestID string
	Stage     Stage
	Brand     string
	Message   string
	ElapsedMs int64
}

// Observer receives pipeline transitions. Implementations must not block.
type Observer interface {
	Observe(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

func (f ObserverFunc) Observe(e Event) { f(e) }

// Upload is the advertisement submitted for evaluation.
type Upload struct {
	Data        []byte
	ContentType string
	Filename    string
}

// Result is the assembled evaluation returned to clients.
type Result struct {
	BrandDetected  string          `json:"brand_detected"`
	BrandName      string          `json:"brand_name"`
	OriginalImage  string          `json:"original_image"`
	Scorecard      ai.Scorecard    `json:"scorecard"`
	RefinementPlan string          `json:"refinement_plan"`
	Timestamp      string          `json:"timestamp"`
	VisionAnalysis vision.Analysis `json:"vision_analysis"`
}

type requestIDKey struct{}

// WithRequestID tags ctx with the id reported in pipeline events.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFrom returns the id stored by WithRequestID.
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
