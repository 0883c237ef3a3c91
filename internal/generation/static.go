package generation

import (
	"context"
	_ "embed"
)

//go:embed static_plan.json
var defaultStaticPlan string

// StaticGenerator returns the same canned response for every prompt.
// It runs the real parser, so it exercises the same code path as a model.
type StaticGenerator struct {
	Response string
}

// NewStaticGenerator returns a generator that answers with the bundled
// full-body week, used when no model API key is configured.
func NewStaticGenerator() *StaticGenerator {
	return &StaticGenerator{Response: defaultStaticPlan}
}

func (g *StaticGenerator) GenerateStructuredPlan(ctx context.Context, _ string) (*PlanDraft, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return ParseDraft(g.Response)
}
