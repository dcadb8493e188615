package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lsguilherme/desafio-escribo-2/internal/store"
)

// TextGenerator is the upstream model. LLMService implements it.
type TextGenerator interface {
	GenerateJSON(ctx context.Context, prompt string) (string, error)
}

// PlanGenerator turns a cache key into a validated plan document.
type PlanGenerator struct {
	llm     TextGenerator
	timeout time.Duration
}

func NewPlanGenerator(llm TextGenerator, timeout time.Duration) *PlanGenerator {
	return &PlanGenerator{llm: llm, timeout: timeout}
}

// Generate makes exactly one upstream call. Upstream failures and timeouts
// wrap ErrGenerationService; unparsable or off-schema output wraps
// ErrGenerationFormat.
func (g *PlanGenerator) Generate(ctx context.Context, key store.CacheKey) (json.RawMessage, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	text, err := g.llm.GenerateJSON(ctx, BuildPrompt(key))
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: no response within %s", ErrGenerationService, g.timeout)
		}
		return nil, fmt.Errorf("%w: %v", ErrGenerationService, err)
	}

	plan, err := ParsePlan([]byte(StripCodeFences(text)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationFormat, err)
	}

	raw, err := json.Marshal(plan)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationFormat, err)
	}
	return raw, nil
}

// StripCodeFences removes ```json and ``` markers the model may wrap around
// its output, wherever they appear.
func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}
