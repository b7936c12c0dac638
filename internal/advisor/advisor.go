// Package advisor produces AI commentary over indicator snapshots, portfolio
// summaries and journal statistics using the Gemini API. Responses are
// requested against a JSON schema and decoded into typed structs.
package advisor

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"google.golang.org/genai"

	apperrors "github.com/ducminhle1904/stock-insight/internal/errors"
)

// DefaultModel is the Gemini model used when none is configured.
const DefaultModel = "gemini-2.5-pro"

// DefaultTimeout bounds a single generation call.
const DefaultTimeout = 45 * time.Second

// Commentary is the structured analysis returned for every advisor prompt.
type Commentary struct {
	Summary    string   `json:"summary"`
	Signals    []string `json:"signals"`
	Risks      []string `json:"risks"`
	Suggestion string   `json:"suggestion"`
}

// commentarySchema constrains the model output so the response parses into
// Commentary without any freeform cleanup.
var commentarySchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"summary": {
			Type:        genai.TypeString,
			Description: "Two or three sentences describing the current picture.",
		},
		"signals": {
			Type:        genai.TypeArray,
			Items:       &genai.Schema{Type: genai.TypeString},
			Description: "Notable bullish or bearish observations, each grounded in a supplied number.",
		},
		"risks": {
			Type:        genai.TypeArray,
			Items:       &genai.Schema{Type: genai.TypeString},
			Description: "Concrete risks visible in the supplied data.",
		},
		"suggestion": {
			Type:        genai.TypeString,
			Description: "One actionable, cautious next step.",
		},
	},
	Required: []string{"summary", "signals", "risks", "suggestion"},
}

const systemInstruction = `You are a cautious markets analyst inside a personal
stock-analysis tool. Ground every statement in the data supplied with the
request; never invent prices or facts. Prefer plain language over jargon.
This is decision support for a self-directed investor, not financial advice,
and position sizes are always assumed to follow the user's risk limits.`

// contentGenerator is the slice of the genai client the advisor needs. The
// real client satisfies it through modelsGenerator; tests substitute a stub.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type modelsGenerator struct {
	client *genai.Client
}

func (g modelsGenerator) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	return g.client.Models.GenerateContent(ctx, model, contents, config)
}

// Advisor issues schema-constrained generation calls.
type Advisor struct {
	gen     contentGenerator
	model   string
	timeout time.Duration
}

// New builds an Advisor backed by the Gemini API. The client reads its API
// key from the environment (GEMINI_API_KEY / GOOGLE_API_KEY); a missing key
// surfaces here so callers can run without commentary.
func New(ctx context.Context, model string) (*Advisor, error) {
	client, err := genai.NewClient(ctx, nil)
	if err != nil {
		return nil, apperrors.NewLLMError("advisor", "init client", err)
	}
	if model == "" {
		model = DefaultModel
	}
	return &Advisor{gen: modelsGenerator{client: client}, model: model, timeout: DefaultTimeout}, nil
}

// NewWithGenerator wires a custom generator; used by tests.
func NewWithGenerator(gen contentGenerator, model string) *Advisor {
	if model == "" {
		model = DefaultModel
	}
	return &Advisor{gen: gen, model: model, timeout: DefaultTimeout}
}

// WithTimeout overrides the per-call deadline. Non-positive values keep the
// current timeout.
func (a *Advisor) WithTimeout(d time.Duration) *Advisor {
	if d > 0 {
		a.timeout = d
	}
	return a
}

// generate runs one schema-constrained prompt and decodes the reply.
func (a *Advisor) generate(ctx context.Context, prompt string) (*Commentary, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: systemInstruction}}},
		ResponseMIMEType:  "application/json",
		ResponseSchema:    commentarySchema,
	}

	resp, err := a.gen.GenerateContent(ctx, a.model, genai.Text(prompt), config)
	if err != nil {
		return nil, apperrors.NewLLMError("advisor", "generate", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, apperrors.NewLLMError("advisor", "generate", fmt.Errorf("empty response from model %s", a.model))
	}

	text := resp.Candidates[0].Content.Parts[0].Text
	var commentary Commentary
	if err := json.Unmarshal([]byte(text), &commentary); err != nil {
		return nil, apperrors.NewLLMError("advisor", "decode response", err)
	}
	if commentary.Signals == nil {
		commentary.Signals = []string{}
	}
	if commentary.Risks == nil {
		commentary.Risks = []string{}
	}
	return &commentary, nil
}
