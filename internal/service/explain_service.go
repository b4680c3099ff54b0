package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/fadilmartias/signal/internal/config"
)

// ContentGenerator is the capability the explanation agent needs from the LLM.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, model, prompt string) (string, error)
}

// Explainer produces a human-readable fit narrative. It has no bearing on
// ranking correctness.
type Explainer interface {
	ExplainFit(ctx context.Context, resumeText, requirement, candidateName string) (string, error)
	Enabled() bool
}

// ExplainService asks the LLM for a structured fit assessment and renders it
// as a markdown summary stored on the candidate record.
type ExplainService struct {
	gen     ContentGenerator
	model   string
	enabled bool
	log     *zap.Logger
}

func NewExplainService(gen ContentGenerator, log *zap.Logger) *ExplainService {
	geminiConfig := config.LoadGeminiConfig()
	return &ExplainService{
		gen:     gen,
		model:   geminiConfig.ExplainModel,
		enabled: geminiConfig.ExplainEnabled,
		log:     log,
	}
}

func (s *ExplainService) Enabled() bool {
	return s.enabled
}

func (s *ExplainService) ExplainFit(ctx context.Context, resumeText, requirement, candidateName string) (string, error) {
	if !s.enabled {
		return "", nil
	}

	prompt := fmt.Sprintf(`
You are a professional HR analyst specializing in candidate assessment.
Analyze the following candidate's fit for the given requirement:

Candidate: %s
Requirement: %s

Resume:
%s

Return your answer STRICTLY in JSON format with this schema:
{
	"summary": "<brief 2-3 sentence summary of candidate fit>",
	"top_skills_matched": ["<skill1>", "<skill2>", "<skill3>"],
	"experience_relevance": "<brief assessment of relevant experience>",
	"potential_gaps": ["<gap1>", "<gap2>"],
	"fit_percentage": <integer 0-100>,
	"recommendation": "<hire/consider/pass with brief reason>"
}
`, candidateName, requirement, resumeText)

	text, err := s.gen.GenerateContent(ctx, s.model, prompt)
	if err != nil {
		return "", fmt.Errorf("fit explanation for %s: %w", candidateName, err)
	}

	// Models occasionally wrap the JSON in prose or code fences.
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end <= start {
		s.log.Warn("no JSON in explanation response", zap.String("candidate", candidateName))
		return truncateExplanation(text), nil
	}

	return formatExplanation(text[start : end+1]), nil
}

func formatExplanation(raw string) string {
	if !gjson.Valid(raw) {
		return truncateExplanation(raw)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "**Summary:** %s\n\n", gjson.Get(raw, "summary").String())

	b.WriteString("**Key Skills Matched:**\n")
	for _, skill := range gjson.Get(raw, "top_skills_matched").Array() {
		fmt.Fprintf(&b, "- %s\n", skill.String())
	}

	fmt.Fprintf(&b, "\n**Experience Relevance:** %s\n\n", gjson.Get(raw, "experience_relevance").String())

	b.WriteString("**Potential Development Areas:**\n")
	for _, gap := range gjson.Get(raw, "potential_gaps").Array() {
		fmt.Fprintf(&b, "- %s\n", gap.String())
	}

	fmt.Fprintf(&b, "\n**Fit Score:** %d%%\n\n", gjson.Get(raw, "fit_percentage").Int())
	fmt.Fprintf(&b, "**Recommendation:** %s\n", gjson.Get(raw, "recommendation").String())

	return b.String()
}

func truncateExplanation(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 200 {
		return s[:200] + "..."
	}
	return s
}
