package scoring

import "math"

const (
	termBoostStep = 0.05
	termBoostMax  = 0.10
)

// Params holds the ranking weights. The same Params value must be used for
// every candidate in a request so comparisons stay fair.
type Params struct {
	IntentCap        int
	RelevanceAlpha   float64
	FinalScoreWeight float64
}

// DefaultParams returns the deployment defaults.
func DefaultParams() Params {
	return Params{
		IntentCap:        5,
		RelevanceAlpha:   0.6,
		FinalScoreWeight: 0.5,
	}
}

// Result carries the composite score and its components.
type Result struct {
	FitScore   float64
	IntentNorm float64
	FinalScore float64
	TermBoost  float64
	Relevance  float64
}

// Score computes the composite relevance for one candidate. It is a pure
// function of its inputs and never fails: a missing, mismatched, or degenerate
// candidate vector yields zero fit and the candidate is ranked by intent alone.
func Score(p Params, query, candidate []float32, intentCount, matchedTerms int) Result {
	var fit float64
	if len(candidate) > 0 {
		if s, err := CosineSimilarity(query, candidate); err == nil {
			fit = s
		}
	}

	cap := p.IntentCap
	if cap <= 0 {
		cap = 1
	}
	intentNorm := math.Min(float64(intentCount)/float64(cap), 1.0)

	final := p.FinalScoreWeight*intentNorm + (1-p.FinalScoreWeight)*fit
	boost := math.Min(termBoostStep*float64(matchedTerms), termBoostMax)
	relevance := Clamp01(p.RelevanceAlpha*fit + (1-p.RelevanceAlpha)*final + boost)

	return Result{
		FitScore:   fit,
		IntentNorm: intentNorm,
		FinalScore: final,
		TermBoost:  boost,
		Relevance:  relevance,
	}
}
