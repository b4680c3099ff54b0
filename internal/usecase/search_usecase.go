package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/fadilmartias/signal/internal/cache"
	"github.com/fadilmartias/signal/internal/model"
	"github.com/fadilmartias/signal/internal/query"
	"github.com/fadilmartias/signal/internal/repository"
	"github.com/fadilmartias/signal/internal/scoring"
	"github.com/fadilmartias/signal/internal/service"
)

// ErrRankingUnavailable is returned when the query embedding cannot be
// obtained at all. There is no lexical-only fallback: a partial ranking would
// be worse than an honest failure.
var ErrRankingUnavailable = errors.New("ranking unavailable")

const defaultLimit = 20

// ScoredCandidate is the per-query output row. Never persisted.
type ScoredCandidate struct {
	CandidateID  string
	Name         string
	Relevance    float64
	FitScore     float64
	IntentCount  int
	MatchedTerms []string
	Snippet      string
	Shortlisted  bool
	Status       string
	Email        string
	ResumeURL    string
}

// SearchUsecase ranks active candidates against a recruiter query.
type SearchUsecase struct {
	store      repository.RecordStore
	embedder   service.Embedder
	embedCache *cache.EmbeddingCache
	params     scoring.Params
	maxResults int
	log        *zap.Logger
}

func NewSearchUsecase(store repository.RecordStore, embedder service.Embedder, embedCache *cache.EmbeddingCache, params scoring.Params, maxResults int, log *zap.Logger) *SearchUsecase {
	if maxResults <= 0 {
		maxResults = defaultLimit
	}
	return &SearchUsecase{
		store:      store,
		embedder:   embedder,
		embedCache: embedCache,
		params:     params,
		maxResults: maxResults,
		log:        log,
	}
}

// Search embeds the query, scores every active candidate with the same
// parameters, and returns a deterministically ordered, truncated result list.
// Stored fit/final score fields on the records are ignored: scores are always
// recomputed from the current vectors and intent counts.
func (uc *SearchUsecase) Search(ctx context.Context, rawQuery string, limit int) ([]ScoredCandidate, error) {
	q := strings.TrimSpace(rawQuery)
	if q == "" {
		return nil, fmt.Errorf("query must not be empty: %w", service.ErrInvalidInput)
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > uc.maxResults {
		limit = uc.maxResults
	}

	queryVec, err := uc.queryEmbedding(ctx, q)
	if err != nil {
		if errors.Is(err, service.ErrInvalidInput) {
			return nil, err
		}
		return nil, fmt.Errorf("query embedding failed: %v: %w", err, ErrRankingUnavailable)
	}

	candidates, err := uc.store.GetActiveCandidates(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch active candidates: %w", err)
	}

	results := make([]ScoredCandidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Status == model.StatusRejected {
			continue
		}

		matched := query.MatchedTerms(q, c.ResumeText)
		score := scoring.Score(uc.params, queryVec, c.Embedding(), c.IntentCount, len(matched))

		results = append(results, ScoredCandidate{
			CandidateID:  c.CandidateID,
			Name:         c.Name,
			Relevance:    score.Relevance,
			FitScore:     score.FitScore,
			IntentCount:  c.IntentCount,
			MatchedTerms: matched,
			Snippet:      query.Snippet(c.ResumeText, matched),
			Shortlisted:  c.Shortlisted,
			Status:       c.Status,
			Email:        c.Email,
			ResumeURL:    c.ResumeURL,
		})
	}

	// Relevance desc, then intent desc, then candidate id asc. Full
	// determinism keeps pagination stable and tests reproducible.
	sort.Slice(results, func(i, j int) bool {
		if results[i].Relevance != results[j].Relevance {
			return results[i].Relevance > results[j].Relevance
		}
		if results[i].IntentCount != results[j].IntentCount {
			return results[i].IntentCount > results[j].IntentCount
		}
		return results[i].CandidateID < results[j].CandidateID
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func (uc *SearchUsecase) queryEmbedding(ctx context.Context, q string) ([]float32, error) {
	fingerprint := cache.Fingerprint(uc.embedder.ModelName(), q)
	if vec, ok := uc.embedCache.Get(fingerprint); ok {
		return vec, nil
	}

	vec, err := uc.embedder.Embed(ctx, q)
	if err != nil {
		return nil, err
	}
	uc.embedCache.Put(fingerprint, vec)
	return vec, nil
}
