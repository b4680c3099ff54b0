package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/pgvector/pgvector-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fadilmartias/signal/internal/cache"
	"github.com/fadilmartias/signal/internal/model"
	"github.com/fadilmartias/signal/internal/scoring"
	"github.com/fadilmartias/signal/internal/service"
)

func vecOf(values ...float32) *pgvector.Vector {
	v := pgvector.NewVector(values)
	return &v
}

func newSearchUsecase(store *fakeStore, embedder *fakeEmbedder, maxResults int) *SearchUsecase {
	return NewSearchUsecase(store, embedder, cache.NewEmbeddingCache(16),
		scoring.DefaultParams(), maxResults, zap.NewNop())
}

func TestSearchDeterministicOrdering(t *testing.T) {
	store := newFakeStore(
		// Zero fit for everyone: ordering is decided by intent, then id.
		model.Candidate{CandidateID: "b", Status: model.StatusActive, IntentCount: 2},
		model.Candidate{CandidateID: "a", Status: model.StatusActive, IntentCount: 2},
		model.Candidate{CandidateID: "x", Status: model.StatusActive, IntentCount: 7},
		model.Candidate{CandidateID: "w", Status: model.StatusActive, IntentCount: 10},
		model.Candidate{CandidateID: "top", Status: model.StatusActive, ResumeEmbedding: vecOf(1, 0)},
	)
	embedder := &fakeEmbedder{vec: []float32{1, 0}}
	uc := newSearchUsecase(store, embedder, 20)

	results, err := uc.Search(context.Background(), "staff engineer", 20)
	require.NoError(t, err)
	require.Len(t, results, 5)

	// "top" has fit 1.0. "w" and "x" share relevance (both at the intent
	// cap), so higher raw intent wins; "a" and "b" tie on everything, so
	// candidate id decides.
	ids := []string{results[0].CandidateID, results[1].CandidateID, results[2].CandidateID,
		results[3].CandidateID, results[4].CandidateID}
	assert.Equal(t, []string{"top", "w", "x", "a", "b"}, ids)

	// Re-running yields identical ordering.
	again, err := uc.Search(context.Background(), "staff engineer", 20)
	require.NoError(t, err)
	assert.Equal(t, results, again)
}

func TestSearchExcludesRejected(t *testing.T) {
	store := newFakeStore(
		model.Candidate{CandidateID: "alive", Status: model.StatusActive, IntentCount: 1},
		model.Candidate{CandidateID: "gone", Status: model.StatusRejected, IntentCount: 9},
	)
	uc := newSearchUsecase(store, &fakeEmbedder{vec: []float32{1, 0}}, 20)

	results, err := uc.Search(context.Background(), "engineer", 20)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "alive", results[0].CandidateID)
}

func TestSearchTruncation(t *testing.T) {
	var candidates []model.Candidate
	for i := 0; i < 25; i++ {
		candidates = append(candidates, model.Candidate{
			CandidateID: fmt.Sprintf("cand-%02d", i),
			Status:      model.StatusActive,
			IntentCount: i,
		})
	}
	store := newFakeStore(candidates...)
	uc := newSearchUsecase(store, &fakeEmbedder{vec: []float32{1, 0}}, 20)

	results, err := uc.Search(context.Background(), "engineer", 50)
	require.NoError(t, err)
	assert.Len(t, results, 20, "requested limit is capped at MAX_RESULTS")

	results, err = uc.Search(context.Background(), "engineer", 3)
	require.NoError(t, err)
	assert.Len(t, results, 3)

	results, err = uc.Search(context.Background(), "engineer", 0)
	require.NoError(t, err)
	assert.Len(t, results, 20, "limit defaults to 20")
}

func TestSearchEmptyQuery(t *testing.T) {
	uc := newSearchUsecase(newFakeStore(), &fakeEmbedder{vec: []float32{1, 0}}, 20)

	_, err := uc.Search(context.Background(), "   ", 20)
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestSearchEmbeddingFailureFailsWholeRequest(t *testing.T) {
	store := newFakeStore(
		model.Candidate{CandidateID: "a", Status: model.StatusActive, IntentCount: 3},
	)
	embedder := &fakeEmbedder{err: fmt.Errorf("max retries exceeded: %w", service.ErrProviderUnavailable)}
	uc := newSearchUsecase(store, embedder, 20)

	results, err := uc.Search(context.Background(), "engineer", 20)
	assert.ErrorIs(t, err, ErrRankingUnavailable)
	assert.Nil(t, results, "no partial or zero-filled result set")
}

func TestSearchQueryEmbeddingCached(t *testing.T) {
	store := newFakeStore(
		model.Candidate{CandidateID: "a", Status: model.StatusActive},
	)
	embedder := &fakeEmbedder{vec: []float32{1, 0}}
	uc := newSearchUsecase(store, embedder, 20)

	_, err := uc.Search(context.Background(), "repeat query", 20)
	require.NoError(t, err)
	_, err = uc.Search(context.Background(), "repeat query", 20)
	require.NoError(t, err)

	assert.Equal(t, 1, embedder.calls, "second identical query hits the cache")
}

func TestSearchMatchedTermsAndSnippet(t *testing.T) {
	store := newFakeStore(
		model.Candidate{
			CandidateID:     "a",
			Status:          model.StatusActive,
			ResumeText:      "Built Power BI dashboards. Former barista.",
			ResumeEmbedding: vecOf(1, 0),
		},
	)
	uc := newSearchUsecase(store, &fakeEmbedder{vec: []float32{1, 0}}, 20)

	results, err := uc.Search(context.Background(), "analyst power bi", 20)
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.Equal(t, []string{"power"}, results[0].MatchedTerms)
	assert.Equal(t, "Built Power BI dashboards", results[0].Snippet)
	assert.InDelta(t, 1.0, results[0].FitScore, 1e-6)
}

func TestSearchMismatchedCandidateVectorDegradesToIntent(t *testing.T) {
	store := newFakeStore(
		model.Candidate{CandidateID: "bad", Status: model.StatusActive, IntentCount: 5,
			ResumeEmbedding: vecOf(1, 0, 0)},
	)
	uc := newSearchUsecase(store, &fakeEmbedder{vec: []float32{1, 0}}, 20)

	results, err := uc.Search(context.Background(), "engineer", 20)
	require.NoError(t, err)
	require.Len(t, results, 1, "one bad record never crashes the ranking pass")

	assert.Zero(t, results[0].FitScore)
	assert.InDelta(t, 0.2, results[0].Relevance, 1e-6)
}

func TestSearchStoreError(t *testing.T) {
	store := newFakeStore()
	store.activeErr = errors.New("store down")
	uc := newSearchUsecase(store, &fakeEmbedder{vec: []float32{1, 0}}, 20)

	_, err := uc.Search(context.Background(), "engineer", 20)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrRankingUnavailable)
}
