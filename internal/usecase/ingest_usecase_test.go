package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fadilmartias/signal/internal/cache"
	"github.com/fadilmartias/signal/internal/model"
	"github.com/fadilmartias/signal/internal/scoring"
)

func newIngestUsecase(store *fakeStore, embedder *fakeEmbedder, explainer *fakeExplainer) *IngestUsecase {
	if explainer == nil {
		return NewIngestUsecase(store, embedder, nil, cache.NewEmbeddingCache(16),
			scoring.DefaultParams(), zap.NewNop())
	}
	return NewIngestUsecase(store, embedder, explainer, cache.NewEmbeddingCache(16),
		scoring.DefaultParams(), zap.NewNop())
}

func ingestReq(appID string) IngestRequest {
	return IngestRequest{
		ApplicationID: appID,
		CandidateID:   "cand-1",
		Name:          "Ada Lovelace",
		Email:         "ada@example.com",
		ResumeText:    "Analytical engine programmer with strong mathematics background.",
		RoleTitle:     "Data Engineer",
		RoleFamily:    "Engineering",
		AppliedAt:     time.Date(2025, 11, 3, 10, 0, 0, 0, time.UTC),
	}
}

func TestIngestNewCandidate(t *testing.T) {
	store := newFakeStore()
	embedder := &fakeEmbedder{vec: []float32{0.1, 0.9}}
	uc := newIngestUsecase(store, embedder, nil)

	candidate, err := uc.Ingest(context.Background(), ingestReq("app-1"))
	require.NoError(t, err)

	assert.Equal(t, "cand-1", candidate.CandidateID)
	assert.Equal(t, model.StatusActive, candidate.Status)
	assert.Equal(t, 1, candidate.IntentCount)
	require.NotNil(t, candidate.ResumeEmbedding)
	assert.NotEmpty(t, candidate.ResumeFingerprint)
	assert.Equal(t, 1, embedder.calls)
	require.Len(t, store.events, 1)
	assert.Equal(t, "app-1", store.events[0].ApplicationID)
}

func TestIngestRepeatApplicationIncrementsIntent(t *testing.T) {
	store := newFakeStore()
	embedder := &fakeEmbedder{vec: []float32{0.1, 0.9}}
	uc := newIngestUsecase(store, embedder, nil)

	_, err := uc.Ingest(context.Background(), ingestReq("app-1"))
	require.NoError(t, err)
	candidate, err := uc.Ingest(context.Background(), ingestReq("app-2"))
	require.NoError(t, err)

	assert.Equal(t, 2, candidate.IntentCount, "repeat applications count, no dedupe")
	assert.Len(t, store.events, 2)
	assert.Equal(t, 1, embedder.calls, "unchanged resume text is not re-embedded")
}

func TestIngestChangedResumeReembeds(t *testing.T) {
	store := newFakeStore()
	embedder := &fakeEmbedder{vec: []float32{0.1, 0.9}}
	uc := newIngestUsecase(store, embedder, nil)

	first, err := uc.Ingest(context.Background(), ingestReq("app-1"))
	require.NoError(t, err)

	req := ingestReq("app-2")
	req.ResumeText = "Completely rewritten resume with new experience."
	second, err := uc.Ingest(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, 2, embedder.calls)
	assert.NotEqual(t, first.ResumeFingerprint, second.ResumeFingerprint)
}

func TestIngestSurvivesEmbeddingOutage(t *testing.T) {
	store := newFakeStore()
	embedder := &fakeEmbedder{err: errors.New("provider down")}
	uc := newIngestUsecase(store, embedder, nil)

	candidate, err := uc.Ingest(context.Background(), ingestReq("app-1"))
	require.NoError(t, err, "embedding failure never fails the event")

	assert.Equal(t, 1, candidate.IntentCount)
	assert.Nil(t, candidate.ResumeEmbedding)
	assert.Empty(t, candidate.ResumeFingerprint)

	stored, err := store.GetCandidate(context.Background(), "cand-1")
	require.NoError(t, err)
	assert.Equal(t, 1, stored.IntentCount, "profile and intent persist anyway")
	assert.Len(t, store.events, 1, "application event persists anyway")
}

func TestIngestRecoversEmbeddingOnLaterEvent(t *testing.T) {
	store := newFakeStore()
	embedder := &fakeEmbedder{err: errors.New("provider down")}
	uc := newIngestUsecase(store, embedder, nil)

	_, err := uc.Ingest(context.Background(), ingestReq("app-1"))
	require.NoError(t, err)

	embedder.err = nil
	embedder.vec = []float32{0.1, 0.9}
	candidate, err := uc.Ingest(context.Background(), ingestReq("app-2"))
	require.NoError(t, err)

	require.NotNil(t, candidate.ResumeEmbedding)
	assert.NotEmpty(t, candidate.ResumeFingerprint)
}

func TestIngestPreservesRejectedStatus(t *testing.T) {
	store := newFakeStore(model.Candidate{
		CandidateID: "cand-1",
		Status:      model.StatusRejected,
		IntentCount: 3,
	})
	embedder := &fakeEmbedder{vec: []float32{0.1, 0.9}}
	uc := newIngestUsecase(store, embedder, nil)

	candidate, err := uc.Ingest(context.Background(), ingestReq("app-9"))
	require.NoError(t, err)

	assert.Equal(t, model.StatusRejected, candidate.Status, "re-applying does not un-reject")
	assert.Equal(t, 4, candidate.IntentCount, "intent still counts for the audit trail")
}

func TestIngestExplainerWiredIn(t *testing.T) {
	store := newFakeStore()
	embedder := &fakeEmbedder{vec: []float32{0.1, 0.9}}
	explainer := &fakeExplainer{explanation: "**Fit**: strong match on data tooling."}
	uc := newIngestUsecase(store, embedder, explainer)

	candidate, err := uc.Ingest(context.Background(), ingestReq("app-1"))
	require.NoError(t, err)

	assert.Equal(t, 1, explainer.calls)
	assert.Equal(t, explainer.explanation, candidate.FitExplanation)
}

func TestIngestExplainerFailureIsNonFatal(t *testing.T) {
	store := newFakeStore()
	embedder := &fakeEmbedder{vec: []float32{0.1, 0.9}}
	explainer := &fakeExplainer{err: errors.New("model overloaded")}
	uc := newIngestUsecase(store, embedder, explainer)

	candidate, err := uc.Ingest(context.Background(), ingestReq("app-1"))
	require.NoError(t, err)
	assert.Empty(t, candidate.FitExplanation)
}

func TestIngestFinalScoreDisplayCache(t *testing.T) {
	store := newFakeStore(model.Candidate{
		CandidateID: "cand-1",
		Status:      model.StatusActive,
		IntentCount: 4, // fifth event reaches the intent cap
		FitScore:    0.8,
	})
	embedder := &fakeEmbedder{vec: []float32{0.1, 0.9}}
	uc := newIngestUsecase(store, embedder, nil)

	candidate, err := uc.Ingest(context.Background(), ingestReq("app-5"))
	require.NoError(t, err)

	// 0.5*1.0 + 0.5*0.8 with default weight.
	assert.InDelta(t, 0.9, candidate.FinalScore, 1e-6)
}
