package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pgvector/pgvector-go"
	"go.uber.org/zap"

	"github.com/fadilmartias/signal/internal/cache"
	"github.com/fadilmartias/signal/internal/model"
	"github.com/fadilmartias/signal/internal/repository"
	"github.com/fadilmartias/signal/internal/scoring"
	"github.com/fadilmartias/signal/internal/service"
)

// IngestRequest carries one application event.
type IngestRequest struct {
	ApplicationID string
	CandidateID   string
	Name          string
	Email         string
	ResumeURL     string
	ResumeText    string
	RoleTitle     string
	RoleFamily    string
	AppliedAt     time.Time
}

// IngestUsecase applies application events: profile upsert, intent increment,
// and a best-effort embedding refresh. Identity and intent data are cheap and
// critical; embeddings are recoverable, so a provider outage never fails the
// whole event.
type IngestUsecase struct {
	store      repository.RecordStore
	embedder   service.Embedder
	explainer  service.Explainer
	embedCache *cache.EmbeddingCache
	params     scoring.Params
	log        *zap.Logger
}

func NewIngestUsecase(store repository.RecordStore, embedder service.Embedder, explainer service.Explainer, embedCache *cache.EmbeddingCache, params scoring.Params, log *zap.Logger) *IngestUsecase {
	return &IngestUsecase{
		store:      store,
		embedder:   embedder,
		explainer:  explainer,
		embedCache: embedCache,
		params:     params,
		log:        log,
	}
}

// Ingest processes one application event. Every event increments intent by
// one, repeats included. The resume embedding is refreshed only when the text
// fingerprint differs from the one last used to populate it.
func (uc *IngestUsecase) Ingest(ctx context.Context, req IngestRequest) (*model.Candidate, error) {
	candidate, err := uc.store.GetCandidate(ctx, req.CandidateID)
	if err != nil {
		if !errors.Is(err, repository.ErrCandidateNotFound) {
			return nil, fmt.Errorf("load candidate %s: %w", req.CandidateID, err)
		}
		candidate = &model.Candidate{
			CandidateID: req.CandidateID,
			Status:      model.StatusActive,
		}
	}

	candidate.Name = req.Name
	candidate.Email = req.Email
	if req.ResumeURL != "" {
		candidate.ResumeURL = req.ResumeURL
	}
	if req.ResumeText != "" {
		candidate.ResumeText = req.ResumeText
	}
	candidate.IntentCount++

	if req.ResumeText != "" {
		uc.refreshEmbedding(ctx, candidate, req.ResumeText)
	}

	// Display-only caches. Ranking recomputes from vectors and intent at
	// query time, so a stale value here can never skew results.
	intentNorm := scoring.Score(uc.params, nil, nil, candidate.IntentCount, 0).IntentNorm
	candidate.FinalScore = uc.params.FinalScoreWeight*intentNorm + (1-uc.params.FinalScoreWeight)*candidate.FitScore

	if uc.explainer != nil && uc.explainer.Enabled() && candidate.ResumeText != "" {
		requirement := fmt.Sprintf("%s in %s", req.RoleTitle, req.RoleFamily)
		explanation, err := uc.explainer.ExplainFit(ctx, candidate.ResumeText, requirement, candidate.Name)
		if err != nil {
			uc.log.Warn("fit explanation failed", zap.String("candidate", req.CandidateID), zap.Error(err))
		} else if explanation != "" {
			candidate.FitExplanation = explanation
		}
	}

	if err := uc.store.UpsertCandidate(ctx, candidate); err != nil {
		return nil, fmt.Errorf("upsert candidate %s: %w", req.CandidateID, err)
	}

	event := &model.Application{
		ApplicationID: req.ApplicationID,
		CandidateID:   req.CandidateID,
		RoleTitle:     req.RoleTitle,
		RoleFamily:    req.RoleFamily,
		AppliedAt:     req.AppliedAt,
	}
	if err := uc.store.AppendApplication(ctx, event); err != nil {
		return nil, fmt.Errorf("append application %s: %w", req.ApplicationID, err)
	}

	return candidate, nil
}

// refreshEmbedding ensures the candidate's stored vector matches the current
// resume text. Failures are logged and swallowed: the candidate is ranked with
// zero fit until a later event succeeds.
func (uc *IngestUsecase) refreshEmbedding(ctx context.Context, candidate *model.Candidate, resumeText string) {
	fingerprint := cache.Fingerprint(uc.embedder.ModelName(), resumeText)
	if fingerprint == candidate.ResumeFingerprint && candidate.ResumeEmbedding != nil {
		return
	}

	vec, ok := uc.embedCache.Get(fingerprint)
	if !ok {
		var err error
		vec, err = uc.embedder.Embed(ctx, resumeText)
		if err != nil {
			uc.log.Warn("resume embedding failed, continuing without fit",
				zap.String("candidate", candidate.CandidateID), zap.Error(err))
			return
		}
		uc.embedCache.Put(fingerprint, vec)
	}

	stored := pgvector.NewVector(vec)
	candidate.ResumeEmbedding = &stored
	candidate.ResumeFingerprint = fingerprint
}
