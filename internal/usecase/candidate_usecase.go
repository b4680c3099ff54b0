package usecase

import (
	"context"

	"github.com/fadilmartias/signal/internal/model"
	"github.com/fadilmartias/signal/internal/repository"
)

// CandidateUsecase covers the shortlisting workflow around the ranking core.
type CandidateUsecase struct {
	store repository.RecordStore
}

func NewCandidateUsecase(store repository.RecordStore) *CandidateUsecase {
	return &CandidateUsecase{store: store}
}

func (uc *CandidateUsecase) Get(ctx context.Context, candidateID string) (*model.Candidate, error) {
	return uc.store.GetCandidate(ctx, candidateID)
}

func (uc *CandidateUsecase) List(ctx context.Context, page, pageSize int) ([]model.Candidate, int64, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	return uc.store.ListCandidates(ctx, page, pageSize)
}

func (uc *CandidateUsecase) Shortlist(ctx context.Context, candidateID string, shortlisted bool) error {
	return uc.store.SetShortlisted(ctx, candidateID, shortlisted)
}

// Reject marks a candidate rejected. Rejected candidates are excluded from
// ranking output but never deleted from the store.
func (uc *CandidateUsecase) Reject(ctx context.Context, candidateID string) error {
	return uc.store.SetStatus(ctx, candidateID, model.StatusRejected)
}
