package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fadilmartias/signal/internal/model"
)

// CandidateRepository is the Postgres-backed RecordStore.
type CandidateRepository struct {
	db *gorm.DB
}

func NewCandidateRepository(db *gorm.DB) *CandidateRepository {
	return &CandidateRepository{db}
}

func (r *CandidateRepository) GetActiveCandidates(ctx context.Context) ([]model.Candidate, error) {
	var candidates []model.Candidate
	err := r.db.WithContext(ctx).
		Where("status = ?", model.StatusActive).
		Order("candidate_id asc").
		Find(&candidates).Error
	return candidates, err
}

func (r *CandidateRepository) GetCandidate(ctx context.Context, candidateID string) (*model.Candidate, error) {
	var candidate model.Candidate
	err := r.db.WithContext(ctx).First(&candidate, "candidate_id = ?", candidateID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%s: %w", candidateID, ErrCandidateNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &candidate, nil
}

func (r *CandidateRepository) ListCandidates(ctx context.Context, page, pageSize int) ([]model.Candidate, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.Candidate{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var candidates []model.Candidate
	err := r.db.WithContext(ctx).
		Order("candidate_id asc").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&candidates).Error
	return candidates, total, err
}

func (r *CandidateRepository) UpsertCandidate(ctx context.Context, candidate *model.Candidate) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "candidate_id"}},
			UpdateAll: true,
		}).
		Create(candidate).Error
}

func (r *CandidateRepository) SetShortlisted(ctx context.Context, candidateID string, shortlisted bool) error {
	return r.updateFields(ctx, candidateID, map[string]any{"shortlisted": shortlisted})
}

func (r *CandidateRepository) SetStatus(ctx context.Context, candidateID, status string) error {
	return r.updateFields(ctx, candidateID, map[string]any{"status": status})
}

func (r *CandidateRepository) AppendApplication(ctx context.Context, event *model.Application) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *CandidateRepository) updateFields(ctx context.Context, candidateID string, fields map[string]any) error {
	result := r.db.WithContext(ctx).
		Model(&model.Candidate{}).
		Where("candidate_id = ?", candidateID).
		Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%s: %w", candidateID, ErrCandidateNotFound)
	}
	return nil
}
