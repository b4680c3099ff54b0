package repository

import (
	"context"
	"errors"

	"github.com/fadilmartias/signal/internal/model"
)

// ErrCandidateNotFound is returned by lookups for unknown candidate ids.
var ErrCandidateNotFound = errors.New("candidate not found")

// RecordStore is the durable storage the pipelines consume. Two
// implementations exist: CandidateRepository (Postgres via gorm) and
// AirtableStore (Airtable REST via resty), selected by STORE_DRIVER.
type RecordStore interface {
	GetActiveCandidates(ctx context.Context) ([]model.Candidate, error)
	GetCandidate(ctx context.Context, candidateID string) (*model.Candidate, error)
	ListCandidates(ctx context.Context, page, pageSize int) ([]model.Candidate, int64, error)
	UpsertCandidate(ctx context.Context, candidate *model.Candidate) error
	SetShortlisted(ctx context.Context, candidateID string, shortlisted bool) error
	SetStatus(ctx context.Context, candidateID, status string) error
	AppendApplication(ctx context.Context, event *model.Application) error
}
