package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fadilmartias/signal/internal/model"
	"github.com/fadilmartias/signal/internal/repository"
)

func TestCandidateShortlistToggle(t *testing.T) {
	store := newFakeStore(model.Candidate{CandidateID: "cand-1", Status: model.StatusActive})
	uc := NewCandidateUsecase(store)

	require.NoError(t, uc.Shortlist(context.Background(), "cand-1", true))
	candidate, err := uc.Get(context.Background(), "cand-1")
	require.NoError(t, err)
	assert.True(t, candidate.Shortlisted)

	require.NoError(t, uc.Shortlist(context.Background(), "cand-1", false))
	candidate, err = uc.Get(context.Background(), "cand-1")
	require.NoError(t, err)
	assert.False(t, candidate.Shortlisted)
}

func TestCandidateRejectKeepsRecord(t *testing.T) {
	store := newFakeStore(model.Candidate{CandidateID: "cand-1", Status: model.StatusActive, IntentCount: 2})
	uc := NewCandidateUsecase(store)

	require.NoError(t, uc.Reject(context.Background(), "cand-1"))

	candidate, err := uc.Get(context.Background(), "cand-1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusRejected, candidate.Status)
	assert.Equal(t, 2, candidate.IntentCount, "rejection is a status flip, not a delete")
}

func TestCandidateUnknownID(t *testing.T) {
	uc := NewCandidateUsecase(newFakeStore())

	_, err := uc.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, repository.ErrCandidateNotFound)
	assert.ErrorIs(t, uc.Shortlist(context.Background(), "missing", true), repository.ErrCandidateNotFound)
	assert.ErrorIs(t, uc.Reject(context.Background(), "missing"), repository.ErrCandidateNotFound)
}
