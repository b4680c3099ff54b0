package usecase

import (
	"context"
	"fmt"
	"sort"

	"github.com/fadilmartias/signal/internal/model"
	"github.com/fadilmartias/signal/internal/repository"
)

type fakeStore struct {
	candidates map[string]*model.Candidate
	events     []*model.Application

	activeErr error
}

func newFakeStore(candidates ...model.Candidate) *fakeStore {
	s := &fakeStore{candidates: make(map[string]*model.Candidate)}
	for i := range candidates {
		c := candidates[i]
		s.candidates[c.CandidateID] = &c
	}
	return s
}

func (s *fakeStore) GetActiveCandidates(_ context.Context) ([]model.Candidate, error) {
	if s.activeErr != nil {
		return nil, s.activeErr
	}
	var out []model.Candidate
	for _, c := range s.candidates {
		if c.Status != model.StatusRejected {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CandidateID < out[j].CandidateID })
	return out, nil
}

func (s *fakeStore) GetCandidate(_ context.Context, id string) (*model.Candidate, error) {
	c, ok := s.candidates[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", id, repository.ErrCandidateNotFound)
	}
	copied := *c
	return &copied, nil
}

func (s *fakeStore) ListCandidates(_ context.Context, page, pageSize int) ([]model.Candidate, int64, error) {
	all, _ := s.GetActiveCandidates(context.Background())
	return all, int64(len(all)), nil
}

func (s *fakeStore) UpsertCandidate(_ context.Context, c *model.Candidate) error {
	copied := *c
	s.candidates[c.CandidateID] = &copied
	return nil
}

func (s *fakeStore) SetShortlisted(_ context.Context, id string, shortlisted bool) error {
	c, ok := s.candidates[id]
	if !ok {
		return fmt.Errorf("%s: %w", id, repository.ErrCandidateNotFound)
	}
	c.Shortlisted = shortlisted
	return nil
}

func (s *fakeStore) SetStatus(_ context.Context, id, status string) error {
	c, ok := s.candidates[id]
	if !ok {
		return fmt.Errorf("%s: %w", id, repository.ErrCandidateNotFound)
	}
	c.Status = status
	return nil
}

func (s *fakeStore) AppendApplication(_ context.Context, event *model.Application) error {
	s.events = append(s.events, event)
	return nil
}

type fakeEmbedder struct {
	vec   []float32
	err   error
	calls int
}

func (f *fakeEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.vec, nil
}

func (f *fakeEmbedder) ModelName() string {
	return "fake-embedding-model"
}

type fakeExplainer struct {
	explanation string
	err         error
	calls       int
}

func (f *fakeExplainer) ExplainFit(_ context.Context, _, _, _ string) (string, error) {
	f.calls++
	return f.explanation, f.err
}

func (f *fakeExplainer) Enabled() bool {
	return true
}
