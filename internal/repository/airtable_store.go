package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pgvector/pgvector-go"

	"github.com/fadilmartias/signal/internal/config"
	"github.com/fadilmartias/signal/internal/model"
)

const airtableBaseURL = "https://api.airtable.com/v0"

// AirtableStore is the Airtable-backed RecordStore. Embeddings are persisted
// as a JSON-encoded number array since Airtable has no vector column type.
type AirtableStore struct {
	client            *resty.Client
	baseID            string
	candidatesTable   string
	applicationsTable string
}

func NewAirtableStore() (*AirtableStore, error) {
	airtableConfig := config.LoadAirtableConfig()
	if airtableConfig.APIKey == "" || airtableConfig.BaseID == "" {
		return nil, fmt.Errorf("AIRTABLE_API_KEY and AIRTABLE_BASE_ID must be set")
	}

	client := resty.New().
		SetBaseURL(airtableBaseURL).
		SetAuthToken(airtableConfig.APIKey).
		SetHeader("Content-Type", "application/json").
		SetTimeout(30 * time.Second)

	return &AirtableStore{
		client:            client,
		baseID:            airtableConfig.BaseID,
		candidatesTable:   airtableConfig.CandidatesTable,
		applicationsTable: airtableConfig.ApplicationsTable,
	}, nil
}

type airtableRecord struct {
	ID     string         `json:"id,omitempty"`
	Fields map[string]any `json:"fields"`
}

type airtableList struct {
	Records []airtableRecord `json:"records"`
	Offset  string           `json:"offset,omitempty"`
}

func (s *AirtableStore) GetActiveCandidates(ctx context.Context) ([]model.Candidate, error) {
	records, err := s.listAll(ctx, s.candidatesTable, fmt.Sprintf("NOT({Status} = '%s')", model.StatusRejected))
	if err != nil {
		return nil, err
	}

	candidates := make([]model.Candidate, 0, len(records))
	for _, rec := range records {
		candidates = append(candidates, decodeCandidate(rec))
	}
	return candidates, nil
}

func (s *AirtableStore) GetCandidate(ctx context.Context, candidateID string) (*model.Candidate, error) {
	rec, err := s.findRecord(ctx, candidateID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("%s: %w", candidateID, ErrCandidateNotFound)
	}
	candidate := decodeCandidate(*rec)
	return &candidate, nil
}

func (s *AirtableStore) ListCandidates(ctx context.Context, page, pageSize int) ([]model.Candidate, int64, error) {
	// Airtable offset tokens are not random access, so paginate in memory.
	records, err := s.listAll(ctx, s.candidatesTable, "")
	if err != nil {
		return nil, 0, err
	}

	total := int64(len(records))
	start := (page - 1) * pageSize
	if start >= len(records) {
		return []model.Candidate{}, total, nil
	}
	end := start + pageSize
	if end > len(records) {
		end = len(records)
	}

	candidates := make([]model.Candidate, 0, end-start)
	for _, rec := range records[start:end] {
		candidates = append(candidates, decodeCandidate(rec))
	}
	return candidates, total, nil
}

func (s *AirtableStore) UpsertCandidate(ctx context.Context, candidate *model.Candidate) error {
	existing, err := s.findRecord(ctx, candidate.CandidateID)
	if err != nil {
		return err
	}

	body := airtableRecord{Fields: encodeCandidate(candidate)}
	var resp *resty.Response
	if existing != nil {
		resp, err = s.client.R().
			SetContext(ctx).
			SetBody(body).
			Patch(fmt.Sprintf("/%s/%s/%s", s.baseID, url.PathEscape(s.candidatesTable), existing.ID))
	} else {
		resp, err = s.client.R().
			SetContext(ctx).
			SetBody(body).
			Post(fmt.Sprintf("/%s/%s", s.baseID, url.PathEscape(s.candidatesTable)))
	}
	if err != nil {
		return fmt.Errorf("upsert candidate %s: %w", candidate.CandidateID, err)
	}
	if resp.IsError() {
		return fmt.Errorf("upsert candidate %s: airtable status %d: %s",
			candidate.CandidateID, resp.StatusCode(), resp.String())
	}
	return nil
}

func (s *AirtableStore) SetShortlisted(ctx context.Context, candidateID string, shortlisted bool) error {
	return s.patchFields(ctx, candidateID, map[string]any{"Shortlisted": shortlisted})
}

func (s *AirtableStore) SetStatus(ctx context.Context, candidateID, status string) error {
	return s.patchFields(ctx, candidateID, map[string]any{"Status": status})
}

func (s *AirtableStore) AppendApplication(ctx context.Context, event *model.Application) error {
	body := airtableRecord{Fields: map[string]any{
		"Application ID": event.ApplicationID,
		"Candidate ID":   event.CandidateID,
		"Role Title":     event.RoleTitle,
		"Role Family":    event.RoleFamily,
		"Applied At":     event.AppliedAt.Format(time.RFC3339),
	}}

	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(body).
		Post(fmt.Sprintf("/%s/%s", s.baseID, url.PathEscape(s.applicationsTable)))
	if err != nil {
		return fmt.Errorf("append application %s: %w", event.ApplicationID, err)
	}
	if resp.IsError() {
		return fmt.Errorf("append application %s: airtable status %d: %s",
			event.ApplicationID, resp.StatusCode(), resp.String())
	}
	return nil
}

func (s *AirtableStore) patchFields(ctx context.Context, candidateID string, fields map[string]any) error {
	rec, err := s.findRecord(ctx, candidateID)
	if err != nil {
		return err
	}
	if rec == nil {
		return fmt.Errorf("%s: %w", candidateID, ErrCandidateNotFound)
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(airtableRecord{Fields: fields}).
		Patch(fmt.Sprintf("/%s/%s/%s", s.baseID, url.PathEscape(s.candidatesTable), rec.ID))
	if err != nil {
		return fmt.Errorf("update candidate %s: %w", candidateID, err)
	}
	if resp.IsError() {
		return fmt.Errorf("update candidate %s: airtable status %d: %s",
			candidateID, resp.StatusCode(), resp.String())
	}
	return nil
}

func (s *AirtableStore) findRecord(ctx context.Context, candidateID string) (*airtableRecord, error) {
	var list airtableList
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParam("filterByFormula", fmt.Sprintf("{Candidate ID} = '%s'", candidateID)).
		SetResult(&list).
		Get(fmt.Sprintf("/%s/%s", s.baseID, url.PathEscape(s.candidatesTable)))
	if err != nil {
		return nil, fmt.Errorf("find candidate %s: %w", candidateID, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("find candidate %s: airtable status %d: %s",
			candidateID, resp.StatusCode(), resp.String())
	}
	if len(list.Records) == 0 {
		return nil, nil
	}
	return &list.Records[0], nil
}

func (s *AirtableStore) listAll(ctx context.Context, table, filter string) ([]airtableRecord, error) {
	var all []airtableRecord
	offset := ""

	for {
		req := s.client.R().
			SetContext(ctx).
			SetQueryParam("pageSize", "100").
			SetResult(&airtableList{})
		if filter != "" {
			req.SetQueryParam("filterByFormula", filter)
		}
		if offset != "" {
			req.SetQueryParam("offset", offset)
		}

		resp, err := req.Get(fmt.Sprintf("/%s/%s", s.baseID, url.PathEscape(table)))
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", table, err)
		}
		if resp.IsError() {
			return nil, fmt.Errorf("list %s: airtable status %d: %s", table, resp.StatusCode(), resp.String())
		}

		list := resp.Result().(*airtableList)
		all = append(all, list.Records...)

		offset = list.Offset
		if offset == "" {
			break
		}
	}
	return all, nil
}

func decodeCandidate(rec airtableRecord) model.Candidate {
	f := rec.Fields
	candidate := model.Candidate{
		CandidateID:       stringField(f, "Candidate ID"),
		Name:              stringField(f, "Candidate Name"),
		Email:             stringField(f, "Email Address"),
		ResumeURL:         stringField(f, "Resume URL"),
		ResumeText:        stringField(f, "Resume Text"),
		ResumeFingerprint: stringField(f, "Resume Fingerprint"),
		IntentCount:       intField(f, "Intent Count"),
		FitScore:          floatField(f, "Fit Score"),
		FinalScore:        floatField(f, "Final Score"),
		FitExplanation:    stringField(f, "Fit Explanation"),
		Shortlisted:       boolField(f, "Shortlisted"),
		Status:            stringField(f, "Status"),
	}
	if candidate.CandidateID == "" {
		candidate.CandidateID = rec.ID
	}
	if candidate.Status == "" {
		candidate.Status = model.StatusActive
	}

	if raw := stringField(f, "Resume Embedding"); raw != "" {
		var values []float32
		if err := json.Unmarshal([]byte(raw), &values); err == nil && len(values) > 0 {
			vec := pgvector.NewVector(values)
			candidate.ResumeEmbedding = &vec
		}
	}
	return candidate
}

func encodeCandidate(c *model.Candidate) map[string]any {
	fields := map[string]any{
		"Candidate ID":   c.CandidateID,
		"Candidate Name": c.Name,
		"Email Address":  c.Email,
		"Intent Count":   c.IntentCount,
		"Fit Score":      c.FitScore,
		"Final Score":    c.FinalScore,
		"Shortlisted":    c.Shortlisted,
		"Status":         c.Status,
	}
	if c.ResumeURL != "" {
		fields["Resume URL"] = c.ResumeURL
	}
	if c.ResumeText != "" {
		fields["Resume Text"] = c.ResumeText
	}
	if c.ResumeFingerprint != "" {
		fields["Resume Fingerprint"] = c.ResumeFingerprint
	}
	if c.FitExplanation != "" {
		fields["Fit Explanation"] = c.FitExplanation
	}
	if c.ResumeEmbedding != nil {
		if raw, err := json.Marshal(c.ResumeEmbedding.Slice()); err == nil {
			fields["Resume Embedding"] = string(raw)
		}
	}
	return fields
}

func stringField(f map[string]any, key string) string {
	if v, ok := f[key].(string); ok {
		return v
	}
	return ""
}

func intField(f map[string]any, key string) int {
	if v, ok := f[key].(float64); ok {
		return int(v)
	}
	return 0
}

func floatField(f map[string]any, key string) float64 {
	if v, ok := f[key].(float64); ok {
		return v
	}
	return 0
}

func boolField(f map[string]any, key string) bool {
	if v, ok := f[key].(bool); ok {
		return v
	}
	return false
}
