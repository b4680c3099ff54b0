package model

import (
	"time"

	"github.com/pgvector/pgvector-go"
)

const (
	StatusActive   = "active"
	StatusRejected = "rejected"
)

// Candidate is the durable record for one person. FitScore and FinalScore are
// display caches written at ingestion time; ranking always recomputes from the
// embedding and intent count, so these fields are never read on the search
// path.
type Candidate struct {
	CandidateID       string           `gorm:"primaryKey;type:varchar(255)" json:"candidate_id"`
	Name              string           `json:"name"`
	Email             string           `json:"email"`
	ResumeURL         string           `json:"resume_url"`
	ResumeText        string           `gorm:"type:text" json:"resume_text"`
	ResumeEmbedding   *pgvector.Vector `gorm:"type:vector(3072)" json:"-"`
	ResumeFingerprint string           `gorm:"type:varchar(64)" json:"-"`
	IntentCount       int              `json:"intent_count"`
	FitScore          float64          `gorm:"type:float" json:"fit_score"`
	FinalScore        float64          `gorm:"type:float" json:"final_score"`
	FitExplanation    string           `gorm:"type:text" json:"fit_explanation,omitempty"`
	Shortlisted       bool             `json:"shortlisted"`
	Status            string           `gorm:"type:varchar(50)" json:"status"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
}

func (c *Candidate) TableName() string {
	return "candidates"
}

// Embedding returns the stored vector, or nil when none has been computed yet.
func (c *Candidate) Embedding() []float32 {
	if c.ResumeEmbedding == nil {
		return nil
	}
	return c.ResumeEmbedding.Slice()
}
