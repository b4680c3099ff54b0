package dto

type SearchRequest struct {
	Query string `json:"query" validate:"required"`
	Limit int    `json:"limit" validate:"omitempty,min=1"`
}

type CandidateResult struct {
	CandidateID  string   `json:"candidate_id"`
	Name         string   `json:"name"`
	Relevance    float64  `json:"relevance"`
	FitScore     float64  `json:"fit_score"`
	IntentCount  int      `json:"intent_count"`
	MatchedTerms []string `json:"matched_terms"`
	Snippet      string   `json:"snippet"`
	Shortlisted  bool     `json:"shortlisted"`
	Status       string   `json:"status"`
	Email        string   `json:"email,omitempty"`
	ResumeURL    string   `json:"resume_url,omitempty"`
}
