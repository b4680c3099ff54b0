package dto

type IngestApplicationRequest struct {
	ApplicationID string `json:"application_id"`
	CandidateID   string `json:"candidate_id" validate:"required"`
	Name          string `json:"name" validate:"required"`
	Email         string `json:"email" validate:"required,email"`
	ResumeURL     string `json:"resume_url" validate:"omitempty,url"`
	ResumeText    string `json:"resume_text"`
	RoleTitle     string `json:"role_title" validate:"required"`
	RoleFamily    string `json:"role_family" validate:"required"`
	AppliedAt     string `json:"applied_at" validate:"required"`
}

type ShortlistRequest struct {
	CandidateID string `json:"candidate_id" validate:"required"`
	Shortlisted bool   `json:"shortlisted"`
}

type RejectRequest struct {
	CandidateID string `json:"candidate_id" validate:"required"`
}
