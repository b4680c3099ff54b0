package model

import (
	"time"

	"github.com/google/uuid"
)

// Application is one append-only application event. Every event increments the
// candidate's intent count by one, including repeats of the same
// application_id: intent is a count of events, not a deduplicated set.
type Application struct {
	ID            uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ApplicationID string    `gorm:"type:varchar(255)" json:"application_id"`
	CandidateID   string    `gorm:"type:varchar(255);index" json:"candidate_id"`
	RoleTitle     string    `json:"role_title"`
	RoleFamily    string    `json:"role_family"`
	AppliedAt     time.Time `json:"applied_at"`
	CreatedAt     time.Time `json:"created_at"`
}

func (a *Application) TableName() string {
	return "applications"
}
