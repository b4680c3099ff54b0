package config

import (
	"os"
	"sync"
)

type AirtableConfig struct {
	APIKey            string
	BaseID            string
	CandidatesTable   string
	ApplicationsTable string
}

var (
	airtableConfig *AirtableConfig
	airtableOnce   sync.Once
)

func LoadAirtableConfig() *AirtableConfig {
	airtableOnce.Do(func() {
		apiKey := os.Getenv("AIRTABLE_API_KEY")
		if apiKey == "" {
			apiKey = os.Getenv("AIRTABLE_PAT")
		}
		candidates := os.Getenv("AIRTABLE_TABLE_CANDIDATES")
		if candidates == "" {
			candidates = "Candidates"
		}
		applications := os.Getenv("AIRTABLE_TABLE_APPLICATIONS")
		if applications == "" {
			applications = "Applications"
		}
		airtableConfig = &AirtableConfig{
			APIKey:            apiKey,
			BaseID:            os.Getenv("AIRTABLE_BASE_ID"),
			CandidatesTable:   candidates,
			ApplicationsTable: applications,
		}
	})
	return airtableConfig
}
