package models

import (
	"time"
)

// Operation names stored with each history record.
const (
	OpUpload      = "upload"
	OpAnalyzeText = "analyze-text"
	OpAnalyzeFile = "analyze-file"
	OpChat        = "chat"
)

// Record is one completed backend operation kept in the local history.
// Response holds the backend's response body verbatim as JSON.
type Record struct {
	ID           string    `json:"id" db:"id"`
	Operation    string    `json:"operation" db:"operation"`
	Input        string    `json:"input" db:"input"`
	AnalysisType string    `json:"analysis_type,omitempty" db:"analysis_type"`
	Response     string    `json:"response" db:"response"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
