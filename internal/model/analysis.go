package model

import (
	"encoding/json"
	"time"
)

// Analysis is one persisted result of running a document through the
// analysis pipeline. Re-analyzing the same document appends a new row.
type Analysis struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	FileID    string    `gorm:"size:512;not null;index" json:"file_id"`
	FileName  string    `gorm:"size:256;not null" json:"file_name"`
	FileURL   string    `gorm:"size:1024;not null" json:"file_url"`
	Payload   string    `gorm:"type:text;not null" json:"-"` // JSON AnalysisPayload
	CreatedAt time.Time `json:"created_at"`
}

type AnalysisPayload struct {
	Summary   string   `json:"summary"`
	KeyPoints []string `json:"keyPoints"`
	Sentiment string   `json:"sentiment"`
	Topics    []string `json:"topics"`
}

// AnalysisResult returns the parsed payload; zero value on parse error.
func (a *Analysis) AnalysisResult() AnalysisPayload {
	var p AnalysisPayload
	if a.Payload != "" {
		_ = json.Unmarshal([]byte(a.Payload), &p)
	}
	return p
}

// SetPayload stores the payload as JSON.
func (a *Analysis) SetPayload(p AnalysisPayload) {
	b, _ := json.Marshal(p)
	a.Payload = string(b)
}
