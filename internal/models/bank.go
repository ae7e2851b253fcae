package models

// Bank is a named collection of validated question definitions.
type Bank struct {
	BankID      string     `json:"bank_id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Version     string     `json:"version,omitempty"`
	Questions   []Question `json:"questions"`
}

// BankInfo is catalog metadata for one bank, without question payloads.
type BankInfo struct {
	File          string               `json:"file"`
	BankID        string               `json:"bank_id"`
	Title         string               `json:"title"`
	Description   string               `json:"description,omitempty"`
	Version       string               `json:"version,omitempty"`
	QuestionCount int                  `json:"question_count"`
	TypeCounts    map[QuestionType]int `json:"type_counts"`
	DomainCounts  map[string]int       `json:"domain_counts"`
}
