package core

import (
	"time"

	"github.com/google/uuid"
)

// Origin identifies who submitted an analysis over HTTP.
type Origin struct {
	IPAddress string `json:"ipAddress,omitempty"`
	UserAgent string `json:"userAgent,omitempty"`
}

// Report is the outcome of one analysis run.
type Report struct {
	RunID            uuid.UUID `json:"runId"`
	Source           string    `json:"source"`
	CreatedAt        time.Time `json:"createdAt"`
	Keys             Keys      `json:"keys"`
	Header           Header    `json:"header"`
	RecordCount      int       `json:"recordCount"`
	Duplicates       []Tuple   `json:"duplicates"`
	Categories       *Counts   `json:"categories"`
	InvalidAmounts   []Record  `json:"invalidAmounts"`
	Totals           *Totals   `json:"totals"`
	Origin           Origin    `json:"origin"`
	ProcessingTimeMs int64     `json:"processingTimeMs"`
}

// Analyze runs all four analyzers over records.
// The returned report has no RunID or Source; Service fills those in.
func Analyze(header Header, records []Record, keys Keys) *Report {
	duplicates := DetectDuplicates(records)
	if duplicates == nil {
		duplicates = []Tuple{}
	}
	invalid := DetectInvalidAmounts(records, keys.Amount)
	if invalid == nil {
		invalid = []Record{}
	}
	if header == nil {
		header = Header{}
	}

	return &Report{
		Keys:           keys,
		Header:         header,
		RecordCount:    len(records),
		Duplicates:     duplicates,
		Categories:     CountCategories(records, keys.Category),
		InvalidAmounts: invalid,
		Totals:         SumByCategory(records, keys),
	}
}
