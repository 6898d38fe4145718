package model

import (
	"os"
	"path/filepath"
	"time"
)

// Report is the rendered outcome of extracting clauses from one document.
type Report struct {
	Subject     string            `json:"subject"` // file name, URL host, or "stdin"
	Source      string            `json:"source"`  // path or URL that was read
	ExtractedAt time.Time         `json:"extracted_at"`
	RequestID   string            `json:"request_id"`
	Threshold   float64           `json:"threshold"`
	Paragraphs  int               `json:"paragraphs"` // paragraphs that survived segmentation
	Clauses     []ExtractedClause `json:"clauses"`
	FetchMeta   *FetchMeta        `json:"fetch_meta,omitempty"` // present for URL sources
	Duration    time.Duration     `json:"duration_ns"`
}

// PublicClauses returns the clauses without confidence or source text.
func (r *Report) PublicClauses() []Clause {
	out := make([]Clause, 0, len(r.Clauses))
	for _, c := range r.Clauses {
		out = append(out, c.Public())
	}
	return out
}

// RiskCounts tallies clauses per risk level.
func (r *Report) RiskCounts() map[Risk]int {
	counts := map[Risk]int{RiskLow: 0, RiskMedium: 0, RiskHigh: 0}
	for _, c := range r.Clauses {
		counts[c.Risk]++
	}
	return counts
}

// FetchMeta contains HTTP metadata from fetching a URL source
type FetchMeta struct {
	StatusCode   int    `json:"status_code"`
	ContentType  string `json:"content_type,omitempty"`
	LastModified string `json:"last_modified,omitempty"`
	FinalURL     string `json:"final_url,omitempty"`
}

func defaultCacheDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "lawlens")
	}
	return filepath.Join(os.TempDir(), "lawlens-cache")
}
