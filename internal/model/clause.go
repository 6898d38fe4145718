package model

import "strings"

// ClauseType is one category of the fixed clause taxonomy.
// The declaration order is the catalog order used for scoring and tie-breaking.
type ClauseType int

const (
	ClauseConfidentiality ClauseType = iota
	ClauseTermination
	ClauseIndemnification
	ClauseGoverningLaw
	ClausePaymentTerms
	ClauseLiability
	ClauseNonCompete
	ClauseSeverance
	ClauseIPAssignment
	ClauseDisputeResolution
	ClauseForceMajeure
	ClauseAssignment
	ClauseNotices
	ClauseEntireAgreement
	ClauseAmendment
	ClauseWaiver
	ClauseOther

	clauseTypeCount
)

var clauseTypeNames = [clauseTypeCount]string{
	ClauseConfidentiality:   "Confidentiality",
	ClauseTermination:       "Termination",
	ClauseIndemnification:   "Indemnification",
	ClauseGoverningLaw:      "Governing Law",
	ClausePaymentTerms:      "Payment Terms",
	ClauseLiability:         "Liability",
	ClauseNonCompete:        "Non-Compete",
	ClauseSeverance:         "Severance",
	ClauseIPAssignment:      "IP Assignment",
	ClauseDisputeResolution: "Dispute Resolution",
	ClauseForceMajeure:      "Force Majeure",
	ClauseAssignment:        "Assignment",
	ClauseNotices:           "Notices",
	ClauseEntireAgreement:   "Entire Agreement",
	ClauseAmendment:         "Amendment",
	ClauseWaiver:            "Waiver",
	ClauseOther:             "Other",
}

// AllClauseTypes returns every clause type in catalog order.
func AllClauseTypes() []ClauseType {
	out := make([]ClauseType, 0, clauseTypeCount)
	for t := ClauseType(0); t < clauseTypeCount; t++ {
		out = append(out, t)
	}
	return out
}

// Valid reports whether t is a member of the taxonomy.
func (t ClauseType) Valid() bool {
	return t >= 0 && t < clauseTypeCount
}

// String returns the display name used as the clause title.
func (t ClauseType) String() string {
	if !t.Valid() {
		return "Unknown"
	}
	return clauseTypeNames[t]
}

// Risk returns the static risk level associated with the clause type.
func (t ClauseType) Risk() Risk {
	return RiskFor(t.String())
}

// ParseClauseType resolves a display name (case-insensitive) to a ClauseType.
func ParseClauseType(name string) (ClauseType, bool) {
	name = strings.TrimSpace(name)
	for t, n := range clauseTypeNames {
		if strings.EqualFold(n, name) {
			return ClauseType(t), true
		}
	}
	return 0, false
}

// Risk is a coarse severity tag attached to a clause.
type Risk string

const (
	RiskLow    Risk = "low"
	RiskMedium Risk = "medium"
	RiskHigh   Risk = "high"
)

// riskTable is the explicit risk assignment. Names missing here are medium.
var riskTable = map[string]Risk{
	"Confidentiality":    RiskMedium,
	"Termination":        RiskLow,
	"Indemnification":    RiskHigh,
	"Governing Law":      RiskLow,
	"Payment Terms":      RiskMedium,
	"Liability":          RiskHigh,
	"Non-Compete":        RiskHigh,
	"Severance":          RiskLow,
	"IP Assignment":      RiskMedium,
	"At-Will Employment": RiskLow,
}

// RiskFor looks up the risk level for a clause-type name, defaulting to medium.
func RiskFor(name string) Risk {
	if r, ok := riskTable[name]; ok {
		return r
	}
	return RiskMedium
}

// FallbackConfidence is the fixed confidence given to paragraphs that matched
// no clause type and were filed under Other.
const FallbackConfidence = 0.4

// FallbackRisk is the risk given to unmatched paragraphs.
const FallbackRisk = RiskLow

// Paragraph is a candidate clause span of the input document.
type Paragraph struct {
	Index int    // position in segmentation order (0-based)
	Text  string // trimmed paragraph text
}

// CandidateMatch is a (paragraph, clause type) pair that scored above threshold,
// or the synthetic Other entry for a paragraph that matched nothing.
type CandidateMatch struct {
	ParagraphIndex int
	Type           ClauseType
	Confidence     float64 // best anchor similarity, rounded to 3 decimals
	Source         string  // paragraph text
	Fallback       bool    // true for the synthetic Other candidate
}

// Risk returns the risk this candidate will carry once emitted.
func (c CandidateMatch) Risk() Risk {
	if c.Fallback {
		return FallbackRisk
	}
	return c.Type.Risk()
}

// ExtractedClause is a deduplicated, described clause with its internal scoring data.
type ExtractedClause struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Risk        Risk    `json:"risk"`
	Section     string  `json:"section"`
	Confidence  float64 `json:"confidence"`
	Source      string  `json:"source,omitempty"`
}

// Public strips the internal fields.
func (c ExtractedClause) Public() Clause {
	return Clause{
		Title:       c.Title,
		Description: c.Description,
		Risk:        c.Risk,
		Section:     c.Section,
	}
}

// Clause is the user-facing view of an extracted clause.
type Clause struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Risk        Risk   `json:"risk"`
	Section     string `json:"section"`
}
