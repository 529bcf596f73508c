package entity

import (
	"time"

	"github.com/raushan1140/invoice-po-matcher/constants"
)

// MatchCandidate scores one purchase order against an invoice.
// Recomputed on every validation call, never persisted.
type MatchCandidate struct {
	PO               PurchaseOrder `json:"po_data"`
	VendorSimilarity float64       `json:"vendor_similarity"` // 0..100
	ItemSimilarity   float64       `json:"item_similarity"`   // 0..100
	OverallScore     float64       `json:"overall_score"`
}

// Issue is one typed, severity-tagged discrepancy. Data-quality problems are
// always modeled as issues, never as errors.
type Issue struct {
	Type     constants.IssueType `json:"type"`
	Severity constants.Severity  `json:"severity"`
	Message  string              `json:"message"`
	Details  map[string]any      `json:"details"`
}

// POValidation is the field-by-field comparison of an invoice against a
// single purchase order. Valid iff no high-severity issue was raised.
type POValidation struct {
	POID       string  `json:"po_id"`
	MatchScore float64 `json:"match_score"`
	IsValid    bool    `json:"is_valid"`
	Issues     []Issue `json:"issues"`
}

// SeverityBreakdown counts aggregate issues per severity.
type SeverityBreakdown struct {
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
}

// Summary reduces a validation result to a final status.
type Summary struct {
	Status            constants.ValidationStatus `json:"status"`
	Message           string                     `json:"message"`
	TotalIssues       int                        `json:"total_issues"`
	SeverityBreakdown SeverityBreakdown          `json:"severity_breakdown"`
	HasMatches        bool                       `json:"has_matches"`
}

// ValidationResult is the structured verdict for one invoice. Serialized as
// an opaque blob next to the invoice row by the storage layer.
type ValidationResult struct {
	Matches             []POValidation `json:"matches"`
	Mismatches          []Issue        `json:"mismatches"`
	BestMatch           *POValidation  `json:"best_match,omitempty"`
	Summary             Summary        `json:"summary"`
	ValidationTimestamp time.Time      `json:"validation_timestamp"`
}
