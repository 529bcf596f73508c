package constants

// ValidationStatus is the final verdict for an invoice validation.
type ValidationStatus string

// Stable values (store these exact strings in DB).
const (
	StatusApproved             ValidationStatus = "approved"
	StatusApprovedWithWarnings ValidationStatus = "approved_with_warnings"
	StatusRejected             ValidationStatus = "rejected"
	StatusNoPOMatch            ValidationStatus = "no_po_match"
)

// Severity grades a reconciliation issue. High invalidates a PO match;
// medium and low are advisory.
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// IssueType identifies the kind of discrepancy found during reconciliation.
type IssueType string

const (
	IssueNoMatchingPO     IssueType = "no_matching_po"
	IssueVendorMismatch   IssueType = "vendor_mismatch"
	IssueItemNotFound     IssueType = "item_not_found"
	IssueQuantityMismatch IssueType = "quantity_mismatch"
	IssuePriceMismatch    IssueType = "price_mismatch"
	IssueTotalMismatch    IssueType = "total_mismatch"
	IssueDateWarning      IssueType = "date_warning"
)
