package reconcile

import (
	"fmt"

	"github.com/raushan1140/invoice-po-matcher/constants"
	"github.com/raushan1140/invoice-po-matcher/internal/entity"
)

// Summarize reduces a validation result to its final status. The status is
// a pure function of (has_matches, high_count, total_count). Advisory
// issues on valid matches count toward the total, so an approved invoice
// really had zero findings.
func Summarize(result entity.ValidationResult) entity.Summary {
	var breakdown entity.SeverityBreakdown
	totalIssues := 0

	count := func(issues []entity.Issue) {
		for _, issue := range issues {
			totalIssues++
			switch issue.Severity {
			case constants.SeverityHigh:
				breakdown.High++
			case constants.SeverityMedium:
				breakdown.Medium++
			case constants.SeverityLow:
				breakdown.Low++
			}
		}
	}
	for _, m := range result.Matches {
		count(m.Issues)
	}
	count(result.Mismatches)

	hasMatches := len(result.Matches) > 0

	var status constants.ValidationStatus
	var message string
	switch {
	case hasMatches && totalIssues == 0:
		status = constants.StatusApproved
		message = "Invoice successfully validated against purchase order"
	case hasMatches && breakdown.High == 0:
		status = constants.StatusApprovedWithWarnings
		message = fmt.Sprintf("Invoice approved with %d minor issues", totalIssues)
	case hasMatches:
		status = constants.StatusRejected
		message = fmt.Sprintf("Invoice rejected due to %d critical issues", breakdown.High)
	default:
		status = constants.StatusNoPOMatch
		message = "No matching purchase order found"
	}

	return entity.Summary{
		Status:            status,
		Message:           message,
		TotalIssues:       totalIssues,
		SeverityBreakdown: breakdown,
		HasMatches:        hasMatches,
	}
}
