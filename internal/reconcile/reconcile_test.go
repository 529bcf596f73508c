package reconcile

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raushan1140/invoice-po-matcher/constants"
	"github.com/raushan1140/invoice-po-matcher/internal/config"
	"github.com/raushan1140/invoice-po-matcher/internal/entity"
)

func testMatchingConfig() config.MatchingConfig {
	return config.MatchingConfig{
		VendorSimilarityThreshold: 80,
		ItemSimilarityThreshold:   75,
		VendorWeight:              0.6,
		ItemWeight:                0.4,
		MinOverallScore:           50,
		PriceTolerancePct:         5,
		TopCandidates:             3,
	}
}

func testPOs() []entity.PurchaseOrder {
	return []entity.PurchaseOrder{
		{POID: "PO-2024-001", Vendor: "ABC Electronics", Item: "Laptop Computer", Qty: 10, UnitPrice: 1200, Total: 12000, Date: "2024-09-01"},
		{POID: "PO-2024-002", Vendor: "Office Supplies Co", Item: "Office Chair", Qty: 25, UnitPrice: 300, Total: 7500, Date: "2024-09-02"},
		{POID: "PO-2024-003", Vendor: "Tech Solutions Inc", Item: "Monitor 24inch", Qty: 15, UnitPrice: 250, Total: 3750, Date: "2024-09-03"},
	}
}

func newTestValidator() *Validator {
	return NewValidator(testMatchingConfig(), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestValidateExactMatchApproved(t *testing.T) {
	v := newTestValidator()
	invoice := entity.InvoiceRecord{
		InvoiceNumber: "INV-2024-100",
		Vendor:        "ABC Electronics",
		Date:          "2024-09-15",
		Total:         12000,
		LineItems:     []entity.LineItem{{Item: "Laptop Computer", Qty: 10, UnitPrice: 1200, Total: 12000}},
	}

	result := v.Validate(invoice, testPOs())

	require.NotNil(t, result.BestMatch)
	assert.Equal(t, "PO-2024-001", result.BestMatch.POID)
	assert.True(t, result.BestMatch.IsValid)
	assert.Empty(t, result.BestMatch.Issues)

	require.Len(t, result.Matches, 1)
	assert.Empty(t, result.Mismatches)
	assert.Equal(t, constants.StatusApproved, result.Summary.Status)
	assert.True(t, result.Summary.HasMatches)
	assert.False(t, result.ValidationTimestamp.IsZero())
}

func TestValidateQuantityMismatchWarns(t *testing.T) {
	v := newTestValidator()
	invoice := entity.InvoiceRecord{
		InvoiceNumber: "INV-2024-101",
		Vendor:        "ABC Electronics",
		Date:          "2024-09-15",
		Total:         9600,
		LineItems:     []entity.LineItem{{Item: "Laptop Computer", Qty: 8, UnitPrice: 1200, Total: 9600}},
	}

	result := v.Validate(invoice, testPOs())

	require.NotNil(t, result.BestMatch)
	assert.True(t, result.BestMatch.IsValid) // medium issues do not invalidate
	require.Len(t, result.BestMatch.Issues, 1)

	issue := result.BestMatch.Issues[0]
	assert.Equal(t, constants.IssueQuantityMismatch, issue.Type)
	assert.Equal(t, constants.SeverityMedium, issue.Severity)
	assert.Equal(t, -2, issue.Details["difference"])

	assert.Equal(t, constants.StatusApprovedWithWarnings, result.Summary.Status)
}

func TestValidateNoPOMatch(t *testing.T) {
	v := newTestValidator()
	invoice := entity.InvoiceRecord{
		InvoiceNumber: "INV-2024-102",
		Vendor:        "XYZ Corp",
		Date:          "2024-09-15",
		LineItems:     []entity.LineItem{{Item: "Unrelated Product", Qty: 1, UnitPrice: 10, Total: 10}},
	}

	result := v.Validate(invoice, testPOs())

	assert.Nil(t, result.BestMatch)
	assert.Empty(t, result.Matches)
	require.Len(t, result.Mismatches, 1)

	issue := result.Mismatches[0]
	assert.Equal(t, constants.IssueNoMatchingPO, issue.Type)
	assert.Equal(t, constants.SeverityHigh, issue.Severity)
	assert.Equal(t, "XYZ Corp", issue.Details["invoice_vendor"])

	assert.Equal(t, constants.StatusNoPOMatch, result.Summary.Status)
	assert.False(t, result.Summary.HasMatches)
}

func TestValidatePriceMismatchOutsideTolerance(t *testing.T) {
	v := newTestValidator()
	invoice := entity.InvoiceRecord{
		Vendor:    "ABC Electronics",
		Date:      "2024-09-15",
		LineItems: []entity.LineItem{{Item: "Laptop Computer", Qty: 10, UnitPrice: 1300, Total: 13000}},
	}

	result := v.Validate(invoice, testPOs())

	require.NotNil(t, result.BestMatch)
	types := issueTypes(result.BestMatch.Issues)
	assert.Contains(t, types, constants.IssuePriceMismatch)
	assert.Contains(t, types, constants.IssueTotalMismatch)
	assert.Equal(t, constants.StatusApprovedWithWarnings, result.Summary.Status)
}

func TestValidatePriceWithinToleranceAccepted(t *testing.T) {
	v := newTestValidator()
	// 1248 is 4 percent over the PO price of 1200, within the 5 percent band.
	invoice := entity.InvoiceRecord{
		Vendor:    "ABC Electronics",
		Date:      "2024-09-15",
		LineItems: []entity.LineItem{{Item: "Laptop Computer", Qty: 10, UnitPrice: 1248, Total: 12000}},
	}

	result := v.Validate(invoice, testPOs())

	require.NotNil(t, result.BestMatch)
	assert.NotContains(t, issueTypes(result.BestMatch.Issues), constants.IssuePriceMismatch)
}

func TestValidateDateWarning(t *testing.T) {
	v := newTestValidator()
	invoice := entity.InvoiceRecord{
		Vendor:    "ABC Electronics",
		Date:      "2024-08-15", // before the PO date
		LineItems: []entity.LineItem{{Item: "Laptop Computer", Qty: 10, UnitPrice: 1200, Total: 12000}},
	}

	result := v.Validate(invoice, testPOs())

	require.NotNil(t, result.BestMatch)
	require.Len(t, result.BestMatch.Issues, 1)
	issue := result.BestMatch.Issues[0]
	assert.Equal(t, constants.IssueDateWarning, issue.Type)
	assert.Equal(t, constants.SeverityLow, issue.Severity)

	// Low severity still approves with warnings.
	assert.Equal(t, constants.StatusApprovedWithWarnings, result.Summary.Status)
	assert.True(t, result.BestMatch.IsValid)
}

func TestValidateUnparsableDateSkipsCheck(t *testing.T) {
	v := newTestValidator()
	invoice := entity.InvoiceRecord{
		Vendor:    "ABC Electronics",
		Date:      "sometime in fall",
		LineItems: []entity.LineItem{{Item: "Laptop Computer", Qty: 10, UnitPrice: 1200, Total: 12000}},
	}

	result := v.Validate(invoice, testPOs())

	require.NotNil(t, result.BestMatch)
	assert.NotContains(t, issueTypes(result.BestMatch.Issues), constants.IssueDateWarning)
}

func TestValidateVendorOnlyMatchInvalid(t *testing.T) {
	v := newTestValidator()
	// Vendor matches but none of the line items resemble the PO item. The
	// sole candidate fails validation, so no valid match remains and the
	// invoice reports no PO match.
	invoice := entity.InvoiceRecord{
		Vendor:    "ABC Electronics",
		Date:      "2024-09-15",
		LineItems: []entity.LineItem{{Item: "Stapler Device", Qty: 1, UnitPrice: 10, Total: 10}},
	}

	result := v.Validate(invoice, testPOs())

	require.NotNil(t, result.BestMatch)
	assert.False(t, result.BestMatch.IsValid)
	assert.Contains(t, issueTypes(result.BestMatch.Issues), constants.IssueItemNotFound)
	assert.Contains(t, issueTypes(result.Mismatches), constants.IssueItemNotFound)

	assert.Empty(t, result.Matches)
	assert.Equal(t, constants.StatusNoPOMatch, result.Summary.Status)
}

func issueTypes(issues []entity.Issue) []constants.IssueType {
	out := make([]constants.IssueType, 0, len(issues))
	for _, issue := range issues {
		out = append(out, issue.Type)
	}
	return out
}
