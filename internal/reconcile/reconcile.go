package reconcile

import (
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/raushan1140/invoice-po-matcher/constants"
	"github.com/raushan1140/invoice-po-matcher/internal/config"
	"github.com/raushan1140/invoice-po-matcher/internal/entity"
	"github.com/raushan1140/invoice-po-matcher/internal/match"
)

// Validator runs the full matching-and-reconciliation stage: candidate
// scoring, per-PO field comparison and the final summary. It performs no
// I/O; callers hand it an already-fetched PO snapshot.
type Validator struct {
	cfg     config.MatchingConfig
	matcher *match.Matcher
	logger  *slog.Logger
}

func NewValidator(cfg config.MatchingConfig, logger *slog.Logger) *Validator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Validator{cfg: cfg, matcher: match.NewMatcher(cfg, logger), logger: logger}
}

// Validate reconciles an invoice against a purchase-order snapshot.
// Data-quality problems become issues inside the result, never errors.
func (v *Validator) Validate(invoice entity.InvoiceRecord, pos []entity.PurchaseOrder) entity.ValidationResult {
	candidates := v.matcher.FindCandidates(invoice, pos)
	result := v.reconcile(invoice, candidates)
	result.Summary = Summarize(result)
	result.ValidationTimestamp = time.Now().UTC()

	v.logger.Info("validate.ok",
		"invoice_number", invoice.InvoiceNumber,
		"candidates", len(candidates),
		"matches", len(result.Matches),
		"mismatches", len(result.Mismatches),
		"status", result.Summary.Status,
	)
	return result
}

// reconcile examines the top candidates in rank order. Valid per-PO
// validations feed matches; issues from invalid ones are appended to the
// aggregate mismatch list, best candidate first. The best-ranked candidate
// is always recorded as BestMatch, valid or not.
func (v *Validator) reconcile(invoice entity.InvoiceRecord, candidates []entity.MatchCandidate) entity.ValidationResult {
	result := entity.ValidationResult{
		Matches:    []entity.POValidation{},
		Mismatches: []entity.Issue{},
	}

	if len(candidates) == 0 {
		items := make([]string, 0, len(invoice.LineItems))
		for _, it := range invoice.LineItems {
			items = append(items, it.Item)
		}
		result.Mismatches = append(result.Mismatches, entity.Issue{
			Type:     constants.IssueNoMatchingPO,
			Severity: constants.SeverityHigh,
			Message:  "No matching purchase order found for this invoice",
			Details: map[string]any{
				"invoice_vendor": invoice.Vendor,
				"invoice_items":  items,
			},
		})
		return result
	}

	top := candidates
	if len(top) > v.cfg.TopCandidates {
		top = top[:v.cfg.TopCandidates]
	}
	for i, c := range top {
		validation := v.validateAgainstPO(invoice, c)
		if validation.IsValid {
			result.Matches = append(result.Matches, validation)
		} else {
			result.Mismatches = append(result.Mismatches, validation.Issues...)
		}
		if i == 0 {
			best := validation
			result.BestMatch = &best
		}
	}
	return result
}

// validateAgainstPO compares the invoice field by field with one purchase
// order. Only the first line item clearing the item similarity threshold is
// checked numerically; the rest are skipped.
func (v *Validator) validateAgainstPO(invoice entity.InvoiceRecord, c entity.MatchCandidate) entity.POValidation {
	po := c.PO
	validation := entity.POValidation{
		POID:       po.POID,
		MatchScore: c.OverallScore,
		IsValid:    true,
		Issues:     []entity.Issue{},
	}

	invoiceVendor := strings.TrimSpace(invoice.Vendor)
	if invoiceVendor != "" && c.VendorSimilarity < v.cfg.VendorSimilarityThreshold {
		validation.Issues = append(validation.Issues, entity.Issue{
			Type:     constants.IssueVendorMismatch,
			Severity: constants.SeverityHigh,
			Message:  fmt.Sprintf("Vendor mismatch: Invoice shows %q, PO shows %q", invoiceVendor, po.Vendor),
			Details: map[string]any{
				"invoice_vendor":   invoiceVendor,
				"po_vendor":        po.Vendor,
				"similarity_score": c.VendorSimilarity,
			},
		})
	}

	itemFound := false
	for _, item := range invoice.LineItems {
		similarity := match.Ratio(strings.ToLower(item.Item), strings.ToLower(po.Item))
		if similarity < v.cfg.ItemSimilarityThreshold {
			continue
		}
		itemFound = true

		if item.Qty != po.Qty {
			validation.Issues = append(validation.Issues, entity.Issue{
				Type:     constants.IssueQuantityMismatch,
				Severity: constants.SeverityMedium,
				Message:  fmt.Sprintf("Quantity mismatch for %s: Invoice shows %d, PO shows %d", po.Item, item.Qty, po.Qty),
				Details: map[string]any{
					"item":        po.Item,
					"invoice_qty": item.Qty,
					"po_qty":      po.Qty,
					"difference":  item.Qty - po.Qty,
				},
			})
		}

		priceDiffPct := relativeDiffPct(item.UnitPrice, po.UnitPrice)
		if priceDiffPct > v.cfg.PriceTolerancePct {
			validation.Issues = append(validation.Issues, entity.Issue{
				Type:     constants.IssuePriceMismatch,
				Severity: constants.SeverityMedium,
				Message:  fmt.Sprintf("Price mismatch for %s: Invoice shows $%.2f, PO shows $%.2f", po.Item, item.UnitPrice, po.UnitPrice),
				Details: map[string]any{
					"item":                  po.Item,
					"invoice_unit_price":    item.UnitPrice,
					"po_unit_price":         po.UnitPrice,
					"difference_percentage": round2(priceDiffPct),
				},
			})
		}

		expectedTotal := float64(item.Qty) * po.UnitPrice
		totalDiffPct := relativeDiffPct(item.Total, expectedTotal)
		if totalDiffPct > v.cfg.PriceTolerancePct {
			validation.Issues = append(validation.Issues, entity.Issue{
				Type:     constants.IssueTotalMismatch,
				Severity: constants.SeverityMedium,
				Message:  fmt.Sprintf("Total mismatch for %s: Invoice shows $%.2f, expected $%.2f", po.Item, item.Total, expectedTotal),
				Details: map[string]any{
					"item":                  po.Item,
					"invoice_total":         item.Total,
					"expected_total":        expectedTotal,
					"difference_percentage": round2(totalDiffPct),
				},
			})
		}

		// Only the first matched item is checked.
		break
	}

	if !itemFound {
		itemNames := make([]string, 0, len(invoice.LineItems))
		for _, it := range invoice.LineItems {
			itemNames = append(itemNames, it.Item)
		}
		validation.Issues = append(validation.Issues, entity.Issue{
			Type:     constants.IssueItemNotFound,
			Severity: constants.SeverityHigh,
			Message:  fmt.Sprintf("Item %q from PO not found in invoice", po.Item),
			Details: map[string]any{
				"po_item":       po.Item,
				"invoice_items": itemNames,
			},
		})
	}

	// Date check only when both sides parse; unparsable dates are skipped.
	if invoiceDate, err := time.Parse("2006-01-02", invoice.Date); err == nil {
		if poDate, err := time.Parse("2006-01-02", po.Date); err == nil && invoiceDate.Before(poDate) {
			validation.Issues = append(validation.Issues, entity.Issue{
				Type:     constants.IssueDateWarning,
				Severity: constants.SeverityLow,
				Message:  fmt.Sprintf("Invoice date (%s) is before PO date (%s)", invoice.Date, po.Date),
				Details: map[string]any{
					"invoice_date": invoice.Date,
					"po_date":      po.Date,
				},
			})
		}
	}

	for _, issue := range validation.Issues {
		if issue.Severity == constants.SeverityHigh {
			validation.IsValid = false
			break
		}
	}
	return validation
}

// relativeDiffPct is the difference between got and want as a percentage of
// want; 100 when want is zero.
func relativeDiffPct(got, want float64) float64 {
	if want <= 0 {
		return 100
	}
	return math.Abs(got-want) / want * 100
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
