package parse

import (
	"regexp"
	"strings"
)

// Field names understood by ExtractField.
const (
	FieldInvoiceNumber = "invoice_number"
	FieldVendor        = "vendor"
	FieldDate          = "date"
	FieldTotal         = "total"
)

// Each field carries a priority list of patterns evaluated in fixed order.
// Order is load-bearing: specific invoice layouts come before generic
// catch-alls, and the first non-empty capture wins. Patterns match against
// the lower-cased document text.
var fieldPatterns = map[string][]*regexp.Regexp{
	FieldInvoiceNumber: compileAll(
		`invoice number[:\s]+([a-z0-9\-]+)`,
		`invoice #[:\s]+([a-z0-9\-]+)`,
		`invoice[:\s]+([a-z0-9\-]+)`,
		`invoice\s*number\s*([a-z0-9\-/]+)`,
		`invoice\s*#?\s*:?\s*([a-z0-9\-/]+)`,
		`inv\s*#?\s*:?\s*([a-z0-9\-/]+)`,
		`#\s*([a-z0-9\-/]+)`,
	),
	FieldVendor: compileAll(
		`([a-z ]+ hub)`,
		`([a-z ]+ pvt\. ltd\.)`,
		`([a-z ]+ center)`,
		`from[:\s]*\n([a-z0-9\s&,.\-]+?)(?:\n|order)`,
		`bill\s*from[:\s]+([a-z\s&,.]+?)(?:\n|$)`,
		`vendor[:\s]+([a-z\s&,.]+?)(?:\n|$)`,
		`supplier[:\s]+([a-z\s&,.]+?)(?:\n|$)`,
	),
	FieldDate: compileAll(
		`invoice date[:\s]+([a-z]+\s+\d{1,2},?\s+\d{4})`,
		`date[:\s]*(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`,
		`invoice\s*date[:\s]*(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`,
		`(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`,
		`(\d{4}-\d{2}-\d{2})`,
		`([a-z]+\s+\d{1,2},?\s+\d{4})`,
	),
	FieldTotal: compileAll(
		`total amount[:\s₹]+([0-9,]+\.?\d{0,2})`,
		`subtotal[:\s₹]+([0-9,]+\.?\d{0,2})`,
		`total\s*due\s*[$₹]?([0-9,]+\.?\d{0,2})`,
		`total[:\s]*[$₹]?([0-9,]+\.?\d{0,2})`,
		`amount\s*due[:\s]*[$₹]?([0-9,]+\.?\d{0,2})`,
		`grand\s*total[:\s]*[$₹]?([0-9,]+\.?\d{0,2})`,
		`final\s*total[:\s]*[$₹]?([0-9,]+\.?\d{0,2})`,
	),
}

func compileAll(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(exprs))
	for i, expr := range exprs {
		out[i] = regexp.MustCompile(`(?m)` + expr)
	}
	return out
}

// ExtractField tries the field's patterns in strict order against the
// lower-cased text. Within a pattern, matches are scanned top to bottom and
// the first non-empty capture wins. A field absent from the text is not an
// error; the empty string is returned and the normalizer applies fallbacks.
func ExtractField(text, field string) string {
	lower := strings.ToLower(text)
	for _, re := range fieldPatterns[field] {
		for _, m := range re.FindAllStringSubmatch(lower, -1) {
			if v := strings.TrimSpace(m[1]); v != "" {
				return v
			}
		}
	}
	return ""
}
