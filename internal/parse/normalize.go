package parse

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/raushan1140/invoice-po-matcher/internal/entity"
)

// UnknownVendor is the final vendor fallback when neither pattern matching
// nor the from-line scan produced anything.
const UnknownVendor = "Unknown Vendor"

var (
	reVendorScrub = regexp.MustCompile(`[^\w\s&,.]`)
	reTotalScrub  = regexp.MustCompile(`[^0-9.]`)
	reAllDigits   = regexp.MustCompile(`^\d+$`)
)

// dateLayouts are attempted in order; the first success wins.
var dateLayouts = []string{"January 2, 2006", "01/02/2006", "01-02-2006"}

// RawFields carries the pattern-extraction output before normalization.
// Empty strings mean the field was absent from the text.
type RawFields struct {
	InvoiceNumber string
	Vendor        string
	Date          string
	Total         string
	LineItems     []entity.LineItem
	RawText       string
}

// Normalizer cleans, validates and defaults extracted fields. It performs
// no I/O; the clock is injectable so synthesized invoice numbers are
// testable.
type Normalizer struct {
	now func() time.Time
}

func NewNormalizer() *Normalizer {
	return &Normalizer{now: time.Now}
}

// Normalize produces a complete InvoiceRecord. The invariant downstream
// code relies on: invoice number, vendor, date and total are never empty
// after this call.
func (n *Normalizer) Normalize(raw RawFields) entity.InvoiceRecord {
	now := n.now()
	rec := entity.InvoiceRecord{
		Vendor:              n.normalizeVendor(raw.Vendor, raw.RawText),
		Total:               normalizeTotal(raw.Total),
		InvoiceNumber:       n.normalizeInvoiceNumber(raw.InvoiceNumber, now),
		Date:                n.normalizeDate(raw.Date, now),
		LineItems:           normalizeLineItems(raw.LineItems),
		RawText:             raw.RawText,
		ExtractionTimestamp: now,
	}
	return rec
}

func (n *Normalizer) normalizeVendor(vendor, rawText string) string {
	if vendor != "" {
		vendor = reVendorScrub.ReplaceAllString(vendor, "")
		return strings.Join(strings.Fields(vendor), " ")
	}

	// Fallback: the first meaningful line after a "from:" marker.
	lines := strings.Split(rawText, "\n")
	for i, line := range lines {
		if !strings.Contains(strings.ToLower(line), "from:") || i+1 >= len(lines) {
			continue
		}
		candidate := strings.TrimSpace(lines[i+1])
		if candidate == "" || reAllDigits.MatchString(candidate) {
			continue
		}
		if len(candidate) > 50 {
			candidate = candidate[:50]
		}
		return candidate
	}
	return UnknownVendor
}

func normalizeTotal(total string) float64 {
	if total == "" {
		return 0
	}
	clean := reTotalScrub.ReplaceAllString(total, "")
	v, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		return 0
	}
	return v
}

func (n *Normalizer) normalizeInvoiceNumber(num string, now time.Time) string {
	if num != "" {
		return strings.ToUpper(strings.TrimSpace(num))
	}
	return "INV-" + now.Format("20060102150405")
}

// normalizeDate reformats a captured date to YYYY-MM-DD when one of the
// known layouts parses. An unparsable capture is kept verbatim; a missing
// one falls back to today.
func (n *Normalizer) normalizeDate(date string, now time.Time) string {
	if date == "" {
		return now.Format("2006-01-02")
	}
	date = strings.TrimSpace(date)
	for _, layout := range dateLayouts {
		for _, candidate := range []string{date, titleCase(date)} {
			if t, err := time.Parse(layout, candidate); err == nil {
				return t.Format("2006-01-02")
			}
		}
	}
	return date
}

func normalizeLineItems(items []entity.LineItem) []entity.LineItem {
	out := make([]entity.LineItem, len(items))
	copy(out, items)
	for i := range out {
		if out[i].Total == 0 && out[i].Qty > 0 && out[i].UnitPrice > 0 {
			out[i].Total = float64(out[i].Qty) * out[i].UnitPrice
		}
	}
	return out
}

// titleCase upper-cases the first letter of each word. Month names are
// captured from lower-cased text, but the month layout is case-sensitive.
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
