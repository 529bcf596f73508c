package parse

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/raushan1140/invoice-po-matcher/internal/entity"
)

var (
	// <description> <qty> <unit_price> <total>, optional currency glyph,
	// thousands separators allowed.
	reItemRow = regexp.MustCompile(`(.+?)\s+(\d+)\s+[$₹]?([0-9,]+\.\d{2})\s+[$₹]?([0-9,]+\.\d{2})`)

	reColumns = regexp.MustCompile(`\s{2,}`)

	// Last-resort product vocabulary, then a generic two-word-plus-size shape.
	reProductHints = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(laptop|computer|monitor|chair|mouse|keyboard|printer|cable)`),
		regexp.MustCompile(`(?i)([a-z]+\s+[a-z]+\s+\d+[a-z]*)`),
	}

	reFirstInt    = regexp.MustCompile(`(\d+)`)
	reFirstAmount = regexp.MustCompile(`\$?([0-9,]+\.?\d{0,2})`)
)

// ExtractLineItems pulls billed rows out of invoice text. Strategies are
// tried in order until one yields at least one item: a single-line row
// regex, a whitespace column split, and finally a keyword scan that
// harvests nearby numbers.
func ExtractLineItems(text string) []entity.LineItem {
	if items := itemsFromRowRegex(text); len(items) > 0 {
		return items
	}
	if items := itemsFromColumns(text); len(items) > 0 {
		return items
	}
	return itemsFromKeywords(text)
}

func itemsFromRowRegex(text string) []entity.LineItem {
	var items []entity.LineItem
	for _, line := range strings.Split(text, "\n") {
		m := reItemRow.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		qty, err := strconv.Atoi(m[2])
		if err != nil {
			continue
		}
		unitPrice, err1 := parseAmount(m[3])
		total, err2 := parseAmount(m[4])
		if err1 != nil || err2 != nil {
			continue
		}
		items = append(items, entity.LineItem{
			Item:      strings.TrimSpace(m[1]),
			Qty:       qty,
			UnitPrice: unitPrice,
			Total:     total,
		})
	}
	return items
}

// itemsFromColumns splits each line on runs of two or more spaces; a line
// counts only when exactly 4 columns result and they parse as
// (text, int, decimal, decimal).
func itemsFromColumns(text string) []entity.LineItem {
	var items []entity.LineItem
	for _, line := range strings.Split(text, "\n") {
		cols := reColumns.Split(strings.TrimSpace(line), -1)
		if len(cols) != 4 {
			continue
		}
		qty, err := strconv.Atoi(strings.TrimSpace(cols[1]))
		if err != nil {
			continue
		}
		unitPrice, err1 := parseAmount(cols[2])
		total, err2 := parseAmount(cols[3])
		if err1 != nil || err2 != nil {
			continue
		}
		items = append(items, entity.LineItem{
			Item:      strings.TrimSpace(cols[0]),
			Qty:       qty,
			UnitPrice: unitPrice,
			Total:     total,
		})
	}
	return items
}

// itemsFromKeywords finds the first product-like token and scavenges a
// quantity and price from the surrounding 100 characters. Total stays 0 and
// is reconciled later.
func itemsFromKeywords(text string) []entity.LineItem {
	for _, re := range reProductHints {
		loc := re.FindStringSubmatchIndex(text)
		if loc == nil {
			continue
		}
		name := strings.TrimSpace(text[loc[2]:loc[3]])

		winStart := loc[0] - 100
		if winStart < 0 {
			winStart = 0
		}
		winEnd := loc[1] + 100
		if winEnd > len(text) {
			winEnd = len(text)
		}
		window := text[winStart:winEnd]

		qty := 1
		if m := reFirstInt.FindStringSubmatch(window); m != nil {
			if v, err := strconv.Atoi(m[1]); err == nil {
				qty = v
			}
		}
		unitPrice := 0.0
		if m := reFirstAmount.FindStringSubmatch(window); m != nil {
			if v, err := parseAmount(m[1]); err == nil {
				unitPrice = v
			}
		}

		return []entity.LineItem{{Item: name, Qty: qty, UnitPrice: unitPrice, Total: 0}}
	}
	return nil
}

func parseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "₹", "")
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	return strconv.ParseFloat(s, 64)
}
