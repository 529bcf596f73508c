package entity

import "time"

// LineItem is one billed row extracted from an invoice.
type LineItem struct {
	Item      string  `json:"item"`
	Qty       int     `json:"qty"`
	UnitPrice float64 `json:"unit_price"`
	Total     float64 `json:"total"`
}

// InvoiceRecord is the structured result of parsing one uploaded document.
// After normalization InvoiceNumber, Vendor, Date and Total always carry a
// value (fallbacks applied); the record is not mutated downstream.
type InvoiceRecord struct {
	InvoiceNumber       string     `json:"invoice_number"`
	Vendor              string     `json:"vendor"`
	Date                string     `json:"date"` // YYYY-MM-DD when parseable
	Total               float64    `json:"total"`
	LineItems           []LineItem `json:"line_items"`
	RawText             string     `json:"raw_text"`
	ExtractionTimestamp time.Time  `json:"extraction_timestamp"`
}
