package entity

import "time"

// PurchaseOrder is the authoritative expected order record. The matcher
// operates on a full snapshot read once per validation call.
type PurchaseOrder struct {
	POID      string    `json:"po_id"`
	Vendor    string    `json:"vendor"`
	Item      string    `json:"item"`
	Qty       int       `json:"qty"`
	UnitPrice float64   `json:"unit_price"`
	Total     float64   `json:"total"`
	Date      string    `json:"date"` // YYYY-MM-DD
	CreatedAt time.Time `json:"created_at,omitempty"`
}
