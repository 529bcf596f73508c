package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/raushan1140/invoice-po-matcher/internal/entity"
)

// InvoiceRow is the persisted shape of a processed invoice. The first line
// item is flattened into the row; the full validation result rides along as
// a JSON blob.
type InvoiceRow struct {
	InvoiceID        string                   `json:"invoice_id"`
	Vendor           string                   `json:"vendor"`
	Item             string                   `json:"item"`
	Qty              int                      `json:"qty"`
	UnitPrice        float64                  `json:"unit_price"`
	Total            float64                  `json:"total"`
	Date             string                   `json:"date"`
	POID             *string                  `json:"po_id"`
	Status           string                   `json:"status"`
	ValidationResult *entity.ValidationResult `json:"validation_result,omitempty"`
	CreatedAt        string                   `json:"created_at"`
}

// UpsertInvoice stores (or replaces) a processed invoice together with its
// validation result.
func (s *Store) UpsertInvoice(ctx context.Context, row InvoiceRow) error {
	var blob any
	if row.ValidationResult != nil {
		b, err := json.Marshal(row.ValidationResult)
		if err != nil {
			return storageErr(err)
		}
		blob = string(b)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO invoices
		(invoice_id, vendor, item, qty, unit_price, total, date, po_id, status, validation_result)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		row.InvoiceID, row.Vendor, row.Item, row.Qty, row.UnitPrice, row.Total,
		row.Date, row.POID, row.Status, blob)
	return storageErr(err)
}

// ListInvoices returns recently processed invoices, newest first, along with
// the total row count for pagination.
func (s *Store) ListInvoices(ctx context.Context, limit, offset int) ([]InvoiceRow, int, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT invoice_id, vendor, item, qty, unit_price, total, date, po_id, status, created_at
		FROM invoices
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, 0, storageErr(err)
	}
	defer rows.Close()

	var out []InvoiceRow
	for rows.Next() {
		var r InvoiceRow
		var poID sql.NullString
		var createdAt sql.NullString
		if err := rows.Scan(&r.InvoiceID, &r.Vendor, &r.Item, &r.Qty, &r.UnitPrice, &r.Total, &r.Date, &poID, &r.Status, &createdAt); err != nil {
			return nil, 0, storageErr(err)
		}
		if poID.Valid {
			r.POID = &poID.String
		}
		r.CreatedAt = createdAt.String
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, storageErr(err)
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM invoices`).Scan(&total); err != nil {
		return nil, 0, storageErr(err)
	}
	return out, total, nil
}

// GetInvoice fetches a single invoice by id, including the stored validation
// result.
func (s *Store) GetInvoice(ctx context.Context, invoiceID string) (*InvoiceRow, error) {
	var r InvoiceRow
	var poID, blob, createdAt sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT invoice_id, vendor, item, qty, unit_price, total, date, po_id, status, validation_result, created_at
		FROM invoices WHERE invoice_id = ?`, invoiceID).
		Scan(&r.InvoiceID, &r.Vendor, &r.Item, &r.Qty, &r.UnitPrice, &r.Total, &r.Date, &poID, &r.Status, &blob, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, storageErr(err)
	}
	if poID.Valid {
		r.POID = &poID.String
	}
	r.CreatedAt = createdAt.String
	if blob.Valid && blob.String != "" {
		var vr entity.ValidationResult
		if err := json.Unmarshal([]byte(blob.String), &vr); err == nil {
			r.ValidationResult = &vr
		}
	}
	return &r, nil
}

// VendorStat is one entry of the top-vendors breakdown.
type VendorStat struct {
	Vendor       string  `json:"vendor"`
	InvoiceCount int     `json:"invoice_count"`
	TotalAmount  float64 `json:"total_amount"`
}

// InvoiceStats aggregates processing statistics for the dashboard.
type InvoiceStats struct {
	TotalInvoices   int            `json:"total_invoices"`
	StatusBreakdown map[string]int `json:"status_breakdown"`
	RecentActivity  int            `json:"recent_activity"`
	TopVendors      []VendorStat   `json:"top_vendors"`
}

// GetInvoiceStats computes totals, a per-status breakdown, last-7-day
// activity and the top five vendors by invoice count.
func (s *Store) GetInvoiceStats(ctx context.Context) (*InvoiceStats, error) {
	stats := &InvoiceStats{StatusBreakdown: map[string]int{}, TopVendors: []VendorStat{}}

	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM invoices`).Scan(&stats.TotalInvoices); err != nil {
		return nil, storageErr(err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM invoices GROUP BY status`)
	if err != nil {
		return nil, storageErr(err)
	}
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			rows.Close()
			return nil, storageErr(err)
		}
		stats.StatusBreakdown[status] = count
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, storageErr(err)
	}

	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM invoices WHERE created_at >= date('now', '-7 days')`).
		Scan(&stats.RecentActivity); err != nil {
		return nil, storageErr(err)
	}

	rows, err = s.db.QueryContext(ctx, `
		SELECT vendor, COUNT(*) AS invoice_count, COALESCE(SUM(total), 0) AS total_amount
		FROM invoices
		GROUP BY vendor
		ORDER BY invoice_count DESC
		LIMIT 5`)
	if err != nil {
		return nil, storageErr(err)
	}
	defer rows.Close()
	for rows.Next() {
		var v VendorStat
		if err := rows.Scan(&v.Vendor, &v.InvoiceCount, &v.TotalAmount); err != nil {
			return nil, storageErr(err)
		}
		stats.TopVendors = append(stats.TopVendors, v)
	}
	return stats, storageErr(rows.Err())
}
