package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/raushan1140/invoice-po-matcher/internal/entity"
)

// ListPurchaseOrders returns a snapshot of every purchase order.
func (s *Store) ListPurchaseOrders(ctx context.Context) ([]entity.PurchaseOrder, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT po_id, vendor, item, qty, unit_price, total, date, created_at FROM purchase_orders ORDER BY po_id`)
	if err != nil {
		return nil, storageErr(err)
	}
	defer rows.Close()

	var pos []entity.PurchaseOrder
	for rows.Next() {
		var po entity.PurchaseOrder
		var createdAt sql.NullString
		if err := rows.Scan(&po.POID, &po.Vendor, &po.Item, &po.Qty, &po.UnitPrice, &po.Total, &po.Date, &createdAt); err != nil {
			return nil, storageErr(err)
		}
		po.CreatedAt = parseTimestamp(createdAt)
		pos = append(pos, po)
	}
	return pos, storageErr(rows.Err())
}

// InsertPurchaseOrder adds a new purchase order row.
func (s *Store) InsertPurchaseOrder(ctx context.Context, po entity.PurchaseOrder) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO purchase_orders (po_id, vendor, item, qty, unit_price, total, date) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		po.POID, po.Vendor, po.Item, po.Qty, po.UnitPrice, po.Total, po.Date)
	return storageErr(err)
}

// FindPOByVendorItemDate reports whether a purchase order already exists for
// the given vendor, item and date. Used to avoid duplicating orders derived
// from uploaded invoices.
func (s *Store) FindPOByVendorItemDate(ctx context.Context, vendor, item, date string) (string, error) {
	var poID string
	err := s.db.QueryRowContext(ctx,
		`SELECT po_id FROM purchase_orders WHERE vendor = ? AND item = ? AND date = ?`,
		vendor, item, date).Scan(&poID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", storageErr(err)
	}
	return poID, nil
}

func parseTimestamp(v sql.NullString) time.Time {
	if !v.Valid {
		return time.Time{}
	}
	for _, layout := range []string{"2006-01-02 15:04:05", time.RFC3339} {
		if t, err := time.Parse(layout, v.String); err == nil {
			return t
		}
	}
	return time.Time{}
}
