package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	domain "github.com/grigobio237-eng/Youniqle-sub001/internal/entity"
	"github.com/grigobio237-eng/Youniqle-sub001/internal/usecase"
)

// MySQLOrderRepo persists orders across three tables: orders,
// order_items and partner_suborders. All mutations are conditional updates
// keyed on the current status, so racing callbacks serialize in the database.
type MySQLOrderRepo struct{ db *sql.DB }

func NewMySQLOrderRepo(db *sql.DB) *MySQLOrderRepo { return &MySQLOrderRepo{db: db} }

func (r *MySQLOrderRepo) Create(ctx context.Context, o *domain.Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
INSERT INTO orders (id, order_number, buyer_id, total_amount, status, payment_status, created_at, updated_at)
VALUES (?,?,?,?,?,?,?,?)`,
		o.ID, o.OrderNumber, o.BuyerID, o.TotalAmount, o.Status, o.PaymentStatus, o.CreatedAt, o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for _, li := range o.Items {
		_, err = tx.ExecContext(ctx, `
INSERT INTO order_items (order_id, product_id, partner_id, name, unit_price, quantity)
VALUES (?,?,?,?,?,?)`,
			o.ID, li.ProductID, li.PartnerID, li.Name, li.UnitPrice, li.Quantity)
		if err != nil {
			return fmt.Errorf("insert item: %w", err)
		}
	}

	for _, s := range o.SubOrders {
		_, err = tx.ExecContext(ctx, `
INSERT INTO partner_suborders (order_id, partner_id, subtotal, commission, status)
VALUES (?,?,?,?,?)`,
			o.ID, s.PartnerID, s.Subtotal, s.Commission, s.Status)
		if err != nil {
			return fmt.Errorf("insert suborder: %w", err)
		}
	}

	return tx.Commit()
}

func (r *MySQLOrderRepo) FindByOrderNumber(ctx context.Context, orderNumber string) (*domain.Order, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, order_number, buyer_id, total_amount, status, payment_status, created_at, updated_at
FROM orders WHERE order_number = ?`, orderNumber)

	var o domain.Order
	err := row.Scan(&o.ID, &o.OrderNumber, &o.BuyerID, &o.TotalAmount, &o.Status, &o.PaymentStatus, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, usecase.ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	if o.Items, err = r.loadItems(ctx, o.ID); err != nil {
		return nil, err
	}
	if o.SubOrders, err = r.loadSubOrders(ctx, o.ID, o.Items); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *MySQLOrderRepo) loadItems(ctx context.Context, orderID string) ([]domain.LineItem, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT product_id, partner_id, name, unit_price, quantity
FROM order_items WHERE order_id = ?`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.LineItem
	for rows.Next() {
		var li domain.LineItem
		if err := rows.Scan(&li.ProductID, &li.PartnerID, &li.Name, &li.UnitPrice, &li.Quantity); err != nil {
			return nil, err
		}
		items = append(items, li)
	}
	return items, rows.Err()
}

func (r *MySQLOrderRepo) loadSubOrders(ctx context.Context, orderID string, items []domain.LineItem) ([]domain.PartnerSubOrder, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT partner_id, subtotal, commission, status
FROM partner_suborders WHERE order_id = ?`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []domain.PartnerSubOrder
	for rows.Next() {
		var s domain.PartnerSubOrder
		if err := rows.Scan(&s.PartnerID, &s.Subtotal, &s.Commission, &s.Status); err != nil {
			return nil, err
		}
		for _, li := range items {
			if li.PartnerID == s.PartnerID {
				s.Items = append(s.Items, li)
			}
		}
		subs = append(subs, s)
	}
	return subs, rows.Err()
}

// ConfirmPaymentIf is the idempotency guard: the UPDATE only applies while
// payment_status is still pending, so of two racing approvals exactly one
// sees rows>0. Sub-orders still pending move to confirmed in the same
// transaction.
func (r *MySQLOrderRepo) ConfirmPaymentIf(ctx context.Context, orderNumber string) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
UPDATE orders
SET payment_status = ?, status = ?, updated_at = NOW()
WHERE order_number = ? AND payment_status = ?`,
		domain.PaymentCompleted, domain.OrderConfirmed, orderNumber, domain.PaymentPending)
	if err != nil {
		return false, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if rows == 0 {
		// Not found or already past pending; the caller re-reads to tell.
		return false, tx.Commit()
	}

	_, err = tx.ExecContext(ctx, `
UPDATE partner_suborders s
JOIN orders o ON o.id = s.order_id
SET s.status = ?
WHERE o.order_number = ? AND s.status = ?`,
		domain.OrderConfirmed, orderNumber, domain.OrderPending)
	if err != nil {
		return false, err
	}
	return true, tx.Commit()
}

func (r *MySQLOrderRepo) FailPaymentIf(ctx context.Context, orderNumber string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
UPDATE orders
SET payment_status = ?, updated_at = NOW()
WHERE order_number = ? AND payment_status = ?`,
		domain.PaymentFailed, orderNumber, domain.PaymentPending)
	if err != nil {
		return false, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

func (r *MySQLOrderRepo) AdvanceStatusIf(ctx context.Context, orderNumber string, from, to domain.OrderStatus) (bool, error) {
	if !domain.CanTransition(from, to) {
		return false, domain.ErrInvalidTransition{From: string(from), To: string(to)}
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
UPDATE orders
SET status = ?, updated_at = NOW()
WHERE order_number = ? AND status = ?`,
		to, orderNumber, from)
	if err != nil {
		return false, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if rows == 0 {
		return false, tx.Commit()
	}

	// Keep lockstep sub-orders in step; diverged ones advance on their own.
	_, err = tx.ExecContext(ctx, `
UPDATE partner_suborders s
JOIN orders o ON o.id = s.order_id
SET s.status = ?
WHERE o.order_number = ? AND s.status = ?`,
		to, orderNumber, from)
	if err != nil {
		return false, err
	}
	return true, tx.Commit()
}

var _ usecase.OrderStore = (*MySQLOrderRepo)(nil)
