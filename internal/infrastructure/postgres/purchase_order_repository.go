package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.PurchaseOrderRepository = (*PurchaseOrderRepo)(nil)

// PurchaseOrderRepo órdenes de compra y sus líneas.
type PurchaseOrderRepo struct {
	q Querier
}

// NewPurchaseOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPurchaseOrderRepository(q Querier) *PurchaseOrderRepo {
	return &PurchaseOrderRepo{q: q}
}

func (r *PurchaseOrderRepo) GetByID(ctx context.Context, id string) (*entity.PurchaseOrder, error) {
	query := `
		SELECT id, number, supplier_id, status, received_at, COALESCE(received_by, ''), created_at, updated_at
		FROM purchase_orders WHERE id = $1`
	var po entity.PurchaseOrder
	err := r.q.QueryRow(ctx, query, id).Scan(
		&po.ID, &po.Number, &po.SupplierID, &po.Status, &po.ReceivedAt, &po.ReceivedBy, &po.CreatedAt, &po.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get purchase order: %w", err)
	}

	rows, err := r.q.Query(ctx, `
		SELECT id, product_id, quantity, unit_cost
		FROM purchase_order_lines WHERE purchase_order_id = $1
		ORDER BY line_no`, id)
	if err != nil {
		return nil, fmt.Errorf("list purchase order lines: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var l entity.PurchaseOrderLine
		if err := rows.Scan(&l.ID, &l.ProductID, &l.Quantity, &l.UnitCost); err != nil {
			return nil, fmt.Errorf("scan purchase order line: %w", err)
		}
		po.Lines = append(po.Lines, l)
	}
	return &po, rows.Err()
}

// MarkReceived transición approved -> received. Una recepción concurrente de la misma orden
// espera el bloqueo de fila y luego no encuentra la orden en estado approved.
func (r *PurchaseOrderRepo) MarkReceived(ctx context.Context, id, actor string, at time.Time) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE purchase_orders
		SET status = $2, received_at = $3, received_by = $4, updated_at = $3
		WHERE id = $1 AND status = $5`,
		id, entity.PurchaseOrderReceived, at, actor, entity.PurchaseOrderApproved)
	if err != nil {
		return fmt.Errorf("mark purchase order received: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}
	var status string
	if err := r.q.QueryRow(ctx, `SELECT status FROM purchase_orders WHERE id = $1`, id).Scan(&status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get purchase order status: %w", err)
	}
	if status == entity.PurchaseOrderReceived {
		return domain.ErrAlreadyProcessed
	}
	return fmt.Errorf("%w: la orden está en estado %s", domain.ErrConflict, status)
}
