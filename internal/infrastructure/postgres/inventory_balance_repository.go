package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.InventoryBalanceRepository = (*InventoryBalanceRepo)(nil)

// InventoryBalanceRepo saldos por (producto, bodega) con columna version para concurrencia optimista.
type InventoryBalanceRepo struct {
	q Querier
}

// NewInventoryBalanceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInventoryBalanceRepository(q Querier) *InventoryBalanceRepo {
	return &InventoryBalanceRepo{q: q}
}

func (r *InventoryBalanceRepo) Get(ctx context.Context, productID, warehouseID string) (*entity.InventoryBalance, error) {
	query := `
		SELECT product_id, warehouse_id, quantity, average_unit_cost, version, updated_at
		FROM inventory_balances WHERE product_id = $1 AND warehouse_id = $2`
	var b entity.InventoryBalance
	err := r.q.QueryRow(ctx, query, productID, warehouseID).Scan(
		&b.ProductID, &b.WarehouseID, &b.Quantity, &b.AverageUnitCost, &b.Version, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get inventory balance: %w", err)
	}
	return &b, nil
}

// TryUpdate escritura condicional: INSERT si expectedVersion es 0, si no UPDATE ... WHERE version = expected.
// Cero filas afectadas significa que otra transacción escribió primero.
func (r *InventoryBalanceRepo) TryUpdate(ctx context.Context, expectedVersion int64, b *entity.InventoryBalance) error {
	var (
		query string
		args  []any
	)
	if expectedVersion == 0 {
		query = `
			INSERT INTO inventory_balances (product_id, warehouse_id, quantity, average_unit_cost, version, updated_at)
			VALUES ($1, $2, $3, $4, 1, now())
			ON CONFLICT (product_id, warehouse_id) DO NOTHING`
		args = []any{b.ProductID, b.WarehouseID, b.Quantity, b.AverageUnitCost}
	} else {
		query = `
			UPDATE inventory_balances
			SET quantity = $3, average_unit_cost = $4, version = version + 1, updated_at = now()
			WHERE product_id = $1 AND warehouse_id = $2 AND version = $5`
		args = []any{b.ProductID, b.WarehouseID, b.Quantity, b.AverageUnitCost, expectedVersion}
	}
	tag, err := r.q.Exec(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("saldo %s/%s: %w", b.ProductID, b.WarehouseID, domain.ErrConcurrencyConflict)
		}
		return fmt.Errorf("update inventory balance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("saldo %s/%s versión %d: %w", b.ProductID, b.WarehouseID, expectedVersion, domain.ErrConcurrencyConflict)
	}
	b.Version = expectedVersion + 1
	return nil
}

func (r *InventoryBalanceRepo) ListByProduct(ctx context.Context, productID string) ([]*entity.InventoryBalance, error) {
	query := `
		SELECT product_id, warehouse_id, quantity, average_unit_cost, version, updated_at
		FROM inventory_balances WHERE product_id = $1
		ORDER BY warehouse_id`
	rows, err := r.q.Query(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("list inventory balances: %w", err)
	}
	defer rows.Close()
	list := []*entity.InventoryBalance{}
	for rows.Next() {
		var b entity.InventoryBalance
		if err := rows.Scan(&b.ProductID, &b.WarehouseID, &b.Quantity, &b.AverageUnitCost, &b.Version, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan inventory balance: %w", err)
		}
		list = append(list, &b)
	}
	return list, rows.Err()
}
