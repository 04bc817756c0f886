package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// GetByID obtiene un producto por ID.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	query := `
		SELECT id, sku, name, unit_measure, tax_rate, purchase_price, sale_price, total_stock_quantity, created_at, updated_at
		FROM products WHERE id = $1`
	var p entity.Product
	err := r.q.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.SKU, &p.Name, &p.UnitMeasure, &p.TaxRate, &p.PurchasePrice, &p.SalePrice,
		&p.TotalStockQuantity, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return &p, nil
}

func (r *ProductRepo) ListIDs(ctx context.Context) ([]string, error) {
	rows, err := r.q.Query(ctx, `SELECT id FROM products ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list product ids: %w", err)
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan product id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// AdjustTotalStock suma delta al agregado en la misma sentencia (sin leer antes).
func (r *ProductRepo) AdjustTotalStock(ctx context.Context, productID string, delta int64) error {
	return r.exec(ctx, "adjust total stock",
		`UPDATE products SET total_stock_quantity = total_stock_quantity + $2, updated_at = now() WHERE id = $1`,
		productID, delta)
}

// StockTotals compara en una sola sentencia (un solo snapshot) el agregado y la suma de saldos.
func (r *ProductRepo) StockTotals(ctx context.Context, productID string) (int64, int64, error) {
	query := `
		SELECT p.total_stock_quantity,
		       COALESCE((SELECT SUM(b.quantity) FROM inventory_balances b WHERE b.product_id = p.id), 0)
		FROM products p WHERE p.id = $1`
	var stored, fromBalances int64
	if err := r.q.QueryRow(ctx, query, productID).Scan(&stored, &fromBalances); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, 0, domain.ErrNotFound
		}
		return 0, 0, fmt.Errorf("stock totals: %w", err)
	}
	return stored, fromBalances, nil
}

// RecomputeTotalStock debe ejecutarse dentro de una transacción. Primero bloquea la fila del producto:
// un movimiento en curso ya la tiene bloqueada (AdjustTotalStock) y se espera a su commit, y uno posterior
// espera al nuestro y suma su delta sobre el valor recalculado. La suma se lee después del bloqueo,
// en una sentencia nueva, para ver los saldos confirmados hasta ese momento.
func (r *ProductRepo) RecomputeTotalStock(ctx context.Context, productID string) error {
	var id string
	err := r.q.QueryRow(ctx, `SELECT id FROM products WHERE id = $1 FOR NO KEY UPDATE`, productID).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("lock product: %w", err)
	}
	return r.exec(ctx, "recompute total stock", `
		UPDATE products
		SET total_stock_quantity = (SELECT COALESCE(SUM(quantity), 0) FROM inventory_balances WHERE product_id = $1),
		    updated_at = now()
		WHERE id = $1`,
		productID)
}

func (r *ProductRepo) UpdatePurchasePrice(ctx context.Context, productID string, price decimal.Decimal) error {
	return r.exec(ctx, "update purchase price",
		`UPDATE products SET purchase_price = $2, updated_at = now() WHERE id = $1`,
		productID, price)
}

func (r *ProductRepo) exec(ctx context.Context, op, query string, args ...any) error {
	tag, err := r.q.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
