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

var (
	_ repository.SaleRepository            = (*SaleRepo)(nil)
	_ repository.CashTransactionRepository = (*CashTransactionRepo)(nil)
)

// SaleRepo ventas completadas; reference_id es UNIQUE.
type SaleRepo struct {
	q Querier
}

// NewSaleRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

func (r *SaleRepo) Create(ctx context.Context, s *entity.Sale) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO sales (id, reference_id, order_number, warehouse_id, customer_id, payment_method,
			net_total, tax_total, grand_total, cost_total, actor, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		s.ID, s.ReferenceID, s.OrderNumber, s.WarehouseID, nullIfEmpty(s.CustomerID), s.PaymentMethod,
		s.NetTotal, s.TaxTotal, s.GrandTotal, s.CostTotal, s.Actor, s.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyProcessed
		}
		return fmt.Errorf("insert sale: %w", err)
	}
	for i, l := range s.Lines {
		_, err := r.q.Exec(ctx, `
			INSERT INTO sale_lines (id, sale_id, line_no, product_id, quantity, unit_price,
				discount_percent, discount_amount, tax_rate, line_total, cost_basis)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			l.ID, s.ID, i+1, l.ProductID, l.Quantity, l.UnitPrice,
			l.DiscountPercent, l.DiscountAmount, l.TaxRate, l.LineTotal, l.CostBasis,
		)
		if err != nil {
			return fmt.Errorf("insert sale line %d: %w", i+1, err)
		}
	}
	return nil
}

func (r *SaleRepo) GetByReference(ctx context.Context, referenceID string) (*entity.Sale, error) {
	var s entity.Sale
	err := r.q.QueryRow(ctx, `
		SELECT id, reference_id, order_number, warehouse_id, COALESCE(customer_id, ''), payment_method,
			net_total, tax_total, grand_total, cost_total, actor, created_at
		FROM sales WHERE reference_id = $1`, referenceID).Scan(
		&s.ID, &s.ReferenceID, &s.OrderNumber, &s.WarehouseID, &s.CustomerID, &s.PaymentMethod,
		&s.NetTotal, &s.TaxTotal, &s.GrandTotal, &s.CostTotal, &s.Actor, &s.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get sale by reference: %w", err)
	}

	rows, err := r.q.Query(ctx, `
		SELECT id, product_id, quantity, unit_price, discount_percent, discount_amount, tax_rate, line_total, cost_basis
		FROM sale_lines WHERE sale_id = $1 ORDER BY line_no`, s.ID)
	if err != nil {
		return nil, fmt.Errorf("list sale lines: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var l entity.SaleLine
		if err := rows.Scan(&l.ID, &l.ProductID, &l.Quantity, &l.UnitPrice, &l.DiscountPercent,
			&l.DiscountAmount, &l.TaxRate, &l.LineTotal, &l.CostBasis); err != nil {
			return nil, fmt.Errorf("scan sale line: %w", err)
		}
		s.Lines = append(s.Lines, l)
	}
	return &s, rows.Err()
}

// CashTransactionRepo libro de caja.
type CashTransactionRepo struct {
	q Querier
}

// NewCashTransactionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCashTransactionRepository(q Querier) *CashTransactionRepo {
	return &CashTransactionRepo{q: q}
}

func (r *CashTransactionRepo) Create(ctx context.Context, ct *entity.CashTransaction) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO cash_transactions (id, sale_id, payment_method, amount, actor, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		ct.ID, ct.SaleID, ct.PaymentMethod, ct.Amount, ct.Actor, ct.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert cash transaction: %w", err)
	}
	return nil
}

func (r *CashTransactionRepo) ListBySale(ctx context.Context, saleID string) ([]*entity.CashTransaction, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, sale_id, payment_method, amount, actor, created_at
		FROM cash_transactions WHERE sale_id = $1 ORDER BY created_at, id`, saleID)
	if err != nil {
		return nil, fmt.Errorf("list cash transactions: %w", err)
	}
	defer rows.Close()
	list := []*entity.CashTransaction{}
	for rows.Next() {
		var c entity.CashTransaction
		if err := rows.Scan(&c.ID, &c.SaleID, &c.PaymentMethod, &c.Amount, &c.Actor, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan cash transaction: %w", err)
		}
		list = append(list, &c)
	}
	return list, rows.Err()
}
