package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// SaleRepository puerto de ventas completadas.
type SaleRepository interface {
	// Create persiste la venta y sus líneas; domain.ErrAlreadyProcessed si ReferenceID ya existe.
	Create(ctx context.Context, sale *entity.Sale) error
	GetByReference(ctx context.Context, referenceID string) (*entity.Sale, error)
}

// CashTransactionRepository puerto del libro de caja.
type CashTransactionRepository interface {
	Create(ctx context.Context, tx *entity.CashTransaction) error
	ListBySale(ctx context.Context, saleID string) ([]*entity.CashTransaction, error)
}
