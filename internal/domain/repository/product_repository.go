package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// ProductRepository puerto de productos. El catálogo se administra fuera de este núcleo;
// aquí solo se leen productos y se mantiene el agregado de stock.
type ProductRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	ListIDs(ctx context.Context) ([]string, error)
	// AdjustTotalStock suma delta (con signo) a TotalStockQuantity.
	AdjustTotalStock(ctx context.Context, productID string, delta int64) error
	// StockTotals lee en una sola lectura consistente el agregado guardado y la suma de los saldos por bodega.
	StockTotals(ctx context.Context, productID string) (stored, fromBalances int64, err error)
	// RecomputeTotalStock fija el agregado a la suma de los saldos por bodega. La suma se toma
	// con el producto bloqueado, así un movimiento concurrente no se pierde (reparación desde la conciliación).
	RecomputeTotalStock(ctx context.Context, productID string) error
	UpdatePurchasePrice(ctx context.Context, productID string, price decimal.Decimal) error
}
