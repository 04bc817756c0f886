package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// InventoryBalanceRepository puerto del saldo actual con concurrencia optimista.
type InventoryBalanceRepository interface {
	// Get devuelve domain.ErrNotFound si el par aún no tiene saldo.
	Get(ctx context.Context, productID, warehouseID string) (*entity.InventoryBalance, error)
	// TryUpdate escribe el saldo solo si la versión almacenada es expectedVersion (0 = fila inexistente).
	// Devuelve domain.ErrConcurrencyConflict si la versión quedó obsoleta; en éxito balance.Version = expectedVersion+1.
	TryUpdate(ctx context.Context, expectedVersion int64, balance *entity.InventoryBalance) error
	ListByProduct(ctx context.Context, productID string) ([]*entity.InventoryBalance, error)
}
