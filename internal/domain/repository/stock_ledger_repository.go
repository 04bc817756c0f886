package repository

import (
	"context"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// LedgerFilter criterios de consulta del libro. WarehouseID, From y To son opcionales.
type LedgerFilter struct {
	ProductID   string
	WarehouseID string
	From        *time.Time
	To          *time.Time
}

// StockLedgerRepository puerto del libro de stock. Append es la única mutación.
type StockLedgerRepository interface {
	// Append valida y agrega un asiento; devuelve su ID.
	Append(ctx context.Context, entry *entity.StockLedgerEntry) (string, error)
	// EntriesFor devuelve los asientos ordenados por Timestamp y luego por orden de inserción.
	EntriesFor(ctx context.Context, filter LedgerFilter) ([]*entity.StockLedgerEntry, error)
	// WarehousesWithHistory bodegas con al menos un asiento del producto.
	WarehousesWithHistory(ctx context.Context, productID string) ([]string, error)
}
