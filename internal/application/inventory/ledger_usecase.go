package inventory

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// LedgerUseCase consultas de auditoría sobre el libro de stock.
type LedgerUseCase struct {
	ledger repository.StockLedgerRepository
}

// NewLedgerUseCase construye el caso de uso.
func NewLedgerUseCase(ledger repository.StockLedgerRepository) *LedgerUseCase {
	return &LedgerUseCase{ledger: ledger}
}

// EntriesFor devuelve los asientos del producto (opcionalmente de una bodega y rango de fechas)
// en orden cronológico.
func (uc *LedgerUseCase) EntriesFor(ctx context.Context, q dto.LedgerQuery) ([]dto.LedgerEntryResponse, error) {
	if q.ProductID == "" {
		return nil, domain.Invalid("product_id", "es obligatorio")
	}
	if q.From != nil && q.To != nil && q.To.Before(*q.From) {
		return nil, domain.Invalid("to", "debe ser posterior a from")
	}
	entries, err := uc.ledger.EntriesFor(ctx, repository.LedgerFilter{
		ProductID:   q.ProductID,
		WarehouseID: q.WarehouseID,
		From:        q.From,
		To:          q.To,
	})
	if err != nil {
		return nil, err
	}
	out := make([]dto.LedgerEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, toLedgerEntryResponse(e))
	}
	return out, nil
}

func toLedgerEntryResponse(e *entity.StockLedgerEntry) dto.LedgerEntryResponse {
	return dto.LedgerEntryResponse{
		ID:                e.ID,
		Timestamp:         e.Timestamp,
		ProductID:         e.ProductID,
		SourceWarehouseID: e.SourceWarehouseID,
		TargetWarehouseID: e.TargetWarehouseID,
		Quantity:          e.Quantity,
		UnitCost:          e.UnitCost,
		TotalCost:         e.TotalCost(),
		MovementType:      string(e.MovementType),
		TransactionID:     e.TransactionID,
		ReferenceID:       e.ReferenceID,
		Actor:             e.Actor,
		Description:       e.Description,
	}
}
