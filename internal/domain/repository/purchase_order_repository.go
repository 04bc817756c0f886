package repository

import (
	"context"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// PurchaseOrderRepository puerto de órdenes de compra.
type PurchaseOrderRepository interface {
	// GetByID devuelve la orden con sus líneas.
	GetByID(ctx context.Context, id string) (*entity.PurchaseOrder, error)
	// MarkReceived pasa la orden de approved a received; domain.ErrAlreadyProcessed si ya estaba recibida.
	MarkReceived(ctx context.Context, id, actor string, at time.Time) error
}
