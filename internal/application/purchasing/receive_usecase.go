package purchasing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	costing "github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// ReceiveUseCase recepción de órdenes de compra aprobadas.
type ReceiveUseCase struct {
	txRunner inventory.TxRunner
	policy   inventory.Policy
	cache    inventory.BalanceCache
	log      *logger.Logger
}

// NewReceiveUseCase construye el caso de uso. cache puede ser nil.
func NewReceiveUseCase(txRunner inventory.TxRunner, policy inventory.Policy, cache inventory.BalanceCache, log *logger.Logger) *ReceiveUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &ReceiveUseCase{txRunner: txRunner, policy: policy, cache: cache, log: log.Named("purchasing")}
}

// Receive ingresa todas las líneas de la orden en la bodega indicada, en una sola unidad atómica:
// entrada al libro, saldo recalculado al costo promedio, agregado del producto, último precio de compra
// y cambio de estado de la orden. Si una línea falla no queda nada escrito y el resultado indica cuál.
func (uc *ReceiveUseCase) Receive(ctx context.Context, in dto.PurchaseCompletionRequest) dto.ReceivingResult {
	if in.PurchaseOrderID == "" {
		return uc.fail(domain.Invalid("purchase_order_id", "es obligatorio"), in)
	}
	if in.WarehouseID == "" {
		return uc.fail(domain.Invalid("warehouse_id", "es obligatorio"), in)
	}

	var (
		order   *entity.PurchaseOrder
		written []inventory.Pair
	)
	err := inventory.RunAtomic(ctx, uc.txRunner, uc.policy.Attempts(), func(ctx context.Context, repos repository.Repositories) error {
		written = written[:0]
		var err error
		order, err = repos.PurchaseOrders.GetByID(ctx, in.PurchaseOrderID)
		if err != nil {
			return fmt.Errorf("orden de compra %s: %w", in.PurchaseOrderID, err)
		}
		if order == nil {
			return fmt.Errorf("orden de compra %s: %w", in.PurchaseOrderID, domain.ErrNotFound)
		}
		switch order.Status {
		case entity.PurchaseOrderApproved:
		case entity.PurchaseOrderReceived:
			return fmt.Errorf("orden de compra %s: %w", order.Number, domain.ErrAlreadyProcessed)
		default:
			return domain.Invalid("status", fmt.Sprintf("la orden está en estado %q; solo se reciben órdenes aprobadas", order.Status))
		}
		if len(order.Lines) == 0 {
			return domain.Invalid("lines", "la orden no tiene líneas")
		}
		if _, err := inventory.RequireWarehouse(ctx, repos.Warehouses, in.WarehouseID); err != nil {
			return err
		}

		for i, line := range order.Lines {
			posting, err := uc.receiveLine(ctx, repos, order, line, in)
			if err != nil {
				return &domain.LineError{Index: i + 1, ProductID: line.ProductID, Err: err}
			}
			written = append(written, posting.Pair())
		}
		return repos.PurchaseOrders.MarkReceived(ctx, order.ID, in.Actor, time.Now().UTC())
	})
	if err != nil {
		return uc.fail(err, in)
	}

	if uc.cache != nil {
		uc.cache.Invalidate(ctx, written...)
	}

	total := costing.RoundMoney(order.Total())
	uc.log.Info().
		Str("purchase_order_id", order.ID).
		Str("number", order.Number).
		Str("warehouse_id", in.WarehouseID).
		Int("lines", len(order.Lines)).
		Str("total", total.StringFixed(2)).
		Str("actor", in.Actor).
		Msg("orden de compra recibida")
	return dto.ReceivingResult{
		Success:         true,
		PurchaseOrderID: order.ID,
		TotalAmount:     total,
		LinesReceived:   len(order.Lines),
	}
}

func (uc *ReceiveUseCase) receiveLine(ctx context.Context, repos repository.Repositories, order *entity.PurchaseOrder, line entity.PurchaseOrderLine, in dto.PurchaseCompletionRequest) (*inventory.Posting, error) {
	if _, err := inventory.RequireProduct(ctx, repos.Products, line.ProductID); err != nil {
		return nil, err
	}
	posting, err := inventory.Post(ctx, repos, inventory.Movement{
		ProductID:     line.ProductID,
		WarehouseID:   in.WarehouseID,
		Type:          entity.MovementPurchaseReceipt,
		Quantity:      line.Quantity,
		UnitCost:      line.UnitCost,
		TransactionID: order.ID,
		ReferenceID:   line.ID,
		Actor:         in.Actor,
		Description:   "recepción OC " + order.Number,
	})
	if err != nil {
		return nil, err
	}
	return posting, repos.Products.UpdatePurchasePrice(ctx, line.ProductID, line.UnitCost)
}

func (uc *ReceiveUseCase) fail(err error, in dto.PurchaseCompletionRequest) dto.ReceivingResult {
	res := dto.ReceivingResult{
		PurchaseOrderID: in.PurchaseOrderID,
		ErrorCode:       domain.Code(err),
		ErrorMessage:    err.Error(),
		Err:             err,
	}
	fields := map[string]any{"purchase_order_id": in.PurchaseOrderID, "warehouse_id": in.WarehouseID}
	var le *domain.LineError
	if errors.As(err, &le) {
		res.FailedLine = le.Index
		fields["line"] = le.Index
		fields["product_id"] = le.ProductID
	}
	inventory.LogFailure(uc.log, "receive", err, fields)
	return res
}
