package inventory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	costing "github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// StockAdjustmentUseCase correcciones manuales (conteo, merma, apertura) por el mismo camino
// de libro + saldo que compras y ventas.
type StockAdjustmentUseCase struct {
	txRunner TxRunner
	policy   Policy
	cache    BalanceCache
	log      *logger.Logger
}

// NewStockAdjustmentUseCase construye el caso de uso. cache puede ser nil.
func NewStockAdjustmentUseCase(txRunner TxRunner, policy Policy, cache BalanceCache, log *logger.Logger) *StockAdjustmentUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &StockAdjustmentUseCase{txRunner: txRunner, policy: policy, cache: cache, log: log.Named("adjustments")}
}

// Adjust aplica un ajuste con signo. Positivo: entrada al costo indicado (o al último precio de compra);
// negativo: salida al costo promedio vigente.
func (uc *StockAdjustmentUseCase) Adjust(ctx context.Context, in dto.AdjustmentRequest) dto.AdjustmentResult {
	if err := validateAdjustment(in); err != nil {
		return uc.fail("adjust", err, in.ProductID, in.WarehouseID)
	}

	txID := uuid.New().String()
	var posting *Posting
	err := RunAtomic(ctx, uc.txRunner, uc.policy.Attempts(), func(ctx context.Context, repos repository.Repositories) error {
		product, err := RequireProduct(ctx, repos.Products, in.ProductID)
		if err != nil {
			return err
		}
		if _, err := RequireWarehouse(ctx, repos.Warehouses, in.WarehouseID); err != nil {
			return err
		}
		m := Movement{
			ProductID:     in.ProductID,
			WarehouseID:   in.WarehouseID,
			TransactionID: txID,
			ReferenceID:   txID,
			Actor:         in.Actor,
			Description:   in.Reason,
		}
		if in.SignedDelta > 0 {
			m.Type = entity.MovementAdjustmentPlus
			m.Quantity = in.SignedDelta
			m.UnitCost = product.PurchasePrice
			if in.UnitCost != nil {
				m.UnitCost = *in.UnitCost
			}
		} else {
			m.Type = entity.MovementAdjustmentMinus
			m.Quantity = -in.SignedDelta
			m.AllowNegative = uc.policy.AllowNegativeAdjustments
		}
		posting, err = Post(ctx, repos, m)
		return err
	})
	if err != nil {
		return uc.fail("adjust", err, in.ProductID, in.WarehouseID)
	}
	uc.invalidate(ctx, posting.Pair())

	res := dto.AdjustmentResult{
		Success:        true,
		NewQuantity:    posting.After.Quantity,
		NewAverageCost: costing.RoundMoney(posting.After.AverageUnitCost),
	}
	if posting.WentNegative {
		res.Warning = fmt.Sprintf("el saldo quedó negativo (%d)", posting.After.Quantity)
		uc.log.Warn().
			Str("category", logger.CategoryFinancial).
			Str("product_id", in.ProductID).
			Str("warehouse_id", in.WarehouseID).
			Int64("quantity", posting.After.Quantity).
			Str("actor", in.Actor).
			Msg("ajuste dejó saldo negativo")
	}
	uc.log.Info().
		Str("product_id", in.ProductID).
		Str("warehouse_id", in.WarehouseID).
		Int64("delta", in.SignedDelta).
		Str("actor", in.Actor).
		Msg("ajuste registrado")
	return res
}

// OpeningStock registra el saldo inicial de un par sin historial.
func (uc *StockAdjustmentUseCase) OpeningStock(ctx context.Context, in dto.OpeningStockRequest) dto.AdjustmentResult {
	if in.ProductID == "" || in.WarehouseID == "" {
		return uc.fail("opening_stock", domain.Invalid("", "product_id y warehouse_id son obligatorios"), in.ProductID, in.WarehouseID)
	}
	if in.Quantity <= 0 {
		return uc.fail("opening_stock", domain.Invalid("quantity", "debe ser mayor que cero"), in.ProductID, in.WarehouseID)
	}
	if in.UnitCost.IsNegative() {
		return uc.fail("opening_stock", domain.Invalid("unit_cost", "no puede ser negativo"), in.ProductID, in.WarehouseID)
	}

	txID := uuid.New().String()
	var posting *Posting
	err := RunAtomic(ctx, uc.txRunner, uc.policy.Attempts(), func(ctx context.Context, repos repository.Repositories) error {
		if _, err := RequireProduct(ctx, repos.Products, in.ProductID); err != nil {
			return err
		}
		if _, err := RequireWarehouse(ctx, repos.Warehouses, in.WarehouseID); err != nil {
			return err
		}
		history, err := repos.Ledger.EntriesFor(ctx, repository.LedgerFilter{ProductID: in.ProductID, WarehouseID: in.WarehouseID})
		if err != nil {
			return err
		}
		if len(history) > 0 {
			return fmt.Errorf("%w: el producto ya tiene movimientos en la bodega", domain.ErrConflict)
		}
		posting, err = Post(ctx, repos, Movement{
			ProductID:     in.ProductID,
			WarehouseID:   in.WarehouseID,
			Type:          entity.MovementOpeningStock,
			Quantity:      in.Quantity,
			UnitCost:      in.UnitCost,
			TransactionID: txID,
			ReferenceID:   txID,
			Actor:         in.Actor,
			Description:   "saldo inicial",
		})
		return err
	})
	if err != nil {
		return uc.fail("opening_stock", err, in.ProductID, in.WarehouseID)
	}
	uc.invalidate(ctx, posting.Pair())
	return dto.AdjustmentResult{
		Success:        true,
		NewQuantity:    posting.After.Quantity,
		NewAverageCost: costing.RoundMoney(posting.After.AverageUnitCost),
	}
}

func validateAdjustment(in dto.AdjustmentRequest) error {
	if in.ProductID == "" {
		return domain.Invalid("product_id", "es obligatorio")
	}
	if in.WarehouseID == "" {
		return domain.Invalid("warehouse_id", "es obligatorio")
	}
	if in.SignedDelta == 0 {
		return domain.Invalid("signed_delta", "no puede ser cero")
	}
	if in.UnitCost != nil && in.UnitCost.LessThan(decimal.Zero) {
		return domain.Invalid("unit_cost", "no puede ser negativo")
	}
	return nil
}

func (uc *StockAdjustmentUseCase) invalidate(ctx context.Context, pairs ...Pair) {
	if uc.cache != nil {
		uc.cache.Invalidate(ctx, pairs...)
	}
}

func (uc *StockAdjustmentUseCase) fail(op string, err error, productID, warehouseID string) dto.AdjustmentResult {
	LogFailure(uc.log, op, err, map[string]any{"product_id": productID, "warehouse_id": warehouseID})
	return dto.AdjustmentResult{
		Success:      false,
		ErrorCode:    domain.Code(err),
		ErrorMessage: err.Error(),
		Err:          err,
	}
}
