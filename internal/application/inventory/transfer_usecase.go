package inventory

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// TransferUseCase traslada stock entre bodegas: salida en origen al costo promedio de origen y
// entrada en destino a ese mismo costo, en una sola unidad atómica.
type TransferUseCase struct {
	txRunner TxRunner
	policy   Policy
	cache    BalanceCache
	log      *logger.Logger
}

// NewTransferUseCase construye el caso de uso. cache puede ser nil.
func NewTransferUseCase(txRunner TxRunner, policy Policy, cache BalanceCache, log *logger.Logger) *TransferUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &TransferUseCase{txRunner: txRunner, policy: policy, cache: cache, log: log.Named("transfers")}
}

// Transfer ejecuta el traslado. El origen sigue la política de ventas respecto al saldo negativo.
func (uc *TransferUseCase) Transfer(ctx context.Context, in dto.TransferRequest) dto.TransferResult {
	if in.ProductID == "" || in.FromWarehouseID == "" || in.ToWarehouseID == "" {
		return uc.fail(domain.Invalid("", "product_id, from_warehouse_id y to_warehouse_id son obligatorios"), in)
	}
	if in.FromWarehouseID == in.ToWarehouseID {
		return uc.fail(domain.Invalid("to_warehouse_id", "debe ser distinta de la bodega de origen"), in)
	}
	if in.Quantity <= 0 {
		return uc.fail(domain.Invalid("quantity", "debe ser mayor que cero"), in)
	}

	txID := uuid.New().String()
	description := fmt.Sprintf("traslado %s -> %s", in.FromWarehouseID, in.ToWarehouseID)
	if in.Reason != "" {
		description += ": " + in.Reason
	}
	var out, inb *Posting
	err := RunAtomic(ctx, uc.txRunner, uc.policy.Attempts(), func(ctx context.Context, repos repository.Repositories) error {
		if _, err := RequireProduct(ctx, repos.Products, in.ProductID); err != nil {
			return err
		}
		if _, err := RequireWarehouse(ctx, repos.Warehouses, in.FromWarehouseID); err != nil {
			return err
		}
		if _, err := RequireWarehouse(ctx, repos.Warehouses, in.ToWarehouseID); err != nil {
			return err
		}
		var err error
		out, err = Post(ctx, repos, Movement{
			ProductID:     in.ProductID,
			WarehouseID:   in.FromWarehouseID,
			Type:          entity.MovementTransferOut,
			Quantity:      in.Quantity,
			AllowNegative: uc.policy.AllowNegativeSales,
			TransactionID: txID,
			ReferenceID:   txID,
			Actor:         in.Actor,
			Description:   description,
		})
		if err != nil {
			return err
		}
		inb, err = Post(ctx, repos, Movement{
			ProductID:     in.ProductID,
			WarehouseID:   in.ToWarehouseID,
			Type:          entity.MovementTransferIn,
			Quantity:      in.Quantity,
			UnitCost:      out.CostBasis,
			TransactionID: txID,
			ReferenceID:   txID,
			Actor:         in.Actor,
			Description:   description,
		})
		return err
	})
	if err != nil {
		return uc.fail(err, in)
	}
	if uc.cache != nil {
		uc.cache.Invalidate(ctx, out.Pair(), inb.Pair())
	}
	uc.log.Info().
		Str("product_id", in.ProductID).
		Str("from", in.FromWarehouseID).
		Str("to", in.ToWarehouseID).
		Int64("quantity", in.Quantity).
		Str("actor", in.Actor).
		Msg("traslado registrado")
	return dto.TransferResult{
		Success:        true,
		SourceQuantity: out.After.Quantity,
		TargetQuantity: inb.After.Quantity,
		UnitCost:       out.CostBasis,
	}
}

func (uc *TransferUseCase) fail(err error, in dto.TransferRequest) dto.TransferResult {
	LogFailure(uc.log, "transfer", err, map[string]any{
		"product_id": in.ProductID, "from": in.FromWarehouseID, "to": in.ToWarehouseID,
	})
	return dto.TransferResult{ErrorCode: domain.Code(err), ErrorMessage: err.Error(), Err: err}
}
