package inventory

import (
	"context"
	"errors"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	costing "github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// BalanceQueryUseCase lecturas de saldos (con caché de lectura opcional).
type BalanceQueryUseCase struct {
	balances repository.InventoryBalanceRepository
	products repository.ProductRepository
	cache    BalanceCache
}

// NewBalanceQueryUseCase construye el caso de uso. cache puede ser nil.
func NewBalanceQueryUseCase(balances repository.InventoryBalanceRepository, products repository.ProductRepository, cache BalanceCache) *BalanceQueryUseCase {
	return &BalanceQueryUseCase{balances: balances, products: products, cache: cache}
}

// Get devuelve el saldo del par; un par sin movimientos responde cantidad cero.
func (uc *BalanceQueryUseCase) Get(ctx context.Context, productID, warehouseID string) (*dto.BalanceResponse, error) {
	if productID == "" || warehouseID == "" {
		return nil, domain.Invalid("", "product_id y warehouse_id son obligatorios")
	}
	if uc.cache != nil {
		if b, ok := uc.cache.Get(ctx, productID, warehouseID); ok {
			return toBalanceResponse(b), nil
		}
	}
	b, err := uc.balances.Get(ctx, productID, warehouseID)
	if errors.Is(err, domain.ErrNotFound) {
		if _, err := RequireProduct(ctx, uc.products, productID); err != nil {
			return nil, err
		}
		return toBalanceResponse(entity.NewEmptyBalance(productID, warehouseID)), nil
	}
	if err != nil {
		return nil, err
	}
	if uc.cache != nil {
		uc.cache.Set(ctx, b)
	}
	return toBalanceResponse(b), nil
}

// ListByProduct devuelve el agregado del producto y su saldo en cada bodega.
func (uc *BalanceQueryUseCase) ListByProduct(ctx context.Context, productID string) (*dto.ProductStockResponse, error) {
	product, err := RequireProduct(ctx, uc.products, productID)
	if err != nil {
		return nil, err
	}
	list, err := uc.balances.ListByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	resp := &dto.ProductStockResponse{
		ProductID:          productID,
		TotalStockQuantity: product.TotalStockQuantity,
		Balances:           make([]dto.BalanceResponse, 0, len(list)),
	}
	for _, b := range list {
		resp.Balances = append(resp.Balances, *toBalanceResponse(b))
	}
	return resp, nil
}

func toBalanceResponse(b *entity.InventoryBalance) *dto.BalanceResponse {
	return &dto.BalanceResponse{
		ProductID:       b.ProductID,
		WarehouseID:     b.WarehouseID,
		Quantity:        b.Quantity,
		AverageUnitCost: costing.RoundMoney(b.AverageUnitCost),
		StockValue:      costing.RoundMoney(b.StockValue()),
		Version:         b.Version,
		UpdatedAt:       b.UpdatedAt,
	}
}
