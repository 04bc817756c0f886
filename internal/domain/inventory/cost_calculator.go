package inventory

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// CostScale dígitos decimales con los que se guarda el costo promedio.
// Los montos externos se exponen con 2; el promedio interno conserva 8 para no acumular redondeo.
const CostScale = 8

// CostCalculator implementa la lógica de costo promedio ponderado (servicio de dominio).
// NuevoCosto = ((StockActual * CostoActual) + (CantEntrada * CostoEntrada)) / (StockActual + CantEntrada)
// Si la suma de cantidades es cero se conserva el costo actual.
func CostCalculator(stockActual, costoActual, cantEntrada, costoEntrada decimal.Decimal) decimal.Decimal {
	sum := stockActual.Add(cantEntrada)
	if sum.IsZero() {
		return costoActual
	}
	num := stockActual.Mul(costoActual).Add(cantEntrada.Mul(costoEntrada))
	return num.DivRound(sum, CostScale)
}

// ApplyReceipt aplica una entrada al saldo y recalcula el costo promedio.
// Con saldo previo negativo el stock faltante no tiene valor que promediar: el costo pasa a ser el de la entrada,
// salvo que la entrada deje el saldo exactamente en cero (se conserva el costo previo).
func ApplyReceipt(b entity.InventoryBalance, qty int64, unitCost decimal.Decimal) (entity.InventoryBalance, error) {
	if qty <= 0 {
		return b, domain.Invalid("quantity", "debe ser mayor que cero")
	}
	if unitCost.IsNegative() {
		return b, domain.Invalid("unit_cost", "no puede ser negativo")
	}
	newQty := b.Quantity + qty
	switch {
	case newQty == 0:
		// se conserva b.AverageUnitCost
	case b.Quantity < 0:
		b.AverageUnitCost = unitCost
	default:
		b.AverageUnitCost = CostCalculator(
			decimal.NewFromInt(b.Quantity), b.AverageUnitCost,
			decimal.NewFromInt(qty), unitCost,
		)
	}
	b.Quantity = newQty
	return b, nil
}

// ApplyDeduction descuenta stock al costo promedio vigente; el promedio no cambia.
// Si allowNegative es falso y no alcanza el saldo, devuelve ErrInsufficientStock.
func ApplyDeduction(b entity.InventoryBalance, qty int64, allowNegative bool) (entity.InventoryBalance, decimal.Decimal, error) {
	if qty <= 0 {
		return b, decimal.Zero, domain.Invalid("quantity", "debe ser mayor que cero")
	}
	if !allowNegative && b.Quantity < qty {
		return b, decimal.Zero, fmt.Errorf("%w: disponible %d, solicitado %d", domain.ErrInsufficientStock, b.Quantity, qty)
	}
	costBasis := b.AverageUnitCost
	b.Quantity -= qty
	return b, costBasis, nil
}

// ApplyAdjustment enruta un ajuste con signo: positivo como entrada (al costo indicado), negativo como salida.
// Devuelve el nuevo saldo y el costo unitario que debe registrarse en el libro.
func ApplyAdjustment(b entity.InventoryBalance, signedDelta int64, unitCostForIncrease decimal.Decimal, allowNegative bool) (entity.InventoryBalance, decimal.Decimal, error) {
	switch {
	case signedDelta > 0:
		nb, err := ApplyReceipt(b, signedDelta, unitCostForIncrease)
		return nb, unitCostForIncrease, err
	case signedDelta < 0:
		return ApplyDeduction(b, -signedDelta, allowNegative)
	default:
		return b, decimal.Zero, domain.Invalid("signed_delta", "no puede ser cero")
	}
}

// ApplyEntry aplica un asiento del libro al saldo de su bodega. Las salidas del libro ya fueron
// autorizadas al escribirse, así que se reproducen permitiendo saldo negativo.
func ApplyEntry(b entity.InventoryBalance, e *entity.StockLedgerEntry) (entity.InventoryBalance, error) {
	if e.MovementType.IsInbound() {
		return ApplyReceipt(b, e.Quantity, e.UnitCost)
	}
	nb, _, err := ApplyDeduction(b, e.Quantity, true)
	return nb, err
}

// Replay reconstruye el saldo de (producto, bodega) desde cero a partir de sus asientos ordenados.
func Replay(productID, warehouseID string, entries []*entity.StockLedgerEntry) (entity.InventoryBalance, error) {
	b := *entity.NewEmptyBalance(productID, warehouseID)
	for _, e := range entries {
		if e.ProductID != productID || e.WarehouseID() != warehouseID {
			continue
		}
		var err error
		if b, err = ApplyEntry(b, e); err != nil {
			return b, fmt.Errorf("reproducir asiento %s: %w", e.ID, err)
		}
	}
	return b, nil
}

// RoundMoney redondeo externo de montos (2 decimales).
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
