package inventory

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción, pasando repositorios atados a esa tx.
// Si fn devuelve error nada de lo escrito queda visible para otros lectores.
type TxRunner interface {
	Run(ctx context.Context, fn func(ctx context.Context, repos repository.Repositories) error) error
}

// BalanceCache caché de lectura de saldos. Nunca participa en el camino de escritura:
// los saldos para actualizar siempre se leen de la transacción.
type BalanceCache interface {
	Get(ctx context.Context, productID, warehouseID string) (*entity.InventoryBalance, bool)
	Set(ctx context.Context, balance *entity.InventoryBalance)
	Invalidate(ctx context.Context, pairs ...Pair)
}

// Pair identifica un saldo (producto, bodega). Version es la versión confirmada por la escritura
// que invalida; la caché no vuelve a aceptar saldos anteriores a ella.
type Pair struct {
	ProductID   string
	WarehouseID string
	Version     int64
}

// Policy reglas de negocio configurables del motor de inventario.
type Policy struct {
	AllowNegativeSales       bool // ¿una venta (o traslado) puede dejar el saldo negativo?
	AllowNegativeAdjustments bool // ¿un ajuste administrativo puede dejar el saldo negativo?
	MaxRetries               int  // intentos ante conflicto de versión antes de fallar con ErrContention
}

// DefaultPolicy rechaza ventas sin stock, permite ajustes negativos y reintenta 5 veces.
func DefaultPolicy() Policy {
	return Policy{AllowNegativeSales: false, AllowNegativeAdjustments: true, MaxRetries: 5}
}

// Attempts número de intentos de RunAtomic (MaxRetries o el valor por defecto).
func (p Policy) Attempts() int {
	if p.MaxRetries <= 0 {
		return DefaultPolicy().MaxRetries
	}
	return p.MaxRetries
}
