package sales

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	costing "github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// DefaultOrderPrefix prefijo del número de orden de venta.
const DefaultOrderPrefix = "VTA"

// FulfillUseCase cierre de ventas del punto de venta: descuenta stock al costo promedio,
// registra la venta y sus pagos en caja, todo en una sola unidad atómica.
type FulfillUseCase struct {
	txRunner    inventory.TxRunner
	policy      inventory.Policy
	cache       inventory.BalanceCache
	orderPrefix string
	log         *logger.Logger
}

// NewFulfillUseCase construye el caso de uso. cache puede ser nil.
func NewFulfillUseCase(txRunner inventory.TxRunner, policy inventory.Policy, cache inventory.BalanceCache, orderPrefix string, log *logger.Logger) *FulfillUseCase {
	if orderPrefix == "" {
		orderPrefix = DefaultOrderPrefix
	}
	if log == nil {
		log = logger.Nop()
	}
	return &FulfillUseCase{
		txRunner:    txRunner,
		policy:      policy,
		cache:       cache,
		orderPrefix: orderPrefix,
		log:         log.Named("sales"),
	}
}

// Fulfill registra la venta. Si alguna línea no tiene stock (y la política no permite vender en negativo)
// la venta completa se rechaza sin escribir nada. Repetir una venta con el mismo ReferenceID
// devuelve el resultado original marcado como duplicado; sin ReferenceID la venta se rechaza.
func (uc *FulfillUseCase) Fulfill(ctx context.Context, in dto.SaleRequest) dto.SaleResult {
	if in.ReferenceID == "" {
		return uc.fail(domain.Invalid("reference_id", "es obligatorio"), in)
	}
	if in.WarehouseID == "" {
		return uc.fail(domain.Invalid("warehouse_id", "es obligatorio"), in)
	}
	totals, err := ComputeTotals(in.Lines)
	if err != nil {
		return uc.fail(err, in)
	}
	payments, err := ResolvePayments(in, totals.Grand)
	if err != nil {
		return uc.fail(err, in)
	}
	var (
		sale     *entity.Sale
		existing *entity.Sale
		written  []inventory.Pair
	)
	err = inventory.RunAtomic(ctx, uc.txRunner, uc.policy.Attempts(), func(ctx context.Context, repos repository.Repositories) error {
		sale, existing, written = nil, nil, nil
		prev, err := repos.Sales.GetByReference(ctx, in.ReferenceID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		if prev != nil {
			existing = prev
			return nil
		}
		if _, err := inventory.RequireWarehouse(ctx, repos.Warehouses, in.WarehouseID); err != nil {
			return err
		}
		sale, written, err = uc.post(ctx, repos, in, totals, payments)
		return err
	})
	if errors.Is(err, domain.ErrAlreadyProcessed) {
		// otra petición con la misma referencia confirmó primero
		existing, err = uc.lookup(ctx, in.ReferenceID)
	}
	if err != nil {
		return uc.fail(err, in)
	}
	if existing != nil {
		uc.log.Info().
			Str("reference_id", in.ReferenceID).
			Str("order_number", existing.OrderNumber).
			Msg("venta repetida; se devuelve el resultado original")
		return toResult(existing, true)
	}

	if uc.cache != nil {
		uc.cache.Invalidate(ctx, written...)
	}
	uc.log.Info().
		Str("sale_id", sale.ID).
		Str("order_number", sale.OrderNumber).
		Str("warehouse_id", sale.WarehouseID).
		Str("total", sale.GrandTotal.StringFixed(2)).
		Str("cost", sale.CostTotal.StringFixed(2)).
		Int("payments", len(payments)).
		Str("actor", in.Actor).
		Msg("venta registrada")
	return toResult(sale, false)
}

// post descuenta cada línea y persiste la venta con sus pagos dentro de la transacción.
func (uc *FulfillUseCase) post(ctx context.Context, repos repository.Repositories, in dto.SaleRequest, totals Totals, payments []dto.PaymentRequest) (*entity.Sale, []inventory.Pair, error) {
	now := time.Now().UTC()
	saleID := uuid.New().String()
	sale := &entity.Sale{
		ID:            saleID,
		ReferenceID:   in.ReferenceID,
		OrderNumber:   uc.orderNumber(saleID, now),
		WarehouseID:   in.WarehouseID,
		CustomerID:    in.CustomerID,
		PaymentMethod: in.PaymentMethod,
		NetTotal:      totals.Net,
		TaxTotal:      totals.Tax,
		GrandTotal:    totals.Grand,
		Actor:         in.Actor,
		Lines:         make([]entity.SaleLine, 0, len(in.Lines)),
		CreatedAt:     now,
	}

	cost := decimal.Zero
	written := make([]inventory.Pair, 0, len(in.Lines))
	for i, l := range in.Lines {
		lineID := uuid.New().String()
		if _, err := inventory.RequireProduct(ctx, repos.Products, l.ProductID); err != nil {
			return nil, nil, &domain.LineError{Index: i + 1, ProductID: l.ProductID, Err: err}
		}
		posting, err := inventory.Post(ctx, repos, inventory.Movement{
			ProductID:     l.ProductID,
			WarehouseID:   in.WarehouseID,
			Type:          entity.MovementSaleDeduction,
			Quantity:      l.Quantity,
			AllowNegative: uc.policy.AllowNegativeSales,
			TransactionID: saleID,
			ReferenceID:   lineID,
			Actor:         in.Actor,
			Description:   "venta " + sale.OrderNumber,
		})
		if err != nil {
			return nil, nil, &domain.LineError{Index: i + 1, ProductID: l.ProductID, Err: err}
		}
		written = append(written, posting.Pair())
		cost = cost.Add(posting.CostBasis.Mul(decimal.NewFromInt(l.Quantity)))
		sale.Lines = append(sale.Lines, entity.SaleLine{
			ID:              lineID,
			ProductID:       l.ProductID,
			Quantity:        l.Quantity,
			UnitPrice:       l.UnitPrice,
			DiscountPercent: l.DiscountPercent,
			DiscountAmount:  l.DiscountAmount,
			TaxRate:         l.TaxRate,
			LineTotal:       totals.Lines[i].Total,
			CostBasis:       posting.CostBasis,
		})
	}
	sale.CostTotal = costing.RoundMoney(cost)

	if err := repos.Sales.Create(ctx, sale); err != nil {
		return nil, nil, fmt.Errorf("registrar venta: %w", err)
	}
	for _, p := range payments {
		if err := repos.Cash.Create(ctx, &entity.CashTransaction{
			ID:            uuid.New().String(),
			SaleID:        saleID,
			PaymentMethod: p.Method,
			Amount:        costing.RoundMoney(p.Amount),
			Actor:         in.Actor,
			CreatedAt:     now,
		}); err != nil {
			return nil, nil, fmt.Errorf("registrar pago en caja: %w", err)
		}
	}
	return sale, written, nil
}

func (uc *FulfillUseCase) lookup(ctx context.Context, referenceID string) (*entity.Sale, error) {
	var found *entity.Sale
	err := uc.txRunner.Run(ctx, func(ctx context.Context, repos repository.Repositories) error {
		var err error
		found, err = repos.Sales.GetByReference(ctx, referenceID)
		return err
	})
	return found, err
}

// orderNumber PREFIJO-AAAAMMDD-XXXXXXXX (8 primeros caracteres del ID de la venta).
func (uc *FulfillUseCase) orderNumber(saleID string, at time.Time) string {
	short := strings.ToUpper(strings.ReplaceAll(saleID, "-", ""))[:8]
	return fmt.Sprintf("%s-%s-%s", uc.orderPrefix, at.Format("20060102"), short)
}

func toResult(s *entity.Sale, duplicate bool) dto.SaleResult {
	return dto.SaleResult{
		Success:     true,
		SaleID:      s.ID,
		OrderNumber: s.OrderNumber,
		TotalAmount: s.GrandTotal,
		CostTotal:   s.CostTotal,
		Duplicate:   duplicate,
	}
}

func (uc *FulfillUseCase) fail(err error, in dto.SaleRequest) dto.SaleResult {
	res := dto.SaleResult{ErrorCode: domain.Code(err), ErrorMessage: err.Error(), Err: err}
	fields := map[string]any{"warehouse_id": in.WarehouseID, "reference_id": in.ReferenceID}
	var le *domain.LineError
	if errors.As(err, &le) {
		res.FailedLine = le.Index
		fields["line"] = le.Index
		fields["product_id"] = le.ProductID
	}
	inventory.LogFailure(uc.log, "fulfill", err, fields)
	return res
}
