package inventory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain"
	costing "github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

var costTolerance = decimal.New(1, -6)

const pairReadAttempts = 5

// ReconcileOptions ajustes de la conciliación.
type ReconcileOptions struct {
	RepairAggregates bool // recalcula Product.TotalStockQuantity cuando no coincide con la suma de saldos
	Concurrency      int  // productos conciliados en paralelo
}

// ReconcileUseCase reconstruye los saldos desde el libro y los compara con los almacenados.
// Nunca corrige saldos por (producto, bodega): esas diferencias requieren un ajuste auditado.
type ReconcileUseCase struct {
	repos    repository.Repositories
	txRunner TxRunner
	opts     ReconcileOptions
	log      *logger.Logger
}

// NewReconcileUseCase construye el caso de uso. repos son repositorios de lectura fuera de transacción.
func NewReconcileUseCase(repos repository.Repositories, txRunner TxRunner, opts ReconcileOptions, log *logger.Logger) *ReconcileUseCase {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 4
	}
	if log == nil {
		log = logger.Nop()
	}
	return &ReconcileUseCase{repos: repos, txRunner: txRunner, opts: opts, log: log.Named("reconcile")}
}

// ReconcileProduct concilia todas las bodegas con historial o saldo del producto.
// El agregado se compara con la suma de los saldos en una sola lectura consistente y, si se repara,
// se recalcula dentro del almacén: un movimiento confirmado durante la conciliación no se pisa.
func (uc *ReconcileUseCase) ReconcileProduct(ctx context.Context, productID string) (*dto.ProductReconciliation, error) {
	if _, err := RequireProduct(ctx, uc.repos.Products, productID); err != nil {
		return nil, err
	}
	warehouses, err := uc.warehousesOf(ctx, productID)
	if err != nil {
		return nil, err
	}

	res := &dto.ProductReconciliation{ProductID: productID, Discrepancies: []dto.PairDiscrepancy{}}
	for _, wid := range warehouses {
		d, err := uc.reconcilePair(ctx, productID, wid)
		if err != nil {
			return nil, err
		}
		res.PairsChecked++
		if d != nil {
			res.Discrepancies = append(res.Discrepancies, *d)
		}
	}

	res.AggregateStored, res.AggregateExpected, err = uc.repos.Products.StockTotals(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("leer agregado de %s: %w", productID, err)
	}
	if res.AggregateStored != res.AggregateExpected && uc.opts.RepairAggregates && uc.txRunner != nil {
		err := uc.txRunner.Run(ctx, func(ctx context.Context, repos repository.Repositories) error {
			return repos.Products.RecomputeTotalStock(ctx, productID)
		})
		if err != nil {
			return nil, fmt.Errorf("reparar agregado de %s: %w", productID, err)
		}
		res.AggregateRepaired = true
		uc.log.Warn().
			Str("category", logger.CategoryFinancial).
			Str("product_id", productID).
			Int64("stored", res.AggregateStored).
			Int64("expected", res.AggregateExpected).
			Msg("agregado de stock reparado")
	}

	if len(res.Discrepancies) > 0 {
		uc.log.Warn().
			Str("category", logger.CategoryFinancial).
			Str("product_id", productID).
			Int("discrepancies", len(res.Discrepancies)).
			Msg("saldos distintos al libro")
	}
	return res, nil
}

// ReconcileAll concilia todos los productos en paralelo y devuelve solo los inconsistentes.
func (uc *ReconcileUseCase) ReconcileAll(ctx context.Context) (*dto.ReconciliationReport, error) {
	report := &dto.ReconciliationReport{StartedAt: time.Now().UTC(), Inconsistent: []dto.ProductReconciliation{}}
	ids, err := uc.repos.Products.ListIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("listar productos: %w", err)
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uc.opts.Concurrency)
	for _, id := range ids {
		g.Go(func() error {
			r, err := uc.ReconcileProduct(gctx, id)
			if err != nil {
				return err
			}
			if r.Consistent() {
				return nil
			}
			mu.Lock()
			report.Inconsistent = append(report.Inconsistent, *r)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(report.Inconsistent, func(i, j int) bool {
		return report.Inconsistent[i].ProductID < report.Inconsistent[j].ProductID
	})
	report.Products = len(ids)
	report.FinishedAt = time.Now().UTC()
	uc.log.Info().
		Int("products", report.Products).
		Int("inconsistent", len(report.Inconsistent)).
		Dur("elapsed", report.FinishedAt.Sub(report.StartedAt)).
		Msg("conciliación terminada")
	return report, nil
}

// ReconcilePair compara el saldo almacenado de un par con el reconstruido desde el libro.
// Devuelve nil si coinciden.
func (uc *ReconcileUseCase) ReconcilePair(ctx context.Context, productID, warehouseID string) (*dto.PairDiscrepancy, error) {
	if productID == "" || warehouseID == "" {
		return nil, domain.Invalid("", "product_id y warehouse_id son obligatorios")
	}
	return uc.reconcilePair(ctx, productID, warehouseID)
}

// reconcilePair lee el saldo antes y después del libro. Todo asiento del par se confirma junto con
// un cambio de versión del saldo, así que si la versión no cambió el libro leído corresponde a ese saldo;
// si cambió, hubo un movimiento en medio y se vuelve a leer.
func (uc *ReconcileUseCase) reconcilePair(ctx context.Context, productID, warehouseID string) (*dto.PairDiscrepancy, error) {
	for attempt := 0; attempt < pairReadAttempts; attempt++ {
		before, err := LoadBalance(ctx, uc.repos.Balances, productID, warehouseID)
		if err != nil {
			return nil, err
		}
		entries, err := uc.repos.Ledger.EntriesFor(ctx, repository.LedgerFilter{ProductID: productID, WarehouseID: warehouseID})
		if err != nil {
			return nil, err
		}
		stored, err := LoadBalance(ctx, uc.repos.Balances, productID, warehouseID)
		if err != nil {
			return nil, err
		}
		if stored.Version != before.Version {
			continue
		}

		replayed, err := costing.Replay(productID, warehouseID, entries)
		if err != nil {
			return nil, err
		}
		if stored.Quantity == replayed.Quantity && stored.AverageUnitCost.Sub(replayed.AverageUnitCost).Abs().LessThanOrEqual(costTolerance) {
			return nil, nil
		}
		return &dto.PairDiscrepancy{
			ProductID:        productID,
			WarehouseID:      warehouseID,
			StoredQuantity:   stored.Quantity,
			ReplayedQuantity: replayed.Quantity,
			StoredCost:       stored.AverageUnitCost,
			ReplayedCost:     replayed.AverageUnitCost,
		}, nil
	}
	return nil, fmt.Errorf("conciliar %s/%s: el saldo cambió en %d lecturas seguidas: %w",
		productID, warehouseID, pairReadAttempts, domain.ErrContention)
}

func (uc *ReconcileUseCase) warehousesOf(ctx context.Context, productID string) ([]string, error) {
	seen := map[string]struct{}{}
	withHistory, err := uc.repos.Ledger.WarehousesWithHistory(ctx, productID)
	if err != nil {
		return nil, err
	}
	for _, w := range withHistory {
		seen[w] = struct{}{}
	}
	balances, err := uc.repos.Balances.ListByProduct(ctx, productID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	for _, b := range balances {
		seen[b.WarehouseID] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for w := range seen {
		out = append(out, w)
	}
	sort.Strings(out)
	return out, nil
}
