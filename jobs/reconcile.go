package jobs

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// Reconciler lo que el worker necesita de la conciliación.
type Reconciler interface {
	ReconcileProduct(ctx context.Context, productID string) (*dto.ProductReconciliation, error)
	ReconcileAll(ctx context.Context) (*dto.ReconciliationReport, error)
}

// ReconcileHandler procesa TaskReconcileInventory.
type ReconcileHandler struct {
	reconciler Reconciler
	log        *logger.Logger
}

func NewReconcileHandler(reconciler Reconciler, log *logger.Logger) *ReconcileHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &ReconcileHandler{reconciler: reconciler, log: log.Named("reconcile-job")}
}

// ProcessTask implementa asynq.Handler. Un payload ilegible no se reintenta.
func (h *ReconcileHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload ReconcilePayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return fmt.Errorf("payload inválido: %v: %w", err, asynq.SkipRetry)
		}
	}

	if payload.ProductID != "" {
		rec, err := h.reconciler.ReconcileProduct(ctx, payload.ProductID)
		if err != nil {
			return fmt.Errorf("conciliar producto %s: %w", payload.ProductID, err)
		}
		if !rec.Consistent() {
			h.log.Warn().
				Str("category", logger.CategoryFinancial).
				Str("product_id", rec.ProductID).
				Int("discrepancies", len(rec.Discrepancies)).
				Int64("aggregate_stored", rec.AggregateStored).
				Int64("aggregate_expected", rec.AggregateExpected).
				Bool("aggregate_repaired", rec.AggregateRepaired).
				Msg("producto con discrepancias")
		}
		return nil
	}

	report, err := h.reconciler.ReconcileAll(ctx)
	if err != nil {
		return fmt.Errorf("conciliar inventario: %w", err)
	}
	ev := h.log.Info()
	if len(report.Inconsistent) > 0 {
		ev = h.log.Warn().Str("category", logger.CategoryFinancial)
	}
	ev.Int("products", report.Products).
		Int("inconsistent", len(report.Inconsistent)).
		Dur("elapsed", report.FinishedAt.Sub(report.StartedAt)).
		Msg("conciliación terminada")
	return nil
}
