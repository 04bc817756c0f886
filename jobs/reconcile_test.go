package jobs_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/stock-ledger/jobs"
)

// ──────────────────────────────────────────────────────────────────────────────
// Tarea
// ──────────────────────────────────────────────────────────────────────────────

func TestNewReconcileTask(t *testing.T) {
	task, err := jobs.NewReconcileTask(jobs.ReconcilePayload{ProductID: "p1"})
	require.NoError(t, err)
	assert.Equal(t, jobs.TaskReconcileInventory, task.Type())

	var got jobs.ReconcilePayload
	require.NoError(t, json.Unmarshal(task.Payload(), &got))
	assert.Equal(t, "p1", got.ProductID)
}

// ──────────────────────────────────────────────────────────────────────────────
// Handler
// ──────────────────────────────────────────────────────────────────────────────

type fakeReconciler struct {
	products []string
	all      int
	err      error
}

func (f *fakeReconciler) ReconcileProduct(_ context.Context, productID string) (*dto.ProductReconciliation, error) {
	f.products = append(f.products, productID)
	if f.err != nil {
		return nil, f.err
	}
	return &dto.ProductReconciliation{ProductID: productID}, nil
}

func (f *fakeReconciler) ReconcileAll(context.Context) (*dto.ReconciliationReport, error) {
	f.all++
	if f.err != nil {
		return nil, f.err
	}
	return &dto.ReconciliationReport{}, nil
}

func TestReconcileHandler_SinProductoConciliaTodo(t *testing.T) {
	rec := &fakeReconciler{}
	h := jobs.NewReconcileHandler(rec, nil)

	require.NoError(t, h.ProcessTask(context.Background(), asynq.NewTask(jobs.TaskReconcileInventory, nil)))
	assert.Equal(t, 1, rec.all)
	assert.Empty(t, rec.products)
}

func TestReconcileHandler_ProductoPuntual(t *testing.T) {
	rec := &fakeReconciler{}
	h := jobs.NewReconcileHandler(rec, nil)
	task, err := jobs.NewReconcileTask(jobs.ReconcilePayload{ProductID: "p9"})
	require.NoError(t, err)

	require.NoError(t, h.ProcessTask(context.Background(), task))
	assert.Equal(t, []string{"p9"}, rec.products)
	assert.Zero(t, rec.all)
}

func TestReconcileHandler_PayloadInvalidoNoSeReintenta(t *testing.T) {
	h := jobs.NewReconcileHandler(&fakeReconciler{}, nil)
	err := h.ProcessTask(context.Background(), asynq.NewTask(jobs.TaskReconcileInventory, []byte("{")))
	require.Error(t, err)
	assert.True(t, errors.Is(err, asynq.SkipRetry))
}

func TestReconcileHandler_PropagaErrorParaReintento(t *testing.T) {
	boom := errors.New("db caída")
	h := jobs.NewReconcileHandler(&fakeReconciler{err: boom}, nil)
	err := h.ProcessTask(context.Background(), asynq.NewTask(jobs.TaskReconcileInventory, nil))
	require.ErrorIs(t, err, boom)
	assert.False(t, errors.Is(err, asynq.SkipRetry))
}

func TestReconcileHandler_RepararAgregadoDesdeLosSaldos(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	s.AddProduct(entity.Product{ID: "p1", SKU: "P-1", Name: "Aceite"})
	s.AddWarehouse(entity.Warehouse{ID: "w1", Name: "Principal", IsActive: true})

	adj := inventory.NewStockAdjustmentUseCase(s, inventory.DefaultPolicy(), nil, nil)
	res := adj.OpeningStock(ctx, dto.OpeningStockRequest{
		ProductID: "p1", WarehouseID: "w1", Quantity: 12, UnitCost: decimal.NewFromInt(8), Actor: "u1",
	})
	require.True(t, res.Success, res.ErrorMessage)

	require.NoError(t, s.Repositories().Products.AdjustTotalStock(ctx, "p1", 87))

	uc := inventory.NewReconcileUseCase(s.Repositories(), s, inventory.ReconcileOptions{RepairAggregates: true}, nil)
	h := jobs.NewReconcileHandler(uc, nil)
	require.NoError(t, h.ProcessTask(ctx, asynq.NewTask(jobs.TaskReconcileInventory, nil)))

	p, err := s.Repositories().Products.GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, int64(12), p.TotalStockQuantity)
}

func TestNewWorker_RegistraCron(t *testing.T) {
	task, err := jobs.NewReconcileTask(jobs.ReconcilePayload{})
	require.NoError(t, err)

	w, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: "127.0.0.1:0"},
		Handlers:  []jobs.TaskHandler{{Type: jobs.TaskReconcileInventory, Handler: jobs.NewReconcileHandler(&fakeReconciler{}, nil)}},
		Cron:      []jobs.CronRegistration{{Spec: "0 3 * * *", Task: task}},
	})
	require.NoError(t, err)
	assert.NotNil(t, w)

	_, err = jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: "127.0.0.1:0"},
		Cron:      []jobs.CronRegistration{{Spec: "no es cron", Task: task}},
	})
	assert.Error(t, err)
}
