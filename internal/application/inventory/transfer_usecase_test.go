package inventory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

func TestTransfer_LlevaCostoDeOrigenAlDestino(t *testing.T) {
	s := newStore(t)
	seedOpening(t, s, prodA, wh1, 10, "100")
	seedOpening(t, s, prodA, wh2, 10, "80")
	cache := newMapCache()
	uc := inventory.NewTransferUseCase(s, inventory.DefaultPolicy(), cache, nil)

	res := uc.Transfer(context.Background(), dto.TransferRequest{
		ProductID: prodA, FromWarehouseID: wh1, ToWarehouseID: wh2, Quantity: 10, Actor: actor,
	})

	require.True(t, res.Success, res.ErrorMessage)
	assert.Equal(t, int64(0), res.SourceQuantity)
	assert.Equal(t, int64(20), res.TargetQuantity)
	assert.True(t, res.UnitCost.Equal(dec("100")))

	src := balanceOf(t, s, prodA, wh1)
	dst := balanceOf(t, s, prodA, wh2)
	assert.True(t, src.AverageUnitCost.Equal(dec("100")), "el origen conserva su costo")
	assert.True(t, dst.AverageUnitCost.Equal(dec("90")), "(10*80 + 10*100)/20")
	assert.Equal(t, int64(20), totalStock(t, s, prodA), "el agregado no cambia con un traslado")

	out := entriesOf(t, s, prodA, wh1)
	in := entriesOf(t, s, prodA, wh2)
	require.Len(t, out, 2)
	require.Len(t, in, 2)
	assert.Equal(t, entity.MovementTransferOut, out[1].MovementType)
	assert.Equal(t, entity.MovementTransferIn, in[1].MovementType)
	assert.Equal(t, out[1].TransactionID, in[1].TransactionID)
	assert.Len(t, cache.invalidated, 2)
}

func TestTransfer_SinStockEnOrigenNoEscribeNada(t *testing.T) {
	s := newStore(t)
	seedOpening(t, s, prodA, wh1, 3, "100")
	uc := inventory.NewTransferUseCase(s, inventory.DefaultPolicy(), nil, nil)

	res := uc.Transfer(context.Background(), dto.TransferRequest{
		ProductID: prodA, FromWarehouseID: wh1, ToWarehouseID: wh2, Quantity: 5,
	})

	assert.False(t, res.Success)
	assert.Equal(t, "INSUFFICIENT_STOCK", res.ErrorCode)
	assert.Equal(t, int64(3), balanceOf(t, s, prodA, wh1).Quantity)
	assert.Empty(t, entriesOf(t, s, prodA, wh2))
}

func TestTransfer_MismaBodega(t *testing.T) {
	s := newStore(t)
	uc := inventory.NewTransferUseCase(s, inventory.DefaultPolicy(), nil, nil)

	res := uc.Transfer(context.Background(), dto.TransferRequest{
		ProductID: prodA, FromWarehouseID: wh1, ToWarehouseID: wh1, Quantity: 1,
	})
	assert.False(t, res.Success)
	assert.Equal(t, "VALIDATION", res.ErrorCode)
}

func TestTransfer_DestinoInactivoRevierteLaSalida(t *testing.T) {
	s := newStore(t)
	seedOpening(t, s, prodA, wh1, 5, "10")
	uc := inventory.NewTransferUseCase(s, inventory.DefaultPolicy(), nil, nil)

	res := uc.Transfer(context.Background(), dto.TransferRequest{
		ProductID: prodA, FromWarehouseID: wh1, ToWarehouseID: whOff, Quantity: 2,
	})
	assert.False(t, res.Success)
	assert.Equal(t, int64(5), balanceOf(t, s, prodA, wh1).Quantity)
	assert.Len(t, entriesOf(t, s, prodA, wh1), 1)
}
