package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/purchasing"
)

// PurchaseHandler recepción de órdenes de compra.
type PurchaseHandler struct {
	uc *purchasing.ReceiveUseCase
}

func NewPurchaseHandler(uc *purchasing.ReceiveUseCase) *PurchaseHandler {
	return &PurchaseHandler{uc: uc}
}

type receiveBody struct {
	WarehouseID string `json:"warehouse_id"`
}

// Receive godoc
// @Summary      Recibir orden de compra
// @Description  Ingresa todas las líneas de una orden aprobada a la bodega, recalcula el costo promedio y marca la orden como recibida.
// @Tags         purchases
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la orden de compra"
// @Param        body  body  receiveBody  true  "warehouse_id"
// @Success      200   {object}  dto.ReceivingResult
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ReceivingResult
// @Failure      409   {object}  dto.ReceivingResult
// @Failure      503   {object}  dto.ReceivingResult
// @Router       /api/purchases/{id}/receive [post]
func (h *PurchaseHandler) Receive(c *fiber.Ctx) error {
	var body receiveBody
	if err := c.BodyParser(&body); err != nil {
		return badBody(c)
	}
	in := dto.PurchaseCompletionRequest{
		PurchaseOrderID: c.Params("id"),
		WarehouseID:     body.WarehouseID,
		Actor:           GetActor(c),
	}
	if ok, err := validateBody(c, in); !ok {
		return err
	}
	res := h.uc.Receive(c.UserContext(), in)
	return resultJSON(c, res.Success, res.ErrorCode, fiber.StatusOK, res)
}
