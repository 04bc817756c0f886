package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/sales"
)

// SalesHandler ventas de mostrador.
type SalesHandler struct {
	uc *sales.FulfillUseCase
}

func NewSalesHandler(uc *sales.FulfillUseCase) *SalesHandler {
	return &SalesHandler{uc: uc}
}

// Create godoc
// @Summary      Registrar venta
// @Description  Descuenta stock de todas las líneas, registra la venta y los pagos en una sola unidad atómica.
// @Description  Repetir la misma reference_id devuelve la venta original (200) sin volver a descontar.
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SaleRequest  true  "Venta"
// @Success      201   {object}  dto.SaleResult
// @Success      200   {object}  dto.SaleResult  "venta repetida"
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.SaleResult
// @Failure      503   {object}  dto.SaleResult
// @Router       /api/sales [post]
func (h *SalesHandler) Create(c *fiber.Ctx) error {
	var in dto.SaleRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if ok, err := validateBody(c, in); !ok {
		return err
	}
	in.Actor = GetActor(c)

	res := h.uc.Fulfill(c.UserContext(), in)
	status := fiber.StatusCreated
	if res.Duplicate {
		status = fiber.StatusOK
	}
	return resultJSON(c, res.Success, res.ErrorCode, status, res)
}
