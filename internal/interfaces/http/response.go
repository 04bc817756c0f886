package http

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("query"), ",", 2)[0]
		}
		return name
	})
	return v
}

// statusFor traduce el código de error de dominio al estado HTTP.
func statusFor(code string) int {
	switch code {
	case "VALIDATION":
		return fiber.StatusBadRequest
	case "NOT_FOUND":
		return fiber.StatusNotFound
	case "FORBIDDEN":
		return fiber.StatusForbidden
	case "CONFLICT", "ALREADY_PROCESSED":
		return fiber.StatusConflict
	case "INSUFFICIENT_STOCK", "NOT_TENDERED":
		return fiber.StatusUnprocessableEntity
	case "CONTENTION":
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

func errorJSON(c *fiber.Ctx, err error) error {
	code := domain.Code(err)
	msg := err.Error()
	if code == "INTERNAL" {
		msg = "error interno"
	}
	return c.Status(statusFor(code)).JSON(dto.ErrorResponse{Code: code, Message: msg})
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}

// validateBody valida el DTO. Si falla responde 400 con el primer campo inválido y ok=false;
// el handler debe retornar err sin seguir.
func validateBody(c *fiber.Ctx, in any) (ok bool, err error) {
	verr := validate.Struct(in)
	if verr == nil {
		return true, nil
	}
	msg := "datos inválidos"
	if verrs, isFields := verr.(validator.ValidationErrors); isFields && len(verrs) > 0 {
		ns := verrs[0].Namespace()
		if i := strings.Index(ns, "."); i >= 0 {
			ns = ns[i+1:]
		}
		msg = ns + ": " + fieldMessage(verrs[0])
	}
	return false, c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: msg})
}

func fieldMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "es obligatorio"
	case "gt":
		return "debe ser mayor que " + e.Param()
	case "ne":
		return "no puede ser " + e.Param()
	case "max":
		return "máximo " + e.Param()
	case "min":
		return "mínimo " + e.Param()
	case "oneof":
		return "debe ser uno de: " + e.Param()
	case "nefield":
		return "debe ser distinto de " + e.Param()
	default:
		return "valor inválido"
	}
}

// resultJSON responde un resultado estructurado: éxito con okStatus, falla con el estado del código.
func resultJSON(c *fiber.Ctx, success bool, code string, okStatus int, body any) error {
	if success {
		return c.Status(okStatus).JSON(body)
	}
	return c.Status(statusFor(code)).JSON(body)
}
