package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound            = errors.New("recurso no encontrado")
	ErrInvalidInput        = errors.New("entrada inválida")
	ErrForbidden           = errors.New("acceso denegado")
	ErrConflict            = errors.New("conflicto con el estado actual")
	ErrInsufficientStock   = errors.New("stock insuficiente")
	ErrConcurrencyConflict = errors.New("el saldo fue modificado por otra operación")
	ErrContention          = errors.New("contención: se agotaron los reintentos")
	ErrNotTendered         = errors.New("la venta no está totalmente pagada")
	ErrAlreadyProcessed    = errors.New("el documento ya fue procesado")
)

// ValidationError detalla una entrada inválida; errors.Is(err, ErrInvalidInput) es verdadero.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", ErrInvalidInput, e.Reason)
	}
	return fmt.Sprintf("%s: %s %s", ErrInvalidInput, e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// Invalid construye un ValidationError.
func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// LineError identifica la línea del documento (orden de compra o venta) que falló.
type LineError struct {
	Index     int // base 1
	ProductID string
	Err       error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("línea %d (producto %s): %v", e.Index, e.ProductID, e.Err)
}

func (e *LineError) Unwrap() error { return e.Err }

// Code traduce un error al código estable expuesto en los resultados.
func Code(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidInput):
		return "VALIDATION"
	case errors.Is(err, ErrNotFound):
		return "NOT_FOUND"
	case errors.Is(err, ErrInsufficientStock):
		return "INSUFFICIENT_STOCK"
	case errors.Is(err, ErrContention), errors.Is(err, ErrConcurrencyConflict):
		return "CONTENTION"
	case errors.Is(err, ErrNotTendered):
		return "NOT_TENDERED"
	case errors.Is(err, ErrAlreadyProcessed):
		return "ALREADY_PROCESSED"
	case errors.Is(err, ErrConflict):
		return "CONFLICT"
	case errors.Is(err, ErrForbidden):
		return "FORBIDDEN"
	default:
		return "INTERNAL"
	}
}

// IsFinancial indica si el error tiene impacto financiero (para separar el monitoreo
// de fallas de negocio de las fallas técnicas).
func IsFinancial(err error) bool {
	return errors.Is(err, ErrInsufficientStock) ||
		errors.Is(err, ErrContention) ||
		errors.Is(err, ErrNotTendered)
}
