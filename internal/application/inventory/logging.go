package inventory

import (
	"errors"

	"github.com/rs/zerolog"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// LogFailure registra la falla de una operación separando las de impacto financiero
// (stock insuficiente, contención, pago incompleto) de las técnicas. Las fallas de validación
// y de recursos inexistentes son errores del llamador y van a nivel debug.
func LogFailure(log *logger.Logger, op string, err error, fields map[string]any) {
	if log == nil || err == nil {
		return
	}
	var ev *zerolog.Event
	switch {
	case domain.IsFinancial(err):
		ev = log.Warn().Str("category", logger.CategoryFinancial)
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrAlreadyProcessed), errors.Is(err, domain.ErrConflict):
		ev = log.Debug()
	default:
		ev = log.Error().Str("category", logger.CategoryTechnical)
	}
	ev.Str("op", op).Str("code", domain.Code(err)).Fields(fields).Err(err).Msg("operación de inventario fallida")
}
