package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Medios de pago aceptados en caja.
const (
	PaymentCash     = "cash"
	PaymentCard     = "card"
	PaymentTransfer = "transfer"
	PaymentCredit   = "credit"
)

// CashTransaction movimiento de dinero generado por una venta (una fila por pago).
type CashTransaction struct {
	ID            string
	SaleID        string
	PaymentMethod string
	Amount        decimal.Decimal
	Actor         string
	CreatedAt     time.Time
}
