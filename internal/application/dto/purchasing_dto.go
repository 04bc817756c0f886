package dto

import "github.com/shopspring/decimal"

// PurchaseCompletionRequest solicitud de recepción de una orden de compra.
type PurchaseCompletionRequest struct {
	PurchaseOrderID string `json:"purchase_order_id" validate:"required"`
	WarehouseID     string `json:"warehouse_id" validate:"required"`
	Actor           string `json:"-"`
}

// ReceivingResult resultado de la recepción.
type ReceivingResult struct {
	Success         bool            `json:"success"`
	PurchaseOrderID string          `json:"purchase_order_id"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	LinesReceived   int             `json:"lines_received"`
	FailedLine      int             `json:"failed_line,omitempty"` // base 1
	ErrorCode       string          `json:"error_code,omitempty"`
	ErrorMessage    string          `json:"error_message,omitempty"`
	Err             error           `json:"-"`
}
