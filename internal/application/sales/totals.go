package sales

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	costing "github.com/jhoicas/stock-ledger/internal/domain/inventory"
)

var (
	hundred       = decimal.NewFromInt(100)
	lineTolerance = decimal.New(1, -2)
)

// Totals totales de la venta calculados desde las líneas.
type Totals struct {
	Net   decimal.Decimal
	Tax   decimal.Decimal
	Grand decimal.Decimal
	Lines []LineAmounts
}

// LineAmounts montos de una línea: base gravable (neto de descuentos) y total con IVA.
type LineAmounts struct {
	Net   decimal.Decimal
	Total decimal.Decimal
}

// LineTotal calcula round2(cantidad*precio*(1-descuento%/100) - descuento) y le aplica el IVA.
func LineTotal(l dto.SaleLineRequest) (LineAmounts, error) {
	if l.Quantity <= 0 {
		return LineAmounts{}, domain.Invalid("quantity", "debe ser mayor que cero")
	}
	if l.UnitPrice.IsNegative() {
		return LineAmounts{}, domain.Invalid("unit_price", "no puede ser negativo")
	}
	if l.DiscountPercent.IsNegative() || l.DiscountPercent.GreaterThan(hundred) {
		return LineAmounts{}, domain.Invalid("discount_percent", "debe estar entre 0 y 100")
	}
	if l.DiscountAmount.IsNegative() {
		return LineAmounts{}, domain.Invalid("discount_amount", "no puede ser negativo")
	}
	if l.TaxRate.IsNegative() {
		return LineAmounts{}, domain.Invalid("tax_rate", "no puede ser negativo")
	}
	gross := l.UnitPrice.Mul(decimal.NewFromInt(l.Quantity))
	net := gross.Mul(decimal.NewFromInt(1).Sub(l.DiscountPercent.Div(hundred))).Sub(l.DiscountAmount)
	net = costing.RoundMoney(net)
	if net.IsNegative() {
		return LineAmounts{}, domain.Invalid("discount_amount", "el descuento supera el valor de la línea")
	}
	total := costing.RoundMoney(net.Mul(decimal.NewFromInt(1).Add(l.TaxRate)))
	if !l.LineTotal.IsZero() && l.LineTotal.Sub(total).Abs().GreaterThan(lineTolerance) {
		return LineAmounts{}, domain.Invalid("line_total", fmt.Sprintf("no coincide con el calculado (%s)", total.StringFixed(2)))
	}
	return LineAmounts{Net: net, Total: total}, nil
}

// ComputeTotals valida cada línea y suma los totales del documento.
// Los errores se devuelven como domain.LineError con el índice base 1.
func ComputeTotals(lines []dto.SaleLineRequest) (Totals, error) {
	if len(lines) == 0 {
		return Totals{}, domain.Invalid("lines", "la venta debe tener al menos una línea")
	}
	t := Totals{Net: decimal.Zero, Grand: decimal.Zero, Lines: make([]LineAmounts, 0, len(lines))}
	for i, l := range lines {
		if l.ProductID == "" {
			return Totals{}, &domain.LineError{Index: i + 1, Err: domain.Invalid("product_id", "es obligatorio")}
		}
		a, err := LineTotal(l)
		if err != nil {
			return Totals{}, &domain.LineError{Index: i + 1, ProductID: l.ProductID, Err: err}
		}
		t.Net = t.Net.Add(a.Net)
		t.Grand = t.Grand.Add(a.Total)
		t.Lines = append(t.Lines, a)
	}
	t.Tax = t.Grand.Sub(t.Net)
	return t, nil
}

// ResolvePayments devuelve los pagos a registrar. Sin pagos explícitos se asume un único pago
// por el total con el medio de pago de la venta. La suma debe ser exactamente el total.
// Una venta en cero sin pagos explícitos no genera movimientos de caja.
func ResolvePayments(in dto.SaleRequest, grand decimal.Decimal) ([]dto.PaymentRequest, error) {
	payments := in.Payments
	if len(payments) == 0 {
		if !validPaymentMethod(in.PaymentMethod) {
			return nil, domain.Invalid("payment_method", fmt.Sprintf("medio de pago %q no soportado", in.PaymentMethod))
		}
		if grand.IsZero() {
			return []dto.PaymentRequest{}, nil
		}
		payments = []dto.PaymentRequest{{Method: in.PaymentMethod, Amount: grand}}
	}
	sum := decimal.Zero
	for i, p := range payments {
		if !validPaymentMethod(p.Method) {
			return nil, domain.Invalid(fmt.Sprintf("payments[%d].method", i), fmt.Sprintf("medio de pago %q no soportado", p.Method))
		}
		if !p.Amount.IsPositive() {
			return nil, domain.Invalid(fmt.Sprintf("payments[%d].amount", i), "debe ser mayor que cero")
		}
		sum = sum.Add(p.Amount)
	}
	if !costing.RoundMoney(sum).Equal(grand) {
		return nil, fmt.Errorf("%w: pagado %s de %s", domain.ErrNotTendered, sum.StringFixed(2), grand.StringFixed(2))
	}
	return payments, nil
}

func validPaymentMethod(m string) bool {
	switch m {
	case entity.PaymentCash, entity.PaymentCard, entity.PaymentTransfer, entity.PaymentCredit:
		return true
	}
	return false
}
