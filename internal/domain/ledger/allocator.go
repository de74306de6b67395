package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-ledger/internal/domain/entity"
)

// AllocationItem es una línea de entrada del asignador: precio unitario base y cantidad.
type AllocationItem struct {
	ProductID string
	Price     decimal.Decimal
	Quantity  int64
}

// Allocate reparte el total de un movimiento entre sus líneas (servicio de dominio).
//
//	N == 1: a_1 = total
//	N > 1:  a_i = round(total * p_i / Σp, 2); si Σp == 0, a_i = round(total / N, 2)
//
// El peso es el precio unitario, no precio*cantidad. No se redistribuye el residuo del
// redondeo: Σa_i puede diferir de total en algunos centavos. Valores negativos cuentan como cero.
func Allocate(total decimal.Decimal, items []AllocationItem) []decimal.Decimal {
	if len(items) == 0 {
		return []decimal.Decimal{}
	}
	total = nonNegative(total)
	out := make([]decimal.Decimal, len(items))
	if len(items) == 1 {
		out[0] = total
		return out
	}

	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(nonNegative(it.Price))
	}
	if sum.IsZero() {
		share := total.Div(decimal.NewFromInt(int64(len(items)))).Round(2)
		for i := range out {
			out[i] = share
		}
		return out
	}
	for i, it := range items {
		out[i] = total.Mul(nonNegative(it.Price)).Div(sum).Round(2)
	}
	return out
}

// ExtendedTotal es el total de escritura: Σ(p_i * q_i) redondeado a 2 decimales.
// Es lo que viaja en stcokIn_price / Total_sale, no la suma de las asignaciones.
func ExtendedTotal(items []AllocationItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		if it.Quantity <= 0 {
			continue
		}
		total = total.Add(nonNegative(it.Price).Mul(decimal.NewFromInt(it.Quantity)))
	}
	return total.Round(2)
}

// AllocationItemsFor arma las entradas del asignador desde líneas resueltas,
// usando el precio base que corresponde a la dirección del movimiento.
func AllocationItemsFor(dir entity.Direction, lines []entity.ResolvedLine) []AllocationItem {
	items := make([]AllocationItem, 0, len(lines))
	for _, l := range lines {
		items = append(items, AllocationItem{
			ProductID: l.Product.ID,
			Price:     l.Product.BasePrice(dir),
			Quantity:  l.Quantity,
		})
	}
	return items
}

func nonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
