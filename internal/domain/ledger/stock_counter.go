package ledger

import (
	"github.com/jhoicas/pos-ledger/internal/domain"
	"github.com/jhoicas/pos-ledger/internal/domain/entity"
)

// ApplyStockIn suma qty al stock inicial y al disponible.
func ApplyStockIn(rec *entity.StockRecord, qty int64) error {
	if qty <= 0 {
		return domain.NewValidationError("quantity", "debe ser mayor que 0")
	}
	rec.OpeningStock += qty
	rec.RemainingStock += qty
	return nil
}

// ApplyStockOut resta qty del disponible. Si qty supera el disponible devuelve
// ErrInsufficientStock y no modifica el registro. OpeningStock no cambia.
func ApplyStockOut(rec *entity.StockRecord, qty int64) error {
	if qty <= 0 {
		return domain.NewValidationError("quantity", "debe ser mayor que 0")
	}
	if qty > rec.RemainingStock {
		return domain.ErrInsufficientStock
	}
	rec.RemainingStock -= qty
	return nil
}

// ProjectedRemaining es la vista previa sin efectos: remaining+qty en entradas,
// remaining-qty en salidas. Puede ser negativo; quien llama debe rechazarlo.
func ProjectedRemaining(rec entity.StockRecord, qty int64, dir entity.Direction) int64 {
	if dir == entity.DirectionIn {
		return rec.RemainingStock + qty
	}
	return rec.RemainingStock - qty
}

// ClampStockOut limita una cantidad de salida al stock disponible.
// Devuelve la cantidad efectiva y si hubo recorte. Es una verificación de cliente, solo orientativa.
func ClampStockOut(available, requested int64) (int64, bool) {
	if requested < 0 {
		return 0, true
	}
	if available < 0 {
		available = 0
	}
	if requested > available {
		return available, true
	}
	return requested, false
}

// ApplyDelta aplica la diferencia (nuevo - original) de una edición.
// En entradas mueve inicial y disponible; en salidas un delta positivo consume stock
// y uno negativo lo devuelve. Nunca deja el disponible en negativo.
func ApplyDelta(rec *entity.StockRecord, dir entity.Direction, delta int64) error {
	if delta == 0 {
		return nil
	}
	switch dir {
	case entity.DirectionIn:
		if rec.RemainingStock+delta < 0 {
			// las unidades ya se despacharon; no se puede retirar la entrada
			return domain.ErrInsufficientStock
		}
		rec.OpeningStock += delta
		rec.RemainingStock += delta
	case entity.DirectionOut:
		if delta > rec.RemainingStock {
			return domain.ErrInsufficientStock
		}
		rec.RemainingStock -= delta
	default:
		return domain.NewValidationError("direction", "desconocida")
	}
	return nil
}

// Reverse deshace por completo el efecto de una línea (borrado de un movimiento).
func Reverse(rec *entity.StockRecord, dir entity.Direction, qty int64) error {
	return ApplyDelta(rec, dir, -qty)
}

// SetOpeningStock es la edición explícita del stock inicial; el disponible se mueve
// en la misma magnitud.
func SetOpeningStock(rec *entity.StockRecord, opening int64) error {
	if opening < 0 {
		return domain.NewValidationError("openingStock", "no puede ser negativo")
	}
	delta := opening - rec.OpeningStock
	if rec.RemainingStock+delta < 0 {
		return domain.ErrInsufficientStock
	}
	rec.OpeningStock = opening
	rec.RemainingStock += delta
	return nil
}
