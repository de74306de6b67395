package ledger

import (
	"github.com/jhoicas/pos-ledger/internal/domain"
	"github.com/jhoicas/pos-ledger/internal/domain/entity"
)

// LineDelta es el cambio de unidades de un producto al pasar de una versión de un
// movimiento a otra. Original es la cantidad ya reflejada en el stock.
type LineDelta struct {
	ProductID string
	Original  int64
	Updated   int64
}

// Delta devuelve Updated - Original.
func (d LineDelta) Delta() int64 { return d.Updated - d.Original }

// DiffLines calcula los deltas por producto entre original y updated. Los productos
// retirados aparecen con Updated = 0 (su cantidad original vuelve al stock).
// El orden es el de updated seguido de los retirados en el orden de original.
func DiffLines(original, updated []entity.LineItem) []LineDelta {
	orig := make(map[string]int64, len(original))
	for _, l := range original {
		orig[l.ProductID] += l.Quantity
	}
	seen := make(map[string]bool, len(updated))
	out := make([]LineDelta, 0, len(original)+len(updated))
	for _, l := range updated {
		if seen[l.ProductID] {
			continue
		}
		seen[l.ProductID] = true
		out = append(out, LineDelta{ProductID: l.ProductID, Original: orig[l.ProductID], Updated: l.Quantity})
	}
	for _, l := range original {
		if seen[l.ProductID] {
			continue
		}
		seen[l.ProductID] = true
		out = append(out, LineDelta{ProductID: l.ProductID, Original: orig[l.ProductID]})
	}
	return out
}

// ValidateLines verifica la forma de un movimiento: al menos una línea, cantidades > 0 y
// productos únicos dentro del movimiento.
func ValidateLines(lines []entity.LineItem) error {
	if len(lines) == 0 {
		return domain.NewValidationError("items", "se requiere al menos un producto")
	}
	seen := make(map[string]int, len(lines))
	for i, l := range lines {
		if l.ProductID == "" {
			return domain.NewRowValidationError(i, "itemId", "requerido")
		}
		if l.Quantity <= 0 {
			return domain.NewRowValidationError(i, "quantity", "debe ser mayor que 0")
		}
		if _, dup := seen[l.ProductID]; dup {
			return domain.NewRowValidationError(i, "itemId", "producto repetido en la transacción")
		}
		seen[l.ProductID] = i
	}
	return nil
}
