package ledger

import (
	"fmt"
	"strings"

	"github.com/jhoicas/pos-ledger/internal/domain"
	"github.com/jhoicas/pos-ledger/internal/domain/entity"
)

// BarcodeMode define cómo se validan los seriales de un producto serializado.
type BarcodeMode int

const (
	// BarcodeStrict exige tantos seriales como unidades (entradas).
	BarcodeStrict BarcodeMode = iota
	// BarcodeLenient acepta seriales opcionales, a lo sumo uno por unidad (salidas).
	BarcodeLenient
)

// ModeFor devuelve el modo de validación de seriales de una dirección.
func ModeFor(dir entity.Direction) BarcodeMode {
	if dir == entity.DirectionIn {
		return BarcodeStrict
	}
	return BarcodeLenient
}

// AddBarcode agrega candidate a existing. Rechaza vacíos y duplicados exactos
// (sensible a mayúsculas) contra existing y contra los seriales ya persistidos del producto.
// Devuelve una copia; existing no se modifica.
func AddBarcode(existing []string, candidate string, persisted []string) ([]string, error) {
	serial := strings.TrimSpace(candidate)
	if serial == "" {
		return existing, domain.NewValidationError("barcode", "vacío")
	}
	for _, s := range existing {
		if s == serial {
			return existing, fmt.Errorf("%q: %w", serial, domain.ErrDuplicateBarcode)
		}
	}
	for _, s := range persisted {
		if s == serial {
			return existing, fmt.Errorf("%q: %w", serial, domain.ErrDuplicateBarcode)
		}
	}
	out := make([]string, len(existing), len(existing)+1)
	copy(out, existing)
	return append(out, serial), nil
}

// RemoveBarcode quita el serial en index. Un índice fuera de rango devuelve la lista intacta.
func RemoveBarcode(existing []string, index int) []string {
	out := make([]string, 0, len(existing))
	for i, s := range existing {
		if i == index {
			continue
		}
		out = append(out, s)
	}
	return out
}

// TrimToQuantity recorta la lista cuando la cantidad de una salida baja.
func TrimToQuantity(barcodes []string, qty int64) []string {
	if qty < 0 {
		qty = 0
	}
	if int64(len(barcodes)) <= qty {
		return barcodes
	}
	return barcodes[:qty]
}

// ValidateBarcodeCount valida la cantidad de seriales de una línea antes del envío.
func ValidateBarcodeCount(barcodes []string, qty int64, serialized bool, mode BarcodeMode) error {
	if !serialized {
		return nil
	}
	n := int64(len(barcodes))
	switch mode {
	case BarcodeStrict:
		if n != qty {
			return fmt.Errorf("%d seriales para %d unidades: %w", n, qty, domain.ErrBarcodeCount)
		}
	case BarcodeLenient:
		if n > qty {
			return fmt.Errorf("%d seriales para %d unidades: %w", n, qty, domain.ErrBarcodeCount)
		}
	}
	return nil
}

// CheckAttachable valida el orden del ciclo de vida: una unidad se liga a una salida
// solo si está ligada a una entrada y no fue despachada; a una entrada solo si está libre.
func CheckAttachable(b entity.Barcode, dir entity.Direction) error {
	switch dir {
	case entity.DirectionIn:
		if b.StockInID != "" {
			return fmt.Errorf("%q: %w", b.Serial, domain.ErrDuplicateBarcode)
		}
	case entity.DirectionOut:
		if !b.InStock() {
			return fmt.Errorf("%q: %w", b.Serial, domain.ErrBarcodeNotInStock)
		}
	}
	return nil
}
