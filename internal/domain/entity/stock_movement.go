package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Direction indica si un movimiento suma (entrada) o resta (salida) stock.
type Direction string

const (
	DirectionIn  Direction = "in"  // stock-in
	DirectionOut Direction = "out" // stock-out
)

// Valid indica si la dirección es conocida.
func (d Direction) Valid() bool {
	return d == DirectionIn || d == DirectionOut
}

// LineItem es una línea de un movimiento: producto y unidades movidas.
type LineItem struct {
	ProductID string
	Quantity  int64
}

// StockMovement representa una entrada o salida de varios productos.
// Total es el monto agregado del movimiento (stcokIn_price / Total_sale); no se descompone
// por línea al persistir, la asignación por línea se calcula al leer.
type StockMovement struct {
	ID         string
	Direction  Direction
	Number     string // consecutivo legible, p. ej. STOCKOUT-000123
	CategoryID string
	Date       time.Time
	InvoiceNo  string
	Notes      string
	IsActive   bool
	Lines      []LineItem
	Total      decimal.Decimal
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TotalQuantity suma las unidades de todas las líneas.
func (m *StockMovement) TotalQuantity() int64 {
	var total int64
	for _, l := range m.Lines {
		total += l.Quantity
	}
	return total
}

// ProductIDs devuelve los productos en el orden de las líneas.
func (m *StockMovement) ProductIDs() []string {
	ids := make([]string, 0, len(m.Lines))
	for _, l := range m.Lines {
		ids = append(ids, l.ProductID)
	}
	return ids
}

// ResolvedLine es una línea con el producto completo y su stock al momento de la consulta.
type ResolvedLine struct {
	Product        Product
	Quantity       int64
	OpeningStock   int64
	RemainingStock int64
	Barcodes       []Barcode
}

// ResolvedMovement es un movimiento con sus productos resueltos; semilla de una edición
// y entrada del view-model de reportes.
type ResolvedMovement struct {
	Movement     StockMovement
	CategoryName string
	Lines        []ResolvedLine
}
