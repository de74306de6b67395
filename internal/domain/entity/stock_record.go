package entity

import "time"

// Tipos de asiento en la tarjeta de stock de un producto.
// EntryTypeOpening sube el stock inicial; EntryTypeOpeningDown lo baja.
const (
	EntryTypeOpening     = "Opening"
	EntryTypeOpeningDown = "Opening-Down"
	EntryTypeStockIn     = "Stock-In"
	EntryTypeStockOut    = "Stock-Out"
)

// StockRecord es el contador de stock de un producto.
// OpeningStock acumula las unidades recibidas; RemainingStock las disponibles (nunca negativo).
// Version se incrementa en cada escritura y habilita control optimista.
type StockRecord struct {
	ProductID      string
	OpeningStock   int64
	RemainingStock int64
	Version        int64
	Entries        []StockEntry
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// StockEntry es un asiento de la tarjeta de stock. Quantity es siempre positiva; Type da el signo.
type StockEntry struct {
	ID         string
	ProductID  string
	MovementID string
	Type       string
	Quantity   int64
	Reference  string
	Date       time.Time
}

// IsOpening indica un ajuste de stock inicial (en cualquier sentido).
func (e StockEntry) IsOpening() bool {
	return e.Type == EntryTypeOpening || e.Type == EntryTypeOpeningDown
}

// Signed devuelve la cantidad con el signo que le da el tipo.
func (e StockEntry) Signed() int64 {
	if e.Type == EntryTypeStockOut || e.Type == EntryTypeOpeningDown {
		return -e.Quantity
	}
	return e.Quantity
}
