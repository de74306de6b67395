package entity

import "time"

// Barcode es una unidad serializada. Ciclo de vida: libre → ligada a una entrada →
// opcionalmente ligada a una salida al venderse.
type Barcode struct {
	ID         string
	ProductID  string
	Serial     string
	StockInID  string // vacío si no está ligada
	StockOutID string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// InStock indica si la unidad fue recibida y aún no se ha despachado.
func (b Barcode) InStock() bool {
	return b.StockInID != "" && b.StockOutID == ""
}

// BarcodeLink indica a qué movimiento se ligan los seriales guardados.
type BarcodeLink struct {
	StockInID  string
	StockOutID string
}
