package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto del catálogo. El ledger solo lo lee; los campos de
// precio y grupo pueden proponerse para edición a través del catálogo externo.
type Product struct {
	ID           string
	Name         string
	Description  string
	SKU          string // modelNoSKU
	Unit         string
	GroupID      string
	GroupName    string
	CostPrice    decimal.Decimal // precio de compra
	SalePrice    decimal.Decimal // precio de venta
	Discount     decimal.Decimal
	IsSerialized bool // se rastrea por unidades con código de barras
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// FinalPrice devuelve max(0, venta - descuento) redondeado a 2 decimales.
func (p Product) FinalPrice() decimal.Decimal {
	final := p.SalePrice.Sub(p.Discount)
	if final.IsNegative() {
		return decimal.Zero
	}
	return final.Round(2)
}

// BasePrice es el precio unitario usado para asignar y totalizar un movimiento:
// costo para entradas, venta para salidas.
func (p Product) BasePrice(dir Direction) decimal.Decimal {
	if dir == DirectionIn {
		return p.CostPrice
	}
	return p.SalePrice
}

// CatalogItem es un producto con la foto de stock vigente al momento de consultar el catálogo.
type CatalogItem struct {
	Product        Product
	OpeningStock   int64
	RemainingStock int64
	Barcodes       []Barcode
}

// Serials devuelve los seriales persistidos del producto.
func (c CatalogItem) Serials() []string {
	out := make([]string, 0, len(c.Barcodes))
	for _, b := range c.Barcodes {
		out = append(out, b.Serial)
	}
	return out
}
