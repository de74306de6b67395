package dto

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-ledger/internal/domain"
	"github.com/jhoicas/pos-ledger/internal/domain/entity"
)

// StockInRequest body de POST /create_stockIn y PUT /update_stockIn/:id.
// itemId y stockAdded son arreglos paralelos: deben tener el mismo largo.
type StockInRequest struct {
	ItemIDs    []string        `json:"itemId" validate:"required,min=1,dive,required"`
	StockAdded []int64         `json:"stockAdded" validate:"required,min=1,dive,gt=0"`
	Price      decimal.Decimal `json:"stcokIn_price"`
	Date       string          `json:"stockInDate" validate:"required"`
	CategoryID string          `json:"stockInCategoryId" validate:"required"`
	InvoiceNo  string          `json:"invoiceNo" validate:"max=100"`
	Notes      string          `json:"notes" validate:"max=1000"`
	IsActive   *bool           `json:"isActive,omitempty"`
}

// StockOutRequest body de POST /stock-out y PUT /update_stockOut/:id.
type StockOutRequest struct {
	ItemIDs    []string        `json:"itemId" validate:"required,min=1,dive,required"`
	Quantity   []int64         `json:"quantity" validate:"required,min=1,dive,gt=0"`
	TotalSale  decimal.Decimal `json:"Total_sale"`
	Date       string          `json:"stockOutDate" validate:"required"`
	CategoryID string          `json:"stockOutCategoryId" validate:"required"`
	InvoiceNo  string          `json:"invoiceNo" validate:"max=100"`
	Notes      string          `json:"notes" validate:"max=1000"`
	IsActive   *bool           `json:"isActive,omitempty"`
}

// ToMovement valida y convierte a entidad. Arreglos de distinto largo son un error.
func (r *StockInRequest) ToMovement() (*entity.StockMovement, error) {
	if err := Validate(r); err != nil {
		return nil, err
	}
	return toMovement(entity.DirectionIn, r.ItemIDs, r.StockAdded, "stockAdded", r.Price,
		"stockInDate", r.Date, r.CategoryID, r.InvoiceNo, r.Notes, r.IsActive)
}

// ToMovement valida y convierte a entidad. Arreglos de distinto largo son un error.
func (r *StockOutRequest) ToMovement() (*entity.StockMovement, error) {
	if err := Validate(r); err != nil {
		return nil, err
	}
	return toMovement(entity.DirectionOut, r.ItemIDs, r.Quantity, "quantity", r.TotalSale,
		"stockOutDate", r.Date, r.CategoryID, r.InvoiceNo, r.Notes, r.IsActive)
}

func toMovement(dir entity.Direction, ids []string, qtys []int64, qtyField string, total decimal.Decimal,
	dateField, date, categoryID, invoiceNo, notes string, active *bool) (*entity.StockMovement, error) {
	if len(ids) != len(qtys) {
		return nil, domain.NewValidationError(qtyField, fmt.Sprintf("%d cantidades para %d productos", len(qtys), len(ids)))
	}
	if total.IsNegative() {
		return nil, domain.NewValidationError("total", "no puede ser negativo")
	}
	t, err := ParseDate(dateField, date)
	if err != nil {
		return nil, err
	}
	m := &entity.StockMovement{
		Direction:  dir,
		CategoryID: categoryID,
		Date:       t,
		InvoiceNo:  invoiceNo,
		Notes:      notes,
		IsActive:   active == nil || *active,
		Total:      total,
		Lines:      make([]entity.LineItem, len(ids)),
	}
	for i := range ids {
		m.Lines[i] = entity.LineItem{ProductID: ids[i], Quantity: qtys[i]}
	}
	return m, nil
}

// NewStockInRequest arma el body de cable de una entrada.
func NewStockInRequest(m *entity.StockMovement) *StockInRequest {
	active := m.IsActive
	r := &StockInRequest{
		Price:      m.Total,
		Date:       m.Date.Format(time.RFC3339),
		CategoryID: m.CategoryID,
		InvoiceNo:  m.InvoiceNo,
		Notes:      m.Notes,
		IsActive:   &active,
	}
	for _, l := range m.Lines {
		r.ItemIDs = append(r.ItemIDs, l.ProductID)
		r.StockAdded = append(r.StockAdded, l.Quantity)
	}
	return r
}

// NewStockOutRequest arma el body de cable de una salida.
func NewStockOutRequest(m *entity.StockMovement) *StockOutRequest {
	active := m.IsActive
	r := &StockOutRequest{
		TotalSale:  m.Total,
		Date:       m.Date.Format(time.RFC3339),
		CategoryID: m.CategoryID,
		InvoiceNo:  m.InvoiceNo,
		Notes:      m.Notes,
		IsActive:   &active,
	}
	for _, l := range m.Lines {
		r.ItemIDs = append(r.ItemIDs, l.ProductID)
		r.Quantity = append(r.Quantity, l.Quantity)
	}
	return r
}

// CreateMovementResponse respuesta de creación.
type CreateMovementResponse struct {
	ID     string `json:"_id"`
	Number string `json:"stockOutNumber,omitempty"`
}

// BarcodeResponse unidad serializada.
type BarcodeResponse struct {
	ID         string `json:"_id,omitempty"`
	Serial     string `json:"serial"`
	StockInID  string `json:"stockInId,omitempty"`
	StockOutID string `json:"stockoutId,omitempty"`
}

// CatalogItemResponse producto con stock vigente.
type CatalogItemResponse struct {
	ID             string            `json:"_id"`
	Name           string            `json:"itemName"`
	Description    string            `json:"description,omitempty"`
	SKU            string            `json:"modelNoSKU"`
	Unit           string            `json:"unit"`
	GroupID        string            `json:"itemGroupId,omitempty"`
	GroupName      string            `json:"itemGroupName,omitempty"`
	CostPrice      decimal.Decimal   `json:"costPrice"`
	SalePrice      decimal.Decimal   `json:"salePrice"`
	Discount       decimal.Decimal   `json:"discount"`
	FinalPrice     decimal.Decimal   `json:"finalPrice"`
	IsSerialized   bool              `json:"serialNo"`
	IsActive       bool              `json:"isActive"`
	OpeningStock   int64             `json:"openingStock"`
	RemainingStock int64             `json:"remainingStock"`
	Barcodes       []BarcodeResponse `json:"barcodes,omitempty"`
}

// FromCatalogItem convierte desde entidad.
func FromCatalogItem(it entity.CatalogItem) CatalogItemResponse {
	p := it.Product
	r := CatalogItemResponse{
		ID:             p.ID,
		Name:           p.Name,
		Description:    p.Description,
		SKU:            p.SKU,
		Unit:           p.Unit,
		GroupID:        p.GroupID,
		GroupName:      p.GroupName,
		CostPrice:      p.CostPrice,
		SalePrice:      p.SalePrice,
		Discount:       p.Discount,
		FinalPrice:     p.FinalPrice(),
		IsSerialized:   p.IsSerialized,
		IsActive:       p.IsActive,
		OpeningStock:   it.OpeningStock,
		RemainingStock: it.RemainingStock,
	}
	for _, b := range it.Barcodes {
		r.Barcodes = append(r.Barcodes, FromBarcode(b))
	}
	return r
}

// ToCatalogItem convierte a entidad.
func (r CatalogItemResponse) ToCatalogItem() entity.CatalogItem {
	it := entity.CatalogItem{
		Product: entity.Product{
			ID:           r.ID,
			Name:         r.Name,
			Description:  r.Description,
			SKU:          r.SKU,
			Unit:         r.Unit,
			GroupID:      r.GroupID,
			GroupName:    r.GroupName,
			CostPrice:    r.CostPrice,
			SalePrice:    r.SalePrice,
			Discount:     r.Discount,
			IsSerialized: r.IsSerialized,
			IsActive:     r.IsActive,
		},
		OpeningStock:   r.OpeningStock,
		RemainingStock: r.RemainingStock,
	}
	for _, b := range r.Barcodes {
		it.Barcodes = append(it.Barcodes, entity.Barcode{
			ID: b.ID, ProductID: r.ID, Serial: b.Serial, StockInID: b.StockInID, StockOutID: b.StockOutID,
		})
	}
	return it
}

// FromBarcode convierte desde entidad.
func FromBarcode(b entity.Barcode) BarcodeResponse {
	return BarcodeResponse{ID: b.ID, Serial: b.Serial, StockInID: b.StockInID, StockOutID: b.StockOutID}
}

// MovementResponse movimiento con productos resueltos. itemId, quantity y barcodes
// son arreglos paralelos.
type MovementResponse struct {
	ID           string                `json:"_id"`
	Direction    entity.Direction      `json:"direction"`
	Number       string                `json:"number,omitempty"`
	Items        []CatalogItemResponse `json:"itemId"`
	Quantity     []int64               `json:"quantity"`
	Total        decimal.Decimal       `json:"total"`
	Date         time.Time             `json:"date"`
	CategoryID   string                `json:"categoryId"`
	CategoryName string                `json:"categoryName,omitempty"`
	InvoiceNo    string                `json:"invoiceNo"`
	Notes        string                `json:"notes"`
	IsActive     bool                  `json:"isActive"`
	CreatedAt    time.Time             `json:"createdAt"`
	UpdatedAt    time.Time             `json:"updatedAt"`
}

// FromResolvedMovement convierte desde entidad. El stock de cada ítem es el de la línea.
func FromResolvedMovement(m *entity.ResolvedMovement) MovementResponse {
	mv := m.Movement
	r := MovementResponse{
		ID:           mv.ID,
		Direction:    mv.Direction,
		Number:       mv.Number,
		Items:        make([]CatalogItemResponse, 0, len(m.Lines)),
		Quantity:     make([]int64, 0, len(m.Lines)),
		Total:        mv.Total,
		Date:         mv.Date,
		CategoryID:   mv.CategoryID,
		CategoryName: m.CategoryName,
		InvoiceNo:    mv.InvoiceNo,
		Notes:        mv.Notes,
		IsActive:     mv.IsActive,
		CreatedAt:    mv.CreatedAt,
		UpdatedAt:    mv.UpdatedAt,
	}
	for _, l := range m.Lines {
		r.Items = append(r.Items, FromCatalogItem(entity.CatalogItem{
			Product:        l.Product,
			OpeningStock:   l.OpeningStock,
			RemainingStock: l.RemainingStock,
			Barcodes:       l.Barcodes,
		}))
		r.Quantity = append(r.Quantity, l.Quantity)
	}
	return r
}

// ToResolved convierte a entidad. Arreglos desalineados son un error de validación.
func (r MovementResponse) ToResolved() (*entity.ResolvedMovement, error) {
	if len(r.Items) != len(r.Quantity) {
		return nil, domain.NewValidationError("quantity", fmt.Sprintf("%d cantidades para %d productos", len(r.Quantity), len(r.Items)))
	}
	m := &entity.ResolvedMovement{
		Movement: entity.StockMovement{
			ID:         r.ID,
			Direction:  r.Direction,
			Number:     r.Number,
			CategoryID: r.CategoryID,
			Date:       r.Date,
			InvoiceNo:  r.InvoiceNo,
			Notes:      r.Notes,
			IsActive:   r.IsActive,
			Total:      r.Total,
			CreatedAt:  r.CreatedAt,
			UpdatedAt:  r.UpdatedAt,
		},
		CategoryName: r.CategoryName,
	}
	for i, it := range r.Items {
		ci := it.ToCatalogItem()
		m.Movement.Lines = append(m.Movement.Lines, entity.LineItem{ProductID: ci.Product.ID, Quantity: r.Quantity[i]})
		m.Lines = append(m.Lines, entity.ResolvedLine{
			Product:        ci.Product,
			Quantity:       r.Quantity[i],
			OpeningStock:   ci.OpeningStock,
			RemainingStock: ci.RemainingStock,
			Barcodes:       ci.Barcodes,
		})
	}
	return m, nil
}

// MovementListResponse lista paginada de movimientos.
type MovementListResponse struct {
	Items []MovementResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// CatalogResponse catálogo de productos.
type CatalogResponse struct {
	Items []CatalogItemResponse `json:"items"`
}

// SaveBarcodesRequest body de POST /product_barcode/:productId.
type SaveBarcodesRequest struct {
	Serials    []string `json:"barcode_serila" validate:"required,min=1,dive,required"`
	StockInID  string   `json:"stockInId,omitempty"`
	StockOutID string   `json:"stockoutId,omitempty"`
}

// Link devuelve el movimiento al que se ligan los seriales. Debe indicarse exactamente uno.
func (r *SaveBarcodesRequest) Link() (entity.BarcodeLink, error) {
	if err := Validate(r); err != nil {
		return entity.BarcodeLink{}, err
	}
	if (r.StockInID == "") == (r.StockOutID == "") {
		return entity.BarcodeLink{}, domain.NewValidationError("stockInId", "indique stockInId o stockoutId")
	}
	return entity.BarcodeLink{StockInID: r.StockInID, StockOutID: r.StockOutID}, nil
}

// StockEntryResponse asiento de la tarjeta de stock.
type StockEntryResponse struct {
	ID         string    `json:"_id,omitempty"`
	MovementID string    `json:"movementId,omitempty"`
	Type       string    `json:"type"`
	Quantity   int64     `json:"quantity"`
	Reference  string    `json:"reference,omitempty"`
	Date       time.Time `json:"date"`
}

// StockRecordResponse tarjeta de stock de un producto.
type StockRecordResponse struct {
	ProductID      string               `json:"itemId"`
	OpeningStock   int64                `json:"openingStock"`
	RemainingStock int64                `json:"remainingStock"`
	Version        int64                `json:"version"`
	Entries        []StockEntryResponse `json:"entries"`
}

// FromStockRecord convierte desde entidad.
func FromStockRecord(rec entity.StockRecord) StockRecordResponse {
	r := StockRecordResponse{
		ProductID:      rec.ProductID,
		OpeningStock:   rec.OpeningStock,
		RemainingStock: rec.RemainingStock,
		Version:        rec.Version,
		Entries:        make([]StockEntryResponse, 0, len(rec.Entries)),
	}
	for _, e := range rec.Entries {
		r.Entries = append(r.Entries, FromStockEntry(e))
	}
	return r
}

// FromStockEntry convierte desde entidad.
func FromStockEntry(e entity.StockEntry) StockEntryResponse {
	return StockEntryResponse{ID: e.ID, MovementID: e.MovementID, Type: e.Type, Quantity: e.Quantity, Reference: e.Reference, Date: e.Date}
}

// ToStockRecord convierte a entidad.
func (r StockRecordResponse) ToStockRecord() entity.StockRecord {
	rec := entity.StockRecord{
		ProductID:      r.ProductID,
		OpeningStock:   r.OpeningStock,
		RemainingStock: r.RemainingStock,
		Version:        r.Version,
	}
	for _, e := range r.Entries {
		rec.Entries = append(rec.Entries, entity.StockEntry{
			ID: e.ID, ProductID: r.ProductID, MovementID: e.MovementID, Type: e.Type,
			Quantity: e.Quantity, Reference: e.Reference, Date: e.Date,
		})
	}
	return rec
}

// StockRecordListResponse tarjetas de stock.
type StockRecordListResponse struct {
	Items []StockRecordResponse `json:"items"`
}

// PreviewStockInRequest entrada a previsualizar; barcodes agrupa seriales por producto.
type PreviewStockInRequest struct {
	StockInRequest
	Barcodes map[string][]string `json:"barcodes,omitempty"`
}

// PreviewStockOutRequest salida a previsualizar.
type PreviewStockOutRequest struct {
	StockOutRequest
	Barcodes map[string][]string `json:"barcodes,omitempty"`
}

// OpeningStockRequest corrección del stock inicial de un producto.
type OpeningStockRequest struct {
	OpeningStock *int64 `json:"openingStock" validate:"required,min=0"`
}

// CategoryResponse categoría de entradas o salidas.
type CategoryResponse struct {
	ID          string           `json:"_id"`
	Direction   entity.Direction `json:"direction"`
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
}

// CategoryListResponse categorías para selectores.
type CategoryListResponse struct {
	Items []CategoryResponse `json:"items"`
}

// FromCategory convierte desde entidad.
func FromCategory(c entity.Category) CategoryResponse {
	return CategoryResponse{ID: c.ID, Direction: c.Direction, Name: c.Name, Description: c.Description}
}
