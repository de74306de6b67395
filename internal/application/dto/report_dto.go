package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-ledger/internal/application/ledger"
	"github.com/jhoicas/pos-ledger/internal/domain/entity"
)

// MovementListQuery query de los listados y reportes.
type MovementListQuery struct {
	PageRequest
	Direction  string `query:"direction" validate:"omitempty,oneof=in out"`
	CategoryID string `query:"category"`
	From       string `query:"from"`
	To         string `query:"to"`
	Status     string `query:"status" validate:"omitempty,oneof=active inactive"`
	ItemName   string `query:"item"`
	SKU        string `query:"sku"`
	InvoiceNo  string `query:"invoice"`
	Notes      string `query:"notes"`
}

// Filters valida la query y la separa en filtro de listado y filtro de reporte.
// El filtro de listado no pagina: los textos se aplican después y la página se
// recorta sobre el resultado filtrado (ver Paginate).
func (q *MovementListQuery) Filters() (ledger.ListFilter, ledger.ReportFilter, error) {
	q.DefaultPage()
	if err := Validate(q); err != nil {
		return ledger.ListFilter{}, ledger.ReportFilter{}, err
	}
	from, err := parseOptionalDate("from", q.From)
	if err != nil {
		return ledger.ListFilter{}, ledger.ReportFilter{}, err
	}
	to, err := parseOptionalDate("to", q.To)
	if err != nil {
		return ledger.ListFilter{}, ledger.ReportFilter{}, err
	}
	lf := ledger.ListFilter{
		Direction:  entity.Direction(q.Direction),
		CategoryID: q.CategoryID,
		From:       from,
		To:         to,
	}
	if q.Status != "" {
		active := q.Status == ledger.StatusActive
		lf.Active = &active
	}
	rf := ledger.ReportFilter{
		ItemName:   q.ItemName,
		SKU:        q.SKU,
		InvoiceNo:  q.InvoiceNo,
		Notes:      q.Notes,
		Status:     q.Status,
		CategoryID: q.CategoryID,
	}
	return lf, rf, nil
}

// LedgerRowResponse fila de reporte por línea.
type LedgerRowResponse struct {
	MovementID   string           `json:"movementId"`
	Direction    entity.Direction `json:"direction"`
	Number       string           `json:"number,omitempty"`
	ProductID    string           `json:"itemId"`
	ProductName  string           `json:"itemName"`
	SKU          string           `json:"modelNoSKU"`
	Unit         string           `json:"unit"`
	Serialized   bool             `json:"serialNo"`
	Quantity     int64            `json:"quantity"`
	UnitPrice    decimal.Decimal  `json:"unitPrice"`
	Amount       decimal.Decimal  `json:"amount"`
	Date         time.Time        `json:"date"`
	InvoiceNo    string           `json:"invoiceNo"`
	CategoryName string           `json:"categoryName"`
	Notes        string           `json:"notes"`
	IsActive     bool             `json:"isActive"`
	Barcodes     []string         `json:"barcodes,omitempty"`
}

// MovementSummaryResponse fila agrupada por movimiento.
type MovementSummaryResponse struct {
	MovementID    string           `json:"movementId"`
	Direction     entity.Direction `json:"direction"`
	Number        string           `json:"number,omitempty"`
	Label         string           `json:"label"`
	ItemCount     int              `json:"itemCount"`
	TotalQuantity int64            `json:"totalQuantity"`
	TotalAmount   decimal.Decimal  `json:"totalAmount"`
	Date          time.Time        `json:"date"`
	InvoiceNo     string           `json:"invoiceNo"`
	CategoryName  string           `json:"categoryName"`
	Notes         string           `json:"notes"`
	IsActive      bool             `json:"isActive"`
}

// ReportResponse reporte de movimientos.
type ReportResponse struct {
	Rows      []LedgerRowResponse       `json:"rows"`
	Summaries []MovementSummaryResponse `json:"summaries"`
}

// FromReport convierte desde el view-model.
func FromReport(rep *ledger.Report) ReportResponse {
	out := ReportResponse{
		Rows:      make([]LedgerRowResponse, 0, len(rep.Rows)),
		Summaries: make([]MovementSummaryResponse, 0, len(rep.Summaries)),
	}
	for _, r := range rep.Rows {
		out.Rows = append(out.Rows, LedgerRowResponse{
			MovementID:   r.MovementID,
			Direction:    r.Direction,
			Number:       r.Number,
			ProductID:    r.ProductID,
			ProductName:  r.ProductName,
			SKU:          r.SKU,
			Unit:         r.Unit,
			Serialized:   r.Serialized,
			Quantity:     r.Quantity,
			UnitPrice:    r.UnitPrice,
			Amount:       r.Amount,
			Date:         r.Date,
			InvoiceNo:    r.InvoiceNo,
			CategoryName: r.CategoryName,
			Notes:        r.Notes,
			IsActive:     r.IsActive,
			Barcodes:     r.Barcodes,
		})
	}
	for _, s := range rep.Summaries {
		out.Summaries = append(out.Summaries, MovementSummaryResponse{
			MovementID:    s.MovementID,
			Direction:     s.Direction,
			Number:        s.Number,
			Label:         s.Label,
			ItemCount:     s.ItemCount,
			TotalQuantity: s.TotalQuantity,
			TotalAmount:   s.TotalAmount,
			Date:          s.Date,
			InvoiceNo:     s.InvoiceNo,
			CategoryName:  s.CategoryName,
			Notes:         s.Notes,
			IsActive:      s.IsActive,
		})
	}
	return out
}

// StatementQuery query de la tarjeta de stock.
type StatementQuery struct {
	From string `query:"from"`
	To   string `query:"to"`
}

// Range devuelve el rango de fechas; vacío significa sin límite.
func (q StatementQuery) Range() (*time.Time, *time.Time, error) {
	from, err := parseOptionalDate("from", q.From)
	if err != nil {
		return nil, nil, err
	}
	to, err := parseOptionalDate("to", q.To)
	if err != nil {
		return nil, nil, err
	}
	return from, to, nil
}

// StatementResponse tarjeta de stock de un producto en un rango.
type StatementResponse struct {
	ProductID      string               `json:"itemId"`
	OpeningBalance int64                `json:"openingBalance"`
	RemainingStock int64                `json:"remainingStock"`
	TotalIn        int64                `json:"totalIn"`
	TotalOut       int64                `json:"totalOut"`
	ReceivedToDate int64                `json:"receivedToDate"`
	Entries        []StockEntryResponse `json:"entries"`
}

// FromStatement convierte desde el view-model.
func FromStatement(st *ledger.Statement) StatementResponse {
	out := StatementResponse{
		ProductID:      st.ProductID,
		OpeningBalance: st.OpeningBalance,
		RemainingStock: st.RemainingStock,
		TotalIn:        st.TotalIn,
		TotalOut:       st.TotalOut,
		ReceivedToDate: st.ReceivedToDate,
		Entries:        make([]StockEntryResponse, 0, len(st.Entries)),
	}
	for _, e := range st.Entries {
		out.Entries = append(out.Entries, FromStockEntry(e))
	}
	return out
}

// AllocationResponse monto asignado a una línea.
type AllocationResponse struct {
	ProductID string          `json:"itemId"`
	Quantity  int64           `json:"quantity"`
	Amount    decimal.Decimal `json:"amount"`
}

// ProjectionResponse stock proyectado de un producto.
type ProjectionResponse struct {
	ProductID       string `json:"itemId"`
	Delta           int64  `json:"delta"`
	OpeningBefore   int64  `json:"openingBefore"`
	OpeningAfter    int64  `json:"openingAfter"`
	RemainingBefore int64  `json:"remainingBefore"`
	RemainingAfter  int64  `json:"remainingAfter"`
}

// PreviewResponse vista previa de un movimiento sin persistir.
type PreviewResponse struct {
	Total       decimal.Decimal      `json:"total"`
	Allocations []AllocationResponse `json:"allocations"`
	Projections []ProjectionResponse `json:"projections"`
	Warnings    []string             `json:"warnings,omitempty"`
}

// FromPlan convierte desde el plan del reconciliador.
func FromPlan(p *ledger.Plan, warnings []string) PreviewResponse {
	out := PreviewResponse{
		Total:       p.Movement.Total,
		Allocations: make([]AllocationResponse, 0, len(p.Allocations)),
		Projections: make([]ProjectionResponse, 0, len(p.Projections)),
		Warnings:    warnings,
	}
	for _, a := range p.Allocations {
		out.Allocations = append(out.Allocations, AllocationResponse{ProductID: a.ProductID, Quantity: a.Quantity, Amount: a.Amount})
	}
	for _, pr := range p.Projections {
		out.Projections = append(out.Projections, ProjectionResponse{
			ProductID:       pr.ProductID,
			Delta:           pr.Delta,
			OpeningBefore:   pr.OpeningBefore,
			OpeningAfter:    pr.OpeningAfter,
			RemainingBefore: pr.RemainingBefore,
			RemainingAfter:  pr.RemainingAfter,
		})
	}
	return out
}
