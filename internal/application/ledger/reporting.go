package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/cases"

	"github.com/jhoicas/pos-ledger/internal/domain"
	"github.com/jhoicas/pos-ledger/internal/domain/entity"
	"github.com/jhoicas/pos-ledger/internal/domain/ledger"
)

// LedgerRow es una fila de reporte por (movimiento, línea).
type LedgerRow struct {
	MovementID   string // clave de agrupación
	Direction    entity.Direction
	Number       string
	Line         int
	ProductID    string
	ProductName  string
	SKU          string
	Unit         string
	Serialized   bool
	Quantity     int64
	UnitPrice    decimal.Decimal
	Amount       decimal.Decimal // monto asignado
	Date         time.Time
	InvoiceNo    string
	CategoryID   string
	CategoryName string
	Notes        string
	IsActive     bool
	Barcodes     []string
}

// MovementSummary es una fila por movimiento (vista agrupada).
type MovementSummary struct {
	MovementID    string
	Direction     entity.Direction
	Number        string
	Label         string // nombre del producto o "N item(s)"
	ItemCount     int
	TotalQuantity int64
	TotalAmount   decimal.Decimal
	Date          time.Time
	InvoiceNo     string
	CategoryID    string
	CategoryName  string
	Notes         string
	IsActive      bool
}

// FlattenForDisplay aplana movimientos resueltos en filas por línea. El monto de cada
// fila sale del asignador sobre el total del movimiento.
func FlattenForDisplay(movements []*entity.ResolvedMovement) []LedgerRow {
	rows := make([]LedgerRow, 0, len(movements))
	for _, m := range movements {
		if m == nil {
			continue
		}
		mv := m.Movement
		amounts := ledger.Allocate(mv.Total, ledger.AllocationItemsFor(mv.Direction, m.Lines))
		for i, l := range m.Lines {
			rows = append(rows, LedgerRow{
				MovementID:   mv.ID,
				Direction:    mv.Direction,
				Number:       mv.Number,
				Line:         i,
				ProductID:    l.Product.ID,
				ProductName:  l.Product.Name,
				SKU:          l.Product.SKU,
				Unit:         l.Product.Unit,
				Serialized:   l.Product.IsSerialized,
				Quantity:     l.Quantity,
				UnitPrice:    l.Product.BasePrice(mv.Direction),
				Amount:       amounts[i],
				Date:         mv.Date,
				InvoiceNo:    mv.InvoiceNo,
				CategoryID:   mv.CategoryID,
				CategoryName: m.CategoryName,
				Notes:        mv.Notes,
				IsActive:     mv.IsActive,
				Barcodes:     linkedSerials(l.Barcodes, mv.Direction, mv.ID),
			})
		}
	}
	return rows
}

// SummarizeByTransaction agrupa por movimiento en orden de primera aparición.
func SummarizeByTransaction(movements []*entity.ResolvedMovement) []MovementSummary {
	return GroupRows(FlattenForDisplay(movements))
}

// GroupRows agrupa filas por MovementID. Cantidad y monto son sumas directas de las filas.
func GroupRows(rows []LedgerRow) []MovementSummary {
	index := make(map[string]int)
	out := make([]MovementSummary, 0)
	var firstName []string
	for _, r := range rows {
		i, ok := index[r.MovementID]
		if !ok {
			i = len(out)
			index[r.MovementID] = i
			out = append(out, MovementSummary{
				MovementID:   r.MovementID,
				Direction:    r.Direction,
				Number:       r.Number,
				TotalAmount:  decimal.Zero,
				Date:         r.Date,
				InvoiceNo:    r.InvoiceNo,
				CategoryID:   r.CategoryID,
				CategoryName: r.CategoryName,
				Notes:        r.Notes,
				IsActive:     r.IsActive,
			})
			firstName = append(firstName, r.ProductName)
		}
		s := &out[i]
		s.ItemCount++
		s.TotalQuantity += r.Quantity
		s.TotalAmount = s.TotalAmount.Add(r.Amount)
	}
	for i := range out {
		out[i].Label = summaryLabel(firstName[i], out[i].ItemCount)
	}
	return out
}

func summaryLabel(name string, count int) string {
	if count == 1 {
		return name
	}
	return fmt.Sprintf("%d item(s)", count)
}

// Valores de ReportFilter.Status.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// ReportFilter filtros de las pantallas de listado. Los textos comparan por
// inclusión sin distinguir mayúsculas; campos vacíos no filtran.
type ReportFilter struct {
	ItemName   string
	SKU        string
	InvoiceNo  string
	Notes      string
	Status     string
	CategoryID string
}

// FilterMovements devuelve los movimientos que cumplen el filtro. Nombre y SKU se
// cumplen si alguna línea coincide.
func FilterMovements(movements []*entity.ResolvedMovement, f ReportFilter) []*entity.ResolvedMovement {
	fold := cases.Fold()
	match := func(value, term string) bool {
		if term == "" {
			return true
		}
		return strings.Contains(fold.String(value), fold.String(strings.TrimSpace(term)))
	}
	out := make([]*entity.ResolvedMovement, 0, len(movements))
	for _, m := range movements {
		if m == nil {
			continue
		}
		mv := m.Movement
		switch f.Status {
		case StatusActive:
			if !mv.IsActive {
				continue
			}
		case StatusInactive:
			if mv.IsActive {
				continue
			}
		}
		if f.CategoryID != "" && mv.CategoryID != f.CategoryID {
			continue
		}
		if !match(mv.InvoiceNo, f.InvoiceNo) || !match(mv.Notes, f.Notes) {
			continue
		}
		if f.ItemName != "" || f.SKU != "" {
			found := false
			for _, l := range m.Lines {
				if match(l.Product.Name, f.ItemName) && match(l.Product.SKU, f.SKU) {
					found = true
					break
				}
			}
			if !found {
				continue
			}
		}
		out = append(out, m)
	}
	return out
}

// FilterSummaries filtra y agrupa en un paso.
func FilterSummaries(movements []*entity.ResolvedMovement, f ReportFilter) []MovementSummary {
	return SummarizeByTransaction(FilterMovements(movements, f))
}

// Report es la vista de un listado: filas planas y resumen por movimiento.
type Report struct {
	Rows      []LedgerRow
	Summaries []MovementSummary
}

// Reporter arma reportes leyendo del gateway.
type Reporter struct {
	gw      StockMovementGateway
	timeout time.Duration
}

// NewReporter crea el servicio de reportes.
func NewReporter(gw StockMovementGateway, timeout time.Duration) *Reporter {
	if timeout <= 0 {
		timeout = DefaultConfig().GatewayTimeout
	}
	return &Reporter{gw: gw, timeout: timeout}
}

// Build lista movimientos y arma el reporte. Sin dirección en el filtro consulta
// entradas y salidas en paralelo (entradas primero).
func (r *Reporter) Build(ctx context.Context, lf ListFilter, rf ReportFilter) (*Report, error) {
	cctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	dirs := []entity.Direction{lf.Direction}
	if lf.Direction == "" {
		dirs = []entity.Direction{entity.DirectionIn, entity.DirectionOut}
	}
	results := make([][]*entity.ResolvedMovement, len(dirs))
	g, gctx := errgroup.WithContext(cctx)
	for i, dir := range dirs {
		i, dir := i, dir
		f := lf
		f.Direction = dir
		g.Go(func() error {
			ms, err := r.gw.ListStockMovements(gctx, f)
			if err != nil {
				return fmt.Errorf("listar movimientos %s: %w", dir, err)
			}
			results[i] = ms
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, classify(cctx, err)
	}
	var all []*entity.ResolvedMovement
	for _, ms := range results {
		all = append(all, ms...)
	}
	filtered := FilterMovements(all, rf)
	rows := FlattenForDisplay(filtered)
	return &Report{Rows: rows, Summaries: GroupRows(rows)}, nil
}

// Statement arma la tarjeta de stock de un producto.
func (r *Reporter) Statement(ctx context.Context, productID string, from, to *time.Time) (*Statement, error) {
	cctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	records, err := r.gw.ListStockRecords(cctx)
	if err != nil {
		return nil, classify(cctx, err)
	}
	for _, rec := range records {
		if rec.ProductID == productID {
			st := BuildStatement(rec, from, to)
			return &st, nil
		}
	}
	return nil, fmt.Errorf("tarjeta de stock del producto %s: %w", productID, domain.ErrNotFound)
}

func linkedSerials(barcodes []entity.Barcode, dir entity.Direction, movementID string) []string {
	var out []string
	for _, b := range barcodes {
		if linkedTo(b, dir, movementID) {
			out = append(out, b.Serial)
		}
	}
	return out
}
