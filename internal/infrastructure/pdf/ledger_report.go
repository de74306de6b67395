// Package pdf exporta reportes del ledger de stock en PDF.
//
// Layout de la página A4 (horizontal):
//
//	┌──────────────────────────────────────────────────────────────┐
//	│  HEADER: Título + rango de fechas │ Fecha de generación       │
//	│  ──────────────────────────────────────────────────────────  │
//	│  TABLA: N° | Fecha | Categoría | Factura | Productos | Cant | $ │
//	│  ──────────────────────────────────────────────────────────  │
//	│  TOTALES: entradas / salidas                                   │
//	└──────────────────────────────────────────────────────────────┘
package pdf

import (
	"fmt"
	"strings"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-ledger/internal/application/ledger"
	"github.com/jhoicas/pos-ledger/internal/domain/entity"
)

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// ReportMeta datos de cabecera del reporte.
type ReportMeta struct {
	Title       string
	StoreName   string
	From, To    *time.Time
	GeneratedAt time.Time
}

// Generator arma los PDF con Maroto v2.
type Generator struct{}

// NewGenerator construye el generador.
func NewGenerator() *Generator { return &Generator{} }

func newDocument(title, author string) core.Maroto {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithOrientation(orientation.Horizontal).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 8}).
		WithTitle(title, true).
		WithAuthor(author, true).
		Build()
	return maroto.New(cfg)
}

// GenerateReport genera el reporte de movimientos agrupado por transacción.
func (g *Generator) GenerateReport(meta ReportMeta, rep *ledger.Report) ([]byte, error) {
	m := newDocument(meta.Title, nonEmpty(meta.StoreName, "POS"))

	m.AddRows(headerRow(meta))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(summaryHeaderRow())

	var totalIn, totalOut decimal.Decimal
	var qtyIn, qtyOut int64
	for _, s := range rep.Summaries {
		m.AddRows(summaryRow(s))
		if s.Direction == entity.DirectionIn {
			totalIn = totalIn.Add(s.TotalAmount)
			qtyIn += s.TotalQuantity
		} else {
			totalOut = totalOut.Add(s.TotalAmount)
			qtyOut += s.TotalQuantity
		}
	}
	if len(rep.Summaries) == 0 {
		m.AddRows(row.New(8).Add(col.New(12).Add(
			text.New("Sin movimientos para los filtros seleccionados.", props.Text{Align: align.Center, Top: 2, Color: colorGray}),
		)))
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow("Entradas", qtyIn, totalIn))
	m.AddRows(totalsRow("Salidas", qtyOut, totalOut))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar reporte: %w", err)
	}
	return doc.GetBytes(), nil
}

// GenerateStatement genera la tarjeta de stock de un producto.
func (g *Generator) GenerateStatement(meta ReportMeta, productName string, st *ledger.Statement) ([]byte, error) {
	m := newDocument(meta.Title, nonEmpty(meta.StoreName, "POS"))

	m.AddRows(headerRow(meta))
	m.AddRows(row.New(8).Add(col.New(12).Add(
		text.New(productName, props.Text{Style: fontstyle.Bold, Size: 11, Top: 1}),
	)))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(row.New(7).Add(
		headerCol("Fecha", 3, align.Left),
		headerCol("Tipo", 3, align.Left),
		headerCol("Referencia", 4, align.Left),
		headerCol("Cantidad", 2, align.Right),
	))
	for _, e := range st.Entries {
		qty := fmt.Sprintf("%d", e.Quantity)
		if e.Type == entity.EntryTypeStockOut {
			qty = "-" + qty
		}
		m.AddRows(row.New(6).Add(
			cell(e.Date.Format("02/01/2006"), 3, align.Left),
			cell(e.Type, 3, align.Left),
			cell(e.Reference, 4, align.Left),
			cell(qty, 2, align.Right),
		))
	}
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(row.New(20).Add(
		col.New(8),
		col.New(2).Add(
			label("Saldo inicial:", 0),
			label("Entradas:", 4),
			label("Salidas:", 8),
			label("Disponible:", 12),
		),
		col.New(2).Add(
			value(fmt.Sprintf("%d", st.OpeningBalance), 0),
			value(fmt.Sprintf("%d", st.TotalIn), 4),
			value(fmt.Sprintf("%d", st.TotalOut), 8),
			value(fmt.Sprintf("%d", st.RemainingStock), 12),
		),
	))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar tarjeta: %w", err)
	}
	return doc.GetBytes(), nil
}

// headerRow: título y rango (izq), fecha de generación (der).
func headerRow(meta ReportMeta) core.Row {
	rango := "Todas las fechas"
	switch {
	case meta.From != nil && meta.To != nil:
		rango = fmt.Sprintf("Del %s al %s", meta.From.Format("02/01/2006"), meta.To.Format("02/01/2006"))
	case meta.From != nil:
		rango = "Desde " + meta.From.Format("02/01/2006")
	case meta.To != nil:
		rango = "Hasta " + meta.To.Format("02/01/2006")
	}
	return row.New(16).Add(
		col.New(8).Add(
			text.New(meta.Title, props.Text{Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1}),
			text.New(rango, props.Text{Size: 9, Top: 9, Color: colorGray}),
		),
		col.New(4).Add(
			text.New(nonEmpty(meta.StoreName, ""), props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Top: 1}),
			text.New("Generado: "+meta.GeneratedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 9, Color: colorGray,
			}),
		),
	)
}

func headerCol(s string, size int, a align.Type) core.Col {
	return col.New(size).Add(text.New(s, props.Text{
		Style: fontstyle.Bold, Size: 8, Align: a, Color: colorPrimary, Top: 2, Left: 1, Right: 1,
	}))
}

func cell(s string, size int, a align.Type) core.Col {
	return col.New(size).Add(text.New(s, props.Text{Size: 8, Align: a, Top: 1, Left: 1, Right: 1}))
}

func summaryHeaderRow() core.Row {
	return row.New(8).Add(
		headerCol("N°", 2, align.Left),
		headerCol("Fecha", 1, align.Left),
		headerCol("Categoría", 2, align.Left),
		headerCol("Factura", 1, align.Left),
		headerCol("Productos", 3, align.Left),
		headerCol("Cant.", 1, align.Right),
		headerCol("Monto", 2, align.Right),
	)
}

func summaryRow(s ledger.MovementSummary) core.Row {
	number := s.Number
	if !s.IsActive {
		number += " (inactivo)"
	}
	return row.New(7).Add(
		cell(number, 2, align.Left),
		cell(s.Date.Format("02/01/2006"), 1, align.Left),
		cell(s.CategoryName, 2, align.Left),
		cell(s.InvoiceNo, 1, align.Left),
		cell(s.Label, 3, align.Left),
		cell(fmt.Sprintf("%d", s.TotalQuantity), 1, align.Right),
		cell("$"+formatAmount(s.TotalAmount), 2, align.Right),
	)
}

func label(s string, top float64) core.Component {
	return text.New(s, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2, Top: top})
}

func value(s string, top float64) core.Component {
	return text.New(s, props.Text{Size: 9, Align: align.Right, Right: 1, Top: top})
}

func totalsRow(title string, qty int64, amount decimal.Decimal) core.Row {
	return row.New(6).Add(
		col.New(6),
		col.New(3).Add(label(title+":", 1)),
		col.New(1).Add(value(fmt.Sprintf("%d", qty), 1)),
		col.New(2).Add(text.New("$"+formatAmount(amount), props.Text{
			Style: fontstyle.Bold, Size: 9, Align: align.Right, Color: colorPrimary, Right: 1, Top: 1,
		})),
	)
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// formatAmount formatea con puntos de miles y coma decimal.
// Ej: 1234567.5 → "1.234.567,50"
func formatAmount(d decimal.Decimal) string {
	s := d.StringFixed(2)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac, _ := strings.Cut(s, ".")
	n := len(intPart)
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(intPart) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	return sign + string(buf) + "," + frac
}
