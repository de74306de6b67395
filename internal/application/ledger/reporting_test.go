package ledger_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-ledger/internal/application/dto"
	"github.com/jhoicas/pos-ledger/internal/application/ledger"
	"github.com/jhoicas/pos-ledger/internal/domain"
	"github.com/jhoicas/pos-ledger/internal/domain/entity"
)

func entradaResuelta() *entity.ResolvedMovement {
	tornillo := catalogItem("p1", "Tornillo", "10", "15", 0, false).Product
	cable := catalogItem("p5", "Cable HDMI", "30", "40", 0, true).Product
	return &entity.ResolvedMovement{
		Movement: entity.StockMovement{
			ID:         "in-1",
			Direction:  entity.DirectionIn,
			CategoryID: "cat-compras",
			Date:       hoy,
			InvoiceNo:  "FAC-77",
			Notes:      "Pedido mensual",
			IsActive:   true,
			Lines:      []entity.LineItem{{ProductID: "p1", Quantity: 4}, {ProductID: "p5", Quantity: 2}},
			Total:      decimal.NewFromInt(100),
		},
		CategoryName: "Compras",
		Lines: []entity.ResolvedLine{
			{Product: tornillo, Quantity: 4},
			{Product: cable, Quantity: 2, Barcodes: []entity.Barcode{
				{Serial: "C-1", StockInID: "in-1"},
				{Serial: "C-2", StockInID: "in-1"},
				{Serial: "C-9", StockInID: "in-0"},
			}},
		},
	}
}

func TestFlattenForDisplay_UnaFilaPorLinea(t *testing.T) {
	rows := ledger.FlattenForDisplay([]*entity.ResolvedMovement{entradaResuelta()})
	require.Len(t, rows, 2)

	assert.Equal(t, "in-1", rows[0].MovementID)
	assert.Equal(t, "Tornillo", rows[0].ProductName)
	assert.Equal(t, "SKU-p1", rows[0].SKU)
	assert.Equal(t, "FAC-77", rows[0].InvoiceNo)
	assert.Equal(t, "Compras", rows[0].CategoryName)
	assert.Equal(t, "25", rows[0].Amount.String())
	assert.Equal(t, "75", rows[1].Amount.String())
	assert.True(t, rows[1].Serialized)
	assert.Equal(t, []string{"C-1", "C-2"}, rows[1].Barcodes)
	assert.Equal(t, rows[0].Date, rows[1].Date)
}

func TestFlattenForDisplay_UnaLineaRecibeElTotal(t *testing.T) {
	m := entradaResuelta()
	m.Lines = m.Lines[:1]
	m.Movement.Total = decimal.RequireFromString("33.337")
	rows := ledger.FlattenForDisplay([]*entity.ResolvedMovement{m})
	require.Len(t, rows, 1)
	assert.Equal(t, "33.337", rows[0].Amount.String())
}

func TestSummarizeByTransaction(t *testing.T) {
	in := entradaResuelta()
	out := salidaResuelta()
	out.Lines = out.Lines[:1]
	out.Movement.Total = decimal.NewFromInt(45)

	sums := ledger.SummarizeByTransaction([]*entity.ResolvedMovement{in, out})
	require.Len(t, sums, 2)

	assert.Equal(t, "in-1", sums[0].MovementID)
	assert.Equal(t, "2 item(s)", sums[0].Label)
	assert.Equal(t, 2, sums[0].ItemCount)
	assert.Equal(t, int64(6), sums[0].TotalQuantity)
	assert.True(t, decimal.NewFromInt(100).Equal(sums[0].TotalAmount))

	assert.Equal(t, "out-1", sums[1].MovementID)
	assert.Equal(t, "Tornillo", sums[1].Label)
	assert.Equal(t, int64(3), sums[1].TotalQuantity)
	assert.True(t, decimal.NewFromInt(45).Equal(sums[1].TotalAmount))
}

func TestSummarizeByTransaction_MontoEsSumaDeFilas(t *testing.T) {
	m := entradaResuelta()
	m.Lines[1].Product.CostPrice = decimal.NewFromInt(10)
	m.Lines = append(m.Lines, entity.ResolvedLine{Product: entity.Product{ID: "p3", Name: "Clavo", CostPrice: decimal.NewFromInt(10)}, Quantity: 1})

	sums := ledger.SummarizeByTransaction([]*entity.ResolvedMovement{m})
	require.Len(t, sums, 1)
	// 33.33 * 3: el residuo del redondeo no se redistribuye
	assert.Equal(t, "99.99", sums[0].TotalAmount.String())
}

func TestFilterMovements(t *testing.T) {
	in := entradaResuelta()
	out := salidaResuelta()
	out.Movement.IsActive = false
	all := []*entity.ResolvedMovement{in, out}

	tests := []struct {
		name   string
		filter ledger.ReportFilter
		want   []string
	}{
		{"sin filtro", ledger.ReportFilter{}, []string{"in-1", "out-1"}},
		{"nombre sin mayúsculas", ledger.ReportFilter{ItemName: "hdmi"}, []string{"in-1"}},
		{"nombre en ambos", ledger.ReportFilter{ItemName: "TORN"}, []string{"in-1", "out-1"}},
		{"sku", ledger.ReportFilter{SKU: "sku-p5"}, []string{"in-1"}},
		{"factura", ledger.ReportFilter{InvoiceNo: "v-1"}, []string{"out-1"}},
		{"notas", ledger.ReportFilter{Notes: "mensual"}, []string{"in-1"}},
		{"activos", ledger.ReportFilter{Status: ledger.StatusActive}, []string{"in-1"}},
		{"inactivos", ledger.ReportFilter{Status: ledger.StatusInactive}, []string{"out-1"}},
		{"categoría", ledger.ReportFilter{CategoryID: "cat-1"}, []string{"out-1"}},
		{"sin coincidencias", ledger.ReportFilter{ItemName: "martillo"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ledger.FilterMovements(all, tt.filter)
			ids := make([]string, 0, len(got))
			for _, m := range got {
				ids = append(ids, m.Movement.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestReporter_BuildConsultaAmbasDirecciones(t *testing.T) {
	gw := newFakeGateway()
	gw.addMovement(salidaResuelta())
	gw.addMovement(entradaResuelta())
	rep := ledger.NewReporter(gw, time.Second)

	report, err := rep.Build(context.Background(), ledger.ListFilter{}, ledger.ReportFilter{})
	require.NoError(t, err)
	require.Len(t, report.Summaries, 2)
	assert.Equal(t, "in-1", report.Summaries[0].MovementID)
	assert.Equal(t, "out-1", report.Summaries[1].MovementID)
	assert.Len(t, report.Rows, 4)

	report, err = rep.Build(context.Background(), ledger.ListFilter{Direction: entity.DirectionOut}, ledger.ReportFilter{})
	require.NoError(t, err)
	require.Len(t, report.Summaries, 1)
	assert.Equal(t, entity.DirectionOut, report.Summaries[0].Direction)
}

func TestReporter_BuildSinLimiteIncluyeTodosLosMovimientos(t *testing.T) {
	gw := newFakeGateway()
	tornillo := catalogItem("p1", "Tornillo", "10", "15", 0, false).Product
	martillo := catalogItem("p7", "Martillo", "20", "30", 0, false).Product
	for i := 0; i < 25; i++ {
		p := tornillo
		if i == 24 {
			p = martillo
		}
		gw.addMovement(&entity.ResolvedMovement{
			Movement: entity.StockMovement{
				ID:        fmt.Sprintf("in-%02d", i),
				Direction: entity.DirectionIn,
				Date:      hoy.AddDate(0, 0, -i),
				IsActive:  true,
				Lines:     []entity.LineItem{{ProductID: p.ID, Quantity: 1}},
				Total:     decimal.NewFromInt(10),
			},
			Lines: []entity.ResolvedLine{{Product: p, Quantity: 1}},
		})
	}
	rep := ledger.NewReporter(gw, time.Second)

	q := dto.MovementListQuery{Direction: "in"}
	lf, rf, err := q.Filters()
	require.NoError(t, err)
	report, err := rep.Build(context.Background(), lf, rf)
	require.NoError(t, err)
	assert.Len(t, report.Summaries, 25)

	q = dto.MovementListQuery{Direction: "in", ItemName: "martillo"}
	lf, rf, err = q.Filters()
	require.NoError(t, err)
	report, err = rep.Build(context.Background(), lf, rf)
	require.NoError(t, err)
	require.Len(t, report.Summaries, 1)
	assert.Equal(t, "in-24", report.Summaries[0].MovementID)
}

func TestReporter_StatementProductoInexistente(t *testing.T) {
	gw := newFakeGateway()
	gw.records = []entity.StockRecord{{ProductID: "p1", OpeningStock: 3, RemainingStock: 3}}
	rep := ledger.NewReporter(gw, time.Second)

	st, err := rep.Statement(context.Background(), "p1", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(3), st.OpeningBalance)

	_, err = rep.Statement(context.Background(), "p9", nil, nil)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
