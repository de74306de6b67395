package pdf

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-ledger/internal/application/ledger"
	"github.com/jhoicas/pos-ledger/internal/domain/entity"
)

func TestFormatAmount(t *testing.T) {
	tests := map[string]string{
		"0":         "0,00",
		"999.5":     "999,50",
		"1000":      "1.000,00",
		"1234567.5": "1.234.567,50",
		"-2500.25":  "-2.500,25",
	}
	for in, want := range tests {
		assert.Equal(t, want, formatAmount(decimal.RequireFromString(in)), in)
	}
}

func TestGenerateReport(t *testing.T) {
	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	rep := &ledger.Report{Summaries: []ledger.MovementSummary{
		{MovementID: "m1", Direction: entity.DirectionIn, Number: "STOCKIN-000001", Label: "2 item(s)",
			TotalQuantity: 5, TotalAmount: decimal.RequireFromString("120.50"), Date: from, IsActive: true},
		{MovementID: "m2", Direction: entity.DirectionOut, Number: "STOCKOUT-000001", Label: "Tornillo",
			TotalQuantity: 2, TotalAmount: decimal.NewFromInt(4), Date: from},
	}}

	doc, err := NewGenerator().GenerateReport(ReportMeta{Title: "Movimientos de stock", From: &from, GeneratedAt: from}, rep)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(doc, []byte("%PDF")))
}

func TestGenerateReport_Vacio(t *testing.T) {
	doc, err := NewGenerator().GenerateReport(ReportMeta{Title: "Movimientos", GeneratedAt: time.Now()}, &ledger.Report{})
	require.NoError(t, err)
	assert.NotEmpty(t, doc)
}

func TestGenerateStatement(t *testing.T) {
	st := &ledger.Statement{
		ProductID: "p1", OpeningBalance: 3, TotalIn: 5, TotalOut: 2, RemainingStock: 6,
		Entries: []entity.StockEntry{
			{Type: entity.EntryTypeStockIn, Quantity: 5, Reference: "STOCKIN-000001", Date: time.Now()},
			{Type: entity.EntryTypeStockOut, Quantity: 2, Reference: "STOCKOUT-000001", Date: time.Now()},
		},
	}
	doc, err := NewGenerator().GenerateStatement(ReportMeta{Title: "Tarjeta de stock", GeneratedAt: time.Now()}, "Tornillo", st)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(doc, []byte("%PDF")))
}
