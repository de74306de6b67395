package ledger_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-ledger/internal/domain/entity"
	"github.com/jhoicas/pos-ledger/internal/domain/ledger"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func assertDecimals(t *testing.T, want []string, got []decimal.Decimal) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		assert.True(t, dec(want[i]).Equal(got[i]), "posición %d: esperado %s, obtenido %s", i, want[i], got[i])
	}
}

func TestAllocate_UnSoloItemRecibeElTotal(t *testing.T) {
	for _, total := range []string{"0", "0.01", "100", "1234.567"} {
		got := ledger.Allocate(dec(total), []ledger.AllocationItem{{ProductID: "p", Price: dec("7"), Quantity: 3}})
		assertDecimals(t, []string{total}, got)
	}
}

func TestAllocate_ProporcionalAlPrecioNoALaCantidad(t *testing.T) {
	cases := []struct {
		name string
		qty  [2]int64
	}{
		{"cantidades iguales", [2]int64{1, 1}},
		{"cantidades distintas", [2]int64{9, 1}},
		{"cantidades invertidas", [2]int64{1, 50}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ledger.Allocate(dec("100"), []ledger.AllocationItem{
				{ProductID: "a", Price: dec("10"), Quantity: tc.qty[0]},
				{ProductID: "b", Price: dec("30"), Quantity: tc.qty[1]},
			})
			assertDecimals(t, []string{"25", "75"}, got)
		})
	}
}

func TestAllocate_PreciosEnCeroRepartePorIgual(t *testing.T) {
	got := ledger.Allocate(dec("100"), []ledger.AllocationItem{
		{ProductID: "a"}, {ProductID: "b"}, {ProductID: "c"},
	})
	assertDecimals(t, []string{"33.33", "33.33", "33.33"}, got)

	sum := got[0].Add(got[1]).Add(got[2])
	assert.True(t, dec("100").Sub(sum).Abs().LessThanOrEqual(dec("0.03")),
		"el residuo del redondeo debe ser de pocos centavos")
}

func TestAllocate_ResiduoDeRedondeoNoSeRedistribuye(t *testing.T) {
	got := ledger.Allocate(dec("10"), []ledger.AllocationItem{
		{ProductID: "a", Price: dec("1")},
		{ProductID: "b", Price: dec("1")},
		{ProductID: "c", Price: dec("1")},
	})
	assertDecimals(t, []string{"3.33", "3.33", "3.33"}, got)
}

func TestAllocate_ValoresNoNegativos(t *testing.T) {
	got := ledger.Allocate(dec("50"), []ledger.AllocationItem{
		{ProductID: "a", Price: dec("-5")},
		{ProductID: "b", Price: dec("5")},
	})
	assertDecimals(t, []string{"0", "50"}, got)

	got = ledger.Allocate(dec("-1"), []ledger.AllocationItem{{ProductID: "a", Price: dec("1")}})
	assertDecimals(t, []string{"0"}, got)
}

func TestAllocate_SinItems(t *testing.T) {
	assert.Empty(t, ledger.Allocate(dec("10"), nil))
}

func TestExtendedTotal_SumaPrecioPorCantidad(t *testing.T) {
	total := ledger.ExtendedTotal([]ledger.AllocationItem{
		{ProductID: "a", Price: dec("40"), Quantity: 2},
		{ProductID: "b", Price: dec("60"), Quantity: 3},
		{ProductID: "c", Price: dec("99"), Quantity: 0},
	})
	assert.True(t, dec("260").Equal(total), "obtenido %s", total)
}

func TestAllocationItemsFor_UsaCostoEnEntradasYVentaEnSalidas(t *testing.T) {
	lines := []entity.ResolvedLine{{
		Product:  entity.Product{ID: "a", CostPrice: dec("20"), SalePrice: dec("35")},
		Quantity: 2,
	}}
	in := ledger.AllocationItemsFor(entity.DirectionIn, lines)
	out := ledger.AllocationItemsFor(entity.DirectionOut, lines)
	assert.True(t, dec("20").Equal(in[0].Price))
	assert.True(t, dec("35").Equal(out[0].Price))
	assert.Equal(t, int64(2), in[0].Quantity)
}
