package ledger_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-ledger/internal/application/ledger"
	"github.com/jhoicas/pos-ledger/internal/domain"
	"github.com/jhoicas/pos-ledger/internal/domain/entity"
)

var hoy = time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

func nuevoBorrador(t *testing.T, dir entity.Direction, items ...entity.CatalogItem) *ledger.Draft {
	t.Helper()
	d := ledger.NewDraft(dir, hoy)
	require.NoError(t, d.SetCategory("cat-1"))
	for _, it := range items {
		i, err := d.AddRow()
		require.NoError(t, err)
		require.NoError(t, d.SelectProduct(i, it))
	}
	return d
}

func TestNewDraft_FechaDeHoySinHora(t *testing.T) {
	d := ledger.NewDraft(entity.DirectionIn, hoy)
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), d.Date)
	assert.Equal(t, ledger.StateDraft, d.State())
	assert.True(t, d.IsActive)
}

func TestDraft_EstadosDeFila(t *testing.T) {
	d := ledger.NewDraft(entity.DirectionIn, hoy)
	i, err := d.AddRow()
	require.NoError(t, err)
	assert.Equal(t, ledger.RowEmpty, d.Rows[i].State())

	require.NoError(t, d.SelectProduct(i, catalogItem("p1", "Tornillo", "10", "15", 4, false)))
	assert.Equal(t, ledger.RowProductSelected, d.Rows[i].State())

	_, err = d.SetQuantity(i, 2)
	require.NoError(t, err)
	assert.Equal(t, ledger.RowQuantitySet, d.Rows[i].State())

	require.NoError(t, d.ClearRow(i))
	assert.Equal(t, ledger.RowEmpty, d.Rows[i].State())
}

func TestDraft_ProductoRepetidoSeRechaza(t *testing.T) {
	it := catalogItem("p1", "Tornillo", "10", "15", 4, false)
	d := nuevoBorrador(t, entity.DirectionIn, it)
	i, err := d.AddRow()
	require.NoError(t, err)

	err = d.SelectProduct(i, it)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, 1, ve.Row)
}

func TestDraft_ProductoSinIDSeRechaza(t *testing.T) {
	d := ledger.NewDraft(entity.DirectionIn, hoy)
	_, err := d.AddRow()
	require.NoError(t, err)
	i, err := d.AddRow()
	require.NoError(t, err)

	err = d.SelectProduct(i, entity.CatalogItem{Product: entity.Product{Name: "Sin código"}})
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, 1, ve.Row)
	assert.Equal(t, "itemId", ve.Field)
	assert.Equal(t, "producto sin identificador", ve.Reason)
	assert.Equal(t, ledger.RowEmpty, d.Rows[i].State())
}

func TestDraft_SalidaRecortaAlStockDisponible(t *testing.T) {
	d := nuevoBorrador(t, entity.DirectionOut, catalogItem("p1", "Tornillo", "10", "15", 5, false))

	qty, err := d.SetQuantity(0, 8)
	require.NoError(t, err)
	assert.Equal(t, int64(5), qty)
	assert.Len(t, d.Warnings, 1)

	qty, err = d.SetQuantity(0, -3)
	require.NoError(t, err)
	assert.Equal(t, int64(0), qty)
}

func TestDraft_SalidaSinStockQuedaEnCero(t *testing.T) {
	d := nuevoBorrador(t, entity.DirectionOut, catalogItem("p1", "Tornillo", "10", "15", 0, false))
	qty, err := d.SetQuantity(0, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(0), qty)

	err = d.Validate()
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestDraft_EntradaNoRecorta(t *testing.T) {
	d := nuevoBorrador(t, entity.DirectionIn, catalogItem("p1", "Tornillo", "10", "15", 0, false))
	qty, err := d.SetQuantity(0, 50)
	require.NoError(t, err)
	assert.Equal(t, int64(50), qty)
	assert.Empty(t, d.Warnings)
	assert.Equal(t, int64(50), d.Rows[0].TotalAfter(entity.DirectionIn))
}

func TestDraft_SalidaRecortaSerialesAlBajarCantidad(t *testing.T) {
	it := catalogItem("p1", "Celular", "100", "150", 5, true)
	d := nuevoBorrador(t, entity.DirectionOut, it)
	_, err := d.SetQuantity(0, 3)
	require.NoError(t, err)
	for _, sn := range []string{"SN-1", "SN-2", "SN-3"} {
		require.NoError(t, d.AddBarcode(0, sn))
	}

	_, err = d.SetQuantity(0, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"SN-1"}, d.Rows[0].Barcodes)
}

func TestDraft_EntradaSerializadaExigeSerialesExactos(t *testing.T) {
	d := nuevoBorrador(t, entity.DirectionIn, catalogItem("p1", "Celular", "100", "150", 0, true))
	_, err := d.SetQuantity(0, 2)
	require.NoError(t, err)
	require.NoError(t, d.AddBarcode(0, "SN-1"))

	err = d.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrBarcodeCount)
	assert.Equal(t, 0, d.FailedRow)

	require.NoError(t, d.AddBarcode(0, "SN-2"))
	require.NoError(t, d.Validate())
	assert.Equal(t, ledger.StateValidated, d.State())
	assert.Equal(t, -1, d.FailedRow)
}

func TestDraft_SalidaSerializadaAceptaSerialesOpcionales(t *testing.T) {
	d := nuevoBorrador(t, entity.DirectionOut, catalogItem("p1", "Celular", "100", "150", 3, true))
	_, err := d.SetQuantity(0, 2)
	require.NoError(t, err)
	assert.NoError(t, d.Validate())
}

func TestDraft_AddBarcodeDuplicadoDelCatalogo(t *testing.T) {
	it := catalogItem("p1", "Celular", "100", "150", 1, true)
	it.Barcodes = []entity.Barcode{{Serial: "SN-1", StockInID: "in-1"}}
	d := nuevoBorrador(t, entity.DirectionIn, it)

	err := d.AddBarcode(0, "SN-1")
	assert.ErrorIs(t, err, domain.ErrDuplicateBarcode)
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	assert.NoError(t, d.AddBarcode(0, "sn-1"))
}

func TestDraft_SalidaPermiteSerialEnStockYRechazaVendido(t *testing.T) {
	it := catalogItem("p1", "Celular", "100", "150", 1, true)
	it.Barcodes = []entity.Barcode{
		{Serial: "SN-1", StockInID: "in-1"},
		{Serial: "SN-2", StockInID: "in-1", StockOutID: "out-1"},
	}
	d := nuevoBorrador(t, entity.DirectionOut, it)

	assert.NoError(t, d.AddBarcode(0, "SN-1"))
	assert.ErrorIs(t, d.AddBarcode(0, "SN-2"), domain.ErrDuplicateBarcode)
}

func TestDraft_AddBarcodeVacioYSinProducto(t *testing.T) {
	d := ledger.NewDraft(entity.DirectionIn, hoy)
	_, err := d.AddRow()
	require.NoError(t, err)
	assert.ErrorIs(t, d.AddBarcode(0, "SN-1"), domain.ErrInvalidInput)

	require.NoError(t, d.SelectProduct(0, catalogItem("p1", "Celular", "100", "150", 0, true)))
	assert.ErrorIs(t, d.AddBarcode(0, "   "), domain.ErrInvalidInput)
}

func TestDraft_RemoveBarcode(t *testing.T) {
	d := nuevoBorrador(t, entity.DirectionIn, catalogItem("p1", "Celular", "100", "150", 0, true))
	require.NoError(t, d.AddBarcode(0, "SN-1"))
	require.NoError(t, d.AddBarcode(0, "SN-2"))
	require.NoError(t, d.RemoveBarcode(0, 0))
	assert.Equal(t, []string{"SN-2"}, d.Rows[0].Barcodes)
}

func TestDraft_Validate(t *testing.T) {
	tests := []struct {
		name  string
		setup func(d *ledger.Draft)
		field string
	}{
		{"sin categoría", func(d *ledger.Draft) { _ = d.SetCategory("") }, "category"},
		{"sin fecha", func(d *ledger.Draft) { _ = d.SetDate(time.Time{}) }, "date"},
		{"cantidad cero", func(d *ledger.Draft) { _, _ = d.SetQuantity(0, 0) }, "quantity"},
		{"sin productos", func(d *ledger.Draft) { _ = d.ClearRow(0) }, "items"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := nuevoBorrador(t, entity.DirectionIn, catalogItem("p1", "Tornillo", "10", "15", 0, false))
			_, err := d.SetQuantity(0, 1)
			require.NoError(t, err)
			tt.setup(d)

			err = d.Validate()
			var ve *domain.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
			assert.Equal(t, ledger.StateDraft, d.State())
			assert.Equal(t, err, d.LastError)
		})
	}
}

func TestDraft_ModificarTrasValidarVuelveABorrador(t *testing.T) {
	d := nuevoBorrador(t, entity.DirectionIn, catalogItem("p1", "Tornillo", "10", "15", 0, false))
	_, err := d.SetQuantity(0, 1)
	require.NoError(t, err)
	require.NoError(t, d.Validate())
	require.Equal(t, ledger.StateValidated, d.State())

	require.NoError(t, d.SetNotes("recibido parcial"))
	assert.Equal(t, ledger.StateDraft, d.State())
}

func TestDraft_RemoveRowDejaUnaFila(t *testing.T) {
	d := nuevoBorrador(t, entity.DirectionIn, catalogItem("p1", "Tornillo", "10", "15", 0, false))
	require.NoError(t, d.RemoveRow(0))
	require.Len(t, d.Rows, 1)
	assert.Equal(t, ledger.RowEmpty, d.Rows[0].State())

	assert.ErrorIs(t, d.RemoveRow(5), domain.ErrInvalidInput)
}

func TestDraft_TotalYLineasUsanPrecioBase(t *testing.T) {
	in := nuevoBorrador(t, entity.DirectionIn,
		catalogItem("p1", "Tornillo", "10", "15", 10, false),
		catalogItem("p2", "Tuerca", "5", "8", 10, false),
	)
	_, _ = in.SetQuantity(0, 2)
	_, _ = in.SetQuantity(1, 3)
	_, _ = in.AddRow()

	assert.True(t, decimal.NewFromInt(35).Equal(in.Total()), in.Total().String())
	assert.Equal(t, []entity.LineItem{{ProductID: "p1", Quantity: 2}, {ProductID: "p2", Quantity: 3}}, in.Lines())

	out := nuevoBorrador(t, entity.DirectionOut,
		catalogItem("p1", "Tornillo", "10", "15", 10, false),
		catalogItem("p2", "Tuerca", "5", "8", 10, false),
	)
	_, _ = out.SetQuantity(0, 2)
	_, _ = out.SetQuantity(1, 3)
	assert.True(t, decimal.NewFromInt(54).Equal(out.Total()), out.Total().String())
}
