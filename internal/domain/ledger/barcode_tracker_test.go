package ledger_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-ledger/internal/domain"
	"github.com/jhoicas/pos-ledger/internal/domain/entity"
	"github.com/jhoicas/pos-ledger/internal/domain/ledger"
)

func TestAddBarcode_AgregaSinMutarLaEntrada(t *testing.T) {
	existing := []string{"SN-1"}
	got, err := ledger.AddBarcode(existing, "  SN-2 ", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"SN-1", "SN-2"}, got)
	assert.Equal(t, []string{"SN-1"}, existing)
}

func TestAddBarcode_DuplicadoExacto(t *testing.T) {
	existing := []string{"SN-1", "SN-2"}
	got, err := ledger.AddBarcode(existing, "SN-2", nil)
	assert.ErrorIs(t, err, domain.ErrDuplicateBarcode)
	assert.Equal(t, []string{"SN-1", "SN-2"}, got)
}

func TestAddBarcode_SensibleAMayusculas(t *testing.T) {
	got, err := ledger.AddBarcode([]string{"sn-1"}, "SN-1", nil)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestAddBarcode_DuplicadoPersistido(t *testing.T) {
	_, err := ledger.AddBarcode(nil, "SN-9", []string{"SN-9"})
	assert.ErrorIs(t, err, domain.ErrDuplicateBarcode)
}

func TestAddBarcode_Vacio(t *testing.T) {
	_, err := ledger.AddBarcode(nil, "   ", nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRemoveBarcode(t *testing.T) {
	assert.Equal(t, []string{"a", "c"}, ledger.RemoveBarcode([]string{"a", "b", "c"}, 1))
	assert.Equal(t, []string{"a"}, ledger.RemoveBarcode([]string{"a"}, 5))
}

func TestTrimToQuantity(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, ledger.TrimToQuantity([]string{"a", "b", "c"}, 2))
	assert.Equal(t, []string{"a"}, ledger.TrimToQuantity([]string{"a"}, 3))
	assert.Empty(t, ledger.TrimToQuantity([]string{"a"}, 0))
}

func TestValidateBarcodeCount(t *testing.T) {
	cases := []struct {
		name       string
		barcodes   []string
		qty        int64
		serialized bool
		mode       ledger.BarcodeMode
		wantErr    bool
	}{
		{"no serializado sin seriales", nil, 5, false, ledger.BarcodeStrict, false},
		{"no serializado con más seriales", []string{"a", "b"}, 1, false, ledger.BarcodeStrict, false},
		{"estricto exacto", []string{"a", "b"}, 2, true, ledger.BarcodeStrict, false},
		{"estricto faltan", []string{"a"}, 2, true, ledger.BarcodeStrict, true},
		{"estricto sobran", []string{"a", "b", "c"}, 2, true, ledger.BarcodeStrict, true},
		{"flexible sin seriales", nil, 2, true, ledger.BarcodeLenient, false},
		{"flexible sobran", []string{"a", "b", "c"}, 2, true, ledger.BarcodeLenient, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ledger.ValidateBarcodeCount(tc.barcodes, tc.qty, tc.serialized, tc.mode)
			if tc.wantErr {
				assert.ErrorIs(t, err, domain.ErrBarcodeCount)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestModeFor(t *testing.T) {
	assert.Equal(t, ledger.BarcodeStrict, ledger.ModeFor(entity.DirectionIn))
	assert.Equal(t, ledger.BarcodeLenient, ledger.ModeFor(entity.DirectionOut))
}

func TestCheckAttachable(t *testing.T) {
	free := entity.Barcode{Serial: "A"}
	received := entity.Barcode{Serial: "B", StockInID: "in-1"}
	sold := entity.Barcode{Serial: "C", StockInID: "in-1", StockOutID: "out-1"}

	assert.NoError(t, ledger.CheckAttachable(free, entity.DirectionIn))
	assert.ErrorIs(t, ledger.CheckAttachable(received, entity.DirectionIn), domain.ErrDuplicateBarcode)

	assert.ErrorIs(t, ledger.CheckAttachable(free, entity.DirectionOut), domain.ErrBarcodeNotInStock)
	assert.NoError(t, ledger.CheckAttachable(received, entity.DirectionOut))
	assert.ErrorIs(t, ledger.CheckAttachable(sold, entity.DirectionOut), domain.ErrBarcodeNotInStock)
}
