package dto_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-ledger/internal/application/dto"
	"github.com/jhoicas/pos-ledger/internal/domain"
	"github.com/jhoicas/pos-ledger/internal/domain/entity"
)

func TestStockInRequest_DecodificaCamposDeCable(t *testing.T) {
	body := `{"itemId":["p1","p2"],"stockAdded":[3,1],"stcokIn_price":"45.50",
		"stockInDate":"2024-03-15","stockInCategoryId":"cat-1","invoiceNo":"FAC-1","notes":"ok"}`
	var req dto.StockInRequest
	require.NoError(t, json.Unmarshal([]byte(body), &req))

	m, err := req.ToMovement()
	require.NoError(t, err)
	assert.Equal(t, entity.DirectionIn, m.Direction)
	assert.Equal(t, []entity.LineItem{{ProductID: "p1", Quantity: 3}, {ProductID: "p2", Quantity: 1}}, m.Lines)
	assert.True(t, decimal.RequireFromString("45.5").Equal(m.Total))
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), m.Date)
	assert.True(t, m.IsActive)
}

func TestStockInRequest_ArreglosDesalineados(t *testing.T) {
	req := dto.StockInRequest{
		ItemIDs:    []string{"p1", "p2"},
		StockAdded: []int64{3},
		Date:       "2024-03-15",
		CategoryID: "cat-1",
	}
	_, err := req.ToMovement()
	require.Error(t, err)
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "stockAdded", ve.Field)
}

func TestStockOutRequest_Validaciones(t *testing.T) {
	base := func() dto.StockOutRequest {
		return dto.StockOutRequest{
			ItemIDs:    []string{"p1"},
			Quantity:   []int64{2},
			TotalSale:  decimal.NewFromInt(30),
			Date:       "2024-03-15T10:00:00Z",
			CategoryID: "cat-v",
		}
	}
	tests := []struct {
		name   string
		mutate func(r *dto.StockOutRequest)
		field  string
	}{
		{"sin productos", func(r *dto.StockOutRequest) { r.ItemIDs = nil; r.Quantity = nil }, "itemId"},
		{"cantidad cero", func(r *dto.StockOutRequest) { r.Quantity = []int64{0} }, "quantity[0]"},
		{"sin categoría", func(r *dto.StockOutRequest) { r.CategoryID = "" }, "stockOutCategoryId"},
		{"sin fecha", func(r *dto.StockOutRequest) { r.Date = "" }, "stockOutDate"},
		{"fecha inválida", func(r *dto.StockOutRequest) { r.Date = "15/03/2024" }, "stockOutDate"},
		{"total negativo", func(r *dto.StockOutRequest) { r.TotalSale = decimal.NewFromInt(-1) }, "total"},
		{"desalineados", func(r *dto.StockOutRequest) { r.Quantity = []int64{1, 1} }, "quantity"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := base()
			tt.mutate(&req)
			_, err := req.ToMovement()
			var ve *domain.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}

	req := base()
	m, err := req.ToMovement()
	require.NoError(t, err)
	assert.Equal(t, entity.DirectionOut, m.Direction)
}

func TestNewStockOutRequest_UsaNombresDeCable(t *testing.T) {
	m := &entity.StockMovement{
		Direction:  entity.DirectionOut,
		CategoryID: "cat-v",
		Date:       time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		InvoiceNo:  "V-1",
		IsActive:   false,
		Lines:      []entity.LineItem{{ProductID: "p1", Quantity: 2}},
		Total:      decimal.NewFromInt(30),
	}
	raw, err := json.Marshal(dto.NewStockOutRequest(m))
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, []any{"p1"}, got["itemId"])
	assert.Equal(t, []any{float64(2)}, got["quantity"])
	assert.Equal(t, "30", got["Total_sale"])
	assert.Equal(t, "cat-v", got["stockOutCategoryId"])
	assert.Equal(t, false, got["isActive"])
}

func TestMovementResponse_ToResolvedRechazaDesalineados(t *testing.T) {
	r := dto.MovementResponse{
		ID:       "m1",
		Items:    []dto.CatalogItemResponse{{ID: "p1"}, {ID: "p2"}},
		Quantity: []int64{1},
	}
	_, err := r.ToResolved()
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	r.Quantity = []int64{1, 4}
	m, err := r.ToResolved()
	require.NoError(t, err)
	assert.Equal(t, int64(5), m.Movement.TotalQuantity())
	assert.Equal(t, "p2", m.Lines[1].Product.ID)
}

func TestSaveBarcodesRequest_Link(t *testing.T) {
	req := dto.SaveBarcodesRequest{Serials: []string{"SN-1"}, StockInID: "in-1"}
	link, err := req.Link()
	require.NoError(t, err)
	assert.Equal(t, entity.BarcodeLink{StockInID: "in-1"}, link)

	req.StockOutID = "out-1"
	_, err = req.Link()
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	req = dto.SaveBarcodesRequest{StockInID: "in-1"}
	_, err = req.Link()
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestMovementListQuery_Filters(t *testing.T) {
	q := dto.MovementListQuery{Direction: "out", Status: "inactive", From: "2024-01-01", ItemName: "torn"}
	lf, rf, err := q.Filters()
	require.NoError(t, err)
	assert.Equal(t, entity.DirectionOut, lf.Direction)
	require.NotNil(t, lf.Active)
	assert.False(t, *lf.Active)
	require.NotNil(t, lf.From)
	assert.Nil(t, lf.To)
	assert.Zero(t, lf.Limit, "el listado se pagina después de filtrar")
	assert.Equal(t, 20, q.Limit)
	assert.Equal(t, "torn", rf.ItemName)

	q = dto.MovementListQuery{Direction: "sideways"}
	_, _, err = q.Filters()
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	page, meta := dto.Paginate(items, dto.PageRequest{Limit: 2, Offset: 1})
	assert.Equal(t, []int{2, 3}, page)
	assert.Equal(t, dto.PageResponse{Limit: 2, Offset: 1, Total: 5}, meta)

	page, meta = dto.Paginate(items, dto.PageRequest{Limit: 10, Offset: 4})
	assert.Equal(t, []int{5}, page)
	assert.Equal(t, 5, meta.Total)

	page, meta = dto.Paginate(items, dto.PageRequest{Offset: 9})
	assert.Empty(t, page)
	assert.Equal(t, 20, meta.Limit)
	assert.Equal(t, 5, meta.Total)
}
