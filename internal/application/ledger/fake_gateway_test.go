package ledger_test

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-ledger/internal/application/ledger"
	"github.com/jhoicas/pos-ledger/internal/domain"
	"github.com/jhoicas/pos-ledger/internal/domain/entity"
)

// fakeGateway gateway en memoria para pruebas del reconciliador.
type fakeGateway struct {
	mu        sync.Mutex
	catalog   []entity.CatalogItem
	movements map[string]*entity.ResolvedMovement
	order     []string
	records   []entity.StockRecord
	seq       int

	submitted []entity.StockMovement
	updated   []entity.StockMovement
	barcodes  map[string][]string
	links     []entity.BarcodeLink

	submitErr  error
	updateErr  error
	barcodeErr error
	deleteErr  error
	block      bool // bloquea hasta que el contexto expire
}

func newFakeGateway(items ...entity.CatalogItem) *fakeGateway {
	return &fakeGateway{
		catalog:   items,
		movements: make(map[string]*entity.ResolvedMovement),
		barcodes:  make(map[string][]string),
	}
}

var _ ledger.StockMovementGateway = (*fakeGateway)(nil)

func (f *fakeGateway) addMovement(m *entity.ResolvedMovement) {
	f.movements[m.Movement.ID] = m
	f.order = append(f.order, m.Movement.ID)
}

func (f *fakeGateway) wait(ctx context.Context) error {
	if f.block {
		<-ctx.Done()
		return ctx.Err()
	}
	return nil
}

func (f *fakeGateway) FetchProductCatalog(ctx context.Context) ([]entity.CatalogItem, error) {
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]entity.CatalogItem(nil), f.catalog...), nil
}

func (f *fakeGateway) SubmitStockMovement(ctx context.Context, m *entity.StockMovement) (string, error) {
	if err := f.wait(ctx); err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.submitErr != nil {
		return "", f.submitErr
	}
	f.seq++
	id := fmt.Sprintf("mov-%d", f.seq)
	f.submitted = append(f.submitted, *m)
	return id, nil
}

func (f *fakeGateway) UpdateStockMovement(ctx context.Context, id string, m *entity.StockMovement) error {
	if err := f.wait(ctx); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	cp := *m
	cp.ID = id
	f.updated = append(f.updated, cp)
	return nil
}

func (f *fakeGateway) DeleteStockMovement(ctx context.Context, _ entity.Direction, id string) error {
	if err := f.wait(ctx); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.movements[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.movements, id)
	return nil
}

func (f *fakeGateway) FetchStockMovementByID(ctx context.Context, _ entity.Direction, id string) (*entity.ResolvedMovement, error) {
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.movements[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return m, nil
}

func (f *fakeGateway) SaveBarcodes(ctx context.Context, productID string, serials []string, link entity.BarcodeLink) error {
	if err := f.wait(ctx); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.barcodeErr != nil {
		return f.barcodeErr
	}
	f.barcodes[productID] = append(f.barcodes[productID], serials...)
	f.links = append(f.links, link)
	return nil
}

func (f *fakeGateway) ListStockMovements(ctx context.Context, filter ledger.ListFilter) ([]*entity.ResolvedMovement, error) {
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entity.ResolvedMovement
	for _, id := range f.order {
		m, ok := f.movements[id]
		if ok && (filter.Direction == "" || m.Movement.Direction == filter.Direction) {
			out = append(out, m)
		}
	}
	return window(out, filter.Limit, filter.Offset), nil
}

// window aplica Limit/Offset como lo hace el repositorio SQL.
func window(ms []*entity.ResolvedMovement, limit, offset int) []*entity.ResolvedMovement {
	if limit <= 0 {
		return ms
	}
	if offset >= len(ms) {
		return nil
	}
	return ms[offset:min(offset+limit, len(ms))]
}

func (f *fakeGateway) ListStockRecords(ctx context.Context) ([]entity.StockRecord, error) {
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	return f.records, nil
}

func catalogItem(id, name string, cost, sale string, remaining int64, serialized bool) entity.CatalogItem {
	return entity.CatalogItem{
		Product: entity.Product{
			ID:           id,
			Name:         name,
			SKU:          "SKU-" + id,
			Unit:         "und",
			CostPrice:    decimal.RequireFromString(cost),
			SalePrice:    decimal.RequireFromString(sale),
			IsSerialized: serialized,
			IsActive:     true,
		},
		OpeningStock:   remaining,
		RemainingStock: remaining,
	}
}
