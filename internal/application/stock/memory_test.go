package stock_test

import (
	"context"
	"fmt"
	"sort"

	"github.com/jhoicas/pos-ledger/internal/domain"
	"github.com/jhoicas/pos-ledger/internal/domain/entity"
	"github.com/jhoicas/pos-ledger/internal/domain/repository"
)

// memStore almacenamiento en memoria; memTx restaura la copia previa si fn falla.
type memStore struct {
	products   map[string]entity.Product
	categories map[string]entity.Category
	records    map[string]entity.StockRecord
	entries    []entity.StockEntry
	movements  map[string]entity.StockMovement
	barcodes   []entity.Barcode
	seq        map[entity.Direction]int
	txCount    int
}

func newMemStore() *memStore {
	return &memStore{
		products:   make(map[string]entity.Product),
		categories: make(map[string]entity.Category),
		records:    make(map[string]entity.StockRecord),
		movements:  make(map[string]entity.StockMovement),
		seq:        make(map[entity.Direction]int),
	}
}

func (s *memStore) clone() *memStore {
	c := newMemStore()
	for k, v := range s.products {
		c.products[k] = v
	}
	for k, v := range s.categories {
		c.categories[k] = v
	}
	for k, v := range s.records {
		c.records[k] = v
	}
	for k, v := range s.movements {
		c.movements[k] = v
	}
	for k, v := range s.seq {
		c.seq[k] = v
	}
	c.entries = append(c.entries, s.entries...)
	c.barcodes = append(c.barcodes, s.barcodes...)
	c.txCount = s.txCount
	return c
}

type memTx struct{ s *memStore }

func (t memTx) Run(_ context.Context, fn func(
	movRepo repository.StockMovementRepository,
	recordRepo repository.StockRecordRepository,
	productRepo repository.ProductRepository,
	barcodeRepo repository.BarcodeRepository,
) error) error {
	snap := t.s.clone()
	t.s.txCount++
	if err := fn(memMovements{t.s}, memRecords{t.s}, memProducts{t.s}, memBarcodes{t.s}); err != nil {
		count := t.s.txCount
		*t.s = *snap
		t.s.txCount = count
		return err
	}
	return nil
}

type memProducts struct{ s *memStore }

func (r memProducts) GetByID(_ context.Context, id string) (*entity.Product, error) {
	p, ok := r.s.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r memProducts) ListActive(context.Context) ([]*entity.Product, error) {
	ids := make([]string, 0, len(r.s.products))
	for id := range r.s.products {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	var out []*entity.Product
	for _, id := range ids {
		p := r.s.products[id]
		if p.IsActive {
			out = append(out, &p)
		}
	}
	return out, nil
}

type memCategories struct{ s *memStore }

func (r memCategories) GetByID(_ context.Context, id string) (*entity.Category, error) {
	c, ok := r.s.categories[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r memCategories) List(_ context.Context, dir entity.Direction) ([]*entity.Category, error) {
	var out []*entity.Category
	for _, c := range r.s.categories {
		if dir == "" || c.Direction == dir {
			c := c
			out = append(out, &c)
		}
	}
	return out, nil
}

type memRecords struct{ s *memStore }

func (r memRecords) Get(_ context.Context, productID string) (*entity.StockRecord, error) {
	rec, ok := r.s.records[productID]
	if !ok {
		return &entity.StockRecord{ProductID: productID}, nil
	}
	return &rec, nil
}

func (r memRecords) GetForUpdate(ctx context.Context, productID string) (*entity.StockRecord, error) {
	return r.Get(ctx, productID)
}

func (r memRecords) Save(_ context.Context, rec *entity.StockRecord) error {
	cur := r.s.records[rec.ProductID]
	if cur.Version != rec.Version {
		return domain.ErrConflict
	}
	rec.Version++
	stored := *rec
	stored.Entries = nil
	r.s.records[rec.ProductID] = stored
	return nil
}

func (r memRecords) List(context.Context) ([]*entity.StockRecord, error) {
	ids := make([]string, 0, len(r.s.records))
	for id := range r.s.records {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]*entity.StockRecord, 0, len(ids))
	for _, id := range ids {
		rec := r.s.records[id]
		out = append(out, &rec)
	}
	return out, nil
}

func (r memRecords) AddEntry(_ context.Context, e *entity.StockEntry) error {
	r.s.entries = append(r.s.entries, *e)
	return nil
}

func (r memRecords) ListEntries(_ context.Context, productID string) ([]entity.StockEntry, error) {
	var out []entity.StockEntry
	for _, e := range r.s.entries {
		if e.ProductID == productID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r memRecords) DeleteEntriesByMovement(_ context.Context, movementID string) error {
	kept := r.s.entries[:0:0]
	for _, e := range r.s.entries {
		if e.MovementID != movementID {
			kept = append(kept, e)
		}
	}
	r.s.entries = kept
	return nil
}

type memMovements struct{ s *memStore }

func (r memMovements) duplicateInvoice(m *entity.StockMovement) bool {
	if m.InvoiceNo == "" {
		return false
	}
	for id, o := range r.s.movements {
		if id != m.ID && o.Direction == m.Direction && o.CategoryID == m.CategoryID && o.InvoiceNo == m.InvoiceNo {
			return true
		}
	}
	return false
}

func (r memMovements) Create(_ context.Context, m *entity.StockMovement) error {
	if r.duplicateInvoice(m) {
		return domain.ErrDuplicateInvoice
	}
	r.s.seq[m.Direction]++
	prefix := "STOCKIN"
	if m.Direction == entity.DirectionOut {
		prefix = "STOCKOUT"
	}
	m.Number = fmt.Sprintf("%s-%06d", prefix, r.s.seq[m.Direction])
	cp := *m
	cp.Lines = append([]entity.LineItem(nil), m.Lines...)
	r.s.movements[m.ID] = cp
	return nil
}

func (r memMovements) Update(_ context.Context, m *entity.StockMovement) error {
	if _, ok := r.s.movements[m.ID]; !ok {
		return domain.ErrNotFound
	}
	if r.duplicateInvoice(m) {
		return domain.ErrDuplicateInvoice
	}
	cp := *m
	cp.Lines = append([]entity.LineItem(nil), m.Lines...)
	r.s.movements[m.ID] = cp
	return nil
}

func (r memMovements) Delete(_ context.Context, _ entity.Direction, id string) error {
	delete(r.s.movements, id)
	return nil
}

func (r memMovements) GetByID(_ context.Context, dir entity.Direction, id string) (*entity.StockMovement, error) {
	m, ok := r.s.movements[id]
	if !ok || m.Direction != dir {
		return nil, nil
	}
	return &m, nil
}

func (r memMovements) List(_ context.Context, f repository.MovementFilter) ([]*entity.StockMovement, error) {
	var out []*entity.StockMovement
	for _, m := range r.s.movements {
		if f.Direction != "" && m.Direction != f.Direction {
			continue
		}
		m := m
		out = append(out, &m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

type memBarcodes struct{ s *memStore }

func (r memBarcodes) Create(_ context.Context, b *entity.Barcode) error {
	for _, o := range r.s.barcodes {
		if o.Serial == b.Serial {
			return domain.ErrDuplicateBarcode
		}
	}
	r.s.barcodes = append(r.s.barcodes, *b)
	return nil
}

func (r memBarcodes) GetForUpdate(_ context.Context, productID, serial string) (*entity.Barcode, error) {
	for _, b := range r.s.barcodes {
		if b.ProductID == productID && b.Serial == serial {
			return &b, nil
		}
	}
	return nil, nil
}

func (r memBarcodes) LinkStockOut(_ context.Context, id, stockOutID string) error {
	for i := range r.s.barcodes {
		if r.s.barcodes[i].ID == id {
			r.s.barcodes[i].StockOutID = stockOutID
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r memBarcodes) ListByProduct(_ context.Context, productID string) ([]entity.Barcode, error) {
	var out []entity.Barcode
	for _, b := range r.s.barcodes {
		if b.ProductID == productID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r memBarcodes) ListByMovement(_ context.Context, dir entity.Direction, movementID string) ([]entity.Barcode, error) {
	var out []entity.Barcode
	for _, b := range r.s.barcodes {
		if (dir == entity.DirectionIn && b.StockInID == movementID) || (dir == entity.DirectionOut && b.StockOutID == movementID) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r memBarcodes) Unlink(_ context.Context, dir entity.Direction, movementID, productID string) error {
	kept := r.s.barcodes[:0:0]
	for _, b := range r.s.barcodes {
		match := productID == "" || b.ProductID == productID
		switch {
		case match && dir == entity.DirectionIn && b.StockInID == movementID:
			continue
		case match && dir == entity.DirectionOut && b.StockOutID == movementID:
			b.StockOutID = ""
		}
		kept = append(kept, b)
	}
	r.s.barcodes = kept
	return nil
}
