package stock

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/pos-ledger/internal/application/ledger"
	"github.com/jhoicas/pos-ledger/internal/domain"
	"github.com/jhoicas/pos-ledger/internal/domain/entity"
	domainledger "github.com/jhoicas/pos-ledger/internal/domain/ledger"
	"github.com/jhoicas/pos-ledger/internal/domain/repository"
)

var _ ledger.StockMovementGateway = (*MovementUseCase)(nil)

// MovementUseCase aplica entradas y salidas de forma transaccional: bloquea la tarjeta de
// stock de cada producto (SELECT FOR UPDATE), aplica el contador y registra los asientos.
// Es la fuente autoritativa del rechazo por stock insuficiente.
type MovementUseCase struct {
	txRunner     TxRunner
	productRepo  repository.ProductRepository
	recordRepo   repository.StockRecordRepository
	movRepo      repository.StockMovementRepository
	barcodeRepo  repository.BarcodeRepository
	categoryRepo repository.CategoryRepository
	log          zerolog.Logger
	now          func() time.Time
}

// NewMovementUseCase construye el caso de uso.
func NewMovementUseCase(
	txRunner TxRunner,
	productRepo repository.ProductRepository,
	recordRepo repository.StockRecordRepository,
	movRepo repository.StockMovementRepository,
	barcodeRepo repository.BarcodeRepository,
	categoryRepo repository.CategoryRepository,
	log zerolog.Logger,
) *MovementUseCase {
	return &MovementUseCase{
		txRunner:     txRunner,
		productRepo:  productRepo,
		recordRepo:   recordRepo,
		movRepo:      movRepo,
		barcodeRepo:  barcodeRepo,
		categoryRepo: categoryRepo,
		log:          log,
		now:          time.Now,
	}
}

// FetchProductCatalog devuelve los productos activos con su stock y seriales.
func (uc *MovementUseCase) FetchProductCatalog(ctx context.Context) ([]entity.CatalogItem, error) {
	products, err := uc.productRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]entity.CatalogItem, 0, len(products))
	for _, p := range products {
		rec, err := uc.recordRepo.Get(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		barcodes, err := uc.barcodeRepo.ListByProduct(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		items = append(items, entity.CatalogItem{
			Product:        *p,
			OpeningStock:   rec.OpeningStock,
			RemainingStock: rec.RemainingStock,
			Barcodes:       barcodes,
		})
	}
	return items, nil
}

// SubmitStockMovement registra un movimiento nuevo y devuelve su ID.
func (uc *MovementUseCase) SubmitStockMovement(ctx context.Context, m *entity.StockMovement) (string, error) {
	if err := uc.validate(ctx, m); err != nil {
		return "", err
	}
	now := uc.now()
	m.ID = uuid.New().String()
	m.CreatedAt = now
	m.UpdatedAt = now

	err := uc.txRunner.Run(ctx, func(
		movRepo repository.StockMovementRepository,
		recordRepo repository.StockRecordRepository,
		productRepo repository.ProductRepository,
		_ repository.BarcodeRepository,
	) error {
		if err := movRepo.Create(ctx, m); err != nil {
			return err
		}
		deltas := domainledger.DiffLines(nil, m.Lines)
		if err := uc.applyDeltas(ctx, recordRepo, productRepo, m, deltas); err != nil {
			return err
		}
		return uc.addEntries(ctx, recordRepo, m)
	})
	if err != nil {
		uc.log.Warn().Err(err).Str("direction", string(m.Direction)).Msg("movimiento rechazado")
		return "", err
	}
	uc.log.Info().Str("movement_id", m.ID).Str("direction", string(m.Direction)).Str("number", m.Number).
		Int("lines", len(m.Lines)).Msg("movimiento registrado")
	return m.ID, nil
}

// UpdateStockMovement reemplaza un movimiento aplicando al stock solo la diferencia
// por producto (nuevo - original). Los productos retirados devuelven su cantidad.
func (uc *MovementUseCase) UpdateStockMovement(ctx context.Context, id string, m *entity.StockMovement) error {
	if err := uc.validate(ctx, m); err != nil {
		return err
	}
	err := uc.txRunner.Run(ctx, func(
		movRepo repository.StockMovementRepository,
		recordRepo repository.StockRecordRepository,
		productRepo repository.ProductRepository,
		barcodeRepo repository.BarcodeRepository,
	) error {
		orig, err := movRepo.GetByID(ctx, m.Direction, id)
		if err != nil {
			return err
		}
		if orig == nil {
			return domain.ErrNotFound
		}
		m.ID = orig.ID
		m.Number = orig.Number
		m.CreatedAt = orig.CreatedAt
		m.UpdatedAt = uc.now()

		deltas := domainledger.DiffLines(orig.Lines, m.Lines)
		if err := uc.checkLinkedBarcodes(ctx, barcodeRepo, m, deltas); err != nil {
			return err
		}
		if err := uc.applyDeltas(ctx, recordRepo, productRepo, m, deltas); err != nil {
			return err
		}
		for _, d := range deltas {
			if d.Updated == 0 {
				if err := barcodeRepo.Unlink(ctx, m.Direction, m.ID, d.ProductID); err != nil {
					return err
				}
			}
		}
		if err := recordRepo.DeleteEntriesByMovement(ctx, m.ID); err != nil {
			return err
		}
		if err := uc.addEntries(ctx, recordRepo, m); err != nil {
			return err
		}
		return movRepo.Update(ctx, m)
	})
	if err != nil {
		uc.log.Warn().Err(err).Str("movement_id", id).Str("direction", string(m.Direction)).Msg("edición rechazada")
		return err
	}
	uc.log.Info().Str("movement_id", id).Str("direction", string(m.Direction)).Msg("movimiento actualizado")
	return nil
}

// DeleteStockMovement borra un movimiento y revierte su efecto en el stock. Borrar una
// entrada cuyas unidades ya se despacharon falla con ErrInsufficientStock.
func (uc *MovementUseCase) DeleteStockMovement(ctx context.Context, dir entity.Direction, id string) error {
	if !dir.Valid() {
		return domain.NewValidationError("direction", "desconocida")
	}
	err := uc.txRunner.Run(ctx, func(
		movRepo repository.StockMovementRepository,
		recordRepo repository.StockRecordRepository,
		productRepo repository.ProductRepository,
		barcodeRepo repository.BarcodeRepository,
	) error {
		orig, err := movRepo.GetByID(ctx, dir, id)
		if err != nil {
			return err
		}
		if orig == nil {
			return domain.ErrNotFound
		}
		deltas := domainledger.DiffLines(orig.Lines, nil)
		if err := uc.checkLinkedBarcodes(ctx, barcodeRepo, orig, deltas); err != nil {
			return err
		}
		if err := uc.applyDeltas(ctx, recordRepo, productRepo, orig, deltas); err != nil {
			return err
		}
		if err := barcodeRepo.Unlink(ctx, dir, id, ""); err != nil {
			return err
		}
		if err := recordRepo.DeleteEntriesByMovement(ctx, id); err != nil {
			return err
		}
		return movRepo.Delete(ctx, dir, id)
	})
	if err != nil {
		uc.log.Warn().Err(err).Str("movement_id", id).Str("direction", string(dir)).Msg("borrado rechazado")
		return err
	}
	uc.log.Info().Str("movement_id", id).Str("direction", string(dir)).Msg("movimiento borrado")
	return nil
}

// FetchStockMovementByID devuelve el movimiento con productos, stock y seriales resueltos.
func (uc *MovementUseCase) FetchStockMovementByID(ctx context.Context, dir entity.Direction, id string) (*entity.ResolvedMovement, error) {
	m, err := uc.movRepo.GetByID(ctx, dir, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, domain.ErrNotFound
	}
	out, err := uc.resolve(ctx, []*entity.StockMovement{m})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

// ListStockMovements lista movimientos resueltos.
func (uc *MovementUseCase) ListStockMovements(ctx context.Context, f ledger.ListFilter) ([]*entity.ResolvedMovement, error) {
	ms, err := uc.movRepo.List(ctx, repository.MovementFilter{
		Direction:  f.Direction,
		CategoryID: f.CategoryID,
		From:       f.From,
		To:         f.To,
		Active:     f.Active,
		Limit:      f.Limit,
		Offset:     f.Offset,
	})
	if err != nil {
		return nil, err
	}
	return uc.resolve(ctx, ms)
}

// ListStockRecords devuelve la tarjeta de stock de cada producto con sus asientos.
func (uc *MovementUseCase) ListStockRecords(ctx context.Context) ([]entity.StockRecord, error) {
	recs, err := uc.recordRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]entity.StockRecord, 0, len(recs))
	for _, rec := range recs {
		entries, err := uc.recordRepo.ListEntries(ctx, rec.ProductID)
		if err != nil {
			return nil, err
		}
		rec.Entries = entries
		out = append(out, *rec)
	}
	return out, nil
}

// ListCategories lista las categorías activas de una dirección (todas si dir es vacío).
func (uc *MovementUseCase) ListCategories(ctx context.Context, dir entity.Direction) ([]entity.Category, error) {
	if dir != "" && !dir.Valid() {
		return nil, domain.NewValidationError("direction", "desconocida")
	}
	list, err := uc.categoryRepo.List(ctx, dir)
	if err != nil {
		return nil, err
	}
	out := make([]entity.Category, 0, len(list))
	for _, c := range list {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// SetOpeningStock corrige el stock inicial de un producto; el disponible se mueve igual.
func (uc *MovementUseCase) SetOpeningStock(ctx context.Context, productID string, opening int64) (*entity.StockRecord, error) {
	var saved *entity.StockRecord
	err := uc.txRunner.Run(ctx, func(
		_ repository.StockMovementRepository,
		recordRepo repository.StockRecordRepository,
		productRepo repository.ProductRepository,
		_ repository.BarcodeRepository,
	) error {
		p, err := productRepo.GetByID(ctx, productID)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.ErrNotFound
		}
		rec, err := recordRepo.GetForUpdate(ctx, productID)
		if err != nil {
			return err
		}
		prev := rec.OpeningStock
		if err := domainledger.SetOpeningStock(rec, opening); err != nil {
			return err
		}
		if err := recordRepo.Save(ctx, rec); err != nil {
			return err
		}
		saved = rec
		diff, entryType := opening-prev, entity.EntryTypeOpening
		if diff < 0 {
			diff, entryType = -diff, entity.EntryTypeOpeningDown
		}
		if diff == 0 {
			return nil
		}
		return recordRepo.AddEntry(ctx, &entity.StockEntry{
			ID:        uuid.New().String(),
			ProductID: productID,
			Type:      entryType,
			Quantity:  diff,
			Reference: fmt.Sprintf("ajuste %d → %d", prev, opening),
			Date:      uc.now(),
		})
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("product_id", productID).Int64("opening_stock", opening).Msg("stock inicial ajustado")
	return saved, nil
}

// validate revisa forma, categoría y total antes de abrir la transacción.
func (uc *MovementUseCase) validate(ctx context.Context, m *entity.StockMovement) error {
	if !m.Direction.Valid() {
		return domain.NewValidationError("direction", "desconocida")
	}
	if err := domainledger.ValidateLines(m.Lines); err != nil {
		return err
	}
	if m.Total.IsNegative() {
		return domain.NewValidationError("total", "no puede ser negativo")
	}
	if m.Date.IsZero() {
		return domain.NewValidationError("date", "requerida")
	}
	if m.CategoryID == "" {
		return domain.NewValidationError("category", "requerida")
	}
	cat, err := uc.categoryRepo.GetByID(ctx, m.CategoryID)
	if err != nil {
		return err
	}
	if cat == nil {
		return domain.NewValidationError("category", "no existe")
	}
	if cat.Direction != "" && cat.Direction != m.Direction {
		return domain.NewValidationError("category", "no corresponde a la dirección del movimiento")
	}
	return nil
}

// applyDeltas bloquea y actualiza la tarjeta de cada producto en orden de ID, para que
// transacciones concurrentes tomen los bloqueos en el mismo orden.
func (uc *MovementUseCase) applyDeltas(
	ctx context.Context,
	recordRepo repository.StockRecordRepository,
	productRepo repository.ProductRepository,
	m *entity.StockMovement,
	deltas []domainledger.LineDelta,
) error {
	rows := make(map[string]int, len(m.Lines))
	for i, l := range m.Lines {
		rows[l.ProductID] = i
	}
	ordered := append([]domainledger.LineDelta(nil), deltas...)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ProductID < ordered[j].ProductID })

	for _, d := range ordered {
		row, ok := rows[d.ProductID]
		if !ok {
			row = -1
		}
		if d.Delta() == 0 {
			continue
		}
		if d.Updated > 0 {
			p, err := productRepo.GetByID(ctx, d.ProductID)
			if err != nil {
				return err
			}
			if p == nil {
				return &domain.RowError{Row: row, ProductID: d.ProductID, Err: domain.ErrNotFound}
			}
		}
		rec, err := recordRepo.GetForUpdate(ctx, d.ProductID)
		if err != nil {
			return err
		}
		if err := domainledger.ApplyDelta(rec, m.Direction, d.Delta()); err != nil {
			return &domain.RowError{Row: row, ProductID: d.ProductID, Err: err}
		}
		if err := recordRepo.Save(ctx, rec); err != nil {
			return err
		}
	}
	return nil
}

func (uc *MovementUseCase) addEntries(ctx context.Context, recordRepo repository.StockRecordRepository, m *entity.StockMovement) error {
	typ := entity.EntryTypeStockIn
	if m.Direction == entity.DirectionOut {
		typ = entity.EntryTypeStockOut
	}
	ref := m.InvoiceNo
	if ref == "" {
		ref = m.Number
	}
	for _, l := range m.Lines {
		e := &entity.StockEntry{
			ID:         uuid.New().String(),
			ProductID:  l.ProductID,
			MovementID: m.ID,
			Type:       typ,
			Quantity:   l.Quantity,
			Reference:  ref,
			Date:       m.Date,
		}
		if err := recordRepo.AddEntry(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

// checkLinkedBarcodes impide que una edición deje más seriales ligados que unidades, y que
// se retire de una entrada un producto con unidades ya despachadas.
func (uc *MovementUseCase) checkLinkedBarcodes(
	ctx context.Context,
	barcodeRepo repository.BarcodeRepository,
	m *entity.StockMovement,
	deltas []domainledger.LineDelta,
) error {
	linked, err := barcodeRepo.ListByMovement(ctx, m.Direction, m.ID)
	if err != nil {
		return err
	}
	if len(linked) == 0 {
		return nil
	}
	count := make(map[string]int64)
	sold := make(map[string]bool)
	for _, b := range linked {
		count[b.ProductID]++
		if m.Direction == entity.DirectionIn && b.StockOutID != "" {
			sold[b.ProductID] = true
		}
	}
	for i, d := range deltas {
		if d.Updated == 0 {
			if sold[d.ProductID] {
				return &domain.RowError{Row: -1, ProductID: d.ProductID, Err: domain.ErrConflict}
			}
			continue
		}
		if count[d.ProductID] > d.Updated {
			err := fmt.Errorf("%d seriales ligados para %d unidades: %w", count[d.ProductID], d.Updated, domain.ErrBarcodeCount)
			return &domain.RowError{Row: i, ProductID: d.ProductID, Err: err}
		}
	}
	return nil
}

// resolve completa productos, stock vigente, categoría y seriales de cada movimiento.
func (uc *MovementUseCase) resolve(ctx context.Context, ms []*entity.StockMovement) ([]*entity.ResolvedMovement, error) {
	products := make(map[string]*entity.Product)
	records := make(map[string]*entity.StockRecord)
	barcodes := make(map[string][]entity.Barcode)
	categories := make(map[string]string)

	out := make([]*entity.ResolvedMovement, 0, len(ms))
	for _, m := range ms {
		rm := &entity.ResolvedMovement{Movement: *m}
		if name, ok := categories[m.CategoryID]; ok {
			rm.CategoryName = name
		} else {
			cat, err := uc.categoryRepo.GetByID(ctx, m.CategoryID)
			if err != nil {
				return nil, err
			}
			if cat != nil {
				rm.CategoryName = cat.Name
			}
			categories[m.CategoryID] = rm.CategoryName
		}
		for _, l := range m.Lines {
			p, ok := products[l.ProductID]
			if !ok {
				var err error
				if p, err = uc.productRepo.GetByID(ctx, l.ProductID); err != nil {
					return nil, err
				}
				if p == nil {
					// producto retirado del catálogo: se muestra por ID
					p = &entity.Product{ID: l.ProductID, Name: l.ProductID}
				}
				products[l.ProductID] = p
			}
			rec, ok := records[l.ProductID]
			if !ok {
				var err error
				if rec, err = uc.recordRepo.Get(ctx, l.ProductID); err != nil {
					return nil, err
				}
				records[l.ProductID] = rec
			}
			bs, ok := barcodes[l.ProductID]
			if !ok {
				var err error
				if bs, err = uc.barcodeRepo.ListByProduct(ctx, l.ProductID); err != nil {
					return nil, err
				}
				barcodes[l.ProductID] = bs
			}
			rm.Lines = append(rm.Lines, entity.ResolvedLine{
				Product:        *p,
				Quantity:       l.Quantity,
				OpeningStock:   rec.OpeningStock,
				RemainingStock: rec.RemainingStock,
				Barcodes:       bs,
			})
		}
		out = append(out, rm)
	}
	return out, nil
}
