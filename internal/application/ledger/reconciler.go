package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/pos-ledger/internal/domain"
	"github.com/jhoicas/pos-ledger/internal/domain/entity"
	"github.com/jhoicas/pos-ledger/internal/domain/ledger"
)

// Config tiempos máximos de las llamadas al gateway.
type Config struct {
	GatewayTimeout time.Duration
	BarcodeTimeout time.Duration
}

// DefaultConfig valores por defecto si no hay configuración.
func DefaultConfig() Config {
	return Config{GatewayTimeout: 15 * time.Second, BarcodeTimeout: 10 * time.Second}
}

// Outcome resultado de un envío.
type Outcome string

const (
	OutcomeCommitted Outcome = "committed"
	// OutcomePartial: el movimiento quedó confirmado pero algún guardado de seriales falló.
	OutcomePartial Outcome = "committed_with_warnings"
	OutcomeFailed  Outcome = "failed"
)

// Allocation monto asignado a una línea.
type Allocation struct {
	ProductID string
	Quantity  int64
	Amount    decimal.Decimal
}

// StockProjection stock proyectado de un producto tras confirmar el borrador.
type StockProjection struct {
	ProductID       string
	Delta           int64
	OpeningBefore   int64
	OpeningAfter    int64
	RemainingBefore int64
	RemainingAfter  int64
}

// Plan es lo que se enviaría: movimiento, asignación por línea y stock proyectado.
type Plan struct {
	Movement    entity.StockMovement
	Allocations []Allocation
	Projections []StockProjection
}

// BarcodeFailure guardado de seriales fallido tras una confirmación.
type BarcodeFailure struct {
	Row       int
	ProductID string
	Serials   []string
	Err       error
}

// SubmitResult resultado de Submit.
type SubmitResult struct {
	ID              string
	Outcome         Outcome
	Plan            Plan
	BarcodeFailures []BarcodeFailure
}

// Reconciler coordina borradores con el gateway: valida, asigna, proyecta stock,
// persiste y después guarda seriales.
type Reconciler struct {
	gw  StockMovementGateway
	log zerolog.Logger
	cfg Config
}

// NewReconciler crea el reconciliador. Timeouts en cero toman los valores por defecto.
func NewReconciler(gw StockMovementGateway, log zerolog.Logger, cfg Config) *Reconciler {
	def := DefaultConfig()
	if cfg.GatewayTimeout <= 0 {
		cfg.GatewayTimeout = def.GatewayTimeout
	}
	if cfg.BarcodeTimeout <= 0 {
		cfg.BarcodeTimeout = def.BarcodeTimeout
	}
	return &Reconciler{gw: gw, log: log, cfg: cfg}
}

// LoadCatalog obtiene el catálogo con stock vigente.
func (r *Reconciler) LoadCatalog(ctx context.Context) ([]entity.CatalogItem, error) {
	cctx, cancel := context.WithTimeout(ctx, r.cfg.GatewayTimeout)
	defer cancel()
	items, err := r.gw.FetchProductCatalog(cctx)
	if err != nil {
		return nil, classify(cctx, err)
	}
	return items, nil
}

// Preview valida el borrador y calcula asignación y stock proyectado sin persistir.
func (r *Reconciler) Preview(_ context.Context, d *Draft) (*Plan, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	plan, err := buildPlan(d)
	if err != nil {
		d.fail(err)
		return nil, err
	}
	return plan, nil
}

// Submit valida, proyecta y persiste el borrador con una sola llamada (crear o actualizar).
// Confirmado el movimiento, guarda los seriales nuevos de cada fila con llamadas
// independientes: sus fallas quedan como advertencias, sin deshacer ni reintentar.
// Si la persistencia falla el borrador vuelve a Validated con el error.
func (r *Reconciler) Submit(ctx context.Context, d *Draft) (*SubmitResult, error) {
	if d.State() == StateCommitted || d.State() == StateSubmitting {
		return nil, fmt.Errorf("enviar borrador en estado %s: %w", d.State(), domain.ErrInvalidTransition)
	}
	plan, err := r.Preview(ctx, d)
	if err != nil {
		return nil, err
	}
	if err := d.beginSubmit(); err != nil {
		return nil, err
	}

	log := r.log.With().Str("direction", string(d.Direction)).Str("movement_id", d.MovementID).Logger()
	id, err := r.persist(ctx, d, &plan.Movement)
	if err != nil {
		d.fail(err)
		log.Warn().Err(err).Int("row", d.FailedRow).Msg("movimiento rechazado")
		return &SubmitResult{Outcome: OutcomeFailed, Plan: *plan}, err
	}
	d.commit(id, plan.Projections)
	plan.Movement.ID = id
	log.Info().Str("movement_id", id).Int("lines", len(plan.Movement.Lines)).
		Str("total", plan.Movement.Total.StringFixed(2)).Msg("movimiento confirmado")

	res := &SubmitResult{ID: id, Outcome: OutcomeCommitted, Plan: *plan}
	res.BarcodeFailures = r.saveBarcodes(ctx, d)
	if len(res.BarcodeFailures) > 0 {
		res.Outcome = OutcomePartial
	}
	return res, nil
}

// RetryBarcodes reintenta, a pedido del usuario, los seriales pendientes de un borrador confirmado.
func (r *Reconciler) RetryBarcodes(ctx context.Context, d *Draft) ([]BarcodeFailure, error) {
	if d.State() != StateCommitted {
		return nil, fmt.Errorf("guardar seriales en estado %s: %w", d.State(), domain.ErrInvalidTransition)
	}
	return r.saveBarcodes(ctx, d), nil
}

// Reopen pasa un borrador confirmado a edición sin volver a consultar el backend.
func (r *Reconciler) Reopen(d *Draft) error {
	return d.reopen()
}

// OpenEdit abre un movimiento existente para edición. Movimiento y catálogo se consultan
// en paralelo; el stock de cada fila se toma del catálogo si está disponible.
func (r *Reconciler) OpenEdit(ctx context.Context, dir entity.Direction, id string) (*Draft, error) {
	if !dir.Valid() {
		return nil, domain.NewValidationError("direction", "desconocida")
	}
	cctx, cancel := context.WithTimeout(ctx, r.cfg.GatewayTimeout)
	defer cancel()

	var (
		resolved *entity.ResolvedMovement
		catalog  []entity.CatalogItem
	)
	g, gctx := errgroup.WithContext(cctx)
	g.Go(func() error {
		m, err := r.gw.FetchStockMovementByID(gctx, dir, id)
		if err != nil {
			return fmt.Errorf("obtener movimiento: %w", err)
		}
		resolved = m
		return nil
	})
	g.Go(func() error {
		items, err := r.gw.FetchProductCatalog(gctx)
		if err != nil {
			return fmt.Errorf("obtener catálogo: %w", err)
		}
		catalog = items
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, classify(cctx, err)
	}
	return SeedEditDraft(resolved, catalog), nil
}

// Delete borra un movimiento; el backend revierte su efecto en el stock.
func (r *Reconciler) Delete(ctx context.Context, dir entity.Direction, id string) error {
	if !dir.Valid() {
		return domain.NewValidationError("direction", "desconocida")
	}
	cctx, cancel := context.WithTimeout(ctx, r.cfg.GatewayTimeout)
	defer cancel()
	if err := r.gw.DeleteStockMovement(cctx, dir, id); err != nil {
		err = classify(cctx, err)
		r.log.Warn().Err(err).Str("movement_id", id).Str("direction", string(dir)).Msg("borrado rechazado")
		return err
	}
	r.log.Info().Str("movement_id", id).Str("direction", string(dir)).Msg("movimiento borrado")
	return nil
}

// SeedEditDraft arma un borrador de edición desde un movimiento resuelto.
func SeedEditDraft(m *entity.ResolvedMovement, catalog []entity.CatalogItem) *Draft {
	mv := m.Movement
	d := &Draft{
		Direction:  mv.Direction,
		MovementID: mv.ID,
		Number:     mv.Number,
		CategoryID: mv.CategoryID,
		Date:       mv.Date,
		InvoiceNo:  mv.InvoiceNo,
		Notes:      mv.Notes,
		IsActive:   mv.IsActive,
		FailedRow:  -1,
		state:      StateEditOpened,
		editing:    true,
		snapshots:  make(map[string]entity.StockRecord, len(m.Lines)),
	}
	byID := make(map[string]entity.CatalogItem, len(catalog))
	for _, it := range catalog {
		byID[it.Product.ID] = it
	}
	for _, l := range m.Lines {
		row := &DraftRow{
			Product:          l.Product,
			OpeningStock:     l.OpeningStock,
			CurrentStock:     l.RemainingStock,
			OriginalQuantity: l.Quantity,
			Quantity:         l.Quantity,
		}
		barcodes := l.Barcodes
		if it, ok := byID[l.Product.ID]; ok {
			row.OpeningStock = it.OpeningStock
			row.CurrentStock = it.RemainingStock
			if len(it.Barcodes) > 0 {
				barcodes = it.Barcodes
			}
		}
		for _, b := range barcodes {
			if linkedTo(b, mv.Direction, mv.ID) {
				row.PersistedBarcodes = append(row.PersistedBarcodes, b.Serial)
			} else if mv.Direction == entity.DirectionIn || b.StockOutID != "" {
				row.reservedSerials = append(row.reservedSerials, b.Serial)
			}
		}
		d.Rows = append(d.Rows, row)
		d.original = append(d.original, entity.LineItem{ProductID: l.Product.ID, Quantity: l.Quantity})
		d.snapshots[l.Product.ID] = entity.StockRecord{
			ProductID:      l.Product.ID,
			OpeningStock:   row.OpeningStock,
			RemainingStock: row.CurrentStock,
		}
	}
	if len(d.Rows) == 0 {
		d.Rows = append(d.Rows, &DraftRow{})
	}
	return d
}

func linkedTo(b entity.Barcode, dir entity.Direction, id string) bool {
	if dir == entity.DirectionIn {
		return b.StockInID == id
	}
	return b.StockOutID == id
}

func (r *Reconciler) persist(ctx context.Context, d *Draft, mv *entity.StockMovement) (string, error) {
	cctx, cancel := context.WithTimeout(ctx, r.cfg.GatewayTimeout)
	defer cancel()
	if d.MovementID == "" {
		id, err := r.gw.SubmitStockMovement(cctx, mv)
		if err != nil {
			return "", classify(cctx, err)
		}
		return id, nil
	}
	if err := r.gw.UpdateStockMovement(cctx, d.MovementID, mv); err != nil {
		return "", classify(cctx, err)
	}
	return d.MovementID, nil
}

func (r *Reconciler) saveBarcodes(ctx context.Context, d *Draft) []BarcodeFailure {
	link := entity.BarcodeLink{StockInID: d.MovementID}
	if d.Direction == entity.DirectionOut {
		link = entity.BarcodeLink{StockOutID: d.MovementID}
	}
	var failures []BarcodeFailure
	for i, row := range d.Rows {
		if row.Product.ID == "" || len(row.Barcodes) == 0 {
			continue
		}
		serials := append([]string(nil), row.Barcodes...)
		cctx, cancel := context.WithTimeout(ctx, r.cfg.BarcodeTimeout)
		err := r.gw.SaveBarcodes(cctx, row.Product.ID, serials, link)
		if err != nil {
			err = classify(cctx, err)
		}
		cancel()
		if err != nil {
			r.log.Warn().Err(err).Str("movement_id", d.MovementID).Str("product_id", row.Product.ID).
				Int("serials", len(serials)).Msg("no se guardaron los seriales")
			failures = append(failures, BarcodeFailure{Row: i, ProductID: row.Product.ID, Serials: serials, Err: err})
			d.Warnings = append(d.Warnings, fmt.Sprintf("seriales de %s no guardados: %v", row.Product.Name, err))
			continue
		}
		row.PersistedBarcodes = append(row.PersistedBarcodes, serials...)
		row.Barcodes = nil
	}
	return failures
}

// buildPlan arma el movimiento, la asignación y la proyección de stock. Una proyección
// negativa se rechaza con ErrInsufficientStock ligado a la fila.
func buildPlan(d *Draft) (*Plan, error) {
	mv := d.Movement()
	items := d.allocationItems()
	amounts := ledger.Allocate(mv.Total, items)
	plan := &Plan{Movement: mv, Allocations: make([]Allocation, len(items))}
	for i, it := range items {
		plan.Allocations[i] = Allocation{ProductID: it.ProductID, Quantity: it.Quantity, Amount: amounts[i]}
	}

	for _, delta := range ledger.DiffLines(d.original, mv.Lines) {
		rec := d.snapshot(delta.ProductID)
		before := rec
		var err error
		switch {
		case delta.Original == 0 && d.Direction == entity.DirectionIn:
			err = ledger.ApplyStockIn(&rec, delta.Updated)
		case delta.Original == 0:
			err = ledger.ApplyStockOut(&rec, delta.Updated)
		default:
			err = ledger.ApplyDelta(&rec, d.Direction, delta.Delta())
		}
		if err != nil {
			return nil, &domain.RowError{Row: d.RowIndex(delta.ProductID), ProductID: delta.ProductID, Err: err}
		}
		plan.Projections = append(plan.Projections, StockProjection{
			ProductID:       delta.ProductID,
			Delta:           delta.Delta(),
			OpeningBefore:   before.OpeningStock,
			OpeningAfter:    rec.OpeningStock,
			RemainingBefore: before.RemainingStock,
			RemainingAfter:  rec.RemainingStock,
		})
	}
	return plan, nil
}

func (d *Draft) snapshot(productID string) entity.StockRecord {
	if i := d.RowIndex(productID); i >= 0 {
		r := d.Rows[i]
		return entity.StockRecord{ProductID: productID, OpeningStock: r.OpeningStock, RemainingStock: r.CurrentStock}
	}
	return d.snapshots[productID]
}

// classify traduce cancelaciones por tiempo a ErrTimeout.
func classify(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrTimeout) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", domain.ErrTimeout, err)
	}
	return err
}

func rowOf(err error) int {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return ve.Row
	}
	if re := asRowError(err); re != nil {
		return re.Row
	}
	return -1
}

func asRowError(err error) *domain.RowError {
	var re *domain.RowError
	if errors.As(err, &re) {
		return re
	}
	return nil
}
