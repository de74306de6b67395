package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-ledger/internal/domain"
	"github.com/jhoicas/pos-ledger/internal/domain/entity"
	"github.com/jhoicas/pos-ledger/internal/domain/ledger"
)

// DraftState estado de un borrador de movimiento.
//
//	Draft → Validated → Submitting → {Committed | Failed→Validated}
//	Committed → EditOpened → Validated → Submitting → …
type DraftState string

const (
	StateDraft      DraftState = "draft"
	StateEditOpened DraftState = "edit_opened"
	StateValidated  DraftState = "validated"
	StateSubmitting DraftState = "submitting"
	StateCommitted  DraftState = "committed"
	StateFailed     DraftState = "failed"
)

// RowState estado de una fila: Empty → ProductSelected → QuantitySet.
type RowState string

const (
	RowEmpty           RowState = "empty"
	RowProductSelected RowState = "product_selected"
	RowQuantitySet     RowState = "quantity_set"
)

// DraftRow es una línea en edición con la foto de stock del producto.
type DraftRow struct {
	Product          entity.Product
	OpeningStock     int64
	CurrentStock     int64 // remainingStock al seleccionar/abrir
	OriginalQuantity int64 // cantidad ya reflejada en el stock (edición)
	Quantity         int64

	Barcodes          []string // seriales nuevos, aún no guardados
	PersistedBarcodes []string // seriales ya ligados a este movimiento
	reservedSerials   []string // seriales que no pueden volver a registrarse
}

// State devuelve el estado de la fila.
func (r *DraftRow) State() RowState {
	switch {
	case r.Product.ID == "":
		return RowEmpty
	case r.Quantity > 0:
		return RowQuantitySet
	default:
		return RowProductSelected
	}
}

// Available es el máximo que una salida puede pedir para esta fila.
// En edición incluye la cantidad original, que ya fue descontada del stock.
func (r *DraftRow) Available() int64 {
	return r.CurrentStock + r.OriginalQuantity
}

// TotalAfter es el disponible proyectado si se confirma la fila.
func (r *DraftRow) TotalAfter(dir entity.Direction) int64 {
	rec := entity.StockRecord{RemainingStock: r.CurrentStock}
	return ledger.ProjectedRemaining(rec, r.Quantity-r.OriginalQuantity, dir)
}

// LineTotal es precio base * cantidad.
func (r *DraftRow) LineTotal(dir entity.Direction) decimal.Decimal {
	return r.Product.BasePrice(dir).Mul(decimal.NewFromInt(r.Quantity))
}

// AllBarcodes devuelve los seriales persistidos más los nuevos.
func (r *DraftRow) AllBarcodes() []string {
	out := make([]string, 0, len(r.PersistedBarcodes)+len(r.Barcodes))
	out = append(out, r.PersistedBarcodes...)
	return append(out, r.Barcodes...)
}

// Draft es un movimiento en preparación. No contiene estado de presentación.
type Draft struct {
	Direction  entity.Direction
	MovementID string // vacío en creación
	Number     string
	CategoryID string
	Date       time.Time
	InvoiceNo  string
	Notes      string
	IsActive   bool
	Rows       []*DraftRow

	// LastError es el último rechazo (validación o persistencia); FailedRow su fila o -1.
	LastError error
	FailedRow int
	Warnings  []string

	state     DraftState
	editing   bool
	original  []entity.LineItem
	snapshots map[string]entity.StockRecord
}

// NewDraft crea un borrador vacío con fecha de hoy.
func NewDraft(dir entity.Direction, now time.Time) *Draft {
	y, m, d := now.Date()
	return &Draft{
		Direction: dir,
		Date:      time.Date(y, m, d, 0, 0, 0, 0, now.Location()),
		IsActive:  true,
		FailedRow: -1,
		state:     StateDraft,
		snapshots: make(map[string]entity.StockRecord),
	}
}

// State devuelve el estado actual.
func (d *Draft) State() DraftState { return d.state }

// IsEdit indica si el borrador edita un movimiento confirmado.
func (d *Draft) IsEdit() bool { return d.editing }

// Original devuelve las líneas ya reflejadas en el stock.
func (d *Draft) Original() []entity.LineItem {
	out := make([]entity.LineItem, len(d.original))
	copy(out, d.original)
	return out
}

// touch registra una modificación: un borrador validado vuelve a edición libre.
func (d *Draft) touch() error {
	switch d.state {
	case StateSubmitting, StateCommitted:
		return fmt.Errorf("modificar borrador en estado %s: %w", d.state, domain.ErrInvalidTransition)
	}
	if d.editing {
		d.state = StateEditOpened
	} else {
		d.state = StateDraft
	}
	return nil
}

func (d *Draft) row(i int) (*DraftRow, error) {
	if i < 0 || i >= len(d.Rows) {
		return nil, domain.NewValidationError("row", fmt.Sprintf("índice %d fuera de rango", i))
	}
	return d.Rows[i], nil
}

// SetCategory fija la categoría.
func (d *Draft) SetCategory(id string) error {
	if err := d.touch(); err != nil {
		return err
	}
	d.CategoryID = id
	return nil
}

// SetDate fija la fecha del movimiento.
func (d *Draft) SetDate(t time.Time) error {
	if err := d.touch(); err != nil {
		return err
	}
	d.Date = t
	return nil
}

// SetInvoice fija el número de factura.
func (d *Draft) SetInvoice(invoiceNo string) error {
	if err := d.touch(); err != nil {
		return err
	}
	d.InvoiceNo = invoiceNo
	return nil
}

// SetNotes fija las notas.
func (d *Draft) SetNotes(notes string) error {
	if err := d.touch(); err != nil {
		return err
	}
	d.Notes = notes
	return nil
}

// AddRow agrega una fila vacía y devuelve su índice.
func (d *Draft) AddRow() (int, error) {
	if err := d.touch(); err != nil {
		return -1, err
	}
	d.Rows = append(d.Rows, &DraftRow{})
	return len(d.Rows) - 1, nil
}

// SelectProduct asigna un producto del catálogo a la fila i. Un producto ya presente
// en otra fila se rechaza.
func (d *Draft) SelectProduct(i int, item entity.CatalogItem) error {
	if err := d.touch(); err != nil {
		return err
	}
	r, err := d.row(i)
	if err != nil {
		return err
	}
	if strings.TrimSpace(item.Product.ID) == "" {
		return domain.NewRowValidationError(i, "itemId", "producto sin identificador")
	}
	for j, other := range d.Rows {
		if j != i && other.Product.ID == item.Product.ID {
			return domain.NewRowValidationError(i, "itemId", fmt.Sprintf("%s ya está en la fila %d", item.Product.Name, j+1))
		}
	}
	*r = DraftRow{
		Product:          item.Product,
		OpeningStock:     item.OpeningStock,
		CurrentStock:     item.RemainingStock,
		OriginalQuantity: d.originalQuantity(item.Product.ID),
		reservedSerials:  reservedSerials(d.Direction, item.Barcodes),
	}
	if d.snapshots == nil {
		d.snapshots = make(map[string]entity.StockRecord)
	}
	d.snapshots[item.Product.ID] = entity.StockRecord{
		ProductID:      item.Product.ID,
		OpeningStock:   item.OpeningStock,
		RemainingStock: item.RemainingStock,
	}
	return nil
}

// SetQuantity fija la cantidad de la fila i. Negativos pasan a 0. En salidas la cantidad
// se recorta al stock disponible y se registra una advertencia; devuelve la cantidad efectiva.
func (d *Draft) SetQuantity(i int, qty int64) (int64, error) {
	if err := d.touch(); err != nil {
		return 0, err
	}
	r, err := d.row(i)
	if err != nil {
		return 0, err
	}
	if r.Product.ID == "" {
		return 0, domain.NewRowValidationError(i, "itemId", "seleccione un producto primero")
	}
	if qty < 0 {
		qty = 0
	}
	if d.Direction == entity.DirectionOut {
		var clamped bool
		qty, clamped = ledger.ClampStockOut(r.Available(), qty)
		if clamped {
			d.Warnings = append(d.Warnings, fmt.Sprintf("no se puede vender más del stock disponible (%d) de %s", r.Available(), r.Product.Name))
		}
		r.Barcodes = ledger.TrimToQuantity(r.Barcodes, qty-int64(len(r.PersistedBarcodes)))
	}
	r.Quantity = qty
	return qty, nil
}

// ClearRow devuelve la fila i a vacía.
func (d *Draft) ClearRow(i int) error {
	if err := d.touch(); err != nil {
		return err
	}
	r, err := d.row(i)
	if err != nil {
		return err
	}
	*r = DraftRow{}
	return nil
}

// RemoveRow elimina la fila i. Siempre queda al menos una fila vacía.
func (d *Draft) RemoveRow(i int) error {
	if err := d.touch(); err != nil {
		return err
	}
	if _, err := d.row(i); err != nil {
		return err
	}
	d.Rows = append(d.Rows[:i], d.Rows[i+1:]...)
	if len(d.Rows) == 0 {
		d.Rows = append(d.Rows, &DraftRow{})
	}
	return nil
}

// AddBarcode agrega un serial a la fila i.
func (d *Draft) AddBarcode(i int, serial string) error {
	if err := d.touch(); err != nil {
		return err
	}
	r, err := d.row(i)
	if err != nil {
		return err
	}
	if r.Product.ID == "" {
		return domain.NewRowValidationError(i, "itemId", "seleccione un producto primero")
	}
	known := append(append([]string{}, r.reservedSerials...), r.PersistedBarcodes...)
	next, err := ledger.AddBarcode(r.Barcodes, serial, known)
	if err != nil {
		return &domain.RowError{Row: i, ProductID: r.Product.ID, Err: err}
	}
	r.Barcodes = next
	return nil
}

// RemoveBarcode quita el serial nuevo j de la fila i.
func (d *Draft) RemoveBarcode(i, j int) error {
	if err := d.touch(); err != nil {
		return err
	}
	r, err := d.row(i)
	if err != nil {
		return err
	}
	r.Barcodes = ledger.RemoveBarcode(r.Barcodes, j)
	return nil
}

// Validate verifica el borrador y, si es válido, lo pasa a Validated.
func (d *Draft) Validate() error {
	if err := d.touch(); err != nil {
		return err
	}
	if err := d.validate(); err != nil {
		d.LastError = err
		d.FailedRow = rowOf(err)
		return err
	}
	d.LastError = nil
	d.FailedRow = -1
	d.state = StateValidated
	return nil
}

func (d *Draft) validate() error {
	if !d.Direction.Valid() {
		return domain.NewValidationError("direction", "desconocida")
	}
	if d.CategoryID == "" {
		return domain.NewValidationError("category", "seleccione una categoría")
	}
	if d.Date.IsZero() {
		return domain.NewValidationError("date", "requerida")
	}
	selected := 0
	seen := make(map[string]int, len(d.Rows))
	mode := ledger.ModeFor(d.Direction)
	for i, r := range d.Rows {
		if r.Product.ID == "" {
			continue
		}
		if j, dup := seen[r.Product.ID]; dup {
			return domain.NewRowValidationError(i, "itemId", fmt.Sprintf("producto repetido (fila %d)", j+1))
		}
		seen[r.Product.ID] = i
		if r.Quantity <= 0 {
			return domain.NewRowValidationError(i, "quantity", fmt.Sprintf("debe ser mayor que 0 para %s", r.Product.Name))
		}
		if d.Direction == entity.DirectionOut && r.Quantity > r.Available() {
			return domain.NewRowValidationError(i, "quantity", fmt.Sprintf("supera el stock disponible (%d)", r.Available()))
		}
		if err := ledger.ValidateBarcodeCount(r.AllBarcodes(), r.Quantity, r.Product.IsSerialized, mode); err != nil {
			return &domain.RowError{Row: i, ProductID: r.Product.ID, Err: err}
		}
		selected++
	}
	if selected == 0 {
		return domain.NewValidationError("items", "agregue al menos un producto con cantidad")
	}
	return nil
}

// Lines devuelve las líneas válidas (producto y cantidad > 0) en orden de filas.
func (d *Draft) Lines() []entity.LineItem {
	lines := make([]entity.LineItem, 0, len(d.Rows))
	for _, r := range d.Rows {
		if r.Product.ID != "" && r.Quantity > 0 {
			lines = append(lines, entity.LineItem{ProductID: r.Product.ID, Quantity: r.Quantity})
		}
	}
	return lines
}

func (d *Draft) allocationItems() []ledger.AllocationItem {
	items := make([]ledger.AllocationItem, 0, len(d.Rows))
	for _, r := range d.Rows {
		if r.Product.ID != "" && r.Quantity > 0 {
			items = append(items, ledger.AllocationItem{
				ProductID: r.Product.ID,
				Price:     r.Product.BasePrice(d.Direction),
				Quantity:  r.Quantity,
			})
		}
	}
	return items
}

// Total es el monto agregado de escritura: Σ precio base * cantidad.
func (d *Draft) Total() decimal.Decimal {
	return ledger.ExtendedTotal(d.allocationItems())
}

// Movement arma el movimiento a persistir.
func (d *Draft) Movement() entity.StockMovement {
	return entity.StockMovement{
		ID:         d.MovementID,
		Direction:  d.Direction,
		Number:     d.Number,
		CategoryID: d.CategoryID,
		Date:       d.Date,
		InvoiceNo:  d.InvoiceNo,
		Notes:      d.Notes,
		IsActive:   d.IsActive,
		Lines:      d.Lines(),
		Total:      d.Total(),
	}
}

// RowIndex devuelve la fila del producto o -1.
func (d *Draft) RowIndex(productID string) int {
	for i, r := range d.Rows {
		if r.Product.ID == productID {
			return i
		}
	}
	return -1
}

func (d *Draft) originalQuantity(productID string) int64 {
	for _, l := range d.original {
		if l.ProductID == productID {
			return l.Quantity
		}
	}
	return 0
}

func (d *Draft) beginSubmit() error {
	if d.state != StateValidated {
		return fmt.Errorf("enviar borrador en estado %s: %w", d.state, domain.ErrInvalidTransition)
	}
	d.state = StateSubmitting
	return nil
}

// fail registra el rechazo y devuelve el borrador a Validated (editable).
func (d *Draft) fail(err error) {
	d.state = StateFailed
	d.LastError = err
	d.FailedRow = rowOf(err)
	if d.FailedRow < 0 {
		if rowErr := asRowError(err); rowErr != nil {
			d.FailedRow = d.RowIndex(rowErr.ProductID)
		}
	}
	d.state = StateValidated
}

// commit confirma el borrador: lo guardado pasa a ser la versión original y el stock
// de cada fila toma el valor proyectado.
func (d *Draft) commit(id string, projections []StockProjection) {
	d.MovementID = id
	d.original = d.Lines()
	if d.snapshots == nil {
		d.snapshots = make(map[string]entity.StockRecord, len(projections))
	}
	for _, p := range projections {
		rec := entity.StockRecord{ProductID: p.ProductID, OpeningStock: p.OpeningAfter, RemainingStock: p.RemainingAfter}
		d.snapshots[p.ProductID] = rec
		if i := d.RowIndex(p.ProductID); i >= 0 {
			d.Rows[i].OpeningStock = rec.OpeningStock
			d.Rows[i].CurrentStock = rec.RemainingStock
		}
	}
	for _, r := range d.Rows {
		r.OriginalQuantity = r.Quantity
	}
	d.LastError = nil
	d.FailedRow = -1
	d.state = StateCommitted
}

// reopen abre un movimiento confirmado para edición.
func (d *Draft) reopen() error {
	if d.state != StateCommitted {
		return fmt.Errorf("editar borrador en estado %s: %w", d.state, domain.ErrInvalidTransition)
	}
	d.editing = true
	d.state = StateEditOpened
	return nil
}

func reservedSerials(dir entity.Direction, barcodes []entity.Barcode) []string {
	out := make([]string, 0, len(barcodes))
	for _, b := range barcodes {
		// en salidas solo bloquean las unidades ya despachadas
		if dir == entity.DirectionOut && b.StockOutID == "" {
			continue
		}
		out = append(out, b.Serial)
	}
	return out
}
