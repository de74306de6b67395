package ledger

import (
	"fmt"
	"time"

	"github.com/jhoicas/pos-ledger/internal/domain"
	"github.com/jhoicas/pos-ledger/internal/domain/entity"
)

// DraftFromMovement arma un borrador nuevo a partir de un movimiento recibido por cable,
// resolviendo cada línea contra el catálogo. serials (por producto) es opcional.
// Las advertencias de recorte quedan en Draft.Warnings.
func DraftFromMovement(m *entity.StockMovement, catalog []entity.CatalogItem, serials map[string][]string, now time.Time) (*Draft, error) {
	d := NewDraft(m.Direction, now)
	if err := d.SetCategory(m.CategoryID); err != nil {
		return nil, err
	}
	if !m.Date.IsZero() {
		if err := d.SetDate(m.Date); err != nil {
			return nil, err
		}
	}
	if err := d.SetInvoice(m.InvoiceNo); err != nil {
		return nil, err
	}
	if err := d.SetNotes(m.Notes); err != nil {
		return nil, err
	}
	d.IsActive = m.IsActive

	byID := make(map[string]entity.CatalogItem, len(catalog))
	for _, it := range catalog {
		byID[it.Product.ID] = it
	}
	for _, l := range m.Lines {
		i, err := d.AddRow()
		if err != nil {
			return nil, err
		}
		item, ok := byID[l.ProductID]
		if !ok {
			return nil, domain.NewRowValidationError(i, "itemId", fmt.Sprintf("producto %s no está en el catálogo", l.ProductID))
		}
		if err := d.SelectProduct(i, item); err != nil {
			return nil, err
		}
		if _, err := d.SetQuantity(i, l.Quantity); err != nil {
			return nil, err
		}
		for _, s := range serials[l.ProductID] {
			if err := d.AddBarcode(i, s); err != nil {
				return nil, err
			}
		}
	}
	return d, nil
}
