package stock

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jhoicas/pos-ledger/internal/domain"
	"github.com/jhoicas/pos-ledger/internal/domain/entity"
	domainledger "github.com/jhoicas/pos-ledger/internal/domain/ledger"
	"github.com/jhoicas/pos-ledger/internal/domain/repository"
)

// SaveBarcodes liga seriales a un producto de un movimiento confirmado. En una entrada
// registra unidades nuevas; en una salida despacha unidades que estén en stock.
// Todo el lote se guarda o nada.
func (uc *MovementUseCase) SaveBarcodes(ctx context.Context, productID string, serials []string, link entity.BarcodeLink) error {
	dir, movementID, err := linkTarget(link)
	if err != nil {
		return err
	}
	var clean []string
	for _, s := range serials {
		if clean, err = domainledger.AddBarcode(clean, s, nil); err != nil {
			return err
		}
	}
	if len(clean) == 0 {
		return domain.NewValidationError("barcode_serila", "se requiere al menos un serial")
	}

	err = uc.txRunner.Run(ctx, func(
		movRepo repository.StockMovementRepository,
		_ repository.StockRecordRepository,
		productRepo repository.ProductRepository,
		barcodeRepo repository.BarcodeRepository,
	) error {
		p, err := productRepo.GetByID(ctx, productID)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.ErrNotFound
		}
		m, err := movRepo.GetByID(ctx, dir, movementID)
		if err != nil {
			return err
		}
		if m == nil {
			return domain.ErrNotFound
		}
		qty := lineQuantity(m, productID)
		if qty == 0 {
			return domain.NewValidationError("productId", "el producto no está en el movimiento")
		}
		linked, err := barcodeRepo.ListByMovement(ctx, dir, movementID)
		if err != nil {
			return err
		}
		var already int64
		for _, b := range linked {
			if b.ProductID == productID {
				already++
			}
		}
		if already+int64(len(clean)) > qty {
			return fmt.Errorf("%d seriales para %d unidades: %w", already+int64(len(clean)), qty, domain.ErrBarcodeCount)
		}

		for _, serial := range clean {
			existing, err := barcodeRepo.GetForUpdate(ctx, productID, serial)
			if err != nil {
				return err
			}
			if dir == entity.DirectionIn {
				if existing != nil {
					if err := domainledger.CheckAttachable(*existing, dir); err != nil {
						return err
					}
				}
				now := uc.now()
				if err := barcodeRepo.Create(ctx, &entity.Barcode{
					ID:        uuid.New().String(),
					ProductID: productID,
					Serial:    serial,
					StockInID: movementID,
					CreatedAt: now,
					UpdatedAt: now,
				}); err != nil {
					return err
				}
				continue
			}
			if existing == nil {
				return fmt.Errorf("%q: %w", serial, domain.ErrBarcodeNotInStock)
			}
			if err := domainledger.CheckAttachable(*existing, dir); err != nil {
				return err
			}
			if err := barcodeRepo.LinkStockOut(ctx, existing.ID, movementID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		uc.log.Warn().Err(err).Str("product_id", productID).Str("movement_id", movementID).Msg("seriales rechazados")
		return err
	}
	uc.log.Info().Str("product_id", productID).Str("movement_id", movementID).Int("serials", len(clean)).Msg("seriales guardados")
	return nil
}

func linkTarget(link entity.BarcodeLink) (entity.Direction, string, error) {
	switch {
	case link.StockInID != "" && link.StockOutID == "":
		return entity.DirectionIn, link.StockInID, nil
	case link.StockOutID != "" && link.StockInID == "":
		return entity.DirectionOut, link.StockOutID, nil
	}
	return "", "", domain.NewValidationError("stockInId", "indique stockInId o stockoutId")
}

func lineQuantity(m *entity.StockMovement, productID string) int64 {
	for _, l := range m.Lines {
		if l.ProductID == productID {
			return l.Quantity
		}
	}
	return 0
}
