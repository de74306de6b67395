package stock

import (
	"context"

	"github.com/jhoicas/pos-ledger/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Garantiza que un movimiento y su efecto en el stock se apliquen completos o no se apliquen.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		movRepo repository.StockMovementRepository,
		recordRepo repository.StockRecordRepository,
		productRepo repository.ProductRepository,
		barcodeRepo repository.BarcodeRepository,
	) error) error
}
