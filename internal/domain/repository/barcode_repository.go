package repository

import (
	"context"

	"github.com/jhoicas/pos-ledger/internal/domain/entity"
)

// BarcodeRepository define el puerto de persistencia de unidades serializadas.
type BarcodeRepository interface {
	// Create falla con ErrDuplicateBarcode si el serial ya existe para el producto.
	Create(ctx context.Context, b *entity.Barcode) error
	// GetForUpdate busca por producto y serial y bloquea la fila; nil, nil si no existe.
	GetForUpdate(ctx context.Context, productID, serial string) (*entity.Barcode, error)
	LinkStockOut(ctx context.Context, id, stockOutID string) error
	ListByProduct(ctx context.Context, productID string) ([]entity.Barcode, error)
	ListByMovement(ctx context.Context, dir entity.Direction, movementID string) ([]entity.Barcode, error)
	// Unlink desliga las unidades de un movimiento: borra las de una entrada y
	// devuelve a stock las de una salida. productID vacío aplica a todo el movimiento.
	Unlink(ctx context.Context, dir entity.Direction, movementID, productID string) error
}
