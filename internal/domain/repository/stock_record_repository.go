package repository

import (
	"context"

	"github.com/jhoicas/pos-ledger/internal/domain/entity"
)

// StockRecordRepository define el puerto para la tarjeta de stock por producto.
// Usado dentro de transacciones para garantizar consistencia.
type StockRecordRepository interface {
	// Get devuelve un registro en cero (Version 0) si el producto aún no tiene stock.
	Get(ctx context.Context, productID string) (*entity.StockRecord, error)
	// GetForUpdate bloquea la fila para update (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, productID string) (*entity.StockRecord, error)
	// Save inserta (Version 0) o actualiza si la versión coincide; si no, ErrConflict.
	// Incrementa rec.Version.
	Save(ctx context.Context, rec *entity.StockRecord) error
	List(ctx context.Context) ([]*entity.StockRecord, error)

	AddEntry(ctx context.Context, e *entity.StockEntry) error
	ListEntries(ctx context.Context, productID string) ([]entity.StockEntry, error)
	DeleteEntriesByMovement(ctx context.Context, movementID string) error
}
