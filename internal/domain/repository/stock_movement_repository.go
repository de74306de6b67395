package repository

import (
	"context"
	"time"

	"github.com/jhoicas/pos-ledger/internal/domain/entity"
)

// MovementFilter filtros de listado de movimientos.
type MovementFilter struct {
	Direction  entity.Direction
	CategoryID string
	From       *time.Time
	To         *time.Time
	Active     *bool
	Limit      int
	Offset     int
}

// StockMovementRepository define el puerto de persistencia para entradas y salidas (DIP).
type StockMovementRepository interface {
	// Create asigna el consecutivo (Number). Factura repetida en la categoría → ErrDuplicateInvoice.
	Create(ctx context.Context, m *entity.StockMovement) error
	Update(ctx context.Context, m *entity.StockMovement) error
	Delete(ctx context.Context, dir entity.Direction, id string) error
	// GetByID devuelve nil, nil si no existe.
	GetByID(ctx context.Context, dir entity.Direction, id string) (*entity.StockMovement, error)
	List(ctx context.Context, f MovementFilter) ([]*entity.StockMovement, error)
}
