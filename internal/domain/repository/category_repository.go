package repository

import (
	"context"

	"github.com/jhoicas/pos-ledger/internal/domain/entity"
)

// CategoryRepository define el puerto de lectura de categorías de entrada/salida.
type CategoryRepository interface {
	// GetByID devuelve nil, nil si no existe.
	GetByID(ctx context.Context, id string) (*entity.Category, error)
	List(ctx context.Context, dir entity.Direction) ([]*entity.Category, error)
}
