// Package ledger reúne la lógica de cliente del ledger de stock: borradores con su
// validación, conciliación contra el gateway (envío, edición, borrado con plazo y
// clasificación de errores) y las vistas de reporte. Los handlers HTTP lo usan para
// previsualizar, borrar y reportar; una interfaz de caja lo usa completo.
package ledger

import (
	"context"
	"time"

	"github.com/jhoicas/pos-ledger/internal/domain/entity"
)

// ListFilter filtros de listado de movimientos (paginado).
type ListFilter struct {
	Direction  entity.Direction
	CategoryID string
	From       *time.Time
	To         *time.Time
	Active     *bool
	Limit      int
	Offset     int
}

// StockMovementGateway es el borde de acceso a datos del ledger (DIP). El backend es
// responsable de la atomicidad de cada operación y del rechazo autoritativo de stock insuficiente.
type StockMovementGateway interface {
	// FetchProductCatalog devuelve productos con su stock vigente (para selectores y validación).
	FetchProductCatalog(ctx context.Context) ([]entity.CatalogItem, error)
	// SubmitStockMovement crea una entrada o salida y devuelve su ID. No es idempotente.
	SubmitStockMovement(ctx context.Context, movement *entity.StockMovement) (string, error)
	// UpdateStockMovement reemplaza un movimiento existente.
	UpdateStockMovement(ctx context.Context, id string, movement *entity.StockMovement) error
	DeleteStockMovement(ctx context.Context, dir entity.Direction, id string) error
	// FetchStockMovementByID devuelve el movimiento con productos y stock resueltos.
	FetchStockMovementByID(ctx context.Context, dir entity.Direction, id string) (*entity.ResolvedMovement, error)
	// SaveBarcodes liga seriales a un producto y a un movimiento ya confirmado.
	SaveBarcodes(ctx context.Context, productID string, serials []string, link entity.BarcodeLink) error
	ListStockMovements(ctx context.Context, filter ListFilter) ([]*entity.ResolvedMovement, error)
	// ListStockRecords devuelve las tarjetas de stock por producto con sus asientos.
	ListStockRecords(ctx context.Context) ([]entity.StockRecord, error)
}
