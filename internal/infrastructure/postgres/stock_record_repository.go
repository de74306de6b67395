package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/pos-ledger/internal/domain"
	"github.com/jhoicas/pos-ledger/internal/domain/entity"
	"github.com/jhoicas/pos-ledger/internal/domain/repository"
)

var _ repository.StockRecordRepository = (*StockRecordRepo)(nil)

// StockRecordRepo tarjetas de stock sobre PostgreSQL (usable con pool o tx).
type StockRecordRepo struct {
	q Querier
}

// NewStockRecordRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRecordRepository(q Querier) *StockRecordRepo {
	return &StockRecordRepo{q: q}
}

func (r *StockRecordRepo) get(ctx context.Context, productID string, lock bool) (*entity.StockRecord, error) {
	query := `
		SELECT product_id, opening_stock, remaining_stock, version, created_at, updated_at
		FROM stock_records WHERE product_id = $1`
	if lock {
		query += ` FOR UPDATE`
	}
	var s entity.StockRecord
	err := r.q.QueryRow(ctx, query, productID).Scan(
		&s.ProductID, &s.OpeningStock, &s.RemainingStock, &s.Version, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &entity.StockRecord{ProductID: productID}, nil
		}
		return nil, fmt.Errorf("get stock record: %w", err)
	}
	return &s, nil
}

// Get obtiene la tarjeta de un producto; en cero si no existe.
func (r *StockRecordRepo) Get(ctx context.Context, productID string) (*entity.StockRecord, error) {
	return r.get(ctx, productID, false)
}

// GetForUpdate obtiene la tarjeta y bloquea la fila para update (SELECT FOR UPDATE).
func (r *StockRecordRepo) GetForUpdate(ctx context.Context, productID string) (*entity.StockRecord, error) {
	return r.get(ctx, productID, true)
}

// Save inserta o actualiza con control de versión.
func (r *StockRecordRepo) Save(ctx context.Context, rec *entity.StockRecord) error {
	if rec.Version == 0 {
		query := `
			INSERT INTO stock_records (product_id, opening_stock, remaining_stock, version, created_at, updated_at)
			VALUES ($1, $2, $3, 1, now(), now())
			ON CONFLICT (product_id) DO NOTHING`
		tag, err := r.q.Exec(ctx, query, rec.ProductID, rec.OpeningStock, rec.RemainingStock)
		if err != nil {
			return fmt.Errorf("insert stock record: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("stock de %s: %w", rec.ProductID, domain.ErrConflict)
		}
		rec.Version = 1
		return nil
	}
	query := `
		UPDATE stock_records
		SET opening_stock = $2, remaining_stock = $3, version = version + 1, updated_at = now()
		WHERE product_id = $1 AND version = $4`
	tag, err := r.q.Exec(ctx, query, rec.ProductID, rec.OpeningStock, rec.RemainingStock, rec.Version)
	if err != nil {
		return fmt.Errorf("update stock record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("stock de %s: %w", rec.ProductID, domain.ErrConflict)
	}
	rec.Version++
	return nil
}

// List lista las tarjetas existentes.
func (r *StockRecordRepo) List(ctx context.Context) ([]*entity.StockRecord, error) {
	query := `
		SELECT product_id, opening_stock, remaining_stock, version, created_at, updated_at
		FROM stock_records ORDER BY product_id`
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list stock records: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockRecord
	for rows.Next() {
		var s entity.StockRecord
		if err := rows.Scan(&s.ProductID, &s.OpeningStock, &s.RemainingStock, &s.Version, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan stock record: %w", err)
		}
		list = append(list, &s)
	}
	return list, rows.Err()
}

// AddEntry registra un asiento en la tarjeta.
func (r *StockRecordRepo) AddEntry(ctx context.Context, e *entity.StockEntry) error {
	query := `
		INSERT INTO stock_entries (id, product_id, movement_id, type, quantity, reference, entry_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query, e.ID, e.ProductID, nullable(e.MovementID), e.Type, e.Quantity, e.Reference, e.Date)
	if err != nil {
		return fmt.Errorf("insert stock entry: %w", err)
	}
	return nil
}

// ListEntries lista los asientos de un producto por fecha.
func (r *StockRecordRepo) ListEntries(ctx context.Context, productID string) ([]entity.StockEntry, error) {
	query := `
		SELECT id, product_id, movement_id::text, type, quantity, reference, entry_date
		FROM stock_entries WHERE product_id = $1
		ORDER BY entry_date, id`
	rows, err := r.q.Query(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("list stock entries: %w", err)
	}
	defer rows.Close()
	var list []entity.StockEntry
	for rows.Next() {
		var e entity.StockEntry
		var movementID *string
		if err := rows.Scan(&e.ID, &e.ProductID, &movementID, &e.Type, &e.Quantity, &e.Reference, &e.Date); err != nil {
			return nil, fmt.Errorf("scan stock entry: %w", err)
		}
		e.MovementID = deref(movementID)
		list = append(list, e)
	}
	return list, rows.Err()
}

// DeleteEntriesByMovement borra los asientos de un movimiento.
func (r *StockRecordRepo) DeleteEntriesByMovement(ctx context.Context, movementID string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM stock_entries WHERE movement_id = $1`, movementID); err != nil {
		return fmt.Errorf("delete stock entries: %w", err)
	}
	return nil
}
