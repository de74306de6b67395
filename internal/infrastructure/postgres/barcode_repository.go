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

var _ repository.BarcodeRepository = (*BarcodeRepo)(nil)

// BarcodeRepo unidades serializadas sobre PostgreSQL.
type BarcodeRepo struct {
	q Querier
}

// NewBarcodeRepository construye el adaptador. Pasar pool o tx (Querier).
func NewBarcodeRepository(q Querier) *BarcodeRepo {
	return &BarcodeRepo{q: q}
}

const barcodeColumns = `id, product_id, serial, COALESCE(stock_in_id::text, ''), COALESCE(stock_out_id::text, ''), created_at, updated_at`

func scanBarcode(row pgx.Row) (entity.Barcode, error) {
	var b entity.Barcode
	err := row.Scan(&b.ID, &b.ProductID, &b.Serial, &b.StockInID, &b.StockOutID, &b.CreatedAt, &b.UpdatedAt)
	return b, err
}

// Create inserta una unidad; el serial es único en todo el catálogo (ErrDuplicateBarcode).
func (r *BarcodeRepo) Create(ctx context.Context, b *entity.Barcode) error {
	query := `
		INSERT INTO barcodes (id, product_id, serial, stock_in_id, stock_out_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query,
		b.ID, b.ProductID, b.Serial, nullable(b.StockInID), nullable(b.StockOutID), b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%q: %w", b.Serial, domain.ErrDuplicateBarcode)
		}
		return fmt.Errorf("insert barcode: %w", err)
	}
	return nil
}

// GetForUpdate busca por producto y serial y bloquea la fila.
func (r *BarcodeRepo) GetForUpdate(ctx context.Context, productID, serial string) (*entity.Barcode, error) {
	query := `SELECT ` + barcodeColumns + ` FROM barcodes WHERE product_id = $1 AND serial = $2 FOR UPDATE`
	b, err := scanBarcode(r.q.QueryRow(ctx, query, productID, serial))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get barcode: %w", err)
	}
	return &b, nil
}

// LinkStockOut liga la unidad a una salida.
func (r *BarcodeRepo) LinkStockOut(ctx context.Context, id, stockOutID string) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE barcodes SET stock_out_id = $2, updated_at = now()
		WHERE id = $1 AND stock_out_id IS NULL`, id, stockOutID)
	if err != nil {
		return fmt.Errorf("link barcode: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrBarcodeNotInStock
	}
	return nil
}

func (r *BarcodeRepo) list(ctx context.Context, query string, args ...any) ([]entity.Barcode, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list barcodes: %w", err)
	}
	defer rows.Close()
	var list []entity.Barcode
	for rows.Next() {
		b, err := scanBarcode(rows)
		if err != nil {
			return nil, fmt.Errorf("scan barcode: %w", err)
		}
		list = append(list, b)
	}
	return list, rows.Err()
}

// ListByProduct lista las unidades de un producto.
func (r *BarcodeRepo) ListByProduct(ctx context.Context, productID string) ([]entity.Barcode, error) {
	return r.list(ctx, `SELECT `+barcodeColumns+` FROM barcodes WHERE product_id = $1 ORDER BY created_at, serial`, productID)
}

// ListByMovement lista las unidades ligadas a una entrada o salida.
func (r *BarcodeRepo) ListByMovement(ctx context.Context, dir entity.Direction, movementID string) ([]entity.Barcode, error) {
	column := "stock_in_id"
	if dir == entity.DirectionOut {
		column = "stock_out_id"
	}
	return r.list(ctx, `SELECT `+barcodeColumns+` FROM barcodes WHERE `+column+` = $1 ORDER BY created_at, serial`, movementID)
}

// Unlink borra las unidades de una entrada o devuelve a stock las de una salida.
func (r *BarcodeRepo) Unlink(ctx context.Context, dir entity.Direction, movementID, productID string) error {
	query := `DELETE FROM barcodes WHERE stock_in_id = $1 AND ($2 = '' OR product_id::text = $2)`
	if dir == entity.DirectionOut {
		query = `
			UPDATE barcodes SET stock_out_id = NULL, updated_at = now()
			WHERE stock_out_id = $1 AND ($2 = '' OR product_id::text = $2)`
	}
	if _, err := r.q.Exec(ctx, query, movementID, productID); err != nil {
		return fmt.Errorf("unlink barcodes: %w", err)
	}
	return nil
}
