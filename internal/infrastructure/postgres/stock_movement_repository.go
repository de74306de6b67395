package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/pos-ledger/internal/domain"
	"github.com/jhoicas/pos-ledger/internal/domain/entity"
	"github.com/jhoicas/pos-ledger/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo entradas y salidas sobre PostgreSQL. Las líneas viven en stock_movement_lines.
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

func numberPrefix(dir entity.Direction) (prefix, sequence string) {
	if dir == entity.DirectionOut {
		return "STOCKOUT", "stock_out_number_seq"
	}
	return "STOCKIN", "stock_in_number_seq"
}

func mapMovementError(err error, op string) error {
	if isUniqueViolation(err) && violatedConstraint(err) != constraintBarcode {
		return domain.ErrDuplicateInvoice
	}
	return fmt.Errorf("%s: %w", op, err)
}

// Create inserta el movimiento y sus líneas; asigna el consecutivo.
func (r *StockMovementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	prefix, seq := numberPrefix(m.Direction)
	var n int64
	if err := r.q.QueryRow(ctx, `SELECT nextval('`+seq+`')`).Scan(&n); err != nil {
		return fmt.Errorf("next movement number: %w", err)
	}
	m.Number = fmt.Sprintf("%s-%06d", prefix, n)

	query := `
		INSERT INTO stock_movements (id, direction, number, category_id, movement_date, invoice_no, notes, is_active, total, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		m.ID, string(m.Direction), m.Number, m.CategoryID, m.Date, m.InvoiceNo, m.Notes, m.IsActive, m.Total,
		m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		return mapMovementError(err, "insert stock movement")
	}
	return r.insertLines(ctx, m)
}

func (r *StockMovementRepo) insertLines(ctx context.Context, m *entity.StockMovement) error {
	query := `
		INSERT INTO stock_movement_lines (movement_id, line_no, product_id, quantity)
		VALUES ($1, $2, $3, $4)`
	for i, l := range m.Lines {
		if _, err := r.q.Exec(ctx, query, m.ID, i, l.ProductID, l.Quantity); err != nil {
			return fmt.Errorf("insert movement line: %w", err)
		}
	}
	return nil
}

// Update reemplaza cabecera y líneas.
func (r *StockMovementRepo) Update(ctx context.Context, m *entity.StockMovement) error {
	query := `
		UPDATE stock_movements
		SET category_id = $2, movement_date = $3, invoice_no = $4, notes = $5, is_active = $6, total = $7, updated_at = $8
		WHERE id = $1 AND direction = $9`
	tag, err := r.q.Exec(ctx, query,
		m.ID, m.CategoryID, m.Date, m.InvoiceNo, m.Notes, m.IsActive, m.Total, m.UpdatedAt, string(m.Direction),
	)
	if err != nil {
		return mapMovementError(err, "update stock movement")
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	if _, err := r.q.Exec(ctx, `DELETE FROM stock_movement_lines WHERE movement_id = $1`, m.ID); err != nil {
		return fmt.Errorf("delete movement lines: %w", err)
	}
	return r.insertLines(ctx, m)
}

// Delete borra el movimiento (las líneas se borran en cascada).
func (r *StockMovementRepo) Delete(ctx context.Context, dir entity.Direction, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM stock_movements WHERE id = $1 AND direction = $2`, id, string(dir))
	if err != nil {
		return fmt.Errorf("delete stock movement: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

const movementColumns = `id, direction, number, category_id, movement_date, invoice_no, notes, is_active, total, created_at, updated_at`

func scanMovement(row pgx.Row) (*entity.StockMovement, error) {
	var m entity.StockMovement
	err := row.Scan(
		&m.ID, &m.Direction, &m.Number, &m.CategoryID, &m.Date, &m.InvoiceNo, &m.Notes, &m.IsActive, &m.Total,
		&m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// GetByID obtiene un movimiento con sus líneas.
func (r *StockMovementRepo) GetByID(ctx context.Context, dir entity.Direction, id string) (*entity.StockMovement, error) {
	query := `SELECT ` + movementColumns + ` FROM stock_movements WHERE id = $1 AND direction = $2`
	m, err := scanMovement(r.q.QueryRow(ctx, query, id, string(dir)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock movement: %w", err)
	}
	if err := r.loadLines(ctx, []*entity.StockMovement{m}); err != nil {
		return nil, err
	}
	return m, nil
}

// List lista movimientos filtrados, más recientes primero.
func (r *StockMovementRepo) List(ctx context.Context, f repository.MovementFilter) ([]*entity.StockMovement, error) {
	var (
		where []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if f.Direction != "" {
		add("direction = $%d", string(f.Direction))
	}
	if f.CategoryID != "" {
		add("category_id = $%d", f.CategoryID)
	}
	if f.From != nil {
		add("movement_date >= $%d", *f.From)
	}
	if f.To != nil {
		add("movement_date < ($%d::date + 1)", *f.To)
	}
	if f.Active != nil {
		add("is_active = $%d", *f.Active)
	}
	query := `SELECT ` + movementColumns + ` FROM stock_movements`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY movement_date DESC, number DESC`
	if f.Limit > 0 {
		args = append(args, f.Limit, f.Offset)
		query += fmt.Sprintf(` LIMIT $%d OFFSET $%d`, len(args)-1, len(args))
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list stock movements: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockMovement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock movement: %w", err)
		}
		list = append(list, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.loadLines(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

func (r *StockMovementRepo) loadLines(ctx context.Context, ms []*entity.StockMovement) error {
	if len(ms) == 0 {
		return nil
	}
	ids := make([]string, len(ms))
	byID := make(map[string]*entity.StockMovement, len(ms))
	for i, m := range ms {
		ids[i] = m.ID
		byID[m.ID] = m
	}
	rows, err := r.q.Query(ctx, `
		SELECT movement_id, product_id, quantity
		FROM stock_movement_lines WHERE movement_id = ANY($1)
		ORDER BY movement_id, line_no`, ids)
	if err != nil {
		return fmt.Errorf("list movement lines: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var movementID string
		var l entity.LineItem
		if err := rows.Scan(&movementID, &l.ProductID, &l.Quantity); err != nil {
			return fmt.Errorf("scan movement line: %w", err)
		}
		if m, ok := byID[movementID]; ok {
			m.Lines = append(m.Lines, l)
		}
	}
	return rows.Err()
}
