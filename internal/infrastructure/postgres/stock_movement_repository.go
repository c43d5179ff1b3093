package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/ateliepro/atelier-api/internal/domain"
	"github.com/ateliepro/atelier-api/internal/domain/entity"
	"github.com/ateliepro/atelier-api/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo implementación del libro de movimientos sobre PostgreSQL
// (usable con pool o tx). Solo inserta y lee: el libro es append-only.
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

const movementColumns = `id, inventory_item_id, type, delta, reason, origin, origin_id, direction, created_at, created_by`

// Create agrega un movimiento al libro. El índice único parcial sobre
// (inventory_item_id, origin, origin_id) detiene duplicados de origen externo:
// se traduce a domain.ErrDuplicate para la rama idempotente del Reconciler.
func (r *StockMovementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	query := `
		INSERT INTO stock_movements (id, inventory_item_id, type, delta, reason, origin, origin_id, direction, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	createdBy := (*string)(nil)
	if m.CreatedBy != "" {
		createdBy = &m.CreatedBy
	}
	_, err := r.q.Exec(ctx, query,
		m.ID, m.InventoryItemID, m.Type, m.Delta, m.Reason, m.Origin,
		m.OriginID, nullIfEmpty(m.Direction), m.CreatedAt, createdBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert stock movement: %w", err)
	}
	return nil
}

// ListByItem lista movimientos del ítem, más recientes primero. limit <= 0 = sin límite.
func (r *StockMovementRepo) ListByItem(ctx context.Context, itemID string, limit, offset int) ([]*entity.StockMovement, error) {
	query := `SELECT ` + movementColumns + ` FROM stock_movements WHERE inventory_item_id = $1 ORDER BY created_at DESC, id DESC`
	args := []any{itemID}
	if limit > 0 {
		query += " LIMIT $2 OFFSET $3"
		args = append(args, limit, offset)
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list movements by item: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockMovement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

// SumDeltas suma todos los deltas del ítem (auditoría de reconciliación).
func (r *StockMovementRepo) SumDeltas(ctx context.Context, itemID string) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.q.QueryRow(ctx,
		`SELECT COALESCE(SUM(delta), 0) FROM stock_movements WHERE inventory_item_id = $1`, itemID,
	).Scan(&sum)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum deltas: %w", err)
	}
	return sum, nil
}

// GetByOrigin busca un movimiento ya aplicado para un origen externo; nil si no existe.
func (r *StockMovementRepo) GetByOrigin(ctx context.Context, itemID, origin, originID string) (*entity.StockMovement, error) {
	row := r.q.QueryRow(ctx,
		`SELECT `+movementColumns+` FROM stock_movements
		 WHERE inventory_item_id = $1 AND origin = $2 AND origin_id = $3`,
		itemID, origin, originID)
	m, err := scanMovement(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get movement by origin: %w", err)
	}
	return m, nil
}

func scanMovement(row pgx.Row) (*entity.StockMovement, error) {
	var m entity.StockMovement
	var direction, createdBy *string
	err := row.Scan(
		&m.ID, &m.InventoryItemID, &m.Type, &m.Delta, &m.Reason, &m.Origin,
		&m.OriginID, &direction, &m.CreatedAt, &createdBy,
	)
	if err != nil {
		return nil, err
	}
	if direction != nil {
		m.Direction = *direction
	}
	if createdBy != nil {
		m.CreatedBy = *createdBy
	}
	return &m, nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
