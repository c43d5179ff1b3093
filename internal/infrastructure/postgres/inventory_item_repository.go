package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/ateliepro/atelier-api/internal/domain"
	"github.com/ateliepro/atelier-api/internal/domain/entity"
	"github.com/ateliepro/atelier-api/internal/domain/repository"
)

var _ repository.InventoryItemRepository = (*InventoryItemRepo)(nil)

// InventoryItemRepo implementación del puerto sobre PostgreSQL (usable con pool o tx).
type InventoryItemRepo struct {
	q Querier
}

// NewInventoryItemRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInventoryItemRepository(q Querier) *InventoryItemRepo {
	return &InventoryItemRepo{q: q}
}

const itemColumns = `id, company_id, name, name_normalized, unit, quantity, min_quantity,
	item_type, cost_per_unit, supplier, category, metadata, created_at, updated_at, deleted_at`

// Create persiste un ítem nuevo. Quantity inicia en 0 (el saldo se mueve por deltas).
func (r *InventoryItemRepo) Create(ctx context.Context, item *entity.InventoryItem) error {
	meta, err := json.Marshal(item.Metadata)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	query := `
		INSERT INTO inventory_items (id, company_id, name, name_normalized, unit, quantity, min_quantity,
			item_type, cost_per_unit, supplier, category, metadata, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err = r.q.Exec(ctx, query,
		item.ID, item.CompanyID, item.Name, item.NameNormalized, item.Unit,
		item.Quantity, item.MinQuantity, item.ItemType, item.CostPerUnit,
		item.Supplier, item.Category, meta, item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert inventory item: %w", err)
	}
	return nil
}

// GetByID obtiene un ítem por ID, incluso tombstoneado. nil si no existe.
func (r *InventoryItemRepo) GetByID(ctx context.Context, id string) (*entity.InventoryItem, error) {
	row := r.q.QueryRow(ctx, `SELECT `+itemColumns+` FROM inventory_items WHERE id = $1`, id)
	item, err := scanItem(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get inventory item: %w", err)
	}
	return item, nil
}

// UpdateFields actualiza atributos no-cuantitativos. Nunca toca quantity: el saldo
// solo se mueve con ApplyQuantityDelta.
func (r *InventoryItemRepo) UpdateFields(ctx context.Context, item *entity.InventoryItem) error {
	meta, err := json.Marshal(item.Metadata)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	query := `
		UPDATE inventory_items
		SET name = $2, name_normalized = $3, unit = $4, min_quantity = $5, cost_per_unit = $6,
			supplier = $7, category = $8, metadata = $9, updated_at = $10
		WHERE id = $1 AND deleted_at IS NULL`
	cmd, err := r.q.Exec(ctx, query,
		item.ID, item.Name, item.NameNormalized, item.Unit, item.MinQuantity,
		item.CostPerUnit, item.Supplier, item.Category, meta, item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update inventory item: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: ítem %s", domain.ErrNotFound, item.ID)
	}
	return nil
}

// ApplyQuantityDelta incremento atómico del lado del servidor: la fila queda
// bloqueada durante el UPDATE, por lo que dos decrementos concurrentes se serializan
// y ninguno se pierde. Nunca leer-calcular-escribir desde la aplicación.
func (r *InventoryItemRepo) ApplyQuantityDelta(ctx context.Context, itemID string, delta decimal.Decimal) (decimal.Decimal, error) {
	var newQty decimal.Decimal
	err := r.q.QueryRow(ctx, `
		UPDATE inventory_items
		SET quantity = quantity + $2, updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING quantity`, itemID, delta,
	).Scan(&newQty)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, fmt.Errorf("%w: ítem %s", domain.ErrNotFound, itemID)
		}
		return decimal.Zero, fmt.Errorf("apply quantity delta: %w", err)
	}
	return newQty, nil
}

// SoftDelete marca el tombstone. Los movimientos del ítem no se tocan jamás.
func (r *InventoryItemRepo) SoftDelete(ctx context.Context, itemID string, at time.Time) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE inventory_items SET deleted_at = $2, updated_at = $2
		WHERE id = $1 AND deleted_at IS NULL`, itemID, at)
	if err != nil {
		return fmt.Errorf("soft delete inventory item: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: ítem %s", domain.ErrNotFound, itemID)
	}
	return nil
}

// ListActive lista ítems no tombstoneados de la empresa, ordenados por nombre.
// search filtra por subcadena del nombre normalizado; limit <= 0 = sin límite.
func (r *InventoryItemRepo) ListActive(ctx context.Context, companyID, search string, limit, offset int) ([]*entity.InventoryItem, error) {
	query := `SELECT ` + itemColumns + ` FROM inventory_items WHERE company_id = $1 AND deleted_at IS NULL`
	args := []any{companyID}
	pos := 2
	if search != "" {
		query += fmt.Sprintf(" AND name_normalized LIKE $%d", pos)
		args = append(args, "%"+search+"%")
		pos++
	}
	query += " ORDER BY name"
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", pos, pos+1)
		args = append(args, limit, offset)
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list inventory items: %w", err)
	}
	defer rows.Close()
	var list []*entity.InventoryItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan inventory item: %w", err)
		}
		list = append(list, item)
	}
	return list, rows.Err()
}

func scanItem(row pgx.Row) (*entity.InventoryItem, error) {
	var item entity.InventoryItem
	var meta []byte
	err := row.Scan(
		&item.ID, &item.CompanyID, &item.Name, &item.NameNormalized, &item.Unit,
		&item.Quantity, &item.MinQuantity, &item.ItemType, &item.CostPerUnit,
		&item.Supplier, &item.Category, &meta, &item.CreatedAt, &item.UpdatedAt, &item.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(meta) > 0 {
		if err := json.Unmarshal(meta, &item.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshal metadata: %w", err)
		}
	}
	return &item, nil
}
