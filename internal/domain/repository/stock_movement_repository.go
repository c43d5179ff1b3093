package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/ateliepro/atelier-api/internal/domain/entity"
)

// StockMovementRepository define el puerto de persistencia del libro de movimientos.
// El libro es append-only: no hay Update ni Delete.
type StockMovementRepository interface {
	// Create agrega un movimiento. ErrDuplicate si ya existe uno con el mismo
	// (ítem, origen, origin_id) — respaldo de idempotencia a nivel de almacén.
	Create(ctx context.Context, movement *entity.StockMovement) error
	// ListByItem lista movimientos del ítem, más recientes primero.
	// Funciona también para ítems tombstoneados (la auditoría sobrevive al ítem).
	// limit <= 0 significa sin límite.
	ListByItem(ctx context.Context, itemID string, limit, offset int) ([]*entity.StockMovement, error)
	// SumDeltas suma todos los deltas del ítem (auditorías de reconciliación, no hot path).
	SumDeltas(ctx context.Context, itemID string) (decimal.Decimal, error)
	// GetByOrigin busca el movimiento de un origen externo ya aplicado; nil si no existe.
	GetByOrigin(ctx context.Context, itemID, origin, originID string) (*entity.StockMovement, error)
}
