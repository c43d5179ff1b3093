package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ateliepro/atelier-api/internal/domain/entity"
)

// InventoryItemRepository define el puerto de persistencia para ítems de inventario (DIP).
// Quantity nunca se escribe por asignación directa: solo vía ApplyQuantityDelta,
// que debe resolverse como incremento atómico del lado del almacén.
type InventoryItemRepository interface {
	Create(ctx context.Context, item *entity.InventoryItem) error
	// GetByID devuelve el ítem incluso si está tombstoneado; nil si no existe.
	GetByID(ctx context.Context, id string) (*entity.InventoryItem, error)
	// UpdateFields actualiza atributos no-cuantitativos (nombre, unidad, proveedor, etc.).
	UpdateFields(ctx context.Context, item *entity.InventoryItem) error
	// ApplyQuantityDelta incrementa quantity en delta de forma atómica
	// (quantity = quantity + delta evaluado en el almacén bajo lock de fila)
	// y devuelve el nuevo saldo. ErrNotFound si el ítem no existe o está tombstoneado.
	ApplyQuantityDelta(ctx context.Context, itemID string, delta decimal.Decimal) (decimal.Decimal, error)
	// SoftDelete marca el tombstone. ErrNotFound si no existe o ya estaba borrado.
	SoftDelete(ctx context.Context, itemID string, at time.Time) error
	// ListActive lista ítems no tombstoneados de la empresa. search filtra por
	// nombre normalizado (subcadena); limit <= 0 significa sin límite.
	ListActive(ctx context.Context, companyID, search string, limit, offset int) ([]*entity.InventoryItem, error)
}
