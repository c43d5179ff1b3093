package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ateliepro/atelier-api/internal/domain/entity"
)

// CreateItemRequest body para POST /api/items.
type CreateItemRequest struct {
	Name            string              `json:"name"`
	Unit            string              `json:"unit"`
	ItemType        string              `json:"item_type"`
	OpeningQuantity decimal.Decimal     `json:"opening_quantity"`
	MinQuantity     decimal.Decimal     `json:"min_quantity"`
	CostPerUnit     *decimal.Decimal    `json:"cost_per_unit,omitempty"`
	Supplier        string              `json:"supplier,omitempty"`
	Category        string              `json:"category,omitempty"`
	Metadata        entity.ItemMetadata `json:"metadata,omitempty"`
}

// UpdateItemRequest body para PUT /api/items/:id. Solo atributos no-cuantitativos:
// la cantidad se edita por el endpoint de cantidad (pasa por el libro de movimientos).
type UpdateItemRequest struct {
	Name        *string              `json:"name,omitempty"`
	Unit        *string              `json:"unit,omitempty"`
	MinQuantity *decimal.Decimal     `json:"min_quantity,omitempty"`
	CostPerUnit *decimal.Decimal     `json:"cost_per_unit,omitempty"`
	Supplier    *string              `json:"supplier,omitempty"`
	Category    *string              `json:"category,omitempty"`
	Metadata    *entity.ItemMetadata `json:"metadata,omitempty"`
}

// EditQuantityRequest body para PUT /api/items/:id/quantity.
type EditQuantityRequest struct {
	NewQuantity decimal.Decimal `json:"new_quantity"`
	Reason      string          `json:"reason,omitempty"`
}

// ItemResponse representación de un ítem con su estado derivado.
type ItemResponse struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Unit        string              `json:"unit"`
	ItemType    string              `json:"item_type"`
	Quantity    decimal.Decimal     `json:"quantity"`
	MinQuantity decimal.Decimal     `json:"min_quantity"`
	Status      string              `json:"status"` // ok | low | critical, recalculado al leer
	CostPerUnit *decimal.Decimal    `json:"cost_per_unit,omitempty"`
	Supplier    string              `json:"supplier,omitempty"`
	Category    string              `json:"category,omitempty"`
	Metadata    entity.ItemMetadata `json:"metadata,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// ItemListResponse respuesta de listado paginado.
type ItemListResponse struct {
	Items []ItemResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}

// QuantityEditResponse resultado de una edición de cantidad.
// Changed=false cuando la nueva cantidad era igual a la actual (no-op sin movimiento).
type QuantityEditResponse struct {
	Changed     bool            `json:"changed"`
	NewQuantity decimal.Decimal `json:"new_quantity"`
	MovementID  string          `json:"movement_id,omitempty"`
	Warning     string          `json:"warning,omitempty"`
}

// MovementResponse una línea del libro de movimientos.
type MovementResponse struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Delta     decimal.Decimal `json:"delta"`
	Reason    string          `json:"reason,omitempty"`
	Origin    string          `json:"origin"`
	OriginID  string          `json:"origin_id,omitempty"`
	Direction string          `json:"direction,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	CreatedBy string          `json:"created_by,omitempty"`
}

// MovementListResponse respuesta del historial de movimientos de un ítem.
type MovementListResponse struct {
	Movements []MovementResponse `json:"movements"`
	Page      PageResponse       `json:"page"`
}

// BulkDeleteRequest body para POST /api/items/bulk-delete.
type BulkDeleteRequest struct {
	IDs []string `json:"ids"`
}

// BulkDeleteFailure detalle de un ID que no pudo borrarse.
type BulkDeleteFailure struct {
	ID    string `json:"id"`
	Error string `json:"error"`
}

// BulkDeleteResult resultado parcial del borrado masivo: nunca es todo-o-nada.
type BulkDeleteResult struct {
	Succeeded []string            `json:"succeeded"`
	Failed    []BulkDeleteFailure `json:"failed"`
}

// OrderConsumption una línea de consumo de stock por una orden.
type OrderConsumption struct {
	ItemID   string          `json:"item_id"`
	Quantity decimal.Decimal `json:"quantity"`
}

// ConsumeRequest body para POST /api/orders/:orderId/consume.
type ConsumeRequest struct {
	Consumptions []OrderConsumption `json:"consumptions"`
}

// ConsumptionOutcome resultado por línea de consumo.
type ConsumptionOutcome struct {
	ItemID         string          `json:"item_id"`
	MovementID     string          `json:"movement_id"`
	NewQuantity    decimal.Decimal `json:"new_quantity"`
	AlreadyApplied bool            `json:"already_applied,omitempty"`
}

// ConsumptionFailure línea de consumo que no pudo aplicarse (ítem inexistente, etc.).
type ConsumptionFailure struct {
	ItemID string `json:"item_id"`
	Error  string `json:"error"`
}

// ConsumeResult resultado del consumo de una orden. La política es blanda: los
// saldos negativos no bloquean la orden, solo generan Warnings para el llamador.
type ConsumeResult struct {
	OrderID  string               `json:"order_id"`
	Consumed []ConsumptionOutcome `json:"consumed"`
	Warnings []string             `json:"warnings,omitempty"`
	Failed   []ConsumptionFailure `json:"failed,omitempty"`
}
