package inventory

import (
	"context"

	"github.com/ateliepro/atelier-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción del almacén, pasando
// repositorios atados a esa tx. Garantiza que el movimiento y la actualización
// del saldo sean visibles juntos o ninguno (unidad atómica del Reconciler).
type TxRunner interface {
	Run(ctx context.Context, fn func(
		items repository.InventoryItemRepository,
		movements repository.StockMovementRepository,
	) error) error
}
