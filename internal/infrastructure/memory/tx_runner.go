package memory

import (
	"context"
	"fmt"

	"github.com/ateliepro/atelier-api/internal/application/inventory"
	"github.com/ateliepro/atelier-api/internal/domain"
	"github.com/ateliepro/atelier-api/internal/domain/entity"
	"github.com/ateliepro/atelier-api/internal/domain/repository"
)

var _ inventory.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta el callback bajo el lock exclusivo del Store, con un snapshot
// previo para revertir si fn falla. Así movimiento y saldo se confirman juntos,
// igual que la transacción de PostgreSQL.
type TxRunner struct {
	s *Store
}

// NewTxRunner construye el runner sobre el almacén.
func NewTxRunner(s *Store) *TxRunner {
	return &TxRunner{s: s}
}

func (r *TxRunner) Run(ctx context.Context, fn func(
	items repository.InventoryItemRepository,
	movements repository.StockMovementRepository,
) error) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	snapItems := make(map[string]*entity.InventoryItem, len(r.s.items))
	for id, item := range r.s.items {
		snapItems[id] = cloneItem(item)
	}
	snapMovements := len(r.s.movements)

	rollback := func() {
		r.s.items = snapItems
		r.s.movements = r.s.movements[:snapMovements]
	}

	err := fn(
		&InventoryItemRepo{s: r.s, inTx: true},
		&StockMovementRepo{s: r.s, inTx: true},
	)
	if err != nil {
		rollback()
		return err
	}
	if r.s.conflictsLeft > 0 {
		r.s.conflictsLeft--
		rollback()
		return fmt.Errorf("%w: conflicto inyectado", domain.ErrConflict)
	}
	if err := ctx.Err(); err != nil {
		rollback()
		return err
	}
	return nil
}
