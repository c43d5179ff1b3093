package memory

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/ateliepro/atelier-api/internal/domain"
	"github.com/ateliepro/atelier-api/internal/domain/entity"
	"github.com/ateliepro/atelier-api/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo libro de movimientos sobre el Store (append-only).
type StockMovementRepo struct {
	s    *Store
	inTx bool
}

// NewStockMovementRepository construye el repositorio sobre el almacén.
func NewStockMovementRepository(s *Store) *StockMovementRepo {
	return &StockMovementRepo{s: s}
}

func (r *StockMovementRepo) lock() func() {
	if r.inTx {
		return func() {}
	}
	r.s.mu.Lock()
	return r.s.mu.Unlock
}

func (r *StockMovementRepo) Create(_ context.Context, m *entity.StockMovement) error {
	defer r.lock()()
	if m.OriginID != nil {
		for _, existing := range r.s.movements {
			if existing.InventoryItemID == m.InventoryItemID &&
				existing.Origin == m.Origin &&
				existing.OriginID != nil && *existing.OriginID == *m.OriginID {
				return domain.ErrDuplicate
			}
		}
	}
	r.s.movements = append(r.s.movements, cloneMovement(m))
	return nil
}

// ListByItem devuelve los movimientos del ítem en orden inverso de inserción
// (más recientes primero).
func (r *StockMovementRepo) ListByItem(_ context.Context, itemID string, limit, offset int) ([]*entity.StockMovement, error) {
	defer r.lock()()
	var list []*entity.StockMovement
	for i := len(r.s.movements) - 1; i >= 0; i-- {
		if r.s.movements[i].InventoryItemID == itemID {
			list = append(list, cloneMovement(r.s.movements[i]))
		}
	}
	return paginate(list, limit, offset), nil
}

func (r *StockMovementRepo) SumDeltas(_ context.Context, itemID string) (decimal.Decimal, error) {
	defer r.lock()()
	sum := decimal.Zero
	for _, m := range r.s.movements {
		if m.InventoryItemID == itemID {
			sum = sum.Add(m.Delta)
		}
	}
	return sum, nil
}

func (r *StockMovementRepo) GetByOrigin(_ context.Context, itemID, origin, originID string) (*entity.StockMovement, error) {
	defer r.lock()()
	for _, m := range r.s.movements {
		if m.InventoryItemID == itemID && m.Origin == origin &&
			m.OriginID != nil && *m.OriginID == originID {
			return cloneMovement(m), nil
		}
	}
	return nil, nil
}
