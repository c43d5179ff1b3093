package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ateliepro/atelier-api/internal/domain"
	"github.com/ateliepro/atelier-api/internal/domain/entity"
	"github.com/ateliepro/atelier-api/internal/domain/repository"
)

var _ repository.InventoryItemRepository = (*InventoryItemRepo)(nil)

// InventoryItemRepo puerto de ítems sobre el Store. Con inTx el llamador (TxRunner)
// ya sostiene el lock y los métodos no vuelven a tomarlo.
type InventoryItemRepo struct {
	s    *Store
	inTx bool
}

// NewInventoryItemRepository construye el repositorio sobre el almacén.
func NewInventoryItemRepository(s *Store) *InventoryItemRepo {
	return &InventoryItemRepo{s: s}
}

func (r *InventoryItemRepo) lock() func() {
	if r.inTx {
		return func() {}
	}
	r.s.mu.Lock()
	return r.s.mu.Unlock
}

func (r *InventoryItemRepo) Create(_ context.Context, item *entity.InventoryItem) error {
	defer r.lock()()
	if _, ok := r.s.items[item.ID]; ok {
		return domain.ErrDuplicate
	}
	r.s.items[item.ID] = cloneItem(item)
	return nil
}

func (r *InventoryItemRepo) GetByID(_ context.Context, id string) (*entity.InventoryItem, error) {
	defer r.lock()()
	item, ok := r.s.items[id]
	if !ok {
		return nil, nil
	}
	return cloneItem(item), nil
}

func (r *InventoryItemRepo) UpdateFields(_ context.Context, item *entity.InventoryItem) error {
	defer r.lock()()
	stored, ok := r.s.items[item.ID]
	if !ok || stored.DeletedAt != nil {
		return fmt.Errorf("%w: ítem %s", domain.ErrNotFound, item.ID)
	}
	updated := cloneItem(item)
	updated.Quantity = stored.Quantity // quantity solo se mueve por deltas
	updated.CreatedAt = stored.CreatedAt
	r.s.items[item.ID] = updated
	return nil
}

func (r *InventoryItemRepo) ApplyQuantityDelta(_ context.Context, itemID string, delta decimal.Decimal) (decimal.Decimal, error) {
	defer r.lock()()
	stored, ok := r.s.items[itemID]
	if !ok || stored.DeletedAt != nil {
		return decimal.Zero, fmt.Errorf("%w: ítem %s", domain.ErrNotFound, itemID)
	}
	stored.Quantity = stored.Quantity.Add(delta)
	stored.UpdatedAt = time.Now()
	return stored.Quantity, nil
}

func (r *InventoryItemRepo) SoftDelete(_ context.Context, itemID string, at time.Time) error {
	defer r.lock()()
	stored, ok := r.s.items[itemID]
	if !ok || stored.DeletedAt != nil {
		return fmt.Errorf("%w: ítem %s", domain.ErrNotFound, itemID)
	}
	t := at
	stored.DeletedAt = &t
	stored.UpdatedAt = at
	return nil
}

func (r *InventoryItemRepo) ListActive(_ context.Context, companyID, search string, limit, offset int) ([]*entity.InventoryItem, error) {
	defer r.lock()()
	var list []*entity.InventoryItem
	for _, item := range r.s.items {
		if item.CompanyID != companyID || item.DeletedAt != nil {
			continue
		}
		if search != "" && !strings.Contains(item.NameNormalized, search) {
			continue
		}
		list = append(list, cloneItem(item))
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return paginate(list, limit, offset), nil
}

// paginate aplica limit/offset sobre la lista ya ordenada. limit <= 0 = sin límite.
func paginate[T any](list []T, limit, offset int) []T {
	if limit <= 0 {
		return list
	}
	if offset >= len(list) {
		return nil
	}
	end := offset + limit
	if end > len(list) {
		end = len(list)
	}
	return list[offset:end]
}
