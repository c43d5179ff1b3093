package memory

import (
	"context"
	"sort"

	"github.com/ateliepro/atelier-api/internal/domain/entity"
	"github.com/ateliepro/atelier-api/internal/domain/repository"
)

var (
	_ repository.AlertPreferencesRepository = (*AlertPreferencesRepo)(nil)
	_ repository.AlertLogRepository         = (*AlertLogRepo)(nil)
)

// AlertPreferencesRepo preferencias de alerta sobre el Store.
type AlertPreferencesRepo struct {
	s *Store
}

// NewAlertPreferencesRepository construye el repositorio sobre el almacén.
func NewAlertPreferencesRepository(s *Store) *AlertPreferencesRepo {
	return &AlertPreferencesRepo{s: s}
}

func (r *AlertPreferencesRepo) Get(_ context.Context, companyID string) (*entity.AlertPreferences, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.prefs[companyID]
	if !ok {
		return nil, nil
	}
	return clonePrefs(p), nil
}

func (r *AlertPreferencesRepo) Upsert(_ context.Context, prefs *entity.AlertPreferences) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.prefs[prefs.CompanyID] = clonePrefs(prefs)
	return nil
}

func (r *AlertPreferencesRepo) ListCompanyIDs(_ context.Context) ([]string, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	ids := make([]string, 0, len(r.s.prefs))
	for id := range r.s.prefs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// AlertLogRepo log de alertas sobre el Store (append-only).
type AlertLogRepo struct {
	s *Store
}

// NewAlertLogRepository construye el repositorio sobre el almacén.
func NewAlertLogRepository(s *Store) *AlertLogRepo {
	return &AlertLogRepo{s: s}
}

func (r *AlertLogRepo) Create(_ context.Context, log *entity.AlertLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.logs = append(r.s.logs, cloneLog(log))
	return nil
}

// LastForItem devuelve la última alerta del ítem por SentAt (empates: la insertada después).
func (r *AlertLogRepo) LastForItem(_ context.Context, itemID string) (*entity.AlertLog, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var last *entity.AlertLog
	for _, l := range r.s.logs {
		if l.InventoryItemID != itemID {
			continue
		}
		if last == nil || !l.SentAt.Before(last.SentAt) {
			last = l
		}
	}
	if last == nil {
		return nil, nil
	}
	return cloneLog(last), nil
}

func (r *AlertLogRepo) ListByCompany(_ context.Context, companyID string, limit, offset int) ([]*entity.AlertLog, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var list []*entity.AlertLog
	for i := len(r.s.logs) - 1; i >= 0; i-- {
		if r.s.logs[i].CompanyID == companyID {
			list = append(list, cloneLog(r.s.logs[i]))
		}
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].SentAt.After(list[j].SentAt) })
	return paginate(list, limit, offset), nil
}
