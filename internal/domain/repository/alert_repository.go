package repository

import (
	"context"

	"github.com/ateliepro/atelier-api/internal/domain/entity"
)

// AlertPreferencesRepository define el puerto de persistencia de preferencias de alerta
// (una fila por empresa, semántica upsert).
type AlertPreferencesRepository interface {
	// Get devuelve las preferencias de la empresa; nil si nunca se guardaron.
	Get(ctx context.Context, companyID string) (*entity.AlertPreferences, error)
	Upsert(ctx context.Context, prefs *entity.AlertPreferences) error
	// ListCompanyIDs lista las empresas con preferencias guardadas (para el scheduler).
	ListCompanyIDs(ctx context.Context) ([]string, error)
}

// AlertLogRepository define el puerto de persistencia del log de alertas (append-only).
type AlertLogRepository interface {
	Create(ctx context.Context, log *entity.AlertLog) error
	// LastForItem devuelve la alerta más reciente del ítem; nil si nunca se alertó.
	LastForItem(ctx context.Context, itemID string) (*entity.AlertLog, error)
	ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.AlertLog, error)
}
