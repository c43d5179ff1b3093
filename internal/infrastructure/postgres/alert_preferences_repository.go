package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/ateliepro/atelier-api/internal/domain/entity"
	"github.com/ateliepro/atelier-api/internal/domain/repository"
)

var _ repository.AlertPreferencesRepository = (*AlertPreferencesRepo)(nil)

// AlertPreferencesRepo preferencias de alerta por empresa sobre PostgreSQL
// (una fila por empresa, upsert).
type AlertPreferencesRepo struct {
	q Querier
}

// NewAlertPreferencesRepository construye el adaptador. Pasar pool o tx (Querier).
func NewAlertPreferencesRepository(q Querier) *AlertPreferencesRepo {
	return &AlertPreferencesRepo{q: q}
}

// Get obtiene las preferencias de la empresa; nil si nunca se guardaron.
func (r *AlertPreferencesRepo) Get(ctx context.Context, companyID string) (*entity.AlertPreferences, error) {
	query := `
		SELECT company_id, email, whatsapp, send_email, send_whatsapp, notify_low, notify_critical, frequency, timezone, updated_at
		FROM alert_preferences WHERE company_id = $1`
	var p entity.AlertPreferences
	err := r.q.QueryRow(ctx, query, companyID).Scan(
		&p.CompanyID, &p.Email, &p.Whatsapp, &p.SendEmail, &p.SendWhatsapp,
		&p.NotifyLow, &p.NotifyCritical, &p.Frequency, &p.Timezone, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get alert preferences: %w", err)
	}
	return &p, nil
}

// Upsert inserta o actualiza las preferencias de la empresa.
func (r *AlertPreferencesRepo) Upsert(ctx context.Context, prefs *entity.AlertPreferences) error {
	query := `
		INSERT INTO alert_preferences (company_id, email, whatsapp, send_email, send_whatsapp, notify_low, notify_critical, frequency, timezone, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (company_id)
		DO UPDATE SET email = EXCLUDED.email, whatsapp = EXCLUDED.whatsapp,
			send_email = EXCLUDED.send_email, send_whatsapp = EXCLUDED.send_whatsapp,
			notify_low = EXCLUDED.notify_low, notify_critical = EXCLUDED.notify_critical,
			frequency = EXCLUDED.frequency, timezone = EXCLUDED.timezone, updated_at = EXCLUDED.updated_at`
	_, err := r.q.Exec(ctx, query,
		prefs.CompanyID, prefs.Email, prefs.Whatsapp, prefs.SendEmail, prefs.SendWhatsapp,
		prefs.NotifyLow, prefs.NotifyCritical, prefs.Frequency, prefs.Timezone, prefs.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert alert preferences: %w", err)
	}
	return nil
}

// ListCompanyIDs lista las empresas con preferencias guardadas (para el scheduler).
func (r *AlertPreferencesRepo) ListCompanyIDs(ctx context.Context) ([]string, error) {
	rows, err := r.q.Query(ctx, `SELECT company_id FROM alert_preferences ORDER BY company_id`)
	if err != nil {
		return nil, fmt.Errorf("list companies with preferences: %w", err)
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan company id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
