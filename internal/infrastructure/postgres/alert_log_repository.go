package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/ateliepro/atelier-api/internal/domain/entity"
	"github.com/ateliepro/atelier-api/internal/domain/repository"
)

var _ repository.AlertLogRepository = (*AlertLogRepo)(nil)

// AlertLogRepo log de alertas sobre PostgreSQL (append-only).
type AlertLogRepo struct {
	q Querier
}

// NewAlertLogRepository construye el adaptador. Pasar pool o tx (Querier).
func NewAlertLogRepository(q Querier) *AlertLogRepo {
	return &AlertLogRepo{q: q}
}

// Create agrega una entrada al log de alertas.
func (r *AlertLogRepo) Create(ctx context.Context, log *entity.AlertLog) error {
	payload, err := json.Marshal(log.Payload)
	if err != nil {
		return fmt.Errorf("marshal alert payload: %w", err)
	}
	query := `
		INSERT INTO alert_logs (id, company_id, inventory_item_id, status_at_trigger, payload, channel, sent_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err = r.q.Exec(ctx, query,
		log.ID, log.CompanyID, log.InventoryItemID, log.StatusAtTrigger, payload, log.Channel, log.SentAt,
	)
	if err != nil {
		return fmt.Errorf("insert alert log: %w", err)
	}
	return nil
}

// LastForItem devuelve la alerta más reciente del ítem (fuente de la deduplicación);
// nil si nunca se alertó.
func (r *AlertLogRepo) LastForItem(ctx context.Context, itemID string) (*entity.AlertLog, error) {
	row := r.q.QueryRow(ctx, `
		SELECT id, company_id, inventory_item_id, status_at_trigger, payload, channel, sent_at
		FROM alert_logs WHERE inventory_item_id = $1
		ORDER BY sent_at DESC, id DESC LIMIT 1`, itemID)
	log, err := scanAlertLog(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("last alert for item: %w", err)
	}
	return log, nil
}

// ListByCompany lista el log de la empresa, más recientes primero.
func (r *AlertLogRepo) ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.AlertLog, error) {
	query := `
		SELECT id, company_id, inventory_item_id, status_at_trigger, payload, channel, sent_at
		FROM alert_logs WHERE company_id = $1
		ORDER BY sent_at DESC, id DESC`
	args := []any{companyID}
	if limit > 0 {
		query += " LIMIT $2 OFFSET $3"
		args = append(args, limit, offset)
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list alert logs: %w", err)
	}
	defer rows.Close()
	var list []*entity.AlertLog
	for rows.Next() {
		log, err := scanAlertLog(rows)
		if err != nil {
			return nil, fmt.Errorf("scan alert log: %w", err)
		}
		list = append(list, log)
	}
	return list, rows.Err()
}

func scanAlertLog(row pgx.Row) (*entity.AlertLog, error) {
	var l entity.AlertLog
	var payload []byte
	err := row.Scan(&l.ID, &l.CompanyID, &l.InventoryItemID, &l.StatusAtTrigger, &payload, &l.Channel, &l.SentAt)
	if err != nil {
		return nil, err
	}
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &l.Payload); err != nil {
			return nil, fmt.Errorf("unmarshal alert payload: %w", err)
		}
	}
	return &l, nil
}
