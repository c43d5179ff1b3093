package alerts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ateliepro/atelier-api/internal/domain"
	"github.com/ateliepro/atelier-api/internal/domain/entity"
	"github.com/ateliepro/atelier-api/internal/domain/inventory"
	"github.com/ateliepro/atelier-api/internal/domain/repository"
)

// Engine evaluador de umbrales de stock: recorre los ítems activos de la empresa,
// los clasifica, aplica la ventana de deduplicación y despacha notificaciones por
// los canales habilitados, registrando una entrada de auditoría por ítem evaluado.
// Es el mismo punto de entrada para la corrida programada y el disparo manual:
// una corrida manual dentro de la misma ventana se salta lo ya alertado.
type Engine struct {
	items     repository.InventoryItemRepository
	prefs     repository.AlertPreferencesRepository
	logs      repository.AlertLogRepository
	notifier  Notifier
	defaultTZ string
}

// NewEngine construye el motor de alertas.
func NewEngine(
	items repository.InventoryItemRepository,
	prefs repository.AlertPreferencesRepository,
	logs repository.AlertLogRepository,
	notifier Notifier,
	defaultTimezone string,
) *Engine {
	return &Engine{items: items, prefs: prefs, logs: logs, notifier: notifier, defaultTZ: defaultTimezone}
}

// TriggeredAlert ítem que disparó una alerta en esta corrida.
type TriggeredAlert struct {
	ItemID   string   `json:"item_id"`
	Name     string   `json:"name"`
	Status   string   `json:"status"`
	Channels []string `json:"channels,omitempty"` // canales con entrega exitosa
	LogID    string   `json:"log_id"`
}

// SkippedAlert ítem bajo umbral que no se alertó por deduplicación de ventana.
type SkippedAlert struct {
	ItemID    string `json:"item_id"`
	Name      string `json:"name"`
	Status    string `json:"status"`
	WindowKey string `json:"window_key"`
}

// DeliveryFailure falla de entrega en un canal; Transient marca si se reintentará
// en la próxima corrida programada.
type DeliveryFailure struct {
	ItemID    string `json:"item_id"`
	Channel   string `json:"channel"`
	Transient bool   `json:"transient"`
	Error     string `json:"error"`
}

// EvaluateResult resultado agregado de una corrida de evaluación.
type EvaluateResult struct {
	Triggered        []TriggeredAlert  `json:"triggered"`
	Skipped          []SkippedAlert    `json:"skipped"`
	DeliveryFailures []DeliveryFailure `json:"delivery_failures"`
}

// Evaluate corre la evaluación completa para una empresa en el instante now.
// Solo una falla al cargar preferencias o ítems es fatal; las fallas por ítem o por
// canal se agregan al resultado y nunca abortan la corrida.
func (e *Engine) Evaluate(ctx context.Context, companyID string, now time.Time) (*EvaluateResult, error) {
	prefs, err := e.loadPreferences(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("cargar preferencias de %s: %w", companyID, err)
	}
	result := &EvaluateResult{
		Triggered:        []TriggeredAlert{},
		Skipped:          []SkippedAlert{},
		DeliveryFailures: []DeliveryFailure{},
	}
	if !prefs.NotifyLow && !prefs.NotifyCritical {
		return result, nil
	}

	items, err := e.items.ListActive(ctx, companyID, "", 0, 0)
	if err != nil {
		return nil, fmt.Errorf("listar ítems de %s: %w", companyID, err)
	}

	loc := loadLocation(prefs.Timezone)
	windowKey := WindowKey(prefs.Frequency, now, loc)

	for _, item := range items {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		status := inventory.Classify(item.Quantity, item.MinQuantity)
		switch status {
		case inventory.StatusLow:
			if !prefs.NotifyLow {
				continue
			}
		case inventory.StatusCritical:
			if !prefs.NotifyCritical {
				continue
			}
		default:
			continue
		}

		last, err := e.logs.LastForItem(ctx, item.ID)
		if err != nil {
			result.DeliveryFailures = append(result.DeliveryFailures, DeliveryFailure{
				ItemID: item.ID, Transient: true, Error: err.Error(),
			})
			continue
		}
		if last != nil && WindowKey(prefs.Frequency, last.SentAt, loc) == windowKey {
			// Ya alertado en esta ventana (sea por corrida programada o manual).
			result.Skipped = append(result.Skipped, SkippedAlert{
				ItemID: item.ID, Name: item.Name, Status: string(status), WindowKey: windowKey,
			})
			continue
		}

		payload := entity.AlertPayload{
			Name:        item.Name,
			Quantity:    item.Quantity,
			MinQuantity: item.MinQuantity,
			Unit:        item.Unit,
			Supplier:    item.Supplier,
		}

		// Cada intento de canal es independiente: la falla de uno no cancela los
		// otros ni la escritura del log.
		attempted, delivered := []string{}, []string{}
		for _, ch := range enabledChannels(prefs) {
			attempted = append(attempted, ch.name)
			if err := e.notifier.Send(ctx, ch.name, ch.address, payload); err != nil {
				result.DeliveryFailures = append(result.DeliveryFailures, DeliveryFailure{
					ItemID:    item.ID,
					Channel:   ch.name,
					Transient: isTransient(err),
					Error:     err.Error(),
				})
				continue
			}
			delivered = append(delivered, ch.name)
		}

		// El log se escribe aunque todas las entregas hayan fallado: la auditoría
		// del día no se pierde por un canal caído.
		logEntry := &entity.AlertLog{
			ID:              uuid.New().String(),
			CompanyID:       companyID,
			InventoryItemID: item.ID,
			StatusAtTrigger: string(status),
			Payload:         payload,
			Channel:         strings.Join(attempted, ","),
			SentAt:          now,
		}
		if err := e.logs.Create(ctx, logEntry); err != nil {
			result.DeliveryFailures = append(result.DeliveryFailures, DeliveryFailure{
				ItemID: item.ID, Transient: true, Error: fmt.Sprintf("escribir log de alerta: %v", err),
			})
			continue
		}
		result.Triggered = append(result.Triggered, TriggeredAlert{
			ItemID:   item.ID,
			Name:     item.Name,
			Status:   string(status),
			Channels: delivered,
			LogID:    logEntry.ID,
		})
	}
	return result, nil
}

// loadPreferences obtiene las preferencias de la empresa, creándolas con valores
// por defecto en el primer acceso (una fila por empresa, upsert).
func (e *Engine) loadPreferences(ctx context.Context, companyID string) (*entity.AlertPreferences, error) {
	prefs, err := e.prefs.Get(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if prefs != nil {
		return prefs, nil
	}
	prefs = entity.DefaultAlertPreferences(companyID, e.defaultTZ)
	if err := e.prefs.Upsert(ctx, prefs); err != nil {
		return nil, err
	}
	return prefs, nil
}

type channelTarget struct {
	name    string
	address string
}

// enabledChannels devuelve los canales habilitados con dirección configurada.
func enabledChannels(prefs *entity.AlertPreferences) []channelTarget {
	var out []channelTarget
	if prefs.SendEmail && prefs.Email != "" {
		out = append(out, channelTarget{name: entity.ChannelEmail, address: prefs.Email})
	}
	if prefs.SendWhatsapp && prefs.Whatsapp != "" {
		out = append(out, channelTarget{name: entity.ChannelWhatsapp, address: prefs.Whatsapp})
	}
	return out
}

// isTransient clasifica un error de entrega; sin tipo conocido se asume transitorio
// (se reintentará en la próxima corrida, que es lo más conservador).
func isTransient(err error) bool {
	var dErr *domain.DeliveryError
	if errors.As(err, &dErr) {
		return dErr.Transient
	}
	return true
}
