package alerts

import (
	"context"

	"github.com/ateliepro/atelier-api/internal/domain/entity"
)

// Notifier capacidad de entrega de notificaciones, inyectada como caja negra.
// Debe devolver *domain.DeliveryError para distinguir fallas transitorias de
// permanentes; cualquier otro error se trata como transitorio.
type Notifier interface {
	Send(ctx context.Context, channel, address string, payload entity.AlertPayload) error
}
