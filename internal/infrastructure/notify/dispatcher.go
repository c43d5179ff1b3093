package notify

import (
	"context"
	"fmt"

	"github.com/ateliepro/atelier-api/internal/application/alerts"
	"github.com/ateliepro/atelier-api/internal/domain"
	"github.com/ateliepro/atelier-api/internal/domain/entity"
)

var _ alerts.Notifier = (*Dispatcher)(nil)

// ChannelSender entrega por un canal concreto.
type ChannelSender interface {
	Send(ctx context.Context, address string, payload entity.AlertPayload) error
}

// Dispatcher enruta cada envío al canal correspondiente.
type Dispatcher struct {
	email    ChannelSender
	whatsapp ChannelSender
}

// NewDispatcher construye el enrutador de canales.
func NewDispatcher(email, whatsapp ChannelSender) *Dispatcher {
	return &Dispatcher{email: email, whatsapp: whatsapp}
}

func (d *Dispatcher) Send(ctx context.Context, channel, address string, payload entity.AlertPayload) error {
	switch channel {
	case entity.ChannelEmail:
		return d.email.Send(ctx, address, payload)
	case entity.ChannelWhatsapp:
		return d.whatsapp.Send(ctx, address, payload)
	}
	return &domain.DeliveryError{
		Channel: channel, Address: address, Transient: false,
		Err: fmt.Errorf("canal desconocido %q", channel),
	}
}
