// Package notify implementa los canales de entrega de alertas de stock
// (email por SMTP y WhatsApp por gateway HTTP) detrás del puerto Notifier.
package notify

import (
	"context"
	"errors"
	"fmt"
	"net/smtp"
	"net/textproto"
	"strings"

	"github.com/ateliepro/atelier-api/internal/domain"
	"github.com/ateliepro/atelier-api/internal/domain/entity"
	"github.com/ateliepro/atelier-api/pkg/config"
)

// EmailSender envía alertas por SMTP con autenticación PLAIN.
type EmailSender struct {
	cfg config.SMTPConfig
	// send permite sustituir smtp.SendMail en tests.
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewEmailSender construye el canal de email.
func NewEmailSender(cfg config.SMTPConfig) *EmailSender {
	return &EmailSender{cfg: cfg, send: smtp.SendMail}
}

// Send entrega la alerta al destinatario. Un código SMTP permanente (5xx) marca la
// falla como no reintentable; los errores de red y códigos 4xx son transitorios.
func (s *EmailSender) Send(_ context.Context, address string, payload entity.AlertPayload) error {
	if s.cfg.Host == "" {
		return &domain.DeliveryError{
			Channel: entity.ChannelEmail, Address: address, Transient: false,
			Err: errors.New("canal de email sin configurar (SMTP_HOST vacío)"),
		}
	}

	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}
	msg := buildEmailMessage(s.cfg.FromName, s.cfg.From, address, payload)
	if err := s.send(s.cfg.Addr(), auth, s.cfg.From, []string{address}, msg); err != nil {
		return &domain.DeliveryError{
			Channel:   entity.ChannelEmail,
			Address:   address,
			Transient: smtpErrTransient(err),
			Err:       err,
		}
	}
	return nil
}

// smtpErrTransient clasifica el error SMTP: 5xx es rechazo permanente del servidor,
// todo lo demás (4xx, fallas de conexión) se reintenta en la próxima corrida.
func smtpErrTransient(err error) bool {
	var tpErr *textproto.Error
	if errors.As(err, &tpErr) {
		return tpErr.Code < 500
	}
	return true
}

func buildEmailMessage(fromName, from, to string, p entity.AlertPayload) []byte {
	subject := fmt.Sprintf("Alerta de stock: %s", p.Name)
	var body strings.Builder
	fmt.Fprintf(&body, "El ítem %q está por debajo del mínimo.\r\n\r\n", p.Name)
	fmt.Fprintf(&body, "Cantidad actual: %s %s\r\n", p.Quantity.String(), p.Unit)
	fmt.Fprintf(&body, "Cantidad mínima: %s %s\r\n", p.MinQuantity.String(), p.Unit)
	if p.Supplier != "" {
		fmt.Fprintf(&body, "Proveedor: %s\r\n", p.Supplier)
	}

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s <%s>\r\n", fromName, from)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body.String())
	return []byte(msg.String())
}
