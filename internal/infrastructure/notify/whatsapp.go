package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ateliepro/atelier-api/internal/domain"
	"github.com/ateliepro/atelier-api/internal/domain/entity"
	"github.com/ateliepro/atelier-api/pkg/config"
)

// WhatsappSender envía alertas a través de un gateway HTTP de WhatsApp
// (POST JSON con token bearer).
type WhatsappSender struct {
	cfg    config.WhatsappConfig
	client *http.Client
}

// NewWhatsappSender construye el canal de WhatsApp.
func NewWhatsappSender(cfg config.WhatsappConfig) *WhatsappSender {
	return &WhatsappSender{
		cfg:    cfg,
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

type whatsappMessage struct {
	To      string `json:"to"`
	Message string `json:"message"`
}

// Send entrega la alerta al número destino. Respuestas 4xx del gateway son fallas
// permanentes (número o token inválido); 5xx y errores de red son transitorios.
func (s *WhatsappSender) Send(ctx context.Context, address string, payload entity.AlertPayload) error {
	if s.cfg.APIURL == "" {
		return &domain.DeliveryError{
			Channel: entity.ChannelWhatsapp, Address: address, Transient: false,
			Err: errors.New("canal de whatsapp sin configurar (WHATSAPP_API_URL vacío)"),
		}
	}

	body, err := json.Marshal(whatsappMessage{To: address, Message: buildWhatsappText(payload)})
	if err != nil {
		return &domain.DeliveryError{Channel: entity.ChannelWhatsapp, Address: address, Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.APIURL, bytes.NewReader(body))
	if err != nil {
		return &domain.DeliveryError{Channel: entity.ChannelWhatsapp, Address: address, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	if s.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+s.cfg.Token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return &domain.DeliveryError{Channel: entity.ChannelWhatsapp, Address: address, Transient: true, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	return &domain.DeliveryError{
		Channel:   entity.ChannelWhatsapp,
		Address:   address,
		Transient: resp.StatusCode >= 500,
		Err:       fmt.Errorf("gateway respondió %d", resp.StatusCode),
	}
}

func buildWhatsappText(p entity.AlertPayload) string {
	text := fmt.Sprintf("⚠️ Alerta de stock: %q tiene %s %s (mínimo %s)",
		p.Name, p.Quantity.String(), p.Unit, p.MinQuantity.String())
	if p.Supplier != "" {
		text += fmt.Sprintf(". Proveedor: %s", p.Supplier)
	}
	return text
}
