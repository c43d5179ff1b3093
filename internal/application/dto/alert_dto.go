package dto

import (
	"time"

	"github.com/ateliepro/atelier-api/internal/domain/entity"
)

// AlertPreferencesRequest body para PUT /api/alerts/preferences.
type AlertPreferencesRequest struct {
	Email          string `json:"email,omitempty"`
	Whatsapp       string `json:"whatsapp,omitempty"`
	SendEmail      bool   `json:"send_email"`
	SendWhatsapp   bool   `json:"send_whatsapp"`
	NotifyLow      bool   `json:"notify_low"`
	NotifyCritical bool   `json:"notify_critical"`
	Frequency      string `json:"frequency"`
	Timezone       string `json:"timezone,omitempty"`
}

// AlertPreferencesResponse preferencias vigentes de la empresa.
type AlertPreferencesResponse struct {
	Email          string `json:"email,omitempty"`
	Whatsapp       string `json:"whatsapp,omitempty"`
	SendEmail      bool   `json:"send_email"`
	SendWhatsapp   bool   `json:"send_whatsapp"`
	NotifyLow      bool   `json:"notify_low"`
	NotifyCritical bool   `json:"notify_critical"`
	Frequency      string `json:"frequency"`
	Timezone       string `json:"timezone"`
}

// AlertLogResponse una entrada del log de alertas (snapshot al disparo).
type AlertLogResponse struct {
	ID              string              `json:"id"`
	InventoryItemID string              `json:"inventory_item_id"`
	StatusAtTrigger string              `json:"status_at_trigger"`
	Payload         entity.AlertPayload `json:"payload"`
	Channel         string              `json:"channel,omitempty"`
	SentAt          time.Time           `json:"sent_at"`
}

// AlertLogListResponse respuesta del log de alertas paginado.
type AlertLogListResponse struct {
	Logs []AlertLogResponse `json:"logs"`
	Page PageResponse       `json:"page"`
}
