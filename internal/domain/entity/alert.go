package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Frecuencias de la ventana de deduplicación de alertas.
const (
	FrequencyDaily  = "daily"
	FrequencyWeekly = "weekly"
)

// Canales de notificación.
const (
	ChannelEmail    = "email"
	ChannelWhatsapp = "whatsapp"
)

// ValidFrequency verifica que la frecuencia sea una de las conocidas.
func ValidFrequency(f string) bool {
	return f == FrequencyDaily || f == FrequencyWeekly
}

// AlertPreferences preferencias de notificación por empresa (una fila, upsert).
// Timezone define la zona horaria para calcular la ventana de deduplicación
// (fecha calendario local o semana ISO).
type AlertPreferences struct {
	CompanyID      string
	Email          string
	Whatsapp       string
	SendEmail      bool
	SendWhatsapp   bool
	NotifyLow      bool
	NotifyCritical bool
	Frequency      string
	Timezone       string
	UpdatedAt      time.Time
}

// DefaultAlertPreferences valores iniciales al primer acceso: umbrales activos
// pero sin canales habilitados hasta que el usuario configure direcciones.
func DefaultAlertPreferences(companyID, timezone string) *AlertPreferences {
	return &AlertPreferences{
		CompanyID:      companyID,
		NotifyLow:      true,
		NotifyCritical: true,
		Frequency:      FrequencyDaily,
		Timezone:       timezone,
		UpdatedAt:      time.Now(),
	}
}

// AlertPayload snapshot del ítem al momento del disparo (no se re-consulta al leer el log).
type AlertPayload struct {
	Name        string          `json:"name"`
	Quantity    decimal.Decimal `json:"quantity"`
	MinQuantity decimal.Decimal `json:"min_quantity"`
	Unit        string          `json:"unit,omitempty"`
	Supplier    string          `json:"supplier,omitempty"`
}

// AlertLog registro append-only de cada alerta disparada. Sirve de auditoría y de
// fuente para la clave de deduplicación (último SentAt dentro de la misma ventana).
type AlertLog struct {
	ID              string
	CompanyID       string
	InventoryItemID string
	StatusAtTrigger string // low | critical
	Payload         AlertPayload
	Channel         string // canales intentados, separados por coma; vacío si ninguno habilitado
	SentAt          time.Time
}
