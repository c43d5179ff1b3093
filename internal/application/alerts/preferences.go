package alerts

import (
	"context"
	"fmt"
	"time"

	"github.com/ateliepro/atelier-api/internal/application/dto"
	"github.com/ateliepro/atelier-api/internal/domain"
	"github.com/ateliepro/atelier-api/internal/domain/entity"
	"github.com/ateliepro/atelier-api/internal/domain/repository"
)

// PreferencesUseCase lectura y guardado de preferencias de alerta por empresa.
type PreferencesUseCase struct {
	prefs     repository.AlertPreferencesRepository
	logs      repository.AlertLogRepository
	defaultTZ string
}

// NewPreferencesUseCase construye el caso de uso.
func NewPreferencesUseCase(
	prefs repository.AlertPreferencesRepository,
	logs repository.AlertLogRepository,
	defaultTimezone string,
) *PreferencesUseCase {
	return &PreferencesUseCase{prefs: prefs, logs: logs, defaultTZ: defaultTimezone}
}

// Get devuelve las preferencias vigentes, creándolas con valores por defecto en el
// primer acceso.
func (uc *PreferencesUseCase) Get(ctx context.Context, companyID string) (*dto.AlertPreferencesResponse, error) {
	prefs, err := uc.prefs.Get(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if prefs == nil {
		prefs = entity.DefaultAlertPreferences(companyID, uc.defaultTZ)
		if err := uc.prefs.Upsert(ctx, prefs); err != nil {
			return nil, err
		}
	}
	return toPreferencesResponse(prefs), nil
}

// Save valida y guarda las preferencias (upsert: una fila por empresa).
func (uc *PreferencesUseCase) Save(ctx context.Context, companyID string, in dto.AlertPreferencesRequest) (*dto.AlertPreferencesResponse, error) {
	if !entity.ValidFrequency(in.Frequency) {
		return nil, fmt.Errorf("%w: frecuencia %q", domain.ErrInvalidInput, in.Frequency)
	}
	if in.SendEmail && in.Email == "" {
		return nil, fmt.Errorf("%w: email habilitado sin dirección", domain.ErrInvalidInput)
	}
	if in.SendWhatsapp && in.Whatsapp == "" {
		return nil, fmt.Errorf("%w: whatsapp habilitado sin número", domain.ErrInvalidInput)
	}
	tz := in.Timezone
	if tz == "" {
		tz = uc.defaultTZ
	}
	if _, err := time.LoadLocation(tz); err != nil {
		return nil, fmt.Errorf("%w: zona horaria %q", domain.ErrInvalidInput, tz)
	}
	prefs := &entity.AlertPreferences{
		CompanyID:      companyID,
		Email:          in.Email,
		Whatsapp:       in.Whatsapp,
		SendEmail:      in.SendEmail,
		SendWhatsapp:   in.SendWhatsapp,
		NotifyLow:      in.NotifyLow,
		NotifyCritical: in.NotifyCritical,
		Frequency:      in.Frequency,
		Timezone:       tz,
		UpdatedAt:      time.Now(),
	}
	if err := uc.prefs.Upsert(ctx, prefs); err != nil {
		return nil, err
	}
	return toPreferencesResponse(prefs), nil
}

// ListLog devuelve el log de alertas de la empresa (pantalla operacional).
func (uc *PreferencesUseCase) ListLog(ctx context.Context, companyID string, page dto.PageRequest) (*dto.AlertLogListResponse, error) {
	page.DefaultPage()
	list, err := uc.logs.ListByCompany(ctx, companyID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	logs := make([]dto.AlertLogResponse, 0, len(list))
	for _, l := range list {
		logs = append(logs, dto.AlertLogResponse{
			ID:              l.ID,
			InventoryItemID: l.InventoryItemID,
			StatusAtTrigger: l.StatusAtTrigger,
			Payload:         l.Payload,
			Channel:         l.Channel,
			SentAt:          l.SentAt,
		})
	}
	return &dto.AlertLogListResponse{
		Logs: logs,
		Page: dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

func toPreferencesResponse(p *entity.AlertPreferences) *dto.AlertPreferencesResponse {
	return &dto.AlertPreferencesResponse{
		Email:          p.Email,
		Whatsapp:       p.Whatsapp,
		SendEmail:      p.SendEmail,
		SendWhatsapp:   p.SendWhatsapp,
		NotifyLow:      p.NotifyLow,
		NotifyCritical: p.NotifyCritical,
		Frequency:      p.Frequency,
		Timezone:       p.Timezone,
	}
}
