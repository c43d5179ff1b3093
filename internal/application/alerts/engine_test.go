package alerts_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ateliepro/atelier-api/internal/application/alerts"
	"github.com/ateliepro/atelier-api/internal/application/dto"
	"github.com/ateliepro/atelier-api/internal/domain"
	"github.com/ateliepro/atelier-api/internal/domain/entity"
	"github.com/ateliepro/atelier-api/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const testCompanyID = "empresa-test"

// fakeNotifier registra los envíos y permite forzar fallas por canal.
type fakeNotifier struct {
	sent    []string // "canal:direccion:item"
	failing map[string]error
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{failing: map[string]error{}}
}

func (f *fakeNotifier) Send(_ context.Context, channel, address string, payload entity.AlertPayload) error {
	if err, ok := f.failing[channel]; ok {
		return err
	}
	f.sent = append(f.sent, channel+":"+address+":"+payload.Name)
	return nil
}

type engineEnv struct {
	store    *memory.Store
	items    *memory.InventoryItemRepo
	prefs    *memory.AlertPreferencesRepo
	logs     *memory.AlertLogRepo
	notifier *fakeNotifier
	engine   *alerts.Engine
}

func newEngineEnv(t *testing.T) *engineEnv {
	t.Helper()
	store := memory.NewStore()
	env := &engineEnv{
		store:    store,
		items:    memory.NewInventoryItemRepository(store),
		prefs:    memory.NewAlertPreferencesRepository(store),
		logs:     memory.NewAlertLogRepository(store),
		notifier: newFakeNotifier(),
	}
	env.engine = alerts.NewEngine(env.items, env.prefs, env.logs, env.notifier, "UTC")
	return env
}

func (e *engineEnv) seedItem(t *testing.T, name, qty, min string) string {
	t.Helper()
	now := time.Now()
	item := &entity.InventoryItem{
		ID:          uuid.New().String(),
		CompanyID:   testCompanyID,
		Name:        name,
		Unit:        "unidad",
		Quantity:    decimal.RequireFromString(qty),
		MinQuantity: decimal.RequireFromString(min),
		ItemType:    entity.ItemTypeRawMaterial,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	require.NoError(t, e.items.Create(context.Background(), item))
	return item.ID
}

func (e *engineEnv) savePrefs(t *testing.T, mutate func(*entity.AlertPreferences)) {
	t.Helper()
	prefs := entity.DefaultAlertPreferences(testCompanyID, "UTC")
	prefs.SendEmail = true
	prefs.Email = "taller@example.com"
	if mutate != nil {
		mutate(prefs)
	}
	require.NoError(t, e.prefs.Upsert(context.Background(), prefs))
}

// ──────────────────────────────────────────────────────────────────────────────
// Evaluación y clasificación
// ──────────────────────────────────────────────────────────────────────────────

// Escenario completo: ítems ok, low y critical en la misma corrida. Solo los dos
// últimos disparan, cada uno con su estado y snapshot en el log.
func TestEvaluate_DisparaSoloBajoUmbral(t *testing.T) {
	env := newEngineEnv(t)
	env.savePrefs(t, nil)
	env.seedItem(t, "Hilo Azul", "50", "5") // ok
	lowID := env.seedItem(t, "Botão Dourado", "3", "5")
	critID := env.seedItem(t, "Zíper 20cm", "0", "5")

	result, err := env.engine.Evaluate(context.Background(), testCompanyID, time.Now())
	require.NoError(t, err)
	require.Len(t, result.Triggered, 2)
	assert.Empty(t, result.Skipped)
	assert.Empty(t, result.DeliveryFailures)

	byItem := map[string]alerts.TriggeredAlert{}
	for _, tr := range result.Triggered {
		byItem[tr.ItemID] = tr
	}
	assert.Equal(t, "low", byItem[lowID].Status)
	assert.Equal(t, "critical", byItem[critID].Status)
	assert.Len(t, env.notifier.sent, 2)

	// El log guarda el snapshot del ítem al disparo.
	last, err := env.logs.LastForItem(context.Background(), critID)
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, "Zíper 20cm", last.Payload.Name)
	assert.True(t, last.Payload.Quantity.IsZero())
	assert.Equal(t, entity.ChannelEmail, last.Channel)
}

func TestEvaluate_RespetaFlagsDeUmbral(t *testing.T) {
	env := newEngineEnv(t)
	env.savePrefs(t, func(p *entity.AlertPreferences) { p.NotifyLow = false })
	env.seedItem(t, "Botão Dourado", "3", "5") // low: silenciado
	critID := env.seedItem(t, "Zíper 20cm", "0", "5")

	result, err := env.engine.Evaluate(context.Background(), testCompanyID, time.Now())
	require.NoError(t, err)
	require.Len(t, result.Triggered, 1)
	assert.Equal(t, critID, result.Triggered[0].ItemID)
}

func TestEvaluate_TodoDeshabilitadoNoEvalua(t *testing.T) {
	env := newEngineEnv(t)
	env.savePrefs(t, func(p *entity.AlertPreferences) {
		p.NotifyLow = false
		p.NotifyCritical = false
	})
	env.seedItem(t, "Zíper 20cm", "0", "5")

	result, err := env.engine.Evaluate(context.Background(), testCompanyID, time.Now())
	require.NoError(t, err)
	assert.Empty(t, result.Triggered)
	assert.Empty(t, env.notifier.sent)
}

func TestEvaluate_PrimerAccesoCreaPreferenciasPorDefecto(t *testing.T) {
	env := newEngineEnv(t)
	env.seedItem(t, "Zíper 20cm", "0", "5")

	// Sin preferencias guardadas: se crean con umbrales activos y sin canales.
	result, err := env.engine.Evaluate(context.Background(), testCompanyID, time.Now())
	require.NoError(t, err)
	require.Len(t, result.Triggered, 1, "los umbrales por defecto están activos")
	assert.Empty(t, env.notifier.sent, "sin canales configurados no hay envíos")
	assert.Empty(t, result.Triggered[0].Channels)

	prefs, err := env.prefs.Get(context.Background(), testCompanyID)
	require.NoError(t, err)
	require.NotNil(t, prefs, "el primer acceso persiste las preferencias por defecto")
	assert.Equal(t, entity.FrequencyDaily, prefs.Frequency)
}

// ──────────────────────────────────────────────────────────────────────────────
// Deduplicación por ventana
// ──────────────────────────────────────────────────────────────────────────────

func TestEvaluate_NoRepiteDentroDeLaMismaVentana(t *testing.T) {
	env := newEngineEnv(t)
	env.savePrefs(t, nil)
	itemID := env.seedItem(t, "Zíper 20cm", "0", "5")

	now := time.Date(2026, 3, 9, 9, 0, 0, 0, time.UTC)
	first, err := env.engine.Evaluate(context.Background(), testCompanyID, now)
	require.NoError(t, err)
	require.Len(t, first.Triggered, 1)

	// Misma fecha, horas después (incluye el disparo manual): se salta.
	second, err := env.engine.Evaluate(context.Background(), testCompanyID, now.Add(8*time.Hour))
	require.NoError(t, err)
	assert.Empty(t, second.Triggered)
	require.Len(t, second.Skipped, 1)
	assert.Equal(t, itemID, second.Skipped[0].ItemID)
	assert.Equal(t, "2026-03-09", second.Skipped[0].WindowKey)

	// Al día siguiente la ventana cambió: vuelve a disparar.
	third, err := env.engine.Evaluate(context.Background(), testCompanyID, now.Add(24*time.Hour))
	require.NoError(t, err)
	assert.Len(t, third.Triggered, 1)
}

func TestEvaluate_VentanaSemanal(t *testing.T) {
	env := newEngineEnv(t)
	env.savePrefs(t, func(p *entity.AlertPreferences) { p.Frequency = entity.FrequencyWeekly })
	env.seedItem(t, "Zíper 20cm", "0", "5")

	monday := time.Date(2026, 3, 9, 9, 0, 0, 0, time.UTC)
	first, err := env.engine.Evaluate(context.Background(), testCompanyID, monday)
	require.NoError(t, err)
	require.Len(t, first.Triggered, 1)

	// Viernes de la misma semana ISO: deduplicado.
	friday, err2 := env.engine.Evaluate(context.Background(), testCompanyID, monday.Add(4*24*time.Hour))
	require.NoError(t, err2)
	assert.Empty(t, friday.Triggered)
	assert.Len(t, friday.Skipped, 1)

	// Lunes siguiente: nueva semana, nueva alerta.
	nextMonday, err3 := env.engine.Evaluate(context.Background(), testCompanyID, monday.Add(7*24*time.Hour))
	require.NoError(t, err3)
	assert.Len(t, nextMonday.Triggered, 1)
}

// ──────────────────────────────────────────────────────────────────────────────
// Canales y fallas de entrega
// ──────────────────────────────────────────────────────────────────────────────

func TestEvaluate_CanalesIndependientes(t *testing.T) {
	env := newEngineEnv(t)
	env.savePrefs(t, func(p *entity.AlertPreferences) {
		p.SendWhatsapp = true
		p.Whatsapp = "+5511999990000"
	})
	env.seedItem(t, "Zíper 20cm", "0", "5")

	// El email falla de forma transitoria; whatsapp debe entregarse igual.
	env.notifier.failing[entity.ChannelEmail] = &domain.DeliveryError{
		Channel: entity.ChannelEmail, Address: "taller@example.com", Transient: true,
		Err: errors.New("smtp caído"),
	}

	result, err := env.engine.Evaluate(context.Background(), testCompanyID, time.Now())
	require.NoError(t, err)
	require.Len(t, result.Triggered, 1)
	assert.Equal(t, []string{entity.ChannelWhatsapp}, result.Triggered[0].Channels)
	require.Len(t, result.DeliveryFailures, 1)
	assert.Equal(t, entity.ChannelEmail, result.DeliveryFailures[0].Channel)
	assert.True(t, result.DeliveryFailures[0].Transient)
}

// Aunque todos los canales fallen, el log de auditoría se escribe y la ventana
// queda consumida.
func TestEvaluate_LogSeEscribeAunqueTodoFalle(t *testing.T) {
	env := newEngineEnv(t)
	env.savePrefs(t, nil)
	itemID := env.seedItem(t, "Zíper 20cm", "0", "5")
	env.notifier.failing[entity.ChannelEmail] = &domain.DeliveryError{
		Channel: entity.ChannelEmail, Transient: false, Err: errors.New("dirección inválida"),
	}

	now := time.Now()
	result, err := env.engine.Evaluate(context.Background(), testCompanyID, now)
	require.NoError(t, err)
	require.Len(t, result.Triggered, 1)
	assert.Empty(t, result.Triggered[0].Channels)
	require.Len(t, result.DeliveryFailures, 1)
	assert.False(t, result.DeliveryFailures[0].Transient)

	last, err := env.logs.LastForItem(context.Background(), itemID)
	require.NoError(t, err)
	require.NotNil(t, last, "la auditoría no se pierde por un canal caído")
	assert.Equal(t, entity.ChannelEmail, last.Channel, "se registra el canal intentado")
}

func TestEvaluate_ContextoCanceladoAborta(t *testing.T) {
	env := newEngineEnv(t)
	env.savePrefs(t, nil)
	env.seedItem(t, "Zíper 20cm", "0", "5")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := env.engine.Evaluate(ctx, testCompanyID, time.Now())
	assert.ErrorIs(t, err, context.Canceled)
}

// ──────────────────────────────────────────────────────────────────────────────
// PreferencesUseCase
// ──────────────────────────────────────────────────────────────────────────────

func TestPreferences_GuardarYLeer(t *testing.T) {
	env := newEngineEnv(t)
	uc := alerts.NewPreferencesUseCase(env.prefs, env.logs, "UTC")

	saved, err := uc.Save(context.Background(), testCompanyID, dto.AlertPreferencesRequest{
		Email:          "taller@example.com",
		SendEmail:      true,
		NotifyLow:      true,
		NotifyCritical: true,
		Frequency:      entity.FrequencyWeekly,
		Timezone:       "America/Sao_Paulo",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.FrequencyWeekly, saved.Frequency)
	assert.Equal(t, "America/Sao_Paulo", saved.Timezone)

	got, err := uc.Get(context.Background(), testCompanyID)
	require.NoError(t, err)
	assert.Equal(t, saved, got)
}

func TestPreferences_Validaciones(t *testing.T) {
	env := newEngineEnv(t)
	uc := alerts.NewPreferencesUseCase(env.prefs, env.logs, "UTC")
	ctx := context.Background()

	_, err := uc.Save(ctx, testCompanyID, dto.AlertPreferencesRequest{Frequency: "mensual"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "frecuencia desconocida")

	_, err = uc.Save(ctx, testCompanyID, dto.AlertPreferencesRequest{
		Frequency: entity.FrequencyDaily, SendEmail: true,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "email habilitado sin dirección")

	_, err = uc.Save(ctx, testCompanyID, dto.AlertPreferencesRequest{
		Frequency: entity.FrequencyDaily, Timezone: "Marte/Olympus",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "zona horaria inválida")
}

func TestPreferences_LogDeAlertas(t *testing.T) {
	env := newEngineEnv(t)
	env.savePrefs(t, nil)
	env.seedItem(t, "Zíper 20cm", "0", "5")

	_, err := env.engine.Evaluate(context.Background(), testCompanyID, time.Now())
	require.NoError(t, err)

	uc := alerts.NewPreferencesUseCase(env.prefs, env.logs, "UTC")
	logs, err := uc.ListLog(context.Background(), testCompanyID, dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, logs.Logs, 1)
	assert.Equal(t, "critical", logs.Logs[0].StatusAtTrigger)
	assert.Equal(t, "Zíper 20cm", logs.Logs[0].Payload.Name)
}
