// Package scheduler corre la evaluación de alertas de stock a intervalos fijos
// para todas las empresas con preferencias guardadas.
package scheduler

import (
	"context"
	"time"

	"github.com/ateliepro/atelier-api/internal/application/alerts"
	"github.com/ateliepro/atelier-api/internal/domain/repository"
	"github.com/ateliepro/atelier-api/pkg/logger"
)

// Scheduler dispara Engine.Evaluate por empresa en cada tick. Las corridas son
// idempotentes dentro de la ventana de deduplicación, así que un tick de más no
// duplica alertas.
type Scheduler struct {
	engine   *alerts.Engine
	prefs    repository.AlertPreferencesRepository
	interval time.Duration
	log      *logger.Logger
}

// New construye el scheduler.
func New(engine *alerts.Engine, prefs repository.AlertPreferencesRepository, interval time.Duration, log *logger.Logger) *Scheduler {
	return &Scheduler{engine: engine, prefs: prefs, interval: interval, log: log}
}

// Run bloquea hasta que ctx se cancele, evaluando todas las empresas en cada tick.
// Lanzarlo en su propia goroutine.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.log.Info().Dur("interval", s.interval).Msg("scheduler de alertas iniciado")
	for {
		select {
		case <-ctx.Done():
			s.log.Info().Msg("scheduler de alertas detenido")
			return
		case now := <-ticker.C:
			s.runOnce(ctx, now)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context, now time.Time) {
	companies, err := s.prefs.ListCompanyIDs(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("listar empresas para evaluación de alertas")
		return
	}
	for _, companyID := range companies {
		if ctx.Err() != nil {
			return
		}
		result, err := s.engine.Evaluate(ctx, companyID, now)
		if err != nil {
			s.log.Error().Err(err).Str("company_id", companyID).Msg("evaluación de alertas fallida")
			continue
		}
		s.log.Info().
			Str("company_id", companyID).
			Int("triggered", len(result.Triggered)).
			Int("skipped", len(result.Skipped)).
			Int("delivery_failures", len(result.DeliveryFailures)).
			Msg("evaluación de alertas completada")
		for _, f := range result.DeliveryFailures {
			s.log.Warn().
				Str("company_id", companyID).
				Str("item_id", f.ItemID).
				Str("channel", f.Channel).
				Bool("transient", f.Transient).
				Str("error", f.Error).
				Msg("falla de entrega de alerta")
		}
	}
}
