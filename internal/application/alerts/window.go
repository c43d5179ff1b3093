package alerts

import (
	"fmt"
	"time"

	"github.com/ateliepro/atelier-api/internal/domain/entity"
)

// WindowKey calcula la clave de la ventana de deduplicación que contiene a t:
// para frecuencia diaria, la fecha calendario en la zona local de la empresa;
// para semanal, la semana ISO (lunes como inicio). Dos instantes con la misma
// clave pertenecen a la misma ventana y producen a lo sumo una alerta por ítem.
func WindowKey(frequency string, t time.Time, loc *time.Location) string {
	lt := t.In(loc)
	if frequency == entity.FrequencyWeekly {
		year, week := lt.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", year, week)
	}
	return lt.Format("2006-01-02")
}

// SameWindow indica si dos instantes caen en la misma ventana de deduplicación.
func SameWindow(frequency string, a, b time.Time, loc *time.Location) bool {
	return WindowKey(frequency, a, loc) == WindowKey(frequency, b, loc)
}

// loadLocation resuelve una zona horaria con fallback a UTC si el nombre es inválido.
func loadLocation(name string) *time.Location {
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}
