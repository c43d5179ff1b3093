package inventory_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/ateliepro/atelier-api/internal/domain/inventory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Clasificación de estado por umbral. Las fronteras importan: cantidad cero o
// negativa siempre es critical, y cantidad exactamente igual al mínimo es low
// (el umbral es inclusivo).
// ──────────────────────────────────────────────────────────────────────────────

func TestClassify_Fronteras(t *testing.T) {
	cases := []struct {
		name     string
		quantity string
		min      string
		want     inventory.Status
	}{
		{"sobre el minimo", "10", "5", inventory.StatusOK},
		{"exactamente el minimo es low", "5", "5", inventory.StatusLow},
		{"bajo el minimo", "4.999", "5", inventory.StatusLow},
		{"cero es critical", "0", "5", inventory.StatusCritical},
		{"negativo es critical", "-3", "5", inventory.StatusCritical},
		{"cero con minimo cero sigue siendo critical", "0", "0", inventory.StatusCritical},
		{"positivo con minimo cero es ok", "0.001", "0", inventory.StatusOK},
		{"decimales bajo el minimo", "1.5", "2.25", inventory.StatusLow},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := inventory.Classify(decimal.RequireFromString(tc.quantity), decimal.RequireFromString(tc.min))
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestClassify_CriticalGanaSobreLow(t *testing.T) {
	// Cantidad cero cae bajo ambos umbrales; critical tiene prioridad.
	got := inventory.Classify(decimal.Zero, decimal.NewFromInt(10))
	assert.Equal(t, inventory.StatusCritical, got)
}

func TestNormalizeName_AcentosYMayusculas(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Botão Dourado", "botao dourado"},
		{"HILO   Azul", "hilo azul"},
		{"Tecido Algodão", "tecido algodao"},
		{"  lino  crudo  ", "lino crudo"},
		{"", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, inventory.NormalizeName(tc.in), "entrada %q", tc.in)
	}
}
