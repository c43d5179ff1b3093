package inventory

import "github.com/shopspring/decimal"

// Status clasificación de umbral de un ítem según cantidad vs. mínimo.
type Status string

const (
	StatusOK       Status = "ok"
	StatusLow      Status = "low"
	StatusCritical Status = "critical"
)

// Classify clasifica el estado de stock (servicio de dominio, función pura).
// cantidad <= 0 -> critical sin importar el mínimo; el borde es inclusivo:
// cantidad igual al mínimo es low, no ok.
func Classify(quantity, minQuantity decimal.Decimal) Status {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return StatusCritical
	}
	if quantity.LessThanOrEqual(minQuantity) {
		return StatusLow
	}
	return StatusOK
}
