package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento de stock.
const (
	MovementTypeEntrada = "entrada"
	MovementTypeSaida   = "saida"
	MovementTypeAjuste  = "ajuste"
)

// Orígenes de movimiento de stock.
const (
	OriginManualAdjustment = "manual_adjustment"
	OriginOrderConsumption = "order_consumption"
	OriginImport           = "import"
	OriginSystem           = "system"
)

// Sentido de un ajuste manual (solo para presentación).
const (
	DirectionIncremento = "incremento"
	DirectionDecremento = "decremento"
)

// ValidMovementType verifica que el tipo sea uno de los conocidos.
func ValidMovementType(t string) bool {
	switch t {
	case MovementTypeEntrada, MovementTypeSaida, MovementTypeAjuste:
		return true
	}
	return false
}

// ValidMovementOrigin verifica que el origen sea uno de los conocidos.
func ValidMovementOrigin(o string) bool {
	switch o {
	case OriginManualAdjustment, OriginOrderConsumption, OriginImport, OriginSystem:
		return true
	}
	return false
}

// StockMovement una línea del libro de movimientos: cambio firmado de cantidad con
// tipo, origen y referencia externa opcional. Inmutable una vez escrito (append-only);
// lo crea exclusivamente el Reconciler. Cuando OriginID está presente, la combinación
// (ítem, origen, OriginID) es idempotente: reenviar el mismo origen no duplica el movimiento.
type StockMovement struct {
	ID              string
	InventoryItemID string
	Type            string
	Delta           decimal.Decimal // positivo entrada/ajuste+, negativo saida/ajuste-
	Reason          string
	Origin          string
	OriginID        *string // referencia externa, ej. ID de orden
	Direction       string  // incremento/decremento, solo en ajustes
	CreatedAt       time.Time
	CreatedBy       string
}
