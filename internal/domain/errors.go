package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound            = errors.New("recurso no encontrado")
	ErrInvalidInput        = errors.New("entrada inválida")
	ErrDuplicate           = errors.New("recurso duplicado")
	ErrConflict            = errors.New("conflicto de escritura concurrente")
	ErrConcurrencyConflict = errors.New("reintentos por concurrencia agotados")
)

// DeliveryError falla al entregar una notificación por un canal.
// Transient indica que vale la pena reintentar en la próxima corrida programada;
// una falla permanente (dirección inválida) no se reintenta automáticamente.
type DeliveryError struct {
	Channel   string
	Address   string
	Transient bool
	Err       error
}

func (e *DeliveryError) Error() string {
	kind := "permanente"
	if e.Transient {
		kind = "transitoria"
	}
	return fmt.Sprintf("entrega %s fallida (%s, %s): %v", kind, e.Channel, e.Address, e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}
