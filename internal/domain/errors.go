package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrInsufficientStock = errors.New("stock insuficiente")

	ErrDuplicateInvoice  = fmt.Errorf("número de factura ya existe en la categoría: %w", ErrDuplicate)
	ErrDuplicateBarcode  = fmt.Errorf("código de barras ya registrado: %w", ErrDuplicate)
	ErrBarcodeCount      = errors.New("la cantidad de códigos de barras no coincide con la cantidad")
	ErrBarcodeNotInStock = errors.New("el código de barras no está en stock")
	ErrInvalidTransition = errors.New("transición de estado inválida")

	// ErrTransport agrupa fallas de red; ErrTimeout es un caso particular.
	ErrTransport = errors.New("error de transporte")
	ErrTimeout   = fmt.Errorf("tiempo de espera agotado: %w", ErrTransport)
)

// ValidationError describe una falla de validación local (previa al envío).
// Row es -1 cuando el error no corresponde a una fila.
type ValidationError struct {
	Row    int
	Field  string
	Reason string
}

// NewValidationError construye un ValidationError a nivel de transacción.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Row: -1, Field: field, Reason: reason}
}

// NewRowValidationError construye un ValidationError asociado a una fila.
func NewRowValidationError(row int, field, reason string) *ValidationError {
	return &ValidationError{Row: row, Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	if e.Row >= 0 {
		return fmt.Sprintf("fila %d: %s: %s", e.Row+1, e.Field, e.Reason)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// RowError asocia un rechazo autoritativo (p. ej. stock insuficiente) a la fila que lo causó.
type RowError struct {
	Row       int
	ProductID string
	Err       error
}

func (e *RowError) Error() string {
	if e.Row >= 0 {
		return fmt.Sprintf("fila %d (producto %s): %v", e.Row+1, e.ProductID, e.Err)
	}
	return fmt.Sprintf("producto %s: %v", e.ProductID, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }
