package entity

import "time"

// Category clasifica entradas o salidas (p. ej. "Compra", "Devolución", "Venta mostrador").
type Category struct {
	ID          string
	Direction   Direction
	Name        string
	Description string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
