package entity

import "time"

// Warehouse representa una bodega o sucursal donde se almacena inventario.
// Este núcleo solo la referencia; nunca la modifica.
type Warehouse struct {
	ID        string
	Name      string
	Address   string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
