package entity

import "time"

// Location representa una bodega o sitio físico donde reside el stock.
type Location struct {
	ID        string
	Name      string
	Address   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
