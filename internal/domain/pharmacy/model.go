package pharmacy

import (
	"time"

	"github.com/google/uuid"
)

// Medicine maps to the medicine table.
type Medicine struct {
	ID       uuid.UUID `db:"id" json:"id"`
	Name     string    `db:"name" json:"name"`
	Category string    `db:"category" json:"category"`
	// Price in the smallest currency unit.
	Price     int64      `db:"price" json:"price"`
	Stock     int        `db:"stock" json:"stock"`
	Expiry    *time.Time `db:"expiry" json:"expiry,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
}
