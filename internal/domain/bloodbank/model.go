package bloodbank

import (
	"time"

	"github.com/google/uuid"
)

// BloodGroups recognized by the bank. One stock row exists per group.
var BloodGroups = []string{"A+", "A-", "B+", "B-", "AB+", "AB-", "O+", "O-"}

var validGroups = map[string]bool{
	"A+": true, "A-": true, "B+": true, "B-": true,
	"AB+": true, "AB-": true, "O+": true, "O-": true,
}

func IsValidGroup(group string) bool { return validGroups[group] }

// BloodStock maps to the blood_stock table.
type BloodStock struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Group     string    `db:"blood_group" json:"blood_group"`
	Units     int       `db:"units" json:"units"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
