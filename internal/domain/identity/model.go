package identity

import (
	"time"

	"github.com/google/uuid"
)

// Roles a professional-profile email can be bound to. An email maps to at
// most one of these.
const (
	RoleDoctor       = "doctor"
	RoleNurse        = "nurse"
	RolePharmacist   = "pharmacist"
	RoleLaboratorist = "laboratorist"
	RolePatient      = "patient"
)

var validRoles = map[string]bool{
	RoleDoctor:       true,
	RoleNurse:        true,
	RolePharmacist:   true,
	RoleLaboratorist: true,
	RolePatient:      true,
}

// Doctor maps to the doctor table.
type Doctor struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Email     string    `db:"email" json:"email"`
	Specialty string    `db:"specialty" json:"specialty"`
	// Fee in the smallest currency unit.
	Fee       int64     `db:"fee" json:"fee"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Patient maps to the patient table.
type Patient struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	Name      string     `db:"name" json:"name"`
	Email     string     `db:"email" json:"email"`
	Phone     string     `db:"phone" json:"phone"`
	BirthDate *time.Time `db:"birth_date" json:"birth_date,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
}

// RoleProfile records which professional role an email is bound to.
type RoleProfile struct {
	Email     string    `db:"email" json:"email"`
	Role      string    `db:"role" json:"role"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
