package reports

import (
	"time"

	"github.com/google/uuid"
)

// Report types recorded by the clinic.
const (
	TypeBirth     = "birth"
	TypeDeath     = "death"
	TypeOperation = "operation"
)

var validTypes = map[string]bool{
	TypeBirth:     true,
	TypeDeath:     true,
	TypeOperation: true,
}

func IsValidType(t string) bool { return validTypes[t] }

// MedicalReport maps to the medical_report table.
type MedicalReport struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Type      string    `db:"type" json:"type"`
	PatientID uuid.UUID `db:"patient_id" json:"patient_id"`
	DoctorID  uuid.UUID `db:"doctor_id" json:"doctor_id"`
	Details   string    `db:"details" json:"details"`
	Date      time.Time `db:"date" json:"date"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
