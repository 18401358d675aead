package appointment

import (
	"time"

	"github.com/google/uuid"
)

// Appointment lifecycle states.
const (
	StatusPending   = "pending"
	StatusScheduled = "scheduled"
	StatusCompleted = "completed"
	StatusCanceled  = "canceled"
)

// Payment states. An appointment becomes scheduled when payment is confirmed.
const (
	PaymentUnpaid = "unpaid"
	PaymentPaid   = "paid"
)

// Appointment maps to the appointment table. SessionID ties the row to the
// payment gateway checkout created when the appointment was registered;
// OrderNo is a short human-facing code shown on receipts.
type Appointment struct {
	ID            uuid.UUID `db:"id" json:"id"`
	OrderNo       string    `db:"order_no" json:"order_no"`
	DoctorID      uuid.UUID `db:"doctor_id" json:"doctor_id"`
	PatientID     uuid.UUID `db:"patient_id" json:"patient_id"`
	SessionID     string    `db:"session_id" json:"session_id"`
	PaymentStatus string    `db:"payment_status" json:"payment_status"`
	Status        string    `db:"status" json:"status"`
	Weekday       string    `db:"weekday" json:"weekday"`
	StartTime     string    `db:"start_time" json:"start_time"`
	EndTime       string    `db:"end_time" json:"end_time"`
	Date          time.Time `db:"date" json:"date"`
	Description   string    `db:"description" json:"description"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// Notification is an in-app message for a doctor about one of their
// appointments. ReadAt is nil until the doctor acknowledges it.
type Notification struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	DoctorID      uuid.UUID  `db:"doctor_id" json:"doctor_id"`
	AppointmentID uuid.UUID  `db:"appointment_id" json:"appointment_id"`
	Message       string     `db:"message" json:"message"`
	ReadAt        *time.Time `db:"read_at" json:"read_at,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
}
