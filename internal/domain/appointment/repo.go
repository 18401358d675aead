package appointment

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	GetBySessionID(ctx context.Context, sessionID string) (*Appointment, error)
	// MarkPaid flips the appointment to paid/scheduled if and only if it is
	// still unpaid. Returns false when another confirmation got there first.
	MarkPaid(ctx context.Context, id uuid.UUID) (bool, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*Appointment, int, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Appointment, int, error)
	CountAll(ctx context.Context) (int, error)
	CountByDoctor(ctx context.Context, doctorID uuid.UUID) (int, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, n *Notification) error
	ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*Notification, error)
	MarkRead(ctx context.Context, id, doctorID uuid.UUID) error
}
