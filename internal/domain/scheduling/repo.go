package scheduling

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type TemplateRepository interface {
	Create(ctx context.Context, t *SlotTemplate) error
	GetByID(ctx context.Context, id uuid.UUID) (*SlotTemplate, error)
	// GetByCoordinates locates the unique template at (doctor, weekday, start).
	GetByCoordinates(ctx context.Context, doctorID uuid.UUID, weekday, startTime string) (*SlotTemplate, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*SlotTemplate, error)
	ListByDoctorWeekday(ctx context.Context, doctorID uuid.UUID, weekday string) ([]*SlotTemplate, error)
}

type BookingRepository interface {
	// Insert consumes date for the template. Returns ErrSlotTaken if the date
	// is already consumed.
	Insert(ctx context.Context, templateID uuid.UUID, date time.Time) error
	Exists(ctx context.Context, templateID uuid.UUID, date time.Time) (bool, error)
	ListByTemplate(ctx context.Context, templateID uuid.UUID) ([]time.Time, error)
}

type WorkingHoursRepository interface {
	Get(ctx context.Context, doctorID uuid.UUID) (*WorkingHours, error)
	Create(ctx context.Context, wh *WorkingHours) error
	Update(ctx context.Context, wh *WorkingHours) error
}
