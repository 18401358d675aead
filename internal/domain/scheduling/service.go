package scheduling

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound = errors.New("not found")
	// ErrDateNotFuture is returned when an availability search targets today
	// or a past date.
	ErrDateNotFuture = errors.New("The date should be in the future!")
	// ErrNoTemplates means the doctor offers no slots on the requested weekday.
	ErrNoTemplates = errors.New("no availability for the specified day")
	// ErrSlotTaken means the requested date is already consumed for the slot.
	ErrSlotTaken = errors.New("slot is already booked for that date")
	// ErrWorkingHoursNotSet means the doctor has not configured working hours.
	ErrWorkingHoursNotSet = errors.New("working hours not set")
	// ErrDoctorNotFound means the caller is not a registered doctor.
	ErrDoctorNotFound = errors.New("not a registered doctor")
)

// DoctorDirectory answers whether a doctor profile exists. Implemented by the
// identity domain.
type DoctorDirectory interface {
	DoctorExists(ctx context.Context, id uuid.UUID) (bool, error)
}

type Service struct {
	templates TemplateRepository
	bookings  BookingRepository
	hours     WorkingHoursRepository
	doctors   DoctorDirectory

	now func() time.Time
}

func NewService(templates TemplateRepository, bookings BookingRepository, hours WorkingHoursRepository, doctors DoctorDirectory) *Service {
	return &Service{
		templates: templates,
		bookings:  bookings,
		hours:     hours,
		doctors:   doctors,
		now:       time.Now,
	}
}

// SearchAvailability returns the doctor's slot templates on date's weekday
// that have not yet been consumed for that date. The date must be in the
// future. ErrNoTemplates distinguishes "doctor offers nothing on that
// weekday" from an empty result where every slot is booked.
func (s *Service) SearchAvailability(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]*SlotTemplate, error) {
	today := s.now().Truncate(24 * time.Hour)
	if !date.Truncate(24 * time.Hour).After(today) {
		return nil, ErrDateNotFuture
	}

	weekday := date.Weekday().String()
	templates, err := s.templates.ListByDoctorWeekday(ctx, doctorID, weekday)
	if err != nil {
		return nil, err
	}
	if len(templates) == 0 {
		return nil, ErrNoTemplates
	}

	open := []*SlotTemplate{}
	for _, t := range templates {
		taken, err := s.bookings.Exists(ctx, t.ID, date)
		if err != nil {
			return nil, err
		}
		if !taken {
			open = append(open, t)
		}
	}
	return open, nil
}

// FindTemplate locates the unique template at (doctor, weekday, start).
func (s *Service) FindTemplate(ctx context.Context, doctorID uuid.UUID, weekday, startTime string) (*SlotTemplate, error) {
	if !IsValidWeekday(weekday) {
		return nil, fmt.Errorf("invalid weekday: %s", weekday)
	}
	if _, err := ParseClock(startTime); err != nil {
		return nil, err
	}
	return s.templates.GetByCoordinates(ctx, doctorID, weekday, startTime)
}

// Book consumes date for the template. The date must fall on the template's
// weekday. A duplicate booking surfaces as ErrSlotTaken; the uniqueness
// constraint on (template, date) makes this safe under concurrent requests.
func (s *Service) Book(ctx context.Context, template *SlotTemplate, date time.Time) error {
	if date.Weekday().String() != template.Weekday {
		return fmt.Errorf("date %s falls on %s, slot is for %s",
			date.Format("2006-01-02"), date.Weekday(), template.Weekday)
	}
	return s.bookings.Insert(ctx, template.ID, date)
}

// BookedDates lists the consumed calendar dates of a template.
func (s *Service) BookedDates(ctx context.Context, templateID uuid.UUID) ([]time.Time, error) {
	return s.bookings.ListByTemplate(ctx, templateID)
}

// SetTimes upserts the doctor's working hours. The returned flag is true when
// a new row was created.
func (s *Service) SetTimes(ctx context.Context, doctorID uuid.UUID, startTime, endTime string) (*WorkingHours, bool, error) {
	startMin, err := ParseClock(startTime)
	if err != nil {
		return nil, false, err
	}
	endMin, err := ParseClock(endTime)
	if err != nil {
		return nil, false, err
	}
	if endMin <= startMin {
		return nil, false, fmt.Errorf("end time must be after start time")
	}

	exists, err := s.doctors.DoctorExists(ctx, doctorID)
	if err != nil {
		return nil, false, err
	}
	if !exists {
		return nil, false, ErrDoctorNotFound
	}

	wh, err := s.hours.Get(ctx, doctorID)
	switch {
	case errors.Is(err, ErrNotFound):
		wh = &WorkingHours{DoctorID: doctorID, StartTime: startTime, EndTime: endTime}
		if err := s.hours.Create(ctx, wh); err != nil {
			return nil, false, err
		}
		return wh, true, nil
	case err != nil:
		return nil, false, err
	default:
		wh.StartTime = startTime
		wh.EndTime = endTime
		if err := s.hours.Update(ctx, wh); err != nil {
			return nil, false, err
		}
		return wh, false, nil
	}
}

// GetTimes returns the doctor's working hours, ErrNotFound if unset.
func (s *Service) GetTimes(ctx context.Context, doctorID uuid.UUID) (*WorkingHours, error) {
	return s.hours.Get(ctx, doctorID)
}

// GetAvailability lists the slot templates currently enabled at any
// (weekday, boundary) coordinate inside the doctor's working hours.
func (s *Service) GetAvailability(ctx context.Context, doctorID uuid.UUID) ([]*SlotTemplate, error) {
	wh, err := s.hours.Get(ctx, doctorID)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrWorkingHoursNotSet
	}
	if err != nil {
		return nil, err
	}

	boundaries, err := SlotBoundaries(wh.StartTime, wh.EndTime)
	if err != nil {
		return nil, err
	}
	inWindow := make(map[string]bool, len(boundaries))
	for _, b := range boundaries {
		inWindow[b] = true
	}

	templates, err := s.templates.ListByDoctor(ctx, doctorID)
	if err != nil {
		return nil, err
	}

	enabled := []*SlotTemplate{}
	for _, t := range templates {
		if inWindow[t.StartTime] {
			enabled = append(enabled, t)
		}
	}
	return enabled, nil
}

// ToggleAvailability flips the existence of the 15-minute template at
// (doctor, weekday, start): delete if present, create if absent. Returns the
// template and whether it is now enabled.
func (s *Service) ToggleAvailability(ctx context.Context, doctorID uuid.UUID, weekday, startTime string) (*SlotTemplate, bool, error) {
	if !IsValidWeekday(weekday) {
		return nil, false, fmt.Errorf("invalid weekday: %s", weekday)
	}
	endTime, err := AddMinutes(startTime, SlotDurationMinutes)
	if err != nil {
		return nil, false, err
	}

	existing, err := s.templates.GetByCoordinates(ctx, doctorID, weekday, startTime)
	switch {
	case errors.Is(err, ErrNotFound):
		t := &SlotTemplate{
			DoctorID:        doctorID,
			Weekday:         weekday,
			StartTime:       startTime,
			EndTime:         endTime,
			DurationMinutes: SlotDurationMinutes,
		}
		if err := s.templates.Create(ctx, t); err != nil {
			return nil, false, err
		}
		return t, true, nil
	case err != nil:
		return nil, false, err
	default:
		if err := s.templates.Delete(ctx, existing.ID); err != nil {
			return nil, false, err
		}
		return existing, false, nil
	}
}
