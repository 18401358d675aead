package scheduling

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SlotDurationMinutes is the fixed length of a bookable slot.
const SlotDurationMinutes = 15

// Weekdays in calendar order, as stored on slot templates.
var Weekdays = []string{
	"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday",
}

var validWeekdays = map[string]bool{
	"Sunday": true, "Monday": true, "Tuesday": true, "Wednesday": true,
	"Thursday": true, "Friday": true, "Saturday": true,
}

func IsValidWeekday(day string) bool { return validWeekdays[day] }

// ParseClock parses an HH:MM wall-clock value into minutes since midnight.
func ParseClock(clock string) (int, error) {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q, expected HH:MM", clock)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// FormatClock renders minutes since midnight as HH:MM.
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// AddMinutes shifts an HH:MM clock value forward. The result stays within the
// same day; slots never span midnight.
func AddMinutes(clock string, minutes int) (string, error) {
	m, err := ParseClock(clock)
	if err != nil {
		return "", err
	}
	m += minutes
	if m >= 24*60 {
		return "", fmt.Errorf("time %s + %dm crosses midnight", clock, minutes)
	}
	return FormatClock(m), nil
}

// SlotBoundaries returns every 15-minute boundary from start to end inclusive.
func SlotBoundaries(start, end string) ([]string, error) {
	startMin, err := ParseClock(start)
	if err != nil {
		return nil, err
	}
	endMin, err := ParseClock(end)
	if err != nil {
		return nil, err
	}
	if endMin < startMin {
		return nil, fmt.Errorf("end time %s before start time %s", end, start)
	}

	var boundaries []string
	for m := startMin; m <= endMin; m += SlotDurationMinutes {
		boundaries = append(boundaries, FormatClock(m))
	}
	return boundaries, nil
}

// SlotTemplate is a recurring weekly time window a doctor offers for
// appointments. At most one template exists per (doctor, weekday, start).
type SlotTemplate struct {
	ID              uuid.UUID `db:"id" json:"id"`
	DoctorID        uuid.UUID `db:"doctor_id" json:"doctor_id"`
	Weekday         string    `db:"weekday" json:"weekday"`
	StartTime       string    `db:"start_time" json:"start_time"`
	EndTime         string    `db:"end_time" json:"end_time"`
	DurationMinutes int       `db:"duration_minutes" json:"duration_minutes"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// SlotBooking marks one calendar date of a template as consumed. The
// (template_id, booking_date) pair is unique, which is what serializes
// concurrent bookings of the same slot.
type SlotBooking struct {
	ID          uuid.UUID `db:"id" json:"id"`
	TemplateID  uuid.UUID `db:"template_id" json:"template_id"`
	BookingDate time.Time `db:"booking_date" json:"booking_date"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// WorkingHours bounds the window slot boundaries are generated in. One row
// per doctor.
type WorkingHours struct {
	ID        uuid.UUID `db:"id" json:"id"`
	DoctorID  uuid.UUID `db:"doctor_id" json:"doctor_id"`
	StartTime string    `db:"start_time" json:"start_time"`
	EndTime   string    `db:"end_time" json:"end_time"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
