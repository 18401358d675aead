package scheduling

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinicore/clinicore/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

func mapNoRows(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// =========== Template Repository ===========

type templateRepoPG struct{ pool *pgxpool.Pool }

func NewTemplateRepoPG(pool *pgxpool.Pool) TemplateRepository { return &templateRepoPG{pool: pool} }

func (r *templateRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const templateCols = `id, doctor_id, weekday, start_time, end_time, duration_minutes, created_at, updated_at`

func (r *templateRepoPG) scanTemplate(row pgx.Row) (*SlotTemplate, error) {
	var t SlotTemplate
	err := row.Scan(&t.ID, &t.DoctorID, &t.Weekday, &t.StartTime, &t.EndTime,
		&t.DurationMinutes, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, mapNoRows(err)
	}
	return &t, nil
}

func (r *templateRepoPG) Create(ctx context.Context, t *SlotTemplate) error {
	t.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO slot_template (id, doctor_id, weekday, start_time, end_time, duration_minutes)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		t.ID, t.DoctorID, t.Weekday, t.StartTime, t.EndTime, t.DurationMinutes)
	return err
}

func (r *templateRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*SlotTemplate, error) {
	return r.scanTemplate(r.conn(ctx).QueryRow(ctx,
		`SELECT `+templateCols+` FROM slot_template WHERE id = $1`, id))
}

func (r *templateRepoPG) GetByCoordinates(ctx context.Context, doctorID uuid.UUID, weekday, startTime string) (*SlotTemplate, error) {
	return r.scanTemplate(r.conn(ctx).QueryRow(ctx,
		`SELECT `+templateCols+` FROM slot_template
		 WHERE doctor_id = $1 AND weekday = $2 AND start_time = $3`,
		doctorID, weekday, startTime))
}

func (r *templateRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM slot_template WHERE id = $1`, id)
	return err
}

func (r *templateRepoPG) listWhere(ctx context.Context, where string, args ...interface{}) ([]*SlotTemplate, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+templateCols+` FROM slot_template `+where+` ORDER BY weekday, start_time`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*SlotTemplate
	for rows.Next() {
		t, err := r.scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	return items, rows.Err()
}

func (r *templateRepoPG) ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*SlotTemplate, error) {
	return r.listWhere(ctx, `WHERE doctor_id = $1`, doctorID)
}

func (r *templateRepoPG) ListByDoctorWeekday(ctx context.Context, doctorID uuid.UUID, weekday string) ([]*SlotTemplate, error) {
	return r.listWhere(ctx, `WHERE doctor_id = $1 AND weekday = $2`, doctorID, weekday)
}

// =========== Booking Repository ===========

type bookingRepoPG struct{ pool *pgxpool.Pool }

func NewBookingRepoPG(pool *pgxpool.Pool) BookingRepository { return &bookingRepoPG{pool: pool} }

func (r *bookingRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

// Insert relies on the unique (template_id, booking_date) index: the no-op
// conflict path reports zero affected rows, which is the already-booked case.
func (r *bookingRepoPG) Insert(ctx context.Context, templateID uuid.UUID, date time.Time) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO slot_booking (id, template_id, booking_date)
		VALUES ($1, $2, $3)
		ON CONFLICT (template_id, booking_date) DO NOTHING`,
		uuid.New(), templateID, date)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrSlotTaken
	}
	return nil
}

func (r *bookingRepoPG) Exists(ctx context.Context, templateID uuid.UUID, date time.Time) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM slot_booking WHERE template_id = $1 AND booking_date = $2
		)`, templateID, date).Scan(&exists)
	return exists, err
}

func (r *bookingRepoPG) ListByTemplate(ctx context.Context, templateID uuid.UUID) ([]time.Time, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT booking_date FROM slot_booking WHERE template_id = $1 ORDER BY booking_date`,
		templateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var dates []time.Time
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}

// =========== Working Hours Repository ===========

type workingHoursRepoPG struct{ pool *pgxpool.Pool }

func NewWorkingHoursRepoPG(pool *pgxpool.Pool) WorkingHoursRepository {
	return &workingHoursRepoPG{pool: pool}
}

func (r *workingHoursRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

func (r *workingHoursRepoPG) Get(ctx context.Context, doctorID uuid.UUID) (*WorkingHours, error) {
	var wh WorkingHours
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT id, doctor_id, start_time, end_time, created_at, updated_at
		FROM working_hours WHERE doctor_id = $1`, doctorID).
		Scan(&wh.ID, &wh.DoctorID, &wh.StartTime, &wh.EndTime, &wh.CreatedAt, &wh.UpdatedAt)
	if err != nil {
		return nil, mapNoRows(err)
	}
	return &wh, nil
}

func (r *workingHoursRepoPG) Create(ctx context.Context, wh *WorkingHours) error {
	wh.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO working_hours (id, doctor_id, start_time, end_time)
		VALUES ($1,$2,$3,$4)`,
		wh.ID, wh.DoctorID, wh.StartTime, wh.EndTime)
	return err
}

func (r *workingHoursRepoPG) Update(ctx context.Context, wh *WorkingHours) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE working_hours SET start_time=$2, end_time=$3, updated_at=NOW()
		WHERE doctor_id = $1`,
		wh.DoctorID, wh.StartTime, wh.EndTime)
	return err
}
