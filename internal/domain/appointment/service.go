package appointment

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/clinicore/clinicore/internal/domain/identity"
	"github.com/clinicore/clinicore/internal/domain/scheduling"
	"github.com/clinicore/clinicore/internal/platform/cache"
	"github.com/clinicore/clinicore/internal/platform/db"
	"github.com/clinicore/clinicore/internal/platform/mailer"
	"github.com/clinicore/clinicore/internal/platform/payments"
)

var (
	ErrNotFound = errors.New("appointment not found")
	// ErrSlotTaken surfaces the slot-level conflict to callers of Register.
	ErrSlotTaken = scheduling.ErrSlotTaken
	// ErrPaymentIncomplete means the gateway session exists but is not paid.
	ErrPaymentIncomplete = errors.New("payment has not been completed")
	// ErrInvalidTransition rejects status changes the lifecycle does not allow.
	ErrInvalidTransition = errors.New("invalid status transition")
)

// Cache keys invalidated whenever the appointment set changes.
const (
	countAllKey       = "appointments:all"
	countDoctorPrefix = "appointments:doctor:"
)

// Slots is the slice of the scheduling service the booking flow needs.
type Slots interface {
	FindTemplate(ctx context.Context, doctorID uuid.UUID, weekday, startTime string) (*scheduling.SlotTemplate, error)
	Book(ctx context.Context, template *scheduling.SlotTemplate, date time.Time) error
}

// Directory resolves doctor and patient profiles. Implemented by the identity
// service.
type Directory interface {
	GetDoctor(ctx context.Context, id uuid.UUID) (*identity.Doctor, error)
	GetPatient(ctx context.Context, id uuid.UUID) (*identity.Patient, error)
}

type Service struct {
	appts         Repository
	notifications NotificationRepository
	slots         Slots
	directory     Directory
	gateway       payments.Gateway
	mail          mailer.Mailer
	cache         *cache.Manager
	runTx         db.TxRunner

	baseURL  string
	currency string
	now      func() time.Time
}

func NewService(
	appts Repository,
	notifications NotificationRepository,
	slots Slots,
	directory Directory,
	gateway payments.Gateway,
	mail mailer.Mailer,
	cacheMgr *cache.Manager,
	runTx db.TxRunner,
	baseURL, currency string,
) *Service {
	return &Service{
		appts:         appts,
		notifications: notifications,
		slots:         slots,
		directory:     directory,
		gateway:       gateway,
		mail:          mail,
		cache:         cacheMgr,
		runTx:         runTx,
		baseURL:       baseURL,
		currency:      currency,
		now:           time.Now,
	}
}

type RegisterInput struct {
	DoctorID    uuid.UUID
	PatientID   uuid.UUID
	Weekday     string
	StartTime   string
	Date        time.Time
	Description string
}

type RegisterResult struct {
	Appointment *Appointment `json:"appointment"`
	CheckoutURL string       `json:"checkout_url"`
}

// Register books a slot and creates the unpaid appointment behind one payment
// checkout. The gateway call happens before any database write: a gateway
// failure leaves no consumed slot and no orphan rows, while a database failure
// after the checkout leaves only an unreferenced payment link that expires on
// the gateway side. The slot insert, the appointment row and the doctor
// notification commit in a single transaction.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*RegisterResult, error) {
	today := s.now().Truncate(24 * time.Hour)
	if !in.Date.Truncate(24 * time.Hour).After(today) {
		return nil, scheduling.ErrDateNotFuture
	}

	template, err := s.slots.FindTemplate(ctx, in.DoctorID, in.Weekday, in.StartTime)
	if errors.Is(err, scheduling.ErrNotFound) {
		return nil, fmt.Errorf("%w: no slot at %s %s", ErrNotFound, in.Weekday, in.StartTime)
	}
	if err != nil {
		return nil, err
	}

	doctor, err := s.directory.GetDoctor(ctx, in.DoctorID)
	if err != nil {
		return nil, fmt.Errorf("doctor lookup: %w", err)
	}
	patient, err := s.directory.GetPatient(ctx, in.PatientID)
	if err != nil {
		return nil, fmt.Errorf("patient lookup: %w", err)
	}

	orderNo := generateOrderNo(s.now())
	checkout, err := s.gateway.CreateCheckout(ctx, payments.CheckoutRequest{
		Amount:        doctor.Fee,
		Currency:      s.currency,
		Description:   fmt.Sprintf("Appointment with %s on %s", doctor.Name, in.Date.Format("2006-01-02")),
		ReferenceID:   orderNo,
		CustomerName:  patient.Name,
		CustomerEmail: patient.Email,
		CallbackURL:   s.baseURL + "/api/v1/appointments/payment-success",
	})
	if err != nil {
		return nil, err
	}

	appt := &Appointment{
		OrderNo:       orderNo,
		DoctorID:      in.DoctorID,
		PatientID:     in.PatientID,
		SessionID:     checkout.ID,
		PaymentStatus: PaymentUnpaid,
		Status:        StatusPending,
		Weekday:       template.Weekday,
		StartTime:     template.StartTime,
		EndTime:       template.EndTime,
		Date:          in.Date,
		Description:   in.Description,
	}

	err = s.runTx(ctx, func(ctx context.Context) error {
		if err := s.slots.Book(ctx, template, in.Date); err != nil {
			return err
		}
		if err := s.appts.Create(ctx, appt); err != nil {
			return err
		}
		return s.notifications.Create(ctx, &Notification{
			DoctorID:      in.DoctorID,
			AppointmentID: appt.ID,
			Message: fmt.Sprintf("New appointment with %s on %s at %s",
				patient.Name, in.Date.Format("2006-01-02"), template.StartTime),
		})
	})
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx, countAllKey, countDoctorPrefix+in.DoctorID.String())
	return &RegisterResult{Appointment: appt, CheckoutURL: checkout.URL}, nil
}

// ConfirmPayment settles the appointment tied to a gateway session. Repeated
// confirmations of an already-paid appointment return it unchanged and send no
// mail; the conditional update in MarkPaid closes the race between the
// redirect handler and a webhook firing at the same time.
func (s *Service) ConfirmPayment(ctx context.Context, sessionID string) (*Appointment, error) {
	checkout, err := s.gateway.GetCheckout(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	appt, err := s.appts.GetBySessionID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if appt.PaymentStatus == PaymentPaid {
		return appt, nil
	}
	if !checkout.Paid {
		return nil, ErrPaymentIncomplete
	}

	won, err := s.appts.MarkPaid(ctx, appt.ID)
	if err != nil {
		return nil, err
	}
	appt.PaymentStatus = PaymentPaid
	appt.Status = StatusScheduled
	if !won {
		return appt, nil
	}

	s.cache.Invalidate(ctx, countAllKey, countDoctorPrefix+appt.DoctorID.String())

	if patient, err := s.directory.GetPatient(ctx, appt.PatientID); err == nil {
		body := fmt.Sprintf(
			"Your appointment %s on %s at %s is confirmed. Thank you for your payment.",
			appt.OrderNo, appt.Date.Format("2006-01-02"), appt.StartTime)
		if err := s.mail.Send(ctx, patient.Email, "Appointment confirmed", body); err != nil {
			log.Warn().Err(err).Str("order_no", appt.OrderNo).Msg("confirmation mail failed")
		}
	}
	return appt, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.appts.GetByID(ctx, id)
}

// Complete marks a scheduled appointment as carried out.
func (s *Service) Complete(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.transition(ctx, id, StatusCompleted, StatusScheduled)
}

// Cancel voids an appointment that has not been completed.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.transition(ctx, id, StatusCanceled, StatusPending, StatusScheduled)
}

func (s *Service) transition(ctx context.Context, id uuid.UUID, to string, from ...string) (*Appointment, error) {
	appt, err := s.appts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	allowed := false
	for _, f := range from {
		if appt.Status == f {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, appt.Status, to)
	}
	if err := s.appts.UpdateStatus(ctx, id, to); err != nil {
		return nil, err
	}
	appt.Status = to
	s.cache.Invalidate(ctx, countAllKey, countDoctorPrefix+appt.DoctorID.String())
	return appt, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	appt, err := s.appts.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.appts.Delete(ctx, id); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, countAllKey, countDoctorPrefix+appt.DoctorID.String())
	return nil
}

func (s *Service) ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return s.appts.ListByDoctor(ctx, doctorID, limit, offset)
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return s.appts.ListByPatient(ctx, patientID, limit, offset)
}

// CountAll serves the dashboard total through the cache manager.
func (s *Service) CountAll(ctx context.Context) (int, error) {
	return s.cache.GetOrComputeCount(ctx, countAllKey, s.appts.CountAll)
}

func (s *Service) CountByDoctor(ctx context.Context, doctorID uuid.UUID) (int, error) {
	return s.cache.GetOrComputeCount(ctx, countDoctorPrefix+doctorID.String(),
		func(ctx context.Context) (int, error) {
			return s.appts.CountByDoctor(ctx, doctorID)
		})
}

func (s *Service) Notifications(ctx context.Context, doctorID uuid.UUID) ([]*Notification, error) {
	return s.notifications.ListByDoctor(ctx, doctorID)
}

func (s *Service) MarkNotificationRead(ctx context.Context, id, doctorID uuid.UUID) error {
	return s.notifications.MarkRead(ctx, id, doctorID)
}

// generateOrderNo builds the human-facing order code: timestamp plus a random
// suffix to keep same-second registrations distinct.
func generateOrderNo(now time.Time) string {
	return fmt.Sprintf("APT-%s-%04d", now.Format("20060102150405"), rand.Intn(10000))
}
