package appointment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/clinicore/clinicore/internal/domain/identity"
	"github.com/clinicore/clinicore/internal/domain/scheduling"
	"github.com/clinicore/clinicore/internal/platform/cache"
	"github.com/clinicore/clinicore/internal/platform/db"
	"github.com/clinicore/clinicore/internal/platform/payments"
)

// -- Mocks --

type mockRepo struct {
	appts map[uuid.UUID]*Appointment
}

func newMockRepo() *mockRepo {
	return &mockRepo{appts: make(map[uuid.UUID]*Appointment)}
}

func (m *mockRepo) Create(_ context.Context, a *Appointment) error {
	a.ID = uuid.New()
	a.CreatedAt = time.Now()
	a.UpdatedAt = time.Now()
	m.appts[a.ID] = a
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Appointment, error) {
	a, ok := m.appts[id]
	if !ok {
		return nil, ErrNotFound
	}
	copy := *a
	return &copy, nil
}

func (m *mockRepo) GetBySessionID(_ context.Context, sessionID string) (*Appointment, error) {
	for _, a := range m.appts {
		if a.SessionID == sessionID {
			copy := *a
			return &copy, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockRepo) MarkPaid(_ context.Context, id uuid.UUID) (bool, error) {
	a, ok := m.appts[id]
	if !ok {
		return false, ErrNotFound
	}
	if a.PaymentStatus != PaymentUnpaid {
		return false, nil
	}
	a.PaymentStatus = PaymentPaid
	a.Status = StatusScheduled
	return true, nil
}

func (m *mockRepo) UpdateStatus(_ context.Context, id uuid.UUID, status string) error {
	a, ok := m.appts[id]
	if !ok {
		return ErrNotFound
	}
	a.Status = status
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.appts[id]; !ok {
		return ErrNotFound
	}
	delete(m.appts, id)
	return nil
}

func (m *mockRepo) ListByDoctor(_ context.Context, doctorID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	var items []*Appointment
	for _, a := range m.appts {
		if a.DoctorID == doctorID {
			items = append(items, a)
		}
	}
	return items, len(items), nil
}

func (m *mockRepo) ListByPatient(_ context.Context, patientID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	var items []*Appointment
	for _, a := range m.appts {
		if a.PatientID == patientID {
			items = append(items, a)
		}
	}
	return items, len(items), nil
}

func (m *mockRepo) CountAll(_ context.Context) (int, error) {
	return len(m.appts), nil
}

func (m *mockRepo) CountByDoctor(_ context.Context, doctorID uuid.UUID) (int, error) {
	n := 0
	for _, a := range m.appts {
		if a.DoctorID == doctorID {
			n++
		}
	}
	return n, nil
}

type mockNotificationRepo struct {
	items []*Notification
}

func (m *mockNotificationRepo) Create(_ context.Context, n *Notification) error {
	n.ID = uuid.New()
	m.items = append(m.items, n)
	return nil
}

func (m *mockNotificationRepo) ListByDoctor(_ context.Context, doctorID uuid.UUID) ([]*Notification, error) {
	var result []*Notification
	for _, n := range m.items {
		if n.DoctorID == doctorID {
			result = append(result, n)
		}
	}
	return result, nil
}

func (m *mockNotificationRepo) MarkRead(_ context.Context, id, doctorID uuid.UUID) error {
	for _, n := range m.items {
		if n.ID == id && n.DoctorID == doctorID && n.ReadAt == nil {
			now := time.Now()
			n.ReadAt = &now
			return nil
		}
	}
	return ErrNotFound
}

type mockSlots struct {
	template *scheduling.SlotTemplate
	booked   map[string]bool
}

func newMockSlots(doctorID uuid.UUID) *mockSlots {
	return &mockSlots{
		template: &scheduling.SlotTemplate{
			ID:              uuid.New(),
			DoctorID:        doctorID,
			Weekday:         "Tuesday",
			StartTime:       "09:00",
			EndTime:         "09:15",
			DurationMinutes: scheduling.SlotDurationMinutes,
		},
		booked: make(map[string]bool),
	}
}

func (m *mockSlots) FindTemplate(_ context.Context, doctorID uuid.UUID, weekday, startTime string) (*scheduling.SlotTemplate, error) {
	t := m.template
	if t.DoctorID == doctorID && t.Weekday == weekday && t.StartTime == startTime {
		return t, nil
	}
	return nil, scheduling.ErrNotFound
}

func (m *mockSlots) Book(_ context.Context, template *scheduling.SlotTemplate, date time.Time) error {
	key := template.ID.String() + date.Format("2006-01-02")
	if m.booked[key] {
		return scheduling.ErrSlotTaken
	}
	m.booked[key] = true
	return nil
}

type mockDirectory struct {
	doctor  *identity.Doctor
	patient *identity.Patient
}

func (m *mockDirectory) GetDoctor(_ context.Context, id uuid.UUID) (*identity.Doctor, error) {
	if m.doctor != nil && m.doctor.ID == id {
		return m.doctor, nil
	}
	return nil, identity.ErrNotFound
}

func (m *mockDirectory) GetPatient(_ context.Context, id uuid.UUID) (*identity.Patient, error) {
	if m.patient != nil && m.patient.ID == id {
		return m.patient, nil
	}
	return nil, identity.ErrNotFound
}

type mockGateway struct {
	checkouts map[string]*payments.Checkout
	failing   bool
	created   int
}

func newMockGateway() *mockGateway {
	return &mockGateway{checkouts: make(map[string]*payments.Checkout)}
}

func (m *mockGateway) CreateCheckout(_ context.Context, req payments.CheckoutRequest) (*payments.Checkout, error) {
	if m.failing {
		return nil, payments.ErrGatewayUnavailable
	}
	m.created++
	co := &payments.Checkout{
		ID:          "sess_" + uuid.NewString(),
		URL:         "https://pay.example.test/" + req.ReferenceID,
		Amount:      req.Amount,
		Currency:    req.Currency,
		ReferenceID: req.ReferenceID,
	}
	m.checkouts[co.ID] = co
	return co, nil
}

func (m *mockGateway) GetCheckout(_ context.Context, id string) (*payments.Checkout, error) {
	co, ok := m.checkouts[id]
	if !ok {
		return nil, payments.ErrCheckoutNotFound
	}
	return co, nil
}

type mockMailer struct {
	sent []string
}

func (m *mockMailer) Send(_ context.Context, to, subject, body string) error {
	m.sent = append(m.sent, to)
	return nil
}

type fixture struct {
	svc           *Service
	repo          *mockRepo
	notifications *mockNotificationRepo
	slots         *mockSlots
	gateway       *mockGateway
	mail          *mockMailer
	doctor        *identity.Doctor
	patient       *identity.Patient
}

func newFixture() *fixture {
	doctor := &identity.Doctor{ID: uuid.New(), Name: "Dr. Roy", Email: "roy@clinic.test", Fee: 50000}
	patient := &identity.Patient{ID: uuid.New(), Name: "Sam", Email: "sam@clinic.test"}

	f := &fixture{
		repo:          newMockRepo(),
		notifications: &mockNotificationRepo{},
		slots:         newMockSlots(doctor.ID),
		gateway:       newMockGateway(),
		mail:          &mockMailer{},
		doctor:        doctor,
		patient:       patient,
	}
	f.svc = NewService(
		f.repo, f.notifications, f.slots,
		&mockDirectory{doctor: doctor, patient: patient},
		f.gateway, f.mail,
		cache.NewManager(cache.NewMemoryStore()),
		db.PassthroughTxRunner(),
		"http://localhost:8080", "INR",
	)
	f.svc.now = func() time.Time {
		return time.Date(2026, time.March, 2, 10, 0, 0, 0, time.UTC)
	}
	return f
}

func (f *fixture) registerInput() RegisterInput {
	return RegisterInput{
		DoctorID:    f.doctor.ID,
		PatientID:   f.patient.ID,
		Weekday:     "Tuesday",
		StartTime:   "09:00",
		Date:        time.Date(2026, time.March, 3, 0, 0, 0, 0, time.UTC),
		Description: "checkup",
	}
}

// -- Tests --

func TestRegister(t *testing.T) {
	f := newFixture()
	result, err := f.svc.Register(context.Background(), f.registerInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	appt := result.Appointment
	if appt.PaymentStatus != PaymentUnpaid || appt.Status != StatusPending {
		t.Errorf("expected unpaid/pending, got %s/%s", appt.PaymentStatus, appt.Status)
	}
	if appt.OrderNo == "" {
		t.Error("expected order number to be assigned")
	}
	if result.CheckoutURL == "" {
		t.Error("expected checkout URL")
	}
	if appt.SessionID == "" {
		t.Error("expected session id tied to the checkout")
	}
	if len(f.notifications.items) != 1 {
		t.Errorf("expected 1 doctor notification, got %d", len(f.notifications.items))
	}
}

func TestRegister_GatewayFailureLeavesNoBooking(t *testing.T) {
	f := newFixture()
	f.gateway.failing = true

	_, err := f.svc.Register(context.Background(), f.registerInput())
	if !errors.Is(err, payments.ErrGatewayUnavailable) {
		t.Fatalf("expected gateway error, got %v", err)
	}
	if len(f.slots.booked) != 0 {
		t.Error("expected no slot consumed after gateway failure")
	}
	if len(f.repo.appts) != 0 {
		t.Error("expected no appointment row after gateway failure")
	}
	if len(f.notifications.items) != 0 {
		t.Error("expected no notification after gateway failure")
	}
}

func TestRegister_DoubleBooking(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	if _, err := f.svc.Register(ctx, f.registerInput()); err != nil {
		t.Fatalf("first registration: %v", err)
	}
	_, err := f.svc.Register(ctx, f.registerInput())
	if !errors.Is(err, ErrSlotTaken) {
		t.Errorf("expected ErrSlotTaken, got %v", err)
	}
	if len(f.repo.appts) != 1 {
		t.Errorf("expected 1 appointment, got %d", len(f.repo.appts))
	}
}

func TestRegister_PastDate(t *testing.T) {
	f := newFixture()
	in := f.registerInput()
	in.Date = time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)
	_, err := f.svc.Register(context.Background(), in)
	if !errors.Is(err, scheduling.ErrDateNotFuture) {
		t.Errorf("expected ErrDateNotFuture, got %v", err)
	}
}

func TestRegister_UnknownSlot(t *testing.T) {
	f := newFixture()
	in := f.registerInput()
	in.StartTime = "11:00"
	_, err := f.svc.Register(context.Background(), in)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if f.gateway.created != 0 {
		t.Error("expected no checkout for an unknown slot")
	}
}

func TestConfirmPayment(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	result, err := f.svc.Register(ctx, f.registerInput())
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	f.gateway.checkouts[result.Appointment.SessionID].Paid = true

	appt, err := f.svc.ConfirmPayment(ctx, result.Appointment.SessionID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if appt.PaymentStatus != PaymentPaid || appt.Status != StatusScheduled {
		t.Errorf("expected paid/scheduled, got %s/%s", appt.PaymentStatus, appt.Status)
	}
	if len(f.mail.sent) != 1 || f.mail.sent[0] != "sam@clinic.test" {
		t.Errorf("expected one confirmation mail to the patient, got %v", f.mail.sent)
	}
}

func TestConfirmPayment_Idempotent(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	result, err := f.svc.Register(ctx, f.registerInput())
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	f.gateway.checkouts[result.Appointment.SessionID].Paid = true

	if _, err := f.svc.ConfirmPayment(ctx, result.Appointment.SessionID); err != nil {
		t.Fatalf("first confirmation: %v", err)
	}
	appt, err := f.svc.ConfirmPayment(ctx, result.Appointment.SessionID)
	if err != nil {
		t.Fatalf("second confirmation: %v", err)
	}
	if appt.PaymentStatus != PaymentPaid {
		t.Errorf("expected paid, got %s", appt.PaymentStatus)
	}
	if len(f.mail.sent) != 1 {
		t.Errorf("expected exactly one mail across confirmations, got %d", len(f.mail.sent))
	}
}

func TestConfirmPayment_IncompleteSession(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	result, err := f.svc.Register(ctx, f.registerInput())
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	_, err = f.svc.ConfirmPayment(ctx, result.Appointment.SessionID)
	if !errors.Is(err, ErrPaymentIncomplete) {
		t.Errorf("expected ErrPaymentIncomplete, got %v", err)
	}
	if len(f.mail.sent) != 0 {
		t.Error("expected no mail for incomplete payment")
	}
}

func TestConfirmPayment_UnknownSession(t *testing.T) {
	f := newFixture()
	_, err := f.svc.ConfirmPayment(context.Background(), "sess_missing")
	if !errors.Is(err, payments.ErrCheckoutNotFound) {
		t.Errorf("expected ErrCheckoutNotFound, got %v", err)
	}
}

func TestStatusTransitions(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	result, err := f.svc.Register(ctx, f.registerInput())
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	id := result.Appointment.ID

	// Pending appointments cannot be completed before payment.
	if _, err := f.svc.Complete(ctx, id); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition completing unpaid, got %v", err)
	}

	f.gateway.checkouts[result.Appointment.SessionID].Paid = true
	if _, err := f.svc.ConfirmPayment(ctx, result.Appointment.SessionID); err != nil {
		t.Fatalf("confirm: %v", err)
	}

	appt, err := f.svc.Complete(ctx, id)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if appt.Status != StatusCompleted {
		t.Errorf("expected completed, got %s", appt.Status)
	}

	// Completed appointments cannot be canceled.
	if _, err := f.svc.Cancel(ctx, id); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition canceling completed, got %v", err)
	}
}

func TestCountAll_CachesAcrossCalls(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	if _, err := f.svc.Register(ctx, f.registerInput()); err != nil {
		t.Fatalf("register: %v", err)
	}

	n, err := f.svc.CountAll(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 1 {
		t.Errorf("expected count 1, got %d", n)
	}

	// A second registration on another date invalidates the cached count.
	in := f.registerInput()
	in.Date = in.Date.AddDate(0, 0, 7)
	if _, err := f.svc.Register(ctx, in); err != nil {
		t.Fatalf("second register: %v", err)
	}
	n, err = f.svc.CountAll(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2 {
		t.Errorf("expected count 2 after invalidation, got %d", n)
	}
}

func TestNotifications_MarkRead(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	if _, err := f.svc.Register(ctx, f.registerInput()); err != nil {
		t.Fatalf("register: %v", err)
	}

	items, err := f.svc.Notifications(ctx, f.doctor.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 || items[0].ReadAt != nil {
		t.Fatalf("expected one unread notification, got %+v", items)
	}

	if err := f.svc.MarkNotificationRead(ctx, items[0].ID, f.doctor.ID); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	if err := f.svc.MarkNotificationRead(ctx, items[0].ID, f.doctor.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound marking an already-read notification, got %v", err)
	}
}
