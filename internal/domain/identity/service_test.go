package identity

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
)

// -- Mock Repositories --

type mockDoctorRepo struct {
	doctors map[uuid.UUID]*Doctor
	failOn  string
}

func newMockDoctorRepo() *mockDoctorRepo {
	return &mockDoctorRepo{doctors: make(map[uuid.UUID]*Doctor)}
}

func (m *mockDoctorRepo) Create(_ context.Context, d *Doctor) error {
	if m.failOn == "create" {
		return context.DeadlineExceeded
	}
	d.ID = uuid.New()
	d.CreatedAt = time.Now()
	d.UpdatedAt = time.Now()
	m.doctors[d.ID] = d
	return nil
}

func (m *mockDoctorRepo) GetByID(_ context.Context, id uuid.UUID) (*Doctor, error) {
	d, ok := m.doctors[id]
	if !ok {
		return nil, ErrNotFound
	}
	return d, nil
}

func (m *mockDoctorRepo) GetByEmail(_ context.Context, email string) (*Doctor, error) {
	for _, d := range m.doctors {
		if d.Email == email {
			return d, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockDoctorRepo) Update(_ context.Context, d *Doctor) error {
	m.doctors[d.ID] = d
	return nil
}

func (m *mockDoctorRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.doctors, id)
	return nil
}

func (m *mockDoctorRepo) List(_ context.Context, limit, offset int) ([]*Doctor, int, error) {
	var result []*Doctor
	for _, d := range m.doctors {
		result = append(result, d)
	}
	return result, len(result), nil
}

type mockPatientRepo struct {
	patients map[uuid.UUID]*Patient
}

func newMockPatientRepo() *mockPatientRepo {
	return &mockPatientRepo{patients: make(map[uuid.UUID]*Patient)}
}

func (m *mockPatientRepo) Create(_ context.Context, p *Patient) error {
	p.ID = uuid.New()
	p.CreatedAt = time.Now()
	p.UpdatedAt = time.Now()
	m.patients[p.ID] = p
	return nil
}

func (m *mockPatientRepo) GetByID(_ context.Context, id uuid.UUID) (*Patient, error) {
	p, ok := m.patients[id]
	if !ok {
		return nil, ErrNotFound
	}
	return p, nil
}

func (m *mockPatientRepo) GetByEmail(_ context.Context, email string) (*Patient, error) {
	for _, p := range m.patients {
		if p.Email == email {
			return p, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockPatientRepo) Update(_ context.Context, p *Patient) error {
	m.patients[p.ID] = p
	return nil
}

func (m *mockPatientRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.patients, id)
	return nil
}

func (m *mockPatientRepo) List(_ context.Context, limit, offset int) ([]*Patient, int, error) {
	var result []*Patient
	for _, p := range m.patients {
		result = append(result, p)
	}
	return result, len(result), nil
}

type mockRoleRepo struct {
	roles map[string]string
}

func newMockRoleRepo() *mockRoleRepo {
	return &mockRoleRepo{roles: make(map[string]string)}
}

func (m *mockRoleRepo) Assign(_ context.Context, email, role string) error {
	if _, ok := m.roles[email]; ok {
		return ErrRoleTaken
	}
	m.roles[email] = role
	return nil
}

func (m *mockRoleRepo) GetByEmail(_ context.Context, email string) (*RoleProfile, error) {
	role, ok := m.roles[email]
	if !ok {
		return nil, ErrNotFound
	}
	return &RoleProfile{Email: email, Role: role}, nil
}

func (m *mockRoleRepo) Remove(_ context.Context, email string) error {
	delete(m.roles, email)
	return nil
}

func newTestService() (*Service, *mockDoctorRepo, *mockRoleRepo) {
	doctors := newMockDoctorRepo()
	roles := newMockRoleRepo()
	return NewService(doctors, newMockPatientRepo(), roles), doctors, roles
}

// -- Tests --

func TestRegisterDoctor(t *testing.T) {
	svc, _, roles := newTestService()
	d := &Doctor{Name: "Dr. Roy", Email: "ROY@clinic.test", Specialty: "cardiology", Fee: 50000}
	if err := svc.RegisterDoctor(context.Background(), d); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.ID == uuid.Nil {
		t.Error("expected id to be assigned")
	}
	if roles.roles["roy@clinic.test"] != RoleDoctor {
		t.Error("expected doctor role bound to lowercased email")
	}
}

func TestRegisterDoctor_Validation(t *testing.T) {
	svc, _, _ := newTestService()
	if err := svc.RegisterDoctor(context.Background(), &Doctor{Email: "a@b.c"}); err == nil {
		t.Error("expected error for missing name")
	}
	if err := svc.RegisterDoctor(context.Background(), &Doctor{Name: "X"}); err == nil {
		t.Error("expected error for missing email")
	}
	if err := svc.RegisterDoctor(context.Background(), &Doctor{Name: "X", Email: "a@b.c", Fee: -1}); err == nil {
		t.Error("expected error for negative fee")
	}
}

func TestRegisterDoctor_RoleExclusivity(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	p := &Patient{Name: "Sam", Email: "sam@clinic.test"}
	if err := svc.RegisterPatient(ctx, p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := svc.RegisterDoctor(ctx, &Doctor{Name: "Sam", Email: "sam@clinic.test"})
	if err != ErrRoleTaken {
		t.Errorf("expected ErrRoleTaken, got %v", err)
	}
}

func TestRegisterDoctor_ReleasesRoleOnCreateFailure(t *testing.T) {
	doctors := newMockDoctorRepo()
	doctors.failOn = "create"
	roles := newMockRoleRepo()
	svc := NewService(doctors, newMockPatientRepo(), roles)

	err := svc.RegisterDoctor(context.Background(), &Doctor{Name: "X", Email: "x@y.z"})
	if err == nil {
		t.Fatal("expected create failure to propagate")
	}
	if _, ok := roles.roles["x@y.z"]; ok {
		t.Error("expected role binding to be released after failed create")
	}
}

func TestDeleteDoctor_ReleasesRole(t *testing.T) {
	svc, _, roles := newTestService()
	ctx := context.Background()
	d := &Doctor{Name: "Dr. Roy", Email: "roy@clinic.test"}
	svc.RegisterDoctor(ctx, d)

	if err := svc.DeleteDoctor(ctx, d.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := roles.roles["roy@clinic.test"]; ok {
		t.Error("expected role released after doctor deletion")
	}
}

func TestAssignRole_InvalidRole(t *testing.T) {
	svc, _, _ := newTestService()
	if err := svc.AssignRole(context.Background(), "x@y.z", "janitor"); err == nil {
		t.Error("expected error for unknown role")
	}
}

func TestAssignRole_StaffRole(t *testing.T) {
	svc, _, roles := newTestService()
	if err := svc.AssignRole(context.Background(), "Nina@clinic.test", RoleNurse); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if roles.roles["nina@clinic.test"] != RoleNurse {
		t.Error("expected nurse role assigned")
	}
}
