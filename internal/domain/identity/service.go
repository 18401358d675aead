package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrNotFound = errors.New("not found")
	// ErrRoleTaken means the email already holds a professional-role profile.
	ErrRoleTaken = errors.New("email is already registered with another role")
)

type Service struct {
	doctors  DoctorRepository
	patients PatientRepository
	roles    RoleRepository
}

func NewService(doctors DoctorRepository, patients PatientRepository, roles RoleRepository) *Service {
	return &Service{doctors: doctors, patients: patients, roles: roles}
}

// -- Doctors --

func (s *Service) RegisterDoctor(ctx context.Context, d *Doctor) error {
	if d.Name == "" {
		return fmt.Errorf("name is required")
	}
	if d.Email == "" {
		return fmt.Errorf("email is required")
	}
	if d.Fee < 0 {
		return fmt.Errorf("fee must not be negative")
	}
	d.Email = strings.ToLower(d.Email)

	if err := s.roles.Assign(ctx, d.Email, RoleDoctor); err != nil {
		return err
	}
	if err := s.doctors.Create(ctx, d); err != nil {
		// Best effort: release the role binding so the email is usable again.
		_ = s.roles.Remove(ctx, d.Email)
		return err
	}
	return nil
}

func (s *Service) GetDoctor(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	return s.doctors.GetByID(ctx, id)
}

// DoctorExists reports whether a doctor profile exists for id. Satisfies the
// directory interfaces of the scheduling and appointment domains.
func (s *Service) DoctorExists(ctx context.Context, id uuid.UUID) (bool, error) {
	_, err := s.doctors.GetByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *Service) UpdateDoctor(ctx context.Context, d *Doctor) error {
	if d.Fee < 0 {
		return fmt.Errorf("fee must not be negative")
	}
	return s.doctors.Update(ctx, d)
}

func (s *Service) DeleteDoctor(ctx context.Context, id uuid.UUID) error {
	d, err := s.doctors.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.doctors.Delete(ctx, id); err != nil {
		return err
	}
	return s.roles.Remove(ctx, d.Email)
}

func (s *Service) ListDoctors(ctx context.Context, limit, offset int) ([]*Doctor, int, error) {
	return s.doctors.List(ctx, limit, offset)
}

// -- Patients --

func (s *Service) RegisterPatient(ctx context.Context, p *Patient) error {
	if p.Name == "" {
		return fmt.Errorf("name is required")
	}
	if p.Email == "" {
		return fmt.Errorf("email is required")
	}
	p.Email = strings.ToLower(p.Email)

	if err := s.roles.Assign(ctx, p.Email, RolePatient); err != nil {
		return err
	}
	if err := s.patients.Create(ctx, p); err != nil {
		_ = s.roles.Remove(ctx, p.Email)
		return err
	}
	return nil
}

func (s *Service) GetPatient(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.patients.GetByID(ctx, id)
}

func (s *Service) UpdatePatient(ctx context.Context, p *Patient) error {
	return s.patients.Update(ctx, p)
}

func (s *Service) DeletePatient(ctx context.Context, id uuid.UUID) error {
	p, err := s.patients.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.patients.Delete(ctx, id); err != nil {
		return err
	}
	return s.roles.Remove(ctx, p.Email)
}

func (s *Service) ListPatients(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	return s.patients.List(ctx, limit, offset)
}

// -- Roles --

// AssignRole binds email to a staff role that has no dedicated profile table
// (nurse, pharmacist, laboratorist). Doctor and patient registration assign
// their roles as part of profile creation.
func (s *Service) AssignRole(ctx context.Context, email, role string) error {
	if !validRoles[role] {
		return fmt.Errorf("invalid role: %s", role)
	}
	return s.roles.Assign(ctx, strings.ToLower(email), role)
}

func (s *Service) RoleForEmail(ctx context.Context, email string) (*RoleProfile, error) {
	return s.roles.GetByEmail(ctx, strings.ToLower(email))
}
