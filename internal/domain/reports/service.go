package reports

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrNotFound    = errors.New("report not found")
	ErrInvalidType = errors.New("invalid report type")
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, r *MedicalReport) error {
	if !IsValidType(r.Type) {
		return ErrInvalidType
	}
	if r.PatientID == uuid.Nil {
		return fmt.Errorf("patient is required")
	}
	if r.DoctorID == uuid.Nil {
		return fmt.Errorf("doctor is required")
	}
	if r.Date.IsZero() {
		return fmt.Errorf("date is required")
	}
	return s.repo.Create(ctx, r)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*MedicalReport, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Update(ctx context.Context, r *MedicalReport) error {
	if !IsValidType(r.Type) {
		return ErrInvalidType
	}
	return s.repo.Update(ctx, r)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) ListByType(ctx context.Context, reportType string, limit, offset int) ([]*MedicalReport, int, error) {
	if !IsValidType(reportType) {
		return nil, 0, ErrInvalidType
	}
	return s.repo.ListByType(ctx, reportType, limit, offset)
}
