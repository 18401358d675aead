package reports

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, r *MedicalReport) error
	GetByID(ctx context.Context, id uuid.UUID) (*MedicalReport, error)
	Update(ctx context.Context, r *MedicalReport) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByType(ctx context.Context, reportType string, limit, offset int) ([]*MedicalReport, int, error)
}
