package admission

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrNotFound    = errors.New("not found")
	ErrNotAdmitted = errors.New("admission is not in admitted status")
	ErrNotReady    = errors.New("patient is not ready for discharge; set against_advice to discharge anyway")
)

// AdmissionRepository defines the persistence interface for admissions.
type AdmissionRepository interface {
	Create(ctx context.Context, a *Admission) error
	GetByID(ctx context.Context, id uuid.UUID) (*Admission, error)
	// GetForUpdate locks the row until the surrounding transaction ends.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*Admission, error)
	Update(ctx context.Context, a *Admission) error
	Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Admission, int, error)
}

// DischargeRepository defines the persistence interface for discharge snapshots.
type DischargeRepository interface {
	Create(ctx context.Context, d *Discharge) error
	GetByAdmission(ctx context.Context, admissionID uuid.UUID) (*Discharge, error)
}
