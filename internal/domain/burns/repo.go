package burns

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrNotFound          = errors.New("burn assessment not found")
	ErrAdmissionNotFound = errors.New("admission not found")
)

// AssessmentRepository defines the persistence interface for burn assessment
// snapshots.
type AssessmentRepository interface {
	Create(ctx context.Context, a *StoredAssessment) error
	GetByID(ctx context.Context, id uuid.UUID) (*StoredAssessment, error)
	ListByAdmission(ctx context.Context, admissionID uuid.UUID, limit, offset int) ([]*StoredAssessment, int, error)
}
