package diabeticfoot

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/astrobsm/UNTH-PLASTICSURGASSIST-sub000/internal/platform/metrics"
	"github.com/astrobsm/UNTH-PLASTICSURGASSIST-sub000/internal/scoring"
)

// CalcKind labels diabetic-foot calculations in metrics.
const CalcKind = "diabetic_foot"

var validRiskCategories = map[string]bool{
	RiskLow: true, RiskModerate: true, RiskHigh: true, RiskCritical: true,
}

type Service struct {
	assessments AssessmentRepository
	metrics     metrics.Recorder
	logger      zerolog.Logger
	now         func() time.Time
}

func NewService(assessments AssessmentRepository, rec metrics.Recorder, logger zerolog.Logger) *Service {
	if rec == nil {
		rec = metrics.Nop{}
	}
	return &Service{
		assessments: assessments,
		metrics:     rec,
		logger:      logger.With().Str("component", "diabetic_foot").Logger(),
		now:         time.Now,
	}
}

// Calculate scores every present component and derives the total, the
// recommendations and the monitoring plan. Nothing is stored.
func (s *Service) Calculate(in AssessmentInput) (Evaluation, error) {
	eval, err := Evaluate(in)
	switch {
	case err == nil:
		s.metrics.ObserveCalculation(CalcKind, metrics.OutcomeOK)
	case errors.Is(err, scoring.ErrOutOfDomain):
		s.metrics.ObserveCalculation(CalcKind, metrics.OutcomeRejected)
	default:
		s.metrics.ObserveCalculation(CalcKind, metrics.OutcomeError)
	}
	return eval, err
}

// Record recomputes the evaluation from the raw input and stores both. Any
// client-supplied scores are ignored.
func (s *Service) Record(ctx context.Context, admissionID uuid.UUID, in AssessmentInput, actor string) (*StoredAssessment, error) {
	if admissionID == uuid.Nil {
		return nil, scoring.Invalidf("admission_id is required")
	}
	eval, err := s.Calculate(in)
	if err != nil {
		return nil, err
	}
	a := &StoredAssessment{
		AdmissionID:             admissionID,
		Input:                   in,
		Evaluation:              eval,
		SchemaVersion:           SnapshotVersion,
		TotalScore:              eval.Total.TotalScore,
		RiskCategory:            eval.Total.RiskCategory,
		RecommendedIntervention: eval.Recommendations.RecommendedIntervention,
		AssessedAt:              s.now().UTC(),
	}
	if actor != "" {
		a.AssessedBy = &actor
	}
	if err := s.assessments.Create(ctx, a); err != nil {
		if !errors.Is(err, ErrAdmissionNotFound) {
			s.logger.Error().Err(err).Str("admission_id", admissionID.String()).Msg("store diabetic foot assessment failed")
		}
		return nil, err
	}
	s.metrics.ObserveBand(CalcKind, a.RiskCategory)
	s.logger.Info().
		Str("assessment_id", a.ID.String()).
		Str("admission_id", admissionID.String()).
		Int("total_score", a.TotalScore).
		Str("risk_category", a.RiskCategory).
		Str("intervention", a.RecommendedIntervention).
		Msg("diabetic foot assessment recorded")
	return a, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*StoredAssessment, error) {
	return s.assessments.GetByID(ctx, id)
}

func (s *Service) ListByAdmission(ctx context.Context, admissionID uuid.UUID, limit, offset int) ([]*StoredAssessment, int, error) {
	return s.assessments.ListByAdmission(ctx, admissionID, limit, offset)
}

func (s *Service) Search(ctx context.Context, params map[string]string, limit, offset int) ([]*StoredAssessment, int, error) {
	if rc, ok := params["risk_category"]; ok && rc != "" && !validRiskCategories[rc] {
		return nil, 0, scoring.Invalidf("invalid risk_category: %s", rc)
	}
	return s.assessments.Search(ctx, params, limit, offset)
}
