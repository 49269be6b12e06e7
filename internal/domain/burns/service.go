package burns

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/astrobsm/UNTH-PLASTICSURGASSIST-sub000/internal/platform/metrics"
	"github.com/astrobsm/UNTH-PLASTICSURGASSIST-sub000/internal/scoring"
)

// Metric kinds for burn calculations.
const (
	KindTBSA          = "burn_tbsa"
	KindBaux          = "burn_baux"
	KindABSI          = "burn_absi"
	KindResuscitation = "burn_resuscitation"
	KindTitration     = "burn_titration"
	KindVitals        = "burn_vitals"
	KindAssessment    = "burn_assessment"
)

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
		logger:      logger.With().Str("component", "burns").Logger(),
		now:         time.Now,
	}
}

func (s *Service) observe(kind string, err error) {
	switch {
	case err == nil:
		s.metrics.ObserveCalculation(kind, metrics.OutcomeOK)
	case errors.Is(err, scoring.ErrOutOfDomain):
		s.metrics.ObserveCalculation(kind, metrics.OutcomeRejected)
	default:
		s.metrics.ObserveCalculation(kind, metrics.OutcomeError)
	}
}

func (s *Service) TBSA(in TBSAInput) (TBSAResult, error) {
	r, err := CalculateTBSA(in)
	s.observe(KindTBSA, err)
	return r, err
}

func (s *Service) Baux(in BauxInput) (BauxScore, error) {
	r, err := ScoreBaux(in)
	s.observe(KindBaux, err)
	return r, err
}

func (s *Service) ABSI(in ABSIInput) (ABSIScore, error) {
	r, err := ScoreABSI(in)
	s.observe(KindABSI, err)
	return r, err
}

// Resuscitation plans fluids as of the service clock.
func (s *Service) Resuscitation(in ResuscitationInput) (ResuscitationPlan, error) {
	if in.Formula == "" {
		in.Formula = FormulaParkland
	}
	r, err := PlanResuscitation(in, s.now())
	s.observe(KindResuscitation, err)
	return r, err
}

// Titrate recomputes the current plan and adjusts its rate for the measured
// hourly urine output.
func (s *Service) Titrate(in ResuscitationInput, urineMlPerHour float64) (Titration, error) {
	if in.Formula == "" {
		in.Formula = FormulaParkland
	}
	plan, err := PlanResuscitation(in, s.now())
	if err != nil {
		s.observe(KindTitration, err)
		return Titration{}, err
	}
	t, err := TitrateFluids(plan, urineMlPerHour, in.WeightKg)
	s.observe(KindTitration, err)
	return t, err
}

func (s *Service) Vitals(v Vitals) []BurnAlert {
	alerts := EvaluateVitals(v)
	s.observe(KindVitals, nil)
	return alerts
}

// Calculate evaluates a full admission assessment without storing it.
func (s *Service) Calculate(in AssessmentInput) (Evaluation, error) {
	eval, err := Evaluate(in, s.now())
	s.observe(KindAssessment, err)
	return eval, err
}

// Record evaluates the assessment and stores the input with its evaluation.
func (s *Service) Record(ctx context.Context, admissionID uuid.UUID, in AssessmentInput, actor string) (*StoredAssessment, error) {
	if admissionID == uuid.Nil {
		return nil, scoring.Invalidf("admission_id is required")
	}
	eval, err := s.Calculate(in)
	if err != nil {
		return nil, err
	}
	a := &StoredAssessment{
		AdmissionID:   admissionID,
		Input:         in,
		Evaluation:    eval,
		SchemaVersion: SnapshotVersion,
		TBSA:          eval.TBSA.TBSA,
		ABSI:          eval.ABSI.Score,
		RevisedBaux:   eval.Baux.RevisedBaux,
		AssessedAt:    s.now().UTC(),
	}
	if actor != "" {
		a.AssessedBy = &actor
	}
	if err := s.assessments.Create(ctx, a); err != nil {
		if !errors.Is(err, ErrAdmissionNotFound) {
			s.logger.Error().Err(err).Str("admission_id", admissionID.String()).Msg("store burn assessment failed")
		}
		return nil, err
	}
	s.metrics.ObserveBand(KindAssessment, eval.ABSI.MortalityRisk)
	s.logger.Info().
		Str("assessment_id", a.ID.String()).
		Str("admission_id", admissionID.String()).
		Float64("tbsa", a.TBSA).
		Int("absi", a.ABSI).
		Msg("burn assessment recorded")
	return a, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*StoredAssessment, error) {
	return s.assessments.GetByID(ctx, id)
}

func (s *Service) ListByAdmission(ctx context.Context, admissionID uuid.UUID, limit, offset int) ([]*StoredAssessment, int, error) {
	return s.assessments.ListByAdmission(ctx, admissionID, limit, offset)
}

// CurrentPlan replans a stored assessment's resuscitation at the service
// clock. The stored snapshot keeps the plan as it was at assessment time.
func (s *Service) CurrentPlan(ctx context.Context, id uuid.UUID) (ResuscitationPlan, error) {
	a, err := s.assessments.GetByID(ctx, id)
	if err != nil {
		return ResuscitationPlan{}, err
	}
	return s.Resuscitation(ResuscitationInput{
		Formula:    a.Input.Formula,
		WeightKg:   a.Input.WeightKg,
		TBSA:       a.TBSA,
		AgeYears:   a.Input.AgeYears,
		TimeOfBurn: a.Input.TimeOfBurn,
	})
}
