package admission

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/astrobsm/UNTH-PLASTICSURGASSIST-sub000/internal/platform/db"
	"github.com/astrobsm/UNTH-PLASTICSURGASSIST-sub000/internal/platform/metrics"
	"github.com/astrobsm/UNTH-PLASTICSURGASSIST-sub000/internal/scoring"
)

// Admission statuses.
const (
	StatusAdmitted    = "admitted"
	StatusDischarged  = "discharged"
	StatusTransferred = "transferred"
	StatusDeceased    = "deceased"
)

// CalcKind labels WHO discharge calculations in metrics.
const CalcKind = "who_discharge"

var validStatuses = map[string]bool{
	StatusAdmitted: true, StatusDischarged: true, StatusTransferred: true, StatusDeceased: true,
}

var validSexes = map[string]bool{"male": true, "female": true}

type Service struct {
	admissions AdmissionRepository
	discharges DischargeRepository
	tx         db.TxRunner
	metrics    metrics.Recorder
	logger     zerolog.Logger
	now        func() time.Time
}

func NewService(admissions AdmissionRepository, discharges DischargeRepository, tx db.TxRunner, rec metrics.Recorder, logger zerolog.Logger) *Service {
	if rec == nil {
		rec = metrics.Nop{}
	}
	return &Service{
		admissions: admissions,
		discharges: discharges,
		tx:         tx,
		metrics:    rec,
		logger:     logger.With().Str("component", "admission").Logger(),
		now:        time.Now,
	}
}

// -- Admissions --

func validateAdmission(a *Admission) error {
	if strings.TrimSpace(a.HospitalNumber) == "" {
		return scoring.Invalidf("hospital_number is required")
	}
	if strings.TrimSpace(a.PatientName) == "" {
		return scoring.Invalidf("patient_name is required")
	}
	if strings.TrimSpace(a.Ward) == "" {
		return scoring.Invalidf("ward is required")
	}
	if strings.TrimSpace(a.Diagnosis) == "" {
		return scoring.Invalidf("diagnosis is required")
	}
	if !validSexes[a.Sex] {
		return scoring.Invalidf("invalid sex: %s", a.Sex)
	}
	if err := scoring.Ordinal("age", a.Age, 0, 130); err != nil {
		return err
	}
	return nil
}

func (s *Service) CreateAdmission(ctx context.Context, a *Admission) error {
	if err := validateAdmission(a); err != nil {
		return err
	}
	if a.Status == "" {
		a.Status = StatusAdmitted
	}
	if a.Status != StatusAdmitted {
		return scoring.Invalidf("new admissions must have status %s", StatusAdmitted)
	}
	if a.AdmittedAt.IsZero() {
		a.AdmittedAt = s.now().UTC()
	}
	a.DischargedAt = nil
	if err := s.admissions.Create(ctx, a); err != nil {
		s.logger.Error().Err(err).Str("hospital_number", a.HospitalNumber).Msg("create admission failed")
		return fmt.Errorf("create admission: %w", err)
	}
	return nil
}

func (s *Service) GetAdmission(ctx context.Context, id uuid.UUID) (*Admission, error) {
	return s.admissions.GetByID(ctx, id)
}

// UpdateAdmission edits the demographic and ward fields. Discharged records
// are frozen and moving into the discharged state goes through Discharge.
func (s *Service) UpdateAdmission(ctx context.Context, a *Admission) error {
	if err := validateAdmission(a); err != nil {
		return err
	}
	if a.Status == "" {
		a.Status = StatusAdmitted
	}
	if !validStatuses[a.Status] {
		return scoring.Invalidf("invalid status: %s", a.Status)
	}
	if a.Status == StatusDischarged {
		return scoring.Invalidf("use the discharge endpoint to discharge a patient")
	}
	return s.tx.WithTx(ctx, func(ctx context.Context) error {
		current, err := s.admissions.GetForUpdate(ctx, a.ID)
		if err != nil {
			return err
		}
		if current.Status == StatusDischarged {
			return ErrNotAdmitted
		}
		a.AdmittedAt = current.AdmittedAt
		a.CreatedAt = current.CreatedAt
		a.DischargedAt = nil
		return s.admissions.Update(ctx, a)
	})
}

func (s *Service) SearchAdmissions(ctx context.Context, params map[string]string, limit, offset int) ([]*Admission, int, error) {
	if st, ok := params["status"]; ok && st != "" && !validStatuses[st] {
		return nil, 0, scoring.Invalidf("invalid status: %s", st)
	}
	return s.admissions.Search(ctx, params, limit, offset)
}

// -- Discharge --

// ScoreDischarge scores a checklist without touching storage.
func (s *Service) ScoreDischarge(a WHODischargeAssessment) (WHODischargeScore, error) {
	score, err := ScoreWHODischarge(a)
	s.observe(err)
	return score, err
}

func (s *Service) observe(err error) {
	switch {
	case err == nil:
		s.metrics.ObserveCalculation(CalcKind, metrics.OutcomeOK)
	case errors.Is(err, scoring.ErrOutOfDomain):
		s.metrics.ObserveCalculation(CalcKind, metrics.OutcomeRejected)
	default:
		s.metrics.ObserveCalculation(CalcKind, metrics.OutcomeError)
	}
}

// Discharge scores the checklist, stores the snapshot and marks the admission
// discharged in one transaction. A not_ready score needs against_advice.
func (s *Service) Discharge(ctx context.Context, admissionID uuid.UUID, req DischargeRequest, actor string) (*Discharge, error) {
	score, err := s.ScoreDischarge(req.Assessment)
	if err != nil {
		return nil, err
	}
	if score.Recommendation == NotReadyForDischarge && !req.AgainstAdvice {
		return nil, ErrNotReady
	}

	at := s.now().UTC()
	if req.DischargedAt != nil {
		at = req.DischargedAt.UTC()
	}

	d := &Discharge{
		AdmissionID:        admissionID,
		Assessment:         score,
		TotalScore:         score.TotalScore,
		Recommendation:     score.Recommendation,
		AgainstAdvice:      req.AgainstAdvice,
		Destination:        req.Destination,
		DischargeDiagnosis: req.DischargeDiagnosis,
		Medications:        req.Medications,
		FollowUp:           req.FollowUp,
		Narrative:          req.Narrative,
		DischargedAt:       at,
	}
	if actor != "" {
		d.DischargedBy = &actor
	}

	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		a, err := s.admissions.GetForUpdate(ctx, admissionID)
		if err != nil {
			return err
		}
		if a.Status != StatusAdmitted {
			return ErrNotAdmitted
		}
		if at.Before(a.AdmittedAt) {
			return scoring.Invalidf("discharged_at precedes admitted_at")
		}
		if err := s.discharges.Create(ctx, d); err != nil {
			return fmt.Errorf("create discharge: %w", err)
		}
		a.Status = StatusDischarged
		a.DischargedAt = &at
		return s.admissions.Update(ctx, a)
	})
	if err != nil {
		if !errors.Is(err, ErrNotAdmitted) && !errors.Is(err, ErrNotFound) {
			s.logger.Error().Err(err).Str("admission_id", admissionID.String()).Msg("discharge failed")
		}
		return nil, err
	}

	s.metrics.ObserveBand(CalcKind, d.Recommendation)
	s.logger.Info().
		Str("admission_id", admissionID.String()).
		Int("total_score", d.TotalScore).
		Str("recommendation", d.Recommendation).
		Bool("against_advice", d.AgainstAdvice).
		Msg("patient discharged")
	return d, nil
}

func (s *Service) GetDischarge(ctx context.Context, admissionID uuid.UUID) (*Discharge, error) {
	return s.discharges.GetByAdmission(ctx, admissionID)
}
