package cme

import (
	"errors"

	"github.com/rs/zerolog"

	"github.com/astrobsm/UNTH-PLASTICSURGASSIST-sub000/internal/platform/metrics"
)

// CalcKind labels quiz gradings in metrics.
const CalcKind = "cme_quiz"

type Service struct {
	lib     *Library
	metrics metrics.Recorder
	logger  zerolog.Logger
}

func NewService(lib *Library, rec metrics.Recorder, logger zerolog.Logger) *Service {
	if rec == nil {
		rec = metrics.Nop{}
	}
	return &Service{lib: lib, metrics: rec, logger: logger.With().Str("component", "cme").Logger()}
}

func (s *Service) ListModules() []ModuleSummary { return s.lib.ListModules() }

func (s *Service) GetModule(id string) (*Module, error) { return s.lib.GetModule(id) }

func (s *Service) GetTopic(moduleID, topicID string) (*Topic, error) {
	return s.lib.GetTopic(moduleID, topicID)
}

// Outline lists "module/topic" paths in display order.
func (s *Service) Outline() []string {
	var out []string
	s.lib.Walk(func(m *Module, t *Topic) error {
		out = append(out, m.ID+"/"+t.ID)
		return nil
	})
	return out
}

func (s *Service) GradeQuiz(moduleID, topicID string, answers []int) (QuizResult, error) {
	r, err := s.lib.GradeQuiz(moduleID, topicID, answers)
	switch {
	case err == nil:
		s.metrics.ObserveCalculation(CalcKind, metrics.OutcomeOK)
	case errors.Is(err, ErrModuleNotFound), errors.Is(err, ErrTopicNotFound):
		return r, err
	default:
		s.metrics.ObserveCalculation(CalcKind, metrics.OutcomeRejected)
		return r, err
	}
	band := "failed"
	if r.Passed {
		band = "passed"
	}
	s.metrics.ObserveBand(CalcKind, band)
	s.logger.Debug().
		Str("module", moduleID).
		Str("topic", topicID).
		Float64("percentage", r.Percentage).
		Bool("passed", r.Passed).
		Msg("quiz graded")
	return r, nil
}
