package diabeticfoot

import (
	"github.com/astrobsm/UNTH-PLASTICSURGASSIST-sub000/internal/scoring"
)

// Osteomyelitis likelihoods share the sepsis vocabulary.
const (
	OsteoDefinite = SepsisDefinite
	OsteoProbable = SepsisProbable
	OsteoPossible = SepsisPossible
	OsteoUnlikely = SepsisUnlikely
)

// ScoreOsteomyelitis weighs clinical, imaging and laboratory findings.
func ScoreOsteomyelitis(in OsteomyelitisInput) (OsteomyelitisScore, error) {
	err := scoring.Check(
		optionalNonNegative("osteomyelitis.esr", in.ESR),
		optionalNonNegative("osteomyelitis.ulcer_area", in.UlcerArea),
		optionalNonNegative("osteomyelitis.ulcer_depth", in.UlcerDepth),
	)
	if err != nil {
		return OsteomyelitisScore{}, err
	}

	score := scoring.Points(in.ProbeToBone, 20) +
		scoring.Points(in.ExposedBone, 15) +
		scoring.Points(in.XRayChanges, 15) +
		scoring.Points(in.MRIPositive, 25) +
		scoring.Points(in.BoneBiopsyPositive, 30) +
		scoring.Points(in.ESR != nil && *in.ESR > 70, 10) +
		scoring.Points(in.UlcerArea != nil && *in.UlcerArea > 2, 5) +
		scoring.Points(in.UlcerDepth != nil && *in.UlcerDepth > 3, 5)

	likelihood := OsteoUnlikely
	switch {
	case score >= 50:
		likelihood = OsteoDefinite
	case score >= 30:
		likelihood = OsteoProbable
	case score >= 15:
		likelihood = OsteoPossible
	}
	return OsteomyelitisScore{OsteomyelitisInput: in, Likelihood: likelihood, Score: score}, nil
}
