package diabeticfoot

import (
	"github.com/astrobsm/UNTH-PLASTICSURGASSIST-sub000/internal/scoring"
)

// ScoreComorbidities sums the comorbidity weights and the HbA1c ladder.
func ScoreComorbidities(in ComorbidityInput) (ComorbidityScore, error) {
	if in.HbA1c != nil {
		if err := scoring.Range("comorbidities.hba1c", *in.HbA1c, 0, 25); err != nil {
			return ComorbidityScore{}, err
		}
	}

	score := scoring.Points(in.Hypertension, 5) +
		scoring.Points(in.CoronaryArteryDisease, 10) +
		scoring.Points(in.HeartFailure, 15) +
		scoring.Points(in.PeripheralVascularDisease, 15) +
		scoring.Points(in.PreviousAmputation, 20) +
		scoring.Points(in.PreviousUlcer, 10) +
		scoring.Points(in.Retinopathy, 5) +
		scoring.Points(in.PeripheralNeuropathy, 10) +
		scoring.Points(in.Stroke, 10) +
		scoring.Points(in.Obesity, 5) +
		scoring.Points(in.Immunosuppression, 10)

	if in.HbA1c != nil {
		switch h := *in.HbA1c; {
		case h >= 10:
			score += 15
		case h >= 8:
			score += 10
		case h >= 7:
			score += 5
		}
	}
	return ComorbidityScore{ComorbidityInput: in, Score: score}, nil
}

// ScoreRenal stages CKD from eGFR and adds dialysis and proteinuria points.
func ScoreRenal(in RenalInput) (RenalScore, error) {
	if err := scoring.NonNegative("renal.egfr", in.EGFR); err != nil {
		return RenalScore{}, err
	}

	var (
		ckd    string
		stage  int
		points int
	)
	switch e := in.EGFR; {
	case e >= 90:
		ckd, stage, points = "G1", 1, 0
	case e >= 60:
		ckd, stage, points = "G2", 2, 5
	case e >= 45:
		ckd, stage, points = "G3a", 3, 10
	case e >= 30:
		ckd, stage, points = "G3b", 3, 15
	case e >= 15:
		ckd, stage, points = "G4", 4, 25
	default:
		ckd, stage, points = "G5", 5, 35
	}
	points += scoring.Points(in.OnDialysis, 15) + scoring.Points(in.Proteinuria, 5)

	return RenalScore{RenalInput: in, CKDStage: ckd, Stage: stage, Score: points}, nil
}

// Sepsis likelihoods.
const (
	SepsisDefinite = "definite"
	SepsisProbable = "probable"
	SepsisPossible = "possible"
	SepsisUnlikely = "unlikely"
)

func sirsCount(in SepsisAssessmentInput) int {
	n := 0
	if in.Temperature < 36 || in.Temperature > 38 {
		n++
	}
	if in.HeartRate > 90 {
		n++
	}
	if in.RespiratoryRate > 20 {
		n++
	}
	if in.WBC < 4 || in.WBC > 12 {
		n++
	}
	return n
}

func qsofaCount(in SepsisAssessmentInput) int {
	n := 0
	if in.AlteredMentation {
		n++
	}
	if in.SystolicBP < 100 {
		n++
	}
	if in.RespiratoryRate >= 22 {
		n++
	}
	return n
}

func crpPoints(v *float64) int {
	if v == nil {
		return 0
	}
	switch {
	case *v > 200:
		return 20
	case *v > 100:
		return 15
	case *v > 50:
		return 10
	case *v > 10:
		return 5
	}
	return 0
}

func procalcitoninPoints(v *float64) int {
	if v == nil {
		return 0
	}
	switch {
	case *v > 10:
		return 20
	case *v > 2:
		return 15
	case *v > 0.5:
		return 10
	}
	return 0
}

func lactatePoints(v *float64) int {
	if v == nil {
		return 0
	}
	switch {
	case *v > 4:
		return 20
	case *v > 2:
		return 10
	}
	return 0
}

func optionalNonNegative(field string, v *float64) error {
	if v == nil {
		return nil
	}
	return scoring.NonNegative(field, *v)
}

// ScoreSepsis counts SIRS and qSOFA criteria and adds local signs and
// laboratory points. The positivity flags are independent of the score.
func ScoreSepsis(in SepsisAssessmentInput) (SepsisScore, error) {
	err := scoring.Check(
		scoring.Range("sepsis.temperature", in.Temperature, 20, 45),
		scoring.NonNegative("sepsis.heart_rate", in.HeartRate),
		scoring.NonNegative("sepsis.respiratory_rate", in.RespiratoryRate),
		scoring.NonNegative("sepsis.wbc", in.WBC),
		scoring.NonNegative("sepsis.systolic_bp", in.SystolicBP),
		optionalNonNegative("sepsis.crp", in.CRP),
		optionalNonNegative("sepsis.procalcitonin", in.Procalcitonin),
		optionalNonNegative("sepsis.lactate", in.Lactate),
	)
	if err != nil {
		return SepsisScore{}, err
	}

	sirs := sirsCount(in)
	qsofa := qsofaCount(in)

	likelihood := SepsisUnlikely
	switch {
	case sirs >= 2 && qsofa >= 2:
		likelihood = SepsisDefinite
	case sirs >= 2 || qsofa >= 2:
		likelihood = SepsisProbable
	case sirs == 1 || qsofa == 1:
		likelihood = SepsisPossible
	}

	score := sirs*5 + qsofa*10 +
		scoring.Points(in.Crepitus, 20) +
		scoring.Points(in.FoulSmell, 10) +
		scoring.Points(in.PurulentDischarge, 5) +
		scoring.Points(in.Lymphangitis, 8) +
		scoring.Points(in.LocalCellulitis, 5) +
		crpPoints(in.CRP) + procalcitoninPoints(in.Procalcitonin) + lactatePoints(in.Lactate)

	return SepsisScore{
		SepsisAssessmentInput: in,
		SIRSCount:             sirs,
		QSOFACount:            qsofa,
		SIRSPositive:          sirs >= 2,
		QSOFAPositive:         qsofa >= 2,
		Likelihood:            likelihood,
		Score:                 score,
	}, nil
}
