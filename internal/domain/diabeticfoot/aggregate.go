package diabeticfoot

import (
	"github.com/astrobsm/UNTH-PLASTICSURGASSIST-sub000/internal/scoring"
)

// Risk categories on the composite total.
const (
	RiskLow      = "low_risk_limb_salvage_likely"
	RiskModerate = "moderate_risk_limb_salvage_possible"
	RiskHigh     = "high_risk_limb_threatened"
	RiskCritical = "critical_risk_amputation_likely"
)

var (
	sexPoints        = map[string]int{"male": 5, "female": 0}
	smokingPoints    = map[string]int{"never": 0, "former": 5, "current": 15}
	ambulatoryPoints = map[string]int{"ambulatory": 0, "assisted": 5, "wheelchair": 10, "bedbound": 15}
)

// ScoreDemographics bands age, sex, diabetes duration, smoking and mobility.
func ScoreDemographics(d Demographics) (DemographicsScore, error) {
	err := scoring.Check(
		scoring.Ordinal("demographics.age", d.Age, 0, 130),
		enumMember("demographics.sex", d.Sex, sexPoints),
		scoring.NonNegative("demographics.diabetes_duration_years", d.DiabetesDurationYears),
		enumMember("demographics.smoking_status", d.SmokingStatus, smokingPoints),
		enumMember("demographics.ambulatory_status", d.AmbulatoryStatus, ambulatoryPoints),
	)
	if err != nil {
		return DemographicsScore{}, err
	}

	var age int
	switch {
	case d.Age < 40:
		age = 0
	case d.Age < 50:
		age = 5
	case d.Age < 60:
		age = 10
	case d.Age < 70:
		age = 15
	default:
		age = 20
	}

	var duration int
	switch y := d.DiabetesDurationYears; {
	case y < 5:
		duration = 0
	case y < 10:
		duration = 5
	case y < 20:
		duration = 10
	default:
		duration = 15
	}

	s := DemographicsScore{
		Demographics:     d,
		AgePoints:        age,
		SexPoints:        sexPoints[d.Sex],
		DurationPoints:   duration,
		SmokingPoints:    smokingPoints[d.SmokingStatus],
		AmbulatoryPoints: ambulatoryPoints[d.AmbulatoryStatus],
	}
	s.Score = s.AgePoints + s.SexPoints + s.DurationPoints + s.SmokingPoints + s.AmbulatoryPoints
	return s, nil
}

// RiskCategory bands a composite total and returns the fixed limb salvage
// probability (percent) tied to the band.
func RiskCategory(total int) (string, int) {
	switch {
	case total < 50:
		return RiskLow, 90
	case total < 100:
		return RiskModerate, 70
	case total < 200:
		return RiskHigh, 40
	default:
		return RiskCritical, 15
	}
}

// CalculateTotalScore sums the score of every present component plus the
// demographics sub-score. Absent components contribute nothing and SINBAD is
// never summed. Any stored total is ignored.
func CalculateTotalScore(a DiabeticFootAssessment) (TotalScore, error) {
	var out TotalScore
	total := 0

	if a.Demographics != nil {
		ds, err := ScoreDemographics(*a.Demographics)
		if err != nil {
			return TotalScore{}, err
		}
		out.DemographicsScore = &ds
		total += ds.Score
	}
	if a.Wagner != nil {
		total += a.Wagner.Score
	}
	if a.Texas != nil {
		total += a.Texas.Score
	}
	if a.WIfI != nil {
		total += a.WIfI.Score
	}
	if a.Comorbidities != nil {
		total += a.Comorbidities.Score
	}
	if a.Renal != nil {
		total += a.Renal.Score
	}
	if a.Sepsis != nil {
		total += a.Sepsis.Score
	}
	if a.Arterial != nil {
		total += a.Arterial.Score
	}
	if a.Venous != nil {
		total += a.Venous.Score
	}
	if a.Osteomyelitis != nil {
		total += a.Osteomyelitis.Score
	}

	out.TotalScore = total
	out.RiskCategory, out.LimbSalvageProbability = RiskCategory(total)
	return out, nil
}

// Score runs every present input through its primitive. All out-of-domain
// fields are reported together.
func Score(in AssessmentInput) (DiabeticFootAssessment, error) {
	a := DiabeticFootAssessment{Demographics: in.Demographics}
	var errs []error

	if in.Demographics != nil {
		_, err := ScoreDemographics(*in.Demographics)
		errs = append(errs, err)
	}
	if in.Wagner != nil {
		r, err := ScoreWagner(*in.Wagner)
		a.Wagner, errs = keep(r, err, errs)
	}
	if in.Texas != nil {
		r, err := ScoreTexas(*in.Texas)
		a.Texas, errs = keep(r, err, errs)
	}
	if in.WIfI != nil {
		r, err := ScoreWIfI(*in.WIfI)
		a.WIfI, errs = keep(r, err, errs)
	}
	if in.SINBAD != nil {
		r, err := ScoreSINBAD(*in.SINBAD)
		a.SINBAD, errs = keep(r, err, errs)
	}
	if in.Comorbidities != nil {
		r, err := ScoreComorbidities(*in.Comorbidities)
		a.Comorbidities, errs = keep(r, err, errs)
	}
	if in.Renal != nil {
		r, err := ScoreRenal(*in.Renal)
		a.Renal, errs = keep(r, err, errs)
	}
	if in.Sepsis != nil {
		r, err := ScoreSepsis(*in.Sepsis)
		a.Sepsis, errs = keep(r, err, errs)
	}
	if in.Arterial != nil {
		r, err := ScoreArterialDoppler(*in.Arterial)
		a.Arterial, errs = keep(r, err, errs)
	}
	if in.Venous != nil {
		r, err := ScoreVenousDoppler(*in.Venous)
		a.Venous, errs = keep(r, err, errs)
	}
	if in.Osteomyelitis != nil {
		r, err := ScoreOsteomyelitis(*in.Osteomyelitis)
		a.Osteomyelitis, errs = keep(r, err, errs)
	}

	if err := scoring.Check(errs...); err != nil {
		return DiabeticFootAssessment{}, err
	}
	return a, nil
}

func keep[T any](r T, err error, errs []error) (*T, []error) {
	if err != nil {
		return nil, append(errs, err)
	}
	return &r, errs
}

// Evaluate scores the input and derives the total, recommendations and
// monitoring plan.
func Evaluate(in AssessmentInput) (Evaluation, error) {
	a, err := Score(in)
	if err != nil {
		return Evaluation{}, err
	}
	total, err := CalculateTotalScore(a)
	if err != nil {
		return Evaluation{}, err
	}
	plan, err := GenerateMonitoringPlan(a, total.RiskCategory)
	if err != nil {
		return Evaluation{}, err
	}
	return Evaluation{
		Assessment:      a,
		Total:           total,
		Recommendations: GenerateRecommendations(a),
		MonitoringPlan:  plan,
	}, nil
}
