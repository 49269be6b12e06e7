package admission

import (
	"github.com/astrobsm/UNTH-PLASTICSURGASSIST-sub000/internal/scoring"
)

// WHO discharge recommendations, most to least ready.
const (
	FitForDischarge               = "fit_for_discharge"
	DischargeOnRequest            = "discharge_on_request"
	DischargeAgainstMedicalAdvice = "discharge_against_medical_advice"
	NotReadyForDischarge          = "not_ready"
)

// WHOMaxScore is the score with every item fully met and no risk flags.
const WHOMaxScore = 33

const (
	penaltyHighReadmissionRisk = 2
	penaltyComplexMedicalNeeds = 2
	penaltyLanguageBarrier     = 1
)

type checklistItem struct {
	field string
	value int
}

func (a WHODischargeAssessment) ordinals() []checklistItem {
	return []checklistItem{
		{"vital_signs_stability", a.VitalSignsStability},
		{"pain_control", a.PainControl},
		{"mobility", a.Mobility},
		{"wound_healing", a.WoundHealing},
		{"oral_intake", a.OralIntake},
		{"elimination", a.Elimination},
		{"mental_status", a.MentalStatus},
		{"self_care", a.SelfCare},
		{"medication_understanding", a.MedicationUnderstanding},
		{"follow_up_arranged", a.FollowUpArranged},
		{"home_support", a.HomeSupport},
	}
}

// Validate reports every ordinal outside 0-3.
func (a WHODischargeAssessment) Validate() error {
	var errs []error
	for _, o := range a.ordinals() {
		errs = append(errs, scoring.Ordinal(o.field, o.value, 0, 3))
	}
	return scoring.Check(errs...)
}

// ScoreWHODischarge sums the eleven checklist items, subtracts the risk flag
// penalties and bands the total.
func ScoreWHODischarge(a WHODischargeAssessment) (WHODischargeScore, error) {
	if err := a.Validate(); err != nil {
		return WHODischargeScore{}, err
	}

	sum := 0
	for _, o := range a.ordinals() {
		sum += o.value
	}
	penalty := scoring.Points(a.HighReadmissionRisk, penaltyHighReadmissionRisk) +
		scoring.Points(a.ComplexMedicalNeeds, penaltyComplexMedicalNeeds) +
		scoring.Points(a.LanguageBarrier, penaltyLanguageBarrier)

	total := sum - penalty
	return WHODischargeScore{
		WHODischargeAssessment: a,
		OrdinalSum:             sum,
		Penalty:                penalty,
		TotalScore:             total,
		Recommendation:         WHORecommendation(total),
	}, nil
}

// WHORecommendation bands a total top-down; the first matching band wins.
func WHORecommendation(total int) string {
	switch {
	case total >= 27:
		return FitForDischarge
	case total >= 20:
		return DischargeOnRequest
	case total >= 12:
		return DischargeAgainstMedicalAdvice
	default:
		return NotReadyForDischarge
	}
}

// Display is a label/description pair for the UI.
type Display struct {
	Label       string `json:"label"`
	Description string `json:"description"`
}

// WHORecommendationDisplay returns the label for a recommendation. Unknown
// values yield ok=false.
func WHORecommendationDisplay(rec string) (Display, bool) {
	switch rec {
	case FitForDischarge:
		return Display{"Fit for discharge", "All discharge criteria substantially met."}, true
	case DischargeOnRequest:
		return Display{"Discharge on request", "Most criteria met; discharge acceptable if the patient requests it."}, true
	case DischargeAgainstMedicalAdvice:
		return Display{"Discharge against medical advice", "Significant criteria unmet; discharge only against medical advice."}, true
	case NotReadyForDischarge:
		return Display{"Not ready", "Patient should remain admitted."}, true
	}
	return Display{}, false
}
