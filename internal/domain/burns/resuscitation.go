package burns

import (
	"fmt"
	"time"

	"github.com/astrobsm/UNTH-PLASTICSURGASSIST-sub000/internal/scoring"
)

// Resuscitation formulas.
const (
	FormulaParkland       = "parkland"
	FormulaModifiedBrooke = "modified_brooke"
)

// Resuscitation phases.
const (
	PhaseFirst8Hours = "first_8_hours"
	PhaseNext16Hours = "next_16_hours"
	PhaseMaintenance = "maintenance"
)

// Patients younger than this get paediatric urine targets and maintenance fluid.
const paediatricAgeLimit = 14

var formulaMlPerKgPerPercent = map[string]float64{
	FormulaParkland:       4,
	FormulaModifiedBrooke: 2,
}

// HollidaySegar returns the hourly maintenance rate in mL/h: 4 mL/kg for the
// first 10 kg, 2 mL/kg for the next 10 kg and 1 mL/kg beyond.
func HollidaySegar(kg float64) float64 {
	switch {
	case kg <= 10:
		return 4 * kg
	case kg <= 20:
		return 40 + 2*(kg-10)
	default:
		return 60 + (kg - 20)
	}
}

// TargetUrineOutput returns the target in mL/kg/h for the patient's age.
func TargetUrineOutput(ageYears float64) float64 {
	if ageYears < paediatricAgeLimit {
		return 1.0
	}
	return 0.5
}

// PlanResuscitation computes the 24 hour fluid requirement and the infusion
// rate due at now. The rate spreads the current half's volume over the hours
// left in its 8 or 16 hour window.
func PlanResuscitation(in ResuscitationInput, now time.Time) (ResuscitationPlan, error) {
	err := scoring.Check(
		scoring.OneOf("resuscitation.formula", in.Formula, FormulaParkland, FormulaModifiedBrooke),
		scoring.Positive("resuscitation.weight_kg", in.WeightKg),
		scoring.Range("resuscitation.tbsa", in.TBSA, 0, 100),
		scoring.Range("resuscitation.age_years", in.AgeYears, 0, 130),
	)
	if err != nil {
		return ResuscitationPlan{}, err
	}
	if in.TimeOfBurn.IsZero() {
		return ResuscitationPlan{}, &scoring.DomainError{Field: "resuscitation.time_of_burn", Value: in.TimeOfBurn, Domain: "a recorded time"}
	}

	hours := now.Sub(in.TimeOfBurn).Hours()
	if hours < 0 {
		return ResuscitationPlan{}, &scoring.DomainError{
			Field:  "resuscitation.time_of_burn",
			Value:  in.TimeOfBurn.Format(time.RFC3339),
			Domain: fmt.Sprintf("times not after %s", now.Format(time.RFC3339)),
		}
	}

	total := formulaMlPerKgPerPercent[in.Formula] * in.WeightKg * in.TBSA
	p := ResuscitationPlan{
		ResuscitationInput: in,
		Total24h:           total,
		FirstHalfVolume:    total / 2,
		SecondHalfVolume:   total / 2,
		HoursSinceBurn:     hours,
		TargetUrineOutput:  TargetUrineOutput(in.AgeYears),
		ComputedAt:         now,
	}
	p.TargetUrineMlPerHour = p.TargetUrineOutput * in.WeightKg

	switch {
	case hours < 8:
		p.Phase = PhaseFirst8Hours
		p.HoursRemaining = 8 - hours
		p.CurrentRate = p.FirstHalfVolume / p.HoursRemaining
	case hours < 24:
		p.Phase = PhaseNext16Hours
		p.HoursRemaining = 24 - hours
		p.CurrentRate = p.SecondHalfVolume / p.HoursRemaining
	default:
		p.Phase = PhaseMaintenance
	}

	if in.AgeYears < paediatricAgeLimit {
		m := HollidaySegar(in.WeightKg)
		p.MaintenanceRate = &m
	}
	return p, nil
}

// Titration actions.
const (
	TitrateIncrease = "increase"
	TitrateDecrease = "decrease"
	TitrateMaintain = "maintain"
)

// TitrateFluids adjusts the plan's current rate against the measured urine
// output: below target raises it 20%, above twice target lowers it 20%.
func TitrateFluids(plan ResuscitationPlan, urineMlPerHour, kg float64) (Titration, error) {
	err := scoring.Check(
		scoring.NonNegative("titration.urine_ml_per_hour", urineMlPerHour),
		scoring.Positive("titration.weight_kg", kg),
	)
	if err != nil {
		return Titration{}, err
	}

	target := plan.TargetUrineOutput * kg
	t := Titration{
		CurrentRate:     plan.CurrentRate,
		UrineMlPerHour:  urineMlPerHour,
		TargetMlPerHour: target,
	}
	switch {
	case urineMlPerHour < target:
		t.Action = TitrateIncrease
		t.NewRate = plan.CurrentRate * 1.2
		t.Message = fmt.Sprintf("Urine output %.0f mL/h below target %.0f mL/h: increase rate by 20%%", urineMlPerHour, target)
	case urineMlPerHour > 2*target:
		t.Action = TitrateDecrease
		t.NewRate = plan.CurrentRate * 0.8
		t.Message = fmt.Sprintf("Urine output %.0f mL/h above twice target: decrease rate by 20%% to avoid fluid creep", urineMlPerHour)
	default:
		t.Action = TitrateMaintain
		t.NewRate = plan.CurrentRate
		t.Message = "Urine output within target range: maintain rate"
	}
	return t, nil
}
