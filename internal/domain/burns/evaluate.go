package burns

import (
	"time"
)

// Evaluate derives TBSA, prognosis and the resuscitation plan due at now from
// one admission assessment.
func Evaluate(in AssessmentInput, now time.Time) (Evaluation, error) {
	tbsa, err := CalculateTBSA(TBSAInput{Method: in.Method, AgeYears: in.AgeYears, Regions: in.Regions})
	if err != nil {
		return Evaluation{}, err
	}
	baux, err := ScoreBaux(BauxInput{Age: in.AgeYears, TBSA: tbsa.TBSA, InhalationInjury: in.InhalationInjury})
	if err != nil {
		return Evaluation{}, err
	}
	absi, err := ScoreABSI(ABSIInput{
		Age:              in.AgeYears,
		Sex:              in.Sex,
		TBSA:             tbsa.TBSA,
		FullThickness:    tbsa.FullThickness,
		InhalationInjury: in.InhalationInjury,
	})
	if err != nil {
		return Evaluation{}, err
	}
	formula := in.Formula
	if formula == "" {
		formula = FormulaParkland
	}
	plan, err := PlanResuscitation(ResuscitationInput{
		Formula:    formula,
		WeightKg:   in.WeightKg,
		TBSA:       tbsa.TBSA,
		AgeYears:   in.AgeYears,
		TimeOfBurn: in.TimeOfBurn,
	}, now)
	if err != nil {
		return Evaluation{}, err
	}
	return Evaluation{TBSA: tbsa, Baux: baux, ABSI: absi, Resuscitation: plan}, nil
}
