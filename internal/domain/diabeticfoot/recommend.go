package diabeticfoot

import "github.com/astrobsm/UNTH-PLASTICSURGASSIST-sub000/internal/scoring"

// Recommended interventions.
const (
	InterventionEmergencyDebridement = "emergency_surgical_debridement"
	InterventionUrgentDebridement    = "urgent_surgical_debridement"
	InterventionMajorAmputation      = "major_amputation"
	InterventionMinorAmputation      = "minor_amputation"
	InterventionBoneResection        = "bone_resection"
	InterventionRevascularization    = "revascularization"
	InterventionSurgicalDebridement  = "surgical_debridement"
	InterventionConservative         = "conservative_management"
)

// AntibioticDuration is the fixed course advised with an infectious disease
// consult.
const AntibioticDuration = "6 weeks (bone) / 2-4 weeks (soft tissue), guided by culture"

type recommender struct {
	intervention string
	details      []string
}

func (r *recommender) set(intervention string) { r.intervention = intervention }

func (r *recommender) add(s ...string) { r.details = append(r.details, s...) }

// recommendationRules run in this order. A later rule that sets an
// intervention replaces an earlier one; detail strings only accumulate.
var recommendationRules = []func(a DiabeticFootAssessment, r *recommender){
	sepsisRule,
	tissueViabilityRule,
	osteomyelitisRule,
	ischemiaRule,
	renalRule,
	fallbackRule,
	woundCareRule,
	lifestyleRule,
}

// GenerateRecommendations walks the fixed rule list over the assessment.
func GenerateRecommendations(a DiabeticFootAssessment) Recommendations {
	r := &recommender{details: []string{}}
	for _, rule := range recommendationRules {
		rule(a, r)
	}
	return Recommendations{
		RecommendedIntervention: r.intervention,
		DetailedRecommendations: r.details,
	}
}

func sepsisRule(a DiabeticFootAssessment, r *recommender) {
	s := a.Sepsis
	if s == nil {
		return
	}
	switch {
	case s.Crepitus || s.Likelihood == SepsisDefinite:
		r.set(InterventionEmergencyDebridement)
		r.add(
			"Emergency surgical debridement: life- or limb-threatening infection",
			"Start empirical broad-spectrum IV antibiotics after blood and tissue cultures",
		)
		if s.Crepitus {
			r.add("Crepitus present: suspect gas-forming infection, obtain urgent X-ray")
		}
	case s.Likelihood == SepsisProbable:
		r.set(InterventionUrgentDebridement)
		r.add(
			"Urgent surgical debridement within 24 hours",
			"Start IV antibiotics after cultures; review at 48 hours",
		)
	}
}

func tissueViabilityRule(a DiabeticFootAssessment, r *recommender) {
	if a.Wagner == nil {
		return
	}
	switch a.Wagner.Grade {
	case 5:
		r.set(InterventionMajorAmputation)
		r.add("Extensive gangrene: plan major amputation at a level with adequate perfusion")
	case 4:
		r.set(InterventionMinorAmputation)
		r.add("Localised gangrene: minor (toe or ray) amputation after vascular assessment")
	}
}

func osteomyelitisRule(a DiabeticFootAssessment, r *recommender) {
	o := a.Osteomyelitis
	if o == nil {
		return
	}
	if o.Likelihood == OsteoDefinite || o.Likelihood == OsteoProbable {
		r.set(InterventionBoneResection)
		r.add("Osteomyelitis " + o.Likelihood + ": resect infected bone and send for histology and culture")
	}
}

func ischemiaRule(a DiabeticFootAssessment, r *recommender) {
	ischemic := false
	if a.WIfI != nil && (a.WIfI.Ischemia >= 2 || a.WIfI.RevascularizationBenefit == LevelHigh) {
		ischemic = true
	}
	if a.Arterial != nil && (a.Arterial.ABIBand == ABIModerate || a.Arterial.ABIBand == ABISevere) {
		ischemic = true
	}
	if ischemic {
		r.set(InterventionRevascularization)
		r.add("Significant ischaemia: refer to vascular surgery for angiography and revascularisation")
	}
}

func renalRule(a DiabeticFootAssessment, r *recommender) {
	if a.Renal == nil {
		return
	}
	if a.Renal.OnDialysis && a.Wagner != nil && a.Wagner.Grade >= 4 {
		r.set(InterventionMajorAmputation)
		r.add("Dialysis with gangrene: poor healing potential, consider primary major amputation")
	}
	if a.Renal.Stage >= 4 {
		r.add("CKD stage 4-5: minimise iodinated contrast and pre-hydrate before angiography")
	}
}

func fallbackRule(_ DiabeticFootAssessment, r *recommender) {
	if r.intervention == "" {
		r.set(InterventionConservative)
	}
}

func woundCareRule(a DiabeticFootAssessment, r *recommender) {
	if a.Wagner == nil {
		return
	}
	switch a.Wagner.Grade {
	case 0:
		r.add("Preventive foot care, daily inspection and patient education")
	case 1:
		r.add("Local wound care with moist dressings and offloading")
	case 2:
		r.add("Sharp debridement of slough and non-viable tissue; moist wound healing")
	case 3:
		r.add("Surgical drainage of abscess and debridement of infected tissue")
	}
	if (a.Wagner.Grade == 2 || a.Wagner.Grade == 3) && r.intervention == InterventionConservative {
		r.set(InterventionSurgicalDebridement)
	}
}

func lifestyleRule(a DiabeticFootAssessment, r *recommender) {
	if a.Demographics != nil && a.Demographics.SmokingStatus == "current" {
		r.add("Smoking cessation counselling and nicotine replacement")
	}
	if a.Comorbidities != nil && a.Comorbidities.HbA1c != nil && *a.Comorbidities.HbA1c >= 8 {
		r.add("Optimise glycaemic control with the diabetes team (target HbA1c below 7%)")
	}
	if a.Wagner != nil && a.Wagner.Grade >= 1 {
		r.add("Offload the ulcer with a total contact cast or removable walker")
	}
	r.add("Therapeutic footwear and podiatry follow-up")
}

var followUpByRisk = map[string]string{
	RiskCritical: "weekly",
	RiskHigh:     "every 2 weeks",
	RiskModerate: "monthly",
	RiskLow:      "every 3 months",
}

var testsByRisk = map[string][]string{
	RiskCritical: {"Wound assessment and photography", "Full blood count", "CRP", "HbA1c", "Arterial Doppler"},
	RiskHigh:     {"Wound assessment and photography", "CRP", "HbA1c", "Ankle-brachial index"},
	RiskModerate: {"Wound assessment", "HbA1c"},
	RiskLow:      {"Foot inspection", "HbA1c"},
}

// GenerateMonitoringPlan derives follow-up cadence and tests from the risk
// category, then applies the renal and infection gates independently. An
// unknown category is a *scoring.DomainError.
func GenerateMonitoringPlan(a DiabeticFootAssessment, riskCategory string) (MonitoringPlan, error) {
	if err := scoring.OneOf("risk_category", riskCategory, RiskLow, RiskModerate, RiskHigh, RiskCritical); err != nil {
		return MonitoringPlan{}, err
	}
	p := MonitoringPlan{
		FollowUpFrequency: followUpByRisk[riskCategory],
		RequiredTests:     append([]string(nil), testsByRisk[riskCategory]...),
	}

	if a.Renal != nil && a.Renal.Stage >= 3 {
		p.NephrologyConsult = true
		p.RequiredTests = append(p.RequiredTests, "Renal function panel (urea, creatinine, electrolytes, eGFR)")
	}

	infected := false
	if a.Sepsis != nil && (a.Sepsis.Likelihood == SepsisProbable || a.Sepsis.Likelihood == SepsisDefinite) {
		infected = true
	}
	if a.Osteomyelitis != nil && (a.Osteomyelitis.Likelihood == OsteoProbable || a.Osteomyelitis.Likelihood == OsteoDefinite) {
		infected = true
	}
	if infected {
		p.InfectiousDiseaseTeam = true
		p.AntibioticDuration = AntibioticDuration
	}
	return p, nil
}
