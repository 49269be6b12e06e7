package reporting

import (
	"fmt"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/list"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/astrobsm/UNTH-PLASTICSURGASSIST-sub000/internal/domain/admission"
	"github.com/astrobsm/UNTH-PLASTICSURGASSIST-sub000/internal/domain/burns"
	"github.com/astrobsm/UNTH-PLASTICSURGASSIST-sub000/internal/domain/diabeticfoot"
)

const dateLayout = "02 Jan 2006 15:04"

// Reporter renders stored results as plain text documents. It never
// recomputes a score.
type Reporter struct {
	Hospital string
	Unit     string
	now      func() time.Time
}

func NewReporter(hospital, unit string) *Reporter {
	return &Reporter{Hospital: hospital, Unit: unit, now: time.Now}
}

func (r *Reporter) header(b *strings.Builder, title string) {
	if r.Hospital != "" {
		b.WriteString(strings.ToUpper(r.Hospital) + "\n")
	}
	if r.Unit != "" {
		b.WriteString(r.Unit + "\n")
	}
	b.WriteString(title + "\n")
	b.WriteString(strings.Repeat("=", len(title)) + "\n\n")
}

func (r *Reporter) footer(b *strings.Builder) {
	fmt.Fprintf(b, "\nGenerated %s\n", r.now().Format(dateLayout))
}

func newTable(title string) table.Writer {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleLight)
	if title != "" {
		tw.SetTitle(title)
	}
	return tw
}

func bullets(items []string) string {
	l := list.NewWriter()
	l.SetStyle(list.StyleBulletCircle)
	for _, it := range items {
		l.AppendItem(it)
	}
	return l.Render()
}

func deref(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func patientTable(a *admission.Admission) table.Writer {
	tw := newTable("Patient")
	tw.AppendRow(table.Row{"Name", a.PatientName})
	tw.AppendRow(table.Row{"Hospital number", a.HospitalNumber})
	tw.AppendRow(table.Row{"Age / sex", fmt.Sprintf("%d / %s", a.Age, a.Sex)})
	ward := a.Ward
	if a.Bed != nil {
		ward += ", bed " + *a.Bed
	}
	tw.AppendRow(table.Row{"Ward", ward})
	tw.AppendRow(table.Row{"Consultant", deref(a.AdmittingSurgeon)})
	tw.AppendRow(table.Row{"Diagnosis", a.Diagnosis})
	tw.AppendRow(table.Row{"Admitted", a.AdmittedAt.Format(dateLayout)})
	return tw
}

func whoTable(s admission.WHODischargeScore) table.Writer {
	tw := newTable("WHO discharge readiness")
	tw.AppendHeader(table.Row{"Criterion", "Score"})
	for _, c := range []struct {
		name  string
		score int
	}{
		{"Vital signs stability", s.VitalSignsStability},
		{"Pain control", s.PainControl},
		{"Mobility", s.Mobility},
		{"Wound healing", s.WoundHealing},
		{"Oral intake", s.OralIntake},
		{"Elimination", s.Elimination},
		{"Mental status", s.MentalStatus},
		{"Self care", s.SelfCare},
		{"Medication understanding", s.MedicationUnderstanding},
		{"Follow-up arranged", s.FollowUpArranged},
		{"Home support", s.HomeSupport},
	} {
		tw.AppendRow(table.Row{c.name, fmt.Sprintf("%d / 3", c.score)})
	}
	tw.AppendSeparator()
	tw.AppendRow(table.Row{"High readmission risk", yesNo(s.HighReadmissionRisk)})
	tw.AppendRow(table.Row{"Complex medical needs", yesNo(s.ComplexMedicalNeeds)})
	tw.AppendRow(table.Row{"Language barrier", yesNo(s.LanguageBarrier)})
	tw.AppendFooter(table.Row{"Total", fmt.Sprintf("%d / %d (penalty %d)", s.TotalScore, admission.WHOMaxScore, s.Penalty)})
	return tw
}

// WHOScoreReport renders a WHO readiness score that is not tied to a
// discharge.
func (r *Reporter) WHOScoreReport(s admission.WHODischargeScore) string {
	var b strings.Builder
	r.header(&b, "WHO DISCHARGE READINESS")
	b.WriteString(whoTable(s).Render() + "\n\n")
	b.WriteString(recommendationLine(s.Recommendation))
	r.footer(&b)
	return b.String()
}

func recommendationLine(rec string) string {
	label := rec
	if disp, ok := admission.WHORecommendationDisplay(rec); ok {
		label = disp.Label + ": " + disp.Description
	}
	return fmt.Sprintf("Recommendation: %s\n", label)
}

// DischargeSummary renders a discharge with its admission and WHO checklist.
func (r *Reporter) DischargeSummary(a *admission.Admission, d *admission.Discharge) string {
	var b strings.Builder
	r.header(&b, "DISCHARGE SUMMARY")

	pt := patientTable(a)
	pt.AppendRow(table.Row{"Discharged", d.DischargedAt.Format(dateLayout)})
	days := int(d.DischargedAt.Sub(a.AdmittedAt).Hours() / 24)
	pt.AppendRow(table.Row{"Length of stay", fmt.Sprintf("%d day(s)", days)})
	pt.AppendRow(table.Row{"Destination", deref(d.Destination)})
	b.WriteString(pt.Render() + "\n\n")

	s := d.Assessment
	b.WriteString(whoTable(s).Render() + "\n\n")
	b.WriteString(recommendationLine(s.Recommendation))
	if d.AgainstAdvice {
		b.WriteString("Discharged AGAINST MEDICAL ADVICE\n")
	}

	for _, sec := range []struct {
		title string
		text  *string
	}{
		{"Discharge diagnosis", d.DischargeDiagnosis},
		{"Medications", d.Medications},
		{"Follow-up", d.FollowUp},
		{"Clinical summary", d.Narrative},
	} {
		if sec.text != nil && *sec.text != "" {
			fmt.Fprintf(&b, "\n%s:\n%s\n", sec.title, *sec.text)
		}
	}
	if d.DischargedBy != nil {
		fmt.Fprintf(&b, "\nDischarged by: %s\n", *d.DischargedBy)
	}
	r.footer(&b)
	return b.String()
}

// DiabeticFootReport renders a stored diabetic-foot assessment.
func (r *Reporter) DiabeticFootReport(a *admission.Admission, s *diabeticfoot.StoredAssessment) string {
	var b strings.Builder
	r.header(&b, "DIABETIC FOOT ASSESSMENT")
	if a != nil {
		b.WriteString(patientTable(a).Render() + "\n\n")
	}
	fmt.Fprintf(&b, "Assessed %s", s.AssessedAt.Format(dateLayout))
	if s.AssessedBy != nil {
		fmt.Fprintf(&b, " by %s", *s.AssessedBy)
	}
	b.WriteString("\n\n")

	ev := s.Evaluation
	as := ev.Assessment
	tw := newTable("Component scores")
	tw.AppendHeader(table.Row{"Component", "Finding", "Points"})
	if as.Wagner != nil {
		tw.AppendRow(table.Row{"Wagner", fmt.Sprintf("Grade %d: %s", as.Wagner.Grade, as.Wagner.Description), as.Wagner.Score})
	}
	if as.Texas != nil {
		tw.AppendRow(table.Row{"University of Texas", fmt.Sprintf("%d%s: %s", as.Texas.Grade, as.Texas.Stage, as.Texas.Description), as.Texas.Score})
	}
	if as.WIfI != nil {
		tw.AppendRow(table.Row{"WIfI", fmt.Sprintf("W%d I%d fI%d, stage %d (%s amputation risk)",
			as.WIfI.Wound, as.WIfI.Ischemia, as.WIfI.FootInfection, as.WIfI.ClinicalStage, as.WIfI.AmputationRisk), as.WIfI.Score})
	}
	if ev.Total.DemographicsScore != nil {
		tw.AppendRow(table.Row{"Demographics", fmt.Sprintf("Age %d", ev.Total.DemographicsScore.Age), ev.Total.DemographicsScore.Score})
	}
	if as.Comorbidities != nil {
		tw.AppendRow(table.Row{"Comorbidities", "", as.Comorbidities.Score})
	}
	if as.Renal != nil {
		tw.AppendRow(table.Row{"Renal", fmt.Sprintf("CKD %s, eGFR %.0f", as.Renal.CKDStage, as.Renal.EGFR), as.Renal.Score})
	}
	if as.Sepsis != nil {
		tw.AppendRow(table.Row{"Sepsis", fmt.Sprintf("%s (SIRS %d, qSOFA %d)", as.Sepsis.Likelihood, as.Sepsis.SIRSCount, as.Sepsis.QSOFACount), as.Sepsis.Score})
	}
	if as.Arterial != nil {
		tw.AppendRow(table.Row{"Arterial Doppler", fmt.Sprintf("ABI %.2f: %s", as.Arterial.ABI, as.Arterial.Interpretation), as.Arterial.Score})
	}
	if as.Venous != nil {
		tw.AppendRow(table.Row{"Venous Doppler", as.Venous.Interpretation, as.Venous.Score})
	}
	if as.Osteomyelitis != nil {
		tw.AppendRow(table.Row{"Osteomyelitis", as.Osteomyelitis.Likelihood, as.Osteomyelitis.Score})
	}
	if as.SINBAD != nil {
		tw.AppendRow(table.Row{"SINBAD (not totalled)", fmt.Sprintf("%d/6, %s", as.SINBAD.Score, as.SINBAD.RiskBand), "-"})
	}
	tw.AppendFooter(table.Row{"Total", "", ev.Total.TotalScore})
	b.WriteString(tw.Render() + "\n\n")

	risk := ev.Total.RiskCategory
	if disp, ok := diabeticfoot.GetRiskCategoryDisplay(risk); ok {
		risk = disp.Label + ": " + disp.Description
	}
	fmt.Fprintf(&b, "Risk: %s\n", risk)
	fmt.Fprintf(&b, "Limb salvage probability: %d%%\n", ev.Total.LimbSalvageProbability)

	intervention := ev.Recommendations.RecommendedIntervention
	if disp, ok := diabeticfoot.GetInterventionDisplay(intervention); ok {
		intervention = disp.Label
	}
	fmt.Fprintf(&b, "Recommended intervention: %s\n", intervention)
	if len(ev.Recommendations.DetailedRecommendations) > 0 {
		b.WriteString("\nRecommendations:\n" + bullets(ev.Recommendations.DetailedRecommendations) + "\n")
	}

	plan := ev.MonitoringPlan
	fmt.Fprintf(&b, "\nFollow-up: %s\n", plan.FollowUpFrequency)
	if len(plan.RequiredTests) > 0 {
		b.WriteString("Tests:\n" + bullets(plan.RequiredTests) + "\n")
	}
	if plan.NephrologyConsult {
		b.WriteString("Nephrology consult required\n")
	}
	if plan.InfectiousDiseaseTeam {
		fmt.Fprintf(&b, "Infectious disease consult required; antibiotics %s\n", plan.AntibioticDuration)
	}
	r.footer(&b)
	return b.String()
}

// BurnReport renders a stored burn assessment and its resuscitation plan as
// it stood at assessment time.
func (r *Reporter) BurnReport(a *admission.Admission, s *burns.StoredAssessment) string {
	var b strings.Builder
	r.header(&b, "BURN ASSESSMENT")
	if a != nil {
		b.WriteString(patientTable(a).Render() + "\n\n")
	}
	in := s.Input
	fmt.Fprintf(&b, "Time of burn: %s\n", in.TimeOfBurn.Format(dateLayout))
	fmt.Fprintf(&b, "Assessed %s", s.AssessedAt.Format(dateLayout))
	if s.AssessedBy != nil {
		fmt.Fprintf(&b, " by %s", *s.AssessedBy)
	}
	fmt.Fprintf(&b, "\nWeight %.1f kg, age %.0f years, inhalation injury: %s\n\n", in.WeightKg, in.AgeYears, yesNo(in.InhalationInjury))

	ev := s.Evaluation
	tw := newTable("Burned regions (" + strings.ReplaceAll(ev.TBSA.Method, "_", " ") + ")")
	tw.AppendHeader(table.Row{"Region", "Depth", "Burned", "Share", "TBSA"})
	depthOf := make(map[string]string, len(in.Regions))
	for _, rb := range in.Regions {
		depthOf[rb.Region] = rb.Depth
	}
	for _, c := range ev.TBSA.Contributions {
		depth := "-"
		if disp, ok := burns.GetDepthInfo(depthOf[c.Region]); ok {
			depth = disp.Label
		}
		burned := c.Contribution / c.RegionShare * 100
		tw.AppendRow(table.Row{burns.GetRegionDisplayName(c.Region), depth,
			fmt.Sprintf("%.0f%%", burned), fmt.Sprintf("%.1f%%", c.RegionShare), fmt.Sprintf("%.1f%%", c.Contribution)})
	}
	tw.AppendFooter(table.Row{"Total", "", "", "", fmt.Sprintf("%.1f%%", ev.TBSA.TBSA)})
	b.WriteString(tw.Render() + "\n\n")

	pt := newTable("Prognosis")
	pt.AppendRow(table.Row{"Baux", fmt.Sprintf("%.0f (%s, mortality %s)", ev.Baux.Baux, ev.Baux.Band, ev.Baux.Mortality)})
	pt.AppendRow(table.Row{"Revised Baux", fmt.Sprintf("%.0f (%s, mortality %s)", ev.Baux.RevisedBaux, ev.Baux.RevisedBand, ev.Baux.RevisedMortality)})
	pt.AppendRow(table.Row{"ABSI", fmt.Sprintf("%d (%s threat to life, mortality %s)", ev.ABSI.Score, ev.ABSI.ThreatToLife, ev.ABSI.MortalityRisk)})
	b.WriteString(pt.Render() + "\n\n")

	p := ev.Resuscitation
	rt := newTable("Resuscitation (" + strings.ReplaceAll(p.Formula, "_", " ") + ")")
	rt.AppendRow(table.Row{"24 hour volume", fmt.Sprintf("%.0f mL", p.Total24h)})
	rt.AppendRow(table.Row{"First 8 hours", fmt.Sprintf("%.0f mL", p.FirstHalfVolume)})
	rt.AppendRow(table.Row{"Next 16 hours", fmt.Sprintf("%.0f mL", p.SecondHalfVolume)})
	rt.AppendRow(table.Row{"Phase at assessment", strings.ReplaceAll(p.Phase, "_", " ")})
	rt.AppendRow(table.Row{"Rate at assessment", fmt.Sprintf("%.0f mL/h", p.CurrentRate)})
	rt.AppendRow(table.Row{"Urine output target", fmt.Sprintf("%.1f mL/kg/h (%.0f mL/h)", p.TargetUrineOutput, p.TargetUrineMlPerHour)})
	if p.MaintenanceRate != nil {
		rt.AppendRow(table.Row{"Maintenance (Holliday-Segar)", fmt.Sprintf("%.0f mL/h", *p.MaintenanceRate)})
	}
	b.WriteString(rt.Render() + "\n")
	r.footer(&b)
	return b.String()
}
