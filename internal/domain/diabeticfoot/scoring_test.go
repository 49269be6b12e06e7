package diabeticfoot

import (
	"errors"
	"testing"

	"github.com/astrobsm/UNTH-PLASTICSURGASSIST-sub000/internal/scoring"
)

func fp(v float64) *float64 { return &v }

func TestScoreWagner(t *testing.T) {
	for grade := 0; grade <= 5; grade++ {
		r, err := ScoreWagner(WagnerInput{Grade: grade})
		if err != nil {
			t.Fatalf("grade %d: unexpected error: %v", grade, err)
		}
		if r.Score != grade*10 {
			t.Errorf("grade %d: expected score %d, got %d", grade, grade*10, r.Score)
		}
		if r.Description == "" {
			t.Errorf("grade %d: expected description", grade)
		}
	}
}

func TestScoreWagner_OutOfDomain(t *testing.T) {
	for _, grade := range []int{-1, 6, 9} {
		_, err := ScoreWagner(WagnerInput{Grade: grade})
		if !errors.Is(err, scoring.ErrOutOfDomain) {
			t.Errorf("grade %d: expected ErrOutOfDomain, got %v", grade, err)
		}
	}
}

func TestScoreTexas(t *testing.T) {
	tests := []struct {
		grade     int
		stage     string
		wantScore int
		wantRate  float64
	}{
		{0, "A", 0, 0},
		{1, "B", 15, 8.5},
		{2, "C", 30, 25},
		{3, "D", 50, 100},
		{3, "B", 35, 92},
		{0, "D", 20, 50},
	}
	for _, tt := range tests {
		r, err := ScoreTexas(TexasInput{Grade: tt.grade, Stage: tt.stage})
		if err != nil {
			t.Fatalf("%d%s: unexpected error: %v", tt.grade, tt.stage, err)
		}
		if r.Score != tt.wantScore {
			t.Errorf("%d%s: expected score %d, got %d", tt.grade, tt.stage, tt.wantScore, r.Score)
		}
		if r.AmputationRate != tt.wantRate {
			t.Errorf("%d%s: expected rate %v, got %v", tt.grade, tt.stage, tt.wantRate, r.AmputationRate)
		}
	}

	if _, err := ScoreTexas(TexasInput{Grade: 1, Stage: "E"}); !errors.Is(err, scoring.ErrOutOfDomain) {
		t.Errorf("expected ErrOutOfDomain for stage E, got %v", err)
	}
	if _, err := ScoreTexas(TexasInput{Grade: 4, Stage: "A"}); !errors.Is(err, scoring.ErrOutOfDomain) {
		t.Errorf("expected ErrOutOfDomain for grade 4, got %v", err)
	}
}

func TestScoreWIfI(t *testing.T) {
	tests := []struct {
		name        string
		in          WIfIInput
		wantStage   int
		wantRisk    string
		wantBenefit string
		wantScore   int
	}{
		{"all zero", WIfIInput{0, 0, 0}, 1, LevelVeryLow, LevelVeryLow, 0},
		{"one each", WIfIInput{1, 1, 1}, 2, LevelLow, LevelLow, 15},
		{"stage 2 ischaemic", WIfIInput{0, 2, 1}, 2, LevelModerate, LevelModerate, 15},
		{"stage 3", WIfIInput{2, 1, 2}, 3, LevelModerate, LevelModerate, 25},
		{"stage 3 ischaemic", WIfIInput{2, 2, 2}, 3, LevelHigh, LevelHigh, 30},
		{"stage 4", WIfIInput{3, 2, 2}, 4, LevelHigh, LevelHigh, 35},
		{"stage 5", WIfIInput{3, 3, 3}, 5, LevelVeryHigh, LevelUncertain, 45},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := ScoreWIfI(tt.in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if r.ClinicalStage != tt.wantStage || r.AmputationRisk != tt.wantRisk ||
				r.RevascularizationBenefit != tt.wantBenefit || r.Score != tt.wantScore {
				t.Errorf("got stage=%d risk=%s benefit=%s score=%d", r.ClinicalStage, r.AmputationRisk, r.RevascularizationBenefit, r.Score)
			}
		})
	}
}

func TestScoreSINBAD(t *testing.T) {
	r, err := ScoreSINBAD(SINBADInput{Site: 1, Ischemia: 1, Neuropathy: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Score != 3 || r.RiskBand != LevelModerate {
		t.Errorf("expected 3/moderate, got %d/%s", r.Score, r.RiskBand)
	}
	r, _ = ScoreSINBAD(SINBADInput{1, 1, 1, 1, 1, 0})
	if r.RiskBand != LevelHigh {
		t.Errorf("expected high, got %s", r.RiskBand)
	}
	if _, err := ScoreSINBAD(SINBADInput{Depth: 2}); !errors.Is(err, scoring.ErrOutOfDomain) {
		t.Errorf("expected ErrOutOfDomain, got %v", err)
	}
}

func TestScoreComorbidities(t *testing.T) {
	r, err := ScoreComorbidities(ComorbidityInput{
		Hypertension:       true,
		PreviousAmputation: true,
		HbA1c:              fp(8.5),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Score != 35 {
		t.Errorf("expected 35, got %d", r.Score)
	}

	all := ComorbidityInput{true, true, true, true, true, true, true, true, true, true, true, fp(10)}
	r, _ = ScoreComorbidities(all)
	if r.Score != 115+15 {
		t.Errorf("expected 130, got %d", r.Score)
	}
}

func TestScoreRenal(t *testing.T) {
	tests := []struct {
		egfr      float64
		wantCKD   string
		wantStage int
		wantScore int
	}{
		{95, "G1", 1, 0},
		{90, "G1", 1, 0},
		{60, "G2", 2, 5},
		{45, "G3a", 3, 10},
		{30, "G3b", 3, 15},
		{15, "G4", 4, 25},
		{14.9, "G5", 5, 35},
	}
	for _, tt := range tests {
		r, err := ScoreRenal(RenalInput{EGFR: tt.egfr})
		if err != nil {
			t.Fatalf("egfr %v: unexpected error: %v", tt.egfr, err)
		}
		if r.CKDStage != tt.wantCKD || r.Stage != tt.wantStage || r.Score != tt.wantScore {
			t.Errorf("egfr %v: got %s/%d/%d", tt.egfr, r.CKDStage, r.Stage, r.Score)
		}
	}

	r, _ := ScoreRenal(RenalInput{EGFR: 10, OnDialysis: true, Proteinuria: true})
	if r.Score != 55 {
		t.Errorf("expected 55 with dialysis and proteinuria, got %d", r.Score)
	}
	if _, err := ScoreRenal(RenalInput{EGFR: -1}); !errors.Is(err, scoring.ErrOutOfDomain) {
		t.Errorf("expected ErrOutOfDomain for negative eGFR, got %v", err)
	}
}

func normalVitals() SepsisAssessmentInput {
	return SepsisAssessmentInput{
		Temperature:     37,
		HeartRate:       80,
		RespiratoryRate: 16,
		WBC:             8,
		SystolicBP:      120,
	}
}

func TestScoreSepsis(t *testing.T) {
	r, err := ScoreSepsis(normalVitals())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Score != 0 || r.Likelihood != SepsisUnlikely {
		t.Errorf("expected 0/unlikely, got %d/%s", r.Score, r.Likelihood)
	}

	in := normalVitals()
	in.Temperature = 39
	in.HeartRate = 110
	r, _ = ScoreSepsis(in)
	if r.SIRSCount != 2 || !r.SIRSPositive || r.QSOFAPositive || r.Likelihood != SepsisProbable {
		t.Errorf("expected SIRS-positive probable, got %+v", r)
	}

	in.RespiratoryRate = 24
	in.SystolicBP = 95
	in.Crepitus = true
	in.CRP = fp(150)
	in.Lactate = fp(4.5)
	r, _ = ScoreSepsis(in)
	// SIRS 3 (temp, HR, RR), qSOFA 2 (SBP, RR)
	want := 3*5 + 2*10 + 20 + 15 + 20
	if r.Score != want {
		t.Errorf("expected %d, got %d", want, r.Score)
	}
	if r.Likelihood != SepsisDefinite {
		t.Errorf("expected definite, got %s", r.Likelihood)
	}

	in = normalVitals()
	in.AlteredMentation = true
	r, _ = ScoreSepsis(in)
	if r.Likelihood != SepsisPossible {
		t.Errorf("expected possible, got %s", r.Likelihood)
	}
}

func TestScoreSepsis_Procalcitonin(t *testing.T) {
	tests := []struct {
		pct  float64
		want int
	}{
		{0.5, 0},
		{0.6, 10},
		{2.5, 15},
		{11, 20},
	}
	for _, tt := range tests {
		in := normalVitals()
		in.Procalcitonin = fp(tt.pct)
		r, err := ScoreSepsis(in)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if r.Score != tt.want {
			t.Errorf("pct %v: expected %d, got %d", tt.pct, tt.want, r.Score)
		}
	}
}

func normalArterial() ArterialDopplerInput {
	return ArterialDopplerInput{
		ABI:             1.0,
		Waveform:        "triphasic",
		DorsalisPedis:   "normal",
		PosteriorTibial: "normal",
		Stenosis:        "none",
	}
}

func TestScoreArterialDoppler(t *testing.T) {
	tests := []struct {
		abi       float64
		wantBand  string
		wantScore int
	}{
		{1.4, ABINonCompressible, 15},
		{1.3, ABINormal, 0},
		{0.9, ABINormal, 0},
		{0.7, ABIMild, 10},
		{0.4, ABIModerate, 20},
		{0.39, ABISevere, 35},
	}
	for _, tt := range tests {
		in := normalArterial()
		in.ABI = tt.abi
		r, err := ScoreArterialDoppler(in)
		if err != nil {
			t.Fatalf("abi %v: unexpected error: %v", tt.abi, err)
		}
		if r.ABIBand != tt.wantBand || r.Score != tt.wantScore {
			t.Errorf("abi %v: got %s/%d", tt.abi, r.ABIBand, r.Score)
		}
	}
}

func TestScoreArterialDoppler_InterpretationFollowsABIOnly(t *testing.T) {
	mild := normalArterial()
	mild.ABI = 0.8
	worse := mild
	worse.Waveform = "absent"
	worse.DorsalisPedis = "absent"
	worse.Stenosis = "occlusion"
	worse.ToePressure = fp(20)

	a, _ := ScoreArterialDoppler(mild)
	b, _ := ScoreArterialDoppler(worse)
	if a.Interpretation != b.Interpretation {
		t.Errorf("interpretation changed without ABI change: %q vs %q", a.Interpretation, b.Interpretation)
	}
	if b.Score != 10+25+10+30+25 {
		t.Errorf("expected 100, got %d", b.Score)
	}
}

func TestScoreArterialDoppler_UnknownEnum(t *testing.T) {
	in := normalArterial()
	in.Waveform = "quadriphasic"
	_, err := ScoreArterialDoppler(in)
	var de *scoring.DomainError
	if !errors.As(err, &de) || de.Field != "arterial.waveform" {
		t.Errorf("expected domain error on arterial.waveform, got %v", err)
	}
}

func TestScoreVenousDoppler(t *testing.T) {
	r, err := ScoreVenousDoppler(VenousDopplerInput{
		DeepReflux: true,
		DVT:        DVTAcute,
		CEAPClass:  6,
		EdemaGrade: 2,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Score != 10+25+18+4 {
		t.Errorf("expected 57, got %d", r.Score)
	}
	if r.Interpretation != "Acute DVT; anticoagulate and defer compression" {
		t.Errorf("acute DVT should take precedence, got %q", r.Interpretation)
	}

	r, _ = ScoreVenousDoppler(VenousDopplerInput{DVT: DVTNone, CEAPClass: 3})
	if r.Interpretation != "Chronic venous insufficiency" {
		t.Errorf("unexpected interpretation %q", r.Interpretation)
	}
	if _, err := ScoreVenousDoppler(VenousDopplerInput{DVT: DVTNone, CEAPClass: 7}); !errors.Is(err, scoring.ErrOutOfDomain) {
		t.Errorf("expected ErrOutOfDomain for CEAP 7, got %v", err)
	}
}

func TestScoreOsteomyelitis(t *testing.T) {
	tests := []struct {
		name string
		in   OsteomyelitisInput
		want string
	}{
		{"nothing", OsteomyelitisInput{}, OsteoUnlikely},
		{"xray only", OsteomyelitisInput{XRayChanges: true}, OsteoPossible},
		{"probe and xray", OsteomyelitisInput{ProbeToBone: true, XRayChanges: true}, OsteoProbable},
		{"biopsy and probe", OsteomyelitisInput{ProbeToBone: true, BoneBiopsyPositive: true}, OsteoDefinite},
		{"measurements", OsteomyelitisInput{ESR: fp(80), UlcerArea: fp(3), UlcerDepth: fp(4)}, OsteoPossible},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := ScoreOsteomyelitis(tt.in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if r.Likelihood != tt.want {
				t.Errorf("expected %s, got %s (score %d)", tt.want, r.Likelihood, r.Score)
			}
		})
	}
}

func TestScoreDemographics(t *testing.T) {
	r, err := ScoreDemographics(Demographics{
		Age:                   65,
		Sex:                   "male",
		DiabetesDurationYears: 12,
		SmokingStatus:         "current",
		AmbulatoryStatus:      "assisted",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Score != 15+5+10+15+5 {
		t.Errorf("expected 50, got %d", r.Score)
	}
	if _, err := ScoreDemographics(Demographics{Sex: "unknown", SmokingStatus: "never", AmbulatoryStatus: "ambulatory"}); err == nil {
		t.Error("expected error for unknown sex")
	}
}

func TestRescoringIsIdempotent(t *testing.T) {
	first, _ := ScoreWIfI(WIfIInput{2, 1, 3})
	again, _ := ScoreWIfI(first.WIfIInput)
	if first != again {
		t.Errorf("rescoring changed the result: %+v vs %+v", first, again)
	}
}
