package diabeticfoot

import (
	"github.com/astrobsm/UNTH-PLASTICSURGASSIST-sub000/internal/scoring"
)

var wagnerDescriptions = [6]string{
	"No open lesion; foot at risk",
	"Superficial ulcer without penetration to deeper layers",
	"Deep ulcer to tendon, capsule or bone without abscess or osteomyelitis",
	"Deep ulcer with abscess, osteomyelitis or joint sepsis",
	"Localised gangrene of the forefoot or heel",
	"Extensive gangrene of the whole foot",
}

// ScoreWagner scores a Wagner grade (0-5) at ten points per grade.
func ScoreWagner(in WagnerInput) (WagnerGrade, error) {
	if err := scoring.Ordinal("wagner.grade", in.Grade, 0, 5); err != nil {
		return WagnerGrade{}, err
	}
	return WagnerGrade{
		WagnerInput: in,
		Description: wagnerDescriptions[in.Grade],
		Score:       in.Grade * 10,
	}, nil
}

var texasStagePoints = map[string]int{"A": 0, "B": 5, "C": 10, "D": 20}

var texasStageDescriptions = map[string]string{
	"A": "clean",
	"B": "infected",
	"C": "ischaemic",
	"D": "infected and ischaemic",
}

var texasGradeDescriptions = [4]string{
	"pre- or post-ulcerative lesion, completely epithelialised",
	"superficial wound not involving tendon, capsule or bone",
	"wound penetrating to tendon or capsule",
	"wound penetrating to bone or joint",
}

// texasAmputationRate is the published amputation rate in percent, [stage][grade].
var texasAmputationRate = map[string][4]float64{
	"A": {0, 0, 0, 0},
	"B": {12.5, 8.5, 28.6, 92},
	"C": {25, 20, 25, 100},
	"D": {50, 50, 100, 100},
}

// ScoreTexas scores a University of Texas grade (0-3) and stage (A-D).
func ScoreTexas(in TexasInput) (TexasClassification, error) {
	err := scoring.Check(
		scoring.Ordinal("texas.grade", in.Grade, 0, 3),
		scoring.OneOf("texas.stage", in.Stage, "A", "B", "C", "D"),
	)
	if err != nil {
		return TexasClassification{}, err
	}
	return TexasClassification{
		TexasInput:     in,
		Description:    texasGradeDescriptions[in.Grade] + ", " + texasStageDescriptions[in.Stage],
		AmputationRate: texasAmputationRate[in.Stage][in.Grade],
		Score:          in.Grade*10 + texasStagePoints[in.Stage],
	}, nil
}

// WIfI amputation risk and revascularisation benefit levels.
const (
	LevelVeryLow   = "very_low"
	LevelLow       = "low"
	LevelModerate  = "moderate"
	LevelHigh      = "high"
	LevelVeryHigh  = "very_high"
	LevelUncertain = "uncertain"
)

// ScoreWIfI stages the wound, ischaemia and foot infection grades (each 0-3).
func ScoreWIfI(in WIfIInput) (WIfIClassification, error) {
	err := scoring.Check(
		scoring.Ordinal("wifi.wound", in.Wound, 0, 3),
		scoring.Ordinal("wifi.ischemia", in.Ischemia, 0, 3),
		scoring.Ordinal("wifi.foot_infection", in.FootInfection, 0, 3),
	)
	if err != nil {
		return WIfIClassification{}, err
	}

	combined := in.Wound + in.Ischemia + in.FootInfection
	var stage int
	switch {
	case combined <= 2:
		stage = 1
	case combined <= 4:
		stage = 2
	case combined <= 6:
		stage = 3
	case combined <= 8:
		stage = 4
	default:
		stage = 5
	}

	var risk, benefit string
	switch stage {
	case 1:
		risk, benefit = LevelVeryLow, LevelVeryLow
	case 2:
		risk, benefit = LevelLow, LevelLow
		if in.Ischemia >= 2 {
			risk, benefit = LevelModerate, LevelModerate
		}
	case 3:
		risk, benefit = LevelModerate, LevelModerate
		if in.Ischemia >= 2 {
			risk, benefit = LevelHigh, LevelHigh
		}
	case 4:
		risk, benefit = LevelHigh, LevelHigh
	default:
		risk, benefit = LevelVeryHigh, LevelUncertain
	}

	return WIfIClassification{
		WIfIInput:                in,
		CombinedScore:            combined,
		ClinicalStage:            stage,
		AmputationRisk:           risk,
		RevascularizationBenefit: benefit,
		Score:                    combined * 5,
	}, nil
}

// ScoreSINBAD sums six binary items. The result is informational and does not
// feed the composite total.
func ScoreSINBAD(in SINBADInput) (SINBADScore, error) {
	err := scoring.Check(
		scoring.Binary("sinbad.site", in.Site),
		scoring.Binary("sinbad.ischemia", in.Ischemia),
		scoring.Binary("sinbad.neuropathy", in.Neuropathy),
		scoring.Binary("sinbad.bacterial_infection", in.BacterialInfection),
		scoring.Binary("sinbad.area", in.Area),
		scoring.Binary("sinbad.depth", in.Depth),
	)
	if err != nil {
		return SINBADScore{}, err
	}

	score := in.Site + in.Ischemia + in.Neuropathy + in.BacterialInfection + in.Area + in.Depth
	band := LevelHigh
	switch {
	case score <= 2:
		band = LevelLow
	case score <= 4:
		band = LevelModerate
	}
	return SINBADScore{SINBADInput: in, Score: score, RiskBand: band}, nil
}
