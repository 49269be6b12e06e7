package burns

import (
	"github.com/astrobsm/UNTH-PLASTICSURGASSIST-sub000/internal/scoring"
)

type bauxBand struct {
	below     float64
	band      string
	mortality string
}

var bauxBands = []bauxBand{
	{50, "low", "<10%"},
	{75, "moderate", "10-30%"},
	{100, "high", "30-70%"},
	{130, "very_high", "70-95%"},
}

func bandBaux(v float64) (string, string) {
	for _, b := range bauxBands {
		if v < b.below {
			return b.band, b.mortality
		}
	}
	return "critical", ">95%"
}

// ScoreBaux computes the Baux and revised Baux scores. Inhalation injury adds
// 17 to the revised score only.
func ScoreBaux(in BauxInput) (BauxScore, error) {
	err := scoring.Check(
		scoring.Range("baux.age", in.Age, 0, 130),
		scoring.Range("baux.tbsa", in.TBSA, 0, 100),
	)
	if err != nil {
		return BauxScore{}, err
	}

	s := BauxScore{BauxInput: in, Baux: in.Age + in.TBSA}
	s.RevisedBaux = s.Baux
	if in.InhalationInjury {
		s.RevisedBaux += 17
	}
	s.Band, s.Mortality = bandBaux(s.Baux)
	s.RevisedBand, s.RevisedMortality = bandBaux(s.RevisedBaux)
	return s, nil
}

func absiAgePoints(age float64) int {
	switch {
	case age <= 20:
		return 1
	case age <= 40:
		return 2
	case age <= 60:
		return 3
	case age <= 80:
		return 4
	default:
		return 5
	}
}

var absiTBSASteps = []struct {
	min    float64
	points int
}{
	{80, 10}, {70, 9}, {60, 8}, {50, 7}, {40, 6},
	{30, 5}, {20, 4}, {10, 3}, {5, 2},
}

func absiTBSAPoints(tbsa float64) int {
	for _, s := range absiTBSASteps {
		if tbsa >= s.min {
			return s.points
		}
	}
	return 1
}

var absiMortality = []struct {
	min       int
	mortality string
	threat    string
}{
	{12, ">99%", "maximum"},
	{10, "90-99%", "severe"},
	{9, "80-90%", "serious"},
	{8, "50-70%", "serious"},
	{7, "30-50%", "moderately severe"},
	{6, "10-20%", "moderately severe"},
	{5, "5-10%", "moderate"},
	{4, "2%", "moderate"},
}

// ScoreABSI computes the Abbreviated Burn Severity Index.
func ScoreABSI(in ABSIInput) (ABSIScore, error) {
	err := scoring.Check(
		scoring.Range("absi.age", in.Age, 0, 130),
		scoring.OneOf("absi.sex", in.Sex, "female", "male"),
		scoring.Range("absi.tbsa", in.TBSA, 0, 100),
	)
	if err != nil {
		return ABSIScore{}, err
	}

	s := ABSIScore{
		ABSIInput:           in,
		AgePoints:           absiAgePoints(in.Age),
		SexPoints:           scoring.Points(in.Sex == "male", 1),
		TBSAPoints:          absiTBSAPoints(in.TBSA),
		FullThicknessPoints: scoring.Points(in.FullThickness, 1),
		InhalationPoints:    scoring.Points(in.InhalationInjury, 1),
	}
	s.Score = s.AgePoints + s.SexPoints + s.TBSAPoints + s.FullThicknessPoints + s.InhalationPoints

	s.MortalityRisk, s.ThreatToLife = "<1%", "very low"
	for _, m := range absiMortality {
		if s.Score >= m.min {
			s.MortalityRisk, s.ThreatToLife = m.mortality, m.threat
			break
		}
	}
	return s, nil
}
