package diabeticfoot

import (
	"sort"

	"github.com/astrobsm/UNTH-PLASTICSURGASSIST-sub000/internal/scoring"
)

// ABI bands.
const (
	ABINonCompressible = "non_compressible"
	ABINormal          = "normal"
	ABIMild            = "mild"
	ABIModerate        = "moderate"
	ABISevere          = "severe"
)

var abiInterpretations = map[string]string{
	ABINonCompressible: "Non-compressible vessels; ABI unreliable, confirm with toe pressures",
	ABINormal:          "Normal arterial inflow",
	ABIMild:            "Mild peripheral arterial disease",
	ABIModerate:        "Moderate peripheral arterial disease",
	ABISevere:          "Severe peripheral arterial disease; critical limb ischaemia likely",
}

var waveformPoints = map[string]int{"triphasic": 0, "biphasic": 5, "monophasic": 15, "absent": 25}

var pulsePoints = map[string]int{"normal": 0, "diminished": 5, "absent": 10}

var stenosisPoints = map[string]int{"none": 0, "<50": 5, "50-69": 10, "70-99": 20, "occlusion": 30}

func abiBand(abi float64) (string, int) {
	switch {
	case abi > 1.3:
		return ABINonCompressible, 15
	case abi >= 0.9:
		return ABINormal, 0
	case abi >= 0.7:
		return ABIMild, 10
	case abi >= 0.4:
		return ABIModerate, 20
	default:
		return ABISevere, 35
	}
}

func enumMember(field, v string, table map[string]int) error {
	if _, ok := table[v]; !ok {
		keys := make([]string, 0, len(table))
		for k := range table {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return scoring.OneOf(field, v, keys...)
	}
	return nil
}

// ScoreArterialDoppler scores the arterial study. The interpretation follows
// the ABI band alone while the score accumulates every finding.
func ScoreArterialDoppler(in ArterialDopplerInput) (ArterialDopplerScore, error) {
	err := scoring.Check(
		scoring.Range("arterial.abi", in.ABI, 0, 3),
		enumMember("arterial.waveform", in.Waveform, waveformPoints),
		enumMember("arterial.dorsalis_pedis", in.DorsalisPedis, pulsePoints),
		enumMember("arterial.posterior_tibial", in.PosteriorTibial, pulsePoints),
		enumMember("arterial.stenosis", in.Stenosis, stenosisPoints),
		optionalNonNegative("arterial.toe_pressure", in.ToePressure),
	)
	if err != nil {
		return ArterialDopplerScore{}, err
	}

	band, score := abiBand(in.ABI)
	score += waveformPoints[in.Waveform] +
		pulsePoints[in.DorsalisPedis] +
		pulsePoints[in.PosteriorTibial] +
		stenosisPoints[in.Stenosis] +
		scoring.Points(in.MedialCalcification, 10) +
		scoring.Points(in.NonCompressibleVessels, 10)

	if tp := in.ToePressure; tp != nil {
		switch {
		case *tp < 30:
			score += 25
		case *tp < 50:
			score += 15
		case *tp < 70:
			score += 5
		}
	}

	return ArterialDopplerScore{
		ArterialDopplerInput: in,
		ABIBand:              band,
		Interpretation:       abiInterpretations[band],
		Score:                score,
	}, nil
}

// DVT states.
const (
	DVTNone    = "none"
	DVTAcute   = "acute"
	DVTChronic = "chronic"
)

var dvtPoints = map[string]int{DVTNone: 0, DVTAcute: 25, DVTChronic: 10}

// ScoreVenousDoppler scores reflux, DVT, CEAP class (0-6) and oedema (0-3).
func ScoreVenousDoppler(in VenousDopplerInput) (VenousDopplerScore, error) {
	err := scoring.Check(
		enumMember("venous.dvt", in.DVT, dvtPoints),
		scoring.Ordinal("venous.ceap_class", in.CEAPClass, 0, 6),
		scoring.Ordinal("venous.edema_grade", in.EdemaGrade, 0, 3),
	)
	if err != nil {
		return VenousDopplerScore{}, err
	}

	score := scoring.Points(in.SuperficialReflux, 5) +
		scoring.Points(in.DeepReflux, 10) +
		scoring.Points(in.PerforatorIncompetence, 5) +
		dvtPoints[in.DVT] +
		in.CEAPClass*3 +
		in.EdemaGrade*2

	var interp string
	switch {
	case in.DVT == DVTAcute:
		interp = "Acute DVT; anticoagulate and defer compression"
	case in.CEAPClass >= 5:
		interp = "Advanced chronic venous disease"
	case in.CEAPClass >= 3:
		interp = "Chronic venous insufficiency"
	default:
		interp = "No significant venous disease"
	}

	return VenousDopplerScore{VenousDopplerInput: in, Interpretation: interp, Score: score}, nil
}
