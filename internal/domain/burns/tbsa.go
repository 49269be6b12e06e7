package burns

import (
	"fmt"

	"github.com/astrobsm/UNTH-PLASTICSURGASSIST-sub000/internal/scoring"
)

// TBSA estimation methods.
const (
	MethodLundBrowder = "lund_browder"
	MethodRuleOfNines = "rule_of_nines"
)

// lundBrowder holds each region's share of body surface for the age bands
// <1, 1-4, 5-9, 10-14 and 15+.
var lundBrowder = map[string][5]float64{
	"head":            {19, 17, 13, 11, 9},
	"neck":            {2, 2, 2, 2, 2},
	"anterior_trunk":  {13, 13, 13, 13, 13},
	"posterior_trunk": {13, 13, 13, 13, 13},
	"left_buttock":    {2.5, 2.5, 2.5, 2.5, 2.5},
	"right_buttock":   {2.5, 2.5, 2.5, 2.5, 2.5},
	"genitalia":       {1, 1, 1, 1, 1},
	"left_upper_arm":  {4, 4, 4, 4, 4},
	"right_upper_arm": {4, 4, 4, 4, 4},
	"left_lower_arm":  {3, 3, 3, 3, 3},
	"right_lower_arm": {3, 3, 3, 3, 3},
	"left_hand":       {2.5, 2.5, 2.5, 2.5, 2.5},
	"right_hand":      {2.5, 2.5, 2.5, 2.5, 2.5},
	"left_thigh":      {5.5, 6.5, 8, 8.5, 9},
	"right_thigh":     {5.5, 6.5, 8, 8.5, 9},
	"left_lower_leg":  {5, 5, 5.5, 6, 6.5},
	"right_lower_leg": {5, 5, 5.5, 6, 6.5},
	"left_foot":       {3.5, 3.5, 3.5, 3.5, 3.5},
	"right_foot":      {3.5, 3.5, 3.5, 3.5, 3.5},
}

var ruleOfNinesAdult = map[string]float64{
	"head_neck":       9,
	"anterior_trunk":  18,
	"posterior_trunk": 18,
	"left_arm":        9,
	"right_arm":       9,
	"left_leg":        18,
	"right_leg":       18,
	"perineum":        1,
}

var ruleOfNinesChild = map[string]float64{
	"head_neck":       18,
	"anterior_trunk":  18,
	"posterior_trunk": 18,
	"left_arm":        9,
	"right_arm":       9,
	"left_leg":        13.5,
	"right_leg":       13.5,
	"perineum":        1,
}

// Burn depths.
const (
	DepthSuperficial        = "superficial"
	DepthSuperficialPartial = "superficial_partial"
	DepthDeepPartial        = "deep_partial"
	DepthFullThickness      = "full_thickness"
)

var depths = []string{DepthSuperficial, DepthSuperficialPartial, DepthDeepPartial, DepthFullThickness}

func ageBand(age float64) int {
	switch {
	case age < 1:
		return 0
	case age < 5:
		return 1
	case age < 10:
		return 2
	case age < 15:
		return 3
	default:
		return 4
	}
}

func regionTable(method string, age float64) map[string]float64 {
	if method == MethodRuleOfNines {
		if age < 10 {
			return ruleOfNinesChild
		}
		return ruleOfNinesAdult
	}
	band := ageBand(age)
	t := make(map[string]float64, len(lundBrowder))
	for region, shares := range lundBrowder {
		t[region] = shares[band]
	}
	return t
}

// Regions lists the region keys accepted by a method.
func Regions(method string) []string {
	var keys []string
	switch method {
	case MethodRuleOfNines:
		keys = []string{"head_neck", "anterior_trunk", "posterior_trunk", "left_arm", "right_arm", "left_leg", "right_leg", "perineum"}
	default:
		keys = []string{
			"head", "neck", "anterior_trunk", "posterior_trunk", "left_buttock", "right_buttock", "genitalia",
			"left_upper_arm", "right_upper_arm", "left_lower_arm", "right_lower_arm", "left_hand", "right_hand",
			"left_thigh", "right_thigh", "left_lower_leg", "right_lower_leg", "left_foot", "right_foot",
		}
	}
	return keys
}

// CalculateTBSA sums each burned region's share of body surface weighted by
// the fraction of the region burned. The total is rounded to one decimal.
func CalculateTBSA(in TBSAInput) (TBSAResult, error) {
	errs := []error{
		scoring.OneOf("tbsa.method", in.Method, MethodLundBrowder, MethodRuleOfNines),
		scoring.Range("tbsa.age_years", in.AgeYears, 0, 130),
	}
	if err := scoring.Check(errs...); err != nil {
		return TBSAResult{}, err
	}

	table := regionTable(in.Method, in.AgeYears)
	seen := make(map[string]bool, len(in.Regions))
	for i, r := range in.Regions {
		field := fmt.Sprintf("tbsa.regions[%d]", i)
		if _, ok := table[r.Region]; !ok {
			errs = append(errs, scoring.OneOf(field+".region", r.Region, Regions(in.Method)...))
			continue
		}
		if seen[r.Region] {
			errs = append(errs, &scoring.DomainError{Field: field + ".region", Value: r.Region, Domain: "regions listed once"})
		}
		seen[r.Region] = true
		errs = append(errs, scoring.Range(field+".percent_burned", r.PercentBurned, 0, 100))
		if r.Depth != "" {
			errs = append(errs, scoring.OneOf(field+".depth", r.Depth, depths...))
		}
	}
	if err := scoring.Check(errs...); err != nil {
		return TBSAResult{}, err
	}

	res := TBSAResult{TBSAInput: in, Contributions: make([]RegionContribution, 0, len(in.Regions))}
	total := 0.0
	for _, r := range in.Regions {
		share := table[r.Region] * r.PercentBurned / 100
		total += share
		res.Contributions = append(res.Contributions, RegionContribution{
			Region:       r.Region,
			RegionShare:  table[r.Region],
			Contribution: share,
		})
		if r.Depth == DepthFullThickness && r.PercentBurned > 0 {
			res.FullThickness = true
		}
	}
	res.TBSA = scoring.Round1(total)
	return res, nil
}
