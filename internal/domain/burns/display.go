package burns

import "strings"

// Display is a label/description pair for the UI.
type Display struct {
	Label       string `json:"label"`
	Description string `json:"description"`
}

// GetDepthInfo describes a burn depth.
func GetDepthInfo(depth string) (Display, bool) {
	switch depth {
	case DepthSuperficial:
		return Display{"Superficial (epidermal)", "Red, painful, no blisters. Heals in under 7 days."}, true
	case DepthSuperficialPartial:
		return Display{"Superficial partial thickness", "Blistered, moist, blanches. Heals in 10 to 14 days."}, true
	case DepthDeepPartial:
		return Display{"Deep partial thickness", "Mottled, reduced sensation, sluggish capillary refill. Often needs grafting."}, true
	case DepthFullThickness:
		return Display{"Full thickness", "White or leathery, insensate. Requires excision and grafting."}, true
	}
	return Display{}, false
}

var regionNames = map[string]string{
	"head":            "Head",
	"neck":            "Neck",
	"head_neck":       "Head and neck",
	"anterior_trunk":  "Anterior trunk",
	"posterior_trunk": "Posterior trunk",
	"left_buttock":    "Left buttock",
	"right_buttock":   "Right buttock",
	"genitalia":       "Genitalia",
	"perineum":        "Perineum",
	"left_arm":        "Left arm",
	"right_arm":       "Right arm",
	"left_upper_arm":  "Left upper arm",
	"right_upper_arm": "Right upper arm",
	"left_lower_arm":  "Left lower arm",
	"right_lower_arm": "Right lower arm",
	"left_hand":       "Left hand",
	"right_hand":      "Right hand",
	"left_leg":        "Left leg",
	"right_leg":       "Right leg",
	"left_thigh":      "Left thigh",
	"right_thigh":     "Right thigh",
	"left_lower_leg":  "Left lower leg",
	"right_lower_leg": "Right lower leg",
	"left_foot":       "Left foot",
	"right_foot":      "Right foot",
}

// GetRegionDisplayName returns the human name of a region key. Unknown keys
// are returned with underscores replaced by spaces.
func GetRegionDisplayName(region string) string {
	if name, ok := regionNames[region]; ok {
		return name
	}
	return strings.ReplaceAll(region, "_", " ")
}
