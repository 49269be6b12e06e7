package diabeticfoot

// Display is a label/description pair for the UI.
type Display struct {
	Label       string `json:"label"`
	Description string `json:"description"`
}

// GetRiskCategoryDisplay returns the label for a risk category.
func GetRiskCategoryDisplay(category string) (Display, bool) {
	switch category {
	case RiskLow:
		return Display{"Low risk", "Limb salvage likely (about 90%)."}, true
	case RiskModerate:
		return Display{"Moderate risk", "Limb salvage possible (about 70%)."}, true
	case RiskHigh:
		return Display{"High risk", "Limb threatened (about 40% salvage)."}, true
	case RiskCritical:
		return Display{"Critical risk", "Amputation likely (about 15% salvage)."}, true
	}
	return Display{}, false
}

// GetInterventionDisplay returns the label for a recommended intervention.
func GetInterventionDisplay(intervention string) (Display, bool) {
	switch intervention {
	case InterventionEmergencyDebridement:
		return Display{"Emergency surgical debridement", "Theatre within hours for life- or limb-threatening infection."}, true
	case InterventionUrgentDebridement:
		return Display{"Urgent surgical debridement", "Theatre within 24 hours."}, true
	case InterventionMajorAmputation:
		return Display{"Major amputation", "Below- or above-knee amputation."}, true
	case InterventionMinorAmputation:
		return Display{"Minor amputation", "Toe, ray or transmetatarsal amputation."}, true
	case InterventionBoneResection:
		return Display{"Bone resection", "Excision of infected bone."}, true
	case InterventionRevascularization:
		return Display{"Revascularisation", "Endovascular or open bypass to restore inflow."}, true
	case InterventionSurgicalDebridement:
		return Display{"Surgical debridement", "Planned debridement of non-viable or infected tissue."}, true
	case InterventionConservative:
		return Display{"Conservative management", "Wound care, offloading and risk factor control."}, true
	}
	return Display{}, false
}
