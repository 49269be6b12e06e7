package burns

import (
	"time"

	"github.com/google/uuid"
)

// RegionBurn is one burned body region.
type RegionBurn struct {
	Region        string  `json:"region"`
	PercentBurned float64 `json:"percent_burned"`
	Depth         string  `json:"depth,omitempty"`
}

type TBSAInput struct {
	Method   string       `json:"method"`
	AgeYears float64      `json:"age_years"`
	Regions  []RegionBurn `json:"regions"`
}

// RegionContribution is a region's share of body surface and the part of it
// counted toward the total.
type RegionContribution struct {
	Region       string  `json:"region"`
	RegionShare  float64 `json:"region_share"`
	Contribution float64 `json:"contribution"`
}

type TBSAResult struct {
	TBSAInput
	Contributions []RegionContribution `json:"contributions"`
	FullThickness bool                 `json:"full_thickness"`
	TBSA          float64              `json:"tbsa"`
}

type BauxInput struct {
	Age              float64 `json:"age"`
	TBSA             float64 `json:"tbsa"`
	InhalationInjury bool    `json:"inhalation_injury"`
}

type BauxScore struct {
	BauxInput
	Baux             float64 `json:"baux"`
	Band             string  `json:"band"`
	Mortality        string  `json:"mortality"`
	RevisedBaux      float64 `json:"revised_baux"`
	RevisedBand      string  `json:"revised_band"`
	RevisedMortality string  `json:"revised_mortality"`
}

type ABSIInput struct {
	Age              float64 `json:"age"`
	Sex              string  `json:"sex"`
	TBSA             float64 `json:"tbsa"`
	FullThickness    bool    `json:"full_thickness"`
	InhalationInjury bool    `json:"inhalation_injury"`
}

type ABSIScore struct {
	ABSIInput
	AgePoints           int    `json:"age_points"`
	SexPoints           int    `json:"sex_points"`
	TBSAPoints          int    `json:"tbsa_points"`
	FullThicknessPoints int    `json:"full_thickness_points"`
	InhalationPoints    int    `json:"inhalation_points"`
	Score               int    `json:"score"`
	ThreatToLife        string `json:"threat_to_life"`
	MortalityRisk       string `json:"mortality_risk"`
}

type ResuscitationInput struct {
	Formula    string    `json:"formula"`
	WeightKg   float64   `json:"weight_kg"`
	TBSA       float64   `json:"tbsa"`
	AgeYears   float64   `json:"age_years"`
	TimeOfBurn time.Time `json:"time_of_burn"`
}

// ResuscitationPlan is a snapshot valid at ComputedAt.
type ResuscitationPlan struct {
	ResuscitationInput
	Total24h             float64   `json:"total_24h"`
	FirstHalfVolume      float64   `json:"first_half_volume"`
	SecondHalfVolume     float64   `json:"second_half_volume"`
	HoursSinceBurn       float64   `json:"hours_since_burn"`
	Phase                string    `json:"phase"`
	HoursRemaining       float64   `json:"hours_remaining"`
	CurrentRate          float64   `json:"current_rate"`
	TargetUrineOutput    float64   `json:"target_urine_output"`
	TargetUrineMlPerHour float64   `json:"target_urine_ml_per_hour"`
	MaintenanceRate      *float64  `json:"maintenance_rate,omitempty"`
	ComputedAt           time.Time `json:"computed_at"`
}

type Titration struct {
	Action          string  `json:"action"`
	CurrentRate     float64 `json:"current_rate"`
	NewRate         float64 `json:"new_rate"`
	UrineMlPerHour  float64 `json:"urine_ml_per_hour"`
	TargetMlPerHour float64 `json:"target_ml_per_hour"`
	Message         string  `json:"message"`
}

// Vitals is one set of observations. Nil fields were not measured.
type Vitals struct {
	HeartRate            *float64 `json:"heart_rate,omitempty"`
	SystolicBP           *float64 `json:"systolic_bp,omitempty"`
	DiastolicBP          *float64 `json:"diastolic_bp,omitempty"`
	MAP                  *float64 `json:"map,omitempty"`
	Temperature          *float64 `json:"temperature,omitempty"`
	SpO2                 *float64 `json:"spo2,omitempty"`
	RespiratoryRate      *float64 `json:"respiratory_rate,omitempty"`
	UrineOutputMlPerHour *float64 `json:"urine_output_ml_per_hour,omitempty"`
	WeightKg             float64  `json:"weight_kg"`
	AgeYears             float64  `json:"age_years"`
}

type BurnAlert struct {
	Parameter string  `json:"parameter"`
	Value     float64 `json:"value"`
	Severity  string  `json:"severity"`
	Message   string  `json:"message"`
}

// AssessmentInput is everything needed to assess a burn on admission.
type AssessmentInput struct {
	Sex              string       `json:"sex"`
	AgeYears         float64      `json:"age_years"`
	WeightKg         float64      `json:"weight_kg"`
	Method           string       `json:"method"`
	Regions          []RegionBurn `json:"regions"`
	InhalationInjury bool         `json:"inhalation_injury"`
	Formula          string       `json:"formula"`
	TimeOfBurn       time.Time    `json:"time_of_burn"`
}

// Evaluation is the derived burn assessment.
type Evaluation struct {
	TBSA          TBSAResult        `json:"tbsa"`
	Baux          BauxScore         `json:"baux"`
	ABSI          ABSIScore         `json:"absi"`
	Resuscitation ResuscitationPlan `json:"resuscitation"`
}

// SnapshotVersion is bumped whenever the stored Evaluation shape changes.
const SnapshotVersion = 1

// StoredAssessment maps to the burn_assessment table.
type StoredAssessment struct {
	ID            uuid.UUID       `db:"id" json:"id"`
	AdmissionID   uuid.UUID       `db:"admission_id" json:"admission_id"`
	Input         AssessmentInput `db:"input" json:"input"`
	Evaluation    Evaluation      `db:"evaluation" json:"evaluation"`
	SchemaVersion int             `db:"schema_version" json:"schema_version"`
	TBSA          float64         `db:"tbsa" json:"tbsa"`
	ABSI          int             `db:"absi" json:"absi"`
	RevisedBaux   float64         `db:"revised_baux" json:"revised_baux"`
	AssessedBy    *string         `db:"assessed_by" json:"assessed_by,omitempty"`
	AssessedAt    time.Time       `db:"assessed_at" json:"assessed_at"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
}
