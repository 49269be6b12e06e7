package diabeticfoot

import (
	"time"

	"github.com/google/uuid"
)

// Demographics are the patient factors banded into the demographics sub-score.
type Demographics struct {
	Age                   int     `json:"age"`
	Sex                   string  `json:"sex"`
	DiabetesDurationYears float64 `json:"diabetes_duration_years"`
	SmokingStatus         string  `json:"smoking_status"`
	AmbulatoryStatus      string  `json:"ambulatory_status"`
}

// DemographicsScore is the scored demographics block.
type DemographicsScore struct {
	Demographics
	AgePoints        int `json:"age_points"`
	SexPoints        int `json:"sex_points"`
	DurationPoints   int `json:"duration_points"`
	SmokingPoints    int `json:"smoking_points"`
	AmbulatoryPoints int `json:"ambulatory_points"`
	Score            int `json:"score"`
}

type WagnerInput struct {
	Grade int `json:"grade"`
}

type WagnerGrade struct {
	WagnerInput
	Description string `json:"description"`
	Score       int    `json:"score"`
}

type TexasInput struct {
	Grade int    `json:"grade"`
	Stage string `json:"stage"`
}

type TexasClassification struct {
	TexasInput
	Description    string  `json:"description"`
	AmputationRate float64 `json:"amputation_rate"`
	Score          int     `json:"score"`
}

type WIfIInput struct {
	Wound         int `json:"wound"`
	Ischemia      int `json:"ischemia"`
	FootInfection int `json:"foot_infection"`
}

type WIfIClassification struct {
	WIfIInput
	CombinedScore            int    `json:"combined_score"`
	ClinicalStage            int    `json:"clinical_stage"`
	AmputationRisk           string `json:"amputation_risk"`
	RevascularizationBenefit string `json:"revascularization_benefit"`
	Score                    int    `json:"score"`
}

type SINBADInput struct {
	Site               int `json:"site"`
	Ischemia           int `json:"ischemia"`
	Neuropathy         int `json:"neuropathy"`
	BacterialInfection int `json:"bacterial_infection"`
	Area               int `json:"area"`
	Depth              int `json:"depth"`
}

type SINBADScore struct {
	SINBADInput
	Score    int    `json:"score"`
	RiskBand string `json:"risk_band"`
}

type ComorbidityInput struct {
	Hypertension              bool     `json:"hypertension"`
	CoronaryArteryDisease     bool     `json:"coronary_artery_disease"`
	HeartFailure              bool     `json:"heart_failure"`
	PeripheralVascularDisease bool     `json:"peripheral_vascular_disease"`
	PreviousAmputation        bool     `json:"previous_amputation"`
	PreviousUlcer             bool     `json:"previous_ulcer"`
	Retinopathy               bool     `json:"retinopathy"`
	PeripheralNeuropathy      bool     `json:"peripheral_neuropathy"`
	Stroke                    bool     `json:"stroke"`
	Obesity                   bool     `json:"obesity"`
	Immunosuppression         bool     `json:"immunosuppression"`
	HbA1c                     *float64 `json:"hba1c,omitempty"`
}

type ComorbidityScore struct {
	ComorbidityInput
	Score int `json:"score"`
}

type RenalInput struct {
	EGFR        float64 `json:"egfr"`
	OnDialysis  bool    `json:"on_dialysis"`
	Proteinuria bool    `json:"proteinuria"`
}

type RenalScore struct {
	RenalInput
	CKDStage string `json:"ckd_stage"`
	Stage    int    `json:"stage"`
	Score    int    `json:"score"`
}

type SepsisAssessmentInput struct {
	Temperature       float64  `json:"temperature"`
	HeartRate         float64  `json:"heart_rate"`
	RespiratoryRate   float64  `json:"respiratory_rate"`
	WBC               float64  `json:"wbc"`
	SystolicBP        float64  `json:"systolic_bp"`
	AlteredMentation  bool     `json:"altered_mentation"`
	Crepitus          bool     `json:"crepitus"`
	FoulSmell         bool     `json:"foul_smell"`
	PurulentDischarge bool     `json:"purulent_discharge"`
	Lymphangitis      bool     `json:"lymphangitis"`
	LocalCellulitis   bool     `json:"local_cellulitis"`
	CRP               *float64 `json:"crp,omitempty"`
	Procalcitonin     *float64 `json:"procalcitonin,omitempty"`
	Lactate           *float64 `json:"lactate,omitempty"`
}

type SepsisScore struct {
	SepsisAssessmentInput
	SIRSCount     int    `json:"sirs_count"`
	QSOFACount    int    `json:"qsofa_count"`
	SIRSPositive  bool   `json:"sirs_positive"`
	QSOFAPositive bool   `json:"qsofa_positive"`
	Likelihood    string `json:"likelihood"`
	Score         int    `json:"score"`
}

type ArterialDopplerInput struct {
	ABI                    float64  `json:"abi"`
	Waveform               string   `json:"waveform"`
	DorsalisPedis          string   `json:"dorsalis_pedis"`
	PosteriorTibial        string   `json:"posterior_tibial"`
	Stenosis               string   `json:"stenosis"`
	MedialCalcification    bool     `json:"medial_calcification"`
	NonCompressibleVessels bool     `json:"non_compressible_vessels"`
	ToePressure            *float64 `json:"toe_pressure,omitempty"`
}

type ArterialDopplerScore struct {
	ArterialDopplerInput
	ABIBand        string `json:"abi_band"`
	Interpretation string `json:"interpretation"`
	Score          int    `json:"score"`
}

type VenousDopplerInput struct {
	SuperficialReflux      bool   `json:"superficial_reflux"`
	DeepReflux             bool   `json:"deep_reflux"`
	PerforatorIncompetence bool   `json:"perforator_incompetence"`
	DVT                    string `json:"dvt"`
	CEAPClass              int    `json:"ceap_class"`
	EdemaGrade             int    `json:"edema_grade"`
}

type VenousDopplerScore struct {
	VenousDopplerInput
	Interpretation string `json:"interpretation"`
	Score          int    `json:"score"`
}

type OsteomyelitisInput struct {
	ProbeToBone        bool     `json:"probe_to_bone"`
	ExposedBone        bool     `json:"exposed_bone"`
	XRayChanges        bool     `json:"xray_changes"`
	MRIPositive        bool     `json:"mri_positive"`
	BoneBiopsyPositive bool     `json:"bone_biopsy_positive"`
	ESR                *float64 `json:"esr,omitempty"`
	UlcerArea          *float64 `json:"ulcer_area,omitempty"`
	UlcerDepth         *float64 `json:"ulcer_depth,omitempty"`
}

type OsteomyelitisScore struct {
	OsteomyelitisInput
	Likelihood string `json:"likelihood"`
	Score      int    `json:"score"`
}

// AssessmentInput carries the raw inputs of every component. Nil components
// have not been assessed.
type AssessmentInput struct {
	Demographics  *Demographics          `json:"demographics,omitempty"`
	Wagner        *WagnerInput           `json:"wagner,omitempty"`
	Texas         *TexasInput            `json:"texas,omitempty"`
	WIfI          *WIfIInput             `json:"wifi,omitempty"`
	SINBAD        *SINBADInput           `json:"sinbad,omitempty"`
	Comorbidities *ComorbidityInput      `json:"comorbidities,omitempty"`
	Renal         *RenalInput            `json:"renal,omitempty"`
	Sepsis        *SepsisAssessmentInput `json:"sepsis,omitempty"`
	Arterial      *ArterialDopplerInput  `json:"arterial,omitempty"`
	Venous        *VenousDopplerInput    `json:"venous,omitempty"`
	Osteomyelitis *OsteomyelitisInput    `json:"osteomyelitis,omitempty"`
}

// DiabeticFootAssessment is the composite of scored components.
type DiabeticFootAssessment struct {
	Demographics  *Demographics         `json:"demographics,omitempty"`
	Wagner        *WagnerGrade          `json:"wagner,omitempty"`
	Texas         *TexasClassification  `json:"texas,omitempty"`
	WIfI          *WIfIClassification   `json:"wifi,omitempty"`
	SINBAD        *SINBADScore          `json:"sinbad,omitempty"`
	Comorbidities *ComorbidityScore     `json:"comorbidities,omitempty"`
	Renal         *RenalScore           `json:"renal,omitempty"`
	Sepsis        *SepsisScore          `json:"sepsis,omitempty"`
	Arterial      *ArterialDopplerScore `json:"arterial,omitempty"`
	Venous        *VenousDopplerScore   `json:"venous,omitempty"`
	Osteomyelitis *OsteomyelitisScore   `json:"osteomyelitis,omitempty"`
}

// TotalScore is the aggregator output.
type TotalScore struct {
	DemographicsScore      *DemographicsScore `json:"demographics_score,omitempty"`
	TotalScore             int                `json:"total_score"`
	RiskCategory           string             `json:"risk_category"`
	LimbSalvageProbability int                `json:"limb_salvage_probability"`
}

// Recommendations is the output of the intervention rule list.
type Recommendations struct {
	RecommendedIntervention string   `json:"recommended_intervention"`
	DetailedRecommendations []string `json:"detailed_recommendations"`
}

// MonitoringPlan is a follow-up plan snapshot.
type MonitoringPlan struct {
	FollowUpFrequency     string   `json:"follow_up_frequency"`
	RequiredTests         []string `json:"required_tests"`
	NephrologyConsult     bool     `json:"nephrology_consult"`
	InfectiousDiseaseTeam bool     `json:"infectious_disease_consult"`
	AntibioticDuration    string   `json:"antibiotic_duration,omitempty"`
}

// Evaluation is everything derived from one AssessmentInput.
type Evaluation struct {
	Assessment      DiabeticFootAssessment `json:"assessment"`
	Total           TotalScore             `json:"total"`
	Recommendations Recommendations        `json:"recommendations"`
	MonitoringPlan  MonitoringPlan         `json:"monitoring_plan"`
}

// SnapshotVersion is bumped whenever the stored Evaluation shape changes.
const SnapshotVersion = 1

// StoredAssessment maps to the diabetic_foot_assessment table.
type StoredAssessment struct {
	ID                      uuid.UUID       `db:"id" json:"id"`
	AdmissionID             uuid.UUID       `db:"admission_id" json:"admission_id"`
	Input                   AssessmentInput `db:"input" json:"input"`
	Evaluation              Evaluation      `db:"evaluation" json:"evaluation"`
	SchemaVersion           int             `db:"schema_version" json:"schema_version"`
	TotalScore              int             `db:"total_score" json:"total_score"`
	RiskCategory            string          `db:"risk_category" json:"risk_category"`
	RecommendedIntervention string          `db:"recommended_intervention" json:"recommended_intervention"`
	AssessedBy              *string         `db:"assessed_by" json:"assessed_by,omitempty"`
	AssessedAt              time.Time       `db:"assessed_at" json:"assessed_at"`
	CreatedAt               time.Time       `db:"created_at" json:"created_at"`
}
