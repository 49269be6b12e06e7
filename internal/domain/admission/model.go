package admission

import (
	"time"

	"github.com/google/uuid"
)

// Admission maps to the admission table.
type Admission struct {
	ID               uuid.UUID  `db:"id" json:"id"`
	HospitalNumber   string     `db:"hospital_number" json:"hospital_number"`
	PatientName      string     `db:"patient_name" json:"patient_name"`
	Age              int        `db:"age" json:"age"`
	Sex              string     `db:"sex" json:"sex"`
	Ward             string     `db:"ward" json:"ward"`
	Bed              *string    `db:"bed" json:"bed,omitempty"`
	Diagnosis        string     `db:"diagnosis" json:"diagnosis"`
	AdmittingSurgeon *string    `db:"admitting_surgeon" json:"admitting_surgeon,omitempty"`
	Status           string     `db:"status" json:"status"`
	AdmittedAt       time.Time  `db:"admitted_at" json:"admitted_at"`
	DischargedAt     *time.Time `db:"discharged_at" json:"discharged_at,omitempty"`
	Note             *string    `db:"note" json:"note,omitempty"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at" json:"updated_at"`
}

// WHODischargeAssessment is the bedside discharge readiness checklist. Every
// ordinal field is 0 (not met) to 3 (fully met).
type WHODischargeAssessment struct {
	VitalSignsStability     int  `json:"vital_signs_stability"`
	PainControl             int  `json:"pain_control"`
	Mobility                int  `json:"mobility"`
	WoundHealing            int  `json:"wound_healing"`
	OralIntake              int  `json:"oral_intake"`
	Elimination             int  `json:"elimination"`
	MentalStatus            int  `json:"mental_status"`
	SelfCare                int  `json:"self_care"`
	MedicationUnderstanding int  `json:"medication_understanding"`
	FollowUpArranged        int  `json:"follow_up_arranged"`
	HomeSupport             int  `json:"home_support"`
	HighReadmissionRisk     bool `json:"high_readmission_risk"`
	ComplexMedicalNeeds     bool `json:"complex_medical_needs"`
	LanguageBarrier         bool `json:"language_barrier"`
}

// WHODischargeScore is the scored checklist.
type WHODischargeScore struct {
	WHODischargeAssessment
	OrdinalSum     int    `json:"ordinal_sum"`
	Penalty        int    `json:"penalty"`
	TotalScore     int    `json:"total_score"`
	Recommendation string `json:"recommendation"`
}

// Discharge maps to the discharge table. It is a snapshot: the assessment is
// stored as scored at discharge time and never rescored.
type Discharge struct {
	ID                 uuid.UUID         `db:"id" json:"id"`
	AdmissionID        uuid.UUID         `db:"admission_id" json:"admission_id"`
	Assessment         WHODischargeScore `db:"assessment" json:"assessment"`
	TotalScore         int               `db:"total_score" json:"total_score"`
	Recommendation     string            `db:"recommendation" json:"recommendation"`
	AgainstAdvice      bool              `db:"against_advice" json:"against_advice"`
	Destination        *string           `db:"destination" json:"destination,omitempty"`
	DischargeDiagnosis *string           `db:"discharge_diagnosis" json:"discharge_diagnosis,omitempty"`
	Medications        *string           `db:"medications" json:"medications,omitempty"`
	FollowUp           *string           `db:"follow_up" json:"follow_up,omitempty"`
	Narrative          *string           `db:"narrative" json:"narrative,omitempty"`
	DischargedBy       *string           `db:"discharged_by" json:"discharged_by,omitempty"`
	DischargedAt       time.Time         `db:"discharged_at" json:"discharged_at"`
	CreatedAt          time.Time         `db:"created_at" json:"created_at"`
}

// DischargeRequest is the body of a discharge call.
type DischargeRequest struct {
	Assessment         WHODischargeAssessment `json:"assessment"`
	AgainstAdvice      bool                   `json:"against_advice"`
	Destination        *string                `json:"destination,omitempty"`
	DischargeDiagnosis *string                `json:"discharge_diagnosis,omitempty"`
	Medications        *string                `json:"medications,omitempty"`
	FollowUp           *string                `json:"follow_up,omitempty"`
	Narrative          *string                `json:"narrative,omitempty"`
	DischargedAt       *time.Time             `json:"discharged_at,omitempty"`
}
