package burns

import (
	"fmt"
)

// Alert severities.
const (
	SeverityCritical = "critical"
	SeverityWarning  = "warning"
)

type alertRule struct {
	parameter string
	value     func(v Vitals) *float64
	check     func(x float64, v Vitals) (severity, message string)
}

func meanArterialPressure(v Vitals) *float64 {
	if v.MAP != nil {
		return v.MAP
	}
	if v.SystolicBP != nil && v.DiastolicBP != nil {
		m := (*v.SystolicBP + 2*(*v.DiastolicBP)) / 3
		return &m
	}
	return nil
}

var alertRules = []alertRule{
	{
		parameter: "heart_rate",
		value:     func(v Vitals) *float64 { return v.HeartRate },
		check: func(x float64, _ Vitals) (string, string) {
			switch {
			case x > 140:
				return SeverityCritical, fmt.Sprintf("Heart rate %.0f/min: severe tachycardia, assess for hypovolaemia", x)
			case x > 120:
				return SeverityWarning, fmt.Sprintf("Heart rate %.0f/min: tachycardia", x)
			}
			return "", ""
		},
	},
	{
		parameter: "systolic_bp",
		value:     func(v Vitals) *float64 { return v.SystolicBP },
		check: func(x float64, _ Vitals) (string, string) {
			if x < 90 {
				return SeverityCritical, fmt.Sprintf("Systolic BP %.0f mmHg: hypotension", x)
			}
			return "", ""
		},
	},
	{
		parameter: "map",
		value:     meanArterialPressure,
		check: func(x float64, _ Vitals) (string, string) {
			if x < 65 {
				return SeverityCritical, fmt.Sprintf("MAP %.0f mmHg: inadequate perfusion pressure", x)
			}
			return "", ""
		},
	},
	{
		parameter: "temperature",
		value:     func(v Vitals) *float64 { return v.Temperature },
		check: func(x float64, _ Vitals) (string, string) {
			switch {
			case x < 35:
				return SeverityCritical, fmt.Sprintf("Temperature %.1f °C: hypothermia, warm the patient", x)
			case x > 38.5:
				return SeverityWarning, fmt.Sprintf("Temperature %.1f °C: pyrexia, consider infection", x)
			}
			return "", ""
		},
	},
	{
		parameter: "spo2",
		value:     func(v Vitals) *float64 { return v.SpO2 },
		check: func(x float64, _ Vitals) (string, string) {
			switch {
			case x < 88:
				return SeverityCritical, fmt.Sprintf("SpO2 %.0f%%: severe hypoxaemia, consider airway compromise", x)
			case x < 92:
				return SeverityWarning, fmt.Sprintf("SpO2 %.0f%%: hypoxaemia", x)
			}
			return "", ""
		},
	},
	{
		parameter: "respiratory_rate",
		value:     func(v Vitals) *float64 { return v.RespiratoryRate },
		check: func(x float64, _ Vitals) (string, string) {
			if x > 30 {
				return SeverityWarning, fmt.Sprintf("Respiratory rate %.0f/min: tachypnoea", x)
			}
			return "", ""
		},
	},
	{
		parameter: "urine_output",
		value:     func(v Vitals) *float64 { return v.UrineOutputMlPerHour },
		check: func(x float64, v Vitals) (string, string) {
			if v.WeightKg <= 0 {
				return "", ""
			}
			target := TargetUrineOutput(v.AgeYears) * v.WeightKg
			switch {
			case x < target/2:
				return SeverityCritical, fmt.Sprintf("Urine output %.0f mL/h below half of target %.0f mL/h", x, target)
			case x < target:
				return SeverityWarning, fmt.Sprintf("Urine output %.0f mL/h below target %.0f mL/h", x, target)
			}
			return "", ""
		},
	},
}

// EvaluateVitals returns an alert for every measured parameter outside its
// safe range, in a fixed parameter order.
func EvaluateVitals(v Vitals) []BurnAlert {
	alerts := []BurnAlert{}
	for _, r := range alertRules {
		x := r.value(v)
		if x == nil {
			continue
		}
		if severity, msg := r.check(*x, v); severity != "" {
			alerts = append(alerts, BurnAlert{
				Parameter: r.parameter,
				Value:     *x,
				Severity:  severity,
				Message:   msg,
			})
		}
	}
	return alerts
}
