package domain

import "fmt"

// Clinical ranges for patient record validation. Values outside these ranges
// are rejected before the reasoning engine is invoked, never clamped.
const (
	MinAge = 1
	MaxAge = 120

	MinSystolicBP = 50
	MaxSystolicBP = 250

	MinSpO2 = 50
	MaxSpO2 = 100

	MinHemoglobin = 5.0
	MaxHemoglobin = 20.0

	MinWBC = 1000
	MaxWBC = 50000

	MinPlatelet = 10000
	MaxPlatelet = 600000
)

// PatientRecord is an immutable, validated snapshot of one patient's
// demographic, symptom, and lab/vital data. Construct it through
// ParsePatientRecord; a zero PatientRecord is not valid.
type PatientRecord struct {
	Name   string `json:"name"` // display only, never used in reasoning
	Age    int    `json:"age"`
	Gender Gender `json:"gender"`

	Fever    bool `json:"fever"`
	Cough    bool `json:"cough"`
	Headache bool `json:"headache"`
	Fatigue  bool `json:"fatigue"`

	SystolicBP int     `json:"bp_systolic"` // mmHg
	SpO2       int     `json:"spo2"`        // %
	Hemoglobin float64 `json:"hemoglobin"`  // g/dL
	WBC        int     `json:"wbc"`         // cells/uL
	Platelet   int     `json:"platelet"`    // cells/uL
}

// PatientInput is the raw request payload before validation. Required
// numeric fields are pointers so that missing fields are distinguishable
// from legitimate zero values.
type PatientInput struct {
	Name   string `json:"patient_name"`
	Age    *int   `json:"age"`
	Gender string `json:"gender"`

	Fever    *bool `json:"fever"`
	Cough    *bool `json:"cough"`
	Headache *bool `json:"headache"`
	Fatigue  *bool `json:"fatigue"`

	SystolicBP *int     `json:"bp_systolic"`
	SpO2       *int     `json:"spo2"`
	Hemoglobin *float64 `json:"hemoglobin"`
	WBC        *int     `json:"wbc"`
	Platelet   *int     `json:"platelet"`
}

// ParsePatientRecord validates raw input and constructs a PatientRecord.
// Every failure wraps ErrInvalidInput with field-level detail.
func ParsePatientRecord(in PatientInput) (PatientRecord, error) {
	var rec PatientRecord

	required := []struct {
		field string
		ok    bool
	}{
		{"age", in.Age != nil},
		{"fever", in.Fever != nil},
		{"cough", in.Cough != nil},
		{"headache", in.Headache != nil},
		{"fatigue", in.Fatigue != nil},
		{"bp_systolic", in.SystolicBP != nil},
		{"spo2", in.SpO2 != nil},
		{"hemoglobin", in.Hemoglobin != nil},
		{"wbc", in.WBC != nil},
		{"platelet", in.Platelet != nil},
	}
	for _, r := range required {
		if !r.ok {
			return rec, NewValidationError(r.field, "field is required", nil)
		}
	}

	gender := Gender(in.Gender)
	if !gender.IsValid() {
		return rec, NewValidationError("gender", fmt.Sprintf("must be %q or %q", Male, Female), in.Gender)
	}

	rec = PatientRecord{
		Name:       in.Name,
		Age:        *in.Age,
		Gender:     gender,
		Fever:      *in.Fever,
		Cough:      *in.Cough,
		Headache:   *in.Headache,
		Fatigue:    *in.Fatigue,
		SystolicBP: *in.SystolicBP,
		SpO2:       *in.SpO2,
		Hemoglobin: *in.Hemoglobin,
		WBC:        *in.WBC,
		Platelet:   *in.Platelet,
	}

	if err := rec.Validate(); err != nil {
		return PatientRecord{}, err
	}
	return rec, nil
}

// Validate checks every numeric field against its declared clinical range.
func (r PatientRecord) Validate() error {
	if r.Age < MinAge || r.Age > MaxAge {
		return NewValidationError("age", fmt.Sprintf("must be between %d and %d years", MinAge, MaxAge), r.Age)
	}
	if !r.Gender.IsValid() {
		return NewValidationError("gender", "unrecognized gender category", string(r.Gender))
	}
	if r.SystolicBP < MinSystolicBP || r.SystolicBP > MaxSystolicBP {
		return NewValidationError("bp_systolic", fmt.Sprintf("must be between %d and %d mmHg", MinSystolicBP, MaxSystolicBP), r.SystolicBP)
	}
	if r.SpO2 < MinSpO2 || r.SpO2 > MaxSpO2 {
		return NewValidationError("spo2", fmt.Sprintf("must be between %d%% and %d%%", MinSpO2, MaxSpO2), r.SpO2)
	}
	if r.Hemoglobin < MinHemoglobin || r.Hemoglobin > MaxHemoglobin {
		return NewValidationError("hemoglobin", fmt.Sprintf("must be between %.1f and %.1f g/dL", MinHemoglobin, MaxHemoglobin), r.Hemoglobin)
	}
	if r.WBC < MinWBC || r.WBC > MaxWBC {
		return NewValidationError("wbc", fmt.Sprintf("must be between %d and %d cells/uL", MinWBC, MaxWBC), r.WBC)
	}
	if r.Platelet < MinPlatelet || r.Platelet > MaxPlatelet {
		return NewValidationError("platelet", fmt.Sprintf("must be between %d and %d cells/uL", MinPlatelet, MaxPlatelet), r.Platelet)
	}
	return nil
}

// SymptomCount returns how many of the four symptom flags are present.
func (r PatientRecord) SymptomCount() int {
	n := 0
	for _, s := range []bool{r.Fever, r.Cough, r.Headache, r.Fatigue} {
		if s {
			n++
		}
	}
	return n
}
