// Package engine implements the clinical reasoning pipeline: feature
// encoding, disease scoring, prediction ranking, clinical rule evaluation,
// explanation generation, and treatment planning, composed by the Reasoner.
package engine

import (
	"github.com/clinical-dss-server/internal/domain"
)

// featureSchema is the fixed feature order the scorer artifact was trained
// against. The encoder and any artifact must agree on this order exactly;
// loading an artifact with a different schema fails.
var featureSchema = []string{
	"age",
	"gender",
	"fever",
	"cough",
	"headache",
	"fatigue",
	"bp_systolic",
	"spo2",
	"hemoglobin",
	"wbc",
	"platelet",
}

// Encoder normalizes a validated patient record into the fixed-order numeric
// vector the scorer expects. Encoding is deterministic and total over any
// record that satisfies its range invariants.
type Encoder struct{}

// NewEncoder creates a feature encoder.
func NewEncoder() *Encoder {
	return &Encoder{}
}

// Schema returns a copy of the feature order contract.
func (e *Encoder) Schema() []string {
	schema := make([]string, len(featureSchema))
	copy(schema, featureSchema)
	return schema
}

// Encode maps a patient record to its feature vector. Gender encodes
// Male=1/Female=0 and symptom flags encode 1/0, matching the training
// pipeline's categorical codes.
func (e *Encoder) Encode(rec domain.PatientRecord) domain.FeatureVector {
	return domain.FeatureVector{
		float64(rec.Age),
		encodeGender(rec.Gender),
		encodeFlag(rec.Fever),
		encodeFlag(rec.Cough),
		encodeFlag(rec.Headache),
		encodeFlag(rec.Fatigue),
		float64(rec.SystolicBP),
		float64(rec.SpO2),
		rec.Hemoglobin,
		float64(rec.WBC),
		float64(rec.Platelet),
	}
}

func encodeGender(g domain.Gender) float64 {
	if g == domain.Male {
		return 1
	}
	return 0
}

func encodeFlag(set bool) float64 {
	if set {
		return 1
	}
	return 0
}
