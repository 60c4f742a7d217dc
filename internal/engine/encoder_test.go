package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinical-dss-server/internal/domain"
)

func TestEncoder_Schema(t *testing.T) {
	enc := NewEncoder()

	schema := enc.Schema()
	assert.Equal(t, []string{
		"age", "gender", "fever", "cough", "headache", "fatigue",
		"bp_systolic", "spo2", "hemoglobin", "wbc", "platelet",
	}, schema)

	// Mutating the returned slice must not affect the contract.
	schema[0] = "mutated"
	assert.Equal(t, "age", enc.Schema()[0])
}

func TestEncoder_Encode(t *testing.T) {
	enc := NewEncoder()

	rec := domain.PatientRecord{
		Age:        28,
		Gender:     domain.Female,
		Fever:      true,
		Cough:      false,
		Headache:   true,
		Fatigue:    false,
		SystolicBP: 112,
		SpO2:       98,
		Hemoglobin: 12.5,
		WBC:        4000,
		Platelet:   90000,
	}

	vec := enc.Encode(rec)
	require.Len(t, vec, len(enc.Schema()))
	assert.Equal(t, domain.FeatureVector{
		28, 0, 1, 0, 1, 0, 112, 98, 12.5, 4000, 90000,
	}, vec)
}

func TestEncoder_GenderAndFlagCodes(t *testing.T) {
	enc := NewEncoder()

	male := domain.PatientRecord{
		Age: 40, Gender: domain.Male, Fever: true, Cough: true, Headache: true, Fatigue: true,
		SystolicBP: 120, SpO2: 97, Hemoglobin: 14, WBC: 8000, Platelet: 250000,
	}
	vec := enc.Encode(male)
	assert.Equal(t, 1.0, vec[1])
	for _, i := range []int{2, 3, 4, 5} {
		assert.Equal(t, 1.0, vec[i])
	}

	female := male
	female.Gender = domain.Female
	female.Fever, female.Cough, female.Headache, female.Fatigue = false, false, false, false
	vec = enc.Encode(female)
	assert.Equal(t, 0.0, vec[1])
	for _, i := range []int{2, 3, 4, 5} {
		assert.Equal(t, 0.0, vec[i])
	}
}

func TestEncoder_Deterministic(t *testing.T) {
	enc := NewEncoder()
	rec := domain.PatientRecord{
		Age: 55, Gender: domain.Male, Headache: true,
		SystolicBP: 165, SpO2: 97, Hemoglobin: 14, WBC: 8000, Platelet: 280000,
	}
	assert.Equal(t, enc.Encode(rec), enc.Encode(rec))
}
