// Package domain contains core business entities and types for the clinical
// decision support engine: patient records, disease classes, rule findings,
// and the assembled reasoning result returned to collaborators.
package domain

// Disease represents one of the closed set of diagnostic categories the
// scorer can output. The declaration order of AllDiseases is the canonical
// tie-break order for ranked predictions and must stay in sync with the
// trained model artifact.
type Disease string

const (
	Dengue       Disease = "Dengue"
	Flu          Disease = "Flu"
	Pneumonia    Disease = "Pneumonia"
	Anemia       Disease = "Anemia"
	Hypertension Disease = "Hypertension"
)

// AllDiseases lists every supported disease in canonical declaration order.
var AllDiseases = []Disease{Dengue, Flu, Pneumonia, Anemia, Hypertension}

// IsValid reports whether the disease is one of the supported classes.
// Only valid classes may appear in predictions or treatment plans.
func (d Disease) IsValid() bool {
	switch d {
	case Dengue, Flu, Pneumonia, Anemia, Hypertension:
		return true
	default:
		return false
	}
}

// String returns the string representation of the disease.
func (d Disease) String() string {
	return string(d)
}

// Gender represents the patient's recorded gender category.
type Gender string

const (
	Male   Gender = "Male"
	Female Gender = "Female"
)

// IsValid reports whether the gender is a recognized category.
func (g Gender) IsValid() bool {
	switch g {
	case Male, Female:
		return true
	default:
		return false
	}
}

// String returns the string representation of the gender.
func (g Gender) String() string {
	return string(g)
}

// Severity represents the clinical severity tier of a rule finding.
// Critical findings are promoted to top-level warnings regardless of the
// predicted disease; warning findings surface as red flags only.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityModerate Severity = "moderate"
	SeverityWarning  Severity = "warning"
)

// IsValid reports whether the severity is a recognized tier.
func (s Severity) IsValid() bool {
	switch s {
	case SeverityCritical, SeverityHigh, SeverityModerate, SeverityWarning:
		return true
	default:
		return false
	}
}

// String returns the string representation of the severity tier.
func (s Severity) String() string {
	return string(s)
}

// IsRedFlag reports whether a finding of this severity must surface in the
// red-flag lists of both the explanation and the treatment plan.
func (s Severity) IsRedFlag() bool {
	return s == SeverityCritical || s == SeverityWarning
}

// FeatureVector is the fixed-order numeric encoding of a PatientRecord.
// The element order is the contract between training and inference.
type FeatureVector []float64

// RuleMatch is a fired clinical threshold rule. Matches are produced fresh
// per evaluation and never persisted.
type RuleMatch struct {
	Finding  string    `json:"finding"`
	Detail   string    `json:"detail"`
	Supports []Disease `json:"supports,omitempty"`
	Severity Severity  `json:"severity"`
	// Prompt is the actionable clinician wording used when the match
	// surfaces as a red flag.
	Prompt string `json:"prompt,omitempty"`
}

// SupportsDisease reports whether the match supports the given disease.
func (m RuleMatch) SupportsDisease(d Disease) bool {
	for _, s := range m.Supports {
		if s == d {
			return true
		}
	}
	return false
}

// PredictionEntry is a single ranked diagnosis candidate.
type PredictionEntry struct {
	Disease    Disease `json:"disease"`
	Confidence int     `json:"confidence"`
}

// PredictionList is an ordered sequence of prediction entries, strictly
// non-increasing by confidence. The first entry is the primary diagnosis.
type PredictionList []PredictionEntry

// Primary returns the top-ranked prediction. The ranker guarantees at least
// one entry, so callers may rely on ok being true for any ranked list.
func (p PredictionList) Primary() (PredictionEntry, bool) {
	if len(p) == 0 {
		return PredictionEntry{}, false
	}
	return p[0], true
}

// ExplanationResult is the rule-grounded justification for a prediction list.
type ExplanationResult struct {
	Summary     string   `json:"summary"`
	KeyFindings []string `json:"key_findings"`
	Reasoning   []string `json:"reasoning"`
	RedFlags    []string `json:"red_flags"`
}

// TreatmentPlan holds categorized, non-prescriptive care guidance for the
// primary diagnosis plus rule-triggered additions.
type TreatmentPlan struct {
	ImmediateCare     []string `json:"immediate_care"`
	SymptomaticRelief []string `json:"symptomatic_relief"`
	Monitoring        []string `json:"monitoring"`
	Dietary           []string `json:"dietary"`
	Lifestyle         []string `json:"lifestyle"`
	RedFlags          []string `json:"red_flags"`
	Disclaimer        []string `json:"disclaimer"`
}

// FollowUpPlan is the recommended follow-up schedule for the primary
// diagnosis.
type FollowUpPlan struct {
	Immediate string `json:"immediate"`
	ShortTerm string `json:"short_term"`
	LongTerm  string `json:"long_term"`
}

// ReasoningResult is the complete, atomic output of one decision-support
// request. It is immutable after construction and is not stored by the core;
// identical patient records must yield identical results.
type ReasoningResult struct {
	Predictions  PredictionList    `json:"predictions"`
	Explanation  ExplanationResult `json:"explanation"`
	Treatment    TreatmentPlan     `json:"treatment"`
	FollowUp     FollowUpPlan      `json:"follow_up"`
	Warnings     []string          `json:"warnings"`
	ModelVersion string            `json:"model_version"`
}

// DiseaseInfo describes a supported disease for the catalog endpoint.
type DiseaseInfo struct {
	Name        Disease  `json:"name"`
	KeySymptoms []string `json:"key_symptoms"`
	Severity    string   `json:"severity"`
}

// DiseaseCatalog returns descriptive information for every supported disease
// in declaration order.
func DiseaseCatalog() []DiseaseInfo {
	return []DiseaseInfo{
		{Name: Dengue, KeySymptoms: []string{"High fever", "Low platelet count", "Headache"}, Severity: "Moderate to Severe"},
		{Name: Flu, KeySymptoms: []string{"Fever", "Cough", "Fatigue", "Headache"}, Severity: "Mild to Moderate"},
		{Name: Pneumonia, KeySymptoms: []string{"High fever", "Cough", "Low SpO2", "High WBC"}, Severity: "Severe"},
		{Name: Anemia, KeySymptoms: []string{"Fatigue", "Low hemoglobin", "No fever"}, Severity: "Mild to Moderate"},
		{Name: Hypertension, KeySymptoms: []string{"High BP", "Headache", "Normal temperature"}, Severity: "Chronic"},
	}
}
