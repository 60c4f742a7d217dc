package engine

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/clinical-dss-server/internal/domain"
)

// Thresholds holds every clinical cutoff the rule base evaluates. They ship
// as versioned configuration; zero values fall back to the defaults below.
type Thresholds struct {
	PlateletLow      int     // thrombocytopenia, strictly below
	PlateletCritical int     // severe thrombocytopenia, strictly below
	SpO2Low          int     // hypoxia, strictly below
	WBCHigh          int     // leukocytosis, strictly above
	WBCLow           int     // leukopenia, strictly below
	HbLowFemale      float64 // anemia marker (female), strictly below
	HbLowMale        float64 // anemia marker (male), strictly below
	HbCritical       float64 // severe anemia, strictly below
	BPHigh           int     // hypertensive range, at or above
	BPCrisis         int     // hypertensive crisis, at or above
	BPLow            int     // hypotension, strictly below
}

// DefaultThresholds returns the standard clinical cutoffs.
func DefaultThresholds() Thresholds {
	return Thresholds{
		PlateletLow:      100000,
		PlateletCritical: 50000,
		SpO2Low:          92,
		WBCHigh:          11000,
		WBCLow:           5000,
		HbLowFemale:      12.0,
		HbLowMale:        13.0,
		HbCritical:       7.0,
		BPHigh:           140,
		BPCrisis:         180,
		BPLow:            90,
	}
}

// merge overlays configured overrides onto the defaults.
func (t Thresholds) merge(cfg domain.RulesConfig) Thresholds {
	if cfg.PlateletLow > 0 {
		t.PlateletLow = cfg.PlateletLow
	}
	if cfg.PlateletCritical > 0 {
		t.PlateletCritical = cfg.PlateletCritical
	}
	if cfg.SpO2Low > 0 {
		t.SpO2Low = cfg.SpO2Low
	}
	if cfg.WBCHigh > 0 {
		t.WBCHigh = cfg.WBCHigh
	}
	if cfg.WBCLow > 0 {
		t.WBCLow = cfg.WBCLow
	}
	if cfg.HbLowFemale > 0 {
		t.HbLowFemale = cfg.HbLowFemale
	}
	if cfg.HbLowMale > 0 {
		t.HbLowMale = cfg.HbLowMale
	}
	if cfg.HbCritical > 0 {
		t.HbCritical = cfg.HbCritical
	}
	if cfg.BPHigh > 0 {
		t.BPHigh = cfg.BPHigh
	}
	if cfg.BPCrisis > 0 {
		t.BPCrisis = cfg.BPCrisis
	}
	if cfg.BPLow > 0 {
		t.BPLow = cfg.BPLow
	}
	return t
}

// Finding labels shared between the rule table and the treatment engine's
// rule-triggered additions.
const (
	findingThrombocytopenia       = "Thrombocytopenia"
	findingSevereThrombocytopenia = "Severe thrombocytopenia"
	findingHypoxia                = "Hypoxia"
	findingLeukocytosis           = "Leukocytosis"
	findingLeukopenia             = "Leukopenia"
	findingLowHemoglobin          = "Low hemoglobin"
	findingSevereAnemia           = "Severe anemia"
	findingHypertensiveRange      = "Hypertensive range"
	findingHypertensiveCrisis     = "Hypertensive crisis"
	findingHypotension            = "Hypotension"
)

// clinicalRule is a single threshold predicate over raw patient fields.
type clinicalRule struct {
	Finding   string
	Supports  []domain.Disease
	Severity  domain.Severity
	Predicate func(rec domain.PatientRecord) bool
	Detail    func(rec domain.PatientRecord) string
	Prompt    func(rec domain.PatientRecord) string
}

// RuleBase is the declarative table of clinical threshold rules. It is the
// single source of truth for clinical cutoffs: both the explanation
// generator and the treatment engine consume its matches rather than
// re-encoding thresholds locally.
type RuleBase struct {
	logger     *logrus.Logger
	thresholds Thresholds
	rules      []clinicalRule
}

// NewRuleBase creates a rule base with the default thresholds overlaid by
// any configured overrides.
func NewRuleBase(logger *logrus.Logger, cfg domain.RulesConfig) *RuleBase {
	rb := &RuleBase{
		logger:     logger,
		thresholds: DefaultThresholds().merge(cfg),
	}
	rb.initializeRules()

	logger.WithField("rule_count", len(rb.rules)).Info("Initialized clinical rule base")
	return rb
}

// Thresholds returns the effective clinical cutoffs.
func (rb *RuleBase) Thresholds() Thresholds {
	return rb.thresholds
}

// Evaluate runs every rule against the record and returns all matches in
// table declaration order. Evaluation is pure and side-effect-free.
func (rb *RuleBase) Evaluate(rec domain.PatientRecord) []domain.RuleMatch {
	matches := make([]domain.RuleMatch, 0, len(rb.rules))
	for _, rule := range rb.rules {
		if !rule.Predicate(rec) {
			continue
		}
		match := domain.RuleMatch{
			Finding:  rule.Finding,
			Detail:   rule.Detail(rec),
			Supports: rule.Supports,
			Severity: rule.Severity,
		}
		if rule.Prompt != nil {
			match.Prompt = rule.Prompt(rec)
		}
		matches = append(matches, match)
	}

	rb.logger.WithFields(logrus.Fields{
		"rules_total":   len(rb.rules),
		"rules_matched": len(matches),
	}).Debug("Evaluated clinical rule base")

	return matches
}

// initializeRules declares the rule table. Declaration order is the output
// order of Evaluate and must stay stable.
func (rb *RuleBase) initializeRules() {
	t := rb.thresholds

	rb.rules = []clinicalRule{
		{
			Finding:  findingThrombocytopenia,
			Supports: []domain.Disease{domain.Dengue},
			Severity: domain.SeverityHigh,
			Predicate: func(rec domain.PatientRecord) bool {
				return rec.Platelet < t.PlateletLow
			},
			Detail: func(rec domain.PatientRecord) string {
				return fmt.Sprintf("Platelet count %d/uL below %d/uL", rec.Platelet, t.PlateletLow)
			},
		},
		{
			Finding:  findingSevereThrombocytopenia,
			Supports: []domain.Disease{domain.Dengue},
			Severity: domain.SeverityCritical,
			Predicate: func(rec domain.PatientRecord) bool {
				return rec.Platelet < t.PlateletCritical
			},
			Detail: func(rec domain.PatientRecord) string {
				return fmt.Sprintf("Platelet count %d/uL below %d/uL", rec.Platelet, t.PlateletCritical)
			},
			Prompt: func(rec domain.PatientRecord) string {
				return fmt.Sprintf("Platelet count %d/uL below %d/uL - bleeding risk, consider immediate hospitalization", rec.Platelet, t.PlateletCritical)
			},
		},
		{
			Finding:  findingHypoxia,
			Supports: []domain.Disease{domain.Pneumonia},
			Severity: domain.SeverityCritical,
			Predicate: func(rec domain.PatientRecord) bool {
				return rec.SpO2 < t.SpO2Low
			},
			Detail: func(rec domain.PatientRecord) string {
				return fmt.Sprintf("SpO2 %d%% below %d%%", rec.SpO2, t.SpO2Low)
			},
			Prompt: func(rec domain.PatientRecord) string {
				return fmt.Sprintf("SpO2 %d%% below %d%% - evaluate for respiratory compromise", rec.SpO2, t.SpO2Low)
			},
		},
		{
			Finding:  findingLeukocytosis,
			Supports: []domain.Disease{domain.Pneumonia, domain.Flu},
			Severity: domain.SeverityModerate,
			Predicate: func(rec domain.PatientRecord) bool {
				return rec.WBC > t.WBCHigh
			},
			Detail: func(rec domain.PatientRecord) string {
				return fmt.Sprintf("WBC count %d/uL above %d/uL, suggests infection", rec.WBC, t.WBCHigh)
			},
		},
		{
			Finding:  findingLeukopenia,
			Supports: []domain.Disease{domain.Dengue},
			Severity: domain.SeverityModerate,
			Predicate: func(rec domain.PatientRecord) bool {
				return rec.WBC < t.WBCLow
			},
			Detail: func(rec domain.PatientRecord) string {
				return fmt.Sprintf("WBC count %d/uL below %d/uL, consistent with viral infection", rec.WBC, t.WBCLow)
			},
		},
		{
			Finding:  findingLowHemoglobin,
			Supports: []domain.Disease{domain.Anemia},
			Severity: domain.SeverityModerate,
			Predicate: func(rec domain.PatientRecord) bool {
				return rec.Hemoglobin < rb.hbThreshold(rec.Gender)
			},
			Detail: func(rec domain.PatientRecord) string {
				return fmt.Sprintf("Hemoglobin %.1f g/dL below %.1f g/dL", rec.Hemoglobin, rb.hbThreshold(rec.Gender))
			},
		},
		{
			Finding:  findingSevereAnemia,
			Supports: []domain.Disease{domain.Anemia},
			Severity: domain.SeverityCritical,
			Predicate: func(rec domain.PatientRecord) bool {
				return rec.Hemoglobin < t.HbCritical
			},
			Detail: func(rec domain.PatientRecord) string {
				return fmt.Sprintf("Hemoglobin %.1f g/dL below %.1f g/dL", rec.Hemoglobin, t.HbCritical)
			},
			Prompt: func(rec domain.PatientRecord) string {
				return fmt.Sprintf("Hemoglobin %.1f g/dL below %.1f g/dL - assess need for transfusion", rec.Hemoglobin, t.HbCritical)
			},
		},
		{
			Finding:  findingHypertensiveRange,
			Supports: []domain.Disease{domain.Hypertension},
			Severity: domain.SeverityModerate,
			Predicate: func(rec domain.PatientRecord) bool {
				return rec.SystolicBP >= t.BPHigh
			},
			Detail: func(rec domain.PatientRecord) string {
				return fmt.Sprintf("Systolic BP %d mmHg at or above %d mmHg", rec.SystolicBP, t.BPHigh)
			},
		},
		{
			Finding:  findingHypertensiveCrisis,
			Supports: []domain.Disease{domain.Hypertension},
			Severity: domain.SeverityCritical,
			Predicate: func(rec domain.PatientRecord) bool {
				return rec.SystolicBP >= t.BPCrisis
			},
			Detail: func(rec domain.PatientRecord) string {
				return fmt.Sprintf("Systolic BP %d mmHg at or above %d mmHg", rec.SystolicBP, t.BPCrisis)
			},
			Prompt: func(rec domain.PatientRecord) string {
				return fmt.Sprintf("Systolic BP %d mmHg at or above %d mmHg - urgent medical evaluation for hypertensive emergency", rec.SystolicBP, t.BPCrisis)
			},
		},
		{
			Finding:  findingHypotension,
			Supports: nil,
			Severity: domain.SeverityWarning,
			Predicate: func(rec domain.PatientRecord) bool {
				return rec.SystolicBP < t.BPLow
			},
			Detail: func(rec domain.PatientRecord) string {
				return fmt.Sprintf("Systolic BP %d mmHg below %d mmHg", rec.SystolicBP, t.BPLow)
			},
			Prompt: func(rec domain.PatientRecord) string {
				return fmt.Sprintf("Systolic BP %d mmHg below %d mmHg - assess for shock risk", rec.SystolicBP, t.BPLow)
			},
		},
	}
}

func (rb *RuleBase) hbThreshold(g domain.Gender) float64 {
	if g == domain.Male {
		return rb.thresholds.HbLowMale
	}
	return rb.thresholds.HbLowFemale
}
