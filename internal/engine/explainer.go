package engine

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/clinical-dss-server/internal/domain"
)

// Explainer derives a rule-grounded, human-readable justification for a
// ranked prediction list. It never invents a rule correlate: when no rule
// match supports the primary diagnosis, the reasoning says so.
type Explainer struct {
	logger *logrus.Logger
}

// NewExplainer creates an explanation generator.
func NewExplainer(logger *logrus.Logger) *Explainer {
	return &Explainer{logger: logger}
}

// Explain builds the explanation for the given record, predictions, and the
// rule matches already evaluated for this request.
func (e *Explainer) Explain(rec domain.PatientRecord, predictions domain.PredictionList, matches []domain.RuleMatch) domain.ExplanationResult {
	primary, ok := predictions.Primary()
	if !ok {
		// The ranker guarantees at least one entry; an empty list here is a
		// pipeline defect, surfaced as an explicitly empty explanation.
		return domain.ExplanationResult{
			Summary:     "No prediction available for explanation.",
			KeyFindings: []string{},
			Reasoning:   []string{},
			RedFlags:    []string{},
		}
	}

	result := domain.ExplanationResult{
		Summary: fmt.Sprintf("Clinical analysis suggests %s as the primary diagnosis with %d%% confidence.",
			primary.Disease, primary.Confidence),
		KeyFindings: e.keyFindings(rec, matches),
		Reasoning:   e.reasoning(primary, predictions, matches),
		RedFlags:    redFlagPrompts(matches),
	}

	e.logger.WithFields(logrus.Fields{
		"primary":   primary.Disease.String(),
		"findings":  len(result.KeyFindings),
		"red_flags": len(result.RedFlags),
	}).Debug("Generated explanation")

	return result
}

// keyFindings lists every rule match finding plus the symptom flags present
// on the record, in stable order.
func (e *Explainer) keyFindings(rec domain.PatientRecord, matches []domain.RuleMatch) []string {
	findings := make([]string, 0, len(matches)+4)
	for _, m := range matches {
		findings = append(findings, fmt.Sprintf("%s: %s", m.Finding, m.Detail))
	}
	for _, symptom := range []struct {
		present bool
		label   string
	}{
		{rec.Fever, "Fever reported"},
		{rec.Cough, "Cough reported"},
		{rec.Headache, "Headache reported"},
		{rec.Fatigue, "Fatigue reported"},
	} {
		if symptom.present {
			findings = append(findings, symptom.label)
		}
	}
	return findings
}

// reasoning narrates the case for the primary diagnosis from the rule
// matches that support it, plus a differential note when the gap between the
// top two candidates is notably wide or narrow.
func (e *Explainer) reasoning(primary domain.PredictionEntry, predictions domain.PredictionList, matches []domain.RuleMatch) []string {
	lines := make([]string, 0, len(matches)+2)

	supported := false
	for _, m := range matches {
		if m.SupportsDisease(primary.Disease) {
			supported = true
			lines = append(lines, fmt.Sprintf("%s (%s) supports a diagnosis of %s.", m.Finding, m.Detail, primary.Disease))
		}
	}
	if !supported {
		lines = append(lines, fmt.Sprintf(
			"No threshold finding directly supports %s; this ranking is driven by the statistical model without a direct rule correlate.",
			primary.Disease))
	}

	if len(predictions) > 1 {
		second := predictions[1]
		gap := primary.Confidence - second.Confidence
		switch {
		case gap > 30:
			lines = append(lines, fmt.Sprintf("%s is substantially more likely than %s (confidence gap %d points).",
				primary.Disease, second.Disease, gap))
		case gap < 10:
			lines = append(lines, fmt.Sprintf("Close differential between %s and %s; further diagnostic testing is recommended.",
				primary.Disease, second.Disease))
		}
	}

	return lines
}

// redFlagPrompts returns the actionable prompt of every critical or warning
// severity match, in rule declaration order. This is the one place red flags
// are derived; the treatment engine mirrors the same list.
func redFlagPrompts(matches []domain.RuleMatch) []string {
	flags := make([]string, 0, len(matches))
	for _, m := range matches {
		if m.Severity.IsRedFlag() {
			flags = append(flags, m.Prompt)
		}
	}
	return flags
}
