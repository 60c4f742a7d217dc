// Package report renders a completed reasoning result as a plain-text
// clinical assessment report suitable for printing or charting.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/clinical-dss-server/internal/domain"
)

const divider = "============================================================"
const sectionDivider = "------------------------------------------------------------"

// Generator renders text reports from reasoning results.
type Generator struct {
	logger *logrus.Logger
	now    func() time.Time
	newID  func() string
}

// NewGenerator creates a report generator.
func NewGenerator(logger *logrus.Logger) *Generator {
	return &Generator{
		logger: logger,
		now:    time.Now,
		newID:  func() string { return "CDSS-" + uuid.New().String() },
	}
}

// Report is a rendered assessment report together with its identifiers.
type Report struct {
	ID          string `json:"report_id"`
	GeneratedAt string `json:"generated_at"`
	Content     string `json:"content"`
}

// Generate renders the assessment for the given patient record. The report
// carries a fresh ID and generation timestamp; the embedded reasoning content
// itself is a pure function of the record.
func (g *Generator) Generate(rec domain.PatientRecord, result *domain.ReasoningResult) Report {
	id := g.newID()
	at := g.now().UTC()

	var b strings.Builder
	b.WriteString(divider + "\n")
	b.WriteString("CLINICAL DECISION SUPPORT REPORT\n")
	b.WriteString(divider + "\n")
	fmt.Fprintf(&b, "Report ID:    %s\n", id)
	fmt.Fprintf(&b, "Generated:    %s\n", at.Format(time.RFC3339))
	fmt.Fprintf(&b, "Model:        %s\n", result.ModelVersion)
	b.WriteString("\n")

	g.writePatient(&b, rec)
	g.writePredictions(&b, result.Predictions)
	g.writeExplanation(&b, result.Explanation)
	g.writeTreatment(&b, result.Treatment)
	g.writeFollowUp(&b, result.FollowUp)

	if len(result.Warnings) > 0 {
		b.WriteString("CRITICAL WARNINGS\n")
		b.WriteString(sectionDivider + "\n")
		for _, w := range result.Warnings {
			fmt.Fprintf(&b, "  !! %s\n", w)
		}
		b.WriteString("\n")
	}

	b.WriteString(divider + "\n")
	for _, line := range result.Treatment.Disclaimer {
		fmt.Fprintf(&b, "%s\n", line)
	}
	b.WriteString(divider + "\n")

	g.logger.WithFields(logrus.Fields{
		"report_id": id,
		"primary":   primaryName(result.Predictions),
	}).Info("Generated assessment report")

	return Report{
		ID:          id,
		GeneratedAt: at.Format(time.RFC3339),
		Content:     b.String(),
	}
}

func (g *Generator) writePatient(b *strings.Builder, rec domain.PatientRecord) {
	b.WriteString("PATIENT INFORMATION\n")
	b.WriteString(sectionDivider + "\n")
	if rec.Name != "" {
		fmt.Fprintf(b, "  Name:          %s\n", rec.Name)
	}
	fmt.Fprintf(b, "  Age:           %d\n", rec.Age)
	fmt.Fprintf(b, "  Gender:        %s\n", rec.Gender)
	fmt.Fprintf(b, "  Symptoms:      %s\n", symptomLine(rec))
	fmt.Fprintf(b, "  BP (systolic): %d mmHg\n", rec.SystolicBP)
	fmt.Fprintf(b, "  SpO2:          %d%%\n", rec.SpO2)
	fmt.Fprintf(b, "  Hemoglobin:    %.1f g/dL\n", rec.Hemoglobin)
	fmt.Fprintf(b, "  WBC:           %d /uL\n", rec.WBC)
	fmt.Fprintf(b, "  Platelets:     %d /uL\n", rec.Platelet)
	b.WriteString("\n")
}

func (g *Generator) writePredictions(b *strings.Builder, preds domain.PredictionList) {
	b.WriteString("DIAGNOSTIC PREDICTIONS\n")
	b.WriteString(sectionDivider + "\n")
	for i, p := range preds {
		marker := "  "
		if i == 0 {
			marker = "* "
		}
		fmt.Fprintf(b, "  %s%-14s %d%%\n", marker, p.Disease, p.Confidence)
	}
	b.WriteString("\n")
}

func (g *Generator) writeExplanation(b *strings.Builder, exp domain.ExplanationResult) {
	b.WriteString("CLINICAL REASONING\n")
	b.WriteString(sectionDivider + "\n")
	fmt.Fprintf(b, "  %s\n", exp.Summary)
	if len(exp.KeyFindings) > 0 {
		b.WriteString("\n  Key findings:\n")
		for _, f := range exp.KeyFindings {
			fmt.Fprintf(b, "    - %s\n", f)
		}
	}
	if len(exp.Reasoning) > 0 {
		b.WriteString("\n  Rationale:\n")
		for _, r := range exp.Reasoning {
			fmt.Fprintf(b, "    - %s\n", r)
		}
	}
	if len(exp.RedFlags) > 0 {
		b.WriteString("\n  Red flags:\n")
		for _, r := range exp.RedFlags {
			fmt.Fprintf(b, "    ! %s\n", r)
		}
	}
	b.WriteString("\n")
}

func (g *Generator) writeTreatment(b *strings.Builder, plan domain.TreatmentPlan) {
	b.WriteString("CARE GUIDANCE\n")
	b.WriteString(sectionDivider + "\n")
	writeGuidance(b, "Immediate care", plan.ImmediateCare)
	writeGuidance(b, "Symptomatic relief", plan.SymptomaticRelief)
	writeGuidance(b, "Monitoring", plan.Monitoring)
	writeGuidance(b, "Dietary", plan.Dietary)
	writeGuidance(b, "Lifestyle", plan.Lifestyle)
	b.WriteString("\n")
}

func (g *Generator) writeFollowUp(b *strings.Builder, fu domain.FollowUpPlan) {
	b.WriteString("FOLLOW-UP\n")
	b.WriteString(sectionDivider + "\n")
	fmt.Fprintf(b, "  Immediate:  %s\n", fu.Immediate)
	fmt.Fprintf(b, "  Short term: %s\n", fu.ShortTerm)
	fmt.Fprintf(b, "  Long term:  %s\n", fu.LongTerm)
	b.WriteString("\n")
}

func writeGuidance(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "  %s:\n", title)
	for _, item := range items {
		fmt.Fprintf(b, "    - %s\n", item)
	}
}

func symptomLine(rec domain.PatientRecord) string {
	var present []string
	if rec.Fever {
		present = append(present, "fever")
	}
	if rec.Cough {
		present = append(present, "cough")
	}
	if rec.Headache {
		present = append(present, "headache")
	}
	if rec.Fatigue {
		present = append(present, "fatigue")
	}
	if len(present) == 0 {
		return "none reported"
	}
	return strings.Join(present, ", ")
}

func primaryName(preds domain.PredictionList) string {
	if p, ok := preds.Primary(); ok {
		return p.Disease.String()
	}
	return ""
}
