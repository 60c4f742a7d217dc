package engine

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/clinical-dss-server/internal/domain"
)

// baseline is the static, non-prescriptive guidance bundle for one disease.
type baseline struct {
	ImmediateCare     []string
	SymptomaticRelief []string
	Monitoring        []string
	Dietary           []string
	Lifestyle         []string
}

// planDisclaimer is attached to every treatment plan.
var planDisclaimer = []string{
	"These are general supportive care guidelines only, not a prescription.",
	"Final treatment decisions must be made by the attending physician.",
	"Seek immediate medical attention for any red flag finding.",
}

// TreatmentEngine maps the primary diagnosis plus rule matches to
// categorized care guidance. Baselines are keyed by the closed disease set;
// rule-triggered additions augment a baseline but never replace it.
type TreatmentEngine struct {
	logger    *logrus.Logger
	baselines map[domain.Disease]baseline
	followUps map[domain.Disease]domain.FollowUpPlan
}

// NewTreatmentEngine creates a treatment engine with the built-in guidance
// bundles. Every supported disease has a bundle; a gap is a defect caught by
// the completeness check below and by tests.
func NewTreatmentEngine(logger *logrus.Logger) (*TreatmentEngine, error) {
	e := &TreatmentEngine{
		logger:    logger,
		baselines: guidanceBaselines(),
		followUps: followUpPlans(),
	}
	for _, d := range domain.AllDiseases {
		if _, ok := e.baselines[d]; !ok {
			return nil, fmt.Errorf("%w: no treatment baseline for %s", domain.ErrRuleEvaluation, d)
		}
		if _, ok := e.followUps[d]; !ok {
			return nil, fmt.Errorf("%w: no follow-up plan for %s", domain.ErrRuleEvaluation, d)
		}
	}
	return e, nil
}

// Plan produces the treatment plan and the escalation warnings for the
// primary diagnosis. Warnings are the critical-severity red flags promoted
// to the top level of the reasoning result; the plan's red flags mirror the
// explanation's critical and warning findings.
func (e *TreatmentEngine) Plan(primary domain.Disease, rec domain.PatientRecord, matches []domain.RuleMatch) (domain.TreatmentPlan, []string, error) {
	base, ok := e.baselines[primary]
	if !ok {
		return domain.TreatmentPlan{}, nil, fmt.Errorf("%w: no treatment baseline for %s", domain.ErrRuleEvaluation, primary)
	}

	plan := domain.TreatmentPlan{
		ImmediateCare:     cloneList(base.ImmediateCare),
		SymptomaticRelief: cloneList(base.SymptomaticRelief),
		Monitoring:        cloneList(base.Monitoring),
		Dietary:           cloneList(base.Dietary),
		Lifestyle:         cloneList(base.Lifestyle),
		RedFlags:          redFlagPrompts(matches),
		Disclaimer:        cloneList(planDisclaimer),
	}

	e.augment(&plan, rec, matches)

	warnings := make([]string, 0, len(matches))
	for _, m := range matches {
		if m.Severity == domain.SeverityCritical {
			warnings = append(warnings, m.Prompt)
		}
	}

	e.logger.WithFields(logrus.Fields{
		"primary":   primary.String(),
		"red_flags": len(plan.RedFlags),
		"warnings":  len(warnings),
	}).Debug("Generated treatment plan")

	return plan, warnings, nil
}

// FollowUp returns the follow-up schedule for the primary diagnosis.
func (e *TreatmentEngine) FollowUp(primary domain.Disease) (domain.FollowUpPlan, error) {
	fu, ok := e.followUps[primary]
	if !ok {
		return domain.FollowUpPlan{}, fmt.Errorf("%w: no follow-up plan for %s", domain.ErrRuleEvaluation, primary)
	}
	return fu, nil
}

// augment appends rule-triggered and demographic additions to the baseline.
// Additions apply regardless of which disease is primary.
func (e *TreatmentEngine) augment(plan *domain.TreatmentPlan, rec domain.PatientRecord, matches []domain.RuleMatch) {
	for _, m := range matches {
		switch m.Finding {
		case findingHypoxia:
			plan.ImmediateCare = append(plan.ImmediateCare, "Urgent oxygen saturation assessment; prepare supplemental oxygen")
		case findingSevereThrombocytopenia:
			plan.ImmediateCare = append(plan.ImmediateCare, "Arrange immediate hospitalization for bleeding risk")
		case findingHypertensiveCrisis:
			plan.ImmediateCare = append(plan.ImmediateCare, "Urgent evaluation for hypertensive emergency")
		case findingSevereAnemia:
			plan.ImmediateCare = append(plan.ImmediateCare, "Evaluate need for blood transfusion")
		case findingHypotension:
			plan.Monitoring = append(plan.Monitoring, "Frequent blood pressure checks with cautious fluid management for shock risk")
		case findingThrombocytopenia:
			plan.Monitoring = append(plan.Monitoring, "Serial platelet counts to track trend")
		}
	}

	if rec.Age < 12 {
		plan.Monitoring = append(plan.Monitoring, "Pediatric patient: review all dosing against weight-based guidance")
	} else if rec.Age > 65 {
		plan.Monitoring = append(plan.Monitoring, "Elderly patient: monitor closely for adverse effects")
	}
}

func cloneList(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}

// guidanceBaselines declares the static care bundle per disease. Content is
// standard supportive-care guidance, intentionally non-prescriptive.
func guidanceBaselines() map[domain.Disease]baseline {
	return map[domain.Disease]baseline{
		domain.Dengue: {
			ImmediateCare: []string{
				"Ensure adequate hydration with oral or IV fluids",
				"Monitor vital signs every 4-6 hours",
				"Complete bed rest",
			},
			SymptomaticRelief: []string{
				"Paracetamol-class antipyretics for fever",
				"Avoid NSAIDs such as aspirin and ibuprofen due to bleeding risk",
				"Cool sponging for fever management",
			},
			Monitoring: []string{
				"Daily platelet count monitoring",
				"Watch for warning signs: abdominal pain, persistent vomiting, bleeding",
				"Track hematocrit to detect plasma leakage",
			},
			Dietary: []string{
				"High-fluid diet including oral rehydration solution",
				"Easily digestible foods",
			},
			Lifestyle: []string{
				"Avoid strenuous activity until the platelet count normalizes",
			},
		},
		domain.Flu: {
			ImmediateCare: []string{
				"Rest and isolate to limit spread",
				"Maintain good hydration",
				"Monitor temperature regularly",
			},
			SymptomaticRelief: []string{
				"Paracetamol for fever",
				"Cough suppressants if needed",
				"Saline gargles for throat irritation",
			},
			Monitoring: []string{
				"Watch for breathing difficulty",
				"Monitor for secondary bacterial infection",
				"Recovery is typically within 7-10 days",
			},
			Dietary: []string{
				"Warm fluids such as soups and herbal tea",
				"Vitamin C rich foods",
				"Light, nutritious meals",
			},
			Lifestyle: []string{
				"Consider annual influenza vaccination after recovery",
			},
		},
		domain.Pneumonia: {
			ImmediateCare: []string{
				"Requires medical attention; do not manage without clinical review",
				"Oxygen therapy if SpO2 falls below 94%",
				"Assess need for hospital admission",
			},
			SymptomaticRelief: []string{
				"Antipyretics for fever",
				"Adequate pain management",
				"Breathing exercises as advised",
			},
			Monitoring: []string{
				"Continuous oxygen saturation monitoring",
				"Chest X-ray to assess extent of infection",
				"Culture and sensitivity testing for targeted therapy",
			},
			Dietary: []string{
				"High-calorie, high-protein diet",
				"Adequate hydration",
				"Small frequent meals if breathless",
			},
			Lifestyle: []string{
				"Smoking cessation",
				"Pneumococcal vaccination when eligible",
			},
		},
		domain.Anemia: {
			ImmediateCare: []string{
				"Identify the underlying cause: blood loss, nutritional deficiency, chronic disease",
				"Complete blood count with peripheral smear",
				"Iron studies, B12 and folate levels",
			},
			SymptomaticRelief: []string{
				"Iron supplementation if iron deficiency is confirmed",
				"Gradual increase in physical activity",
			},
			Monitoring: []string{
				"Repeat hemoglobin after 4-6 weeks of treatment",
				"Watch for signs of cardiac strain if severe",
			},
			Dietary: []string{
				"Iron-rich foods such as spinach, red meat and lentils",
				"Vitamin C with meals to enhance iron absorption",
				"Avoid tea and coffee with meals",
			},
			Lifestyle: []string{
				"Avoid strenuous exercise until hemoglobin recovers",
			},
		},
		domain.Hypertension: {
			ImmediateCare: []string{
				"Blood pressure monitoring 2-3 times daily",
				"Lifestyle modification counseling",
				"Cardiovascular risk assessment",
			},
			SymptomaticRelief: []string{
				"Stress reduction techniques",
				"Adequate sleep of 7-8 hours",
				"Simple analgesics for headache",
			},
			Monitoring: []string{
				"Home blood pressure log",
				"Kidney function tests",
				"ECG and echocardiography if chronic",
				"Fundoscopy for hypertensive retinopathy",
			},
			Dietary: []string{
				"DASH diet: low sodium, high potassium",
				"Limit salt intake to under 5 g per day",
				"Reduce caffeine and alcohol",
			},
			Lifestyle: []string{
				"Regular aerobic exercise, 30 minutes five days a week",
				"Weight reduction if overweight",
				"Smoking cessation",
				"Stress management such as yoga or meditation",
			},
		},
	}
}

// followUpPlans declares the follow-up schedule per disease.
func followUpPlans() map[domain.Disease]domain.FollowUpPlan {
	return map[domain.Disease]domain.FollowUpPlan{
		domain.Dengue: {
			Immediate: "Daily monitoring until the platelet count normalizes",
			ShortTerm: "Review after 7 days with repeat CBC",
			LongTerm:  "No specific follow-up if recovered",
		},
		domain.Flu: {
			Immediate: "Self-monitoring at home",
			ShortTerm: "Review if symptoms persist beyond 7 days",
			LongTerm:  "Consider annual flu vaccination",
		},
		domain.Pneumonia: {
			Immediate: "Daily clinical assessment",
			ShortTerm: "Repeat chest X-ray after 6 weeks",
			LongTerm:  "Pneumococcal vaccination if eligible",
		},
		domain.Anemia: {
			Immediate: "Identify the cause with investigations",
			ShortTerm: "Repeat hemoglobin after 4-6 weeks",
			LongTerm:  "Monitor every 3 months until normalized",
		},
		domain.Hypertension: {
			Immediate: "Weekly blood pressure monitoring",
			ShortTerm: "Review after 2-4 weeks",
			LongTerm:  "Regular 3-monthly check-ups",
		},
	}
}
