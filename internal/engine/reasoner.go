package engine

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/clinical-dss-server/internal/domain"
)

// Reasoner composes the reasoning pipeline into the single synchronous
// operation exposed to transport collaborators. It holds no mutable state of
// its own; the only process-wide shared resource is the scorer artifact, so
// concurrent Reason calls need no coordination.
type Reasoner struct {
	logger    *logrus.Logger
	encoder   *Encoder
	scorer    *Scorer
	ranker    *Ranker
	rules     *RuleBase
	explainer *Explainer
	treatment *TreatmentEngine
}

var _ domain.Reasoner = (*Reasoner)(nil)

// NewReasoner wires the pipeline components around a loaded scorer and an
// initialized rule base.
func NewReasoner(logger *logrus.Logger, scorer *Scorer, rules *RuleBase) (*Reasoner, error) {
	treatment, err := NewTreatmentEngine(logger)
	if err != nil {
		return nil, err
	}
	return &Reasoner{
		logger:    logger,
		encoder:   NewEncoder(),
		scorer:    scorer,
		ranker:    NewRanker(),
		rules:     rules,
		explainer: NewExplainer(logger),
		treatment: treatment,
	}, nil
}

// Reason runs the full pipeline for one validated patient record. Any
// component failure aborts the whole call; a partial result is never
// returned. Identical records yield identical results.
func (r *Reasoner) Reason(rec domain.PatientRecord) (*domain.ReasoningResult, error) {
	start := time.Now()

	// Validation happens at the transport boundary; re-checking here keeps
	// the pure core total over its actual input domain.
	if err := rec.Validate(); err != nil {
		return nil, err
	}

	features := r.encoder.Encode(rec)

	probs, err := r.scorer.Score(features)
	if err != nil {
		return nil, fmt.Errorf("scoring failed: %w", err)
	}

	predictions := r.ranker.Rank(probs)
	primary, ok := predictions.Primary()
	if !ok {
		return nil, fmt.Errorf("%w: ranker produced no predictions", domain.ErrRuleEvaluation)
	}

	// The rule base is evaluated exactly once per request; the explanation
	// and the treatment plan must consume the same matches.
	matches := r.rules.Evaluate(rec)

	explanation := r.explainer.Explain(rec, predictions, matches)

	plan, warnings, err := r.treatment.Plan(primary.Disease, rec, matches)
	if err != nil {
		return nil, err
	}

	followUp, err := r.treatment.FollowUp(primary.Disease)
	if err != nil {
		return nil, err
	}

	result := &domain.ReasoningResult{
		Predictions:  predictions,
		Explanation:  explanation,
		Treatment:    plan,
		FollowUp:     followUp,
		Warnings:     warnings,
		ModelVersion: r.scorer.Version(),
	}

	r.logger.WithFields(logrus.Fields{
		"primary":      primary.Disease.String(),
		"confidence":   primary.Confidence,
		"rule_matches": len(matches),
		"warnings":     len(warnings),
		"elapsed":      time.Since(start),
	}).Info("Completed clinical reasoning")

	return result, nil
}

// ModelInfo describes the loaded scorer artifact for diagnostic surfaces.
type ModelInfo struct {
	Version  string           `json:"version"`
	Features []string         `json:"features"`
	Classes  []domain.Disease `json:"classes"`
}

// ModelInfo returns metadata about the loaded artifact.
func (r *Reasoner) ModelInfo() ModelInfo {
	return ModelInfo{
		Version:  r.scorer.Version(),
		Features: r.scorer.Schema(),
		Classes:  r.scorer.Classes(),
	}
}
