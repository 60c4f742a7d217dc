package engine

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/clinical-dss-server/internal/domain"
)

// ModelArtifact is the persisted form of the trained classifier: a
// nearest-centroid model in scaled feature space with a softmax temperature.
// The training procedure that produces it is an external collaborator; the
// scorer only loads and invokes it.
type ModelArtifact struct {
	Version     string               `json:"version"`
	Features    []string             `json:"features"`
	Classes     []domain.Disease     `json:"classes"`
	Centroids   map[string][]float64 `json:"centroids"`
	Scales      []float64            `json:"scales"`
	Temperature float64              `json:"temperature"`
}

// validate checks the artifact against the encoder's feature schema and the
// closed disease set. A failing artifact is unusable as a whole.
func (a *ModelArtifact) validate(schema []string) error {
	if len(a.Features) != len(schema) {
		return fmt.Errorf("feature schema length mismatch: artifact has %d, encoder expects %d", len(a.Features), len(schema))
	}
	for i, name := range schema {
		if a.Features[i] != name {
			return fmt.Errorf("feature schema mismatch at position %d: artifact %q, encoder %q", i, a.Features[i], name)
		}
	}
	if len(a.Classes) == 0 {
		return fmt.Errorf("artifact declares no classes")
	}
	for _, class := range a.Classes {
		if !class.IsValid() {
			return fmt.Errorf("artifact declares unknown class %q", class)
		}
		centroid, ok := a.Centroids[string(class)]
		if !ok {
			return fmt.Errorf("artifact missing centroid for class %q", class)
		}
		if len(centroid) != len(schema) {
			return fmt.Errorf("centroid for class %q has %d values, expected %d", class, len(centroid), len(schema))
		}
	}
	if len(a.Scales) != len(schema) {
		return fmt.Errorf("artifact has %d scales, expected %d", len(a.Scales), len(schema))
	}
	for i, s := range a.Scales {
		if s <= 0 {
			return fmt.Errorf("scale for feature %q must be positive, got %g", schema[i], s)
		}
	}
	if a.Temperature <= 0 {
		return fmt.Errorf("temperature must be positive, got %g", a.Temperature)
	}
	return nil
}

// Scorer wraps the pretrained multi-class classifier. The artifact is loaded
// once and shared read-only across concurrent requests; Reload swaps the
// reference atomically so in-flight requests never observe a partial state.
type Scorer struct {
	logger   *logrus.Logger
	path     string
	schema   []string
	artifact atomic.Pointer[ModelArtifact]
}

// LoadScorer reads and validates the model artifact at path. Any failure
// wraps domain.ErrModelUnavailable and should abort process startup.
func LoadScorer(logger *logrus.Logger, encoder *Encoder, path string) (*Scorer, error) {
	s := &Scorer{
		logger: logger,
		path:   path,
		schema: encoder.Schema(),
	}
	artifact, err := s.readArtifact(path)
	if err != nil {
		return nil, err
	}
	s.artifact.Store(artifact)

	logger.WithFields(logrus.Fields{
		"path":    path,
		"version": artifact.Version,
		"classes": len(artifact.Classes),
	}).Info("Loaded scorer artifact")

	return s, nil
}

func (s *Scorer) readArtifact(path string) (*ModelArtifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", domain.ErrModelUnavailable, path, err)
	}

	artifact := &ModelArtifact{}
	if err := json.Unmarshal(data, artifact); err != nil {
		return nil, fmt.Errorf("%w: decoding %s: %v", domain.ErrModelUnavailable, path, err)
	}
	if err := artifact.validate(s.schema); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrModelUnavailable, err)
	}
	return artifact, nil
}

// Reload re-reads the artifact from disk and swaps it in whole. Requests in
// flight keep scoring against the artifact they started with.
func (s *Scorer) Reload() error {
	artifact, err := s.readArtifact(s.path)
	if err != nil {
		return err
	}
	s.artifact.Store(artifact)
	s.logger.WithField("version", artifact.Version).Info("Reloaded scorer artifact")
	return nil
}

// Version returns the loaded artifact's version string.
func (s *Scorer) Version() string {
	return s.artifact.Load().Version
}

// Classes returns the disease classes the artifact scores.
func (s *Scorer) Classes() []domain.Disease {
	artifact := s.artifact.Load()
	classes := make([]domain.Disease, len(artifact.Classes))
	copy(classes, artifact.Classes)
	return classes
}

// Schema returns the feature names the artifact was trained against.
func (s *Scorer) Schema() []string {
	artifact := s.artifact.Load()
	features := make([]string, len(artifact.Features))
	copy(features, artifact.Features)
	return features
}

// Score returns a probability per disease class for the given feature
// vector. Probabilities sum to 1 within floating tolerance. The call is
// stateless and safe for unbounded concurrency.
func (s *Scorer) Score(features domain.FeatureVector) (map[domain.Disease]float64, error) {
	artifact := s.artifact.Load()

	if len(features) != len(artifact.Features) {
		return nil, fmt.Errorf("feature vector has %d values, artifact expects %d", len(features), len(artifact.Features))
	}

	// Softmax over negative scaled squared distances to class centroids.
	scores := make(map[domain.Disease]float64, len(artifact.Classes))
	maxScore := math.Inf(-1)
	for _, class := range artifact.Classes {
		centroid := artifact.Centroids[string(class)]
		var dist float64
		for i, v := range features {
			d := (v - centroid[i]) / artifact.Scales[i]
			dist += d * d
		}
		score := -dist / artifact.Temperature
		scores[class] = score
		if score > maxScore {
			maxScore = score
		}
	}

	var sum float64
	probs := make(map[domain.Disease]float64, len(scores))
	for class, score := range scores {
		p := math.Exp(score - maxScore)
		probs[class] = p
		sum += p
	}
	for class := range probs {
		probs[class] /= sum
	}
	return probs, nil
}
