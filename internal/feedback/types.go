// Package feedback stores clinician feedback on decision-support
// assessments: whether the clinician agreed with the suggested primary
// diagnosis and what they diagnosed instead.
package feedback

import (
	"context"
	"time"

	"github.com/clinical-dss-server/internal/domain"
)

// Feedback represents one clinician's verdict on one assessment.
type Feedback struct {
	ID                 int64          `json:"id,omitempty"`
	AssessmentID       string         `json:"assessment_id"`
	PredictedDisease   domain.Disease `json:"predicted_disease"`
	Confidence         int            `json:"confidence"`
	ClinicianDiagnosis domain.Disease `json:"clinician_diagnosis"`
	Agreed             bool           `json:"agreed"`
	Notes              string         `json:"notes,omitempty"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
}

// Store defines the interface for feedback storage operations.
type Store interface {
	// Save stores or updates feedback for an assessment. Feedback for the
	// same assessment ID is updated in place.
	Save(ctx context.Context, fb *Feedback) error

	// Get retrieves feedback for an assessment ID.
	Get(ctx context.Context, assessmentID string) (*Feedback, error)

	// List returns feedback entries with pagination, newest first.
	List(ctx context.Context, limit, offset int) ([]*Feedback, error)

	// Count returns the total number of feedback entries.
	Count(ctx context.Context) (int64, error)

	// Delete removes a feedback entry by ID.
	Delete(ctx context.Context, id int64) error

	// Close closes the store and releases resources.
	Close() error
}
