package api

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/clinical-dss-server/internal/domain"
	"github.com/clinical-dss-server/internal/feedback"
)

// AssessResponse is the envelope returned by the assess endpoint.
type AssessResponse struct {
	AssessmentID   string                  `json:"assessment_id"`
	PatientSummary PatientSummary          `json:"patient_summary"`
	Result         *domain.ReasoningResult `json:"result"`
}

// PatientSummary echoes non-identifying basics of the assessed patient.
type PatientSummary struct {
	Age          int    `json:"age"`
	Gender       string `json:"gender"`
	SymptomCount int    `json:"symptom_count"`
}

// handleHealth handles health check requests
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":        "healthy",
		"timestamp":     time.Now().UTC(),
		"model_version": s.reasoner.ModelInfo().Version,
	})
}

// handleAssess runs the reasoning pipeline over a patient record.
func (s *Server) handleAssess(c *gin.Context) {
	rec, ok := s.bindPatient(c)
	if !ok {
		return
	}

	result, err := s.reason(rec)
	if err != nil {
		s.writeReasoningError(c, err)
		return
	}

	c.JSON(http.StatusOK, AssessResponse{
		AssessmentID: uuid.New().String(),
		PatientSummary: PatientSummary{
			Age:          rec.Age,
			Gender:       rec.Gender.String(),
			SymptomCount: rec.SymptomCount(),
		},
		Result: result,
	})
}

// handleReport runs the pipeline and renders a printable text report.
func (s *Server) handleReport(c *gin.Context) {
	rec, ok := s.bindPatient(c)
	if !ok {
		return
	}

	result, err := s.reason(rec)
	if err != nil {
		s.writeReasoningError(c, err)
		return
	}

	c.JSON(http.StatusOK, s.reports.Generate(rec, result))
}

// handleDiseases returns the supported disease catalog.
func (s *Server) handleDiseases(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"diseases": domain.DiseaseCatalog(),
	})
}

// handleModelInfo returns metadata about the loaded classifier artifact.
func (s *Server) handleModelInfo(c *gin.Context) {
	c.JSON(http.StatusOK, s.reasoner.ModelInfo())
}

// feedbackRequest is the submit-feedback payload.
type feedbackRequest struct {
	AssessmentID       string `json:"assessment_id" binding:"required"`
	PredictedDisease   string `json:"predicted_disease" binding:"required"`
	Confidence         int    `json:"confidence"`
	ClinicianDiagnosis string `json:"clinician_diagnosis" binding:"required"`
	Agreed             bool   `json:"agreed"`
	Notes              string `json:"notes"`
}

// handleSubmitFeedback stores a clinician verdict on an assessment.
func (s *Server) handleSubmitFeedback(c *gin.Context) {
	var req feedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	predicted := domain.Disease(req.PredictedDisease)
	diagnosed := domain.Disease(req.ClinicianDiagnosis)
	if !predicted.IsValid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown predicted_disease: " + req.PredictedDisease})
		return
	}
	if !diagnosed.IsValid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown clinician_diagnosis: " + req.ClinicianDiagnosis})
		return
	}

	fb := &feedback.Feedback{
		AssessmentID:       req.AssessmentID,
		PredictedDisease:   predicted,
		Confidence:         req.Confidence,
		ClinicianDiagnosis: diagnosed,
		Agreed:             req.Agreed,
		Notes:              req.Notes,
	}
	if err := s.feedback.Save(c.Request.Context(), fb); err != nil {
		s.logger.WithError(err).Error("Failed to save feedback")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save feedback"})
		return
	}

	c.JSON(http.StatusCreated, fb)
}

// handleListFeedback returns stored feedback with pagination.
func (s *Server) handleListFeedback(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	entries, err := s.feedback.List(c.Request.Context(), limit, offset)
	if err != nil {
		s.logger.WithError(err).Error("Failed to list feedback")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list feedback"})
		return
	}
	total, err := s.feedback.Count(c.Request.Context())
	if err != nil {
		s.logger.WithError(err).Error("Failed to count feedback")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to count feedback"})
		return
	}

	if entries == nil {
		entries = []*feedback.Feedback{}
	}
	c.JSON(http.StatusOK, gin.H{
		"feedback": entries,
		"total":    total,
	})
}

// handleGetFeedback returns feedback for one assessment.
func (s *Server) handleGetFeedback(c *gin.Context) {
	fb, err := s.feedback.Get(c.Request.Context(), c.Param("assessment_id"))
	if errors.Is(err, feedback.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "feedback not found"})
		return
	}
	if err != nil {
		s.logger.WithError(err).Error("Failed to get feedback")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get feedback"})
		return
	}
	c.JSON(http.StatusOK, fb)
}

// bindPatient parses and validates the request body into a patient record.
func (s *Server) bindPatient(c *gin.Context) (domain.PatientRecord, bool) {
	var input domain.PatientInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return domain.PatientRecord{}, false
	}

	rec, err := domain.ParsePatientRecord(input)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return domain.PatientRecord{}, false
	}
	return rec, true
}

// reason runs the pipeline, consulting the result cache when enabled.
// Reasoning is a pure function of the clinical fields, so identical
// records share a cache entry; the display name is excluded from the key.
func (s *Server) reason(rec domain.PatientRecord) (*domain.ReasoningResult, error) {
	if s.cache == nil {
		return s.reasoner.Reason(rec)
	}

	key := recordDigest(rec)
	if cached, ok := s.cache.Get(key); ok {
		if result, ok := cached.(*domain.ReasoningResult); ok {
			s.logger.WithField("digest", key[:12]).Debug("Result cache hit")
			return result, nil
		}
	}

	result, err := s.reasoner.Reason(rec)
	if err != nil {
		return nil, err
	}
	s.cache.Add(key, result)
	return result, nil
}

func recordDigest(rec domain.PatientRecord) string {
	rec.Name = ""
	data, _ := json.Marshal(rec)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// writeReasoningError maps pipeline errors to HTTP statuses.
func (s *Server) writeReasoningError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrModelUnavailable):
		s.logger.WithError(err).Error("Model unavailable")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "classifier model unavailable"})
	default:
		s.logger.WithFields(logrus.Fields{"error": err.Error()}).Error("Reasoning failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal reasoning error"})
	}
}
