package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinical-dss-server/internal/domain"
	"github.com/clinical-dss-server/internal/engine"
	"github.com/clinical-dss-server/internal/feedback"
)

const testArtifact = `{
  "version": "1.0.0-test",
  "features": ["age", "gender", "fever", "cough", "headache", "fatigue", "bp_systolic", "spo2", "hemoglobin", "wbc", "platelet"],
  "classes": ["Dengue", "Flu", "Pneumonia", "Anemia", "Hypertension"],
  "centroids": {
    "Dengue":       [30, 0.5, 1, 0, 1, 1, 110, 97, 13.5, 3800, 80000],
    "Flu":          [35, 0.5, 1, 1, 1, 1, 118, 97, 13.5, 9500, 230000],
    "Pneumonia":    [50, 0.5, 1, 1, 0, 1, 115, 88, 13.0, 15000, 250000],
    "Anemia":       [40, 0.0, 0, 0, 0, 1, 112, 97, 8.5, 7000, 260000],
    "Hypertension": [55, 0.5, 0, 0, 1, 0, 165, 97, 14.0, 8000, 280000]
  },
  "scales": [20, 1, 1, 1, 1, 1, 25, 5, 3, 5000, 100000],
  "temperature": 4
}`

type stubConfigManager struct {
	cfg *domain.Config
}

func (m *stubConfigManager) GetConfig() *domain.Config { return m.cfg }
func (m *stubConfigManager) Validate() error           { return nil }

func testConfig(t *testing.T) *domain.Config {
	t.Helper()
	return &domain.Config{
		Server: domain.ServerConfig{
			Host:         "127.0.0.1",
			Port:         0,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  120 * time.Second,
		},
		Cache:   domain.CacheConfig{Enabled: true, Size: 64},
		Logging: domain.LoggingConfig{Level: "error", Format: "text"},
	}
}

func newTestServer(t *testing.T) *Server {
	t.Helper()

	dir := t.TempDir()
	modelPath := filepath.Join(dir, "model.json")
	require.NoError(t, os.WriteFile(modelPath, []byte(testArtifact), 0644))

	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)

	scorer, err := engine.LoadScorer(logger, engine.NewEncoder(), modelPath)
	require.NoError(t, err)

	rules := engine.NewRuleBase(logger, domain.RulesConfig{})
	reasoner, err := engine.NewReasoner(logger, scorer, rules)
	require.NoError(t, err)

	store, err := feedback.NewSQLiteStore(filepath.Join(dir, "feedback.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	server, err := NewServer(&stubConfigManager{cfg: testConfig(t)}, logger, reasoner, store)
	require.NoError(t, err)
	return server
}

func dengueRequestBody() map[string]interface{} {
	return map[string]interface{}{
		"patient_name": "Asha Rao",
		"age":          28,
		"gender":       "Female",
		"fever":        true,
		"cough":        false,
		"headache":     true,
		"fatigue":      false,
		"bp_systolic":  112,
		"spo2":         98,
		"hemoglobin":   12.5,
		"wbc":          4000,
		"platelet":     90000,
	}
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func TestServer_Health(t *testing.T) {
	server := newTestServer(t)

	w := doJSON(t, server.Handler(), http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp["status"])
	assert.Equal(t, "1.0.0-test", resp["model_version"])
}

func TestServer_AssessDengueScenario(t *testing.T) {
	server := newTestServer(t)

	w := doJSON(t, server.Handler(), http.MethodPost, "/api/v1/assess", dengueRequestBody())
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp AssessResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.NotEmpty(t, resp.AssessmentID)
	assert.Equal(t, 28, resp.PatientSummary.Age)
	assert.Equal(t, "Female", resp.PatientSummary.Gender)
	assert.Equal(t, 2, resp.PatientSummary.SymptomCount)

	require.NotNil(t, resp.Result)
	primary, ok := resp.Result.Predictions.Primary()
	require.True(t, ok)
	assert.Equal(t, domain.Dengue, primary.Disease)
	assert.Greater(t, primary.Confidence, 50)
	assert.Empty(t, resp.Result.Explanation.RedFlags)
	assert.Empty(t, resp.Result.Warnings)
	assert.Contains(t, resp.Result.Treatment.Monitoring, "Serial platelet counts to track trend")
	assert.Equal(t, "1.0.0-test", resp.Result.ModelVersion)
}

func TestServer_AssessRequestIDHeader(t *testing.T) {
	server := newTestServer(t)

	w := doJSON(t, server.Handler(), http.MethodGet, "/health", nil)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestServer_AssessInvalidInput(t *testing.T) {
	server := newTestServer(t)

	tests := []struct {
		name   string
		mutate func(body map[string]interface{})
	}{
		{"age out of range", func(b map[string]interface{}) { b["age"] = 150 }},
		{"unknown gender", func(b map[string]interface{}) { b["gender"] = "unknown" }},
		{"missing platelet", func(b map[string]interface{}) { delete(b, "platelet") }},
		{"spo2 out of range", func(b map[string]interface{}) { b["spo2"] = 101 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := dengueRequestBody()
			tt.mutate(body)

			w := doJSON(t, server.Handler(), http.MethodPost, "/api/v1/assess", body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		})
	}
}

func TestServer_AssessMalformedJSON(t *testing.T) {
	server := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/assess", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	server.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestServer_AssessDeterministic(t *testing.T) {
	server := newTestServer(t)

	first := doJSON(t, server.Handler(), http.MethodPost, "/api/v1/assess", dengueRequestBody())
	second := doJSON(t, server.Handler(), http.MethodPost, "/api/v1/assess", dengueRequestBody())
	require.Equal(t, http.StatusOK, first.Code)
	require.Equal(t, http.StatusOK, second.Code)

	var a, b AssessResponse
	require.NoError(t, json.Unmarshal(first.Body.Bytes(), &a))
	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &b))

	// Assessment IDs differ per request; the reasoning result must not.
	assert.NotEqual(t, a.AssessmentID, b.AssessmentID)
	assert.Equal(t, a.Result, b.Result)
}

func TestServer_Report(t *testing.T) {
	server := newTestServer(t)

	w := doJSON(t, server.Handler(), http.MethodPost, "/api/v1/report", dengueRequestBody())
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	reportID, _ := resp["report_id"].(string)
	assert.Contains(t, reportID, "CDSS-")

	content, _ := resp["content"].(string)
	assert.Contains(t, content, "CLINICAL DECISION SUPPORT REPORT")
	assert.Contains(t, content, "Dengue")
	assert.Contains(t, content, "Asha Rao")
}

func TestServer_Diseases(t *testing.T) {
	server := newTestServer(t)

	w := doJSON(t, server.Handler(), http.MethodGet, "/api/v1/diseases", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Diseases []domain.DiseaseInfo `json:"diseases"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Diseases, len(domain.AllDiseases))
	assert.Equal(t, domain.Dengue, resp.Diseases[0].Name)
}

func TestServer_ModelInfo(t *testing.T) {
	server := newTestServer(t)

	w := doJSON(t, server.Handler(), http.MethodGet, "/api/v1/model-info", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var info engine.ModelInfo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &info))
	assert.Equal(t, "1.0.0-test", info.Version)
	assert.Len(t, info.Features, 11)
	assert.Len(t, info.Classes, 5)
}

func TestServer_FeedbackRoundTrip(t *testing.T) {
	server := newTestServer(t)

	submit := map[string]interface{}{
		"assessment_id":       "assess-123",
		"predicted_disease":   "Dengue",
		"confidence":          59,
		"clinician_diagnosis": "Dengue",
		"agreed":              true,
		"notes":               "Confirmed by NS1 antigen test.",
	}
	w := doJSON(t, server.Handler(), http.MethodPost, "/api/v1/feedback", submit)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(t, server.Handler(), http.MethodGet, "/api/v1/feedback/assess-123", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var fb feedback.Feedback
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &fb))
	assert.Equal(t, domain.Dengue, fb.PredictedDisease)
	assert.True(t, fb.Agreed)

	w = doJSON(t, server.Handler(), http.MethodGet, "/api/v1/feedback?limit=10", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var list struct {
		Feedback []*feedback.Feedback `json:"feedback"`
		Total    int64                `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, int64(1), list.Total)
	require.Len(t, list.Feedback, 1)
}

func TestServer_FeedbackValidation(t *testing.T) {
	server := newTestServer(t)

	tests := []struct {
		name string
		body map[string]interface{}
	}{
		{"missing assessment id", map[string]interface{}{
			"predicted_disease": "Dengue", "clinician_diagnosis": "Flu",
		}},
		{"unknown predicted disease", map[string]interface{}{
			"assessment_id": "a-1", "predicted_disease": "Malaria", "clinician_diagnosis": "Flu",
		}},
		{"unknown clinician diagnosis", map[string]interface{}{
			"assessment_id": "a-1", "predicted_disease": "Dengue", "clinician_diagnosis": "Malaria",
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, server.Handler(), http.MethodPost, "/api/v1/feedback", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestServer_FeedbackNotFound(t *testing.T) {
	server := newTestServer(t)

	w := doJSON(t, server.Handler(), http.MethodGet, "/api/v1/feedback/never-submitted", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServer_CORSPreflight(t *testing.T) {
	server := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/assess", nil)
	w := httptest.NewRecorder()
	server.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRecordDigest_IgnoresName(t *testing.T) {
	base := domain.PatientRecord{
		Age: 28, Gender: domain.Female, Fever: true, Headache: true,
		SystolicBP: 112, SpO2: 98, Hemoglobin: 12.5, WBC: 4000, Platelet: 90000,
	}
	named := base
	named.Name = "Asha Rao"

	assert.Equal(t, recordDigest(base), recordDigest(named))

	changed := base
	changed.Platelet = 95000
	assert.NotEqual(t, recordDigest(base), recordDigest(changed))
}

func TestServer_RateLimit(t *testing.T) {
	dir := t.TempDir()
	modelPath := filepath.Join(dir, "model.json")
	require.NoError(t, os.WriteFile(modelPath, []byte(testArtifact), 0644))

	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)

	scorer, err := engine.LoadScorer(logger, engine.NewEncoder(), modelPath)
	require.NoError(t, err)
	rules := engine.NewRuleBase(logger, domain.RulesConfig{})
	reasoner, err := engine.NewReasoner(logger, scorer, rules)
	require.NoError(t, err)
	store, err := feedback.NewSQLiteStore(filepath.Join(dir, "feedback.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	cfg := testConfig(t)
	cfg.RateLimit = domain.RateLimitConfig{RequestsPerSecond: 1, Burst: 2}
	server, err := NewServer(&stubConfigManager{cfg: cfg}, logger, reasoner, store)
	require.NoError(t, err)

	var limited bool
	for i := 0; i < 5; i++ {
		w := doJSON(t, server.Handler(), http.MethodGet, "/health", nil)
		if w.Code == http.StatusTooManyRequests {
			limited = true
			break
		}
		require.Equal(t, http.StatusOK, w.Code, fmt.Sprintf("request %d", i))
	}
	assert.True(t, limited)
}
