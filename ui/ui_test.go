package ui

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"viradsbench/app"
	"viradsbench/domain/analysis"
	"viradsbench/domain/core"
	"viradsbench/domain/study"
	"viradsbench/internal/testkit"
	"viradsbench/ports"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestService(t *testing.T) (*app.AnalysisService, ports.ReaderRepository) {
	t.Helper()
	readers := testkit.NewInMemoryReaderRepository()
	evaluations := testkit.NewInMemoryEvaluationRepository()
	cases, err := app.SeedSyntheticCohort(context.Background(), readers, evaluations)
	if err != nil {
		t.Fatalf("seed cohort: %v", err)
	}
	return app.NewAnalysisService(readers, evaluations, cases), readers
}

func newTestServer(t *testing.T) (*Server, ports.ReaderRepository) {
	t.Helper()
	service, readers := newTestService(t)
	return NewServer(service, readers), readers
}

func doRequest(t *testing.T, handler http.Handler, method, target string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	server, _ := newTestServer(t)
	rec := doRequest(t, server.Handler(), http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAnalysisEndpoint(t *testing.T) {
	server, _ := newTestServer(t)

	rec := doRequest(t, server.Handler(), http.MethodGet, "/api/analysis?cutoff=3&prevalence=0.4&partial=50", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var group analysis.GroupSummary
	if err := json.Unmarshal(rec.Body.Bytes(), &group); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if group.ReaderCount == 0 {
		t.Error("expected at least one reader with data")
	}
	if group.Params.Prevalence != 0.4 {
		t.Errorf("expected prevalence 0.4, got %g", group.Params.Prevalence)
	}
	if group.AverageAUC <= 0.5 {
		t.Errorf("expected informative cohort AUC above 0.5, got %g", group.AverageAUC)
	}
}

func TestAnalysisRejectsInvalidParams(t *testing.T) {
	server, _ := newTestServer(t)

	for _, target := range []string{
		"/api/analysis?cutoff=9",
		"/api/analysis?prevalence=1.5",
		"/api/analysis?partial=0",
		"/api/analysis?cutoff=abc",
	} {
		rec := doRequest(t, server.Handler(), http.MethodGet, target, nil)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", target, rec.Code)
		}
	}
}

func TestTimingEndpoint(t *testing.T) {
	server, _ := newTestServer(t)
	rec := doRequest(t, server.Handler(), http.MethodGet, "/api/timing", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var timing analysis.TimingSummary
	if err := json.Unmarshal(rec.Body.Bytes(), &timing); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(timing.Readers) == 0 {
		t.Error("expected per-reader timing rows")
	}
}

// Two readers with identical per-case times drive the paired t-test
// into its zero-variance sentinel; the endpoint must still deliver the
// full payload with the infinite statistic rendered as a string.
func TestTimingEndpointZeroVariancePair(t *testing.T) {
	ctx := context.Background()
	readers := testkit.NewInMemoryReaderRepository()
	evaluations := testkit.NewInMemoryEvaluationRepository()
	cases := []study.Case{
		{CaseNumber: 1, Pathology: study.StageTa},
		{CaseNumber: 2, Pathology: study.StageT2},
		{CaseNumber: 3, Pathology: study.StageT3},
	}

	for i, experience := range []study.ExperienceLevel{study.ExperienceResident, study.ExperienceAttending} {
		reader := study.Reader{
			ID:         core.ReaderID(fmt.Sprintf("r%d", i+1)),
			Name:       fmt.Sprintf("Reader %d", i+1),
			Experience: experience,
			CreatedAt:  core.Now(),
		}
		if err := readers.Create(ctx, &reader); err != nil {
			t.Fatalf("create reader: %v", err)
		}
		for _, c := range cases {
			ev := study.Evaluation{
				ReaderID:    reader.ID,
				CaseNumber:  c.CaseNumber,
				VIRADS:      study.SubScore{Score: 4, Confidence: 4},
				ReadingTime: time.Duration(c.CaseNumber) * time.Minute,
			}
			if err := evaluations.Upsert(ctx, &ev); err != nil {
				t.Fatalf("upsert evaluation: %v", err)
			}
		}
	}
	server := NewServer(app.NewAnalysisService(readers, evaluations, cases), readers)

	rec := doRequest(t, server.Handler(), http.MethodGet, "/api/timing", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Body.Len() == 0 {
		t.Fatal("expected a response body")
	}

	var payload struct {
		Readers          []analysis.ReaderTiming `json:"readers"`
		PairedReaderTest *struct {
			Statistic json.RawMessage `json:"statistic"`
			PValue    float64         `json:"p_value"`
		} `json:"paired_reader_test"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(payload.Readers) != 2 {
		t.Fatalf("expected 2 timing rows, got %d", len(payload.Readers))
	}
	if payload.PairedReaderTest == nil {
		t.Fatal("expected a paired reader test over the common cases")
	}
	if got := string(payload.PairedReaderTest.Statistic); got != `"+Inf"` {
		t.Errorf("expected statistic %q, got %s", "+Inf", got)
	}
	if payload.PairedReaderTest.PValue != 0 {
		t.Errorf("expected p-value 0, got %g", payload.PairedReaderTest.PValue)
	}
}

func TestRecordEvaluationValidation(t *testing.T) {
	server, readers := newTestServer(t)

	existing, err := readers.List(context.Background())
	if err != nil || len(existing) == 0 {
		t.Fatalf("listing seeded readers: %v", err)
	}

	body := []byte(`{"reader_id":"` + existing[0].ID.String() + `","case_number":9999,"virads":{"score":4,"confidence":5},"reading_seconds":60}`)
	rec := doRequest(t, server.Handler(), http.MethodPost, "/api/evaluations", body)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unknown case: expected 400, got %d", rec.Code)
	}

	body = []byte(`{"reader_id":"` + existing[0].ID.String() + `","case_number":1,"virads":{"score":4,"confidence":5},"reading_seconds":60}`)
	rec = doRequest(t, server.Handler(), http.MethodPost, "/api/evaluations", body)
	if rec.Code != http.StatusCreated {
		t.Errorf("valid evaluation: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestReaderEvaluationsEndpoint(t *testing.T) {
	server, readers := newTestServer(t)

	existing, err := readers.List(context.Background())
	if err != nil || len(existing) == 0 {
		t.Fatalf("listing seeded readers: %v", err)
	}

	rec := doRequest(t, server.Handler(), http.MethodGet, "/api/readers/"+existing[0].ID.String()+"/evaluations", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var payload struct {
		ReaderID    string             `json:"reader_id"`
		Evaluations []study.Evaluation `json:"evaluations"`
		Count       int                `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.ReaderID != existing[0].ID.String() {
		t.Errorf("expected reader id %s, got %s", existing[0].ID, payload.ReaderID)
	}
	if payload.Count == 0 || len(payload.Evaluations) != payload.Count {
		t.Errorf("expected a consistent non-empty evaluation list, got count %d with %d rows", payload.Count, len(payload.Evaluations))
	}
	for i := 1; i < len(payload.Evaluations); i++ {
		if payload.Evaluations[i-1].CaseNumber >= payload.Evaluations[i].CaseNumber {
			t.Errorf("evaluations not sorted by case number at index %d", i)
		}
	}

	rec = doRequest(t, server.Handler(), http.MethodGet, "/api/readers/missing-id/evaluations", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown reader, got %d", rec.Code)
	}
}

func TestCreateAndFetchReader(t *testing.T) {
	server, _ := newTestServer(t)

	body := []byte(`{"name":"Reader X","experience":"attending"}`)
	rec := doRequest(t, server.Handler(), http.MethodPost, "/api/readers", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var created struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	rec = doRequest(t, server.Handler(), http.MethodGet, "/api/readers/"+created.ID, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 fetching created reader, got %d", rec.Code)
	}

	rec = doRequest(t, server.Handler(), http.MethodGet, "/api/readers/missing-id", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown reader, got %d", rec.Code)
	}
}

func TestReportAppRendersSummary(t *testing.T) {
	service, _ := newTestService(t)
	report := NewReportApp(service)

	rec := doRequest(t, report.Handler(), http.MethodGet, "/", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Reading Study Summary") {
		t.Error("expected rendered report title")
	}
	if !strings.Contains(rec.Header().Get("Content-Type"), "text/html") {
		t.Errorf("expected HTML content type, got %q", rec.Header().Get("Content-Type"))
	}

	rec = doRequest(t, report.Handler(), http.MethodGet, "/report.md", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "# Reading Study Summary") {
		t.Error("expected raw markdown report")
	}
}
