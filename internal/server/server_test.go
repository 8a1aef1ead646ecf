package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/ppiankov/veracity/internal/model"
)

type stubChecker struct {
	calls  []string
	record model.FactCheckRecord
}

func (s *stubChecker) Check(_ context.Context, statement string) model.FactCheckRecord {
	s.calls = append(s.calls, statement)
	s.record.Statement = statement
	return s.record
}

func newTestServer(checker *stubChecker) *echo.Echo {
	e := echo.New()
	New(checker, nil).Routes(e)
	return e
}

func TestHandleCheck_Success(t *testing.T) {
	checker := &stubChecker{record: model.FactCheckRecord{
		Result:      "True",
		Explanation: "Confirmed.\n\nSources:\nhttps://example.com/a",
	}}
	e := newTestServer(checker)

	req := httptest.NewRequest(http.MethodPost, "/check", strings.NewReader(`{"statement": "  the sky is blue  "}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var record model.FactCheckRecord
	if err := json.Unmarshal(rec.Body.Bytes(), &record); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if record.Statement != "the sky is blue" {
		t.Errorf("Expected trimmed statement, got %q", record.Statement)
	}
	if record.Result != "True" {
		t.Errorf("Expected result True, got %q", record.Result)
	}

	if len(checker.calls) != 1 || checker.calls[0] != "the sky is blue" {
		t.Errorf("Expected one check with trimmed statement, got %v", checker.calls)
	}
}

func TestHandleCheck_EmptyStatement(t *testing.T) {
	checker := &stubChecker{}
	e := newTestServer(checker)

	for _, body := range []string{`{"statement": ""}`, `{"statement": "   "}`, `{}`} {
		req := httptest.NewRequest(http.MethodPost, "/check", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()

		e.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("Body %s: expected 400, got %d", body, rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "Statement cannot be empty") {
			t.Errorf("Body %s: unexpected error payload: %s", body, rec.Body.String())
		}
	}

	if len(checker.calls) != 0 {
		t.Errorf("Expected no pipeline work for empty statements, got %v", checker.calls)
	}
}

func TestHandleCheck_InvalidBody(t *testing.T) {
	e := newTestServer(&stubChecker{})

	req := httptest.NewRequest(http.MethodPost, "/check", strings.NewReader(`not json`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for invalid body, got %d", rec.Code)
	}
}

func TestHandleHealth(t *testing.T) {
	e := newTestServer(&stubChecker{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "healthy") {
		t.Errorf("Unexpected body: %s", rec.Body.String())
	}
}
