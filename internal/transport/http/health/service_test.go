package health

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	platformtesting "civic-eye-server-go/internal/platform/testing"
	httptransport "civic-eye-server-go/internal/transport/http"
)

func TestHealthEndpoint(t *testing.T) {
	cfg := platformtesting.SetupTestConfig(t)
	logger := platformtesting.SetupTestLogger(t)

	router, err := httptransport.Build(httptransport.Options{
		Config:     cfg,
		Logger:     logger,
		StaticRoot: t.TempDir(),
	})
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	if err := NewService(logger).Register(context.Background(), router.Engine); err != nil {
		t.Fatalf("Register error: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.Engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, expected 200", rec.Code)
	}

	var envelope httptransport.APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	data, ok := envelope.Data.(map[string]any)
	if !ok {
		t.Fatalf("unexpected data payload: %T", envelope.Data)
	}
	if data["status"] != "healthy" {
		t.Errorf("status = %v, expected healthy", data["status"])
	}
	if _, ok := data["goroutines"].(float64); !ok {
		t.Errorf("goroutines missing: %v", data["goroutines"])
	}
}
