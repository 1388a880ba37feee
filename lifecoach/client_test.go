package lifecoach

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goodkarma/goodkarma/config"
)

func testClient(baseURL string) *Client {
	return New(config.AppConfig{
		LifeCoachBaseURL: baseURL,
		LifeCoachAPIKey:  "test-key",
		LifeCoachAPIHost: "coach.test",
	})
}

func TestGetLifeAdvice(t *testing.T) {
	var gotPath, gotKey, gotHost string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("X-RapidAPI-Key")
		gotHost = r.Header.Get("X-RapidAPI-Host")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status": "success",
			"result": map[string]any{"summary": "keep going"},
		})
	}))
	defer srv.Close()

	out, err := testClient(srv.URL).GetLifeAdvice(context.Background(), map[string]any{"lang": "en"})
	if err != nil {
		t.Fatalf("GetLifeAdvice: %v", err)
	}
	if gotPath != "/getLifeAdvice" {
		t.Errorf("path = %s", gotPath)
	}
	if gotKey != "test-key" || gotHost != "coach.test" {
		t.Errorf("headers = %s / %s", gotKey, gotHost)
	}
	if gotBody["lang"] != "en" {
		t.Errorf("request body = %v", gotBody)
	}
	if out["status"] != "success" {
		t.Errorf("response = %v", out)
	}
}

func TestUpdateProgressPath(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewEncoder(w).Encode(map[string]any{"status": "success", "result": map[string]any{}})
	}))
	defer srv.Close()

	if _, err := testClient(srv.URL).UpdateProgress(context.Background(), map[string]any{}); err != nil {
		t.Fatalf("UpdateProgress: %v", err)
	}
	if gotPath != "/updateProgress" {
		t.Errorf("path = %s", gotPath)
	}
}

func TestQueuedStatusIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"status": "queued", "id": "job-1"})
	}))
	defer srv.Close()

	if _, err := testClient(srv.URL).GetLifeAdvice(context.Background(), map[string]any{}); err == nil {
		t.Error("queued response should surface as an error")
	}
}

func TestHTTPErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer srv.Close()

	if _, err := testClient(srv.URL).GetLifeAdvice(context.Background(), map[string]any{}); err == nil {
		t.Error("5xx response should surface as an error")
	}
}

func TestErrorStatusBodyPassesThrough(t *testing.T) {
	// Service-level errors come back with HTTP 200 and are the caller's to
	// interpret.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"status": "error", "message": "bad profile"})
	}))
	defer srv.Close()

	out, err := testClient(srv.URL).GetLifeAdvice(context.Background(), map[string]any{})
	if err != nil {
		t.Fatalf("GetLifeAdvice: %v", err)
	}
	if out["status"] != "error" || out["message"] != "bad profile" {
		t.Errorf("response = %v", out)
	}
}
