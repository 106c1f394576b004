package tcsactor

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"timetrack-service/internal/service"
)

func TestClientNotConfigured(t *testing.T) {
	c := NewClient("", 5*time.Second)
	if err := c.Start(true, true); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("expected ErrNotConfigured, got %v", err)
	}
}

func TestClientStart(t *testing.T) {
	var got startRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/session/start" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("unexpected content type %s", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	if err := c.Start(true, false); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !got.Headless || got.DryRun {
		t.Errorf("unexpected payload %+v", got)
	}
}

func TestClientFillEntries(t *testing.T) {
	var got fillRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/session/fill" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	entries := []service.TCSEntry{{
		ProjectCode:   "需2025單001",
		AccountGroup:  "A00",
		WorkCategory:  "A07 其它",
		Hours:         4,
		Description:   "開發",
		RequirementNo: "",
		ProgressRate:  0,
	}}

	c := NewClient(srv.URL, 5*time.Second)
	if err := c.FillEntries("20251114", entries); err != nil {
		t.Fatalf("FillEntries: %v", err)
	}
	if got.Date != "20251114" {
		t.Errorf("date = %q, want 20251114", got.Date)
	}
	if len(got.Entries) != 1 || got.Entries[0].ProjectCode != "需2025單001" {
		t.Errorf("unexpected entries %+v", got.Entries)
	}
}

func TestClientScreenshot(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/session/screenshot" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(screenshotResponse{Path: "/tmp/tcs-20251114.png"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	path, err := c.Screenshot()
	if err != nil {
		t.Fatalf("Screenshot: %v", err)
	}
	if path != "/tmp/tcs-20251114.png" {
		t.Errorf("path = %q", path)
	}
}

func TestClientActorError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(ErrorResponse{Error: "browser crashed"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	err := c.Save()
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "browser crashed") {
		t.Errorf("error %q does not carry actor message", err)
	}
}

func TestClientActorErrorUnstructuredBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream timeout"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	err := c.Close()
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "502") || !strings.Contains(err.Error(), "upstream timeout") {
		t.Errorf("error %q does not carry status and body", err)
	}
}
