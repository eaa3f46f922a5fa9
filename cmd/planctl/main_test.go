package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/rickgao/delivery-planner/internal/api"
	"github.com/rickgao/delivery-planner/internal/model"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCommand()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestDemo(t *testing.T) {
	out, err := execute(t, "demo")
	if err != nil {
		t.Fatalf("demo error = %v\n%s", err, out)
	}
	if !strings.Contains(out, "Route: R1 -> R2 -> C1 -> C2") {
		t.Errorf("demo output missing route:\n%s", out)
	}
	// 18 degrees of latitude at 20 km/h
	if !strings.Contains(out, "Total: 6,004.5 minutes") {
		t.Errorf("demo output missing grouped total:\n%s", out)
	}
}

func TestDemo_Logging(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantLogs bool
	}{
		{name: "quiet by default", args: []string{"demo"}, wantLogs: false},
		{name: "verbose", args: []string{"demo", "--verbose"}, wantLogs: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, tt.args...)
			if err != nil {
				t.Fatalf("demo error = %v\n%s", err, out)
			}
			gotLogs := strings.Contains(out, "plan created") && strings.Contains(out, "level=INFO")
			if gotLogs != tt.wantLogs {
				t.Errorf("planner logs present = %v, want %v:\n%s", gotLogs, tt.wantLogs, out)
			}
			if !tt.wantLogs && strings.Contains(out, "level=") {
				t.Errorf("quiet output contains log lines:\n%s", out)
			}
			if !strings.Contains(out, "Route: R1 -> R2 -> C1 -> C2") {
				t.Errorf("demo output missing route:\n%s", out)
			}
		})
	}
}

const requestYAML = `
agent_id: A7
strategy: heuristic
orders:
  - id: O1
    customer_id: C1
    restaurant_id: R1
customers:
  - id: C1
    name: Alice
    address:
      location: {lat: 0, lon: 0.1}
restaurants:
  - id: R1
    name: Pizza Corner
    address:
      location: {lat: 0, lon: 0}
    avg_prep_minutes: 12
`

func writeRequest(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "request.yaml")
	if err := os.WriteFile(path, []byte(requestYAML), 0o644); err != nil {
		t.Fatalf("write request: %v", err)
	}
	return path
}

func TestPlan_Local(t *testing.T) {
	out, err := execute(t, "plan", "-f", writeRequest(t), "--strategy", "greedy", "--speed", "60")
	if err != nil {
		t.Fatalf("plan error = %v\n%s", err, out)
	}
	if !strings.Contains(out, "Route: R1 -> C1") || !strings.Contains(out, "(greedy)") {
		t.Errorf("plan output:\n%s", out)
	}
	if !strings.Contains(out, "Alice") {
		t.Errorf("plan output missing customer name:\n%s", out)
	}
}

func TestPlan_Errors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{name: "no file", args: []string{"plan"}, wantErr: "request file must be given"},
		{name: "missing file", args: []string{"plan", "-f", "/nonexistent/request.yaml"}, wantErr: "read request file"},
		{name: "zero speed", args: []string{"plan", "-f", writeRequest(t), "--speed", "0"}, wantErr: "speed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestPlan_Server(t *testing.T) {
	var got api.PlanRequest
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/plans" {
			t.Errorf("request = %s %s", r.Method, r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(api.PlanResponse{
			ID:       uuid.New(),
			Strategy: "heuristic",
			Route:    []string{"R1", "C1"},
			Stops: []model.Stop{
				{Kind: model.StopPickup, UserID: "R1", OrderID: "O1", ArrivalMinutes: 12},
				{Kind: model.StopDropoff, UserID: "C1", OrderID: "O1", ArrivalMinutes: 1234.5},
			},
			TotalMinutes: 1234.5,
		})
	}))
	defer ts.Close()

	out, err := execute(t, "plan", "-f", writeRequest(t), "--server", ts.URL)
	if err != nil {
		t.Fatalf("plan error = %v\n%s", err, out)
	}
	if got.AgentID != "A7" || len(got.Orders) != 1 {
		t.Errorf("server received %+v", got)
	}
	if !strings.Contains(out, "Total: 1,234.5 minutes") {
		t.Errorf("plan output:\n%s", out)
	}
}

func TestGet_NotFound(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(api.ErrorResponse{Error: "plan not found", Code: api.CodeNotFound})
	}))
	defer ts.Close()

	_, err := execute(t, "get", uuid.NewString(), "--server", ts.URL)
	if !api.IsNotFound(err) {
		t.Errorf("get error = %v, want not found", err)
	}

	if _, err := execute(t, "get", "not-a-uuid", "--server", ts.URL); err == nil {
		t.Error("expected error for invalid plan id")
	}
}

func TestPrintPlan_Empty(t *testing.T) {
	var buf bytes.Buffer
	printPlan(&buf, &api.PlanResponse{})
	if got, want := buf.String(), "No delivery route could be planned.\n"; got != want {
		t.Errorf("printPlan() = %q, want %q", got, want)
	}
}

func TestServerURL(t *testing.T) {
	t.Setenv("PLANNER_URL", "")
	if got := serverURL(""); got != defaultServer {
		t.Errorf("serverURL() = %q, want %q", got, defaultServer)
	}
	t.Setenv("PLANNER_URL", "http://planner:9000")
	if got := serverURL(""); got != "http://planner:9000" {
		t.Errorf("serverURL() = %q, want env value", got)
	}
	if got := serverURL("http://flag"); got != "http://flag" {
		t.Errorf("serverURL(flag) = %q, want flag value", got)
	}
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil || strings.TrimSpace(out) == "" {
		t.Errorf("version = %q, %v", out, err)
	}
}
