package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"goalspark/internal/app/server"
	"goalspark/internal/platform/config"
)

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error any             `json:"error"`
}

func testConfig(dbURL string) config.Config {
	return config.Config{
		DatabaseURL:        dbURL,
		JWTSecret:          "test-secret",
		FrontendDir:        "frontend/dist",
		Environment:        "test",
		AppName:            "Goal Spark 2.0",
		SeedAdminEmail:     "admin@test.local",
		SeedAdminPassword:  "ChangeMe123!",
		EmailFrom:          "no-reply@test.local",
		RunMigrations:      true,
		RunSeed:            true,
		MaxBodyBytes:       1048576,
		RateLimitPerMinute: 1000,
		TokenTTL:           time.Hour,
		ResetTokenTTL:      time.Hour,
	}
}

func TestGoalTrackingJourney(t *testing.T) {
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	cfg := testConfig(dbURL)
	app, err := server.New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("failed to start app: %v", err)
	}
	defer app.Close()

	ts := httptest.NewServer(app.Router)
	defer ts.Close()

	client := ts.Client()
	adminToken := login(t, client, ts.URL, cfg.SeedAdminEmail, cfg.SeedAdminPassword)
	adminID := currentUserID(t, client, ts.URL, adminToken)

	employeeEmail := fmt.Sprintf("journey-%d@example.com", time.Now().UnixNano())
	employeeID, employeeToken := registerEmployee(t, client, ts.URL, adminID, employeeEmail)

	goalID := createGoal(t, client, ts.URL, adminToken, employeeID)

	goal := recordProgress(t, client, ts.URL, employeeToken, goalID, 40, "on_track", "")
	if pct, _ := goal["progress_percentage"].(float64); pct != 40 {
		t.Fatalf("expected progress percentage 40, got %v", goal["progress_percentage"])
	}

	entryGoal := recordProgress(t, client, ts.URL, employeeToken, goalID, 55, "at_risk", "Pipeline slipped after two deals pushed to next month")
	if status, _ := entryGoal["status"].(string); status != "at_risk" {
		t.Fatalf("expected goal status at_risk, got %v", entryGoal["status"])
	}

	prompt := getJSON(t, client, ts.URL+"/api/v1/goals/"+goalID+"/comment-prompt?status=at_risk", employeeToken)
	var suggestion map[string]any
	if err := json.Unmarshal(prompt.Data, &suggestion); err != nil {
		t.Fatalf("failed to decode prompt response: %v", err)
	}
	if text, _ := suggestion["prompt"].(string); text == "" {
		t.Fatal("expected a non-empty comment prompt")
	}

	history := getJSON(t, client, ts.URL+"/api/v1/goals/"+goalID+"/progress", adminToken)
	var entries []map[string]any
	if err := json.Unmarshal(history.Data, &entries); err != nil {
		t.Fatalf("failed to decode progress history: %v", err)
	}
	if len(entries) < 2 {
		t.Fatalf("expected at least 2 progress entries, got %d", len(entries))
	}

	feed := listActivities(t, client, ts.URL, adminToken)
	if len(feed) < 3 {
		t.Fatalf("expected goal creation, progress and status activities, got %d", len(feed))
	}

	if unread := unreadCount(t, client, ts.URL, adminToken); unread == 0 {
		t.Fatal("expected unread activities before mark-seen")
	}
	postJSON(t, client, ts.URL+"/api/v1/activities/mark-seen", adminToken, map[string]any{})
	if unread := unreadCount(t, client, ts.URL, adminToken); unread != 0 {
		t.Fatalf("expected 0 unread after mark-seen, got %d", unread)
	}

	dashboard := getJSON(t, client, ts.URL+"/api/v1/analytics/dashboard", adminToken)
	var snap map[string]any
	if err := json.Unmarshal(dashboard.Data, &snap); err != nil {
		t.Fatalf("failed to decode dashboard: %v", err)
	}
	overview, _ := snap["team_overview"].(map[string]any)
	if total, _ := overview["total_goals"].(float64); total < 1 {
		t.Fatalf("expected at least one goal in team overview, got %v", overview["total_goals"])
	}

	putJSON(t, client, ts.URL+"/api/v1/team/"+employeeID, adminToken, map[string]any{
		"custom_role": "sales",
	})

	roles := getJSON(t, client, ts.URL+"/api/v1/roles", adminToken)
	var roleList []map[string]any
	if err := json.Unmarshal(roles.Data, &roleList); err != nil {
		t.Fatalf("failed to decode roles: %v", err)
	}
	found := false
	for _, role := range roleList {
		if name, _ := role["name"].(string); name == "sales" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected sales role after member update")
	}

	resp := postJSON(t, client, ts.URL+"/api/v1/goals/assign-by-role?role_name=sales", adminToken, map[string]any{
		"title":        "Close the quarter",
		"description":  "Role-wide push for quarter end",
		"goal_type":    "revenue",
		"comparison":   "greater_than",
		"target_value": 50000,
		"unit":         "USD",
		"cycle_type":   "quarterly",
		"start_date":   "2026-01-01",
		"end_date":     "2026-03-31",
	})
	var assigned map[string]any
	if err := json.Unmarshal(resp.Data, &assigned); err != nil {
		t.Fatalf("failed to decode assign-by-role response: %v", err)
	}
	if count, _ := assigned["assigned_count"].(float64); count < 1 {
		t.Fatalf("expected at least one assignee from role assignment, got %v", assigned["assigned_count"])
	}
}

func TestEmployeeCannotUseManagerRoutes(t *testing.T) {
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	cfg := testConfig(dbURL)
	app, err := server.New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("failed to start app: %v", err)
	}
	defer app.Close()

	ts := httptest.NewServer(app.Router)
	defer ts.Close()

	client := ts.Client()
	adminToken := login(t, client, ts.URL, cfg.SeedAdminEmail, cfg.SeedAdminPassword)
	adminID := currentUserID(t, client, ts.URL, adminToken)

	employeeEmail := fmt.Sprintf("restricted-%d@example.com", time.Now().UnixNano())
	_, employeeToken := registerEmployee(t, client, ts.URL, adminID, employeeEmail)

	postJSONStatus(t, client, ts.URL+"/api/v1/goals", employeeToken, map[string]any{
		"title": "Should be rejected",
	}, http.StatusForbidden)
	getJSONStatus(t, client, ts.URL+"/api/v1/team", employeeToken, http.StatusForbidden)
	getJSONStatus(t, client, ts.URL+"/api/v1/analytics/report.pdf", employeeToken, http.StatusForbidden)
	getJSONStatus(t, client, ts.URL+"/api/v1/goals", "", http.StatusUnauthorized)
}

func login(t *testing.T, client *http.Client, baseURL, email, password string) string {
	t.Helper()
	resp := postJSON(t, client, baseURL+"/api/v1/auth/login", "", map[string]any{
		"email":    email,
		"password": password,
	})
	var payload map[string]any
	if err := json.Unmarshal(resp.Data, &payload); err != nil {
		t.Fatalf("failed to decode login response: %v", err)
	}
	token, _ := payload["token"].(string)
	if token == "" {
		t.Fatal("expected token")
	}
	return token
}

func currentUserID(t *testing.T, client *http.Client, baseURL, token string) string {
	t.Helper()
	resp := getJSON(t, client, baseURL+"/api/v1/auth/me", token)
	var payload map[string]any
	if err := json.Unmarshal(resp.Data, &payload); err != nil {
		t.Fatalf("failed to decode me response: %v", err)
	}
	id, _ := payload["id"].(string)
	if id == "" {
		t.Fatal("expected user id")
	}
	return id
}

func registerEmployee(t *testing.T, client *http.Client, baseURL, managerID, email string) (string, string) {
	t.Helper()
	resp := postJSON(t, client, baseURL+"/api/v1/auth/register", "", map[string]any{
		"email":      email,
		"password":   "Employee123!",
		"first_name": "Journey",
		"last_name":  "Tester",
		"job_title":  "Account Executive",
		"manager_id": managerID,
	})
	var payload map[string]any
	if err := json.Unmarshal(resp.Data, &payload); err != nil {
		t.Fatalf("failed to decode register response: %v", err)
	}
	user, _ := payload["user"].(map[string]any)
	id, _ := user["id"].(string)
	token, _ := payload["token"].(string)
	if id == "" || token == "" {
		t.Fatal("expected employee id and token")
	}
	return id, token
}

func createGoal(t *testing.T, client *http.Client, baseURL, token, assigneeID string) string {
	t.Helper()
	resp := postJSON(t, client, baseURL+"/api/v1/goals", token, map[string]any{
		"title":        "Monthly demos booked",
		"description":  "Book qualified product demos this month",
		"goal_type":    "target",
		"comparison":   "greater_than",
		"target_value": 100,
		"unit":         "demos",
		"cycle_type":   "monthly",
		"start_date":   "2026-01-01",
		"end_date":     "2026-01-31",
		"assigned_to":  []string{assigneeID},
	})
	var payload map[string]any
	if err := json.Unmarshal(resp.Data, &payload); err != nil {
		t.Fatalf("failed to decode goal response: %v", err)
	}
	id, _ := payload["id"].(string)
	if id == "" {
		t.Fatal("expected goal id")
	}
	return id
}

func recordProgress(t *testing.T, client *http.Client, baseURL, token, goalID string, value float64, status, comment string) map[string]any {
	t.Helper()
	resp := postJSON(t, client, baseURL+"/api/v1/goals/"+goalID+"/progress", token, map[string]any{
		"new_value": value,
		"status":    status,
		"comment":   comment,
	})
	var payload map[string]any
	if err := json.Unmarshal(resp.Data, &payload); err != nil {
		t.Fatalf("failed to decode progress response: %v", err)
	}
	goal, _ := payload["goal"].(map[string]any)
	if goal == nil {
		t.Fatal("expected goal in progress response")
	}
	return goal
}

func listActivities(t *testing.T, client *http.Client, baseURL, token string) []map[string]any {
	t.Helper()
	resp := getJSON(t, client, baseURL+"/api/v1/activities", token)
	var payload struct {
		Activities []map[string]any `json:"activities"`
	}
	if err := json.Unmarshal(resp.Data, &payload); err != nil {
		t.Fatalf("failed to decode activities response: %v", err)
	}
	return payload.Activities
}

func unreadCount(t *testing.T, client *http.Client, baseURL, token string) int {
	t.Helper()
	resp := getJSON(t, client, baseURL+"/api/v1/activities/unread-count", token)
	var payload map[string]any
	if err := json.Unmarshal(resp.Data, &payload); err != nil {
		t.Fatalf("failed to decode unread response: %v", err)
	}
	count, _ := payload["unread_count"].(float64)
	return int(count)
}

func postJSON(t *testing.T, client *http.Client, url, token string, body any) envelope {
	t.Helper()
	return doJSON(t, client, http.MethodPost, url, token, body)
}

func putJSON(t *testing.T, client *http.Client, url, token string, body any) envelope {
	t.Helper()
	return doJSON(t, client, http.MethodPut, url, token, body)
}

func doJSON(t *testing.T, client *http.Client, method, url, token string, body any) envelope {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewBuffer(raw)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response: %v", err)
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.StatusCode >= 400 {
		t.Fatalf("unexpected status %d: %s", resp.StatusCode, string(raw))
	}
	return env
}

func getJSON(t *testing.T, client *http.Client, url, token string) envelope {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response: %v", err)
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.StatusCode >= 400 {
		t.Fatalf("unexpected status %d: %s", resp.StatusCode, string(raw))
	}
	return env
}

func postJSONStatus(t *testing.T, client *http.Client, url, token string, body any, want int) {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal body: %v", err)
	}
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewBuffer(raw))
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != want {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("expected status %d, got %d: %s", want, resp.StatusCode, string(body))
	}
}

func getJSONStatus(t *testing.T, client *http.Client, url, token string, want int) {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != want {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("expected status %d, got %d: %s", want, resp.StatusCode, string(body))
	}
}
