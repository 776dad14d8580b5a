package insights

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"masareef/internal/core"
)

func gatewayResponding(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected auth header %q", got)
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func toolCallBody(t *testing.T, args any) string {
	t.Helper()
	raw, err := json.Marshal(args)
	if err != nil {
		t.Fatal(err)
	}
	resp := map[string]any{
		"choices": []map[string]any{{
			"message": map[string]any{
				"tool_calls": []map[string]any{{
					"function": map[string]any{"arguments": string(raw)},
				}},
			},
		}},
	}
	out, err := json.Marshal(resp)
	if err != nil {
		t.Fatal(err)
	}
	return string(out)
}

func testSummary() Summary {
	return Summary{
		MonthlyIncome: money(500000),
		TotalExpenses: money(345000),
		CurrentMonth:  money(345000),
		PreviousMonth: money(410000),
	}
}

func TestGatewayGenerate(t *testing.T) {
	body := toolCallBody(t, insightArgs{Insights: []Insight{
		{Severity: core.SeverityWarning, Title: "w", Description: "d1"},
		{Severity: core.SeveritySuccess, Title: "s", Description: "d2"},
		{Severity: core.SeverityInfo, Title: "i", Description: "d3"},
	}})
	srv := gatewayResponding(t, http.StatusOK, body)

	c := NewGatewayClient(srv.URL, "test-key", "test-model", 5*time.Second)
	got, err := c.Generate(context.Background(), testSummary())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 3 || got[0].Title != "w" || got[2].Severity != core.SeverityInfo {
		t.Fatalf("unexpected insights: %+v", got)
	}
}

func TestGatewayStatusErrors(t *testing.T) {
	cases := []struct {
		status int
		want   error
	}{
		{http.StatusTooManyRequests, ErrRateLimited},
		{http.StatusPaymentRequired, ErrPaymentRequired},
	}
	for _, tc := range cases {
		srv := gatewayResponding(t, tc.status, `{"error":"nope"}`)
		c := NewGatewayClient(srv.URL, "test-key", "test-model", 5*time.Second)
		_, err := c.Generate(context.Background(), testSummary())
		if !errors.Is(err, tc.want) {
			t.Fatalf("status %d: got %v, want %v", tc.status, err, tc.want)
		}
	}

	srv := gatewayResponding(t, http.StatusInternalServerError, "boom")
	c := NewGatewayClient(srv.URL, "test-key", "test-model", 5*time.Second)
	if _, err := c.Generate(context.Background(), testSummary()); err == nil {
		t.Fatalf("expected error for 500 status")
	}
}

func TestGatewaySchemaViolations(t *testing.T) {
	cases := []struct {
		name string
		body func(t *testing.T) string
	}{
		{"no tool call", func(t *testing.T) string {
			return `{"choices":[{"message":{}}]}`
		}},
		{"empty choices", func(t *testing.T) string {
			return `{"choices":[]}`
		}},
		{"wrong entry count", func(t *testing.T) string {
			return toolCallBody(t, insightArgs{Insights: []Insight{
				{Severity: core.SeverityInfo, Title: "only one", Description: "d"},
			}})
		}},
		{"unknown severity", func(t *testing.T) string {
			return toolCallBody(t, insightArgs{Insights: []Insight{
				{Severity: "critical", Title: "a", Description: "d"},
				{Severity: core.SeveritySuccess, Title: "b", Description: "d"},
				{Severity: core.SeverityInfo, Title: "c", Description: "d"},
			}})
		}},
		{"unparseable arguments", func(t *testing.T) string {
			return `{"choices":[{"message":{"tool_calls":[{"function":{"arguments":"not json"}}]}}]}`
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := gatewayResponding(t, http.StatusOK, tc.body(t))
			c := NewGatewayClient(srv.URL, "test-key", "test-model", 5*time.Second)
			if _, err := c.Generate(context.Background(), testSummary()); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}
