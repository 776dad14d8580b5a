package insights

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// GatewayClient speaks the OpenAI-compatible chat-completions protocol against
// a configurable endpoint, forcing a tool call so the model's answer arrives
// as structured JSON instead of prose.
type GatewayClient struct {
	endpoint string
	apiKey   string
	model    string
	http     *http.Client
}

// NewGatewayClient creates a client for the given chat-completions endpoint.
// A zero timeout keeps whatever the default transport provides.
func NewGatewayClient(endpoint, apiKey, model string, timeout time.Duration) *GatewayClient {
	return &GatewayClient{
		endpoint: endpoint,
		apiKey:   apiKey,
		model:    model,
		http:     &http.Client{Timeout: timeout},
	}
}

type (
	chatMessage struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}

	toolFunction struct {
		Name        string          `json:"name"`
		Description string          `json:"description,omitempty"`
		Parameters  json.RawMessage `json:"parameters,omitempty"`
	}

	chatTool struct {
		Type     string       `json:"type"`
		Function toolFunction `json:"function"`
	}

	toolChoice struct {
		Type     string `json:"type"`
		Function struct {
			Name string `json:"name"`
		} `json:"function"`
	}

	chatRequest struct {
		Model      string        `json:"model"`
		Messages   []chatMessage `json:"messages"`
		Tools      []chatTool    `json:"tools"`
		ToolChoice toolChoice    `json:"tool_choice"`
	}

	chatResponse struct {
		Choices []struct {
			Message struct {
				ToolCalls []struct {
					Function struct {
						Arguments string `json:"arguments"`
					} `json:"function"`
				} `json:"tool_calls"`
			} `json:"message"`
		} `json:"choices"`
	}

	insightArgs struct {
		Insights []Insight `json:"insights"`
	}
)

// insightSchema constrains the tool call to exactly the advisory shape: a list
// of {type, title, description} objects with the three-value severity enum.
var insightSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"insights": {
			"type": "array",
			"items": {
				"type": "object",
				"properties": {
					"type": {"type": "string", "enum": ["warning", "success", "info"]},
					"title": {"type": "string"},
					"description": {"type": "string"}
				},
				"required": ["type", "title", "description"],
				"additionalProperties": false
			}
		}
	},
	"required": ["insights"],
	"additionalProperties": false
}`)

// Generate submits the summary and returns exactly three validated insights.
// It is a single blocking request with no retry policy; rate-limit and
// payment-required statuses map to their sentinel errors, everything else to
// a generic failure.
func (c *GatewayClient) Generate(ctx context.Context, sum Summary) ([]Insight, error) {
	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt(sum)},
			{Role: "user", Content: "Give me 3 smart insights about my financial situation."},
		},
		Tools: []chatTool{{
			Type: "function",
			Function: toolFunction{
				Name:        "provide_insights",
				Description: "Provide smart financial insights",
				Parameters:  insightSchema,
			},
		}},
	}
	reqBody.ToolChoice.Type = "function"
	reqBody.ToolChoice.Function.Name = "provide_insights"

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call gateway: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, ErrRateLimited
	case resp.StatusCode == http.StatusPaymentRequired:
		return nil, ErrPaymentRequired
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("gateway status %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(parsed.Choices) == 0 || len(parsed.Choices[0].Message.ToolCalls) == 0 {
		return nil, fmt.Errorf("gateway returned no tool call")
	}

	var args insightArgs
	if err := json.Unmarshal([]byte(parsed.Choices[0].Message.ToolCalls[0].Function.Arguments), &args); err != nil {
		return nil, fmt.Errorf("decode tool arguments: %w", err)
	}
	if err := validateInsights(args.Insights); err != nil {
		return nil, err
	}
	return args.Insights, nil
}

func systemPrompt(sum Summary) string {
	var b bytes.Buffer
	b.WriteString("You are a smart financial advisor. Analyze the following data and provide exactly 3 useful insights.\n\nData:\n")
	fmt.Fprintf(&b, "- Monthly income: %s\n", sum.MonthlyIncome)
	fmt.Fprintf(&b, "- Total expenses: %s\n", sum.TotalExpenses)
	fmt.Fprintf(&b, "- Current month expenses: %s\n", sum.CurrentMonth)
	fmt.Fprintf(&b, "- Previous month expenses: %s\n", sum.PreviousMonth)
	b.WriteString("- Expense breakdown: ")
	for i, ct := range sum.ByCategory {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s=%s", ct.Category, ct.Total)
	}
	b.WriteString("\n\nProvide exactly 3 insights of type warning, success or info.")
	return b.String()
}
