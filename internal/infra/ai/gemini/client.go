// Package gemini talks to the Gemini API directly with a response schema,
// as an alternative to the OpenAI-compatible gateway.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/playground/bountyhub/internal/domain/ai"
	"github.com/playground/bountyhub/internal/domain/bounty"
	"github.com/playground/bountyhub/internal/infra/ai/prompt"
)

const defaultModel = "gemini-2.5-flash"

type Client struct {
	client *genai.Client
	model  string
}

// NewClient creates a Gemini-backed analyzer client.
func NewClient(ctx context.Context, apiKey, model string, timeout time.Duration) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if model == "" {
		model = defaultModel
	}
	// the gateway uses "google/<model>"; the direct API does not
	model = strings.TrimPrefix(model, "google/")

	cc := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if timeout > 0 {
		cc.HTTPClient = &http.Client{Timeout: timeout}
	}
	return newClient(ctx, cc, model)
}

func newClient(ctx context.Context, cc *genai.ClientConfig, model string) (*Client, error) {
	c, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &Client{client: c, model: model}, nil
}

func (c *Client) AnalyzeBounty(ctx context.Context, draft bounty.Draft) ([]byte, error) {
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(prompt.GetSystemPrompt(), genai.RoleUser),
		ResponseMIMEType:  "application/json",
		ResponseSchema:    responseSchema(),
	}
	contents := []*genai.Content{
		genai.NewContentFromText(prompt.GetUserPrompt(draft), genai.RoleUser),
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, cfg)
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			return nil, ai.Classify(apiErr.Code, err)
		}
		return nil, ai.Classify(0, err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return nil, ai.Malformed(errors.New("empty response"))
	}
	return []byte(text), nil
}

func responseSchema() *genai.Schema {
	str := &genai.Schema{Type: genai.TypeString}
	num := &genai.Schema{Type: genai.TypeNumber}
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"completeness_score": num,
			"clarity_score":      num,
			"scopability_score":  num,
			"verdict": {
				Type: genai.TypeString,
				Enum: []string{string(bounty.VerdictReady), string(bounty.VerdictNeedsWork), string(bounty.VerdictInsufficient)},
			},
			"summary":   str,
			"strengths": {Type: genai.TypeArray, Items: str},
			"missing_info": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"field":    str,
						"question": str,
						"priority": {
							Type: genai.TypeString,
							Enum: []string{string(bounty.PriorityCritical), string(bounty.PriorityImportant), string(bounty.PriorityNiceToHave)},
						},
					},
					Required: []string{"field", "question", "priority"},
				},
			},
			"suggestions": {Type: genai.TypeArray, Items: str},
		},
		Required: prompt.RequiredFields(),
	}
}
