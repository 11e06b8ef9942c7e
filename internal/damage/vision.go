package damage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/tiptop-app/inference-service/internal/models"
)

// VisionEstimator prices the findings by sending the annotated image
// and a detection summary to a multimodal chat-completions endpoint.
// Any transport or validation failure makes the estimate unavailable
// and the caller falls back to the heuristic.
type VisionEstimator struct {
	apiKey  string
	baseURL string
	model   string
	http    *http.Client
}

func NewVisionEstimator(apiKey, baseURL, model string) *VisionEstimator {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	if model == "" {
		model = "gpt-4o"
	}
	return &VisionEstimator{
		apiKey:  apiKey,
		baseURL: baseURL,
		model:   model,
		http:    &http.Client{Timeout: 2 * time.Minute},
	}
}

// Available reports whether a credential is configured at all.
func (e *VisionEstimator) Available() bool {
	return e != nil && e.apiKey != ""
}

type chatMessage struct {
	Role    string        `json:"role"`
	Content []chatContent `json:"content"`
}

type chatContent struct {
	Type     string        `json:"type"`
	Text     string        `json:"text,omitempty"`
	ImageURL *chatImageURL `json:"image_url,omitempty"`
}

type chatImageURL struct {
	URL string `json:"url"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

const costPromptTemplate = `You are an experienced roofing contractor. Analyze this roof damage image with detection annotations.

Detected damage areas: %d
Total affected area: %.2f%% of image
Image dimensions: %dx%d pixels

Provide a realistic repair cost estimate for this roof damage including:
1. Labor costs (hourly rate x estimated hours)
2. Materials costs (shingles, underlayment, nails, etc.)
3. Disposal/dump fees for old materials
4. Contingency buffer (10-15%%)

Respond ONLY with valid JSON in this exact format:
{
  "labor_usd": <number>,
  "materials_usd": <number>,
  "disposal_usd": <number>,
  "contingency_usd": <number>,
  "total_usd": <number>,
  "assumptions": "<brief explanation of your estimate>"
}`

// Estimate returns nil on any failure; it never mixes with the
// heuristic for the same request.
func (e *VisionEstimator) Estimate(ctx context.Context, annotatedB64 string, detections []models.DamageDetection, imgWidth, imgHeight int) (*models.CostEstimate, error) {
	if !e.Available() {
		return nil, fmt.Errorf("no vision credential configured")
	}

	totalAreaPct := 0.0
	for _, d := range detections {
		totalAreaPct += d.AffectedAreaPct
	}

	prompt := fmt.Sprintf(costPromptTemplate, len(detections), totalAreaPct, imgWidth, imgHeight)

	reqBody := chatRequest{
		Model: e.model,
		Messages: []chatMessage{
			{
				Role: "user",
				Content: []chatContent{
					{Type: "text", Text: prompt},
					{
						Type:     "image_url",
						ImageURL: &chatImageURL{URL: "data:image/png;base64," + annotatedB64},
					},
				},
			},
		},
		MaxTokens:   500,
		Temperature: 0.3,
	}

	data, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", e.baseURL+"/chat/completions", bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+e.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("vision request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("vision endpoint status %d: %s", resp.StatusCode, string(body))
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(chatResp.Choices) == 0 {
		return nil, fmt.Errorf("vision endpoint returned no choices")
	}

	content := stripCodeFences(chatResp.Choices[0].Message.Content)
	log.Printf("vision cost response: %.200s", content)

	estimate, err := parseCostJSON(content)
	if err != nil {
		return nil, err
	}
	return estimate, nil
}

// stripCodeFences removes surrounding markdown fences if the model
// wrapped its JSON in them.
func stripCodeFences(content string) string {
	if strings.Contains(content, "```json") {
		parts := strings.SplitN(content, "```json", 2)
		content = strings.SplitN(parts[1], "```", 2)[0]
	} else if strings.Contains(content, "```") {
		parts := strings.SplitN(content, "```", 3)
		if len(parts) >= 2 {
			content = parts[1]
		}
	}
	return strings.TrimSpace(content)
}

// parseCostJSON validates that all six required fields are present
// before accepting the estimate.
func parseCostJSON(content string) (*models.CostEstimate, error) {
	var fields struct {
		LaborUSD       *float64 `json:"labor_usd"`
		MaterialsUSD   *float64 `json:"materials_usd"`
		DisposalUSD    *float64 `json:"disposal_usd"`
		ContingencyUSD *float64 `json:"contingency_usd"`
		TotalUSD       *float64 `json:"total_usd"`
		Assumptions    *string  `json:"assumptions"`
	}
	if err := json.Unmarshal([]byte(content), &fields); err != nil {
		return nil, fmt.Errorf("parse cost JSON: %w", err)
	}
	if fields.LaborUSD == nil || fields.MaterialsUSD == nil || fields.DisposalUSD == nil ||
		fields.ContingencyUSD == nil || fields.TotalUSD == nil || fields.Assumptions == nil {
		return nil, fmt.Errorf("cost response missing required fields")
	}
	return &models.CostEstimate{
		LaborUSD:       *fields.LaborUSD,
		MaterialsUSD:   *fields.MaterialsUSD,
		DisposalUSD:    *fields.DisposalUSD,
		ContingencyUSD: *fields.ContingencyUSD,
		TotalUSD:       *fields.TotalUSD,
		Assumptions:    *fields.Assumptions,
	}, nil
}
