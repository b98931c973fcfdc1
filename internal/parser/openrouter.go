package parser

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/fairshare/fairshare/internal/bill"
	"github.com/fairshare/fairshare/internal/models"
)

// systemPrompt instructs the model to emit the bill wire format directly.
// Weights follow the allocation model: only relative magnitude matters.
const systemPrompt = `
You are a receipt parsing engine. Return ONLY raw JSON. No markdown, no explanation.
Input: An image of a receipt and a text description of how to split it.
Goal: Extract items and map them to people based on the text using a 'weight' system.
JSON Schema specific instructions:
1. 'participants': Extract names from the prompt. If none, use generic "Person 1", "Person 2". Use "Me" when referring to the user.
2. 'line_items': Extract all items, qty, price.
3. 'split_entries': For EACH item, create an entry.
   - If prompt says "Alice had 2/3, Bob 1/3", set allocations: [{participant_id: "Alice", weight: 2}, {participant_id: "Bob", weight: 1}].
   - If "Alice and Bob shared", set weights to 1 for both.
   - If unassigned/unknown, leave allocations empty.
4. 'modifiers': Look for Tax on receipt. Look for Tip in receipt or user prompt.
   - Tip type: "percentage" or "fixed". If percentage, the 'value' should be the whole number (e.g., 20 for 20%, not 0.2).
   - If an exact tip amount is shown on the receipt, prefer "fixed" tip type over "percentage".
Output this exact structure:
{
  "meta": { "currency": "string", "notes": "string" },
  "participants": [ { "id": "string", "name": "string" } ],
  "line_items": [ { "id": "string", "description": "string", "quantity": number, "unit_price": number, "total_price": number } ],
  "split_entries": [
    {
      "item_id": "string",
      "method": "explicit" | "equal" | "ratio",
      "allocations": [ { "participant_id": "string", "weight": number } ]
    }
  ],
  "modifiers": {
    "tax": { "source": "receipt" | "user", "type": "fixed" | "percentage", "value": number },
    "tip": { "source": "receipt" | "user", "type": "fixed" | "percentage", "value": number }
  }
}
`

var parsesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "fairshare_receipt_parses_total",
	Help: "Receipt parse attempts by outcome.",
}, []string{"outcome"})

// Client calls the OpenRouter chat-completions API to turn a receipt photo
// plus split instructions into a candidate bill.
type Client struct {
	endpoint string
	model    string
	apiKey   string
	http     *http.Client
	ids      bill.IDGenerator
}

// NewClient builds a client. The id generator fills in ids the model left
// out of the candidate.
func NewClient(endpoint, model, apiKey string, timeout time.Duration, ids bill.IDGenerator) *Client {
	return &Client{
		endpoint: endpoint,
		model:    model,
		apiKey:   apiKey,
		http:     &http.Client{Timeout: timeout},
		ids:      ids,
	}
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// ParseReceipt sends the receipt image (base64 JPEG) and the user's split
// instructions to the model and returns the sanitized bill. The returned
// error wraps ErrInvalidStructure when the model's output fails the shape
// contract; other errors are collaborator failures.
func (c *Client) ParseReceipt(ctx context.Context, imageBase64, instructions string) (*models.Bill, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("openrouter api key is not configured")
	}

	parts := []contentPart{
		{Type: "text", Text: "User Instructions: " + instructions},
	}
	if imageBase64 != "" {
		parts = append(parts, contentPart{
			Type:     "image_url",
			ImageURL: &imageURL{URL: "data:image/jpeg;base64," + imageBase64},
		})
	}

	payload, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: parts},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	slog.Debug("Parsing receipt", "model", c.model, "payload_kb", len(payload)/1024)

	resp, err := c.http.Do(req)
	if err != nil {
		parsesTotal.WithLabelValues("upstream_error").Inc()
		return nil, fmt.Errorf("openrouter request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		parsesTotal.WithLabelValues("upstream_error").Inc()
		return nil, fmt.Errorf("openrouter request failed with status %d", resp.StatusCode)
	}

	var result chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		parsesTotal.WithLabelValues("upstream_error").Inc()
		return nil, fmt.Errorf("failed to decode openrouter response: %w", err)
	}
	if result.Error != nil {
		parsesTotal.WithLabelValues("upstream_error").Inc()
		return nil, fmt.Errorf("openrouter error: %s", result.Error.Message)
	}
	if len(result.Choices) == 0 || result.Choices[0].Message.Content == "" {
		parsesTotal.WithLabelValues("upstream_error").Inc()
		return nil, fmt.Errorf("openrouter returned no content")
	}

	candidate, err := Decode([]byte(stripFences(result.Choices[0].Message.Content)), c.ids)
	if err != nil {
		parsesTotal.WithLabelValues("invalid_structure").Inc()
		return nil, err
	}

	parsesTotal.WithLabelValues("ok").Inc()
	return candidate, nil
}

// stripFences removes markdown code fences some models wrap around JSON.
func stripFences(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}
