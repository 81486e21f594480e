package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/letitbe-trn/oneroom-app/internal/domain/booking"
)

const unknownIntentMessage = "Sorry, I did not understand your request."

// GeminiConfig configures the Gemini REST client.
type GeminiConfig struct {
	BaseURL       string
	APIKey        string
	Model         string
	ConflictModel string
	Timeout       time.Duration
}

// GeminiAssistantAdapter talks to the Gemini generateContent REST endpoint.
type GeminiAssistantAdapter struct {
	cfg    GeminiConfig
	client *http.Client
	logger *zap.Logger
}

// NewGeminiAssistantAdapter creates a Gemini-backed assistant.
func NewGeminiAssistantAdapter(cfg GeminiConfig, logger *zap.Logger) *GeminiAssistantAdapter {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.ConflictModel == "" {
		cfg.ConflictModel = cfg.Model
	}
	return &GeminiAssistantAdapter{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiSchema struct {
	Type        string                   `json:"type"`
	Description string                   `json:"description,omitempty"`
	Enum        []string                 `json:"enum,omitempty"`
	Properties  map[string]*geminiSchema `json:"properties,omitempty"`
	Required    []string                 `json:"required,omitempty"`
}

type geminiGenerationConfig struct {
	ResponseMIMEType string        `json:"responseMimeType,omitempty"`
	ResponseSchema   *geminiSchema `json:"responseSchema,omitempty"`
}

type geminiRequest struct {
	Contents         []geminiContent         `json:"contents"`
	GenerationConfig *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// intentPayload mirrors the JSON object the model is asked to return.
type intentPayload struct {
	Action      string `json:"action"`
	Name        string `json:"name"`
	CheckIn     string `json:"checkIn"`
	Departure   string `json:"departure"`
	IsRecurring bool   `json:"isRecurring"`
	Message     string `json:"message"`
}

var intentSchema = &geminiSchema{
	Type: "OBJECT",
	Properties: map[string]*geminiSchema{
		"action": {
			Type:        "STRING",
			Enum:        []string{"BOOK", "QUERY", "UNKNOWN"},
			Description: "The action the user wants to perform.",
		},
		"name":        {Type: "STRING"},
		"checkIn":     {Type: "STRING"},
		"departure":   {Type: "STRING"},
		"isRecurring": {Type: "BOOLEAN"},
		"message":     {Type: "STRING"},
	},
	Required: []string{"action", "message"},
}

type promptBooking struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CheckIn   time.Time `json:"checkIn"`
	Departure time.Time `json:"departure"`
	Recurring bool      `json:"recurring"`
}

// Interpret asks the model for a structured intent. Output that is not
// valid JSON degrades to ActionUnknown instead of an error.
func (g *GeminiAssistantAdapter) Interpret(ctx context.Context, prompt string, bookings []*booking.Booking, now time.Time) (*Intent, error) {
	listed := make([]promptBooking, len(bookings))
	for i, b := range bookings {
		listed[i] = promptBooking{
			ID:        b.ID().String(),
			Name:      b.Name(),
			CheckIn:   b.CheckIn(),
			Departure: b.Departure(),
			Recurring: b.IsRecurring(),
		}
	}
	existing, err := json.Marshal(listed)
	if err != nil {
		return nil, err
	}

	text := fmt.Sprintf(`Today is %s. Based on the user's message: %q, determine their intent.
If they want to book the room, extract the name and the start and end times (ISO 8601).
If they use phrases such as "every Monday", "weekly" or "each week", set isRecurring to true.
If they ask about free time, consult the current bookings: %s.
Return the result as JSON.`, now.Format(time.RFC3339), prompt, existing)

	out, err := g.generate(ctx, g.cfg.Model, text, &geminiGenerationConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   intentSchema,
	})
	if err != nil {
		return nil, err
	}

	var payload intentPayload
	if err := json.Unmarshal([]byte(strings.TrimSpace(out)), &payload); err != nil {
		g.logger.Warn("assistant returned unparsable intent", zap.Error(err))
		return &Intent{Action: ActionUnknown, Message: unknownIntentMessage}, nil
	}

	return &Intent{
		Action:      ParseAction(payload.Action),
		Name:        strings.TrimSpace(payload.Name),
		CheckIn:     strings.TrimSpace(payload.CheckIn),
		Departure:   strings.TrimSpace(payload.Departure),
		IsRecurring: payload.IsRecurring,
		Message:     payload.Message,
	}, nil
}

// SummarizeConflicts asks the lighter model for a short warning text.
func (g *GeminiAssistantAdapter) SummarizeConflicts(ctx context.Context, conflicts []booking.Conflict) (string, error) {
	type pair struct {
		First  string    `json:"b1"`
		Second string    `json:"b2"`
		Time   time.Time `json:"time"`
	}
	pairs := make([]pair, len(conflicts))
	for i, c := range conflicts {
		pairs[i] = pair{First: c.First.Name(), Second: c.Second.Name(), Time: c.First.CheckIn()}
	}
	raw, err := json.Marshal(pairs)
	if err != nil {
		return "", err
	}

	text := fmt.Sprintf("I found the following schedule conflicts: %s. Write a short, friendly and professional warning message.", raw)
	out, err := g.generate(ctx, g.cfg.ConflictModel, text, nil)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func (g *GeminiAssistantAdapter) generate(ctx context.Context, model, text string, genCfg *geminiGenerationConfig) (string, error) {
	body, err := json.Marshal(geminiRequest{
		Contents:         []geminiContent{{Role: "user", Parts: []geminiPart{{Text: text}}}},
		GenerationConfig: genCfg,
	})
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", g.cfg.BaseURL, model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.cfg.APIKey)

	start := time.Now()
	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("failed to read gemini response: %w", err)
	}

	g.logger.Debug("gemini call finished",
		zap.String("model", model),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gemini returned status %d: %s", resp.StatusCode, truncate(string(raw), 200))
	}

	var parsed geminiResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("failed to decode gemini response: %w", err)
	}
	if len(parsed.Candidates) == 0 {
		return "", fmt.Errorf("gemini returned no candidates")
	}

	var sb strings.Builder
	for _, p := range parsed.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	return sb.String(), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
