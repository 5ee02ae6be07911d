package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

const (
	anthropicAPI     = "https://api.anthropic.com/v1/messages"
	anthropicVersion = "2023-06-01"

	defaultModel     = "claude-sonnet-4-20250514"
	defaultMaxTokens = 2048
)

// updateMemoryTool is the one tool exposed to routing calls. The closed enum
// keeps the model from inventing update types.
var updateMemoryTool = toolDef{
	Name:        "UpdateMemory",
	Description: "Decide which kind of long-term memory to update based on the conversation.",
	InputSchema: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"update_type": map[string]any{
				"type": "string",
				"enum": []string{"annotated_resume", "application", "document", "instructions", "active_application"},
			},
		},
		"required": []string{"update_type"},
	},
}

// Anthropic calls the Anthropic messages API over plain HTTP.
type Anthropic struct {
	apiKey     string
	model      string
	maxTokens  int
	baseURL    string
	httpClient *http.Client
}

// AnthropicOption customizes the client.
type AnthropicOption func(*Anthropic)

// WithModel overrides the default model id.
func WithModel(model string) AnthropicOption {
	return func(a *Anthropic) {
		if model != "" {
			a.model = model
		}
	}
}

// WithBaseURL points the client at an alternate endpoint (primarily for
// tests).
func WithBaseURL(url string) AnthropicOption {
	return func(a *Anthropic) {
		if url != "" {
			a.baseURL = url
		}
	}
}

// WithHTTPClient injects a custom HTTP client (primarily for tests).
func WithHTTPClient(client *http.Client) AnthropicOption {
	return func(a *Anthropic) {
		if client != nil {
			a.httpClient = client
		}
	}
}

// NewAnthropic creates a client from the ANTHROPIC_API_KEY environment
// variable.
func NewAnthropic(opts ...AnthropicOption) (*Anthropic, error) {
	apiKey := os.Getenv("ANTHROPIC_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("llm: ANTHROPIC_API_KEY environment variable not set")
	}
	client := &Anthropic{
		apiKey:     apiKey,
		model:      defaultModel,
		maxTokens:  defaultMaxTokens,
		baseURL:    anthropicAPI,
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

type toolDef struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	InputSchema map[string]any `json:"input_schema"`
}

type toolChoice struct {
	Type string `json:"type"`
	Name string `json:"name,omitempty"`
}

type apiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type apiRequest struct {
	Model      string       `json:"model"`
	MaxTokens  int          `json:"max_tokens"`
	System     string       `json:"system,omitempty"`
	Messages   []apiMessage `json:"messages"`
	Tools      []toolDef    `json:"tools,omitempty"`
	ToolChoice *toolChoice  `json:"tool_choice,omitempty"`
}

type apiContentBlock struct {
	Type  string          `json:"type"`
	Text  string          `json:"text,omitempty"`
	Name  string          `json:"name,omitempty"`
	Input json.RawMessage `json:"input,omitempty"`
}

type apiResponse struct {
	Content []apiContentBlock `json:"content"`
	Error   *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Complete produces a free-form assistant reply.
func (a *Anthropic) Complete(ctx context.Context, system string, msgs []Message) (Message, error) {
	resp, err := a.call(ctx, apiRequest{
		Model:     a.model,
		MaxTokens: a.maxTokens,
		System:    system,
		Messages:  toAPIMessages(msgs),
	})
	if err != nil {
		return Message{}, err
	}
	return Message{Role: RoleAssistant, Content: textContent(resp)}, nil
}

// Decide exposes the UpdateMemory tool and returns the reply text plus the
// tool invocation, if any. Multiple tool blocks in one response are a protocol
// violation and reported as an error rather than picking one silently.
func (a *Anthropic) Decide(ctx context.Context, system string, msgs []Message) (Decision, error) {
	resp, err := a.call(ctx, apiRequest{
		Model:     a.model,
		MaxTokens: a.maxTokens,
		System:    system,
		Messages:  toAPIMessages(msgs),
		Tools:     []toolDef{updateMemoryTool},
	})
	if err != nil {
		return Decision{}, err
	}
	decision := Decision{Reply: textContent(resp)}
	for _, block := range resp.Content {
		if block.Type != "tool_use" {
			continue
		}
		if decision.Action != nil {
			return Decision{}, fmt.Errorf("llm: model emitted more than one action in a single turn")
		}
		var action UpdateAction
		if err := json.Unmarshal(block.Input, &action); err != nil {
			return Decision{}, fmt.Errorf("llm: decode %s input: %w", block.Name, err)
		}
		decision.Action = &action
	}
	return decision, nil
}

// CompleteStructured asks for a single JSON object and decodes it into out.
// The prompt names the target schema; fenced code blocks around the JSON are
// tolerated.
func (a *Anthropic) CompleteStructured(ctx context.Context, system string, msgs []Message, name string, out any) error {
	directive := fmt.Sprintf("Respond with a single JSON object matching the %s schema. Return ONLY the JSON, no other text.", name)
	resp, err := a.call(ctx, apiRequest{
		Model:     a.model,
		MaxTokens: a.maxTokens,
		System:    system + "\n\n" + directive,
		Messages:  toAPIMessages(msgs),
	})
	if err != nil {
		return err
	}
	raw := stripFences(textContent(resp))
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return fmt.Errorf("llm: parse %s output: %w (response: %s)", name, err, raw)
	}
	return nil
}

func (a *Anthropic) call(ctx context.Context, reqBody apiRequest) (apiResponse, error) {
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return apiResponse{}, fmt.Errorf("llm: marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL, bytes.NewReader(jsonBody))
	if err != nil {
		return apiResponse{}, fmt.Errorf("llm: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", a.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return apiResponse{}, fmt.Errorf("llm: http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return apiResponse{}, fmt.Errorf("llm: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return apiResponse{}, fmt.Errorf("llm: api error (status %d): %s", resp.StatusCode, string(body))
	}
	var parsed apiResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return apiResponse{}, fmt.Errorf("llm: unmarshal response: %w", err)
	}
	if parsed.Error != nil {
		return apiResponse{}, fmt.Errorf("llm: api error: %s", parsed.Error.Message)
	}
	if len(parsed.Content) == 0 {
		return apiResponse{}, fmt.Errorf("llm: empty response")
	}
	return parsed, nil
}

func toAPIMessages(msgs []Message) []apiMessage {
	out := make([]apiMessage, 0, len(msgs))
	for _, msg := range msgs {
		role := string(msg.Role)
		content := msg.Content
		switch msg.Role {
		case RoleTool:
			// The messages API has no tool role for plain text; replay
			// confirmations as user-visible context instead.
			role = "user"
			content = "[memory update] " + content
		case RoleUser, RoleAssistant:
		default:
			role = "user"
		}
		out = append(out, apiMessage{Role: role, Content: content})
	}
	return out
}

func textContent(resp apiResponse) string {
	var parts []string
	for _, block := range resp.Content {
		if block.Type == "text" && block.Text != "" {
			parts = append(parts, block.Text)
		}
	}
	return strings.Join(parts, "\n")
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
