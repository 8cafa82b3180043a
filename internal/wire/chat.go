// Package wire defines the JSON envelope types for the chat-completions
// HTTP contract: requests, non-streaming responses, and SSE streaming
// chunks. Field names and shapes follow the de-facto chat-completions
// convention so the server is indistinguishable on the wire from a real
// upstream.
package wire

import "encoding/json"

// Message is one entry in a chat completion request's messages array.
// Content is left as json.RawMessage because the contract allows either a
// plain string or a structured array of content parts. ContentString turns
// non-string values into their JSON text; the static engine's match text,
// a script's parsed.messages and the interactive pending view all use that
// string form, while a script's request field keeps the raw value.
type Message struct {
	Role    string          `json:"role"`
	Content json.RawMessage `json:"content"`
	Name    string          `json:"name,omitempty"`
}

// ContentString returns the message content as a string, JSON-serializing
// it first if it was not already a JSON string literal.
func (m Message) ContentString() string {
	var s string
	if err := json.Unmarshal(m.Content, &s); err == nil {
		return s
	}
	return string(m.Content)
}

// ChatCompletionRequest is the inbound POST /v1/chat/completions body.
// Extra carries any fields not named explicitly, preserved verbatim so a
// script handler can see exactly what the client sent.
type ChatCompletionRequest struct {
	Model       string          `json:"model"`
	Messages    []Message       `json:"messages"`
	Stream      bool            `json:"stream,omitempty"`
	Temperature *float64        `json:"temperature,omitempty"`
	TopP        *float64        `json:"top_p,omitempty"`
	MaxTokens   *int            `json:"max_tokens,omitempty"`
	Stop        json.RawMessage `json:"stop,omitempty"`
	Extra       map[string]any  `json:"-"`
}

// UnmarshalJSON decodes the known fields and stashes everything else into
// Extra, so script handlers receive the request's extra fields verbatim.
func (r *ChatCompletionRequest) UnmarshalJSON(data []byte) error {
	type known struct {
		Model       string          `json:"model"`
		Messages    []Message       `json:"messages"`
		Stream      bool            `json:"stream,omitempty"`
		Temperature *float64        `json:"temperature,omitempty"`
		TopP        *float64        `json:"top_p,omitempty"`
		MaxTokens   *int            `json:"max_tokens,omitempty"`
		Stop        json.RawMessage `json:"stop,omitempty"`
	}
	var k known
	if err := json.Unmarshal(data, &k); err != nil {
		return err
	}
	r.Model = k.Model
	r.Messages = k.Messages
	r.Stream = k.Stream
	r.Temperature = k.Temperature
	r.TopP = k.TopP
	r.MaxTokens = k.MaxTokens
	r.Stop = k.Stop

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	knownKeys := map[string]bool{
		"model": true, "messages": true, "stream": true,
		"temperature": true, "top_p": true, "max_tokens": true, "stop": true,
	}
	extra := make(map[string]any)
	for key, v := range raw {
		if knownKeys[key] {
			continue
		}
		var val any
		if err := json.Unmarshal(v, &val); err == nil {
			extra[key] = val
		}
	}
	if len(extra) > 0 {
		r.Extra = extra
	}
	return nil
}

// MatchText concatenates the content of every user-role message, in
// submission order, joined by newline. Non-string contents are
// JSON-serialized first.
func (r *ChatCompletionRequest) MatchText() string {
	var parts []string
	for _, m := range r.Messages {
		if m.Role != "user" {
			continue
		}
		parts = append(parts, m.ContentString())
	}
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += "\n"
		}
		out += p
	}
	return out
}

// PromptChars returns the total character count across all message
// contents, used for the approximate usage estimation.
func (r *ChatCompletionRequest) PromptChars() int {
	total := 0
	for _, m := range r.Messages {
		total += len([]rune(m.ContentString()))
	}
	return total
}

// Usage is the approximate token accounting block.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ChatCompletionResponse is the non-streaming wire envelope.
type ChatCompletionResponse struct {
	ID      string   `json:"id"`
	Object  string   `json:"object"`
	Created int64    `json:"created"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
	Usage   *Usage   `json:"usage,omitempty"`
}

// Choice is a single completion choice. This server always returns index 0.
type Choice struct {
	Index        int               `json:"index"`
	Message      *ResponseMessage  `json:"message,omitempty"`
	Delta        *ResponseMessage  `json:"delta,omitempty"`
	FinishReason *string           `json:"finish_reason"`
}

// ResponseMessage carries the assistant reply, optionally with a side-field
// reasoning trace when reasoning_mode is "field" or "both".
type ResponseMessage struct {
	Role             string `json:"role,omitempty"`
	Content          string `json:"content,omitempty"`
	ReasoningContent string `json:"reasoning_content,omitempty"`
}

// StreamChunk is one SSE frame of a streaming chat completion.
type StreamChunk struct {
	ID      string   `json:"id"`
	Object  string   `json:"object"`
	Created int64    `json:"created"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
	Usage   *Usage   `json:"usage,omitempty"`
	Error   *WireError `json:"error,omitempty"`
}

// WireError is the error object embedded in a final streaming frame when a
// failure happens after the first chunk was already sent.
type WireError struct {
	Message string `json:"message"`
	Kind    string `json:"type"`
}
