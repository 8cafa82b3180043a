// Package pipeline implements C7: shaping a backend result into the wire
// chat-completions envelope, in both non-streaming and SSE-streaming form.
package pipeline

import (
	"github.com/mockllm/mockllm/internal/configstore"
	"github.com/mockllm/mockllm/internal/wire"
)

// Result is a backend's raw answer before reasoning-mode shaping,
// chunking, or usage estimation are applied. Usage is non-nil only when
// the backend itself supplied a usage block (currently: scripts); it then
// takes precedence over EstimateUsage.
type Result struct {
	Content      string
	Reasoning    string
	FinishReason string
	Usage        *wire.Usage
}

// resolveUsage prefers a backend-supplied usage block over the estimate,
// and only estimates at all when include_usage is configured on.
func resolveUsage(opts configstore.ResponseOptions, r Result, promptChars int, content string) *wire.Usage {
	if r.Usage != nil {
		return r.Usage
	}
	if !opts.IncludeUsage {
		return nil
	}
	return EstimateUsage(promptChars, content)
}

// shaped is a Result after reasoning_mode has been applied: Content may
// have absorbed Reasoning as a "<think>" prefix, and ReasoningField holds
// whatever should still appear as a side reasoning_content value (empty if
// the mode doesn't carry one).
type shaped struct {
	Content        string
	ReasoningField string
	FinishReason   string
}

func shapeResult(mode configstore.ReasoningMode, r Result) shaped {
	out := shaped{Content: r.Content, FinishReason: r.FinishReason}
	if out.FinishReason == "" {
		out.FinishReason = "stop"
	}

	switch mode {
	case configstore.ReasoningNone:
		// reasoning dropped entirely.
	case configstore.ReasoningPrefix:
		if r.Reasoning != "" {
			out.Content = "<think>\n" + r.Reasoning + "\n</think>\n\n" + r.Content
		}
	case configstore.ReasoningField:
		out.ReasoningField = r.Reasoning
	case configstore.ReasoningBoth:
		if r.Reasoning != "" {
			out.Content = "<think>\n" + r.Reasoning + "\n</think>\n\n" + r.Content
		}
		out.ReasoningField = r.Reasoning
	}
	return out
}

// BuildResponse assembles the non-streaming envelope.
func BuildResponse(id string, created int64, model string, opts configstore.ResponseOptions, promptChars int, r Result) *wire.ChatCompletionResponse {
	s := shapeResult(opts.ReasoningMode, r)
	finish := s.FinishReason

	resp := &wire.ChatCompletionResponse{
		ID:      id,
		Object:  "chat.completion",
		Created: created,
		Model:   model,
		Choices: []wire.Choice{{
			Index: 0,
			Message: &wire.ResponseMessage{
				Role:             "assistant",
				Content:          s.Content,
				ReasoningContent: s.ReasoningField,
			},
			FinishReason: &finish,
		}},
	}
	resp.Usage = resolveUsage(opts, r, promptChars, s.Content)
	return resp
}

// BuildFrames assembles the ordered SSE frame sequence for a streaming
// response: a role-announcing start frame, one delta frame per
// chunkChars-sized slice of reasoning (if field/both) then content, and a
// closing frame carrying finish_reason and, if configured, usage totals.
// The caller is responsible for the literal "data: [DONE]" sentinel and
// any stream_first_delay_ms pause before sending the first content frame.
func BuildFrames(id string, created int64, model string, opts configstore.ResponseOptions, promptChars, chunkChars int, r Result) []wire.StreamChunk {
	if chunkChars < 1 {
		chunkChars = 1
	}
	s := shapeResult(opts.ReasoningMode, r)

	var frames []wire.StreamChunk
	frames = append(frames, chunk(id, created, model, &wire.ResponseMessage{Role: "assistant"}, nil))

	if s.ReasoningField != "" {
		for _, piece := range chunkRunes(s.ReasoningField, chunkChars) {
			frames = append(frames, chunk(id, created, model, &wire.ResponseMessage{ReasoningContent: piece}, nil))
		}
	}
	for _, piece := range chunkRunes(s.Content, chunkChars) {
		frames = append(frames, chunk(id, created, model, &wire.ResponseMessage{Content: piece}, nil))
	}

	finish := s.FinishReason
	final := chunk(id, created, model, &wire.ResponseMessage{}, &finish)
	final.Usage = resolveUsage(opts, r, promptChars, s.Content)
	frames = append(frames, final)

	return frames
}

func chunk(id string, created int64, model string, delta *wire.ResponseMessage, finishReason *string) wire.StreamChunk {
	return wire.StreamChunk{
		ID:      id,
		Object:  "chat.completion.chunk",
		Created: created,
		Model:   model,
		Choices: []wire.Choice{{Index: 0, Delta: delta, FinishReason: finishReason}},
	}
}

// ErrorFrame builds the terminal frame required when a streaming response
// fails after the first chunk has already gone out.
func ErrorFrame(id string, created int64, model, message, kind string) wire.StreamChunk {
	finish := "error"
	return wire.StreamChunk{
		ID:      id,
		Object:  "chat.completion.chunk",
		Created: created,
		Model:   model,
		Choices: []wire.Choice{{Index: 0, Delta: &wire.ResponseMessage{}, FinishReason: &finish}},
		Error:   &wire.WireError{Message: message, Kind: kind},
	}
}
