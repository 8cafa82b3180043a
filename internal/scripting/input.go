package scripting

import (
	"encoding/json"
	"time"

	"github.com/mockllm/mockllm/internal/configstore"
	"github.com/mockllm/mockllm/internal/wire"
)

// buildInput assembles the fixed envelope a script's handle function
// receives: the original request JSON, a parsed breakdown of it, the
// frozen model configuration, and request metadata.
func buildInput(req *wire.ChatCompletionRequest, model *configstore.Model, requestID string) map[string]any {
	rawRequest, _ := json.Marshal(req)
	var requestAny any
	_ = json.Unmarshal(rawRequest, &requestAny)
	if obj, ok := requestAny.(map[string]any); ok {
		for k, v := range req.Extra {
			obj[k] = v
		}
	}

	messages := make([]map[string]any, 0, len(req.Messages))
	for _, m := range req.Messages {
		messages = append(messages, map[string]any{
			"role":    m.Role,
			"content": m.ContentString(),
			"name":    m.Name,
		})
	}

	parsed := map[string]any{
		"model":    req.Model,
		"messages": messages,
		"stream":   req.Stream,
		"extra":    req.Extra,
	}
	if req.Temperature != nil {
		parsed["temperature"] = *req.Temperature
	}
	if req.TopP != nil {
		parsed["top_p"] = *req.TopP
	}
	if req.MaxTokens != nil {
		parsed["max_tokens"] = *req.MaxTokens
	}
	if len(req.Stop) > 0 {
		var stop any
		if err := json.Unmarshal(req.Stop, &stop); err == nil {
			parsed["stop"] = stop
		}
	}

	return map[string]any{
		"request": requestAny,
		"parsed":  parsed,
		"model":   modelSummary(model),
		"meta": map[string]any{
			"request_id": requestID,
			"now":        time.Now().UTC().Format(time.RFC3339),
		},
	}
}

// modelSummary is the subset of a model's frozen configuration exposed to a
// script; internal fields like compiled regexes and atomic counters never
// cross the JS boundary.
func modelSummary(model *configstore.Model) map[string]any {
	m := map[string]any{
		"id":       model.ID,
		"kind":     string(model.Kind),
		"owned_by": model.OwnedBy,
		"tags":     model.Tags,
	}
	if model.Script != nil {
		m["script"] = map[string]any{
			"file":               model.Script.File,
			"init_file":          model.Script.InitFile,
			"timeout_ms":         model.Script.TimeoutMs,
			"stream_chunk_chars": model.Script.StreamChunkChars,
		}
	}
	return m
}
