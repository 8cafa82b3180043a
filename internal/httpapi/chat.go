package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/mockllm/mockllm/internal/apierror"
	"github.com/mockllm/mockllm/internal/configstore"
	"github.com/mockllm/mockllm/internal/interactive"
	"github.com/mockllm/mockllm/internal/modelrouter"
	"github.com/mockllm/mockllm/internal/pipeline"
	"github.com/mockllm/mockllm/internal/scripting"
	"github.com/mockllm/mockllm/internal/staticengine"
	"github.com/mockllm/mockllm/internal/wire"
)

// handleChatCompletions is the sole strategy dispatch point: one snapshot
// reference taken at request arrival serves the whole request, so a
// concurrent reload never mixes behavior mid-response.
func (s *Server) handleChatCompletions(w http.ResponseWriter, r *http.Request) {
	snap := s.store.Load()

	var req wire.ChatCompletionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apierror.New(apierror.BadRequest, "malformed request body: "+err.Error()))
		return
	}

	resolved, err := modelrouter.Resolve(snap, req.Model)
	if err != nil {
		writeError(w, err)
		return
	}
	model := resolved.Model

	requestID := "chatcmpl-" + uuid.NewString()
	created := time.Now().Unix()
	promptChars := req.PromptChars()

	result, chunkChars, err := s.runBackend(r.Context(), snap, model, &req, requestID)
	if err != nil {
		writeError(w, err)
		return
	}

	if req.Stream {
		s.streamResponse(w, r, requestID, created, resolved.RequestedAs, snap.Response, promptChars, chunkChars, result)
		return
	}

	resp := pipeline.BuildResponse(requestID, created, resolved.RequestedAs, snap.Response, promptChars, result)
	writeJSON(w, http.StatusOK, resp)
}

// runBackend dispatches to the strategy the resolved model's kind names,
// returning a pipeline.Result and the stream_chunk_chars to use.
func (s *Server) runBackend(ctx context.Context, snap *configstore.Snapshot, model *configstore.Model, req *wire.ChatCompletionRequest, requestID string) (pipeline.Result, int, error) {
	switch model.Kind {
	case configstore.KindStatic:
		reply, err := staticengine.Evaluate(model.Static, req.MatchText())
		if err != nil {
			return pipeline.Result{}, 0, apierror.New(apierror.Internal, err.Error())
		}
		return pipeline.Result{Content: reply.Content, Reasoning: reply.Reasoning, FinishReason: "stop"}, model.Static.StreamChunkChars, nil

	case configstore.KindScript:
		out, err := scripting.Run(ctx, snap, model, req, requestID)
		if err != nil {
			return pipeline.Result{}, 0, err
		}
		result := pipeline.Result{Content: out.Content, Reasoning: out.Reasoning, FinishReason: out.FinishReason, Usage: scriptUsage(out.Usage)}
		return result, model.Script.StreamChunkChars, nil

	case configstore.KindInteractive:
		return s.runInteractive(ctx, model, req)

	default:
		return pipeline.Result{}, 0, apierror.New(apierror.Internal, fmt.Sprintf("model %q has unknown kind %q", model.ID, model.Kind))
	}
}

func (s *Server) runInteractive(ctx context.Context, model *configstore.Model, req *wire.ChatCompletionRequest) (pipeline.Result, int, error) {
	body := model.Interactive

	msgs := make([]interactive.Message, 0, len(req.Messages))
	for _, m := range req.Messages {
		msgs = append(msgs, interactive.Message{Role: m.Role, Content: m.ContentString()})
	}
	fallback := interactive.Reply{Content: body.FallbackText, Reasoning: body.FakeReasoning, FinishReason: "stop"}
	timeout := time.Duration(body.TimeoutMs) * time.Millisecond

	id, sink := s.broker.Register(model.ID, msgs, req.Stream, timeout, fallback)

	select {
	case reply, ok := <-sink:
		if !ok {
			return pipeline.Result{}, 0, apierror.New(apierror.Internal, "interactive sink closed unexpectedly")
		}
		finish := reply.FinishReason
		if finish == "" {
			finish = "stop"
		}
		return pipeline.Result{Content: reply.Content, Reasoning: reply.Reasoning, FinishReason: finish}, body.StreamChunkChars, nil
	case <-ctx.Done():
		s.broker.Cancel(id)
		return pipeline.Result{}, 0, ctx.Err()
	}
}

// scriptUsage converts a script's optional usage block into the wire
// shape; nil stays nil so pipeline falls back to estimating usage.
func scriptUsage(u *scripting.Usage) *wire.Usage {
	if u == nil {
		return nil
	}
	return &wire.Usage{PromptTokens: u.PromptTokens, CompletionTokens: u.CompletionTokens, TotalTokens: u.TotalTokens}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	apiErr, ok := err.(*apierror.Error)
	if !ok {
		apiErr = apierror.New(apierror.Internal, err.Error())
	}
	writeJSON(w, apiErr.Kind.Status(), apierror.ToBody(apiErr))
}
