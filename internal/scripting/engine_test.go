package scripting

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mockllm/mockllm/internal/configstore"
	"github.com/mockllm/mockllm/internal/wire"
)

func writeScript(t *testing.T, dir, name, src string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(src), 0o644))
}

func newTestSnapshot(t *testing.T, scriptRoot string, model *configstore.Model) *configstore.Snapshot {
	t.Helper()
	return &configstore.Snapshot{
		Models:      map[string]*configstore.Model{model.ID: model},
		ScriptRoot:  scriptRoot,
		ScriptCache: configstore.NewScriptCache(),
	}
}

func TestRun_HandlesBasicInvocation(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "echo.js", `
function handle(input) {
  return { content: "you said: " + input.parsed.messages[0].content };
}
`)
	model := &configstore.Model{
		ID:   "echo",
		Kind: configstore.KindScript,
		Script: &configstore.ScriptBody{File: "echo.js", TimeoutMs: 1000},
	}
	snap := newTestSnapshot(t, dir, model)
	req := &wire.ChatCompletionRequest{Messages: []wire.Message{{Role: "user", Content: []byte(`"hello"`)}}}

	out, err := Run(context.Background(), snap, model, req, "req-1")
	require.NoError(t, err)
	assert.Equal(t, "you said: hello", out.Content)
	assert.Equal(t, "stop", out.FinishReason)
}

func TestRun_InitFileRunsOnceAndSharesState(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "init.js", `globalThis.counter = 0;`)
	writeScript(t, dir, "counter.js", `
function handle(input) {
  counter += 1;
  return { content: "count=" + counter };
}
`)
	model := &configstore.Model{
		ID:   "counter",
		Kind: configstore.KindScript,
		Script: &configstore.ScriptBody{File: "counter.js", InitFile: "init.js", TimeoutMs: 1000},
	}
	snap := newTestSnapshot(t, dir, model)
	req := &wire.ChatCompletionRequest{Messages: []wire.Message{{Role: "user", Content: []byte(`"hi"`)}}}

	out1, err := Run(context.Background(), snap, model, req, "req-1")
	require.NoError(t, err)
	out2, err := Run(context.Background(), snap, model, req, "req-2")
	require.NoError(t, err)

	assert.Equal(t, "count=1", out1.Content)
	assert.Equal(t, "count=2", out2.Content, "init.js state persists across invocations of the same model")
}

func TestRun_PassesThroughScriptSuppliedUsage(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "usage.js", `
function handle(input) {
  return { content: "ok", usage: { prompt_tokens: 11, completion_tokens: 22, total_tokens: 33 } };
}
`)
	model := &configstore.Model{
		ID:   "usage",
		Kind: configstore.KindScript,
		Script: &configstore.ScriptBody{File: "usage.js", TimeoutMs: 1000},
	}
	snap := newTestSnapshot(t, dir, model)
	req := &wire.ChatCompletionRequest{}

	out, err := Run(context.Background(), snap, model, req, "req-1")
	require.NoError(t, err)
	require.NotNil(t, out.Usage)
	assert.Equal(t, 11, out.Usage.PromptTokens)
	assert.Equal(t, 22, out.Usage.CompletionTokens)
	assert.Equal(t, 33, out.Usage.TotalTokens)
}

func TestRun_ThrownErrorSurfacesAsScriptError(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "boom.js", `
function handle(input) { throw new Error("kaboom"); }
`)
	model := &configstore.Model{
		ID:   "boom",
		Kind: configstore.KindScript,
		Script: &configstore.ScriptBody{File: "boom.js", TimeoutMs: 1000},
	}
	snap := newTestSnapshot(t, dir, model)
	req := &wire.ChatCompletionRequest{}

	_, err := Run(context.Background(), snap, model, req, "req-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kaboom")
}

func TestRun_InfiniteLoopTimesOut(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "spin.js", `
function handle(input) { while (true) {} }
`)
	model := &configstore.Model{
		ID:   "spin",
		Kind: configstore.KindScript,
		Script: &configstore.ScriptBody{File: "spin.js", TimeoutMs: 50},
	}
	snap := newTestSnapshot(t, dir, model)
	req := &wire.ChatCompletionRequest{}

	_, err := Run(context.Background(), snap, model, req, "req-1")
	require.Error(t, err)
}

func TestRun_MissingHandleFunctionErrors(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "nohandle.js", `var x = 1;`)
	model := &configstore.Model{
		ID:   "nohandle",
		Kind: configstore.KindScript,
		Script: &configstore.ScriptBody{File: "nohandle.js", TimeoutMs: 1000},
	}
	snap := newTestSnapshot(t, dir, model)
	req := &wire.ChatCompletionRequest{}

	_, err := Run(context.Background(), snap, model, req, "req-1")
	require.Error(t, err)
}
