// Package scripting implements C5: the goja-based sandbox that runs a
// kind=script model's handle function against the fixed input envelope,
// one script source loaded and compiled per model per snapshot generation.
package scripting

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dop251/goja"

	"github.com/mockllm/mockllm/internal/apierror"
	"github.com/mockllm/mockllm/internal/configstore"
	"github.com/mockllm/mockllm/internal/wire"
)

// module holds one script model's compiled state. A goja.Runtime is not
// safe for concurrent use, so every invocation of this model passes
// through the single goroutine started in loadModule, which serializes
// that model's script executions. Each script model has its own goroutine.
type module struct {
	vm   *goja.Runtime
	jobs chan job
}

type job struct {
	input  map[string]any
	result chan jobResult
}

type jobResult struct {
	value goja.Value
	err   error
}

// loadModule compiles the optional init_file once, then the script itself,
// and starts the worker goroutine. Errors here are permanent for this
// cache entry until the next reload produces a fresh Snapshot.
func loadModule(scriptRoot string, body *configstore.ScriptBody) (*module, error) {
	vm := goja.New()

	if body.InitFile != "" {
		src, err := configstore.ReadScript(scriptRoot, body.InitFile)
		if err != nil {
			return nil, fmt.Errorf("read init_file %q: %w", body.InitFile, err)
		}
		if _, err := vm.RunString(src); err != nil {
			return nil, fmt.Errorf("run init_file %q: %w", body.InitFile, err)
		}
	}

	src, err := configstore.ReadScript(scriptRoot, body.File)
	if err != nil {
		return nil, fmt.Errorf("read script %q: %w", body.File, err)
	}
	if _, err := vm.RunString(src); err != nil {
		return nil, fmt.Errorf("run script %q: %w", body.File, err)
	}

	handleVal := vm.Get("handle")
	if handleVal == nil || goja.IsUndefined(handleVal) {
		return nil, fmt.Errorf("script %q does not define a handle function", body.File)
	}
	handle, ok := goja.AssertFunction(handleVal)
	if !ok {
		return nil, fmt.Errorf("script %q: handle is not callable", body.File)
	}

	m := &module{vm: vm, jobs: make(chan job)}
	go m.loop(handle)
	return m, nil
}

// loop owns vm for the module's lifetime, executing jobs one at a time.
func (m *module) loop(handle goja.Callable) {
	for j := range m.jobs {
		val, err := handle(goja.Undefined(), m.vm.ToValue(j.input))
		j.result <- jobResult{value: val, err: err}
		m.vm.ClearInterrupt()
	}
}

// Run executes model's script against req, enforcing the model's
// configured wall-clock timeout_ms. On timeout the runtime is interrupted
// and the module keeps serving later invocations normally.
func Run(ctx context.Context, snap *configstore.Snapshot, model *configstore.Model, req *wire.ChatCompletionRequest, requestID string) (Output, error) {
	if model.Script == nil {
		return Output{}, fmt.Errorf("scripting: model %q has no script body", model.ID)
	}

	entry := snap.ScriptCache.Entry(model.ID)
	rawModule, err := entry.Init(func() (any, error) {
		return loadModule(snap.ScriptRoot, model.Script)
	})
	if err != nil {
		return Output{}, apierror.New(apierror.ScriptError, err.Error())
	}
	m := rawModule.(*module)

	j := job{input: buildInput(req, model, requestID), result: make(chan jobResult, 1)}
	timeout := time.Duration(model.Script.TimeoutMs) * time.Millisecond
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case m.jobs <- j:
	case <-timer.C:
		return Output{}, apierror.New(apierror.ScriptTimeout, fmt.Sprintf("script %q was still queued after timeout_ms=%d", model.Script.File, model.Script.TimeoutMs))
	case <-ctx.Done():
		return Output{}, ctx.Err()
	}

	select {
	case res := <-j.result:
		return outputFrom(model, res)
	case <-timer.C:
		m.vm.Interrupt("timeout_ms exceeded")
		return Output{}, apierror.New(apierror.ScriptTimeout, fmt.Sprintf("script %q exceeded timeout_ms=%d", model.Script.File, model.Script.TimeoutMs))
	case <-ctx.Done():
		m.vm.Interrupt("request canceled")
		return Output{}, ctx.Err()
	}
}

func outputFrom(model *configstore.Model, res jobResult) (Output, error) {
	if res.err != nil {
		var interrupted *goja.InterruptedError
		if errors.As(res.err, &interrupted) {
			return Output{}, apierror.New(apierror.ScriptTimeout, fmt.Sprintf("script %q exceeded timeout_ms=%d", model.Script.File, model.Script.TimeoutMs))
		}
		return Output{}, apierror.New(apierror.ScriptError, res.err.Error())
	}
	exported, ok := res.value.Export().(map[string]any)
	if !ok {
		return Output{}, apierror.New(apierror.ScriptError, fmt.Sprintf("script %q: handle must return an object", model.Script.File))
	}
	return normalize(exported)
}
