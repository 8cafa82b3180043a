package catalogresolver

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/mockllm/mockllm/internal/configstore"
)

// Build expands templates, merges model documents, injects defaults,
// validates invariants I1–I5 and the rule/condition shapes, and returns a
// frozen Snapshot. Model, alias, default_model and server-option errors are
// collected in full, not first-failure-only. Template expansion is the
// exception: the first unknown parent template or extends cycle found is
// returned alone and no model is checked. A non-empty error list means the
// Snapshot return value is nil and the caller must keep the previous
// snapshot active.
func Build(docs *configstore.Documents, generation uint64) (*configstore.Snapshot, []string) {
	var errs []string

	templates, err := expandTemplates(docs.Catalog.Templates)
	if err != nil {
		return nil, []string{err.Error()}
	}

	disabled := make(map[string]bool, len(docs.Catalog.DisabledModels))
	for _, id := range docs.Catalog.DisabledModels {
		disabled[id] = true
	}

	models := make(map[string]*configstore.Model)
	for stem, file := range docs.ModelFiles {
		if file.ID == "" {
			errs = append(errs, fmt.Sprintf("models/%s.yaml: missing id", stem))
			continue
		}
		if file.ID != stem {
			errs = append(errs, fmt.Sprintf("models/%s.yaml: id %q does not match filename stem %q (I4)", stem, file.ID, stem))
			continue
		}

		merged, err := buildModelDoc(stem, file, templates)
		if err != nil {
			errs = append(errs, err.Error())
			continue
		}
		injectDefaults(&merged, docs.Catalog.Defaults)

		m, modelErrs := buildModel(merged)
		if len(modelErrs) > 0 {
			for _, e := range modelErrs {
				errs = append(errs, fmt.Sprintf("model %q: %s", stem, e))
			}
			continue
		}
		if _, dup := models[m.ID]; dup {
			errs = append(errs, fmt.Sprintf("duplicate model id %q", m.ID))
			continue
		}
		models[m.ID] = m
	}

	enabledModels := make(map[string]*configstore.Model)
	for id, m := range models {
		if !disabled[id] {
			enabledModels[id] = m
		}
	}

	aliases := make(map[string]*configstore.Alias)
	names := make(map[string]bool)
	for id := range models {
		names[id] = true
	}
	for _, ra := range docs.Catalog.Aliases {
		if ra.Name == "" {
			errs = append(errs, "alias with empty name")
			continue
		}
		if names[ra.Name] {
			errs = append(errs, fmt.Sprintf("alias %q collides with a model id or another alias", ra.Name))
			continue
		}
		names[ra.Name] = true

		strategy := configstore.PickStrategy(ra.Strategy)
		if strategy != configstore.PickRoundRobin && strategy != configstore.PickRandom {
			errs = append(errs, fmt.Sprintf("alias %q: strategy must be round_robin or random, got %q", ra.Name, ra.Strategy))
			continue
		}

		if !ra.Disabled {
			for _, p := range ra.Providers {
				if _, ok := enabledModels[p]; !ok {
					errs = append(errs, fmt.Sprintf("alias %q: provider %q does not resolve to an enabled model (I1)", ra.Name, p))
				}
			}
		}

		aliases[ra.Name] = &configstore.Alias{
			Name:      ra.Name,
			OwnedBy:   ra.OwnedBy,
			Strategy:  strategy,
			Providers: append([]string{}, ra.Providers...),
			Disabled:  ra.Disabled,
		}
	}

	defaultModel := docs.Catalog.DefaultModel
	if defaultModel != "" {
		if m, ok := enabledModels[defaultModel]; ok && m != nil {
			// ok, resolves to enabled model
		} else if a, ok := aliases[defaultModel]; ok && !a.Disabled && len(liveProviders(a, enabledModels)) > 0 {
			// ok, resolves to enabled alias with at least one enabled provider
		} else {
			errs = append(errs, fmt.Sprintf("default_model %q does not resolve to an enabled model or alias with a live provider (I5)", defaultModel))
		}
	}

	server, respErrs := buildServerOptions(docs.Server)
	errs = append(errs, respErrs...)

	if len(errs) > 0 {
		sort.Strings(errs)
		return nil, errs
	}

	snap := &configstore.Snapshot{
		Generation:       generation,
		BuiltAt:          time.Now().UTC(),
		Server:           server.ServerOptions,
		Response:         server.ResponseOptions,
		DefaultModel:     defaultModel,
		Models:           enabledModels,
		DisabledModelIDs: disabled,
		Aliases:          aliases,
		ScriptRoot:       docs.ScriptRoot,
		ScriptCache:      configstore.NewScriptCache(),
	}
	return snap, nil
}

// liveProviders filters an alias's provider list down to the ones present
// in the enabled-model table.
func liveProviders(a *configstore.Alias, enabled map[string]*configstore.Model) []string {
	var out []string
	for _, p := range a.Providers {
		if _, ok := enabled[p]; ok {
			out = append(out, p)
		}
	}
	return out
}

type serverBuild struct {
	configstore.ServerOptions
	configstore.ResponseOptions
}

func buildServerOptions(doc configstore.RawServerDoc) (serverBuild, []string) {
	var errs []string
	mode := strings.ToLower(doc.Response.ReasoningMode)
	if mode == "" {
		mode = string(configstore.ReasoningNone)
	}
	if mode == "append" {
		mode = string(configstore.ReasoningPrefix)
	}
	switch configstore.ReasoningMode(mode) {
	case configstore.ReasoningNone, configstore.ReasoningPrefix, configstore.ReasoningField, configstore.ReasoningBoth:
	default:
		errs = append(errs, fmt.Sprintf("response.reasoning_mode: unknown value %q", doc.Response.ReasoningMode))
	}

	debounce := doc.Server.ReloadDebounceMs
	if debounce <= 0 {
		debounce = 500
	}

	return serverBuild{
		ServerOptions: configstore.ServerOptions{
			Port:             doc.Server.Port,
			Auth:             doc.Server.Auth,
			AdminAuth:        doc.Server.AdminAuth,
			ReloadDebounceMs: debounce,
		},
		ResponseOptions: configstore.ResponseOptions{
			ReasoningMode:      configstore.ReasoningMode(mode),
			IncludeUsage:       doc.Response.IncludeUsage,
			StreamFirstDelayMs: doc.Response.StreamFirstDelayMs,
		},
	}, errs
}
