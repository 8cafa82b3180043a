// Package modelrouter implements C3: resolving an incoming chat-completion
// request's model name to a concrete backend model, fanning out across an
// alias's providers when the name names one.
//
// Provider rotation uses an atomic counter modulo the live provider count;
// the counter lives on the configstore.Alias itself so it resets for free
// on every reload (a fresh Snapshot means a fresh zero-valued counter).
package modelrouter

import (
	"fmt"
	"math/rand"

	"github.com/mockllm/mockllm/internal/apierror"
	"github.com/mockllm/mockllm/internal/configstore"
)

// Resolved is the outcome of routing a request: the concrete backend model
// that will actually serve it, and the name the client asked for (which may
// have been an alias).
type Resolved struct {
	Model       *configstore.Model
	RequestedAs string
}

// Resolve maps a model name (or "" to use the snapshot's default_model) to
// a concrete enabled model.
func Resolve(snap *configstore.Snapshot, modelName string) (*Resolved, error) {
	name := modelName
	if name == "" {
		name = snap.DefaultModel
	}
	if name == "" {
		return nil, apierror.New(apierror.ModelNotFound, "no model specified and no default_model configured")
	}

	if alias, ok := snap.Aliases[name]; ok {
		if alias.Disabled {
			return nil, apierror.New(apierror.ModelNotFound, fmt.Sprintf("alias %q is disabled", name))
		}
		live := liveProviders(alias, snap)
		if len(live) == 0 {
			return nil, apierror.New(apierror.ModelNotFound, fmt.Sprintf("alias %q has no live providers", name))
		}
		var idx int
		switch alias.Strategy {
		case configstore.PickRandom:
			idx = rand.Intn(len(live))
		default: // round_robin
			idx = int(alias.NextRoundRobin() % uint64(len(live)))
		}
		return &Resolved{Model: live[idx], RequestedAs: name}, nil
	}

	if m, ok := snap.Models[name]; ok {
		return &Resolved{Model: m, RequestedAs: name}, nil
	}

	return nil, apierror.New(apierror.ModelNotFound, fmt.Sprintf("model %q not found", name))
}

func liveProviders(a *configstore.Alias, snap *configstore.Snapshot) []*configstore.Model {
	var out []*configstore.Model
	for _, p := range a.Providers {
		if m, ok := snap.Models[p]; ok {
			out = append(out, m)
		}
	}
	return out
}

// ListModels returns the union of concrete model ids and enabled alias
// names for the public GET /v1/models endpoint. Disabled aliases are
// hidden.
func ListModels(snap *configstore.Snapshot) []ModelListing {
	var out []ModelListing
	for id, m := range snap.Models {
		out = append(out, ModelListing{ID: id, OwnedBy: m.OwnedBy})
	}
	for name, a := range snap.Aliases {
		if a.Disabled {
			continue
		}
		out = append(out, ModelListing{ID: name, OwnedBy: a.OwnedBy})
	}
	return out
}

// ModelListing is one entry returned by ListModels.
type ModelListing struct {
	ID      string
	OwnedBy string
}
