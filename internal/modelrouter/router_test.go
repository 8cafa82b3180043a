package modelrouter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mockllm/mockllm/internal/apierror"
	"github.com/mockllm/mockllm/internal/configstore"
)

func snapWithTwoProviders() *configstore.Snapshot {
	return &configstore.Snapshot{
		DefaultModel: "gpt-echo",
		Models: map[string]*configstore.Model{
			"gpt-echo": {ID: "gpt-echo", OwnedBy: "mockllm"},
			"gpt-slow": {ID: "gpt-slow", OwnedBy: "mockllm"},
		},
		Aliases: map[string]*configstore.Alias{
			"gpt-latest": {
				Name:      "gpt-latest",
				OwnedBy:   "mockllm",
				Strategy:  configstore.PickRoundRobin,
				Providers: []string{"gpt-echo", "gpt-slow"},
			},
			"gpt-hidden": {
				Name:     "gpt-hidden",
				Strategy: configstore.PickRoundRobin,
				Disabled: true,
			},
		},
	}
}

func TestResolve_EmptyModelUsesDefault(t *testing.T) {
	snap := snapWithTwoProviders()
	r, err := Resolve(snap, "")
	require.NoError(t, err)
	assert.Equal(t, "gpt-echo", r.Model.ID)
}

func TestResolve_ConcreteModel(t *testing.T) {
	snap := snapWithTwoProviders()
	r, err := Resolve(snap, "gpt-slow")
	require.NoError(t, err)
	assert.Equal(t, "gpt-slow", r.Model.ID)
	assert.Equal(t, "gpt-slow", r.RequestedAs)
}

func TestResolve_AliasRoundRobinsAcrossProviders(t *testing.T) {
	snap := snapWithTwoProviders()
	var seen []string
	for i := 0; i < 4; i++ {
		r, err := Resolve(snap, "gpt-latest")
		require.NoError(t, err)
		seen = append(seen, r.Model.ID)
	}
	assert.Equal(t, []string{"gpt-echo", "gpt-slow", "gpt-echo", "gpt-slow"}, seen)
}

func TestResolve_DisabledAliasIsModelNotFound(t *testing.T) {
	snap := snapWithTwoProviders()
	_, err := Resolve(snap, "gpt-hidden")
	require.Error(t, err)
	apiErr, ok := err.(*apierror.Error)
	require.True(t, ok)
	assert.Equal(t, apierror.ModelNotFound, apiErr.Kind)
}

func TestResolve_UnknownNameIsModelNotFound(t *testing.T) {
	snap := snapWithTwoProviders()
	_, err := Resolve(snap, "does-not-exist")
	require.Error(t, err)
	apiErr, ok := err.(*apierror.Error)
	require.True(t, ok)
	assert.Equal(t, apierror.ModelNotFound, apiErr.Kind)
}

func TestResolve_NoModelAndNoDefaultErrors(t *testing.T) {
	snap := snapWithTwoProviders()
	snap.DefaultModel = ""
	_, err := Resolve(snap, "")
	assert.Error(t, err)
}

func TestListModels_HidesDisabledAliasesButKeepsEnabledOnes(t *testing.T) {
	snap := snapWithTwoProviders()
	listing := ListModels(snap)
	ids := make(map[string]bool)
	for _, l := range listing {
		ids[l.ID] = true
	}
	assert.True(t, ids["gpt-echo"])
	assert.True(t, ids["gpt-slow"])
	assert.True(t, ids["gpt-latest"])
	assert.False(t, ids["gpt-hidden"])
}
