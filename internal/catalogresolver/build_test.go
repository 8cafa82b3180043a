package catalogresolver

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mockllm/mockllm/internal/configstore"
)

func strp(s string) *string { return &s }
func intp(i int) *int       { return &i }
func boolp(b bool) *bool    { return &b }

func staticDoc(id string, def bool) configstore.RawModelFile {
	rule := configstore.RawRule{
		Replies: []configstore.RawReply{{Content: "hi"}},
	}
	if def {
		rule.Default = boolp(true)
	} else {
		rule.When = &configstore.RawWhen{Any: []configstore.RawCondition{{Contains: strp("x")}}}
	}
	return configstore.RawModelFile{
		ID:   id,
		Kind: "static",
		Static: &configstore.RawStaticBody{
			Rules: []configstore.RawRule{rule},
		},
	}
}

func baseDocs() *configstore.Documents {
	return &configstore.Documents{
		ModelFiles: map[string]configstore.RawModelFile{
			"echo": staticDoc("echo", true),
		},
		Catalog: configstore.RawCatalogDoc{
			DefaultModel: "echo",
		},
	}
}

func TestBuild_HappyPath(t *testing.T) {
	docs := baseDocs()
	snap, errs := Build(docs, 1)
	require.Empty(t, errs)
	require.NotNil(t, snap)
	assert.Equal(t, uint64(1), snap.Generation)
	assert.Contains(t, snap.Models, "echo")
	assert.Equal(t, "echo", snap.DefaultModel)
}

func TestBuild_ModelIDMustMatchFilenameStem_I4(t *testing.T) {
	docs := baseDocs()
	docs.ModelFiles["mismatched"] = staticDoc("other-id", true)
	_, errs := Build(docs, 1)
	require.NotEmpty(t, errs)
	found := false
	for _, e := range errs {
		if strings.Contains(e, "does not match filename stem") {
			found = true
		}
	}
	assert.True(t, found, "expected I4 violation in errors, got %v", errs)
}

func TestBuild_ExactlyOneDefaultRule_I2(t *testing.T) {
	docs := baseDocs()
	docs.ModelFiles["echo"] = staticDoc("echo", false) // no default rule at all
	_, errs := Build(docs, 1)
	require.NotEmpty(t, errs)
}

func TestBuild_NonDefaultRuleNeedsCondition_I3(t *testing.T) {
	docs := baseDocs()
	bad := staticDoc("echo", true)
	bad.Static.Rules = append(bad.Static.Rules, configstore.RawRule{
		Replies: []configstore.RawReply{{Content: "no-condition"}},
	})
	docs.ModelFiles["echo"] = bad
	_, errs := Build(docs, 1)
	require.NotEmpty(t, errs)
}

func TestBuild_AliasMustResolveToEnabledModel_I1(t *testing.T) {
	docs := baseDocs()
	docs.Catalog.Aliases = []configstore.RawAlias{
		{Name: "alias1", Strategy: "round_robin", Providers: []string{"does-not-exist"}},
	}
	_, errs := Build(docs, 1)
	require.NotEmpty(t, errs)
}

func TestBuild_DefaultModelMustResolve_I5(t *testing.T) {
	docs := baseDocs()
	docs.Catalog.DefaultModel = "ghost"
	_, errs := Build(docs, 1)
	require.NotEmpty(t, errs)
}

func TestBuild_DisabledModelExcludedFromLiveSet(t *testing.T) {
	docs := baseDocs()
	docs.Catalog.DisabledModels = []string{"echo"}
	docs.Catalog.DefaultModel = ""
	snap, errs := Build(docs, 1)
	require.Empty(t, errs)
	assert.NotContains(t, snap.Models, "echo")
	assert.True(t, snap.DisabledModelIDs["echo"])
}

func TestBuild_ReasoningModeAppendNormalizesToPrefix(t *testing.T) {
	docs := baseDocs()
	docs.Server.Response.ReasoningMode = "append"
	snap, errs := Build(docs, 1)
	require.Empty(t, errs)
	assert.Equal(t, configstore.ReasoningPrefix, snap.Response.ReasoningMode)
}

func TestBuild_ReloadDebounceDefaultsTo500ms(t *testing.T) {
	docs := baseDocs()
	snap, errs := Build(docs, 1)
	require.Empty(t, errs)
	assert.Equal(t, 500, snap.Server.ReloadDebounceMs)
}

func TestBuild_CollectsAllErrorsNotJustFirst(t *testing.T) {
	docs := baseDocs()
	docs.ModelFiles["echo"] = staticDoc("mismatched-id", true)
	docs.Catalog.DefaultModel = "ghost"
	_, errs := Build(docs, 1)
	require.True(t, len(errs) >= 2, "expected multiple accumulated errors, got %v", errs)
}

func TestExpandTemplates_DetectsCycle(t *testing.T) {
	templates := []configstore.RawTemplate{
		{Name: "a", RawModelDoc: configstore.RawModelDoc{Extends: []string{"b"}}},
		{Name: "b", RawModelDoc: configstore.RawModelDoc{Extends: []string{"a"}}},
	}
	_, err := expandTemplates(templates)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cycle detected")
}

func TestExpandTemplates_LaterWinsOnScalars(t *testing.T) {
	templates := []configstore.RawTemplate{
		{Name: "base", RawModelDoc: configstore.RawModelDoc{Kind: "static", Meta: &configstore.RawMeta{OwnedBy: strp("base-org")}}},
		{Name: "child", RawModelDoc: configstore.RawModelDoc{Extends: []string{"base"}, Meta: &configstore.RawMeta{OwnedBy: strp("child-org")}}},
	}
	resolved, err := expandTemplates(templates)
	require.NoError(t, err)
	assert.Equal(t, "child-org", *resolved["child"].Meta.OwnedBy)
	assert.Equal(t, "static", resolved["child"].Kind, "kind inherited from parent when not overridden")
}

func TestCompileCondition_RejectsMultiplePredicates(t *testing.T) {
	_, err := compileCondition(configstore.RawCondition{Contains: strp("a"), Equals: strp("b")})
	assert.Error(t, err)
}

func TestCompileCondition_RegexFlagRestriction(t *testing.T) {
	_, err := compileCondition(configstore.RawCondition{Regex: strp("/foo/g")})
	assert.Error(t, err, "only the i flag is supported")

	c, err := compileCondition(configstore.RawCondition{Regex: strp("/foo/i")})
	require.NoError(t, err)
	assert.True(t, c.Regex.MatchString("FOO"))
}
