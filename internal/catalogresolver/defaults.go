package catalogresolver

import "github.com/mockllm/mockllm/internal/configstore"

// injectDefaults fills any still-absent scalar field under the merged
// doc's kind-matching body from the catalog's kind-scoped defaults.
// Defaults never override an explicit value.
func injectDefaults(doc *configstore.RawModelDoc, defaults configstore.RawCatalogDefaults) {
	if doc.Meta == nil {
		doc.Meta = &configstore.RawMeta{}
	}
	if doc.Meta.OwnedBy == nil && defaults.OwnedBy != "" {
		v := defaults.OwnedBy
		doc.Meta.OwnedBy = &v
	}

	switch doc.Kind {
	case "static":
		if doc.Static == nil {
			doc.Static = &configstore.RawStaticBody{}
		}
		if doc.Static.StreamChunkChars == nil && defaults.Static.StreamChunkChars > 0 {
			v := defaults.Static.StreamChunkChars
			doc.Static.StreamChunkChars = &v
		}
	case "script":
		if doc.Script == nil {
			doc.Script = &configstore.RawScriptBody{}
		}
		if doc.Script.TimeoutMs == nil && defaults.Script.TimeoutMs > 0 {
			v := defaults.Script.TimeoutMs
			doc.Script.TimeoutMs = &v
		}
		if doc.Script.StreamChunkChars == nil && defaults.Script.StreamChunkChars > 0 {
			v := defaults.Script.StreamChunkChars
			doc.Script.StreamChunkChars = &v
		}
	case "interactive":
		if doc.Interactive == nil {
			doc.Interactive = &configstore.RawInteractiveBody{}
		}
		if doc.Interactive.TimeoutMs == nil && defaults.Interactive.TimeoutMs > 0 {
			v := defaults.Interactive.TimeoutMs
			doc.Interactive.TimeoutMs = &v
		}
		if doc.Interactive.StreamChunkChars == nil && defaults.Interactive.StreamChunkChars > 0 {
			v := defaults.Interactive.StreamChunkChars
			doc.Interactive.StreamChunkChars = &v
		}
		if doc.Interactive.FakeReasoning == nil && defaults.Interactive.FakeReasoning != "" {
			v := defaults.Interactive.FakeReasoning
			doc.Interactive.FakeReasoning = &v
		}
		if doc.Interactive.FallbackText == nil && defaults.Interactive.FallbackText != "" {
			v := defaults.Interactive.FallbackText
			doc.Interactive.FallbackText = &v
		}
	}
}
