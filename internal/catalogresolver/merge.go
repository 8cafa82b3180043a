// Package catalogresolver implements C2: template expansion, deep merge,
// default injection and invariant validation that turns the raw on-disk
// documents into a frozen configstore.Snapshot.
package catalogresolver

import "github.com/mockllm/mockllm/internal/configstore"

// mergeModelDoc overlays overlay onto base: scalars and object fields are
// later-wins, arrays are replaced wholesale.
func mergeModelDoc(base, overlay configstore.RawModelDoc) configstore.RawModelDoc {
	out := base
	if overlay.Schema != 0 {
		out.Schema = overlay.Schema
	}
	if overlay.ID != "" {
		out.ID = overlay.ID
	}
	if overlay.Kind != "" {
		out.Kind = overlay.Kind
	}
	if overlay.Extends != nil {
		out.Extends = overlay.Extends
	}
	out.Meta = mergeMeta(base.Meta, overlay.Meta)
	out.Static = mergeStatic(base.Static, overlay.Static)
	out.Script = mergeScript(base.Script, overlay.Script)
	out.Interactive = mergeInteractive(base.Interactive, overlay.Interactive)
	return out
}

func mergeMeta(base, overlay *configstore.RawMeta) *configstore.RawMeta {
	if base == nil && overlay == nil {
		return nil
	}
	merged := configstore.RawMeta{}
	if base != nil {
		merged = *base
	}
	if overlay != nil {
		if overlay.OwnedBy != nil {
			merged.OwnedBy = overlay.OwnedBy
		}
		if overlay.Created != nil {
			merged.Created = overlay.Created
		}
		if overlay.Description != nil {
			merged.Description = overlay.Description
		}
		if overlay.Tags != nil {
			merged.Tags = overlay.Tags
		}
	}
	return &merged
}

func mergeStatic(base, overlay *configstore.RawStaticBody) *configstore.RawStaticBody {
	if base == nil && overlay == nil {
		return nil
	}
	merged := configstore.RawStaticBody{}
	if base != nil {
		merged = *base
	}
	if overlay != nil {
		if overlay.Pick != nil {
			merged.Pick = overlay.Pick
		}
		if overlay.StreamChunkChars != nil {
			merged.StreamChunkChars = overlay.StreamChunkChars
		}
		if overlay.Rules != nil {
			merged.Rules = overlay.Rules
		}
	}
	return &merged
}

func mergeScript(base, overlay *configstore.RawScriptBody) *configstore.RawScriptBody {
	if base == nil && overlay == nil {
		return nil
	}
	merged := configstore.RawScriptBody{}
	if base != nil {
		merged = *base
	}
	if overlay != nil {
		if overlay.File != nil {
			merged.File = overlay.File
		}
		if overlay.InitFile != nil {
			merged.InitFile = overlay.InitFile
		}
		if overlay.TimeoutMs != nil {
			merged.TimeoutMs = overlay.TimeoutMs
		}
		if overlay.StreamChunkChars != nil {
			merged.StreamChunkChars = overlay.StreamChunkChars
		}
	}
	return &merged
}

func mergeInteractive(base, overlay *configstore.RawInteractiveBody) *configstore.RawInteractiveBody {
	if base == nil && overlay == nil {
		return nil
	}
	merged := configstore.RawInteractiveBody{}
	if base != nil {
		merged = *base
	}
	if overlay != nil {
		if overlay.FallbackText != nil {
			merged.FallbackText = overlay.FallbackText
		}
		if overlay.FakeReasoning != nil {
			merged.FakeReasoning = overlay.FakeReasoning
		}
		if overlay.TimeoutMs != nil {
			merged.TimeoutMs = overlay.TimeoutMs
		}
		if overlay.StreamChunkChars != nil {
			merged.StreamChunkChars = overlay.StreamChunkChars
		}
	}
	return &merged
}
