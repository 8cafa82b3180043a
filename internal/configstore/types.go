// Package configstore owns the on-disk document shapes, the frozen runtime
// model table, and the atomically-swappable Snapshot (C1 in the design).
//
// Two families of types live here:
//   - Raw* types mirror the YAML documents under --config-dir exactly, with
//     every field a pointer/optional so the catalog resolver can tell
//     "absent" from "explicit zero value" while expanding templates.
//   - The non-Raw types (Model, Alias, Snapshot, ...) are the frozen,
//     fully-merged-and-validated runtime shapes every other package reads.
package configstore

// RawCondition is one predicate inside a when.any/all/none group.
type RawCondition struct {
	Contains   *string `yaml:"contains,omitempty"`
	Equals     *string `yaml:"equals,omitempty"`
	StartsWith *string `yaml:"starts_with,omitempty"`
	EndsWith   *string `yaml:"ends_with,omitempty"`
	Regex      *string `yaml:"regex,omitempty"`
	Case       *string `yaml:"case,omitempty"` // "sensitive" (default) | "insensitive"
}

// RawWhen is a rule's condition group triple.
type RawWhen struct {
	Any  []RawCondition `yaml:"any,omitempty"`
	All  []RawCondition `yaml:"all,omitempty"`
	None []RawCondition `yaml:"none,omitempty"`
}

// RawReply is one candidate reply in a rule's replies list.
type RawReply struct {
	Content   string  `yaml:"content"`
	Reasoning *string `yaml:"reasoning,omitempty"`
	Weight    *int    `yaml:"weight,omitempty"`
}

// RawRule is one entry of a static model's rules list.
type RawRule struct {
	Default  *bool      `yaml:"default,omitempty"`
	Pick     *string    `yaml:"pick,omitempty"`
	When     *RawWhen   `yaml:"when,omitempty"`
	Replies  []RawReply `yaml:"replies,omitempty"`
}

// RawStaticBody is the static model body as it appears on disk.
type RawStaticBody struct {
	Pick             *string   `yaml:"pick,omitempty"`
	StreamChunkChars *int      `yaml:"stream_chunk_chars,omitempty"`
	Rules            []RawRule `yaml:"rules,omitempty"`
}

// RawScriptBody is the script model body as it appears on disk.
type RawScriptBody struct {
	File             *string `yaml:"file,omitempty"`
	InitFile         *string `yaml:"init_file,omitempty"`
	TimeoutMs        *int    `yaml:"timeout_ms,omitempty"`
	StreamChunkChars *int    `yaml:"stream_chunk_chars,omitempty"`
}

// RawInteractiveBody is the interactive model body as it appears on disk.
type RawInteractiveBody struct {
	FallbackText     *string `yaml:"fallback_text,omitempty"`
	FakeReasoning    *string `yaml:"fake_reasoning,omitempty"`
	TimeoutMs        *int    `yaml:"timeout_ms,omitempty"`
	StreamChunkChars *int    `yaml:"stream_chunk_chars,omitempty"`
}

// RawMeta is a model's descriptive metadata block.
type RawMeta struct {
	OwnedBy     *string  `yaml:"owned_by,omitempty"`
	Created     *string  `yaml:"created,omitempty"`
	Description *string  `yaml:"description,omitempty"`
	Tags        []string `yaml:"tags,omitempty"`
}

// RawModelDoc is the mergeable shape shared by model files and templates:
// every field optional, later-wins on overlay.
type RawModelDoc struct {
	Schema      int                  `yaml:"schema,omitempty"`
	ID          string               `yaml:"id,omitempty"`
	Kind        string               `yaml:"kind,omitempty"`
	Extends     []string             `yaml:"extends,omitempty"`
	Meta        *RawMeta             `yaml:"meta,omitempty"`
	Static      *RawStaticBody       `yaml:"static,omitempty"`
	Script      *RawScriptBody       `yaml:"script,omitempty"`
	Interactive *RawInteractiveBody  `yaml:"interactive,omitempty"`
}

// RawTemplate is a named, mergeable partial model tree.
type RawTemplate struct {
	Name        string `yaml:"name"`
	RawModelDoc `yaml:",inline"`
}

// RawAlias is one entry of the catalog's aliases list.
type RawAlias struct {
	Name      string   `yaml:"name"`
	OwnedBy   string   `yaml:"owned_by,omitempty"`
	Strategy  string   `yaml:"strategy"` // round_robin | random
	Providers []string `yaml:"providers"`
	Disabled  bool     `yaml:"disabled,omitempty"`
}

// RawCatalogDefaults holds the kind-scoped fallback values injected into
// any model missing the corresponding scalar field.
type RawCatalogDefaults struct {
	OwnedBy string `yaml:"owned_by,omitempty"`
	Static  struct {
		StreamChunkChars int `yaml:"stream_chunk_chars,omitempty"`
	} `yaml:"static,omitempty"`
	Script struct {
		TimeoutMs        int `yaml:"timeout_ms,omitempty"`
		StreamChunkChars int `yaml:"stream_chunk_chars,omitempty"`
	} `yaml:"script,omitempty"`
	Interactive struct {
		TimeoutMs        int    `yaml:"timeout_ms,omitempty"`
		StreamChunkChars int    `yaml:"stream_chunk_chars,omitempty"`
		FakeReasoning    string `yaml:"fake_reasoning,omitempty"`
		FallbackText     string `yaml:"fallback_text,omitempty"`
	} `yaml:"interactive,omitempty"`
}

// RawCatalogDoc is models/_catalog.yaml.
type RawCatalogDoc struct {
	Schema         int                 `yaml:"schema"`
	DefaultModel   string              `yaml:"default_model,omitempty"`
	Defaults       RawCatalogDefaults  `yaml:"defaults"`
	Aliases        []RawAlias          `yaml:"aliases,omitempty"`
	Templates      []RawTemplate       `yaml:"templates,omitempty"`
	DisabledModels []string            `yaml:"disabled_models,omitempty"`
}

// RawServerOptions is the server block of config.yaml.
type RawServerOptions struct {
	Port             int    `yaml:"port,omitempty"`
	Auth             string `yaml:"auth,omitempty"`       // bearer token required on /v1/*, empty disables
	AdminAuth        string `yaml:"admin_auth,omitempty"` // bearer token required on /v0/*, empty disables
	ReloadDebounceMs int    `yaml:"reload_debounce_ms,omitempty"`
}

// RawResponseOptions is the response block of config.yaml.
type RawResponseOptions struct {
	ReasoningMode      string `yaml:"reasoning_mode,omitempty"` // none|prefix|field|both|append(deprecated)
	IncludeUsage       bool   `yaml:"include_usage,omitempty"`
	StreamFirstDelayMs int    `yaml:"stream_first_delay_ms,omitempty"`
}

// RawServerDoc is config.yaml in full.
type RawServerDoc struct {
	Schema   int                 `yaml:"schema,omitempty"`
	Server   RawServerOptions    `yaml:"server"`
	Response RawResponseOptions  `yaml:"response"`
}

// RawModelFile is one models/<id>.yaml document: the mergeable doc plus the
// file-stem-derived identity check happens in the resolver, not here.
type RawModelFile = RawModelDoc
