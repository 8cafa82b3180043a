package catalogresolver

import (
	"fmt"

	"github.com/mockllm/mockllm/internal/configstore"
)

// buildModel converts one fully-merged-and-defaulted RawModelDoc into its
// frozen runtime Model, validating the kind-specific body shape (I2, I3,
// regex flags, weight coercion) along the way. All errors for this model
// are collected and returned together.
func buildModel(doc configstore.RawModelDoc) (*configstore.Model, []string) {
	var errs []string

	m := &configstore.Model{ID: doc.ID}
	if doc.Meta != nil {
		if doc.Meta.OwnedBy != nil {
			m.OwnedBy = *doc.Meta.OwnedBy
		}
		if doc.Meta.Created != nil {
			m.Created = *doc.Meta.Created
		}
		if doc.Meta.Description != nil {
			m.Description = *doc.Meta.Description
		}
		m.Tags = doc.Meta.Tags
	}

	switch doc.Kind {
	case "static":
		m.Kind = configstore.KindStatic
		body, bodyErrs := buildStaticBody(doc.Static)
		errs = append(errs, bodyErrs...)
		m.Static = body
	case "script":
		m.Kind = configstore.KindScript
		body, bodyErrs := buildScriptBody(doc.Script)
		errs = append(errs, bodyErrs...)
		m.Script = body
	case "interactive":
		m.Kind = configstore.KindInteractive
		body, bodyErrs := buildInteractiveBody(doc.Interactive)
		errs = append(errs, bodyErrs...)
		m.Interactive = body
	case "":
		errs = append(errs, "missing kind")
	default:
		errs = append(errs, fmt.Sprintf("unknown kind %q", doc.Kind))
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return m, nil
}

func buildStaticBody(raw *configstore.RawStaticBody) (*configstore.StaticBody, []string) {
	var errs []string
	if raw == nil {
		return nil, []string{"static: body missing"}
	}

	modelPick := configstore.PickRoundRobin
	if raw.Pick != nil {
		p := configstore.PickStrategy(*raw.Pick)
		if !validPick(p) {
			errs = append(errs, fmt.Sprintf("static.pick: invalid value %q", *raw.Pick))
		} else {
			modelPick = p
		}
	}

	chunk := 1
	if raw.StreamChunkChars != nil {
		chunk = *raw.StreamChunkChars
	}
	if chunk < 1 {
		errs = append(errs, "static.stream_chunk_chars must be >= 1")
	}

	if len(raw.Rules) == 0 {
		errs = append(errs, "static.rules must be non-empty")
		return nil, errs
	}

	var rules []*configstore.Rule
	defaultCount := 0
	for i, rr := range raw.Rules {
		rule, ruleErrs := buildRule(i, rr, modelPick)
		for _, e := range ruleErrs {
			errs = append(errs, e)
		}
		if rule == nil {
			continue
		}
		if rule.Default {
			defaultCount++
		}
		rules = append(rules, rule)
	}
	if defaultCount != 1 {
		errs = append(errs, fmt.Sprintf("static.rules must contain exactly one default rule, found %d (I2)", defaultCount))
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return &configstore.StaticBody{Pick: modelPick, StreamChunkChars: chunk, Rules: rules}, nil
}

func buildRule(index int, rr configstore.RawRule, modelPick configstore.PickStrategy) (*configstore.Rule, []string) {
	var errs []string

	isDefault := rr.Default != nil && *rr.Default
	if isDefault && rr.When != nil {
		errs = append(errs, fmt.Sprintf("rule[%d]: default rule must not have a \"when\" (I2)", index))
	}

	group, err := compileConditionGroup(rr.When)
	if err != nil {
		errs = append(errs, fmt.Sprintf("rule[%d]: %s", index, err))
	}
	if !isDefault {
		if rr.When == nil || (len(rr.When.Any) == 0 && len(rr.When.All) == 0 && len(rr.When.None) == 0) {
			errs = append(errs, fmt.Sprintf("rule[%d]: non-default rule must have at least one condition (I3)", index))
		}
	}

	pick := modelPick
	if rr.Pick != nil {
		p := configstore.PickStrategy(*rr.Pick)
		if !validPick(p) {
			errs = append(errs, fmt.Sprintf("rule[%d].pick: invalid value %q", index, *rr.Pick))
		} else {
			pick = p
		}
	}

	if len(rr.Replies) == 0 {
		errs = append(errs, fmt.Sprintf("rule[%d]: replies must be non-empty", index))
	}
	var replies []configstore.Reply
	for _, rep := range rr.Replies {
		weight := 1
		if rep.Weight != nil {
			weight = *rep.Weight
		}
		if weight <= 0 {
			weight = 1
		}
		reasoning := ""
		if rep.Reasoning != nil {
			reasoning = *rep.Reasoning
		}
		replies = append(replies, configstore.Reply{Content: rep.Content, Reasoning: reasoning, Weight: weight})
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return &configstore.Rule{Default: isDefault, Pick: pick, When: group, Replies: replies}, nil
}

func buildScriptBody(raw *configstore.RawScriptBody) (*configstore.ScriptBody, []string) {
	var errs []string
	if raw == nil || raw.File == nil || *raw.File == "" {
		return nil, []string{"script.file is required"}
	}
	timeout := 1000
	if raw.TimeoutMs != nil {
		timeout = *raw.TimeoutMs
	}
	if timeout < 1 {
		errs = append(errs, "script.timeout_ms must be >= 1")
	}
	chunk := 1
	if raw.StreamChunkChars != nil {
		chunk = *raw.StreamChunkChars
	}
	if chunk < 1 {
		errs = append(errs, "script.stream_chunk_chars must be >= 1")
	}
	initFile := ""
	if raw.InitFile != nil {
		initFile = *raw.InitFile
	}
	if len(errs) > 0 {
		return nil, errs
	}
	return &configstore.ScriptBody{File: *raw.File, InitFile: initFile, TimeoutMs: timeout, StreamChunkChars: chunk}, nil
}

func buildInteractiveBody(raw *configstore.RawInteractiveBody) (*configstore.InteractiveBody, []string) {
	var errs []string
	if raw == nil || raw.FallbackText == nil || *raw.FallbackText == "" {
		return nil, []string{"interactive.fallback_text is required and must be non-empty"}
	}
	timeout := 30000
	if raw.TimeoutMs != nil {
		timeout = *raw.TimeoutMs
	}
	chunk := 1
	if raw.StreamChunkChars != nil {
		chunk = *raw.StreamChunkChars
	}
	if chunk < 1 {
		errs = append(errs, "interactive.stream_chunk_chars must be >= 1")
	}
	fakeReasoning := ""
	if raw.FakeReasoning != nil {
		fakeReasoning = *raw.FakeReasoning
	}
	if len(errs) > 0 {
		return nil, errs
	}
	return &configstore.InteractiveBody{
		FallbackText:     *raw.FallbackText,
		FakeReasoning:    fakeReasoning,
		TimeoutMs:        timeout,
		StreamChunkChars: chunk,
	}, nil
}

func validPick(p configstore.PickStrategy) bool {
	switch p {
	case configstore.PickRoundRobin, configstore.PickRandom, configstore.PickWeighted:
		return true
	default:
		return false
	}
}
