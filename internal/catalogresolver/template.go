package catalogresolver

import (
	"fmt"
	"strings"

	"github.com/mockllm/mockllm/internal/configstore"
)

// expandTemplates resolves every template's own extends chain (templates
// may themselves extend other templates) and returns each template's fully
// merged doc, keyed by name. Cycles fail with a path showing the loop.
func expandTemplates(templates []configstore.RawTemplate) (map[string]configstore.RawModelDoc, error) {
	byName := make(map[string]configstore.RawTemplate, len(templates))
	for _, t := range templates {
		byName[t.Name] = t
	}

	resolved := make(map[string]configstore.RawModelDoc, len(templates))

	var resolve func(name string, path []string) (configstore.RawModelDoc, error)
	resolve = func(name string, path []string) (configstore.RawModelDoc, error) {
		if doc, ok := resolved[name]; ok {
			return doc, nil
		}
		for _, p := range path {
			if p == name {
				return configstore.RawModelDoc{}, fmt.Errorf(
					"cycle detected in template extends chain: %s -> %s",
					strings.Join(path, " -> "), name)
			}
		}
		tmpl, ok := byName[name]
		if !ok {
			return configstore.RawModelDoc{}, fmt.Errorf("unknown template %q", name)
		}

		nextPath := append(append([]string{}, path...), name)
		var doc configstore.RawModelDoc
		for _, parent := range tmpl.Extends {
			parentDoc, err := resolve(parent, nextPath)
			if err != nil {
				return configstore.RawModelDoc{}, err
			}
			doc = mergeModelDoc(doc, parentDoc)
		}
		doc = mergeModelDoc(doc, tmpl.RawModelDoc)
		resolved[name] = doc
		return doc, nil
	}

	for name := range byName {
		if _, err := resolve(name, nil); err != nil {
			return nil, err
		}
	}
	return resolved, nil
}

// buildModelDoc composes a model file's extends chain (in order, later
// wins) then overlays the model's own fields last.
func buildModelDoc(stem string, file configstore.RawModelFile, templates map[string]configstore.RawModelDoc) (configstore.RawModelDoc, error) {
	var doc configstore.RawModelDoc
	for _, name := range file.Extends {
		t, ok := templates[name]
		if !ok {
			return configstore.RawModelDoc{}, fmt.Errorf("model %q extends unknown template %q", stem, name)
		}
		doc = mergeModelDoc(doc, t)
	}
	doc = mergeModelDoc(doc, file)
	return doc, nil
}
