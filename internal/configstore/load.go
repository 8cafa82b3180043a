package configstore

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Documents is the raw, unresolved view of everything read off disk under
// --config-dir. This function is a thin file-I/O and YAML/JSON parsing
// boundary; all real decision-making happens in internal/catalogresolver.
type Documents struct {
	Server     RawServerDoc
	Catalog    RawCatalogDoc
	ModelFiles map[string]RawModelFile // keyed by file stem (claimed id)
	ScriptRoot string
	ScriptFiles []string // filenames under scripts/ (the admin GET /scripts handler lists the directory itself)
}

// Load reads config.yaml, models/_catalog.yaml, models/*.yaml and lists the
// scripts directory under configDir.
func Load(configDir string) (*Documents, error) {
	docs := &Documents{
		ModelFiles: make(map[string]RawModelFile),
		ScriptRoot: filepath.Join(configDir, "scripts"),
	}

	if err := readYAML(filepath.Join(configDir, "config.yaml"), &docs.Server); err != nil {
		return nil, fmt.Errorf("read config.yaml: %w", err)
	}

	catalogPath := filepath.Join(configDir, "models", "_catalog.yaml")
	if err := readYAML(catalogPath, &docs.Catalog); err != nil {
		return nil, fmt.Errorf("read models/_catalog.yaml: %w", err)
	}

	modelsDir := filepath.Join(configDir, "models")
	entries, err := os.ReadDir(modelsDir)
	if err != nil {
		return nil, fmt.Errorf("read models dir: %w", err)
	}
	for _, ent := range entries {
		if ent.IsDir() {
			continue
		}
		name := ent.Name()
		if name == "_catalog.yaml" || !isYAML(name) {
			continue
		}
		stem := stemOf(name)
		var doc RawModelFile
		if err := readYAML(filepath.Join(modelsDir, name), &doc); err != nil {
			return nil, fmt.Errorf("read models/%s: %w", name, err)
		}
		docs.ModelFiles[stem] = doc
	}

	if scriptEntries, err := os.ReadDir(docs.ScriptRoot); err == nil {
		for _, ent := range scriptEntries {
			if ent.IsDir() {
				continue
			}
			docs.ScriptFiles = append(docs.ScriptFiles, ent.Name())
		}
	}

	return docs, nil
}

func readYAML(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, out)
}

func isYAML(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}

func stemOf(name string) string {
	ext := filepath.Ext(name)
	return strings.TrimSuffix(name, ext)
}

// ReadScript reads a script source file by name relative to the scripts
// root. Used by the scripting engine and the admin script CRUD endpoints.
func ReadScript(scriptRoot, name string) (string, error) {
	data, err := os.ReadFile(filepath.Join(scriptRoot, name))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// WriteScript writes a script source file by name relative to the scripts
// root, used by the admin PUT /scripts/{name} endpoint.
func WriteScript(scriptRoot, name, content string) error {
	if err := os.MkdirAll(scriptRoot, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(scriptRoot, name), []byte(content), 0o644)
}

// DeleteScript removes a script source file, used by the admin
// DELETE /scripts/{name} endpoint.
func DeleteScript(scriptRoot, name string) error {
	return os.Remove(filepath.Join(scriptRoot, name))
}
