package httpapi

import (
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"gopkg.in/yaml.v3"

	"github.com/mockllm/mockllm/internal/apierror"
	"github.com/mockllm/mockllm/internal/configstore"
)

// handleAdminAuthStatus is deliberately unauthenticated: a caller needs
// to know whether to even bother sending a bearer token.
func (s *Server) handleAdminAuthStatus(w http.ResponseWriter, r *http.Request) {
	snap := s.store.Load()
	writeJSON(w, http.StatusOK, map[string]bool{"enabled": snap.Server.AdminAuth != ""})
}

type statusBody struct {
	Generation      uint64 `json:"generation"`
	BuiltAt         string `json:"built_at"`
	Models          int    `json:"models"`
	Aliases         int    `json:"aliases"`
	ScriptCacheSize int    `json:"script_cache_size"`
	UptimeSeconds   int64  `json:"uptime_seconds"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	snap := s.store.Load()
	writeJSON(w, http.StatusOK, statusBody{
		Generation:      snap.Generation,
		BuiltAt:         snap.BuiltAt.Format(time.RFC3339),
		Models:          len(snap.Models),
		Aliases:         len(snap.Aliases),
		ScriptCacheSize: snap.ScriptCache.Size(),
		UptimeSeconds:   int64(time.Since(s.started).Seconds()),
	})
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	res := s.reload.Reload()
	if len(res.Errors) > 0 {
		writeError(w, apierror.WithErrors(apierror.ReloadFailed, "reload validation failed", res.Errors))
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"reloaded": res.Reloaded})
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	snap := s.store.Load()
	doc := configstore.RawServerDoc{
		Server: configstore.RawServerOptions{
			Port:             snap.Server.Port,
			Auth:             snap.Server.Auth,
			AdminAuth:        snap.Server.AdminAuth,
			ReloadDebounceMs: snap.Server.ReloadDebounceMs,
		},
		Response: configstore.RawResponseOptions{
			ReasoningMode:      string(snap.Response.ReasoningMode),
			IncludeUsage:       snap.Response.IncludeUsage,
			StreamFirstDelayMs: snap.Response.StreamFirstDelayMs,
		},
	}
	writeNegotiated(w, r, doc)
}

func (s *Server) handlePutConfig(w http.ResponseWriter, r *http.Request) {
	var doc configstore.RawServerDoc
	if !decodeNegotiated(w, r, &doc) {
		return
	}
	if err := writeServerYAML(s.configDir, doc); err != nil {
		writeError(w, apierror.New(apierror.ConfigError, err.Error()))
		return
	}
	s.handleReload(w, r)
}

func (s *Server) handlePatchConfig(w http.ResponseWriter, r *http.Request) {
	var patch map[string]any
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, apierror.New(apierror.BadRequest, "malformed patch body: "+err.Error()))
		return
	}

	current, err := readServerYAML(s.configDir)
	if err != nil {
		writeError(w, apierror.New(apierror.ConfigError, err.Error()))
		return
	}
	applyConfigPatch(&current, patch)

	if err := writeServerYAML(s.configDir, current); err != nil {
		writeError(w, apierror.New(apierror.ConfigError, err.Error()))
		return
	}
	s.handleReload(w, r)
}

func applyConfigPatch(doc *configstore.RawServerDoc, patch map[string]any) {
	if server, ok := patch["server"].(map[string]any); ok {
		if v, ok := server["port"].(float64); ok {
			doc.Server.Port = int(v)
		}
		if v, ok := server["auth"].(string); ok {
			doc.Server.Auth = v
		}
		if v, ok := server["admin_auth"].(string); ok {
			doc.Server.AdminAuth = v
		}
		if v, ok := server["reload_debounce_ms"].(float64); ok {
			doc.Server.ReloadDebounceMs = int(v)
		}
	}
	if resp, ok := patch["response"].(map[string]any); ok {
		if v, ok := resp["reasoning_mode"].(string); ok {
			doc.Response.ReasoningMode = v
		}
		if v, ok := resp["include_usage"].(bool); ok {
			doc.Response.IncludeUsage = v
		}
		if v, ok := resp["stream_first_delay_ms"].(float64); ok {
			doc.Response.StreamFirstDelayMs = int(v)
		}
	}
}

func readServerYAML(configDir string) (configstore.RawServerDoc, error) {
	var doc configstore.RawServerDoc
	data, err := os.ReadFile(filepath.Join(configDir, "config.yaml"))
	if err != nil {
		return doc, err
	}
	err = yaml.Unmarshal(data, &doc)
	return doc, err
}

func writeServerYAML(configDir string, doc configstore.RawServerDoc) error {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(configDir, "config.yaml"), data, 0o644)
}

type modelsBundle struct {
	Catalog configstore.RawCatalogDoc           `json:"catalog" yaml:"catalog"`
	Models  map[string]configstore.RawModelFile `json:"models" yaml:"models"`
}

func (s *Server) handleGetModelsBundle(w http.ResponseWriter, r *http.Request) {
	docs, err := configstore.Load(s.configDir)
	if err != nil {
		writeError(w, apierror.New(apierror.ConfigError, err.Error()))
		return
	}
	writeNegotiated(w, r, modelsBundle{Catalog: docs.Catalog, Models: docs.ModelFiles})
}

func (s *Server) handlePutModelsBundle(w http.ResponseWriter, r *http.Request) {
	var bundle modelsBundle
	if !decodeNegotiated(w, r, &bundle) {
		return
	}

	modelsDir := filepath.Join(s.configDir, "models")
	if err := os.MkdirAll(modelsDir, 0o755); err != nil {
		writeError(w, apierror.New(apierror.ConfigError, err.Error()))
		return
	}

	catalogData, err := yaml.Marshal(bundle.Catalog)
	if err != nil {
		writeError(w, apierror.New(apierror.ConfigError, err.Error()))
		return
	}
	if err := os.WriteFile(filepath.Join(modelsDir, "_catalog.yaml"), catalogData, 0o644); err != nil {
		writeError(w, apierror.New(apierror.ConfigError, err.Error()))
		return
	}

	existing, _ := os.ReadDir(modelsDir)
	for _, ent := range existing {
		if ent.Name() != "_catalog.yaml" && !ent.IsDir() {
			_ = os.Remove(filepath.Join(modelsDir, ent.Name()))
		}
	}
	for stem, doc := range bundle.Models {
		data, err := yaml.Marshal(doc)
		if err != nil {
			writeError(w, apierror.New(apierror.ConfigError, err.Error()))
			return
		}
		if err := os.WriteFile(filepath.Join(modelsDir, stem+".yaml"), data, 0o644); err != nil {
			writeError(w, apierror.New(apierror.ConfigError, err.Error()))
			return
		}
	}
	s.handleReload(w, r)
}

func (s *Server) handleListScripts(w http.ResponseWriter, r *http.Request) {
	snap := s.store.Load()
	entries, err := os.ReadDir(snap.ScriptRoot)
	if err != nil {
		writeJSON(w, http.StatusOK, []string{})
		return
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	writeJSON(w, http.StatusOK, names)
}

func (s *Server) handleGetScript(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	snap := s.store.Load()
	content, err := configstore.ReadScript(snap.ScriptRoot, name)
	if err != nil {
		writeError(w, apierror.New(apierror.BadRequest, "script not found: "+name))
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(content))
}

func (s *Server) handlePutScript(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	snap := s.store.Load()
	body, err := readAll(r)
	if err != nil {
		writeError(w, apierror.New(apierror.BadRequest, err.Error()))
		return
	}
	if err := configstore.WriteScript(snap.ScriptRoot, name, string(body)); err != nil {
		writeError(w, apierror.New(apierror.ConfigError, err.Error()))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteScript(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	snap := s.store.Load()
	if err := configstore.DeleteScript(snap.ScriptRoot, name); err != nil {
		writeError(w, apierror.New(apierror.BadRequest, "script not found: "+name))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// writeNegotiated writes v as YAML when the client's Accept header asks
// for it, JSON otherwise.
func writeNegotiated(w http.ResponseWriter, r *http.Request, v any) {
	if wantsYAML(r) {
		data, err := yaml.Marshal(v)
		if err != nil {
			writeError(w, apierror.New(apierror.Internal, err.Error()))
			return
		}
		w.Header().Set("Content-Type", "application/yaml")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func decodeNegotiated(w http.ResponseWriter, r *http.Request, v any) bool {
	body, err := readAll(r)
	if err != nil {
		writeError(w, apierror.New(apierror.BadRequest, err.Error()))
		return false
	}
	ct := r.Header.Get("Content-Type")
	if strings.Contains(ct, "yaml") {
		err = yaml.Unmarshal(body, v)
	} else {
		err = json.Unmarshal(body, v)
	}
	if err != nil {
		writeError(w, apierror.New(apierror.BadRequest, "malformed body: "+err.Error()))
		return false
	}
	return true
}

func wantsYAML(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "yaml")
}

func readAll(r *http.Request) ([]byte, error) {
	defer r.Body.Close()
	return io.ReadAll(r.Body)
}
