package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mockllm/mockllm/internal/apierror"
	"github.com/mockllm/mockllm/internal/modelrouter"
	"github.com/mockllm/mockllm/internal/wire"
)

func (s *Server) handleListModels(w http.ResponseWriter, r *http.Request) {
	snap := s.store.Load()
	listings := modelrouter.ListModels(snap)

	data := make([]wire.ModelInfo, 0, len(listings))
	for _, l := range listings {
		data = append(data, wire.ModelInfo{ID: l.ID, Object: "model", Created: snap.BuiltAt.Unix(), OwnedBy: l.OwnedBy})
	}
	writeJSON(w, http.StatusOK, wire.ModelList{Object: "list", Data: data})
}

func (s *Server) handleGetModel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	snap := s.store.Load()
	for _, l := range modelrouter.ListModels(snap) {
		if l.ID == id {
			writeJSON(w, http.StatusOK, wire.ModelInfo{ID: l.ID, Object: "model", Created: snap.BuiltAt.Unix(), OwnedBy: l.OwnedBy})
			return
		}
	}
	writeError(w, apierror.New(apierror.ModelNotFound, "model \""+id+"\" not found"))
}
