package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mockllm/mockllm/internal/apierror"
	"github.com/mockllm/mockllm/internal/interactive"
)

type pendingBody struct {
	ID        string   `json:"id"`
	Model     string   `json:"model"`
	Messages  []string `json:"messages"`
	Stream    bool     `json:"stream"`
	CreatedAt string   `json:"created_at"`
	Deadline  string   `json:"deadline"`
}

func (s *Server) handleInteractiveList(w http.ResponseWriter, r *http.Request) {
	pending := s.broker.List()
	out := make([]pendingBody, 0, len(pending))
	for _, p := range pending {
		var msgs []string
		for _, m := range p.Messages {
			msgs = append(msgs, m.Role+": "+m.Content)
		}
		out = append(out, pendingBody{
			ID: p.ID, Model: p.Model, Messages: msgs, Stream: p.Stream,
			CreatedAt: p.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
			Deadline:  p.Deadline.Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

type replyRequest struct {
	Content      string `json:"content"`
	Reasoning    string `json:"reasoning,omitempty"`
	FinishReason string `json:"finish_reason,omitempty"`
}

func (s *Server) handleInteractiveReply(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var body replyRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, apierror.New(apierror.BadRequest, "malformed reply body: "+err.Error()))
		return
	}
	ok := s.broker.Reply(id, interactive.Reply{Content: body.Content, Reasoning: body.Reasoning, FinishReason: body.FinishReason})
	if !ok {
		writeError(w, apierror.New(apierror.BadRequest, "no pending request with id \""+id+"\""))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleInteractiveStream serves the operator-facing broadcast feed. A
// late subscriber sees only events from its subscription onward — no
// replay.
func (s *Server) handleInteractiveStream(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	flusher, _ := w.(http.Flusher)
	events, unsubscribe := s.broker.Subscribe()
	defer unsubscribe()

	for {
		select {
		case ev := <-events:
			if err := interactive.WriteEvent(w, ev); err != nil {
				return
			}
			if flusher != nil {
				flusher.Flush()
			}
		case <-r.Context().Done():
			return
		}
	}
}
