package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/mockllm/mockllm/internal/configstore"
	"github.com/mockllm/mockllm/internal/pipeline"
)

// streamResponse writes the SSE-framed chat-completion stream: one frame
// per `data: ` line, an optional pause before the first content frame,
// then the literal "data: [DONE]\n\n" sentinel. A client disconnect is
// checked between frames via r.Context(), not just inferred from a write
// failure, since a broken connection's write error can lag well behind
// the peer actually going away.
func (s *Server) streamResponse(w http.ResponseWriter, r *http.Request, id string, created int64, model string, opts configstore.ResponseOptions, promptChars, chunkChars int, result pipeline.Result) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	flusher, _ := w.(http.Flusher)

	frames := pipeline.BuildFrames(id, created, model, opts, promptChars, chunkChars, result)
	for i, f := range frames {
		select {
		case <-r.Context().Done():
			return
		default:
		}
		if i == 1 && opts.StreamFirstDelayMs > 0 {
			time.Sleep(time.Duration(opts.StreamFirstDelayMs) * time.Millisecond)
		}
		if err := writeFrame(w, f); err != nil {
			return
		}
		if flusher != nil {
			flusher.Flush()
		}
	}
	fmt.Fprint(w, "data: [DONE]\n\n")
	if flusher != nil {
		flusher.Flush()
	}
}

func writeFrame(w http.ResponseWriter, chunk any) error {
	body, err := json.Marshal(chunk)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "data: %s\n\n", body)
	return err
}
