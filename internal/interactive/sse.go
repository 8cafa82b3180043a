package interactive

import (
	"encoding/json"
	"fmt"
	"io"
)

// WriteEvent writes one SSE frame for ev: a single JSON object on one
// `data: ` line, followed by a blank line.
func WriteEvent(w io.Writer, ev Event) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "data: %s\n\n", body)
	return err
}
