package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/mockllm/mockllm/internal/apierror"
)

func writeJSONError(w http.ResponseWriter, err *apierror.Error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.Kind.Status())
	_ = json.NewEncoder(w).Encode(apierror.ToBody(err))
}
