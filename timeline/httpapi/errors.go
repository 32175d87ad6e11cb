package httpapi

import (
	"errors"
	"net/http"

	jsoniter "github.com/json-iterator/go"
)

var (
	ErrUnknownKind           = errors.New("unknown entry kind")
	ErrInvalidSequenceNumber = errors.New("invalid sequence number")
)

type errorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

// writeJSONError writes a consistent JSON error payload.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	_ = jsoniter.ConfigFastest.NewEncoder(w).Encode(errorResponse{Error: msg, Code: status})
}
