package errors

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse is the error envelope every endpoint uses.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

func Write(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func WriteDetail(w http.ResponseWriter, status int, detail string) {
	Write(w, status, ErrorResponse{Detail: detail})
}
