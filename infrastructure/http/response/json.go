package response

import (
	"encoding/json"
	"net/http"
)

// ErrorBody is the body of form and rate limit failures.
type ErrorBody struct {
	Status string `json:"status"`
	Error  string `json:"error"`
}

func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)

	json.NewEncoder(w).Encode(data)
}

func OK(w http.ResponseWriter, data interface{}) {
	WriteJSON(w, http.StatusOK, data)
}

func Error(w http.ResponseWriter, statusCode int, message string) {
	WriteJSON(w, statusCode, ErrorBody{Status: "error", Error: message})
}

func BadRequest(w http.ResponseWriter, message string) {
	Error(w, http.StatusBadRequest, message)
}

func TooManyRequests(w http.ResponseWriter, message string) {
	Error(w, http.StatusTooManyRequests, message)
}

func InternalServerError(w http.ResponseWriter, message string) {
	Error(w, http.StatusInternalServerError, message)
}
