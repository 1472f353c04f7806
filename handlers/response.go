package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"flockr-server/apperr"
	"flockr-server/middleware"
)

type errorResponse struct {
	Code    int    `json:"code"`
	Name    string `json:"name"`
	Message string `json:"message"`
}

var empty = struct{}{}

func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindInput:
		return http.StatusBadRequest
	case apperr.KindAccess:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError reports err as {"code","name","message"}. Internal errors
// are logged and their cause is not sent to the client.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := apperr.KindOf(err)
	status := statusFor(kind)

	message := "Internal server error"
	var e *apperr.Error
	if kind == apperr.KindInternal {
		log.Printf("[HTTP] %s %s failed for user %d: %v", r.Method, r.URL.Path, middleware.GetUserID(r), err)
	} else if errors.As(err, &e) {
		message = e.Message
	}

	writeJSON(w, status, errorResponse{Code: status, Name: string(kind), Message: message})
}

func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, r, apperr.Input("Invalid request body"))
		return false
	}
	return true
}

// queryInt reads an integer query parameter, writing an input error if
// it is missing or malformed.
func queryInt(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	value, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		writeError(w, r, apperr.Input("Invalid "+name))
		return 0, false
	}
	return value, true
}
