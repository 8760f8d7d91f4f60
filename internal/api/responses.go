package api

import (
	"encoding/json"
	"net/http"

	"github.com/forPelevin/ytclip/internal/types"
)

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// ErrorResponse is the error body. Stage, Kind and InputFault are set for
// pipeline failures only.
type ErrorResponse struct {
	Error      string `json:"error"`
	Stage      string `json:"stage,omitempty"`
	Kind       string `json:"kind,omitempty"`
	InputFault bool   `json:"input_fault"`
}

func WriteError(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, ErrorResponse{Error: msg, InputFault: status >= 400 && status < 500 && status != http.StatusTooManyRequests})
}

// WritePipelineError maps caller-fixable failures to 422 and environment
// failures to 502.
func WritePipelineError(w http.ResponseWriter, pe *types.PipelineError) {
	status := http.StatusBadGateway
	if pe.InputFault {
		status = http.StatusUnprocessableEntity
	}
	WriteJSON(w, status, ErrorResponse{
		Error:      pe.Error(),
		Stage:      string(pe.Stage),
		Kind:       string(pe.Kind),
		InputFault: pe.InputFault,
	})
}
