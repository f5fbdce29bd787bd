package httpx

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// MessageResponse is the body of every error and of acknowledgement replies.
type MessageResponse struct {
	Message string `json:"message"`
}

// JSON writes data as a JSON body with the given status code.
func JSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

// JSONMessage writes {"message": message} with the given status code.
func JSONMessage(w http.ResponseWriter, statusCode int, message string) {
	JSON(w, statusCode, MessageResponse{Message: message})
}
