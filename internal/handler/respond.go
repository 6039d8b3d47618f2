package handler

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/vasapolrittideah/taskify-api/internal/apperror"
	"github.com/vasapolrittideah/taskify-api/internal/usecase"
)

type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError maps err onto the error taxonomy and writes the response.
// Internal failures are logged with full detail but answered with a generic
// message.
func writeError(w http.ResponseWriter, logger *zerolog.Logger, err error) {
	kind := apperror.KindOf(err)
	if kind == apperror.Internal {
		logger.Error().Err(err).Msg("request failed")
	}

	writeJSON(w, kind.HTTPStatus(), errorResponse{Success: false, Message: apperror.MessageOf(err)})
}

func writeValidationError(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Success: false, Message: message})
}

// callerIdentity extracts the authenticated caller, answering 401 itself
// when the request somehow bypassed the Authenticate middleware.
func callerIdentity(w http.ResponseWriter, r *http.Request) (usecase.Identity, bool) {
	caller, ok := IdentityFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Success: false, Message: "authentication required"})
	}
	return caller, ok
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeValidationError(w, "invalid request body")
		return false
	}
	return true
}
