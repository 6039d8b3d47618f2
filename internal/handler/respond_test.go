package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/vasapolrittideah/taskify-api/internal/usecase"
)

func TestWriteError(t *testing.T) {
	t.Parallel()

	logger := zerolog.Nop()

	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"invalid id", usecase.ErrInvalidTaskID, http.StatusBadRequest, "invalid task ID format"},
		{"not found", usecase.ErrTaskNotFound, http.StatusNotFound, "task not found"},
		{"forbidden", usecase.ErrTaskForbidden, http.StatusForbidden, "not authorized to access this task"},
		{"conflict", usecase.ErrEmailTaken, http.StatusConflict, "user with this email already exists"},
		{"unauthenticated", usecase.ErrInvalidCredentials, http.StatusUnauthorized, "invalid credentials"},
		{"internal details stay private", errors.New("mongo: socket closed"), http.StatusInternalServerError, "something went wrong"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(rec, &logger, tc.err)

			require.Equal(t, tc.wantStatus, rec.Code)
			require.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var body errorResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			require.False(t, body.Success)
			require.Equal(t, tc.wantMsg, body.Message)
		})
	}
}
