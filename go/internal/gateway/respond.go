package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/mcdev12/courtclock/go/internal/score"
	"github.com/mcdev12/courtclock/go/internal/session"
)

// ErrInvalidKey is reported when an activation key does not match the device.
var ErrInvalidKey = errors.New("invalid activation key")

var errBadRequest = errors.New("bad request")

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to write response")
	}
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), errorResponse{Error: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, score.ErrUnknownSide),
		errors.Is(err, score.ErrInvalidDelta),
		errors.Is(err, session.ErrInvalidSettings),
		errors.Is(err, session.ErrEmptyProfileName):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrProfileNotFound),
		errors.Is(err, session.ErrMatchNotFound):
		return http.StatusNotFound
	case errors.Is(err, session.ErrActivationRequired):
		return http.StatusForbidden
	case errors.Is(err, ErrInvalidKey):
		return http.StatusUnprocessableEntity
	case errors.Is(err, session.ErrClosed):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// decode reads a JSON body into v.
func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}
