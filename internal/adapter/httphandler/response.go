package httphandler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
)

const maxRequestBody = 1 << 20

var validate = validator.New(validator.WithRequiredStructEnabled())

// decodeJSON reads a single JSON object into v and validates it.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid JSON data: %w", err)
	}
	return validate.Struct(v)
}

func writeJSON(w http.ResponseWriter, status int, v any, log *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("failed to write response body", "err", err)
	}
}

func writeError(
	w http.ResponseWriter, status int, msg string, log *slog.Logger, details ...string,
) {
	writeJSON(w, status, ErrorResponse{Error: msg, Details: details}, log)
}

// writeBadRequest reports decoding and validation failures.
func writeBadRequest(w http.ResponseWriter, err error, log *slog.Logger) {
	log.Warn("bad request", "err", err)

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		details := make([]string, len(verrs))
		for i, fe := range verrs {
			details[i] = fmt.Sprintf("%s: failed on %q", fe.Field(), fe.Tag())
		}
		writeError(w, http.StatusBadRequest, "validation failed", log, details...)
		return
	}
	writeError(w, http.StatusBadRequest, "invalid request", log, err.Error())
}
