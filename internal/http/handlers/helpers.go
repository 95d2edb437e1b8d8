package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/slot-matcher/internal/auth"
	"github.com/mauv0809/slot-matcher/internal/matching"
	"github.com/mauv0809/slot-matcher/internal/settings"
	"github.com/mauv0809/slot-matcher/internal/slot"
	"github.com/mauv0809/slot-matcher/internal/team"
	"github.com/mauv0809/slot-matcher/internal/validation"
)

// ContextKey is a custom type to avoid key collisions in context.
type ContextKey string

const (
	DryRunKey ContextKey = "dryRun"
	ClaimsKey ContextKey = "claims"

	internalErrorMessage = "내부 서버 오류"
	maxBodyBytes         = 1 << 20
)

var errBadRequest = errors.New("bad request")

// IsDryRunFromContext is a helper to safely retrieve the dry_run flag from the request context.
func IsDryRunFromContext(r *http.Request) bool {
	dryRun, ok := r.Context().Value(DryRunKey).(bool)
	return ok && dryRun
}

// ClaimsFromContext returns the admin claims set by the auth middleware.
func ClaimsFromContext(ctx context.Context) (*auth.Claims, bool) {
	c, ok := ctx.Value(ClaimsKey).(*auth.Claims)
	return c, ok
}

// Response is the envelope every JSON endpoint answers with.
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("Failed to write response", "error", err)
	}
}

func respondOK(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, Response{Success: true, Data: data})
}

func respondError(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		log.Error("Request failed", "error", err)
		writeJSON(w, status, Response{Error: internalErrorMessage, Details: err.Error()})
		return
	}
	writeJSON(w, status, Response{Error: err.Error()})
}

// StatusFor maps domain errors onto HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, validation.ErrInvalid),
		errors.Is(err, slot.ErrInvalidDate),
		errors.Is(err, slot.ErrInvalidTime),
		errors.Is(err, slot.ErrInvalidConfig),
		errors.Is(err, team.ErrInvalidTeam),
		errors.Is(err, settings.ErrUnknownKey),
		errors.Is(err, settings.ErrInvalidValue),
		errors.Is(err, matching.ErrPreferencesIncomplete),
		errors.Is(err, matching.ErrInvalidTransition),
		errors.Is(err, matching.ErrAwaitingAnswers):
		return http.StatusBadRequest
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, team.ErrNotFound),
		errors.Is(err, matching.ErrNoHost),
		errors.Is(err, matching.ErrNoMatch),
		errors.Is(err, matching.ErrTeamNotInSlot):
		return http.StatusNotFound
	case errors.Is(err, matching.ErrInFlight),
		errors.Is(err, matching.ErrSlotUnavailable),
		errors.Is(err, team.ErrHostExists):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// decode reads a JSON body into v, rejecting anything that is not a POST.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, Response{Error: "Method not allowed"})
		return false
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v); err != nil {
		respondError(w, fmt.Errorf("%w: invalid JSON: %v", errBadRequest, err))
		return false
	}
	return true
}

func required(fields ...string) error {
	return fmt.Errorf("%w: %s required", errBadRequest, strings.Join(fields, " and "))
}
