package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"shadowchase/internal/service"

	"go.uber.org/zap"
)

type errorResponse struct {
	Error string `json:"error"`
}

// respondJSON writes v as a JSON response
func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// respondError writes a JSON error body with the given status
func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, errorResponse{Error: msg})
}

// respondServiceError maps a service error onto an HTTP status. Known
// sentinels carry their own safe message; anything else is a storage or
// programming fault and surfaces as an opaque 500.
func respondServiceError(w http.ResponseWriter, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, service.ErrGameNotFound),
		errors.Is(err, service.ErrUserNotFound):
		respondError(w, http.StatusNotFound, err.Error())

	case errors.Is(err, service.ErrAlreadySeated),
		errors.Is(err, service.ErrGameFull),
		errors.Is(err, service.ErrEmailTaken),
		errors.Is(err, service.ErrUsernameTaken):
		respondError(w, http.StatusConflict, err.Error())

	case errors.Is(err, service.ErrGameNotJoinable),
		errors.Is(err, service.ErrGameNotInProgress),
		errors.Is(err, service.ErrGameNotWaiting),
		errors.Is(err, service.ErrNotEnoughPlayers),
		errors.Is(err, service.ErrStaleMoveOrigin),
		errors.Is(err, service.ErrInvalidMove),
		errors.Is(err, service.ErrIllegalMove),
		errors.Is(err, service.ErrValidation):
		respondError(w, http.StatusBadRequest, err.Error())

	case errors.Is(err, service.ErrPlayerNotSeated),
		errors.Is(err, service.ErrPlayerInactive),
		errors.Is(err, service.ErrNotHost):
		respondError(w, http.StatusForbidden, err.Error())

	case errors.Is(err, service.ErrInvalidCredentials):
		respondError(w, http.StatusUnauthorized, err.Error())

	case errors.Is(err, service.ErrCodeGenerationExhausted):
		logger.Error("join code space exhausted", zap.Error(err))
		respondError(w, http.StatusServiceUnavailable, err.Error())

	default:
		logger.Error("request failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "something went wrong")
	}
}
