package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"shadowchase/internal/models"
	"shadowchase/internal/service"
)

type GameHandler struct {
	sessions *service.SessionService
	ledger   *service.LedgerService
	invites  *service.InviteService
	logger   *zap.Logger
}

func NewGameHandler(sessions *service.SessionService, ledger *service.LedgerService, invites *service.InviteService, logger *zap.Logger) *GameHandler {
	return &GameHandler{
		sessions: sessions,
		ledger:   ledger,
		invites:  invites,
		logger:   logger,
	}
}

type moveRequest struct {
	FromLocation  int    `json:"fromLocation"`
	ToLocation    int    `json:"toLocation"`
	TransportType string `json:"transportType"`
}

type inviteRequest struct {
	Email string `json:"email"`
}

// CreateGame handles POST /api/games. The caller becomes the host and is
// seated as Mr. X.
func (h *GameHandler) CreateGame(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	detail, err := h.sessions.CreateGame(user.ID)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("game created",
		zap.String("game_id", detail.Game.ID),
		zap.String("code", detail.Game.Code),
		zap.Int64("host_user_id", user.ID))

	respondJSON(w, http.StatusCreated, toGameResponse(detail))
}

// JoinGame handles POST /api/games/{code}/join
func (h *GameHandler) JoinGame(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	player, err := h.sessions.JoinGame(r.PathValue("code"), user.ID)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusCreated, toPlayerResponse(player))
}

// GetGame handles GET /api/games/{id}
func (h *GameHandler) GetGame(w http.ResponseWriter, r *http.Request) {
	detail, err := h.sessions.GetGame(r.PathValue("id"))
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	moves, err := h.ledger.ListMoves(detail.Game.ID)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	detail.Moves = moves

	respondJSON(w, http.StatusOK, toGameResponse(detail))
}

// StartGame handles POST /api/games/{id}/start
func (h *GameHandler) StartGame(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	detail, err := h.sessions.StartGame(r.PathValue("id"), user.ID)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("game started",
		zap.String("game_id", detail.Game.ID),
		zap.Int("players", len(detail.Players)))

	respondJSON(w, http.StatusOK, toGameResponse(detail))
}

// CancelGame handles POST /api/games/{id}/cancel
func (h *GameHandler) CancelGame(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	if err := h.sessions.CancelGame(r.PathValue("id"), user.ID); err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": string(models.StatusCancelled)})
}

// EndGame handles POST /api/games/{id}/end
func (h *GameHandler) EndGame(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	if err := h.sessions.EndGame(r.PathValue("id"), user.ID); err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": string(models.StatusFinished)})
}

// LeaveGame handles POST /api/games/{id}/leave
func (h *GameHandler) LeaveGame(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	if err := h.sessions.LeaveGame(r.PathValue("id"), user.ID); err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RecordMove handles POST /api/games/{id}/move
func (h *GameHandler) RecordMove(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	var req moveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	move, err := h.ledger.RecordMove(r.PathValue("id"), user.ID,
		req.FromLocation, req.ToLocation, models.TransportType(req.TransportType))
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusCreated, toMoveResponse(move))
}

// ListMoves handles GET /api/games/{id}/moves
func (h *GameHandler) ListMoves(w http.ResponseWriter, r *http.Request) {
	moves, err := h.ledger.ListMoves(r.PathValue("id"))
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	resp := make([]moveResponse, 0, len(moves))
	for i := range moves {
		resp = append(resp, toMoveResponse(&moves[i]))
	}
	respondJSON(w, http.StatusOK, resp)
}

// InvitePlayer handles POST /api/games/{id}/invite
func (h *GameHandler) InvitePlayer(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	if !h.invites.IsEnabled() {
		respondError(w, http.StatusServiceUnavailable, "invites are not configured")
		return
	}

	var req inviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	detail, err := h.sessions.GetGame(r.PathValue("id"))
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	if detail.Game.HostUserID != user.ID {
		respondServiceError(w, h.logger, service.ErrNotHost)
		return
	}
	if detail.Game.Status != models.StatusWaiting {
		respondServiceError(w, h.logger, service.ErrGameNotWaiting)
		return
	}

	if err := h.invites.SendGameInvite(r.Context(), req.Email, user.Username, detail.Game.Code); err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("invite sent",
		zap.String("game_id", detail.Game.ID),
		zap.Int64("host_user_id", user.ID))

	w.WriteHeader(http.StatusAccepted)
}
