package handlers

import (
	"time"

	"shadowchase/internal/models"
)

// Wire representations of the domain types. Kept separate from the models
// so the JSON shape is an explicit contract rather than whatever the
// structs happen to look like.

type userResponse struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
}

type authResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

type playerResponse struct {
	ID       int64  `json:"id"`
	GameID   string `json:"gameId"`
	UserID   int64  `json:"userId"`
	Username string `json:"username,omitempty"`
	Role     string `json:"role"`
	Color    string `json:"color"`
	IsActive bool   `json:"isActive"`
	Location *int   `json:"location"`
}

type moveResponse struct {
	ID            int64     `json:"id"`
	GameID        string    `json:"gameId"`
	PlayerID      int64     `json:"playerId"`
	Round         int       `json:"round"`
	FromLocation  int       `json:"fromLocation"`
	ToLocation    int       `json:"toLocation"`
	TransportType string    `json:"transportType"`
	CreatedAt     time.Time `json:"createdAt"`
}

type gameResponse struct {
	ID           string           `json:"id"`
	Code         string           `json:"code"`
	Status       string           `json:"status"`
	CurrentRound int              `json:"currentRound"`
	HostUserID   int64            `json:"hostUserId"`
	Players      []playerResponse `json:"players"`
	Moves        []moveResponse   `json:"moves,omitempty"`
}

func toUserResponse(u *models.User) userResponse {
	return userResponse{ID: u.ID, Email: u.Email, Username: u.Username}
}

func toPlayerResponse(p *models.Player) playerResponse {
	return playerResponse{
		ID:       p.ID,
		GameID:   p.GameID,
		UserID:   p.UserID,
		Username: p.Username,
		Role:     string(p.Role),
		Color:    string(p.Color),
		IsActive: p.IsActive,
		Location: p.Location,
	}
}

func toMoveResponse(m *models.Move) moveResponse {
	return moveResponse{
		ID:            m.ID,
		GameID:        m.GameID,
		PlayerID:      m.PlayerID,
		Round:         m.Round,
		FromLocation:  m.FromLocation,
		ToLocation:    m.ToLocation,
		TransportType: string(m.TransportType),
		CreatedAt:     m.CreatedAt,
	}
}

func toGameResponse(detail *models.GameDetail) gameResponse {
	resp := gameResponse{
		ID:           detail.Game.ID,
		Code:         detail.Game.Code,
		Status:       string(detail.Game.Status),
		CurrentRound: detail.Game.CurrentRound,
		HostUserID:   detail.Game.HostUserID,
		Players:      make([]playerResponse, 0, len(detail.Players)),
	}
	for i := range detail.Players {
		resp.Players = append(resp.Players, toPlayerResponse(&detail.Players[i]))
	}
	for i := range detail.Moves {
		resp.Moves = append(resp.Moves, toMoveResponse(&detail.Moves[i]))
	}
	return resp
}
