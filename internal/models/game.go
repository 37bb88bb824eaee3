package models

import "time"

// GameStatus tracks where a game is in its lifecycle
type GameStatus string

const (
	StatusWaiting    GameStatus = "WAITING"
	StatusInProgress GameStatus = "IN_PROGRESS"
	StatusFinished   GameStatus = "FINISHED"
	StatusCancelled  GameStatus = "CANCELLED"
)

// IsValid reports whether s is a known game status
func (s GameStatus) IsValid() bool {
	switch s {
	case StatusWaiting, StatusInProgress, StatusFinished, StatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether no further transitions are allowed from s
func (s GameStatus) IsTerminal() bool {
	return s == StatusFinished || s == StatusCancelled
}

// CanTransitionTo reports whether the status machine allows moving from s to next.
// Transitions only run forward: WAITING -> IN_PROGRESS -> FINISHED, and
// WAITING -> CANCELLED for games abandoned before the start.
func (s GameStatus) CanTransitionTo(next GameStatus) bool {
	switch s {
	case StatusWaiting:
		return next == StatusInProgress || next == StatusCancelled
	case StatusInProgress:
		return next == StatusFinished
	}
	return false
}

// Game represents a single play session
type Game struct {
	ID           string
	Code         string
	Status       GameStatus
	CurrentRound int
	HostUserID   int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// GameDetail combines a game with its seated players, and optionally its move history
type GameDetail struct {
	Game    Game
	Players []Player
	Moves   []Move
}
