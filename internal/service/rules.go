package service

import (
	"fmt"
	"math/rand/v2"

	"shadowchase/internal/models"
)

// MoveValidator is the extension point for board-rule enforcement: whether
// an edge of the given transport type connects the two locations, whether
// the player holds a matching ticket, and whose turn it is. The ledger
// consults it before committing anything.
type MoveValidator interface {
	ValidateMove(game *models.Game, player *models.Player, from, to int, transport models.TransportType) error
}

// WinConditionEvaluator is the extension point for deciding when a game is
// over (Mr. X caught, detectives stuck, round limit reached). Consulted
// after every accepted move.
type WinConditionEvaluator interface {
	GameOver(game *models.Game, players []models.Player, lastMove *models.Move) bool
}

// PermitAllMoves accepts every move. It stands in until a board graph is
// wired up; session admission and origin checks still apply.
type PermitAllMoves struct{}

func (PermitAllMoves) ValidateMove(*models.Game, *models.Player, int, int, models.TransportType) error {
	return nil
}

// NoAutomaticWin never ends a game on its own; the host ends play explicitly.
type NoAutomaticWin struct{}

func (NoAutomaticWin) GameOver(*models.Game, []models.Player, *models.Move) bool {
	return false
}

// startingLocations are the classic start cards. Every player draws a
// distinct one when the game starts.
var startingLocations = []int{
	13, 26, 29, 34, 50, 53, 91, 94, 103,
	112, 117, 132, 138, 141, 155, 174, 197, 198,
}

// drawStartingLocations deals n distinct starting positions
func drawStartingLocations(n int) ([]int, error) {
	if n > len(startingLocations) {
		return nil, fmt.Errorf("cannot place %d players with %d start cards", n, len(startingLocations))
	}
	perm := rand.Perm(len(startingLocations))
	drawn := make([]int, n)
	for i := 0; i < n; i++ {
		drawn[i] = startingLocations[perm[i]]
	}
	return drawn, nil
}
