package repository

import (
	"fmt"
	"time"

	"shadowchase/internal/database"
	"shadowchase/internal/models"
)

// MoveRepository handles the append-only move ledger
type MoveRepository struct {
	db *database.DB
}

// NewMoveRepository creates a new move repository
func NewMoveRepository(db *database.DB) *MoveRepository {
	return &MoveRepository{db: db}
}

// Append writes a move and relocates its player in one transaction: the
// ledger row and the position change land together or not at all. The
// location update is a compare-and-swap against the move's origin, so a
// concurrent move that got in first fails this one with ErrLocationChanged
// instead of corrupting the chain. When advanceRound is set the game's
// round counter increments in the same transaction.
func (r *MoveRepository) Append(move *models.Move, advanceRound bool) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO moves (game_id, player_id, round, from_location, to_location, transport_type)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	moveID, err := tx.ExecReturningID(query,
		move.GameID, move.PlayerID, move.Round,
		move.FromLocation, move.ToLocation, move.TransportType,
	)
	if err != nil {
		return fmt.Errorf("failed to append move: %w", err)
	}

	query = "UPDATE players SET location = ? WHERE id = ? AND location = ?"
	result, err := tx.Exec(query, move.ToLocation, move.PlayerID, move.FromLocation)
	if err != nil {
		return fmt.Errorf("failed to update player location: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check location update: %w", err)
	}
	if affected == 0 {
		return ErrLocationChanged
	}

	if advanceRound {
		query = "UPDATE games SET current_round = current_round + 1, updated_at = CURRENT_TIMESTAMP WHERE id = ?"
		if _, err := tx.Exec(query, move.GameID); err != nil {
			return fmt.Errorf("failed to advance round: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	move.ID = moveID
	move.CreatedAt = time.Now()
	return nil
}

// ListByGame returns a game's moves in ledger order
func (r *MoveRepository) ListByGame(gameID string) ([]models.Move, error) {
	query := `
		SELECT id, game_id, player_id, round, from_location, to_location, transport_type, created_at
		FROM moves
		WHERE game_id = ?
		ORDER BY id ASC
	`
	rows, err := r.db.Query(query, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to query moves: %w", err)
	}
	defer rows.Close()

	var moves []models.Move
	for rows.Next() {
		var move models.Move
		if err := rows.Scan(
			&move.ID,
			&move.GameID,
			&move.PlayerID,
			&move.Round,
			&move.FromLocation,
			&move.ToLocation,
			&move.TransportType,
			&move.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan move: %w", err)
		}
		moves = append(moves, move)
	}

	return moves, rows.Err()
}

// CountByGame returns how many moves a game's ledger holds
func (r *MoveRepository) CountByGame(gameID string) (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM moves WHERE game_id = ?", gameID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count moves: %w", err)
	}
	return count, nil
}
