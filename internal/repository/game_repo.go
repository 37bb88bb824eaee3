package repository

import (
	"database/sql"
	"fmt"
	"time"

	"shadowchase/internal/database"
	"shadowchase/internal/models"
)

// GameRepository handles database operations for games and their seats
type GameRepository struct {
	db *database.DB
}

// NewGameRepository creates a new game repository
func NewGameRepository(db *database.DB) *GameRepository {
	return &GameRepository{db: db}
}

// CreateGameWithHost inserts a new game and seats its creator as Mr. X in
// one transaction. A collision with the active-code unique index surfaces
// as ErrDuplicateCode so the caller can retry with a fresh code.
func (r *GameRepository) CreateGameWithHost(game *models.Game) (*models.Player, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO games (id, code, status, current_round, host_user_id)
		VALUES (?, ?, ?, ?, ?)
	`
	if _, err := tx.Exec(query, game.ID, game.Code, game.Status, game.CurrentRound, game.HostUserID); err != nil {
		if r.db.IsUniqueViolation(err) {
			return nil, ErrDuplicateCode
		}
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	query = `
		INSERT INTO players (game_id, user_id, role, color, is_active)
		VALUES (?, ?, ?, ?, ?)
	`
	playerID, err := tx.ExecReturningID(query, game.ID, game.HostUserID, models.RoleMrX, models.ColorBlack, true)
	if err != nil {
		return nil, fmt.Errorf("failed to seat host: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &models.Player{
		ID:       playerID,
		GameID:   game.ID,
		UserID:   game.HostUserID,
		Role:     models.RoleMrX,
		Color:    models.ColorBlack,
		IsActive: true,
		JoinedAt: time.Now(),
	}, nil
}

// GetGameByID retrieves a game by ID
func (r *GameRepository) GetGameByID(id string) (*models.Game, error) {
	query := `
		SELECT id, code, status, current_round, host_user_id, created_at, updated_at
		FROM games
		WHERE id = ?
	`
	return r.scanGame(r.db.QueryRow(query, id))
}

// GetGameByCode retrieves a game by join code. Only games still accepting
// play hold a claim on their code, so the lookup ignores terminal games.
func (r *GameRepository) GetGameByCode(code string) (*models.Game, error) {
	query := `
		SELECT id, code, status, current_round, host_user_id, created_at, updated_at
		FROM games
		WHERE code = ? AND status IN ('WAITING', 'IN_PROGRESS')
	`
	return r.scanGame(r.db.QueryRow(query, code))
}

func (r *GameRepository) scanGame(row *sql.Row) (*models.Game, error) {
	game := &models.Game{}
	err := row.Scan(
		&game.ID,
		&game.Code,
		&game.Status,
		&game.CurrentRound,
		&game.HostUserID,
		&game.CreatedAt,
		&game.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	return game, nil
}

// AddPlayer seats a user in a game. The (game_id, user_id) and single-Mr.-X
// constraints arbitrate join races; the loser gets ErrDuplicateSeat.
func (r *GameRepository) AddPlayer(player *models.Player) error {
	query := `
		INSERT INTO players (game_id, user_id, role, color, is_active)
		VALUES (?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(query, player.GameID, player.UserID, player.Role, player.Color, player.IsActive)
	if err != nil {
		if r.db.IsUniqueViolation(err) {
			return ErrDuplicateSeat
		}
		return fmt.Errorf("failed to add player: %w", err)
	}

	player.ID = id
	player.JoinedAt = time.Now()
	return nil
}

// GetPlayer retrieves a user's seat in a game
func (r *GameRepository) GetPlayer(gameID string, userID int64) (*models.Player, error) {
	query := `
		SELECT p.id, p.game_id, p.user_id, p.role, p.color, p.is_active, p.location, p.joined_at, u.username
		FROM players p
		INNER JOIN users u ON p.user_id = u.id
		WHERE p.game_id = ? AND p.user_id = ?
	`
	player, err := scanPlayer(r.db.QueryRow(query, gameID, userID))
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}
	return player, nil
}

// GetPlayers retrieves all seats in a game in join order
func (r *GameRepository) GetPlayers(gameID string) ([]models.Player, error) {
	query := `
		SELECT p.id, p.game_id, p.user_id, p.role, p.color, p.is_active, p.location, p.joined_at, u.username
		FROM players p
		INNER JOIN users u ON p.user_id = u.id
		WHERE p.game_id = ?
		ORDER BY p.id ASC
	`
	rows, err := r.db.Query(query, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to query players: %w", err)
	}
	defer rows.Close()

	var players []models.Player
	for rows.Next() {
		player, err := scanPlayerRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan player: %w", err)
		}
		players = append(players, *player)
	}

	return players, rows.Err()
}

// CountActiveDetectives counts active detective seats in a game
func (r *GameRepository) CountActiveDetectives(gameID string) (int, error) {
	query := "SELECT COUNT(*) FROM players WHERE game_id = ? AND role = ? AND is_active = ?"
	var count int
	err := r.db.QueryRow(query, gameID, models.RoleDetective, true).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count detectives: %w", err)
	}
	return count, nil
}

// DeactivatePlayer vacates a seat while keeping the row for ledger integrity
func (r *GameRepository) DeactivatePlayer(gameID string, userID int64) error {
	query := "UPDATE players SET is_active = ? WHERE game_id = ? AND user_id = ?"
	_, err := r.db.Exec(query, false, gameID, userID)
	if err != nil {
		return fmt.Errorf("failed to deactivate player: %w", err)
	}
	return nil
}

// TransitionStatus moves a game from one status to another with a
// compare-and-swap on the current status. ErrStatusChanged means the game
// was no longer in the expected state.
func (r *GameRepository) TransitionStatus(gameID string, from, to models.GameStatus) error {
	query := "UPDATE games SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND status = ?"
	result, err := r.db.Exec(query, to, gameID, from)
	if err != nil {
		return fmt.Errorf("failed to transition game status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check transition result: %w", err)
	}
	if affected == 0 {
		return ErrStatusChanged
	}
	return nil
}

// StartGame flips a WAITING game to IN_PROGRESS and places every active
// player at their starting location, all in one transaction. The round
// counter stays at 0 until Mr. X opens round 1.
func (r *GameRepository) StartGame(gameID string, startingLocations map[int64]int) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		UPDATE games SET status = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND status = ?
	`
	result, err := tx.Exec(query, models.StatusInProgress, gameID, models.StatusWaiting)
	if err != nil {
		return fmt.Errorf("failed to start game: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check start result: %w", err)
	}
	if affected == 0 {
		return ErrStatusChanged
	}

	for playerID, location := range startingLocations {
		query = "UPDATE players SET location = ? WHERE id = ? AND game_id = ?"
		if _, err := tx.Exec(query, location, playerID, gameID); err != nil {
			return fmt.Errorf("failed to place player %d: %w", playerID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func scanPlayer(row *sql.Row) (*models.Player, error) {
	player := &models.Player{}
	var location sql.NullInt64
	err := row.Scan(
		&player.ID,
		&player.GameID,
		&player.UserID,
		&player.Role,
		&player.Color,
		&player.IsActive,
		&location,
		&player.JoinedAt,
		&player.Username,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if location.Valid {
		loc := int(location.Int64)
		player.Location = &loc
	}
	return player, nil
}

func scanPlayerRow(rows *sql.Rows) (*models.Player, error) {
	player := &models.Player{}
	var location sql.NullInt64
	err := rows.Scan(
		&player.ID,
		&player.GameID,
		&player.UserID,
		&player.Role,
		&player.Color,
		&player.IsActive,
		&location,
		&player.JoinedAt,
		&player.Username,
	)
	if err != nil {
		return nil, err
	}

	if location.Valid {
		loc := int(location.Int64)
		player.Location = &loc
	}
	return player, nil
}
