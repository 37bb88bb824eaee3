package service

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"shadowchase/internal/database"
	"shadowchase/internal/models"

	"go.uber.org/zap"
)

// ArchiveData is the portable JSON snapshot of everything the service
// stores: accounts, games, seats, and the full move ledger.
type ArchiveData struct {
	Version    string          `json:"version"`
	ExportedAt time.Time       `json:"exported_at"`
	Users      []UserArchive   `json:"users"`
	Games      []GameArchive   `json:"games"`
	Players    []PlayerArchive `json:"players"`
	Moves      []MoveArchive   `json:"moves"`
}

// UserArchive represents a user record in an archive
type UserArchive struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// GameArchive represents a game record in an archive
type GameArchive struct {
	ID           string    `json:"id"`
	Code         string    `json:"code"`
	Status       string    `json:"status"`
	CurrentRound int       `json:"current_round"`
	HostUserID   int64     `json:"host_user_id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// PlayerArchive represents a seat record in an archive
type PlayerArchive struct {
	ID       int64     `json:"id"`
	GameID   string    `json:"game_id"`
	UserID   int64     `json:"user_id"`
	Role     string    `json:"role"`
	Color    string    `json:"color"`
	IsActive bool      `json:"is_active"`
	Location *int      `json:"location"`
	JoinedAt time.Time `json:"joined_at"`
}

// MoveArchive represents a ledger entry in an archive
type MoveArchive struct {
	ID            int64     `json:"id"`
	GameID        string    `json:"game_id"`
	PlayerID      int64     `json:"player_id"`
	Round         int       `json:"round"`
	FromLocation  int       `json:"from_location"`
	ToLocation    int       `json:"to_location"`
	TransportType string    `json:"transport_type"`
	CreatedAt     time.Time `json:"created_at"`
}

// ArchiveService exports and restores full database snapshots, mainly for
// backups and moving an installation between database backends.
type ArchiveService struct {
	db     *database.DB
	logger *zap.Logger
}

// NewArchiveService creates a new archive service
func NewArchiveService(db *database.DB, logger *zap.Logger) *ArchiveService {
	return &ArchiveService{db: db, logger: logger}
}

// Export writes a complete snapshot to outputPath
func (s *ArchiveService) Export(outputPath string) error {
	archive := &ArchiveData{
		Version:    "1.0",
		ExportedAt: time.Now(),
	}

	if err := s.exportUsers(archive); err != nil {
		return fmt.Errorf("failed to export users: %w", err)
	}
	if err := s.exportGames(archive); err != nil {
		return fmt.Errorf("failed to export games: %w", err)
	}
	if err := s.exportPlayers(archive); err != nil {
		return fmt.Errorf("failed to export players: %w", err)
	}
	if err := s.exportMoves(archive); err != nil {
		return fmt.Errorf("failed to export moves: %w", err)
	}

	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(archive); err != nil {
		return fmt.Errorf("failed to encode archive: %w", err)
	}

	s.logger.Info("archive exported",
		zap.String("path", outputPath),
		zap.Int("users", len(archive.Users)),
		zap.Int("games", len(archive.Games)),
		zap.Int("players", len(archive.Players)),
		zap.Int("moves", len(archive.Moves)))
	return nil
}

// Import restores a snapshot from inputPath. Rows are inserted with their
// original IDs in dependency order; the target database should be empty.
func (s *ArchiveService) Import(inputPath string) error {
	file, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()

	var archive ArchiveData
	if err := json.NewDecoder(file).Decode(&archive); err != nil {
		return fmt.Errorf("failed to decode archive: %w", err)
	}

	s.logger.Info("importing archive",
		zap.String("version", archive.Version),
		zap.Time("exported_at", archive.ExportedAt))

	if err := s.importUsers(archive.Users); err != nil {
		return fmt.Errorf("failed to import users: %w", err)
	}
	if err := s.importGames(archive.Games); err != nil {
		return fmt.Errorf("failed to import games: %w", err)
	}
	if err := s.importPlayers(archive.Players); err != nil {
		return fmt.Errorf("failed to import players: %w", err)
	}
	if err := s.importMoves(archive.Moves); err != nil {
		return fmt.Errorf("failed to import moves: %w", err)
	}

	s.logger.Info("archive imported")
	return nil
}

func (s *ArchiveService) exportUsers(archive *ArchiveData) error {
	rows, err := s.db.Query("SELECT id, email, username, password_hash, created_at, updated_at FROM users ORDER BY id")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var u UserArchive
		if err := rows.Scan(&u.ID, &u.Email, &u.Username, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return err
		}
		archive.Users = append(archive.Users, u)
	}
	return rows.Err()
}

func (s *ArchiveService) exportGames(archive *ArchiveData) error {
	rows, err := s.db.Query("SELECT id, code, status, current_round, host_user_id, created_at, updated_at FROM games ORDER BY created_at")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var g GameArchive
		if err := rows.Scan(&g.ID, &g.Code, &g.Status, &g.CurrentRound, &g.HostUserID, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return err
		}
		archive.Games = append(archive.Games, g)
	}
	return rows.Err()
}

func (s *ArchiveService) exportPlayers(archive *ArchiveData) error {
	rows, err := s.db.Query("SELECT id, game_id, user_id, role, color, is_active, location, joined_at FROM players ORDER BY id")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var p PlayerArchive
		if err := rows.Scan(&p.ID, &p.GameID, &p.UserID, &p.Role, &p.Color, &p.IsActive, &p.Location, &p.JoinedAt); err != nil {
			return err
		}
		archive.Players = append(archive.Players, p)
	}
	return rows.Err()
}

func (s *ArchiveService) exportMoves(archive *ArchiveData) error {
	rows, err := s.db.Query("SELECT id, game_id, player_id, round, from_location, to_location, transport_type, created_at FROM moves ORDER BY id")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var m MoveArchive
		if err := rows.Scan(&m.ID, &m.GameID, &m.PlayerID, &m.Round, &m.FromLocation, &m.ToLocation, &m.TransportType, &m.CreatedAt); err != nil {
			return err
		}
		archive.Moves = append(archive.Moves, m)
	}
	return rows.Err()
}

func (s *ArchiveService) importUsers(users []UserArchive) error {
	for _, u := range users {
		_, err := s.db.Exec(
			"INSERT INTO users (id, email, username, password_hash, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)",
			u.ID, u.Email, u.Username, u.PasswordHash, u.CreatedAt, u.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("user %d: %w", u.ID, err)
		}
	}
	return nil
}

func (s *ArchiveService) importGames(games []GameArchive) error {
	for _, g := range games {
		status := models.GameStatus(g.Status)
		if !status.IsValid() {
			return fmt.Errorf("game %s: unknown status %q", g.ID, g.Status)
		}
		_, err := s.db.Exec(
			"INSERT INTO games (id, code, status, current_round, host_user_id, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
			g.ID, g.Code, g.Status, g.CurrentRound, g.HostUserID, g.CreatedAt, g.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("game %s: %w", g.ID, err)
		}
	}
	return nil
}

func (s *ArchiveService) importPlayers(players []PlayerArchive) error {
	for _, p := range players {
		_, err := s.db.Exec(
			"INSERT INTO players (id, game_id, user_id, role, color, is_active, location, joined_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
			p.ID, p.GameID, p.UserID, p.Role, p.Color, p.IsActive, p.Location, p.JoinedAt,
		)
		if err != nil {
			return fmt.Errorf("player %d: %w", p.ID, err)
		}
	}
	return nil
}

func (s *ArchiveService) importMoves(moves []MoveArchive) error {
	for _, m := range moves {
		_, err := s.db.Exec(
			"INSERT INTO moves (id, game_id, player_id, round, from_location, to_location, transport_type, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
			m.ID, m.GameID, m.PlayerID, m.Round, m.FromLocation, m.ToLocation, m.TransportType, m.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("move %d: %w", m.ID, err)
		}
	}
	return nil
}
