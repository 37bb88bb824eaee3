package service

import (
	"errors"
	"fmt"

	"shadowchase/internal/gamecode"
	"shadowchase/internal/models"
	"shadowchase/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrGameNotFound            = errors.New("game not found")
	ErrGameNotJoinable         = errors.New("game is not accepting players")
	ErrGameNotInProgress       = errors.New("game is not in progress")
	ErrGameNotWaiting          = errors.New("game has already started")
	ErrAlreadySeated           = errors.New("already seated in this game")
	ErrGameFull                = errors.New("game is full")
	ErrPlayerNotSeated         = errors.New("not seated in this game")
	ErrPlayerInactive          = errors.New("seat has been vacated")
	ErrNotHost                 = errors.New("only the host may do this")
	ErrNotEnoughPlayers        = errors.New("at least one detective must join before the game can start")
	ErrCodeGenerationExhausted = errors.New("could not generate a unique join code")
)

// SessionService owns game creation, join admission, and lifecycle
// transitions. It holds no game state of its own; every operation re-reads
// authoritative rows before mutating them.
type SessionService struct {
	gameRepo        *repository.GameRepository
	locks           *GameLocks
	codeLength      int
	maxCodeAttempts int
	logger          *zap.Logger
}

// NewSessionService creates a new session service
func NewSessionService(gameRepo *repository.GameRepository, locks *GameLocks, codeLength, maxCodeAttempts int, logger *zap.Logger) *SessionService {
	return &SessionService{
		gameRepo:        gameRepo,
		locks:           locks,
		codeLength:      codeLength,
		maxCodeAttempts: maxCodeAttempts,
		logger:          logger,
	}
}

// CreateGame creates a WAITING game and seats the requester as Mr. X.
// Code generation retries on collision up to maxCodeAttempts; the unique
// index on active codes is the final arbiter, so two racing creates can
// never both claim the same code.
func (s *SessionService) CreateGame(userID int64) (*models.GameDetail, error) {
	for attempt := 0; attempt < s.maxCodeAttempts; attempt++ {
		code, err := gamecode.Generate(s.codeLength)
		if err != nil {
			return nil, fmt.Errorf("failed to generate join code: %w", err)
		}

		game := &models.Game{
			ID:           uuid.NewString(),
			Code:         code,
			Status:       models.StatusWaiting,
			CurrentRound: 0,
			HostUserID:   userID,
		}

		host, err := s.gameRepo.CreateGameWithHost(game)
		if errors.Is(err, repository.ErrDuplicateCode) {
			s.logger.Debug("join code collision, retrying",
				zap.String("code", code),
				zap.Int("attempt", attempt+1))
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to create game: %w", err)
		}

		s.logger.Info("game created",
			zap.String("game_id", game.ID),
			zap.String("code", game.Code),
			zap.Int64("host_user_id", userID))

		return &models.GameDetail{Game: *game, Players: []models.Player{*host}}, nil
	}

	return nil, ErrCodeGenerationExhausted
}

// JoinGame seats the requester as a detective in the WAITING game holding
// the given code. Seat uniqueness is enforced by the storage layer, so the
// loser of a concurrent double-join fails with ErrAlreadySeated.
func (s *SessionService) JoinGame(code string, userID int64) (*models.Player, error) {
	game, err := s.gameRepo.GetGameByCode(gamecode.Normalize(code))
	if err != nil {
		return nil, fmt.Errorf("failed to look up game: %w", err)
	}
	if game == nil {
		return nil, ErrGameNotFound
	}
	if game.Status != models.StatusWaiting {
		return nil, ErrGameNotJoinable
	}

	unlock := s.locks.Lock(game.ID)
	defer unlock()

	// The code lookup ran outside the lock, so the game may have started
	// (or been cancelled) while we waited. Re-check under the lock.
	game, err = s.gameRepo.GetGameByID(game.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up game: %w", err)
	}
	if game == nil {
		return nil, ErrGameNotFound
	}
	if game.Status != models.StatusWaiting {
		return nil, ErrGameNotJoinable
	}

	existing, err := s.gameRepo.GetPlayer(game.ID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to check seat: %w", err)
	}
	if existing != nil {
		return nil, ErrAlreadySeated
	}

	players, err := s.gameRepo.GetPlayers(game.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	detectives := 0
	for _, p := range players {
		if p.Role == models.RoleDetective {
			detectives++
		}
	}
	if detectives >= len(models.DetectiveColors) {
		return nil, ErrGameFull
	}

	player := &models.Player{
		GameID:   game.ID,
		UserID:   userID,
		Role:     models.RoleDetective,
		Color:    models.DetectiveColors[detectives],
		IsActive: true,
	}
	if err := s.gameRepo.AddPlayer(player); err != nil {
		if errors.Is(err, repository.ErrDuplicateSeat) {
			return nil, ErrAlreadySeated
		}
		return nil, fmt.Errorf("failed to seat player: %w", err)
	}

	s.logger.Info("player joined",
		zap.String("game_id", game.ID),
		zap.Int64("user_id", userID),
		zap.String("color", string(player.Color)))

	return player, nil
}

// StartGame flips a WAITING game to IN_PROGRESS. Only the host may start,
// at least one detective must be seated, and every active player gets a
// distinct starting location.
func (s *SessionService) StartGame(gameID string, userID int64) (*models.GameDetail, error) {
	unlock := s.locks.Lock(gameID)
	defer unlock()

	game, err := s.gameRepo.GetGameByID(gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up game: %w", err)
	}
	if game == nil {
		return nil, ErrGameNotFound
	}
	if game.HostUserID != userID {
		return nil, ErrNotHost
	}
	if game.Status != models.StatusWaiting {
		return nil, ErrGameNotWaiting
	}

	players, err := s.gameRepo.GetPlayers(gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}

	var active []models.Player
	detectives := 0
	for _, p := range players {
		if !p.IsActive {
			continue
		}
		active = append(active, p)
		if p.Role == models.RoleDetective {
			detectives++
		}
	}
	if detectives < 1 {
		return nil, ErrNotEnoughPlayers
	}

	locations, err := drawStartingLocations(len(active))
	if err != nil {
		return nil, fmt.Errorf("failed to draw starting locations: %w", err)
	}
	placement := make(map[int64]int, len(active))
	for i, p := range active {
		placement[p.ID] = locations[i]
	}

	if err := s.gameRepo.StartGame(gameID, placement); err != nil {
		if errors.Is(err, repository.ErrStatusChanged) {
			return nil, ErrGameNotWaiting
		}
		return nil, fmt.Errorf("failed to start game: %w", err)
	}

	s.logger.Info("game started",
		zap.String("game_id", gameID),
		zap.Int("players", len(active)))

	return s.GetGame(gameID)
}

// CancelGame abandons a WAITING game before it starts. Host only.
func (s *SessionService) CancelGame(gameID string, userID int64) error {
	unlock := s.locks.Lock(gameID)
	defer unlock()

	game, err := s.gameRepo.GetGameByID(gameID)
	if err != nil {
		return fmt.Errorf("failed to look up game: %w", err)
	}
	if game == nil {
		return ErrGameNotFound
	}
	if game.HostUserID != userID {
		return ErrNotHost
	}

	if err := s.gameRepo.TransitionStatus(gameID, models.StatusWaiting, models.StatusCancelled); err != nil {
		if errors.Is(err, repository.ErrStatusChanged) {
			return ErrGameNotWaiting
		}
		return fmt.Errorf("failed to cancel game: %w", err)
	}

	s.locks.Forget(gameID)
	s.logger.Info("game cancelled", zap.String("game_id", gameID))
	return nil
}

// EndGame finishes an IN_PROGRESS game. Host only. Automatic win-condition
// evaluation hangs off WinConditionEvaluator; until a board is wired in,
// this is how play concludes. Runs under the game's lock so an in-flight
// move cannot commit into a finished game.
func (s *SessionService) EndGame(gameID string, userID int64) error {
	unlock := s.locks.Lock(gameID)
	defer unlock()

	game, err := s.gameRepo.GetGameByID(gameID)
	if err != nil {
		return fmt.Errorf("failed to look up game: %w", err)
	}
	if game == nil {
		return ErrGameNotFound
	}
	if game.HostUserID != userID {
		return ErrNotHost
	}

	if err := s.gameRepo.TransitionStatus(gameID, models.StatusInProgress, models.StatusFinished); err != nil {
		if errors.Is(err, repository.ErrStatusChanged) {
			return ErrGameNotInProgress
		}
		return fmt.Errorf("failed to end game: %w", err)
	}

	s.locks.Forget(gameID)
	s.logger.Info("game finished", zap.String("game_id", gameID))
	return nil
}

// LeaveGame vacates the requester's seat. The row stays so the move ledger
// keeps its references; the seat just goes inactive. Mr. X abandoning a
// game that has not started cancels it outright.
func (s *SessionService) LeaveGame(gameID string, userID int64) error {
	unlock := s.locks.Lock(gameID)
	defer unlock()

	game, err := s.gameRepo.GetGameByID(gameID)
	if err != nil {
		return fmt.Errorf("failed to look up game: %w", err)
	}
	if game == nil {
		return ErrGameNotFound
	}

	player, err := s.gameRepo.GetPlayer(gameID, userID)
	if err != nil {
		return fmt.Errorf("failed to check seat: %w", err)
	}
	if player == nil {
		return ErrPlayerNotSeated
	}
	if !player.IsActive {
		return ErrPlayerInactive
	}

	if err := s.gameRepo.DeactivatePlayer(gameID, userID); err != nil {
		return fmt.Errorf("failed to vacate seat: %w", err)
	}

	if player.Role == models.RoleMrX && game.Status == models.StatusWaiting {
		if err := s.gameRepo.TransitionStatus(gameID, models.StatusWaiting, models.StatusCancelled); err != nil &&
			!errors.Is(err, repository.ErrStatusChanged) {
			return fmt.Errorf("failed to cancel abandoned game: %w", err)
		}
	}

	s.logger.Info("player left",
		zap.String("game_id", gameID),
		zap.Int64("user_id", userID))
	return nil
}

// GetGame returns a game with its players and move ledger
func (s *SessionService) GetGame(gameID string) (*models.GameDetail, error) {
	game, err := s.gameRepo.GetGameByID(gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up game: %w", err)
	}
	if game == nil {
		return nil, ErrGameNotFound
	}

	players, err := s.gameRepo.GetPlayers(gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}

	return &models.GameDetail{Game: *game, Players: players}, nil
}

// AdmitMove is the admission check the move ledger consults: the game must
// be in progress and the requester must hold an active seat. Callers are
// expected to hold the game's lock so the returned state stays true until
// their mutation lands.
func (s *SessionService) AdmitMove(gameID string, userID int64) (*models.Game, *models.Player, error) {
	game, err := s.gameRepo.GetGameByID(gameID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to look up game: %w", err)
	}
	if game == nil {
		return nil, nil, ErrGameNotFound
	}
	if game.Status != models.StatusInProgress {
		return nil, nil, ErrGameNotInProgress
	}

	player, err := s.gameRepo.GetPlayer(gameID, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to check seat: %w", err)
	}
	if player == nil {
		return nil, nil, ErrPlayerNotSeated
	}
	if !player.IsActive {
		return nil, nil, ErrPlayerInactive
	}

	return game, player, nil
}
