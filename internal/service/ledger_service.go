package service

import (
	"errors"
	"fmt"

	"shadowchase/internal/models"
	"shadowchase/internal/repository"
	"shadowchase/internal/validation"

	"go.uber.org/zap"
)

var (
	ErrStaleMoveOrigin = errors.New("move origin does not match current location")
	ErrInvalidMove     = errors.New("invalid move")
	ErrIllegalMove     = errors.New("move is not allowed")
)

// LedgerService appends validated moves to a game's history and relocates
// the acting player. The ledger is the only writer of player locations.
type LedgerService struct {
	sessions  *SessionService
	moveRepo  *repository.MoveRepository
	validator MoveValidator
	evaluator WinConditionEvaluator
	locks     *GameLocks
	logger    *zap.Logger
}

// NewLedgerService creates a new ledger service. Passing nil for validator
// or evaluator installs the permissive defaults.
func NewLedgerService(sessions *SessionService, moveRepo *repository.MoveRepository, validator MoveValidator, evaluator WinConditionEvaluator, locks *GameLocks, logger *zap.Logger) *LedgerService {
	if validator == nil {
		validator = PermitAllMoves{}
	}
	if evaluator == nil {
		evaluator = NoAutomaticWin{}
	}
	return &LedgerService{
		sessions:  sessions,
		moveRepo:  moveRepo,
		validator: validator,
		evaluator: evaluator,
		locks:     locks,
		logger:    logger,
	}
}

// RecordMove validates and appends one move. The whole operation runs under
// the game's lock so admission and mutation cannot interleave with another
// move on the same game, and the ledger append plus location change commit
// atomically. A rejected move mutates nothing.
func (s *LedgerService) RecordMove(gameID string, userID int64, from, to int, transport models.TransportType) (*models.Move, error) {
	if !transport.IsValid() {
		return nil, fmt.Errorf("%w: unknown transport type %q", ErrInvalidMove, transport)
	}
	if err := validation.ValidateLocation(from); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMove, err)
	}
	if err := validation.ValidateLocation(to); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMove, err)
	}

	unlock := s.locks.Lock(gameID)
	defer unlock()

	game, player, err := s.sessions.AdmitMove(gameID, userID)
	if err != nil {
		return nil, err
	}

	// The stored location is authoritative; a client replaying an old
	// position gets rejected, not trusted.
	if player.Location == nil || *player.Location != from {
		return nil, ErrStaleMoveOrigin
	}

	if err := s.validator.ValidateMove(game, player, from, to, transport); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIllegalMove, err)
	}

	// Mr. X opens each round: his move carries the next round number and
	// advances the counter in the same transaction, so the opener and the
	// detective replies that follow share a round stamp.
	round := game.CurrentRound
	advanceRound := player.Role == models.RoleMrX
	if advanceRound {
		round++
	}

	move := &models.Move{
		GameID:        gameID,
		PlayerID:      player.ID,
		Round:         round,
		FromLocation:  from,
		ToLocation:    to,
		TransportType: transport,
	}

	if err := s.moveRepo.Append(move, advanceRound); err != nil {
		if errors.Is(err, repository.ErrLocationChanged) {
			return nil, ErrStaleMoveOrigin
		}
		return nil, fmt.Errorf("failed to record move: %w", err)
	}

	s.logger.Info("move recorded",
		zap.String("game_id", gameID),
		zap.Int64("player_id", player.ID),
		zap.Int("round", move.Round),
		zap.Int("from", from),
		zap.Int("to", to),
		zap.String("transport", string(transport)))

	s.maybeFinish(gameID, move)

	return move, nil
}

// ListMoves returns a game's ledger in order
func (s *LedgerService) ListMoves(gameID string) ([]models.Move, error) {
	game, err := s.sessions.GetGame(gameID)
	if err != nil {
		return nil, err
	}
	moves, err := s.moveRepo.ListByGame(game.Game.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list moves: %w", err)
	}
	return moves, nil
}

// maybeFinish consults the win-condition evaluator after an accepted move
// and closes the game when it reports play is over.
func (s *LedgerService) maybeFinish(gameID string, lastMove *models.Move) {
	detail, err := s.sessions.GetGame(gameID)
	if err != nil {
		s.logger.Warn("could not evaluate win condition", zap.String("game_id", gameID), zap.Error(err))
		return
	}
	if !s.evaluator.GameOver(&detail.Game, detail.Players, lastMove) {
		return
	}

	if err := s.sessions.gameRepo.TransitionStatus(gameID, models.StatusInProgress, models.StatusFinished); err != nil {
		if !errors.Is(err, repository.ErrStatusChanged) {
			s.logger.Warn("could not finish game", zap.String("game_id", gameID), zap.Error(err))
		}
		return
	}
	s.locks.Forget(gameID)
	s.logger.Info("game finished by win condition", zap.String("game_id", gameID))
}
