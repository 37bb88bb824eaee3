package service

import (
	"errors"
	"testing"

	"go.uber.org/zap"

	"shadowchase/internal/models"
)

// destinationFrom picks a valid board location different from the origin.
func destinationFrom(from int) int {
	if from == 42 {
		return 43
	}
	return 42
}

func TestRecordMoveRequiresGameInProgress(t *testing.T) {
	env := newTestEnv(t)
	host := env.createUser(t, "host")
	detail, err := env.sessions.CreateGame(host.ID)
	if err != nil {
		t.Fatalf("CreateGame failed: %v", err)
	}

	_, err = env.ledger.RecordMove(detail.Game.ID, host.ID, 13, 26, models.TransportTaxi)
	if !errors.Is(err, ErrGameNotInProgress) {
		t.Errorf("expected ErrGameNotInProgress, got %v", err)
	}
}

func TestRecordMove(t *testing.T) {
	env := newTestEnv(t)
	detail, host, dets := env.startedGame(t, 1)

	mrX := playerFor(t, detail, host.ID)
	from := *mrX.Location
	to := destinationFrom(from)

	move, err := env.ledger.RecordMove(detail.Game.ID, host.ID, from, to, models.TransportTaxi)
	if err != nil {
		t.Fatalf("RecordMove failed: %v", err)
	}

	if move.Round != 1 {
		t.Errorf("expected move stamped with round 1, got %d", move.Round)
	}
	if move.FromLocation != from || move.ToLocation != to {
		t.Errorf("move recorded %d->%d, expected %d->%d",
			move.FromLocation, move.ToLocation, from, to)
	}

	got, err := env.sessions.GetGame(detail.Game.ID)
	if err != nil {
		t.Fatalf("GetGame failed: %v", err)
	}

	// Mr. X opens each round, so his move advances the counter.
	if got.Game.CurrentRound != 1 {
		t.Errorf("expected round 1 after Mr. X moved, got %d", got.Game.CurrentRound)
	}
	if loc := playerFor(t, got, host.ID).Location; loc == nil || *loc != to {
		t.Errorf("expected Mr. X at %d, got %v", to, loc)
	}

	// A detective's reply shares the opener's round stamp and does not
	// advance the counter.
	det := playerFor(t, got, dets[0].ID)
	detTo := destinationFrom(*det.Location)
	if detTo == to {
		detTo = 44
	}
	reply, err := env.ledger.RecordMove(detail.Game.ID, dets[0].ID, *det.Location, detTo, models.TransportBus)
	if err != nil {
		t.Fatalf("detective RecordMove failed: %v", err)
	}
	if reply.Round != 1 {
		t.Errorf("expected reply stamped with round 1, got %d", reply.Round)
	}

	got, err = env.sessions.GetGame(detail.Game.ID)
	if err != nil {
		t.Fatalf("GetGame failed: %v", err)
	}
	if got.Game.CurrentRound != 1 {
		t.Errorf("expected round unchanged at 1 after detective moved, got %d", got.Game.CurrentRound)
	}

	moves, err := env.ledger.ListMoves(detail.Game.ID)
	if err != nil {
		t.Fatalf("ListMoves failed: %v", err)
	}
	if len(moves) != 2 {
		t.Errorf("expected 2 ledger entries, got %d", len(moves))
	}

	// Mr. X's next move opens round 2.
	mrX = playerFor(t, got, host.ID)
	opener, err := env.ledger.RecordMove(detail.Game.ID, host.ID, *mrX.Location, destinationFrom(*mrX.Location), models.TransportUnderground)
	if err != nil {
		t.Fatalf("second Mr. X RecordMove failed: %v", err)
	}
	if opener.Round != 2 {
		t.Errorf("expected second opener stamped with round 2, got %d", opener.Round)
	}
}

func TestRecordMoveStaleOriginMutatesNothing(t *testing.T) {
	env := newTestEnv(t)
	detail, host, _ := env.startedGame(t, 1)

	mrX := playerFor(t, detail, host.ID)
	wrongFrom := destinationFrom(*mrX.Location)

	_, err := env.ledger.RecordMove(detail.Game.ID, host.ID, wrongFrom, destinationFrom(wrongFrom), models.TransportTaxi)
	if !errors.Is(err, ErrStaleMoveOrigin) {
		t.Fatalf("expected ErrStaleMoveOrigin, got %v", err)
	}

	got, err := env.sessions.GetGame(detail.Game.ID)
	if err != nil {
		t.Fatalf("GetGame failed: %v", err)
	}
	if loc := playerFor(t, got, host.ID).Location; *loc != *mrX.Location {
		t.Errorf("rejected move changed location from %d to %d", *mrX.Location, *loc)
	}
	if got.Game.CurrentRound != 0 {
		t.Errorf("rejected move changed round to %d", got.Game.CurrentRound)
	}

	count, err := env.moveRepo.CountByGame(detail.Game.ID)
	if err != nil {
		t.Fatalf("CountByGame failed: %v", err)
	}
	if count != 0 {
		t.Errorf("rejected move left %d ledger entries", count)
	}
}

func TestRecordMoveValidation(t *testing.T) {
	env := newTestEnv(t)
	detail, host, _ := env.startedGame(t, 1)

	tests := []struct {
		name      string
		from, to  int
		transport models.TransportType
	}{
		{"unknown transport", 13, 26, "TELEPORT"},
		{"origin off the board", 0, 26, models.TransportTaxi},
		{"destination off the board", 13, 200, models.TransportTaxi},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.ledger.RecordMove(detail.Game.ID, host.ID, tt.from, tt.to, tt.transport)
			if !errors.Is(err, ErrInvalidMove) {
				t.Errorf("expected ErrInvalidMove, got %v", err)
			}
		})
	}
}

func TestRecordMoveRequiresActiveSeat(t *testing.T) {
	env := newTestEnv(t)
	detail, _, dets := env.startedGame(t, 2)

	outsider := env.createUser(t, "outsider")
	if _, err := env.ledger.RecordMove(detail.Game.ID, outsider.ID, 13, 26, models.TransportTaxi); !errors.Is(err, ErrPlayerNotSeated) {
		t.Errorf("expected ErrPlayerNotSeated, got %v", err)
	}

	if err := env.sessions.LeaveGame(detail.Game.ID, dets[0].ID); err != nil {
		t.Fatalf("LeaveGame failed: %v", err)
	}
	if _, err := env.ledger.RecordMove(detail.Game.ID, dets[0].ID, 13, 26, models.TransportTaxi); !errors.Is(err, ErrPlayerInactive) {
		t.Errorf("expected ErrPlayerInactive, got %v", err)
	}
}

// rejectEverything is a validator that refuses all moves.
type rejectEverything struct{}

func (rejectEverything) ValidateMove(*models.Game, *models.Player, int, int, models.TransportType) error {
	return errors.New("no moves today")
}

func TestRecordMoveConsultsValidator(t *testing.T) {
	env := newTestEnv(t)
	env.ledger = NewLedgerService(env.sessions, env.moveRepo, rejectEverything{}, nil, env.locks, zap.NewNop())

	detail, host, _ := env.startedGame(t, 1)
	mrX := playerFor(t, detail, host.ID)

	_, err := env.ledger.RecordMove(detail.Game.ID, host.ID, *mrX.Location, destinationFrom(*mrX.Location), models.TransportTaxi)
	if !errors.Is(err, ErrIllegalMove) {
		t.Errorf("expected ErrIllegalMove, got %v", err)
	}
}

// winAfter reports the game over once the ledger reaches n moves.
type winAfter struct{ n int }

func (w winAfter) GameOver(game *models.Game, _ []models.Player, move *models.Move) bool {
	return move.ID >= int64(w.n)
}

func TestWinConditionFinishesGame(t *testing.T) {
	env := newTestEnv(t)
	env.ledger = NewLedgerService(env.sessions, env.moveRepo, nil, winAfter{n: 1}, env.locks, zap.NewNop())

	detail, host, _ := env.startedGame(t, 1)
	mrX := playerFor(t, detail, host.ID)

	if _, err := env.ledger.RecordMove(detail.Game.ID, host.ID, *mrX.Location, destinationFrom(*mrX.Location), models.TransportTaxi); err != nil {
		t.Fatalf("RecordMove failed: %v", err)
	}

	got, err := env.sessions.GetGame(detail.Game.ID)
	if err != nil {
		t.Fatalf("GetGame failed: %v", err)
	}
	if got.Game.Status != models.StatusFinished {
		t.Errorf("expected FINISHED after win condition, got %s", got.Game.Status)
	}

	if _, err := env.ledger.RecordMove(detail.Game.ID, host.ID, 13, 26, models.TransportTaxi); !errors.Is(err, ErrGameNotInProgress) {
		t.Errorf("expected ErrGameNotInProgress after finish, got %v", err)
	}
}

func TestConcurrentMovesExactlyOneWins(t *testing.T) {
	env := newTestEnv(t)
	detail, host, _ := env.startedGame(t, 1)

	mrX := playerFor(t, detail, host.ID)
	from := *mrX.Location

	const racers = 2
	errs := make(chan error, racers)
	for i := 0; i < racers; i++ {
		go func(to int) {
			_, err := env.ledger.RecordMove(detail.Game.ID, host.ID, from, to, models.TransportTaxi)
			errs <- err
		}(destinationFrom(from) + i)
	}

	var wins, stale int
	for i := 0; i < racers; i++ {
		switch err := <-errs; {
		case err == nil:
			wins++
		case errors.Is(err, ErrStaleMoveOrigin):
			stale++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}

	if wins != 1 || stale != racers-1 {
		t.Errorf("expected exactly one winner, got %d wins and %d stale rejections", wins, stale)
	}

	count, err := env.moveRepo.CountByGame(detail.Game.ID)
	if err != nil {
		t.Fatalf("CountByGame failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 ledger entry, got %d", count)
	}
}

func TestListMovesUnknownGame(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.ledger.ListMoves("no-such-game")
	if !errors.Is(err, ErrGameNotFound) {
		t.Errorf("expected ErrGameNotFound, got %v", err)
	}
}
