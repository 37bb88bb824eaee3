package service

import (
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"shadowchase/internal/database"
	"shadowchase/internal/models"
	"shadowchase/internal/repository"
)

// testEnv wires the services against a throwaway SQLite database with the
// real schema applied.
type testEnv struct {
	db       *database.DB
	userRepo *repository.UserRepository
	gameRepo *repository.GameRepository
	moveRepo *repository.MoveRepository
	locks    *GameLocks
	sessions *SessionService
	ledger   *LedgerService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := database.Initialize(dbPath)
	if err != nil {
		t.Fatalf("failed to initialize database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.RunMigrations("../../migrations"); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	logger := zap.NewNop()
	userRepo := repository.NewUserRepository(db)
	gameRepo := repository.NewGameRepository(db)
	moveRepo := repository.NewMoveRepository(db)
	locks := NewGameLocks()
	sessions := NewSessionService(gameRepo, locks, 6, 10, logger)
	ledger := NewLedgerService(sessions, moveRepo, nil, nil, locks, logger)

	return &testEnv{
		db:       db,
		userRepo: userRepo,
		gameRepo: gameRepo,
		moveRepo: moveRepo,
		locks:    locks,
		sessions: sessions,
		ledger:   ledger,
	}
}

func (env *testEnv) createUser(t *testing.T, username string) *models.User {
	t.Helper()
	user, err := env.userRepo.CreateUser(username+"@example.com", username, "not-a-real-hash")
	if err != nil {
		t.Fatalf("failed to create user %s: %v", username, err)
	}
	return user
}

// startedGame creates a game with a host and n detectives and starts it.
func (env *testEnv) startedGame(t *testing.T, detectives int) (*models.GameDetail, *models.User, []*models.User) {
	t.Helper()

	host := env.createUser(t, "host")
	detail, err := env.sessions.CreateGame(host.ID)
	if err != nil {
		t.Fatalf("failed to create game: %v", err)
	}

	var joined []*models.User
	for i := 0; i < detectives; i++ {
		u := env.createUser(t, "det"+string(rune('a'+i)))
		if _, err := env.sessions.JoinGame(detail.Game.Code, u.ID); err != nil {
			t.Fatalf("failed to join game: %v", err)
		}
		joined = append(joined, u)
	}

	started, err := env.sessions.StartGame(detail.Game.ID, host.ID)
	if err != nil {
		t.Fatalf("failed to start game: %v", err)
	}
	return started, host, joined
}

// playerFor finds a user's seat in a game detail.
func playerFor(t *testing.T, detail *models.GameDetail, userID int64) *models.Player {
	t.Helper()
	for i := range detail.Players {
		if detail.Players[i].UserID == userID {
			return &detail.Players[i]
		}
	}
	t.Fatalf("user %d has no seat in game %s", userID, detail.Game.ID)
	return nil
}
