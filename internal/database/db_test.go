package database

import (
	"path/filepath"
	"testing"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := Initialize(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to initialize database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.RunMigrations("../../migrations"); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	return db
}

func TestMigrationsCreateSchema(t *testing.T) {
	db := newTestDB(t)

	for _, table := range []string{"users", "games", "players", "moves", "migrations"} {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name = ?", table).Scan(&name)
		if err != nil {
			t.Errorf("table %s missing after migrations: %v", table, err)
		}
	}
}

func TestMigrationsAreIdempotent(t *testing.T) {
	db := newTestDB(t)

	if err := db.RunMigrations("../../migrations"); err != nil {
		t.Fatalf("second migration run failed: %v", err)
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM migrations").Scan(&count); err != nil {
		t.Fatalf("failed to count migrations: %v", err)
	}
	if count == 0 {
		t.Error("expected recorded migrations")
	}
}

func TestExecReturningID(t *testing.T) {
	db := newTestDB(t)

	id, err := db.ExecReturningID(
		"INSERT INTO users (email, username, password_hash) VALUES (?, ?, ?)",
		"a@example.com", "alice", "hash")
	if err != nil {
		t.Fatalf("ExecReturningID failed: %v", err)
	}
	if id == 0 {
		t.Error("expected a non-zero ID")
	}

	id2, err := db.ExecReturningID(
		"INSERT INTO users (email, username, password_hash) VALUES (?, ?, ?)",
		"b@example.com", "bob", "hash")
	if err != nil {
		t.Fatalf("ExecReturningID failed: %v", err)
	}
	if id2 <= id {
		t.Errorf("expected IDs to increase, got %d then %d", id, id2)
	}
}

func TestIsUniqueViolation(t *testing.T) {
	db := newTestDB(t)

	_, err := db.ExecReturningID(
		"INSERT INTO users (email, username, password_hash) VALUES (?, ?, ?)",
		"a@example.com", "alice", "hash")
	if err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	_, err = db.ExecReturningID(
		"INSERT INTO users (email, username, password_hash) VALUES (?, ?, ?)",
		"a@example.com", "alice2", "hash")
	if err == nil {
		t.Fatal("expected duplicate email to fail")
	}
	if !db.IsUniqueViolation(err) {
		t.Errorf("expected unique violation, got %v", err)
	}

	if db.IsUniqueViolation(nil) {
		t.Error("nil error reported as unique violation")
	}
}

// The schema itself arbitrates game invariants, so concurrent writers get
// deterministic constraint failures rather than corrupt state.
func TestSchemaConstraints(t *testing.T) {
	db := newTestDB(t)

	hostID, err := db.ExecReturningID(
		"INSERT INTO users (email, username, password_hash) VALUES (?, ?, ?)",
		"host@example.com", "host", "hash")
	if err != nil {
		t.Fatalf("insert user failed: %v", err)
	}

	insertGame := func(id, code, status string) error {
		_, err := db.Exec(
			"INSERT INTO games (id, code, status, current_round, host_user_id) VALUES (?, ?, ?, 0, ?)",
			id, code, status, hostID)
		return err
	}

	t.Run("active join codes are unique", func(t *testing.T) {
		if err := insertGame("g1", "AAAAAA", "WAITING"); err != nil {
			t.Fatalf("insert game failed: %v", err)
		}
		if err := insertGame("g2", "AAAAAA", "WAITING"); !db.IsUniqueViolation(err) {
			t.Errorf("expected unique violation for duplicate active code, got %v", err)
		}
		// Terminal games release their claim on the code.
		if err := insertGame("g3", "AAAAAA", "CANCELLED"); err != nil {
			t.Errorf("cancelled game should not hold the code: %v", err)
		}
	})

	t.Run("one Mr. X per game", func(t *testing.T) {
		if err := insertGame("g4", "BBBBBB", "WAITING"); err != nil {
			t.Fatalf("insert game failed: %v", err)
		}
		otherID, err := db.ExecReturningID(
			"INSERT INTO users (email, username, password_hash) VALUES (?, ?, ?)",
			"other@example.com", "other", "hash")
		if err != nil {
			t.Fatalf("insert user failed: %v", err)
		}

		insertSeat := func(userID int64, role string) error {
			_, err := db.Exec(
				"INSERT INTO players (game_id, user_id, role, color, is_active) VALUES (?, ?, ?, 'BLACK', 1)",
				"g4", userID, role)
			return err
		}

		if err := insertSeat(hostID, "MR_X"); err != nil {
			t.Fatalf("first Mr. X seat failed: %v", err)
		}
		if err := insertSeat(otherID, "MR_X"); !db.IsUniqueViolation(err) {
			t.Errorf("expected unique violation for second Mr. X, got %v", err)
		}
		if err := insertSeat(otherID, "DETECTIVE"); err != nil {
			t.Errorf("detective seat should be allowed: %v", err)
		}
	})

	t.Run("one seat per user per game", func(t *testing.T) {
		_, err := db.Exec(
			"INSERT INTO players (game_id, user_id, role, color, is_active) VALUES (?, ?, 'DETECTIVE', 'RED', 1)",
			"g4", hostID)
		if !db.IsUniqueViolation(err) {
			t.Errorf("expected unique violation for double seat, got %v", err)
		}
	})
}
