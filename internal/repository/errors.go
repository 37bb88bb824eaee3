package repository

import "errors"

// Storage-arbitrated conflicts. Repositories translate driver-level unique
// constraint violations into these so services can map them onto their own
// error taxonomy without knowing which database is behind them.
var (
	// ErrDuplicateCode is returned when an insert collides with the unique
	// index on active game codes.
	ErrDuplicateCode = errors.New("join code already in use")

	// ErrDuplicateSeat is returned when an insert collides with the
	// (game_id, user_id) or single-Mr.-X constraint.
	ErrDuplicateSeat = errors.New("seat already taken")

	// ErrDuplicateUser is returned when a user insert collides with the
	// unique email or username constraint.
	ErrDuplicateUser = errors.New("user already exists")

	// ErrLocationChanged is returned when the compare-and-swap on a
	// player's location matches zero rows: another move won the race.
	ErrLocationChanged = errors.New("player location changed concurrently")

	// ErrStatusChanged is returned when a status transition's
	// compare-and-swap matches zero rows.
	ErrStatusChanged = errors.New("game status changed concurrently")
)
