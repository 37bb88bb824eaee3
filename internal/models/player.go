package models

import "time"

// PlayerRole distinguishes the hidden player from the seekers
type PlayerRole string

const (
	RoleMrX       PlayerRole = "MR_X"
	RoleDetective PlayerRole = "DETECTIVE"
)

// IsValid reports whether r is a known role
func (r PlayerRole) IsValid() bool {
	return r == RoleMrX || r == RoleDetective
}

// PlayerColor is the pawn color shown on the board
type PlayerColor string

const (
	ColorBlack  PlayerColor = "BLACK"
	ColorRed    PlayerColor = "RED"
	ColorYellow PlayerColor = "YELLOW"
	ColorGreen  PlayerColor = "GREEN"
	ColorBlue   PlayerColor = "BLUE"
)

// DetectiveColors lists the colors handed out to detectives in join order.
// Mr. X always plays black, so the table bounds a game at four detectives.
var DetectiveColors = []PlayerColor{ColorRed, ColorYellow, ColorGreen, ColorBlue}

// Player is a user's seat in one game. Seats are never deleted; leaving a
// game flips IsActive off so move history stays referentially intact.
type Player struct {
	ID       int64
	GameID   string
	UserID   int64
	Role     PlayerRole
	Color    PlayerColor
	IsActive bool
	Location *int
	JoinedAt time.Time
	Username string // populated via JOIN for responses
}

// HasLocation reports whether the player has been placed on the board
func (p *Player) HasLocation() bool {
	return p.Location != nil
}
