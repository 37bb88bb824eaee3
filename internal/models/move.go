package models

import "time"

// TransportType is the link type used for a move
type TransportType string

const (
	TransportTaxi        TransportType = "TAXI"
	TransportBus         TransportType = "BUS"
	TransportUnderground TransportType = "UNDERGROUND"
	TransportBlack       TransportType = "BLACK"
	TransportFerry       TransportType = "FERRY"
)

// IsValid reports whether t is a known transport type
func (t TransportType) IsValid() bool {
	switch t {
	case TransportTaxi, TransportBus, TransportUnderground, TransportBlack, TransportFerry:
		return true
	}
	return false
}

// Move is one accepted position change. Rows are append-only: once written
// they are never updated or deleted.
type Move struct {
	ID            int64
	GameID        string
	PlayerID      int64
	Round         int
	FromLocation  int
	ToLocation    int
	TransportType TransportType
	CreatedAt     time.Time
}
