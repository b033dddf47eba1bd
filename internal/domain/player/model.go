package player

import "fmt"

// Position represents the closed set of position categories used by the
// formation engine. Raw provider labels are normalized into this enum once,
// at roster ingestion; nothing downstream compares raw strings.
type Position string

const (
	PositionGoalkeeper Position = "GK"
	PositionDefender   Position = "DEF"
	PositionMidfielder Position = "MID"
	PositionForward    Position = "FWD"
)

var AllPositions = map[Position]struct{}{
	PositionGoalkeeper: {},
	PositionDefender:   {},
	PositionMidfielder: {},
	PositionForward:    {},
}

// Player is one eligible pool member for a match. Immutable for the duration
// of a match-editing session.
type Player struct {
	ID       string
	MatchID  string
	TeamID   string
	Name     string
	Position Position
	Rating   int
	Eligible bool
}

func (p Player) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("player id is required")
	}
	if p.MatchID == "" {
		return fmt.Errorf("player match id is required")
	}
	if p.TeamID == "" {
		return fmt.Errorf("player team id is required")
	}
	if p.Name == "" {
		return fmt.Errorf("player name is required")
	}
	if _, ok := AllPositions[p.Position]; !ok {
		return fmt.Errorf("invalid player position: %s", p.Position)
	}
	if p.Rating < 0 {
		return fmt.Errorf("player rating cannot be negative")
	}

	return nil
}
