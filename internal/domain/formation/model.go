package formation

import (
	"errors"
	"fmt"

	"github.com/riskibarqy/squad-predictor/internal/domain/player"
)

var ErrUnknownFormation = errors.New("unknown formation")

// SlotCount is the fixed number of positional slots in every formation.
const SlotCount = 11

// Coordinate is a slot's layout position on the pitch, expressed as
// percentages of the pitch width (X) and length (Y).
type Coordinate struct {
	X float64
	Y float64
}

// Slot is one of the 11 fixed positions in a formation. Role is the position
// label ("GK", "CB", "CAM", ...). Only the goalkeeper slot carries a hard
// category requirement; every other slot requires a non-goalkeeper and keeps
// its role as a soft preference for the auto-fill heuristic.
type Slot struct {
	Index int
	Role  string
}

// Goalkeeper reports whether the slot is the hard-constrained GK slot.
func (s Slot) Goalkeeper() bool {
	return s.Role == "GK"
}

// PreferredCategory resolves the slot's role label into the position category
// the auto-fill heuristic prefers for it. The validator never consults this;
// it only distinguishes GK from outfield.
func (s Slot) PreferredCategory() player.Position {
	switch s.Role {
	case "GK":
		return player.PositionGoalkeeper
	case "CB", "LB", "RB", "LWB", "RWB", "SW":
		return player.PositionDefender
	case "CM", "CDM", "CAM", "DM", "AM", "LM", "RM":
		return player.PositionMidfielder
	case "ST", "CF", "SS", "LW", "RW":
		return player.PositionForward
	default:
		return player.PositionMidfielder
	}
}

// Formation is a named arrangement of 11 slots plus their display
// coordinates. Exactly one slot is the goalkeeper slot.
type Formation struct {
	ID          string
	Slots       []Slot
	Coordinates []Coordinate
}

func (f Formation) Validate() error {
	if f.ID == "" {
		return fmt.Errorf("formation id is required")
	}
	if len(f.Slots) != SlotCount {
		return fmt.Errorf("formation %s must have %d slots, got %d", f.ID, SlotCount, len(f.Slots))
	}
	if len(f.Coordinates) != SlotCount {
		return fmt.Errorf("formation %s must have %d coordinates, got %d", f.ID, SlotCount, len(f.Coordinates))
	}

	goalkeepers := 0
	for i, slot := range f.Slots {
		if slot.Index != i {
			return fmt.Errorf("formation %s slot %d has index %d", f.ID, i, slot.Index)
		}
		if slot.Goalkeeper() {
			goalkeepers++
		}
	}
	if goalkeepers != 1 {
		return fmt.Errorf("formation %s must have exactly one GK slot, got %d", f.ID, goalkeepers)
	}

	return nil
}
