package squad

import (
	"fmt"

	"github.com/riskibarqy/squad-predictor/internal/domain/formation"
	"github.com/riskibarqy/squad-predictor/internal/domain/player"
)

// Assignment maps formation slots to player ids for one side of a squad.
// Empty slots are absent from the map. Invariants held by Assign/Unassign:
// no player id occupies more than one slot, the GK slot only ever holds a
// goalkeeper, and no outfield slot ever holds one.
type Assignment struct {
	FormationID string
	Slots       map[int]string
}

func NewAssignment(f formation.Formation) Assignment {
	return Assignment{
		FormationID: f.ID,
		Slots:       make(map[int]string, formation.SlotCount),
	}
}

// Assign places p into slotIndex. Rules are checked in order: the slot must
// exist, the player must be eligible, and the slot's hard category must fit
// (GK slot takes goalkeepers only, outfield slots take anyone else). If the
// player already occupies another slot the old occupancy is cleared in the
// same update, so a player is moved rather than duplicated. The assignment
// is unchanged on any rejection.
func (a *Assignment) Assign(f formation.Formation, slotIndex int, p player.Player) error {
	if a.FormationID != f.ID {
		return fmt.Errorf("assignment formation %s does not match %s", a.FormationID, f.ID)
	}
	if slotIndex < 0 || slotIndex >= len(f.Slots) {
		return fmt.Errorf("%w: index %d", ErrInvalidSlot, slotIndex)
	}
	if !p.Eligible {
		return fmt.Errorf("%w: %s", ErrPlayerIneligible, p.ID)
	}

	slot := f.Slots[slotIndex]
	isGoalkeeper := p.Position == player.PositionGoalkeeper
	if slot.Goalkeeper() != isGoalkeeper {
		return fmt.Errorf("%w: player=%s position=%s slot=%s", ErrCategoryMismatch, p.ID, p.Position, slot.Role)
	}

	if a.Slots == nil {
		a.Slots = make(map[int]string, formation.SlotCount)
	}
	if prev, ok := a.SlotOf(p.ID); ok && prev != slotIndex {
		delete(a.Slots, prev)
	}
	a.Slots[slotIndex] = p.ID

	return nil
}

// Unassign empties slotIndex. Clearing an already-empty slot is a no-op;
// the other side's assignment is never touched.
func (a *Assignment) Unassign(slotIndex int) {
	delete(a.Slots, slotIndex)
}

// SlotOf returns the slot currently holding playerID.
func (a Assignment) SlotOf(playerID string) (int, bool) {
	for idx, id := range a.Slots {
		if id == playerID {
			return idx, true
		}
	}
	return 0, false
}

// PlayerAt returns the player id in slotIndex, if any.
func (a Assignment) PlayerAt(slotIndex int) (string, bool) {
	id, ok := a.Slots[slotIndex]
	return id, ok
}

// Filled is the number of occupied slots.
func (a Assignment) Filled() int {
	return len(a.Slots)
}

// Complete reports whether all 11 slots are occupied.
func (a Assignment) Complete() bool {
	return len(a.Slots) == formation.SlotCount
}

// Players returns the occupied slots as an ordered array of player ids, with
// empty strings for empty slots.
func (a Assignment) Players() []string {
	out := make([]string, formation.SlotCount)
	for idx, id := range a.Slots {
		if idx >= 0 && idx < formation.SlotCount {
			out[idx] = id
		}
	}
	return out
}

func (a Assignment) Clone() Assignment {
	copied := Assignment{
		FormationID: a.FormationID,
		Slots:       make(map[int]string, len(a.Slots)),
	}
	for idx, id := range a.Slots {
		copied.Slots[idx] = id
	}
	return copied
}
