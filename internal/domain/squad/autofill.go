package squad

import (
	"github.com/riskibarqy/squad-predictor/internal/domain/formation"
	"github.com/riskibarqy/squad-predictor/internal/domain/player"
)

// AutoFill completes current by filling its empty slots from the roster.
// Explicit picks are kept as-is and their players removed from the candidate
// pool. It is a greedy single pass in formation order: each empty slot takes
// the highest-rated remaining eligible player of its preferred category, ties
// broken by roster order. A slot with no preferred-category candidate falls
// back to the highest-rated remaining eligible outfielder; the GK slot never
// falls back and is left empty when the roster has no goalkeeper, reported
// as IncompleteAutoFillError. Deterministic for identical inputs. Pass a
// zero Assignment to fill a side from scratch.
func AutoFill(f formation.Formation, current Assignment, roster []player.Player) (Assignment, error) {
	assignment := NewAssignment(f)
	used := make(map[string]struct{}, formation.SlotCount)
	for idx, id := range current.Slots {
		if id == "" || idx < 0 || idx >= formation.SlotCount {
			continue
		}
		assignment.Slots[idx] = id
		used[id] = struct{}{}
	}

	missing := 0
	var missingCategory player.Position
	for _, slot := range f.Slots {
		if _, occupied := assignment.Slots[slot.Index]; occupied {
			continue
		}
		pick, ok := pickCandidate(roster, used, slot)
		if !ok {
			missing++
			if missingCategory == "" {
				missingCategory = slot.PreferredCategory()
			}
			continue
		}

		used[pick.ID] = struct{}{}
		assignment.Slots[slot.Index] = pick.ID
	}

	if missing > 0 {
		return assignment, IncompleteAutoFillError{Category: missingCategory, Missing: missing}
	}

	return assignment, nil
}

func pickCandidate(roster []player.Player, used map[string]struct{}, slot formation.Slot) (player.Player, bool) {
	preferred := slot.PreferredCategory()

	if pick, ok := bestRemaining(roster, used, func(p player.Player) bool {
		return p.Position == preferred
	}); ok {
		return pick, true
	}

	// GK is a hard constraint; every other slot may take any outfielder.
	if slot.Goalkeeper() {
		return player.Player{}, false
	}

	return bestRemaining(roster, used, func(p player.Player) bool {
		return p.Position != player.PositionGoalkeeper
	})
}

func bestRemaining(roster []player.Player, used map[string]struct{}, match func(player.Player) bool) (player.Player, bool) {
	var best player.Player
	found := false
	for _, p := range roster {
		if !p.Eligible {
			continue
		}
		if _, taken := used[p.ID]; taken {
			continue
		}
		if !match(p) {
			continue
		}
		// Strict greater keeps ties stable on roster order.
		if !found || p.Rating > best.Rating {
			best = p
			found = true
		}
	}
	return best, found
}
