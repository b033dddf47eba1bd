package squad

import (
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/riskibarqy/squad-predictor/internal/domain/formation"
	"github.com/riskibarqy/squad-predictor/internal/domain/player"
)

// rosterFor433 builds a minimal 4-3-3 roster: one GK rated 85 and ten eligible
// outfielders rated 60-90.
func rosterFor433() []player.Player {
	roster := []player.Player{
		outfielder("gk-1", player.PositionGoalkeeper, 85),
	}
	specs := []struct {
		id     string
		pos    player.Position
		rating int
	}{
		{"def-1", player.PositionDefender, 82},
		{"def-2", player.PositionDefender, 78},
		{"def-3", player.PositionDefender, 74},
		{"def-4", player.PositionDefender, 60},
		{"mid-1", player.PositionMidfielder, 88},
		{"mid-2", player.PositionMidfielder, 81},
		{"mid-3", player.PositionMidfielder, 66},
		{"fwd-1", player.PositionForward, 90},
		{"fwd-2", player.PositionForward, 84},
		{"fwd-3", player.PositionForward, 71},
	}
	for _, s := range specs {
		roster = append(roster, outfielder(s.id, s.pos, s.rating))
	}
	return roster
}

func TestAutoFill_Complete433(t *testing.T) {
	f := testFormation(t)
	roster := rosterFor433()

	a, err := AutoFill(f, Assignment{}, roster)
	if err != nil {
		t.Fatalf("auto-fill: %v", err)
	}
	if !a.Complete() {
		t.Fatalf("auto-fill left %d empty slots", formation.SlotCount-a.Filled())
	}

	if id, _ := a.PlayerAt(0); id != "gk-1" {
		t.Fatalf("GK slot holds %q, want gk-1", id)
	}

	// Defender slots take the four defenders by descending rating; the LB
	// slot comes first in formation order, so it gets the best one.
	if id, _ := a.PlayerAt(1); id != "def-1" {
		t.Fatalf("slot 1 holds %q, want def-1", id)
	}
	// Midfield slots take midfielders by rating.
	if id, _ := a.PlayerAt(5); id != "mid-1" {
		t.Fatalf("slot 5 holds %q, want mid-1", id)
	}
	// LW comes before ST in formation order, so the best forward lands there.
	if id, _ := a.PlayerAt(8); id != "fwd-1" {
		t.Fatalf("slot 8 holds %q, want fwd-1", id)
	}
}

func TestAutoFill_KeepsExplicitPicks(t *testing.T) {
	f := testFormation(t)
	roster := rosterFor433()

	// The user put the weakest defender at LB; greedy fill would have chosen
	// def-1 for that slot.
	current := NewAssignment(f)
	if err := current.Assign(f, 1, outfielder("def-4", player.PositionDefender, 60)); err != nil {
		t.Fatalf("assign: %v", err)
	}

	a, err := AutoFill(f, current, roster)
	if err != nil {
		t.Fatalf("auto-fill: %v", err)
	}
	if !a.Complete() {
		t.Fatalf("auto-fill left %d empty slots", formation.SlotCount-a.Filled())
	}

	if id, _ := a.PlayerAt(1); id != "def-4" {
		t.Fatalf("slot 1 holds %q, want the explicit pick def-4", id)
	}
	if slot, ok := a.SlotOf("def-1"); !ok || slot == 1 {
		t.Fatalf("best defender should fill another slot, got slot=%d ok=%v", slot, ok)
	}
	// The placed player must not be handed out again.
	count := 0
	for _, id := range a.Players() {
		if id == "def-4" {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("def-4 placed %d times", count)
	}
}

func TestAutoFill_Deterministic(t *testing.T) {
	f := testFormation(t)
	roster := rosterFor433()

	first, err := AutoFill(f, Assignment{}, roster)
	if err != nil {
		t.Fatalf("first auto-fill: %v", err)
	}
	second, err := AutoFill(f, Assignment{}, roster)
	if err != nil {
		t.Fatalf("second auto-fill: %v", err)
	}

	if !reflect.DeepEqual(first.Slots, second.Slots) {
		t.Fatalf("auto-fill not deterministic:\n%v\n%v", first.Slots, second.Slots)
	}
}

func TestAutoFill_TiesBreakOnRosterOrder(t *testing.T) {
	f := testFormation(t)
	roster := []player.Player{
		outfielder("gk-1", player.PositionGoalkeeper, 70),
	}
	for i := 0; i < 10; i++ {
		roster = append(roster, outfielder(fmt.Sprintf("p-%d", i), player.PositionMidfielder, 75))
	}

	a, err := AutoFill(f, Assignment{}, roster)
	if err != nil {
		t.Fatalf("auto-fill: %v", err)
	}
	// All outfielders tie on rating: slot 1 must take the first in roster
	// order.
	if id, _ := a.PlayerAt(1); id != "p-0" {
		t.Fatalf("slot 1 holds %q, want p-0", id)
	}
}

func TestAutoFill_FallbackAcrossCategories(t *testing.T) {
	f := testFormation(t)
	// No forwards at all; the front three slots must fall back to the best
	// remaining outfielders rather than stay empty.
	roster := []player.Player{
		outfielder("gk-1", player.PositionGoalkeeper, 70),
		outfielder("def-1", player.PositionDefender, 80),
		outfielder("def-2", player.PositionDefender, 79),
		outfielder("def-3", player.PositionDefender, 78),
		outfielder("def-4", player.PositionDefender, 77),
		outfielder("mid-1", player.PositionMidfielder, 85),
		outfielder("mid-2", player.PositionMidfielder, 84),
		outfielder("mid-3", player.PositionMidfielder, 83),
		outfielder("mid-4", player.PositionMidfielder, 82),
		outfielder("mid-5", player.PositionMidfielder, 81),
		outfielder("mid-6", player.PositionMidfielder, 65),
	}

	a, err := AutoFill(f, Assignment{}, roster)
	if err != nil {
		t.Fatalf("auto-fill: %v", err)
	}
	if !a.Complete() {
		t.Fatalf("fallback left %d empty slots", formation.SlotCount-a.Filled())
	}
}

func TestAutoFill_IneligiblePlayersNeverPlaced(t *testing.T) {
	f := testFormation(t)
	roster := rosterFor433()
	injured := outfielder("injured-1", player.PositionMidfielder, 99)
	injured.Eligible = false
	roster = append(roster, injured)

	a, err := AutoFill(f, Assignment{}, roster)
	if err != nil {
		t.Fatalf("auto-fill: %v", err)
	}
	if _, ok := a.SlotOf("injured-1"); ok {
		t.Fatal("ineligible player was placed")
	}
}

func TestAutoFill_NoGoalkeeperIsIncomplete(t *testing.T) {
	f := testFormation(t)
	roster := rosterFor433()[1:] // drop the keeper
	roster = append(roster, outfielder("mid-extra", player.PositionMidfielder, 70))

	a, err := AutoFill(f, Assignment{}, roster)
	var incomplete IncompleteAutoFillError
	if !errors.As(err, &incomplete) {
		t.Fatalf("expected IncompleteAutoFillError, got %v", err)
	}
	if incomplete.Category != player.PositionGoalkeeper {
		t.Fatalf("missing category %s, want GK", incomplete.Category)
	}
	if _, ok := a.PlayerAt(0); ok {
		t.Fatal("GK slot must stay empty without a goalkeeper")
	}
	if a.Filled() != formation.SlotCount-1 {
		t.Fatalf("outfield slots not filled: %d", a.Filled())
	}
}
