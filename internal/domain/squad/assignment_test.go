package squad

import (
	"errors"
	"fmt"
	"testing"

	"github.com/riskibarqy/squad-predictor/internal/domain/formation"
	"github.com/riskibarqy/squad-predictor/internal/domain/player"
)

func testFormation(t *testing.T) formation.Formation {
	t.Helper()
	f, err := formation.Get(formation.ID433)
	if err != nil {
		t.Fatalf("get formation: %v", err)
	}
	return f
}

func outfielder(id string, pos player.Position, rating int) player.Player {
	return player.Player{
		ID:       id,
		MatchID:  "m1",
		TeamID:   "t1",
		Name:     "Player " + id,
		Position: pos,
		Rating:   rating,
		Eligible: true,
	}
}

func TestAssignment_Assign_RejectsInvalidSlot(t *testing.T) {
	f := testFormation(t)
	a := NewAssignment(f)

	err := a.Assign(f, 11, outfielder("p1", player.PositionMidfielder, 70))
	if !errors.Is(err, ErrInvalidSlot) {
		t.Fatalf("expected ErrInvalidSlot, got %v", err)
	}
	if a.Filled() != 0 {
		t.Fatalf("rejected assign mutated the assignment: %d filled", a.Filled())
	}
}

func TestAssignment_Assign_RejectsIneligible(t *testing.T) {
	f := testFormation(t)
	a := NewAssignment(f)

	injured := outfielder("p1", player.PositionDefender, 80)
	injured.Eligible = false

	err := a.Assign(f, 1, injured)
	if !errors.Is(err, ErrPlayerIneligible) {
		t.Fatalf("expected ErrPlayerIneligible, got %v", err)
	}
}

func TestAssignment_Assign_CategoryRules(t *testing.T) {
	f := testFormation(t)
	a := NewAssignment(f)

	keeper := outfielder("gk1", player.PositionGoalkeeper, 85)

	// GK into an outfield slot.
	if err := a.Assign(f, 5, keeper); !errors.Is(err, ErrCategoryMismatch) {
		t.Fatalf("expected ErrCategoryMismatch for GK in outfield slot, got %v", err)
	}
	// Outfielder into the GK slot.
	if err := a.Assign(f, 0, outfielder("p1", player.PositionForward, 90)); !errors.Is(err, ErrCategoryMismatch) {
		t.Fatalf("expected ErrCategoryMismatch for outfielder in GK slot, got %v", err)
	}
	// A defender in a forward slot is fine: category preference is soft.
	if err := a.Assign(f, 9, outfielder("p2", player.PositionDefender, 70)); err != nil {
		t.Fatalf("defender in ST slot rejected: %v", err)
	}
	if err := a.Assign(f, 0, keeper); err != nil {
		t.Fatalf("keeper in GK slot rejected: %v", err)
	}
}

func TestAssignment_Assign_MoveSemantics(t *testing.T) {
	f := testFormation(t)
	a := NewAssignment(f)
	p := outfielder("p1", player.PositionMidfielder, 75)

	if err := a.Assign(f, 5, p); err != nil {
		t.Fatalf("first assign: %v", err)
	}
	if err := a.Assign(f, 6, p); err != nil {
		t.Fatalf("move assign: %v", err)
	}

	if _, ok := a.PlayerAt(5); ok {
		t.Fatal("old slot still occupied after move")
	}
	if id, _ := a.PlayerAt(6); id != "p1" {
		t.Fatalf("new slot holds %q, want p1", id)
	}
	if a.Filled() != 1 {
		t.Fatalf("player duplicated across slots: %d filled", a.Filled())
	}
}

func TestAssignment_Uniqueness_RandomSequences(t *testing.T) {
	f := testFormation(t)
	a := NewAssignment(f)

	pool := make([]player.Player, 0, 8)
	for i := 0; i < 8; i++ {
		pool = append(pool, outfielder(fmt.Sprintf("p%d", i), player.PositionMidfielder, 60+i))
	}

	// Deterministic pseudo-random walk over (slot, player) pairs.
	seed := uint64(99)
	for step := 0; step < 500; step++ {
		seed = seed*6364136223846793005 + 1442695040888963407
		slot := int(seed>>33) % 10
		p := pool[int(seed>>17)%len(pool)]
		_ = a.Assign(f, slot+1, p)

		seen := make(map[string]int)
		for idx, id := range a.Slots {
			if prev, dup := seen[id]; dup {
				t.Fatalf("step %d: player %s in slots %d and %d", step, id, prev, idx)
			}
			seen[id] = idx
		}
	}
}

func TestAssignment_Unassign_Idempotent(t *testing.T) {
	f := testFormation(t)
	a := NewAssignment(f)

	if err := a.Assign(f, 5, outfielder("p1", player.PositionMidfielder, 75)); err != nil {
		t.Fatalf("assign: %v", err)
	}

	a.Unassign(5)
	once := a.Filled()
	a.Unassign(5)
	twice := a.Filled()

	if once != 0 || twice != 0 {
		t.Fatalf("unassign not idempotent: %d then %d filled", once, twice)
	}
}

func TestAssignment_Clone_Decoupled(t *testing.T) {
	f := testFormation(t)
	a := NewAssignment(f)
	if err := a.Assign(f, 5, outfielder("p1", player.PositionMidfielder, 75)); err != nil {
		t.Fatalf("assign: %v", err)
	}

	clone := a.Clone()
	if err := clone.Assign(f, 6, outfielder("p2", player.PositionMidfielder, 70)); err != nil {
		t.Fatalf("assign on clone: %v", err)
	}

	if a.Filled() != 1 {
		t.Fatalf("clone edit leaked into original: %d filled", a.Filled())
	}
}
