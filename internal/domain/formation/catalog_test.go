package formation

import (
	"errors"
	"testing"

	"github.com/riskibarqy/squad-predictor/internal/domain/player"
)

func TestCatalog_AllFormationsValid(t *testing.T) {
	for _, id := range IDs() {
		f, err := Get(id)
		if err != nil {
			t.Fatalf("get %s: %v", id, err)
		}
		if err := f.Validate(); err != nil {
			t.Fatalf("formation %s invalid: %v", id, err)
		}
		if !f.Slots[0].Goalkeeper() {
			t.Fatalf("formation %s slot 0 is %s, want GK", id, f.Slots[0].Role)
		}
	}
}

func TestGet_UnknownFormation(t *testing.T) {
	_, err := Get("6-1-3")
	if !errors.Is(err, ErrUnknownFormation) {
		t.Fatalf("expected ErrUnknownFormation, got %v", err)
	}
}

func TestSlot_PreferredCategory(t *testing.T) {
	cases := map[string]player.Position{
		"GK":  player.PositionGoalkeeper,
		"CB":  player.PositionDefender,
		"RWB": player.PositionDefender,
		"CDM": player.PositionMidfielder,
		"CAM": player.PositionMidfielder,
		"ST":  player.PositionForward,
		"LW":  player.PositionForward,
	}
	for role, want := range cases {
		got := (Slot{Role: role}).PreferredCategory()
		if got != want {
			t.Fatalf("role %s preferred %s, want %s", role, got, want)
		}
	}
}

func TestCatalog_433SlotOrder(t *testing.T) {
	f, err := Get(ID433)
	if err != nil {
		t.Fatalf("get 4-3-3: %v", err)
	}

	wantRoles := []string{"GK", "LB", "CB", "CB", "RB", "CM", "CM", "CM", "LW", "ST", "RW"}
	for i, role := range wantRoles {
		if f.Slots[i].Role != role {
			t.Fatalf("slot %d role %s, want %s", i, f.Slots[i].Role, role)
		}
	}
}
