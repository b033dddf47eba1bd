package player

import "testing"

func TestNormalizePosition(t *testing.T) {
	cases := []struct {
		raw  string
		want Position
	}{
		{"G", PositionGoalkeeper},
		{"GK", PositionGoalkeeper},
		{"Goalkeeper", PositionGoalkeeper},
		{" keeper ", PositionGoalkeeper},
		{"CB", PositionDefender},
		{"lwb", PositionDefender},
		{"Centre-Back", PositionDefender},
		{"CAM", PositionMidfielder},
		{"cdm", PositionMidfielder},
		{"Midfielder", PositionMidfielder},
		{"ST", PositionForward},
		{"LW", PositionForward},
		{"Striker", PositionForward},
	}

	for _, tc := range cases {
		got, ok := NormalizePosition(tc.raw)
		if !ok {
			t.Fatalf("NormalizePosition(%q) not recognized", tc.raw)
		}
		if got != tc.want {
			t.Fatalf("NormalizePosition(%q) = %s, want %s", tc.raw, got, tc.want)
		}
	}
}

func TestNormalizePosition_Unknown(t *testing.T) {
	for _, raw := range []string{"", "   ", "COACH", "BENCH"} {
		if _, ok := NormalizePosition(raw); ok {
			t.Fatalf("NormalizePosition(%q) unexpectedly recognized", raw)
		}
	}
}

func TestPlayerValidate(t *testing.T) {
	valid := Player{
		ID:       "p1",
		MatchID:  "m1",
		TeamID:   "t1",
		Name:     "Asep",
		Position: PositionMidfielder,
		Rating:   77,
		Eligible: true,
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid player rejected: %v", err)
	}

	broken := valid
	broken.Position = "LIBERO"
	if err := broken.Validate(); err == nil {
		t.Fatal("expected invalid position to be rejected")
	}
}
