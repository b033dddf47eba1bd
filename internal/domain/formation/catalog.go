package formation

import "fmt"

// Formation identifiers shipped in the catalog.
const (
	ID433  = "4-3-3"
	ID442  = "4-4-2"
	ID4231 = "4-2-3-1"
	ID352  = "3-5-2"
	ID532  = "5-3-2"
)

// catalog is the static formation table. Slots are listed in formation order:
// goalkeeper first, then defense to attack, left to right. Coordinates are
// pitch percentages with Y=0 at the own goal line.
var catalog = map[string]Formation{
	ID433: {
		ID:    ID433,
		Slots: slots("GK", "LB", "CB", "CB", "RB", "CM", "CM", "CM", "LW", "ST", "RW"),
		Coordinates: []Coordinate{
			{50, 5},
			{15, 25}, {38, 22}, {62, 22}, {85, 25},
			{30, 50}, {50, 45}, {70, 50},
			{18, 78}, {50, 85}, {82, 78},
		},
	},
	ID442: {
		ID:    ID442,
		Slots: slots("GK", "LB", "CB", "CB", "RB", "LM", "CM", "CM", "RM", "ST", "ST"),
		Coordinates: []Coordinate{
			{50, 5},
			{15, 25}, {38, 22}, {62, 22}, {85, 25},
			{15, 52}, {38, 48}, {62, 48}, {85, 52},
			{38, 82}, {62, 82},
		},
	},
	ID4231: {
		ID:    ID4231,
		Slots: slots("GK", "LB", "CB", "CB", "RB", "CDM", "CDM", "LW", "CAM", "RW", "ST"),
		Coordinates: []Coordinate{
			{50, 5},
			{15, 25}, {38, 22}, {62, 22}, {85, 25},
			{38, 42}, {62, 42},
			{18, 62}, {50, 60}, {82, 62},
			{50, 85},
		},
	},
	ID352: {
		ID:    ID352,
		Slots: slots("GK", "CB", "CB", "CB", "LWB", "CM", "CM", "CM", "RWB", "ST", "ST"),
		Coordinates: []Coordinate{
			{50, 5},
			{28, 22}, {50, 20}, {72, 22},
			{10, 45}, {32, 48}, {50, 44}, {68, 48}, {90, 45},
			{38, 82}, {62, 82},
		},
	},
	ID532: {
		ID:    ID532,
		Slots: slots("GK", "LWB", "CB", "CB", "CB", "RWB", "CM", "CM", "CM", "ST", "ST"),
		Coordinates: []Coordinate{
			{50, 5},
			{10, 30}, {30, 20}, {50, 18}, {70, 20}, {90, 30},
			{30, 52}, {50, 48}, {70, 52},
			{38, 82}, {62, 82},
		},
	},
}

// Get looks up a formation by id. Unknown ids fail with ErrUnknownFormation.
func Get(id string) (Formation, error) {
	f, ok := catalog[id]
	if !ok {
		return Formation{}, fmt.Errorf("%w: %s", ErrUnknownFormation, id)
	}

	return f, nil
}

// IDs returns the catalog's formation ids in a stable order.
func IDs() []string {
	return []string{ID433, ID442, ID4231, ID352, ID532}
}

func slots(roles ...string) []Slot {
	out := make([]Slot, len(roles))
	for i, role := range roles {
		out[i] = Slot{Index: i, Role: role}
	}
	return out
}
