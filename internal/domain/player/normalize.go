package player

import "strings"

// positionByLabel maps the raw position labels seen across providers onto the
// closed Position enum. Keys are upper-cased, trimmed labels.
var positionByLabel = map[string]Position{
	"G":          PositionGoalkeeper,
	"GK":         PositionGoalkeeper,
	"GOALKEEPER": PositionGoalkeeper,
	"KEEPER":     PositionGoalkeeper,

	"D":          PositionDefender,
	"DEF":        PositionDefender,
	"DEFENDER":   PositionDefender,
	"CB":         PositionDefender,
	"LB":         PositionDefender,
	"RB":         PositionDefender,
	"LWB":        PositionDefender,
	"RWB":        PositionDefender,
	"SW":         PositionDefender,
	"FULLBACK":   PositionDefender,
	"WINGBACK":   PositionDefender,
	"CENTREBACK": PositionDefender,

	"M":          PositionMidfielder,
	"MID":        PositionMidfielder,
	"MIDFIELDER": PositionMidfielder,
	"CM":         PositionMidfielder,
	"CDM":        PositionMidfielder,
	"CAM":        PositionMidfielder,
	"DM":         PositionMidfielder,
	"AM":         PositionMidfielder,
	"LM":         PositionMidfielder,
	"RM":         PositionMidfielder,

	"F":        PositionForward,
	"FW":       PositionForward,
	"FWD":      PositionForward,
	"FORWARD":  PositionForward,
	"ATTACKER": PositionForward,
	"ST":       PositionForward,
	"CF":       PositionForward,
	"SS":       PositionForward,
	"LW":       PositionForward,
	"RW":       PositionForward,
	"STRIKER":  PositionForward,
	"WINGER":   PositionForward,
}

// NormalizePosition resolves a raw provider label ("G", "Goalkeeper", "CB",
// "CAM", ...) into a Position. Unknown or empty labels come back as
// (zero, false); callers decide whether to skip or reject the player.
func NormalizePosition(raw string) (Position, bool) {
	label := strings.ToUpper(strings.TrimSpace(raw))
	label = strings.ReplaceAll(label, "-", "")
	label = strings.ReplaceAll(label, " ", "")
	if label == "" {
		return "", false
	}

	pos, ok := positionByLabel[label]
	return pos, ok
}
