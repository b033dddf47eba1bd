package squad

import (
	"errors"
	"fmt"

	"github.com/riskibarqy/squad-predictor/internal/domain/player"
)

var (
	ErrInvalidSlot      = errors.New("slot does not exist in formation")
	ErrPlayerIneligible = errors.New("player is not eligible for selection")
	ErrCategoryMismatch = errors.New("player position does not fit slot")
	ErrSquadLocked      = errors.New("squad is locked for edits")
	ErrNoFormation      = errors.New("no formation selected")
	ErrDefenseNotChosen = errors.New("defense choice has not been made")
)

// IncompleteSquadError rejects completion while slots are still empty.
type IncompleteSquadError struct {
	Missing int
}

func (e IncompleteSquadError) Error() string {
	return fmt.Sprintf("squad is incomplete: %d slot(s) empty", e.Missing)
}

// IncompleteAutoFillError flags an auto-fill run that could not populate
// every slot, naming the category the roster lacked.
type IncompleteAutoFillError struct {
	Category player.Position
	Missing  int
}

func (e IncompleteAutoFillError) Error() string {
	return fmt.Sprintf("auto-fill incomplete: %d slot(s) empty, missing %s", e.Missing, e.Category)
}
