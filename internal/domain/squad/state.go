package squad

import (
	"fmt"
	"time"

	"github.com/riskibarqy/squad-predictor/internal/domain/formation"
	"github.com/riskibarqy/squad-predictor/internal/domain/player"
)

// Mode selects which side of the squad an edit applies to.
type Mode string

const (
	ModeAttack  Mode = "attack"
	ModeDefense Mode = "defense"
)

// Phase is the state machine position derived from the aggregate's fields.
type Phase string

const (
	PhaseAttackBuilding  Phase = "attack_building"
	PhaseDefenseChoice   Phase = "defense_choice"
	PhaseDefenseBuilding Phase = "defense_building"
	PhaseFinished        Phase = "finished"
)

// SideSnapshot freezes one side of a completed squad in array form for
// read-only display once the match has moved past editing.
type SideSnapshot struct {
	FormationID string
	PlayerIDs   []string
}

// Snapshot is the immutable completion record. Defense is nil when the user
// chose "same as attack" before any defense edits; display falls back to
// the attack side.
type Snapshot struct {
	TakenAt time.Time
	Attack  SideSnapshot
	Defense *SideSnapshot
}

// State is the root aggregate for one (match, user, team) editing session:
// both assignments, the current edit mode, and the lifecycle flags. Locked
// is recomputed from match status on every restore and never trusted from
// storage; everything else round-trips through persistence.
type State struct {
	MatchID      string
	UserID       string
	TeamID       string
	Mode         Mode
	Attack       Assignment
	Defense      *Assignment
	DefenseAsked bool
	Completed    bool
	AutoFilled   bool
	Locked       bool
	Snapshot     *Snapshot
	UpdatedAt    time.Time
}

func NewState(matchID, userID, teamID string) State {
	return State{
		MatchID: matchID,
		UserID:  userID,
		TeamID:  teamID,
		Mode:    ModeAttack,
	}
}

// Phase reports where the aggregate sits in the build flow.
func (s State) Phase() Phase {
	switch {
	case s.Completed:
		return PhaseFinished
	case s.Mode == ModeDefense:
		return PhaseDefenseBuilding
	case s.Attack.Complete() && !s.DefenseAsked:
		return PhaseDefenseChoice
	default:
		return PhaseAttackBuilding
	}
}

// Assignment returns the side the given mode edits. The defense side only
// exists after a defense choice was made.
func (s *State) Assignment(mode Mode) (*Assignment, error) {
	switch mode {
	case ModeAttack:
		return &s.Attack, nil
	case ModeDefense:
		if s.Defense == nil {
			return nil, ErrDefenseNotChosen
		}
		return s.Defense, nil
	default:
		return nil, fmt.Errorf("invalid mode: %s", mode)
	}
}

// SelectFormation resets the given side to an empty assignment for the
// chosen formation. Guard conditions for changing a completed attack side
// (confirmation, prediction invalidation) live with the caller; this is the
// raw transition.
func (s *State) SelectFormation(mode Mode, f formation.Formation) error {
	switch mode {
	case ModeAttack:
		s.Attack = NewAssignment(f)
		s.Mode = ModeAttack
		s.DefenseAsked = s.Defense != nil
	case ModeDefense:
		assignment := NewAssignment(f)
		s.Defense = &assignment
		s.Mode = ModeDefense
		s.DefenseAsked = true
	default:
		return fmt.Errorf("invalid mode: %s", mode)
	}

	s.Completed = false
	s.Snapshot = nil
	return nil
}

// AttackFormationChanging reports whether selecting formationID for the
// attack side replaces an already-chosen, different formation.
func (s State) AttackFormationChanging(formationID string) bool {
	return s.Attack.FormationID != "" && s.Attack.FormationID != formationID
}

// ChooseDefenseSameAsAttack copies the attack assignment into the defense
// side. The copy shares nothing with the original; later edits to one side
// never reach the other.
func (s *State) ChooseDefenseSameAsAttack() error {
	if !s.Attack.Complete() {
		return IncompleteSquadError{Missing: formation.SlotCount - s.Attack.Filled()}
	}

	copied := s.Attack.Clone()
	s.Defense = &copied
	s.DefenseAsked = true
	s.Mode = ModeAttack
	return nil
}

// ChooseDefenseDifferent opens a fresh defense assignment, pre-seeding only
// the goalkeeper slot from the attack squad's keeper.
func (s *State) ChooseDefenseDifferent(f formation.Formation, keeper *player.Player) error {
	assignment := NewAssignment(f)
	if keeper != nil {
		for _, slot := range f.Slots {
			if !slot.Goalkeeper() {
				continue
			}
			if err := assignment.Assign(f, slot.Index, *keeper); err != nil {
				return fmt.Errorf("seed defense keeper: %w", err)
			}
			break
		}
	}

	s.Defense = &assignment
	s.DefenseAsked = true
	s.Mode = ModeDefense
	return nil
}

// Complete finishes the squad: legal only when attack is full and the
// defense side, if it exists, is full too. Takes the immutable snapshot.
func (s *State) Complete(now time.Time) error {
	if !s.Attack.Complete() {
		return IncompleteSquadError{Missing: formation.SlotCount - s.Attack.Filled()}
	}
	if s.Defense != nil && !s.Defense.Complete() {
		return IncompleteSquadError{Missing: formation.SlotCount - s.Defense.Filled()}
	}

	snapshot := &Snapshot{
		TakenAt: now,
		Attack: SideSnapshot{
			FormationID: s.Attack.FormationID,
			PlayerIDs:   s.Attack.Players(),
		},
	}
	if s.Defense != nil {
		snapshot.Defense = &SideSnapshot{
			FormationID: s.Defense.FormationID,
			PlayerIDs:   s.Defense.Players(),
		}
	}

	s.Snapshot = snapshot
	s.Completed = true
	return nil
}

// Size is the reconciliation measure for the restore-before-save guard: the
// total number of occupied slots across both sides.
func (s State) Size() int {
	size := s.Attack.Filled()
	if s.Defense != nil {
		size += s.Defense.Filled()
	}
	return size
}

func (s State) Clone() State {
	copied := s
	copied.Attack = s.Attack.Clone()
	if s.Defense != nil {
		defense := s.Defense.Clone()
		copied.Defense = &defense
	}
	if s.Snapshot != nil {
		snapshot := *s.Snapshot
		snapshot.Attack.PlayerIDs = append([]string(nil), s.Snapshot.Attack.PlayerIDs...)
		if s.Snapshot.Defense != nil {
			defense := *s.Snapshot.Defense
			defense.PlayerIDs = append([]string(nil), s.Snapshot.Defense.PlayerIDs...)
			snapshot.Defense = &defense
		}
		copied.Snapshot = &snapshot
	}
	return copied
}
