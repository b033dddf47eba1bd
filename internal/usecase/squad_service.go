package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/riskibarqy/squad-predictor/internal/domain/formation"
	"github.com/riskibarqy/squad-predictor/internal/domain/match"
	"github.com/riskibarqy/squad-predictor/internal/domain/player"
	"github.com/riskibarqy/squad-predictor/internal/domain/squad"
)

// DefaultFormationID is used when a match goes live before the user ever
// picked a formation and the locked view needs an auto-filled squad.
const DefaultFormationID = formation.ID433

// StateRef identifies one editing session. TeamID is set only for
// dual-favorite matches where the user predicts for a chosen side.
type StateRef struct {
	MatchID string
	UserID  string
	TeamID  string
}

func (r StateRef) key() squad.Key {
	return squad.Key{MatchID: r.MatchID, UserID: r.UserID, TeamID: r.TeamID}
}

type SelectFormationInput struct {
	Ref         StateRef
	Mode        squad.Mode
	FormationID string
	// Confirm acknowledges that changing a completed attack formation
	// discards the completion snapshot and any submitted prediction.
	Confirm bool
}

type AssignPlayerInput struct {
	Ref       StateRef
	SlotIndex int
	PlayerID  string
}

type RemovePlayerInput struct {
	Ref       StateRef
	SlotIndex int
}

type ChooseDefenseDifferentInput struct {
	Ref         StateRef
	FormationID string
}

// rosterSource is the roster surface the squad service needs; satisfied by
// RosterService.
type rosterSource interface {
	Roster(ctx context.Context, matchID, teamID string) ([]player.Player, error)
	LastKnown(ctx context.Context, matchID, teamID string) ([]player.Player, bool)
	GetByIDs(ctx context.Context, matchID, teamID string, playerIDs []string) ([]player.Player, error)
}

// PredictionSubmitter pushes completed squads to the prediction backend.
// Best-effort from this service's perspective: local persistence is the
// source of truth, submission failures are logged and never block.
type PredictionSubmitter interface {
	Submit(ctx context.Context, matchID, userID string, snapshot squad.Snapshot) error
	Invalidate(ctx context.Context, matchID, userID string) error
}

// SquadService owns the dual-mode build flow: formation selection, slot
// edits, the defense choice, completion, and the lock/persistence rules tied
// to match lifecycle. The in-memory session map is a cache over the durable
// repository; GetState reconciles it on every view-visible transition, and
// saves are guarded so a stale session can never overwrite a completed or
// auto-filled durable record with a smaller one.
type SquadService struct {
	matches   match.Repository
	states    squad.Repository
	rosters   rosterSource
	submitter PredictionSubmitter
	logger    *slog.Logger
	now       func() time.Time

	mu       sync.Mutex
	sessions map[string]squad.State
}

func NewSquadService(
	matches match.Repository,
	states squad.Repository,
	rosters rosterSource,
	submitter PredictionSubmitter,
	logger *slog.Logger,
) *SquadService {
	if logger == nil {
		logger = slog.Default()
	}

	return &SquadService{
		matches:   matches,
		states:    states,
		rosters:   rosters,
		submitter: submitter,
		logger:    logger,
		now:       time.Now,
		sessions:  make(map[string]squad.State),
	}
}

// GetState restores the squad for a view-became-visible transition. The
// durable record wins over the session cache here. For live or finished
// matches with no completed squad, the state is auto-filled once and
// persisted so the locked view always has something to display.
func (s *SquadService) GetState(ctx context.Context, ref StateRef) (squad.State, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SquadService.GetState")
	defer span.End()

	ref, m, err := s.resolveMatch(ctx, ref)
	if err != nil {
		return squad.State{}, err
	}

	key := ref.key()
	st, err := s.restore(ctx, key)
	if err != nil {
		return squad.State{}, err
	}
	st.Locked = m.Locked()

	if st.Locked && !st.Completed && !st.AutoFilled {
		filled, fillErr := s.autoFillLocked(ctx, ref, st)
		if fillErr != nil {
			s.logger.WarnContext(ctx, "auto-fill for locked match skipped",
				"match_id", ref.MatchID, "user_id", ref.UserID, "error", fillErr)
			return st, nil
		}
		st = filled

		persisted, _, persistErr := s.persist(ctx, key, st)
		if persistErr != nil {
			return squad.State{}, persistErr
		}
		st = persisted
	} else {
		s.cacheSession(key, st)
	}

	return st, nil
}

func (s *SquadService) IsLocked(ctx context.Context, ref StateRef) (bool, error) {
	st, err := s.GetState(ctx, ref)
	if err != nil {
		return false, err
	}
	return st.Locked, nil
}

func (s *SquadService) IsComplete(ctx context.Context, ref StateRef) (bool, error) {
	st, err := s.GetState(ctx, ref)
	if err != nil {
		return false, err
	}
	return st.Completed, nil
}

// SelectFormation resets one side to an empty assignment for the chosen
// formation. Changing (not reselecting) the attack formation of a completed
// squad needs an explicit confirmation and, once confirmed, invalidates any
// submitted prediction: changing who plays invalidates what was predicted
// about them. Defense changes never trigger the invalidation.
func (s *SquadService) SelectFormation(ctx context.Context, input SelectFormationInput) (squad.State, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SquadService.SelectFormation")
	defer span.End()

	if input.Mode != squad.ModeAttack && input.Mode != squad.ModeDefense {
		return squad.State{}, fmt.Errorf("%w: invalid mode %q", ErrInvalidInput, input.Mode)
	}
	f, err := formation.Get(strings.TrimSpace(input.FormationID))
	if err != nil {
		return squad.State{}, err
	}

	key, st, err := s.beginMutation(ctx, &input.Ref)
	if err != nil {
		return squad.State{}, err
	}

	if input.Mode == squad.ModeAttack && st.Completed && st.AttackFormationChanging(f.ID) {
		if !input.Confirm {
			return squad.State{}, fmt.Errorf("%w: changing the attack formation discards the completed squad", ErrConfirmationRequired)
		}
		s.invalidatePrediction(ctx, input.Ref)
	}

	if err := st.SelectFormation(input.Mode, f); err != nil {
		return squad.State{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	persisted, _, err := s.persist(ctx, key, st)
	return persisted, err
}

// AssignPlayer places a roster player into a slot of the side the current
// mode edits. Validation order and move semantics live in the domain.
func (s *SquadService) AssignPlayer(ctx context.Context, input AssignPlayerInput) (squad.State, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SquadService.AssignPlayer")
	defer span.End()

	input.PlayerID = strings.TrimSpace(input.PlayerID)
	if input.PlayerID == "" {
		return squad.State{}, fmt.Errorf("%w: player_id is required", ErrInvalidInput)
	}

	key, st, err := s.beginMutation(ctx, &input.Ref)
	if err != nil {
		return squad.State{}, err
	}

	side, f, err := s.currentSide(&st)
	if err != nil {
		return squad.State{}, err
	}

	candidates, err := s.rosters.GetByIDs(ctx, input.Ref.MatchID, input.Ref.TeamID, []string{input.PlayerID})
	if err != nil && len(candidates) == 0 {
		return squad.State{}, err
	}
	if len(candidates) == 0 {
		return squad.State{}, fmt.Errorf("%w: player %s is not in the match roster", ErrNotFound, input.PlayerID)
	}

	if err := side.Assign(f, input.SlotIndex, candidates[0]); err != nil {
		return squad.State{}, err
	}
	s.reopen(&st)

	persisted, _, err := s.persist(ctx, key, st)
	return persisted, err
}

// RemovePlayer empties a slot on the current side. Idempotent; removing
// from an already-empty slot persists nothing new but is not an error.
func (s *SquadService) RemovePlayer(ctx context.Context, input RemovePlayerInput) (squad.State, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SquadService.RemovePlayer")
	defer span.End()

	key, st, err := s.beginMutation(ctx, &input.Ref)
	if err != nil {
		return squad.State{}, err
	}

	side, f, err := s.currentSide(&st)
	if err != nil {
		return squad.State{}, err
	}
	if input.SlotIndex < 0 || input.SlotIndex >= len(f.Slots) {
		return squad.State{}, fmt.Errorf("%w: index %d", squad.ErrInvalidSlot, input.SlotIndex)
	}

	side.Unassign(input.SlotIndex)
	s.reopen(&st)

	persisted, _, err := s.persist(ctx, key, st)
	return persisted, err
}

// ChooseDefenseSameAsAttack answers the one-time defense prompt by copying
// the attack assignment. The copy is fully decoupled from the original.
func (s *SquadService) ChooseDefenseSameAsAttack(ctx context.Context, ref StateRef) (squad.State, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SquadService.ChooseDefenseSameAsAttack")
	defer span.End()

	key, st, err := s.beginMutation(ctx, &ref)
	if err != nil {
		return squad.State{}, err
	}

	if err := st.ChooseDefenseSameAsAttack(); err != nil {
		return squad.State{}, err
	}

	persisted, _, err := s.persist(ctx, key, st)
	return persisted, err
}

// ChooseDefenseDifferent answers the prompt with a separate defense
// formation, pre-seeding only the goalkeeper from the attack squad.
func (s *SquadService) ChooseDefenseDifferent(ctx context.Context, input ChooseDefenseDifferentInput) (squad.State, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SquadService.ChooseDefenseDifferent")
	defer span.End()

	f, err := formation.Get(strings.TrimSpace(input.FormationID))
	if err != nil {
		return squad.State{}, err
	}

	key, st, err := s.beginMutation(ctx, &input.Ref)
	if err != nil {
		return squad.State{}, err
	}

	keeper, err := s.attackKeeper(ctx, input.Ref, st)
	if err != nil {
		return squad.State{}, err
	}

	if err := st.ChooseDefenseDifferent(f, keeper); err != nil {
		return squad.State{}, err
	}

	persisted, _, err := s.persist(ctx, key, st)
	return persisted, err
}

// Complete finishes the squad, takes the immutable snapshot, and submits
// the prediction best-effort.
func (s *SquadService) Complete(ctx context.Context, ref StateRef) (squad.State, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SquadService.Complete")
	defer span.End()

	key, st, err := s.beginMutation(ctx, &ref)
	if err != nil {
		return squad.State{}, err
	}

	if err := st.Complete(s.now().UTC()); err != nil {
		return squad.State{}, err
	}

	persisted, guarded, err := s.persist(ctx, key, st)
	if err != nil {
		return squad.State{}, err
	}
	if !guarded && s.submitter != nil && persisted.Snapshot != nil {
		if submitErr := s.submitter.Submit(ctx, ref.MatchID, ref.UserID, *persisted.Snapshot); submitErr != nil {
			s.logger.WarnContext(ctx, "prediction submission failed, local copy remains authoritative",
				"match_id", ref.MatchID, "user_id", ref.UserID, "error", submitErr)
		}
	}

	return persisted, nil
}

func (s *SquadService) resolveMatch(ctx context.Context, ref StateRef) (StateRef, match.Match, error) {
	ref.MatchID = strings.TrimSpace(ref.MatchID)
	ref.UserID = strings.TrimSpace(ref.UserID)
	ref.TeamID = strings.TrimSpace(ref.TeamID)
	if ref.MatchID == "" || ref.UserID == "" {
		return ref, match.Match{}, fmt.Errorf("%w: match_id and user_id are required", ErrInvalidInput)
	}

	m, found, err := s.matches.GetByID(ctx, ref.MatchID)
	if err != nil {
		return ref, match.Match{}, fmt.Errorf("get match by id: %w", err)
	}
	if !found {
		return ref, match.Match{}, fmt.Errorf("%w: match=%s", ErrNotFound, ref.MatchID)
	}

	return ref, m, nil
}

// beginMutation resolves the match, loads the working state (session cache
// first: mutations continue the in-memory edit sequence), and rejects the
// whole operation when the match lifecycle has locked edits.
func (s *SquadService) beginMutation(ctx context.Context, ref *StateRef) (squad.Key, squad.State, error) {
	resolved, m, err := s.resolveMatch(ctx, *ref)
	if err != nil {
		return squad.Key{}, squad.State{}, err
	}
	*ref = resolved

	key := resolved.key()
	st, err := s.working(ctx, key)
	if err != nil {
		return squad.Key{}, squad.State{}, err
	}

	if m.Locked() {
		return squad.Key{}, squad.State{}, fmt.Errorf("%w: match=%s status=%s", squad.ErrSquadLocked, m.ID, m.Status)
	}
	st.Locked = false

	return key, st, nil
}

// restore loads durable-first: the repository holds the sole durable copy
// and wins on every view-visible transition.
func (s *SquadService) restore(ctx context.Context, key squad.Key) (squad.State, error) {
	durable, found, err := s.states.Get(ctx, key)
	if err != nil {
		return squad.State{}, fmt.Errorf("restore squad state: %w", err)
	}
	if found {
		return durable.Clone(), nil
	}

	s.mu.Lock()
	cached, ok := s.sessions[key.String()]
	s.mu.Unlock()
	if ok {
		return cached.Clone(), nil
	}

	return squad.NewState(key.MatchID, key.UserID, key.TeamID), nil
}

// working loads session-cache-first: a mutation continues whatever the
// in-memory edit sequence last saw, and the persist guard reconciles it
// against the durable record.
func (s *SquadService) working(ctx context.Context, key squad.Key) (squad.State, error) {
	s.mu.Lock()
	cached, ok := s.sessions[key.String()]
	s.mu.Unlock()
	if ok {
		return cached.Clone(), nil
	}

	durable, found, err := s.states.Get(ctx, key)
	if err != nil {
		return squad.State{}, fmt.Errorf("load squad state: %w", err)
	}
	if found {
		return durable.Clone(), nil
	}

	return squad.NewState(key.MatchID, key.UserID, key.TeamID), nil
}

// persist writes the state through the restore-before-save guard: when the
// durable record is completed (or auto-filled for a live match) and the
// incoming state is strictly smaller and older, the durable record wins and
// the session is resynchronized from it instead of overwriting. Returns the
// state that is now authoritative and whether the guard fired.
func (s *SquadService) persist(ctx context.Context, key squad.Key, st squad.State) (squad.State, bool, error) {
	durable, found, err := s.states.Get(ctx, key)
	if err != nil {
		return squad.State{}, false, fmt.Errorf("read durable squad state: %w", err)
	}

	if found && (durable.Completed || durable.AutoFilled) &&
		st.Size() < durable.Size() && st.UpdatedAt.Before(durable.UpdatedAt) {
		s.logger.WarnContext(ctx, "discarding stale squad state, durable record wins",
			"key", key.String(), "stale_size", st.Size(), "durable_size", durable.Size())
		s.cacheSession(key, durable)
		return durable.Clone(), true, nil
	}

	st.UpdatedAt = s.now().UTC()
	if err := s.states.Save(ctx, key, st); err != nil {
		return squad.State{}, false, fmt.Errorf("save squad state: %w", err)
	}
	s.cacheSession(key, st)

	return st, false, nil
}

func (s *SquadService) cacheSession(key squad.Key, st squad.State) {
	s.mu.Lock()
	s.sessions[key.String()] = st.Clone()
	s.mu.Unlock()
}

// currentSide returns the assignment the current mode edits plus its
// formation.
func (s *SquadService) currentSide(st *squad.State) (*squad.Assignment, formation.Formation, error) {
	side, err := st.Assignment(st.Mode)
	if err != nil {
		return nil, formation.Formation{}, err
	}
	if side.FormationID == "" {
		return nil, formation.Formation{}, squad.ErrNoFormation
	}

	f, err := formation.Get(side.FormationID)
	if err != nil {
		return nil, formation.Formation{}, err
	}

	return side, f, nil
}

// reopen clears completion after a player edit: the squad is being rebuilt,
// so the old snapshot no longer describes it. Submitted predictions are not
// invalidated here; only an attack formation change does that.
func (s *SquadService) reopen(st *squad.State) {
	if !st.Completed {
		return
	}
	st.Completed = false
	st.Snapshot = nil
}

func (s *SquadService) invalidatePrediction(ctx context.Context, ref StateRef) {
	if s.submitter == nil {
		return
	}
	if err := s.submitter.Invalidate(ctx, ref.MatchID, ref.UserID); err != nil {
		s.logger.WarnContext(ctx, "prediction invalidation failed",
			"match_id", ref.MatchID, "user_id", ref.UserID, "error", err)
	}
}

// autoFillLocked populates the empty slots of every incomplete side from the
// match roster so a locked view is never empty; explicit picks stay where the
// user put them. The roster comes from the cache or a fresh fetch; a match
// that never got a roster stays empty and the caller logs it.
func (s *SquadService) autoFillLocked(ctx context.Context, ref StateRef, st squad.State) (squad.State, error) {
	roster, ok := s.rosters.LastKnown(ctx, ref.MatchID, ref.TeamID)
	if !ok {
		fetched, err := s.rosters.Roster(ctx, ref.MatchID, ref.TeamID)
		if err != nil && len(fetched) == 0 {
			return squad.State{}, err
		}
		roster = fetched
	}

	if !st.Attack.Complete() {
		formationID := st.Attack.FormationID
		if formationID == "" {
			formationID = DefaultFormationID
		}
		f, err := formation.Get(formationID)
		if err != nil {
			return squad.State{}, err
		}

		filled, err := squad.AutoFill(f, st.Attack, roster)
		if err != nil {
			s.logger.WarnContext(ctx, "auto-fill produced an incomplete attack squad",
				"match_id", ref.MatchID, "error", err)
		}
		st.Attack = filled
	}

	if st.Defense != nil && !st.Defense.Complete() {
		f, err := formation.Get(st.Defense.FormationID)
		if err != nil {
			return squad.State{}, err
		}

		filled, err := squad.AutoFill(f, *st.Defense, roster)
		if err != nil {
			s.logger.WarnContext(ctx, "auto-fill produced an incomplete defense squad",
				"match_id", ref.MatchID, "error", err)
		}
		*st.Defense = filled
	}

	st.AutoFilled = true
	st.Mode = squad.ModeAttack
	return st, nil
}

// attackKeeper resolves the attack squad's goalkeeper for defense
// pre-seeding. Nil when the attack side has no keeper yet.
func (s *SquadService) attackKeeper(ctx context.Context, ref StateRef, st squad.State) (*player.Player, error) {
	if st.Attack.FormationID == "" {
		return nil, nil
	}
	f, err := formation.Get(st.Attack.FormationID)
	if err != nil {
		return nil, err
	}

	for _, slot := range f.Slots {
		if !slot.Goalkeeper() {
			continue
		}
		id, ok := st.Attack.PlayerAt(slot.Index)
		if !ok {
			return nil, nil
		}

		players, err := s.rosters.GetByIDs(ctx, ref.MatchID, ref.TeamID, []string{id})
		if err != nil && len(players) == 0 {
			return nil, err
		}
		if len(players) == 0 {
			return nil, nil
		}
		keeper := players[0]
		return &keeper, nil
	}

	return nil, nil
}
