package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/sourcegraph/conc"

	"github.com/riskibarqy/squad-predictor/internal/domain/player"
	"github.com/riskibarqy/squad-predictor/internal/platform/cache"
)

// ExternalPlayer is one roster entry as the score provider reports it. The
// position is a raw label; normalization happens here, at the boundary.
type ExternalPlayer struct {
	ID        string
	Name      string
	TeamID    string
	Position  string
	Rating    int
	Injured   bool
	Suspended bool
}

// ExternalLineup is an official pre-match lineup, available for some matches
// only. When present it is preferred over the freeform team-squad fetch.
type ExternalLineup struct {
	FormationID string
	Starting    []ExternalPlayer
	Substitutes []ExternalPlayer
}

// LineupProvider is the upstream score API surface the roster service needs.
type LineupProvider interface {
	// FetchLineup returns nil with no error when no official lineup exists.
	FetchLineup(ctx context.Context, matchID string) (*ExternalLineup, error)
	FetchSquad(ctx context.Context, matchID string) ([]ExternalPlayer, error)
}

// RosterService resolves the eligible player pool for a match. Results are
// cached per match; every successful fetch also lands in the durable roster
// store so fetch failures keep the last successful roster usable, even
// across restarts. Failed fetches are never retried automatically.
type RosterService struct {
	provider LineupProvider
	cache    *cache.Store
	history  player.Repository
	logger   *slog.Logger

	mu        sync.RWMutex
	lastKnown map[string][]player.Player
}

func NewRosterService(provider LineupProvider, store *cache.Store, history player.Repository, logger *slog.Logger) *RosterService {
	if logger == nil {
		logger = slog.Default()
	}

	return &RosterService{
		provider:  provider,
		cache:     store,
		history:   history,
		logger:    logger,
		lastKnown: make(map[string][]player.Player),
	}
}

// Roster returns the eligible pool for a match, filtered to teamID when set
// (dual-favorite matches). On provider failure the last-known roster for the
// same match, if any, is returned alongside ErrRosterFetchFailed.
func (s *RosterService) Roster(ctx context.Context, matchID, teamID string) ([]player.Player, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RosterService.Roster")
	defer span.End()

	matchID = strings.TrimSpace(matchID)
	if matchID == "" {
		return nil, fmt.Errorf("%w: match_id is required", ErrInvalidInput)
	}

	loaded, err := s.cache.GetOrLoad(ctx, rosterCacheKey(matchID), func(ctx context.Context) (any, error) {
		roster, loadErr := s.fetch(ctx, matchID)
		if loadErr != nil {
			return nil, loadErr
		}

		s.remember(ctx, matchID, roster)
		return roster, nil
	})
	if err != nil {
		known, ok := s.LastKnown(ctx, matchID, teamID)
		if ok {
			s.logger.WarnContext(ctx, "roster fetch failed, serving last-known roster",
				"match_id", matchID, "players", len(known), "error", err)
			return known, fmt.Errorf("%w: %v", ErrRosterFetchFailed, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrRosterFetchFailed, err)
	}

	roster, ok := loaded.([]player.Player)
	if !ok {
		return nil, fmt.Errorf("unexpected roster cache entry for match %s", matchID)
	}

	return filterTeam(roster, teamID), nil
}

// Retry drops the cached roster for the match and fetches again. Re-issuing
// the fetch is always safe; callers drive this explicitly, never a loop.
func (s *RosterService) Retry(ctx context.Context, matchID, teamID string) ([]player.Player, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RosterService.Retry")
	defer span.End()

	s.cache.Delete(ctx, rosterCacheKey(matchID))
	return s.Roster(ctx, matchID, teamID)
}

// LastKnown returns the most recent successfully fetched roster for the
// match, if any. Never falls back to a different match.
func (s *RosterService) LastKnown(ctx context.Context, matchID, teamID string) ([]player.Player, bool) {
	s.mu.RLock()
	roster, ok := s.lastKnown[matchID]
	s.mu.RUnlock()

	if !ok && s.history != nil {
		stored, err := s.history.ListByMatch(ctx, matchID)
		if err != nil {
			s.logger.WarnContext(ctx, "durable roster lookup failed", "match_id", matchID, "error", err)
		} else if len(stored) > 0 {
			roster, ok = stored, true
			s.mu.Lock()
			s.lastKnown[matchID] = stored
			s.mu.Unlock()
		}
	}
	if !ok {
		return nil, false
	}

	return filterTeam(roster, teamID), true
}

// GetByIDs resolves roster players by id for validation of assignments.
func (s *RosterService) GetByIDs(ctx context.Context, matchID, teamID string, playerIDs []string) ([]player.Player, error) {
	roster, err := s.Roster(ctx, matchID, teamID)
	if err != nil && len(roster) == 0 {
		return nil, err
	}

	byID := make(map[string]player.Player, len(roster))
	for _, p := range roster {
		byID[p.ID] = p
	}

	out := make([]player.Player, 0, len(playerIDs))
	for _, id := range playerIDs {
		if p, ok := byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

// fetch issues the lineup and squad requests concurrently and prefers the
// official lineup when it exists.
func (s *RosterService) fetch(ctx context.Context, matchID string) ([]player.Player, error) {
	var (
		lineup    *ExternalLineup
		lineupErr error
		pool      []ExternalPlayer
		poolErr   error
	)

	var wg conc.WaitGroup
	wg.Go(func() {
		lineup, lineupErr = s.provider.FetchLineup(ctx, matchID)
	})
	wg.Go(func() {
		pool, poolErr = s.provider.FetchSquad(ctx, matchID)
	})
	wg.Wait()

	var raw []ExternalPlayer
	switch {
	case lineupErr == nil && lineup != nil:
		raw = append(append([]ExternalPlayer(nil), lineup.Starting...), lineup.Substitutes...)
	case poolErr == nil:
		raw = pool
	case lineupErr != nil:
		return nil, fmt.Errorf("fetch lineup: %w", lineupErr)
	default:
		return nil, fmt.Errorf("fetch squad: %w", poolErr)
	}

	return s.normalize(ctx, matchID, raw), nil
}

// remember keeps the fetched roster as the match's last-known pool, in
// memory and in the durable store.
func (s *RosterService) remember(ctx context.Context, matchID string, roster []player.Player) {
	s.mu.Lock()
	s.lastKnown[matchID] = roster
	s.mu.Unlock()

	if s.history == nil {
		return
	}
	if err := s.history.SaveRoster(ctx, matchID, roster); err != nil {
		s.logger.WarnContext(ctx, "persisting roster failed", "match_id", matchID, "error", err)
	}
}

func (s *RosterService) normalize(ctx context.Context, matchID string, raw []ExternalPlayer) []player.Player {
	out := make([]player.Player, 0, len(raw))
	for _, rp := range raw {
		position, ok := player.NormalizePosition(rp.Position)
		if !ok {
			s.logger.WarnContext(ctx, "dropping player with unknown position label",
				"match_id", matchID, "player_id", rp.ID, "position", rp.Position)
			continue
		}

		out = append(out, player.Player{
			ID:       rp.ID,
			MatchID:  matchID,
			TeamID:   rp.TeamID,
			Name:     rp.Name,
			Position: position,
			Rating:   rp.Rating,
			Eligible: !rp.Injured && !rp.Suspended,
		})
	}
	return out
}

func filterTeam(roster []player.Player, teamID string) []player.Player {
	out := make([]player.Player, 0, len(roster))
	for _, p := range roster {
		if teamID != "" && p.TeamID != teamID {
			continue
		}
		out = append(out, p)
	}
	return out
}

func rosterCacheKey(matchID string) string {
	return "roster::" + matchID
}
