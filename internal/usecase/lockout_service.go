package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/riskibarqy/squad-predictor/internal/domain/match"
	"github.com/riskibarqy/squad-predictor/internal/domain/squad"
)

const defaultLockoutWorkers = 8

// LockoutSweepResult summarizes one kickoff sweep.
type LockoutSweepResult struct {
	Matches    int   `json:"matches"`
	Swept      int   `json:"swept"`
	AutoFilled int   `json:"auto_filled"`
	Skipped    int   `json:"skipped"`
	Failed     int   `json:"failed"`
	DurationMs int64 `json:"duration_ms"`
}

// LockoutService runs the kickoff sweep: once matches go live, every squad
// that was left unfinished gets auto-filled and persisted so the locked view
// is never empty. Individual squad failures are counted and logged, never
// fatal to the sweep.
type LockoutService struct {
	matches match.Repository
	states  squad.Repository
	squads  *SquadService
	logger  *slog.Logger
	workers int
	now     func() time.Time
}

func NewLockoutService(
	matches match.Repository,
	states squad.Repository,
	squads *SquadService,
	logger *slog.Logger,
	workers int,
) *LockoutService {
	if logger == nil {
		logger = slog.Default()
	}
	if workers <= 0 {
		workers = defaultLockoutWorkers
	}

	return &LockoutService{
		matches: matches,
		states:  states,
		squads:  squads,
		logger:  logger,
		workers: workers,
		now:     time.Now,
	}
}

// Sweep auto-fills every unfinished squad of every live match.
func (s *LockoutService) Sweep(ctx context.Context) (LockoutSweepResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LockoutService.Sweep")
	defer span.End()

	start := s.now()

	live, err := s.matches.ListByStatus(ctx, match.StatusLive)
	if err != nil {
		return LockoutSweepResult{}, fmt.Errorf("list live matches: %w", err)
	}

	result := LockoutSweepResult{Matches: len(live)}
	if len(live) == 0 {
		return result, nil
	}

	var records []squad.Record
	for _, m := range live {
		rows, err := s.states.ListByMatch(ctx, m.ID)
		if err != nil {
			return LockoutSweepResult{}, fmt.Errorf("list squads for match %s: %w", m.ID, err)
		}
		records = append(records, rows...)
	}
	result.Swept = len(records)
	if len(records) == 0 {
		result.DurationMs = time.Since(start).Milliseconds()
		return result, nil
	}

	pool, err := ants.NewPool(s.workers)
	if err != nil {
		return LockoutSweepResult{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var autoFilled, skipped, failed atomic.Int32

	var workers sync.WaitGroup
	for _, record := range records {
		record := record
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			if record.State.Completed || record.State.AutoFilled {
				skipped.Add(1)
				return
			}

			ref := StateRef{
				MatchID: record.Key.MatchID,
				UserID:  record.Key.UserID,
				TeamID:  record.Key.TeamID,
			}
			st, err := s.squads.GetState(ctx, ref)
			if err != nil {
				failed.Add(1)
				s.logger.WarnContext(ctx, "kickoff sweep failed for squad",
					"key", record.Key.String(), "error", err)
				return
			}
			if st.AutoFilled {
				autoFilled.Add(1)
				return
			}
			skipped.Add(1)
		}); err != nil {
			workers.Done()
			return LockoutSweepResult{}, fmt.Errorf("submit sweep task: %w", err)
		}
	}
	workers.Wait()

	result.AutoFilled = int(autoFilled.Load())
	result.Skipped = int(skipped.Load())
	result.Failed = int(failed.Load())
	result.DurationMs = time.Since(start).Milliseconds()

	s.logger.InfoContext(ctx, "kickoff sweep finished",
		"matches", result.Matches, "swept", result.Swept,
		"auto_filled", result.AutoFilled, "failed", result.Failed)

	return result, nil
}

// Run loops Sweep on the given interval until ctx is done. Intended to be
// started from app wiring as a background goroutine.
func (s *LockoutService) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Sweep(ctx); err != nil {
				s.logger.ErrorContext(ctx, "kickoff sweep failed", "error", err)
			}
		}
	}
}
