package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/squad-predictor/internal/domain/match"
)

type matchRow struct {
	ID         string    `db:"id"`
	HomeTeamID string    `db:"home_team_id"`
	AwayTeamID string    `db:"away_team_id"`
	KickoffAt  time.Time `db:"kickoff_at"`
	Status     string    `db:"status"`
}

func (r matchRow) toDomain() match.Match {
	return match.Match{
		ID:         r.ID,
		HomeTeamID: r.HomeTeamID,
		AwayTeamID: r.AwayTeamID,
		KickoffAt:  r.KickoffAt,
		Status:     match.Status(r.Status),
	}
}

type MatchRepository struct {
	db *sqlx.DB
}

func NewMatchRepository(db *sqlx.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

func (r *MatchRepository) GetByID(ctx context.Context, matchID string) (match.Match, bool, error) {
	const query = `
SELECT id, home_team_id, away_team_id, kickoff_at, status
FROM matches
WHERE id = $1`

	var row matchRow
	if err := r.db.GetContext(ctx, &row, query, matchID); err != nil {
		if isNotFound(err) {
			return match.Match{}, false, nil
		}
		return match.Match{}, false, fmt.Errorf("get match: %w", err)
	}

	return row.toDomain(), true, nil
}

func (r *MatchRepository) ListByStatus(ctx context.Context, status match.Status) ([]match.Match, error) {
	const query = `
SELECT id, home_team_id, away_team_id, kickoff_at, status
FROM matches
WHERE status = $1
ORDER BY kickoff_at`

	var rows []matchRow
	if err := r.db.SelectContext(ctx, &rows, query, string(status)); err != nil {
		return nil, fmt.Errorf("list matches by status: %w", err)
	}

	out := make([]match.Match, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}

	return out, nil
}

// Upsert keeps the local match table in step with whatever feeds it
// (seeding, a fixtures sync job).
func (r *MatchRepository) Upsert(ctx context.Context, m match.Match) error {
	const query = `
INSERT INTO matches (id, home_team_id, away_team_id, kickoff_at, status)
VALUES (:id, :home_team_id, :away_team_id, :kickoff_at, :status)
ON CONFLICT (id)
DO UPDATE SET
    home_team_id = EXCLUDED.home_team_id,
    away_team_id = EXCLUDED.away_team_id,
    kickoff_at = EXCLUDED.kickoff_at,
    status = EXCLUDED.status`

	row := matchRow{
		ID:         m.ID,
		HomeTeamID: m.HomeTeamID,
		AwayTeamID: m.AwayTeamID,
		KickoffAt:  m.KickoffAt,
		Status:     string(m.Status),
	}
	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("upsert match: %w", err)
	}

	return nil
}
