package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/squad-predictor/internal/domain/player"
)

type rosterRow struct {
	MatchID  string `db:"match_id"`
	PlayerID string `db:"player_id"`
	TeamID   string `db:"team_id"`
	Name     string `db:"name"`
	Position string `db:"position"`
	Rating   int    `db:"rating"`
	Eligible bool   `db:"eligible"`
}

// RosterRepository is the durable last-known roster per match. SaveRoster
// replaces the whole match roster; partial updates never happen, a fetch
// always yields the full pool.
type RosterRepository struct {
	db *sqlx.DB
}

func NewRosterRepository(db *sqlx.DB) *RosterRepository {
	return &RosterRepository{db: db}
}

func (r *RosterRepository) ListByMatch(ctx context.Context, matchID string) ([]player.Player, error) {
	const query = `
SELECT match_id, player_id, team_id, name, position, rating, eligible
FROM match_rosters
WHERE match_id = $1
ORDER BY player_id`

	var rows []rosterRow
	if err := r.db.SelectContext(ctx, &rows, query, matchID); err != nil {
		return nil, fmt.Errorf("list roster: %w", err)
	}

	out := make([]player.Player, 0, len(rows))
	for _, row := range rows {
		out = append(out, player.Player{
			ID:       row.PlayerID,
			MatchID:  row.MatchID,
			TeamID:   row.TeamID,
			Name:     row.Name,
			Position: player.Position(row.Position),
			Rating:   row.Rating,
			Eligible: row.Eligible,
		})
	}

	return out, nil
}

func (r *RosterRepository) SaveRoster(ctx context.Context, matchID string, roster []player.Player) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx for roster save: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM match_rosters WHERE match_id = $1`, matchID); err != nil {
		return fmt.Errorf("clear roster: %w", err)
	}

	const insert = `
INSERT INTO match_rosters (match_id, player_id, team_id, name, position, rating, eligible)
VALUES (:match_id, :player_id, :team_id, :name, :position, :rating, :eligible)`

	for _, p := range roster {
		row := rosterRow{
			MatchID:  matchID,
			PlayerID: p.ID,
			TeamID:   p.TeamID,
			Name:     p.Name,
			Position: string(p.Position),
			Rating:   p.Rating,
			Eligible: p.Eligible,
		}
		if _, err := tx.NamedExecContext(ctx, insert, row); err != nil {
			return fmt.Errorf("insert roster row: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit roster save: %w", err)
	}

	return nil
}
