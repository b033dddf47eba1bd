package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/squad-predictor/internal/domain/squad"
)

type SquadStateRepository struct {
	db *sqlx.DB
}

func NewSquadStateRepository(db *sqlx.DB) *SquadStateRepository {
	return &SquadStateRepository{db: db}
}

func (r *SquadStateRepository) Get(ctx context.Context, key squad.Key) (squad.State, bool, error) {
	const query = `
SELECT match_id, user_id, team_id, mode, completed, auto_filled, payload, updated_at
FROM squad_states
WHERE match_id = $1
  AND user_id = $2
  AND team_id = $3`

	var row squadStateRow
	if err := r.db.GetContext(ctx, &row, query, key.MatchID, key.UserID, key.TeamID); err != nil {
		if isNotFound(err) {
			return squad.State{}, false, nil
		}
		return squad.State{}, false, fmt.Errorf("get squad state: %w", err)
	}

	state, err := row.toDomain()
	if err != nil {
		return squad.State{}, false, err
	}

	return state, true, nil
}

func (r *SquadStateRepository) Save(ctx context.Context, key squad.Key, state squad.State) error {
	row, err := newSquadStateRow(key, state)
	if err != nil {
		return err
	}

	const query = `
INSERT INTO squad_states (match_id, user_id, team_id, mode, completed, auto_filled, payload, updated_at)
VALUES (:match_id, :user_id, :team_id, :mode, :completed, :auto_filled, :payload, :updated_at)
ON CONFLICT (match_id, user_id, team_id)
DO UPDATE SET
    mode = EXCLUDED.mode,
    completed = EXCLUDED.completed,
    auto_filled = EXCLUDED.auto_filled,
    payload = EXCLUDED.payload,
    updated_at = EXCLUDED.updated_at`

	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("save squad state: %w", err)
	}

	return nil
}

func (r *SquadStateRepository) Delete(ctx context.Context, key squad.Key) error {
	const query = `
DELETE FROM squad_states
WHERE match_id = $1
  AND user_id = $2
  AND team_id = $3`

	if _, err := r.db.ExecContext(ctx, query, key.MatchID, key.UserID, key.TeamID); err != nil {
		return fmt.Errorf("delete squad state: %w", err)
	}

	return nil
}

func (r *SquadStateRepository) ListByMatch(ctx context.Context, matchID string) ([]squad.Record, error) {
	const query = `
SELECT match_id, user_id, team_id, mode, completed, auto_filled, payload, updated_at
FROM squad_states
WHERE match_id = $1
ORDER BY user_id, team_id`

	var rows []squadStateRow
	if err := r.db.SelectContext(ctx, &rows, query, matchID); err != nil {
		return nil, fmt.Errorf("list squad states: %w", err)
	}

	out := make([]squad.Record, 0, len(rows))
	for _, row := range rows {
		state, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, squad.Record{
			Key:   squad.Key{MatchID: row.MatchID, UserID: row.UserID, TeamID: row.TeamID},
			State: state,
		})
	}

	return out, nil
}
