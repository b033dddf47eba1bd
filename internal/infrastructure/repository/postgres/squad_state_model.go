package postgres

import (
	"fmt"
	"time"

	"github.com/bytedance/sonic"

	"github.com/riskibarqy/squad-predictor/internal/domain/squad"
)

type squadStateRow struct {
	MatchID    string    `db:"match_id"`
	UserID     string    `db:"user_id"`
	TeamID     string    `db:"team_id"`
	Mode       string    `db:"mode"`
	Completed  bool      `db:"completed"`
	AutoFilled bool      `db:"auto_filled"`
	Payload    []byte    `db:"payload"`
	UpdatedAt  time.Time `db:"updated_at"`
}

// squadStateDocument is the jsonb payload. The queryable flags are mirrored
// into their own columns; everything else lives in the document.
type squadStateDocument struct {
	Mode         string              `json:"mode"`
	Attack       assignmentDocument  `json:"attack"`
	Defense      *assignmentDocument `json:"defense,omitempty"`
	DefenseAsked bool                `json:"defense_asked"`
	Completed    bool                `json:"completed"`
	AutoFilled   bool                `json:"auto_filled"`
	Snapshot     *snapshotDocument   `json:"snapshot,omitempty"`
}

type assignmentDocument struct {
	FormationID string         `json:"formation_id"`
	Slots       map[int]string `json:"slots"`
}

type snapshotDocument struct {
	TakenAt time.Time     `json:"taken_at"`
	Attack  sideDocument  `json:"attack"`
	Defense *sideDocument `json:"defense,omitempty"`
}

type sideDocument struct {
	FormationID string   `json:"formation_id"`
	PlayerIDs   []string `json:"player_ids"`
}

func newSquadStateRow(key squad.Key, state squad.State) (squadStateRow, error) {
	doc := squadStateDocument{
		Mode:         string(state.Mode),
		Attack:       newAssignmentDocument(state.Attack),
		DefenseAsked: state.DefenseAsked,
		Completed:    state.Completed,
		AutoFilled:   state.AutoFilled,
	}
	if state.Defense != nil {
		defense := newAssignmentDocument(*state.Defense)
		doc.Defense = &defense
	}
	if state.Snapshot != nil {
		doc.Snapshot = newSnapshotDocument(*state.Snapshot)
	}

	payload, err := sonic.Marshal(doc)
	if err != nil {
		return squadStateRow{}, fmt.Errorf("marshal squad state: %w", err)
	}

	return squadStateRow{
		MatchID:    key.MatchID,
		UserID:     key.UserID,
		TeamID:     key.TeamID,
		Mode:       string(state.Mode),
		Completed:  state.Completed,
		AutoFilled: state.AutoFilled,
		Payload:    payload,
		UpdatedAt:  state.UpdatedAt,
	}, nil
}

func (r squadStateRow) toDomain() (squad.State, error) {
	var doc squadStateDocument
	if err := sonic.Unmarshal(r.Payload, &doc); err != nil {
		return squad.State{}, fmt.Errorf("unmarshal squad state: %w", err)
	}

	state := squad.State{
		MatchID:      r.MatchID,
		UserID:       r.UserID,
		TeamID:       r.TeamID,
		Mode:         squad.Mode(doc.Mode),
		Attack:       doc.Attack.toDomain(),
		DefenseAsked: doc.DefenseAsked,
		Completed:    doc.Completed,
		AutoFilled:   doc.AutoFilled,
		UpdatedAt:    r.UpdatedAt,
	}
	if doc.Defense != nil {
		defense := doc.Defense.toDomain()
		state.Defense = &defense
	}
	if doc.Snapshot != nil {
		state.Snapshot = doc.Snapshot.toDomain()
	}

	return state, nil
}

func newAssignmentDocument(a squad.Assignment) assignmentDocument {
	slots := make(map[int]string, len(a.Slots))
	for index, playerID := range a.Slots {
		slots[index] = playerID
	}

	return assignmentDocument{FormationID: a.FormationID, Slots: slots}
}

func (d assignmentDocument) toDomain() squad.Assignment {
	slots := make(map[int]string, len(d.Slots))
	for index, playerID := range d.Slots {
		slots[index] = playerID
	}

	return squad.Assignment{FormationID: d.FormationID, Slots: slots}
}

func newSnapshotDocument(s squad.Snapshot) *snapshotDocument {
	doc := &snapshotDocument{
		TakenAt: s.TakenAt,
		Attack: sideDocument{
			FormationID: s.Attack.FormationID,
			PlayerIDs:   append([]string(nil), s.Attack.PlayerIDs...),
		},
	}
	if s.Defense != nil {
		doc.Defense = &sideDocument{
			FormationID: s.Defense.FormationID,
			PlayerIDs:   append([]string(nil), s.Defense.PlayerIDs...),
		}
	}

	return doc
}

func (d snapshotDocument) toDomain() *squad.Snapshot {
	snapshot := &squad.Snapshot{
		TakenAt: d.TakenAt,
		Attack: squad.SideSnapshot{
			FormationID: d.Attack.FormationID,
			PlayerIDs:   append([]string(nil), d.Attack.PlayerIDs...),
		},
	}
	if d.Defense != nil {
		snapshot.Defense = &squad.SideSnapshot{
			FormationID: d.Defense.FormationID,
			PlayerIDs:   append([]string(nil), d.Defense.PlayerIDs...),
		}
	}

	return snapshot
}
