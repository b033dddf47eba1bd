package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"

	"github.com/riskibarqy/squad-predictor/internal/domain/formation"
	"github.com/riskibarqy/squad-predictor/internal/domain/squad"
	"github.com/riskibarqy/squad-predictor/internal/usecase"
)

type slotDTO struct {
	Index    int     `json:"index"`
	Role     string  `json:"role"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	PlayerID string  `json:"player_id,omitempty"`
}

type sideDTO struct {
	FormationID string    `json:"formation_id"`
	Slots       []slotDTO `json:"slots"`
	Complete    bool      `json:"complete"`
}

type sideSnapshotDTO struct {
	FormationID string   `json:"formation_id"`
	PlayerIDs   []string `json:"player_ids"`
}

type snapshotDTO struct {
	TakenAt time.Time        `json:"taken_at"`
	Attack  sideSnapshotDTO  `json:"attack"`
	Defense *sideSnapshotDTO `json:"defense,omitempty"`
}

type squadStateDTO struct {
	MatchID      string       `json:"match_id"`
	TeamID       string       `json:"team_id,omitempty"`
	Mode         string       `json:"mode"`
	Phase        string       `json:"phase"`
	Attack       sideDTO      `json:"attack"`
	Defense      *sideDTO     `json:"defense,omitempty"`
	DefenseAsked bool         `json:"defense_asked"`
	Completed    bool         `json:"completed"`
	AutoFilled   bool         `json:"auto_filled"`
	Locked       bool         `json:"locked"`
	Snapshot     *snapshotDTO `json:"snapshot,omitempty"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

func sideToDTO(a squad.Assignment) sideDTO {
	dto := sideDTO{FormationID: a.FormationID, Complete: a.Complete()}
	if a.FormationID == "" {
		return dto
	}

	f, err := formation.Get(a.FormationID)
	if err != nil {
		return dto
	}

	dto.Slots = make([]slotDTO, 0, len(f.Slots))
	for _, slot := range f.Slots {
		row := slotDTO{
			Index: slot.Index,
			Role:  slot.Role,
			X:     f.Coordinates[slot.Index].X,
			Y:     f.Coordinates[slot.Index].Y,
		}
		if playerID, ok := a.PlayerAt(slot.Index); ok {
			row.PlayerID = playerID
		}
		dto.Slots = append(dto.Slots, row)
	}

	return dto
}

func stateToDTO(st squad.State) squadStateDTO {
	dto := squadStateDTO{
		MatchID:      st.MatchID,
		TeamID:       st.TeamID,
		Mode:         string(st.Mode),
		Phase:        string(st.Phase()),
		Attack:       sideToDTO(st.Attack),
		DefenseAsked: st.DefenseAsked,
		Completed:    st.Completed,
		AutoFilled:   st.AutoFilled,
		Locked:       st.Locked,
		UpdatedAt:    st.UpdatedAt,
	}
	if st.Defense != nil {
		defense := sideToDTO(*st.Defense)
		dto.Defense = &defense
	}
	if st.Snapshot != nil {
		snapshot := &snapshotDTO{
			TakenAt: st.Snapshot.TakenAt,
			Attack: sideSnapshotDTO{
				FormationID: st.Snapshot.Attack.FormationID,
				PlayerIDs:   st.Snapshot.Attack.PlayerIDs,
			},
		}
		if st.Snapshot.Defense != nil {
			snapshot.Defense = &sideSnapshotDTO{
				FormationID: st.Snapshot.Defense.FormationID,
				PlayerIDs:   st.Snapshot.Defense.PlayerIDs,
			}
		}
		dto.Snapshot = snapshot
	}

	return dto
}

// stateRef builds the editing-session reference from the authenticated
// principal, the path match id, and the optional team_id query parameter
// used on dual-favorite matches.
func (h *Handler) stateRef(r *http.Request) (usecase.StateRef, error) {
	principal, ok := principalFromContext(r.Context())
	if !ok {
		return usecase.StateRef{}, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized)
	}

	matchID := strings.TrimSpace(r.PathValue("matchID"))
	if matchID == "" {
		return usecase.StateRef{}, fmt.Errorf("%w: match id is required", usecase.ErrInvalidInput)
	}

	return usecase.StateRef{
		MatchID: matchID,
		UserID:  principal.UserID,
		TeamID:  strings.TrimSpace(r.URL.Query().Get("team_id")),
	}, nil
}

func (h *Handler) GetSquadState(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetSquadState")
	defer span.End()

	ref, err := h.stateRef(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	st, err := h.squadService.GetState(ctx, ref)
	if err != nil {
		h.logger.WarnContext(ctx, "get squad state failed", "match_id", ref.MatchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, stateToDTO(st))
}

type selectFormationRequest struct {
	Mode        string `json:"mode" validate:"required,oneof=attack defense"`
	FormationID string `json:"formation_id" validate:"required"`
	Confirm     bool   `json:"confirm"`
}

func (h *Handler) SelectFormation(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SelectFormation")
	defer span.End()

	ref, err := h.stateRef(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req selectFormationRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	st, err := h.squadService.SelectFormation(ctx, usecase.SelectFormationInput{
		Ref:         ref,
		Mode:        squad.Mode(req.Mode),
		FormationID: req.FormationID,
		Confirm:     req.Confirm,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "select formation failed", "match_id", ref.MatchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, stateToDTO(st))
}

type assignPlayerRequest struct {
	PlayerID string `json:"player_id" validate:"required"`
}

func (h *Handler) AssignPlayer(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.AssignPlayer")
	defer span.End()

	ref, err := h.stateRef(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	slotIndex, err := parseSlotIndex(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req assignPlayerRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	st, err := h.squadService.AssignPlayer(ctx, usecase.AssignPlayerInput{
		Ref:       ref,
		SlotIndex: slotIndex,
		PlayerID:  req.PlayerID,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "assign player failed",
			"match_id", ref.MatchID, "slot", slotIndex, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, stateToDTO(st))
}

func (h *Handler) RemovePlayer(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RemovePlayer")
	defer span.End()

	ref, err := h.stateRef(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	slotIndex, err := parseSlotIndex(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	st, err := h.squadService.RemovePlayer(ctx, usecase.RemovePlayerInput{
		Ref:       ref,
		SlotIndex: slotIndex,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "remove player failed",
			"match_id", ref.MatchID, "slot", slotIndex, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, stateToDTO(st))
}

type chooseDefenseRequest struct {
	SameAsAttack bool   `json:"same_as_attack"`
	FormationID  string `json:"formation_id"`
}

func (h *Handler) ChooseDefense(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ChooseDefense")
	defer span.End()

	ref, err := h.stateRef(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req chooseDefenseRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}

	var st squad.State
	if req.SameAsAttack {
		st, err = h.squadService.ChooseDefenseSameAsAttack(ctx, ref)
	} else {
		if strings.TrimSpace(req.FormationID) == "" {
			writeError(ctx, w, fmt.Errorf("%w: formation_id is required when not mirroring the attack squad", usecase.ErrInvalidInput))
			return
		}
		st, err = h.squadService.ChooseDefenseDifferent(ctx, usecase.ChooseDefenseDifferentInput{
			Ref:         ref,
			FormationID: req.FormationID,
		})
	}
	if err != nil {
		h.logger.WarnContext(ctx, "choose defense failed", "match_id", ref.MatchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, stateToDTO(st))
}

func (h *Handler) CompleteSquad(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CompleteSquad")
	defer span.End()

	ref, err := h.stateRef(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	st, err := h.squadService.Complete(ctx, ref)
	if err != nil {
		h.logger.WarnContext(ctx, "complete squad failed", "match_id", ref.MatchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, stateToDTO(st))
}

func parseSlotIndex(r *http.Request) (int, error) {
	raw := strings.TrimSpace(r.PathValue("slotIndex"))
	slotIndex, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid slot index %q", usecase.ErrInvalidInput, raw)
	}
	return slotIndex, nil
}
