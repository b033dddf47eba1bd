package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/riskibarqy/squad-predictor/internal/domain/formation"
	"github.com/riskibarqy/squad-predictor/internal/domain/player"
	"github.com/riskibarqy/squad-predictor/internal/usecase"
)

type rosterPlayerDTO struct {
	ID       string `json:"id"`
	TeamID   string `json:"team_id"`
	Name     string `json:"name"`
	Position string `json:"position"`
	Rating   int    `json:"rating"`
	Eligible bool   `json:"eligible"`
}

type rosterDTO struct {
	MatchID string            `json:"match_id"`
	TeamID  string            `json:"team_id,omitempty"`
	Players []rosterPlayerDTO `json:"players"`
}

func rosterToDTO(matchID, teamID string, roster []player.Player) rosterDTO {
	dto := rosterDTO{MatchID: matchID, TeamID: teamID, Players: make([]rosterPlayerDTO, 0, len(roster))}
	for _, p := range roster {
		dto.Players = append(dto.Players, rosterPlayerDTO{
			ID:       p.ID,
			TeamID:   p.TeamID,
			Name:     p.Name,
			Position: string(p.Position),
			Rating:   p.Rating,
			Eligible: p.Eligible,
		})
	}
	return dto
}

func (h *Handler) rosterParams(r *http.Request) (matchID, teamID string, err error) {
	matchID = strings.TrimSpace(r.PathValue("matchID"))
	if matchID == "" {
		return "", "", fmt.Errorf("%w: match id is required", usecase.ErrInvalidInput)
	}
	return matchID, strings.TrimSpace(r.URL.Query().Get("team_id")), nil
}

func (h *Handler) GetRoster(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetRoster")
	defer span.End()

	matchID, teamID, err := h.rosterParams(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	roster, err := h.rosterService.Roster(ctx, matchID, teamID)
	if err != nil {
		h.logger.WarnContext(ctx, "roster fetch failed", "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, rosterToDTO(matchID, teamID, roster))
}

// RetryRoster drops the cached roster and refetches from the provider. Used by
// the client's retry button after a provider outage.
func (h *Handler) RetryRoster(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RetryRoster")
	defer span.End()

	matchID, teamID, err := h.rosterParams(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	roster, err := h.rosterService.Retry(ctx, matchID, teamID)
	if err != nil {
		h.logger.WarnContext(ctx, "roster retry failed", "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, rosterToDTO(matchID, teamID, roster))
}

type formationSlotDTO struct {
	Index int     `json:"index"`
	Role  string  `json:"role"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
}

type formationDTO struct {
	ID    string             `json:"id"`
	Slots []formationSlotDTO `json:"slots"`
}

func (h *Handler) ListFormations(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListFormations")
	defer span.End()

	ids := formation.IDs()
	out := make([]formationDTO, 0, len(ids))
	for _, id := range ids {
		f, err := formation.Get(id)
		if err != nil {
			h.logger.ErrorContext(ctx, "formation catalog is inconsistent", "formation_id", id, "error", err)
			writeInternalError(ctx, w)
			return
		}
		dto := formationDTO{ID: f.ID, Slots: make([]formationSlotDTO, 0, len(f.Slots))}
		for _, slot := range f.Slots {
			dto.Slots = append(dto.Slots, formationSlotDTO{
				Index: slot.Index,
				Role:  slot.Role,
				X:     f.Coordinates[slot.Index].X,
				Y:     f.Coordinates[slot.Index].Y,
			})
		}
		out = append(out, dto)
	}

	writeSuccess(ctx, w, http.StatusOK, out)
}
