package match

import (
	"fmt"
	"strings"
	"time"
)

// Status is the match lifecycle phase that drives squad edit locking.
type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusLive      Status = "live"
	StatusFinished  Status = "finished"
)

// Match is the minimal match context the formation engine needs.
type Match struct {
	ID         string
	HomeTeamID string
	AwayTeamID string
	KickoffAt  time.Time
	Status     Status
}

func (m Match) Validate() error {
	if m.ID == "" {
		return fmt.Errorf("match id is required")
	}
	if m.HomeTeamID == "" || m.AwayTeamID == "" {
		return fmt.Errorf("match team ids are required")
	}
	switch m.Status {
	case StatusScheduled, StatusLive, StatusFinished:
		return nil
	default:
		return fmt.Errorf("invalid match status: %s", m.Status)
	}
}

// Locked reports whether squad edits are disabled for this match. The lock is
// derived from lifecycle only; it is independent of squad completion.
func (m Match) Locked() bool {
	return m.Status == StatusLive || m.Status == StatusFinished
}

// NormalizeStatus folds provider status strings into the lifecycle enum.
func NormalizeStatus(raw string) (Status, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "ns", "tbd", "scheduled", "postponed", "delayed":
		return StatusScheduled, true
	case "live", "inplay", "in_play", "1st-half", "2nd-half", "ht", "halftime", "et", "pen_live":
		return StatusLive, true
	case "ft", "aet", "ft_pen", "finished", "full-time", "ended", "cancelled", "abandoned":
		return StatusFinished, true
	default:
		return "", false
	}
}
