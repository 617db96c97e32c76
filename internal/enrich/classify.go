package enrich

import (
	"fmt"
	"time"

	"fieldwatch-backend/internal/models"
)

// Status tags the field app writes. The set is open; anything else is
// reported as neither busy nor free.
const (
	StatusBusy         = "busy"
	StatusFree         = "free"
	StatusDeviceSilent = "device-silent"
)

// ParseLastActive parses the heartbeat timestamp as written by the field
// app. The column is free text and old app builds wrote garbage, so a
// failed parse means "never reported", not an error.
func ParseLastActive(lastActiveAt *string) (time.Time, bool) {
	if lastActiveAt == nil || *lastActiveAt == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, *lastActiveAt)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// IsOnline reports whether the engineer pinged within the online window.
func (e *Enricher) IsOnline(lastActiveAt *string, now time.Time) bool {
	t, ok := ParseLastActive(lastActiveAt)
	if !ok {
		return false
	}
	return now.Sub(t) <= e.OnlineWindow
}

// ClassifyPing flags heartbeats older than the stale window. The reason
// distinguishes a silent device from one that never reported at all.
func (e *Enricher) ClassifyPing(lastActiveAt *string, now time.Time) (stale bool, reason string) {
	t, ok := ParseLastActive(lastActiveAt)
	if !ok {
		return true, "never reported"
	}
	if now.Sub(t) > e.StaleWindow {
		return true, fmt.Sprintf("no ping in >%d min", int(e.StaleWindow.Minutes()))
	}
	return false, ""
}

// AssignmentState is the busy/free/shift classification of a raw row.
type AssignmentState struct {
	Busy     bool
	Free     bool
	OnShift  bool
	OffShift bool
}

// ClassifyAssignment derives the assignment state from a raw row. Busy and
// free come from exact matches on the stored status tag; the classifier
// reports what the backend wrote and does not reconcile contradictions
// (a row can be off-shift and busy at the same time).
func ClassifyAssignment(row models.EngineerStatus) AssignmentState {
	return AssignmentState{
		Busy:     row.Status == StatusBusy,
		Free:     row.Status == StatusFree,
		OnShift:  row.OnShift,
		OffShift: !row.OnShift,
	}
}
