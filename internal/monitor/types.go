// Package monitor defines the polling-and-diff core shared across subsystems.
package monitor

import "time"

// Category groups monitored pages by the kind of material they carry.
type Category string

// Categories of the monitored compliance corpus.
const (
	CategoryRegulation Category = "regulation"
	CategoryGuidance   Category = "guidance"
	CategorySystems    Category = "systems"
)

// Priority ranks how urgently a change on a source should be surfaced.
// The zero value is the lowest tier.
type Priority string

// Priority tiers, highest first.
const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
)

// Source is one monitored page. The URL doubles as the identity; the
// catalog is fixed at startup and never mutated.
type Source struct {
	ID          string   `json:"id" mapstructure:"url"`
	DisplayName string   `json:"display_name" mapstructure:"name"`
	Category    Category `json:"category" mapstructure:"category"`
	Priority    Priority `json:"priority" mapstructure:"priority"`
}

// CheckStatus is the result class of the most recent check of a source.
type CheckStatus string

// Check status values stored in history entries.
const (
	StatusChecked CheckStatus = "checked"
	StatusError   CheckStatus = "error"
)

// HistoryEntry is the last known observation of a source, keyed by Source.ID.
// There is at most one entry per source; it is overwritten on every sweep.
type HistoryEntry struct {
	LastDigest    string      `json:"last_digest"`
	LastCheckedAt time.Time   `json:"last_checked_at"`
	LastStatus    CheckStatus `json:"last_status"`
	LastError     string      `json:"last_error,omitempty"`
}

// Change records one observed digest mismatch against the stored baseline.
// Changes are never deleted, only acknowledged.
type Change struct {
	SourceID          string    `json:"source_id"`
	DisplayName       string    `json:"display_name"`
	Category          Category  `json:"category"`
	Priority          Priority  `json:"priority"`
	DetectedAt        time.Time `json:"detected_at"`
	PreviousCheckedAt time.Time `json:"previous_checked_at"`
	Acknowledged      bool      `json:"acknowledged"`
}

// SweepRecord summarizes one full pass over the source catalog.
type SweepRecord struct {
	Timestamp      time.Time `json:"timestamp"`
	SourcesChecked int       `json:"sources_checked"`
	ChangesFound   int       `json:"changes_found"`
}

// Severity classifies journal entries.
type Severity string

// Journal severities.
const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// LogEntry is one line of the bounded operational journal.
type LogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Severity  Severity  `json:"severity"`
	Message   string    `json:"message"`
}

// Outcome is the result of evaluating a fresh digest against history.
type Outcome int

// Evaluation outcomes.
const (
	// OutcomeFirstSeen means no prior history existed; the baseline was
	// established silently and no Change was emitted.
	OutcomeFirstSeen Outcome = iota
	OutcomeUnchanged
	OutcomeChanged
)

// String returns the lowercase outcome name.
func (o Outcome) String() string {
	switch o {
	case OutcomeFirstSeen:
		return "first_seen"
	case OutcomeUnchanged:
		return "unchanged"
	case OutcomeChanged:
		return "changed"
	default:
		return "unknown"
	}
}

// TriggerResult reports what an on-demand check request did.
type TriggerResult string

// On-demand trigger results.
const (
	TriggerAccepted       TriggerResult = "accepted"
	TriggerAlreadyRunning TriggerResult = "already_running"
)

// Snapshot is the wholesale persisted form of the monitor state. It is
// overwritten on every save; slices are stored oldest-first.
type Snapshot struct {
	TotalSweeps  int                     `json:"total_sweeps"`
	TotalChanges int                     `json:"total_changes"`
	LastSweepAt  time.Time               `json:"last_sweep_at"`
	NextSweepAt  time.Time               `json:"next_sweep_at"`
	History      map[string]HistoryEntry `json:"history"`
	Changes      []Change                `json:"changes"`
	Sweeps       []SweepRecord           `json:"sweeps"`
	Events       []LogEntry              `json:"events"`
}

// SourceStatus is the read-model row for one source: registry identity merged
// with its history entry, or status "unknown" before the first check.
type SourceStatus struct {
	Source        Source      `json:"source"`
	Status        CheckStatus `json:"status"`
	LastDigest    string      `json:"last_digest,omitempty"`
	LastCheckedAt *time.Time  `json:"last_checked_at,omitempty"`
	LastError     string      `json:"last_error,omitempty"`
}

// StatusUnknown marks a source that has never been checked.
const StatusUnknown CheckStatus = "unknown"

// StatusSnapshot is a consistent, bounded read of the monitor state for the
// dashboard/API layer. Slices are most-recent-first.
type StatusSnapshot struct {
	TotalSweeps   int            `json:"total_sweeps"`
	TotalChanges  int            `json:"total_changes"`
	UnreadChanges int            `json:"unread_changes"`
	LastSweepAt   time.Time      `json:"last_sweep_at"`
	NextSweepAt   time.Time      `json:"next_sweep_at"`
	SweepInFlight bool           `json:"sweep_in_flight"`
	Sources       []SourceStatus `json:"sources"`
	RecentChanges []Change       `json:"recent_changes"`
	RecentEvents  []LogEntry     `json:"recent_events"`
	RecentSweeps  []SweepRecord  `json:"recent_sweeps"`
}
