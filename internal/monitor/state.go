package monitor

import (
	"sync"
	"time"
)

// Default ring capacities and read-path slice bounds.
const (
	DefaultEventCapacity  = 100
	DefaultSweepCapacity  = 48
	DefaultChangeCapacity = 200

	defaultStatusChanges = 50
	defaultStatusEvents  = 50
	defaultStatusSweeps  = 24
)

// StateConfig bounds the retained rings and the slices returned by Status.
type StateConfig struct {
	EventCapacity  int
	SweepCapacity  int
	ChangeCapacity int
	StatusChanges  int
	StatusEvents   int
	StatusSweeps   int
}

func (c StateConfig) withDefaults() StateConfig {
	if c.EventCapacity <= 0 {
		c.EventCapacity = DefaultEventCapacity
	}
	if c.SweepCapacity <= 0 {
		c.SweepCapacity = DefaultSweepCapacity
	}
	if c.ChangeCapacity <= 0 {
		c.ChangeCapacity = DefaultChangeCapacity
	}
	if c.StatusChanges <= 0 {
		c.StatusChanges = defaultStatusChanges
	}
	if c.StatusEvents <= 0 {
		c.StatusEvents = defaultStatusEvents
	}
	if c.StatusSweeps <= 0 {
		c.StatusSweeps = defaultStatusSweeps
	}
	return c
}

// State is the single owner of the process-wide monitor state. All mutation
// goes through its methods under one lock; readers get consistent snapshots
// under the same lock. No other shared mutable resource exists.
type State struct {
	mu       sync.RWMutex
	cfg      StateConfig
	registry *Registry

	totalSweeps  int
	totalChanges int
	lastSweepAt  time.Time
	nextSweepAt  time.Time
	inFlight     bool

	history map[string]HistoryEntry
	changes *Ring[Change]
	sweeps  *Ring[SweepRecord]
	events  *Ring[LogEntry]
}

// NewState builds an empty State for the given catalog.
func NewState(registry *Registry, cfg StateConfig) *State {
	cfg = cfg.withDefaults()
	return &State{
		cfg:      cfg,
		registry: registry,
		history:  make(map[string]HistoryEntry),
		changes:  NewRing[Change](cfg.ChangeCapacity),
		sweeps:   NewRing[SweepRecord](cfg.SweepCapacity),
		events:   NewRing[LogEntry](cfg.EventCapacity),
	}
}

// Restore replaces the in-memory state with a persisted snapshot. Entries for
// sources no longer in the catalog are kept; they simply stop being swept.
func (s *State) Restore(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.totalSweeps = snap.TotalSweeps
	s.totalChanges = snap.TotalChanges
	s.lastSweepAt = snap.LastSweepAt
	s.nextSweepAt = snap.NextSweepAt
	s.history = make(map[string]HistoryEntry, len(snap.History))
	for id, entry := range snap.History {
		s.history[id] = entry
	}
	s.changes = NewRing[Change](s.cfg.ChangeCapacity)
	for _, c := range snap.Changes {
		s.changes.Push(c)
	}
	s.sweeps = NewRing[SweepRecord](s.cfg.SweepCapacity)
	for _, r := range snap.Sweeps {
		s.sweeps.Push(r)
	}
	s.events = NewRing[LogEntry](s.cfg.EventCapacity)
	for _, e := range snap.Events {
		s.events.Push(e)
	}
}

// Export serializes the full state for persistence.
func (s *State) Export() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	history := make(map[string]HistoryEntry, len(s.history))
	for id, entry := range s.history {
		history[id] = entry
	}
	return Snapshot{
		TotalSweeps:  s.totalSweeps,
		TotalChanges: s.totalChanges,
		LastSweepAt:  s.lastSweepAt,
		NextSweepAt:  s.nextSweepAt,
		History:      history,
		Changes:      s.changes.ItemsOldestFirst(),
		Sweeps:       s.sweeps.ItemsOldestFirst(),
		Events:       s.events.ItemsOldestFirst(),
	}
}

// FinishSweep records the sweep summary and schedules the next run.
func (s *State) FinishSweep(now time.Time, sourcesChecked, changesFound int, next time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.totalSweeps++
	s.totalChanges += changesFound
	s.lastSweepAt = now
	s.nextSweepAt = next
	s.sweeps.Push(SweepRecord{
		Timestamp:      now,
		SourcesChecked: sourcesChecked,
		ChangesFound:   changesFound,
	})
}

// SetSweepInFlight flags whether a sweep is currently running, for the read
// path only.
func (s *State) SetSweepInFlight(running bool) {
	s.mu.Lock()
	s.inFlight = running
	s.mu.Unlock()
}

// MarkAllRead acknowledges every recorded change and reports how many were
// previously unread.
func (s *State) MarkAllRead() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := s.changes.ItemsOldestFirst()
	s.changes = NewRing[Change](s.cfg.ChangeCapacity)
	acknowledged := 0
	for _, c := range items {
		if !c.Acknowledged {
			acknowledged++
		}
		c.Acknowledged = true
		s.changes.Push(c)
	}
	return acknowledged
}

// AppendEvent adds a line to the bounded journal. It never influences
// control flow.
func (s *State) AppendEvent(now time.Time, severity Severity, message string) {
	s.mu.Lock()
	s.events.Push(LogEntry{Timestamp: now, Severity: severity, Message: message})
	s.mu.Unlock()
}

// History returns a copy of the entry for a source, if any.
func (s *State) History(sourceID string) (HistoryEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.history[sourceID]
	return entry, ok
}

// Status takes a consistent, bounded snapshot for the dashboard/API layer.
func (s *State) Status() StatusSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sources := make([]SourceStatus, 0, s.registry.Len())
	for _, src := range s.registry.Sources() {
		row := SourceStatus{Source: src, Status: StatusUnknown}
		if entry, ok := s.history[src.ID]; ok {
			checkedAt := entry.LastCheckedAt
			row.Status = entry.LastStatus
			row.LastDigest = entry.LastDigest
			row.LastCheckedAt = &checkedAt
			row.LastError = entry.LastError
		}
		sources = append(sources, row)
	}

	changes := s.changes.Items()
	unread := 0
	for _, c := range changes {
		if !c.Acknowledged {
			unread++
		}
	}
	return StatusSnapshot{
		TotalSweeps:   s.totalSweeps,
		TotalChanges:  s.totalChanges,
		UnreadChanges: unread,
		LastSweepAt:   s.lastSweepAt,
		NextSweepAt:   s.nextSweepAt,
		SweepInFlight: s.inFlight,
		Sources:       sources,
		RecentChanges: boundSlice(changes, s.cfg.StatusChanges),
		RecentEvents:  boundSlice(s.events.Items(), s.cfg.StatusEvents),
		RecentSweeps:  boundSlice(s.sweeps.Items(), s.cfg.StatusSweeps),
	}
}

func boundSlice[T any](in []T, limit int) []T {
	if len(in) > limit {
		in = in[:limit]
	}
	return in
}
