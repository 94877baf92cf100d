package monitor

import "time"

// ApplyCheck evaluates a fresh digest against the stored baseline for the
// source and overwrites its history entry with status checked.
//
// The first-ever observation of a source establishes the baseline silently:
// it yields OutcomeFirstSeen and never a Change. A Change is emitted only
// when a prior entry exists and its digest differs; the prior check time is
// carried onto the Change as PreviousCheckedAt.
func (s *State) ApplyCheck(source Source, digest string, now time.Time) (Outcome, Change) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prior, exists := s.history[source.ID]
	s.history[source.ID] = HistoryEntry{
		LastDigest:    digest,
		LastCheckedAt: now,
		LastStatus:    StatusChecked,
	}

	// A prior entry with no digest comes from a failed check before any
	// baseline existed; the first successful fetch still establishes the
	// baseline silently.
	if !exists || prior.LastDigest == "" {
		return OutcomeFirstSeen, Change{}
	}
	if prior.LastDigest == digest {
		return OutcomeUnchanged, Change{}
	}

	change := Change{
		SourceID:          source.ID,
		DisplayName:       source.DisplayName,
		Category:          source.Category,
		Priority:          source.Priority,
		DetectedAt:        now,
		PreviousCheckedAt: prior.LastCheckedAt,
	}
	s.changes.Push(change)
	return OutcomeChanged, change
}

// RecordFailure updates the source's history entry in place with status
// error. The stored digest is left untouched: a failed fetch must never be
// read as a content change, nor erase the last known-good baseline.
func (s *State) RecordFailure(source Source, fetchErr error, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := s.history[source.ID]
	entry.LastCheckedAt = now
	entry.LastStatus = StatusError
	entry.LastError = fetchErr.Error()
	s.history[source.ID] = entry
}
