package tracker

import (
	"sort"
	"sync"
)

// Store is the append-only per-frame record store for one video pass.  It
// keeps one multimap entry per track id so downstream grouping is done once
// at append time instead of rescanning a flat table per track.
type Store struct {
	// history of observations per track id, in frame append order
	history map[int][]Observation
	sync.Mutex
}

// NewStore returns an empty record store for a single video pass
func NewStore() *Store {
	return &Store{
		history: make(map[int][]Observation),
	}
}

// Append records one observation.  At most one observation is retained per
// (frame, track) key, a duplicate key from the upstream pipeline replaces
// the earlier one.  Observations violating the store contract return
// ErrMalformedObservation and leave the store unchanged.
func (s *Store) Append(o Observation) error {
	if err := o.Validate(); err != nil {
		return err
	}

	s.Lock()
	defer s.Unlock()

	track := s.history[o.TrackID]

	// frames normally arrive in ascending order so the common duplicate is
	// the most recent entry, fall back to a scan for out of order input
	if n := len(track); n > 0 && track[n-1].FrameNmr == o.FrameNmr {
		track[n-1] = o
		return nil
	}

	for i := range track {
		if track[i].FrameNmr == o.FrameNmr {
			track[i] = o
			return nil
		}
	}

	s.history[o.TrackID] = append(track, o)

	return nil
}

// Len returns the total number of observations retained
func (s *Store) Len() int {
	s.Lock()
	defer s.Unlock()

	n := 0

	for _, track := range s.history {
		n += len(track)
	}

	return n
}

// TrackIDs returns all track ids present in the store in ascending order
func (s *Store) TrackIDs() []int {
	s.Lock()
	defer s.Unlock()

	ids := make([]int, 0, len(s.history))

	for id := range s.history {
		ids = append(ids, id)
	}

	sort.Ints(ids)

	return ids
}

// Track returns a copy of the observations for a specific track id sorted
// by frame number, or nil when the track was never observed
func (s *Store) Track(id int) []Observation {
	s.Lock()
	defer s.Unlock()

	track, exists := s.history[id]

	if !exists {
		return nil
	}

	out := make([]Observation, len(track))
	copy(out, track)

	sort.Slice(out, func(i, j int) bool {
		return out[i].FrameNmr < out[j].FrameNmr
	})

	return out
}

// Observations returns all retained observations ordered by track id
// ascending then frame number ascending
func (s *Store) Observations() []Observation {
	ids := s.TrackIDs()

	var out []Observation

	for _, id := range ids {
		out = append(out, s.Track(id)...)
	}

	return out
}
