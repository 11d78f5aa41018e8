package tracker

import (
	"fmt"
	"runtime"
	"sort"
	"sync"
)

// Reconstruct fills the gaps in a sparse observation sequence so every
// track has one Record for every frame between its first and last observed
// appearance inclusive.  Missing frames get per-coordinate linearly
// interpolated car boxes, a plate box interpolated the same way when both
// bounding neighbours carry one, zero confidence scores and no text.  Text
// identity is not spatially interpolable so it is never synthesized.
//
// Tracks are independent of each other, so they are reconstructed across a
// bounded pool of workers and merged back into a deterministic order of
// track id ascending, frame number ascending.
//
// Input violating the store contract (malformed observations, duplicate
// (frame, track) keys) aborts the whole pass with ErrMalformedObservation;
// no partial output is returned.
func Reconstruct(observations []Observation) ([]Record, error) {
	groups, ids, err := groupByTrack(observations)

	if err != nil {
		return nil, err
	}

	// fan the independent track groups out across a worker pool, results
	// are slotted by group index so the merge stays deterministic
	perTrack := make([][]Record, len(ids))

	workers := runtime.NumCPU()

	if workers > len(ids) {
		workers = len(ids)
	}

	next := make(chan int, len(ids))

	for i := range ids {
		next <- i
	}

	close(next)

	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for i := range next {
				perTrack[i] = reconstructTrack(groups[ids[i]])
			}
		}()
	}

	wg.Wait()

	var out []Record

	for _, recs := range perTrack {
		out = append(out, recs...)
	}

	return out, nil
}

// groupByTrack builds the track id multimap in one linear pass, sorts each
// group by frame number and validates the store contract on the way
func groupByTrack(observations []Observation) (map[int][]Observation, []int, error) {
	groups := make(map[int][]Observation)

	for i := range observations {
		o := observations[i]

		if err := o.Validate(); err != nil {
			return nil, nil, err
		}

		groups[o.TrackID] = append(groups[o.TrackID], o)
	}

	ids := make([]int, 0, len(groups))

	for id := range groups {
		ids = append(ids, id)
	}

	sort.Ints(ids)

	for _, id := range ids {
		track := groups[id]

		sort.Slice(track, func(i, j int) bool {
			return track[i].FrameNmr < track[j].FrameNmr
		})

		for i := 1; i < len(track); i++ {
			if track[i].FrameNmr == track[i-1].FrameNmr {
				return nil, nil, fmt.Errorf("%w: duplicate frame %d for track %d",
					ErrMalformedObservation, track[i].FrameNmr, id)
			}
		}
	}

	return groups, ids, nil
}

// reconstructTrack emits the dense record sequence for one track whose
// observations are already sorted by frame number and free of duplicates.
// A track observed once yields a single record with no interpolation.
func reconstructTrack(track []Observation) []Record {
	first := track[0].FrameNmr
	last := track[len(track)-1].FrameNmr

	out := make([]Record, 0, last-first+1)

	for i := range track {
		out = append(out, Record{Observation: track[i]})

		if i+1 == len(track) {
			break
		}

		prev, next := track[i], track[i+1]
		span := next.FrameNmr - prev.FrameNmr

		for frame := prev.FrameNmr + 1; frame < next.FrameNmr; frame++ {
			t := float64(frame-prev.FrameNmr) / float64(span)

			rec := Record{
				Observation: Observation{
					FrameNmr: frame,
					TrackID:  prev.TrackID,
					CarBox:   prev.CarBox.Lerp(next.CarBox, t),
				},
				Interpolated: true,
			}

			// a plate trajectory only exists between two localized plates
			if prev.PlateBox != nil && next.PlateBox != nil {
				plate := prev.PlateBox.Lerp(*next.PlateBox, t)
				rec.PlateBox = &plate
			}

			out = append(out, rec)
		}
	}

	return out
}
