package tracker

// Associate finds the tracked car whose bounding box fully contains the
// given plate box and returns its track id.  When several car boxes
// overlap and all contain the plate, the smallest car box wins so the
// result does not depend on the iteration order of the upstream tracker
// output; equal areas fall back to the first candidate given.  Returns
// false when no candidate contains the plate, in which case the caller
// drops the detection for this frame.
func Associate(plate Rect, cars []Candidate) (int, bool) {
	bestID := 0
	bestArea := 0.0
	found := false

	for _, car := range cars {
		if !plate.ContainedIn(car.Box) {
			continue
		}

		if !found || car.Box.Area() < bestArea {
			bestID = car.TrackID
			bestArea = car.Box.Area()
			found = true
		}
	}

	return bestID, found
}
