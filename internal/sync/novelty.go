package sync

// Novelty returns the listed ids that are absent from the cached set,
// preserving listing order. Duplicate listing entries pass through as
// separate items; filtering them here would hide an upstream bug behind
// a silent dedupe.
func Novelty(listed []int64, cached map[int64]struct{}) []int64 {
	var novel []int64
	for _, id := range listed {
		if _, ok := cached[id]; !ok {
			novel = append(novel, id)
		}
	}
	return novel
}

// IDSet builds a membership set from a slice of ids.
func IDSet(ids []int64) map[int64]struct{} {
	set := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
