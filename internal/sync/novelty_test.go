package sync

import (
	"reflect"
	"testing"
)

func TestNovelty(t *testing.T) {
	t.Run("PreservesListingOrder", func(t *testing.T) {
		listed := []int64{5, 3, 9, 1}
		cached := IDSet([]int64{3})

		got := Novelty(listed, cached)
		want := []int64{5, 9, 1}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("Expected %v, got %v", want, got)
		}
	})

	t.Run("DuplicatesPassThrough", func(t *testing.T) {
		listed := []int64{7, 7, 2}
		got := Novelty(listed, IDSet(nil))
		want := []int64{7, 7, 2}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("Expected duplicates preserved %v, got %v", want, got)
		}
	})

	t.Run("AllCached", func(t *testing.T) {
		listed := []int64{1, 2, 3}
		got := Novelty(listed, IDSet([]int64{1, 2, 3}))
		if len(got) != 0 {
			t.Errorf("Expected no novel ids, got %v", got)
		}
	})

	t.Run("EmptyListing", func(t *testing.T) {
		if got := Novelty(nil, IDSet([]int64{1})); len(got) != 0 {
			t.Errorf("Expected no novel ids for empty listing, got %v", got)
		}
	})

	t.Run("SupersetCacheIsFine", func(t *testing.T) {
		// Cached ids absent from the listing (deleted remotely) must not
		// affect the result.
		listed := []int64{10}
		got := Novelty(listed, IDSet([]int64{10, 20, 30}))
		if len(got) != 0 {
			t.Errorf("Expected no novel ids, got %v", got)
		}
	})
}
