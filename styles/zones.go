package styles

import (
	"fmt"
	"slices"
)

// Zone is one partition of the viewport width range. Zone 0 is the widest.
type Zone struct {
	Index int
	// Conditions hold media conditions of the zone, empty for zone 0.
	Conditions []string
	// Own holds conditions which limit the zone to its range alone, for
	// zone 0 it is the lower bound of the widest range.
	Own []string
}

// Zones partitions the viewport by breakpoints (pixels, any order). N
// breakpoints give N+1 zones from the widest to the narrowest.
func Zones(breakpoints []float64) []Zone {
	bs := slices.Clone(breakpoints)
	slices.Sort(bs)
	bs = slices.Compact(bs)
	slices.Reverse(bs)

	zones := make([]Zone, 0, len(bs)+1)
	zones = append(zones, Zone{Index: 0})
	if len(bs) > 0 {
		zones[0].Own = []string{minWidth(bs[0])}
	}
	for i := 1; i <= len(bs); i++ {
		cond := []string{fmt.Sprintf("(max-width: %spx)", formatNumber(bs[i-1]-1))}
		if i < len(bs) {
			cond = append(cond, minWidth(bs[i]))
		}
		zones = append(zones, Zone{Index: i, Conditions: cond, Own: cond})
	}
	return zones
}

func minWidth(b float64) string {
	return fmt.Sprintf("(min-width: %spx)", formatNumber(b))
}

// spread distributes value over zones: arrays are positional with the last
// element carried forward, anything else applies to every zone.
func spread(value any, n int) []any {
	res := make([]any, n)
	arr, ok := value.([]any)
	if !ok {
		for i := range res {
			res[i] = value
		}
		return res
	}
	if len(arr) == 0 {
		return res
	}
	for i := range res {
		res[i] = arr[min(i, len(arr)-1)]
	}
	return res
}
