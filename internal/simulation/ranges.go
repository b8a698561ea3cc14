package simulation

import "slices"

// Ranges are index buffer ranges for one frame. [Start, End) covers the
// layers below the current one, starting at the minimum layer.
// [CurrentStart, CurrentEnd) covers the current layer up to the current path.
type Ranges struct {
	Start        int
	End          int
	CurrentStart int
	CurrentEnd   int
}

// SelectRanges computes the draw ranges. counts maps layer numbers to index
// buffer entries; total bounds CurrentEnd.
func SelectRanges(counts map[int]int, current, path, minimum, total int) Ranges {
	numbers := make([]int, 0, len(counts))
	for n := range counts {
		numbers = append(numbers, n)
	}
	slices.Sort(numbers)

	var r Ranges
	for _, n := range numbers {
		if n >= current {
			break
		}
		if minimum > n {
			r.Start += counts[n]
		}
		r.End += counts[n]
	}

	r.CurrentStart = r.End
	// Every line references two vertices.
	r.CurrentEnd = r.End + path*2
	if r.CurrentEnd > total {
		r.CurrentEnd = total
	}
	if r.CurrentEnd < r.CurrentStart {
		r.CurrentEnd = r.CurrentStart
	}
	return r
}

// rangedRendering reports whether the ranged layer batches are drawn.
func rangedRendering(st State, compatibility bool) bool {
	if st.CurrentLayer <= -1 {
		return false
	}
	return !st.OnlyShowTopLayers || !compatibility
}
