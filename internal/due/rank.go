package due

import (
	"sort"
	"strings"
)

// Compare orders two descriptors by urgency: ascending rank, most
// overdue first, unknown urgency last. Equal ranks fall back to task id
// so the order is total and identical across passes.
func Compare(a, b Descriptor) int {
	if a.Rank != b.Rank {
		if a.Rank < b.Rank {
			return -1
		}
		return 1
	}
	return strings.Compare(a.TaskID, b.TaskID)
}

// SortByUrgency sorts descriptors in place, most urgent first.
func SortByUrgency(ds []Descriptor) {
	sort.Slice(ds, func(i, j int) bool { return Compare(ds[i], ds[j]) < 0 })
}
