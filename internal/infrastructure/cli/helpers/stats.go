package helpers

import "sort"

// Count is one bucket of a frequency table.
type Count struct {
	Key   string
	Count int
}

// TopCounts sorts freq by count (descending, ties by key) and keeps at most
// limit buckets. A non-positive limit keeps all of them.
func TopCounts(freq map[string]int, limit int) []Count {
	counts := make([]Count, 0, len(freq))
	for key, n := range freq {
		counts = append(counts, Count{Key: key, Count: n})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count == counts[j].Count {
			return counts[i].Key < counts[j].Key
		}
		return counts[i].Count > counts[j].Count
	})
	if limit > 0 && len(counts) > limit {
		counts = counts[:limit]
	}
	return counts
}

// Percent returns part/total as a percentage, 0 when total is 0.
func Percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}
