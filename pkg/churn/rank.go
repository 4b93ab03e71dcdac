package churn

import (
	"slices"
	"sort"
)

// Select picks the n longest files and the n files with the highest churn,
// merges both lists without duplicates, and orders the result by descending
// combined score. The input slice is not modified.
func Select(metrics []FileMetric, n int) []FileMetric {
	if n <= 0 || len(metrics) == 0 {
		return []FileMetric{}
	}

	longest := topBy(metrics, n, func(m FileMetric) int { return m.LineCount })
	churniest := topBy(metrics, n, func(m FileMetric) int { return m.Churn })

	selected := dedupe(slices.Concat(longest, churniest))

	sort.SliceStable(selected, func(i, j int) bool {
		return CombinedScore(selected[i]) > CombinedScore(selected[j])
	})

	return selected
}

// topBy sorts a copy ascending by key and returns the last n entries, largest first.
func topBy(metrics []FileMetric, n int, key func(FileMetric) int) []FileMetric {
	sorted := slices.Clone(metrics)

	sort.SliceStable(sorted, func(i, j int) bool {
		return key(sorted[i]) < key(sorted[j])
	})

	slices.Reverse(sorted)

	return sorted[:min(n, len(sorted))]
}

// dedupe drops exact duplicates, keeping the first occurrence.
func dedupe(metrics []FileMetric) []FileMetric {
	seen := make(map[FileMetric]struct{}, len(metrics))
	unique := make([]FileMetric, 0, len(metrics))

	for _, m := range metrics {
		if _, dup := seen[m]; dup {
			continue
		}

		seen[m] = struct{}{}
		unique = append(unique, m)
	}

	return unique
}
