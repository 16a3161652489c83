package network

import "sort"

// maxRecentIntervals is the number of snapshot intervals kept for the average.
const maxRecentIntervals = 10

// removeOutlierIntervals removes outlier intervals from the recent intervals.
// An outlier is an interval greater than 2 times the median interval
// and also greater than 100ms, typically a stall rather than the server rate.
func removeOutlierIntervals(recent []int64) []int64 {
	result := make([]int64, 0, len(recent))
	median := medianInterval(recent)
	for i := 0; i < len(recent); i++ {
		if recent[i] > 2*median && recent[i] > 100 {
			continue
		}
		result = append(result, recent[i])
	}
	return result
}

// medianInterval returns the median of a slice of intervals.
func medianInterval(recent []int64) int64 {
	if len(recent) == 0 {
		return 0
	}
	sorted := make([]int64, len(recent))
	copy(sorted, recent)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i] < sorted[j]
	})
	if len(sorted)%2 == 0 {
		return (sorted[len(sorted)/2-1] + sorted[len(sorted)/2]) / 2
	}
	return sorted[len(sorted)/2]
}

// averageInterval returns the mean of the intervals without outliers.
func averageInterval(recent []int64) float64 {
	sample := removeOutlierIntervals(recent)
	if len(sample) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range sample {
		sum += float64(v)
	}
	return sum / float64(len(sample))
}
