package report

// Selector picks the best algorithm among the squash codec results of one file.
// It returns the algorithm name, or "" when no result qualifies.
type Selector func(results []AlgorithmResult) string

// LowestRatio selects the successful result with the smallest compression ratio.
// Ties keep the earlier result.
func LowestRatio(results []AlgorithmResult) string {
	best := ""
	bestRatio := 0.0
	for _, r := range results {
		if !r.OK() {
			continue
		}
		if best == "" || r.CompressionRatio < bestRatio {
			best = r.Algorithm
			bestRatio = r.CompressionRatio
		}
	}

	return best
}

// Fastest selects the successful result with the smallest total time.
func Fastest(results []AlgorithmResult) string {
	best := ""
	var bestResult AlgorithmResult
	for _, r := range results {
		if !r.OK() {
			continue
		}
		if best == "" || r.TotalTime() < bestResult.TotalTime() {
			best = r.Algorithm
			bestResult = r
		}
	}

	return best
}

// RatioWithin selects the fastest result whose ratio is within tolerance of the best ratio.
func RatioWithin(tolerance float64) Selector {
	return func(results []AlgorithmResult) string {
		bestName := LowestRatio(results)
		if bestName == "" {
			return ""
		}

		var candidates []AlgorithmResult
		bestRatio := 0.0
		for _, r := range results {
			if r.Algorithm == bestName {
				bestRatio = r.CompressionRatio
			}
		}
		for _, r := range results {
			if r.OK() && r.CompressionRatio <= bestRatio+tolerance {
				candidates = append(candidates, r)
			}
		}

		return Fastest(candidates)
	}
}
