package report

import (
	"math"
	"time"
)

// Summarize aggregates the successful runs of every algorithm across files.
// Failed runs and runs that did not restore the original bytes are left out.
func Summarize(files []FileResult) map[string]AlgorithmSummary {
	type acc struct {
		summary  AlgorithmSummary
		ratioSum float64
		savedSum float64
		ctSum    time.Duration
		dtSum    time.Duration
	}

	accs := make(map[string]*acc)
	add := func(r AlgorithmResult) {
		if !r.OK() {
			return
		}
		a, ok := accs[r.Algorithm]
		if !ok {
			a = &acc{summary: AlgorithmSummary{
				Algorithm:           r.Algorithm,
				Baseline:            r.Baseline,
				MinCompressionRatio: math.Inf(1),
				MaxCompressionRatio: math.Inf(-1),
			}}
			accs[r.Algorithm] = a
		}

		s := &a.summary
		s.TotalFilesTested++
		s.TotalOriginalSize += r.OriginalSize
		s.TotalCompressedSize += r.CompressedSize
		s.MinCompressionRatio = min(s.MinCompressionRatio, r.CompressionRatio)
		s.MaxCompressionRatio = max(s.MaxCompressionRatio, r.CompressionRatio)
		a.ratioSum += r.CompressionRatio
		a.savedSum += r.SpaceSavedPercent
		a.ctSum += r.CompressionTime
		a.dtSum += r.DecompressionTime
	}

	for _, f := range files {
		for _, r := range f.Algorithms {
			add(r)
		}
		for _, r := range f.Baselines {
			add(r)
		}
	}

	out := make(map[string]AlgorithmSummary, len(accs))
	for name, a := range accs {
		n := a.summary.TotalFilesTested
		s := a.summary
		s.AvgCompressionRatio = a.ratioSum / float64(n)
		s.AvgSpaceSavedPercent = a.savedSum / float64(n)
		s.AvgCompressionTime = a.ctSum / time.Duration(n)
		s.AvgDecompressionTime = a.dtSum / time.Duration(n)
		out[name] = s
	}

	return out
}
