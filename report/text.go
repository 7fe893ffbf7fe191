package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/arloliu/squash/analysis"
	"github.com/arloliu/squash/format"
)

const (
	ruleWide   = 80
	ruleNarrow = 40
)

// Report renders the recorded results as plain text.
//
// The report has an overall section per algorithm, a per-category section and the
// algorithm with the lowest average ratio per category. Baselines appear in the overall
// section only. Sections are ordered deterministically.
func (a *Analyzer) Report() string {
	return Render(a.Results(), time.Now())
}

// Render renders results as Report does, stamped with the given time.
func Render(files []FileResult, generated time.Time) string {
	if len(files) == 0 {
		return "No analysis results available."
	}

	summary := Summarize(files)
	if len(summary) == 0 {
		return "No valid analysis data available."
	}

	var b strings.Builder
	line := func(f string, args ...any) {
		fmt.Fprintf(&b, f, args...)
		b.WriteByte('\n')
	}

	line("%s", strings.Repeat("=", ruleWide))
	line("COMPRESSION ANALYSIS REPORT")
	line("%s", strings.Repeat("=", ruleWide))
	line("Generated: %s", generated.Format("2006-01-02 15:04:05"))
	line("Total files analyzed: %d", len(files))
	line("")

	line("OVERALL STATISTICS")
	line("%s", strings.Repeat("-", ruleNarrow))
	for _, name := range algorithmOrder(summary) {
		s := summary[name]
		title := strings.ToUpper(name) + " ALGORITHM"
		if s.Baseline {
			title = strings.ToUpper(name) + " BASELINE"
		}
		line("")
		line("%s:", title)
		line("  Files tested: %d", s.TotalFilesTested)
		line("  Average compression ratio: %.4f", s.AvgCompressionRatio)
		line("  Best compression ratio: %.4f", s.MinCompressionRatio)
		line("  Worst compression ratio: %.4f", s.MaxCompressionRatio)
		line("  Average space saved: %.2f%%", s.AvgSpaceSavedPercent)
		line("  Total size: %s -> %s",
			humanize.Bytes(uint64(s.TotalOriginalSize)), humanize.Bytes(uint64(s.TotalCompressedSize)))
		line("  Average compression time: %s", s.AvgCompressionTime)
		line("  Average decompression time: %s", s.AvgDecompressionTime)
	}

	byCategory := categoryAverages(files)
	categories := make([]string, 0, len(byCategory))
	for c := range byCategory {
		if c == string(analysis.CategoryUnknown) {
			continue
		}
		categories = append(categories, c)
	}
	sort.Strings(categories)

	line("")
	line("")
	line("CATEGORY ANALYSIS")
	line("%s", strings.Repeat("-", ruleNarrow))
	for _, c := range categories {
		line("")
		line("%s FILES:", strings.ToUpper(c))
		for _, avg := range byCategory[c] {
			line("  %s: %.4f avg ratio, %.2f%% space saved", avg.algorithm, avg.ratio, avg.saved)
		}
	}

	line("")
	line("")
	line("ALGORITHM RECOMMENDATIONS")
	line("%s", strings.Repeat("-", ruleNarrow))
	for _, c := range categories {
		best := byCategory[c][0]
		for _, avg := range byCategory[c][1:] {
			if avg.ratio < best.ratio {
				best = avg
			}
		}
		line("%s files: use %s (%.4f avg ratio)", c, strings.ToUpper(best.algorithm), best.ratio)
	}

	return b.String()
}

type categoryAverage struct {
	algorithm string
	ratio     float64
	saved     float64
}

// categoryAverages averages the successful codec runs per category, in algorithm order.
func categoryAverages(files []FileResult) map[string][]categoryAverage {
	type key struct{ category, algorithm string }
	sums := make(map[key]*categoryAverage)
	counts := make(map[key]int)

	for _, f := range files {
		for _, r := range f.Algorithms {
			if !r.OK() {
				continue
			}
			k := key{string(f.FileInfo.Category), r.Algorithm}
			s, ok := sums[k]
			if !ok {
				s = &categoryAverage{algorithm: r.Algorithm}
				sums[k] = s
			}
			s.ratio += r.CompressionRatio
			s.saved += r.SpaceSavedPercent
			counts[k]++
		}
	}

	out := make(map[string][]categoryAverage)
	for k, s := range sums {
		n := float64(counts[k])
		out[k.category] = append(out[k.category], categoryAverage{
			algorithm: s.algorithm,
			ratio:     s.ratio / n,
			saved:     s.saved / n,
		})
	}
	for c := range out {
		sort.Slice(out[c], func(i, j int) bool {
			return algorithmRank(out[c][i].algorithm) < algorithmRank(out[c][j].algorithm)
		})
	}

	return out
}

// algorithmOrder lists squash codecs in declaration order, then baselines by name.
func algorithmOrder(summary map[string]AlgorithmSummary) []string {
	names := make([]string, 0, len(summary))
	for name := range summary {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		ri, rj := algorithmRank(names[i]), algorithmRank(names[j])
		if ri != rj {
			return ri < rj
		}

		return names[i] < names[j]
	})

	return names
}

func algorithmRank(name string) int {
	for i, alg := range format.Algorithms {
		if alg.Name() == name {
			return i
		}
	}

	return len(format.Algorithms)
}
