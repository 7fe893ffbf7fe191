package report

import (
	"time"

	"github.com/arloliu/squash/analysis"
)

// AlgorithmResult is the outcome of one codec or baseline on one file.
type AlgorithmResult struct {
	Algorithm          string        `json:"algorithm"`
	Baseline           bool          `json:"baseline,omitempty"`
	OriginalSize       int64         `json:"original_size"`
	CompressedSize     int64         `json:"compressed_size"`
	CompressionRatio   float64       `json:"compression_ratio"`
	SpaceSaved         int64         `json:"space_saved"`
	SpaceSavedPercent  float64       `json:"space_saved_percent"`
	CompressionTime    time.Duration `json:"compression_time"`
	DecompressionTime  time.Duration `json:"decompression_time"`
	CompressionSpeed   float64       `json:"compression_speed"`
	DecompressionSpeed float64       `json:"decompression_speed"`
	IntegrityCheck     bool          `json:"integrity_check"`
	Error              string        `json:"error,omitempty"`
}

// TotalTime returns compression plus decompression time.
func (r AlgorithmResult) TotalTime() time.Duration {
	return r.CompressionTime + r.DecompressionTime
}

// OK reports whether the run completed and restored the original bytes.
func (r AlgorithmResult) OK() bool {
	return r.Error == "" && r.IntegrityCheck
}

// FileResult collects every run on one file.
type FileResult struct {
	FileInfo      analysis.FileInfo `json:"file_info"`
	Algorithms    []AlgorithmResult `json:"algorithms"`
	Baselines     []AlgorithmResult `json:"baselines,omitempty"`
	BestAlgorithm string            `json:"best_algorithm,omitempty"`
	Timestamp     time.Time         `json:"analysis_timestamp"`
}

// Result returns the result of the named algorithm.
func (f FileResult) Result(name string) (AlgorithmResult, bool) {
	for _, r := range f.Algorithms {
		if r.Algorithm == name {
			return r, true
		}
	}
	for _, r := range f.Baselines {
		if r.Algorithm == name {
			return r, true
		}
	}

	return AlgorithmResult{}, false
}

// FileError records a file that could not be analyzed at all.
type FileError struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// AlgorithmSummary aggregates the successful runs of one algorithm.
type AlgorithmSummary struct {
	Algorithm            string        `json:"algorithm"`
	Baseline             bool          `json:"baseline,omitempty"`
	AvgCompressionRatio  float64       `json:"avg_compression_ratio"`
	MinCompressionRatio  float64       `json:"min_compression_ratio"`
	MaxCompressionRatio  float64       `json:"max_compression_ratio"`
	AvgSpaceSavedPercent float64       `json:"avg_space_saved_percent"`
	AvgCompressionTime   time.Duration `json:"avg_compression_time"`
	AvgDecompressionTime time.Duration `json:"avg_decompression_time"`
	TotalFilesTested     int           `json:"total_files_tested"`
	TotalOriginalSize    int64         `json:"total_original_size"`
	TotalCompressedSize  int64         `json:"total_compressed_size"`
}

// DirectoryResult is the outcome of AnalyzeDirectory.
type DirectoryResult struct {
	Directory  string                      `json:"directory_path"`
	TotalFiles int                         `json:"total_files"`
	Files      []FileResult                `json:"file_results"`
	Failures   []FileError                 `json:"failures,omitempty"`
	Summary    map[string]AlgorithmSummary `json:"summary"`
	Timestamp  time.Time                   `json:"analysis_timestamp"`
}
