// Package report benchmarks the squash codecs against files and directories.
//
// An Analyzer round-trips every file through each configured codec using the
// filecodec adapter, verifies that the restored bytes hash to the original checksum,
// and records ratios and timings. General-purpose baseline compressors are measured
// alongside for reference but never compete for the best algorithm.
//
// Results accumulate in the Analyzer and can be rendered with Report or persisted
// with SaveResults and LoadResults.
package report
