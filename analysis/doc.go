// Package analysis classifies files and recommends a squash codec for them.
//
// A Detector looks at the extension, the MIME type and a leading content sample of a
// file, assigns it a Category, and measures the Shannon entropy of the sample. The
// category to algorithm mapping is a Strategy supplied by the caller; DefaultStrategy
// is used when none is given. Codecs never consult this table.
package analysis
