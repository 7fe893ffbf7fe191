package analysis

import (
	"strings"

	"github.com/arloliu/squash/format"
)

// Category is the coarse content class of a file.
type Category string

const (
	CategoryText    Category = "text"
	CategoryImage   Category = "image"
	CategoryAudio   Category = "audio"
	CategoryVideo   Category = "video"
	CategoryArchive Category = "archive"
	CategoryBinary  Category = "binary"
	CategoryUnknown Category = "unknown"
)

var extensionCategories = map[Category][]string{
	CategoryText:    {".txt", ".md", ".py", ".go", ".js", ".html", ".css", ".json", ".xml", ".csv", ".log"},
	CategoryImage:   {".jpg", ".jpeg", ".png", ".gif", ".bmp", ".tiff", ".webp", ".svg"},
	CategoryAudio:   {".mp3", ".wav", ".flac", ".aac", ".ogg", ".m4a"},
	CategoryVideo:   {".mp4", ".avi", ".mkv", ".mov", ".wmv", ".flv", ".webm"},
	CategoryArchive: {".zip", ".rar", ".7z", ".tar", ".gz", ".bz2", ".xz", ".zst", ".lz4"},
	CategoryBinary:  {".exe", ".dll", ".so", ".dylib", ".bin", ".dat"},
}

// categoryOrder is the precedence used when both extension and MIME type are known.
var categoryOrder = []Category{
	CategoryText, CategoryImage, CategoryAudio, CategoryVideo, CategoryArchive, CategoryBinary,
}

func hasExtension(c Category, ext string) bool {
	for _, e := range extensionCategories[c] {
		if e == ext {
			return true
		}
	}

	return false
}

func matchesMIME(c Category, mimeType string) bool {
	switch c {
	case CategoryText, CategoryImage, CategoryAudio, CategoryVideo:
		return strings.HasPrefix(mimeType, string(c)+"/")
	case CategoryArchive:
		return strings.Contains(mimeType, "compressed") || strings.Contains(mimeType, "zip") ||
			strings.Contains(mimeType, "gzip")
	case CategoryBinary:
		return strings.HasPrefix(mimeType, "application/")
	default:
		return false
	}
}

// Categorize classifies a file by its lower-case extension and its MIME type.
func Categorize(ext, mimeType string) Category {
	for _, c := range categoryOrder {
		if hasExtension(c, ext) || matchesMIME(c, mimeType) {
			return c
		}
	}

	return CategoryUnknown
}

// Action is what a Strategy prescribes for a category.
type Action struct {
	// Algorithm is the codec to use when Skip is false.
	Algorithm format.Algorithm
	// Skip means the content is already compressed and should be stored as is.
	Skip bool
}

// String returns the algorithm name, or "skip".
func (a Action) String() string {
	if a.Skip {
		return "skip"
	}

	return a.Algorithm.Name()
}

// Strategy maps categories to actions.
type Strategy map[Category]Action

// DefaultStrategy prefers Huffman for text and binaries, arithmetic coding for media,
// and skips archives.
func DefaultStrategy() Strategy {
	return Strategy{
		CategoryText:    {Algorithm: format.AlgorithmHuffman},
		CategoryImage:   {Algorithm: format.AlgorithmArithmetic},
		CategoryAudio:   {Algorithm: format.AlgorithmArithmetic},
		CategoryVideo:   {Algorithm: format.AlgorithmArithmetic},
		CategoryArchive: {Skip: true},
		CategoryBinary:  {Algorithm: format.AlgorithmHuffman},
		CategoryUnknown: {Algorithm: format.AlgorithmHuffman},
	}
}

// For returns the action of c, falling back to Huffman for categories the strategy omits.
func (s Strategy) For(c Category) Action {
	if a, ok := s[c]; ok {
		return a
	}

	return Action{Algorithm: format.AlgorithmHuffman}
}
