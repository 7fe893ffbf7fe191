package analysis

import (
	"sort"

	"github.com/arloliu/squash/format"
)

// Recommendation is one ranked codec suggestion for a file.
type Recommendation struct {
	Algorithm format.Algorithm `json:"algorithm"`
	Priority  int              `json:"priority"`
	Reason    string           `json:"reason"`
	// MinRatio and MaxRatio bound the expected compression ratio.
	MinRatio float64 `json:"min_ratio"`
	MaxRatio float64 `json:"max_ratio"`
}

// highRedundancy is the redundancy above which arithmetic coding is ranked first.
const highRedundancy = 0.5

// Recommendations ranks codecs for a detected file, best first.
func Recommendations(info FileInfo) []Recommendation {
	var recs []Recommendation

	switch {
	case info.Category == CategoryText || info.IsText:
		recs = []Recommendation{
			{format.AlgorithmHuffman, 1, "Optimal for text data with character frequency patterns", 0.4, 0.6},
			{format.AlgorithmArithmetic, 2, "Good for text with repetitive patterns", 0.5, 0.7},
			{format.AlgorithmLZW, 3, "Captures repeated words and phrases", 0.4, 0.8},
		}
	case info.Category == CategoryImage:
		recs = []Recommendation{
			{format.AlgorithmArithmetic, 1, "Excellent for image data with patterns", 0.3, 0.8},
			{format.AlgorithmHuffman, 2, "Good for images with color patterns", 0.4, 0.7},
		}
	case info.Redundancy > highRedundancy:
		recs = []Recommendation{
			{format.AlgorithmArithmetic, 1, "Arithmetic coding excels with high redundancy", 0.2, 0.5},
			{format.AlgorithmHuffman, 2, "Huffman coding good for high redundancy data", 0.3, 0.6},
			{format.AlgorithmLZW, 3, "Dictionary coding benefits from long repeats", 0.2, 0.7},
		}
	default:
		recs = []Recommendation{
			{format.AlgorithmHuffman, 1, "General purpose compression", 0.6, 0.9},
			{format.AlgorithmArithmetic, 2, "Theoretical optimal compression", 0.7, 0.9},
		}
	}

	sort.SliceStable(recs, func(i, j int) bool { return recs[i].Priority < recs[j].Priority })

	return recs
}
