package analysis

import "math"

// Entropy returns the Shannon entropy of data in bits per byte, between 0 and 8.
func Entropy(data []byte) float64 {
	if len(data) == 0 {
		return 0
	}

	var counts [256]int
	for _, b := range data {
		counts[b]++
	}

	n := float64(len(data))
	entropy := 0.0
	for _, c := range counts {
		if c == 0 {
			continue
		}
		p := float64(c) / n
		entropy -= p * math.Log2(p)
	}

	return entropy
}

// Redundancy returns 1 - entropy/8, the fraction of each byte an ideal order-0 coder removes.
func Redundancy(data []byte) float64 {
	return 1 - Entropy(data)/8
}

// IsText reports whether data looks like text: no NUL byte and more than 70% printable
// ASCII, counting tab, line feed and carriage return as printable. Empty data is text.
func IsText(data []byte) bool {
	if len(data) == 0 {
		return true
	}

	printable := 0
	for _, b := range data {
		switch {
		case b == 0:
			return false
		case b >= 32 && b <= 126, b == '\t', b == '\n', b == '\r':
			printable++
		}
	}

	return float64(printable)/float64(len(data)) > 0.7
}
