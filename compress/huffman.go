package compress

import (
	"bytes"
	"container/heap"
	"fmt"

	"github.com/icza/bitio"

	"github.com/arloliu/squash/errs"
	"github.com/arloliu/squash/format"
	"github.com/arloliu/squash/internal/pool"
)

// HuffmanCodec implements static Huffman coding over single bytes.
//
// A frequency table is built over the whole input, a Huffman tree is derived from it
// and discarded once the code table is extracted. The code table travels in
// HuffmanMetadata, so the decoder never rebuilds the tree from frequencies.
//
// Characteristics:
//   - Best for: text and skewed byte distributions
//   - Worst case: uniformly random data (about 8 bits per symbol plus padding)
//   - Single-symbol inputs use the one-bit code "0"
type HuffmanCodec struct{}

var _ Codec = (*HuffmanCodec)(nil)

// NewHuffmanCodec creates a new Huffman codec.
//
// Returns:
//   - HuffmanCodec: New Huffman codec instance
func NewHuffmanCodec() HuffmanCodec {
	return HuffmanCodec{}
}

// Algorithm returns format.AlgorithmHuffman.
func (c HuffmanCodec) Algorithm() format.Algorithm {
	return format.AlgorithmHuffman
}

// Compress compresses the input data using static Huffman coding.
//
// Codes are concatenated in input order, most significant bit first, and the
// final byte is padded with zero bits. The unpadded bit count is recorded in
// HuffmanMetadata.OriginalLength.
//
// Parameters:
//   - data: Input data to compress
//
// Returns:
//   - []byte: Compressed data (nil if input is empty)
//   - Metadata: *HuffmanMetadata with the code table
//   - error: Bit writer error if any
func (c HuffmanCodec) Compress(data []byte) ([]byte, Metadata, error) {
	if len(data) == 0 {
		return nil, &HuffmanMetadata{Codes: map[byte]string{}}, nil
	}

	freqs := countFrequencies(data)
	root := buildHuffmanTree(freqs)
	codes := huffmanCodes(root)

	packed := make([]packedCode, 256)
	for sym, code := range codes {
		packed[sym] = packCode(code)
	}

	buf := pool.GetCodecBuffer()
	defer pool.PutCodecBuffer(buf)

	w := bitio.NewWriter(buf)
	bitLength := 0
	for _, b := range data {
		for _, chunk := range packed[b] {
			if err := w.WriteBits(chunk.bits, chunk.n); err != nil {
				return nil, nil, fmt.Errorf("huffman: write code: %w", err)
			}
		}
		bitLength += len(codes[b])
	}
	if err := w.Close(); err != nil {
		return nil, nil, fmt.Errorf("huffman: flush bits: %w", err)
	}

	meta := &HuffmanMetadata{
		Codes:          codes,
		OriginalLength: bitLength,
		Padding:        (8 - bitLength%8) % 8,
	}

	return buf.Clone(), meta, nil
}

// Decompress decompresses Huffman-coded data.
//
// Exactly OriginalLength bits are consumed; the padding is discarded. The code table
// is turned into a decoding trie, which also proves it is prefix-free, and bits are
// matched greedily: the first complete code is final.
//
// Parameters:
//   - data: Compressed data
//   - meta: *HuffmanMetadata produced by Compress
//
// Returns:
//   - []byte: Decompressed data (nil if the stream is empty)
//   - error: errs.ErrCorruptMetadata or errs.ErrAlgorithmMismatch
func (c HuffmanCodec) Decompress(data []byte, meta Metadata) ([]byte, error) {
	if err := checkMetadata(format.AlgorithmHuffman, meta); err != nil {
		return nil, err
	}
	m, _ := meta.(*HuffmanMetadata)

	if len(data) == 0 {
		if m.OriginalLength != 0 {
			return nil, fmt.Errorf("%w: empty stream with original_length %d", errs.ErrCorruptMetadata, m.OriginalLength)
		}

		return nil, nil
	}

	available := len(data) * 8
	if m.OriginalLength > available || m.OriginalLength <= available-8 {
		return nil, fmt.Errorf("%w: original_length %d does not fit a %d-byte stream",
			errs.ErrCorruptMetadata, m.OriginalLength, len(data))
	}

	root, err := buildDecodeTrie(m.Codes)
	if err != nil {
		return nil, err
	}

	r := bitio.NewReader(bytes.NewReader(data))
	out := make([]byte, 0, m.OriginalLength/2+1)
	node := root
	for i := 0; i < m.OriginalLength; i++ {
		bit, err := r.ReadBool()
		if err != nil {
			return nil, fmt.Errorf("%w: stream ended at bit %d: %v", errs.ErrCorruptMetadata, i, err)
		}
		if bit {
			node = node.right
		} else {
			node = node.left
		}
		if node == nil {
			return nil, fmt.Errorf("%w: bit sequence at bit %d matches no code", errs.ErrCorruptMetadata, i)
		}
		if node.leaf {
			out = append(out, node.symbol)
			node = root
		}
	}
	if node != root {
		return nil, fmt.Errorf("%w: stream ends inside a code", errs.ErrCorruptMetadata)
	}

	return out, nil
}

// huffmanNode is a node of the Huffman tree built by one Compress call.
type huffmanNode struct {
	symbol byte
	weight int
	leaf   bool
	left   *huffmanNode
	right  *huffmanNode
	seq    int // insertion order, keeps heap ordering deterministic
}

// nodeQueue is a min-priority queue of tree nodes ordered by weight.
type nodeQueue []*huffmanNode

func (q nodeQueue) Len() int { return len(q) }

func (q nodeQueue) Less(i, j int) bool {
	if q[i].weight != q[j].weight {
		return q[i].weight < q[j].weight
	}

	return q[i].seq < q[j].seq
}

func (q nodeQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *nodeQueue) Push(x any) { *q = append(*q, x.(*huffmanNode)) }

func (q *nodeQueue) Pop() any {
	old := *q
	n := len(old)
	node := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]

	return node
}

// countFrequencies builds the order-0 histogram of data.
func countFrequencies(data []byte) [256]int {
	var freqs [256]int
	for _, b := range data {
		freqs[b]++
	}

	return freqs
}

// buildHuffmanTree merges the two lightest nodes until one remains.
// A single distinct symbol yields a single leaf.
func buildHuffmanTree(freqs [256]int) *huffmanNode {
	q := make(nodeQueue, 0, 256)
	seq := 0
	for sym, freq := range freqs {
		if freq == 0 {
			continue
		}
		q = append(q, &huffmanNode{symbol: byte(sym), weight: freq, leaf: true, seq: seq})
		seq++
	}
	if len(q) == 1 {
		return q[0]
	}

	heap.Init(&q)
	for q.Len() > 1 {
		left, _ := heap.Pop(&q).(*huffmanNode)
		right, _ := heap.Pop(&q).(*huffmanNode)
		heap.Push(&q, &huffmanNode{
			weight: left.weight + right.weight,
			left:   left,
			right:  right,
			seq:    seq,
		})
		seq++
	}

	return q[0]
}

// huffmanCodes derives the code table by depth-first traversal,
// appending '0' on left edges and '1' on right edges.
func huffmanCodes(root *huffmanNode) map[byte]string {
	codes := make(map[byte]string)
	if root.leaf {
		codes[root.symbol] = "0"
		return codes
	}

	var walk func(n *huffmanNode, prefix []byte)
	walk = func(n *huffmanNode, prefix []byte) {
		if n.leaf {
			codes[n.symbol] = string(prefix)
			return
		}
		walk(n.left, append(prefix, '0'))
		walk(n.right, append(prefix, '1'))
	}
	walk(root, make([]byte, 0, 32))

	return codes
}

// packedCode is a code string split into chunks of at most 64 bits.
type packedCode []struct {
	bits uint64
	n    uint8
}

func packCode(code string) packedCode {
	var packed packedCode
	for start := 0; start < len(code); start += 64 {
		end := min(start+64, len(code))
		var bits uint64
		for i := start; i < end; i++ {
			bits <<= 1
			if code[i] == '1' {
				bits |= 1
			}
		}
		packed = append(packed, struct {
			bits uint64
			n    uint8
		}{bits: bits, n: uint8(end - start)}) //nolint: gosec
	}

	return packed
}

// trieNode is a node of the decoding trie built from a code table.
type trieNode struct {
	left, right *trieNode
	symbol      byte
	leaf        bool
}

// buildDecodeTrie inserts every code into a binary trie.
// It fails if one code is a prefix of another.
func buildDecodeTrie(codes map[byte]string) (*trieNode, error) {
	root := &trieNode{}
	for _, sym := range sortedSymbols(codes) {
		code := codes[sym]
		node := root
		for i := 0; i < len(code); i++ {
			if node.leaf {
				return nil, fmt.Errorf("%w: code table is not prefix-free at symbol %d", errs.ErrCorruptMetadata, sym)
			}
			next := &node.left
			if code[i] == '1' {
				next = &node.right
			}
			if *next == nil {
				*next = &trieNode{}
			}
			node = *next
		}
		if node.leaf || node.left != nil || node.right != nil {
			return nil, fmt.Errorf("%w: code table is not prefix-free at symbol %d", errs.ErrCorruptMetadata, sym)
		}
		node.leaf = true
		node.symbol = sym
	}

	return root, nil
}
