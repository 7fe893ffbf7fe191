package pool

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewByteBuffer(t *testing.T) {
	bb := NewByteBuffer(1024)

	require.NotNil(t, bb)
	assert.Equal(t, 0, bb.Len(), "new buffer should have zero length")
	assert.Equal(t, 1024, cap(bb.B), "new buffer should have specified capacity")
}

func TestByteBuffer_WriteAndWriteByte(t *testing.T) {
	bb := NewByteBuffer(4)

	n, err := bb.Write([]byte("abc"))
	require.NoError(t, err)
	require.Equal(t, 3, n)
	require.NoError(t, bb.WriteByte('d'))
	require.NoError(t, bb.WriteByte('e'))

	assert.Equal(t, []byte("abcde"), bb.Bytes())
	assert.Equal(t, 5, bb.Len())
}

func TestByteBuffer_Clone(t *testing.T) {
	bb := NewByteBuffer(16)
	require.Nil(t, bb.Clone(), "empty buffer clones to nil")

	_, _ = bb.Write([]byte("payload"))
	clone := bb.Clone()
	bb.Reset()
	_, _ = bb.Write([]byte("XXXXXXX"))

	assert.Equal(t, []byte("payload"), clone, "clone must not alias the buffer")
}

func TestByteBuffer_Reset(t *testing.T) {
	bb := NewByteBuffer(CodecBufferDefaultSize)
	_, _ = bb.Write([]byte("some data"))
	originalCap := cap(bb.B)

	bb.Reset()

	assert.Equal(t, 0, bb.Len(), "Reset should clear the buffer length")
	assert.Equal(t, originalCap, cap(bb.B), "Reset should preserve capacity")
}

func TestGetPut_CodecBuffer(t *testing.T) {
	bb := GetCodecBuffer()
	require.NotNil(t, bb)
	_, _ = bb.Write([]byte("data"))
	PutCodecBuffer(bb)

	again := GetCodecBuffer()
	require.NotNil(t, again)
	assert.Equal(t, 0, again.Len(), "pooled buffers come back empty")
	PutCodecBuffer(again)

	require.NotPanics(t, func() { PutCodecBuffer(nil) })
}

func TestByteBufferPool_MaxThreshold(t *testing.T) {
	p := NewByteBufferPool(8, 64)

	small := p.Get()
	_, _ = small.Write(make([]byte, 32))
	p.Put(small)

	large := p.Get()
	_, _ = large.Write(make([]byte, 256))
	require.Greater(t, cap(large.B), 64)
	p.Put(large)

	got := p.Get()
	assert.LessOrEqual(t, cap(got.B), 64, "oversized buffers must not be retained")
}

func TestByteBufferPool_ConcurrentAccess(t *testing.T) {
	p := NewByteBufferPool(16, 0)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				bb := p.Get()
				_ = bb.WriteByte(byte(i))
				p.Put(bb)
			}
		}(i)
	}
	wg.Wait()
}
