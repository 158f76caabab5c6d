package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVarintRoundTrip(t *testing.T) {
	nums := []uint32{
		0, 1, 127, 128, 129, 255, 256,
		16383, 16384, 16385,
		2097151, 2097152,
		268435455, 268435456,
		0x7fffffff, 0xffffffff,
	}
	for _, n := range nums {
		buf := AppendVarint(nil, n)
		got, consumed, ok := ReadVarint(buf)
		assert.True(t, ok, "n=%d", n)
		assert.Equal(t, len(buf), consumed, "n=%d", n)
		assert.Equal(t, n, got, "n=%d", n)
		assert.LessOrEqual(t, len(buf), MaxVarintLen)
	}
}

func TestVarintMinimalEncoding(t *testing.T) {
	// The minimal encoding of 0 is a single zero byte, not an empty slice
	// or a padded form.
	assert.Equal(t, []byte{0x00}, AppendVarint(nil, 0))
	assert.Equal(t, []byte{0x02}, AppendVarint(nil, 2))
	assert.Equal(t, []byte{0x81, 0x00}, AppendVarint(nil, 128))
}

func TestVarintAppendsToExistingBuffer(t *testing.T) {
	buf := []byte{0xAA}
	buf = AppendVarint(buf, 300)
	assert.Equal(t, byte(0xAA), buf[0])
	n, consumed, ok := ReadVarint(buf[1:])
	assert.True(t, ok)
	assert.Equal(t, uint32(300), n)
	assert.Equal(t, len(buf)-1, consumed)
}

func TestVarintEmptyBufferIsNotOk(t *testing.T) {
	_, _, ok := ReadVarint(nil)
	assert.False(t, ok)
}

func TestVarintOversizedIsAnError(t *testing.T) {
	// Five bytes, every one with the continuation bit set: never
	// terminates within MaxVarintLen.
	buf := []byte{0xff, 0xff, 0xff, 0xff, 0xff}
	_, _, ok := ReadVarint(buf)
	assert.False(t, ok)
}

func TestVarintExactlyFiveBytesTerminating(t *testing.T) {
	buf := []byte{0x8f, 0xff, 0xff, 0xff, 0x7f}
	n, consumed, ok := ReadVarint(buf)
	assert.True(t, ok)
	assert.Equal(t, 5, consumed)
	assert.NotZero(t, n)
}
