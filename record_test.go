package pdz

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntValueCoercion(t *testing.T) {
	for _, v := range []any{
		uint8(7), int8(7), uint16(7), int16(7),
		uint32(7), int32(7), uint64(7), int64(7), int(7),
	} {
		n, ok := intValue(v)
		require.Truef(t, ok, "%T", v)
		assert.Equal(t, int64(7), n)
	}

	n, ok := intValue(uint64(math.MaxInt64))
	require.True(t, ok)
	assert.Equal(t, int64(math.MaxInt64), n)

	// a uint64 beyond the int64 range must not wrap negative
	_, ok = intValue(uint64(math.MaxInt64) + 1)
	assert.False(t, ok)
	_, ok = intValue(uint64(math.MaxUint64))
	assert.False(t, ok)

	_, ok = intValue("7")
	assert.False(t, ok)
}
