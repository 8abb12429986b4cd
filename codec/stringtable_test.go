package codec

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringTable_AddIsIdempotent(t *testing.T) {
	st := NewStringTable()

	first, err := st.Add("build")
	require.NoError(t, err)

	second, err := st.Add("build")
	require.NoError(t, err)

	assert.Equal(t, first, second, "adding the same string twice must return the same index")
	assert.Equal(t, uint32(2), st.Count())
}

func TestStringTable_EmptyStringIsIndexZero(t *testing.T) {
	st := NewStringTable()

	idx, err := st.Add("")
	require.NoError(t, err)
	assert.Equal(t, uint32(0), idx)

	s, err := st.Get(0)
	require.NoError(t, err)
	assert.Equal(t, "", s)

	// The empty string is never stored again.
	assert.Equal(t, uint32(1), st.Count())
}

func TestStringTable_GetRoundTrip(t *testing.T) {
	st := NewStringTable()

	for _, s := range []string{"Widget", "build", "lib/main.fern", "Widget"} {
		idx, err := st.Add(s)
		require.NoError(t, err)

		got, err := st.Get(idx)
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
}

func TestStringTable_OutOfRangeIsHardFailure(t *testing.T) {
	st := NewStringTable()

	_, err := st.Get(42)
	require.Error(t, err)

	var stErr *StringTableError
	assert.ErrorAs(t, err, &stErr)
}

func TestStringTable_OverlongStringFailsWrite(t *testing.T) {
	st := NewStringTable()

	_, err := st.Add(strings.Repeat("x", MaxStringLen+1))
	assert.Error(t, err, "strings above the format maximum must fail hard")

	// At the limit is still fine.
	_, err = st.Add(strings.Repeat("x", MaxStringLen))
	assert.NoError(t, err)
}
