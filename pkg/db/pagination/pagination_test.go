package pagination

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursorRoundTrip(t *testing.T) {
	token, err := EncodeCursor(Cursor{ID: "42", CreatedAt: "2026-01-01T00:00:00Z"})
	require.NoError(t, err)

	cursor, err := DecodeCursor(token)
	require.NoError(t, err)
	assert.Equal(t, "42", cursor.ID)
	assert.Equal(t, "2026-01-01T00:00:00Z", cursor.CreatedAt)

	_, err = DecodeCursor("%%%not-base64%%%")
	assert.Error(t, err)
}

func TestBuildCursorPageInfo(t *testing.T) {
	rows := func(n int) []*int {
		out := make([]*int, n)
		for i := range out {
			v := i
			out[i] = &v
		}
		return out
	}
	extract := func(v *int) string { return strconv.Itoa(*v) }

	info := BuildCursorPageInfo(nil, 10, extract)
	require.NotNil(t, info)
	assert.False(t, info.HasMore)
	assert.Empty(t, info.NextPageToken)

	info = BuildCursorPageInfo(rows(3), 5, extract)
	assert.False(t, info.HasMore)
	assert.Equal(t, "2", info.NextPageToken)

	info = BuildCursorPageInfo(rows(6), 5, extract)
	assert.True(t, info.HasMore)
	assert.Equal(t, "4", info.NextPageToken)
}
