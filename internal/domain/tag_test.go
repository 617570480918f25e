package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeTag(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"abc123", "#ABC123"},
		{"#abc123", "#ABC123"},
		{"  #2PP  ", "#2PP"},
		{"##9l0q#", "#9L0Q"},
		{"\t8YJ2\n", "#8YJ2"},
	}
	for _, tc := range cases {
		got, err := NormalizeTag(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestNormalizeTag_Idempotent(t *testing.T) {
	for _, in := range []string{"abc", "#QWE9", " #p0l ", "##X#Y"} {
		once, err := NormalizeTag(in)
		require.NoError(t, err)
		twice, err := NormalizeTag(once)
		require.NoError(t, err)

		assert.Equal(t, once, twice)
		assert.True(t, strings.HasPrefix(once, "#"))
		assert.Equal(t, 1, strings.Count(once, "#"))
	}
}

func TestNormalizeTag_Invalid(t *testing.T) {
	for _, in := range []string{"", "   ", "#", "##", "AB CD", "AB-12", "ÄBC"} {
		_, err := NormalizeTag(in)
		assert.ErrorIs(t, err, ErrInvalidTag, in)
	}
}

func TestEscapeTag(t *testing.T) {
	got, err := EscapeTag(" #abc123")
	require.NoError(t, err)
	assert.Equal(t, "%23ABC123", got)
}

func TestBestTrophies(t *testing.T) {
	p := &PlayerSnapshot{Trophies: 4200}
	assert.Equal(t, 4200, p.BestTrophies())

	// upstream value wins even when it is lower than the current count
	p.Achievements = &Achievement{Value: 3900}
	assert.Equal(t, 3900, p.BestTrophies())
}

func TestItemIsMaxed(t *testing.T) {
	assert.True(t, Item{Level: 10, MaxLevel: 10}.IsMaxed())
	assert.False(t, Item{Level: 9, MaxLevel: 10}.IsMaxed())
	assert.True(t, EquipmentItem{Level: 27, MaxLevel: 27}.IsMaxed())
}

func TestSnapshotValidate(t *testing.T) {
	assert.NoError(t, (&PlayerSnapshot{PlayerTag: "#A", PlayerName: "a"}).Validate())
	assert.Error(t, (&PlayerSnapshot{PlayerName: "a"}).Validate())
	assert.Error(t, (&PlayerSnapshot{PlayerTag: "#A"}).Validate())
}
