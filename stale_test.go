package abuild

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"shanhu.io/misc/errcode"
)

func TestCanonicalArgs_distinct(t *testing.T) {
	list := []Args{
		nil,
		{"1"},
		{1},
		{uint(1)},
		{1.0},
		{true},
		{false},
		{[]byte("1")},
		{[]string{"1"}},
		{Args{"1"}},
		{"1", "2"},
		{"12"},
	}

	seen := make(map[string]int)
	for i, args := range list {
		k, err := canonicalArgs(args)
		require.NoError(t, err)
		if j, ok := seen[k]; ok {
			t.Errorf("args %d and %d have the same key %q", i, j, k)
		}
		seen[k] = i
	}
}

func TestCanonicalArgs_stable(t *testing.T) {
	type mode string
	k1, err := canonicalArgs(Args{"a", int32(3), mode("x")})
	require.NoError(t, err)
	k2, err := canonicalArgs(Args{"a", int64(3), "x"})
	require.NoError(t, err)
	assert.Equal(t, k1, k2)
}

func TestCanonicalArgs_rejects(t *testing.T) {
	for _, args := range []Args{
		{map[string]int{}},
		{struct{}{}},
		{[]int{1}},
		{Args{func() {}}},
	} {
		_, err := canonicalArgs(args)
		assert.Error(t, err, "%v", args)
	}
}

func TestLatestModTime(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a")
	b := filepath.Join(dir, "b")
	for _, f := range []string{a, b} {
		require.NoError(t, os.WriteFile(f, nil, 0644))
	}
	require.NoError(t, os.Chtimes(a, time.Unix(100, 0), time.Unix(100, 0)))
	require.NoError(t, os.Chtimes(b, time.Unix(200, 0), time.Unix(200, 0)))

	got, err := latestModTime([]string{a, b})
	require.NoError(t, err)
	assert.Equal(t, time.Unix(200, 0).UnixNano(), got)

	got, err = latestModTime(nil)
	require.NoError(t, err)
	assert.Equal(t, noModTime, got)

	_, err = latestModTime([]string{filepath.Join(dir, "c")})
	assert.True(t, errcode.IsNotFound(err))
}
