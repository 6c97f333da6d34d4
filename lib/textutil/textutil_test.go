package textutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

var munis = []string{
	"City of Kenosha",
	"Town of Somers",
	"Village of Pleasant Prairie",
	"Village of Twin Lakes",
}

func TestResolveNameExact(t *testing.T) {
	name, similarity, ok := ResolveName("city of  KENOSHA", munis, 0.9)
	require.True(t, ok)
	require.Equal(t, "City of Kenosha", name)
	require.Equal(t, 1.0, similarity)
}

func TestResolveNameFuzzy(t *testing.T) {
	name, _, ok := ResolveName("Village of Pleasant Prarie", munis, 0.9)
	require.True(t, ok)
	require.Equal(t, "Village of Pleasant Prairie", name)
}

func TestResolveNameNoMatch(t *testing.T) {
	_, _, ok := ResolveName("Racine", munis, 0.9)
	require.False(t, ok)

	_, _, ok = ResolveName("City of Kenosha", nil, 0.9)
	require.False(t, ok)
}
