package config

import (
	"errors"
	"testing"

	"github.com/ralt/rpmgen/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKeyPath(t *testing.T) {
	path, err := ParseKeyPath("package.metadata.generate-rpm.variants.el_9")
	require.NoError(t, err)
	assert.Equal(t, []string{"package", "metadata", "generate-rpm", "variants", "el_9"}, path)

	path, err = ParseKeyPath("")
	require.NoError(t, err)
	assert.Empty(t, path)
}

func TestParseKeyPathRejects(t *testing.T) {
	for _, bad := range []string{
		`package."metadata"`,
		`'a'.b`,
		"a..b",
		".a",
		"a.",
		"a b",
		"a.b$",
	} {
		_, err := ParseKeyPath(bad)
		assert.Truef(t, errors.Is(err, models.ErrUnsupportedPathSyntax), "%q: %v", bad, err)
	}
}

func TestLookupTable(t *testing.T) {
	root := map[string]any{
		"a": map[string]any{
			"b": map[string]any{"c": "value"},
			"s": "scalar",
		},
	}

	table, err := lookupTable(root, []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, "value", table["c"])

	_, err = lookupTable(root, []string{"a", "s"})
	assert.True(t, errors.Is(err, models.ErrBranchNotFound))

	_, err = lookupTable(root, []string{"x"})
	assert.True(t, errors.Is(err, models.ErrBranchNotFound))
}
