package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDependencyRoundTrip(t *testing.T) {
	for _, dep := range []Dependency{
		Any("foo"),
		{Name: "foo", Op: OpLess, Version: "1.0"},
		{Name: "foo", Op: OpLessEqual, Version: "1.0"},
		{Name: "foo", Op: OpEqual, Version: "1.0"},
		{Name: "foo", Op: OpGreater, Version: "1.0"},
		{Name: "foo", Op: OpGreaterEqual, Version: "1:2.3-4"},
	} {
		t.Run(dep.String(), func(t *testing.T) {
			parsed, err := ParseDependency(dep.String())
			require.NoError(t, err)
			assert.Equal(t, dep, parsed)

			parsed, err = ParseConstraint(dep.Name, dep.Constraint())
			require.NoError(t, err)
			assert.Equal(t, dep, parsed)
		})
	}
}

func TestParseConstraint(t *testing.T) {
	dep, err := ParseConstraint("bar", "= 1.0")
	require.NoError(t, err)
	assert.Equal(t, Dependency{Name: "bar", Op: OpEqual, Version: "1.0"}, dep)

	dep, err = ParseConstraint("bar", "*")
	require.NoError(t, err)
	assert.Equal(t, Any("bar"), dep)

	dep, err = ParseConstraint("bar", "")
	require.NoError(t, err)
	assert.Equal(t, Any("bar"), dep)

	for _, bad := range []string{"1.0", ">=1.0", "!= 1.0", "> 1 1", "~> 2"} {
		_, err := ParseConstraint("bar", bad)
		assert.Truef(t, errors.Is(err, ErrInvalidVersionConstraint), "%q: %v", bad, err)
	}
}

func TestDependencyRendering(t *testing.T) {
	dep := Dependency{Name: "libfoo", Op: OpGreaterEqual, Version: "2.0"}
	assert.Equal(t, "libfoo >= 2.0", dep.String())
	assert.Equal(t, ">= 2.0", dep.Constraint())
	assert.Equal(t, "*", Any("libfoo").Constraint())
	assert.Equal(t, uint32(0x0c), dep.Sense())
	assert.Equal(t, uint32(0), Any("libfoo").Sense())
}
