package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDest(t *testing.T) {
	for in, want := range map[string]string{
		"/usr/bin/app":   "/usr/bin/app",
		"./usr/bin/app":  "/usr/bin/app",
		"./etc/app/":     "/etc/app/",
		".//opt/app/bin": "/opt/app/bin",
	} {
		got, err := NormalizeDest(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, in := range []string{"usr/bin/app", "../usr/bin/app", ".usr/bin/app", ""} {
		_, err := NormalizeDest(in)
		assert.True(t, errors.Is(err, ErrInvalidDestination), "%q: %v", in, err)
	}
}
