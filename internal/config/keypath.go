package config

import (
	"fmt"
	"strings"

	"github.com/ralt/rpmgen/internal/models"
)

// ParseKeyPath splits a dotted TOML key path. Only bare keys are accepted.
func ParseKeyPath(s string) ([]string, error) {
	if s == "" {
		return nil, nil
	}

	parts := strings.Split(s, ".")
	for _, part := range parts {
		if part == "" {
			return nil, models.ConfigError(s, fmt.Errorf("%w: empty key", models.ErrUnsupportedPathSyntax))
		}
		if strings.ContainsAny(part, `"'`) {
			return nil, models.ConfigError(s, fmt.Errorf("%w: quoted keys are not supported", models.ErrUnsupportedPathSyntax))
		}
		for _, r := range part {
			if !isBareKeyRune(r) {
				return nil, models.ConfigError(s, fmt.Errorf("%w: invalid character %q", models.ErrUnsupportedPathSyntax, r))
			}
		}
	}
	return parts, nil
}

func isBareKeyRune(r rune) bool {
	return r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '_' || r == '-'
}

// lookupTable walks path from root and returns the table found there.
func lookupTable(root map[string]any, path []string) (map[string]any, error) {
	table := root
	for i, key := range path {
		next, ok := table[key].(map[string]any)
		if !ok {
			return nil, models.ConfigError(strings.Join(path[:i+1], "."), models.ErrBranchNotFound)
		}
		table = next
	}
	return table, nil
}
