package autoreq

import (
	"fmt"
	"os"
	"strings"

	"github.com/ralt/rpmgen/internal/models"
)

// FindRequires is the rpm-provided delegate program.
const FindRequires = "/usr/lib/rpm/find-requires"

// ModeKind is the requirement discovery strategy.
type ModeKind int

const (
	ModeAuto ModeKind = iota
	ModeDisabled
	ModeBuiltin
	ModeExternal
)

// Mode is a strategy plus, for ModeExternal, the delegate program.
type Mode struct {
	Kind    ModeKind
	Program string
}

// Auto, Disabled and Builtin are the program-less modes.
var (
	Auto     = Mode{Kind: ModeAuto}
	Disabled = Mode{Kind: ModeDisabled}
	Builtin  = Mode{Kind: ModeBuiltin}
)

// External returns the delegate mode running program.
func External(program string) Mode {
	return Mode{Kind: ModeExternal, Program: program}
}

func (m Mode) String() string {
	switch m.Kind {
	case ModeAuto:
		return "auto"
	case ModeDisabled:
		return "disabled"
	case ModeBuiltin:
		return "builtin"
	case ModeExternal:
		return "external(" + m.Program + ")"
	default:
		return "unknown"
	}
}

// ParseMode parses an --auto-req or auto-req metadata value. A program
// path must exist.
func ParseMode(s string) (Mode, error) {
	switch strings.TrimSpace(s) {
	case "", "auto":
		return Auto, nil
	case "disabled", "no":
		return Disabled, nil
	case "builtin":
		return Builtin, nil
	case "find-requires":
		return External(FindRequires), nil
	}
	if strings.Contains(s, "/") {
		if _, err := os.Stat(s); err != nil {
			return Mode{}, models.ConfigError("auto-req", fmt.Errorf("%w: %v", models.ErrInvalidAutoReqMode, err))
		}
		return External(s), nil
	}
	return Mode{}, models.ConfigError("auto-req", fmt.Errorf("%w: %q", models.ErrInvalidAutoReqMode, s))
}
