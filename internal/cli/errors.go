package cli

import "github.com/ralt/rpmgen/internal/models"

// Exit codes by error category
const (
	ExitOK         = 0
	ExitFailure    = 1
	ExitConfig     = 2
	ExitAsset      = 3
	ExitDependency = 4
)

// ExitCode maps err to the process exit status.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	typ, ok := models.TypeOf(err)
	if !ok {
		return ExitFailure
	}
	switch typ {
	case models.ErrConfig:
		return ExitConfig
	case models.ErrAsset:
		return ExitAsset
	case models.ErrDependency:
		return ExitDependency
	default:
		return ExitFailure
	}
}
