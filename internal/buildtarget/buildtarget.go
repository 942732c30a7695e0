// Package buildtarget computes the BuildContext of a run from command line
// options and the build environment.
package buildtarget

import (
	"fmt"
	"os"
	"strconv"

	"github.com/ralt/rpmgen/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

const (
	keyTarget     = "target"
	keyTargetDir  = "target_dir"
	keySourceDate = "source_date"
)

// Options are the explicitly given values. Empty means unset.
type Options struct {
	WorkDir    string
	TargetDir  string
	Target     string
	Profile    string
	Package    string
	Arch       string
	SourceDate string
}

// NewEnv returns a viper instance bound to the environment variables the
// build context honors.
func NewEnv() *viper.Viper {
	v := viper.New()
	_ = v.BindEnv(keyTarget, "CARGO_BUILD_TARGET")
	_ = v.BindEnv(keyTargetDir, "CARGO_BUILD_TARGET_DIR", "CARGO_TARGET_DIR")
	_ = v.BindEnv(keySourceDate, "SOURCE_DATE_EPOCH")
	v.SetDefault(keyTargetDir, "target")
	return v
}

// NewContext builds the context. Explicit options win over env.
func NewContext(opts Options, env *viper.Viper) (models.BuildContext, error) {
	if env == nil {
		env = NewEnv()
	}

	workDir := opts.WorkDir
	if workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return models.BuildContext{}, &models.Error{
				Type: models.ErrFileOp,
				Err:  fmt.Errorf("failed to get working directory: %w", err),
			}
		}
		workDir = wd
	}

	ctx := models.BuildContext{
		WorkDir:    workDir,
		TargetDir:  firstNonEmpty(opts.TargetDir, env.GetString(keyTargetDir)),
		Target:     firstNonEmpty(opts.Target, env.GetString(keyTarget)),
		Profile:    firstNonEmpty(opts.Profile, "release"),
		PackageDir: opts.Package,
		Arch:       opts.Arch,
	}

	if raw := firstNonEmpty(opts.SourceDate, env.GetString(keySourceDate)); raw != "" {
		date, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return models.BuildContext{}, models.ConfigError("source-date",
				fmt.Errorf("%w: %q", models.ErrInvalidSourceDate, raw))
		}
		d := uint32(date)
		ctx.SourceDate = &d
	}

	logrus.Debugf("Build context: target-dir=%s target=%q profile=%s package=%q arch=%s",
		ctx.TargetDir, ctx.Target, ctx.Profile, ctx.PackageDir, ctx.PackageArch())
	return ctx, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
