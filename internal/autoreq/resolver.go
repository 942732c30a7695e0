// Package autoreq discovers the runtime requirements of packaged binaries.
package autoreq

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/ralt/rpmgen/internal/models"
	"github.com/ralt/rpmgen/internal/scanner"
	"github.com/sirupsen/logrus"
)

// Shell is the requirement added for scriptlets unless require-sh is false.
const Shell = "/bin/sh"

// LibraryInspector lists the sonames an ELF file needs.
type LibraryInspector interface {
	Inspect(path string) ([]string, error)
}

// Resolver runs a discovery strategy over a set of binaries.
type Resolver struct {
	Inspector LibraryInspector
	// Executable reports whether a delegate program can be run.
	Executable func(path string) bool
	// Exists reports whether a script interpreter exists on this host.
	Exists func(path string) bool
}

// NewResolver creates a resolver backed by inspector and the local
// filesystem.
func NewResolver(inspector LibraryInspector) *Resolver {
	return &Resolver{
		Inspector:  inspector,
		Executable: isExecutableFile,
		Exists: func(path string) bool {
			_, err := os.Stat(path)
			return err == nil
		},
	}
}

func isExecutableFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular() && info.Mode().Perm()&0o111 != 0
}

// Effective turns Auto into a concrete mode. A non-auto mode on the command
// line wins; otherwise the metadata's auto-req value decides, and a
// remaining Auto picks find-requires when it is installed, else Builtin.
func (r *Resolver) Effective(cli Mode, metadata string) (Mode, error) {
	if cli.Kind != ModeAuto {
		return cli, nil
	}

	mode, err := ParseMode(metadata)
	if err != nil {
		return Mode{}, err
	}
	if mode.Kind != ModeAuto {
		return mode, nil
	}

	if r.Executable(FindRequires) {
		return External(FindRequires), nil
	}
	return Builtin, nil
}

// Resolve discovers requirements of binaries with mode. The result is
// deduplicated and sorted.
func (r *Resolver) Resolve(ctx context.Context, mode Mode, binaries []string) ([]models.Dependency, error) {
	logrus.Debugf("Resolving requirements of %d binaries with %s", len(binaries), mode)

	var (
		found []models.Dependency
		err   error
	)
	switch mode.Kind {
	case ModeDisabled:
		return nil, nil
	case ModeBuiltin:
		found = r.builtin(binaries)
	case ModeExternal:
		found, err = r.external(ctx, mode.Program, binaries)
	default:
		return nil, models.ConfigError("auto-req", fmt.Errorf("%w: %s must be resolved first", models.ErrInvalidAutoReqMode, mode))
	}
	if err != nil {
		return nil, err
	}
	return normalize(found), nil
}

func (r *Resolver) builtin(binaries []string) []models.Dependency {
	var found []models.Dependency
	for _, path := range binaries {
		typ, err := scanner.DetectFileType(path)
		if err != nil {
			logrus.Warnf("Skipping %s: %v", path, err)
			continue
		}

		switch typ {
		case scanner.TypeELF:
			libs, err := r.Inspector.Inspect(path)
			if err != nil {
				logrus.Warnf("Skipping %s: %v", path, err)
				continue
			}
			for _, lib := range libs {
				found = append(found, models.Any(lib))
			}
		case scanner.TypeScript:
			interp, err := scanner.Interpreter(path)
			if err != nil {
				logrus.Debugf("Skipping %s: %v", path, err)
				continue
			}
			if r.Exists(interp) {
				found = append(found, models.Any(interp))
			}
		default:
			logrus.Debugf("Skipping %s: not an ELF file or script", path)
		}
	}
	return found
}

func (r *Resolver) external(ctx context.Context, program string, binaries []string) ([]models.Dependency, error) {
	var found []models.Dependency
	for _, path := range binaries {
		logrus.Debugf("Running %s for %s", program, path)

		cmd := exec.CommandContext(ctx, program)
		cmd.Stdin = strings.NewReader(path + "\n")
		var stderr bytes.Buffer
		cmd.Stderr = &stderr

		out, err := cmd.Output()
		if err != nil {
			var exitErr *exec.ExitError
			if errors.As(err, &exitErr) {
				return nil, models.DependencyError(program, fmt.Errorf("%w: %s exited with %d: %s",
					models.ErrDelegateFailed, path, exitErr.ExitCode(), strings.TrimSpace(stderr.String())))
			}
			return nil, models.DependencyError(program, fmt.Errorf("%w: %v", models.ErrDelegateFailed, err))
		}

		deps, err := parseOutput(out)
		if err != nil {
			return nil, models.DependencyError(program, err)
		}
		found = append(found, deps...)
	}
	return found, nil
}

// parseOutput reads one requirement per non-empty line.
func parseOutput(out []byte) ([]models.Dependency, error) {
	if !utf8.Valid(out) {
		return nil, fmt.Errorf("%w: output is not valid UTF-8", models.ErrUnreadableOutput)
	}

	var deps []models.Dependency
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		dep, err := models.ParseDependency(line)
		if err != nil {
			dep = models.Any(line)
		}
		deps = append(deps, dep)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrUnreadableOutput, err)
	}
	return deps, nil
}

func normalize(deps []models.Dependency) []models.Dependency {
	seen := make(map[models.Dependency]bool, len(deps))
	out := make([]models.Dependency, 0, len(deps))
	for _, d := range deps {
		if !seen[d] {
			seen[d] = true
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].String() < out[j].String()
	})
	return out
}

// WithShell appends /bin/sh unless requireSh is false or it is present.
func WithShell(reqs []models.Dependency, requireSh bool) []models.Dependency {
	if !requireSh {
		return reqs
	}
	for _, r := range reqs {
		if r.Name == Shell && r.Op == models.OpAny {
			return reqs
		}
	}
	return append(reqs, models.Any(Shell))
}

// Binaries returns the sources of assets flagged executable.
func Binaries(assets []models.ResolvedAsset) []string {
	var out []string
	for _, a := range assets {
		if a.Executable {
			out = append(out, a.Source)
		}
	}
	return out
}
