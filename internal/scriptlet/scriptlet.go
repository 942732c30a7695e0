// Package scriptlet loads lifecycle script bodies and checks their syntax.
package scriptlet

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ralt/rpmgen/internal/assets"
	"github.com/ralt/rpmgen/internal/models"
	"github.com/sirupsen/logrus"
	"mvdan.cc/sh/v3/syntax"
)

// Load returns scripts with every body that names a file replaced by the
// file's content, and checks shell syntax.
func Load(scripts map[models.ScriptSlot]models.Scriptlet, build models.BuildContext, packageDir string) (map[models.ScriptSlot]models.Scriptlet, error) {
	if len(scripts) == 0 {
		return nil, nil
	}

	loaded := make(map[models.ScriptSlot]models.Scriptlet, len(scripts))
	for _, slot := range models.ScriptSlots {
		script, ok := scripts[slot]
		if !ok {
			continue
		}
		body, err := Body(script.Body, build, packageDir)
		if err != nil {
			return nil, err
		}
		script.Body = body
		if err := Validate(slot, script); err != nil {
			return nil, err
		}
		loaded[slot] = script
	}
	return loaded, nil
}

// Body reads body as a file when it names one relative to the working
// directory or the package directory; otherwise body is the script itself.
func Body(body string, build models.BuildContext, packageDir string) (string, error) {
	if body == "" || strings.ContainsAny(body, "\n\r") {
		return body, nil
	}

	for _, candidate := range assets.Candidates(body, build, packageDir) {
		info, err := os.Stat(candidate)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		data, err := os.ReadFile(candidate)
		if err != nil {
			return "", &models.Error{
				Type:    models.ErrFileOp,
				Subject: candidate,
				Err:     fmt.Errorf("failed to read script: %w", err),
			}
		}
		logrus.Debugf("Loaded script from %s", candidate)
		return string(data), nil
	}
	return body, nil
}

// Validate parses shell-interpreted scripts. Scripts with macro expansion
// enabled or a non-shell interpreter are not checked.
func Validate(slot models.ScriptSlot, script models.Scriptlet) error {
	if script.Flags&models.ScriptExpand != 0 {
		return nil
	}
	lang, ok := shellVariant(script.Prog)
	if !ok {
		return nil
	}

	name := slot.Key() + "_script"
	_, err := syntax.NewParser(syntax.Variant(lang)).Parse(strings.NewReader(script.Body), name)
	if err != nil {
		return models.ConfigError(name, fmt.Errorf("%w: %v", models.ErrInvalidScriptlet, err))
	}
	return nil
}

func shellVariant(prog []string) (syntax.LangVariant, bool) {
	// no prog runs under /bin/sh
	if len(prog) == 0 {
		return syntax.LangPOSIX, true
	}
	switch filepath.Base(prog[0]) {
	case "bash":
		return syntax.LangBash, true
	case "sh", "dash", "ash":
		return syntax.LangPOSIX, true
	case "mksh":
		return syntax.LangMirBSDKorn, true
	}
	return 0, false
}
