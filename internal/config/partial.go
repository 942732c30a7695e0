package config

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/ralt/rpmgen/internal/models"
	"github.com/sirupsen/logrus"
)

// Partial is one layer decoded into the fixed set of recognized keys.
// A nil field means the layer does not define that key.
type Partial struct {
	Name      *string
	Version   *string
	License   *string
	Summary   *string
	URL       *string
	Vendor    *string
	Release   *string
	Epoch     *uint32
	AutoReq   *string
	RequireSh *bool

	Assets    *[]models.AssetSpec
	Requires  *[]models.Dependency
	Obsoletes *[]models.Dependency
	Conflicts *[]models.Dependency
	Provides  *[]models.Dependency

	Scripts map[models.ScriptSlot]ScriptPartial
}

// ScriptPartial holds the three keys of one scriptlet slot.
type ScriptPartial struct {
	Body  *string
	Flags *uint32
	Prog  *[]string
}

type scriptField int

const (
	scriptBody scriptField = iota
	scriptFlags
	scriptProg
)

type scriptKey struct {
	slot  models.ScriptSlot
	field scriptField
}

var scriptKeys = func() map[string]scriptKey {
	keys := make(map[string]scriptKey)
	for _, slot := range models.ScriptSlots {
		keys[slot.Key()+"_script"] = scriptKey{slot, scriptBody}
		keys[slot.Key()+"_script_flags"] = scriptKey{slot, scriptFlags}
		keys[slot.Key()+"_script_prog"] = scriptKey{slot, scriptProg}
	}
	return keys
}()

// Fold overlays next on top of base: every key next defines wins, lists
// included.
func Fold(base, next Partial) Partial {
	out := base
	overlay(&out.Name, next.Name)
	overlay(&out.Version, next.Version)
	overlay(&out.License, next.License)
	overlay(&out.Summary, next.Summary)
	overlay(&out.URL, next.URL)
	overlay(&out.Vendor, next.Vendor)
	overlay(&out.Release, next.Release)
	overlay(&out.Epoch, next.Epoch)
	overlay(&out.AutoReq, next.AutoReq)
	overlay(&out.RequireSh, next.RequireSh)
	overlay(&out.Assets, next.Assets)
	overlay(&out.Requires, next.Requires)
	overlay(&out.Obsoletes, next.Obsoletes)
	overlay(&out.Conflicts, next.Conflicts)
	overlay(&out.Provides, next.Provides)

	if len(base.Scripts) > 0 || len(next.Scripts) > 0 {
		out.Scripts = make(map[models.ScriptSlot]ScriptPartial, len(base.Scripts)+len(next.Scripts))
		for slot, sp := range base.Scripts {
			out.Scripts[slot] = sp
		}
		for slot, sp := range next.Scripts {
			merged := out.Scripts[slot]
			overlay(&merged.Body, sp.Body)
			overlay(&merged.Flags, sp.Flags)
			overlay(&merged.Prog, sp.Prog)
			out.Scripts[slot] = merged
		}
	}
	return out
}

func overlay[T any](dst **T, src *T) {
	if src != nil {
		*dst = src
	}
}

// Merge decodes every layer and folds them left to right.
func Merge(layers []Layer) (Partial, error) {
	var acc Partial
	for _, layer := range layers {
		p, err := DecodeLayer(layer)
		if err != nil {
			return Partial{}, err
		}
		logrus.Debugf("Applying configuration layer %s", layer.Origin)
		acc = Fold(acc, p)
	}
	return acc, nil
}

// DecodeLayer converts a layer's table into a Partial.
func DecodeLayer(layer Layer) (Partial, error) {
	var p Partial
	keys := make([]string, 0, len(layer.Table))
	for k := range layer.Table {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := layer.Table[key]
		name := layer.keyName(key)
		var err error

		switch key {
		case "name":
			p.Name, err = stringValue(name, value)
		case "version":
			p.Version, err = stringValue(name, value)
		case "license":
			p.License, err = stringValue(name, value)
		case "summary":
			p.Summary, err = stringValue(name, value)
		case "url":
			p.URL, err = stringValue(name, value)
		case "vendor":
			p.Vendor, err = stringValue(name, value)
		case "auto-req":
			p.AutoReq, err = stringValue(name, value)
		case "release":
			p.Release, err = releaseValue(name, value)
		case "epoch":
			p.Epoch, err = uint32Value(name, value)
		case "require-sh":
			p.RequireSh, err = boolValue(name, value)
		case "assets":
			var assets []models.AssetSpec
			assets, err = decodeAssets(name, value)
			p.Assets = &assets
		case "requires":
			p.Requires, err = dependencyTable(name, value)
		case "obsoletes":
			p.Obsoletes, err = dependencyTable(name, value)
		case "conflicts":
			p.Conflicts, err = dependencyTable(name, value)
		case "provides":
			p.Provides, err = dependencyTable(name, value)
		case "variants":
		default:
			sk, ok := scriptKeys[key]
			if !ok {
				logrus.Warnf("Ignoring unknown metadata key %s in %s", name, layer.Origin)
				continue
			}
			if p.Scripts == nil {
				p.Scripts = make(map[models.ScriptSlot]ScriptPartial)
			}
			sp := p.Scripts[sk.slot]
			switch sk.field {
			case scriptBody:
				sp.Body, err = stringValue(name, value)
			case scriptFlags:
				sp.Flags, err = uint32Value(name, value)
			case scriptProg:
				sp.Prog, err = stringArray(name, value)
			}
			p.Scripts[sk.slot] = sp
		}
		if err != nil {
			return Partial{}, fmt.Errorf("%s: %w", layer.Origin, err)
		}
	}
	return p, nil
}

func wrongType(name, want string, value any) error {
	return models.ConfigError(name, fmt.Errorf("%w: expected %s, got %T", models.ErrWrongType, want, value))
}

func stringValue(name string, value any) (*string, error) {
	s, ok := value.(string)
	if !ok {
		return nil, wrongType(name, "string", value)
	}
	return &s, nil
}

func boolValue(name string, value any) (*bool, error) {
	b, ok := value.(bool)
	if !ok {
		return nil, wrongType(name, "bool", value)
	}
	return &b, nil
}

func uint32Value(name string, value any) (*uint32, error) {
	i, ok := value.(int64)
	if !ok || i < 0 || i > math.MaxUint32 {
		return nil, wrongType(name, "unsigned 32-bit integer", value)
	}
	u := uint32(i)
	return &u, nil
}

func releaseValue(name string, value any) (*string, error) {
	switch v := value.(type) {
	case string:
		return &v, nil
	case int64:
		s := strconv.FormatInt(v, 10)
		return &s, nil
	}
	return nil, wrongType(name, "string or integer", value)
}

func stringArray(name string, value any) (*[]string, error) {
	items, ok := value.([]any)
	if !ok {
		return nil, wrongType(name, "array of strings", value)
	}
	out := make([]string, 0, len(items))
	for i, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, wrongType(fmt.Sprintf("%s[%d]", name, i), "string", item)
		}
		out = append(out, s)
	}
	return &out, nil
}

// dependencyTable parses a relation table in key order.
func dependencyTable(name string, value any) (*[]models.Dependency, error) {
	table, ok := value.(map[string]any)
	if !ok {
		return nil, wrongType(name, "table", value)
	}

	keys := make([]string, 0, len(table))
	for k := range table {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	deps := make([]models.Dependency, 0, len(keys))
	for _, key := range keys {
		constraint, ok := table[key].(string)
		if !ok {
			return nil, models.ConfigError(name+"."+key,
				fmt.Errorf("%w: expected string, got %T", models.ErrInvalidVersionConstraint, table[key]))
		}
		dep, err := models.ParseConstraint(key, constraint)
		if err != nil {
			return nil, models.ConfigError(name, err)
		}
		deps = append(deps, dep)
	}
	return &deps, nil
}

func decodeAssets(name string, value any) ([]models.AssetSpec, error) {
	items, ok := value.([]any)
	if !ok {
		return nil, wrongType(name, "array of tables", value)
	}

	assets := make([]models.AssetSpec, 0, len(items))
	for i, item := range items {
		entry := fmt.Sprintf("%s[%d]", name, i)
		table, ok := item.(map[string]any)
		if !ok {
			return nil, wrongType(entry, "table", item)
		}
		asset, err := decodeAsset(entry, table)
		if err != nil {
			return nil, err
		}
		assets = append(assets, asset)
	}
	return assets, nil
}

func decodeAsset(entry string, table map[string]any) (models.AssetSpec, error) {
	var asset models.AssetSpec

	required := func(key string) (string, error) {
		v, ok := table[key]
		if !ok {
			return "", models.ConfigError(entry+"."+key, models.ErrMissingField)
		}
		s, err := stringValue(entry+"."+key, v)
		if err != nil {
			return "", err
		}
		return *s, nil
	}
	optional := func(key string) (string, error) {
		v, ok := table[key]
		if !ok {
			return "", nil
		}
		s, err := stringValue(entry+"."+key, v)
		if err != nil {
			return "", err
		}
		return *s, nil
	}

	var err error
	if asset.Source, err = required("source"); err != nil {
		return asset, err
	}
	if asset.Dest, err = required("dest"); err != nil {
		return asset, err
	}
	if asset.Dest, err = models.NormalizeDest(asset.Dest); err != nil {
		return asset, models.ConfigError(entry+".dest", err)
	}
	if asset.Options.User, err = optional("user"); err != nil {
		return asset, err
	}
	if asset.Options.Group, err = optional("group"); err != nil {
		return asset, err
	}
	if asset.Options.Caps, err = optional("caps"); err != nil {
		return asset, err
	}

	mode, err := optional("mode")
	if err != nil {
		return asset, err
	}
	if mode != "" {
		if asset.Options.Mode, err = ParseMode(mode, strings.HasSuffix(asset.Source, "/")); err != nil {
			return asset, models.ConfigError(entry+".mode", err)
		}
	}

	switch v := table["config"].(type) {
	case nil:
	case bool:
		asset.Options.Config = v
	case string:
		if v != "noreplace" {
			return asset, models.ConfigError(entry+".config", fmt.Errorf("%w: expected bool or \"noreplace\", got %q", models.ErrWrongType, v))
		}
		asset.Options.Config = true
		asset.Options.ConfigNoReplace = true
	default:
		return asset, wrongType(entry+".config", `bool or "noreplace"`, v)
	}

	if v, ok := table["doc"]; ok {
		doc, err := boolValue(entry+".doc", v)
		if err != nil {
			return asset, err
		}
		asset.Options.Doc = *doc
	}

	return asset, nil
}

// ParseMode parses an octal mode string and adds the file type bits when
// none are given.
func ParseMode(s string, dir bool) (uint32, error) {
	mode, err := strconv.ParseUint(s, 8, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not an octal number", models.ErrInvalidMode, s)
	}
	m := uint32(mode)
	if m&models.ModeTypeMask == 0 {
		if dir {
			m |= models.ModeDir
		} else {
			m |= models.ModeRegular
		}
	}
	return m, nil
}
