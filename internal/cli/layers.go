package cli

import (
	"strings"

	"github.com/ralt/rpmgen/internal/config"
	"github.com/spf13/pflag"
)

type layerKind int

const (
	layerFile layerKind = iota
	layerText
	layerVariant
)

// layerFlag appends override layers to a list shared by several flags, so
// the resulting order is the order they appear on the command line.
type layerFlag struct {
	kind    layerKind
	sources *[]config.Source
	values  []string
}

var _ pflag.Value = (*layerFlag)(nil)

func (f *layerFlag) String() string {
	return strings.Join(f.values, ",")
}

func (f *layerFlag) Type() string {
	switch f.kind {
	case layerText:
		return "toml"
	case layerVariant:
		return "names"
	default:
		return "paths"
	}
}

func (f *layerFlag) Set(value string) error {
	f.values = append(f.values, value)

	// Inline TOML may legitimately contain commas
	if f.kind == layerText {
		*f.sources = append(*f.sources, config.TextSource{Text: value})
		return nil
	}

	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if f.kind == layerVariant {
			*f.sources = append(*f.sources, config.VariantSource{Name: part})
		} else {
			*f.sources = append(*f.sources, config.ParseFileSource(part))
		}
	}
	return nil
}

// addLayerFlags registers the override flags on fs, all feeding sources.
func addLayerFlags(fs *pflag.FlagSet, sources *[]config.Source) {
	fs.Var(&layerFlag{kind: layerFile, sources: sources}, "metadata-overwrite",
		"TOML file(s) overriding package metadata, optionally narrowed with #dotted.path (comma separated, repeatable)")
	fs.VarP(&layerFlag{kind: layerText, sources: sources}, "set-metadata", "s",
		"Inline TOML overriding package metadata (repeatable)")
	fs.Var(&layerFlag{kind: layerVariant, sources: sources}, "variant",
		"Metadata variant(s) to apply from package.metadata.generate-rpm.variants (comma separated, repeatable)")
}
