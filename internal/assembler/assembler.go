// Package assembler composes resolved metadata, assets and requirements
// into the package description handed to a writer.
package assembler

import (
	"sort"

	"github.com/ralt/rpmgen/internal/models"
)

// Assemble builds the package description. Requirements are the declared
// requires followed by requirements, without exact duplicates. Files are
// sorted by destination.
func Assemble(meta *models.Metadata, assets []models.ResolvedAsset, requirements []models.Dependency) *models.Package {
	pkg := &models.Package{
		Name:      meta.Name,
		Version:   meta.Version,
		Release:   meta.Release,
		Epoch:     meta.Epoch,
		Arch:      meta.Arch,
		License:   meta.License,
		Summary:   meta.Summary,
		URL:       meta.URL,
		Vendor:    meta.Vendor,
		Requires:  mergeDeps(meta.Requires, requirements),
		Obsoletes: append([]models.Dependency(nil), meta.Obsoletes...),
		Conflicts: append([]models.Dependency(nil), meta.Conflicts...),
		Provides:  append([]models.Dependency(nil), meta.Provides...),
	}

	if len(meta.Scripts) > 0 {
		pkg.Scripts = make(map[models.ScriptSlot]models.Scriptlet, len(meta.Scripts))
		for slot, script := range meta.Scripts {
			script.Prog = append([]string(nil), script.Prog...)
			pkg.Scripts[slot] = script
		}
	}

	pkg.Files = append([]models.ResolvedAsset(nil), assets...)
	sort.SliceStable(pkg.Files, func(i, j int) bool {
		return pkg.Files[i].Dest < pkg.Files[j].Dest
	})
	for i := range pkg.Files {
		if pkg.Files[i].Options.User == "" {
			pkg.Files[i].Options.User = "root"
		}
		if pkg.Files[i].Options.Group == "" {
			pkg.Files[i].Options.Group = "root"
		}
	}

	return pkg
}

func mergeDeps(lists ...[]models.Dependency) []models.Dependency {
	seen := make(map[models.Dependency]bool)
	var out []models.Dependency
	for _, list := range lists {
		for _, d := range list {
			if !seen[d] {
				seen[d] = true
				out = append(out, d)
			}
		}
	}
	return out
}
