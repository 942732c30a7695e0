package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/ralt/rpmgen/internal/assembler"
	"github.com/ralt/rpmgen/internal/assets"
	"github.com/ralt/rpmgen/internal/autoreq"
	"github.com/ralt/rpmgen/internal/buildtarget"
	"github.com/ralt/rpmgen/internal/config"
	"github.com/ralt/rpmgen/internal/elfdeps"
	"github.com/ralt/rpmgen/internal/generator"
	"github.com/ralt/rpmgen/internal/generator/rpm"
	"github.com/ralt/rpmgen/internal/models"
	"github.com/ralt/rpmgen/internal/scriptlet"
	"github.com/ralt/rpmgen/internal/utils"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type generateOptions struct {
	models.GenerateConfig

	WorkDir string
	Sources []config.Source
}

// NewGenerateCmd creates the generate command
func NewGenerateCmd() *cobra.Command {
	var opts generateOptions

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate an RPM package",
		Long: `Loads package metadata from Cargo.toml and the given override layers,
resolves assets and requirements, and writes the RPM package.

Override layers are applied in the order they appear on the command line,
across --metadata-overwrite, --set-metadata and --variant.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logrus.Info("Starting package generation...")
			logrus.Debugf("Configuration: %+v", opts.GenerateConfig)

			return runGeneration(cmd.Context(), &opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&opts.Package, "package", "p", "", "Workspace member directory to package")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "Output file or directory")
	cmd.Flags().StringVarP(&opts.Arch, "arch", "a", "", "Target architecture of the package")
	cmd.Flags().StringVar(&opts.Target, "target", "", "Target triple the binaries were built for")
	cmd.Flags().StringVar(&opts.TargetDir, "target-dir", "", "Cargo target directory")
	cmd.Flags().StringVar(&opts.Profile, "profile", "release", "Build profile the binaries were built with")
	cmd.Flags().StringVar(&opts.AutoReq, "auto-req", "auto", "Requirement discovery: auto, disabled, builtin, find-requires or a program path")
	cmd.Flags().StringVar(&opts.PayloadCompress, "payload-compress", "zstd", "Payload compression: none, gzip, zstd or xz")
	cmd.Flags().StringVar(&opts.SourceDate, "source-date", "", "Build timestamp; file mtimes are clamped to it")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Print the assembled package as YAML instead of writing it")
	addLayerFlags(cmd.Flags(), &opts.Sources)

	return cmd
}

func runGeneration(ctx context.Context, opts *generateOptions, stdout io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	// Validate flags before touching the filesystem
	cliMode, err := autoreq.ParseMode(opts.AutoReq)
	if err != nil {
		return err
	}
	compression, err := models.ParseCompression(opts.PayloadCompress)
	if err != nil {
		return err
	}

	// Step 1: Build context
	build, err := buildtarget.NewContext(buildtarget.Options{
		WorkDir:    opts.WorkDir,
		TargetDir:  opts.TargetDir,
		Target:     opts.Target,
		Profile:    opts.Profile,
		Package:    opts.Package,
		Arch:       opts.Arch,
		SourceDate: opts.SourceDate,
	}, buildtarget.NewEnv())
	if err != nil {
		return err
	}

	// Step 2: Configuration layers
	cfg, err := config.Load(build, opts.Sources)
	if err != nil {
		return err
	}
	logrus.Debugf("Loaded %s", cfg)
	meta, err := cfg.Metadata(build)
	if err != nil {
		return err
	}
	logrus.Infof("Loaded metadata for %s %s (%d layers)", meta.Name, meta.Version, len(cfg.Layers))

	// Step 3: Assets
	resolved, err := assets.Resolve(ctx, meta.Assets, build, build.PackageDir)
	if err != nil {
		return err
	}

	meta.Scripts, err = scriptlet.Load(meta.Scripts, build, build.PackageDir)
	if err != nil {
		return err
	}

	// Step 4: Requirements
	resolver := autoreq.NewResolver(elfdeps.NewInspector())
	mode, err := resolver.Effective(cliMode, meta.AutoReq)
	if err != nil {
		return err
	}
	discovered, err := resolver.Resolve(ctx, mode, autoreq.Binaries(resolved))
	if err != nil {
		return err
	}
	logrus.Infof("Discovered %d requirements (%s)", len(discovered), mode)

	pkg := assembler.Assemble(meta, resolved, autoreq.WithShell(discovered, meta.RequireSh))

	if opts.DryRun {
		enc := yaml.NewEncoder(stdout)
		enc.SetIndent(2)
		if err := enc.Encode(pkg); err != nil {
			return fmt.Errorf("failed to encode package: %w", err)
		}
		return enc.Close()
	}

	// Step 5: Write and verify
	output := utils.OutputPath(opts.Output, pkg, build)
	writer := rpm.NewWriter(compression, build.SourceDate)
	if err := writePackage(ctx, writer, rpm.ParsePackage, pkg, output); err != nil {
		return err
	}

	logrus.Infof("Package %s written to %s", utils.PackageIdentity(pkg), output)
	return nil
}

// writePackage writes pkg and checks that the result reads back as the
// same package.
func writePackage(ctx context.Context, w generator.Writer, read generator.Reader, pkg *models.Package, path string) error {
	if err := w.WritePackage(ctx, pkg, path); err != nil {
		return err
	}

	info, err := read(path)
	if err != nil {
		return models.PackageWriteError(path, err)
	}
	if info.Name != pkg.Name || info.Version != pkg.Version || info.Release != pkg.Release {
		return models.PackageWriteError(path, fmt.Errorf("%w: read back %s-%s-%s",
			models.ErrPackageMismatch, info.Name, info.Version, info.Release))
	}

	logrus.Debugf("Verified %s (%d bytes, sha256 %s)", info.Filename, info.Size, info.SHA256Sum)
	return nil
}
