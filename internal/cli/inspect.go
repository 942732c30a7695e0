package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/ralt/rpmgen/internal/generator/rpm"
	"github.com/ralt/rpmgen/internal/models"
	"github.com/ralt/rpmgen/internal/scanner"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// NewInspectCmd creates the inspect command
func NewInspectCmd() *cobra.Command {
	var (
		format   string
		contents bool
	)

	cmd := &cobra.Command{
		Use:   "inspect FILE.rpm",
		Short: "Show the metadata of an RPM package",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			typ, err := scanner.DetectFileType(args[0])
			if err != nil {
				return &models.Error{Type: models.ErrFileOp, Subject: args[0], Err: err}
			}
			if typ != scanner.TypeRpm {
				return &models.Error{Type: models.ErrFileOp, Subject: args[0],
					Err: fmt.Errorf("not an RPM package (detected %s)", typ)}
			}

			info, err := rpm.ParsePackage(args[0])
			if err != nil {
				return &models.Error{Type: models.ErrFileOp, Subject: args[0], Err: err}
			}
			if contents {
				if info.Contents, err = rpm.ListPayload(args[0]); err != nil {
					return &models.Error{Type: models.ErrFileOp, Subject: args[0], Err: err}
				}
			}
			return printPackageInfo(cmd.OutOrStdout(), info, format)
		},
	}

	cmd.Flags().StringVar(&format, "format", "text", "Output format: text or yaml")
	cmd.Flags().BoolVar(&contents, "contents", false, "Also list the payload archive")

	return cmd
}

func printPackageInfo(w io.Writer, info *models.PackageInfo, format string) error {
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(info); err != nil {
			return err
		}
		return enc.Close()
	case "text", "":
	default:
		return models.ConfigError("format", fmt.Errorf("unknown output format %q", format))
	}

	fields := []struct{ key, value string }{
		{"Name", info.Name},
		{"Version", info.Version},
		{"Release", info.Release},
		{"Architecture", info.Arch},
		{"Summary", info.Summary},
		{"License", info.License},
		{"URL", info.URL},
		{"Compressor", info.PayloadCompressor},
		{"Size", fmt.Sprintf("%d", info.Size)},
		{"SHA256", info.SHA256Sum},
	}
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		fmt.Fprintf(w, "%-13s: %s\n", f.key, f.value)
	}

	for _, section := range []struct {
		title string
		items []string
	}{
		{"Requires", info.Requires},
		{"Provides", info.Provides},
		{"Files", info.Files},
	} {
		if len(section.items) == 0 {
			continue
		}
		fmt.Fprintf(w, "%s:\n    %s\n", section.title, strings.Join(section.items, "\n    "))
	}

	if len(info.Contents) > 0 {
		fmt.Fprintln(w, "Contents:")
		for _, e := range info.Contents {
			fmt.Fprintf(w, "    %06o %8d %s\n", e.Mode, e.Size, e.Name)
		}
	}
	return nil
}
