package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/pipette/internal/colour"
	"github.com/jmylchreest/pipette/internal/harmony"
)

// Output formats.
const (
	formatText = "text"
	formatJSON = "json"
	formatList = "list"
)

type paletteOptions struct {
	scheme  string
	format  string
	preview bool
}

func newPaletteCmd() *cobra.Command {
	opts := &paletteOptions{}

	cmd := &cobra.Command{
		Use:   "palette <hex>",
		Short: "Generate harmony palettes from a colour",
		Long: `Generate harmony palettes from a base colour given as six hex digits,
with or without a leading '#'.

Schemes: complementary, split-complementary, analogous, triadic,
monochromatic, tetradic. All are shown unless --scheme is given.`,
		Example: `  pipette palette '#3366CC'
  pipette palette 3366cc --scheme triadic --format list
  pipette palette ff8800 --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			palettes, err := harmony.GenerateAll(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			return renderPalettes(out, palettes, opts.scheme, opts.format, usePreview(cmd, out))
		},
	}

	addOutputFlags(cmd, &opts.scheme, &opts.format)
	cmd.Flags().BoolVar(&opts.preview, "preview", false, "draw colour swatches (default: when writing to a terminal)")

	return cmd
}

func addOutputFlags(cmd *cobra.Command, scheme, format *string) {
	cmd.Flags().StringVarP(scheme, "scheme", "s", "", "only show this scheme")
	cmd.Flags().StringVarP(format, "format", "f", formatText, "output format (text, json, list)")
}

// renderPalettes writes palettes in the requested format. An empty scheme
// selects every palette.
func renderPalettes(w io.Writer, palettes harmony.Palettes, scheme, format string, preview bool) error {
	if scheme != "" {
		s, err := harmony.ParseScheme(scheme)
		if err != nil {
			return err
		}
		p, _ := palettes.Get(s)
		palettes.Palettes = []harmony.Palette{p}
	}

	switch strings.ToLower(format) {
	case formatJSON:
		data, err := palettes.ToJSON()
		if err != nil {
			return fmt.Errorf("failed to encode palettes: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err

	case formatList:
		for _, p := range palettes.Palettes {
			if _, err := fmt.Fprintf(w, "%s: %s\n", p.Scheme.Title(), p.Join()); err != nil {
				return err
			}
		}
		return nil

	case formatText, "":
		return renderPaletteTables(w, palettes, preview)

	default:
		return fmt.Errorf("unknown output format %q (use text, json or list)", format)
	}
}

func renderPaletteTables(w io.Writer, palettes harmony.Palettes, preview bool) error {
	base := string(palettes.Base)
	if preview {
		base = colour.ColourPreviewWithText(palettes.Base.RGB(), base, 9)
	}
	if _, err := fmt.Fprintf(w, "Base colour: %s\n", base); err != nil {
		return err
	}

	for _, p := range palettes.Palettes {
		headers := []string{"#", "Hex", "RGB", "HSL"}
		if preview {
			headers = append(headers, "Preview")
		}
		table := NewTable(headers)
		for i, c := range p.Colours {
			row := []string{fmt.Sprint(i + 1), string(c), c.RGB().String(), c.HSL().String()}
			if preview {
				row = append(row, colour.ColourPreview(c.RGB(), 6))
			}
			table.AddRow(row)
		}
		if _, err := fmt.Fprintf(w, "\n%s\n%s", p.Scheme.Title(), table.Render()); err != nil {
			return err
		}
	}
	return nil
}
