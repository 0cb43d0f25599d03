package cli

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/samskiter/micropython-stubber/pkg/classify"
	"github.com/samskiter/micropython-stubber/pkg/emit"
	"github.com/samskiter/micropython-stubber/pkg/errors"
	"github.com/samskiter/micropython-stubber/pkg/treeviz"
)

// graphCommand creates the graph command.
func (c *CLI) graphCommand() *cobra.Command {
	var (
		path     string
		snapFile string
		output   string
		format   string
		depth    int
		detailed bool
	)
	cmd := &cobra.Command{
		Use:   "graph <module>",
		Short: "Draw the member tree of a module",
		Long: `Draw the member tree of a module as the stub would see it.

Formats: dot, svg, pdf, png. PDF and PNG need rsvg-convert (librsvg).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			_, rt, err := c.loadRuntime(ctx, c.resolveRoot(path), snapFile)
			if err != nil {
				return err
			}
			name := args[0]
			mod, err := rt.Import(name)
			if err != nil {
				return err
			}

			tree, err := treeviz.Build(ctx, classify.New(nil, c.Logger), mod, name, depth)
			if err != nil {
				return err
			}
			if format == "" {
				format = formatFromOutput(output)
			}
			data, err := treeviz.Render(ctx, tree, format, treeviz.Options{Detailed: detailed})
			if err != nil {
				return err
			}

			if output == "" {
				_, err = os.Stdout.Write(data)
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return errors.Wrap(errors.ErrCodeOutputIO, err, "write %s", output)
			}
			printSuccess("Drew %d members of %s", tree.Len()-1, name)
			printFile(output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&path, "path", "p", "", "root to search for the snapshot")
	cmd.Flags().StringVarP(&snapFile, "snapshot", "s", "", "firmware snapshot file")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVarP(&format, "format", "f", "", "output format (default: from extension, else dot)")
	cmd.Flags().IntVar(&depth, "depth", emit.DefaultMaxClassLevel, "class nesting depth to expand")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "show kinds and values in labels")
	return cmd
}

func formatFromOutput(output string) string {
	for _, f := range []string{treeviz.FormatSVG, treeviz.FormatPDF, treeviz.FormatPNG} {
		if strings.HasSuffix(strings.ToLower(output), "."+f) {
			return f
		}
	}
	return treeviz.FormatDOT
}
