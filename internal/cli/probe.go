package cli

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/samskiter/micropython-stubber/pkg/probe"
)

// probeCommand creates the probe command.
func (c *CLI) probeCommand() *cobra.Command {
	var (
		path     string
		snapFile string
		asJSON   bool
	)
	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Identify the firmware of a snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, rt, err := c.loadRuntime(cmd.Context(), c.resolveRoot(path), snapFile)
			if err != nil {
				return err
			}
			prof := probe.New(rt, c.Logger, c.boardDirs()...).Probe()

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(prof)
			}
			printProfile(prof)
			if u, err := rt.Uname(); err == nil {
				if err := probe.CheckSupported(u); err != nil {
					printWarning("%s", err)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&path, "path", "p", "", "root to search for the snapshot")
	cmd.Flags().StringVarP(&snapFile, "snapshot", "s", "", "firmware snapshot file")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the profile as JSON")
	return cmd
}
