package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/samskiter/micropython-stubber/pkg/object"
	"github.com/samskiter/micropython-stubber/pkg/snapshot"
)

// snapshotCommand creates the snapshot command.
func (c *CLI) snapshotCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Inspect and convert firmware snapshots",
	}
	cmd.AddCommand(c.snapshotConvertCommand())
	cmd.AddCommand(c.snapshotInfoCommand())
	return cmd
}

// snapshotConvertCommand creates the "snapshot convert" subcommand.
func (c *CLI) snapshotConvertCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "convert <input> <output>",
		Short: "Re-encode a snapshot as JSON, YAML or CBOR (chosen by extension)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := newSpinnerWithContext(cmd.Context(), "Converting snapshot...")
			s.Start()
			if err := snapshot.Convert(args[0], args[1]); err != nil {
				s.StopWithError("Conversion failed")
				return err
			}
			s.StopWithSuccess(fmt.Sprintf("Wrote %s snapshot", snapshot.FormatFromPath(args[1])))
			printFile(args[1])
			return nil
		},
	}
}

// snapshotInfoCommand creates the "snapshot info" subcommand.
func (c *CLI) snapshotInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info <file>",
		Short: "Show the modules and heap of a snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := snapshot.Load(args[0])
			if err != nil {
				return err
			}
			printSnapshotInfo(doc)
			return nil
		},
	}
}

// loadRuntime decodes the snapshot (flag, or found in root) into a
// runtime, showing a spinner while it loads.
func (c *CLI) loadRuntime(ctx context.Context, root, path string) (*snapshot.Document, *object.MemoryRuntime, error) {
	if path == "" {
		found, err := findSnapshot(root)
		if err != nil {
			return nil, nil, err
		}
		path = found
	}

	s := newSpinnerWithContext(ctx, "Loading snapshot...")
	s.Start()
	doc, err := snapshot.Load(path)
	if err != nil {
		s.StopWithError("Could not load snapshot")
		return nil, nil, err
	}
	s.SetMessage("Building runtime...")
	rt, err := doc.Runtime()
	if err != nil {
		s.StopWithError("Invalid snapshot")
		return nil, nil, err
	}
	s.Stop()
	c.Logger.Info("loaded snapshot", "file", path, "modules", len(doc.Modules))
	return doc, rt, nil
}
