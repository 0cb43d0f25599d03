package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/samskiter/micropython-stubber/pkg/buildinfo"
	"github.com/samskiter/micropython-stubber/pkg/cache"
	"github.com/samskiter/micropython-stubber/pkg/classify"
	"github.com/samskiter/micropython-stubber/pkg/driver"
	"github.com/samskiter/micropython-stubber/pkg/emit"
	"github.com/samskiter/micropython-stubber/pkg/errors"
	"github.com/samskiter/micropython-stubber/pkg/memguard"
	"github.com/samskiter/micropython-stubber/pkg/object"
	"github.com/samskiter/micropython-stubber/pkg/observability"
	"github.com/samskiter/micropython-stubber/pkg/probe"
)

// runOptions holds the flags shared by the root and run commands.
type runOptions struct {
	path          string
	snapshot      string
	firmwareID    string
	modules       []string
	restarts      int
	maxClassLevel int
	levelChanged  bool // --max-class-level given explicitly
	selectModules bool
	stats         bool
	cache         bool
	keepExisting  bool
}

func (o *runOptions) bind(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&o.path, "path", "p", "", "output root (default: first of cwd, /sd, /flash, /)")
	f.StringVarP(&o.snapshot, "snapshot", "s", "", "firmware snapshot file (default: snapshot.{json,yaml,cbor} in the output root)")
	f.StringVar(&o.firmwareID, "firmware-id", "", "override the firmware id used for the stub folder")
	f.StringSliceVarP(&o.modules, "module", "m", nil, "modules to stub (default: modulelist.txt)")
	f.IntVar(&o.restarts, "restarts", 0, "resume in-process this many times after a memory restart")
	f.IntVar(&o.maxClassLevel, "max-class-level", 0, "class nesting depth to expand (default 2)")
	f.BoolVar(&o.selectModules, "select", false, "pick modules interactively")
	f.BoolVar(&o.stats, "stats", false, "print run statistics")
	f.BoolVar(&o.cache, "cache", false, "reuse stub bodies of unchanged modules")
	f.BoolVar(&o.keepExisting, "keep", false, "never clean the stub folder")
}

// parsed records which flags were set on the command line.
func (o *runOptions) parsed(cmd *cobra.Command) {
	o.levelChanged = cmd.Flags().Changed("max-class-level")
}

// classLevel returns the nesting cap: the flag when given, else the
// configured value.
func (o runOptions) classLevel(configured int) int {
	if o.levelChanged {
		return o.maxClassLevel
	}
	return configured
}

// runCommand creates the run command.
func (c *CLI) runCommand() *cobra.Command {
	var opts runOptions
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Generate stubs for every module of a firmware snapshot",
		Long: `Generate stubs for every module of a firmware snapshot.

Progress is logged to modulelist.done in the output root. If a run is cut
short by a memory restart (exit code 75), run it again to resume with the
first module that has no logged result.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.parsed(cmd)
			return c.runStubber(cmd.Context(), opts)
		},
	}
	opts.bind(cmd)
	return cmd
}

// runStubber loads the runtime and drives one stubbing run, resuming
// after restarts as often as allowed.
func (c *CLI) runStubber(ctx context.Context, o runOptions) error {
	cfg := c.cfg()
	root := c.resolveRoot(o.path)

	doc, rt, err := c.loadRuntime(ctx, root, o.snapshot)
	if err != nil {
		return err
	}

	modules, err := c.moduleList(o.modules)
	if err != nil {
		return err
	}
	if o.selectModules {
		if modules, err = pickModules(modules); err != nil {
			return err
		}
		if len(modules) == 0 {
			printWarning("No modules selected")
			return nil
		}
	}

	prof := probe.New(rt, c.Logger, c.boardDirs()...).Probe()
	if u, err := rt.Uname(); err == nil {
		if err := probe.CheckSupported(u); err != nil {
			return err
		}
	}

	var heap object.Heap = rt
	if doc.Heap.Size == 0 {
		c.Logger.Debug("snapshot has no heap size, guarding host memory")
		heap = memguard.HostHeap{}
	}
	guard := memguard.New(heap, rt, c.Logger)
	if cfg.Memory.Threshold > 0 {
		guard.Threshold = cfg.Memory.Threshold
	}
	if cfg.Memory.Pause > 0 {
		guard.Pause = cfg.Memory.Pause
	}

	stubCache, err := c.newCache(o.cache)
	if err != nil {
		return err
	}
	defer stubCache.Close()

	em := emit.New(classify.New(guard, c.Logger), guard, c.Logger)
	d := driver.New(rt, em, stubCache, cache.NewScopedKeyer(cache.NewDefaultKeyer(), buildinfo.Version+":"), c.Logger)
	d.CacheTTL = cfg.Cache.TTL

	opts := driver.Options{
		Root:          root,
		FirmwareID:    firstNonEmpty(o.firmwareID, cfg.Stubber.FirmwareID),
		Profile:       prof,
		Problematic:   nonEmpty(cfg.Modules.Problematic),
		Excluded:      nonEmpty(cfg.Modules.Excluded),
		KeepLoaded:    nonEmpty(cfg.Modules.KeepLoaded),
		Deny:          cfg.Modules.Deny,
		KeepExisting:  o.keepExisting,
		MaxClassLevel: o.classLevel(cfg.Stubber.MaxClassLevel),
	}

	var counters *observability.Counters
	if o.stats {
		counters = observability.NewCounters()
		observability.SetDriverHooks(counters)
		observability.SetMemoryHooks(counters)
		observability.SetCacheHooks(counters)
		defer observability.Reset()
	}

	restarts := max(o.restarts, cfg.Stubber.Restarts)
	prog := newProgress(c.Logger)
	var report *driver.Report
	for attempt := 0; ; attempt++ {
		report, err = d.Run(ctx, modules, opts)
		if !errors.IsRestart(err) || attempt >= restarts {
			break
		}
		c.Logger.Warn("resuming after restart", "attempt", attempt+1, "of", restarts, "err", err)
	}

	if report != nil {
		printRunReport(report)
		if counters != nil {
			printCounters(counters.Snapshot())
		}
	}
	if err != nil {
		if errors.IsRestart(err) {
			printWarning("Memory restart, run again to resume")
		}
		return err
	}
	prog.done(fmt.Sprintf("Stubbed %d modules", report.Stats.Succeeded))
	return nil
}

// resolveRoot picks the output root: flag, config, then detection.
func (c *CLI) resolveRoot(flag string) string {
	if flag != "" {
		return flag
	}
	if p := c.cfg().Stubber.Path; p != "" {
		return c.cfg().Resolve(p)
	}
	return probe.DetectRoot()
}

// moduleList returns the worklist: flags, config, then modulelist.txt.
func (c *CLI) moduleList(flag []string) ([]string, error) {
	if len(flag) > 0 {
		return flag, nil
	}
	if list := c.cfg().Modules.List; len(list) > 0 {
		return list, nil
	}
	dirs := driver.DefaultListDirs
	if cfgDirs := c.cfg().Modules.ListDirs; len(cfgDirs) > 0 {
		dirs = c.resolveAll(cfgDirs)
	}
	modules, source, err := driver.LoadModuleList(dirs)
	if err != nil {
		return nil, err
	}
	if source == "" {
		c.Logger.Warn("no module list found, using defaults", "file", driver.ModuleListFile)
	} else {
		c.Logger.Info("loaded module list", "file", source, "modules", len(modules))
	}
	return modules, nil
}

func (c *CLI) boardDirs() []string {
	if dirs := c.cfg().Modules.BoardDirs; len(dirs) > 0 {
		return c.resolveAll(dirs)
	}
	return []string{".", "lib"}
}

func (c *CLI) resolveAll(dirs []string) []string {
	out := make([]string, len(dirs))
	for i, d := range dirs {
		out[i] = c.cfg().Resolve(d)
	}
	return out
}

// findSnapshot looks for snapshot.{json,yaml,yml,cbor} in dir.
func findSnapshot(dir string) (string, error) {
	for _, ext := range []string{"json", "yaml", "yml", "cbor"} {
		path := filepath.Join(dir, "snapshot."+ext)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", errors.New(errors.ErrCodeFileNotFound, "no snapshot in %s (use --snapshot)", dir)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// nonEmpty turns an empty list into nil so driver defaults apply.
func nonEmpty(list []string) []string {
	if len(list) == 0 {
		return nil
	}
	return list
}
