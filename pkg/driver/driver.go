// Package driver runs a stub generation over a worklist of modules.
//
// For every module the [Driver] decides whether to skip it, imports it
// fresh, renders its stub through the emitter, writes header and body to a
// new file, and unloads the module again. Each result is appended to a
// durable progress log before the next module starts, so a run that is cut
// short by a runtime reset can be repeated and continues with the first
// module that has no logged result.
//
// # Usage
//
//	d := driver.New(rt, emitter, nil, nil, logger)
//	report, err := d.Run(ctx, []string{"gc", "machine"}, driver.Options{
//	    Root:    "/sd",
//	    Profile: prober.Probe(),
//	})
//	if errors.IsRestart(err) {
//	    // run again to resume
//	}
package driver

import (
	"bytes"
	"context"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/samskiter/micropython-stubber/pkg/buildinfo"
	"github.com/samskiter/micropython-stubber/pkg/cache"
	"github.com/samskiter/micropython-stubber/pkg/emit"
	"github.com/samskiter/micropython-stubber/pkg/errors"
	"github.com/samskiter/micropython-stubber/pkg/memguard"
	"github.com/samskiter/micropython-stubber/pkg/object"
	"github.com/samskiter/micropython-stubber/pkg/observability"
)

// Stats summarises a run.
type Stats struct {
	Resumed   int // items with a result logged by an earlier run
	Attempted int
	Succeeded int
	Skipped   int
	Failed    int
	CacheHits int
	Emit      emit.Stats
	Duration  time.Duration
}

// Report is the outcome of a run.
type Report struct {
	FirmwareID string
	StubDir    string
	Items      []ModuleWorkItem
	Manifest   *Manifest
	Stats      Stats
}

// Driver stubs modules of one runtime.
//
// The Driver holds no per-run state. The runtime's module cache is its only
// shared resource, so a Driver must not run concurrently with itself.
type Driver struct {
	Runtime  object.Runtime
	Emitter  *emit.Emitter
	Guard    *memguard.Guard
	Cache    cache.Cache
	Keyer    cache.Keyer
	Logger   *log.Logger
	Version  string        // stubber version written to headers and manifest
	CacheTTL time.Duration // zero keeps cached bodies forever
}

// New creates a driver. If em is nil, an emitter without memory guard is
// used. If c is nil, a NullCache is used (caching disabled). If keyer is
// nil, a DefaultKeyer is used.
func New(rt object.Runtime, em *emit.Emitter, c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Driver {
	if logger == nil {
		logger = log.Default()
	}
	if em == nil {
		em = emit.New(nil, nil, logger)
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	return &Driver{
		Runtime: rt,
		Emitter: em,
		Guard:   em.Guard,
		Cache:   c,
		Keyer:   keyer,
		Logger:  logger,
		Version: buildinfo.Version,
	}
}

// runState is the per-run lookup data.
type runState struct {
	opts        Options
	firmwareID  string
	stubDir     string
	problematic map[string]bool
	excluded    map[string]bool
	keepLoaded  map[string]bool
	stats       *Stats
}

// Run stubs every module of the worklist that has no logged result yet.
//
// A RESTART_REQUIRED error stops the run immediately; the module in flight
// is not logged and will be retried by the next run. Any other per-module
// failure is logged and the run continues.
func (d *Driver) Run(ctx context.Context, modules []string, opts Options) (*Report, error) {
	opts.SetDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	fwid := opts.ResolveFirmwareID()
	report := &Report{
		FirmwareID: fwid,
		StubDir:    StubDir(opts.Root, fwid),
	}
	rs := &runState{
		opts:        opts,
		firmwareID:  fwid,
		stubDir:     report.StubDir,
		problematic: toSet(opts.Problematic),
		excluded:    toSet(opts.Excluded),
		keepLoaded:  toSet(opts.KeepLoaded),
		stats:       &report.Stats,
	}

	pl, err := OpenProgressLog(filepath.Join(opts.Root, opts.ProgressFile))
	if err != nil {
		return nil, err
	}
	defer pl.Close()

	if !pl.Existed() && !opts.KeepExisting {
		d.Logger.Info("clean stub folder", "path", rs.stubDir)
		if err := Clean(rs.stubDir); err != nil {
			d.Logger.Error("clean failed", "path", rs.stubDir, "err", err)
		}
	}

	report.Items = NewWorklist(modules)
	for _, it := range report.Items {
		d.Emitter.Classifier.Track(NormalizeModuleName(it.Module))
	}
	d.Emitter.MaxClassLevel = opts.MaxClassLevel
	d.Emitter.Deny(opts.Deny...)

	d.Logger.Info("start stubbing", "version", d.Version, "firmware", fwid, "modules", len(report.Items))
	observability.Driver().OnRunStart(ctx, fwid, len(report.Items))

	finish := func(err error) (*Report, error) {
		report.Stats.Duration = time.Since(start)
		observability.Driver().OnRunComplete(ctx, fwid, report.Stats.Succeeded, report.Stats.Duration, err)
		return report, err
	}

	for i := range report.Items {
		it := &report.Items[i]
		if status, ok := pl.Status(it.Module); ok {
			it.Status = status
			report.Stats.Resumed++
			continue
		}
		if err := ctx.Err(); err != nil {
			return finish(err)
		}

		observability.Driver().OnModuleStart(ctx, it.Module)
		t0 := time.Now()
		status, path, err := d.stubOne(ctx, it.Module, rs)
		if errors.IsRestart(err) || ctx.Err() != nil {
			observability.Driver().OnModuleComplete(ctx, it.Module, string(StatusPending), time.Since(t0), err)
			if err == nil {
				err = ctx.Err()
			}
			return finish(err)
		}

		it.Status, it.OutputPath, it.Err = status, path, err
		report.Stats.Attempted++
		switch {
		case status == StatusSucceeded:
			report.Stats.Succeeded++
		case status.Skipped():
			report.Stats.Skipped++
		default:
			report.Stats.Failed++
		}
		if err := pl.Append(it.Module, status); err != nil {
			return finish(err)
		}
		observability.Driver().OnModuleComplete(ctx, it.Module, string(status), time.Since(t0), err)
	}

	report.Manifest = d.manifest(pl, rs)
	manifestPath := filepath.Join(rs.stubDir, opts.ManifestName)
	if err := WriteManifest(manifestPath, report.Manifest); err != nil {
		d.Logger.Error("failed to create the manifest", "path", manifestPath, "err", err)
		return finish(err)
	}
	d.Logger.Info("created stubs", "modules", len(report.Manifest.Modules), "firmware", fwid, "path", rs.stubDir)
	return finish(nil)
}

// stubOne runs the state machine of one module.
func (d *Driver) stubOne(ctx context.Context, module string, rs *runState) (Status, string, error) {
	name := NormalizeModuleName(module)
	if rs.problematic[module] || rs.problematic[name] {
		d.Logger.Warn("skip module", "module", module, "reason", "known problematic")
		return StatusSkippedProblematic, "", nil
	}
	if rs.excluded[module] || rs.excluded[name] {
		d.Logger.Warn("skip module", "module", module, "reason", "excluded")
		return StatusSkippedExcluded, "", nil
	}
	if err := errors.ValidateModuleName(module); err != nil {
		d.Logger.Warn("skip module", "module", module, "err", err)
		return StatusFailedImport, "", err
	}
	if err := d.Guard.CheckLow(ctx); err != nil {
		d.Logger.Warn("skip module", "module", module, "reason", "low memory", "err", err)
		return StatusFailedMemory, "", err
	}

	mod, err := d.Runtime.Import(name)
	if err != nil {
		if errors.Is(err, errors.ErrCodeOutOfMemory) {
			return "", "", d.Guard.Panic(ctx, "import", err)
		}
		d.Logger.Warn("skip module", "module", name, "reason", "module not found", "err", err)
		return StatusFailedImport, "", err
	}
	defer d.release(ctx, name, rs)

	body, err := d.body(ctx, mod, name, rs)
	if err != nil {
		if errors.IsRestart(err) || ctx.Err() != nil {
			return "", "", err
		}
		d.Logger.Error("emit failed", "module", name, "err", err)
		return StatusFailedOutput, "", err
	}

	path := OutputPath(rs.stubDir, name)
	var buf bytes.Buffer
	if err := WriteHeader(&buf, name, rs.firmwareID, rs.opts.Profile, d.Version); err != nil {
		return StatusFailedOutput, "", errors.Wrap(errors.ErrCodeOutputIO, err, "header %s", name)
	}
	buf.Write(body)
	if err := writeFileAtomic(path, buf.Bytes()); err != nil {
		d.Logger.Error("write failed", "module", name, "file", path, "err", err)
		return StatusFailedOutput, "", err
	}

	d.Logger.Info("stub module", "module", name, "file", path)
	return StatusSucceeded, path, nil
}

// cacheFilters lists the emitter state a stub body depends on besides the
// module itself.
func (d *Driver) cacheFilters() []string {
	var filters []string
	for _, n := range d.Emitter.DeniedNames() {
		filters = append(filters, "deny:"+n)
	}
	for _, n := range d.Emitter.Classifier.TrackedNames() {
		filters = append(filters, "track:"+n)
	}
	return filters
}

// body emits the stub body of mod, or reuses a cached body when the module
// carries a digest.
func (d *Driver) body(ctx context.Context, mod object.Object, name string, rs *runState) ([]byte, error) {
	var key string
	if dg, ok := mod.(object.Digester); ok && dg.Digest() != "" {
		key = d.Keyer.StubKey(rs.firmwareID, name, dg.Digest(), rs.opts.MaxClassLevel, d.cacheFilters()...)
		data, hit, err := d.Cache.Get(ctx, key)
		if err != nil {
			d.Logger.Warn("cache read failed", "module", name, "err", err)
		}
		if hit {
			observability.Cache().OnCacheHit(ctx, "stub")
			rs.stats.CacheHits++
			d.Logger.Debug("cache hit", "module", name)
			return data, nil
		}
		observability.Cache().OnCacheMiss(ctx, "stub")
	}

	var buf bytes.Buffer
	err := d.Guard.Wrap(ctx, "emit", func() error {
		st, err := d.Emitter.EmitModule(ctx, &buf, mod, name)
		rs.stats.Emit.Add(st)
		return err
	})
	if err != nil {
		return nil, err
	}

	if key != "" {
		if err := d.Cache.Set(ctx, key, buf.Bytes(), d.CacheTTL); err != nil {
			d.Logger.Warn("cache write failed", "module", name, "err", err)
		} else {
			observability.Cache().OnCacheSet(ctx, "stub", buf.Len())
		}
	}
	return buf.Bytes(), nil
}

// release unloads a module unless the stubber depends on it, then
// collects.
func (d *Driver) release(ctx context.Context, name string, rs *runState) {
	if !rs.keepLoaded[name] {
		if err := d.Runtime.Unload(name); err != nil {
			d.Logger.Debug("could not unload", "module", name, "err", err)
		}
	}
	d.Guard.Checkpoint(ctx, "module")
}

// manifest lists every succeeded module in the progress log, including
// results of earlier runs.
func (d *Driver) manifest(pl *ProgressLog, rs *runState) *Manifest {
	m := &Manifest{
		Firmware: rs.opts.Profile,
		Stubber:  StubberInfo{Version: d.Version},
		StubType: StubTypeFirmware,
		RunID:    uuid.NewString(),
		Modules:  []ManifestEntry{},
	}
	for _, e := range pl.Entries() {
		if e.Status != StatusSucceeded {
			continue
		}
		file := e.File
		if file == "" {
			file = OutputPath(rs.stubDir, e.Module)
		}
		m.Modules = append(m.Modules, ManifestEntry{
			Module: NormalizeModuleName(e.Module),
			File:   filepath.ToSlash(file),
		})
	}
	return m
}

func toSet(items []string) map[string]bool {
	m := make(map[string]bool, len(items))
	for _, s := range items {
		m[s] = true
	}
	return m
}
