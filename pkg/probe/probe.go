// Package probe determines the identity of the runtime being stubbed.
//
// [Prober.Probe] is a pure query with a fallback at every step: any member
// that cannot be read leaves the corresponding [Profile] field at its
// default. Family is refined by a fixed list of heuristics, the version is
// normalised by a literal range rule, and the architecture is decoded from
// the compiled-format tag.
package probe

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/charmbracelet/log"

	"github.com/samskiter/micropython-stubber/pkg/errors"
	"github.com/samskiter/micropython-stubber/pkg/object"
)

// DefaultBoard is used when no board_info.csv entry matches.
const DefaultBoard = "GENERIC"

// archTable is indexed by mpy >> 10.
var archTable = []string{
	"", "x86", "x64", "armv6", "armv6m", "armv7m", "armv7em",
	"armv7emsp", "armv7emdp", "xtensa", "xtensawin",
}

// familyHeuristics are tried in order. The first module that imports and
// exposes the marker decides the family.
var familyHeuristics = []struct {
	family, module, marker string
}{
	{"pycopy", "pycopy", "const"},
	{"pycom", "pycom", "FAT"},
	{"ev3-pybricks", "pybricks.hubs", "EV3Brick"},
}

// dropPatchZero is the range in which micropython releases have no
// ".0" patch component.
var dropPatchZero = mustConstraint(">= 1.10.0, <= 1.19.9")

func mustConstraint(s string) *semver.Constraints {
	c, err := semver.NewConstraint(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Prober queries a runtime.
type Prober struct {
	Runtime   object.Runtime
	Logger    *log.Logger
	BoardDirs []string // directories searched for board_info.csv
}

// New creates a prober.
func New(rt object.Runtime, logger *log.Logger, boardDirs ...string) *Prober {
	if logger == nil {
		logger = log.Default()
	}
	return &Prober{Runtime: rt, Logger: logger, BoardDirs: boardDirs}
}

// Probe derives the runtime profile.
func (p *Prober) Probe() Profile {
	prof := Profile{Family: "unknown", Board: DefaultBoard}

	var sys, impl object.Object
	if s, err := p.Runtime.Import("sys"); err == nil {
		sys = s
		impl = attr(sys, "implementation")
	} else {
		p.Logger.Warn("sys not available", "err", err)
	}
	uname, unameErr := p.Runtime.Uname()

	if name, ok := object.StringValue(attr(impl, "name")); ok {
		prof.Family = name
	}
	platform, _ := object.StringValue(attr(sys, "platform"))
	prof.Port = platform
	if strings.HasPrefix(platform, "pyb") {
		prof.Port = "stm32"
	}
	if parts, ok := object.IntTuple(attr(impl, "version")); ok {
		prof.Version = joinInts(parts)
	}

	machine, ok := object.StringValue(attr(impl, "_machine"))
	if !ok && unameErr == nil {
		machine, ok = uname.Machine, true
	}
	if ok {
		prof.Board = strings.TrimSpace(machine)
		if _, after, found := strings.Cut(machine, "with"); found {
			prof.CPU = strings.TrimSpace(after)
		}
	}
	mpy, hasMPY := object.IntValue(attr(impl, "_mpy"))
	if !hasMPY {
		mpy, hasMPY = object.IntValue(attr(impl, "mpy"))
	}

	prof.Board = p.lookupBoard(prof.Board)

	if unameErr == nil {
		prof.Build = buildNumber(uname.Version)
		if prof.Build == "" {
			prof.Build = buildNumber(uname.Release)
		}
	}
	if prof.Build == "" {
		if v, ok := object.StringValue(attr(sys, "version")); ok {
			if _, after, found := strings.Cut(v, ";"); found {
				prof.Build = buildNumber(after)
			}
		}
	}
	// longer builds are commit hashes
	if len(prof.Build) > 5 {
		prof.Build = ""
	}

	if prof.Version == "" && platform != "unix" && platform != "win32" && unameErr == nil {
		prof.Version = uname.Release
	}

	for _, h := range familyHeuristics {
		if p.hasMarker(h.module, h.marker) {
			prof.Family = h.family
			break
		}
	}
	if prof.Family == "ev3-pybricks" {
		prof.Release = "2.0.0"
	}
	if prof.Family == "micropython" {
		prof.Version = NormalizeVersion(prof.Version)
	}

	if hasMPY {
		prof.Arch, prof.MPY = DecodeMPY(mpy)
	}
	prof.Ver = "v" + prof.Version
	if prof.Build != "" {
		prof.Ver += "-" + prof.Build
	}

	p.Logger.Info("probed runtime", "port", prof.Port, "board", prof.Board, "version", prof.Version)
	return prof
}

func (p *Prober) hasMarker(module, marker string) bool {
	mod, err := p.Runtime.Import(module)
	if err != nil {
		return false
	}
	defer func() { _ = p.Runtime.Unload(module) }()
	return object.HasMember(mod, marker)
}

// NormalizeVersion drops the ".0" patch component of releases between
// 1.10.0 and 1.19.9.
func NormalizeVersion(version string) string {
	if !strings.HasSuffix(version, ".0") {
		return version
	}
	v, err := semver.NewVersion(version)
	if err != nil || !dropPatchZero.Check(v) {
		return version
	}
	return strings.TrimSuffix(version, ".0")
}

// DecodeMPY splits sys.implementation._mpy into architecture and format
// version, e.g. 10757 is ("xtensawin", "v5.2").
func DecodeMPY(mpy int64) (arch, version string) {
	if idx := mpy >> 10; idx >= 0 && idx < int64(len(archTable)) {
		arch = archTable[idx]
	}
	return arch, fmt.Sprintf("v%d.%d", mpy&0xFF, mpy>>8&3)
}

// CheckSupported rejects firmware that cannot be stubbed.
func CheckSupported(u object.Uname) error {
	if u.Release == "1.13.0" && u.Version < "v1.13-103" {
		return errors.New(errors.ErrCodeUnsupported, "MicroPython 1.13.0 cannot be stubbed")
	}
	return nil
}

// buildNumber extracts "176" from "v1.19.1-176-g12345 on 2022-08-01".
func buildNumber(s string) string {
	if s == "" {
		return ""
	}
	s, _, _ = strings.Cut(s, " on ")
	_, after, found := strings.Cut(s, "-")
	if !found {
		return ""
	}
	build, _, _ := strings.Cut(after, "-")
	return build
}

func attr(o object.Object, name string) object.Object {
	if o == nil {
		return nil
	}
	v, err := o.Attr(name)
	if err != nil {
		return nil
	}
	return v
}

func joinInts(parts []int) string {
	s := make([]string, len(parts))
	for i, n := range parts {
		s[i] = strconv.Itoa(n)
	}
	return strings.Join(s, ".")
}
