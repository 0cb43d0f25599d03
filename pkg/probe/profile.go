package probe

import (
	"strings"

	"github.com/samskiter/micropython-stubber/pkg/object"
)

// Profile describes the runtime identity. It is derived once per run.
type Profile struct {
	Family  string `json:"family" yaml:"family"`
	Version string `json:"version" yaml:"version"`
	Build   string `json:"build" yaml:"build"`
	Ver     string `json:"ver" yaml:"ver"`
	Port    string `json:"port" yaml:"port"`
	Board   string `json:"board" yaml:"board"`
	CPU     string `json:"cpu" yaml:"cpu"`
	MPY     string `json:"mpy" yaml:"mpy"`
	Arch    string `json:"arch" yaml:"arch"`
	Release string `json:"release,omitempty" yaml:"release,omitempty"`
}

// FirmwareID names the firmware: family-ver-port-board for micropython,
// family-ver-port for other families.
func (p Profile) FirmwareID() string {
	if p.Family == "micropython" {
		return p.Family + "-" + p.Ver + "-" + p.Port + "-" + p.Board
	}
	return p.Family + "-" + p.Ver + "-" + p.Port
}

// PyRepr renders the profile as a Python dict literal for stub headers.
func (p Profile) PyRepr() string {
	fields := [][2]string{
		{"family", p.Family},
		{"version", p.Version},
		{"build", p.Build},
		{"ver", p.Ver},
		{"port", p.Port},
		{"board", p.Board},
		{"cpu", p.CPU},
		{"mpy", p.MPY},
		{"arch", p.Arch},
	}
	if p.Release != "" {
		fields = append(fields, [2]string{"release", p.Release})
	}
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = object.Quote(f[0]) + ": " + object.Quote(f[1])
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
