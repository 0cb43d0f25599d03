package driver

import (
	"fmt"
	"io"

	"github.com/samskiter/micropython-stubber/pkg/probe"
)

// Preamble follows the header of every stub file.
const Preamble = "from typing import Any\nfrom _typeshed import Incomplete\n\n"

// WriteHeader writes the fixed header block and preamble of a stub file.
func WriteHeader(w io.Writer, module, firmwareID string, prof probe.Profile, version string) error {
	_, err := fmt.Fprintf(w, "\"\"\"\nModule: '%s' on %s\n\"\"\"\n# MCU: %s\n# Stubber: %s\n%s",
		module, firmwareID, prof.PyRepr(), version, Preamble)
	return err
}
