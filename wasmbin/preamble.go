package wasmbin

import (
	"io"

	"github.com/bvisness/wasmgc/internal/wasmerr"
)

var magic = []byte{0x00, 'a', 's', 'm'}
var moduleVersion = []byte{0x01, 0x00, 0x00, 0x00}
var componentVersion = []byte{0x0d, 0x00, 0x01, 0x00}

// Preamble distinguishes a core Wasm module from a component.
type Preamble int

const (
	ModulePreamble Preamble = iota
	ComponentPreamble
)

// ReadPreamble recognizes the module preamble (`\0asm 01 00 00 00`) or the
// component preamble (`\0asm 0d 00 01 00`), failing MalformedMagic /
// MalformedVersion otherwise (spec.md §4.6).
func ReadPreamble(r io.Reader) (Preamble, error) {
	p := NewReader(r)
	if err := p.Expect("magic number", magic); err != nil {
		return 0, wasmerr.New(wasmerr.MalformedMagic, "%v", err)
	}
	version, err := p.ReadN("version number", 4)
	if err != nil {
		return 0, wasmerr.New(wasmerr.MalformedVersion, "%v", err)
	}
	switch {
	case bytesEqual(version, moduleVersion):
		return ModulePreamble, nil
	case bytesEqual(version, componentVersion):
		return ComponentPreamble, nil
	default:
		return 0, wasmerr.New(wasmerr.MalformedVersion, "unrecognized version bytes %x", version)
	}
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
