// Package oleaut models the automation subsystem's primitive call surface
// as an injected capability.
//
// The core packages (variant, safearray) never reimplement coercion,
// arithmetic or array semantics; they call the process Platform:
//
//	p := oleaut.Default()
//	out, err := p.Convert(ole.VTI4, &raw)
//
// Two providers exist. The emulator is a pure-Go, in-process
// implementation backed by handle tables; it is the default off Windows
// and the fixture for tests. On Windows the default binds oleaut32
// directly, so handles are real BSTR/IUnknown/SAFEARRAY pointers and the
// foreign routines are authoritative.
//
// A different locale-aware formatting service can be substituted with
// SetDefault without touching the dispatch logic of the core.
package oleaut
