package olevariant

import (
	"github.com/uiabridge/olevariant/ole"
	"github.com/uiabridge/olevariant/safearray"
	"github.com/uiabridge/olevariant/variant"
)

// Core aliases so callers can work with the library through a single
// import when they do not need the sub-package surface.

// Variant is the dynamic tagged value.
type Variant = variant.Variant

// Value is the structural view of a variant.
type Value = variant.Value

// Array is a SAFEARRAY handle with explicit ownership.
type Array = safearray.Array

// VT is the 16-bit tag selecting a variant's payload interpretation.
type VT = ole.VT

// Handle is an opaque reference owned by the automation subsystem.
type Handle = ole.Handle

// HResult is a foreign 32-bit status code.
type HResult = ole.HResult

// New builds a variant from a plain Go value.
func New(v any) (Variant, error) {
	return variant.New(v)
}

// FromValue builds a variant from its structural view.
func FromValue(v Value) (Variant, error) {
	return variant.FromValue(v)
}
