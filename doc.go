// Package olevariant provides a Go implementation of the OLE automation
// VARIANT marshalling layer: a dynamic tagged value, the coercion matrix
// between tags and Go primitives, the variant operators, and SAFEARRAY
// handling with explicit ownership.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct
// responsibilities:
//
//	olevariant/          Root package re-exporting the core types
//	├── variant/         The tagged dynamic value, coercion and operators
//	├── safearray/       Owned/borrowed array handles and typed vectors
//	├── oleaut/          Platform primitives: emulator and oleaut32 binding
//	├── ole/             Wire-level types: tags, raw layout, status codes
//	└── errors/          Structured error types for debugging
//
// # Quick Start
//
// Build a variant, coerce it, release it:
//
//	v, err := variant.New("42")
//	if err != nil { ... }
//	defer v.Close()
//
//	n, err := v.Int32() // 42, via the platform's coercion matrix
//
// Arrays round-trip through typed vectors:
//
//	arr, err := safearray.FromVector(ole.VTI4, []int32{1, 2, 3})
//	if err != nil { ... }
//	va, err := variant.FromValue(variant.SafeArray{Array: arr})
//	defer va.Close() // destroys the array; ownership moved in
//
// Off Windows every operation runs against an in-process emulator whose
// handle tables make leaks and double frees observable; on Windows the
// same calls bind oleaut32 directly. See the oleaut package for
// substituting a platform or a locale.
package olevariant
