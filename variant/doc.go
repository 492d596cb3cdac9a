// Package variant implements the tagged dynamic value at the heart of
// the marshalling layer.
//
// A Variant owns a 24-byte raw encoding plus whatever external resource
// its tag selects (a string allocation, an object reference, a nested
// variant slot, a decimal, an array). Close releases exactly those
// resources; Clone duplicates them.
//
// Value is the structural view: a sum type with one case per tag, used
// to build variants (FromValue) and to decompose them (Variant.Value).
// Decomposition never transfers ownership out of the variant; strings
// are copied out, objects gain a reference and arrays come back as
// borrowed views.
//
// The typed getters (Bool, Int32, Float64, ToString and friends) run the
// platform's coercion matrix, so a VT_BSTR "42" converts to int 42 the
// same way the foreign subsystem would do it.
package variant
