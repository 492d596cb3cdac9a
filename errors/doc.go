// Package errors provides structured error types for the olevariant library.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error
// category). The Kind set mirrors the taxonomy of the automation boundary:
// type errors, null reference handles, and failures reported by the external
// subsystem (which carry the foreign HRESULT verbatim).
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseConvert, errors.KindType).
//		VarType("VT_SAFEARRAY").
//		GoType("int32").
//		Detail("array variants have no numeric coercion").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.TypeError(errors.PhaseConvert, "VT_SAFEARRAY", "int32")
//	err := errors.External(errors.PhaseArith, hresult, "VarDiv")
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
