// Package ole defines the binary contract shared with the automation
// subsystem: the VARENUM tag set, the 24-byte VARIANT layout, opaque
// external handles, HRESULT status codes and the DECIMAL scalar.
//
// Nothing in this package calls the subsystem; it only pins down offsets,
// sizes and constants so that a Raw value can cross the interop boundary
// by plain memory copy. The call surface lives in package oleaut.
package ole
