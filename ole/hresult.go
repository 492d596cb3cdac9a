package ole

import "fmt"

// HResult is a foreign 32-bit status code. Negative values are failures.
type HResult int32

// Status codes the marshalling layer traffics in. Values are the Windows
// constants, carried verbatim.
const (
	SOk               HResult = 0
	EPointer          HResult = -2147467261 // 0x80004003
	EInvalidArg       HResult = -2147024809 // 0x80070057
	EOutOfMemory      HResult = -2147024882 // 0x8007000E
	DispETypeMismatch HResult = -2147352571 // 0x80020005
	DispEBadVarType   HResult = -2147352568 // 0x80020008
	DispEOverflow     HResult = -2147352566 // 0x8002000A
	DispEDivByZero    HResult = -2147352558 // 0x80020012
	DispEBadIndex     HResult = -2147352565 // 0x8002000B
)

// Failed reports whether the status code denotes failure.
func (hr HResult) Failed() bool { return hr < 0 }

// String renders the code in the conventional hexadecimal form.
func (hr HResult) String() string {
	return fmt.Sprintf("0x%08X", uint32(hr))
}
