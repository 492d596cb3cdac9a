package ole

// SizeOf reports the payload width in bytes of a scalar tag, or 0 for
// tags whose payload is a handle or that have no fixed scalar width.
func SizeOf(vt VT) int {
	switch vt {
	case VTI1, VTUI1:
		return 1
	case VTI2, VTUI2, VTBool:
		return 2
	case VTI4, VTUI4, VTInt, VTUInt, VTR4, VTError, VTHResult:
		return 4
	case VTI8, VTUI8, VTR8, VTCurrency, VTDate:
		return 8
	}
	return 0
}
