package ole

import "fmt"

// VT is the 16-bit VARENUM discriminator selecting which payload
// interpretation of a variant is currently valid.
type VT uint16

const (
	VTEmpty     VT = 0
	VTNull      VT = 1
	VTI2        VT = 2
	VTI4        VT = 3
	VTR4        VT = 4
	VTR8        VT = 5
	VTCurrency  VT = 6
	VTDate      VT = 7
	VTBstr      VT = 8
	VTDispatch  VT = 9
	VTError     VT = 10
	VTBool      VT = 11
	VTVariant   VT = 12
	VTUnknown   VT = 13
	VTDecimal   VT = 14
	VTI1        VT = 16
	VTUI1       VT = 17
	VTUI2       VT = 18
	VTUI4       VT = 19
	VTI8        VT = 20
	VTUI8       VT = 21
	VTInt       VT = 22
	VTUInt      VT = 23
	VTVoid      VT = 24
	VTHResult   VT = 25
	VTPtr       VT = 26
	VTSafeArray VT = 27
	VTLPStr     VT = 30
	VTLPWStr    VT = 31
	VTArray     VT = 0x2000
)

// VARIANT_BOOL encoding: all bits set is true, zero is false.
const (
	VariantTrue  int16 = -1
	VariantFalse int16 = 0
)

var vtNames = map[VT]string{
	VTEmpty:     "VT_EMPTY",
	VTNull:      "VT_NULL",
	VTI2:        "VT_I2",
	VTI4:        "VT_I4",
	VTR4:        "VT_R4",
	VTR8:        "VT_R8",
	VTCurrency:  "VT_CY",
	VTDate:      "VT_DATE",
	VTBstr:      "VT_BSTR",
	VTDispatch:  "VT_DISPATCH",
	VTError:     "VT_ERROR",
	VTBool:      "VT_BOOL",
	VTVariant:   "VT_VARIANT",
	VTUnknown:   "VT_UNKNOWN",
	VTDecimal:   "VT_DECIMAL",
	VTI1:        "VT_I1",
	VTUI1:       "VT_UI1",
	VTUI2:       "VT_UI2",
	VTUI4:       "VT_UI4",
	VTI8:        "VT_I8",
	VTUI8:       "VT_UI8",
	VTInt:       "VT_INT",
	VTUInt:      "VT_UINT",
	VTVoid:      "VT_VOID",
	VTHResult:   "VT_HRESULT",
	VTPtr:       "VT_PTR",
	VTSafeArray: "VT_SAFEARRAY",
	VTLPStr:     "VT_LPSTR",
	VTLPWStr:    "VT_LPWSTR",
	VTArray:     "VT_ARRAY",
}

// String returns the canonical VARENUM spelling of the tag.
func (vt VT) String() string {
	if name, ok := vtNames[vt]; ok {
		return name
	}
	return fmt.Sprintf("VT(%d)", uint16(vt))
}

// IsString reports whether the tag is one of the three string
// representations.
func (vt VT) IsString() bool {
	return vt == VTBstr || vt == VTLPWStr || vt == VTLPStr
}

// IsArray reports whether the tag is one of the two array tags.
func (vt VT) IsArray() bool {
	return vt == VTSafeArray || vt == VTArray
}

// IsReference reports whether the tag holds a reference-counted object
// handle.
func (vt VT) IsReference() bool {
	return vt == VTDispatch || vt == VTUnknown
}
