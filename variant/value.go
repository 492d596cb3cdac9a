package variant

import (
	"fmt"

	"github.com/uiabridge/olevariant/ole"
	"github.com/uiabridge/olevariant/safearray"
)

// Value is the structural view of a variant: exactly one case per tag.
type Value interface {
	fmt.Stringer
	isValue()
}

// Empty is the VT_EMPTY case.
type Empty struct{}

// Null is the VT_NULL case.
type Null struct{}

// Void is the VT_VOID case.
type Void struct{}

// I1 is an 8-bit signed integer.
type I1 struct{ Value int8 }

// I2 is a 16-bit signed integer.
type I2 struct{ Value int16 }

// I4 is a 32-bit signed integer.
type I4 struct{ Value int32 }

// I8 is a 64-bit signed integer.
type I8 struct{ Value int64 }

// Int is the platform-int alias of I4; it round-trips with its own tag.
type Int struct{ Value int32 }

// UI1 is an 8-bit unsigned integer.
type UI1 struct{ Value uint8 }

// UI2 is a 16-bit unsigned integer.
type UI2 struct{ Value uint16 }

// UI4 is a 32-bit unsigned integer.
type UI4 struct{ Value uint32 }

// UI8 is a 64-bit unsigned integer.
type UI8 struct{ Value uint64 }

// UInt is the platform-uint alias of UI4.
type UInt struct{ Value uint32 }

// R4 is a 32-bit float.
type R4 struct{ Value float32 }

// R8 is a 64-bit float.
type R8 struct{ Value float64 }

// Currency is a CY value: a 64-bit integer scaled by 1e4.
type Currency struct{ Value int64 }

// Date is an automation DATE: days since 1899-12-30.
type Date struct{ Value float64 }

// String is a text value.
type String struct{ Value string }

// Unknown holds an IUnknown-style object reference.
type Unknown struct{ Handle ole.Handle }

// Dispatch holds an IDispatch-style object reference.
type Dispatch struct{ Handle ole.Handle }

// Scode is the VT_ERROR case: a status code carried as data.
type Scode struct{ Value ole.HResult }

// HResult is the VT_HRESULT case. Decoding a VT_ERROR variant also
// yields this case.
type HResult struct{ Value ole.HResult }

// Bool is a boolean value.
type Bool struct{ Value bool }

// Nested wraps another variant.
type Nested struct{ Value *Variant }

// Decimal is a DECIMAL scalar.
type Decimal struct{ Value ole.Decimal }

// SafeArray holds an array. Building a variant from it transfers the
// array's ownership into the variant.
type SafeArray struct{ Array *safearray.Array }

// Array is the alternate array case; it encodes identically to
// SafeArray.
type Array struct{ Array *safearray.Array }

func (Empty) isValue()     {}
func (Null) isValue()      {}
func (Void) isValue()      {}
func (I1) isValue()        {}
func (I2) isValue()        {}
func (I4) isValue()        {}
func (I8) isValue()        {}
func (Int) isValue()       {}
func (UI1) isValue()       {}
func (UI2) isValue()       {}
func (UI4) isValue()       {}
func (UI8) isValue()       {}
func (UInt) isValue()      {}
func (R4) isValue()        {}
func (R8) isValue()        {}
func (Currency) isValue()  {}
func (Date) isValue()      {}
func (String) isValue()    {}
func (Unknown) isValue()   {}
func (Dispatch) isValue()  {}
func (Scode) isValue()     {}
func (HResult) isValue()   {}
func (Bool) isValue()      {}
func (Nested) isValue()    {}
func (Decimal) isValue()   {}
func (SafeArray) isValue() {}
func (Array) isValue()     {}

func (Empty) String() string      { return "EMPTY" }
func (Null) String() string       { return "NULL" }
func (Void) String() string       { return "VOID" }
func (v I1) String() string       { return fmt.Sprintf("I1(%d)", v.Value) }
func (v I2) String() string       { return fmt.Sprintf("I2(%d)", v.Value) }
func (v I4) String() string       { return fmt.Sprintf("I4(%d)", v.Value) }
func (v I8) String() string       { return fmt.Sprintf("I8(%d)", v.Value) }
func (v Int) String() string      { return fmt.Sprintf("INT(%d)", v.Value) }
func (v UI1) String() string      { return fmt.Sprintf("UI1(%d)", v.Value) }
func (v UI2) String() string      { return fmt.Sprintf("UI2(%d)", v.Value) }
func (v UI4) String() string      { return fmt.Sprintf("UI4(%d)", v.Value) }
func (v UI8) String() string      { return fmt.Sprintf("UI8(%d)", v.Value) }
func (v UInt) String() string     { return fmt.Sprintf("UINT(%d)", v.Value) }
func (v R4) String() string       { return fmt.Sprintf("R4(%v)", v.Value) }
func (v R8) String() string       { return fmt.Sprintf("R8(%v)", v.Value) }
func (v Currency) String() string { return fmt.Sprintf("CY(%d)", v.Value) }
func (v Date) String() string     { return fmt.Sprintf("DATE(%v)", v.Value) }
func (v String) String() string   { return fmt.Sprintf("STRING(%s)", v.Value) }
func (Unknown) String() string    { return "UNKNOWN" }
func (Dispatch) String() string   { return "DISPATCH" }
func (v Scode) String() string    { return fmt.Sprintf("ERROR(%d)", int32(v.Value)) }
func (v HResult) String() string  { return fmt.Sprintf("HRESULT(%d)", int32(v.Value)) }
func (v Bool) String() string     { return fmt.Sprintf("BOOL(%t)", v.Value) }
func (v Nested) String() string   { return fmt.Sprintf("VARIANT(%s)", v.Value) }
func (Decimal) String() string    { return "DECIMAL" }
func (v SafeArray) String() string {
	return fmt.Sprintf("SAFEARRAY(%s)", v.Array)
}
func (v Array) String() string {
	return fmt.Sprintf("ARRAY(%s)", v.Array)
}
