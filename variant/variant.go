package variant

import (
	"fmt"

	"github.com/uiabridge/olevariant/errors"
	"github.com/uiabridge/olevariant/ole"
	"github.com/uiabridge/olevariant/oleaut"
	"github.com/uiabridge/olevariant/safearray"
)

// Variant owns a raw 24-byte encoding and the external resource its tag
// selects. The zero Variant is VT_EMPTY and safe to use.
type Variant struct {
	raw ole.Raw
}

// FromRaw adopts a raw encoding, including ownership of whatever its
// payload references.
func FromRaw(raw ole.Raw) Variant {
	return Variant{raw: raw}
}

// FromValue builds a variant from its structural view.
//
// Reference cases transfer ownership into the variant: Unknown and
// Dispatch hand over the caller's object reference, SafeArray and Array
// take the array's ownership, and Nested consumes the inner variant.
func FromValue(v Value) (Variant, error) {
	p := oleaut.Default()

	switch val := v.(type) {
	case Empty:
		return Variant{raw: ole.NewRaw(ole.VTEmpty)}, nil
	case Null:
		return Variant{raw: ole.NewRaw(ole.VTNull)}, nil
	case Void:
		return Variant{raw: ole.NewRaw(ole.VTVoid)}, nil
	case I1:
		raw := ole.NewRaw(ole.VTI1)
		raw.SetI1(val.Value)
		return Variant{raw: raw}, nil
	case I2:
		raw := ole.NewRaw(ole.VTI2)
		raw.SetI2(val.Value)
		return Variant{raw: raw}, nil
	case I4:
		raw := ole.NewRaw(ole.VTI4)
		raw.SetI4(val.Value)
		return Variant{raw: raw}, nil
	case I8:
		raw := ole.NewRaw(ole.VTI8)
		raw.SetI8(val.Value)
		return Variant{raw: raw}, nil
	case Int:
		raw := ole.NewRaw(ole.VTInt)
		raw.SetI4(val.Value)
		return Variant{raw: raw}, nil
	case UI1:
		raw := ole.NewRaw(ole.VTUI1)
		raw.SetUI1(val.Value)
		return Variant{raw: raw}, nil
	case UI2:
		raw := ole.NewRaw(ole.VTUI2)
		raw.SetUI2(val.Value)
		return Variant{raw: raw}, nil
	case UI4:
		raw := ole.NewRaw(ole.VTUI4)
		raw.SetUI4(val.Value)
		return Variant{raw: raw}, nil
	case UI8:
		raw := ole.NewRaw(ole.VTUI8)
		raw.SetUI8(val.Value)
		return Variant{raw: raw}, nil
	case UInt:
		raw := ole.NewRaw(ole.VTUInt)
		raw.SetUI4(val.Value)
		return Variant{raw: raw}, nil
	case R4:
		raw := ole.NewRaw(ole.VTR4)
		raw.SetR4(val.Value)
		return Variant{raw: raw}, nil
	case R8:
		raw := ole.NewRaw(ole.VTR8)
		raw.SetR8(val.Value)
		return Variant{raw: raw}, nil
	case Currency:
		raw := ole.NewRaw(ole.VTCurrency)
		raw.SetCurrency(val.Value)
		return Variant{raw: raw}, nil
	case Date:
		raw := ole.NewRaw(ole.VTDate)
		raw.SetDate(val.Value)
		return Variant{raw: raw}, nil
	case String:
		h, err := p.AllocString(val.Value)
		if err != nil {
			return Variant{}, err
		}
		raw := ole.NewRaw(ole.VTBstr)
		raw.SetHandle(h)
		return Variant{raw: raw}, nil
	case Unknown:
		raw := ole.NewRaw(ole.VTUnknown)
		raw.SetHandle(val.Handle)
		return Variant{raw: raw}, nil
	case Dispatch:
		raw := ole.NewRaw(ole.VTDispatch)
		raw.SetHandle(val.Handle)
		return Variant{raw: raw}, nil
	case Scode:
		raw := ole.NewRaw(ole.VTError)
		raw.SetHResult(val.Value)
		return Variant{raw: raw}, nil
	case HResult:
		raw := ole.NewRaw(ole.VTHResult)
		raw.SetHResult(val.Value)
		return Variant{raw: raw}, nil
	case Bool:
		raw := ole.NewRaw(ole.VTBool)
		if val.Value {
			raw.SetBool(ole.VariantTrue)
		} else {
			raw.SetBool(ole.VariantFalse)
		}
		return Variant{raw: raw}, nil
	case Nested:
		if val.Value == nil {
			return Variant{}, errors.NullPointer(errors.PhaseDecode, "nil nested variant")
		}
		h, err := p.AllocVariant(val.Value.raw)
		if err != nil {
			return Variant{}, err
		}
		// ownership moved into the slot
		val.Value.raw = ole.Raw{}
		raw := ole.NewRaw(ole.VTVariant)
		raw.SetHandle(h)
		return Variant{raw: raw}, nil
	case Decimal:
		h, err := p.AllocDecimal(val.Value)
		if err != nil {
			return Variant{}, err
		}
		raw := ole.NewRaw(ole.VTDecimal)
		raw.SetHandle(h)
		return Variant{raw: raw}, nil
	case SafeArray:
		return fromArray(val.Array)
	case Array:
		return fromArray(val.Array)
	default:
		return Variant{}, errors.TypeError(errors.PhaseDecode, "", fmt.Sprintf("%T", v))
	}
}

// fromArray encodes either array case with the VT_SAFEARRAY tag; the two
// cases are aliases on the wire.
func fromArray(a *safearray.Array) (Variant, error) {
	if a == nil {
		return Variant{}, errors.NullPointer(errors.PhaseDecode, "nil array")
	}
	raw := ole.NewRaw(ole.VTSafeArray)
	raw.SetHandle(a.Transfer())
	return Variant{raw: raw}, nil
}

// New builds a variant from a plain Go value. Untyped ints encode as
// VT_I8 and untyped uints as VT_UI8; use FromValue for a specific tag.
func New(v any) (Variant, error) {
	switch val := v.(type) {
	case nil:
		return FromValue(Null{})
	case Value:
		return FromValue(val)
	case bool:
		return FromValue(Bool{Value: val})
	case int8:
		return FromValue(I1{Value: val})
	case int16:
		return FromValue(I2{Value: val})
	case int32:
		return FromValue(I4{Value: val})
	case int64:
		return FromValue(I8{Value: val})
	case int:
		return FromValue(I8{Value: int64(val)})
	case uint8:
		return FromValue(UI1{Value: val})
	case uint16:
		return FromValue(UI2{Value: val})
	case uint32:
		return FromValue(UI4{Value: val})
	case uint64:
		return FromValue(UI8{Value: val})
	case uint:
		return FromValue(UI8{Value: uint64(val)})
	case float32:
		return FromValue(R4{Value: val})
	case float64:
		return FromValue(R8{Value: val})
	case string:
		return FromValue(String{Value: val})
	case ole.HResult:
		return FromValue(HResult{Value: val})
	case ole.Decimal:
		return FromValue(Decimal{Value: val})
	case *safearray.Array:
		return FromValue(SafeArray{Array: val})
	default:
		return Variant{}, errors.TypeError(errors.PhaseDecode, "", fmt.Sprintf("%T", v))
	}
}

// Type reports the variant's tag.
func (v *Variant) Type() ole.VT {
	return v.raw.Tag
}

// Raw returns a copy of the raw encoding without transferring ownership.
func (v *Variant) Raw() ole.Raw {
	return v.raw
}

// IsNull reports whether the tag is VT_EMPTY, VT_NULL or VT_VOID.
func (v *Variant) IsNull() bool {
	return v.raw.Tag == ole.VTEmpty || v.raw.Tag == ole.VTNull || v.raw.Tag == ole.VTVoid
}

// IsString reports whether the tag is one of the string tags.
func (v *Variant) IsString() bool {
	return v.raw.Tag.IsString()
}

// IsArray reports whether the tag is one of the two array tags.
func (v *Variant) IsArray() bool {
	return v.raw.Tag.IsArray()
}

// GetString reads the string payload. Non-string tags are a type error;
// use ToString for coercion.
func (v *Variant) GetString() (string, error) {
	if !v.IsString() {
		return "", errors.TypeError(errors.PhaseDecode, v.raw.Tag.String(), "string")
	}
	return oleaut.Default().StringValue(v.raw.Handle())
}

// GetArray returns a borrowed view of the array payload. The variant
// keeps ownership.
func (v *Variant) GetArray() (*safearray.Array, error) {
	if !v.IsArray() {
		return nil, errors.TypeError(errors.PhaseDecode, v.raw.Tag.String(), "array")
	}
	return safearray.FromHandle(v.raw.Handle(), false), nil
}

// Value decomposes the variant into its structural view without giving
// up ownership: strings are copied out, objects gain a reference, nested
// variants are cloned and arrays come back borrowed. A null object
// reference decodes as Null.
func (v *Variant) Value() (Value, error) {
	p := oleaut.Default()

	switch v.raw.Tag {
	case ole.VTEmpty:
		return Empty{}, nil
	case ole.VTNull:
		return Null{}, nil
	case ole.VTVoid:
		return Void{}, nil
	case ole.VTI1:
		return I1{Value: v.raw.I1()}, nil
	case ole.VTI2:
		return I2{Value: v.raw.I2()}, nil
	case ole.VTI4:
		return I4{Value: v.raw.I4()}, nil
	case ole.VTI8:
		return I8{Value: v.raw.I8()}, nil
	case ole.VTInt:
		return Int{Value: v.raw.I4()}, nil
	case ole.VTUI1:
		return UI1{Value: v.raw.UI1()}, nil
	case ole.VTUI2:
		return UI2{Value: v.raw.UI2()}, nil
	case ole.VTUI4:
		return UI4{Value: v.raw.UI4()}, nil
	case ole.VTUI8:
		return UI8{Value: v.raw.UI8()}, nil
	case ole.VTUInt:
		return UInt{Value: v.raw.UI4()}, nil
	case ole.VTR4:
		return R4{Value: v.raw.R4()}, nil
	case ole.VTR8:
		return R8{Value: v.raw.R8()}, nil
	case ole.VTCurrency:
		return Currency{Value: v.raw.Currency()}, nil
	case ole.VTDate:
		return Date{Value: v.raw.Date()}, nil
	case ole.VTBstr, ole.VTLPWStr, ole.VTLPStr:
		s, err := p.StringValue(v.raw.Handle())
		if err != nil {
			return nil, err
		}
		return String{Value: s}, nil
	case ole.VTUnknown:
		h := v.raw.Handle()
		if h == 0 {
			return Null{}, nil
		}
		if err := p.AddRef(h); err != nil {
			return nil, err
		}
		return Unknown{Handle: h}, nil
	case ole.VTDispatch:
		h := v.raw.Handle()
		if h == 0 {
			return Null{}, nil
		}
		if err := p.AddRef(h); err != nil {
			return nil, err
		}
		return Dispatch{Handle: h}, nil
	case ole.VTError, ole.VTHResult:
		return HResult{Value: v.raw.HResult()}, nil
	case ole.VTBool:
		return Bool{Value: v.raw.Bool() != 0}, nil
	case ole.VTVariant:
		nested, err := p.VariantValue(v.raw.Handle())
		if err != nil {
			return nil, err
		}
		inner := Variant{raw: nested}
		clone, err := inner.Clone()
		if err != nil {
			return nil, err
		}
		return Nested{Value: &clone}, nil
	case ole.VTDecimal:
		d, err := p.DecimalValue(v.raw.Handle())
		if err != nil {
			return nil, err
		}
		return Decimal{Value: d}, nil
	case ole.VTSafeArray, ole.VTArray:
		return SafeArray{Array: safearray.FromHandle(v.raw.Handle(), false)}, nil
	default:
		return nil, errors.TypeError(errors.PhaseDecode, v.raw.Tag.String(), "Value")
	}
}

// Clone deep-copies the variant and everything it owns.
func (v *Variant) Clone() (Variant, error) {
	p := oleaut.Default()

	switch {
	case v.raw.Tag.IsString():
		h, err := p.CopyString(v.raw.Handle())
		if err != nil {
			return Variant{}, err
		}
		raw := v.raw
		raw.SetHandle(h)
		return Variant{raw: raw}, nil
	case v.raw.Tag.IsReference():
		if h := v.raw.Handle(); h != 0 {
			if err := p.AddRef(h); err != nil {
				return Variant{}, err
			}
		}
		return Variant{raw: v.raw}, nil
	case v.raw.Tag == ole.VTVariant:
		nested, err := p.VariantValue(v.raw.Handle())
		if err != nil {
			return Variant{}, err
		}
		inner := Variant{raw: nested}
		clone, err := inner.Clone()
		if err != nil {
			return Variant{}, err
		}
		h, err := p.AllocVariant(clone.raw)
		if err != nil {
			clone.Close()
			return Variant{}, err
		}
		raw := ole.NewRaw(ole.VTVariant)
		raw.SetHandle(h)
		return Variant{raw: raw}, nil
	case v.raw.Tag == ole.VTDecimal:
		h, err := p.CopyDecimal(v.raw.Handle())
		if err != nil {
			return Variant{}, err
		}
		raw := ole.NewRaw(ole.VTDecimal)
		raw.SetHandle(h)
		return Variant{raw: raw}, nil
	case v.raw.Tag.IsArray():
		h, err := p.CopyArray(v.raw.Handle())
		if err != nil {
			return Variant{}, err
		}
		raw := v.raw
		raw.SetHandle(h)
		return Variant{raw: raw}, nil
	default:
		return Variant{raw: v.raw}, nil
	}
}

// Close releases the resources the variant owns and resets it to
// VT_EMPTY. Close is idempotent.
func (v *Variant) Close() error {
	p := oleaut.Default()

	switch {
	case v.raw.Tag.IsString():
		p.FreeString(v.raw.Handle())
	case v.raw.Tag.IsReference():
		p.Release(v.raw.Handle())
	case v.raw.Tag == ole.VTVariant:
		if h := v.raw.Handle(); h != 0 {
			nested, err := p.VariantValue(h)
			if err == nil {
				inner := Variant{raw: nested}
				inner.Close()
			}
			p.FreeVariant(h)
		}
	case v.raw.Tag == ole.VTDecimal:
		p.FreeDecimal(v.raw.Handle())
	case v.raw.Tag.IsArray():
		if h := v.raw.Handle(); h != 0 {
			if err := p.DestroyArray(h); err != nil {
				return err
			}
		}
	}
	v.raw = ole.Raw{}
	return nil
}

// String renders the variant as its structural view; variants that
// cannot be decoded render as "<invalid>".
func (v *Variant) String() string {
	val, err := v.Value()
	if err != nil {
		return "<invalid>"
	}
	return val.String()
}
