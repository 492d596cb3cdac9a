package variant

import (
	"github.com/uiabridge/olevariant/errors"
	"github.com/uiabridge/olevariant/ole"
	"github.com/uiabridge/olevariant/oleaut"
)

// convertSources is the coercion source set: the tags the typed getters
// accept. Notably VT_UNKNOWN is absent; only dispatch objects coerce,
// through their default property.
var convertSources = map[ole.VT]bool{
	ole.VTBool:     true,
	ole.VTCurrency: true,
	ole.VTDate:     true,
	ole.VTDecimal:  true,
	ole.VTDispatch: true,
	ole.VTI1:       true,
	ole.VTI2:       true,
	ole.VTI4:       true,
	ole.VTInt:      true,
	ole.VTI8:       true,
	ole.VTR4:       true,
	ole.VTR8:       true,
	ole.VTBstr:     true,
	ole.VTLPWStr:   true,
	ole.VTLPStr:    true,
	ole.VTUI1:      true,
	ole.VTUI2:      true,
	ole.VTUI4:      true,
	ole.VTUInt:     true,
	ole.VTUI8:      true,
}

func (v *Variant) convert(dst ole.VT, goType string) (ole.Raw, error) {
	if !convertSources[v.raw.Tag] {
		return ole.Raw{}, errors.TypeError(errors.PhaseConvert, v.raw.Tag.String(), goType)
	}
	return oleaut.Default().Convert(dst, &v.raw)
}

// Bool coerces the variant to a boolean.
func (v *Variant) Bool() (bool, error) {
	if v.raw.Tag == ole.VTBool {
		return v.raw.Bool() != 0, nil
	}
	out, err := v.convert(ole.VTBool, "bool")
	if err != nil {
		return false, err
	}
	return out.Bool() != 0, nil
}

// Int8 coerces the variant to an 8-bit signed integer.
func (v *Variant) Int8() (int8, error) {
	if v.raw.Tag == ole.VTI1 {
		return v.raw.I1(), nil
	}
	out, err := v.convert(ole.VTI1, "int8")
	if err != nil {
		return 0, err
	}
	return out.I1(), nil
}

// Int16 coerces the variant to a 16-bit signed integer.
func (v *Variant) Int16() (int16, error) {
	if v.raw.Tag == ole.VTI2 {
		return v.raw.I2(), nil
	}
	out, err := v.convert(ole.VTI2, "int16")
	if err != nil {
		return 0, err
	}
	return out.I2(), nil
}

// Int32 coerces the variant to a 32-bit signed integer.
func (v *Variant) Int32() (int32, error) {
	if v.raw.Tag == ole.VTI4 || v.raw.Tag == ole.VTInt {
		return v.raw.I4(), nil
	}
	out, err := v.convert(ole.VTI4, "int32")
	if err != nil {
		return 0, err
	}
	return out.I4(), nil
}

// Int64 coerces the variant to a 64-bit signed integer. 32-bit integer
// payloads widen directly without a platform round trip.
func (v *Variant) Int64() (int64, error) {
	switch v.raw.Tag {
	case ole.VTI8:
		return v.raw.I8(), nil
	case ole.VTI4, ole.VTInt:
		return int64(v.raw.I4()), nil
	}
	out, err := v.convert(ole.VTI8, "int64")
	if err != nil {
		return 0, err
	}
	return out.I8(), nil
}

// Uint8 coerces the variant to an 8-bit unsigned integer.
func (v *Variant) Uint8() (uint8, error) {
	if v.raw.Tag == ole.VTUI1 {
		return v.raw.UI1(), nil
	}
	out, err := v.convert(ole.VTUI1, "uint8")
	if err != nil {
		return 0, err
	}
	return out.UI1(), nil
}

// Uint16 coerces the variant to a 16-bit unsigned integer.
func (v *Variant) Uint16() (uint16, error) {
	if v.raw.Tag == ole.VTUI2 {
		return v.raw.UI2(), nil
	}
	out, err := v.convert(ole.VTUI2, "uint16")
	if err != nil {
		return 0, err
	}
	return out.UI2(), nil
}

// Uint32 coerces the variant to a 32-bit unsigned integer.
func (v *Variant) Uint32() (uint32, error) {
	if v.raw.Tag == ole.VTUI4 || v.raw.Tag == ole.VTUInt {
		return v.raw.UI4(), nil
	}
	out, err := v.convert(ole.VTUI4, "uint32")
	if err != nil {
		return 0, err
	}
	return out.UI4(), nil
}

// Uint64 coerces the variant to a 64-bit unsigned integer. A 32-bit
// signed payload converts by direct cast, so negative values wrap
// instead of overflowing; that oddity is part of the contract.
func (v *Variant) Uint64() (uint64, error) {
	switch v.raw.Tag {
	case ole.VTUI8:
		return v.raw.UI8(), nil
	case ole.VTI4, ole.VTInt:
		return uint64(int64(v.raw.I4())), nil
	}
	out, err := v.convert(ole.VTUI8, "uint64")
	if err != nil {
		return 0, err
	}
	return out.UI8(), nil
}

// Float32 coerces the variant to a 32-bit float.
func (v *Variant) Float32() (float32, error) {
	if v.raw.Tag == ole.VTR4 {
		return v.raw.R4(), nil
	}
	out, err := v.convert(ole.VTR4, "float32")
	if err != nil {
		return 0, err
	}
	return out.R4(), nil
}

// Float64 coerces the variant to a 64-bit float.
func (v *Variant) Float64() (float64, error) {
	if v.raw.Tag == ole.VTR8 {
		return v.raw.R8(), nil
	}
	out, err := v.convert(ole.VTR8, "float64")
	if err != nil {
		return 0, err
	}
	return out.R8(), nil
}

// ToString coerces the variant to a string. String payloads read
// directly; everything else formats through the platform. The
// intermediate allocation is released before returning.
func (v *Variant) ToString() (string, error) {
	if v.IsString() {
		return v.GetString()
	}
	out, err := v.convert(ole.VTBstr, "string")
	if err != nil {
		return "", err
	}
	p := oleaut.Default()
	s, err := p.StringValue(out.Handle())
	p.FreeString(out.Handle())
	return s, err
}
