package safearray

import (
	"fmt"
	"unsafe"

	"github.com/uiabridge/olevariant/errors"
	"github.com/uiabridge/olevariant/ole"
	"github.com/uiabridge/olevariant/oleaut"
)

// Scalar is the set of Go types that map onto fixed-width numeric array
// elements.
type Scalar interface {
	~int8 | ~int16 | ~int32 | ~int64 |
		~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

func goTypeName[T any]() string {
	var zero T
	return fmt.Sprintf("%T", zero)
}

// widthGuard rejects reads and writes where the Go type is wider or
// narrower than the element tag, which would silently corrupt values.
func widthGuard[T Scalar](vt ole.VT) error {
	var zero T
	if ole.SizeOf(vt) != int(unsafe.Sizeof(zero)) {
		return errors.TypeError(errors.PhaseArray, vt.String(), goTypeName[T]())
	}
	return nil
}

// Get reads the scalar element at index.
func Get[T Scalar](a *Array, index int32) (T, error) {
	var zero T
	vt, err := a.VarType()
	if err != nil {
		return zero, err
	}
	if err := widthGuard[T](vt); err != nil {
		return zero, err
	}
	el, err := oleaut.Default().GetElement(a.Handle(), index)
	if err != nil {
		return zero, err
	}
	return scalarOf[T](&el), nil
}

// Put writes the scalar element at index.
func Put[T Scalar](a *Array, index int32, v T) error {
	vt, err := a.VarType()
	if err != nil {
		return err
	}
	if err := widthGuard[T](vt); err != nil {
		return err
	}
	raw, err := rawOf(vt, v)
	if err != nil {
		return err
	}
	return oleaut.Default().PutElement(a.Handle(), index, &raw)
}

func scalarOf[T Scalar](el *ole.Raw) T {
	switch el.Tag {
	case ole.VTI1:
		return T(el.I1())
	case ole.VTI2:
		return T(el.I2())
	case ole.VTI4, ole.VTInt, ole.VTError, ole.VTHResult:
		return T(el.I4())
	case ole.VTI8, ole.VTCurrency:
		return T(el.I8())
	case ole.VTUI1:
		return T(el.UI1())
	case ole.VTUI2:
		return T(el.UI2())
	case ole.VTUI4, ole.VTUInt:
		return T(el.UI4())
	case ole.VTUI8:
		return T(el.UI8())
	case ole.VTR4:
		return T(el.R4())
	case ole.VTR8, ole.VTDate:
		return T(el.R8())
	case ole.VTBool:
		return T(el.Bool())
	}
	var zero T
	return zero
}

func rawOf[T Scalar](vt ole.VT, v T) (ole.Raw, error) {
	out := ole.NewRaw(vt)
	switch vt {
	case ole.VTI1:
		out.SetI1(int8(v))
	case ole.VTI2:
		out.SetI2(int16(v))
	case ole.VTI4, ole.VTInt:
		out.SetI4(int32(v))
	case ole.VTI8:
		out.SetI8(int64(v))
	case ole.VTCurrency:
		out.SetCurrency(int64(v))
	case ole.VTUI1:
		out.SetUI1(uint8(v))
	case ole.VTUI2:
		out.SetUI2(uint16(v))
	case ole.VTUI4, ole.VTUInt:
		out.SetUI4(uint32(v))
	case ole.VTUI8:
		out.SetUI8(uint64(v))
	case ole.VTR4:
		out.SetR4(float32(v))
	case ole.VTR8:
		out.SetR8(float64(v))
	case ole.VTDate:
		out.SetDate(float64(v))
	case ole.VTBool:
		out.SetBool(int16(v))
	case ole.VTError, ole.VTHResult:
		out.SetHResult(ole.HResult(v))
	default:
		return ole.Raw{}, errors.TypeError(errors.PhaseArray, vt.String(), goTypeName[T]())
	}
	return out, nil
}

// GetString reads the string element at index as a Go string. The
// intermediate allocation is released before returning.
func GetString(a *Array, index int32) (string, error) {
	p := oleaut.Default()
	el, err := p.GetElement(a.Handle(), index)
	if err != nil {
		return "", err
	}
	if !el.Tag.IsString() {
		return "", errors.TypeError(errors.PhaseArray, el.Tag.String(), "string")
	}
	s, err := p.StringValue(el.Handle())
	p.FreeString(el.Handle())
	return s, err
}

// PutString writes a Go string at index. The temporary allocation is
// released once the array has copied it.
func PutString(a *Array, index int32, s string) error {
	p := oleaut.Default()
	vt, err := a.VarType()
	if err != nil {
		return err
	}
	if !vt.IsString() {
		return errors.TypeError(errors.PhaseArray, vt.String(), "string")
	}
	h, err := p.AllocString(s)
	if err != nil {
		return err
	}
	raw := ole.NewRaw(vt)
	raw.SetHandle(h)
	err = p.PutElement(a.Handle(), index, &raw)
	p.FreeString(h)
	return err
}

// GetObject reads the object element at index. The returned handle
// carries a reference the caller must release.
func GetObject(a *Array, index int32) (ole.Handle, error) {
	el, err := oleaut.Default().GetElement(a.Handle(), index)
	if err != nil {
		return 0, err
	}
	if !el.Tag.IsReference() {
		return 0, errors.TypeError(errors.PhaseArray, el.Tag.String(), "object handle")
	}
	if el.Handle() == 0 {
		return 0, errors.NullPointer(errors.PhaseArray, "null object element")
	}
	return el.Handle(), nil
}

func checkVector(a *Array, vt ole.VT, goType string) (lower int32, n int, err error) {
	got, err := a.VarType()
	if err != nil {
		return 0, 0, err
	}
	if got != vt {
		return 0, 0, errors.TypeError(errors.PhaseArray, got.String(), goType)
	}
	dims, err := a.Dims()
	if err != nil {
		return 0, 0, err
	}
	if dims != 1 {
		return 0, 0, errors.New(errors.PhaseArray, errors.KindType).
			VarType(got.String()).
			GoType(goType).
			Detail("expected 1 dimension, got %d", dims).
			Build()
	}
	lower, err = a.LowerBound(1)
	if err != nil {
		return 0, 0, err
	}
	upper, err := a.UpperBound(1)
	if err != nil {
		return 0, 0, err
	}
	return lower, int(upper-lower) + 1, nil
}

// IntoVector reads a one-dimensional array of exactly tag vt into a
// slice.
func IntoVector[T Scalar](a *Array, vt ole.VT) ([]T, error) {
	lo, n, err := checkVector(a, vt, "[]"+goTypeName[T]())
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, n)
	for i := 0; i < n; i++ {
		v, err := Get[T](a, lo+int32(i))
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// FromVector builds an owned one-dimensional array of tag vt from a
// slice.
func FromVector[T Scalar](vt ole.VT, src []T) (*Array, error) {
	a, err := New(vt, uint32(len(src)))
	if err != nil {
		return nil, err
	}
	for i, v := range src {
		if err := Put(a, int32(i), v); err != nil {
			a.Close()
			return nil, err
		}
	}
	return a, nil
}

// IntoStringVector reads a string array into Go strings.
func IntoStringVector(a *Array, vt ole.VT) ([]string, error) {
	if !vt.IsString() {
		return nil, errors.TypeError(errors.PhaseArray, vt.String(), "[]string")
	}
	lo, n, err := checkVector(a, vt, "[]string")
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		s, err := GetString(a, lo+int32(i))
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// FromStringVector builds an owned string array from Go strings.
func FromStringVector(vt ole.VT, src []string) (*Array, error) {
	if !vt.IsString() {
		return nil, errors.TypeError(errors.PhaseArray, vt.String(), "[]string")
	}
	a, err := New(vt, uint32(len(src)))
	if err != nil {
		return nil, err
	}
	for i, s := range src {
		if err := PutString(a, int32(i), s); err != nil {
			a.Close()
			return nil, err
		}
	}
	return a, nil
}

// IntoBoolVector reads a VT_BOOL array into Go bools.
func IntoBoolVector(a *Array) ([]bool, error) {
	raw, err := IntoVector[int16](a, ole.VTBool)
	if err != nil {
		return nil, err
	}
	out := make([]bool, len(raw))
	for i, v := range raw {
		out[i] = v != 0
	}
	return out, nil
}

// FromBoolVector builds an owned VT_BOOL array from Go bools.
func FromBoolVector(src []bool) (*Array, error) {
	raw := make([]int16, len(src))
	for i, v := range src {
		if v {
			raw[i] = ole.VariantTrue
		}
	}
	return FromVector(ole.VTBool, raw)
}

// IntoObjectVector reads an object array into handles. Each handle
// carries a reference the caller must release.
func IntoObjectVector(a *Array, vt ole.VT) ([]ole.Handle, error) {
	if !vt.IsReference() {
		return nil, errors.TypeError(errors.PhaseArray, vt.String(), "[]object handle")
	}
	lo, n, err := checkVector(a, vt, "[]object handle")
	if err != nil {
		return nil, err
	}
	p := oleaut.Default()
	out := make([]ole.Handle, 0, n)
	release := func() {
		for _, h := range out {
			p.Release(h)
		}
	}
	for i := 0; i < n; i++ {
		h, err := GetObject(a, lo+int32(i))
		if err != nil {
			release()
			return nil, err
		}
		out = append(out, h)
	}
	return out, nil
}

// IntoInt32Vector reads a signed 32-bit array, accepting either of the
// VT_I4/VT_INT platform aliases.
func IntoInt32Vector(a *Array) ([]int32, error) {
	vt, err := a.VarType()
	if err != nil {
		return nil, err
	}
	if vt == ole.VTInt {
		return IntoVector[int32](a, ole.VTInt)
	}
	return IntoVector[int32](a, ole.VTI4)
}

// IntoUint32Vector reads an unsigned 32-bit array, accepting either of
// the VT_UI4/VT_UINT platform aliases.
func IntoUint32Vector(a *Array) ([]uint32, error) {
	vt, err := a.VarType()
	if err != nil {
		return nil, err
	}
	if vt == ole.VTUInt {
		return IntoVector[uint32](a, ole.VTUInt)
	}
	return IntoVector[uint32](a, ole.VTUI4)
}
