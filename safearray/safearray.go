package safearray

import (
	"strconv"
	"strings"

	"github.com/uiabridge/olevariant/errors"
	"github.com/uiabridge/olevariant/ole"
	"github.com/uiabridge/olevariant/oleaut"
)

// Array wraps a SAFEARRAY handle together with its ownership. Owned
// arrays free the handle on Close; borrowed arrays never do.
type Array struct {
	handle ole.Handle
	owned  bool
}

// New allocates an owned one-dimensional array with lower bound zero.
func New(vt ole.VT, length uint32) (*Array, error) {
	h, err := oleaut.Default().CreateVector(vt, length)
	if err != nil {
		return nil, err
	}
	if h == 0 {
		return nil, errors.NullPointer(errors.PhaseArray, "platform returned a null array handle")
	}
	return &Array{handle: h, owned: true}, nil
}

// FromHandle wraps an existing handle. owned decides whether Close will
// destroy it.
func FromHandle(h ole.Handle, owned bool) *Array {
	return &Array{handle: h, owned: owned}
}

// Handle returns the underlying handle without transferring ownership.
func (a *Array) Handle() ole.Handle {
	return a.handle
}

// Owned reports whether Close would destroy the handle.
func (a *Array) Owned() bool {
	return a.owned
}

// Transfer moves ownership of the handle to the caller. The array keeps
// a borrowed view, so reads still work but Close becomes a no-op.
func (a *Array) Transfer() ole.Handle {
	a.owned = false
	return a.handle
}

// VarType reports the element tag.
func (a *Array) VarType() (ole.VT, error) {
	return oleaut.Default().ArrayVarType(a.handle)
}

// Dims reports the dimension count.
func (a *Array) Dims() (uint32, error) {
	return oleaut.Default().ArrayDims(a.handle)
}

// LowerBound reports the lower index of a dimension. Dimensions are
// 1-indexed.
func (a *Array) LowerBound(dim uint32) (int32, error) {
	return oleaut.Default().ArrayLowerBound(a.handle, dim)
}

// UpperBound reports the upper index of a dimension.
func (a *Array) UpperBound(dim uint32) (int32, error) {
	return oleaut.Default().ArrayUpperBound(a.handle, dim)
}

// Len reports the element count of a one-dimensional array.
func (a *Array) Len() (int, error) {
	dims, err := a.Dims()
	if err != nil {
		return 0, err
	}
	if dims != 1 {
		return 0, errors.TypeError(errors.PhaseArray, ole.VTArray.String(), "one-dimensional array")
	}
	lo, err := a.LowerBound(1)
	if err != nil {
		return 0, err
	}
	hi, err := a.UpperBound(1)
	if err != nil {
		return 0, err
	}
	return int(hi-lo) + 1, nil
}

// Clone duplicates the array. An owned array is deep-copied; a borrowed
// array yields another borrowed view of the same handle.
func (a *Array) Clone() (*Array, error) {
	if a.owned && a.handle != 0 {
		h, err := oleaut.Default().CopyArray(a.handle)
		if err != nil {
			return nil, err
		}
		return &Array{handle: h, owned: true}, nil
	}
	return &Array{handle: a.handle, owned: a.owned}, nil
}

// Close destroys the handle if this array owns it. Close is idempotent.
func (a *Array) Close() error {
	if a.owned && a.handle != 0 {
		if err := oleaut.Default().DestroyArray(a.handle); err != nil {
			return err
		}
	}
	a.handle = 0
	a.owned = false
	return nil
}

// String renders a one-dimensional array as "[e1, e2, ...]". Arrays that
// cannot be read render as "<invalid>".
func (a *Array) String() string {
	s, err := a.format()
	if err != nil {
		return "<invalid>"
	}
	return s
}

func (a *Array) format() (string, error) {
	vt, err := a.VarType()
	if err != nil {
		return "", err
	}
	n, err := a.Len()
	if err != nil {
		return "", err
	}
	lo, err := a.LowerBound(1)
	if err != nil {
		return "", err
	}

	p := oleaut.Default()
	var b strings.Builder
	b.WriteByte('[')
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteString(", ")
		}
		el, err := p.GetElement(a.handle, lo+int32(i))
		if err != nil {
			return "", err
		}
		s, err := formatElement(p, vt, &el)
		if err != nil {
			releaseElement(p, vt, &el)
			return "", err
		}
		b.WriteString(s)
	}
	b.WriteByte(']')
	return b.String(), nil
}

// releaseElement drops whatever allocation GetElement handed back for
// one element: string handles, object references, or a nested variant
// slot. Scalars need nothing.
func releaseElement(p oleaut.Platform, vt ole.VT, el *ole.Raw) {
	switch {
	case vt.IsString():
		p.FreeString(el.Handle())
	case vt.IsReference():
		p.Release(el.Handle())
	case vt == ole.VTVariant:
		p.FreeVariant(el.Handle())
	}
}

func formatElement(p oleaut.Platform, vt ole.VT, el *ole.Raw) (string, error) {
	switch vt {
	case ole.VTBool:
		return strconv.FormatBool(el.Bool() != 0), nil
	case ole.VTI1:
		return strconv.FormatInt(int64(el.I1()), 10), nil
	case ole.VTI2:
		return strconv.FormatInt(int64(el.I2()), 10), nil
	case ole.VTI4, ole.VTInt:
		return strconv.FormatInt(int64(el.I4()), 10), nil
	case ole.VTI8:
		return strconv.FormatInt(el.I8(), 10), nil
	case ole.VTUI1:
		return strconv.FormatUint(uint64(el.UI1()), 10), nil
	case ole.VTUI2:
		return strconv.FormatUint(uint64(el.UI2()), 10), nil
	case ole.VTUI4, ole.VTUInt:
		return strconv.FormatUint(uint64(el.UI4()), 10), nil
	case ole.VTUI8:
		return strconv.FormatUint(el.UI8(), 10), nil
	case ole.VTR4:
		return strconv.FormatFloat(float64(el.R4()), 'g', -1, 32), nil
	case ole.VTR8:
		return strconv.FormatFloat(el.R8(), 'g', -1, 64), nil
	case ole.VTBstr, ole.VTLPWStr, ole.VTLPStr:
		s, err := p.StringValue(el.Handle())
		if err != nil {
			return "", err
		}
		p.FreeString(el.Handle())
		return s, nil
	default:
		return "", errors.TypeError(errors.PhaseFormat, vt.String(), "string")
	}
}
