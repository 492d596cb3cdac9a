package oleaut

import (
	"github.com/uiabridge/olevariant/errors"
	"github.com/uiabridge/olevariant/ole"
)

// Bound describes one dimension of an array: its lower index and element
// count.
type Bound struct {
	Lower int32
	Count uint32
}

// emuArray is an in-process SAFEARRAY: an element tag, per-dimension
// bounds and a flat element buffer in row-major order.
type emuArray struct {
	vt     ole.VT
	bounds []Bound
	elems  []ole.Raw
}

func (a *emuArray) size() int {
	n := 1
	for _, b := range a.bounds {
		n *= int(b.Count)
	}
	return n
}

func arrayError(hr ole.HResult, detail string) error {
	return errors.External(errors.PhaseArray, int32(hr), detail)
}

// CreateVector allocates a one-dimensional array with lower bound zero.
func (e *Emulator) CreateVector(vt ole.VT, length uint32) (ole.Handle, error) {
	return e.CreateArray(vt, []Bound{{Lower: 0, Count: length}})
}

// CreateArray allocates an array with explicit bounds. Multi-dimensional
// arrays support only the descriptor queries; element access is
// one-dimensional.
func (e *Emulator) CreateArray(vt ole.VT, bounds []Bound) (ole.Handle, error) {
	if vt.IsArray() || vt == ole.VTEmpty || vt == ole.VTNull {
		return 0, arrayError(ole.DispEBadVarType, "invalid element tag "+vt.String())
	}
	if len(bounds) == 0 {
		return 0, arrayError(ole.EInvalidArg, "array needs at least one dimension")
	}
	arr := &emuArray{vt: vt, bounds: append([]Bound(nil), bounds...)}
	arr.elems = make([]ole.Raw, arr.size())
	for i := range arr.elems {
		arr.elems[i] = ole.NewRaw(vt)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	h := e.newHandle()
	e.arrays[h] = arr
	return h, nil
}

func (e *Emulator) lookupArray(h ole.Handle) (*emuArray, error) {
	if h == 0 {
		return nil, errors.NullPointer(errors.PhaseArray, "null array handle")
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	arr, ok := e.arrays[h]
	if !ok {
		return nil, errors.External(errors.PhasePlatform, int32(ole.EPointer), "unknown array handle")
	}
	return arr, nil
}

// DestroyArray releases the array and everything its elements own.
func (e *Emulator) DestroyArray(h ole.Handle) error {
	arr, err := e.lookupArray(h)
	if err != nil {
		return err
	}
	for i := range arr.elems {
		e.releaseElement(&arr.elems[i])
	}
	e.mu.Lock()
	delete(e.arrays, h)
	e.mu.Unlock()
	return nil
}

func (e *Emulator) releaseElement(v *ole.Raw) {
	switch {
	case v.Tag.IsString():
		e.FreeString(v.Handle())
	case v.Tag.IsReference():
		e.Release(v.Handle())
	case v.Tag == ole.VTVariant:
		e.FreeVariant(v.Handle())
	}
}

// CopyArray deep-copies the array: string elements get fresh
// allocations, object elements gain a reference.
func (e *Emulator) CopyArray(h ole.Handle) (ole.Handle, error) {
	arr, err := e.lookupArray(h)
	if err != nil {
		return 0, err
	}
	dup := &emuArray{
		vt:     arr.vt,
		bounds: append([]Bound(nil), arr.bounds...),
		elems:  make([]ole.Raw, len(arr.elems)),
	}
	for i := range arr.elems {
		el, err := e.copyElement(&arr.elems[i])
		if err != nil {
			return 0, err
		}
		dup.elems[i] = el
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	nh := e.newHandle()
	e.arrays[nh] = dup
	return nh, nil
}

func (e *Emulator) copyElement(v *ole.Raw) (ole.Raw, error) {
	out := *v
	switch {
	case v.Tag.IsString():
		h, err := e.CopyString(v.Handle())
		if err != nil {
			return ole.Raw{}, err
		}
		out.SetHandle(h)
	case v.Tag.IsReference():
		if h := v.Handle(); h != 0 {
			if err := e.AddRef(h); err != nil {
				return ole.Raw{}, err
			}
		}
	case v.Tag == ole.VTVariant:
		if h := v.Handle(); h != 0 {
			nested, err := e.VariantValue(h)
			if err != nil {
				return ole.Raw{}, err
			}
			nh, err := e.AllocVariant(nested)
			if err != nil {
				return ole.Raw{}, err
			}
			out.SetHandle(nh)
		}
	}
	return out, nil
}

// ArrayVarType reports the element tag.
func (e *Emulator) ArrayVarType(h ole.Handle) (ole.VT, error) {
	arr, err := e.lookupArray(h)
	if err != nil {
		return 0, err
	}
	return arr.vt, nil
}

// ArrayDims reports the dimension count.
func (e *Emulator) ArrayDims(h ole.Handle) (uint32, error) {
	arr, err := e.lookupArray(h)
	if err != nil {
		return 0, err
	}
	return uint32(len(arr.bounds)), nil
}

func (e *Emulator) bound(h ole.Handle, dim uint32) (Bound, error) {
	arr, err := e.lookupArray(h)
	if err != nil {
		return Bound{}, err
	}
	if dim < 1 || dim > uint32(len(arr.bounds)) {
		return Bound{}, arrayError(ole.DispEBadIndex, "dimension out of range")
	}
	return arr.bounds[dim-1], nil
}

// ArrayLowerBound reports the lower index of the given dimension.
// Dimensions are 1-indexed.
func (e *Emulator) ArrayLowerBound(h ole.Handle, dim uint32) (int32, error) {
	b, err := e.bound(h, dim)
	if err != nil {
		return 0, err
	}
	return b.Lower, nil
}

// ArrayUpperBound reports the upper index of the given dimension.
func (e *Emulator) ArrayUpperBound(h ole.Handle, dim uint32) (int32, error) {
	b, err := e.bound(h, dim)
	if err != nil {
		return 0, err
	}
	return b.Lower + int32(b.Count) - 1, nil
}

func (e *Emulator) elementSlot(arr *emuArray, index int32) (int, error) {
	if len(arr.bounds) != 1 {
		return 0, arrayError(ole.DispEBadIndex, "element access needs a one-dimensional array")
	}
	b := arr.bounds[0]
	slot := int64(index) - int64(b.Lower)
	if slot < 0 || slot >= int64(b.Count) {
		return 0, arrayError(ole.DispEBadIndex, "index out of bounds")
	}
	return int(slot), nil
}

// GetElement reads the element at index. The returned raw is owned by
// the caller: strings are fresh copies, objects carry a new reference.
func (e *Emulator) GetElement(h ole.Handle, index int32) (ole.Raw, error) {
	arr, err := e.lookupArray(h)
	if err != nil {
		return ole.Raw{}, err
	}
	slot, err := e.elementSlot(arr, index)
	if err != nil {
		return ole.Raw{}, err
	}
	return e.copyElement(&arr.elems[slot])
}

// PutElement stores a copy of v at index. The caller keeps ownership of
// v. The value's tag must equal the array's element tag, up to the
// I4/INT and UI4/UINT platform aliases.
func (e *Emulator) PutElement(h ole.Handle, index int32, v *ole.Raw) error {
	arr, err := e.lookupArray(h)
	if err != nil {
		return err
	}
	slot, err := e.elementSlot(arr, index)
	if err != nil {
		return err
	}
	if !tagsCompatible(arr.vt, v.Tag) {
		return arrayError(ole.DispETypeMismatch, "element tag "+v.Tag.String()+" does not match array tag "+arr.vt.String())
	}
	el, err := e.copyElement(v)
	if err != nil {
		return err
	}
	el.Tag = arr.vt
	e.releaseElement(&arr.elems[slot])
	arr.elems[slot] = el
	return nil
}

func tagsCompatible(arrVT, elemVT ole.VT) bool {
	if arrVT == elemVT {
		return true
	}
	switch {
	case (arrVT == ole.VTI4 && elemVT == ole.VTInt) || (arrVT == ole.VTInt && elemVT == ole.VTI4):
		return true
	case (arrVT == ole.VTUI4 && elemVT == ole.VTUInt) || (arrVT == ole.VTUInt && elemVT == ole.VTUI4):
		return true
	case arrVT.IsString() && elemVT.IsString():
		return true
	}
	return false
}
