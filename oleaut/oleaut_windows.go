//go:build windows

package oleaut

import (
	"encoding/binary"
	"runtime"
	"syscall"
	"unicode/utf16"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/uiabridge/olevariant/errors"
	"github.com/uiabridge/olevariant/ole"
)

var (
	modOleAut32 = windows.NewLazySystemDLL("oleaut32.dll")
	modOle32    = windows.NewLazySystemDLL("ole32.dll")

	procSysAllocStringLen = modOleAut32.NewProc("SysAllocStringLen")
	procSysStringLen      = modOleAut32.NewProc("SysStringLen")
	procSysFreeString     = modOleAut32.NewProc("SysFreeString")

	procVariantChangeType = modOleAut32.NewProc("VariantChangeType")

	procVarAbs = modOleAut32.NewProc("VarAbs")
	procVarNeg = modOleAut32.NewProc("VarNeg")
	procVarNot = modOleAut32.NewProc("VarNot")
	procVarAdd = modOleAut32.NewProc("VarAdd")
	procVarSub = modOleAut32.NewProc("VarSub")
	procVarMul = modOleAut32.NewProc("VarMul")
	procVarDiv = modOleAut32.NewProc("VarDiv")
	procVarMod = modOleAut32.NewProc("VarMod")
	procVarAnd = modOleAut32.NewProc("VarAnd")
	procVarOr  = modOleAut32.NewProc("VarOr")
	procVarXor = modOleAut32.NewProc("VarXor")

	procSafeArrayCreateVector = modOleAut32.NewProc("SafeArrayCreateVector")
	procSafeArrayDestroy      = modOleAut32.NewProc("SafeArrayDestroy")
	procSafeArrayCopy         = modOleAut32.NewProc("SafeArrayCopy")
	procSafeArrayGetVartype   = modOleAut32.NewProc("SafeArrayGetVartype")
	procSafeArrayGetDim       = modOleAut32.NewProc("SafeArrayGetDim")
	procSafeArrayGetLBound    = modOleAut32.NewProc("SafeArrayGetLBound")
	procSafeArrayGetUBound    = modOleAut32.NewProc("SafeArrayGetUBound")
	procSafeArrayGetElement   = modOleAut32.NewProc("SafeArrayGetElement")
	procSafeArrayPutElement   = modOleAut32.NewProc("SafeArrayPutElement")

	procCoTaskMemAlloc = modOle32.NewProc("CoTaskMemAlloc")
	procCoTaskMemFree  = modOle32.NewProc("CoTaskMemFree")
)

// Windows binds the platform primitives straight to oleaut32, so handles
// are the real BSTR, IUnknown and SAFEARRAY pointers and the foreign
// routines decide every coercion and rounding question.
//
// Coercion goes through VariantChangeType rather than the per-pair
// VarXFromY routines: several of those take floating-point arguments by
// value, which cannot be expressed through Go's integer-register syscall
// path, while VariantChangeType works entirely through VARIANT pointers.
type Windows struct{}

// NewWindows returns the oleaut32-backed platform.
func NewWindows() *Windows {
	return &Windows{}
}

func hrFailed(r uintptr) bool { return int32(uint32(r)) < 0 }

func platformError(r uintptr, detail string) error {
	return errors.External(errors.PhasePlatform, int32(uint32(r)), detail)
}

// AllocString allocates a BSTR. Interior NULs are preserved, which is
// why this does not go through windows.UTF16FromString.
func (w *Windows) AllocString(s string) (ole.Handle, error) {
	enc := utf16.Encode([]rune(s))
	var p *uint16
	if len(enc) > 0 {
		p = &enc[0]
	}
	r, _, _ := procSysAllocStringLen.Call(uintptr(unsafe.Pointer(p)), uintptr(len(enc)))
	runtime.KeepAlive(enc)
	if r == 0 {
		return 0, errors.External(errors.PhasePlatform, int32(ole.EOutOfMemory), "SysAllocStringLen failed")
	}
	return ole.Handle(r), nil
}

// StringValue reads a BSTR. The null handle is the empty string.
func (w *Windows) StringValue(h ole.Handle) (string, error) {
	if h == 0 {
		return "", nil
	}
	n, _, _ := procSysStringLen.Call(uintptr(h))
	if n == 0 {
		return "", nil
	}
	return string(utf16.Decode(unsafe.Slice((*uint16)(unsafe.Pointer(h)), n))), nil
}

// CopyString duplicates a BSTR allocation.
func (w *Windows) CopyString(h ole.Handle) (ole.Handle, error) {
	if h == 0 {
		return 0, nil
	}
	n, _, _ := procSysStringLen.Call(uintptr(h))
	r, _, _ := procSysAllocStringLen.Call(uintptr(h), n)
	if r == 0 {
		return 0, errors.External(errors.PhasePlatform, int32(ole.EOutOfMemory), "SysAllocStringLen failed")
	}
	return ole.Handle(r), nil
}

// FreeString releases a BSTR. SysFreeString accepts the null handle.
func (w *Windows) FreeString(h ole.Handle) {
	procSysFreeString.Call(uintptr(h))
}

// iunknownVtbl is the leading slice of every COM vtable.
type iunknownVtbl struct {
	queryInterface uintptr
	addRef         uintptr
	release        uintptr
}

func vtblOf(h ole.Handle) *iunknownVtbl {
	return *(**iunknownVtbl)(unsafe.Pointer(h))
}

// AddRef increments the COM reference count of h.
func (w *Windows) AddRef(h ole.Handle) error {
	if h == 0 {
		return errors.NullPointer(errors.PhasePlatform, "addref on null object")
	}
	syscall.SyscallN(vtblOf(h).addRef, uintptr(h))
	return nil
}

// Release decrements the COM reference count of h.
func (w *Windows) Release(h ole.Handle) {
	if h == 0 {
		return
	}
	syscall.SyscallN(vtblOf(h).release, uintptr(h))
}

func coTaskAlloc(n uintptr) (uintptr, error) {
	r, _, _ := procCoTaskMemAlloc.Call(n)
	if r == 0 {
		return 0, errors.External(errors.PhasePlatform, int32(ole.EOutOfMemory), "CoTaskMemAlloc failed")
	}
	return r, nil
}

// AllocVariant heap-allocates a nested VARIANT slot.
func (w *Windows) AllocVariant(v ole.Raw) (ole.Handle, error) {
	p, err := coTaskAlloc(unsafe.Sizeof(ole.Raw{}))
	if err != nil {
		return 0, err
	}
	*(*ole.Raw)(unsafe.Pointer(p)) = v
	return ole.Handle(p), nil
}

// VariantValue reads a nested VARIANT slot.
func (w *Windows) VariantValue(h ole.Handle) (ole.Raw, error) {
	if h == 0 {
		return ole.Raw{}, errors.NullPointer(errors.PhasePlatform, "null variant handle")
	}
	return *(*ole.Raw)(unsafe.Pointer(h)), nil
}

// FreeVariant releases a nested VARIANT slot. The slot's own contents
// belong to the caller.
func (w *Windows) FreeVariant(h ole.Handle) {
	if h != 0 {
		procCoTaskMemFree.Call(uintptr(h))
	}
}

// nativeDecimal is the 16-byte DECIMAL wire layout.
type nativeDecimal struct {
	reserved uint16
	scale    uint8
	sign     uint8
	hi32     uint32
	lo64     uint64
}

func toNativeDecimal(d ole.Decimal) nativeDecimal {
	return nativeDecimal{scale: d.Scale, sign: d.Sign, hi32: d.Hi32, lo64: d.Lo64}
}

func fromNativeDecimal(n nativeDecimal) ole.Decimal {
	return ole.Decimal{Scale: n.scale, Sign: n.sign, Hi32: n.hi32, Lo64: n.lo64}
}

// AllocDecimal heap-allocates a DECIMAL.
func (w *Windows) AllocDecimal(d ole.Decimal) (ole.Handle, error) {
	p, err := coTaskAlloc(unsafe.Sizeof(nativeDecimal{}))
	if err != nil {
		return 0, err
	}
	*(*nativeDecimal)(unsafe.Pointer(p)) = toNativeDecimal(d)
	return ole.Handle(p), nil
}

// DecimalValue reads a DECIMAL allocation.
func (w *Windows) DecimalValue(h ole.Handle) (ole.Decimal, error) {
	if h == 0 {
		return ole.Decimal{}, errors.NullPointer(errors.PhasePlatform, "null decimal handle")
	}
	return fromNativeDecimal(*(*nativeDecimal)(unsafe.Pointer(h))), nil
}

// CopyDecimal duplicates a DECIMAL allocation.
func (w *Windows) CopyDecimal(h ole.Handle) (ole.Handle, error) {
	d, err := w.DecimalValue(h)
	if err != nil {
		return 0, err
	}
	return w.AllocDecimal(d)
}

// FreeDecimal releases a DECIMAL allocation.
func (w *Windows) FreeDecimal(h ole.Handle) {
	if h != 0 {
		procCoTaskMemFree.Call(uintptr(h))
	}
}

// encodeInlineDecimal builds the native VARIANT form of a decimal, where
// the DECIMAL overlays the whole 24-byte structure and the tag doubles
// as its reserved word.
func encodeInlineDecimal(d ole.Decimal) ole.Raw {
	var r ole.Raw
	b := (*[24]byte)(unsafe.Pointer(&r))
	binary.LittleEndian.PutUint16(b[0:], uint16(ole.VTDecimal))
	b[2] = d.Scale
	b[3] = d.Sign
	binary.LittleEndian.PutUint32(b[4:], d.Hi32)
	binary.LittleEndian.PutUint64(b[8:], d.Lo64)
	return r
}

func decodeInlineDecimal(r *ole.Raw) ole.Decimal {
	b := (*[24]byte)(unsafe.Pointer(r))
	return ole.Decimal{
		Scale: b[2],
		Sign:  b[3],
		Hi32:  binary.LittleEndian.Uint32(b[4:]),
		Lo64:  binary.LittleEndian.Uint64(b[8:]),
	}
}

// toNative rewrites a handle-model decimal into the inline native form
// before handing it to oleaut32. All other tags already match the
// VARIANT wire layout.
func (w *Windows) toNative(v *ole.Raw) (*ole.Raw, error) {
	if v.Tag != ole.VTDecimal {
		return v, nil
	}
	d, err := w.DecimalValue(v.Handle())
	if err != nil {
		return nil, err
	}
	n := encodeInlineDecimal(d)
	return &n, nil
}

// fromNative rewrites an inline native decimal result back into the
// handle model.
func (w *Windows) fromNative(v *ole.Raw) (ole.Raw, error) {
	if v.Tag != ole.VTDecimal {
		return *v, nil
	}
	h, err := w.AllocDecimal(decodeInlineDecimal(v))
	if err != nil {
		return ole.Raw{}, err
	}
	out := ole.NewRaw(ole.VTDecimal)
	out.SetHandle(h)
	return out, nil
}

// Convert coerces src into a variant of tag dst through
// VariantChangeType.
func (w *Windows) Convert(dst ole.VT, src *ole.Raw) (ole.Raw, error) {
	in, err := w.toNative(src)
	if err != nil {
		return ole.Raw{}, err
	}
	var out ole.Raw
	r, _, _ := procVariantChangeType.Call(
		uintptr(unsafe.Pointer(&out)),
		uintptr(unsafe.Pointer(in)),
		0,
		uintptr(dst),
	)
	if hrFailed(r) {
		return ole.Raw{}, errors.New(errors.PhaseConvert, errors.KindExternal).
			HResult(int32(uint32(r))).
			Detail("cannot convert %s to %s", src.Tag, dst).
			Build()
	}
	return w.fromNative(&out)
}

func (w *Windows) unaryVar(proc *windows.LazyProc, v *ole.Raw) (ole.Raw, error) {
	in, err := w.toNative(v)
	if err != nil {
		return ole.Raw{}, err
	}
	var out ole.Raw
	r, _, _ := proc.Call(uintptr(unsafe.Pointer(in)), uintptr(unsafe.Pointer(&out)))
	if hrFailed(r) {
		return ole.Raw{}, errors.External(errors.PhaseArith, int32(uint32(r)), proc.Name+" failed")
	}
	return w.fromNative(&out)
}

func (w *Windows) binaryVar(proc *windows.LazyProc, a, b *ole.Raw) (ole.Raw, error) {
	x, err := w.toNative(a)
	if err != nil {
		return ole.Raw{}, err
	}
	y, err := w.toNative(b)
	if err != nil {
		return ole.Raw{}, err
	}
	var out ole.Raw
	r, _, _ := proc.Call(
		uintptr(unsafe.Pointer(x)),
		uintptr(unsafe.Pointer(y)),
		uintptr(unsafe.Pointer(&out)),
	)
	if hrFailed(r) {
		return ole.Raw{}, errors.External(errors.PhaseArith, int32(uint32(r)), proc.Name+" failed")
	}
	return w.fromNative(&out)
}

// Abs computes the absolute value through VarAbs.
func (w *Windows) Abs(v *ole.Raw) (ole.Raw, error) { return w.unaryVar(procVarAbs, v) }

// Neg computes the arithmetic negation through VarNeg.
func (w *Windows) Neg(v *ole.Raw) (ole.Raw, error) { return w.unaryVar(procVarNeg, v) }

// Not computes the bitwise complement through VarNot.
func (w *Windows) Not(v *ole.Raw) (ole.Raw, error) { return w.unaryVar(procVarNot, v) }

// Add sums two variants through VarAdd.
func (w *Windows) Add(a, b *ole.Raw) (ole.Raw, error) { return w.binaryVar(procVarAdd, a, b) }

// Sub subtracts b from a through VarSub.
func (w *Windows) Sub(a, b *ole.Raw) (ole.Raw, error) { return w.binaryVar(procVarSub, a, b) }

// Mul multiplies two variants through VarMul.
func (w *Windows) Mul(a, b *ole.Raw) (ole.Raw, error) { return w.binaryVar(procVarMul, a, b) }

// Div divides a by b through VarDiv.
func (w *Windows) Div(a, b *ole.Raw) (ole.Raw, error) { return w.binaryVar(procVarDiv, a, b) }

// Mod computes the remainder through VarMod.
func (w *Windows) Mod(a, b *ole.Raw) (ole.Raw, error) { return w.binaryVar(procVarMod, a, b) }

// And combines two variants through VarAnd.
func (w *Windows) And(a, b *ole.Raw) (ole.Raw, error) { return w.binaryVar(procVarAnd, a, b) }

// Or combines two variants through VarOr.
func (w *Windows) Or(a, b *ole.Raw) (ole.Raw, error) { return w.binaryVar(procVarOr, a, b) }

// Xor combines two variants through VarXor.
func (w *Windows) Xor(a, b *ole.Raw) (ole.Raw, error) { return w.binaryVar(procVarXor, a, b) }

// CreateVector allocates a one-dimensional SAFEARRAY with lower bound
// zero.
func (w *Windows) CreateVector(vt ole.VT, length uint32) (ole.Handle, error) {
	r, _, _ := procSafeArrayCreateVector.Call(uintptr(vt), 0, uintptr(length))
	if r == 0 {
		return 0, errors.External(errors.PhaseArray, int32(ole.EOutOfMemory), "SafeArrayCreateVector failed")
	}
	return ole.Handle(r), nil
}

// DestroyArray releases the SAFEARRAY and its element contents.
func (w *Windows) DestroyArray(h ole.Handle) error {
	if h == 0 {
		return errors.NullPointer(errors.PhaseArray, "null array handle")
	}
	r, _, _ := procSafeArrayDestroy.Call(uintptr(h))
	if hrFailed(r) {
		return errors.External(errors.PhaseArray, int32(uint32(r)), "SafeArrayDestroy failed")
	}
	return nil
}

// CopyArray deep-copies the SAFEARRAY.
func (w *Windows) CopyArray(h ole.Handle) (ole.Handle, error) {
	if h == 0 {
		return 0, errors.NullPointer(errors.PhaseArray, "null array handle")
	}
	var out uintptr
	r, _, _ := procSafeArrayCopy.Call(uintptr(h), uintptr(unsafe.Pointer(&out)))
	if hrFailed(r) {
		return 0, errors.External(errors.PhaseArray, int32(uint32(r)), "SafeArrayCopy failed")
	}
	return ole.Handle(out), nil
}

// ArrayVarType reports the element tag.
func (w *Windows) ArrayVarType(h ole.Handle) (ole.VT, error) {
	if h == 0 {
		return 0, errors.NullPointer(errors.PhaseArray, "null array handle")
	}
	var vt uint16
	r, _, _ := procSafeArrayGetVartype.Call(uintptr(h), uintptr(unsafe.Pointer(&vt)))
	if hrFailed(r) {
		return 0, errors.External(errors.PhaseArray, int32(uint32(r)), "SafeArrayGetVartype failed")
	}
	return ole.VT(vt), nil
}

// ArrayDims reports the dimension count.
func (w *Windows) ArrayDims(h ole.Handle) (uint32, error) {
	if h == 0 {
		return 0, errors.NullPointer(errors.PhaseArray, "null array handle")
	}
	r, _, _ := procSafeArrayGetDim.Call(uintptr(h))
	return uint32(r), nil
}

// ArrayLowerBound reports the lower index of the given dimension.
func (w *Windows) ArrayLowerBound(h ole.Handle, dim uint32) (int32, error) {
	if h == 0 {
		return 0, errors.NullPointer(errors.PhaseArray, "null array handle")
	}
	var out int32
	r, _, _ := procSafeArrayGetLBound.Call(uintptr(h), uintptr(dim), uintptr(unsafe.Pointer(&out)))
	if hrFailed(r) {
		return 0, errors.External(errors.PhaseArray, int32(uint32(r)), "SafeArrayGetLBound failed")
	}
	return out, nil
}

// ArrayUpperBound reports the upper index of the given dimension.
func (w *Windows) ArrayUpperBound(h ole.Handle, dim uint32) (int32, error) {
	if h == 0 {
		return 0, errors.NullPointer(errors.PhaseArray, "null array handle")
	}
	var out int32
	r, _, _ := procSafeArrayGetUBound.Call(uintptr(h), uintptr(dim), uintptr(unsafe.Pointer(&out)))
	if hrFailed(r) {
		return 0, errors.External(errors.PhaseArray, int32(uint32(r)), "SafeArrayGetUBound failed")
	}
	return out, nil
}

// GetElement reads the element at index. SafeArrayGetElement already
// copies strings and AddRefs objects, so the result is caller-owned.
func (w *Windows) GetElement(h ole.Handle, index int32) (ole.Raw, error) {
	vt, err := w.ArrayVarType(h)
	if err != nil {
		return ole.Raw{}, err
	}
	idx := index
	// large enough for a full VARIANT, the widest element kind
	var buf [3]uint64
	r, _, _ := procSafeArrayGetElement.Call(
		uintptr(h),
		uintptr(unsafe.Pointer(&idx)),
		uintptr(unsafe.Pointer(&buf)),
	)
	if hrFailed(r) {
		return ole.Raw{}, errors.External(errors.PhaseArray, int32(uint32(r)), "SafeArrayGetElement failed")
	}
	if vt == ole.VTVariant {
		nested := *(*ole.Raw)(unsafe.Pointer(&buf))
		vh, err := w.AllocVariant(nested)
		if err != nil {
			return ole.Raw{}, err
		}
		out := ole.NewRaw(ole.VTVariant)
		out.SetHandle(vh)
		return out, nil
	}
	if vt == ole.VTDecimal {
		n := *(*nativeDecimal)(unsafe.Pointer(&buf))
		dh, err := w.AllocDecimal(fromNativeDecimal(n))
		if err != nil {
			return ole.Raw{}, err
		}
		out := ole.NewRaw(ole.VTDecimal)
		out.SetHandle(dh)
		return out, nil
	}
	out := ole.NewRaw(vt)
	out.SetUI8(buf[0])
	return out, nil
}

// PutElement stores v at index. SafeArrayPutElement copies strings and
// AddRefs objects, so the caller keeps ownership of v.
func (w *Windows) PutElement(h ole.Handle, index int32, v *ole.Raw) error {
	vt, err := w.ArrayVarType(h)
	if err != nil {
		return err
	}
	idx := index
	var pv uintptr
	var dec nativeDecimal
	var payload uint64
	switch {
	case vt.IsString() || vt.IsReference() || vt == ole.VTVariant:
		pv = uintptr(v.Handle())
	case vt == ole.VTDecimal:
		d, err := w.DecimalValue(v.Handle())
		if err != nil {
			return err
		}
		dec = toNativeDecimal(d)
		pv = uintptr(unsafe.Pointer(&dec))
	default:
		payload = v.UI8()
		pv = uintptr(unsafe.Pointer(&payload))
	}
	r, _, _ := procSafeArrayPutElement.Call(uintptr(h), uintptr(unsafe.Pointer(&idx)), pv)
	if hrFailed(r) {
		return errors.External(errors.PhaseArray, int32(uint32(r)), "SafeArrayPutElement failed")
	}
	return nil
}
