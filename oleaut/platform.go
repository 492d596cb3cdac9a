package oleaut

import (
	"sync"

	"github.com/uiabridge/olevariant/ole"
)

// StringHeap manages BSTR-style string allocations. The null handle reads
// as the empty string and is free to copy or release.
type StringHeap interface {
	AllocString(s string) (ole.Handle, error)
	StringValue(h ole.Handle) (string, error)
	CopyString(h ole.Handle) (ole.Handle, error)
	FreeString(h ole.Handle)
}

// ObjectTable manages reference-counted object handles (IUnknown-style).
type ObjectTable interface {
	AddRef(h ole.Handle) error
	Release(h ole.Handle)
}

// VariantHeap manages heap slots for nested VARIANT payloads.
type VariantHeap interface {
	AllocVariant(v ole.Raw) (ole.Handle, error)
	VariantValue(h ole.Handle) (ole.Raw, error)
	FreeVariant(h ole.Handle)
}

// DecimalHeap manages heap slots for DECIMAL payloads.
type DecimalHeap interface {
	AllocDecimal(d ole.Decimal) (ole.Handle, error)
	DecimalValue(h ole.Handle) (ole.Decimal, error)
	CopyDecimal(h ole.Handle) (ole.Handle, error)
	FreeDecimal(h ole.Handle)
}

// Converter performs one tag-pair coercion per call. Converting to
// ole.VTBstr is the to-string primitive and allocates a fresh string
// handle the caller owns; converting from a string tag is the locale
// parse primitive.
type Converter interface {
	Convert(dst ole.VT, src *ole.Raw) (ole.Raw, error)
}

// Arith provides the typed arithmetic/logical primitives. Operand
// promotion is chosen by the provider, not the caller. Results are new
// owned raw variants.
type Arith interface {
	Abs(v *ole.Raw) (ole.Raw, error)
	Neg(v *ole.Raw) (ole.Raw, error)
	Not(v *ole.Raw) (ole.Raw, error)
	Add(a, b *ole.Raw) (ole.Raw, error)
	Sub(a, b *ole.Raw) (ole.Raw, error)
	Mul(a, b *ole.Raw) (ole.Raw, error)
	Div(a, b *ole.Raw) (ole.Raw, error)
	Mod(a, b *ole.Raw) (ole.Raw, error)
	And(a, b *ole.Raw) (ole.Raw, error)
	Or(a, b *ole.Raw) (ole.Raw, error)
	Xor(a, b *ole.Raw) (ole.Raw, error)
}

// ArrayOps provides the SAFEARRAY primitives. Dimensions are 1-indexed.
// Element access validation (bounds, element tag) belongs to the
// provider; callers do not duplicate it.
type ArrayOps interface {
	CreateVector(vt ole.VT, length uint32) (ole.Handle, error)
	DestroyArray(h ole.Handle) error
	CopyArray(h ole.Handle) (ole.Handle, error)
	ArrayVarType(h ole.Handle) (ole.VT, error)
	ArrayDims(h ole.Handle) (uint32, error)
	ArrayLowerBound(h ole.Handle, dim uint32) (int32, error)
	ArrayUpperBound(h ole.Handle, dim uint32) (int32, error)
	GetElement(h ole.Handle, index int32) (ole.Raw, error)
	PutElement(h ole.Handle, index int32, v *ole.Raw) error
}

// Platform is the complete primitive set the marshalling core calls.
type Platform interface {
	StringHeap
	ObjectTable
	VariantHeap
	DecimalHeap
	Converter
	Arith
	ArrayOps
}

var (
	platform     Platform
	platformOnce sync.Once
)

// Default returns the process-wide platform. Off Windows this is the
// emulator; on Windows it binds oleaut32.
func Default() Platform {
	platformOnce.Do(func() {
		if platform == nil {
			platform = newDefaultPlatform()
		}
	})
	return platform
}

// SetDefault configures the process-wide platform.
// This must be called before any variant or safearray operations.
func SetDefault(p Platform) {
	platform = p
}
