package oleaut

import (
	"sync"

	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/uiabridge/olevariant/errors"
	"github.com/uiabridge/olevariant/ole"
)

// Emulator is the portable in-process platform. Every handle it issues is
// a table cookie; the tables play the role of the foreign allocator, so
// ownership bugs (double release, leaked buffers) are observable through
// the Live* counters.
type Emulator struct {
	mu       sync.Mutex
	next     uint64
	strings  map[ole.Handle]string
	objects  map[ole.Handle]*emuObject
	variants map[ole.Handle]ole.Raw
	decimals map[ole.Handle]ole.Decimal
	arrays   map[ole.Handle]*emuArray
	locale   *Locale
}

// emuObject is a reference-counted stand-in for an IUnknown/IDispatch
// object. def, when non-nil, is the value its default property converts
// through (the Var*FromDisp path).
type emuObject struct {
	refs int
	def  *ole.Raw
}

// EmulatorOption configures a new emulator.
type EmulatorOption func(*Emulator)

// WithLocale sets the language used by the to-string primitives.
func WithLocale(tag language.Tag) EmulatorOption {
	return func(e *Emulator) {
		e.locale = NewLocale(tag)
	}
}

// NewEmulator creates an emulator with the invariant locale.
func NewEmulator(opts ...EmulatorOption) *Emulator {
	e := &Emulator{
		next:     1,
		strings:  make(map[ole.Handle]string),
		objects:  make(map[ole.Handle]*emuObject),
		variants: make(map[ole.Handle]ole.Raw),
		decimals: make(map[ole.Handle]ole.Decimal),
		arrays:   make(map[ole.Handle]*emuArray),
		locale:   InvariantLocale(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Emulator) newHandle() ole.Handle {
	h := ole.Handle(e.next)
	e.next++
	return h
}

// AllocString stores s and returns its handle.
func (e *Emulator) AllocString(s string) (ole.Handle, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	h := e.newHandle()
	e.strings[h] = s
	return h, nil
}

// StringValue reads the string behind h. The null handle is the empty
// string.
func (e *Emulator) StringValue(h ole.Handle) (string, error) {
	if h == 0 {
		return "", nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	s, ok := e.strings[h]
	if !ok {
		return "", errors.External(errors.PhasePlatform, int32(ole.EPointer), "unknown string handle")
	}
	return s, nil
}

// CopyString duplicates the allocation behind h.
func (e *Emulator) CopyString(h ole.Handle) (ole.Handle, error) {
	if h == 0 {
		return 0, nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	s, ok := e.strings[h]
	if !ok {
		return 0, errors.External(errors.PhasePlatform, int32(ole.EPointer), "unknown string handle")
	}
	nh := e.newHandle()
	e.strings[nh] = s
	return nh, nil
}

// FreeString releases the allocation behind h. Freeing the null handle is
// a no-op.
func (e *Emulator) FreeString(h ole.Handle) {
	if h == 0 {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.strings, h)
}

// NewObject registers a reference-counted object handle with one
// reference. def, when non-nil, is the raw variant its default property
// yields during coercion.
func (e *Emulator) NewObject(def *ole.Raw) ole.Handle {
	e.mu.Lock()
	defer e.mu.Unlock()
	h := e.newHandle()
	obj := &emuObject{refs: 1}
	if def != nil {
		d := *def
		obj.def = &d
	}
	e.objects[h] = obj
	return h
}

// AddRef increments the reference count of h.
func (e *Emulator) AddRef(h ole.Handle) error {
	if h == 0 {
		return errors.NullPointer(errors.PhasePlatform, "addref on null object")
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	obj, ok := e.objects[h]
	if !ok {
		return errors.External(errors.PhasePlatform, int32(ole.EPointer), "unknown object handle")
	}
	obj.refs++
	return nil
}

// Release decrements the reference count of h, dropping the object at
// zero. Releasing the null handle is a no-op.
func (e *Emulator) Release(h ole.Handle) {
	if h == 0 {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	obj, ok := e.objects[h]
	if !ok {
		return
	}
	obj.refs--
	if obj.refs <= 0 {
		delete(e.objects, h)
		Logger().Debug("object dropped", zap.Uint64("handle", uint64(h)))
	}
}

// Refs reports the current reference count of an object handle. Test
// helper; returns 0 for unknown handles.
func (e *Emulator) Refs(h ole.Handle) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	if obj, ok := e.objects[h]; ok {
		return obj.refs
	}
	return 0
}

// AllocVariant stores a nested variant payload.
func (e *Emulator) AllocVariant(v ole.Raw) (ole.Handle, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	h := e.newHandle()
	e.variants[h] = v
	return h, nil
}

// VariantValue reads the nested variant behind h.
func (e *Emulator) VariantValue(h ole.Handle) (ole.Raw, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	v, ok := e.variants[h]
	if !ok {
		return ole.Raw{}, errors.External(errors.PhasePlatform, int32(ole.EPointer), "unknown variant handle")
	}
	return v, nil
}

// FreeVariant releases the slot behind h.
func (e *Emulator) FreeVariant(h ole.Handle) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.variants, h)
}

// AllocDecimal stores a decimal payload.
func (e *Emulator) AllocDecimal(d ole.Decimal) (ole.Handle, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	h := e.newHandle()
	e.decimals[h] = d
	return h, nil
}

// DecimalValue reads the decimal behind h.
func (e *Emulator) DecimalValue(h ole.Handle) (ole.Decimal, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	d, ok := e.decimals[h]
	if !ok {
		return ole.Decimal{}, errors.External(errors.PhasePlatform, int32(ole.EPointer), "unknown decimal handle")
	}
	return d, nil
}

// CopyDecimal duplicates the allocation behind h.
func (e *Emulator) CopyDecimal(h ole.Handle) (ole.Handle, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	d, ok := e.decimals[h]
	if !ok {
		return 0, errors.External(errors.PhasePlatform, int32(ole.EPointer), "unknown decimal handle")
	}
	nh := e.newHandle()
	e.decimals[nh] = d
	return nh, nil
}

// FreeDecimal releases the slot behind h.
func (e *Emulator) FreeDecimal(h ole.Handle) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.decimals, h)
}

// LiveStrings reports the number of live string allocations. Test helper.
func (e *Emulator) LiveStrings() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.strings)
}

// LiveObjects reports the number of live objects. Test helper.
func (e *Emulator) LiveObjects() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.objects)
}

// LiveVariants reports the number of live nested variant slots. Test
// helper.
func (e *Emulator) LiveVariants() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.variants)
}

// LiveArrays reports the number of live array buffers. Test helper.
func (e *Emulator) LiveArrays() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.arrays)
}
