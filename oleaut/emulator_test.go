package oleaut

import (
	stderrors "errors"
	"testing"

	"github.com/uiabridge/olevariant/errors"
	"github.com/uiabridge/olevariant/ole"
)

func rawI4(v int32) ole.Raw {
	r := ole.NewRaw(ole.VTI4)
	r.SetI4(v)
	return r
}

func rawI8(v int64) ole.Raw {
	r := ole.NewRaw(ole.VTI8)
	r.SetI8(v)
	return r
}

func rawR8(v float64) ole.Raw {
	r := ole.NewRaw(ole.VTR8)
	r.SetR8(v)
	return r
}

func rawBool(v bool) ole.Raw {
	r := ole.NewRaw(ole.VTBool)
	if v {
		r.SetBool(ole.VariantTrue)
	} else {
		r.SetBool(ole.VariantFalse)
	}
	return r
}

func rawCurrency(scaled int64) ole.Raw {
	r := ole.NewRaw(ole.VTCurrency)
	r.SetCurrency(scaled)
	return r
}

func rawString(t *testing.T, e *Emulator, s string) ole.Raw {
	t.Helper()
	h, err := e.AllocString(s)
	if err != nil {
		t.Fatalf("AllocString(%q): %v", s, err)
	}
	r := ole.NewRaw(ole.VTBstr)
	r.SetHandle(h)
	return r
}

func wantHResult(t *testing.T, err error, hr ole.HResult) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with hresult %s, got nil", hr)
	}
	var perr *errors.Error
	if !stderrors.As(err, &perr) {
		t.Fatalf("expected *errors.Error, got %T: %v", err, err)
	}
	if perr.HResult != int32(hr) {
		t.Fatalf("expected hresult %s, got 0x%08X", hr, uint32(perr.HResult))
	}
}

func TestEmulatorStringHeap(t *testing.T) {
	e := NewEmulator()

	h, err := e.AllocString("hello")
	if err != nil {
		t.Fatalf("AllocString: %v", err)
	}
	s, err := e.StringValue(h)
	if err != nil || s != "hello" {
		t.Fatalf("StringValue = %q, %v", s, err)
	}

	dup, err := e.CopyString(h)
	if err != nil {
		t.Fatalf("CopyString: %v", err)
	}
	if dup == h {
		t.Fatal("copy returned the same handle")
	}
	if e.LiveStrings() != 2 {
		t.Fatalf("LiveStrings = %d, want 2", e.LiveStrings())
	}

	e.FreeString(h)
	e.FreeString(dup)
	if e.LiveStrings() != 0 {
		t.Fatalf("LiveStrings = %d after free, want 0", e.LiveStrings())
	}

	// null handle reads as empty and frees as no-op
	s, err = e.StringValue(0)
	if err != nil || s != "" {
		t.Fatalf("StringValue(0) = %q, %v", s, err)
	}
	e.FreeString(0)
}

func TestEmulatorObjectRefCounts(t *testing.T) {
	e := NewEmulator()

	h := e.NewObject(nil)
	if got := e.Refs(h); got != 1 {
		t.Fatalf("Refs = %d, want 1", got)
	}
	if err := e.AddRef(h); err != nil {
		t.Fatalf("AddRef: %v", err)
	}
	if got := e.Refs(h); got != 2 {
		t.Fatalf("Refs = %d, want 2", got)
	}
	e.Release(h)
	e.Release(h)
	if e.LiveObjects() != 0 {
		t.Fatalf("LiveObjects = %d, want 0", e.LiveObjects())
	}
	if err := e.AddRef(0); err == nil {
		t.Fatal("AddRef(0) succeeded")
	}
}

func TestEmulatorConvertNumeric(t *testing.T) {
	e := NewEmulator()

	tests := []struct {
		name string
		src  ole.Raw
		dst  ole.VT
		want int64
	}{
		{"i4 to i8", rawI4(42), ole.VTI8, 42},
		{"i4 to i2", rawI4(-300), ole.VTI2, -300},
		{"r8 rounds half to even down", rawR8(2.5), ole.VTI4, 2},
		{"r8 rounds half to even up", rawR8(3.5), ole.VTI4, 4},
		{"bool true is minus one", rawBool(true), ole.VTI4, -1},
		{"currency rounds half to even", rawCurrency(15000), ole.VTI4, 2},
		{"string integer", rawString(t, e, "1234"), ole.VTI4, 1234},
		{"string float rounds", rawString(t, e, "3.7"), ole.VTI4, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := e.Convert(tt.dst, &tt.src)
			if err != nil {
				t.Fatalf("Convert: %v", err)
			}
			if out.Tag != tt.dst {
				t.Fatalf("tag = %s, want %s", out.Tag, tt.dst)
			}
			var got int64
			switch tt.dst {
			case ole.VTI2:
				got = int64(out.I2())
			case ole.VTI4:
				got = int64(out.I4())
			case ole.VTI8:
				got = out.I8()
			}
			if got != tt.want {
				t.Fatalf("value = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestEmulatorConvertOverflow(t *testing.T) {
	e := NewEmulator()

	src := rawI4(300)
	_, err := e.Convert(ole.VTI1, &src)
	wantHResult(t, err, ole.DispEOverflow)

	src = rawI4(-1)
	_, err = e.Convert(ole.VTUI4, &src)
	wantHResult(t, err, ole.DispEOverflow)
}

func TestEmulatorConvertTypeMismatch(t *testing.T) {
	e := NewEmulator()

	src := rawString(t, e, "not a number")
	_, err := e.Convert(ole.VTI4, &src)
	wantHResult(t, err, ole.DispETypeMismatch)

	empty := ole.NewRaw(ole.VTEmpty)
	_, err = e.Convert(ole.VTI4, &empty)
	wantHResult(t, err, ole.DispETypeMismatch)
}

func TestEmulatorConvertToString(t *testing.T) {
	e := NewEmulator()

	tests := []struct {
		name string
		src  ole.Raw
		want string
	}{
		{"i4", rawI4(42), "42"},
		{"r8", rawR8(2.5), "2.5"},
		{"bool true", rawBool(true), "True"},
		{"bool false", rawBool(false), "False"},
		{"currency", rawCurrency(12345), "1.2345"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := e.Convert(ole.VTBstr, &tt.src)
			if err != nil {
				t.Fatalf("Convert: %v", err)
			}
			got, err := e.StringValue(out.Handle())
			if err != nil {
				t.Fatalf("StringValue: %v", err)
			}
			if got != tt.want {
				t.Fatalf("string = %q, want %q", got, tt.want)
			}
			e.FreeString(out.Handle())
		})
	}
}

func TestEmulatorConvertDate(t *testing.T) {
	e := NewEmulator()

	d := ole.NewRaw(ole.VTDate)
	d.SetDate(1.5) // 1899-12-31 noon
	out, err := e.Convert(ole.VTBstr, &d)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	got, _ := e.StringValue(out.Handle())
	if got != "1899-12-31 12:00:00" {
		t.Fatalf("date string = %q", got)
	}
	e.FreeString(out.Handle())
}

func TestEmulatorConvertDispatch(t *testing.T) {
	e := NewEmulator()

	def := rawI4(7)
	obj := e.NewObject(&def)
	src := ole.NewRaw(ole.VTDispatch)
	src.SetHandle(obj)

	out, err := e.Convert(ole.VTI8, &src)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if out.I8() != 7 {
		t.Fatalf("default property = %d, want 7", out.I8())
	}

	// null dispatch degrades to the target's zero value
	null := ole.NewRaw(ole.VTDispatch)
	out, err = e.Convert(ole.VTI4, &null)
	if err != nil || out.I4() != 0 {
		t.Fatalf("null dispatch to i4 = %d, %v", out.I4(), err)
	}
	out, err = e.Convert(ole.VTBstr, &null)
	if err != nil {
		t.Fatalf("null dispatch to bstr: %v", err)
	}
	if s, _ := e.StringValue(out.Handle()); s != "" {
		t.Fatalf("null dispatch string = %q, want empty", s)
	}

	// object without a default property cannot convert
	bare := ole.NewRaw(ole.VTDispatch)
	bare.SetHandle(e.NewObject(nil))
	_, err = e.Convert(ole.VTI4, &bare)
	wantHResult(t, err, ole.DispETypeMismatch)
}

func TestEmulatorArithPromotion(t *testing.T) {
	e := NewEmulator()

	a, b := rawI4(2), rawI4(3)
	out, err := e.Add(&a, &b)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if out.Tag != ole.VTI4 || out.I4() != 5 {
		t.Fatalf("2+3 = %s %d", out.Tag, out.I4())
	}

	big := rawI8(1 << 40)
	one := rawI4(1)
	out, err = e.Add(&big, &one)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if out.Tag != ole.VTI8 || out.I8() != (1<<40)+1 {
		t.Fatalf("wide add = %s %d", out.Tag, out.I8())
	}

	f := rawR8(0.5)
	out, err = e.Add(&a, &f)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if out.Tag != ole.VTR8 || out.R8() != 2.5 {
		t.Fatalf("2+0.5 = %s %v", out.Tag, out.R8())
	}

	cy := rawCurrency(15000) // 1.5
	out, err = e.Add(&a, &cy)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if out.Tag != ole.VTCurrency || out.Currency() != 35000 {
		t.Fatalf("2+1.5cy = %s %d", out.Tag, out.Currency())
	}
}

func TestEmulatorArithStringConcat(t *testing.T) {
	e := NewEmulator()

	a := rawString(t, e, "foo")
	b := rawString(t, e, "bar")
	out, err := e.Add(&a, &b)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if out.Tag != ole.VTBstr {
		t.Fatalf("tag = %s, want VT_BSTR", out.Tag)
	}
	got, _ := e.StringValue(out.Handle())
	if got != "foobar" {
		t.Fatalf("concat = %q", got)
	}

	// a numeric string participates numerically
	n := rawString(t, e, "4")
	two := rawI4(2)
	out, err = e.Add(&n, &two)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if out.Tag != ole.VTI4 || out.I4() != 6 {
		t.Fatalf("\"4\"+2 = %s %d", out.Tag, out.I4())
	}
}

func TestEmulatorArithDivide(t *testing.T) {
	e := NewEmulator()

	a, b := rawI4(7), rawI4(2)
	out, err := e.Div(&a, &b)
	if err != nil {
		t.Fatalf("Div: %v", err)
	}
	if out.Tag != ole.VTR8 || out.R8() != 3.5 {
		t.Fatalf("7/2 = %s %v", out.Tag, out.R8())
	}

	zero := rawI4(0)
	_, err = e.Div(&a, &zero)
	wantHResult(t, err, ole.DispEDivByZero)
	_, err = e.Mod(&a, &zero)
	wantHResult(t, err, ole.DispEDivByZero)

	out, err = e.Mod(&a, &b)
	if err != nil || out.I4() != 1 {
		t.Fatalf("7%%2 = %d, %v", out.I4(), err)
	}
}

func TestEmulatorArithLogical(t *testing.T) {
	e := NewEmulator()

	tr, fa := rawBool(true), rawBool(false)
	out, err := e.And(&tr, &fa)
	if err != nil {
		t.Fatalf("And: %v", err)
	}
	if out.Tag != ole.VTBool || out.Bool() != ole.VariantFalse {
		t.Fatalf("true&&false = %s %d", out.Tag, out.Bool())
	}

	out, err = e.Or(&tr, &fa)
	if err != nil || out.Bool() != ole.VariantTrue {
		t.Fatalf("true||false = %d, %v", out.Bool(), err)
	}

	six, three := rawI4(6), rawI4(3)
	out, err = e.Xor(&six, &three)
	if err != nil || out.I4() != 5 {
		t.Fatalf("6^3 = %d, %v", out.I4(), err)
	}

	out, err = e.Not(&tr)
	if err != nil || out.Tag != ole.VTBool || out.Bool() != ole.VariantFalse {
		t.Fatalf("!true = %s %d, %v", out.Tag, out.Bool(), err)
	}

	zero := rawI4(0)
	out, err = e.Not(&zero)
	if err != nil || out.I4() != -1 {
		t.Fatalf("^0 = %d, %v", out.I4(), err)
	}
}

func TestEmulatorArithUnary(t *testing.T) {
	e := NewEmulator()

	neg := rawI4(-5)
	out, err := e.Abs(&neg)
	if err != nil || out.I4() != 5 {
		t.Fatalf("abs(-5) = %d, %v", out.I4(), err)
	}

	five := rawI4(5)
	out, err = e.Neg(&five)
	if err != nil || out.I4() != -5 {
		t.Fatalf("neg(5) = %d, %v", out.I4(), err)
	}

	f := rawR8(-2.5)
	out, err = e.Abs(&f)
	if err != nil || out.Tag != ole.VTR8 || out.R8() != 2.5 {
		t.Fatalf("abs(-2.5) = %s %v, %v", out.Tag, out.R8(), err)
	}
}

func TestEmulatorArrayLifecycle(t *testing.T) {
	e := NewEmulator()

	h, err := e.CreateVector(ole.VTI4, 3)
	if err != nil {
		t.Fatalf("CreateVector: %v", err)
	}
	if vt, _ := e.ArrayVarType(h); vt != ole.VTI4 {
		t.Fatalf("vartype = %s", vt)
	}
	if dims, _ := e.ArrayDims(h); dims != 1 {
		t.Fatalf("dims = %d", dims)
	}
	if lo, _ := e.ArrayLowerBound(h, 1); lo != 0 {
		t.Fatalf("lbound = %d", lo)
	}
	if hi, _ := e.ArrayUpperBound(h, 1); hi != 2 {
		t.Fatalf("ubound = %d", hi)
	}

	for i := int32(0); i < 3; i++ {
		v := rawI4(i * 10)
		if err := e.PutElement(h, i, &v); err != nil {
			t.Fatalf("PutElement(%d): %v", i, err)
		}
	}
	got, err := e.GetElement(h, 2)
	if err != nil || got.I4() != 20 {
		t.Fatalf("GetElement(2) = %d, %v", got.I4(), err)
	}

	v := rawI4(0)
	if err := e.PutElement(h, 5, &v); err == nil {
		t.Fatal("out-of-bounds put succeeded")
	} else {
		wantHResult(t, err, ole.DispEBadIndex)
	}

	f := rawR8(1.0)
	if err := e.PutElement(h, 0, &f); err == nil {
		t.Fatal("mismatched element tag accepted")
	} else {
		wantHResult(t, err, ole.DispETypeMismatch)
	}

	if err := e.DestroyArray(h); err != nil {
		t.Fatalf("DestroyArray: %v", err)
	}
	if e.LiveArrays() != 0 {
		t.Fatalf("LiveArrays = %d, want 0", e.LiveArrays())
	}
}

func TestEmulatorArrayStringOwnership(t *testing.T) {
	e := NewEmulator()

	h, err := e.CreateVector(ole.VTBstr, 1)
	if err != nil {
		t.Fatalf("CreateVector: %v", err)
	}
	v := rawString(t, e, "abc")
	if err := e.PutElement(h, 0, &v); err != nil {
		t.Fatalf("PutElement: %v", err)
	}
	// the caller still owns its handle after the put
	e.FreeString(v.Handle())

	got, err := e.GetElement(h, 0)
	if err != nil {
		t.Fatalf("GetElement: %v", err)
	}
	s, _ := e.StringValue(got.Handle())
	if s != "abc" {
		t.Fatalf("element = %q", s)
	}
	e.FreeString(got.Handle())

	if err := e.DestroyArray(h); err != nil {
		t.Fatalf("DestroyArray: %v", err)
	}
	if e.LiveStrings() != 0 {
		t.Fatalf("LiveStrings = %d after destroy, want 0", e.LiveStrings())
	}
}

func TestEmulatorArrayObjectRefs(t *testing.T) {
	e := NewEmulator()

	obj := e.NewObject(nil)
	h, err := e.CreateVector(ole.VTDispatch, 1)
	if err != nil {
		t.Fatalf("CreateVector: %v", err)
	}
	v := ole.NewRaw(ole.VTDispatch)
	v.SetHandle(obj)
	if err := e.PutElement(h, 0, &v); err != nil {
		t.Fatalf("PutElement: %v", err)
	}
	if got := e.Refs(obj); got != 2 {
		t.Fatalf("refs after put = %d, want 2", got)
	}
	el, err := e.GetElement(h, 0)
	if err != nil {
		t.Fatalf("GetElement: %v", err)
	}
	if got := e.Refs(obj); got != 3 {
		t.Fatalf("refs after get = %d, want 3", got)
	}
	e.Release(el.Handle())
	if err := e.DestroyArray(h); err != nil {
		t.Fatalf("DestroyArray: %v", err)
	}
	if got := e.Refs(obj); got != 1 {
		t.Fatalf("refs after destroy = %d, want 1", got)
	}
}

func TestEmulatorArrayCopyIsDeep(t *testing.T) {
	e := NewEmulator()

	h, _ := e.CreateVector(ole.VTBstr, 1)
	v := rawString(t, e, "left")
	if err := e.PutElement(h, 0, &v); err != nil {
		t.Fatalf("PutElement: %v", err)
	}
	e.FreeString(v.Handle())

	dup, err := e.CopyArray(h)
	if err != nil {
		t.Fatalf("CopyArray: %v", err)
	}
	w := rawString(t, e, "right")
	if err := e.PutElement(h, 0, &w); err != nil {
		t.Fatalf("PutElement: %v", err)
	}
	e.FreeString(w.Handle())

	el, _ := e.GetElement(dup, 0)
	s, _ := e.StringValue(el.Handle())
	if s != "left" {
		t.Fatalf("copy element = %q, want %q", s, "left")
	}
	e.FreeString(el.Handle())

	e.DestroyArray(h)
	e.DestroyArray(dup)
	if e.LiveStrings() != 0 || e.LiveArrays() != 0 {
		t.Fatalf("leak: strings=%d arrays=%d", e.LiveStrings(), e.LiveArrays())
	}
}

func TestEmulatorMultiDimBounds(t *testing.T) {
	e := NewEmulator()

	h, err := e.CreateArray(ole.VTI4, []Bound{{Lower: 1, Count: 2}, {Lower: 0, Count: 3}})
	if err != nil {
		t.Fatalf("CreateArray: %v", err)
	}
	if dims, _ := e.ArrayDims(h); dims != 2 {
		t.Fatalf("dims = %d", dims)
	}
	if lo, _ := e.ArrayLowerBound(h, 1); lo != 1 {
		t.Fatalf("lbound dim1 = %d", lo)
	}
	if hi, _ := e.ArrayUpperBound(h, 2); hi != 2 {
		t.Fatalf("ubound dim2 = %d", hi)
	}
	if _, err := e.ArrayLowerBound(h, 3); err == nil {
		t.Fatal("bad dimension accepted")
	}
	v := rawI4(1)
	if err := e.PutElement(h, 1, &v); err == nil {
		t.Fatal("element access on a 2-D array succeeded")
	}
	e.DestroyArray(h)
}
