package ole

import (
	"math"
	"testing"
	"unsafe"
)

// The layout is the interop contract: a Raw must be copyable across the
// boundary as 24 raw bytes with the payload union at offset 8.
func TestRawLayout(t *testing.T) {
	var r Raw
	if size := unsafe.Sizeof(r); size != 24 {
		t.Fatalf("Raw size = %d, want 24", size)
	}
	if off := unsafe.Offsetof(r.val); off != 8 {
		t.Fatalf("payload offset = %d, want 8", off)
	}
	if off := unsafe.Offsetof(r.Tag); off != 0 {
		t.Fatalf("tag offset = %d, want 0", off)
	}
}

func TestRawPayloadAccessors(t *testing.T) {
	var r Raw

	r.SetI1(-5)
	if r.I1() != -5 {
		t.Errorf("I1 round-trip: got %d", r.I1())
	}
	r.SetI2(-300)
	if r.I2() != -300 {
		t.Errorf("I2 round-trip: got %d", r.I2())
	}
	r.SetI4(-70000)
	if r.I4() != -70000 {
		t.Errorf("I4 round-trip: got %d", r.I4())
	}
	r.SetI8(-1 << 40)
	if r.I8() != -1<<40 {
		t.Errorf("I8 round-trip: got %d", r.I8())
	}
	r.SetUI8(math.MaxUint64)
	if r.UI8() != math.MaxUint64 {
		t.Errorf("UI8 round-trip: got %d", r.UI8())
	}
	r.SetR4(1.5)
	if r.R4() != 1.5 {
		t.Errorf("R4 round-trip: got %v", r.R4())
	}
	r.SetR8(-2.25)
	if r.R8() != -2.25 {
		t.Errorf("R8 round-trip: got %v", r.R8())
	}
	r.SetBool(VariantTrue)
	if r.Bool() != VariantTrue {
		t.Errorf("Bool round-trip: got %d", r.Bool())
	}
	r.SetCurrency(123456)
	if r.Currency() != 123456 {
		t.Errorf("Currency round-trip: got %d", r.Currency())
	}
	r.SetHResult(DispEOverflow)
	if r.HResult() != DispEOverflow {
		t.Errorf("HResult round-trip: got %v", r.HResult())
	}
	r.SetHandle(Handle(0xDEAD))
	if r.Handle() != Handle(0xDEAD) {
		t.Errorf("Handle round-trip: got %#x", r.Handle())
	}
}

// Setting a narrow payload must not leave stale bits from a previous wider
// payload behind; a reader of the new interpretation sees only its bytes.
func TestRawSetClearsPayload(t *testing.T) {
	var r Raw
	r.SetUI8(math.MaxUint64)
	r.SetI1(1)
	if r.UI8() != 1 {
		t.Fatalf("payload not cleared: %#x", r.UI8())
	}
}

func TestVTString(t *testing.T) {
	tests := []struct {
		vt   VT
		want string
	}{
		{VTEmpty, "VT_EMPTY"},
		{VTCurrency, "VT_CY"},
		{VTSafeArray, "VT_SAFEARRAY"},
		{VTArray, "VT_ARRAY"},
		{VT(999), "VT(999)"},
	}
	for _, tt := range tests {
		if got := tt.vt.String(); got != tt.want {
			t.Errorf("VT(%d).String() = %q, want %q", uint16(tt.vt), got, tt.want)
		}
	}
}

func TestVTPredicates(t *testing.T) {
	for _, vt := range []VT{VTBstr, VTLPWStr, VTLPStr} {
		if !vt.IsString() {
			t.Errorf("%v should be a string tag", vt)
		}
	}
	if VTI4.IsString() {
		t.Error("VT_I4 is not a string tag")
	}
	for _, vt := range []VT{VTSafeArray, VTArray} {
		if !vt.IsArray() {
			t.Errorf("%v should be an array tag", vt)
		}
	}
	if !VTDispatch.IsReference() || !VTUnknown.IsReference() {
		t.Error("dispatch/unknown are reference tags")
	}
	if VTBstr.IsReference() {
		t.Error("VT_BSTR is not a reference tag")
	}
}

func TestDecimalFloat64(t *testing.T) {
	tests := []struct {
		name string
		d    Decimal
		want float64
	}{
		{"zero", Decimal{}, 0},
		{"unscaled", Decimal{Lo64: 42}, 42},
		{"scaled", Decimal{Scale: 2, Lo64: 12345}, 123.45},
		{"negative", Decimal{Sign: DecimalNegative, Lo64: 7}, -7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.d.Float64(); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Float64() = %v, want %v", got, tt.want)
			}
		})
	}
}
