package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:   PhaseConvert,
				Kind:    KindType,
				VarType: "VT_SAFEARRAY",
				GoType:  "int32",
				Detail:  "array variants have no numeric coercion",
			},
			contains: []string{"[convert]", "type_error", "VT_SAFEARRAY", "int32", "no numeric coercion"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseDecode,
				Kind:  KindType,
			},
			contains: []string{"[decode]", "type_error"},
		},
		{
			name: "external error carries hresult",
			err: &Error{
				Phase:   PhaseArith,
				Kind:    KindExternal,
				HResult: -2147352558, // 0x80020012
				Detail:  "VarDiv",
			},
			contains: []string{"[arith]", "external", "0x80020012", "VarDiv"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhasePlatform,
				Kind:   KindNullPointer,
				Detail: "create safearray failed",
				Cause:  errors.New("underlying error"),
			},
			contains: []string{"[platform]", "null_pointer", "create safearray failed", "caused by", "underlying error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &Error{
		Phase: PhaseConvert,
		Kind:  KindExternal,
		Cause: cause,
	}

	if !errors.Is(err.Unwrap(), cause) {
		t.Error("Unwrap did not return cause")
	}

	if !errors.Is(errors.Unwrap(err), cause) {
		t.Error("errors.Unwrap did not return cause")
	}
}

func TestError_Is(t *testing.T) {
	err := &Error{
		Phase:   PhaseConvert,
		Kind:    KindType,
		VarType: "VT_BOOL",
	}

	if !err.Is(&Error{Phase: PhaseConvert, Kind: KindType}) {
		t.Error("Is should match same phase and kind")
	}

	if err.Is(&Error{Phase: PhaseArray, Kind: KindType}) {
		t.Error("Is should not match different phase")
	}

	if err.Is(&Error{Phase: PhaseConvert, Kind: KindExternal}) {
		t.Error("Is should not match different kind")
	}

	// Empty phase in target matches any phase of the same kind.
	if !err.Is(&Error{Kind: KindType}) {
		t.Error("Is should match kind-only target")
	}

	if !errors.Is(err, &Error{Phase: PhaseConvert, Kind: KindType}) {
		t.Error("errors.Is should match")
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("boom")
	err := New(PhaseArray, KindExternal).
		VarType("VT_I4").
		GoType("int32").
		HResult(-2147352571).
		Value(42).
		Cause(cause).
		Detail("put element %d", 3).
		Build()

	if err.Phase != PhaseArray || err.Kind != KindExternal {
		t.Fatalf("builder lost phase/kind: %+v", err)
	}
	if err.VarType != "VT_I4" || err.GoType != "int32" {
		t.Errorf("builder lost type names: %+v", err)
	}
	if err.HResult != -2147352571 {
		t.Errorf("builder lost hresult: %v", err.HResult)
	}
	if err.Value != 42 {
		t.Errorf("builder lost value: %v", err.Value)
	}
	if err.Detail != "put element 3" {
		t.Errorf("Detail formatting wrong: %q", err.Detail)
	}
	if !errors.Is(err, cause) {
		t.Error("cause not wrapped")
	}
}

func TestConvenienceConstructors(t *testing.T) {
	te := TypeError(PhaseConvert, "VT_NULL", "bool")
	if te.Kind != KindType || te.VarType != "VT_NULL" || te.GoType != "bool" {
		t.Errorf("TypeError fields wrong: %+v", te)
	}

	np := NullPointer(PhaseArray, "null interface")
	if np.Kind != KindNullPointer || np.Detail != "null interface" {
		t.Errorf("NullPointer fields wrong: %+v", np)
	}

	ex := External(PhasePlatform, -2147024809, "SafeArrayGetElement")
	if ex.Kind != KindExternal || ex.HResult != -2147024809 {
		t.Errorf("External fields wrong: %+v", ex)
	}
}

func TestIsKind(t *testing.T) {
	inner := External(PhasePlatform, -2147352566, "VarI4FromStr")
	outer := Wrap(PhaseConvert, KindExternal, inner, "coerce string")

	if !IsKind(outer, KindExternal) {
		t.Error("IsKind should find external kind")
	}
	if IsKind(outer, KindNullPointer) {
		t.Error("IsKind should not match a kind that never occurs")
	}
	if IsKind(nil, KindType) {
		t.Error("IsKind(nil) must be false")
	}
	if IsKind(errors.New("plain"), KindType) {
		t.Error("plain errors have no kind")
	}
}
