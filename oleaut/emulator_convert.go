package oleaut

import (
	"math"
	"strconv"
	"strings"

	"github.com/uiabridge/olevariant/errors"
	"github.com/uiabridge/olevariant/ole"
)

// opKind classifies a loaded payload for coercion. Currency and date keep
// their own kinds because they format differently from the plain numeric
// kinds even though they coerce numerically.
type opKind int

const (
	opNull opKind = iota // null dispatch; coerces to the target's zero
	opInt
	opUint
	opFloat
	opCurrency
	opDate
	opBool
	opString
)

// operand is a payload lifted out of its raw encoding.
type operand struct {
	kind opKind
	i    int64   // opInt, opCurrency (scaled by 1e4)
	u    uint64  // opUint
	f    float64 // opFloat, opDate
	b    bool    // opBool
	s    string  // opString
}

func convertError(hr ole.HResult, src, dst ole.VT) error {
	return errors.New(errors.PhaseConvert, errors.KindExternal).
		HResult(int32(hr)).
		Detail("cannot convert %s to %s", src, dst).
		Build()
}

// load lifts src into an operand. Tags outside the coercion source set
// report DISP_E_TYPEMISMATCH.
func (e *Emulator) load(src *ole.Raw) (operand, error) {
	switch src.Tag {
	case ole.VTBool:
		return operand{kind: opBool, b: src.Bool() != 0}, nil
	case ole.VTI1:
		return operand{kind: opInt, i: int64(src.I1())}, nil
	case ole.VTI2:
		return operand{kind: opInt, i: int64(src.I2())}, nil
	case ole.VTI4, ole.VTInt:
		return operand{kind: opInt, i: int64(src.I4())}, nil
	case ole.VTI8:
		return operand{kind: opInt, i: src.I8()}, nil
	case ole.VTUI1:
		return operand{kind: opUint, u: uint64(src.UI1())}, nil
	case ole.VTUI2:
		return operand{kind: opUint, u: uint64(src.UI2())}, nil
	case ole.VTUI4, ole.VTUInt:
		return operand{kind: opUint, u: uint64(src.UI4())}, nil
	case ole.VTUI8:
		return operand{kind: opUint, u: src.UI8()}, nil
	case ole.VTR4:
		return operand{kind: opFloat, f: float64(src.R4())}, nil
	case ole.VTR8:
		return operand{kind: opFloat, f: src.R8()}, nil
	case ole.VTCurrency:
		return operand{kind: opCurrency, i: src.Currency()}, nil
	case ole.VTDate:
		return operand{kind: opDate, f: src.Date()}, nil
	case ole.VTDecimal:
		d, err := e.DecimalValue(src.Handle())
		if err != nil {
			return operand{}, err
		}
		return operand{kind: opFloat, f: d.Float64()}, nil
	case ole.VTBstr, ole.VTLPStr, ole.VTLPWStr:
		s, err := e.StringValue(src.Handle())
		if err != nil {
			return operand{}, err
		}
		return operand{kind: opString, s: s}, nil
	case ole.VTDispatch:
		return e.loadDispatch(src.Handle())
	default:
		return operand{}, convertError(ole.DispETypeMismatch, src.Tag, ole.VTEmpty)
	}
}

// loadDispatch resolves a dispatch handle to its default property. A null
// handle degrades to the target's zero value rather than an error.
func (e *Emulator) loadDispatch(h ole.Handle) (operand, error) {
	if h == 0 {
		return operand{kind: opNull}, nil
	}
	e.mu.Lock()
	obj, ok := e.objects[h]
	e.mu.Unlock()
	if !ok {
		return operand{}, errors.External(errors.PhasePlatform, int32(ole.EPointer), "unknown object handle")
	}
	if obj.def == nil {
		return operand{}, convertError(ole.DispETypeMismatch, ole.VTDispatch, ole.VTEmpty)
	}
	if obj.def.Tag == ole.VTDispatch {
		// one level only, no cycles through nested objects
		return operand{}, convertError(ole.DispETypeMismatch, ole.VTDispatch, ole.VTEmpty)
	}
	def := *obj.def
	return e.load(&def)
}

// asInt64 coerces the operand to a signed 64-bit integer. Floats round
// half to even, the foreign banker's rounding.
func (op operand) asInt64(src, dst ole.VT) (int64, error) {
	switch op.kind {
	case opNull:
		return 0, nil
	case opInt:
		return op.i, nil
	case opUint:
		if op.u > math.MaxInt64 {
			return 0, convertError(ole.DispEOverflow, src, dst)
		}
		return int64(op.u), nil
	case opFloat, opDate:
		return roundToInt64(op.f, src, dst)
	case opCurrency:
		return roundToInt64(float64(op.i)/1e4, src, dst)
	case opBool:
		if op.b {
			return -1, nil
		}
		return 0, nil
	case opString:
		if i, err := strconv.ParseInt(strings.TrimSpace(op.s), 10, 64); err == nil {
			return i, nil
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(op.s), 64)
		if err != nil {
			return 0, convertError(ole.DispETypeMismatch, src, dst)
		}
		return roundToInt64(f, src, dst)
	}
	return 0, convertError(ole.DispETypeMismatch, src, dst)
}

// asUint64 coerces the operand to an unsigned 64-bit integer. Negative
// values overflow, matching VarUI*From* behavior.
func (op operand) asUint64(src, dst ole.VT) (uint64, error) {
	switch op.kind {
	case opNull:
		return 0, nil
	case opInt:
		if op.i < 0 {
			return 0, convertError(ole.DispEOverflow, src, dst)
		}
		return uint64(op.i), nil
	case opUint:
		return op.u, nil
	case opFloat, opDate:
		return roundToUint64(op.f, src, dst)
	case opCurrency:
		return roundToUint64(float64(op.i)/1e4, src, dst)
	case opBool:
		if op.b {
			return 0, convertError(ole.DispEOverflow, src, dst)
		}
		return 0, nil
	case opString:
		if u, err := strconv.ParseUint(strings.TrimSpace(op.s), 10, 64); err == nil {
			return u, nil
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(op.s), 64)
		if err != nil {
			return 0, convertError(ole.DispETypeMismatch, src, dst)
		}
		return roundToUint64(f, src, dst)
	}
	return 0, convertError(ole.DispETypeMismatch, src, dst)
}

// asFloat64 coerces the operand to a 64-bit float.
func (op operand) asFloat64(src, dst ole.VT) (float64, error) {
	switch op.kind {
	case opNull:
		return 0, nil
	case opInt:
		return float64(op.i), nil
	case opUint:
		return float64(op.u), nil
	case opFloat, opDate:
		return op.f, nil
	case opCurrency:
		return float64(op.i) / 1e4, nil
	case opBool:
		if op.b {
			return -1, nil
		}
		return 0, nil
	case opString:
		f, err := strconv.ParseFloat(strings.TrimSpace(op.s), 64)
		if err != nil {
			return 0, convertError(ole.DispETypeMismatch, src, dst)
		}
		return f, nil
	}
	return 0, convertError(ole.DispETypeMismatch, src, dst)
}

// asBool coerces the operand to a boolean. Strings accept the foreign
// True/False spellings case-insensitively, then fall back to numeric
// parsing where nonzero is true.
func (op operand) asBool(src ole.VT) (bool, error) {
	switch op.kind {
	case opNull:
		return false, nil
	case opBool:
		return op.b, nil
	case opInt, opCurrency:
		return op.i != 0, nil
	case opUint:
		return op.u != 0, nil
	case opFloat, opDate:
		return op.f != 0, nil
	case opString:
		switch strings.ToLower(strings.TrimSpace(op.s)) {
		case "true":
			return true, nil
		case "false":
			return false, nil
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(op.s), 64)
		if err != nil {
			return false, convertError(ole.DispETypeMismatch, src, ole.VTBool)
		}
		return f != 0, nil
	}
	return false, convertError(ole.DispETypeMismatch, src, ole.VTBool)
}

func roundToInt64(f float64, src, dst ole.VT) (int64, error) {
	r := math.RoundToEven(f)
	if math.IsNaN(r) || r < math.MinInt64 || r >= math.MaxInt64 {
		return 0, convertError(ole.DispEOverflow, src, dst)
	}
	return int64(r), nil
}

func roundToUint64(f float64, src, dst ole.VT) (uint64, error) {
	r := math.RoundToEven(f)
	if math.IsNaN(r) || r < 0 || r >= math.MaxUint64 {
		return 0, convertError(ole.DispEOverflow, src, dst)
	}
	return uint64(r), nil
}

// Convert coerces src into a raw variant of tag dst. Destination tags
// outside the coercion matrix report DISP_E_TYPEMISMATCH; values outside
// the destination's range report DISP_E_OVERFLOW.
func (e *Emulator) Convert(dst ole.VT, src *ole.Raw) (ole.Raw, error) {
	op, err := e.load(src)
	if err != nil {
		return ole.Raw{}, err
	}

	out := ole.NewRaw(dst)
	switch dst {
	case ole.VTI1:
		v, err := op.asInt64(src.Tag, dst)
		if err != nil {
			return ole.Raw{}, err
		}
		if v < math.MinInt8 || v > math.MaxInt8 {
			return ole.Raw{}, convertError(ole.DispEOverflow, src.Tag, dst)
		}
		out.SetI1(int8(v))
	case ole.VTI2:
		v, err := op.asInt64(src.Tag, dst)
		if err != nil {
			return ole.Raw{}, err
		}
		if v < math.MinInt16 || v > math.MaxInt16 {
			return ole.Raw{}, convertError(ole.DispEOverflow, src.Tag, dst)
		}
		out.SetI2(int16(v))
	case ole.VTI4, ole.VTInt:
		v, err := op.asInt64(src.Tag, dst)
		if err != nil {
			return ole.Raw{}, err
		}
		if v < math.MinInt32 || v > math.MaxInt32 {
			return ole.Raw{}, convertError(ole.DispEOverflow, src.Tag, dst)
		}
		out.SetI4(int32(v))
	case ole.VTI8:
		v, err := op.asInt64(src.Tag, dst)
		if err != nil {
			return ole.Raw{}, err
		}
		out.SetI8(v)
	case ole.VTUI1:
		v, err := op.asUint64(src.Tag, dst)
		if err != nil {
			return ole.Raw{}, err
		}
		if v > math.MaxUint8 {
			return ole.Raw{}, convertError(ole.DispEOverflow, src.Tag, dst)
		}
		out.SetUI1(uint8(v))
	case ole.VTUI2:
		v, err := op.asUint64(src.Tag, dst)
		if err != nil {
			return ole.Raw{}, err
		}
		if v > math.MaxUint16 {
			return ole.Raw{}, convertError(ole.DispEOverflow, src.Tag, dst)
		}
		out.SetUI2(uint16(v))
	case ole.VTUI4, ole.VTUInt:
		v, err := op.asUint64(src.Tag, dst)
		if err != nil {
			return ole.Raw{}, err
		}
		if v > math.MaxUint32 {
			return ole.Raw{}, convertError(ole.DispEOverflow, src.Tag, dst)
		}
		out.SetUI4(uint32(v))
	case ole.VTUI8:
		v, err := op.asUint64(src.Tag, dst)
		if err != nil {
			return ole.Raw{}, err
		}
		out.SetUI8(v)
	case ole.VTR4:
		v, err := op.asFloat64(src.Tag, dst)
		if err != nil {
			return ole.Raw{}, err
		}
		if !math.IsInf(v, 0) && math.Abs(v) > math.MaxFloat32 {
			return ole.Raw{}, convertError(ole.DispEOverflow, src.Tag, dst)
		}
		out.SetR4(float32(v))
	case ole.VTR8:
		v, err := op.asFloat64(src.Tag, dst)
		if err != nil {
			return ole.Raw{}, err
		}
		out.SetR8(v)
	case ole.VTBool:
		v, err := op.asBool(src.Tag)
		if err != nil {
			return ole.Raw{}, err
		}
		if v {
			out.SetBool(ole.VariantTrue)
		} else {
			out.SetBool(ole.VariantFalse)
		}
	case ole.VTCurrency:
		v, err := op.asFloat64(src.Tag, dst)
		if err != nil {
			return ole.Raw{}, err
		}
		scaled := math.RoundToEven(v * 1e4)
		if math.IsNaN(scaled) || scaled < math.MinInt64 || scaled >= math.MaxInt64 {
			return ole.Raw{}, convertError(ole.DispEOverflow, src.Tag, dst)
		}
		out.SetCurrency(int64(scaled))
	case ole.VTDate:
		v, err := op.asFloat64(src.Tag, dst)
		if err != nil {
			return ole.Raw{}, err
		}
		out.SetDate(v)
	case ole.VTBstr:
		s, err := e.formatOperand(op)
		if err != nil {
			return ole.Raw{}, err
		}
		h, err := e.AllocString(s)
		if err != nil {
			return ole.Raw{}, err
		}
		out.SetHandle(h)
	default:
		return ole.Raw{}, convertError(ole.DispETypeMismatch, src.Tag, dst)
	}
	return out, nil
}

// formatOperand renders the operand through the emulator's locale,
// preserving the source family's natural form.
func (e *Emulator) formatOperand(op operand) (string, error) {
	switch op.kind {
	case opNull:
		return "", nil
	case opInt:
		return e.locale.formatInt(op.i), nil
	case opUint:
		return e.locale.formatUint(op.u), nil
	case opFloat:
		return e.locale.formatFloat(op.f), nil
	case opCurrency:
		return e.locale.formatCurrency(op.i), nil
	case opDate:
		return e.locale.formatDate(op.f), nil
	case opBool:
		return e.locale.formatBool(op.b), nil
	case opString:
		return op.s, nil
	}
	return "", convertError(ole.DispETypeMismatch, ole.VTEmpty, ole.VTBstr)
}
