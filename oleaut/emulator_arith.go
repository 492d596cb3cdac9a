package oleaut

import (
	"math"
	"strconv"
	"strings"

	"github.com/uiabridge/olevariant/errors"
	"github.com/uiabridge/olevariant/ole"
)

// numClass is the promotion family of an arithmetic operand. Promotion
// picks the strongest class of the two operands: float beats currency
// beats integer.
type numClass int

const (
	numInt numClass = iota
	numCurrency
	numFloat
)

// numOperand is an operand resolved for arithmetic.
type numOperand struct {
	cls numClass
	i   int64   // numInt
	cy  int64   // numCurrency, scaled by 1e4
	f   float64 // numFloat
}

func arithError(hr ole.HResult, detail string) error {
	return errors.External(errors.PhaseArith, int32(hr), detail)
}

// resolveNumber classifies an operand for arithmetic. Strings that parse
// as plain integers stay integers so integer identities hold; anything
// with a fractional form promotes to float.
func resolveNumber(op operand) (numOperand, error) {
	switch op.kind {
	case opNull:
		return numOperand{cls: numInt}, nil
	case opInt:
		return numOperand{cls: numInt, i: op.i}, nil
	case opUint:
		if op.u > math.MaxInt64 {
			return numOperand{cls: numFloat, f: float64(op.u)}, nil
		}
		return numOperand{cls: numInt, i: int64(op.u)}, nil
	case opBool:
		if op.b {
			return numOperand{cls: numInt, i: -1}, nil
		}
		return numOperand{cls: numInt}, nil
	case opFloat, opDate:
		return numOperand{cls: numFloat, f: op.f}, nil
	case opCurrency:
		return numOperand{cls: numCurrency, cy: op.i}, nil
	case opString:
		s := strings.TrimSpace(op.s)
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return numOperand{cls: numInt, i: i}, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return numOperand{}, arithError(ole.DispETypeMismatch, "operand is not numeric")
		}
		return numOperand{cls: numFloat, f: f}, nil
	}
	return numOperand{}, arithError(ole.DispETypeMismatch, "operand is not numeric")
}

func (n numOperand) float() float64 {
	switch n.cls {
	case numCurrency:
		return float64(n.cy) / 1e4
	case numFloat:
		return n.f
	}
	return float64(n.i)
}

func storeInt(v int64) ole.Raw {
	if v >= math.MinInt32 && v <= math.MaxInt32 {
		out := ole.NewRaw(ole.VTI4)
		out.SetI4(int32(v))
		return out
	}
	out := ole.NewRaw(ole.VTI8)
	out.SetI8(v)
	return out
}

func storeFloat(v float64) ole.Raw {
	out := ole.NewRaw(ole.VTR8)
	out.SetR8(v)
	return out
}

func storeCurrencyFloat(v float64) (ole.Raw, error) {
	scaled := math.RoundToEven(v * 1e4)
	if math.IsNaN(scaled) || scaled < math.MinInt64 || scaled >= math.MaxInt64 {
		return ole.Raw{}, arithError(ole.DispEOverflow, "currency result out of range")
	}
	out := ole.NewRaw(ole.VTCurrency)
	out.SetCurrency(int64(scaled))
	return out, nil
}

// numericBinary runs a promoted binary operation. intOp reports ok=false
// on int64 overflow.
func (e *Emulator) numericBinary(a, b *ole.Raw, intOp func(x, y int64) (int64, bool), floatOp func(x, y float64) float64) (ole.Raw, error) {
	xo, err := e.load(a)
	if err != nil {
		return ole.Raw{}, err
	}
	yo, err := e.load(b)
	if err != nil {
		return ole.Raw{}, err
	}
	x, err := resolveNumber(xo)
	if err != nil {
		return ole.Raw{}, err
	}
	y, err := resolveNumber(yo)
	if err != nil {
		return ole.Raw{}, err
	}

	switch {
	case x.cls == numFloat || y.cls == numFloat:
		return storeFloat(floatOp(x.float(), y.float())), nil
	case x.cls == numCurrency || y.cls == numCurrency:
		return storeCurrencyFloat(floatOp(x.float(), y.float()))
	default:
		r, ok := intOp(x.i, y.i)
		if !ok {
			return ole.Raw{}, arithError(ole.DispEOverflow, "integer result out of range")
		}
		return storeInt(r), nil
	}
}

// Abs computes the absolute value, preserving the operand's family.
func (e *Emulator) Abs(v *ole.Raw) (ole.Raw, error) {
	op, err := e.load(v)
	if err != nil {
		return ole.Raw{}, err
	}
	n, err := resolveNumber(op)
	if err != nil {
		return ole.Raw{}, err
	}
	switch n.cls {
	case numFloat:
		return storeFloat(math.Abs(n.f)), nil
	case numCurrency:
		if n.cy == math.MinInt64 {
			return ole.Raw{}, arithError(ole.DispEOverflow, "currency result out of range")
		}
		cy := n.cy
		if cy < 0 {
			cy = -cy
		}
		out := ole.NewRaw(ole.VTCurrency)
		out.SetCurrency(cy)
		return out, nil
	default:
		if n.i == math.MinInt64 {
			return ole.Raw{}, arithError(ole.DispEOverflow, "integer result out of range")
		}
		i := n.i
		if i < 0 {
			i = -i
		}
		return storeInt(i), nil
	}
}

// Neg computes the arithmetic negation.
func (e *Emulator) Neg(v *ole.Raw) (ole.Raw, error) {
	op, err := e.load(v)
	if err != nil {
		return ole.Raw{}, err
	}
	n, err := resolveNumber(op)
	if err != nil {
		return ole.Raw{}, err
	}
	switch n.cls {
	case numFloat:
		return storeFloat(-n.f), nil
	case numCurrency:
		if n.cy == math.MinInt64 {
			return ole.Raw{}, arithError(ole.DispEOverflow, "currency result out of range")
		}
		out := ole.NewRaw(ole.VTCurrency)
		out.SetCurrency(-n.cy)
		return out, nil
	default:
		if n.i == math.MinInt64 {
			return ole.Raw{}, arithError(ole.DispEOverflow, "integer result out of range")
		}
		return storeInt(-n.i), nil
	}
}

// Not computes the bitwise complement. A boolean operand stays boolean.
func (e *Emulator) Not(v *ole.Raw) (ole.Raw, error) {
	op, err := e.load(v)
	if err != nil {
		return ole.Raw{}, err
	}
	if op.kind == opBool {
		out := ole.NewRaw(ole.VTBool)
		if op.b {
			out.SetBool(ole.VariantFalse)
		} else {
			out.SetBool(ole.VariantTrue)
		}
		return out, nil
	}
	i, err := op.asInt64(v.Tag, ole.VTI8)
	if err != nil {
		return ole.Raw{}, err
	}
	return storeInt(^i), nil
}

// Add sums two operands. Two strings concatenate into a fresh string
// variant instead of coercing.
func (e *Emulator) Add(a, b *ole.Raw) (ole.Raw, error) {
	if a.Tag.IsString() && b.Tag.IsString() {
		xs, err := e.StringValue(a.Handle())
		if err != nil {
			return ole.Raw{}, err
		}
		ys, err := e.StringValue(b.Handle())
		if err != nil {
			return ole.Raw{}, err
		}
		h, err := e.AllocString(xs + ys)
		if err != nil {
			return ole.Raw{}, err
		}
		out := ole.NewRaw(ole.VTBstr)
		out.SetHandle(h)
		return out, nil
	}
	return e.numericBinary(a, b, addInt64, func(x, y float64) float64 { return x + y })
}

// Sub subtracts b from a.
func (e *Emulator) Sub(a, b *ole.Raw) (ole.Raw, error) {
	return e.numericBinary(a, b, subInt64, func(x, y float64) float64 { return x - y })
}

// Mul multiplies two operands.
func (e *Emulator) Mul(a, b *ole.Raw) (ole.Raw, error) {
	return e.numericBinary(a, b, mulInt64, func(x, y float64) float64 { return x * y })
}

// Div divides a by b. Division always produces a float result; a zero
// divisor reports DISP_E_DIVBYZERO.
func (e *Emulator) Div(a, b *ole.Raw) (ole.Raw, error) {
	xo, err := e.load(a)
	if err != nil {
		return ole.Raw{}, err
	}
	yo, err := e.load(b)
	if err != nil {
		return ole.Raw{}, err
	}
	x, err := resolveNumber(xo)
	if err != nil {
		return ole.Raw{}, err
	}
	y, err := resolveNumber(yo)
	if err != nil {
		return ole.Raw{}, err
	}
	if y.float() == 0 {
		return ole.Raw{}, arithError(ole.DispEDivByZero, "division by zero")
	}
	return storeFloat(x.float() / y.float()), nil
}

// Mod computes the integer remainder of a divided by b.
func (e *Emulator) Mod(a, b *ole.Raw) (ole.Raw, error) {
	xo, err := e.load(a)
	if err != nil {
		return ole.Raw{}, err
	}
	yo, err := e.load(b)
	if err != nil {
		return ole.Raw{}, err
	}
	x, err := xo.asInt64(a.Tag, ole.VTI8)
	if err != nil {
		return ole.Raw{}, err
	}
	y, err := yo.asInt64(b.Tag, ole.VTI8)
	if err != nil {
		return ole.Raw{}, err
	}
	if y == 0 {
		return ole.Raw{}, arithError(ole.DispEDivByZero, "division by zero")
	}
	return storeInt(x % y), nil
}

// And computes a logical conjunction for boolean operands and a bitwise
// one otherwise.
func (e *Emulator) And(a, b *ole.Raw) (ole.Raw, error) {
	return e.bitwiseBinary(a, b,
		func(x, y bool) bool { return x && y },
		func(x, y int64) int64 { return x & y })
}

// Or computes a logical disjunction for boolean operands and a bitwise
// one otherwise.
func (e *Emulator) Or(a, b *ole.Raw) (ole.Raw, error) {
	return e.bitwiseBinary(a, b,
		func(x, y bool) bool { return x || y },
		func(x, y int64) int64 { return x | y })
}

// Xor computes an exclusive disjunction, logical for booleans and
// bitwise otherwise.
func (e *Emulator) Xor(a, b *ole.Raw) (ole.Raw, error) {
	return e.bitwiseBinary(a, b,
		func(x, y bool) bool { return x != y },
		func(x, y int64) int64 { return x ^ y })
}

func (e *Emulator) bitwiseBinary(a, b *ole.Raw, boolOp func(x, y bool) bool, intOp func(x, y int64) int64) (ole.Raw, error) {
	xo, err := e.load(a)
	if err != nil {
		return ole.Raw{}, err
	}
	yo, err := e.load(b)
	if err != nil {
		return ole.Raw{}, err
	}
	if xo.kind == opBool && yo.kind == opBool {
		out := ole.NewRaw(ole.VTBool)
		if boolOp(xo.b, yo.b) {
			out.SetBool(ole.VariantTrue)
		} else {
			out.SetBool(ole.VariantFalse)
		}
		return out, nil
	}
	x, err := xo.asInt64(a.Tag, ole.VTI8)
	if err != nil {
		return ole.Raw{}, err
	}
	y, err := yo.asInt64(b.Tag, ole.VTI8)
	if err != nil {
		return ole.Raw{}, err
	}
	return storeInt(intOp(x, y)), nil
}

func addInt64(x, y int64) (int64, bool) {
	r := x + y
	if (x > 0 && y > 0 && r < 0) || (x < 0 && y < 0 && r >= 0) {
		return 0, false
	}
	return r, true
}

func subInt64(x, y int64) (int64, bool) {
	r := x - y
	if (x >= 0 && y < 0 && r < 0) || (x < 0 && y > 0 && r >= 0) {
		return 0, false
	}
	return r, true
}

func mulInt64(x, y int64) (int64, bool) {
	if x == 0 || y == 0 {
		return 0, true
	}
	r := x * y
	if r/y != x {
		return 0, false
	}
	return r, true
}
