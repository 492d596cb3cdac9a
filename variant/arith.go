package variant

import (
	"github.com/uiabridge/olevariant/ole"
	"github.com/uiabridge/olevariant/oleaut"
)

// The operators delegate to the platform's arithmetic primitives.
// Operand promotion belongs to the platform; the result is a new owned
// variant and the operands are untouched.

func wrap(raw ole.Raw, err error) (Variant, error) {
	if err != nil {
		return Variant{}, err
	}
	return Variant{raw: raw}, nil
}

// Abs returns the absolute value of the variant.
func (v *Variant) Abs() (Variant, error) {
	return wrap(oleaut.Default().Abs(&v.raw))
}

// Negate returns the arithmetic negation of the variant.
func (v *Variant) Negate() (Variant, error) {
	return wrap(oleaut.Default().Neg(&v.raw))
}

// Not returns the bitwise complement of the variant; booleans stay
// boolean.
func (v *Variant) Not() (Variant, error) {
	return wrap(oleaut.Default().Not(&v.raw))
}

// Add returns the sum of the two variants. String operands concatenate.
func (v *Variant) Add(other *Variant) (Variant, error) {
	return wrap(oleaut.Default().Add(&v.raw, &other.raw))
}

// Subtract returns the difference of the two variants.
func (v *Variant) Subtract(other *Variant) (Variant, error) {
	return wrap(oleaut.Default().Sub(&v.raw, &other.raw))
}

// Multiply returns the product of the two variants.
func (v *Variant) Multiply(other *Variant) (Variant, error) {
	return wrap(oleaut.Default().Mul(&v.raw, &other.raw))
}

// Divide returns the quotient of the two variants.
func (v *Variant) Divide(other *Variant) (Variant, error) {
	return wrap(oleaut.Default().Div(&v.raw, &other.raw))
}

// Mod returns the integer remainder of the two variants.
func (v *Variant) Mod(other *Variant) (Variant, error) {
	return wrap(oleaut.Default().Mod(&v.raw, &other.raw))
}

// And combines the two variants, logically for booleans and bitwise
// otherwise.
func (v *Variant) And(other *Variant) (Variant, error) {
	return wrap(oleaut.Default().And(&v.raw, &other.raw))
}

// Or combines the two variants, logically for booleans and bitwise
// otherwise.
func (v *Variant) Or(other *Variant) (Variant, error) {
	return wrap(oleaut.Default().Or(&v.raw, &other.raw))
}

// Xor combines the two variants exclusively.
func (v *Variant) Xor(other *Variant) (Variant, error) {
	return wrap(oleaut.Default().Xor(&v.raw, &other.raw))
}
