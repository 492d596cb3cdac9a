package ole

// DecimalNegative is the Sign value marking a negative Decimal.
const DecimalNegative uint8 = 0x80

// Decimal is the automation DECIMAL scalar: a 96-bit unsigned integer
// scaled by a power of ten, with an explicit sign byte.
type Decimal struct {
	Scale uint8 // power-of-ten divisor, 0..28
	Sign  uint8 // 0 or DecimalNegative
	Hi32  uint32
	Lo64  uint64
}

// Float64 converts the decimal to a 64-bit float. Magnitudes beyond
// float64 precision lose digits, matching the foreign conversion.
func (d Decimal) Float64() float64 {
	v := float64(d.Hi32)*18446744073709551616.0 + float64(d.Lo64)
	for i := uint8(0); i < d.Scale; i++ {
		v /= 10
	}
	if d.Sign == DecimalNegative {
		v = -v
	}
	return v
}

// DecimalFromInt64 builds an unscaled decimal from an integer.
func DecimalFromInt64(v int64) Decimal {
	d := Decimal{}
	if v < 0 {
		d.Sign = DecimalNegative
		v = -v
	}
	d.Lo64 = uint64(v)
	return d
}
