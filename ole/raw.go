package ole

import "math"

// Handle is an opaque reference owned by the automation subsystem: a BSTR,
// an IUnknown/IDispatch object, a nested VARIANT, a DECIMAL or a
// SAFEARRAY descriptor. Zero is the null handle. Only the platform that
// issued a handle may interpret it.
type Handle uintptr

// Raw is the VARIANT wire layout: a 16-bit tag, three reserved words and a
// 16-byte payload union, 24 bytes in total. Instances may be copied across
// the interop boundary by plain assignment; exactly one payload
// interpretation is valid, selected solely by Tag.
type Raw struct {
	Tag       VT
	reserved1 uint16
	reserved2 uint16
	reserved3 uint16
	val       [2]uint64
}

// NewRaw returns a zero-payload variant with the given tag.
func NewRaw(tag VT) Raw {
	return Raw{Tag: tag}
}

func (r *Raw) clearPayload() {
	r.val[0] = 0
	r.val[1] = 0
}

// I1 reads the payload as an 8-bit signed integer.
func (r *Raw) I1() int8 { return int8(r.val[0]) }

// SetI1 stores an 8-bit signed integer payload.
func (r *Raw) SetI1(v int8) {
	r.clearPayload()
	r.val[0] = uint64(uint8(v))
}

// I2 reads the payload as a 16-bit signed integer.
func (r *Raw) I2() int16 { return int16(r.val[0]) }

// SetI2 stores a 16-bit signed integer payload.
func (r *Raw) SetI2(v int16) {
	r.clearPayload()
	r.val[0] = uint64(uint16(v))
}

// I4 reads the payload as a 32-bit signed integer.
func (r *Raw) I4() int32 { return int32(r.val[0]) }

// SetI4 stores a 32-bit signed integer payload.
func (r *Raw) SetI4(v int32) {
	r.clearPayload()
	r.val[0] = uint64(uint32(v))
}

// I8 reads the payload as a 64-bit signed integer.
func (r *Raw) I8() int64 { return int64(r.val[0]) }

// SetI8 stores a 64-bit signed integer payload.
func (r *Raw) SetI8(v int64) {
	r.clearPayload()
	r.val[0] = uint64(v)
}

// UI1 reads the payload as an 8-bit unsigned integer.
func (r *Raw) UI1() uint8 { return uint8(r.val[0]) }

// SetUI1 stores an 8-bit unsigned integer payload.
func (r *Raw) SetUI1(v uint8) {
	r.clearPayload()
	r.val[0] = uint64(v)
}

// UI2 reads the payload as a 16-bit unsigned integer.
func (r *Raw) UI2() uint16 { return uint16(r.val[0]) }

// SetUI2 stores a 16-bit unsigned integer payload.
func (r *Raw) SetUI2(v uint16) {
	r.clearPayload()
	r.val[0] = uint64(v)
}

// UI4 reads the payload as a 32-bit unsigned integer.
func (r *Raw) UI4() uint32 { return uint32(r.val[0]) }

// SetUI4 stores a 32-bit unsigned integer payload.
func (r *Raw) SetUI4(v uint32) {
	r.clearPayload()
	r.val[0] = uint64(v)
}

// UI8 reads the payload as a 64-bit unsigned integer.
func (r *Raw) UI8() uint64 { return r.val[0] }

// SetUI8 stores a 64-bit unsigned integer payload.
func (r *Raw) SetUI8(v uint64) {
	r.clearPayload()
	r.val[0] = v
}

// R4 reads the payload as a 32-bit float.
func (r *Raw) R4() float32 { return math.Float32frombits(uint32(r.val[0])) }

// SetR4 stores a 32-bit float payload.
func (r *Raw) SetR4(v float32) {
	r.clearPayload()
	r.val[0] = uint64(math.Float32bits(v))
}

// R8 reads the payload as a 64-bit float.
func (r *Raw) R8() float64 { return math.Float64frombits(r.val[0]) }

// SetR8 stores a 64-bit float payload.
func (r *Raw) SetR8(v float64) {
	r.clearPayload()
	r.val[0] = math.Float64bits(v)
}

// Bool reads the payload as a VARIANT_BOOL.
func (r *Raw) Bool() int16 { return int16(r.val[0]) }

// SetBool stores a VARIANT_BOOL payload.
func (r *Raw) SetBool(v int16) {
	r.clearPayload()
	r.val[0] = uint64(uint16(v))
}

// Currency reads the payload as a CY value (64-bit integer scaled by 1e4).
func (r *Raw) Currency() int64 { return int64(r.val[0]) }

// SetCurrency stores a CY payload.
func (r *Raw) SetCurrency(v int64) {
	r.clearPayload()
	r.val[0] = uint64(v)
}

// Date reads the payload as an automation DATE (days since 1899-12-30).
func (r *Raw) Date() float64 { return math.Float64frombits(r.val[0]) }

// SetDate stores a DATE payload.
func (r *Raw) SetDate(v float64) {
	r.clearPayload()
	r.val[0] = math.Float64bits(v)
}

// HResult reads the payload as an SCODE/HRESULT.
func (r *Raw) HResult() HResult { return HResult(r.val[0]) }

// SetHResult stores an SCODE/HRESULT payload.
func (r *Raw) SetHResult(v HResult) {
	r.clearPayload()
	r.val[0] = uint64(uint32(v))
}

// Handle reads the payload as an external handle.
func (r *Raw) Handle() Handle { return Handle(r.val[0]) }

// SetHandle stores an external handle payload.
func (r *Raw) SetHandle(h Handle) {
	r.clearPayload()
	r.val[0] = uint64(h)
}
