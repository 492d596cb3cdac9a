package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseConvert  Phase = "convert"  // variant to primitive coercion
	PhaseFormat   Phase = "format"   // primitive to string rendering
	PhaseParse    Phase = "parse"    // string to primitive parsing
	PhaseArith    Phase = "arith"    // arithmetic/logical operators
	PhaseArray    Phase = "array"    // safearray operations
	PhaseDecode   Phase = "decode"   // variant tag dispatch
	PhasePlatform Phase = "platform" // allocator/heap primitives
)

// Kind categorizes the error
type Kind string

const (
	// KindType reports a tag outside the operation's source set, or an
	// array element-tag/dimension mismatch.
	KindType Kind = "type_error"
	// KindNullPointer reports a required reference or array handle that
	// was null.
	KindNullPointer Kind = "null_pointer"
	// KindExternal reports a failure from the automation subsystem; the
	// foreign status code is carried unchanged.
	KindExternal Kind = "external"
)

// Error is the structured error type used throughout the library
type Error struct {
	Value   any
	Cause   error
	Phase   Phase
	Kind    Kind
	VarType string
	GoType  string
	HResult int32
	Detail  string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.VarType != "" || e.GoType != "" {
		b.WriteString(": ")
		if e.VarType != "" && e.GoType != "" {
			b.WriteString("variant type ")
			b.WriteString(e.VarType)
			b.WriteString(", Go type ")
			b.WriteString(e.GoType)
		} else if e.VarType != "" {
			b.WriteString("variant type ")
			b.WriteString(e.VarType)
		} else {
			b.WriteString("Go type ")
			b.WriteString(e.GoType)
		}
	}

	if e.HResult != 0 {
		if e.VarType != "" || e.GoType != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		fmt.Fprintf(&b, "hresult 0x%08X", uint32(e.HResult))
	}

	if e.Detail != "" {
		if e.VarType != "" || e.GoType != "" || e.HResult != 0 {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error. A target with an empty
// Phase matches any phase of the same kind.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		if t.Phase != "" && e.Phase != t.Phase {
			return false
		}
		return e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// VarType sets the variant tag name
func (b *Builder) VarType(t string) *Builder {
	b.err.VarType = t
	return b
}

// GoType sets the Go type name
func (b *Builder) GoType(t string) *Builder {
	b.err.GoType = t
	return b
}

// HResult sets the foreign status code
func (b *Builder) HResult(hr int32) *Builder {
	b.err.HResult = hr
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// TypeError reports a variant tag the requested operation does not accept.
func TypeError(phase Phase, varType, goType string) *Error {
	return &Error{
		Phase:   phase,
		Kind:    KindType,
		VarType: varType,
		GoType:  goType,
	}
}

// NullPointer reports a required handle that was null.
func NullPointer(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNullPointer,
		Detail: detail,
	}
}

// External wraps a failure reported by the automation subsystem. The
// status code is surfaced verbatim, never reinterpreted.
func External(phase Phase, hr int32, detail string) *Error {
	return &Error{
		Phase:   phase,
		Kind:    KindExternal,
		HResult: hr,
		Detail:  detail,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// IsKind reports whether err (or anything it wraps) is an *Error of the
// given kind.
func IsKind(err error, kind Kind) bool {
	for err != nil {
		if e, ok := err.(*Error); ok && e.Kind == kind {
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
