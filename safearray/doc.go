// Package safearray wraps SAFEARRAY handles with explicit ownership.
//
// An owned Array destroys its handle on Close and deep-copies on Clone;
// a borrowed Array is a read view over a handle someone else owns and
// never frees it. Transfer moves ownership out of an Array, which is how
// a variant adopts an array without double-freeing it.
//
// The typed vector helpers (Get, Put, IntoVector, FromVector and the
// string/bool/object forms) convert between Go slices and
// one-dimensional arrays. Element access on multi-dimensional arrays is
// not supported; their bounds can still be inspected.
package safearray
