// ABOUTME: Handle-based binding API
// ABOUTME: Boolean results only; causes are available through Registry.Err
// Package binding exposes haptic controllers through opaque handles and
// boolean results, the shape foreign callers expect from a C-style binding.
//
// Every Init must be paired with exactly one Release. Operations on the
// null handle, an unknown handle or a released handle return false.
//
// Example:
//
//	h, ok := binding.Init()
//	ok = binding.Load(h, clipJSON)
//	ok = binding.Play(h)
//	ok = binding.Stop(h)
//	ok = binding.Release(h)
package binding
