// Package util holds small concurrency primitives shared by the pipeline.
package util

import "sync/atomic"

// SafeCounter is a monotonically advancing counter safe to use concurrently.
// The preview scheduler stamps each request with Next and discards results
// whose stamp is no longer Current.
type SafeCounter struct {
	value atomic.Uint64
}

// NewSafeCounter creates a counter starting at zero.
func NewSafeCounter() *SafeCounter {
	return &SafeCounter{}
}

// Next advances the counter and returns the new value.
func (c *SafeCounter) Next() uint64 {
	return c.value.Add(1)
}

// Current returns the latest value handed out by Next.
func (c *SafeCounter) Current() uint64 {
	return c.value.Load()
}

// IsCurrent reports whether v is still the latest value.
func (c *SafeCounter) IsCurrent(v uint64) bool {
	return c.value.Load() == v
}

// SafeFlag is safe to use concurrently.
type SafeFlag struct {
	value atomic.Bool
}

// NewSafeFlag creates a cleared flag.
func NewSafeFlag() *SafeFlag {
	return &SafeFlag{}
}

// TrySet raises the flag and reports whether this call did so. It returns
// false when the flag was already set.
func (f *SafeFlag) TrySet() bool {
	return f.value.CompareAndSwap(false, true)
}

// Clear lowers the flag.
func (f *SafeFlag) Clear() {
	f.value.Store(false)
}

// Value returns the current value of the flag.
func (f *SafeFlag) Value() bool {
	return f.value.Load()
}
