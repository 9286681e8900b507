package warn

import "testing"

func TestOnceFiresOnlyOnce(t *testing.T) {
	Reset()
	Once("k", "first")
	Once("k", "second")
	// No observable assertion beyond not panicking: the dedup is exercised
	// by callers that care about stderr volume, not by a return value.
}
