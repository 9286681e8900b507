// Package warn provides a process-wide "log this at most once" helper,
// generalized from the reference tracker's utils.go WarnOnce (itself a
// sync.Map-guarded dedup cache) for pipeline code that must not spam stderr
// once per frame.
package warn

import (
	"log"
	"sync"
)

var seen sync.Map

// Once logs msg via the standard log package the first time a given key is
// seen in the process, and is a no-op on every subsequent call with the same
// key.
func Once(key, msg string) {
	if _, loaded := seen.LoadOrStore(key, struct{}{}); !loaded {
		log.Print(msg)
	}
}

// Reset clears the dedup cache. Intended for tests only.
func Reset() {
	seen = sync.Map{}
}
