//go:build debugasserts

package heightfield

// assert panics on precondition violations in debug builds. Violations are
// caller defects, not recoverable conditions.
func assert(cond bool, msg string) {
	if !cond {
		panic("heightfield: " + msg)
	}
}
